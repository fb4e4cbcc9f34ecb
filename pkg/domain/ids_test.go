package domain

import (
	"encoding/json"
	"strings"
	"testing"

	"github.com/google/uuid"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	dErrors "civreg/pkg/domain-errors"
)

// TestParseUUID_Invariants validates the parsing invariant:
// "IDs must be valid, non-empty, non-nil UUIDs".
func TestParseUUID_Invariants(t *testing.T) {
	t.Run("rejects empty string", func(t *testing.T) {
		_, err := ParseResidentID("")
		require.Error(t, err)
		assert.True(t, dErrors.HasCode(err, dErrors.CodeInvalidInput))
	})

	t.Run("rejects invalid format", func(t *testing.T) {
		_, err := ParseResidentID("not-a-uuid")
		require.Error(t, err)
		assert.True(t, dErrors.HasCode(err, dErrors.CodeInvalidInput))
	})

	t.Run("rejects nil UUID", func(t *testing.T) {
		_, err := ParseResidentID(uuid.Nil.String())
		require.Error(t, err)
		assert.True(t, dErrors.HasCode(err, dErrors.CodeInvalidInput))
	})

	t.Run("accepts valid UUID", func(t *testing.T) {
		valid := uuid.New()
		id, err := ParseResidentID(valid.String())
		require.NoError(t, err)
		assert.Equal(t, ResidentID(valid), id)
	})
}

// TestParseID_BoundaryInputs validates trust-boundary parsing rules shared by
// every ID kind.
func TestParseID_BoundaryInputs(t *testing.T) {
	tests := []struct {
		name    string
		input   string
		wantErr bool
	}{
		{"SQL injection attempt", "'; DROP TABLE residents;--", true},
		{"path traversal", "../../../etc/passwd", true},
		{"oversized input", strings.Repeat("a", 1000), true},
		{"empty string", "", true},
		{"nil UUID", uuid.Nil.String(), true},
		{"whitespace only", "   ", true},
		{"uppercase valid UUID", "550E8400-E29B-41D4-A716-446655440000", false},
		{"valid UUID lowercase", "550e8400-e29b-41d4-a716-446655440000", false},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			_, errR := ParseResidentID(tt.input)
			_, errP := ParseProjectID(tt.input)
			_, errU := ParseUserID(tt.input)
			if tt.wantErr {
				assert.Error(t, errR)
				assert.Error(t, errP)
				assert.Error(t, errU)
			} else {
				assert.NoError(t, errR)
				assert.NoError(t, errP)
				assert.NoError(t, errU)
			}
		})
	}
}

// TestJSONWireForm verifies IDs encode as canonical UUID strings, not as the
// underlying byte array, including through pointer fields.
func TestJSONWireForm(t *testing.T) {
	residentID := NewResidentID()
	actorID := NewUserID()
	payload := struct {
		ID    ResidentID `json:"id"`
		Actor *UserID    `json:"actor_id,omitempty"`
	}{ID: residentID, Actor: &actorID}

	raw, err := json.Marshal(payload)
	require.NoError(t, err)
	assert.JSONEq(t,
		`{"id":"`+residentID.String()+`","actor_id":"`+actorID.String()+`"}`,
		string(raw))

	var decoded struct {
		ID    ResidentID `json:"id"`
		Actor *UserID    `json:"actor_id"`
	}
	require.NoError(t, json.Unmarshal(raw, &decoded))
	assert.Equal(t, residentID, decoded.ID)
	require.NotNil(t, decoded.Actor)
	assert.Equal(t, actorID, *decoded.Actor)

	var bad struct {
		ID ResidentID `json:"id"`
	}
	assert.Error(t, json.Unmarshal([]byte(`{"id":"not-a-uuid"}`), &bad))
}

// TestTypeDistinction verifies the compiler enforces type safety between ID
// kinds. If this compiles, the invariant holds.
func TestTypeDistinction(t *testing.T) {
	residentID := ResidentID(uuid.New())
	projectID := ProjectID(uuid.New())

	// These would fail to compile if types were interchangeable:
	// var _ ResidentID = projectID // compile error
	// var _ ProjectID = residentID // compile error

	assert.NotEqual(t, uuid.UUID(residentID), uuid.UUID(projectID))
}

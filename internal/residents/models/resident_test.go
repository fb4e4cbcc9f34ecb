package models

import (
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"civreg/internal/freshness"
	id "civreg/pkg/domain"
	dErrors "civreg/pkg/domain-errors"
)

var testNow = time.Date(2025, time.June, 15, 9, 0, 0, 0, time.UTC)

func newTestResident(t *testing.T) *Resident {
	t.Helper()
	r, err := NewResident(id.NewResidentID(), "Maria", "Santos", testNow)
	require.NoError(t, err)
	return r
}

func TestNewResident_Invariants(t *testing.T) {
	t.Run("rejects empty first name", func(t *testing.T) {
		_, err := NewResident(id.NewResidentID(), "  ", "Santos", testNow)
		require.Error(t, err)
		assert.True(t, dErrors.HasCode(err, dErrors.CodeInvariantViolation))
	})

	t.Run("rejects empty last name", func(t *testing.T) {
		_, err := NewResident(id.NewResidentID(), "Maria", "", testNow)
		require.Error(t, err)
		assert.True(t, dErrors.HasCode(err, dErrors.CodeInvariantViolation))
	})

	t.Run("starts pending with fresh timestamps", func(t *testing.T) {
		r := newTestResident(t)
		assert.Equal(t, VerificationPending, r.Verification.Status)
		require.NotNil(t, r.LastModified)
		assert.Equal(t, testNow, *r.LastModified)
		assert.False(t, r.IsDeleted())
	})
}

func TestDisplayName(t *testing.T) {
	r := newTestResident(t)
	r.MiddleName = "Dela"
	r.Suffix = "Jr"
	assert.Equal(t, "Maria Dela Santos Jr", r.DisplayName())

	r.Suffix = "none"
	assert.Equal(t, "Maria Dela Santos", r.DisplayName(), `suffix "none" is omitted`)

	r.MiddleName = ""
	r.Suffix = ""
	assert.Equal(t, "Maria Santos", r.DisplayName())
}

func TestDerivedStatus_UsesLastModifiedThenUpdatedAt(t *testing.T) {
	r := newTestResident(t)

	old := testNow.AddDate(0, -9, 0)
	r.LastModified = nil
	r.UpdatedAt = &old
	assert.Equal(t, freshness.StatusOutdated, r.DerivedStatus(testNow))

	recent := testNow.AddDate(0, -2, 0)
	r.LastModified = &recent
	assert.Equal(t, freshness.StatusActive, r.DerivedStatus(testNow), "last_modified wins over updated_at")

	r.LastModified = nil
	r.UpdatedAt = nil
	assert.Equal(t, freshness.StatusNeedsVerification, r.DerivedStatus(testNow))
}

func TestTouch_RefreshesModificationTimestamps(t *testing.T) {
	r := newTestResident(t)
	later := testNow.Add(48 * time.Hour)

	r.Touch(later)

	require.NotNil(t, r.LastModified)
	assert.Equal(t, later, *r.LastModified)
	assert.Equal(t, later, *r.UpdatedAt)
}

func TestApplyApproval(t *testing.T) {
	r := newTestResident(t)
	r.ApplyDenial("address mismatch", testNow)

	changed := r.ApplyApproval(testNow.Add(time.Hour))
	assert.True(t, changed)
	assert.Equal(t, VerificationApproved, r.Verification.Status)
	assert.Equal(t, "address mismatch", r.Verification.Comment, "comment retained for audit")
	assert.False(t, r.Blocked())

	// Duplicate approval is an idempotent no-op: timestamps untouched.
	decidedAt := r.Verification.DecidedAt
	changed = r.ApplyApproval(testNow.Add(2 * time.Hour))
	assert.False(t, changed)
	assert.Equal(t, decidedAt, r.Verification.DecidedAt)
}

func TestCanDeny_RequiresReason(t *testing.T) {
	r := newTestResident(t)

	for _, comment := range []string{"", "   ", "\t\n"} {
		err := r.CanDeny(comment)
		require.Error(t, err, "comment %q", comment)
		assert.True(t, dErrors.HasCode(err, dErrors.CodeValidation))
		assert.Equal(t, VerificationPending, r.Verification.Status, "no partial state change")
	}

	require.NoError(t, r.CanDeny("Address mismatch"))
}

func TestApplyDenial_BlocksResident(t *testing.T) {
	r := newTestResident(t)
	changed := r.ApplyDenial("ID expired", testNow)

	assert.True(t, changed)
	assert.Equal(t, VerificationDenied, r.Verification.Status)
	assert.Equal(t, "ID expired", r.Verification.Comment)
	assert.True(t, r.Blocked())

	// Re-denying with the same reason is an idempotent no-op: timestamps
	// untouched, mirroring duplicate approvals.
	decidedAt := r.Verification.DecidedAt
	changed = r.ApplyDenial("ID expired", testNow.Add(time.Hour))
	assert.False(t, changed)
	assert.Equal(t, decidedAt, r.Verification.DecidedAt)

	// A different reason is a real decision and re-records.
	changed = r.ApplyDenial("address mismatch", testNow.Add(2*time.Hour))
	assert.True(t, changed)
	assert.Equal(t, "address mismatch", r.Verification.Comment)
	assert.Equal(t, testNow.Add(2*time.Hour), r.Verification.DecidedAt)
}

func TestSoftDeleteLifecycle(t *testing.T) {
	r := newTestResident(t)
	r.ApplyDenial("incomplete documents", testNow)

	r.MarkDeleted(testNow)
	assert.True(t, r.IsDeleted())

	r.ClearDeleted()
	assert.False(t, r.IsDeleted())
	assert.Equal(t, VerificationDenied, r.Verification.Status, "restore does not alter verification status")
}

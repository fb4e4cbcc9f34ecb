// Package domain holds shared domain primitives: typed identifiers used
// across services. Typed IDs prevent cross-entity assignment at compile time
// and enforce validity at trust boundaries via the Parse functions.
package domain

import (
	"github.com/google/uuid"

	dErrors "civreg/pkg/domain-errors"
)

// ResidentID identifies a resident record.
type ResidentID uuid.UUID

// ProjectID identifies a community development project.
type ProjectID uuid.UUID

// ActivityID identifies an activity log entry.
type ActivityID uuid.UUID

// UserID identifies an authenticated console user (admin or staff actor).
type UserID uuid.UUID

// FeedbackID identifies a project feedback entry.
type FeedbackID uuid.UUID

func parseUUID(s, what string) (uuid.UUID, error) {
	if s == "" {
		return uuid.Nil, dErrors.New(dErrors.CodeInvalidInput, what+" id must not be empty")
	}
	u, err := uuid.Parse(s)
	if err != nil {
		return uuid.Nil, dErrors.New(dErrors.CodeInvalidInput, "invalid "+what+" id")
	}
	if u == uuid.Nil {
		return uuid.Nil, dErrors.New(dErrors.CodeInvalidInput, what+" id must not be nil")
	}
	return u, nil
}

// ParseResidentID validates and returns a ResidentID.
func ParseResidentID(s string) (ResidentID, error) {
	u, err := parseUUID(s, "resident")
	return ResidentID(u), err
}

// ParseProjectID validates and returns a ProjectID.
func ParseProjectID(s string) (ProjectID, error) {
	u, err := parseUUID(s, "project")
	return ProjectID(u), err
}

// ParseActivityID validates and returns an ActivityID.
func ParseActivityID(s string) (ActivityID, error) {
	u, err := parseUUID(s, "activity")
	return ActivityID(u), err
}

// ParseUserID validates and returns a UserID.
func ParseUserID(s string) (UserID, error) {
	u, err := parseUUID(s, "user")
	return UserID(u), err
}

// ParseFeedbackID validates and returns a FeedbackID.
func ParseFeedbackID(s string) (FeedbackID, error) {
	u, err := parseUUID(s, "feedback")
	return FeedbackID(u), err
}

func (id ResidentID) String() string { return uuid.UUID(id).String() }
func (id ProjectID) String() string  { return uuid.UUID(id).String() }
func (id ActivityID) String() string { return uuid.UUID(id).String() }
func (id UserID) String() string     { return uuid.UUID(id).String() }
func (id FeedbackID) String() string { return uuid.UUID(id).String() }

func (id ResidentID) IsNil() bool { return uuid.UUID(id) == uuid.Nil }
func (id ProjectID) IsNil() bool  { return uuid.UUID(id) == uuid.Nil }
func (id ActivityID) IsNil() bool { return uuid.UUID(id) == uuid.Nil }
func (id UserID) IsNil() bool     { return uuid.UUID(id) == uuid.Nil }
func (id FeedbackID) IsNil() bool { return uuid.UUID(id) == uuid.Nil }

// The defined types do not inherit uuid.UUID's methods, so without these the
// IDs would JSON-encode as raw byte arrays anywhere a model is written
// directly to the wire.

func (id ResidentID) MarshalText() ([]byte, error) { return []byte(uuid.UUID(id).String()), nil }
func (id ProjectID) MarshalText() ([]byte, error)  { return []byte(uuid.UUID(id).String()), nil }
func (id ActivityID) MarshalText() ([]byte, error) { return []byte(uuid.UUID(id).String()), nil }
func (id UserID) MarshalText() ([]byte, error)     { return []byte(uuid.UUID(id).String()), nil }
func (id FeedbackID) MarshalText() ([]byte, error) { return []byte(uuid.UUID(id).String()), nil }

func (id *ResidentID) UnmarshalText(b []byte) error {
	u, err := uuid.ParseBytes(b)
	if err != nil {
		return err
	}
	*id = ResidentID(u)
	return nil
}

func (id *ProjectID) UnmarshalText(b []byte) error {
	u, err := uuid.ParseBytes(b)
	if err != nil {
		return err
	}
	*id = ProjectID(u)
	return nil
}

func (id *ActivityID) UnmarshalText(b []byte) error {
	u, err := uuid.ParseBytes(b)
	if err != nil {
		return err
	}
	*id = ActivityID(u)
	return nil
}

func (id *UserID) UnmarshalText(b []byte) error {
	u, err := uuid.ParseBytes(b)
	if err != nil {
		return err
	}
	*id = UserID(u)
	return nil
}

func (id *FeedbackID) UnmarshalText(b []byte) error {
	u, err := uuid.ParseBytes(b)
	if err != nil {
		return err
	}
	*id = FeedbackID(u)
	return nil
}

// NewResidentID mints a fresh resident identifier.
func NewResidentID() ResidentID { return ResidentID(uuid.New()) }

// NewProjectID mints a fresh project identifier.
func NewProjectID() ProjectID { return ProjectID(uuid.New()) }

// NewActivityID mints a fresh activity identifier.
func NewActivityID() ActivityID { return ActivityID(uuid.New()) }

// NewUserID mints a fresh user identifier.
func NewUserID() UserID { return UserID(uuid.New()) }

// NewFeedbackID mints a fresh feedback identifier.
func NewFeedbackID() FeedbackID { return FeedbackID(uuid.New()) }

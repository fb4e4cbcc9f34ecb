package models

import (
	"strings"
	"time"

	"civreg/internal/freshness"
	id "civreg/pkg/domain"
	dErrors "civreg/pkg/domain-errors"
)

// VerificationStatus is the profile verification lifecycle state.
type VerificationStatus string

const (
	VerificationPending  VerificationStatus = "pending"
	VerificationApproved VerificationStatus = "approved"
	VerificationDenied   VerificationStatus = "denied"
)

// ParseVerificationStatus returns the status for a filter value, or "" when
// unknown.
func ParseVerificationStatus(s string) VerificationStatus {
	switch VerificationStatus(s) {
	case VerificationPending, VerificationApproved, VerificationDenied:
		return VerificationStatus(s)
	default:
		return ""
	}
}

// VerificationDecision is the current decision for a resident. History is not
// modeled; a new decision overwrites this one. The denial comment is retained
// after a later approval for audit purposes, it just stops being blocking.
type VerificationDecision struct {
	Status    VerificationStatus `json:"status"`
	Comment   string             `json:"comment,omitempty"`
	DecidedAt time.Time          `json:"decided_at"`
}

// Role is the console account role a resident record is associated with.
type Role string

const (
	RoleAdmin    Role = "admin"
	RoleResident Role = "resident"
	RoleStaff    Role = "staff"
)

// ParseRole returns the role for a tab filter value, or "" when unknown.
func ParseRole(s string) Role {
	switch Role(s) {
	case RoleAdmin, RoleResident, RoleStaff:
		return Role(s)
	default:
		return ""
	}
}

// Resident is the primary entity tracked by the registry.
//
// Invariants:
//   - FirstName and LastName are non-empty
//   - Verification.Status is one of pending/approved/denied, pending initially
//   - Any field edit refreshes LastModified (Touch)
//   - The derived freshness status is never stored; recompute via DerivedStatus
//   - Deletion is soft: DeletedAt marks membership in the recently-deleted set
type Resident struct {
	ID id.ResidentID `json:"id"`

	FirstName  string `json:"first_name"`
	MiddleName string `json:"middle_name,omitempty"`
	LastName   string `json:"last_name"`
	Suffix     string `json:"suffix,omitempty"`

	Age         int    `json:"age"`
	Sex         string `json:"sex"`
	CivilStatus string `json:"civil_status"`
	Nationality string `json:"nationality"`
	Religion    string `json:"religion"`

	ContactNumber string `json:"contact_number,omitempty"`
	Email         string `json:"email,omitempty"`
	Address       string `json:"address,omitempty"`

	Role      Role `json:"role"`
	ForReview bool `json:"for_review"`

	Verification VerificationDecision `json:"verification"`

	CreatedAt    time.Time  `json:"created_at"`
	LastModified *time.Time `json:"last_modified,omitempty"`
	UpdatedAt    *time.Time `json:"updated_at,omitempty"`
	DeletedAt    *time.Time `json:"deleted_at,omitempty"`
}

// NewResident constructs a pending resident, validating invariants.
func NewResident(residentID id.ResidentID, firstName, lastName string, now time.Time) (*Resident, error) {
	if strings.TrimSpace(firstName) == "" {
		return nil, dErrors.New(dErrors.CodeInvariantViolation, "resident first name cannot be empty")
	}
	if strings.TrimSpace(lastName) == "" {
		return nil, dErrors.New(dErrors.CodeInvariantViolation, "resident last name cannot be empty")
	}
	modified := now
	return &Resident{
		ID:           residentID,
		FirstName:    firstName,
		LastName:     lastName,
		Role:         RoleResident,
		Verification: VerificationDecision{Status: VerificationPending},
		CreatedAt:    now,
		LastModified: &modified,
		UpdatedAt:    &modified,
	}, nil
}

// DisplayName concatenates the name parts for search and report rows. The
// suffix is omitted when it is literally "none".
func (r *Resident) DisplayName() string {
	parts := make([]string, 0, 4)
	for _, p := range []string{r.FirstName, r.MiddleName, r.LastName} {
		if p != "" {
			parts = append(parts, p)
		}
	}
	if r.Suffix != "" && !strings.EqualFold(r.Suffix, "none") {
		parts = append(parts, r.Suffix)
	}
	return strings.Join(parts, " ")
}

// ReferenceTime is the timestamp source for freshness classification:
// last_modified preferred, updated_at as fallback.
func (r *Resident) ReferenceTime() *time.Time {
	return freshness.ReferenceTime(r.LastModified, r.UpdatedAt)
}

// DerivedStatus recomputes the freshness category. Never cached.
func (r *Resident) DerivedStatus(now time.Time) freshness.Status {
	return freshness.Classify(r.ReferenceTime(), now)
}

// Blocked reports whether the read-side policy hides detail/edit for this
// resident. The workflow only exposes the fact; enforcement is the caller's.
func (r *Resident) Blocked() bool {
	return r.Verification.Status == VerificationDenied
}

// IsDeleted reports membership in the recently-deleted set.
func (r *Resident) IsDeleted() bool {
	return r.DeletedAt != nil
}

// Touch refreshes the modification timestamps after a field edit.
func (r *Resident) Touch(now time.Time) {
	modified := now
	r.LastModified = &modified
	r.UpdatedAt = &modified
}

// ApplyApproval transitions to approved. Returns false when the resident is
// already approved, in which case nothing changes - duplicate approvals are
// idempotent and must not refresh timestamps.
func (r *Resident) ApplyApproval(now time.Time) bool {
	if r.Verification.Status == VerificationApproved {
		return false
	}
	// Comment retained for audit; no longer user-facing as a blocking reason.
	r.Verification.Status = VerificationApproved
	r.Verification.DecidedAt = now
	return true
}

// CanDeny validates the denial precondition: a reason is mandatory. Checked
// before any state mutation.
func (r *Resident) CanDeny(comment string) error {
	if strings.TrimSpace(comment) == "" {
		return dErrors.New(dErrors.CodeValidation, "denial requires a reason comment")
	}
	return nil
}

// ApplyDenial transitions to denied and stores the reason. Call CanDeny first.
// Returns false when the resident is already denied with the same comment, in
// which case nothing changes - like ApplyApproval, a repeated decision must
// not refresh timestamps. A new comment re-records the denial.
func (r *Resident) ApplyDenial(comment string, now time.Time) bool {
	if r.Verification.Status == VerificationDenied && r.Verification.Comment == comment {
		return false
	}
	r.Verification.Status = VerificationDenied
	r.Verification.Comment = comment
	r.Verification.DecidedAt = now
	return true
}

// MarkDeleted moves the resident into the recently-deleted set.
func (r *Resident) MarkDeleted(now time.Time) {
	deleted := now
	r.DeletedAt = &deleted
}

// ClearDeleted moves the resident back into the active set. Verification
// status is untouched.
func (r *Resident) ClearDeleted() {
	r.DeletedAt = nil
}

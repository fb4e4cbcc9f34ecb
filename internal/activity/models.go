// Package activity is the append-only audit trail of the registry console.
// Entries are immutable once recorded; the only removal path is the bulk
// retention cleanup run by the Worker.
package activity

import (
	"time"

	id "civreg/pkg/domain"
)

// Entry is one activity log record. ActorID nil means the system itself acted.
type Entry struct {
	ID          id.ActivityID `json:"id"`
	ActorID     *id.UserID    `json:"actor_id,omitempty"`
	Action      string        `json:"action"`
	ModelType   string        `json:"model_type,omitempty"`
	ModelID     string        `json:"model_id,omitempty"`
	Description string        `json:"description,omitempty"`
	IPAddress   string        `json:"ip_address,omitempty"`
	CreatedAt   time.Time     `json:"created_at"`
}

// Actions recorded by the console. Free-form strings are allowed; these cover
// the built-in flows.
const (
	ActionResidentCreated      = "resident_created"
	ActionResidentUpdated      = "resident_updated"
	ActionResidentDeleted      = "resident_deleted"
	ActionResidentRestored     = "resident_restored"
	ActionVerificationApproved = "verification_approved"
	ActionVerificationDenied   = "verification_denied"
	ActionProjectCreated       = "project_created"
	ActionProjectUpdated       = "project_updated"
	ActionProjectPublished     = "project_published"
	ActionProjectCompleted     = "project_completed"
	ActionReactionRecorded     = "reaction_recorded"
	ActionFeedbackRecorded     = "feedback_recorded"
)

// SystemEntry builds an entry attributed to the system rather than a user.
func SystemEntry(action, modelType, modelID, description string) Entry {
	return Entry{
		Action:      action,
		ModelType:   modelType,
		ModelID:     modelID,
		Description: description,
	}
}

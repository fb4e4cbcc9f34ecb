// Package models defines community development projects and their engagement
// records.
package models

import (
	"strings"
	"time"

	id "civreg/pkg/domain"
	dErrors "civreg/pkg/domain-errors"
)

// Status is a project's lifecycle phase.
type Status string

const (
	StatusPlanned    Status = "Planned"
	StatusInProgress Status = "In Progress"
	StatusCompleted  Status = "Completed"
)

// ParseStatus validates a raw lifecycle status.
func ParseStatus(s string) (Status, error) {
	switch Status(s) {
	case StatusPlanned, StatusInProgress, StatusCompleted:
		return Status(s), nil
	default:
		return "", dErrors.New(dErrors.CodeInvalidInput, "unknown project status: "+s)
	}
}

// Project is a community development project. "Posted" and "record" are
// independent facets: a project can be both, either, or neither.
type Project struct {
	ID            id.ProjectID
	Title         string
	Description   string
	Status        Status
	Published     bool
	CompletedAt   *time.Time
	Remarks       string
	UploadedFiles []string
	CreatedAt     time.Time
	UpdatedAt     time.Time
}

// NewProject creates a planned, unpublished project.
func NewProject(projectID id.ProjectID, title string, now time.Time) (*Project, error) {
	if strings.TrimSpace(title) == "" {
		return nil, dErrors.New(dErrors.CodeInvariantViolation, "project title is required")
	}
	return &Project{
		ID:        projectID,
		Title:     strings.TrimSpace(title),
		Status:    StatusPlanned,
		CreatedAt: now,
		UpdatedAt: now,
	}, nil
}

// IsPosted reports whether the project is visible to residents.
func (p *Project) IsPosted() bool { return p.Published }

// IsRecord reports whether the project functions as a completed record.
func (p *Project) IsRecord() bool { return p.Status == StatusCompleted }

// Publish makes the project visible. Publishing twice is a no-op.
func (p *Project) Publish(now time.Time) {
	if p.Published {
		return
	}
	p.Published = true
	p.UpdatedAt = now
}

// Unpublish hides the project without touching its lifecycle status.
func (p *Project) Unpublish(now time.Time) {
	if !p.Published {
		return
	}
	p.Published = false
	p.UpdatedAt = now
}

// Complete moves the project to its record form. Remarks replace any prior
// value; completing an already completed project only refreshes remarks.
func (p *Project) Complete(remarks string, now time.Time) {
	if p.Status != StatusCompleted {
		p.Status = StatusCompleted
		completed := now
		p.CompletedAt = &completed
	}
	p.Remarks = remarks
	p.UpdatedAt = now
}

// ReactionKind is a single engagement vote.
type ReactionKind string

const (
	ReactionLike    ReactionKind = "like"
	ReactionDislike ReactionKind = "dislike"
)

// ParseReactionKind validates a raw reaction kind.
func ParseReactionKind(s string) (ReactionKind, error) {
	switch ReactionKind(s) {
	case ReactionLike, ReactionDislike:
		return ReactionKind(s), nil
	default:
		return "", dErrors.New(dErrors.CodeInvalidInput, "unknown reaction kind: "+s)
	}
}

// Reaction records one user's current vote on a project. A user holds at most
// one reaction per project; changing it replaces the previous vote.
type Reaction struct {
	ProjectID id.ProjectID
	UserID    id.UserID
	Kind      ReactionKind
	CreatedAt time.Time
}

// Feedback is a free-text comment attached to a project.
type Feedback struct {
	ID        id.FeedbackID
	ProjectID id.ProjectID
	UserID    id.UserID
	Comment   string
	CreatedAt time.Time
}

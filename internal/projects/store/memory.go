// Package store provides project, reaction, and feedback persistence.
// Implementations return sentinel errors; services translate them into
// domain errors.
package store

import (
	"context"
	"sync"

	"civreg/internal/projects/models"
	id "civreg/pkg/domain"
	"civreg/pkg/platform/sentinel"
)

// InMemory keeps projects and their engagement records in mutex-guarded
// maps. It backs unit tests and local development.
type InMemory struct {
	mu        sync.RWMutex
	projects  map[id.ProjectID]models.Project
	reactions map[id.ProjectID]map[id.UserID]models.Reaction
	feedback  map[id.ProjectID][]models.Feedback
}

func NewInMemory() *InMemory {
	return &InMemory{
		projects:  make(map[id.ProjectID]models.Project),
		reactions: make(map[id.ProjectID]map[id.UserID]models.Reaction),
		feedback:  make(map[id.ProjectID][]models.Feedback),
	}
}

func (s *InMemory) Create(_ context.Context, p *models.Project) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	if _, ok := s.projects[p.ID]; ok {
		return sentinel.ErrConflict
	}
	s.projects[p.ID] = *p
	return nil
}

func (s *InMemory) Save(_ context.Context, p *models.Project) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	if _, ok := s.projects[p.ID]; !ok {
		return sentinel.ErrNotFound
	}
	s.projects[p.ID] = *p
	return nil
}

func (s *InMemory) FindByID(_ context.Context, projectID id.ProjectID) (*models.Project, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()
	if p, ok := s.projects[projectID]; ok {
		copied := p
		return &copied, nil
	}
	return nil, sentinel.ErrNotFound
}

// List returns all projects. Order is unspecified; callers sort or filter.
func (s *InMemory) List(_ context.Context) ([]*models.Project, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()
	out := make([]*models.Project, 0, len(s.projects))
	for _, p := range s.projects {
		copied := p
		out = append(out, &copied)
	}
	return out, nil
}

// Mutate atomically loads, transforms, and saves one project. The update is
// aborted when fn returns an error.
func (s *InMemory) Mutate(_ context.Context, projectID id.ProjectID, fn func(*models.Project) error) (*models.Project, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	p, ok := s.projects[projectID]
	if !ok {
		return nil, sentinel.ErrNotFound
	}
	if err := fn(&p); err != nil {
		return nil, err
	}
	s.projects[projectID] = p
	copied := p
	return &copied, nil
}

// SaveReaction upserts a user's reaction and returns the kind it replaced,
// empty when the user had not reacted before.
func (s *InMemory) SaveReaction(_ context.Context, r models.Reaction) (models.ReactionKind, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	if _, ok := s.projects[r.ProjectID]; !ok {
		return "", sentinel.ErrNotFound
	}
	byUser, ok := s.reactions[r.ProjectID]
	if !ok {
		byUser = make(map[id.UserID]models.Reaction)
		s.reactions[r.ProjectID] = byUser
	}
	var previous models.ReactionKind
	if existing, ok := byUser[r.UserID]; ok {
		previous = existing.Kind
	}
	byUser[r.UserID] = r
	return previous, nil
}

// ListReactions returns a project's current reactions.
func (s *InMemory) ListReactions(_ context.Context, projectID id.ProjectID) ([]models.Reaction, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()
	byUser := s.reactions[projectID]
	out := make([]models.Reaction, 0, len(byUser))
	for _, r := range byUser {
		out = append(out, r)
	}
	return out, nil
}

// ListAllReactions returns every reaction across projects.
func (s *InMemory) ListAllReactions(_ context.Context) ([]models.Reaction, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()
	var out []models.Reaction
	for _, byUser := range s.reactions {
		for _, r := range byUser {
			out = append(out, r)
		}
	}
	return out, nil
}

func (s *InMemory) AddFeedback(_ context.Context, f models.Feedback) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	if _, ok := s.projects[f.ProjectID]; !ok {
		return sentinel.ErrNotFound
	}
	s.feedback[f.ProjectID] = append(s.feedback[f.ProjectID], f)
	return nil
}

// ListFeedback returns a project's feedback entries in insertion order.
func (s *InMemory) ListFeedback(_ context.Context, projectID id.ProjectID) ([]models.Feedback, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()
	entries := s.feedback[projectID]
	out := make([]models.Feedback, len(entries))
	copy(out, entries)
	return out, nil
}

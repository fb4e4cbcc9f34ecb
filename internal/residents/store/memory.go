// Package store provides resident persistence. Implementations return
// sentinel errors; services translate them into domain errors.
package store

import (
	"context"
	"sync"
	"time"

	"civreg/internal/residents/models"
	id "civreg/pkg/domain"
	"civreg/pkg/platform/sentinel"
)

// InMemory keeps residents in a mutex-guarded map. It favors clarity over
// performance and backs unit tests and local development.
type InMemory struct {
	mu        sync.RWMutex
	residents map[id.ResidentID]models.Resident
}

func NewInMemory() *InMemory {
	return &InMemory{residents: make(map[id.ResidentID]models.Resident)}
}

func (s *InMemory) Create(_ context.Context, r *models.Resident) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	if _, ok := s.residents[r.ID]; ok {
		return sentinel.ErrConflict
	}
	s.residents[r.ID] = *r
	return nil
}

func (s *InMemory) Save(_ context.Context, r *models.Resident) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	if _, ok := s.residents[r.ID]; !ok {
		return sentinel.ErrNotFound
	}
	s.residents[r.ID] = *r
	return nil
}

func (s *InMemory) FindByID(_ context.Context, residentID id.ResidentID) (*models.Resident, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()
	if r, ok := s.residents[residentID]; ok {
		copied := r
		return &copied, nil
	}
	return nil, sentinel.ErrNotFound
}

// List returns active residents. Order is unspecified; callers sort.
func (s *InMemory) List(_ context.Context) ([]*models.Resident, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()
	out := make([]*models.Resident, 0, len(s.residents))
	for _, r := range s.residents {
		if r.IsDeleted() {
			continue
		}
		copied := r
		out = append(out, &copied)
	}
	return out, nil
}

// ListDeleted returns the recently-deleted set.
func (s *InMemory) ListDeleted(_ context.Context) ([]*models.Resident, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()
	var out []*models.Resident
	for _, r := range s.residents {
		if !r.IsDeleted() {
			continue
		}
		copied := r
		out = append(out, &copied)
	}
	return out, nil
}

// Mutate applies fn to the resident under the store lock, making the
// read-modify-write atomic. fn returning an error aborts without persisting.
func (s *InMemory) Mutate(_ context.Context, residentID id.ResidentID, fn func(*models.Resident) error) (*models.Resident, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	r, ok := s.residents[residentID]
	if !ok {
		return nil, sentinel.ErrNotFound
	}
	if err := fn(&r); err != nil {
		return nil, err
	}
	s.residents[residentID] = r
	copied := r
	return &copied, nil
}

// SoftDelete marks the resident deleted; Restore clears the mark. Both are
// expressed through Mutate so the state check and write stay atomic.
func (s *InMemory) SoftDelete(ctx context.Context, residentID id.ResidentID, now time.Time) error {
	_, err := s.Mutate(ctx, residentID, func(r *models.Resident) error {
		if r.IsDeleted() {
			return sentinel.ErrInvalidState
		}
		r.MarkDeleted(now)
		return nil
	})
	return err
}

func (s *InMemory) Restore(ctx context.Context, residentID id.ResidentID) error {
	_, err := s.Mutate(ctx, residentID, func(r *models.Resident) error {
		if !r.IsDeleted() {
			return sentinel.ErrInvalidState
		}
		r.ClearDeleted()
		return nil
	})
	return err
}

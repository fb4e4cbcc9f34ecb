package viewstate

import (
	"sync"

	dErrors "civreg/pkg/domain-errors"
)

var (
	errNoYear   = dErrors.New(dErrors.CodeValidation, "select a year before selecting a month")
	errBadMonth = dErrors.New(dErrors.CodeValidation, "month must be between 1 and 12")
)

// Sequencer orders overlapping refreshes. Each fetch is tagged with Next();
// Apply accepts a response only when no newer fetch has started since, so a
// slow early refetch can never overwrite a faster later one.
type Sequencer struct {
	mu      sync.Mutex
	issued  uint64
	applied uint64
}

// Next tags a new fetch with a monotonically increasing sequence number.
func (s *Sequencer) Next() uint64 {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.issued++
	return s.issued
}

// Apply runs fn when the response for seq is still the newest outstanding
// fetch. Out-of-order responses return CodeStale without running fn; callers
// drop those silently.
func (s *Sequencer) Apply(seq uint64, fn func()) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	if seq < s.issued || seq <= s.applied {
		return dErrors.New(dErrors.CodeStale, "stale fetch response discarded")
	}
	s.applied = seq
	fn()
	return nil
}

package execgraph

import (
	"context"
	"sync"

	"github.com/nucleus/agentlang/internal/agerrors"
)

// SuspensionStore holds Checkpoints between the RunToCheckpoint call that
// produced them and the ResumeFromCheckpoint call that consumes them. The
// Temporal wiring in temporal.go uses one to hand a checkpoint from the
// workflow function's first activity invocation across to its resume
// activity once a signal arrives.
type SuspensionStore interface {
	Put(ctx context.Context, cp *Checkpoint) error
	Take(ctx context.Context, suspensionID string) (*Checkpoint, error)
}

// MemoryStore is a process-local SuspensionStore, the default for tests and
// for a single-process worker (the in-memory analogue of internal/resolver's
// Memory resolver).
type MemoryStore struct {
	mu   sync.Mutex
	byID map[string]*Checkpoint
}

// NewMemoryStore returns an empty MemoryStore.
func NewMemoryStore() *MemoryStore {
	return &MemoryStore{byID: map[string]*Checkpoint{}}
}

func (s *MemoryStore) Put(_ context.Context, cp *Checkpoint) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.byID[cp.SuspensionID] = cp
	return nil
}

func (s *MemoryStore) Take(_ context.Context, suspensionID string) (*Checkpoint, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	cp, ok := s.byID[suspensionID]
	if !ok {
		return nil, agerrors.New(agerrors.NotFound, "no pending suspension: "+suspensionID)
	}
	delete(s.byID, suspensionID)
	return cp, nil
}

var _ SuspensionStore = (*MemoryStore)(nil)

package storage

import (
	"context"
	"sync"

	"alphachip/internal/model"
)

type MemoryStore struct {
	mu          sync.RWMutex
	initialized bool
	models      map[string]model.ModelSnapshot
	states      map[string]model.ChipState
	history     map[string][]float64
}

func NewMemoryStore() *MemoryStore {
	return &MemoryStore{}
}

func (s *MemoryStore) Init(_ context.Context) error {
	s.mu.Lock()
	defer s.mu.Unlock()

	s.initialized = true
	s.models = make(map[string]model.ModelSnapshot)
	s.states = make(map[string]model.ChipState)
	s.history = make(map[string][]float64)
	return nil
}

func (s *MemoryStore) SaveModel(_ context.Context, snapshot model.ModelSnapshot) error {
	s.mu.Lock()
	defer s.mu.Unlock()

	s.models[snapshot.Slot] = snapshot
	return nil
}

func (s *MemoryStore) GetModel(_ context.Context, slot string) (model.ModelSnapshot, bool, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()

	snapshot, ok := s.models[slot]
	return snapshot, ok, nil
}

func (s *MemoryStore) SaveChipState(_ context.Context, runID string, state model.ChipState) error {
	s.mu.Lock()
	defer s.mu.Unlock()

	s.states[runID] = state.Clone()
	return nil
}

func (s *MemoryStore) GetChipState(_ context.Context, runID string) (model.ChipState, bool, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()

	state, ok := s.states[runID]
	if !ok {
		return model.ChipState{}, false, nil
	}
	return state.Clone(), true, nil
}

func (s *MemoryStore) SaveRewardHistory(_ context.Context, runID string, history []float64) error {
	s.mu.Lock()
	defer s.mu.Unlock()

	s.history[runID] = append([]float64(nil), history...)
	return nil
}

func (s *MemoryStore) GetRewardHistory(_ context.Context, runID string) ([]float64, bool, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()

	history, ok := s.history[runID]
	if !ok {
		return nil, false, nil
	}
	return append([]float64(nil), history...), true, nil
}

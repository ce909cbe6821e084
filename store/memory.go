package store

import (
	"context"
	"sync"

	"github.com/gofrs/uuid"
	"gorm.io/gorm"

	"github.com/sanskar717/stablecoin-backend/core"
)

// MemoryPositionStore keeps positions in process memory. Misses are
// reported as gorm.ErrRecordNotFound so callers handle both stores the
// same way.
type MemoryPositionStore struct {
	mu        sync.RWMutex
	positions map[uuid.UUID]*core.Position
	order     []uuid.UUID
}

func NewMemoryPositionStore() *MemoryPositionStore {
	return &MemoryPositionStore{
		positions: make(map[uuid.UUID]*core.Position),
	}
}

func (s *MemoryPositionStore) GetPosition(ctx context.Context, accountId uuid.UUID) (*core.Position, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()

	position, ok := s.positions[accountId]
	if !ok {
		return nil, gorm.ErrRecordNotFound
	}
	return position.Clone(), nil
}

func (s *MemoryPositionStore) UpsertPosition(ctx context.Context, position *core.Position) error {
	s.mu.Lock()
	defer s.mu.Unlock()

	if _, ok := s.positions[position.AccountId]; !ok {
		s.order = append(s.order, position.AccountId)
	}
	s.positions[position.AccountId] = position.Clone()
	return nil
}

func (s *MemoryPositionStore) ListPositions(ctx context.Context) ([]*core.Position, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()

	positions := make([]*core.Position, 0, len(s.order))
	for _, accountId := range s.order {
		positions = append(positions, s.positions[accountId].Clone())
	}
	return positions, nil
}

package outreach

import (
	"context"
	"fmt"
	"sync"
	"time"

	"github.com/engagehub/pkg/models"
)

// Store persists outreach records. Per-customer history is append-only;
// records update in place but are never removed. CompleteOutreach is the
// check-and-set for the completion transition: it must fail
// ErrAlreadyCompleted under the store's own lock so two concurrent
// completions cannot both pass.
type Store interface {
	PutOutreach(ctx context.Context, o *models.Outreach) error
	GetOutreach(ctx context.Context, id string) (*models.Outreach, error)
	CompleteOutreach(ctx context.Context, id string, at time.Time, outcome string, trustDelta float64) (*models.Outreach, error)
	ListByCustomer(ctx context.Context, customerID string) ([]*models.Outreach, error)
	ListOutreach(ctx context.Context) ([]*models.Outreach, error)
}

type MemoryStore struct {
	mu         sync.RWMutex
	byID       map[string]*models.Outreach
	byCustomer map[string][]string
	order      []string
}

func NewMemoryStore() *MemoryStore {
	return &MemoryStore{
		byID:       make(map[string]*models.Outreach),
		byCustomer: make(map[string][]string),
	}
}

func (s *MemoryStore) PutOutreach(ctx context.Context, o *models.Outreach) error {
	s.mu.Lock()
	defer s.mu.Unlock()

	if _, exists := s.byID[o.ID]; !exists {
		s.byCustomer[o.CustomerID] = append(s.byCustomer[o.CustomerID], o.ID)
		s.order = append(s.order, o.ID)
	}
	cp := *o
	s.byID[o.ID] = &cp
	return nil
}

func (s *MemoryStore) GetOutreach(ctx context.Context, id string) (*models.Outreach, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()

	o, ok := s.byID[id]
	if !ok {
		return nil, fmt.Errorf("outreach %s: %w", id, models.ErrNotFound)
	}
	cp := *o
	return &cp, nil
}

func (s *MemoryStore) CompleteOutreach(ctx context.Context, id string, at time.Time, outcome string, trustDelta float64) (*models.Outreach, error) {
	s.mu.Lock()
	defer s.mu.Unlock()

	o, ok := s.byID[id]
	if !ok {
		return nil, fmt.Errorf("outreach %s: %w", id, models.ErrNotFound)
	}
	if o.CompletedAt != nil {
		return nil, fmt.Errorf("outreach %s: %w", id, models.ErrAlreadyCompleted)
	}
	o.CompletedAt = &at
	o.Outcome = outcome
	o.TrustDelta = trustDelta
	cp := *o
	return &cp, nil
}

func (s *MemoryStore) ListByCustomer(ctx context.Context, customerID string) ([]*models.Outreach, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()

	ids := s.byCustomer[customerID]
	out := make([]*models.Outreach, 0, len(ids))
	for _, id := range ids {
		cp := *s.byID[id]
		out = append(out, &cp)
	}
	return out, nil
}

func (s *MemoryStore) ListOutreach(ctx context.Context) ([]*models.Outreach, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()

	out := make([]*models.Outreach, 0, len(s.order))
	for _, id := range s.order {
		cp := *s.byID[id]
		out = append(out, &cp)
	}
	return out, nil
}

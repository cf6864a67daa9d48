package playbook

import (
	"context"
	"errors"
	"fmt"
	"sync"

	"github.com/engagehub/pkg/models"
)

// ErrPlaybookActive means the customer already has a running playbook of the
// same type.
var ErrPlaybookActive = errors.New("playbook already active")

// Store persists recovery playbooks. AddPlaybook enforces at most one active
// playbook per (customer, type) pair atomically.
type Store interface {
	AddPlaybook(ctx context.Context, p *models.RecoveryPlaybook) error
	GetPlaybook(ctx context.Context, id string) (*models.RecoveryPlaybook, error)
	UpdatePlaybook(ctx context.Context, p *models.RecoveryPlaybook) error
	ListByCustomer(ctx context.Context, customerID string) ([]*models.RecoveryPlaybook, error)
}

type MemoryStore struct {
	mu         sync.RWMutex
	byID       map[string]*models.RecoveryPlaybook
	byCustomer map[string][]string
}

func NewMemoryStore() *MemoryStore {
	return &MemoryStore{
		byID:       make(map[string]*models.RecoveryPlaybook),
		byCustomer: make(map[string][]string),
	}
}

func (s *MemoryStore) AddPlaybook(ctx context.Context, p *models.RecoveryPlaybook) error {
	s.mu.Lock()
	defer s.mu.Unlock()

	for _, id := range s.byCustomer[p.CustomerID] {
		existing := s.byID[id]
		if existing.Type == p.Type && existing.Status == models.PlaybookActive {
			return fmt.Errorf("customer %s, type %s: %w", p.CustomerID, p.Type, ErrPlaybookActive)
		}
	}

	cp := clonePlaybook(p)
	s.byID[p.ID] = cp
	s.byCustomer[p.CustomerID] = append(s.byCustomer[p.CustomerID], p.ID)
	return nil
}

func (s *MemoryStore) GetPlaybook(ctx context.Context, id string) (*models.RecoveryPlaybook, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()

	p, ok := s.byID[id]
	if !ok {
		return nil, fmt.Errorf("playbook %s: %w", id, models.ErrNotFound)
	}
	return clonePlaybook(p), nil
}

func (s *MemoryStore) UpdatePlaybook(ctx context.Context, p *models.RecoveryPlaybook) error {
	s.mu.Lock()
	defer s.mu.Unlock()

	if _, ok := s.byID[p.ID]; !ok {
		return fmt.Errorf("playbook %s: %w", p.ID, models.ErrNotFound)
	}
	s.byID[p.ID] = clonePlaybook(p)
	return nil
}

func (s *MemoryStore) ListByCustomer(ctx context.Context, customerID string) ([]*models.RecoveryPlaybook, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()

	ids := s.byCustomer[customerID]
	out := make([]*models.RecoveryPlaybook, 0, len(ids))
	for _, id := range ids {
		out = append(out, clonePlaybook(s.byID[id]))
	}
	return out, nil
}

func clonePlaybook(p *models.RecoveryPlaybook) *models.RecoveryPlaybook {
	cp := *p
	cp.Actions = make([]models.PlaybookAction, len(p.Actions))
	copy(cp.Actions, p.Actions)
	return &cp
}

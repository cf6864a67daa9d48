package directory

import (
	"context"
	"fmt"
	"sort"
	"sync"

	"github.com/engagehub/pkg/models"
)

// MemoryStore is the in-process directory implementation. A single mutex
// serializes updates to any one customer record.
type MemoryStore struct {
	mu        sync.RWMutex
	customers map[string]*models.Customer
}

func NewMemoryStore() *MemoryStore {
	return &MemoryStore{customers: make(map[string]*models.Customer)}
}

func (s *MemoryStore) GetCustomer(ctx context.Context, id string) (*models.Customer, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()

	c, ok := s.customers[id]
	if !ok {
		return nil, fmt.Errorf("customer %s: %w", id, models.ErrNotFound)
	}
	cp := *c
	return &cp, nil
}

func (s *MemoryStore) ListActiveCustomers(ctx context.Context) ([]*models.Customer, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()

	out := make([]*models.Customer, 0, len(s.customers))
	for _, c := range s.customers {
		if !c.Active {
			continue
		}
		cp := *c
		out = append(out, &cp)
	}
	sort.Slice(out, func(i, j int) bool { return out[i].ID < out[j].ID })
	return out, nil
}

// AdjustCustomer applies the mutation to the stored record under the write
// lock and returns a copy of the result. This is the only safe way to do a
// read-modify-write against a customer record.
func (s *MemoryStore) AdjustCustomer(ctx context.Context, id string, mutate func(*models.Customer)) (*models.Customer, error) {
	s.mu.Lock()
	defer s.mu.Unlock()

	c, ok := s.customers[id]
	if !ok {
		return nil, fmt.Errorf("customer %s: %w", id, models.ErrNotFound)
	}
	mutate(c)
	cp := *c
	return &cp, nil
}

func (s *MemoryStore) UpdateCustomer(ctx context.Context, customer *models.Customer) error {
	s.mu.Lock()
	defer s.mu.Unlock()

	if _, ok := s.customers[customer.ID]; !ok {
		return fmt.Errorf("customer %s: %w", customer.ID, models.ErrNotFound)
	}
	cp := *customer
	s.customers[customer.ID] = &cp
	return nil
}

func (s *MemoryStore) PutCustomer(ctx context.Context, customer *models.Customer) error {
	s.mu.Lock()
	defer s.mu.Unlock()

	cp := *customer
	s.customers[customer.ID] = &cp
	return nil
}

// DeactivateCustomer marks a customer inactive. Records are never deleted.
func (s *MemoryStore) DeactivateCustomer(ctx context.Context, id string) error {
	s.mu.Lock()
	defer s.mu.Unlock()

	c, ok := s.customers[id]
	if !ok {
		return fmt.Errorf("customer %s: %w", id, models.ErrNotFound)
	}
	c.Active = false
	return nil
}

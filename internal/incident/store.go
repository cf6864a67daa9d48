package incident

import (
	"context"
	"fmt"
	"sync"

	"github.com/engagehub/pkg/models"
)

// Store persists incident records.
type Store interface {
	PutIncident(ctx context.Context, incident *Incident) error
	GetIncident(ctx context.Context, id string) (*Incident, error)
	ListIncidents(ctx context.Context) ([]*Incident, error)
}

type MemoryStore struct {
	mu        sync.RWMutex
	incidents map[string]*Incident
	order     []string
}

func NewMemoryStore() *MemoryStore {
	return &MemoryStore{incidents: make(map[string]*Incident)}
}

func (s *MemoryStore) PutIncident(ctx context.Context, incident *Incident) error {
	s.mu.Lock()
	defer s.mu.Unlock()

	if _, exists := s.incidents[incident.ID]; !exists {
		s.order = append(s.order, incident.ID)
	}
	s.incidents[incident.ID] = cloneIncident(incident)
	return nil
}

func (s *MemoryStore) GetIncident(ctx context.Context, id string) (*Incident, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()

	incident, ok := s.incidents[id]
	if !ok {
		return nil, fmt.Errorf("incident %s: %w", id, models.ErrNotFound)
	}
	return cloneIncident(incident), nil
}

func (s *MemoryStore) ListIncidents(ctx context.Context) ([]*Incident, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()

	out := make([]*Incident, 0, len(s.order))
	for _, id := range s.order {
		out = append(out, cloneIncident(s.incidents[id]))
	}
	return out, nil
}

func cloneIncident(incident *Incident) *Incident {
	cp := *incident
	cp.ImpactedCustomers = make([]CustomerImpact, len(incident.ImpactedCustomers))
	copy(cp.ImpactedCustomers, incident.ImpactedCustomers)
	return &cp
}

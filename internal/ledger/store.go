package ledger

import (
	"context"
	"fmt"
	"sync"
	"time"

	"github.com/engagehub/pkg/models"
)

// Store persists registrations and follow-up actions. AddRegistration must
// check capacity and duplicates atomically so the invariants hold under
// concurrent callers; RecordAttendance is the equivalent check-and-set for
// feedback immutability — a second feedback submission must fail
// ErrAlreadyCompleted under the store's own lock.
type Store interface {
	AddRegistration(ctx context.Context, capacity int, reg *models.Registration) error
	GetRegistration(ctx context.Context, sessionID, customerID string) (*models.Registration, error)
	RecordAttendance(ctx context.Context, sessionID, customerID string, attended bool, at time.Time, feedback *models.Feedback) (*models.Registration, error)
	UpdateRegistration(ctx context.Context, reg *models.Registration) error
	ListBySession(ctx context.Context, sessionID string) ([]*models.Registration, error)
	ListRegistrations(ctx context.Context) ([]*models.Registration, error)

	AddFollowUp(ctx context.Context, action *models.FollowUpAction) error
	GetFollowUp(ctx context.Context, id string) (*models.FollowUpAction, error)
	UpdateFollowUp(ctx context.Context, action *models.FollowUpAction) error
	ListFollowUps(ctx context.Context) ([]*models.FollowUpAction, error)
}

// MemoryStore keeps per-session registration lists in insertion order. One
// mutex serializes all writes, which is what keeps capacity and the
// one-registration-per-pair rule airtight.
type MemoryStore struct {
	mu        sync.RWMutex
	bySession map[string][]*models.Registration
	followUps map[string]*models.FollowUpAction
	fuOrder   []string
}

func NewMemoryStore() *MemoryStore {
	return &MemoryStore{
		bySession: make(map[string][]*models.Registration),
		followUps: make(map[string]*models.FollowUpAction),
	}
}

func (s *MemoryStore) AddRegistration(ctx context.Context, capacity int, reg *models.Registration) error {
	s.mu.Lock()
	defer s.mu.Unlock()

	regs := s.bySession[reg.SessionID]
	for _, existing := range regs {
		if existing.CustomerID == reg.CustomerID {
			return fmt.Errorf("customer %s, session %s: %w",
				reg.CustomerID, reg.SessionID, models.ErrDuplicateRegistration)
		}
	}
	if len(regs) >= capacity {
		return fmt.Errorf("session %s: %w", reg.SessionID, models.ErrSessionFull)
	}

	cp := *reg
	s.bySession[reg.SessionID] = append(regs, &cp)
	return nil
}

func (s *MemoryStore) GetRegistration(ctx context.Context, sessionID, customerID string) (*models.Registration, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()

	for _, reg := range s.bySession[sessionID] {
		if reg.CustomerID == customerID {
			cp := *reg
			return &cp, nil
		}
	}
	return nil, fmt.Errorf("registration %s/%s: %w", sessionID, customerID, models.ErrNotFound)
}

// RecordAttendance mutates the registration in place under the write lock.
// Feedback is set at most once; a second submission fails ErrAlreadyCompleted
// even when two callers race.
func (s *MemoryStore) RecordAttendance(ctx context.Context, sessionID, customerID string, attended bool, at time.Time, feedback *models.Feedback) (*models.Registration, error) {
	s.mu.Lock()
	defer s.mu.Unlock()

	for _, reg := range s.bySession[sessionID] {
		if reg.CustomerID != customerID {
			continue
		}
		if feedback != nil && reg.Feedback != nil {
			return nil, fmt.Errorf("feedback for %s/%s: %w", sessionID, customerID, models.ErrAlreadyCompleted)
		}
		reg.Attended = attended
		if attended && reg.CheckedInAt == nil {
			checkedIn := at
			reg.CheckedInAt = &checkedIn
		}
		if feedback != nil {
			fb := *feedback
			fb.SubmittedAt = at
			reg.Feedback = &fb
		}
		cp := *reg
		return &cp, nil
	}
	return nil, fmt.Errorf("registration %s/%s: %w", sessionID, customerID, models.ErrNotFound)
}

func (s *MemoryStore) UpdateRegistration(ctx context.Context, reg *models.Registration) error {
	s.mu.Lock()
	defer s.mu.Unlock()

	regs := s.bySession[reg.SessionID]
	for i, existing := range regs {
		if existing.CustomerID == reg.CustomerID {
			cp := *reg
			regs[i] = &cp
			return nil
		}
	}
	return fmt.Errorf("registration %s/%s: %w", reg.SessionID, reg.CustomerID, models.ErrNotFound)
}

func (s *MemoryStore) ListBySession(ctx context.Context, sessionID string) ([]*models.Registration, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()

	return copyRegistrations(s.bySession[sessionID]), nil
}

func (s *MemoryStore) ListRegistrations(ctx context.Context) ([]*models.Registration, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()

	var out []*models.Registration
	for _, regs := range s.bySession {
		out = append(out, copyRegistrations(regs)...)
	}
	return out, nil
}

func copyRegistrations(regs []*models.Registration) []*models.Registration {
	out := make([]*models.Registration, 0, len(regs))
	for _, reg := range regs {
		cp := *reg
		out = append(out, &cp)
	}
	return out
}

func (s *MemoryStore) AddFollowUp(ctx context.Context, action *models.FollowUpAction) error {
	s.mu.Lock()
	defer s.mu.Unlock()

	cp := *action
	s.followUps[action.ID] = &cp
	s.fuOrder = append(s.fuOrder, action.ID)
	return nil
}

func (s *MemoryStore) GetFollowUp(ctx context.Context, id string) (*models.FollowUpAction, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()

	action, ok := s.followUps[id]
	if !ok {
		return nil, fmt.Errorf("follow-up %s: %w", id, models.ErrNotFound)
	}
	cp := *action
	return &cp, nil
}

func (s *MemoryStore) UpdateFollowUp(ctx context.Context, action *models.FollowUpAction) error {
	s.mu.Lock()
	defer s.mu.Unlock()

	if _, ok := s.followUps[action.ID]; !ok {
		return fmt.Errorf("follow-up %s: %w", action.ID, models.ErrNotFound)
	}
	cp := *action
	s.followUps[action.ID] = &cp
	return nil
}

func (s *MemoryStore) ListFollowUps(ctx context.Context) ([]*models.FollowUpAction, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()

	out := make([]*models.FollowUpAction, 0, len(s.fuOrder))
	for _, id := range s.fuOrder {
		cp := *s.followUps[id]
		out = append(out, &cp)
	}
	return out, nil
}

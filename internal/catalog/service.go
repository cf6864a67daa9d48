package catalog

import (
	"context"
	"fmt"
	"log"
	"time"

	"github.com/google/uuid"

	"github.com/engagehub/internal/clock"
	"github.com/engagehub/internal/directory"
	"github.com/engagehub/internal/events"
	"github.com/engagehub/internal/invite"
	"github.com/engagehub/internal/policy"
	"github.com/engagehub/pkg/models"
)

// Service owns the set of scheduled engagement sessions.
type Service struct {
	store      Store
	directory  directory.Store
	dispatcher invite.Dispatcher
	policy     policy.InvitePolicy
	publisher  events.Publisher
	clock      clock.Clock
}

func NewService(
	store Store,
	directoryStore directory.Store,
	dispatcher invite.Dispatcher,
	invitePolicy policy.InvitePolicy,
	publisher events.Publisher,
	clk clock.Clock,
) *Service {
	return &Service{
		store:      store,
		directory:  directoryStore,
		dispatcher: dispatcher,
		policy:     invitePolicy,
		publisher:  publisher,
		clock:      clk,
	}
}

// Schedule validates the request, stores the session, publishes the scheduling
// event and queues invites for eligible customers. Invite delivery is
// decoupled; its failures never unwind the session.
func (s *Service) Schedule(ctx context.Context, spec models.SessionSpec) (*models.Session, error) {
	if !models.ValidSessionType(spec.Type) {
		return nil, fmt.Errorf("unknown session type %q", spec.Type)
	}
	if spec.Duration <= 0 {
		return nil, fmt.Errorf("duration must be positive, got %s", spec.Duration)
	}
	if spec.Capacity <= 0 {
		return nil, fmt.Errorf("capacity must be positive, got %d", spec.Capacity)
	}
	now := s.clock.Now()
	if spec.ScheduledAt.Before(now) && !spec.Backdated {
		return nil, fmt.Errorf("scheduled time %s is in the past", spec.ScheduledAt.Format(time.RFC3339))
	}

	session := &models.Session{
		ID:           uuid.NewString(),
		Type:         spec.Type,
		ScheduledAt:  spec.ScheduledAt,
		Duration:     spec.Duration,
		Capacity:     spec.Capacity,
		Facilitators: spec.Facilitators,
		Agenda:       spec.Agenda,
		CreatedAt:    now,
	}

	if err := s.store.PutSession(ctx, session); err != nil {
		return nil, fmt.Errorf("failed to store session: %w", err)
	}

	event := models.EngagementEvent{
		ID:        uuid.NewString(),
		Type:      models.EventSessionScheduled,
		SessionID: session.ID,
		Timestamp: now,
		Payload: map[string]interface{}{
			"session_type": string(session.Type),
			"capacity":     session.Capacity,
		},
	}
	if err := s.publisher.Publish(ctx, events.TopicSessions, event); err != nil {
		log.Printf("Failed to publish session scheduled event: %v", err)
	}

	// Backdated imports describe sessions that already happened.
	if !spec.Backdated {
		s.autoInvite(ctx, session)
	}

	return session, nil
}

func (s *Service) autoInvite(ctx context.Context, session *models.Session) {
	customers, err := s.directory.ListActiveCustomers(ctx)
	if err != nil {
		log.Printf("Failed to list customers for auto-invite: %v", err)
		return
	}
	for _, customer := range s.policy.Eligible(session.Type, customers) {
		s.dispatcher.DispatchInvite(session, customer)
	}
}

// Get returns the session or ErrNotFound.
func (s *Service) Get(ctx context.Context, id string) (*models.Session, error) {
	return s.store.GetSession(ctx, id)
}

// Upcoming returns up to limit sessions at or after now, ordered by
// ascending scheduled time. limit <= 0 means no limit.
func (s *Service) Upcoming(ctx context.Context, now time.Time, limit int) ([]*models.Session, error) {
	sessions, err := s.store.ListSessions(ctx)
	if err != nil {
		return nil, err
	}
	out := make([]*models.Session, 0, len(sessions))
	for _, session := range sessions {
		if session.ScheduledAt.Before(now) {
			continue
		}
		out = append(out, session)
		if limit > 0 && len(out) == limit {
			break
		}
	}
	return out, nil
}

package ledger

import (
	"context"
	"fmt"
	"log"
	"time"

	"github.com/google/uuid"

	"github.com/engagehub/internal/catalog"
	"github.com/engagehub/internal/clock"
	"github.com/engagehub/internal/directory"
	"github.com/engagehub/internal/events"
	"github.com/engagehub/internal/trust"
	"github.com/engagehub/pkg/models"
)

// Service is the registration ledger: sign-ups, attendance, feedback and
// session follow-up actions.
type Service struct {
	store     Store
	sessions  catalog.Store
	directory directory.Store
	trust     *trust.Engine
	publisher events.Publisher
	clock     clock.Clock
}

func NewService(
	store Store,
	sessions catalog.Store,
	directoryStore directory.Store,
	trustEngine *trust.Engine,
	publisher events.Publisher,
	clk clock.Clock,
) *Service {
	return &Service{
		store:     store,
		sessions:  sessions,
		directory: directoryStore,
		trust:     trustEngine,
		publisher: publisher,
		clock:     clk,
	}
}

// Register signs a customer up for a session. Returns ErrSessionFull when the
// session is at capacity and ErrDuplicateRegistration when the customer is
// already registered; the capacity check and insert happen atomically in the
// store, so concurrent sign-ups cannot oversubscribe a session.
func (s *Service) Register(ctx context.Context, sessionID, customerID string, contact models.Contact, questions []string) (*models.Registration, error) {
	session, err := s.sessions.GetSession(ctx, sessionID)
	if err != nil {
		return nil, err
	}
	customer, err := s.directory.GetCustomer(ctx, customerID)
	if err != nil {
		return nil, err
	}

	if contact.Email == "" {
		contact = customer.PrimaryContact
	}

	reg := &models.Registration{
		SessionID:  sessionID,
		CustomerID: customerID,
		Contact:    contact,
		Questions:  questions,
		CreatedAt:  s.clock.Now(),
	}
	if err := s.store.AddRegistration(ctx, session.Capacity, reg); err != nil {
		return nil, err
	}

	s.publish(ctx, events.TopicRegistrations, models.EventRegistrationCreated, customerID, sessionID, map[string]interface{}{
		"session_type": string(session.Type),
	})

	return reg, nil
}

// RecordAttendance marks whether the customer showed up and optionally
// attaches their feedback. Feedback is immutable once submitted; the store
// enforces that as a check-and-set, so concurrent submissions cannot both
// land and double-feed the trust engine. When the customer attended and left
// feedback, the rating flows into the trust engine; attendance also refreshes
// the customer's last-engagement marker.
func (s *Service) RecordAttendance(ctx context.Context, sessionID, customerID string, attended bool, feedback *models.Feedback) (*models.Registration, error) {
	if feedback != nil {
		if feedback.Rating < models.RatingMin || feedback.Rating > models.RatingMax {
			return nil, fmt.Errorf("rating %d outside scale %d-%d", feedback.Rating, models.RatingMin, models.RatingMax)
		}
		if feedback.Helpfulness < models.HelpfulnessMin || feedback.Helpfulness > models.HelpfulnessMax {
			return nil, fmt.Errorf("helpfulness %d outside scale %d-%d", feedback.Helpfulness, models.HelpfulnessMin, models.HelpfulnessMax)
		}
	}

	now := s.clock.Now()
	reg, err := s.store.RecordAttendance(ctx, sessionID, customerID, attended, now, feedback)
	if err != nil {
		return nil, err
	}

	if attended {
		s.touchLastEngagement(ctx, customerID, now)
	}

	s.publish(ctx, events.TopicRegistrations, models.EventAttendanceRecorded, customerID, sessionID, map[string]interface{}{
		"attended": attended,
	})

	if attended && feedback != nil {
		if _, err := s.trust.Apply(ctx, customerID, &reg.Feedback.Rating, nil); err != nil {
			return nil, fmt.Errorf("failed to apply feedback to trust score: %w", err)
		}
		s.publish(ctx, events.TopicRegistrations, models.EventFeedbackSubmitted, customerID, sessionID, map[string]interface{}{
			"rating":      reg.Feedback.Rating,
			"helpfulness": reg.Feedback.Helpfulness,
		})
	}

	return reg, nil
}

func (s *Service) touchLastEngagement(ctx context.Context, customerID string, at time.Time) {
	_, err := s.directory.AdjustCustomer(ctx, customerID, func(c *models.Customer) {
		c.LastEngagement = &at
		c.UpdatedAt = at
	})
	if err != nil {
		log.Printf("Failed to update last engagement for %s: %v", customerID, err)
	}
}

// Registrations returns the session's registrations in sign-up order.
func (s *Service) Registrations(ctx context.Context, sessionID string) ([]*models.Registration, error) {
	if _, err := s.sessions.GetSession(ctx, sessionID); err != nil {
		return nil, err
	}
	return s.store.ListBySession(ctx, sessionID)
}

// AddFollowUp records a commitment made during a session. Status starts at
// pending regardless of what the caller set.
func (s *Service) AddFollowUp(ctx context.Context, action models.FollowUpAction) (*models.FollowUpAction, error) {
	if _, err := s.sessions.GetSession(ctx, action.SessionID); err != nil {
		return nil, err
	}
	if action.Title == "" {
		return nil, fmt.Errorf("follow-up title is required")
	}

	action.ID = uuid.NewString()
	action.Status = models.ActionPending
	if err := s.store.AddFollowUp(ctx, &action); err != nil {
		return nil, err
	}

	s.publish(ctx, events.TopicRegistrations, models.EventFollowUpUpdated, action.CustomerID, action.SessionID, map[string]interface{}{
		"follow_up_id": action.ID,
		"status":       string(action.Status),
	})

	return &action, nil
}

// UpdateFollowUpStatus advances an action through its lifecycle. Completed is
// terminal; illegal transitions are rejected.
func (s *Service) UpdateFollowUpStatus(ctx context.Context, id string, status models.ActionStatus, notes string) (*models.FollowUpAction, error) {
	action, err := s.store.GetFollowUp(ctx, id)
	if err != nil {
		return nil, err
	}
	if !action.Status.CanTransition(status) {
		return nil, fmt.Errorf("cannot move follow-up %s from %s to %s", id, action.Status, status)
	}

	action.Status = status
	if notes != "" {
		action.Notes = notes
	}
	if status == models.ActionCompleted {
		now := s.clock.Now()
		action.CompletedAt = &now
	}
	if err := s.store.UpdateFollowUp(ctx, action); err != nil {
		return nil, err
	}

	s.publish(ctx, events.TopicRegistrations, models.EventFollowUpUpdated, action.CustomerID, action.SessionID, map[string]interface{}{
		"follow_up_id": action.ID,
		"status":       string(action.Status),
	})

	return action, nil
}

func (s *Service) publish(ctx context.Context, topic string, eventType models.EventType, customerID, sessionID string, payload map[string]interface{}) {
	event := models.EngagementEvent{
		ID:         uuid.NewString(),
		Type:       eventType,
		CustomerID: customerID,
		SessionID:  sessionID,
		Timestamp:  s.clock.Now(),
		Payload:    payload,
	}
	if err := s.publisher.Publish(ctx, topic, event); err != nil {
		log.Printf("Failed to publish %s event: %v", eventType, err)
	}
}

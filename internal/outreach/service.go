package outreach

import (
	"context"
	"fmt"
	"log"
	"time"

	"github.com/google/uuid"

	"github.com/engagehub/internal/clock"
	"github.com/engagehub/internal/directory"
	"github.com/engagehub/internal/events"
	"github.com/engagehub/internal/policy"
	"github.com/engagehub/internal/trust"
	"github.com/engagehub/pkg/models"
)

// Service tracks high-touch executive outreach. Scheduling is gated on the
// customer's segment; completing an outreach records its outcome and applies
// the trust delta exactly once.
type Service struct {
	store     Store
	directory directory.Store
	trust     *trust.Engine
	publisher events.Publisher
	clock     clock.Clock
}

func NewService(
	store Store,
	directoryStore directory.Store,
	trustEngine *trust.Engine,
	publisher events.Publisher,
	clk clock.Clock,
) *Service {
	return &Service{
		store:     store,
		directory: directoryStore,
		trust:     trustEngine,
		publisher: publisher,
		clock:     clk,
	}
}

// OutreachSpec carries caller-provided fields for scheduling.
type OutreachSpec struct {
	CustomerID    string    `json:"customer_id"`
	ExecutiveName string    `json:"executive_name"`
	ExecutiveRole string    `json:"executive_role"`
	ScheduledAt   time.Time `json:"scheduled_at"`
}

// Schedule books an executive call for an enterprise customer. Other
// segments get ErrInvalidSegment.
func (s *Service) Schedule(ctx context.Context, spec OutreachSpec) (*models.Outreach, error) {
	customer, err := s.directory.GetCustomer(ctx, spec.CustomerID)
	if err != nil {
		return nil, err
	}
	if !policy.OutreachEligible(customer) {
		return nil, fmt.Errorf("segment %s for customer %s: %w",
			customer.Segment, customer.ID, models.ErrInvalidSegment)
	}
	if spec.ExecutiveName == "" {
		return nil, fmt.Errorf("executive name is required")
	}

	o := &models.Outreach{
		ID:            uuid.NewString(),
		CustomerID:    spec.CustomerID,
		ExecutiveName: spec.ExecutiveName,
		ExecutiveRole: spec.ExecutiveRole,
		ScheduledAt:   spec.ScheduledAt,
	}
	if err := s.store.PutOutreach(ctx, o); err != nil {
		return nil, fmt.Errorf("failed to store outreach: %w", err)
	}

	s.publish(ctx, models.EventOutreachScheduled, o, nil)

	return o, nil
}

// Complete records the call's outcome and trust delta. A second completion
// returns ErrAlreadyCompleted with no further score movement; the transition
// is a store-level check-and-set, so concurrent completions cannot both win
// and apply the delta twice.
func (s *Service) Complete(ctx context.Context, id, outcome string, trustDelta float64) (*models.Outreach, error) {
	o, err := s.store.CompleteOutreach(ctx, id, s.clock.Now(), outcome, trustDelta)
	if err != nil {
		return nil, err
	}

	var score *float64
	if trustDelta != 0 {
		applied, err := s.trust.Apply(ctx, o.CustomerID, nil, &trustDelta)
		if err != nil {
			return nil, fmt.Errorf("failed to apply outreach trust delta: %w", err)
		}
		score = &applied
	}

	s.publish(ctx, models.EventOutreachCompleted, o, score)

	return o, nil
}

// Get returns the outreach or ErrNotFound.
func (s *Service) Get(ctx context.Context, id string) (*models.Outreach, error) {
	return s.store.GetOutreach(ctx, id)
}

// History returns a customer's outreach records in scheduling order.
func (s *Service) History(ctx context.Context, customerID string) ([]*models.Outreach, error) {
	if _, err := s.directory.GetCustomer(ctx, customerID); err != nil {
		return nil, err
	}
	return s.store.ListByCustomer(ctx, customerID)
}

func (s *Service) publish(ctx context.Context, eventType models.EventType, o *models.Outreach, score *float64) {
	payload := map[string]interface{}{
		"executive": o.ExecutiveName,
	}
	if o.CompletedAt != nil {
		payload["outcome"] = o.Outcome
		payload["trust_delta"] = o.TrustDelta
	}
	if score != nil {
		payload["trust_score"] = *score
	}
	event := models.EngagementEvent{
		ID:         uuid.NewString(),
		Type:       eventType,
		CustomerID: o.CustomerID,
		OutreachID: o.ID,
		Timestamp:  s.clock.Now(),
		Payload:    payload,
	}
	if err := s.publisher.Publish(ctx, events.TopicOutreach, event); err != nil {
		log.Printf("Failed to publish %s event: %v", eventType, err)
	}
}

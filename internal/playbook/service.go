package playbook

import (
	"context"
	"errors"
	"fmt"
	"log"
	"time"

	"github.com/google/uuid"

	"github.com/engagehub/internal/clock"
	"github.com/engagehub/internal/directory"
	"github.com/engagehub/internal/events"
	"github.com/engagehub/pkg/models"
)

// Service triggers and tracks recovery playbooks for customers whose trust
// tier has dropped into the danger bands.
type Service struct {
	store     Store
	directory directory.Store
	publisher events.Publisher
	clock     clock.Clock
}

func NewService(store Store, directoryStore directory.Store, publisher events.Publisher, clk clock.Clock) *Service {
	return &Service{
		store:     store,
		directory: directoryStore,
		publisher: publisher,
		clock:     clk,
	}
}

// Evaluate checks the customer's current trust tier and triggers the
// appropriate playbook when it sits at critical or below. Returns nil with no
// error when the tier is fine or a matching playbook is already running.
func (s *Service) Evaluate(ctx context.Context, customerID string) (*models.RecoveryPlaybook, error) {
	customer, err := s.directory.GetCustomer(ctx, customerID)
	if err != nil {
		return nil, err
	}

	tier := models.TierForScore(customer.TrustScore)
	if tier != models.TierCritical && tier != models.TierRedAlert {
		return nil, nil
	}

	pbType := models.PlaybookEngagementRevival
	if customer.IncidentImpact == models.ImpactHigh {
		pbType = models.PlaybookPostIncident
	}

	now := s.clock.Now()
	p := &models.RecoveryPlaybook{
		ID:            uuid.NewString(),
		CustomerID:    customerID,
		Type:          pbType,
		Status:        models.PlaybookActive,
		BaselineScore: customer.TrustScore,
		Actions:       templateActions(pbType, customer.SuccessManager, now),
		CreatedAt:     now,
	}
	if err := s.store.AddPlaybook(ctx, p); err != nil {
		if errors.Is(err, ErrPlaybookActive) {
			return nil, nil
		}
		return nil, err
	}

	event := models.EngagementEvent{
		ID:         uuid.NewString(),
		Type:       models.EventPlaybookTriggered,
		CustomerID: customerID,
		Timestamp:  now,
		Payload: map[string]interface{}{
			"playbook_id":    p.ID,
			"playbook_type":  string(pbType),
			"baseline_score": p.BaselineScore,
			"tier":           string(tier),
		},
	}
	if err := s.publisher.Publish(ctx, events.TopicTrust, event); err != nil {
		log.Printf("Failed to publish playbook triggered event: %v", err)
	}

	return p, nil
}

// templateActions returns the standing action list for a playbook type. Due
// dates stagger out from the trigger time.
func templateActions(pbType models.PlaybookType, owner string, now time.Time) []models.PlaybookAction {
	day := 24 * time.Hour
	switch pbType {
	case models.PlaybookPostIncident:
		return []models.PlaybookAction{
			{ID: uuid.NewString(), Title: "Deliver root-cause analysis to customer", Owner: owner, DueDate: now.Add(2 * day)},
			{ID: uuid.NewString(), Title: "Schedule incident debrief session", Owner: owner, DueDate: now.Add(3 * day)},
			{ID: uuid.NewString(), Title: "Share remediation timeline and owners", Owner: owner, DueDate: now.Add(5 * day)},
			{ID: uuid.NewString(), Title: "Executive check-in call", Owner: owner, DueDate: now.Add(10 * day)},
		}
	case models.PlaybookEngagementRevival:
		return []models.PlaybookAction{
			{ID: uuid.NewString(), Title: "Review recent usage and open tickets", Owner: owner, DueDate: now.Add(2 * day)},
			{ID: uuid.NewString(), Title: "Invite to next office hours session", Owner: owner, DueDate: now.Add(4 * day)},
			{ID: uuid.NewString(), Title: "Book success-plan refresh with champion", Owner: owner, DueDate: now.Add(7 * day)},
		}
	}
	return nil
}

// CompleteAction marks one step done. When the last step finishes, the
// playbook itself completes.
func (s *Service) CompleteAction(ctx context.Context, playbookID, actionID string) (*models.RecoveryPlaybook, error) {
	p, err := s.store.GetPlaybook(ctx, playbookID)
	if err != nil {
		return nil, err
	}
	if p.Status != models.PlaybookActive {
		return nil, fmt.Errorf("playbook %s: %w", playbookID, models.ErrAlreadyCompleted)
	}

	now := s.clock.Now()
	found := false
	for i := range p.Actions {
		if p.Actions[i].ID != actionID {
			continue
		}
		found = true
		if p.Actions[i].Done {
			return nil, fmt.Errorf("action %s: %w", actionID, models.ErrAlreadyCompleted)
		}
		p.Actions[i].Done = true
		p.Actions[i].CompletedAt = &now
	}
	if !found {
		return nil, fmt.Errorf("action %s in playbook %s: %w", actionID, playbookID, models.ErrNotFound)
	}

	if p.Progress() == 1.0 {
		p.Status = models.PlaybookCompleted
		p.CompletedAt = &now
	}

	if err := s.store.UpdatePlaybook(ctx, p); err != nil {
		return nil, err
	}
	return p, nil
}

// Cancel abandons an active playbook, for customers who churn or recover on
// their own.
func (s *Service) Cancel(ctx context.Context, playbookID string) error {
	p, err := s.store.GetPlaybook(ctx, playbookID)
	if err != nil {
		return err
	}
	if p.Status != models.PlaybookActive {
		return fmt.Errorf("playbook %s: %w", playbookID, models.ErrAlreadyCompleted)
	}
	p.Status = models.PlaybookCancelled
	return s.store.UpdatePlaybook(ctx, p)
}

// Improvement reports the trust gained (or lost) since the playbook
// triggered.
func (s *Service) Improvement(ctx context.Context, playbookID string) (float64, error) {
	p, err := s.store.GetPlaybook(ctx, playbookID)
	if err != nil {
		return 0, err
	}
	customer, err := s.directory.GetCustomer(ctx, p.CustomerID)
	if err != nil {
		return 0, err
	}
	return customer.TrustScore - p.BaselineScore, nil
}

// History returns a customer's playbooks, oldest first.
func (s *Service) History(ctx context.Context, customerID string) ([]*models.RecoveryPlaybook, error) {
	return s.store.ListByCustomer(ctx, customerID)
}

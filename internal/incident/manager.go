package incident

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
	"github.com/engagehub/internal/playbook"
	"github.com/engagehub/internal/trust"
	"github.com/engagehub/pkg/models"
)

// Incident is a production event that shook customer confidence. Recording
// one marks the impacted customers, docks their trust scores and books an
// emergency debrief session.
type Incident struct {
	ID                string           `json:"id"`
	Title             string           `json:"title"`
	Description       string           `json:"description"`
	Severity          string           `json:"severity"` // critical, high, medium, low
	ImpactedCustomers []CustomerImpact `json:"impacted_customers"`
	DebriefSessionID  string           `json:"debrief_session_id,omitempty"`
	DetectedAt        time.Time        `json:"detected_at"`
	CreatedAt         time.Time        `json:"created_at"`
}

// CustomerImpact ties one customer to the incident with a blast-radius
// assessment.
type CustomerImpact struct {
	CustomerID string                `json:"customer_id"`
	Impact     models.IncidentImpact `json:"impact"`
}

// trustPenalty maps impact level to the immediate trust score hit.
var trustPenalty = map[models.IncidentImpact]float64{
	models.ImpactHigh:   -1.5,
	models.ImpactMedium: -0.75,
	models.ImpactLow:    -0.25,
}

// debriefLeadTime maps severity to how soon the emergency session is booked.
var debriefLeadTime = map[string]time.Duration{
	"critical": 24 * time.Hour,
	"high":     48 * time.Hour,
	"medium":   72 * time.Hour,
	"low":      5 * 24 * time.Hour,
}

// Manager coordinates the post-incident response across the directory, trust
// engine, catalog and playbooks.
type Manager struct {
	store     Store
	directory directory.Store
	trust     *trust.Engine
	catalog   *catalog.Service
	playbooks *playbook.Service
	publisher events.Publisher
	clock     clock.Clock
}

func NewManager(
	store Store,
	directoryStore directory.Store,
	trustEngine *trust.Engine,
	catalogService *catalog.Service,
	playbookService *playbook.Service,
	publisher events.Publisher,
	clk clock.Clock,
) *Manager {
	return &Manager{
		store:     store,
		directory: directoryStore,
		trust:     trustEngine,
		catalog:   catalogService,
		playbooks: playbookService,
		publisher: publisher,
		clock:     clk,
	}
}

// RecordIncident registers the incident and runs the response: every
// impacted customer is tagged, docked and evaluated for a recovery playbook,
// then an emergency debrief session is scheduled sized to the impacted set.
func (m *Manager) RecordIncident(ctx context.Context, incident Incident) (*Incident, error) {
	if _, ok := debriefLeadTime[incident.Severity]; !ok {
		return nil, fmt.Errorf("unknown severity %q", incident.Severity)
	}
	if len(incident.ImpactedCustomers) == 0 {
		return nil, fmt.Errorf("incident needs at least one impacted customer")
	}
	for _, ci := range incident.ImpactedCustomers {
		if _, ok := trustPenalty[ci.Impact]; !ok {
			return nil, fmt.Errorf("unknown impact level %q for customer %s", ci.Impact, ci.CustomerID)
		}
		if _, err := m.directory.GetCustomer(ctx, ci.CustomerID); err != nil {
			return nil, err
		}
	}

	now := m.clock.Now()
	incident.ID = uuid.NewString()
	incident.CreatedAt = now
	if incident.DetectedAt.IsZero() {
		incident.DetectedAt = now
	}

	for _, ci := range incident.ImpactedCustomers {
		m.markCustomer(ctx, ci)
	}

	session, err := m.scheduleDebrief(ctx, &incident)
	if err != nil {
		log.Printf("Failed to schedule debrief for incident %s: %v", incident.ID, err)
	} else {
		incident.DebriefSessionID = session.ID
	}

	if err := m.store.PutIncident(ctx, &incident); err != nil {
		return nil, fmt.Errorf("failed to store incident: %w", err)
	}

	event := models.EngagementEvent{
		ID:        uuid.NewString(),
		Type:      models.EventIncidentRecorded,
		SessionID: incident.DebriefSessionID,
		Timestamp: now,
		Payload: map[string]interface{}{
			"incident_id": incident.ID,
			"severity":    incident.Severity,
			"impacted":    len(incident.ImpactedCustomers),
		},
	}
	if err := m.publisher.Publish(ctx, events.TopicIncidents, event); err != nil {
		log.Printf("Failed to publish incident recorded event: %v", err)
	}

	return &incident, nil
}

func (m *Manager) markCustomer(ctx context.Context, ci CustomerImpact) {
	_, err := m.directory.AdjustCustomer(ctx, ci.CustomerID, func(c *models.Customer) {
		c.IncidentImpact = ci.Impact
		c.UpdatedAt = m.clock.Now()
	})
	if err != nil {
		log.Printf("Failed to tag impacted customer %s: %v", ci.CustomerID, err)
		return
	}

	penalty := trustPenalty[ci.Impact]
	if _, err := m.trust.Apply(ctx, ci.CustomerID, nil, &penalty); err != nil {
		log.Printf("Failed to apply incident penalty to %s: %v", ci.CustomerID, err)
		return
	}

	if _, err := m.playbooks.Evaluate(ctx, ci.CustomerID); err != nil {
		log.Printf("Failed to evaluate playbook for %s: %v", ci.CustomerID, err)
	}
}

func (m *Manager) scheduleDebrief(ctx context.Context, incident *Incident) (*models.Session, error) {
	capacity := len(incident.ImpactedCustomers)
	if capacity < 10 {
		capacity = 10
	}
	return m.catalog.Schedule(ctx, models.SessionSpec{
		Type:        models.SessionEmergency,
		ScheduledAt: m.clock.Now().Add(debriefLeadTime[incident.Severity]),
		Duration:    time.Hour,
		Capacity:    capacity,
		Agenda:      []string{"Incident summary: " + incident.Title, "Root cause", "Remediation plan", "Q&A"},
	})
}

// Get returns the incident or ErrNotFound.
func (m *Manager) Get(ctx context.Context, id string) (*Incident, error) {
	return m.store.GetIncident(ctx, id)
}

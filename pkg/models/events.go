package models

import (
	"time"
)

// EngagementEvent is the envelope published to the event bus whenever core
// state changes. Consumers (dashboards, CRM sync) are outside this service.
type EngagementEvent struct {
	ID         string                 `json:"id"`
	Type       EventType              `json:"type"`
	CustomerID string                 `json:"customer_id,omitempty"`
	SessionID  string                 `json:"session_id,omitempty"`
	OutreachID string                 `json:"outreach_id,omitempty"`
	Timestamp  time.Time              `json:"timestamp"`
	Payload    map[string]interface{} `json:"payload,omitempty"`
}

type EventType string

const (
	EventSessionScheduled    EventType = "session.scheduled"
	EventRegistrationCreated EventType = "registration.created"
	EventAttendanceRecorded  EventType = "attendance.recorded"
	EventFeedbackSubmitted   EventType = "feedback.submitted"
	EventOutreachScheduled   EventType = "outreach.scheduled"
	EventOutreachCompleted   EventType = "outreach.completed"
	EventTrustUpdated        EventType = "trust.updated"
	EventFollowUpUpdated     EventType = "followup.updated"
	EventIncidentRecorded    EventType = "incident.recorded"
	EventPlaybookTriggered   EventType = "playbook.triggered"
)

// EventBatch groups events for bulk publication.
type EventBatch struct {
	BatchID   string            `json:"batch_id"`
	Events    []EngagementEvent `json:"events"`
	CreatedAt time.Time         `json:"created_at"`
}

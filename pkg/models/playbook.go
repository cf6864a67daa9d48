package models

import (
	"time"
)

// RecoveryPlaybook is a structured set of actions run when a customer's
// trust tier drops into the danger bands. BaselineScore freezes the score at
// trigger time so recovery can be measured against it.
type RecoveryPlaybook struct {
	ID            string           `json:"id"`
	CustomerID    string           `json:"customer_id"`
	Type          PlaybookType     `json:"type"`
	Status        PlaybookStatus   `json:"status"`
	BaselineScore float64          `json:"baseline_score"`
	Actions       []PlaybookAction `json:"actions"`
	CreatedAt     time.Time        `json:"created_at"`
	CompletedAt   *time.Time       `json:"completed_at,omitempty"`
}

type PlaybookType string

const (
	PlaybookPostIncident      PlaybookType = "post_incident_recovery"
	PlaybookEngagementRevival PlaybookType = "engagement_revival"
)

type PlaybookStatus string

const (
	PlaybookActive    PlaybookStatus = "active"
	PlaybookCompleted PlaybookStatus = "completed"
	PlaybookCancelled PlaybookStatus = "cancelled"
)

// PlaybookAction is one step of a playbook.
type PlaybookAction struct {
	ID          string     `json:"id"`
	Title       string     `json:"title"`
	Owner       string     `json:"owner"`
	DueDate     time.Time  `json:"due_date"`
	Done        bool       `json:"done"`
	CompletedAt *time.Time `json:"completed_at,omitempty"`
}

// Progress returns the fraction of actions finished, in [0, 1].
func (p *RecoveryPlaybook) Progress() float64 {
	if len(p.Actions) == 0 {
		return 0
	}
	done := 0
	for _, a := range p.Actions {
		if a.Done {
			done++
		}
	}
	return float64(done) / float64(len(p.Actions))
}

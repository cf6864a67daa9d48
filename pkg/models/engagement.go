package models

import (
	"time"
)

// Registration links a customer to a session. At most one exists per
// (customer, session) pair; registrations are historical records and are
// never removed.
type Registration struct {
	SessionID   string     `json:"session_id"`
	CustomerID  string     `json:"customer_id"`
	Contact     Contact    `json:"contact"`
	Questions   []string   `json:"questions"`
	Attended    bool       `json:"attended"`
	CheckedInAt *time.Time `json:"checked_in_at,omitempty"`
	Feedback    *Feedback  `json:"feedback,omitempty"`
	CreatedAt   time.Time  `json:"created_at"`
}

// Feedback is immutable once submitted.
type Feedback struct {
	Rating           int       `json:"rating"`      // 1-5
	Helpfulness      int       `json:"helpfulness"` // 1-10
	Comments         string    `json:"comments"`
	SuggestedTopics  []string  `json:"suggested_topics"`
	WouldAttendAgain bool      `json:"would_attend_again"`
	SubmittedAt      time.Time `json:"submitted_at"`
}

// Feedback rating scale bounds.
const (
	RatingMin      = 1
	RatingMax      = 5
	RatingMidpoint = 3.0
	HelpfulnessMin = 1
	HelpfulnessMax = 10
)

// Outreach is a one-off high-touch interaction (executive call) tied to a
// customer. The per-customer outreach list is append-only.
type Outreach struct {
	ID            string     `json:"id"`
	CustomerID    string     `json:"customer_id"`
	ExecutiveName string     `json:"executive_name"`
	ExecutiveRole string     `json:"executive_role"`
	ScheduledAt   time.Time  `json:"scheduled_at"`
	CompletedAt   *time.Time `json:"completed_at,omitempty"`
	Outcome       string     `json:"outcome,omitempty"`
	TrustDelta    float64    `json:"trust_delta"`
}

// FollowUpAction is a tracked commitment made during or after a session,
// with its own pending → in_progress → completed lifecycle.
type FollowUpAction struct {
	ID          string       `json:"id"`
	SessionID   string       `json:"session_id,omitempty"`
	CustomerID  string       `json:"customer_id"`
	Title       string       `json:"title"`
	Description string       `json:"description"`
	AssignedTo  string       `json:"assigned_to"`
	Status      ActionStatus `json:"status"`
	Priority    string       `json:"priority"` // high, medium, low
	DueDate     time.Time    `json:"due_date"`
	CompletedAt *time.Time   `json:"completed_at,omitempty"`
	Notes       string       `json:"notes,omitempty"`
}

type ActionStatus string

const (
	ActionPending    ActionStatus = "pending"
	ActionInProgress ActionStatus = "in_progress"
	ActionCompleted  ActionStatus = "completed"
)

// CanTransition reports whether an action may move from its current status
// to next. Completed is terminal.
func (s ActionStatus) CanTransition(next ActionStatus) bool {
	switch s {
	case ActionPending:
		return next == ActionInProgress || next == ActionCompleted
	case ActionInProgress:
		return next == ActionCompleted
	}
	return false
}

package models

import (
	"time"
)

// Session is a scheduled group engagement (office hours, executive briefing,
// incident debrief). Immutable once past except for appended follow-ups,
// which the ledger owns.
type Session struct {
	ID           string        `json:"id"`
	Type         SessionType   `json:"type"`
	ScheduledAt  time.Time     `json:"scheduled_at"`
	Duration     time.Duration `json:"duration"`
	Capacity     int           `json:"capacity"`
	Facilitators []string      `json:"facilitators"`
	Agenda       []string      `json:"agenda"`
	RecordingURL string        `json:"recording_url,omitempty"`
	CreatedAt    time.Time     `json:"created_at"`
}

type SessionType string

const (
	SessionEmergency SessionType = "emergency"
	SessionRegular   SessionType = "regular"
	SessionExecutive SessionType = "executive"
	SessionPowerUser SessionType = "power_user"
)

// ValidSessionType reports whether t is a known session type.
func ValidSessionType(t SessionType) bool {
	switch t {
	case SessionEmergency, SessionRegular, SessionExecutive, SessionPowerUser:
		return true
	}
	return false
}

// SessionSpec is the input for scheduling a session. Backdated permits a
// ScheduledAt in the past for historical imports.
type SessionSpec struct {
	Type         SessionType   `json:"type"`
	ScheduledAt  time.Time     `json:"scheduled_at"`
	Duration     time.Duration `json:"duration"`
	Capacity     int           `json:"capacity"`
	Facilitators []string      `json:"facilitators"`
	Agenda       []string      `json:"agenda"`
	Backdated    bool          `json:"backdated,omitempty"`
}

// TimeRange is a half-open reporting window [Start, End).
type TimeRange struct {
	Start time.Time `json:"start"`
	End   time.Time `json:"end"`
}

// Contains reports whether t falls inside the window.
func (tr TimeRange) Contains(t time.Time) bool {
	return !t.Before(tr.Start) && t.Before(tr.End)
}

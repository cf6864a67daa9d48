package models

import (
	"time"
)

// EngagementReport is a read-only rollup over a time window. All fields are
// derived; the aggregator holds no state of its own.
type EngagementReport struct {
	Period             TimeRange                `json:"period"`
	TotalSessions      int                      `json:"total_sessions"`
	TotalRegistrations int                      `json:"total_registrations"`
	TotalAttendees     int                      `json:"total_attendees"`
	AttendanceRate     float64                  `json:"attendance_rate"`
	AverageRating      float64                  `json:"average_rating"`
	SegmentBreakdown   map[Segment]SegmentStats `json:"segment_breakdown"`
	SessionsByType     map[SessionType]int      `json:"sessions_by_type"`
	TrustDistribution  TrustDistribution        `json:"trust_distribution"`
	OutreachCount      int                      `json:"outreach_count"`
	FollowUpStatus     map[ActionStatus]int     `json:"follow_up_status"`
	Narrative          string                   `json:"narrative,omitempty"`
	GeneratedAt        time.Time                `json:"generated_at"`
}

// SegmentStats breaks attendance down for one customer segment.
type SegmentStats struct {
	Registrations  int     `json:"registrations"`
	Attendees      int     `json:"attendees"`
	AttendanceRate float64 `json:"attendance_rate"`
}

// TrustDistribution summarizes trust scores across the customer population,
// relative to the default midpoint.
type TrustDistribution struct {
	Improved int     `json:"improved"`
	Declined int     `json:"declined"`
	Mean     float64 `json:"mean"`
}

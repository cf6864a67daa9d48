package models

import (
	"time"
)

// Customer represents an onboarded customer organization tracked by the
// engagement service. Customers are supplied by the directory; the core
// mutates only trust score and engagement timestamps, and deactivates
// instead of deleting.
type Customer struct {
	ID             string         `json:"id"`
	Name           string         `json:"name"`
	Segment        Segment        `json:"segment"`
	ContractValue  float64        `json:"contract_value"`
	IncidentImpact IncidentImpact `json:"incident_impact"`
	PrimaryContact Contact        `json:"primary_contact"`
	SuccessManager string         `json:"success_manager"`
	LastEngagement *time.Time     `json:"last_engagement,omitempty"`
	TrustScore     float64        `json:"trust_score"`
	Active         bool           `json:"active"`
	CreatedAt      time.Time      `json:"created_at"`
	UpdatedAt      time.Time      `json:"updated_at"`
}

type Segment string

const (
	SegmentEnterprise Segment = "enterprise"
	SegmentBusiness   Segment = "business"
	SegmentStartup    Segment = "startup"
)

// ValidSegment reports whether s is one of the closed segment set.
func ValidSegment(s Segment) bool {
	switch s {
	case SegmentEnterprise, SegmentBusiness, SegmentStartup:
		return true
	}
	return false
}

type IncidentImpact string

const (
	ImpactHigh   IncidentImpact = "high"
	ImpactMedium IncidentImpact = "medium"
	ImpactLow    IncidentImpact = "low"
)

type Contact struct {
	Name  string `json:"name"`
	Email string `json:"email"`
	Role  string `json:"role"`
}

// Trust score bounds. Every update clamps into [TrustScoreMin, TrustScoreMax];
// new customers start at the midpoint.
const (
	TrustScoreMin     = 0.0
	TrustScoreMax     = 10.0
	TrustScoreDefault = 5.0
)

// TrustTier buckets a trust score, scaled down from the original 0-100
// health bands.
type TrustTier string

const (
	TierHealthy  TrustTier = "healthy"
	TierAtRisk   TrustTier = "at_risk"
	TierCritical TrustTier = "critical"
	TierRedAlert TrustTier = "red_alert"
)

// TierForScore maps a trust score to its tier.
func TierForScore(score float64) TrustTier {
	switch {
	case score >= 8:
		return TierHealthy
	case score >= 6:
		return TierAtRisk
	case score >= 4:
		return TierCritical
	default:
		return TierRedAlert
	}
}

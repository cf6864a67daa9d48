package policy

import (
	"github.com/engagehub/pkg/models"
)

// Predicate decides whether a customer qualifies for something.
type Predicate func(c *models.Customer) bool

// InvitePolicy maps session type to the predicate used for auto-invites.
// Keeping this a plain table makes each rule testable without scheduling
// anything.
type InvitePolicy map[models.SessionType]Predicate

// DefaultInvitePolicy returns the standing invite rules:
// emergency sessions target customers hit hardest by an incident, executive
// briefings target the enterprise segment, power-user sessions target
// high-contract accounts, regular office hours are open to everyone active.
func DefaultInvitePolicy() InvitePolicy {
	return InvitePolicy{
		models.SessionEmergency: func(c *models.Customer) bool {
			return c.Active && c.IncidentImpact == models.ImpactHigh
		},
		models.SessionExecutive: func(c *models.Customer) bool {
			return c.Active && c.Segment == models.SegmentEnterprise
		},
		models.SessionPowerUser: func(c *models.Customer) bool {
			return c.Active && c.ContractValue >= 100000
		},
		models.SessionRegular: func(c *models.Customer) bool {
			return c.Active
		},
	}
}

// Eligible filters customers through the predicate for the session type.
// An unknown type invites nobody.
func (p InvitePolicy) Eligible(sessionType models.SessionType, customers []*models.Customer) []*models.Customer {
	pred, ok := p[sessionType]
	if !ok {
		return nil
	}
	var out []*models.Customer
	for _, c := range customers {
		if pred(c) {
			out = append(out, c)
		}
	}
	return out
}

// OutreachEligible reports whether a customer's segment qualifies for
// executive-tier outreach. Only the highest-value segment does.
func OutreachEligible(c *models.Customer) bool {
	return c.Segment == models.SegmentEnterprise
}

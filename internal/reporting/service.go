package reporting

import (
	"context"
	"fmt"
	"log"

	"github.com/engagehub/internal/cache"
	"github.com/engagehub/internal/catalog"
	"github.com/engagehub/internal/clock"
	"github.com/engagehub/internal/directory"
	"github.com/engagehub/internal/ledger"
	"github.com/engagehub/internal/outreach"
	"github.com/engagehub/pkg/models"
)

// Service derives engagement reports from the other modules' stores. It holds
// no state of its own; every number is recomputed from a snapshot of the
// stores, then cached for the window.
type Service struct {
	sessions    catalog.Store
	ledger      ledger.Store
	outreach    outreach.Store
	directory   directory.Store
	reportCache *cache.ReportCache
	narrator    NarrativeGenerator
	clock       clock.Clock
}

// NewService builds the aggregator. reportCache and narrator may be nil.
func NewService(
	sessions catalog.Store,
	ledgerStore ledger.Store,
	outreachStore outreach.Store,
	directoryStore directory.Store,
	reportCache *cache.ReportCache,
	narrator NarrativeGenerator,
	clk clock.Clock,
) *Service {
	return &Service{
		sessions:    sessions,
		ledger:      ledgerStore,
		outreach:    outreachStore,
		directory:   directoryStore,
		reportCache: reportCache,
		narrator:    narrator,
		clock:       clk,
	}
}

// Report aggregates activity inside the half-open window [start, end). A
// window covering no activity yields a zeroed report, not an error; a window
// whose end does not come after its start is ErrInvalidRange.
func (s *Service) Report(ctx context.Context, period models.TimeRange) (*models.EngagementReport, error) {
	if !period.End.After(period.Start) {
		return nil, fmt.Errorf("window end %s not after start %s: %w",
			period.End.Format("2006-01-02"), period.Start.Format("2006-01-02"), models.ErrInvalidRange)
	}

	if s.reportCache != nil {
		if cached, ok := s.reportCache.Get(ctx, period); ok {
			return cached, nil
		}
	}

	report, err := s.compute(ctx, period)
	if err != nil {
		return nil, err
	}

	if s.narrator != nil {
		narrative, err := s.narrator.Generate(ctx, report)
		if err != nil {
			log.Printf("Failed to generate report narrative: %v", err)
		} else {
			report.Narrative = narrative
		}
	}

	if s.reportCache != nil {
		s.reportCache.Set(ctx, period, report)
	}

	return report, nil
}

func (s *Service) compute(ctx context.Context, period models.TimeRange) (*models.EngagementReport, error) {
	report := &models.EngagementReport{
		Period:           period,
		SegmentBreakdown: make(map[models.Segment]models.SegmentStats),
		SessionsByType:   make(map[models.SessionType]int),
		FollowUpStatus:   make(map[models.ActionStatus]int),
		GeneratedAt:      s.clock.Now(),
	}

	sessions, err := s.sessions.ListSessions(ctx)
	if err != nil {
		return nil, fmt.Errorf("failed to list sessions: %w", err)
	}
	inWindow := make(map[string]bool, len(sessions))
	for _, session := range sessions {
		if !period.Contains(session.ScheduledAt) {
			continue
		}
		inWindow[session.ID] = true
		report.TotalSessions++
		report.SessionsByType[session.Type]++
	}

	regs, err := s.ledger.ListRegistrations(ctx)
	if err != nil {
		return nil, fmt.Errorf("failed to list registrations: %w", err)
	}
	ratingSum, ratingCount := 0, 0
	for _, reg := range regs {
		if !inWindow[reg.SessionID] {
			continue
		}
		report.TotalRegistrations++
		if reg.Attended {
			report.TotalAttendees++
		}
		if reg.Feedback != nil {
			ratingSum += reg.Feedback.Rating
			ratingCount++
		}
		s.countSegment(ctx, report, reg)
	}
	if report.TotalRegistrations > 0 {
		report.AttendanceRate = float64(report.TotalAttendees) / float64(report.TotalRegistrations)
	}
	if ratingCount > 0 {
		report.AverageRating = float64(ratingSum) / float64(ratingCount)
	}
	for segment, stats := range report.SegmentBreakdown {
		if stats.Registrations > 0 {
			stats.AttendanceRate = float64(stats.Attendees) / float64(stats.Registrations)
			report.SegmentBreakdown[segment] = stats
		}
	}

	outreaches, err := s.outreach.ListOutreach(ctx)
	if err != nil {
		return nil, fmt.Errorf("failed to list outreach: %w", err)
	}
	for _, o := range outreaches {
		if period.Contains(o.ScheduledAt) {
			report.OutreachCount++
		}
	}

	followUps, err := s.ledger.ListFollowUps(ctx)
	if err != nil {
		return nil, fmt.Errorf("failed to list follow-ups: %w", err)
	}
	for _, action := range followUps {
		if inWindow[action.SessionID] {
			report.FollowUpStatus[action.Status]++
		}
	}

	if err := s.trustDistribution(ctx, report); err != nil {
		return nil, err
	}

	return report, nil
}

func (s *Service) countSegment(ctx context.Context, report *models.EngagementReport, reg *models.Registration) {
	customer, err := s.directory.GetCustomer(ctx, reg.CustomerID)
	if err != nil {
		log.Printf("Skipping segment rollup for unknown customer %s: %v", reg.CustomerID, err)
		return
	}
	stats := report.SegmentBreakdown[customer.Segment]
	stats.Registrations++
	if reg.Attended {
		stats.Attendees++
	}
	report.SegmentBreakdown[customer.Segment] = stats
}

func (s *Service) trustDistribution(ctx context.Context, report *models.EngagementReport) error {
	customers, err := s.directory.ListActiveCustomers(ctx)
	if err != nil {
		return fmt.Errorf("failed to list customers: %w", err)
	}
	if len(customers) == 0 {
		return nil
	}

	sum := 0.0
	for _, customer := range customers {
		sum += customer.TrustScore
		switch {
		case customer.TrustScore > models.TrustScoreDefault:
			report.TrustDistribution.Improved++
		case customer.TrustScore < models.TrustScoreDefault:
			report.TrustDistribution.Declined++
		}
	}
	report.TrustDistribution.Mean = sum / float64(len(customers))
	return nil
}

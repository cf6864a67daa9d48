package reporting

import (
	"context"
	"errors"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/engagehub/internal/catalog"
	"github.com/engagehub/internal/clock"
	"github.com/engagehub/internal/directory"
	"github.com/engagehub/internal/ledger"
	"github.com/engagehub/internal/outreach"
	"github.com/engagehub/pkg/models"
)

var testNow = time.Date(2025, 6, 15, 12, 0, 0, 0, time.UTC)

type fixture struct {
	svc       *Service
	sessions  *catalog.MemoryStore
	ledger    *ledger.MemoryStore
	outreach  *outreach.MemoryStore
	directory *directory.MemoryStore
}

func newFixture(t *testing.T, narrator NarrativeGenerator) *fixture {
	t.Helper()
	f := &fixture{
		sessions:  catalog.NewMemoryStore(),
		ledger:    ledger.NewMemoryStore(),
		outreach:  outreach.NewMemoryStore(),
		directory: directory.NewMemoryStore(),
	}
	f.svc = NewService(f.sessions, f.ledger, f.outreach, f.directory, nil, narrator, clock.NewFake(testNow))
	return f
}

func (f *fixture) seedSession(t *testing.T, id string, st models.SessionType, at time.Time) {
	t.Helper()
	require.NoError(t, f.sessions.PutSession(context.Background(), &models.Session{
		ID: id, Type: st, ScheduledAt: at, Duration: time.Hour, Capacity: 50,
	}))
}

func (f *fixture) seedCustomer(t *testing.T, id string, segment models.Segment, score float64) {
	t.Helper()
	require.NoError(t, f.directory.PutCustomer(context.Background(), &models.Customer{
		ID: id, Segment: segment, TrustScore: score, Active: true,
	}))
}

func (f *fixture) seedRegistration(t *testing.T, sessionID, customerID string, attended bool, rating int) {
	t.Helper()
	reg := &models.Registration{SessionID: sessionID, CustomerID: customerID, Attended: attended}
	if rating > 0 {
		reg.Feedback = &models.Feedback{Rating: rating, Helpfulness: 7}
	}
	require.NoError(t, f.ledger.AddRegistration(context.Background(), 50, reg))
}

func week() models.TimeRange {
	return models.TimeRange{
		Start: time.Date(2025, 6, 9, 0, 0, 0, 0, time.UTC),
		End:   time.Date(2025, 6, 16, 0, 0, 0, 0, time.UTC),
	}
}

func TestReportInvalidRange(t *testing.T) {
	f := newFixture(t, nil)
	w := week()

	_, err := f.svc.Report(context.Background(), models.TimeRange{Start: w.End, End: w.Start})
	assert.ErrorIs(t, err, models.ErrInvalidRange)

	_, err = f.svc.Report(context.Background(), models.TimeRange{Start: w.Start, End: w.Start})
	assert.ErrorIs(t, err, models.ErrInvalidRange)
}

func TestReportEmptyWindow(t *testing.T) {
	f := newFixture(t, nil)

	report, err := f.svc.Report(context.Background(), week())
	require.NoError(t, err)
	assert.Zero(t, report.TotalSessions)
	assert.Zero(t, report.TotalRegistrations)
	assert.Zero(t, report.TotalAttendees)
	assert.Zero(t, report.AttendanceRate)
	assert.Zero(t, report.AverageRating)
	assert.Zero(t, report.OutreachCount)
	assert.Empty(t, report.SegmentBreakdown)
	assert.Equal(t, testNow, report.GeneratedAt)
}

func TestReportAttendanceRate(t *testing.T) {
	f := newFixture(t, nil)
	w := week()
	f.seedSession(t, "sess-1", models.SessionRegular, w.Start.Add(24*time.Hour))

	for i := 0; i < 10; i++ {
		id := string(rune('a' + i))
		f.seedCustomer(t, id, models.SegmentBusiness, models.TrustScoreDefault)
		f.seedRegistration(t, "sess-1", id, i < 6, 0)
	}

	report, err := f.svc.Report(context.Background(), w)
	require.NoError(t, err)
	assert.Equal(t, 1, report.TotalSessions)
	assert.Equal(t, 10, report.TotalRegistrations)
	assert.Equal(t, 6, report.TotalAttendees)
	assert.InDelta(t, 0.6, report.AttendanceRate, 1e-9)

	stats := report.SegmentBreakdown[models.SegmentBusiness]
	assert.Equal(t, 10, stats.Registrations)
	assert.Equal(t, 6, stats.Attendees)
	assert.InDelta(t, 0.6, stats.AttendanceRate, 1e-9)
}

func TestReportIgnoresActivityOutsideWindow(t *testing.T) {
	f := newFixture(t, nil)
	w := week()
	f.seedSession(t, "in", models.SessionRegular, w.Start.Add(time.Hour))
	f.seedSession(t, "before", models.SessionRegular, w.Start.Add(-time.Hour))
	f.seedSession(t, "at-end", models.SessionRegular, w.End)

	f.seedCustomer(t, "cust-1", models.SegmentEnterprise, models.TrustScoreDefault)
	f.seedRegistration(t, "in", "cust-1", true, 0)
	f.seedRegistration(t, "before", "cust-1", true, 0)

	report, err := f.svc.Report(context.Background(), w)
	require.NoError(t, err)
	// The window is half-open, so the session at End is excluded.
	assert.Equal(t, 1, report.TotalSessions)
	assert.Equal(t, 1, report.TotalRegistrations)
	assert.Equal(t, 1, report.TotalAttendees)
}

func TestReportAverageRatingAndTypes(t *testing.T) {
	f := newFixture(t, nil)
	w := week()
	f.seedSession(t, "sess-1", models.SessionRegular, w.Start.Add(time.Hour))
	f.seedSession(t, "sess-2", models.SessionExecutive, w.Start.Add(2*time.Hour))

	f.seedCustomer(t, "cust-1", models.SegmentEnterprise, models.TrustScoreDefault)
	f.seedCustomer(t, "cust-2", models.SegmentStartup, models.TrustScoreDefault)
	f.seedRegistration(t, "sess-1", "cust-1", true, 5)
	f.seedRegistration(t, "sess-1", "cust-2", true, 4)
	f.seedRegistration(t, "sess-2", "cust-1", false, 0)

	report, err := f.svc.Report(context.Background(), w)
	require.NoError(t, err)
	assert.InDelta(t, 4.5, report.AverageRating, 1e-9)
	assert.Equal(t, 1, report.SessionsByType[models.SessionRegular])
	assert.Equal(t, 1, report.SessionsByType[models.SessionExecutive])
}

func TestReportTrustDistribution(t *testing.T) {
	f := newFixture(t, nil)
	f.seedCustomer(t, "up", models.SegmentEnterprise, 8.0)
	f.seedCustomer(t, "down", models.SegmentStartup, 3.0)
	f.seedCustomer(t, "flat", models.SegmentBusiness, models.TrustScoreDefault)

	report, err := f.svc.Report(context.Background(), week())
	require.NoError(t, err)
	assert.Equal(t, 1, report.TrustDistribution.Improved)
	assert.Equal(t, 1, report.TrustDistribution.Declined)
	assert.InDelta(t, (8.0+3.0+5.0)/3.0, report.TrustDistribution.Mean, 1e-9)
}

func TestReportCountsOutreachAndFollowUps(t *testing.T) {
	f := newFixture(t, nil)
	w := week()
	ctx := context.Background()
	f.seedSession(t, "sess-1", models.SessionRegular, w.Start.Add(time.Hour))

	require.NoError(t, f.outreach.PutOutreach(ctx, &models.Outreach{
		ID: "o-1", CustomerID: "cust-1", ScheduledAt: w.Start.Add(2 * time.Hour),
	}))
	require.NoError(t, f.outreach.PutOutreach(ctx, &models.Outreach{
		ID: "o-2", CustomerID: "cust-1", ScheduledAt: w.End.Add(time.Hour),
	}))

	require.NoError(t, f.ledger.AddFollowUp(ctx, &models.FollowUpAction{
		ID: "fu-1", SessionID: "sess-1", Status: models.ActionPending,
	}))
	require.NoError(t, f.ledger.AddFollowUp(ctx, &models.FollowUpAction{
		ID: "fu-2", SessionID: "sess-1", Status: models.ActionCompleted,
	}))

	report, err := f.svc.Report(context.Background(), w)
	require.NoError(t, err)
	assert.Equal(t, 1, report.OutreachCount)
	assert.Equal(t, 1, report.FollowUpStatus[models.ActionPending])
	assert.Equal(t, 1, report.FollowUpStatus[models.ActionCompleted])
}

type stubNarrator struct {
	text string
	err  error
}

func (s stubNarrator) Generate(ctx context.Context, report *models.EngagementReport) (string, error) {
	return s.text, s.err
}

func TestReportNarrative(t *testing.T) {
	f := newFixture(t, stubNarrator{text: "A quiet week."})

	report, err := f.svc.Report(context.Background(), week())
	require.NoError(t, err)
	assert.Equal(t, "A quiet week.", report.Narrative)
}

func TestReportNarrativeFailureIsNotFatal(t *testing.T) {
	f := newFixture(t, stubNarrator{err: errors.New("model unavailable")})

	report, err := f.svc.Report(context.Background(), week())
	require.NoError(t, err)
	assert.Empty(t, report.Narrative)
}

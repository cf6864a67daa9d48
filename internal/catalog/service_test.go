package catalog

import (
	"context"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/engagehub/internal/clock"
	"github.com/engagehub/internal/directory"
	"github.com/engagehub/internal/events"
	"github.com/engagehub/internal/policy"
	"github.com/engagehub/pkg/models"
)

var testNow = time.Date(2025, 6, 1, 9, 0, 0, 0, time.UTC)

// recordingDispatcher captures dispatched invites for assertions.
type recordingDispatcher struct {
	invites []string // "customerID:sessionID"
}

func (d *recordingDispatcher) DispatchInvite(session *models.Session, customer *models.Customer) {
	d.invites = append(d.invites, customer.ID+":"+session.ID)
}

func (d *recordingDispatcher) Close() {}

func newTestService(t *testing.T) (*Service, *directory.MemoryStore, *recordingDispatcher) {
	t.Helper()
	store := directory.NewMemoryStore()
	dispatcher := &recordingDispatcher{}
	svc := NewService(
		NewMemoryStore(),
		store,
		dispatcher,
		policy.DefaultInvitePolicy(),
		events.NoopPublisher{},
		clock.NewFake(testNow),
	)
	return svc, store, dispatcher
}

func validSpec() models.SessionSpec {
	return models.SessionSpec{
		Type:         models.SessionRegular,
		ScheduledAt:  testNow.Add(48 * time.Hour),
		Duration:     time.Hour,
		Capacity:     25,
		Facilitators: []string{"csm-sarah@engagehub.io"},
		Agenda:       []string{"incident follow-up", "Q&A"},
	}
}

func TestScheduleAndGet(t *testing.T) {
	svc, _, _ := newTestService(t)

	session, err := svc.Schedule(context.Background(), validSpec())
	require.NoError(t, err)
	require.NotEmpty(t, session.ID)
	assert.Equal(t, testNow, session.CreatedAt)

	got, err := svc.Get(context.Background(), session.ID)
	require.NoError(t, err)
	assert.Equal(t, session.ID, got.ID)
	assert.Equal(t, 25, got.Capacity)
}

func TestScheduleValidation(t *testing.T) {
	svc, _, _ := newTestService(t)
	ctx := context.Background()

	spec := validSpec()
	spec.Duration = 0
	_, err := svc.Schedule(ctx, spec)
	assert.Error(t, err)

	spec = validSpec()
	spec.Capacity = -1
	_, err = svc.Schedule(ctx, spec)
	assert.Error(t, err)

	spec = validSpec()
	spec.Type = models.SessionType("happy_hour")
	_, err = svc.Schedule(ctx, spec)
	assert.Error(t, err)

	spec = validSpec()
	spec.ScheduledAt = testNow.Add(-time.Hour)
	_, err = svc.Schedule(ctx, spec)
	assert.Error(t, err)
}

func TestScheduleBackdatedImport(t *testing.T) {
	svc, _, dispatcher := newTestService(t)

	spec := validSpec()
	spec.ScheduledAt = testNow.Add(-30 * 24 * time.Hour)
	spec.Backdated = true

	session, err := svc.Schedule(context.Background(), spec)
	require.NoError(t, err)
	assert.True(t, session.ScheduledAt.Before(testNow))
	// Historical imports invite nobody.
	assert.Empty(t, dispatcher.invites)
}

func TestGetUnknownSession(t *testing.T) {
	svc, _, _ := newTestService(t)

	_, err := svc.Get(context.Background(), "nope")
	assert.ErrorIs(t, err, models.ErrNotFound)
}

func TestUpcomingOrderAndLimit(t *testing.T) {
	svc, _, _ := newTestService(t)
	ctx := context.Background()

	offsets := []time.Duration{72 * time.Hour, 24 * time.Hour, 96 * time.Hour, 48 * time.Hour}
	for _, off := range offsets {
		spec := validSpec()
		spec.ScheduledAt = testNow.Add(off)
		_, err := svc.Schedule(ctx, spec)
		require.NoError(t, err)
	}

	upcoming, err := svc.Upcoming(ctx, testNow, 3)
	require.NoError(t, err)
	require.Len(t, upcoming, 3)
	assert.True(t, upcoming[0].ScheduledAt.Before(upcoming[1].ScheduledAt))
	assert.True(t, upcoming[1].ScheduledAt.Before(upcoming[2].ScheduledAt))
	assert.Equal(t, testNow.Add(24*time.Hour), upcoming[0].ScheduledAt)
}

func TestUpcomingSkipsPastSessions(t *testing.T) {
	svc, _, _ := newTestService(t)
	ctx := context.Background()

	past := validSpec()
	past.ScheduledAt = testNow.Add(-24 * time.Hour)
	past.Backdated = true
	_, err := svc.Schedule(ctx, past)
	require.NoError(t, err)

	future := validSpec()
	_, err = svc.Schedule(ctx, future)
	require.NoError(t, err)

	upcoming, err := svc.Upcoming(ctx, testNow, 0)
	require.NoError(t, err)
	require.Len(t, upcoming, 1)
	assert.Equal(t, future.ScheduledAt, upcoming[0].ScheduledAt)
}

func TestScheduleAutoInvitesEligibleCustomers(t *testing.T) {
	svc, store, dispatcher := newTestService(t)
	ctx := context.Background()

	require.NoError(t, store.PutCustomer(ctx, &models.Customer{
		ID: "ent-1", Segment: models.SegmentEnterprise, ContractValue: 400000, Active: true,
	}))
	require.NoError(t, store.PutCustomer(ctx, &models.Customer{
		ID: "str-1", Segment: models.SegmentStartup, ContractValue: 9000, Active: true,
	}))

	spec := validSpec()
	spec.Type = models.SessionExecutive
	session, err := svc.Schedule(ctx, spec)
	require.NoError(t, err)

	require.Len(t, dispatcher.invites, 1)
	assert.Equal(t, "ent-1:"+session.ID, dispatcher.invites[0])
}

package outreach

import (
	"context"
	"sync"
	"sync/atomic"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/engagehub/internal/clock"
	"github.com/engagehub/internal/directory"
	"github.com/engagehub/internal/events"
	"github.com/engagehub/internal/trust"
	"github.com/engagehub/pkg/models"
)

var testNow = time.Date(2025, 6, 1, 9, 0, 0, 0, time.UTC)

func newTestService(t *testing.T) (*Service, *directory.MemoryStore) {
	t.Helper()
	dir := directory.NewMemoryStore()
	clk := clock.NewFake(testNow)
	engine := trust.NewEngine(dir, events.NoopPublisher{}, clk, trust.DefaultConfig())
	svc := NewService(NewMemoryStore(), dir, engine, events.NoopPublisher{}, clk)
	return svc, dir
}

func seedCustomer(t *testing.T, store *directory.MemoryStore, id string, segment models.Segment) {
	t.Helper()
	require.NoError(t, store.PutCustomer(context.Background(), &models.Customer{
		ID:         id,
		Name:       "Customer " + id,
		Segment:    segment,
		TrustScore: models.TrustScoreDefault,
		Active:     true,
	}))
}

func validSpec(customerID string) OutreachSpec {
	return OutreachSpec{
		CustomerID:    customerID,
		ExecutiveName: "Dana Reeve",
		ExecutiveRole: "VP Customer Success",
		ScheduledAt:   testNow.Add(24 * time.Hour),
	}
}

func TestScheduleEnterpriseOnly(t *testing.T) {
	svc, dir := newTestService(t)
	seedCustomer(t, dir, "ent-1", models.SegmentEnterprise)
	seedCustomer(t, dir, "str-1", models.SegmentStartup)
	ctx := context.Background()

	o, err := svc.Schedule(ctx, validSpec("ent-1"))
	require.NoError(t, err)
	assert.NotEmpty(t, o.ID)
	assert.Nil(t, o.CompletedAt)

	_, err = svc.Schedule(ctx, validSpec("str-1"))
	assert.ErrorIs(t, err, models.ErrInvalidSegment)

	history, err := svc.History(ctx, "str-1")
	require.NoError(t, err)
	assert.Empty(t, history)
}

func TestScheduleUnknownCustomer(t *testing.T) {
	svc, _ := newTestService(t)

	_, err := svc.Schedule(context.Background(), validSpec("ghost"))
	assert.ErrorIs(t, err, models.ErrNotFound)
}

func TestCompleteAppliesTrustDelta(t *testing.T) {
	svc, dir := newTestService(t)
	seedCustomer(t, dir, "ent-1", models.SegmentEnterprise)
	ctx := context.Background()

	o, err := svc.Schedule(ctx, validSpec("ent-1"))
	require.NoError(t, err)

	done, err := svc.Complete(ctx, o.ID, "renewal committed", 2.0)
	require.NoError(t, err)
	require.NotNil(t, done.CompletedAt)
	assert.Equal(t, testNow, *done.CompletedAt)
	assert.Equal(t, "renewal committed", done.Outcome)

	customer, err := dir.GetCustomer(ctx, "ent-1")
	require.NoError(t, err)
	assert.InDelta(t, 7.0, customer.TrustScore, 1e-9)
}

func TestCompleteTwiceRejected(t *testing.T) {
	svc, dir := newTestService(t)
	seedCustomer(t, dir, "ent-1", models.SegmentEnterprise)
	ctx := context.Background()

	o, err := svc.Schedule(ctx, validSpec("ent-1"))
	require.NoError(t, err)

	_, err = svc.Complete(ctx, o.ID, "good call", 1.0)
	require.NoError(t, err)

	_, err = svc.Complete(ctx, o.ID, "again", 1.0)
	assert.ErrorIs(t, err, models.ErrAlreadyCompleted)

	// The score moved exactly once.
	customer, err := dir.GetCustomer(ctx, "ent-1")
	require.NoError(t, err)
	assert.InDelta(t, 6.0, customer.TrustScore, 1e-9)
}

func TestCompleteConcurrentCallersWinOnce(t *testing.T) {
	svc, dir := newTestService(t)
	seedCustomer(t, dir, "ent-1", models.SegmentEnterprise)
	ctx := context.Background()

	o, err := svc.Schedule(ctx, validSpec("ent-1"))
	require.NoError(t, err)

	const callers = 16
	var wg sync.WaitGroup
	var completed int64
	wg.Add(callers)
	for i := 0; i < callers; i++ {
		go func() {
			defer wg.Done()
			_, err := svc.Complete(ctx, o.ID, "renewal committed", 2.0)
			if err == nil {
				atomic.AddInt64(&completed, 1)
				return
			}
			assert.ErrorIs(t, err, models.ErrAlreadyCompleted)
		}()
	}
	wg.Wait()

	assert.Equal(t, int64(1), completed)

	// The delta landed exactly once.
	customer, err := dir.GetCustomer(ctx, "ent-1")
	require.NoError(t, err)
	assert.InDelta(t, 7.0, customer.TrustScore, 1e-9)
}

func TestCompleteClampsAtCeiling(t *testing.T) {
	svc, dir := newTestService(t)
	seedCustomer(t, dir, "ent-1", models.SegmentEnterprise)
	ctx := context.Background()

	o, err := svc.Schedule(ctx, validSpec("ent-1"))
	require.NoError(t, err)

	_, err = svc.Complete(ctx, o.ID, "outstanding", 50.0)
	require.NoError(t, err)

	customer, err := dir.GetCustomer(ctx, "ent-1")
	require.NoError(t, err)
	assert.InDelta(t, models.TrustScoreMax, customer.TrustScore, 1e-9)
}

func TestCompleteUnknownOutreach(t *testing.T) {
	svc, _ := newTestService(t)

	_, err := svc.Complete(context.Background(), "ghost", "n/a", 1.0)
	assert.ErrorIs(t, err, models.ErrNotFound)
}

func TestHistoryAppendOnlyOrder(t *testing.T) {
	svc, dir := newTestService(t)
	seedCustomer(t, dir, "ent-1", models.SegmentEnterprise)
	ctx := context.Background()

	first, err := svc.Schedule(ctx, validSpec("ent-1"))
	require.NoError(t, err)
	second, err := svc.Schedule(ctx, validSpec("ent-1"))
	require.NoError(t, err)

	history, err := svc.History(ctx, "ent-1")
	require.NoError(t, err)
	require.Len(t, history, 2)
	assert.Equal(t, first.ID, history[0].ID)
	assert.Equal(t, second.ID, history[1].ID)
}

package trust

import (
	"context"
	"sync"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/engagehub/internal/clock"
	"github.com/engagehub/internal/directory"
	"github.com/engagehub/internal/events"
	"github.com/engagehub/pkg/models"
)

func newTestEngine(t *testing.T) (*Engine, directory.Store) {
	t.Helper()
	store := directory.NewMemoryStore()
	clk := clock.NewFake(time.Date(2025, 6, 1, 12, 0, 0, 0, time.UTC))
	engine := NewEngine(store, events.NoopPublisher{}, clk, DefaultConfig())
	return engine, store
}

func seedCustomer(t *testing.T, store directory.Store, id string, score float64) {
	t.Helper()
	err := store.PutCustomer(context.Background(), &models.Customer{
		ID:         id,
		Name:       "Acme Corp",
		Segment:    models.SegmentEnterprise,
		TrustScore: score,
		Active:     true,
	})
	require.NoError(t, err)
}

func intPtr(v int) *int           { return &v }
func floatPtr(v float64) *float64 { return &v }

func TestApplyRatingAboveMidpoint(t *testing.T) {
	engine, store := newTestEngine(t)
	seedCustomer(t, store, "cust-1", models.TrustScoreDefault)

	score, err := engine.Apply(context.Background(), "cust-1", intPtr(5), nil)
	require.NoError(t, err)
	assert.Equal(t, 6.0, score)
}

func TestApplyRatingBelowMidpoint(t *testing.T) {
	engine, store := newTestEngine(t)
	seedCustomer(t, store, "cust-1", models.TrustScoreDefault)

	score, err := engine.Apply(context.Background(), "cust-1", intPtr(1), nil)
	require.NoError(t, err)
	assert.Equal(t, 4.0, score)
}

func TestApplyRatingThenDirectDelta(t *testing.T) {
	engine, store := newTestEngine(t)
	seedCustomer(t, store, "cust-1", models.TrustScoreDefault)

	score, err := engine.Apply(context.Background(), "cust-1", intPtr(5), nil)
	require.NoError(t, err)
	assert.Equal(t, 6.0, score)

	score, err = engine.Apply(context.Background(), "cust-1", nil, floatPtr(2))
	require.NoError(t, err)
	assert.Equal(t, 8.0, score)

	customer, err := store.GetCustomer(context.Background(), "cust-1")
	require.NoError(t, err)
	assert.Equal(t, 8.0, customer.TrustScore)
}

func TestApplyClampsAtCeiling(t *testing.T) {
	engine, store := newTestEngine(t)
	seedCustomer(t, store, "cust-1", 9.5)

	score, err := engine.Apply(context.Background(), "cust-1", intPtr(5), floatPtr(3))
	require.NoError(t, err)
	assert.Equal(t, models.TrustScoreMax, score)
}

func TestApplyClampsAtFloor(t *testing.T) {
	engine, store := newTestEngine(t)
	seedCustomer(t, store, "cust-1", 0.5)

	score, err := engine.Apply(context.Background(), "cust-1", intPtr(1), floatPtr(-4))
	require.NoError(t, err)
	assert.Equal(t, models.TrustScoreMin, score)
}

func TestApplyStaysBoundedOverAnySequence(t *testing.T) {
	engine, store := newTestEngine(t)
	seedCustomer(t, store, "cust-1", models.TrustScoreDefault)

	ratings := []int{1, 5, 5, 2, 4, 1, 1, 3, 5, 5}
	deltas := []float64{-3, 2.5, 4, -6, 1.25, 0, 7, -0.5, 2, -9}

	for i := range ratings {
		score, err := engine.Apply(context.Background(), "cust-1", intPtr(ratings[i]), floatPtr(deltas[i]))
		require.NoError(t, err)
		assert.GreaterOrEqual(t, score, models.TrustScoreMin)
		assert.LessOrEqual(t, score, models.TrustScoreMax)
	}
}

func TestApplyRejectsOutOfRangeRating(t *testing.T) {
	engine, store := newTestEngine(t)
	seedCustomer(t, store, "cust-1", models.TrustScoreDefault)

	_, err := engine.Apply(context.Background(), "cust-1", intPtr(6), nil)
	assert.Error(t, err)

	_, err = engine.Apply(context.Background(), "cust-1", intPtr(0), nil)
	assert.Error(t, err)

	// Score untouched after rejected input.
	customer, err := store.GetCustomer(context.Background(), "cust-1")
	require.NoError(t, err)
	assert.Equal(t, models.TrustScoreDefault, customer.TrustScore)
}

func TestApplyConcurrentDeltasAllLand(t *testing.T) {
	engine, store := newTestEngine(t)
	seedCustomer(t, store, "cust-1", 0)

	const callers = 200
	const delta = 0.02

	var wg sync.WaitGroup
	wg.Add(callers)
	for i := 0; i < callers; i++ {
		go func() {
			defer wg.Done()
			_, err := engine.Apply(context.Background(), "cust-1", nil, floatPtr(delta))
			assert.NoError(t, err)
		}()
	}
	wg.Wait()

	customer, err := store.GetCustomer(context.Background(), "cust-1")
	require.NoError(t, err)
	assert.InDelta(t, callers*delta, customer.TrustScore, 1e-6)
}

func TestApplyUnknownCustomer(t *testing.T) {
	engine, _ := newTestEngine(t)

	_, err := engine.Apply(context.Background(), "missing", intPtr(4), nil)
	assert.ErrorIs(t, err, models.ErrNotFound)
}

func TestTierForScore(t *testing.T) {
	assert.Equal(t, models.TierHealthy, models.TierForScore(8.0))
	assert.Equal(t, models.TierAtRisk, models.TierForScore(6.5))
	assert.Equal(t, models.TierCritical, models.TierForScore(4.0))
	assert.Equal(t, models.TierRedAlert, models.TierForScore(3.9))
}

package trust

import (
	"context"
	"fmt"
	"log"

	"github.com/google/uuid"

	"github.com/engagehub/internal/clock"
	"github.com/engagehub/internal/directory"
	"github.com/engagehub/internal/events"
	"github.com/engagehub/pkg/models"
)

// Config tunes the rating-to-delta mapping and score bounds.
type Config struct {
	Min          float64 `json:"min"`
	Max          float64 `json:"max"`
	RatingWeight float64 `json:"rating_weight"` // score change per rating unit above the scale midpoint
}

// DefaultConfig returns the standard 0-10 trust scale.
func DefaultConfig() Config {
	return Config{
		Min:          models.TrustScoreMin,
		Max:          models.TrustScoreMax,
		RatingWeight: 0.5,
	}
}

// Engine derives a customer's trust score from engagement signals. Apply is
// deterministic and touches nothing beyond the one customer record; the
// event publish is decoupled and never fails the update.
type Engine struct {
	directory directory.Store
	publisher events.Publisher
	clock     clock.Clock
	config    Config
}

func NewEngine(store directory.Store, publisher events.Publisher, clk clock.Clock, config Config) *Engine {
	return &Engine{
		directory: store,
		publisher: publisher,
		clock:     clk,
		config:    config,
	}
}

// Apply adjusts the customer's trust score from an optional feedback rating
// and an optional direct delta. A rating is re-centered against the scale
// midpoint and scaled by RatingWeight; direct deltas are added as-is. The
// result is clamped into [Min, Max] and persisted. The read-modify-write runs
// atomically in the directory, so concurrent Apply calls for one customer
// serialize and no delta is lost.
func (e *Engine) Apply(ctx context.Context, customerID string, rating *int, delta *float64) (float64, error) {
	if rating != nil && (*rating < models.RatingMin || *rating > models.RatingMax) {
		return 0, fmt.Errorf("rating %d outside scale %d-%d", *rating, models.RatingMin, models.RatingMax)
	}

	adjustment := 0.0
	if rating != nil {
		adjustment += (float64(*rating) - models.RatingMidpoint) * e.config.RatingWeight
	}
	if delta != nil {
		adjustment += *delta
	}

	var previous float64
	customer, err := e.directory.AdjustCustomer(ctx, customerID, func(c *models.Customer) {
		previous = c.TrustScore
		c.TrustScore = e.Clamp(previous + adjustment)
		c.UpdatedAt = e.clock.Now()
	})
	if err != nil {
		return 0, fmt.Errorf("failed to adjust customer: %w", err)
	}

	e.publishUpdate(ctx, customer, previous)

	return customer.TrustScore, nil
}

// Clamp bounds a score into the configured range.
func (e *Engine) Clamp(score float64) float64 {
	if score < e.config.Min {
		return e.config.Min
	}
	if score > e.config.Max {
		return e.config.Max
	}
	return score
}

func (e *Engine) publishUpdate(ctx context.Context, customer *models.Customer, previous float64) {
	event := models.EngagementEvent{
		ID:         uuid.NewString(),
		Type:       models.EventTrustUpdated,
		CustomerID: customer.ID,
		Timestamp:  e.clock.Now(),
		Payload: map[string]interface{}{
			"previous_score": previous,
			"new_score":      customer.TrustScore,
			"tier":           string(models.TierForScore(customer.TrustScore)),
		},
	}
	if err := e.publisher.Publish(ctx, events.TopicTrust, event); err != nil {
		log.Printf("Failed to publish trust update for %s: %v", customer.ID, err)
	}
}

package billing

import (
	"context"
	"fmt"

	"github.com/stripe/stripe-go/v74"
	"github.com/stripe/stripe-go/v74/subscription"
)

// ContractSource resolves a customer's annual contract value. Onboarding uses
// it to seed ContractValue, which drives invite eligibility.
type ContractSource interface {
	ContractValue(ctx context.Context, billingCustomerID string) (float64, error)
}

// StripeContracts derives the annual contract value from the customer's
// active Stripe subscriptions.
type StripeContracts struct{}

func NewStripeContracts(apiKey string) *StripeContracts {
	stripe.Key = apiKey
	return &StripeContracts{}
}

// ContractValue sums active subscription items, annualized, in dollars.
func (s *StripeContracts) ContractValue(ctx context.Context, billingCustomerID string) (float64, error) {
	params := &stripe.SubscriptionListParams{
		Customer: stripe.String(billingCustomerID),
		Status:   stripe.String(string(stripe.SubscriptionStatusActive)),
	}
	params.Context = ctx

	var totalCents int64
	iter := subscription.List(params)
	for iter.Next() {
		subscription := iter.Subscription()
		for _, item := range subscription.Items.Data {
			if item.Price == nil {
				continue
			}
			amount := item.Price.UnitAmount * item.Quantity
			if item.Price.Recurring != nil && item.Price.Recurring.Interval == stripe.PriceRecurringIntervalMonth {
				amount *= 12
			}
			totalCents += amount
		}
	}
	if err := iter.Err(); err != nil {
		return 0, fmt.Errorf("failed to list subscriptions for %s: %w", billingCustomerID, err)
	}

	return float64(totalCents) / 100, nil
}

// StaticContracts serves fixed values, for tests and offline runs.
type StaticContracts map[string]float64

func (s StaticContracts) ContractValue(ctx context.Context, billingCustomerID string) (float64, error) {
	value, ok := s[billingCustomerID]
	if !ok {
		return 0, fmt.Errorf("no contract on file for %s", billingCustomerID)
	}
	return value, nil
}

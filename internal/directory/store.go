package directory

import (
	"context"

	"github.com/engagehub/pkg/models"
)

// Store defines the customer directory consumed by the engagement services.
// The core never invents customers; it reads what onboarding put here and
// mutates only trust score and engagement timestamps.
//
// AdjustCustomer runs the mutation atomically against the live record, so
// concurrent trust-score and engagement updates to one customer serialize
// instead of overwriting each other.
type Store interface {
	GetCustomer(ctx context.Context, id string) (*models.Customer, error)
	ListActiveCustomers(ctx context.Context) ([]*models.Customer, error)
	AdjustCustomer(ctx context.Context, id string, mutate func(*models.Customer)) (*models.Customer, error)
	UpdateCustomer(ctx context.Context, customer *models.Customer) error
	PutCustomer(ctx context.Context, customer *models.Customer) error
	DeactivateCustomer(ctx context.Context, id string) error
}

package onboarding

import (
	"context"
	"fmt"
	"log"

	"github.com/google/uuid"

	"github.com/engagehub/internal/billing"
	"github.com/engagehub/internal/clock"
	"github.com/engagehub/internal/directory"
	"github.com/engagehub/internal/email"
	"github.com/engagehub/pkg/models"
)

// Service creates customer records. Contract value comes from the billing
// system when a billing ID is supplied; the lookup failing is not fatal, the
// value just starts at zero until the next sync.
type Service struct {
	directory directory.Store
	contracts billing.ContractSource
	email     *email.Service
	clock     clock.Clock
}

func NewService(directoryStore directory.Store, contracts billing.ContractSource, emailService *email.Service, clk clock.Clock) *Service {
	return &Service{
		directory: directoryStore,
		contracts: contracts,
		email:     emailService,
		clock:     clk,
	}
}

// OnboardRequest is the input for creating a customer.
type OnboardRequest struct {
	Name              string         `json:"name"`
	Segment           models.Segment `json:"segment"`
	BillingCustomerID string         `json:"billing_customer_id,omitempty"`
	PrimaryContact    models.Contact `json:"primary_contact"`
	SuccessManager    string         `json:"success_manager"`
}

// Onboard validates the request, resolves the contract value and stores the
// customer with the default trust score.
func (s *Service) Onboard(ctx context.Context, req OnboardRequest) (*models.Customer, error) {
	if req.Name == "" {
		return nil, fmt.Errorf("customer name is required")
	}
	if !models.ValidSegment(req.Segment) {
		return nil, fmt.Errorf("segment %q: %w", req.Segment, models.ErrInvalidSegment)
	}

	contractValue := 0.0
	if req.BillingCustomerID != "" && s.contracts != nil {
		value, err := s.contracts.ContractValue(ctx, req.BillingCustomerID)
		if err != nil {
			log.Printf("Failed to resolve contract value for %s: %v", req.BillingCustomerID, err)
		} else {
			contractValue = value
		}
	}

	now := s.clock.Now()
	customer := &models.Customer{
		ID:             uuid.NewString(),
		Name:           req.Name,
		Segment:        req.Segment,
		ContractValue:  contractValue,
		PrimaryContact: req.PrimaryContact,
		SuccessManager: req.SuccessManager,
		TrustScore:     models.TrustScoreDefault,
		Active:         true,
		CreatedAt:      now,
		UpdatedAt:      now,
	}
	if err := s.directory.PutCustomer(ctx, customer); err != nil {
		return nil, fmt.Errorf("failed to store customer: %w", err)
	}

	if s.email != nil {
		if err := s.email.SendWelcome(customer); err != nil {
			log.Printf("Failed to send welcome email to %s: %v", customer.ID, err)
		}
	}

	return customer, nil
}

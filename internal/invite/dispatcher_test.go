package invite

import (
	"testing"
	"time"

	"github.com/stretchr/testify/require"

	"github.com/engagehub/internal/email"
	"github.com/engagehub/pkg/models"
)

func testInvite() (*models.Session, *models.Customer) {
	session := &models.Session{
		ID:          "sess-1",
		Type:        models.SessionRegular,
		ScheduledAt: time.Date(2025, 6, 3, 9, 0, 0, 0, time.UTC),
		Duration:    time.Hour,
	}
	customer := &models.Customer{
		ID:             "cust-1",
		Name:           "Acme Corp",
		PrimaryContact: models.Contact{Name: "Jo", Email: "jo@acme.example"},
	}
	return session, customer
}

func TestDispatchAfterCloseDropsInvite(t *testing.T) {
	d := NewAsyncDispatcher(email.NewService("", "success@engagehub.io"), nil, "", 4)
	d.Close()

	session, customer := testInvite()
	require.NotPanics(t, func() {
		d.DispatchInvite(session, customer)
	})
}

func TestCloseIsIdempotent(t *testing.T) {
	d := NewAsyncDispatcher(email.NewService("", "success@engagehub.io"), nil, "", 4)

	session, customer := testInvite()
	d.DispatchInvite(session, customer)

	require.NotPanics(t, func() {
		d.Close()
		d.Close()
	})
}

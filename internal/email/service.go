package email

import (
	"fmt"
	"log"
	"net/smtp"
	"strings"

	"github.com/engagehub/pkg/models"
)

// Service sends customer-facing mail. With no SMTP address configured it
// logs instead of sending, which is what dev and test environments want.
type Service struct {
	addr string
	from string
}

func NewService(addr, from string) *Service {
	return &Service{addr: addr, from: from}
}

func (s *Service) Send(to, subject, body string) error {
	if s.addr == "" {
		log.Printf("Email (dry-run) to %s: %s", to, subject)
		return nil
	}

	msg := strings.Join([]string{
		fmt.Sprintf("From: %s", s.from),
		fmt.Sprintf("To: %s", to),
		fmt.Sprintf("Subject: %s", subject),
		"",
		body,
	}, "\r\n")

	if err := smtp.SendMail(s.addr, nil, s.from, []string{to}, []byte(msg)); err != nil {
		return fmt.Errorf("failed to send email to %s: %w", to, err)
	}
	return nil
}

// SendInvite emails a session invitation to the customer's primary contact.
func (s *Service) SendInvite(session *models.Session, customer *models.Customer) error {
	subject := fmt.Sprintf("You're invited: %s session on %s",
		session.Type, session.ScheduledAt.Format("Jan 2, 2006 15:04 MST"))
	body := fmt.Sprintf(
		"Hi %s,\n\nWe'd like to invite %s to an upcoming %s session.\n\nWhen: %s\nDuration: %s\nAgenda: %s\n",
		customer.PrimaryContact.Name,
		customer.Name,
		session.Type,
		session.ScheduledAt.Format("Monday, Jan 2 2006 15:04 MST"),
		session.Duration,
		strings.Join(session.Agenda, "; "),
	)
	return s.Send(customer.PrimaryContact.Email, subject, body)
}

// SendWelcome greets a freshly onboarded customer.
func (s *Service) SendWelcome(customer *models.Customer) error {
	subject := "Welcome to EngageHub"
	body := fmt.Sprintf(
		"Hi %s,\n\nWelcome aboard! Your success manager is %s.\nYou'll start receiving invitations to sessions that match your account.\n",
		customer.PrimaryContact.Name,
		customer.SuccessManager,
	)
	return s.Send(customer.PrimaryContact.Email, subject, body)
}

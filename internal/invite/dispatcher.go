package invite

import (
	"log"
	"sync"

	"github.com/engagehub/internal/email"
	"github.com/engagehub/internal/slack"
	"github.com/engagehub/pkg/models"
)

// Dispatcher receives (session, customer) pairs for calendar/email
// invitations. The core calls it but never depends on its success: a failed
// invite must not unregister a customer or unwind a scheduled session.
type Dispatcher interface {
	DispatchInvite(session *models.Session, customer *models.Customer)
	Close()
}

type invitation struct {
	session  *models.Session
	customer *models.Customer
}

// AsyncDispatcher queues invitations and delivers them on a background
// worker. A full queue drops the invite with a log line rather than blocking
// the scheduling path.
type AsyncDispatcher struct {
	emailService *email.Service
	slack        *slack.Client
	channel      string

	queue chan invitation
	done  chan struct{}
	once  sync.Once

	mu     sync.Mutex
	closed bool
}

func NewAsyncDispatcher(emailService *email.Service, slackClient *slack.Client, channel string, queueSize int) *AsyncDispatcher {
	if queueSize <= 0 {
		queueSize = 256
	}
	d := &AsyncDispatcher{
		emailService: emailService,
		slack:        slackClient,
		channel:      channel,
		queue:        make(chan invitation, queueSize),
		done:         make(chan struct{}),
	}
	go d.run()
	return d
}

// DispatchInvite enqueues without blocking. Invites arriving after Close, or
// into a full queue, are dropped with a log line.
func (d *AsyncDispatcher) DispatchInvite(session *models.Session, customer *models.Customer) {
	d.mu.Lock()
	defer d.mu.Unlock()

	if d.closed {
		log.Printf("Dispatcher closed, dropping invite for %s to session %s", customer.ID, session.ID)
		return
	}
	select {
	case d.queue <- invitation{session: session, customer: customer}:
	default:
		log.Printf("Invite queue full, dropping invite for %s to session %s", customer.ID, session.ID)
	}
}

func (d *AsyncDispatcher) run() {
	for inv := range d.queue {
		d.deliver(inv)
	}
	close(d.done)
}

func (d *AsyncDispatcher) deliver(inv invitation) {
	if err := d.emailService.SendInvite(inv.session, inv.customer); err != nil {
		// Delivery is retried by the mail infrastructure, not here.
		log.Printf("Failed to send invite for %s to session %s: %v", inv.customer.ID, inv.session.ID, err)
	}
	if d.slack != nil {
		msg := "Invited " + inv.customer.Name + " to " + string(inv.session.Type) + " session " + inv.session.ID
		if err := d.slack.SendMessage(d.channel, msg); err != nil {
			log.Printf("Failed to notify slack about invite: %v", err)
		}
	}
}

// Close stops accepting invitations and waits for queued ones to deliver.
func (d *AsyncDispatcher) Close() {
	d.once.Do(func() {
		d.mu.Lock()
		d.closed = true
		d.mu.Unlock()
		close(d.queue)
		<-d.done
	})
}

// NoopDispatcher discards invitations. Used in tests.
type NoopDispatcher struct{}

func (NoopDispatcher) DispatchInvite(session *models.Session, customer *models.Customer) {}

func (NoopDispatcher) Close() {}

package notification

import (
	"LeftoverLink/domain"
	"context"
	"fmt"

	"github.com/gofiber/fiber/v2/log"
)

// Recipient is the user a notification is about.
type Recipient struct {
	ID    string
	Name  string
	Email string
}

type Mailer interface {
	SendMail(toEmail string, subject string, body string) error
}

type (
	Notifier interface {
		DonationAccepted(ctx context.Context, donor Recipient, ev domain.DonationAcceptedEvent)
	}

	notifier struct {
		hub    *Hub
		mailer Mailer
	}
)

// NewNotifier publishes to hub rooms and, when mailer is non-nil, e-mails the donor.
func NewNotifier(hub *Hub, mailer Mailer) Notifier {
	return &notifier{hub: hub, mailer: mailer}
}

func (n *notifier) DonationAccepted(ctx context.Context, donor Recipient, ev domain.DonationAcceptedEvent) {
	delivered := n.hub.Publish(donor.ID, Event{Name: EventDonationAccepted, Data: ev})
	log.Infow("donation accepted notification", "donor", donor.ID, "food", ev.FoodID, "delivered", delivered)

	if n.mailer == nil || donor.Email == "" {
		return
	}
	subject := "Your donation was accepted"
	body := fmt.Sprintf(
		"<p>Hi %s,</p><p>Your %s donation (%g) at %s has been accepted.</p>",
		donor.Name, ev.FoodType, ev.Quantity, ev.Location,
	)
	go func() {
		if err := n.mailer.SendMail(donor.Email, subject, body); err != nil {
			log.Warnw("donation accepted mail failed", "donor", donor.ID, "error", err)
		}
	}()
}

package notification

import (
	"context"
	"testing"
	"time"

	"LeftoverLink/domain"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

type mail struct {
	to, subject, body string
}

type chanMailer struct {
	out chan mail
}

func (m *chanMailer) SendMail(to, subject, body string) error {
	m.out <- mail{to, subject, body}
	return nil
}

func TestNotifier_DonationAcceptedPublishesToDonorRoom(t *testing.T) {
	hub := NewHub()
	donor := newConn("c1", "donor-1")
	hub.Register(donor)
	require.NoError(t, hub.Join(donor, "donor-1"))

	ev := domain.DonationAcceptedEvent{ReceiverID: "ngo-1", FoodID: "f1", FoodType: "cooked", Quantity: 5, Location: "Gwalior"}
	NewNotifier(hub, nil).DonationAccepted(context.Background(), Recipient{ID: "donor-1"}, ev)

	got := donor.events(EventDonationAccepted)
	require.Len(t, got, 1)
	assert.Equal(t, ev, got[0].Data)
}

func TestNotifier_MailsDonor(t *testing.T) {
	mailer := &chanMailer{out: make(chan mail, 1)}
	n := NewNotifier(NewHub(), mailer)

	n.DonationAccepted(context.Background(),
		Recipient{ID: "donor-1", Name: "Rohit", Email: "rohit@example.com"},
		domain.DonationAcceptedEvent{FoodType: "raw", Quantity: 2, Location: "Lashkar"},
	)

	select {
	case m := <-mailer.out:
		assert.Equal(t, "rohit@example.com", m.to)
		assert.Contains(t, m.body, "raw")
		assert.Contains(t, m.body, "Lashkar")
	case <-time.After(time.Second):
		t.Fatal("mail not sent")
	}
}

func TestNotifier_NoEmailNoMail(t *testing.T) {
	mailer := &chanMailer{out: make(chan mail, 1)}
	NewNotifier(NewHub(), mailer).DonationAccepted(context.Background(), Recipient{ID: "d"}, domain.DonationAcceptedEvent{})

	select {
	case <-mailer.out:
		t.Fatal("unexpected mail")
	case <-time.After(50 * time.Millisecond):
	}
}

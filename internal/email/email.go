package email

import (
	"context"
	"fmt"

	"github.com/Domenick1991/skybooking/internal/kafka"
	"go.uber.org/zap"
)

type Message struct {
	To      string
	Subject string
	Body    string
}

// Sender turns session events into customer notifications. Delivery is
// logged; there is no mail transport behind it yet.
type Sender struct {
	log *zap.Logger
}

func NewSender(log *zap.Logger) *Sender {
	return &Sender{log: log}
}

func (s *Sender) Send(ctx context.Context, event kafka.SessionEvent) error {
	msg, ok := Compose(event)
	if !ok {
		s.log.Debug("no notification for event", zap.String("type", event.Type), zap.String("token", event.Token))
		return nil
	}
	s.log.Info("send email",
		zap.String("to", msg.To),
		zap.String("subject", msg.Subject),
		zap.String("token", event.Token),
		zap.Int64("flight_id", event.FlightID),
	)
	return nil
}

// Compose builds the notification for an event; ok is false when the event
// has no recipient or does not warrant one.
func Compose(event kafka.SessionEvent) (Message, bool) {
	if event.Email == "" {
		return Message{}, false
	}
	amount := formatAmount(event.TotalCents, event.Currency)

	var subject, body string
	switch event.Type {
	case kafka.EventSessionConfirmed:
		subject = "Your booking is confirmed"
		body = fmt.Sprintf("Booking %s for flight %d is confirmed for %d passenger(s). Total paid: %s.", event.Token, event.FlightID, event.Passengers, amount)
	case kafka.EventPaymentFailed:
		subject = "Payment was not completed"
		body = fmt.Sprintf("We could not charge %s for booking %s (%s). Your selection is kept, you can retry.", amount, event.Token, event.Reason)
	case kafka.EventSessionCancelled:
		subject = "Your booking was cancelled"
		body = fmt.Sprintf("Booking %s for flight %d was cancelled.", event.Token, event.FlightID)
		if event.PaymentStatus == "refunded" {
			body += fmt.Sprintf(" A refund of %s is on its way.", amount)
		}
	case kafka.EventSessionExpired:
		subject = "Your booking has expired"
		body = fmt.Sprintf("Booking %s was not completed in time and has been released.", event.Token)
	default:
		return Message{}, false
	}
	return Message{To: event.Email, Subject: subject, Body: body}, true
}

func formatAmount(cents int64, currency string) string {
	sign := ""
	if cents < 0 {
		sign = "-"
		cents = -cents
	}
	return fmt.Sprintf("%s%d.%02d %s", sign, cents/100, cents%100, currency)
}

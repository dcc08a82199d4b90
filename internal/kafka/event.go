package kafka

import (
	"time"

	"github.com/Domenick1991/skybooking/internal/domain"
)

const (
	EventSessionStarted   = "session_started"
	EventSessionConfirmed = "session_confirmed"
	EventPaymentFailed    = "payment_failed"
	EventSessionCancelled = "session_cancelled"
	EventSessionExpired   = "session_expired"
	EventRefundFailed     = "refund_failed"
)

// SessionEvent is the JSON payload written to the booking and notification topics.
type SessionEvent struct {
	Type          string    `json:"type"`
	Token         string    `json:"token"`
	FlightID      int64     `json:"flight_id"`
	Status        string    `json:"status"`
	PaymentStatus string    `json:"payment_status"`
	Email         string    `json:"email,omitempty"`
	Passengers    int       `json:"passengers"`
	TotalCents    int64     `json:"total_cents"`
	Currency      string    `json:"currency"`
	Reason        string    `json:"reason,omitempty"`
	Reference     string    `json:"payment_reference,omitempty"`
	OccurredAt    time.Time `json:"occurred_at"`
}

func NewSessionEvent(eventType string, s domain.Session, at time.Time) SessionEvent {
	event := SessionEvent{
		Type:          eventType,
		Token:         s.Token,
		Status:        string(s.Status),
		PaymentStatus: string(s.PaymentStatus),
		Passengers:    len(s.Passengers),
		TotalCents:    s.TotalCents,
		Currency:      s.Currency,
		OccurredAt:    at,
	}
	if s.Flight != nil {
		event.FlightID = s.Flight.ID
	}
	if s.Contact != nil {
		event.Email = s.Contact.Email
	}
	switch eventType {
	case EventPaymentFailed:
		event.Reason = s.PaymentFailureReason
	case EventSessionCancelled, EventSessionExpired:
		event.Reason = s.CancelReason
	case EventRefundFailed:
		event.Reason = s.CancelReason
		event.Reference = s.PaymentReference
	}
	return event
}

package kafka

import (
	"testing"
	"time"

	"github.com/Domenick1991/skybooking/internal/domain"
	"github.com/stretchr/testify/assert"
)

func TestNewSessionEvent(t *testing.T) {
	at := time.Date(2026, 3, 1, 12, 0, 0, 0, time.UTC)
	s := domain.Session{
		Token:         "tok",
		Flight:        &domain.FlightRef{ID: 4},
		Passengers:    []domain.Passenger{{FirstName: "Anna"}, {FirstName: "Boris"}},
		Contact:       &domain.Contact{Email: "anna@example.com"},
		TotalCents:    24100,
		Currency:      "EUR",
		Status:        domain.SessionStatusCancelled,
		PaymentStatus: domain.PaymentStatusRefunded,
		CancelReason:  "schedule change",
	}

	event := NewSessionEvent(EventSessionCancelled, s, at)

	assert.Equal(t, SessionEvent{
		Type:          EventSessionCancelled,
		Token:         "tok",
		FlightID:      4,
		Status:        "cancelled",
		PaymentStatus: "refunded",
		Email:         "anna@example.com",
		Passengers:    2,
		TotalCents:    24100,
		Currency:      "EUR",
		Reason:        "schedule change",
		OccurredAt:    at,
	}, event)

	draft := NewSessionEvent(EventSessionStarted, domain.Session{Token: "t2"}, at)
	assert.Zero(t, draft.FlightID)
	assert.Empty(t, draft.Email)
	assert.Empty(t, draft.Reason)
}

func TestNewSessionEvent_RefundFailedCarriesReference(t *testing.T) {
	at := time.Date(2026, 3, 1, 12, 0, 0, 0, time.UTC)
	s := domain.Session{
		Token:            "tok",
		Status:           domain.SessionStatusCancelled,
		PaymentStatus:    domain.PaymentStatusRefunded,
		PaymentReference: "pi_123",
		CancelReason:     "schedule change",
	}

	event := NewSessionEvent(EventRefundFailed, s, at)

	assert.Equal(t, "pi_123", event.Reference)
	assert.Equal(t, "schedule change", event.Reason)
	assert.Empty(t, NewSessionEvent(EventSessionCancelled, s, at).Reference)
}

func TestDecodeSessionEvent(t *testing.T) {
	event, err := DecodeSessionEvent([]byte(`{"type":"session_confirmed","token":"tok","flight_id":4,"total_cents":100}`))
	assert.NoError(t, err)
	assert.Equal(t, EventSessionConfirmed, event.Type)
	assert.Equal(t, int64(4), event.FlightID)

	_, err = DecodeSessionEvent([]byte(`{"token":"tok"}`))
	assert.Error(t, err)

	_, err = DecodeSessionEvent([]byte(`not json`))
	assert.Error(t, err)
}

// Package payment charges and refunds booking sessions. Gateways return a
// domain.PaymentOutcome for declines; an error means the gateway could not
// be reached or answered unexpectedly.
package payment

import (
	"context"

	"github.com/Domenick1991/skybooking/internal/domain"
)

type ChargeRequest struct {
	AmountCents int64
	Currency    string
	Instrument  string
	// IdempotencyKey makes retries of the same checkout safe.
	IdempotencyKey string
	SessionToken   string
}

type Gateway interface {
	Charge(ctx context.Context, req ChargeRequest) (domain.PaymentOutcome, error)
	Refund(ctx context.Context, reference string) error
}

package payment

import (
	"context"
	"strings"

	"github.com/Domenick1991/skybooking/internal/domain"
	"github.com/google/uuid"
)

// SimulatedGateway approves every instrument except those containing
// "decline". Used for local development and demos.
type SimulatedGateway struct{}

func NewSimulatedGateway() *SimulatedGateway {
	return &SimulatedGateway{}
}

func (SimulatedGateway) Charge(ctx context.Context, req ChargeRequest) (domain.PaymentOutcome, error) {
	if err := ctx.Err(); err != nil {
		return domain.PaymentOutcome{}, err
	}
	if req.Instrument == "" || strings.Contains(strings.ToLower(req.Instrument), "decline") {
		return domain.PaymentOutcome{FailureReason: "card_declined"}, nil
	}
	return domain.PaymentOutcome{Success: true, Reference: "sim_" + uuid.NewString()}, nil
}

func (SimulatedGateway) Refund(ctx context.Context, reference string) error {
	return ctx.Err()
}

var _ Gateway = SimulatedGateway{}

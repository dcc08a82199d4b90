package payment

import (
	"context"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestSimulatedGateway(t *testing.T) {
	g := NewSimulatedGateway()
	ctx := context.Background()

	ok, err := g.Charge(ctx, ChargeRequest{AmountCents: 100, Currency: "EUR", Instrument: "pm_card_visa"})
	require.NoError(t, err)
	assert.True(t, ok.Success)
	assert.Contains(t, ok.Reference, "sim_")

	declined, err := g.Charge(ctx, ChargeRequest{AmountCents: 100, Currency: "EUR", Instrument: "pm_card_Decline"})
	require.NoError(t, err)
	assert.False(t, declined.Success)
	assert.Equal(t, "card_declined", declined.FailureReason)

	cancelled, stop := context.WithCancel(ctx)
	stop()
	_, err = g.Charge(cancelled, ChargeRequest{Instrument: "pm_card_visa"})
	assert.ErrorIs(t, err, context.Canceled)
	assert.NoError(t, g.Refund(ctx, ok.Reference))
}

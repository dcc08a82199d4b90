package payment

import (
	"context"
	"errors"
	"fmt"
	"strings"

	"github.com/Domenick1991/skybooking/internal/domain"
	"github.com/stripe/stripe-go/v76"
	"github.com/stripe/stripe-go/v76/client"
)

type intentCreator interface {
	New(params *stripe.PaymentIntentParams) (*stripe.PaymentIntent, error)
}

type refundCreator interface {
	New(params *stripe.RefundParams) (*stripe.Refund, error)
}

type StripeGateway struct {
	intents intentCreator
	refunds refundCreator
}

func NewStripeGateway(secretKey string) *StripeGateway {
	sc := client.New(secretKey, nil)
	return &StripeGateway{intents: sc.PaymentIntents, refunds: sc.Refunds}
}

// Charge creates and confirms a PaymentIntent using the instrument as the
// payment method. Card errors are declines, not gateway errors.
func (g *StripeGateway) Charge(ctx context.Context, req ChargeRequest) (domain.PaymentOutcome, error) {
	params := &stripe.PaymentIntentParams{
		Amount:        stripe.Int64(req.AmountCents),
		Currency:      stripe.String(strings.ToLower(req.Currency)),
		PaymentMethod: stripe.String(req.Instrument),
		Confirm:       stripe.Bool(true),
		AutomaticPaymentMethods: &stripe.PaymentIntentAutomaticPaymentMethodsParams{
			Enabled:        stripe.Bool(true),
			AllowRedirects: stripe.String("never"),
		},
	}
	params.Context = ctx
	if req.IdempotencyKey != "" {
		params.SetIdempotencyKey(req.IdempotencyKey)
	}
	if req.SessionToken != "" {
		params.AddMetadata("session_token", req.SessionToken)
	}

	intent, err := g.intents.New(params)
	if err != nil {
		var stripeErr *stripe.Error
		if errors.As(err, &stripeErr) && stripeErr.Type == stripe.ErrorTypeCard {
			return domain.PaymentOutcome{FailureReason: declineReason(stripeErr)}, nil
		}
		return domain.PaymentOutcome{}, fmt.Errorf("stripe charge: %w", err)
	}
	return outcomeFromIntent(intent), nil
}

func (g *StripeGateway) Refund(ctx context.Context, reference string) error {
	if reference == "" {
		return errors.New("stripe refund: missing payment reference")
	}
	params := &stripe.RefundParams{PaymentIntent: stripe.String(reference)}
	params.Context = ctx
	if _, err := g.refunds.New(params); err != nil {
		return fmt.Errorf("stripe refund: %w", err)
	}
	return nil
}

func outcomeFromIntent(intent *stripe.PaymentIntent) domain.PaymentOutcome {
	if intent.Status == stripe.PaymentIntentStatusSucceeded {
		return domain.PaymentOutcome{Success: true, Reference: intent.ID}
	}
	reason := "payment_intent_" + string(intent.Status)
	if intent.LastPaymentError != nil && intent.LastPaymentError.Msg != "" {
		reason = intent.LastPaymentError.Msg
	}
	return domain.PaymentOutcome{FailureReason: reason, Reference: intent.ID}
}

func declineReason(err *stripe.Error) string {
	if err.DeclineCode != "" {
		return string(err.DeclineCode)
	}
	if err.Code != "" {
		return string(err.Code)
	}
	return err.Msg
}

var _ Gateway = (*StripeGateway)(nil)

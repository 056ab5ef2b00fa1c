package gateway

import (
	"context"
	"math"

	stripe "github.com/stripe/stripe-go/v74"
	"github.com/stripe/stripe-go/v74/paymentintent"
	"github.com/stripe/stripe-go/v74/refund"

	"farebroker/internal/domain"
	"farebroker/internal/service"
)

// StripeGateway implements service.PaymentGateway on top of Stripe
// PaymentIntents. Only the call result is surfaced; the lifecycle owns
// retries and timeouts.
type StripeGateway struct {
	currency string
}

// NewStripeGateway initializes the stripe client with the given API key.
func NewStripeGateway(apiKey, currency string) *StripeGateway {
	stripe.Key = apiKey
	if currency == "" {
		currency = "usd"
	}
	return &StripeGateway{currency: currency}
}

// Charge creates and confirms a PaymentIntent for the fare amount.
func (g *StripeGateway) Charge(ctx context.Context, amount float64, method domain.PaymentMethod, reference string) (*service.GatewayResult, error) {
	params := &stripe.PaymentIntentParams{
		Amount:   stripe.Int64(minorUnits(amount)),
		Currency: stripe.String(g.currency),
		Confirm:  stripe.Bool(true),
	}
	params.Context = ctx
	params.AddMetadata("ride_id", reference)

	pi, err := paymentintent.New(params)
	if err != nil {
		return nil, err
	}

	return &service.GatewayResult{
		Success:       pi.Status == stripe.PaymentIntentStatusSucceeded,
		TransactionID: pi.ID,
	}, nil
}

// Refund refunds a previously captured PaymentIntent. reference is the
// gateway correlation id recorded at charge time.
func (g *StripeGateway) Refund(ctx context.Context, amount float64, method domain.PaymentMethod, reference string) (*service.GatewayResult, error) {
	params := &stripe.RefundParams{
		PaymentIntent: stripe.String(reference),
		Amount:        stripe.Int64(minorUnits(amount)),
	}
	params.Context = ctx

	r, err := refund.New(params)
	if err != nil {
		return nil, err
	}

	return &service.GatewayResult{
		Success:       r.Status != stripe.RefundStatusFailed,
		TransactionID: r.ID,
	}, nil
}

func minorUnits(amount float64) int64 {
	return int64(math.Round(amount * 100))
}

var _ service.PaymentGateway = (*StripeGateway)(nil)

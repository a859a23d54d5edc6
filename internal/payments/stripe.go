package payments

import (
	"fmt"

	"github.com/stripe/stripe-go/v74"
	"github.com/stripe/stripe-go/v74/paymentintent"
)

// Gateway captures ride fares with the payment provider.
type Gateway interface {
	Capture(amount float64, currency, rideID string) (string, error)
}

// StripeGateway creates and confirms a PaymentIntent per ride. Amounts
// are converted to the smallest currency unit as Stripe requires.
type StripeGateway struct{}

func NewStripeGateway(apiKey string) *StripeGateway {
	stripe.Key = apiKey
	return &StripeGateway{}
}

func (g *StripeGateway) Capture(amount float64, currency, rideID string) (string, error) {
	params := &stripe.PaymentIntentParams{
		Amount:   stripe.Int64(int64(amount * 100)),
		Currency: stripe.String(currency),
		PaymentMethodTypes: stripe.StringSlice([]string{
			"card",
		}),
		Confirm: stripe.Bool(true),
	}
	params.AddMetadata("ride_id", rideID)

	pi, err := paymentintent.New(params)
	if err != nil {
		return "", fmt.Errorf("create payment intent: %w", err)
	}
	return pi.ID, nil
}

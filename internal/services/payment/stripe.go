package payment

import (
	"context"
	"fmt"
	"strings"

	"nimwema/internal/models"

	stripeapi "github.com/stripe/stripe-go/v72"
	"github.com/stripe/stripe-go/v72/paymentintent"
)

type stripeGateway struct{}

// NewStripeGateway creates the card gateway backed by Stripe payment
// intents.
func NewStripeGateway(apiKey string) Gateway {
	stripeapi.Key = apiKey
	return &stripeGateway{}
}

func (g *stripeGateway) Initiate(ctx context.Context, order *models.Order) (*InitiationResult, error) {
	params := &stripeapi.PaymentIntentParams{
		Amount:   stripeapi.Int64(int64(order.Total * 100)),
		Currency: stripeapi.String(strings.ToLower(order.Currency)),
	}
	params.Context = ctx
	params.AddMetadata("order_id", order.ID)
	params.AddMetadata("reference", order.PaymentReference)

	pi, err := paymentintent.New(params)
	if err != nil {
		return nil, classifyStripeError(err)
	}

	return &InitiationResult{
		Reference:         order.PaymentReference,
		ProviderReference: pi.ID,
		Instructions:      pi.ClientSecret,
	}, nil
}

func (g *stripeGateway) CheckStatus(ctx context.Context, providerRef string) (Status, error) {
	params := &stripeapi.PaymentIntentParams{}
	params.Context = ctx

	pi, err := paymentintent.Get(providerRef, params)
	if err != nil {
		return StatusPending, classifyStripeError(err)
	}

	switch pi.Status {
	case stripeapi.PaymentIntentStatusSucceeded:
		return StatusCompleted, nil
	case stripeapi.PaymentIntentStatusCanceled:
		return StatusFailed, nil
	default:
		return StatusPending, nil
	}
}

func classifyStripeError(err error) error {
	if stripeErr, ok := err.(*stripeapi.Error); ok {
		if stripeErr.HTTPStatusCode >= 500 {
			return fmt.Errorf("%w: %v", ErrProviderTransient, err)
		}
		return fmt.Errorf("%w: %v", ErrProviderPermanent, err)
	}
	return fmt.Errorf("%w: %v", ErrProviderTransient, err)
}

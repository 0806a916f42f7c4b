// Package payments creates Stripe payment intents and reconciles the
// webhook events that confirm them.
package payments

import (
	"context"
	"errors"
	"math"
	"net/http"

	"github.com/stripe/stripe-go/v76"
	"github.com/stripe/stripe-go/v76/client"

	apperr "github.com/phillip/clubify-go/apperr"
)

// Intent is the part of a processor payment intent the service cares about.
type Intent struct {
	ID           string            `json:"id"`
	ClientSecret string            `json:"clientSecret,omitempty"`
	Amount       int64             `json:"amount"`
	Currency     string            `json:"currency"`
	Status       string            `json:"status"`
	Metadata     map[string]string `json:"metadata"`
}

type IntentRequest struct {
	Amount   int64 // minor units
	Currency string
	Metadata map[string]string
}

// Gateway talks to the payment processor.
type Gateway interface {
	CreateIntent(ctx context.Context, req IntentRequest) (*Intent, error)
	GetIntent(ctx context.Context, id string) (*Intent, error)
}

// MinorUnits converts a major-unit amount to cents, rounding half away from zero.
func MinorUnits(amount float64) int64 {
	return int64(math.Round(amount * 100))
}

// MajorUnits converts cents back to the stored decimal amount.
func MajorUnits(amount int64) float64 {
	return float64(amount) / 100
}

type StripeGateway struct {
	api *client.API
}

func NewStripeGateway(secretKey string) *StripeGateway {
	return &StripeGateway{api: client.New(secretKey, nil)}
}

func (g *StripeGateway) CreateIntent(ctx context.Context, req IntentRequest) (*Intent, error) {
	params := &stripe.PaymentIntentParams{
		Amount:   stripe.Int64(req.Amount),
		Currency: stripe.String(req.Currency),
		AutomaticPaymentMethods: &stripe.PaymentIntentAutomaticPaymentMethodsParams{
			Enabled: stripe.Bool(true),
		},
	}
	params.Context = ctx
	for k, v := range req.Metadata {
		params.AddMetadata(k, v)
	}

	pi, err := g.api.PaymentIntents.New(params)
	if err != nil {
		return nil, stripeError(err)
	}
	return fromStripe(pi), nil
}

func (g *StripeGateway) GetIntent(ctx context.Context, id string) (*Intent, error) {
	params := &stripe.PaymentIntentParams{}
	params.Context = ctx

	pi, err := g.api.PaymentIntents.Get(id, params)
	if err != nil {
		return nil, stripeError(err)
	}
	return fromStripe(pi), nil
}

func fromStripe(pi *stripe.PaymentIntent) *Intent {
	return &Intent{
		ID:           pi.ID,
		ClientSecret: pi.ClientSecret,
		Amount:       pi.Amount,
		Currency:     string(pi.Currency),
		Status:       string(pi.Status),
		Metadata:     pi.Metadata,
	}
}

// stripeError maps processor failures onto apperr kinds.
func stripeError(err error) error {
	var se *stripe.Error
	if !errors.As(err, &se) {
		return apperr.Wrap(apperr.ErrUnavailable, "payment processor unavailable", err)
	}
	switch {
	case se.HTTPStatusCode == http.StatusNotFound || se.Code == stripe.ErrorCodeResourceMissing:
		return apperr.Wrap(apperr.ErrNotFound, "payment intent not found", err)
	case se.HTTPStatusCode >= 400 && se.HTTPStatusCode < 500 && se.HTTPStatusCode != http.StatusUnauthorized &&
		se.HTTPStatusCode != http.StatusTooManyRequests:
		msg := se.Msg
		if msg == "" {
			msg = "payment request rejected"
		}
		return apperr.Wrap(apperr.ErrValidation, msg, err)
	}
	return apperr.Wrap(apperr.ErrUnavailable, "payment processor unavailable", err)
}

var errPaymentsDisabled = apperr.New(apperr.ErrUnavailable, "payments are not configured")

// DisabledGateway stands in when no processor key is configured.
type DisabledGateway struct{}

func (DisabledGateway) CreateIntent(context.Context, IntentRequest) (*Intent, error) {
	return nil, errPaymentsDisabled
}

func (DisabledGateway) GetIntent(context.Context, string) (*Intent, error) {
	return nil, errPaymentsDisabled
}

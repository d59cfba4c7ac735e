// Package payment wraps the checkout provider. Only the pieces the booking
// flow needs are exposed; the wire protocol stays inside stripe-go.
package payment

import (
	"context"
	"encoding/json"

	"github.com/stripe/stripe-go/v76"
	"github.com/stripe/stripe-go/v76/checkout/session"
	"github.com/stripe/stripe-go/v76/webhook"

	"tourbook/internal/domain"
)

type CheckoutParams struct {
	TourID        string
	TourName      string
	TourSummary   string
	TourImageURL  string
	CustomerEmail string
	// AmountCents is the price in the smallest currency unit.
	AmountCents int64
	SuccessURL  string
	CancelURL   string
}

type CheckoutSession struct {
	ID  string
	URL string
}

// CheckoutEvent is a verified webhook event, reduced to the fields the
// booking flow consumes.
type CheckoutEvent struct {
	Type string
	// Completed-session payload:
	TourID        string
	CustomerEmail string
	AmountCents   int64
}

const EventCheckoutCompleted = "checkout.session.completed"

// Provider creates checkout sessions and verifies webhook payloads.
type Provider interface {
	CreateSession(ctx context.Context, p CheckoutParams) (CheckoutSession, error)
	ParseWebhook(payload []byte, signature string) (CheckoutEvent, error)
}

type StripeProvider struct {
	WebhookSecret string
}

func NewStripeProvider(secretKey, webhookSecret string) StripeProvider {
	stripe.Key = secretKey
	return StripeProvider{WebhookSecret: webhookSecret}
}

func (s StripeProvider) CreateSession(ctx context.Context, p CheckoutParams) (CheckoutSession, error) {
	params := &stripe.CheckoutSessionParams{
		Mode:              stripe.String(string(stripe.CheckoutSessionModePayment)),
		SuccessURL:        stripe.String(p.SuccessURL),
		CancelURL:         stripe.String(p.CancelURL),
		CustomerEmail:     stripe.String(p.CustomerEmail),
		ClientReferenceID: stripe.String(p.TourID),
		LineItems: []*stripe.CheckoutSessionLineItemParams{
			{
				Quantity: stripe.Int64(1),
				PriceData: &stripe.CheckoutSessionLineItemPriceDataParams{
					Currency:   stripe.String(string(stripe.CurrencyUSD)),
					UnitAmount: stripe.Int64(p.AmountCents),
					ProductData: &stripe.CheckoutSessionLineItemPriceDataProductDataParams{
						Name:        stripe.String(p.TourName),
						Description: stripe.String(p.TourSummary),
						Images:      stripe.StringSlice([]string{p.TourImageURL}),
					},
				},
			},
		},
	}
	params.Context = ctx

	sess, err := session.New(params)
	if err != nil {
		return CheckoutSession{}, domain.UpstreamError{Provider: "stripe", Err: err}
	}
	return CheckoutSession{ID: sess.ID, URL: sess.URL}, nil
}

// ParseWebhook verifies the Stripe-Signature header before trusting the
// payload.
func (s StripeProvider) ParseWebhook(payload []byte, signature string) (CheckoutEvent, error) {
	event, err := webhook.ConstructEvent(payload, signature, s.WebhookSecret)
	if err != nil {
		return CheckoutEvent{}, domain.ValidationError{Field: "stripe-signature", Msg: "webhook verification failed", Err: err}
	}

	out := CheckoutEvent{Type: string(event.Type)}
	if out.Type != EventCheckoutCompleted {
		return out, nil
	}

	var sess stripe.CheckoutSession
	if err := json.Unmarshal(event.Data.Raw, &sess); err != nil {
		return CheckoutEvent{}, domain.ValidationError{Field: "payload", Msg: "malformed checkout session", Err: err}
	}
	out.TourID = sess.ClientReferenceID
	out.CustomerEmail = sess.CustomerEmail
	out.AmountCents = sess.AmountTotal
	return out, nil
}

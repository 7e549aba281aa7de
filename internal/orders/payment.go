package orders

import (
	"context"
	"errors"
	"fmt"
	"os"

	"github.com/stripe/stripe-go/v82"
	"github.com/stripe/stripe-go/v82/client"

	"carfest-ticketing/internal/logger"
)

var (
	ErrStripeClientInitFailed = errors.New("failed to initialize Stripe client")
	ErrPaymentNotVerified     = errors.New("payment not verified by gateway")
)

// PaymentVerifier confirms with the gateway, server to server, that a
// payment reference really succeeded for the given order. A
// client-supplied "payment succeeded" flag is never trusted on its own.
type PaymentVerifier interface {
	VerifyPayment(ctx context.Context, orderNumber, paymentRef string) error
}

// StripeVerifier checks payment intents against the Stripe API.
type StripeVerifier struct {
	client *client.API
	log    *logger.Logger
}

func NewStripeVerifier(log *logger.Logger) (*StripeVerifier, error) {
	stripeKey := os.Getenv("STRIPE_SECRET_KEY")
	if stripeKey == "" {
		log.Error("STRIPE", "STRIPE_SECRET_KEY environment variable not set")
		return nil, ErrStripeClientInitFailed
	}

	sc := client.New(stripeKey, nil)
	log.Info("STRIPE", "Stripe client initialized successfully")
	return &StripeVerifier{client: sc, log: log}, nil
}

// VerifyPayment retrieves the payment intent and requires a succeeded
// status plus a matching order number in the intent metadata.
func (s *StripeVerifier) VerifyPayment(ctx context.Context, orderNumber, paymentRef string) error {
	if paymentRef == "" {
		return ErrPaymentNotVerified
	}

	params := &stripe.PaymentIntentParams{}
	params.Context = ctx

	intent, err := s.client.PaymentIntents.Get(paymentRef, params)
	if err != nil {
		s.log.Error("STRIPE", fmt.Sprintf("Failed to retrieve payment intent %s: %v", paymentRef, err))
		return fmt.Errorf("%w: %v", ErrPaymentNotVerified, err)
	}

	if intent.Status != stripe.PaymentIntentStatusSucceeded {
		s.log.Warn("STRIPE", fmt.Sprintf("Payment intent %s has status %s, not succeeded", paymentRef, intent.Status))
		return ErrPaymentNotVerified
	}

	if intent.Metadata["order_number"] != orderNumber {
		s.log.LogSecurity("PAYMENT_MISMATCH", fmt.Sprintf("Payment intent %s does not belong to order %s", paymentRef, orderNumber))
		return ErrPaymentNotVerified
	}

	return nil
}

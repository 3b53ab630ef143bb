package payments

import (
	"context"
	"fmt"

	"github.com/stripe/stripe-go/v82"
	"github.com/stripe/stripe-go/v82/customer"
	"github.com/stripe/stripe-go/v82/paymentmethod"
	"github.com/stripe/stripe-go/v82/setupintent"
	"github.com/stripe/stripe-go/v82/subscription"
)

// Card is the normalized subset of card fields safe to return to clients.
type Card struct {
	Brand    string `json:"brand"`
	Last4    string `json:"last4"`
	ExpMonth int64  `json:"exp_month"`
	ExpYear  int64  `json:"exp_year"`
}

type PaymentMethod struct {
	ID   string `json:"id"`
	Type string `json:"type"`
	Card *Card  `json:"card,omitempty"`
}

type SetupIntent struct {
	ClientSecret string
	CustomerID   string
}

type SubscriptionCancellation struct {
	ID         string `json:"id"`
	Status     string `json:"status"`
	CanceledAt int64  `json:"canceled_at"`
}

// Service wraps the payment processor. Operations either succeed with the
// processor's acknowledged state or fail with the processor error preserved;
// none of them are retried here.
type Service interface {
	CreateCustomer(ctx context.Context, email, name, userID string) (string, error)
	CreateSetupIntent(ctx context.Context, customerID string) (*SetupIntent, error)
	GetPaymentMethod(ctx context.Context, paymentMethodID string) (*PaymentMethod, error)
	DetachPaymentMethod(ctx context.Context, paymentMethodID string) error
	CancelSubscription(ctx context.Context, subscriptionID string) (*SubscriptionCancellation, error)
}

type stripeService struct{}

// New configures the global Stripe key and returns the live Service.
func New(apiKey string) Service {
	stripe.Key = apiKey
	return &stripeService{}
}

func (s *stripeService) CreateCustomer(ctx context.Context, email, name, userID string) (string, error) {
	params := &stripe.CustomerParams{
		Email: stripe.String(email),
		Name:  stripe.String(name),
	}
	params.Context = ctx
	params.AddMetadata("user_id", userID)

	c, err := customer.New(params)
	if err != nil {
		return "", fmt.Errorf("stripe customer create: %w", err)
	}
	return c.ID, nil
}

func (s *stripeService) CreateSetupIntent(ctx context.Context, customerID string) (*SetupIntent, error) {
	params := &stripe.SetupIntentParams{
		Customer:           stripe.String(customerID),
		PaymentMethodTypes: stripe.StringSlice([]string{"card"}),
	}
	params.Context = ctx

	si, err := setupintent.New(params)
	if err != nil {
		return nil, fmt.Errorf("stripe setup intent create: %w", err)
	}
	return &SetupIntent{ClientSecret: si.ClientSecret, CustomerID: customerID}, nil
}

func (s *stripeService) GetPaymentMethod(ctx context.Context, paymentMethodID string) (*PaymentMethod, error) {
	params := &stripe.PaymentMethodParams{}
	params.Context = ctx

	pm, err := paymentmethod.Get(paymentMethodID, params)
	if err != nil {
		return nil, fmt.Errorf("stripe payment method get: %w", err)
	}
	return normalizePaymentMethod(pm), nil
}

func (s *stripeService) DetachPaymentMethod(ctx context.Context, paymentMethodID string) error {
	params := &stripe.PaymentMethodDetachParams{}
	params.Context = ctx

	if _, err := paymentmethod.Detach(paymentMethodID, params); err != nil {
		return fmt.Errorf("stripe payment method detach: %w", err)
	}
	return nil
}

func (s *stripeService) CancelSubscription(ctx context.Context, subscriptionID string) (*SubscriptionCancellation, error) {
	params := &stripe.SubscriptionCancelParams{}
	params.Context = ctx

	sub, err := subscription.Cancel(subscriptionID, params)
	if err != nil {
		return nil, fmt.Errorf("stripe subscription cancel: %w", err)
	}
	return &SubscriptionCancellation{
		ID:         sub.ID,
		Status:     string(sub.Status),
		CanceledAt: sub.CanceledAt,
	}, nil
}

// normalizePaymentMethod keeps only display-safe fields. Full card numbers are
// never present on stripe.PaymentMethod, but the narrowing is still explicit.
func normalizePaymentMethod(pm *stripe.PaymentMethod) *PaymentMethod {
	out := &PaymentMethod{
		ID:   pm.ID,
		Type: string(pm.Type),
	}
	if pm.Card != nil {
		out.Card = &Card{
			Brand:    string(pm.Card.Brand),
			Last4:    pm.Card.Last4,
			ExpMonth: pm.Card.ExpMonth,
			ExpYear:  pm.Card.ExpYear,
		}
	}
	return out
}

package clinup

import (
	"context"
	"net/http"
)

// SubscriptionStatus gates adding more logements.
type SubscriptionStatus string

const (
	SubscriptionNeeded SubscriptionStatus = "subscription_needed"
	UpgradeNeeded      SubscriptionStatus = "upgrade_needed"
)

// Blocking reports whether the host must (re)subscribe before adding a logement.
func (s SubscriptionStatus) Blocking() bool {
	return s == SubscriptionNeeded || s == UpgradeNeeded
}

// StripeConfigured reports whether the provider finished payout onboarding.
func (c Client) StripeConfigured(ctx context.Context) (bool, error) {
	var out struct {
		StatutStripe bool `json:"statutStripe"`
	}
	_, err := c.doJSON(ctx, http.MethodGet, "/api/stripe/status", nil, &out)
	return out.StatutStripe, err
}

// StripeOnboardingLink returns the url the provider opens to configure payouts.
func (c Client) StripeOnboardingLink(ctx context.Context) (string, error) {
	var out struct {
		URL string `json:"url"`
	}
	if _, err := c.doJSON(ctx, http.MethodPost, "/api/stripe/link", struct{}{}, &out); err != nil {
		return "", err
	}
	if out.URL == "" {
		return "", &DomainError{Message: "missing onboarding url"}
	}
	return out.URL, nil
}

func (c Client) SubscriptionStatus(ctx context.Context) (SubscriptionStatus, error) {
	var out struct {
		Status SubscriptionStatus `json:"status"`
	}
	_, err := c.doJSON(ctx, http.MethodGet, "/api/subscription/status", nil, &out)
	return out.Status, err
}

func (c Client) SubscriptionCheckout(ctx context.Context) (SheetParams, error) {
	var p SheetParams
	_, err := c.doJSON(ctx, http.MethodPost, "/api/subscription/checkout", struct{}{}, &p)
	return p, err
}

package deeplink

import (
	"fmt"
	"net/url"
	"strings"
)

const (
	Scheme           = "myapp"
	StripeStatusPath = "/api/stripe/status"
)

// Onboarding is what the payout provider sends back after the onboarding page.
type Onboarding int

const (
	OnboardingUnknown Onboarding = iota
	OnboardingSuccess
	// OnboardingRefresh means the link expired and a new one must be requested.
	OnboardingRefresh
)

func (o Onboarding) String() string {
	switch o {
	case OnboardingSuccess:
		return "success"
	case OnboardingRefresh:
		return "refresh"
	default:
		return "unknown"
	}
}

// ParseStripeReturn parses myapp://api/stripe/status?status=success|refresh.
func ParseStripeReturn(raw string) (Onboarding, error) {
	u, err := url.Parse(raw)
	if err != nil {
		return OnboardingUnknown, err
	}
	if u.Scheme != Scheme {
		return OnboardingUnknown, fmt.Errorf("unexpected scheme %q", u.Scheme)
	}
	// With a custom scheme the first segment lands in Host.
	path := "/" + strings.Trim(u.Host+u.Path, "/")
	if path != StripeStatusPath {
		return OnboardingUnknown, fmt.Errorf("unexpected path %q", path)
	}
	switch u.Query().Get("status") {
	case "success":
		return OnboardingSuccess, nil
	case "refresh":
		return OnboardingRefresh, nil
	default:
		return OnboardingUnknown, nil
	}
}

func StripeReturnURL(status string) string {
	return Scheme + ":/" + StripeStatusPath + "?status=" + url.QueryEscape(status)
}

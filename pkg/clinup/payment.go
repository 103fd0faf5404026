package clinup

import (
	"context"
	"net/http"
)

// PaymentStatus is the confirmation endpoint's verdict.
type PaymentStatus string

const (
	PaymentSucceeded PaymentStatus = "succeeded"
	PaymentFailed    PaymentStatus = "failed"
	PaymentPending   PaymentStatus = "pending"
)

type paymentStatusResponse struct {
	Status PaymentStatus `json:"status"`
}

// CheckoutSession opens a payment session for a host choosing a provider.
func (c Client) CheckoutSession(ctx context.Context, reservationID, providerID ID) (SheetParams, error) {
	body := struct {
		ReservationID ID `json:"reservationId"`
		PrestataireID ID `json:"prestataireId"`
	}{reservationID, providerID}
	var p SheetParams
	_, err := c.doJSON(ctx, http.MethodPost, "/api/reservation/checkout-session", body, &p)
	return p, err
}

// InvitationCheckoutSession opens a payment session for an invitation-originated reservation.
func (c Client) InvitationCheckoutSession(ctx context.Context, reservationID ID) (SheetParams, error) {
	var p SheetParams
	_, err := c.doJSON(ctx, http.MethodPost, idPath("/api/reservation/%s/checkout-session/invit", reservationID), struct{}{}, &p)
	return p, err
}

func (c Client) PaymentStatus(ctx context.Context, reservationID ID) (PaymentStatus, error) {
	return c.paymentStatus(ctx, "/api/reservation/check-payment-status", reservationID)
}

func (c Client) InvitationPaymentStatus(ctx context.Context, reservationID ID) (PaymentStatus, error) {
	return c.paymentStatus(ctx, "/api/reservation/check-payment-status_invit", reservationID)
}

func (c Client) paymentStatus(ctx context.Context, path string, reservationID ID) (PaymentStatus, error) {
	body := struct {
		ReservationID ID `json:"reservationId"`
	}{reservationID}
	var out paymentStatusResponse
	if _, err := c.doJSON(ctx, http.MethodPost, path, body, &out); err != nil {
		return "", err
	}
	return out.Status, nil
}

package payment

import (
	"context"
	"errors"
	"fmt"
	"log/slog"

	"clinup/internal/ui"
	"clinup/pkg/clinup"
)

const MerchantDisplayName = "Clinup"

const (
	MsgFetchFailed     = "Échec de la récupération des paramètres de paiement."
	MsgMissingParams   = "Paramètres de paiement manquants."
	MsgProcessing      = "Votre paiement est en cours de traitement..."
	MsgConfirmed       = "Votre paiement a été confirmé !"
	MsgFailed          = "Le paiement a échoué. Veuillez réessayer."
	MsgPending         = "Paiement en attente de confirmation."
	MsgCheckFailed     = "Échec de la vérification du paiement."
	MsgSubscribed      = "Votre abonnement a été activé."
	MsgSubscribeFailed = "Une erreur est survenue. Veuillez réessayer."
)

var (
	ErrMissingParams  = errors.New("payment session parameters missing")
	ErrNotInitialized = errors.New("payment sheet not initialized")
)

// Sheet is the payment SDK's sheet. Init and Present are the only calls the flow makes.
type Sheet interface {
	Init(ctx context.Context, cfg SheetConfig) error
	Present(ctx context.Context) error
}

type SheetConfig struct {
	MerchantDisplayName         string
	Params                      clinup.SheetParams
	AllowsDelayedPaymentMethods bool
}

// SheetError is what the SDK reports when the user cancels or the card is declined.
type SheetError struct {
	Code    string
	Message string
}

func (e *SheetError) Error() string { return fmt.Sprintf("payment sheet: %s: %s", e.Code, e.Message) }

// Backend is the part of clinup.Client the flow needs.
type Backend interface {
	CheckoutSession(ctx context.Context, reservationID, providerID clinup.ID) (clinup.SheetParams, error)
	InvitationCheckoutSession(ctx context.Context, reservationID clinup.ID) (clinup.SheetParams, error)
	PaymentStatus(ctx context.Context, reservationID clinup.ID) (clinup.PaymentStatus, error)
	InvitationPaymentStatus(ctx context.Context, reservationID clinup.ID) (clinup.PaymentStatus, error)
	SubscriptionCheckout(ctx context.Context) (clinup.SheetParams, error)
}

type Kind int

const (
	// Direct: the host picked a candidate; the session is tied to that provider.
	Direct Kind = iota
	// Invitation: the provider was invited, so only the reservation id is needed.
	Invitation
)

type Request struct {
	Kind          Kind
	ReservationID clinup.ID
	ProviderID    clinup.ID
}

// Result is the confirmation branch that was taken.
type Result string

const (
	ResultSucceeded Result = "succeeded"
	ResultFailed    Result = "failed"
	ResultPending   Result = "pending"
)

// Flow runs one payment: session, Init, Present, confirmation. It holds no state besides
// whether the sheet was initialized.
type Flow struct {
	Backend Backend
	Sheet   Sheet
	Alerts  ui.Alerter
	Nav     ui.Navigator
	Logger  *slog.Logger

	req         Request
	initialized bool
}

func (f *Flow) Initialized() bool { return f.initialized }

// Prepare requests the session and initializes the sheet.
func (f *Flow) Prepare(ctx context.Context, req Request) error {
	f.initialized = false
	f.req = req

	var (
		params clinup.SheetParams
		err    error
	)
	switch req.Kind {
	case Invitation:
		params, err = f.Backend.InvitationCheckoutSession(ctx, req.ReservationID)
	default:
		params, err = f.Backend.CheckoutSession(ctx, req.ReservationID, req.ProviderID)
	}
	if err != nil {
		f.logger().Warn("checkout session failed", "reservation_id", string(req.ReservationID), "err", err)
		f.Alerts.Alert(ui.KindError, clinup.UserMessage(err, MsgFetchFailed))
		return err
	}
	if !params.Complete() {
		f.Alerts.Alert(ui.KindError, MsgMissingParams)
		return ErrMissingParams
	}

	if err := f.Sheet.Init(ctx, SheetConfig{
		MerchantDisplayName:         MerchantDisplayName,
		Params:                      params,
		AllowsDelayedPaymentMethods: true,
	}); err != nil {
		f.logger().Warn("payment sheet init failed", "reservation_id", string(req.ReservationID), "err", err)
		return err
	}
	f.initialized = true
	return nil
}

// Pay presents the sheet and, when the user completes it, asks the backend for the verdict.
// succeeded navigates to the reservation; failed and pending only alert.
func (f *Flow) Pay(ctx context.Context) (Result, error) {
	if !f.initialized {
		return "", ErrNotInitialized
	}
	if err := f.Sheet.Present(ctx); err != nil {
		f.alertSheetError(err)
		return "", err
	}
	f.Alerts.Alert(ui.KindSuccess, MsgProcessing)

	var (
		status clinup.PaymentStatus
		err    error
	)
	switch f.req.Kind {
	case Invitation:
		status, err = f.Backend.InvitationPaymentStatus(ctx, f.req.ReservationID)
	default:
		status, err = f.Backend.PaymentStatus(ctx, f.req.ReservationID)
	}
	if err != nil {
		f.logger().Warn("payment status check failed", "reservation_id", string(f.req.ReservationID), "err", err)
		f.Alerts.Alert(ui.KindError, clinup.UserMessage(err, MsgCheckFailed))
		return "", err
	}
	return f.confirm(status), nil
}

func (f *Flow) confirm(status clinup.PaymentStatus) Result {
	switch status {
	case clinup.PaymentSucceeded:
		f.Alerts.Alert(ui.KindSuccess, MsgConfirmed)
		f.Nav.Navigate(ui.ScreenDetailsReservationHote, ui.Params{"reservationId": string(f.req.ReservationID)})
		return ResultSucceeded
	case clinup.PaymentFailed:
		f.Alerts.Alert(ui.KindFailure, MsgFailed)
		return ResultFailed
	default:
		f.Alerts.Alert(ui.KindInfo, MsgPending)
		return ResultPending
	}
}

// Run is Prepare followed by Pay.
func (f *Flow) Run(ctx context.Context, req Request) (Result, error) {
	if err := f.Prepare(ctx, req); err != nil {
		return "", err
	}
	return f.Pay(ctx)
}

// Subscribe runs the same sheet sequence for the host subscription. There is no
// confirmation call: a completed sheet means the subscription is active.
func (f *Flow) Subscribe(ctx context.Context) error {
	params, err := f.Backend.SubscriptionCheckout(ctx)
	if err != nil {
		f.Alerts.Alert(ui.KindError, clinup.UserMessage(err, MsgSubscribeFailed))
		return err
	}
	if !params.Complete() {
		f.Alerts.Alert(ui.KindError, MsgMissingParams)
		return ErrMissingParams
	}
	if err := f.Sheet.Init(ctx, SheetConfig{
		MerchantDisplayName:         MerchantDisplayName,
		Params:                      params,
		AllowsDelayedPaymentMethods: true,
	}); err != nil {
		return err
	}
	if err := f.Sheet.Present(ctx); err != nil {
		f.alertSheetError(err)
		return err
	}
	f.Alerts.Alert(ui.KindSuccess, MsgSubscribed)
	return nil
}

func (f *Flow) alertSheetError(err error) {
	var se *SheetError
	if errors.As(err, &se) {
		f.Alerts.Alert(ui.KindError, fmt.Sprintf("Erreur de paiement: %s %s", se.Code, se.Message))
		return
	}
	f.Alerts.Alert(ui.KindError, "Erreur de paiement: "+err.Error())
}

func (f *Flow) logger() *slog.Logger {
	if f.Logger == nil {
		return slog.Default()
	}
	return f.Logger
}

package main

import (
	"context"
	"errors"

	"clinup/internal/payment"
	"clinup/internal/reservation"
	"clinup/internal/ui"
	"clinup/pkg/clinup"
)

func invitationRequest(id clinup.ID) payment.Request {
	return payment.Request{Kind: payment.Invitation, ReservationID: id}
}

func (a *app) flow(yes bool) *payment.Flow {
	return &payment.Flow{
		Backend: a.client,
		Sheet:   &payment.ConsoleSheet{In: a.in, Out: a.out, Yes: yes},
		Alerts:  a.console,
		Nav:     a.console,
		Logger:  a.logger,
	}
}

func (a *app) pay(ctx context.Context, req payment.Request, yes bool) error {
	result, err := a.flow(yes).Run(ctx, req)
	if err != nil {
		return err
	}
	if result == payment.ResultFailed {
		return errors.New("payment failed")
	}
	return nil
}

// runChoose picks an applicant and pays for the reservation, which confirms it.
func runChoose(ctx context.Context, a *app, args []string) error {
	fs := newFlags("choose")
	provider := fs.String("provider", "", "id of the applicant to book")
	yes := fs.Bool("yes", false, "confirm the payment without prompting")
	if err := fs.Parse(args); err != nil {
		return err
	}
	id, err := reservationID(fs)
	if err != nil {
		return err
	}
	if *provider == "" {
		return errors.New("-provider is required")
	}
	ctl, err := a.controller(ctx, id)
	if err != nil {
		return err
	}
	pid := clinup.ID(*provider)
	if err := ctl.ChooseCandidate(ctx, pid); err != nil {
		return err
	}
	return a.pay(ctx, payment.Request{Kind: payment.Direct, ReservationID: id, ProviderID: pid}, *yes)
}

func runPayInvitation(ctx context.Context, a *app, args []string) error {
	fs := newFlags("pay-invit")
	yes := fs.Bool("yes", false, "confirm the payment without prompting")
	if err := fs.Parse(args); err != nil {
		return err
	}
	id, err := reservationID(fs)
	if err != nil {
		return err
	}
	if _, err := a.role(); err != nil {
		return err
	}
	return a.pay(ctx, invitationRequest(id), *yes)
}

// runSubscription checks the host subscription gate and subscribes when it blocks.
func runSubscription(ctx context.Context, a *app, args []string) error {
	fs := newFlags("subscription")
	yes := fs.Bool("yes", false, "confirm the payment without prompting")
	if err := fs.Parse(args); err != nil {
		return err
	}
	role, err := a.role()
	if err != nil {
		return err
	}
	if role != reservation.RoleHost {
		return errors.New("subscriptions are for hosts")
	}

	status, err := a.client.SubscriptionStatus(ctx)
	if err != nil {
		return err
	}
	if !status.Blocking() {
		a.console.Navigate(ui.ScreenAddLogement, nil)
		return nil
	}
	a.logger.Info("subscription required", "status", string(status))
	return a.flow(*yes).Subscribe(ctx)
}

package main

import (
	"context"
	"errors"
	"flag"
	"fmt"
	"text/tabwriter"

	"clinup/internal/dashboard"
	"clinup/internal/deeplink"
	"clinup/internal/invitation"
	"clinup/internal/logement"
	"clinup/internal/reservation"
	"clinup/internal/ui"
	"clinup/pkg/clinup"
)

func runInvitations(ctx context.Context, a *app, args []string) error {
	screen := invitation.NewScreen(a.client, a.console)
	sub := "list"
	if len(args) > 0 {
		sub, args = args[0], args[1:]
	}

	if sub == "relaunch" {
		if len(args) != 1 {
			return fmt.Errorf("expected one invitation id")
		}
		return screen.Relaunch(ctx, clinup.ID(args[0]))
	}
	if err := screen.Mount(ctx); err != nil {
		return err
	}

	switch sub {
	case "list":
	case "add":
		fs := newFlags("invitations add")
		nom := fs.String("nom", "", "provider name")
		email := fs.String("email", "", "provider email")
		message := fs.String("message", "", "personal message")
		if err := fs.Parse(args); err != nil {
			return err
		}
		if err := screen.Invite(ctx, clinup.NewInvitation{Nom: *nom, Email: *email, Message: *message}); err != nil {
			return err
		}
	case "delete":
		if len(args) != 1 {
			return fmt.Errorf("expected one invitation id")
		}
		if err := screen.Delete(ctx, clinup.ID(args[0])); err != nil {
			return err
		}
	default:
		return fmt.Errorf("unknown invitations command %q", sub)
	}

	tw := tabwriter.NewWriter(a.out, 0, 4, 2, ' ', 0)
	defer tw.Flush()
	fmt.Fprintln(tw, "ID\tNOM\tEMAIL\tCODE\tÉTAT")
	for _, inv := range screen.Invitations() {
		fmt.Fprintf(tw, "%s\t%s\t%s\t%s\t%s\n", inv.ID, inv.Nom, inv.Email, inv.Code, invitation.ParseEtat(inv.Etat).Label())
	}
	return nil
}

// runStripe covers payout onboarding: the current status, a fresh onboarding link, and
// the outcome carried by the return deep link.
func runStripe(ctx context.Context, a *app, args []string) error {
	sub := "status"
	if len(args) > 0 {
		sub, args = args[0], args[1:]
	}

	switch sub {
	case "status":
		ok, err := a.client.StripeConfigured(ctx)
		if err != nil {
			return err
		}
		if ok {
			fmt.Fprintln(a.out, "Compte de paiement configuré.")
		} else {
			fmt.Fprintln(a.out, "Compte de paiement non configuré, lancez: clinup stripe link")
		}
		return nil
	case "link":
		url, err := a.client.StripeOnboardingLink(ctx)
		if err != nil {
			a.console.Alert(ui.KindError, clinup.UserMessage(err, reservation.MsgGeneric))
			return err
		}
		fmt.Fprintln(a.out, url)
		return nil
	case "return":
		if len(args) != 1 {
			return errors.New("expected the return url")
		}
		outcome, err := deeplink.ParseStripeReturn(args[0])
		if err != nil {
			return err
		}
		switch outcome {
		case deeplink.OnboardingSuccess:
			a.console.Alert(ui.KindSuccess, "Votre compte de paiement est configuré.")
			a.console.Navigate(ui.ScreenProfile, nil)
		case deeplink.OnboardingRefresh:
			a.console.Alert(ui.KindInfo, "Le lien a expiré, un nouveau lien est généré.")
			return runStripe(ctx, a, []string{"link"})
		default:
			a.console.Alert(ui.KindError, "Statut de configuration inconnu.")
		}
		return nil
	default:
		return fmt.Errorf("unknown stripe command %q", sub)
	}
}

// runExport saves the host dashboard export, or the provider's earnings CSV.
func runExport(ctx context.Context, a *app, args []string) error {
	fs := newFlags("export")
	format := fs.String("format", "csv", "csv, xlsx or pdf (hosts only)")
	f := filterFlags(fs)
	dir := fs.String("dir", "", "output directory (default CLINUP_RECEIPT_DIR)")
	if err := fs.Parse(args); err != nil {
		return err
	}
	role, err := a.role()
	if err != nil {
		return err
	}

	var doc clinup.Document
	if role == reservation.RoleHost {
		screen := dashboard.NewScreen(a.client, a.console)
		if err := screen.SetFilter(ctx, f()); err != nil {
			return err
		}
		doc, err = screen.Export(ctx, *format)
	} else {
		doc, err = a.client.ProviderEarningsCSV(ctx)
		if err != nil {
			a.console.Alert(ui.KindError, clinup.UserMessage(err, dashboard.MsgExportFailed))
		}
	}
	if err != nil {
		return err
	}

	out := *dir
	if out == "" {
		out = a.cfg.API.ReceiptDir
	}
	path, err := doc.Save(out)
	if err != nil {
		return err
	}
	a.console.Alert(ui.KindSuccess, "Fichier sauvegardé à: "+path)
	return nil
}

func filterFlags(fs *flag.FlagSet) func() clinup.DashboardFilter {
	logementID := fs.String("logement", "", "logement id filter")
	start := fs.String("start", "", "start date filter")
	end := fs.String("end", "", "end date filter")
	return func() clinup.DashboardFilter {
		return clinup.DashboardFilter{LogementID: clinup.ID(*logementID), StartDate: *start, EndDate: *end}
	}
}

// runDashboard prints the host's logements and the number of stat rows under the filter.
func runDashboard(ctx context.Context, a *app, args []string) error {
	fs := newFlags("dashboard")
	f := filterFlags(fs)
	if err := fs.Parse(args); err != nil {
		return err
	}
	role, err := a.role()
	if err != nil {
		return err
	}
	if role != reservation.RoleHost {
		return errors.New("the dashboard is for hosts")
	}
	screen := dashboard.NewScreen(a.client, a.console)
	if err := screen.SetFilter(ctx, f()); err != nil {
		return err
	}
	d := screen.Dashboard()
	tw := tabwriter.NewWriter(a.out, 0, 4, 2, ' ', 0)
	defer tw.Flush()
	fmt.Fprintln(tw, "ID\tLOGEMENT")
	for _, l := range d.Logements {
		fmt.Fprintf(tw, "%s\t%s\n", l.ID, l.Nom)
	}
	fmt.Fprintf(tw, "\t%d réservation(s), %d ligne(s) par logement\n", len(d.ReservationsStats), len(d.LogementsData))
	return nil
}

// runLogement shows a logement's checklist and optionally deletes one task from it.
func runLogement(ctx context.Context, a *app, args []string) error {
	fs := newFlags("logement")
	deleteTask := fs.String("delete-task", "", "id of the task to delete")
	if err := fs.Parse(args); err != nil {
		return err
	}
	if fs.NArg() != 1 {
		return errors.New("expected one logement id")
	}
	if _, err := a.role(); err != nil {
		return err
	}
	screen := logement.NewScreen(a.client, clinup.ID(fs.Arg(0)), a.console)
	if err := screen.Mount(ctx); err != nil {
		return err
	}
	if *deleteTask != "" {
		if err := screen.DeleteTask(ctx, clinup.ID(*deleteTask)); err != nil {
			return err
		}
	}

	fmt.Fprintln(a.out, screen.Logement().Nom)
	tw := tabwriter.NewWriter(a.out, 0, 4, 2, ' ', 0)
	defer tw.Flush()
	fmt.Fprintln(tw, "ID\tTÂCHE\tDÉTAIL")
	for _, t := range screen.Tasks() {
		fmt.Fprintf(tw, "%s\t%s\t%s\n", t.ID, t.Titre, t.Detail)
	}
	return nil
}

package main

import (
	"context"
	"errors"
	"flag"
	"fmt"
	"os"
	"path/filepath"
	"strings"
	"text/tabwriter"

	"github.com/shopspring/decimal"

	"clinup/internal/reservation"
	"clinup/internal/ui"
	"clinup/pkg/clinup"
)

func newFlags(name string) *flag.FlagSet {
	fs := flag.NewFlagSet(name, flag.ContinueOnError)
	fs.SetOutput(os.Stderr)
	return fs
}

func runLogin(ctx context.Context, a *app, args []string) error {
	fs := newFlags("login")
	email := fs.String("email", "", "account email")
	password := fs.String("password", "", "account password")
	if err := fs.Parse(args); err != nil {
		return err
	}
	if *email == "" || *password == "" {
		return errors.New("-email and -password are required")
	}

	resp, err := a.client.Login(ctx, *email, *password)
	if err != nil {
		a.console.Alert(ui.KindError, clinup.UserMessage(err, "Email ou mot de passe incorrect."))
		return err
	}
	screen, err := ui.Home(resp.Roles)
	if err != nil {
		a.console.Alert(ui.KindError, ui.UnknownRoleMessage)
		_ = a.session.SignOut()
		return err
	}
	a.console.Navigate(screen, nil)
	return nil
}

func runLogout(ctx context.Context, a *app, args []string) error {
	if err := a.session.SignOut(); err != nil {
		return err
	}
	a.console.Navigate(ui.ScreenLogin, nil)
	return nil
}

func runWhoami(ctx context.Context, a *app, args []string) error {
	u, err := a.client.CurrentUser(ctx)
	if err != nil {
		return err
	}
	fmt.Fprintf(a.out, "%s %s <%s> %s\n", u.Firstname, u.Lastname, u.Email, strings.Join(u.Roles, ","))
	return nil
}

func runList(ctx context.Context, a *app, args []string) error {
	role, err := a.role()
	if err != nil {
		return err
	}
	tw := tabwriter.NewWriter(a.out, 0, 4, 2, ' ', 0)
	defer tw.Flush()

	if role == reservation.RoleHost {
		lists, err := a.client.ListReservations(ctx)
		if err != nil {
			a.console.Alert(ui.KindError, clinup.UserMessage(err, reservation.MsgLoadFailed))
			return err
		}
		fmt.Fprintln(tw, "ID\tLOGEMENT\tDATE\tHEURE\tSTATUT\tCANDIDATS")
		for _, it := range reservation.HostList(lists) {
			fmt.Fprintf(tw, "%s\t%s\t%s\t%s\t%s\t%d\n", it.ID, it.Logement, it.Date, it.Heure, it.Label, it.Applicants)
		}
		for _, ical := range lists.Icalres {
			fmt.Fprintf(tw, "ical:%s\t%s\t%s\t\tÀ publier\t\n", ical.ID, ical.Logement, ical.End)
		}
		return nil
	}

	list, err := a.client.ProviderReservations(ctx)
	if err != nil {
		a.console.Alert(ui.KindError, clinup.UserMessage(err, reservation.MsgLoadFailed))
		return err
	}
	fmt.Fprintln(tw, "ID\tLOGEMENT\tDATE\tHEURE\tPRIX\tSTATUT\tACTIONS")
	for _, r := range list {
		st := reservation.StatusOf(r)
		fmt.Fprintf(tw, "%s\t%s\t%s\t%s\t%s\t%s\t%s\n", r.ID, r.Logement.Name, r.Date, r.Heure,
			r.Prix.StringFixed(2), st.Badge().Text, actionList(reservation.Allowed(role, r)))
	}
	return nil
}

func actionList(acts []reservation.Action) string {
	names := make([]string, len(acts))
	for i, a := range acts {
		names[i] = string(a)
	}
	return strings.Join(names, ",")
}

func runShow(ctx context.Context, a *app, args []string) error {
	fs := newFlags("show")
	if err := fs.Parse(args); err != nil {
		return err
	}
	id, err := reservationID(fs)
	if err != nil {
		return err
	}
	ctl, err := a.controller(ctx, id)
	if err != nil {
		return err
	}
	printView(a, ctl.Current(), ctl.View())
	return nil
}

func printView(a *app, r clinup.Reservation, v reservation.View) {
	fmt.Fprintf(a.out, "Réservation %s [%s]\n", v.ID, v.Badge.Text)
	fmt.Fprintf(a.out, "  %s, le %s à %s, %d min, %s EUR\n", r.Logement.Name, r.Date, r.Heure, r.NbrHeure, r.Prix.StringFixed(2))
	if v.ShowDescription {
		fmt.Fprintf(a.out, "  %s\n", v.Description)
	}
	if v.ShowCandidates {
		fmt.Fprintln(a.out, "Candidats:")
		if v.CandidatesPlaceholder != "" {
			fmt.Fprintf(a.out, "  %s\n", v.CandidatesPlaceholder)
		}
		for _, c := range v.Candidates {
			fmt.Fprintf(a.out, "  %s  %s  %q\n", c.ID, c.Prestataire, c.Comment)
		}
	}
	if v.Provider != nil {
		fmt.Fprintf(a.out, "Prestataire: %s (%s)\n", v.Provider.FullName(), v.Provider.ID)
	}
	fmt.Fprintln(a.out, "Tâches:")
	if v.TasksPlaceholder != "" {
		fmt.Fprintf(a.out, "  %s\n", v.TasksPlaceholder)
	}
	for _, t := range v.Tasks {
		fmt.Fprintf(a.out, "  %s  %s: %s\n", t.Task.ID, t.Task.Titre, t.Task.Detail)
		if t.ImagesPlaceholder != "" {
			fmt.Fprintf(a.out, "      %s\n", t.ImagesPlaceholder)
		}
		for _, img := range t.Task.ImgTasks {
			fmt.Fprintf(a.out, "      image %s %s\n", img.ID, img.FilePath)
		}
	}
	if v.Video != nil {
		fmt.Fprintf(a.out, "Vidéo: %s\n", v.Video.FilePath)
	}
	if len(v.Actions) > 0 {
		fmt.Fprintf(a.out, "Actions: %s\n", actionList(v.Actions))
	}
}

// withController parses a command taking only a reservation id and runs fn on its mounted controller.
func withController(ctx context.Context, a *app, name string, args []string, fn func(*reservation.Controller) error) error {
	fs := newFlags(name)
	if err := fs.Parse(args); err != nil {
		return err
	}
	id, err := reservationID(fs)
	if err != nil {
		return err
	}
	ctl, err := a.controller(ctx, id)
	if err != nil {
		return err
	}
	return fn(ctl)
}

func runValidate(ctx context.Context, a *app, args []string) error {
	return withController(ctx, a, "validate", args, func(ctl *reservation.Controller) error {
		return ctl.Validate(ctx)
	})
}

func runCancel(ctx context.Context, a *app, args []string) error {
	return withController(ctx, a, "cancel", args, func(ctl *reservation.Controller) error {
		return ctl.Cancel(ctx)
	})
}

func runReject(ctx context.Context, a *app, args []string) error {
	return withController(ctx, a, "reject", args, func(ctl *reservation.Controller) error {
		return ctl.Reject(ctx)
	})
}

// runApprove validates a direct booking. An invitation booking is paid instead, so the
// invitation payment runs right after the controller routes there.
func runApprove(ctx context.Context, a *app, args []string) error {
	fs := newFlags("approve")
	yes := fs.Bool("yes", false, "confirm the payment without prompting")
	if err := fs.Parse(args); err != nil {
		return err
	}
	id, err := reservationID(fs)
	if err != nil {
		return err
	}
	ctl, err := a.controller(ctx, id)
	if err != nil {
		return err
	}
	if err := ctl.Approve(ctx); err != nil {
		return err
	}
	if reservation.IsInvitation(ctl.Current()) {
		return a.pay(ctx, invitationRequest(id), *yes)
	}
	return nil
}

func runApply(ctx context.Context, a *app, args []string) error {
	fs := newFlags("apply")
	comment := fs.String("comment", "", "message for the host")
	if err := fs.Parse(args); err != nil {
		return err
	}
	id, err := reservationID(fs)
	if err != nil {
		return err
	}
	ctl, err := a.controller(ctx, id)
	if err != nil {
		return err
	}
	return ctl.Apply(ctx, *comment)
}

func runApplyInvitation(ctx context.Context, a *app, args []string) error {
	fs := newFlags("apply-invit")
	comment := fs.String("comment", "", "message for the host")
	availability := fs.String("availability", "", "available or unavailable")
	if err := fs.Parse(args); err != nil {
		return err
	}
	id, err := reservationID(fs)
	if err != nil {
		return err
	}
	ctl, err := a.controller(ctx, id)
	if err != nil {
		return err
	}
	return ctl.ApplyInvitation(ctx, *comment, *availability)
}

func runUploadVideo(ctx context.Context, a *app, args []string) error {
	fs := newFlags("upload-video")
	file := fs.String("file", "", "video file")
	if err := fs.Parse(args); err != nil {
		return err
	}
	id, err := reservationID(fs)
	if err != nil {
		return err
	}
	f, err := os.Open(*file)
	if err != nil {
		return err
	}
	defer f.Close()

	ctl, err := a.controller(ctx, id)
	if err != nil {
		return err
	}
	return ctl.UploadVideo(ctx, filepath.Base(*file), f)
}

func runUploadImage(ctx context.Context, a *app, args []string) error {
	fs := newFlags("upload-image")
	task := fs.String("task", "", "task id")
	file := fs.String("file", "", "image file")
	if err := fs.Parse(args); err != nil {
		return err
	}
	id, err := reservationID(fs)
	if err != nil {
		return err
	}
	if *task == "" {
		return errors.New("-task is required")
	}
	f, err := os.Open(*file)
	if err != nil {
		return err
	}
	defer f.Close()

	ctl, err := a.controller(ctx, id)
	if err != nil {
		return err
	}
	return ctl.UploadTaskImage(ctx, clinup.ID(*task), filepath.Base(*file), f)
}

func runDeleteImage(ctx context.Context, a *app, args []string) error {
	fs := newFlags("delete-image")
	image := fs.String("image", "", "image id")
	if err := fs.Parse(args); err != nil {
		return err
	}
	id, err := reservationID(fs)
	if err != nil {
		return err
	}
	if *image == "" {
		return errors.New("-image is required")
	}
	ctl, err := a.controller(ctx, id)
	if err != nil {
		return err
	}
	return ctl.DeleteTaskImage(ctx, clinup.ID(*image))
}

func runReceipt(ctx context.Context, a *app, args []string) error {
	fs := newFlags("receipt")
	dir := fs.String("dir", "", "directory for the PDF (default CLINUP_RECEIPT_DIR)")
	if err := fs.Parse(args); err != nil {
		return err
	}
	id, err := reservationID(fs)
	if err != nil {
		return err
	}
	ctl, err := a.controller(ctx, id)
	if err != nil {
		return err
	}
	if *dir != "" {
		ctl.ReceiptDir = *dir
	}
	_, err = ctl.Receipt(ctx)
	return err
}

// runIcal shows a calendar import, optionally edits its duration and price, and publishes it.
func runIcal(ctx context.Context, a *app, args []string) error {
	fs := newFlags("ical")
	heures := fs.Int("heures", 0, "duration in minutes")
	prix := fs.String("prix", "", "price in EUR")
	publish := fs.Bool("publish", false, "publish as a regular reservation")
	if err := fs.Parse(args); err != nil {
		return err
	}
	id, err := reservationID(fs)
	if err != nil {
		return err
	}

	if *heures > 0 || *prix != "" {
		p, err := decimal.NewFromString(*prix)
		if err != nil {
			return fmt.Errorf("invalid -prix: %w", err)
		}
		if err := a.client.EditIcal(ctx, id, clinup.IcalEdit{NbrHeure: *heures, Prix: p}); err != nil {
			a.console.Alert(ui.KindError, clinup.UserMessage(err, reservation.MsgGeneric))
			return err
		}
	}

	ical, err := a.client.IcalReservation(ctx, id)
	if err != nil {
		a.console.Alert(ui.KindError, clinup.UserMessage(err, reservation.MsgLoadFailed))
		return err
	}
	fmt.Fprintf(a.out, "%s %s -> %s, %d min, %s EUR\n", ical.Logement, ical.Start, ical.End, ical.NbrHeure, ical.Prix.StringFixed(2))

	if *publish {
		msg, err := a.client.PublishIcal(ctx, id)
		if err != nil {
			a.console.Alert(ui.KindError, clinup.UserMessage(err, reservation.MsgGeneric))
			return err
		}
		a.console.Alert(ui.KindSuccess, msg)
	}
	return nil
}

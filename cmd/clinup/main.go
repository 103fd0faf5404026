package main

import (
	"context"
	"errors"
	"flag"
	"fmt"
	"io"
	"log/slog"
	"net/http"
	"os"
	"os/signal"
	"slices"
	"strings"
	"syscall"

	"clinup/internal/reservation"
	"clinup/internal/ui"
	"clinup/pkg/clinup"
	"clinup/pkg/config"
)

type app struct {
	cfg     config.Config
	client  clinup.Client
	session *clinup.Session
	console ui.Console
	logger  *slog.Logger
	in      io.Reader
	out     io.Writer
}

type command struct {
	usage string
	run   func(ctx context.Context, a *app, args []string) error
}

var commands = map[string]command{
	"login":        {"login -email E -password P", runLogin},
	"logout":       {"logout", runLogout},
	"whoami":       {"whoami", runWhoami},
	"list":         {"list", runList},
	"show":         {"show ID", runShow},
	"validate":     {"validate ID", runValidate},
	"cancel":       {"cancel ID", runCancel},
	"approve":      {"approve [-yes] ID", runApprove},
	"reject":       {"reject ID", runReject},
	"choose":       {"choose -provider PID [-yes] ID", runChoose},
	"pay-invit":    {"pay-invit [-yes] ID", runPayInvitation},
	"apply":        {"apply [-comment C] ID", runApply},
	"apply-invit":  {"apply-invit -availability available|unavailable [-comment C] ID", runApplyInvitation},
	"upload-video": {"upload-video -file PATH ID", runUploadVideo},
	"upload-image": {"upload-image -task TID -file PATH ID", runUploadImage},
	"delete-image": {"delete-image -image IID ID", runDeleteImage},
	"receipt":      {"receipt [-dir DIR] ID", runReceipt},
	"ical":         {"ical [-heures N -prix P] [-publish] ID", runIcal},
	"invitations":  {"invitations [add -nom N -email E | relaunch ID | delete ID]", runInvitations},
	"stripe":       {"stripe [status | link | return URL]", runStripe},
	"subscription": {"subscription [-yes]", runSubscription},
	"export":       {"export [-format csv] [-logement ID] [-start YYYY-MM-DD] [-end YYYY-MM-DD]", runExport},
	"dashboard":    {"dashboard [-logement ID] [-start YYYY-MM-DD] [-end YYYY-MM-DD]", runDashboard},
	"logement":     {"logement [-delete-task TID] ID", runLogement},
}

func main() {
	verbose := flag.Bool("v", false, "log requests")
	flag.Usage = usage
	flag.Parse()
	if flag.NArg() == 0 {
		usage()
		os.Exit(2)
	}

	cfg := config.Load()

	level := slog.LevelWarn
	if *verbose {
		level = slog.LevelDebug
	}
	logger := slog.New(slog.NewTextHandler(os.Stderr, &slog.HandlerOptions{Level: level}))

	session := clinup.NewSession(clinup.FileTokenStore{Path: cfg.API.TokenFile})
	client := clinup.New(cfg.API.BaseURL, session)
	client.HTTPClient = &http.Client{Timeout: cfg.API.HTTPTimeout}
	client.Logger = logger

	a := &app{
		cfg:     cfg,
		client:  client,
		session: session,
		console: ui.Console{Out: os.Stdout, Logger: logger},
		logger:  logger,
		in:      os.Stdin,
		out:     os.Stdout,
	}

	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	defer stop()

	name, args := flag.Arg(0), flag.Args()[1:]
	cmd, ok := commands[name]
	if !ok {
		fmt.Fprintf(os.Stderr, "unknown command %q\n", name)
		usage()
		os.Exit(2)
	}
	if err := cmd.run(ctx, a, args); err != nil {
		if errors.Is(err, clinup.ErrMissingToken) {
			fmt.Fprintln(os.Stderr, "not signed in, run: clinup login -email ... -password ...")
		} else {
			fmt.Fprintf(os.Stderr, "%s: %v\n", name, err)
		}
		os.Exit(1)
	}
}

func usage() {
	fmt.Fprintln(os.Stderr, "usage: clinup [-v] <command> [flags]")
	names := make([]string, 0, len(commands))
	for name := range commands {
		names = append(names, name)
	}
	slices.Sort(names)
	for _, name := range names {
		fmt.Fprintf(os.Stderr, "  %s\n", commands[name].usage)
	}
}

// role is the signed-in user's role, taken from the stored session.
func (a *app) role() (reservation.Role, error) {
	if _, err := a.session.Token(); err != nil {
		return reservation.RoleNone, err
	}
	role := reservation.RoleFrom(a.session.Roles())
	if role == reservation.RoleNone {
		return role, errors.New(ui.UnknownRoleMessage)
	}
	return role, nil
}

// reservationID parses the single positional reservation id.
func reservationID(fs *flag.FlagSet) (clinup.ID, error) {
	if fs.NArg() != 1 || strings.TrimSpace(fs.Arg(0)) == "" {
		return "", fmt.Errorf("expected one reservation id")
	}
	return clinup.ID(fs.Arg(0)), nil
}

// controller mounts the detail screen of a reservation for the signed-in role.
func (a *app) controller(ctx context.Context, id clinup.ID) (*reservation.Controller, error) {
	role, err := a.role()
	if err != nil {
		return nil, err
	}
	ctl := reservation.NewController(a.client, role, id, a.console, a.console)
	ctl.ReceiptDir = a.cfg.API.ReceiptDir
	ctl.Logger = a.logger
	if err := ctl.Mount(ctx); err != nil {
		return nil, err
	}
	return ctl, nil
}

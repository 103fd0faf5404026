package ui

import (
	"fmt"
	"io"
	"log/slog"
	"maps"
	"slices"
	"strings"
	"sync"
)

// Screen names a destination. The names match the deep-link routes of the mobile app.
type Screen string

const (
	ScreenLogin                    Screen = "Login"
	ScreenReservationsHote         Screen = "ReservationsHote"
	ScreenReservationsPresta       Screen = "ReservationsPresta"
	ScreenDetailsReservationHote   Screen = "DetailsReservationHote"
	ScreenDetailsReservationPresta Screen = "DetailsReservationPresta"
	ScreenPayment                  Screen = "PaymentScreen"
	ScreenPaymentInvit             Screen = "PaymentScreenInvit"
	ScreenPrestataireProfile       Screen = "PrestataireProfileScreen"
	ScreenProfile                  Screen = "Profile"
	ScreenAddLogement              Screen = "AddLogement"
	ScreenAddComment               Screen = "AddCommentScreen"
)

// Params are navigation parameters, e.g. {"reservationId": "12"}.
type Params map[string]string

type Kind string

const (
	KindSuccess Kind = "Succès"
	KindError   Kind = "Erreur"
	KindFailure Kind = "Échec"
	KindInfo    Kind = "Info"
)

type Alerter interface {
	Alert(kind Kind, message string)
}

type Navigator interface {
	Navigate(screen Screen, params Params)
}

// Console prints alerts and navigation requests. It is what cmd/clinup uses.
type Console struct {
	Out    io.Writer
	Logger *slog.Logger
}

func (c Console) Alert(kind Kind, message string) {
	fmt.Fprintf(c.Out, "[%s] %s\n", kind, message)
}

func (c Console) Navigate(screen Screen, params Params) {
	if c.Logger != nil {
		c.Logger.Debug("navigate", "screen", string(screen), "params", map[string]string(params))
	}
	if len(params) == 0 {
		fmt.Fprintf(c.Out, "-> %s\n", screen)
		return
	}
	keys := slices.Sorted(maps.Keys(params))
	parts := make([]string, 0, len(keys))
	for _, k := range keys {
		parts = append(parts, k+"="+params[k])
	}
	fmt.Fprintf(c.Out, "-> %s %s\n", screen, strings.Join(parts, " "))
}

type AlertRecord struct {
	Kind    Kind
	Message string
}

type NavRecord struct {
	Screen Screen
	Params Params
}

// Recorder keeps every alert and navigation in order. Safe for concurrent use.
type Recorder struct {
	mu     sync.Mutex
	Alerts []AlertRecord
	Navs   []NavRecord
}

func (r *Recorder) Alert(kind Kind, message string) {
	r.mu.Lock()
	r.Alerts = append(r.Alerts, AlertRecord{Kind: kind, Message: message})
	r.mu.Unlock()
}

func (r *Recorder) Navigate(screen Screen, params Params) {
	r.mu.Lock()
	r.Navs = append(r.Navs, NavRecord{Screen: screen, Params: maps.Clone(params)})
	r.mu.Unlock()
}

func (r *Recorder) LastAlert() (AlertRecord, bool) {
	r.mu.Lock()
	defer r.mu.Unlock()
	if len(r.Alerts) == 0 {
		return AlertRecord{}, false
	}
	return r.Alerts[len(r.Alerts)-1], true
}

func (r *Recorder) LastNav() (NavRecord, bool) {
	r.mu.Lock()
	defer r.mu.Unlock()
	if len(r.Navs) == 0 {
		return NavRecord{}, false
	}
	return r.Navs[len(r.Navs)-1], true
}

package stubapi

import (
	"errors"
	"fmt"
	"log/slog"
	"net/http"
	"time"

	"github.com/go-chi/chi/v5"

	"clinup/internal/reservation"
	"clinup/pkg/clinup"
)

type Handlers struct {
	Store    Store
	Tokens   Tokens
	Payments *Payments
	Logger   *slog.Logger

	// BcryptCost defaults to bcrypt.DefaultCost.
	BcryptCost int
	Now        func() time.Time
}

func (h Handlers) logger() *slog.Logger {
	if h.Logger != nil {
		return h.Logger
	}
	return slog.Default()
}

func (h Handlers) now() time.Time {
	if h.Now != nil {
		return h.Now()
	}
	return time.Now()
}

// currentUser is set by BearerAuth; routes without it never call this.
func currentUser(w http.ResponseWriter, r *http.Request) (*User, bool) {
	u := UserFromContext(r.Context())
	if u == nil {
		WriteError(w, http.StatusUnauthorized, "UNAUTHORIZED", "missing user")
		return nil, false
	}
	return u, true
}

func (h Handlers) loadReservation(w http.ResponseWriter, r *http.Request, id clinup.ID) (Record, bool) {
	if id == "" {
		WriteError(w, http.StatusBadRequest, "VALIDATION_FAILED", "missing id")
		return Record{}, false
	}
	rec, err := h.Store.Reservation(r.Context(), id)
	if errors.Is(err, ErrNotFound) {
		WriteError(w, http.StatusNotFound, "NOT_FOUND", "Réservation introuvable.")
		return Record{}, false
	}
	if err != nil {
		h.internal(w, "load reservation", err)
		return Record{}, false
	}
	return rec, true
}

// ownedReservation loads {id} and hides it from hosts who do not own it.
func (h Handlers) ownedReservation(w http.ResponseWriter, r *http.Request, id clinup.ID) (Record, *User, bool) {
	u, ok := currentUser(w, r)
	if !ok {
		return Record{}, nil, false
	}
	rec, ok := h.loadReservation(w, r, id)
	if !ok {
		return Record{}, nil, false
	}
	if rec.HostID != u.ID {
		WriteError(w, http.StatusNotFound, "NOT_FOUND", "Réservation introuvable.")
		return Record{}, nil, false
	}
	return rec, u, true
}

// transition applies one edge of the status graph. Illegal edges and lost races are
// refusals, not transport errors.
func (h Handlers) transition(w http.ResponseWriter, r *http.Request, rec Record, to reservation.Status, providerID, actor clinup.ID) bool {
	from := rec.Status()
	if !reservation.CanTransition(from, to) {
		writeRefusal(w, fmt.Sprintf("Action impossible : la réservation est « %s ».", from))
		return false
	}
	err := h.Store.Transition(r.Context(), rec.Reservation.ID, from, to, providerID, actor)
	switch {
	case errors.Is(err, ErrConflict):
		writeRefusal(w, "La réservation a été modifiée entre-temps.")
		return false
	case errors.Is(err, ErrNotFound):
		WriteError(w, http.StatusNotFound, "NOT_FOUND", "Réservation introuvable.")
		return false
	case err != nil:
		h.internal(w, "transition", err)
		return false
	}
	h.logger().Info("reservation transition", "reservation", rec.Reservation.ID, "from", from.String(), "to", to.String(), "actor", actor)
	return true
}

func (h Handlers) internal(w http.ResponseWriter, op string, err error) {
	h.logger().Error("stubapi: "+op, "err", err)
	WriteError(w, http.StatusInternalServerError, "INTERNAL", "internal error")
}

func urlID(r *http.Request, key string) clinup.ID {
	return clinup.ID(chi.URLParam(r, key))
}

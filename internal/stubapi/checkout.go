package stubapi

import (
	"errors"
	"net/http"

	"github.com/go-chi/chi/v5"

	"clinup/internal/reservation"
	"clinup/pkg/clinup"
)

type checkoutRequest struct {
	ReservationID clinup.ID `json:"reservationId"`
	PrestataireID clinup.ID `json:"prestataireId"`
}

// Checkout opens the payment that confirms a chosen candidate.
func (h Handlers) Checkout(w http.ResponseWriter, r *http.Request) {
	var req checkoutRequest
	if err := decodeJSON(r, &req); err != nil {
		WriteError(w, http.StatusBadRequest, "VALIDATION_FAILED", "invalid json")
		return
	}
	rec, u, ok := h.ownedReservation(w, r, req.ReservationID)
	if !ok {
		return
	}
	if rec.Status() != reservation.StatusEnAttente {
		writeRefusal(w, "Cette réservation n'attend plus de prestataire.")
		return
	}
	if req.PrestataireID == "" || !rec.HasApplicant(req.PrestataireID) {
		writeRefusal(w, "Ce prestataire n'a pas postulé à cette réservation.")
		return
	}
	s := h.Payments.Open(rec.Reservation.ID, u.ID, req.PrestataireID, false)
	h.logger().Info("checkout opened", "reservation", rec.Reservation.ID, "session", s.ID)
	writeJSON(w, http.StatusOK, s.Params)
}

// CheckoutInvitation opens the payment of an invitation booking after the host approved it.
func (h Handlers) CheckoutInvitation(w http.ResponseWriter, r *http.Request) {
	rec, u, ok := h.ownedReservation(w, r, urlID(r, "id"))
	if !ok {
		return
	}
	if !reservation.IsInvitation(rec.Reservation) {
		writeRefusal(w, "Cette réservation ne provient pas d'une invitation.")
		return
	}
	if rec.Status() != reservation.StatusConfirmer || rec.Reservation.Prestataire == nil {
		writeRefusal(w, "Cette réservation ne peut pas encore être payée.")
		return
	}
	s := h.Payments.Open(rec.Reservation.ID, u.ID, rec.Reservation.Prestataire.ID, true)
	h.logger().Info("invitation checkout opened", "reservation", rec.Reservation.ID, "session", s.ID)
	writeJSON(w, http.StatusOK, s.Params)
}

func (h Handlers) PaymentStatus(w http.ResponseWriter, r *http.Request) {
	h.paymentStatus(w, r, false)
}

func (h Handlers) InvitationPaymentStatus(w http.ResponseWriter, r *http.Request) {
	h.paymentStatus(w, r, true)
}

// paymentStatus reports the session outcome. The first successful check moves the
// reservation one step: en attente to confirmer for a direct payment, confirmer to payer
// for an invitation.
func (h Handlers) paymentStatus(w http.ResponseWriter, r *http.Request, invitation bool) {
	var req checkoutRequest
	if err := decodeJSON(r, &req); err != nil {
		WriteError(w, http.StatusBadRequest, "VALIDATION_FAILED", "invalid json")
		return
	}
	rec, u, ok := h.ownedReservation(w, r, req.ReservationID)
	if !ok {
		return
	}
	s, found := h.Payments.Get(rec.Reservation.ID, invitation)
	if !found || s.HostID != u.ID {
		WriteError(w, http.StatusNotFound, "NOT_FOUND", "Aucun paiement en cours pour cette réservation.")
		return
	}

	status := s.Outcome
	if status == clinup.PaymentSucceeded && !s.Settled {
		to := reservation.StatusConfirmer
		if invitation {
			to = reservation.StatusPayer
		}
		from := rec.Status()
		if from != to {
			if !reservation.CanTransition(from, to) {
				writeJSON(w, http.StatusOK, map[string]any{"status": clinup.PaymentFailed})
				return
			}
			err := h.Store.Transition(r.Context(), rec.Reservation.ID, from, to, s.ProviderID, u.ID)
			switch {
			case errors.Is(err, ErrConflict):
				writeJSON(w, http.StatusOK, map[string]any{"status": clinup.PaymentFailed})
				return
			case errors.Is(err, ErrNotFound):
				WriteError(w, http.StatusNotFound, "NOT_FOUND", "Réservation introuvable.")
				return
			case err != nil:
				h.internal(w, "settle payment", err)
				return
			}
		}
		h.Payments.MarkSettled(rec.Reservation.ID, invitation)
		h.logger().Info("payment settled", "reservation", rec.Reservation.ID, "to", to.String())
	}
	writeJSON(w, http.StatusOK, map[string]any{"status": status})
}

// SetPaymentOutcome is a development hook: POST /dev/payments/{id}/{outcome}.
func (h Handlers) SetPaymentOutcome(w http.ResponseWriter, r *http.Request) {
	outcome := clinup.PaymentStatus(chi.URLParam(r, "outcome"))
	switch outcome {
	case clinup.PaymentSucceeded, clinup.PaymentFailed, clinup.PaymentPending:
	default:
		WriteError(w, http.StatusBadRequest, "VALIDATION_FAILED", "outcome must be succeeded, failed or pending")
		return
	}
	if !h.Payments.SetOutcome(urlID(r, "id"), outcome) {
		WriteError(w, http.StatusNotFound, "NOT_FOUND", "no open payment session")
		return
	}
	w.WriteHeader(http.StatusNoContent)
}

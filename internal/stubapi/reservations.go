package stubapi

import (
	"errors"
	"net/http"
	"strings"

	"clinup/internal/reservation"
	"clinup/pkg/clinup"
)

func (h Handlers) HostReservations(w http.ResponseWriter, r *http.Request) {
	u, ok := currentUser(w, r)
	if !ok {
		return
	}
	recs, err := h.Store.ReservationsByHost(r.Context(), u.ID)
	if err != nil {
		h.internal(w, "list host reservations", err)
		return
	}

	out := clinup.ReservationLists{
		Reservations: make([]clinup.Reservation, 0, len(recs)),
		Icalres:      []clinup.IcalReservation{},
		Counts:       map[string]int{},
	}
	for _, rec := range recs {
		out.Reservations = append(out.Reservations, rec.Reservation)
		out.Counts[string(rec.Reservation.ID)] = len(rec.Reservation.Postulers)
	}
	writeJSON(w, http.StatusOK, out)
}

func (h Handlers) HostReservation(w http.ResponseWriter, r *http.Request) {
	rec, _, ok := h.ownedReservation(w, r, urlID(r, "id"))
	if !ok {
		return
	}
	writeJSON(w, http.StatusOK, rec.Reservation)
}

// Validate is the direct approval of a confirmed reservation.
func (h Handlers) Validate(w http.ResponseWriter, r *http.Request) {
	rec, u, ok := h.ownedReservation(w, r, urlID(r, "id"))
	if !ok {
		return
	}
	if reservation.IsInvitation(rec.Reservation) {
		writeRefusal(w, "Cette réservation se règle par le paiement de l'invitation.")
		return
	}
	if h.transition(w, r, rec, reservation.StatusPayer, "", u.ID) {
		writeSuccess(w, "Réservation validée avec succès.")
	}
}

func (h Handlers) CancelPending(w http.ResponseWriter, r *http.Request) {
	rec, u, ok := h.ownedReservation(w, r, urlID(r, "id"))
	if !ok {
		return
	}
	if h.transition(w, r, rec, reservation.StatusAnnuler, "", u.ID) {
		writeSuccess(w, "Réservation annulée.")
	}
}

func (h Handlers) AddReservation(w http.ResponseWriter, r *http.Request) {
	u, ok := currentUser(w, r)
	if !ok {
		return
	}
	var req clinup.NewReservation
	if err := decodeJSON(r, &req); err != nil {
		WriteError(w, http.StatusBadRequest, "VALIDATION_FAILED", "invalid json")
		return
	}
	if req.LogementID == "" || req.Date == "" || req.Heure == "" || req.NbrHeure <= 0 || !req.Prix.IsPositive() {
		WriteError(w, http.StatusBadRequest, "VALIDATION_FAILED", "Tous les champs sont obligatoires.")
		return
	}

	res := clinup.Reservation{
		Logement: clinup.Logement{ID: req.LogementID},
		Date:     req.Date,
		Heure:    req.Heure,
		NbrHeure: req.NbrHeure,
		Prix:     req.Prix,
	}
	if d := strings.TrimSpace(req.Description); d != "" {
		res.Description = &d
	}
	rec, err := h.Store.CreateReservation(r.Context(), u.ID, res)
	if errors.Is(err, ErrNotFound) {
		WriteError(w, http.StatusNotFound, "NOT_FOUND", "Logement introuvable.")
		return
	}
	if err != nil {
		h.internal(w, "create reservation", err)
		return
	}
	writeJSON(w, http.StatusCreated, map[string]any{"success": "Réservation ajoutée.", "id": rec.Reservation.ID})
}

// ownedLogement loads {id} and hides it from hosts who do not own it.
func (h Handlers) ownedLogement(w http.ResponseWriter, r *http.Request, id clinup.ID) (LogementRecord, bool) {
	u, ok := currentUser(w, r)
	if !ok {
		return LogementRecord{}, false
	}
	rec, err := h.Store.Logement(r.Context(), id)
	if err == nil && rec.HostID != u.ID {
		err = ErrNotFound
	}
	if errors.Is(err, ErrNotFound) {
		WriteError(w, http.StatusNotFound, "NOT_FOUND", "Logement introuvable.")
		return LogementRecord{}, false
	}
	if err != nil {
		h.internal(w, "load logement", err)
		return LogementRecord{}, false
	}
	return rec, true
}

func (h Handlers) LogementDetails(w http.ResponseWriter, r *http.Request) {
	rec, ok := h.ownedLogement(w, r, urlID(r, "id"))
	if !ok {
		return
	}
	writeJSON(w, http.StatusOK, clinup.PropertyDetails{
		Logement: clinup.Property{ID: rec.Logement.ID, Nom: rec.Logement.Name, Adresse: rec.Logement.Adresse},
		Tasks:    rec.Tasks,
	})
}

func (h Handlers) DeleteTask(w http.ResponseWriter, r *http.Request) {
	u, ok := currentUser(w, r)
	if !ok {
		return
	}
	place, err := h.Store.TaskPlace(r.Context(), urlID(r, "id"))
	if err == nil && place.HostID != u.ID {
		err = ErrNotFound
	}
	if err == nil {
		err = h.Store.DeleteTask(r.Context(), place.TaskID)
	}
	if errors.Is(err, ErrNotFound) {
		WriteError(w, http.StatusNotFound, "NOT_FOUND", "Tâche introuvable.")
		return
	}
	if err != nil {
		h.internal(w, "delete task", err)
		return
	}
	writeSuccess(w, "Tâche supprimée.")
}

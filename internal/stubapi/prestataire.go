package stubapi

import (
	"context"
	"errors"
	"io"
	"net/http"
	"path/filepath"

	"github.com/google/uuid"

	"clinup/internal/reservation"
	"clinup/pkg/clinup"
)

const maxUpload = 64 << 20

// providerView adds the flags only a provider's view carries.
func (h Handlers) providerView(ctx context.Context, rec Record, u *User) clinup.Reservation {
	res := rec.Reservation
	res.HasApplied = rec.HasApplicant(u.ID)
	if reservation.IsInvitation(res) {
		_, err := h.Store.InvitationByEmail(ctx, rec.HostID, u.Email)
		res.InvitExists = err == nil
	}
	return res
}

// visibleTo: open reservations are public to providers, the rest only to the assignee.
func visibleTo(rec Record, u *User) bool {
	if rec.Status() == reservation.StatusEnAttente {
		return true
	}
	p := rec.Reservation.Prestataire
	return p != nil && p.ID == u.ID
}

func (h Handlers) providerReservation(w http.ResponseWriter, r *http.Request) (Record, *User, bool) {
	u, ok := currentUser(w, r)
	if !ok {
		return Record{}, nil, false
	}
	rec, ok := h.loadReservation(w, r, urlID(r, "id"))
	if !ok {
		return Record{}, nil, false
	}
	if !visibleTo(rec, u) {
		WriteError(w, http.StatusNotFound, "NOT_FOUND", "Réservation introuvable.")
		return Record{}, nil, false
	}
	return rec, u, true
}

func (h Handlers) ProviderReservations(w http.ResponseWriter, r *http.Request) {
	u, ok := currentUser(w, r)
	if !ok {
		return
	}
	recs, err := h.Store.ReservationsForProvider(r.Context(), u.ID)
	if err != nil {
		h.internal(w, "list provider reservations", err)
		return
	}
	out := make([]clinup.Reservation, 0, len(recs))
	for _, rec := range recs {
		out = append(out, h.providerView(r.Context(), rec, u))
	}
	writeJSON(w, http.StatusOK, map[string]any{"reservations": out})
}

func (h Handlers) ProviderReservation(w http.ResponseWriter, r *http.Request) {
	rec, u, ok := h.providerReservation(w, r)
	if !ok {
		return
	}
	writeJSON(w, http.StatusOK, h.providerView(r.Context(), rec, u))
}

type applyRequest struct {
	Comment      string `json:"comment"`
	Availability string `json:"availability"`
}

func (h Handlers) Apply(w http.ResponseWriter, r *http.Request) {
	rec, u, ok := h.providerReservation(w, r)
	if !ok {
		return
	}
	var req applyRequest
	if err := decodeJSON(r, &req); err != nil {
		WriteError(w, http.StatusBadRequest, "VALIDATION_FAILED", "invalid json")
		return
	}
	if rec.Status() != reservation.StatusEnAttente {
		writeRefusal(w, "Cette réservation n'accepte plus de candidatures.")
		return
	}

	err := h.Store.AddApplication(r.Context(), rec.Reservation.ID, Application{ProviderID: u.ID, Comment: req.Comment})
	if errors.Is(err, ErrDuplicate) {
		WriteError(w, http.StatusBadRequest, "ALREADY_APPLIED", "Vous avez déjà postulé à cette réservation.")
		return
	}
	if err != nil {
		h.internal(w, "add application", err)
		return
	}
	writeJSON(w, http.StatusCreated, map[string]string{"message": "Candidature envoyée."})
}

// ApplyInvitation answers a host's invitation. An available invitee is assigned at once,
// which moves the reservation to confirmer.
func (h Handlers) ApplyInvitation(w http.ResponseWriter, r *http.Request) {
	rec, u, ok := h.providerReservation(w, r)
	if !ok {
		return
	}
	var req applyRequest
	if err := decodeJSON(r, &req); err != nil {
		WriteError(w, http.StatusBadRequest, "VALIDATION_FAILED", "invalid json")
		return
	}
	if req.Availability == "" {
		WriteError(w, http.StatusBadRequest, "VALIDATION_FAILED", "availability is required")
		return
	}
	if !h.providerView(r.Context(), rec, u).InvitExists {
		WriteError(w, http.StatusForbidden, "FORBIDDEN", "Aucune invitation pour cette réservation.")
		return
	}
	if rec.Status() != reservation.StatusEnAttente {
		writeRefusal(w, "Cette réservation n'accepte plus de candidatures.")
		return
	}

	err := h.Store.AddApplication(r.Context(), rec.Reservation.ID, Application{
		ProviderID:   u.ID,
		Comment:      req.Comment,
		Availability: req.Availability,
	})
	if errors.Is(err, ErrDuplicate) {
		WriteError(w, http.StatusBadRequest, "ALREADY_APPLIED", "Vous avez déjà répondu à cette invitation.")
		return
	}
	if err != nil {
		h.internal(w, "add application", err)
		return
	}
	if req.Availability == clinup.AvailabilityAvailable {
		if !h.transition(w, r, rec, reservation.StatusConfirmer, u.ID, u.ID) {
			return
		}
	}
	writeJSON(w, http.StatusCreated, map[string]string{"message": "Réponse envoyée."})
}

// storedName is where an upload would live; the stand-in only keeps the name.
func storedName(dir, filename string) string {
	return dir + "/" + uuid.NewString() + "-" + filepath.Base(filename)
}

func readUpload(w http.ResponseWriter, r *http.Request, field string) (string, bool) {
	r.Body = http.MaxBytesReader(w, r.Body, maxUpload)
	if err := r.ParseMultipartForm(maxUpload); err != nil {
		WriteError(w, http.StatusBadRequest, "VALIDATION_FAILED", "invalid multipart body")
		return "", false
	}
	f, hdr, err := r.FormFile(field)
	if err != nil {
		WriteError(w, http.StatusBadRequest, "VALIDATION_FAILED", "missing file field "+field)
		return "", false
	}
	defer f.Close()
	if _, err := io.Copy(io.Discard, f); err != nil {
		WriteError(w, http.StatusBadRequest, "VALIDATION_FAILED", "unreadable file")
		return "", false
	}
	return hdr.Filename, true
}

func (h Handlers) UploadVideo(w http.ResponseWriter, r *http.Request) {
	rec, u, ok := h.providerReservation(w, r)
	if !ok {
		return
	}
	if p := rec.Reservation.Prestataire; p == nil || p.ID != u.ID || rec.Status() != reservation.StatusConfirmer {
		writeRefusal(w, "Vous ne pouvez pas encore envoyer de vidéo pour cette réservation.")
		return
	}
	name, ok := readUpload(w, r, "filePath")
	if !ok {
		return
	}
	v, err := h.Store.SetVideo(r.Context(), rec.Reservation.ID, storedName("videos", name))
	if err != nil {
		h.internal(w, "set video", err)
		return
	}
	writeJSON(w, http.StatusOK, v)
}

// assignedTask lets the caller touch a task only while they are the assigned provider of a
// confirmer reservation on the task's logement.
func (h Handlers) assignedTask(w http.ResponseWriter, r *http.Request, place TaskPlace) bool {
	u, ok := currentUser(w, r)
	if !ok {
		return false
	}
	recs, err := h.Store.ReservationsForProvider(r.Context(), u.ID)
	if err != nil {
		h.internal(w, "list provider reservations", err)
		return false
	}
	for _, rec := range recs {
		p := rec.Reservation.Prestataire
		if rec.Reservation.Logement.ID == place.LogementID && rec.Status() == reservation.StatusConfirmer && p != nil && p.ID == u.ID {
			return true
		}
	}
	writeRefusal(w, "Vous ne pouvez pas modifier les photos de cette tâche.")
	return false
}

func (h Handlers) UploadTaskImage(w http.ResponseWriter, r *http.Request) {
	place, err := h.Store.TaskPlace(r.Context(), urlID(r, "taskId"))
	if errors.Is(err, ErrNotFound) {
		WriteError(w, http.StatusNotFound, "NOT_FOUND", "Tâche introuvable.")
		return
	}
	if err != nil {
		h.internal(w, "locate task", err)
		return
	}
	if !h.assignedTask(w, r, place) {
		return
	}
	name, ok := readUpload(w, r, "filePath")
	if !ok {
		return
	}
	img, err := h.Store.AddTaskImage(r.Context(), place.TaskID, storedName("images", name))
	if errors.Is(err, ErrNotFound) {
		WriteError(w, http.StatusNotFound, "NOT_FOUND", "Tâche introuvable.")
		return
	}
	if err != nil {
		h.internal(w, "add task image", err)
		return
	}
	writeJSON(w, http.StatusCreated, img)
}

func (h Handlers) DeleteTaskImage(w http.ResponseWriter, r *http.Request) {
	imgID := urlID(r, "imgId")
	place, err := h.Store.ImagePlace(r.Context(), imgID)
	if errors.Is(err, ErrNotFound) {
		WriteError(w, http.StatusNotFound, "NOT_FOUND", "Image introuvable.")
		return
	}
	if err != nil {
		h.internal(w, "locate image", err)
		return
	}
	if !h.assignedTask(w, r, place) {
		return
	}
	err = h.Store.DeleteTaskImage(r.Context(), imgID)
	if errors.Is(err, ErrNotFound) {
		WriteError(w, http.StatusNotFound, "NOT_FOUND", "Image introuvable.")
		return
	}
	if err != nil {
		h.internal(w, "delete task image", err)
		return
	}
	writeSuccess(w, "Image supprimée.")
}

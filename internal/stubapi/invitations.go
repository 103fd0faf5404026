package stubapi

import (
	"errors"
	"net/http"
	"strings"

	"github.com/google/uuid"

	"clinup/internal/invitation"
	"clinup/pkg/clinup"
)

func (h Handlers) Invitations(w http.ResponseWriter, r *http.Request) {
	u, ok := currentUser(w, r)
	if !ok {
		return
	}
	list, err := h.Store.Invitations(r.Context(), u.ID)
	if err != nil {
		h.internal(w, "list invitations", err)
		return
	}
	writeJSON(w, http.StatusOK, list)
}

func (h Handlers) Invite(w http.ResponseWriter, r *http.Request) {
	u, ok := currentUser(w, r)
	if !ok {
		return
	}
	var req clinup.NewInvitation
	if err := decodeJSON(r, &req); err != nil {
		WriteError(w, http.StatusBadRequest, "VALIDATION_FAILED", "invalid json")
		return
	}
	if strings.TrimSpace(req.Nom) == "" || !strings.Contains(req.Email, "@") {
		WriteError(w, http.StatusBadRequest, "VALIDATION_FAILED", "Nom et email valides requis.")
		return
	}

	inv, err := h.Store.CreateInvitation(r.Context(), u.ID, clinup.Invitation{
		Nom:     strings.TrimSpace(req.Nom),
		Email:   req.Email,
		Message: req.Message,
		Code:    strings.ToUpper(strings.ReplaceAll(uuid.NewString(), "-", "")[:8]),
		Etat:    string(invitation.EtatEnAttente),
	})
	if errors.Is(err, ErrDuplicate) {
		writeRefusal(w, "Une invitation a déjà été envoyée à cet email.")
		return
	}
	if err != nil {
		h.internal(w, "create invitation", err)
		return
	}
	h.logger().Info("invitation sent", "host", u.ID, "email", inv.Email, "code", inv.Code)
	writeJSON(w, http.StatusCreated, inv)
}

func (h Handlers) RelaunchInvitation(w http.ResponseWriter, r *http.Request) {
	u, ok := currentUser(w, r)
	if !ok {
		return
	}
	id := urlID(r, "id")
	list, err := h.Store.Invitations(r.Context(), u.ID)
	if err != nil {
		h.internal(w, "list invitations", err)
		return
	}
	for _, inv := range list {
		if inv.ID != id {
			continue
		}
		if !invitation.ParseEtat(inv.Etat).Relaunchable() {
			writeRefusal(w, "Cette invitation a déjà été acceptée.")
			return
		}
		h.logger().Info("invitation relaunched", "host", u.ID, "email", inv.Email)
		writeSuccess(w, "Invitation relancée.")
		return
	}
	WriteError(w, http.StatusNotFound, "NOT_FOUND", "Invitation introuvable.")
}

func (h Handlers) DeleteInvitation(w http.ResponseWriter, r *http.Request) {
	u, ok := currentUser(w, r)
	if !ok {
		return
	}
	err := h.Store.DeleteInvitation(r.Context(), u.ID, urlID(r, "id"))
	if errors.Is(err, ErrNotFound) {
		WriteError(w, http.StatusNotFound, "NOT_FOUND", "Invitation introuvable.")
		return
	}
	if err != nil {
		h.internal(w, "delete invitation", err)
		return
	}
	writeSuccess(w, "Invitation supprimée.")
}

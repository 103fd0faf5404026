package stubapi

import (
	"errors"
	"net/http"
	"strings"

	"golang.org/x/crypto/bcrypt"

	"clinup/pkg/clinup"
)

func hashPassword(pw string, cost int) (string, error) {
	if cost == 0 {
		cost = bcrypt.DefaultCost
	}
	b, err := bcrypt.GenerateFromPassword([]byte(pw), cost)
	return string(b), err
}

type loginRequest struct {
	Email    string `json:"email"`
	Password string `json:"password"`
}

func (h Handlers) Login(w http.ResponseWriter, r *http.Request) {
	var req loginRequest
	if err := decodeJSON(r, &req); err != nil {
		WriteError(w, http.StatusBadRequest, "VALIDATION_FAILED", "invalid json")
		return
	}

	u, err := h.Store.UserByEmail(r.Context(), req.Email)
	if err == nil {
		err = bcrypt.CompareHashAndPassword([]byte(u.PasswordHash), []byte(req.Password))
	}
	if err != nil {
		h.logger().Info("login rejected", "email", req.Email)
		WriteError(w, http.StatusUnauthorized, "INVALID_CREDENTIALS", "Email ou mot de passe incorrect.")
		return
	}

	token, err := h.Tokens.Issue(u)
	if err != nil {
		h.internal(w, "issue token", err)
		return
	}
	writeJSON(w, http.StatusOK, clinup.LoginResponse{Success: true, Token: token, Roles: u.Roles})
}

func (h Handlers) Register(w http.ResponseWriter, r *http.Request) {
	var req clinup.Registration
	if err := decodeJSON(r, &req); err != nil {
		WriteError(w, http.StatusBadRequest, "VALIDATION_FAILED", "invalid json")
		return
	}
	if err := req.Validate(); err != nil {
		WriteError(w, http.StatusBadRequest, "VALIDATION_FAILED", err.Error())
		return
	}
	if req.Role != clinup.RoleHost && req.Role != clinup.RoleProvider {
		WriteError(w, http.StatusBadRequest, "VALIDATION_FAILED", "unknown role")
		return
	}

	hash, err := hashPassword(req.Password, h.BcryptCost)
	if err != nil {
		h.internal(w, "hash password", err)
		return
	}
	u, err := h.Store.CreateUser(r.Context(), User{
		Email:        strings.TrimSpace(req.Email),
		PasswordHash: hash,
		Firstname:    strings.TrimSpace(req.Firstname),
		Lastname:     strings.TrimSpace(req.Lastname),
		Roles:        []string{req.Role},
	})
	if errors.Is(err, ErrDuplicate) {
		writeJSON(w, http.StatusOK, map[string]string{"error": "Cet email est déjà utilisé."})
		return
	}
	if err != nil {
		h.internal(w, "create user", err)
		return
	}
	writeJSON(w, http.StatusCreated, map[string]any{"message": "Inscription réussie.", "id": u.ID})
}

func (h Handlers) CurrentUser(w http.ResponseWriter, r *http.Request) {
	u, ok := currentUser(w, r)
	if !ok {
		return
	}
	writeJSON(w, http.StatusOK, clinup.User{
		ID:        u.ID,
		Email:     u.Email,
		Firstname: u.Firstname,
		Lastname:  u.Lastname,
		Roles:     u.Roles,
	})
}

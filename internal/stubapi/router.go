package stubapi

import (
	"log/slog"
	"net/http"
	"time"

	"github.com/go-chi/chi/v5"
	"github.com/justinas/alice"
	"github.com/rs/cors"

	"clinup/pkg/clinup"
	"clinup/pkg/config"
)

type Dependencies struct {
	Cfg      config.Config
	Store    Store
	Payments *Payments
	Logger   *slog.Logger

	// Optional; tests use them to make tokens and hashing deterministic and fast.
	Now        func() time.Time
	BcryptCost int
}

func NewRouter(deps Dependencies) http.Handler {
	logger := deps.Logger
	if logger == nil {
		logger = slog.Default()
	}
	payments := deps.Payments
	if payments == nil {
		payments = NewPayments(deps.Cfg.Stub.PaymentSessionTTL)
	}
	tokens := Tokens{Secret: deps.Cfg.Stub.JWTSecret, TTL: deps.Cfg.Stub.TokenTTL, Now: deps.Now}
	h := Handlers{
		Store:      deps.Store,
		Tokens:     tokens,
		Payments:   payments,
		Logger:     logger,
		BcryptCost: deps.BcryptCost,
		Now:        deps.Now,
	}

	r := chi.NewRouter()

	r.Get("/healthz", func(w http.ResponseWriter, r *http.Request) {
		w.WriteHeader(http.StatusOK)
		_, _ = w.Write([]byte("ok"))
	})

	// Public
	r.Post("/api/login", h.Login)
	r.Post("/api/register", h.Register)
	r.Get("/generate-receipt/{id}", h.Receipt)

	if deps.Cfg.AppEnv != "prod" {
		r.Post("/dev/payments/{id}/{outcome}", h.SetPaymentOutcome)
	}

	r.Group(func(r chi.Router) {
		r.Use(BearerAuth(tokens, deps.Store))

		r.Get("/api/user", h.CurrentUser)

		// Host
		r.Group(func(r chi.Router) {
			r.Use(RequireRole(clinup.RoleHost))

			r.Get("/api/reservation/listes", h.HostReservations)
			r.Post("/api/reservation/ajouter", h.AddReservation)
			r.Get("/api/reservation/{id}/details", h.HostReservation)
			r.Post("/api/reservation/{id}/valider", h.Validate)
			r.Post("/api/reservation/{id}/annuler-en-attente", h.CancelPending)

			r.Post("/api/reservation/checkout-session", h.Checkout)
			r.Post("/api/reservation/{id}/checkout-session/invit", h.CheckoutInvitation)
			r.Post("/api/reservation/check-payment-status", h.PaymentStatus)
			r.Post("/api/reservation/check-payment-status_invit", h.InvitationPaymentStatus)

			r.Get("/api/logements/{id}/details", h.LogementDetails)
			r.Delete("/api/tache/{id}/delete", h.DeleteTask)

			r.Get("/api/invit/all", h.Invitations)
			r.Post("/api/invit/ajouter", h.Invite)
			r.Post("/api/invit/{id}/relance", h.RelaunchInvitation)
			r.Delete("/api/invit/{id}/supprimer", h.DeleteInvitation)
		})

		// Provider
		r.Group(func(r chi.Router) {
			r.Use(RequireRole(clinup.RoleProvider))

			r.Get("/api/prestataire/reservations", h.ProviderReservations)
			r.Get("/api/prestataire/{id}/reservation", h.ProviderReservation)
			r.Post("/api/prestataire/{id}/postuler", h.Apply)
			r.Post("/api/prestataire/{id}/postuler/invit", h.ApplyInvitation)
			r.Post("/api/prestataire/{id}/video", h.UploadVideo)
			r.Post("/api/prestataire/task/{taskId}/image", h.UploadTaskImage)
			r.Delete("/api/prestataire/image/{imgId}/delete", h.DeleteTaskImage)
		})
	})

	c := cors.New(cors.Options{
		AllowedOrigins: deps.Cfg.Stub.AllowedOrigins,
		AllowedMethods: []string{http.MethodGet, http.MethodPost, http.MethodPut, http.MethodDelete, http.MethodOptions},
		AllowedHeaders: []string{"Content-Type", "Authorization"},
		MaxAge:         600,
	})

	return alice.New(
		recoverPanic(logger),
		logRequests(logger),
		RateLimit(deps.Cfg.Stub.RateLimit, deps.Cfg.Stub.RateBurst),
		c.Handler,
	).Then(r)
}

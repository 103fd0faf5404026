package stubapi

import (
	"context"
	"fmt"

	"github.com/shopspring/decimal"

	"clinup/internal/invitation"
	"clinup/internal/reservation"
	"clinup/pkg/clinup"
)

const SeedPassword = "clinup"

// Demo accounts created by Seed.
const (
	SeedHostEmail     = "hote@clinup.test"
	SeedProviderEmail = "presta@clinup.test"
	SeedOtherEmail    = "agent@clinup.test"
)

// SeedData names what Seed created, one reservation per lifecycle stage.
type SeedData struct {
	Host     User
	Provider User
	Other    User
	Logement clinup.Logement
	Tasks    []clinup.Task

	// Open has one applicant (Other); Fresh has none.
	Open  clinup.ID
	Fresh clinup.ID
	// Invited is an invitation booking waiting for Provider.
	Invited   clinup.ID
	Confirmed clinup.ID
	Paid      clinup.ID
}

// Seed loads the demo dataset. It is not idempotent; run it on an empty store.
func Seed(ctx context.Context, store Store, bcryptCost int) (SeedData, error) {
	var d SeedData
	var err error

	mk := func(email, first, last, role string) (User, error) {
		hash, err := hashPassword(SeedPassword, bcryptCost)
		if err != nil {
			return User{}, err
		}
		return store.CreateUser(ctx, User{Email: email, PasswordHash: hash, Firstname: first, Lastname: last, Roles: []string{role}})
	}
	if d.Host, err = mk(SeedHostEmail, "Claire", "Martin", clinup.RoleHost); err != nil {
		return d, fmt.Errorf("seed host: %w", err)
	}
	if d.Provider, err = mk(SeedProviderEmail, "Awa", "Diallo", clinup.RoleProvider); err != nil {
		return d, fmt.Errorf("seed provider: %w", err)
	}
	if d.Other, err = mk(SeedOtherEmail, "Lucas", "Bernard", clinup.RoleProvider); err != nil {
		return d, fmt.Errorf("seed provider: %w", err)
	}

	if d.Logement, err = store.CreateLogement(ctx, d.Host.ID, "Studio Belleville", "12 rue de Belleville, Paris"); err != nil {
		return d, fmt.Errorf("seed logement: %w", err)
	}
	for _, t := range []clinup.Task{
		{Titre: "Cuisine", Detail: "Plan de travail et évier"},
		{Titre: "Salle de bain", Detail: "Douche, lavabo, miroir"},
		{Titre: "Linge", Detail: "Changer les draps"},
	} {
		task, err := store.CreateTask(ctx, d.Logement.ID, t)
		if err != nil {
			return d, fmt.Errorf("seed task: %w", err)
		}
		d.Tasks = append(d.Tasks, task)
	}

	book := func(date string, prix string, intent string, statut reservation.Status, provider *User) (clinup.ID, error) {
		res := clinup.Reservation{
			Logement: d.Logement,
			Date:     date,
			Heure:    "10:00",
			NbrHeure: 120,
			Prix:     decimal.RequireFromString(prix),
			Intent:   intent,
			Statut:   statut.Wire(),
		}
		if provider != nil {
			p := provider.Person()
			res.Prestataire = &p
		}
		rec, err := store.CreateReservation(ctx, d.Host.ID, res)
		return rec.Reservation.ID, err
	}

	if d.Open, err = book("2026-11-02", "45.00", "", reservation.StatusEnAttente, nil); err != nil {
		return d, fmt.Errorf("seed reservation: %w", err)
	}
	if err := store.AddApplication(ctx, d.Open, Application{ProviderID: d.Other.ID, Comment: "Disponible toute la matinée."}); err != nil {
		return d, fmt.Errorf("seed application: %w", err)
	}
	if d.Fresh, err = book("2026-11-05", "40.00", "", reservation.StatusEnAttente, nil); err != nil {
		return d, fmt.Errorf("seed reservation: %w", err)
	}
	if d.Invited, err = book("2026-11-09", "60.00", reservation.IntentInvitation, reservation.StatusEnAttente, nil); err != nil {
		return d, fmt.Errorf("seed reservation: %w", err)
	}
	if _, err := store.CreateInvitation(ctx, d.Host.ID, clinup.Invitation{
		Nom:   d.Provider.Person().FullName(),
		Email: d.Provider.Email,
		Code:  "DEMO2026",
		Etat:  string(invitation.EtatEnAttente),
	}); err != nil {
		return d, fmt.Errorf("seed invitation: %w", err)
	}
	if d.Confirmed, err = book("2026-10-25", "50.00", "", reservation.StatusConfirmer, &d.Provider); err != nil {
		return d, fmt.Errorf("seed reservation: %w", err)
	}
	if d.Paid, err = book("2026-10-12", "72.00", "", reservation.StatusPayer, &d.Provider); err != nil {
		return d, fmt.Errorf("seed reservation: %w", err)
	}
	return d, nil
}

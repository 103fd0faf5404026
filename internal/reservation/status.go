package reservation

import (
	"strings"

	"clinup/pkg/clinup"
)

type Reservation = clinup.Reservation

type Status string

const (
	StatusInconnu   Status = ""
	StatusEnAttente Status = "en attente"
	StatusConfirmer Status = "confirmer"
	StatusPayer     Status = "payer"
	StatusAnnuler   Status = "Annuler"
)

// ParseStatus never fails: anything it does not recognize is StatusInconnu.
func ParseStatus(s string) Status {
	norm := strings.ToLower(strings.TrimSpace(s))
	norm = strings.ReplaceAll(norm, "_", " ")
	switch norm {
	case "en attente":
		return StatusEnAttente
	case "confirmer":
		return StatusConfirmer
	case "payer":
		return StatusPayer
	case "annuler":
		return StatusAnnuler
	default:
		return StatusInconnu
	}
}

func StatusOf(r Reservation) Status {
	return ParseStatus(r.Statut)
}

// Wire is the value the backend uses. Inconnu has none.
func (s Status) Wire() string { return string(s) }

func (s Status) Known() bool { return s != StatusInconnu }

func (s Status) Terminal() bool {
	return s == StatusPayer || s == StatusAnnuler
}

func (s Status) String() string {
	if s == StatusInconnu {
		return "inconnu"
	}
	return string(s)
}

var allowedTransitions = map[Status]map[Status]bool{
	StatusEnAttente: {StatusConfirmer: true, StatusAnnuler: true},
	StatusConfirmer: {StatusPayer: true},
	StatusPayer:     {},
	StatusAnnuler:   {},
}

// CanTransition reports whether the backend may move a reservation from one status to the next.
// Staying in the same status is not a transition.
func CanTransition(from, to Status) bool {
	m, ok := allowedTransitions[from]
	if !ok {
		return false
	}
	return m[to]
}

type Badge struct {
	Text  string
	Color string
}

var (
	badgeEnAttente = Badge{Text: "En attente", Color: "rgb(255, 139, 60)"}
	badgeConfirmer = Badge{Text: "Confirmée", Color: "rgb(7, 84, 201)"}
	badgeAnnuler   = Badge{Text: "Annulée", Color: "rgb(255, 28, 63)"}
	badgePayer     = Badge{Text: "Payée", Color: "rgb(60, 196, 39)"}
)

// Badge is the status pill shown on detail screens. Unknown statuses look pending.
func (s Status) Badge() Badge {
	switch s {
	case StatusConfirmer:
		return badgeConfirmer
	case StatusAnnuler:
		return badgeAnnuler
	case StatusPayer:
		return badgePayer
	default:
		return badgeEnAttente
	}
}

// Label is the host list wording, which splits pending reservations on applicant count.
func (s Status) Label(applicants int) string {
	if s != StatusEnAttente {
		return s.Badge().Text
	}
	if applicants <= 0 {
		return "En attente de réservation"
	}
	return "En attente de réponse"
}

package invitation

import (
	"context"
	"strings"

	"clinup/internal/fetch"
	"clinup/internal/ui"
	"clinup/pkg/clinup"
)

type Etat string

const (
	EtatInconnu   Etat = ""
	EtatEnAttente Etat = "en_attente"
	EtatAccepter  Etat = "accepter"
)

func ParseEtat(s string) Etat {
	norm := strings.ToLower(strings.TrimSpace(s))
	norm = strings.ReplaceAll(norm, " ", "_")
	switch norm {
	case "en_attente":
		return EtatEnAttente
	case "accepter", "acceptee", "acceptée":
		return EtatAccepter
	default:
		return EtatInconnu
	}
}

func (e Etat) Label() string {
	switch e {
	case EtatEnAttente:
		return "En attente"
	case EtatAccepter:
		return "Acceptée"
	default:
		return "Inconnu"
	}
}

// Relaunchable: only invitations still waiting can be sent again.
func (e Etat) Relaunchable() bool { return e == EtatEnAttente }

// Remove drops exactly the invitation with id and keeps the order of the rest.
func Remove(list []clinup.Invitation, id clinup.ID) []clinup.Invitation {
	out := make([]clinup.Invitation, 0, len(list))
	for _, inv := range list {
		if inv.ID != id {
			out = append(out, inv)
		}
	}
	return out
}

const (
	MsgInvited        = "Invitation envoyée avec succès !"
	MsgInviteFailed   = "Une erreur est survenue lors de l'envoi de l'invitation."
	MsgRelaunched     = "Invitation relancée avec succès !"
	MsgRelaunchFailed = "Une erreur est survenue lors de la relance de l'invitation."
	MsgDeleted        = "Invitation supprimée avec succès !"
	MsgDeleteFailed   = "Une erreur est survenue lors de la suppression de l'invitation."
	MsgLoadFailed     = "Erreur lors du chargement des invitations."
)

type Client interface {
	Invitations(ctx context.Context) ([]clinup.Invitation, error)
	Invite(ctx context.Context, inv clinup.NewInvitation) error
	RelaunchInvitation(ctx context.Context, id clinup.ID) error
	DeleteInvitation(ctx context.Context, id clinup.ID) error
}

// Screen is the host's invitation list.
type Screen struct {
	Client Client
	Alerts ui.Alerter

	list *fetch.Loader[[]clinup.Invitation]
}

func NewScreen(c Client, alerts ui.Alerter) *Screen {
	s := &Screen{Client: c, Alerts: alerts}
	s.list = fetch.New(c.Invitations)
	return s
}

func (s *Screen) Mount(ctx context.Context) error {
	if err := s.list.Mount(ctx); err != nil {
		s.Alerts.Alert(ui.KindError, clinup.UserMessage(err, MsgLoadFailed))
		return err
	}
	return nil
}

func (s *Screen) Invitations() []clinup.Invitation { return s.list.Value() }

func (s *Screen) Invite(ctx context.Context, inv clinup.NewInvitation) error {
	if err := s.Client.Invite(ctx, inv); err != nil {
		s.Alerts.Alert(ui.KindError, clinup.ServerMessage(err, MsgInviteFailed))
		return err
	}
	s.Alerts.Alert(ui.KindSuccess, MsgInvited)
	return s.list.Refresh(ctx)
}

func (s *Screen) Relaunch(ctx context.Context, id clinup.ID) error {
	if err := s.Client.RelaunchInvitation(ctx, id); err != nil {
		s.Alerts.Alert(ui.KindError, clinup.UserMessage(err, MsgRelaunchFailed))
		return err
	}
	s.Alerts.Alert(ui.KindSuccess, MsgRelaunched)
	return nil
}

// Delete removes the row locally once the server confirmed.
func (s *Screen) Delete(ctx context.Context, id clinup.ID) error {
	if err := s.Client.DeleteInvitation(ctx, id); err != nil {
		s.Alerts.Alert(ui.KindError, clinup.UserMessage(err, MsgDeleteFailed))
		return err
	}
	s.list.Update(func(l []clinup.Invitation) []clinup.Invitation { return Remove(l, id) })
	s.Alerts.Alert(ui.KindSuccess, MsgDeleted)
	return nil
}

package logement

import (
	"context"

	"clinup/internal/fetch"
	"clinup/internal/reservation"
	"clinup/internal/ui"
	"clinup/pkg/clinup"
)

const (
	MsgTaskDeleted   = "Tâche supprimée avec succès !"
	MsgTaskDelFailed = "Erreur lors de la suppression de la tâche."
	MsgLoadFailed    = "Erreur lors du chargement du logement."
)

type Client interface {
	PropertyDetails(ctx context.Context, id clinup.ID) (clinup.PropertyDetails, error)
	DeleteTask(ctx context.Context, taskID clinup.ID) error
}

// Screen is a host's logement with its cleaning checklist.
type Screen struct {
	Client Client
	ID     clinup.ID
	Alerts ui.Alerter

	details *fetch.Loader[clinup.PropertyDetails]
}

func NewScreen(c Client, id clinup.ID, alerts ui.Alerter) *Screen {
	s := &Screen{Client: c, ID: id, Alerts: alerts}
	s.details = fetch.New(func(ctx context.Context) (clinup.PropertyDetails, error) {
		return s.Client.PropertyDetails(ctx, s.ID)
	})
	return s
}

func (s *Screen) Mount(ctx context.Context) error {
	if err := s.details.Mount(ctx); err != nil {
		s.Alerts.Alert(ui.KindError, clinup.UserMessage(err, MsgLoadFailed))
		return err
	}
	return nil
}

func (s *Screen) Logement() clinup.Property { return s.details.Value().Logement }

func (s *Screen) Tasks() []clinup.Task { return s.details.Value().Tasks }

// DeleteTask drops the task from the loaded checklist only once the server confirmed.
func (s *Screen) DeleteTask(ctx context.Context, taskID clinup.ID) error {
	if err := s.Client.DeleteTask(ctx, taskID); err != nil {
		s.Alerts.Alert(ui.KindError, clinup.UserMessage(err, MsgTaskDelFailed))
		return err
	}
	s.details.Update(func(d clinup.PropertyDetails) clinup.PropertyDetails {
		d.Tasks = reservation.RemoveTask(d.Tasks, taskID)
		return d
	})
	s.Alerts.Alert(ui.KindSuccess, MsgTaskDeleted)
	return nil
}

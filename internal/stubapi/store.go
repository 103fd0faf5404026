package stubapi

import (
	"context"
	"errors"
	"slices"
	"time"

	"clinup/internal/reservation"
	"clinup/pkg/clinup"
)

var (
	ErrNotFound  = errors.New("not found")
	ErrDuplicate = errors.New("already exists")
	// ErrConflict means the row changed status between read and write.
	ErrConflict = errors.New("status changed concurrently")
)

type User struct {
	ID           clinup.ID
	Email        string
	PasswordHash string
	Firstname    string
	Lastname     string
	Picture      string
	Roles        []string
}

func (u User) Has(role string) bool { return slices.Contains(u.Roles, role) }

func (u User) Person() clinup.Person {
	return clinup.Person{ID: u.ID, Firstname: u.Firstname, Lastname: u.Lastname, Picture: u.Picture, Email: u.Email}
}

// Record is a reservation together with the fields only the server sees.
type Record struct {
	HostID      clinup.ID
	Reservation clinup.Reservation
}

func (r Record) Status() reservation.Status { return reservation.StatusOf(r.Reservation) }

func (r Record) HasApplicant(providerID clinup.ID) bool {
	for _, p := range r.Reservation.Postulers {
		if p.ID == providerID {
			return true
		}
	}
	return false
}

// TaskPlace locates a task: its logement and that logement's host.
type TaskPlace struct {
	TaskID     clinup.ID
	LogementID clinup.ID
	HostID     clinup.ID
}

type LogementRecord struct {
	HostID   clinup.ID
	Logement clinup.Logement
	Tasks    []clinup.Task
}

type Application struct {
	ProviderID   clinup.ID
	Comment      string
	Availability string
}

type Event struct {
	ReservationID clinup.ID
	From          reservation.Status
	To            reservation.Status
	Actor         clinup.ID
	OccurredAt    time.Time
}

type Store interface {
	CreateUser(ctx context.Context, u User) (User, error)
	UserByID(ctx context.Context, id clinup.ID) (User, error)
	UserByEmail(ctx context.Context, email string) (User, error)

	CreateLogement(ctx context.Context, hostID clinup.ID, name, adresse string) (clinup.Logement, error)
	CreateTask(ctx context.Context, logementID clinup.ID, t clinup.Task) (clinup.Task, error)
	DeleteTask(ctx context.Context, taskID clinup.ID) error
	AddTaskImage(ctx context.Context, taskID clinup.ID, filePath string) (clinup.ImgTask, error)
	DeleteTaskImage(ctx context.Context, imgID clinup.ID) error
	Logement(ctx context.Context, id clinup.ID) (LogementRecord, error)
	TaskPlace(ctx context.Context, taskID clinup.ID) (TaskPlace, error)
	// ImagePlace locates the task an evidence image is attached to.
	ImagePlace(ctx context.Context, imgID clinup.ID) (TaskPlace, error)

	CreateReservation(ctx context.Context, hostID clinup.ID, r clinup.Reservation) (Record, error)
	Reservation(ctx context.Context, id clinup.ID) (Record, error)
	ReservationsByHost(ctx context.Context, hostID clinup.ID) ([]Record, error)
	// ReservationsForProvider is the open market plus everything assigned to the provider.
	ReservationsForProvider(ctx context.Context, providerID clinup.ID) ([]Record, error)
	AddApplication(ctx context.Context, reservationID clinup.ID, a Application) error
	SetVideo(ctx context.Context, reservationID clinup.ID, filePath string) (clinup.Video, error)

	// Transition moves a reservation only if it is still in from, and records the event.
	// A non-empty providerID is assigned as the reservation's prestataire.
	Transition(ctx context.Context, id clinup.ID, from, to reservation.Status, providerID, actor clinup.ID) error
	Events(ctx context.Context, reservationID clinup.ID) ([]Event, error)

	Invitations(ctx context.Context, hostID clinup.ID) ([]clinup.Invitation, error)
	CreateInvitation(ctx context.Context, hostID clinup.ID, inv clinup.Invitation) (clinup.Invitation, error)
	DeleteInvitation(ctx context.Context, hostID, id clinup.ID) error
	InvitationByEmail(ctx context.Context, hostID clinup.ID, email string) (clinup.Invitation, error)
}

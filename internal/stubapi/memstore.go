package stubapi

import (
	"context"
	"strconv"
	"strings"
	"sync"
	"time"

	"github.com/shopspring/decimal"

	"clinup/internal/reservation"
	"clinup/pkg/clinup"
)

type logementRow struct {
	clinup.Logement
	HostID clinup.ID
	Tasks  []clinup.ID
}

type taskRow struct {
	Task       clinup.Task
	LogementID clinup.ID
	Images     []clinup.ImgTask
}

type reservationRow struct {
	ID            clinup.ID
	HostID        clinup.ID
	LogementID    clinup.ID
	Statut        string
	Date          string
	Heure         string
	NbrHeure      int
	Prix          decimal.Decimal
	Description   *string
	PrestataireID clinup.ID
	Intent        string
	Video         *clinup.Video
	Applications  []Application
}

type invitationRow struct {
	clinup.Invitation
	HostID clinup.ID
}

// Memory keeps everything in process. It is the default store and the one tests use.
type Memory struct {
	Now func() time.Time

	mu           sync.RWMutex
	seq          int64
	users        map[clinup.ID]User
	emails       map[string]clinup.ID
	logements    map[clinup.ID]*logementRow
	tasks        map[clinup.ID]*taskRow
	reservations map[clinup.ID]*reservationRow
	resOrder     []clinup.ID
	invitations  []invitationRow
	events       []Event
}

func NewMemory() *Memory {
	return &Memory{
		users:        map[clinup.ID]User{},
		emails:       map[string]clinup.ID{},
		logements:    map[clinup.ID]*logementRow{},
		tasks:        map[clinup.ID]*taskRow{},
		reservations: map[clinup.ID]*reservationRow{},
	}
}

func (m *Memory) nextID() clinup.ID {
	m.seq++
	return clinup.ID(strconv.FormatInt(m.seq, 10))
}

func (m *Memory) now() time.Time {
	if m.Now != nil {
		return m.Now()
	}
	return time.Now()
}

func (m *Memory) CreateUser(ctx context.Context, u User) (User, error) {
	m.mu.Lock()
	defer m.mu.Unlock()

	email := strings.ToLower(strings.TrimSpace(u.Email))
	if _, ok := m.emails[email]; ok {
		return User{}, ErrDuplicate
	}
	u.ID = m.nextID()
	u.Email = email
	m.users[u.ID] = u
	m.emails[email] = u.ID
	return u, nil
}

func (m *Memory) UserByID(ctx context.Context, id clinup.ID) (User, error) {
	m.mu.RLock()
	defer m.mu.RUnlock()
	u, ok := m.users[id]
	if !ok {
		return User{}, ErrNotFound
	}
	return u, nil
}

func (m *Memory) UserByEmail(ctx context.Context, email string) (User, error) {
	m.mu.RLock()
	defer m.mu.RUnlock()
	id, ok := m.emails[strings.ToLower(strings.TrimSpace(email))]
	if !ok {
		return User{}, ErrNotFound
	}
	return m.users[id], nil
}

func (m *Memory) CreateLogement(ctx context.Context, hostID clinup.ID, name, adresse string) (clinup.Logement, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	if _, ok := m.users[hostID]; !ok {
		return clinup.Logement{}, ErrNotFound
	}
	l := &logementRow{Logement: clinup.Logement{ID: m.nextID(), Name: name, Adresse: adresse}, HostID: hostID}
	m.logements[l.ID] = l
	return l.Logement, nil
}

func (m *Memory) CreateTask(ctx context.Context, logementID clinup.ID, t clinup.Task) (clinup.Task, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	l, ok := m.logements[logementID]
	if !ok {
		return clinup.Task{}, ErrNotFound
	}
	t.ID = m.nextID()
	t.ImgTasks = nil
	m.tasks[t.ID] = &taskRow{Task: t, LogementID: logementID}
	l.Tasks = append(l.Tasks, t.ID)
	return t, nil
}

func (m *Memory) DeleteTask(ctx context.Context, taskID clinup.ID) error {
	m.mu.Lock()
	defer m.mu.Unlock()
	t, ok := m.tasks[taskID]
	if !ok {
		return ErrNotFound
	}
	delete(m.tasks, taskID)
	if l, ok := m.logements[t.LogementID]; ok {
		l.Tasks = removeID(l.Tasks, taskID)
	}
	return nil
}

func (m *Memory) AddTaskImage(ctx context.Context, taskID clinup.ID, filePath string) (clinup.ImgTask, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	t, ok := m.tasks[taskID]
	if !ok {
		return clinup.ImgTask{}, ErrNotFound
	}
	img := clinup.ImgTask{ID: m.nextID(), FilePath: filePath}
	t.Images = append(t.Images, img)
	return img, nil
}

func (m *Memory) DeleteTaskImage(ctx context.Context, imgID clinup.ID) error {
	m.mu.Lock()
	defer m.mu.Unlock()
	for _, t := range m.tasks {
		for i, img := range t.Images {
			if img.ID == imgID {
				t.Images = append(t.Images[:i:i], t.Images[i+1:]...)
				return nil
			}
		}
	}
	return ErrNotFound
}

func (m *Memory) Logement(ctx context.Context, id clinup.ID) (LogementRecord, error) {
	m.mu.RLock()
	defer m.mu.RUnlock()
	l, ok := m.logements[id]
	if !ok {
		return LogementRecord{}, ErrNotFound
	}
	return LogementRecord{HostID: l.HostID, Logement: l.Logement, Tasks: m.logementTasks(l)}, nil
}

func (m *Memory) TaskPlace(ctx context.Context, taskID clinup.ID) (TaskPlace, error) {
	m.mu.RLock()
	defer m.mu.RUnlock()
	t, ok := m.tasks[taskID]
	if !ok {
		return TaskPlace{}, ErrNotFound
	}
	return m.place(taskID, t), nil
}

func (m *Memory) ImagePlace(ctx context.Context, imgID clinup.ID) (TaskPlace, error) {
	m.mu.RLock()
	defer m.mu.RUnlock()
	for id, t := range m.tasks {
		for _, img := range t.Images {
			if img.ID == imgID {
				return m.place(id, t), nil
			}
		}
	}
	return TaskPlace{}, ErrNotFound
}

// place needs m.mu held.
func (m *Memory) place(taskID clinup.ID, t *taskRow) TaskPlace {
	p := TaskPlace{TaskID: taskID, LogementID: t.LogementID}
	if l, ok := m.logements[t.LogementID]; ok {
		p.HostID = l.HostID
	}
	return p
}

func (m *Memory) CreateReservation(ctx context.Context, hostID clinup.ID, r clinup.Reservation) (Record, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	l, ok := m.logements[r.Logement.ID]
	if !ok || l.HostID != hostID {
		return Record{}, ErrNotFound
	}
	statut := r.Statut
	if statut == "" {
		statut = reservation.StatusEnAttente.Wire()
	}
	row := &reservationRow{
		ID:          m.nextID(),
		HostID:      hostID,
		LogementID:  l.ID,
		Statut:      statut,
		Date:        r.Date,
		Heure:       r.Heure,
		NbrHeure:    r.NbrHeure,
		Prix:        r.Prix,
		Description: r.Description,
		Intent:      r.Intent,
	}
	if r.Prestataire != nil {
		row.PrestataireID = r.Prestataire.ID
	}
	m.reservations[row.ID] = row
	m.resOrder = append(m.resOrder, row.ID)
	return m.assemble(row), nil
}

func (m *Memory) Reservation(ctx context.Context, id clinup.ID) (Record, error) {
	m.mu.RLock()
	defer m.mu.RUnlock()
	row, ok := m.reservations[id]
	if !ok {
		return Record{}, ErrNotFound
	}
	return m.assemble(row), nil
}

func (m *Memory) ReservationsByHost(ctx context.Context, hostID clinup.ID) ([]Record, error) {
	return m.filter(func(row *reservationRow) bool { return row.HostID == hostID }), nil
}

func (m *Memory) ReservationsForProvider(ctx context.Context, providerID clinup.ID) ([]Record, error) {
	return m.filter(func(row *reservationRow) bool {
		return row.PrestataireID == providerID || reservation.ParseStatus(row.Statut) == reservation.StatusEnAttente
	}), nil
}

func (m *Memory) filter(keep func(*reservationRow) bool) []Record {
	m.mu.RLock()
	defer m.mu.RUnlock()
	out := []Record{}
	for _, id := range m.resOrder {
		row := m.reservations[id]
		if keep(row) {
			out = append(out, m.assemble(row))
		}
	}
	return out
}

func (m *Memory) AddApplication(ctx context.Context, reservationID clinup.ID, a Application) error {
	m.mu.Lock()
	defer m.mu.Unlock()
	row, ok := m.reservations[reservationID]
	if !ok {
		return ErrNotFound
	}
	for _, existing := range row.Applications {
		if existing.ProviderID == a.ProviderID {
			return ErrDuplicate
		}
	}
	row.Applications = append(row.Applications, a)
	return nil
}

func (m *Memory) SetVideo(ctx context.Context, reservationID clinup.ID, filePath string) (clinup.Video, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	row, ok := m.reservations[reservationID]
	if !ok {
		return clinup.Video{}, ErrNotFound
	}
	v := &clinup.Video{ID: m.nextID(), FilePath: filePath}
	row.Video = v
	return *v, nil
}

func (m *Memory) Transition(ctx context.Context, id clinup.ID, from, to reservation.Status, providerID, actor clinup.ID) error {
	m.mu.Lock()
	defer m.mu.Unlock()
	row, ok := m.reservations[id]
	if !ok {
		return ErrNotFound
	}
	if reservation.ParseStatus(row.Statut) != from {
		return ErrConflict
	}
	row.Statut = to.Wire()
	if providerID != "" {
		row.PrestataireID = providerID
	}
	m.events = append(m.events, Event{ReservationID: id, From: from, To: to, Actor: actor, OccurredAt: m.now()})
	return nil
}

func (m *Memory) Events(ctx context.Context, reservationID clinup.ID) ([]Event, error) {
	m.mu.RLock()
	defer m.mu.RUnlock()
	out := []Event{}
	for _, e := range m.events {
		if e.ReservationID == reservationID {
			out = append(out, e)
		}
	}
	return out, nil
}

func (m *Memory) Invitations(ctx context.Context, hostID clinup.ID) ([]clinup.Invitation, error) {
	m.mu.RLock()
	defer m.mu.RUnlock()
	out := []clinup.Invitation{}
	for _, inv := range m.invitations {
		if inv.HostID == hostID {
			out = append(out, inv.Invitation)
		}
	}
	return out, nil
}

func (m *Memory) CreateInvitation(ctx context.Context, hostID clinup.ID, inv clinup.Invitation) (clinup.Invitation, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	email := strings.ToLower(strings.TrimSpace(inv.Email))
	for _, existing := range m.invitations {
		if existing.HostID == hostID && existing.Email == email {
			return clinup.Invitation{}, ErrDuplicate
		}
	}
	inv.ID = m.nextID()
	inv.Email = email
	m.invitations = append(m.invitations, invitationRow{Invitation: inv, HostID: hostID})
	return inv, nil
}

func (m *Memory) DeleteInvitation(ctx context.Context, hostID, id clinup.ID) error {
	m.mu.Lock()
	defer m.mu.Unlock()
	for i, inv := range m.invitations {
		if inv.ID == id && inv.HostID == hostID {
			m.invitations = append(m.invitations[:i:i], m.invitations[i+1:]...)
			return nil
		}
	}
	return ErrNotFound
}

func (m *Memory) InvitationByEmail(ctx context.Context, hostID clinup.ID, email string) (clinup.Invitation, error) {
	m.mu.RLock()
	defer m.mu.RUnlock()
	email = strings.ToLower(strings.TrimSpace(email))
	for _, inv := range m.invitations {
		if inv.HostID == hostID && inv.Email == email {
			return inv.Invitation, nil
		}
	}
	return clinup.Invitation{}, ErrNotFound
}

// assemble builds the wire view of a row. Callers hold m.mu.
func (m *Memory) assemble(row *reservationRow) Record {
	r := clinup.Reservation{
		ID:          row.ID,
		Statut:      row.Statut,
		Date:        row.Date,
		Heure:       row.Heure,
		NbrHeure:    row.NbrHeure,
		Prix:        row.Prix,
		Description: row.Description,
		Intent:      row.Intent,
		Tasks:       []clinup.Task{},
		Postulers:   []clinup.Postuler{},
	}
	if row.Video != nil {
		v := *row.Video
		r.Video = &v
	}
	if l, ok := m.logements[row.LogementID]; ok {
		r.Logement = l.Logement
		if host, ok := m.users[l.HostID]; ok {
			p := host.Person()
			r.Logement.Hote = &p
		}
		r.Tasks = m.logementTasks(l)
	}
	if p, ok := m.users[row.PrestataireID]; ok {
		person := p.Person()
		r.Prestataire = &person
	}
	for _, a := range row.Applications {
		u := m.users[a.ProviderID]
		r.Postulers = append(r.Postulers, clinup.Postuler{
			ID:          a.ProviderID,
			Prestataire: u.Person().FullName(),
			Picture:     u.Picture,
			Comment:     a.Comment,
		})
	}
	return Record{HostID: row.HostID, Reservation: r}
}

func (m *Memory) logementTasks(l *logementRow) []clinup.Task {
	out := []clinup.Task{}
	for _, tid := range l.Tasks {
		t, ok := m.tasks[tid]
		if !ok {
			continue
		}
		task := t.Task
		task.ImgTasks = append([]clinup.ImgTask{}, t.Images...)
		out = append(out, task)
	}
	return out
}

func removeID(ids []clinup.ID, id clinup.ID) []clinup.ID {
	out := ids[:0:0]
	for _, v := range ids {
		if v != id {
			out = append(out, v)
		}
	}
	return out
}

package stubapi

import (
	"context"
	"errors"
	"strconv"
	"strings"

	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgconn"
	"github.com/jackc/pgx/v5/pgxpool"
	"github.com/shopspring/decimal"

	"clinup/internal/reservation"
	"clinup/pkg/clinup"
	"clinup/pkg/db"
)

// Postgres is the Store backed by the schema under migrations/.
type Postgres struct {
	db *pgxpool.Pool
}

func NewPostgres(pool *pgxpool.Pool) *Postgres {
	return &Postgres{db: pool}
}

// pgID maps ids that cannot be a row key to ErrNotFound, so a malformed path segment is a 404.
func pgID(id clinup.ID) (int64, error) {
	n, err := strconv.ParseInt(string(id), 10, 64)
	if err != nil {
		return 0, ErrNotFound
	}
	return n, nil
}

func toID(n int64) clinup.ID { return clinup.ID(strconv.FormatInt(n, 10)) }

func notFound(err error) error {
	if errors.Is(err, pgx.ErrNoRows) {
		return ErrNotFound
	}
	return err
}

func isUniqueViolation(err error) bool {
	var pgErr *pgconn.PgError
	return errors.As(err, &pgErr) && pgErr.Code == "23505"
}

func (p *Postgres) CreateUser(ctx context.Context, u User) (User, error) {
	const q = `
INSERT INTO users (email, password_hash, firstname, lastname, picture, roles)
VALUES ($1, $2, $3, $4, $5, $6)
RETURNING id
`
	u.Email = strings.ToLower(strings.TrimSpace(u.Email))
	var id int64
	if err := p.db.QueryRow(ctx, q, u.Email, u.PasswordHash, u.Firstname, u.Lastname, u.Picture, u.Roles).Scan(&id); err != nil {
		if isUniqueViolation(err) {
			return User{}, ErrDuplicate
		}
		return User{}, err
	}
	u.ID = toID(id)
	return u, nil
}

const userColumns = `id, email, password_hash, firstname, lastname, picture, roles`

func scanUser(row pgx.Row) (User, error) {
	var u User
	var id int64
	if err := row.Scan(&id, &u.Email, &u.PasswordHash, &u.Firstname, &u.Lastname, &u.Picture, &u.Roles); err != nil {
		return User{}, notFound(err)
	}
	u.ID = toID(id)
	return u, nil
}

func (p *Postgres) UserByID(ctx context.Context, id clinup.ID) (User, error) {
	n, err := pgID(id)
	if err != nil {
		return User{}, err
	}
	return scanUser(p.db.QueryRow(ctx, `SELECT `+userColumns+` FROM users WHERE id = $1`, n))
}

func (p *Postgres) UserByEmail(ctx context.Context, email string) (User, error) {
	return scanUser(p.db.QueryRow(ctx, `SELECT `+userColumns+` FROM users WHERE email = $1`, strings.ToLower(strings.TrimSpace(email))))
}

func (p *Postgres) CreateLogement(ctx context.Context, hostID clinup.ID, name, adresse string) (clinup.Logement, error) {
	host, err := pgID(hostID)
	if err != nil {
		return clinup.Logement{}, err
	}
	const q = `
INSERT INTO logements (host_id, name, adresse)
VALUES ($1, $2, $3)
RETURNING id
`
	var id int64
	if err := p.db.QueryRow(ctx, q, host, name, adresse).Scan(&id); err != nil {
		return clinup.Logement{}, err
	}
	return clinup.Logement{ID: toID(id), Name: name, Adresse: adresse}, nil
}

func (p *Postgres) CreateTask(ctx context.Context, logementID clinup.ID, t clinup.Task) (clinup.Task, error) {
	lid, err := pgID(logementID)
	if err != nil {
		return clinup.Task{}, err
	}
	const q = `
INSERT INTO tasks (logement_id, titre, detail, description, img)
VALUES ($1, $2, $3, $4, $5)
RETURNING id
`
	var id int64
	if err := p.db.QueryRow(ctx, q, lid, t.Titre, t.Detail, t.Description, t.Img).Scan(&id); err != nil {
		return clinup.Task{}, err
	}
	t.ID = toID(id)
	t.ImgTasks = nil
	return t, nil
}

func (p *Postgres) DeleteTask(ctx context.Context, taskID clinup.ID) error {
	return p.deleteByID(ctx, `DELETE FROM tasks WHERE id = $1`, taskID)
}

func (p *Postgres) AddTaskImage(ctx context.Context, taskID clinup.ID, filePath string) (clinup.ImgTask, error) {
	tid, err := pgID(taskID)
	if err != nil {
		return clinup.ImgTask{}, err
	}
	const q = `
INSERT INTO task_images (task_id, file_path)
SELECT id, $2::text FROM tasks WHERE id = $1
RETURNING id
`
	var id int64
	if err := p.db.QueryRow(ctx, q, tid, filePath).Scan(&id); err != nil {
		return clinup.ImgTask{}, notFound(err)
	}
	return clinup.ImgTask{ID: toID(id), FilePath: filePath}, nil
}

func (p *Postgres) DeleteTaskImage(ctx context.Context, imgID clinup.ID) error {
	return p.deleteByID(ctx, `DELETE FROM task_images WHERE id = $1`, imgID)
}

func (p *Postgres) Logement(ctx context.Context, id clinup.ID) (LogementRecord, error) {
	n, err := pgID(id)
	if err != nil {
		return LogementRecord{}, err
	}
	var rec LogementRecord
	var hostID int64
	err = p.db.QueryRow(ctx, `SELECT host_id, name, adresse FROM logements WHERE id = $1`, n).
		Scan(&hostID, &rec.Logement.Name, &rec.Logement.Adresse)
	if err != nil {
		return LogementRecord{}, notFound(err)
	}
	rec.HostID = toID(hostID)
	rec.Logement.ID = toID(n)
	if rec.Tasks, err = p.tasks(ctx, n); err != nil {
		return LogementRecord{}, err
	}
	return rec, nil
}

const taskPlaceSelect = `
SELECT t.id, l.id, l.host_id
FROM tasks t
JOIN logements l ON l.id = t.logement_id
`

func scanTaskPlace(row pgx.Row) (TaskPlace, error) {
	var taskID, logementID, hostID int64
	if err := row.Scan(&taskID, &logementID, &hostID); err != nil {
		return TaskPlace{}, notFound(err)
	}
	return TaskPlace{TaskID: toID(taskID), LogementID: toID(logementID), HostID: toID(hostID)}, nil
}

func (p *Postgres) TaskPlace(ctx context.Context, taskID clinup.ID) (TaskPlace, error) {
	n, err := pgID(taskID)
	if err != nil {
		return TaskPlace{}, err
	}
	return scanTaskPlace(p.db.QueryRow(ctx, taskPlaceSelect+`WHERE t.id = $1`, n))
}

func (p *Postgres) ImagePlace(ctx context.Context, imgID clinup.ID) (TaskPlace, error) {
	n, err := pgID(imgID)
	if err != nil {
		return TaskPlace{}, err
	}
	return scanTaskPlace(p.db.QueryRow(ctx, taskPlaceSelect+`JOIN task_images i ON i.task_id = t.id WHERE i.id = $1`, n))
}

func (p *Postgres) deleteByID(ctx context.Context, q string, id clinup.ID) error {
	n, err := pgID(id)
	if err != nil {
		return err
	}
	tag, err := p.db.Exec(ctx, q, n)
	if err != nil {
		return err
	}
	if tag.RowsAffected() == 0 {
		return ErrNotFound
	}
	return nil
}

func (p *Postgres) CreateReservation(ctx context.Context, hostID clinup.ID, r clinup.Reservation) (Record, error) {
	host, err := pgID(hostID)
	if err != nil {
		return Record{}, err
	}
	lid, err := pgID(r.Logement.ID)
	if err != nil {
		return Record{}, err
	}
	statut := r.Statut
	if statut == "" {
		statut = reservation.StatusEnAttente.Wire()
	}
	var prestataire *int64
	if r.Prestataire != nil {
		n, err := pgID(r.Prestataire.ID)
		if err != nil {
			return Record{}, err
		}
		prestataire = &n
	}
	const q = `
INSERT INTO reservations (host_id, logement_id, statut, date, heure, nbr_heure, prix, description, prestataire_id, intent)
SELECT $1::bigint, l.id, $3::text, $4::text, $5::text, $6::int, $7::numeric, $8::text, $9::bigint, $10::text
FROM logements l
WHERE l.id = $2 AND l.host_id = $1
RETURNING id
`
	var id int64
	err = p.db.QueryRow(ctx, q, host, lid, statut, r.Date, r.Heure, r.NbrHeure, r.Prix.StringFixed(2), r.Description, prestataire, r.Intent).Scan(&id)
	if err != nil {
		return Record{}, notFound(err)
	}
	return p.Reservation(ctx, toID(id))
}

const reservationSelect = `
SELECT r.id, r.host_id, r.statut, r.date, r.heure, r.nbr_heure, r.prix::text, r.description,
       r.prestataire_id, r.intent, r.video_path,
       l.id, l.name, l.adresse
FROM reservations r
JOIN logements l ON l.id = r.logement_id
`

type reservationScan struct {
	rec         Record
	logementID  int64
	prestataire *int64
}

func scanReservation(row pgx.Row) (reservationScan, error) {
	var s reservationScan
	var id, hostID, logementID int64
	var prix string
	var videoPath *string
	r := &s.rec.Reservation
	if err := row.Scan(&id, &hostID, &r.Statut, &r.Date, &r.Heure, &r.NbrHeure, &prix, &r.Description,
		&s.prestataire, &r.Intent, &videoPath,
		&logementID, &r.Logement.Name, &r.Logement.Adresse); err != nil {
		return s, notFound(err)
	}
	r.ID = toID(id)
	r.Logement.ID = toID(logementID)
	s.rec.HostID = toID(hostID)
	s.logementID = logementID
	r.Prix, _ = decimal.NewFromString(prix)
	if videoPath != nil {
		r.Video = &clinup.Video{ID: r.ID, FilePath: *videoPath}
	}
	return s, nil
}

func (p *Postgres) Reservation(ctx context.Context, id clinup.ID) (Record, error) {
	n, err := pgID(id)
	if err != nil {
		return Record{}, err
	}
	s, err := scanReservation(p.db.QueryRow(ctx, reservationSelect+`WHERE r.id = $1`, n))
	if err != nil {
		return Record{}, err
	}
	if err := p.fill(ctx, &s); err != nil {
		return Record{}, err
	}
	return s.rec, nil
}

func (p *Postgres) ReservationsByHost(ctx context.Context, hostID clinup.ID) ([]Record, error) {
	n, err := pgID(hostID)
	if err != nil {
		return nil, err
	}
	return p.list(ctx, reservationSelect+`WHERE r.host_id = $1 ORDER BY r.id ASC`, n)
}

func (p *Postgres) ReservationsForProvider(ctx context.Context, providerID clinup.ID) ([]Record, error) {
	n, err := pgID(providerID)
	if err != nil {
		return nil, err
	}
	return p.list(ctx, reservationSelect+`WHERE r.prestataire_id = $1 OR r.statut = $2 ORDER BY r.id ASC`,
		n, reservation.StatusEnAttente.Wire())
}

func (p *Postgres) list(ctx context.Context, q string, args ...any) ([]Record, error) {
	rows, err := p.db.Query(ctx, q, args...)
	if err != nil {
		return nil, err
	}
	var scans []reservationScan
	for rows.Next() {
		s, err := scanReservation(rows)
		if err != nil {
			rows.Close()
			return nil, err
		}
		scans = append(scans, s)
	}
	rows.Close()
	if err := rows.Err(); err != nil {
		return nil, err
	}

	out := make([]Record, 0, len(scans))
	for i := range scans {
		if err := p.fill(ctx, &scans[i]); err != nil {
			return nil, err
		}
		out = append(out, scans[i].rec)
	}
	return out, nil
}

// fill loads the people, tasks and applications around a reservation row.
func (p *Postgres) fill(ctx context.Context, s *reservationScan) error {
	r := &s.rec.Reservation
	if host, err := p.UserByID(ctx, s.rec.HostID); err == nil {
		hp := host.Person()
		r.Logement.Hote = &hp
	}
	if s.prestataire != nil {
		if u, err := p.UserByID(ctx, toID(*s.prestataire)); err == nil {
			pp := u.Person()
			r.Prestataire = &pp
		}
	}

	tasks, err := p.tasks(ctx, s.logementID)
	if err != nil {
		return err
	}
	r.Tasks = tasks

	const q = `
SELECT u.id, u.firstname, u.lastname, u.picture, po.comment
FROM postulers po
JOIN users u ON u.id = po.prestataire_id
WHERE po.reservation_id = $1
ORDER BY po.created_at ASC
`
	rid, err := pgID(r.ID)
	if err != nil {
		return err
	}
	rows, err := p.db.Query(ctx, q, rid)
	if err != nil {
		return err
	}
	defer rows.Close()
	r.Postulers = []clinup.Postuler{}
	for rows.Next() {
		var id int64
		var first, last string
		var po clinup.Postuler
		if err := rows.Scan(&id, &first, &last, &po.Picture, &po.Comment); err != nil {
			return err
		}
		po.ID = toID(id)
		po.Prestataire = strings.TrimSpace(first + " " + last)
		r.Postulers = append(r.Postulers, po)
	}
	return rows.Err()
}

func (p *Postgres) tasks(ctx context.Context, logementID int64) ([]clinup.Task, error) {
	const q = `
SELECT t.id, t.titre, t.detail, t.description, t.img, i.id, i.file_path
FROM tasks t
LEFT JOIN task_images i ON i.task_id = t.id
WHERE t.logement_id = $1
ORDER BY t.id ASC, i.id ASC
`
	rows, err := p.db.Query(ctx, q, logementID)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	out := []clinup.Task{}
	for rows.Next() {
		var tid int64
		var t clinup.Task
		var imgID *int64
		var imgPath *string
		if err := rows.Scan(&tid, &t.Titre, &t.Detail, &t.Description, &t.Img, &imgID, &imgPath); err != nil {
			return nil, err
		}
		t.ID = toID(tid)
		if n := len(out); n == 0 || out[n-1].ID != t.ID {
			t.ImgTasks = []clinup.ImgTask{}
			out = append(out, t)
		}
		if imgID != nil && imgPath != nil {
			last := &out[len(out)-1]
			last.ImgTasks = append(last.ImgTasks, clinup.ImgTask{ID: toID(*imgID), FilePath: *imgPath})
		}
	}
	return out, rows.Err()
}

func (p *Postgres) AddApplication(ctx context.Context, reservationID clinup.ID, a Application) error {
	rid, err := pgID(reservationID)
	if err != nil {
		return err
	}
	pid, err := pgID(a.ProviderID)
	if err != nil {
		return err
	}
	const q = `
INSERT INTO postulers (reservation_id, prestataire_id, comment, availability)
VALUES ($1, $2, $3, $4)
`
	if _, err := p.db.Exec(ctx, q, rid, pid, a.Comment, a.Availability); err != nil {
		if isUniqueViolation(err) {
			return ErrDuplicate
		}
		return err
	}
	return nil
}

func (p *Postgres) SetVideo(ctx context.Context, reservationID clinup.ID, filePath string) (clinup.Video, error) {
	rid, err := pgID(reservationID)
	if err != nil {
		return clinup.Video{}, err
	}
	tag, err := p.db.Exec(ctx, `UPDATE reservations SET video_path = $2 WHERE id = $1`, rid, filePath)
	if err != nil {
		return clinup.Video{}, err
	}
	if tag.RowsAffected() == 0 {
		return clinup.Video{}, ErrNotFound
	}
	return clinup.Video{ID: reservationID, FilePath: filePath}, nil
}

func (p *Postgres) Transition(ctx context.Context, id clinup.ID, from, to reservation.Status, providerID, actor clinup.ID) error {
	rid, err := pgID(id)
	if err != nil {
		return err
	}
	var prestataire, actorID *int64
	if providerID != "" {
		n, err := pgID(providerID)
		if err != nil {
			return err
		}
		prestataire = &n
	}
	if n, err := pgID(actor); err == nil {
		actorID = &n
	}

	return db.WithTx(ctx, p.db, func(tx pgx.Tx) error {
		const upd = `
UPDATE reservations
SET statut = $3,
    prestataire_id = COALESCE($4, prestataire_id)
WHERE id = $1 AND statut = $2
`
		tag, err := tx.Exec(ctx, upd, rid, from.Wire(), to.Wire(), prestataire)
		if err != nil {
			return err
		}
		if tag.RowsAffected() == 0 {
			var exists bool
			if err := tx.QueryRow(ctx, `SELECT EXISTS (SELECT 1 FROM reservations WHERE id = $1)`, rid).Scan(&exists); err != nil {
				return err
			}
			if !exists {
				return ErrNotFound
			}
			return ErrConflict
		}

		const ev = `
INSERT INTO reservation_events (reservation_id, from_statut, to_statut, actor_id)
VALUES ($1, $2, $3, $4)
`
		_, err = tx.Exec(ctx, ev, rid, from.Wire(), to.Wire(), actorID)
		return err
	})
}

func (p *Postgres) Events(ctx context.Context, reservationID clinup.ID) ([]Event, error) {
	rid, err := pgID(reservationID)
	if err != nil {
		return nil, err
	}
	const q = `
SELECT from_statut, to_statut, actor_id, occurred_at
FROM reservation_events
WHERE reservation_id = $1
ORDER BY occurred_at ASC, id ASC
`
	rows, err := p.db.Query(ctx, q, rid)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	out := []Event{}
	for rows.Next() {
		var from, to string
		var actor *int64
		e := Event{ReservationID: reservationID}
		if err := rows.Scan(&from, &to, &actor, &e.OccurredAt); err != nil {
			return nil, err
		}
		e.From, e.To = reservation.ParseStatus(from), reservation.ParseStatus(to)
		if actor != nil {
			e.Actor = toID(*actor)
		}
		out = append(out, e)
	}
	return out, rows.Err()
}

func (p *Postgres) Invitations(ctx context.Context, hostID clinup.ID) ([]clinup.Invitation, error) {
	host, err := pgID(hostID)
	if err != nil {
		return nil, err
	}
	rows, err := p.db.Query(ctx, `SELECT id, nom, email, code, etat, message FROM invitations WHERE host_id = $1 ORDER BY id ASC`, host)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	out := []clinup.Invitation{}
	for rows.Next() {
		inv, err := scanInvitation(rows)
		if err != nil {
			return nil, err
		}
		out = append(out, inv)
	}
	return out, rows.Err()
}

func scanInvitation(row pgx.Row) (clinup.Invitation, error) {
	var inv clinup.Invitation
	var id int64
	if err := row.Scan(&id, &inv.Nom, &inv.Email, &inv.Code, &inv.Etat, &inv.Message); err != nil {
		return clinup.Invitation{}, notFound(err)
	}
	inv.ID = toID(id)
	return inv, nil
}

func (p *Postgres) CreateInvitation(ctx context.Context, hostID clinup.ID, inv clinup.Invitation) (clinup.Invitation, error) {
	host, err := pgID(hostID)
	if err != nil {
		return clinup.Invitation{}, err
	}
	const q = `
INSERT INTO invitations (host_id, nom, email, code, etat, message)
VALUES ($1, $2, $3, $4, $5, $6)
RETURNING id
`
	inv.Email = strings.ToLower(strings.TrimSpace(inv.Email))
	var id int64
	if err := p.db.QueryRow(ctx, q, host, inv.Nom, inv.Email, inv.Code, inv.Etat, inv.Message).Scan(&id); err != nil {
		if isUniqueViolation(err) {
			return clinup.Invitation{}, ErrDuplicate
		}
		return clinup.Invitation{}, err
	}
	inv.ID = toID(id)
	return inv, nil
}

func (p *Postgres) DeleteInvitation(ctx context.Context, hostID, id clinup.ID) error {
	host, err := pgID(hostID)
	if err != nil {
		return err
	}
	n, err := pgID(id)
	if err != nil {
		return err
	}
	tag, err := p.db.Exec(ctx, `DELETE FROM invitations WHERE id = $1 AND host_id = $2`, n, host)
	if err != nil {
		return err
	}
	if tag.RowsAffected() == 0 {
		return ErrNotFound
	}
	return nil
}

func (p *Postgres) InvitationByEmail(ctx context.Context, hostID clinup.ID, email string) (clinup.Invitation, error) {
	host, err := pgID(hostID)
	if err != nil {
		return clinup.Invitation{}, err
	}
	const q = `SELECT id, nom, email, code, etat, message FROM invitations WHERE host_id = $1 AND email = $2`
	return scanInvitation(p.db.QueryRow(ctx, q, host, strings.ToLower(strings.TrimSpace(email))))
}

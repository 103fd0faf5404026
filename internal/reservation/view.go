package reservation

import "clinup/pkg/clinup"

const (
	NoCandidatesText = "Aucun agent pour le moment"
	NoTasksText      = "Aucune tâche liée à ce logement"
	NoImagesText     = "Aucune image ajoutée"
)

type TaskView struct {
	Task clinup.Task
	// ImagesPlaceholder is set when the task has no evidence image yet.
	ImagesPlaceholder string
}

// View is everything a detail screen renders for one reservation.
type View struct {
	ID     clinup.ID
	Status Status
	Badge  Badge

	Description     string
	ShowDescription bool

	// Candidates are only listed while the reservation is pending.
	ShowCandidates        bool
	Candidates            []clinup.Postuler
	CandidatesPlaceholder string

	Tasks            []TaskView
	TasksPlaceholder string

	Provider *clinup.Person
	Video    *clinup.Video

	Actions []Action
}

func Present(role Role, r Reservation) View {
	st := StatusOf(r)
	v := View{
		ID:      r.ID,
		Status:  st,
		Badge:   st.Badge(),
		Video:   r.Video,
		Actions: Allowed(role, r),
	}
	if r.Description != nil {
		v.Description = *r.Description
		v.ShowDescription = true
	}

	if st == StatusEnAttente && role == RoleHost {
		v.ShowCandidates = true
		if len(r.Postulers) == 0 {
			v.CandidatesPlaceholder = NoCandidatesText
		} else {
			v.Candidates = r.Postulers
		}
	}

	if len(r.Tasks) == 0 {
		v.TasksPlaceholder = NoTasksText
	}
	for _, t := range r.Tasks {
		tv := TaskView{Task: t}
		if len(t.ImgTasks) == 0 {
			tv.ImagesPlaceholder = NoImagesText
		}
		v.Tasks = append(v.Tasks, tv)
	}

	if (st == StatusConfirmer || st == StatusPayer) && r.Prestataire != nil {
		v.Provider = r.Prestataire
	}
	return v
}

// ListItem is one row of the host reservation list.
type ListItem struct {
	ID         clinup.ID
	Logement   string
	Date       string
	Heure      string
	Label      string
	Color      string
	Applicants int
}

func HostList(lists clinup.ReservationLists) []ListItem {
	out := make([]ListItem, 0, len(lists.Reservations))
	for _, r := range lists.Reservations {
		st := StatusOf(r)
		n := lists.Applicants(r.ID)
		out = append(out, ListItem{
			ID:         r.ID,
			Logement:   r.Logement.Name,
			Date:       r.Date,
			Heure:      r.Heure,
			Label:      st.Label(n),
			Color:      st.Badge().Color,
			Applicants: n,
		})
	}
	return out
}

// RemoveTask drops exactly the task with id, keeping the order of the others.
// It returns a new slice; tasks is not modified.
func RemoveTask(tasks []clinup.Task, id clinup.ID) []clinup.Task {
	out := make([]clinup.Task, 0, len(tasks))
	for _, t := range tasks {
		if t.ID != id {
			out = append(out, t)
		}
	}
	return out
}

// RemoveTaskImage drops the image with imgID from whichever task holds it.
func RemoveTaskImage(tasks []clinup.Task, imgID clinup.ID) []clinup.Task {
	out := make([]clinup.Task, len(tasks))
	for i, t := range tasks {
		imgs := make([]clinup.ImgTask, 0, len(t.ImgTasks))
		for _, img := range t.ImgTasks {
			if img.ID != imgID {
				imgs = append(imgs, img)
			}
		}
		t.ImgTasks = imgs
		out[i] = t
	}
	return out
}

package reservation

import (
	"slices"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"clinup/internal/ui"
	"clinup/pkg/clinup"
)

func strPtr(s string) *string { return &s }

func TestPresent_PendingWithoutCandidates(t *testing.T) {
	r := Reservation{ID: "1", Statut: "en attente", Postulers: []clinup.Postuler{}}
	v := Present(RoleHost, r)

	assert.True(t, v.ShowCandidates)
	assert.Equal(t, NoCandidatesText, v.CandidatesPlaceholder)
	assert.Empty(t, v.Candidates)
	assert.Equal(t, NoTasksText, v.TasksPlaceholder)
	assert.False(t, v.ShowDescription)
	assert.NotContains(t, v.Actions, ActionChooseCandidate)
}

func TestPresent_Candidates(t *testing.T) {
	r := Reservation{ID: "1", Statut: "en attente", Postulers: []clinup.Postuler{{ID: "9", Prestataire: "Awa D.", Comment: "dispo"}}}
	v := Present(RoleHost, r)

	require.Len(t, v.Candidates, 1)
	assert.Empty(t, v.CandidatesPlaceholder)
	assert.Contains(t, v.Actions, ActionChooseCandidate)
}

func TestPresent_DescriptionAndImages(t *testing.T) {
	r := Reservation{
		ID:          "1",
		Statut:      "confirmer",
		Description: strPtr(""),
		Prestataire: &clinup.Person{ID: "9"},
		Tasks: []clinup.Task{
			{ID: "t1", Titre: "Cuisine"},
			{ID: "t2", Titre: "Salon", ImgTasks: []clinup.ImgTask{{ID: "i1", FilePath: "a.jpg"}}},
		},
	}
	v := Present(RoleHost, r)

	assert.True(t, v.ShowDescription)
	assert.False(t, v.ShowCandidates)
	require.Len(t, v.Tasks, 2)
	assert.Equal(t, NoImagesText, v.Tasks[0].ImagesPlaceholder)
	assert.Empty(t, v.Tasks[1].ImagesPlaceholder)
	assert.Empty(t, v.TasksPlaceholder)
	require.NotNil(t, v.Provider)
}

func TestPresent_UnknownStatusNeverPanics(t *testing.T) {
	v := Present(RoleProvider, Reservation{Statut: "xyz"})
	assert.Equal(t, StatusInconnu, v.Status)
	assert.Equal(t, "En attente", v.Badge.Text)
	assert.Empty(t, v.Actions)
}

func TestAllowed_ProviderNeverSeesApplyAfterApplying(t *testing.T) {
	for _, st := range []string{"en attente", "confirmer", "payer", "Annuler", "??"} {
		for _, invit := range []bool{false, true} {
			r := Reservation{Statut: st, HasApplied: true, InvitExists: invit}
			acts := Allowed(RoleProvider, r)
			if slices.Contains(acts, ActionApply) || slices.Contains(acts, ActionApplyInvitation) {
				t.Fatalf("status %q invit=%v: apply offered after applying: %v", st, invit, acts)
			}
		}
	}
}

func TestAllowed_ProviderApplyVariant(t *testing.T) {
	assert.Equal(t, []Action{ActionApply}, Allowed(RoleProvider, Reservation{Statut: "en attente"}))
	assert.Equal(t, []Action{ActionApplyInvitation}, Allowed(RoleProvider, Reservation{Statut: "en attente", InvitExists: true}))
	assert.Equal(t, []Action{ActionUploadVideo, ActionConfirmTasks}, Allowed(RoleProvider, Reservation{Statut: "confirmer"}))
	assert.Empty(t, Allowed(RoleProvider, Reservation{Statut: "payer"}))
}

func TestAllowed_Host(t *testing.T) {
	assert.Equal(t, []Action{ActionCancel}, Allowed(RoleHost, Reservation{Statut: "en attente"}))
	assert.Equal(t, []Action{ActionApprove, ActionReject}, Allowed(RoleHost, Reservation{Statut: "confirmer"}))
	assert.Equal(t, []Action{ActionReceipt}, Allowed(RoleHost, Reservation{Statut: "payer"}))
	assert.Empty(t, Allowed(RoleHost, Reservation{Statut: "Annuler"}))
	assert.Empty(t, Allowed(RoleNone, Reservation{Statut: "en attente"}))
}

func TestExpect(t *testing.T) {
	invit := Reservation{ID: "5", Statut: "confirmer", Intent: "invit"}
	out := Expect(ActionApprove, invit)
	assert.Equal(t, StatusPayer, out.Status)
	assert.Equal(t, ui.ScreenPaymentInvit, out.Screen)
	assert.Equal(t, "5", out.Params["reservationId"])

	direct := Reservation{ID: "5", Statut: "confirmer", Intent: "direct"}
	out = Expect(ActionApprove, direct)
	assert.False(t, out.Navigates())
	assert.Equal(t, StatusPayer, out.Status)

	rej := Reservation{ID: "5", Statut: "confirmer", Prestataire: &clinup.Person{ID: "77"}}
	out = Expect(ActionReject, rej)
	assert.Equal(t, StatusConfirmer, out.Status)
	assert.Equal(t, ui.ScreenProfile, out.Screen)
	assert.Equal(t, "77", out.Params["id"])

	assert.Equal(t, StatusAnnuler, Expect(ActionCancel, Reservation{Statut: "en attente"}).Status)
	assert.Equal(t, StatusEnAttente, Expect(ActionApply, Reservation{Statut: "en attente"}).Status)
	assert.Equal(t, StatusConfirmer, Expect(ActionChooseCandidate, Reservation{Statut: "en attente"}).Status)
}

func TestRemoveTask_Middle(t *testing.T) {
	tasks := []clinup.Task{{ID: "a"}, {ID: "b"}, {ID: "c"}}
	got := RemoveTask(tasks, "b")

	ids := make([]clinup.ID, 0, len(got))
	for _, tk := range got {
		ids = append(ids, tk.ID)
	}
	assert.Equal(t, []clinup.ID{"a", "c"}, ids)
	assert.Len(t, tasks, 3)
	assert.Equal(t, clinup.ID("b"), tasks[1].ID)
}

func TestRemoveTask_Missing(t *testing.T) {
	tasks := []clinup.Task{{ID: "a"}, {ID: "b"}}
	assert.Len(t, RemoveTask(tasks, "zz"), 2)
	assert.Empty(t, RemoveTask(nil, "a"))
}

func TestRemoveTaskImage(t *testing.T) {
	tasks := []clinup.Task{
		{ID: "t1", ImgTasks: []clinup.ImgTask{{ID: "i1"}, {ID: "i2"}}},
		{ID: "t2", ImgTasks: []clinup.ImgTask{{ID: "i3"}}},
	}
	got := RemoveTaskImage(tasks, "i2")
	assert.Equal(t, []clinup.ImgTask{{ID: "i1"}}, got[0].ImgTasks)
	assert.Equal(t, []clinup.ImgTask{{ID: "i3"}}, got[1].ImgTasks)
	assert.Len(t, tasks[0].ImgTasks, 2)
}

func TestHostList(t *testing.T) {
	lists := clinup.ReservationLists{
		Reservations: []clinup.Reservation{
			{ID: "1", Statut: "en attente", Logement: clinup.Logement{Name: "Studio"}},
			{ID: "2", Statut: "en attente"},
			{ID: "3", Statut: "payer"},
		},
		Counts: map[string]int{"2": 4},
	}
	items := HostList(lists)
	require.Len(t, items, 3)
	assert.Equal(t, "En attente de réservation", items[0].Label)
	assert.Equal(t, "Studio", items[0].Logement)
	assert.Equal(t, "En attente de réponse", items[1].Label)
	assert.Equal(t, 4, items[1].Applicants)
	assert.Equal(t, "Payée", items[2].Label)
}

func TestRoleFrom(t *testing.T) {
	assert.Equal(t, RoleHost, RoleFrom([]string{clinup.RoleHost}))
	assert.Equal(t, RoleProvider, RoleFrom([]string{clinup.RoleProvider}))
	assert.Equal(t, RoleNone, RoleFrom([]string{"ROLE_ADMIN"}))
}

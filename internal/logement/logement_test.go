package logement

import (
	"context"
	"errors"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"clinup/internal/ui"
	"clinup/pkg/clinup"
)

type fakeClient struct {
	details   clinup.PropertyDetails
	deleteErr error
	deleted   []clinup.ID
	loads     int
}

func (f *fakeClient) PropertyDetails(ctx context.Context, id clinup.ID) (clinup.PropertyDetails, error) {
	f.loads++
	d := f.details
	d.Tasks = append([]clinup.Task(nil), f.details.Tasks...)
	return d, nil
}

func (f *fakeClient) DeleteTask(ctx context.Context, taskID clinup.ID) error {
	if f.deleteErr != nil {
		return f.deleteErr
	}
	f.deleted = append(f.deleted, taskID)
	return nil
}

func threeTasks() *fakeClient {
	return &fakeClient{details: clinup.PropertyDetails{
		Logement: clinup.Property{ID: "4", Nom: "Studio Belleville"},
		Tasks:    []clinup.Task{{ID: "t1", Titre: "Cuisine"}, {ID: "t2", Titre: "Salle de bain"}, {ID: "t3", Titre: "Linge"}},
	}}
}

func TestScreen_DeleteMiddleTask(t *testing.T) {
	fc := threeTasks()
	rec := &ui.Recorder{}
	s := NewScreen(fc, "4", rec)
	require.NoError(t, s.Mount(context.Background()))
	assert.Equal(t, "Studio Belleville", s.Logement().Nom)

	require.NoError(t, s.DeleteTask(context.Background(), "t2"))
	assert.Equal(t, []clinup.ID{"t2"}, fc.deleted)
	assert.Equal(t, []clinup.Task{{ID: "t1", Titre: "Cuisine"}, {ID: "t3", Titre: "Linge"}}, s.Tasks())
	// Patched in place, not re-fetched.
	assert.Equal(t, 1, fc.loads)
	a, _ := rec.LastAlert()
	assert.Equal(t, ui.AlertRecord{Kind: ui.KindSuccess, Message: MsgTaskDeleted}, a)
}

func TestScreen_FailedDeleteKeepsList(t *testing.T) {
	fc := threeTasks()
	fc.deleteErr = errors.New("boom")
	rec := &ui.Recorder{}
	s := NewScreen(fc, "4", rec)
	require.NoError(t, s.Mount(context.Background()))

	require.Error(t, s.DeleteTask(context.Background(), "t2"))
	assert.Len(t, s.Tasks(), 3)
	a, _ := rec.LastAlert()
	assert.Equal(t, ui.AlertRecord{Kind: ui.KindError, Message: MsgTaskDelFailed}, a)
}

package invitation

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
	list      []clinup.Invitation
	deleteErr error
	relaunch  []clinup.ID
}

func (f *fakeClient) Invitations(ctx context.Context) ([]clinup.Invitation, error) {
	return append([]clinup.Invitation(nil), f.list...), nil
}

func (f *fakeClient) Invite(ctx context.Context, inv clinup.NewInvitation) error {
	f.list = append(f.list, clinup.Invitation{ID: clinup.ID("n" + inv.Email), Nom: inv.Nom, Email: inv.Email, Etat: "en_attente"})
	return nil
}

func (f *fakeClient) RelaunchInvitation(ctx context.Context, id clinup.ID) error {
	f.relaunch = append(f.relaunch, id)
	return nil
}

func (f *fakeClient) DeleteInvitation(ctx context.Context, id clinup.ID) error {
	return f.deleteErr
}

func TestParseEtat(t *testing.T) {
	assert.Equal(t, EtatEnAttente, ParseEtat("en_attente"))
	assert.Equal(t, EtatEnAttente, ParseEtat("En attente"))
	assert.Equal(t, EtatAccepter, ParseEtat("accepter"))
	assert.Equal(t, EtatInconnu, ParseEtat("refuser"))
	assert.Equal(t, "Inconnu", ParseEtat("???").Label())
	assert.True(t, EtatEnAttente.Relaunchable())
	assert.False(t, EtatAccepter.Relaunchable())
}

func TestRemove(t *testing.T) {
	list := []clinup.Invitation{{ID: "1"}, {ID: "2"}, {ID: "3"}}
	got := Remove(list, "2")
	require.Len(t, got, 2)
	assert.Equal(t, clinup.ID("1"), got[0].ID)
	assert.Equal(t, clinup.ID("3"), got[1].ID)
	assert.Len(t, list, 3)
}

func TestScreen_DeleteOnlyAfterConfirm(t *testing.T) {
	fc := &fakeClient{list: []clinup.Invitation{{ID: "1"}, {ID: "2"}}}
	rec := &ui.Recorder{}
	s := NewScreen(fc, rec)
	require.NoError(t, s.Mount(context.Background()))

	fc.deleteErr = errors.New("boom")
	require.Error(t, s.Delete(context.Background(), "1"))
	assert.Len(t, s.Invitations(), 2)
	a, _ := rec.LastAlert()
	assert.Equal(t, MsgDeleteFailed, a.Message)

	fc.deleteErr = nil
	require.NoError(t, s.Delete(context.Background(), "1"))
	require.Len(t, s.Invitations(), 1)
	assert.Equal(t, clinup.ID("2"), s.Invitations()[0].ID)
}

func TestScreen_InviteRefreshes(t *testing.T) {
	fc := &fakeClient{}
	rec := &ui.Recorder{}
	s := NewScreen(fc, rec)
	require.NoError(t, s.Mount(context.Background()))

	require.NoError(t, s.Invite(context.Background(), clinup.NewInvitation{Nom: "Awa", Email: "awa@example.com"}))
	require.Len(t, s.Invitations(), 1)
	require.NoError(t, s.Relaunch(context.Background(), s.Invitations()[0].ID))
	assert.Len(t, fc.relaunch, 1)
}

package reservation

import (
	"context"
	"errors"
	"io"
	"os"
	"path/filepath"
	"strings"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"clinup/internal/ui"
	"clinup/pkg/clinup"
)

type fakeClient struct {
	res       Reservation
	detailErr error

	validateMsg string
	actionErr   error

	detailCalls  int
	validateHits int
	applyHits    int
	deletedImgs  []clinup.ID
	receipt      clinup.Document
}

func (f *fakeClient) Reservation(ctx context.Context, id clinup.ID) (clinup.Reservation, error) {
	f.detailCalls++
	return f.res, f.detailErr
}

func (f *fakeClient) ProviderReservation(ctx context.Context, id clinup.ID) (clinup.Reservation, error) {
	f.detailCalls++
	return f.res, f.detailErr
}

func (f *fakeClient) ValidateReservation(ctx context.Context, id clinup.ID) (string, error) {
	f.validateHits++
	if f.actionErr != nil {
		return "", f.actionErr
	}
	f.res.Statut = "payer"
	return f.validateMsg, nil
}

func (f *fakeClient) CancelPending(ctx context.Context, id clinup.ID) (string, error) {
	if f.actionErr != nil {
		return "", f.actionErr
	}
	f.res.Statut = "Annuler"
	return "Réservation annulée", nil
}

func (f *fakeClient) Apply(ctx context.Context, id clinup.ID, comment string) error {
	f.applyHits++
	return f.actionErr
}

func (f *fakeClient) ApplyInvitation(ctx context.Context, id clinup.ID, comment, availability string) error {
	f.applyHits++
	return f.actionErr
}

func (f *fakeClient) UploadVideo(ctx context.Context, id clinup.ID, filename string, r io.Reader) (clinup.Video, error) {
	return clinup.Video{FilePath: filename}, f.actionErr
}

func (f *fakeClient) UploadTaskImage(ctx context.Context, taskID clinup.ID, filename string, r io.Reader) (clinup.ImgTask, error) {
	return clinup.ImgTask{ID: "new"}, f.actionErr
}

func (f *fakeClient) DeleteTaskImage(ctx context.Context, imgID clinup.ID) error {
	if f.actionErr != nil {
		return f.actionErr
	}
	f.deletedImgs = append(f.deletedImgs, imgID)
	return nil
}

func (f *fakeClient) Receipt(ctx context.Context, id clinup.ID) (clinup.Document, error) {
	return f.receipt, f.actionErr
}

func mounted(t *testing.T, fc *fakeClient, role Role) (*Controller, *ui.Recorder) {
	t.Helper()
	rec := &ui.Recorder{}
	c := NewController(fc, role, fc.res.ID, rec, rec)
	require.NoError(t, c.Mount(context.Background()))
	return c, rec
}

func TestController_ApproveInvitationNavigates(t *testing.T) {
	fc := &fakeClient{res: Reservation{ID: "8", Statut: "confirmer", Intent: "invit"}}
	c, rec := mounted(t, fc, RoleHost)

	require.NoError(t, c.Approve(context.Background()))
	nav, ok := rec.LastNav()
	require.True(t, ok)
	assert.Equal(t, ui.ScreenPaymentInvit, nav.Screen)
	assert.Equal(t, ui.Params{"reservationId": "8"}, nav.Params)
	assert.Equal(t, 0, fc.validateHits)
}

func TestController_ApproveDirectValidates(t *testing.T) {
	fc := &fakeClient{res: Reservation{ID: "8", Statut: "confirmer"}, validateMsg: "Réservation validée"}
	c, rec := mounted(t, fc, RoleHost)

	require.NoError(t, c.Approve(context.Background()))
	assert.Equal(t, 1, fc.validateHits)
	assert.Empty(t, rec.Navs)
	a, _ := rec.LastAlert()
	assert.Equal(t, ui.AlertRecord{Kind: ui.KindSuccess, Message: "Réservation validée"}, a)
	// Re-fetched after success.
	assert.Equal(t, 2, fc.detailCalls)
	assert.Equal(t, StatusPayer, StatusOf(c.Current()))
}

func TestController_FailureLeavesStateUnchanged(t *testing.T) {
	fc := &fakeClient{res: Reservation{ID: "8", Statut: "en attente"}}
	c, rec := mounted(t, fc, RoleHost)

	fc.actionErr = &clinup.DomainError{Message: "Impossible d'annuler"}
	require.Error(t, c.Cancel(context.Background()))
	assert.Equal(t, StatusEnAttente, StatusOf(c.Current()))
	assert.Equal(t, 1, fc.detailCalls)
	a, _ := rec.LastAlert()
	assert.Equal(t, "Impossible d'annuler", a.Message)

	fc.actionErr = &clinup.DomainError{}
	require.Error(t, c.Cancel(context.Background()))
	a, _ = rec.LastAlert()
	assert.Equal(t, MsgGeneric, a.Message)

	fc.actionErr = errors.New("connection reset")
	require.Error(t, c.Cancel(context.Background()))
	a, _ = rec.LastAlert()
	assert.Equal(t, MsgCancelFailed, a.Message)

	fc.actionErr = clinup.ErrMissingToken
	require.Error(t, c.Cancel(context.Background()))
	a, _ = rec.LastAlert()
	assert.Equal(t, clinup.MissingTokenMessage, a.Message)
}

func TestController_RejectNavigatesToProfile(t *testing.T) {
	fc := &fakeClient{res: Reservation{ID: "8", Statut: "confirmer", Prestataire: &clinup.Person{ID: "31"}}}
	c, rec := mounted(t, fc, RoleHost)

	require.NoError(t, c.Reject(context.Background()))
	nav, _ := rec.LastNav()
	assert.Equal(t, ui.ScreenProfile, nav.Screen)
	assert.Equal(t, "31", nav.Params["id"])
	assert.Equal(t, StatusConfirmer, StatusOf(c.Current()))
}

func TestController_ChooseCandidate(t *testing.T) {
	fc := &fakeClient{res: Reservation{ID: "8", Statut: "en attente", Postulers: []clinup.Postuler{{ID: "31"}}}}
	c, rec := mounted(t, fc, RoleHost)

	require.ErrorIs(t, c.ChooseCandidate(context.Background(), "99"), ErrNotACandidate)
	require.NoError(t, c.ChooseCandidate(context.Background(), "31"))
	nav, _ := rec.LastNav()
	assert.Equal(t, ui.ScreenPayment, nav.Screen)
	assert.Equal(t, ui.Params{"reservationId": "8", "prestataireId": "31"}, nav.Params)
}

func TestController_ApplySetsHasApplied(t *testing.T) {
	fc := &fakeClient{res: Reservation{ID: "8", Statut: "en attente"}}
	c, rec := mounted(t, fc, RoleProvider)
	require.Contains(t, c.Allowed(), ActionApply)

	// The server now reports the application.
	fc.res.HasApplied = true
	require.NoError(t, c.Apply(context.Background(), "Je suis disponible"))
	assert.True(t, c.Current().HasApplied)
	assert.Empty(t, c.Allowed())
	a, _ := rec.LastAlert()
	assert.Equal(t, MsgApplied, a.Message)
}

func TestController_ApplyErrors(t *testing.T) {
	fc := &fakeClient{res: Reservation{ID: "8", Statut: "en attente"}}
	c, rec := mounted(t, fc, RoleProvider)

	fc.actionErr = &clinup.HTTPError{Status: 400, Body: []byte(`{"message":"Déjà postulé"}`)}
	require.Error(t, c.Apply(context.Background(), "x"))
	a, _ := rec.LastAlert()
	assert.Equal(t, "Déjà postulé", a.Message)
	assert.False(t, c.Current().HasApplied)

	fc.actionErr = &clinup.UnexpectedStatusError{Status: 200, Expected: 201}
	require.Error(t, c.Apply(context.Background(), "x"))
	a, _ = rec.LastAlert()
	assert.Equal(t, MsgUnexpected, a.Message)

	fc.actionErr = errors.New("eof")
	require.Error(t, c.Apply(context.Background(), "x"))
	a, _ = rec.LastAlert()
	assert.Equal(t, MsgApplyFailed, a.Message)
}

func TestController_ApplyInvitationNeedsAvailability(t *testing.T) {
	fc := &fakeClient{res: Reservation{ID: "8", Statut: "en attente", InvitExists: true}}
	c, rec := mounted(t, fc, RoleProvider)

	require.ErrorIs(t, c.ApplyInvitation(context.Background(), "ok", ""), ErrMissingAvailability)
	assert.Equal(t, 0, fc.applyHits)
	a, _ := rec.LastAlert()
	assert.Equal(t, MsgNoAvailability, a.Message)

	require.NoError(t, c.ApplyInvitation(context.Background(), "ok", clinup.AvailabilityAvailable))
	assert.Equal(t, 1, fc.applyHits)
}

func TestController_DeleteTaskImageOnlyAfterConfirm(t *testing.T) {
	fc := &fakeClient{res: Reservation{ID: "8", Statut: "confirmer", Tasks: []clinup.Task{
		{ID: "t1", ImgTasks: []clinup.ImgTask{{ID: "i1"}, {ID: "i2"}}},
	}}}
	c, _ := mounted(t, fc, RoleProvider)

	fc.actionErr = errors.New("500")
	require.Error(t, c.DeleteTaskImage(context.Background(), "i1"))
	assert.Len(t, c.Current().Tasks[0].ImgTasks, 2)

	fc.actionErr = nil
	require.NoError(t, c.DeleteTaskImage(context.Background(), "i1"))
	assert.Equal(t, []clinup.ImgTask{{ID: "i2"}}, c.Current().Tasks[0].ImgTasks)
}

func TestController_RefusesActionsNotOffered(t *testing.T) {
	ctx := context.Background()

	fc := &fakeClient{res: Reservation{ID: "8", Statut: "en attente", HasApplied: true}}
	c, rec := mounted(t, fc, RoleProvider)
	require.ErrorIs(t, c.Apply(ctx, "encore"), ErrNotAllowed)
	require.ErrorIs(t, c.UploadVideo(ctx, "fin.mp4", strings.NewReader("x")), ErrNotAllowed)
	assert.Equal(t, 0, fc.applyHits)
	a, _ := rec.LastAlert()
	assert.Equal(t, ui.AlertRecord{Kind: ui.KindError, Message: MsgNotAllowed}, a)

	fc = &fakeClient{res: Reservation{ID: "9", Statut: "payer"}}
	c, rec = mounted(t, fc, RoleHost)
	require.ErrorIs(t, c.Approve(ctx), ErrNotAllowed)
	require.ErrorIs(t, c.Validate(ctx), ErrNotAllowed)
	require.ErrorIs(t, c.Cancel(ctx), ErrNotAllowed)
	assert.Equal(t, 0, fc.validateHits)
	assert.Empty(t, rec.Navs)
	assert.Equal(t, StatusPayer, StatusOf(c.Current()))

	fc = &fakeClient{res: Reservation{ID: "10", Statut: "confirmer"}}
	c, _ = mounted(t, fc, RoleProvider)
	require.ErrorIs(t, c.ApplyInvitation(ctx, "", clinup.AvailabilityAvailable), ErrNotAllowed)
	_, err := c.Receipt(ctx)
	require.ErrorIs(t, err, ErrNotAllowed)
	assert.Equal(t, 0, fc.applyHits)
}

func TestController_ReceiptSaved(t *testing.T) {
	dir := t.TempDir()
	fc := &fakeClient{
		res:     Reservation{ID: "8", Statut: "payer"},
		receipt: clinup.Document{Name: "receipt_8.pdf", Data: []byte("%PDF")},
	}
	c, rec := mounted(t, fc, RoleHost)
	c.ReceiptDir = dir

	path, err := c.Receipt(context.Background())
	require.NoError(t, err)
	assert.Equal(t, filepath.Join(dir, "receipt_8.pdf"), path)
	b, err := os.ReadFile(path)
	require.NoError(t, err)
	assert.Equal(t, "%PDF", string(b))
	a, _ := rec.LastAlert()
	assert.True(t, strings.HasPrefix(a.Message, "PDF sauvegardé à: "))
}

func TestController_MountFailureAlerts(t *testing.T) {
	fc := &fakeClient{res: Reservation{ID: "8"}, detailErr: errors.New("down")}
	rec := &ui.Recorder{}
	c := NewController(fc, RoleHost, "8", rec, rec)

	require.Error(t, c.Mount(context.Background()))
	a, _ := rec.LastAlert()
	assert.Equal(t, MsgLoadFailed, a.Message)
}

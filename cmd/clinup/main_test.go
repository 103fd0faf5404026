package main

import (
	"bytes"
	"context"
	"log/slog"
	"net/http/httptest"
	"os"
	"path/filepath"
	"strings"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"golang.org/x/crypto/bcrypt"

	"clinup/internal/reservation"
	"clinup/internal/stubapi"
	"clinup/internal/ui"
	"clinup/pkg/clinup"
	"clinup/pkg/config"
)

func newTestApp(t *testing.T) (*app, *bytes.Buffer, stubapi.SeedData) {
	t.Helper()
	cfg := config.Config{AppEnv: "test"}
	cfg.Stub.JWTSecret = "test-secret"
	cfg.Stub.TokenTTL = time.Hour
	cfg.API.ReceiptDir = t.TempDir()

	store := stubapi.NewMemory()
	seed, err := stubapi.Seed(context.Background(), store, bcrypt.MinCost)
	require.NoError(t, err)
	srv := httptest.NewServer(stubapi.NewRouter(stubapi.Dependencies{Cfg: cfg, Store: store, BcryptCost: bcrypt.MinCost}))
	t.Cleanup(srv.Close)

	var out bytes.Buffer
	logger := slog.New(slog.NewTextHandler(&out, &slog.HandlerOptions{Level: slog.LevelError}))
	session := clinup.NewSession(&clinup.MemoryTokenStore{})
	client := clinup.New(srv.URL, session)
	client.Logger = logger
	return &app{
		cfg:     cfg,
		client:  client,
		session: session,
		console: ui.Console{Out: &out},
		logger:  logger,
		in:      strings.NewReader(""),
		out:     &out,
	}, &out, seed
}

func TestLoginRoutesByRole(t *testing.T) {
	a, out, _ := newTestApp(t)
	ctx := context.Background()

	require.NoError(t, runLogin(ctx, a, []string{"-email", stubapi.SeedProviderEmail, "-password", stubapi.SeedPassword}))
	assert.Contains(t, out.String(), "-> "+string(ui.ScreenReservationsPresta))

	out.Reset()
	require.NoError(t, runList(ctx, a, nil))
	assert.Contains(t, out.String(), "Studio Belleville")
	assert.Contains(t, out.String(), "postuler")

	require.NoError(t, runLogout(ctx, a, nil))
	assert.ErrorIs(t, runList(ctx, a, nil), clinup.ErrMissingToken)
}

func TestChoosePayValidateReceipt(t *testing.T) {
	a, out, seed := newTestApp(t)
	ctx := context.Background()
	id := string(seed.Open)

	require.NoError(t, runLogin(ctx, a, []string{"-email", stubapi.SeedHostEmail, "-password", stubapi.SeedPassword}))

	out.Reset()
	require.NoError(t, runShow(ctx, a, []string{id}))
	assert.Contains(t, out.String(), "Lucas Bernard")

	require.NoError(t, runChoose(ctx, a, []string{"-provider", string(seed.Other.ID), "-yes", id}))
	assert.Contains(t, out.String(), "-> "+string(ui.ScreenDetailsReservationHote)+" reservationId="+id)

	require.NoError(t, runApprove(ctx, a, []string{id}))
	require.NoError(t, runReceipt(ctx, a, []string{id}))

	b, err := os.ReadFile(filepath.Join(a.cfg.API.ReceiptDir, "receipt_"+id+".pdf"))
	require.NoError(t, err)
	assert.True(t, bytes.HasPrefix(b, []byte("%PDF-")))
}

func TestCancelPaidIsRefused(t *testing.T) {
	a, out, seed := newTestApp(t)
	ctx := context.Background()
	require.NoError(t, runLogin(ctx, a, []string{"-email", stubapi.SeedHostEmail, "-password", stubapi.SeedPassword}))

	err := runCancel(ctx, a, []string{string(seed.Paid)})
	require.Error(t, err)
	assert.Contains(t, out.String(), "["+string(ui.KindError)+"]")
}

func TestInvitationsCommand(t *testing.T) {
	a, out, _ := newTestApp(t)
	ctx := context.Background()
	require.NoError(t, runLogin(ctx, a, []string{"-email", stubapi.SeedHostEmail, "-password", stubapi.SeedPassword}))

	out.Reset()
	require.NoError(t, runInvitations(ctx, a, []string{"add", "-nom", "Nina", "-email", "nina@clinup.test"}))
	assert.Contains(t, out.String(), "nina@clinup.test")
	assert.Contains(t, out.String(), "DEMO2026")

	assert.Error(t, runInvitations(ctx, a, []string{"purge"}))
}

func TestStripeReturnRejectsForeignLinks(t *testing.T) {
	a, _, _ := newTestApp(t)
	err := runStripe(context.Background(), a, []string{"return", "https://example.com/api/stripe/status?status=success"})
	assert.Error(t, err)
}

func TestLogementDeleteTask(t *testing.T) {
	a, out, seed := newTestApp(t)
	ctx := context.Background()
	require.NoError(t, runLogin(ctx, a, []string{"-email", stubapi.SeedHostEmail, "-password", stubapi.SeedPassword}))

	out.Reset()
	require.NoError(t, runLogement(ctx, a, []string{"-delete-task", string(seed.Tasks[1].ID), string(seed.Logement.ID)}))
	got := out.String()
	assert.Contains(t, got, "Studio Belleville")
	assert.Contains(t, got, seed.Tasks[0].Titre)
	assert.Contains(t, got, seed.Tasks[2].Titre)
	assert.NotContains(t, got, seed.Tasks[1].Titre)

	assert.Error(t, runLogement(ctx, a, []string{"-delete-task", string(seed.Tasks[1].ID), string(seed.Logement.ID)}))
}

func TestApplyTwiceIsRefusedLocally(t *testing.T) {
	a, out, seed := newTestApp(t)
	ctx := context.Background()
	require.NoError(t, runLogin(ctx, a, []string{"-email", stubapi.SeedProviderEmail, "-password", stubapi.SeedPassword}))

	require.NoError(t, runApply(ctx, a, []string{string(seed.Fresh)}))
	out.Reset()
	err := runApply(ctx, a, []string{string(seed.Fresh)})
	require.ErrorIs(t, err, reservation.ErrNotAllowed)
	assert.Contains(t, out.String(), reservation.MsgNotAllowed)
}

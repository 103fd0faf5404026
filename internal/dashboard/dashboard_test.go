package dashboard

import (
	"context"
	"errors"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"clinup/internal/ui"
	"clinup/pkg/clinup"
)

type fakeClient struct {
	seen     []clinup.DashboardFilter
	exported []clinup.DashboardFilter
	err      error
}

func (f *fakeClient) HostDashboard(ctx context.Context, filter clinup.DashboardFilter) (clinup.HostDashboard, error) {
	f.seen = append(f.seen, filter)
	if f.err != nil {
		return clinup.HostDashboard{}, f.err
	}
	return clinup.HostDashboard{Logements: []clinup.DashboardLogement{{ID: filter.LogementID, Nom: "Studio"}}}, nil
}

func (f *fakeClient) ExportHostDashboard(ctx context.Context, filter clinup.DashboardFilter, format string, now time.Time) (clinup.Document, error) {
	f.exported = append(f.exported, filter)
	return clinup.Document{Name: "export_" + now.Format("2006-01-02") + "." + format}, nil
}

func TestScreen_RefetchesOnlyOnFilterChange(t *testing.T) {
	fc := &fakeClient{}
	s := NewScreen(fc, &ui.Recorder{})
	ctx := context.Background()

	june := clinup.DashboardFilter{LogementID: "4", StartDate: "2026-06-01", EndDate: "2026-06-30"}
	require.NoError(t, s.SetFilter(ctx, june))
	require.NoError(t, s.SetFilter(ctx, june))
	assert.Len(t, fc.seen, 1)

	july := june
	july.StartDate, july.EndDate = "2026-07-01", "2026-07-31"
	require.NoError(t, s.SetFilter(ctx, july))
	assert.Equal(t, []clinup.DashboardFilter{june, july}, fc.seen)
	assert.Equal(t, clinup.ID("4"), s.Dashboard().Logements[0].ID)
}

func TestScreen_ExportUsesFilter(t *testing.T) {
	fc := &fakeClient{}
	s := NewScreen(fc, &ui.Recorder{})
	s.Now = func() time.Time { return time.Date(2026, 10, 19, 0, 0, 0, 0, time.UTC) }
	f := clinup.DashboardFilter{LogementID: "4"}
	require.NoError(t, s.SetFilter(context.Background(), f))

	doc, err := s.Export(context.Background(), "xlsx")
	require.NoError(t, err)
	assert.Equal(t, "export_2026-10-19.xlsx", doc.Name)
	assert.Equal(t, []clinup.DashboardFilter{f}, fc.exported)

	_, err = s.Export(context.Background(), "docx")
	assert.ErrorIs(t, err, ErrFormat)
}

func TestScreen_LoadFailureAlerts(t *testing.T) {
	fc := &fakeClient{err: errors.New("down")}
	rec := &ui.Recorder{}
	s := NewScreen(fc, rec)

	require.Error(t, s.SetFilter(context.Background(), clinup.DashboardFilter{}))
	a, _ := rec.LastAlert()
	assert.Equal(t, ui.AlertRecord{Kind: ui.KindError, Message: MsgLoadFailed}, a)
}

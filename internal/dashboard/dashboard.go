package dashboard

import (
	"context"
	"errors"
	"slices"
	"sync"
	"time"

	"clinup/internal/fetch"
	"clinup/internal/ui"
	"clinup/pkg/clinup"
)

const (
	MsgLoadFailed   = "Erreur lors du chargement du tableau de bord."
	MsgExportFailed = "Erreur lors de l'export."
)

var ExportFormats = []string{"csv", "xlsx", "pdf"}

var ErrFormat = errors.New("unsupported export format")

type Client interface {
	HostDashboard(ctx context.Context, f clinup.DashboardFilter) (clinup.HostDashboard, error)
	ExportHostDashboard(ctx context.Context, f clinup.DashboardFilter, format string, now time.Time) (clinup.Document, error)
}

// Screen is the host dashboard. It re-fetches whenever the filter changes.
type Screen struct {
	Client Client
	Alerts ui.Alerter
	Now    func() time.Time

	mu     sync.Mutex
	filter clinup.DashboardFilter
	data   *fetch.Loader[clinup.HostDashboard]
}

func NewScreen(c Client, alerts ui.Alerter) *Screen {
	s := &Screen{Client: c, Alerts: alerts, Now: time.Now}
	s.data = fetch.New(func(ctx context.Context) (clinup.HostDashboard, error) {
		return s.Client.HostDashboard(ctx, s.Filter())
	})
	return s
}

func (s *Screen) Filter() clinup.DashboardFilter {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.filter
}

// SetFilter applies f. Setting the filter already shown does not hit the backend.
func (s *Screen) SetFilter(ctx context.Context, f clinup.DashboardFilter) error {
	s.mu.Lock()
	s.filter = f
	s.mu.Unlock()
	if err := s.data.Deps(ctx, f.LogementID, f.StartDate, f.EndDate); err != nil {
		s.Alerts.Alert(ui.KindError, clinup.UserMessage(err, MsgLoadFailed))
		return err
	}
	return nil
}

func (s *Screen) Dashboard() clinup.HostDashboard { return s.data.Value() }

// Export downloads the dashboard under the current filter.
func (s *Screen) Export(ctx context.Context, format string) (clinup.Document, error) {
	if !slices.Contains(ExportFormats, format) {
		return clinup.Document{}, ErrFormat
	}
	doc, err := s.Client.ExportHostDashboard(ctx, s.Filter(), format, s.Now())
	if err != nil {
		s.Alerts.Alert(ui.KindError, clinup.UserMessage(err, MsgExportFailed))
		return clinup.Document{}, err
	}
	return doc, nil
}

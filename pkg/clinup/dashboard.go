package clinup

import (
	"context"
	"net/http"
	"net/url"
	"time"
)

func (f DashboardFilter) query() url.Values {
	q := url.Values{}
	if f.LogementID != "" {
		q.Set("logementId", string(f.LogementID))
	}
	if f.StartDate != "" {
		q.Set("startDate", f.StartDate)
	}
	if f.EndDate != "" {
		q.Set("endDate", f.EndDate)
	}
	return q
}

func (c Client) HostDashboard(ctx context.Context, f DashboardFilter) (HostDashboard, error) {
	var out HostDashboard
	_, err := c.doJSONCall(ctx, call{method: http.MethodGet, path: "/api/dashboard/hote", query: f.query()}, nil, &out)
	return out, err
}

// ExportHostDashboard downloads the filtered dashboard in the given format (csv, xlsx, pdf).
func (c Client) ExportHostDashboard(ctx context.Context, f DashboardFilter, format string, now time.Time) (Document, error) {
	q := f.query()
	q.Set("format", format)
	b, ct, err := c.doBlob(ctx, call{path: "/api/dashboard/hote", query: q})
	if err != nil {
		return Document{}, err
	}
	return Document{Name: "export_" + now.Format("2006-01-02") + "." + format, ContentType: ct, Data: b}, nil
}

func (c Client) ProviderDashboard(ctx context.Context) (ProviderDashboard, error) {
	var out ProviderDashboard
	_, err := c.doJSON(ctx, http.MethodGet, "/api/dashboard/prestataire", nil, &out)
	return out, err
}

func (c Client) ProviderEarningsCSV(ctx context.Context) (Document, error) {
	b, ct, err := c.doBlob(ctx, call{path: "/api/dashboard/prestataire/download-csv"})
	if err != nil {
		return Document{}, err
	}
	if ct == "" {
		ct = "text/csv"
	}
	return Document{Name: "revenus_mensuels.csv", ContentType: ct, Data: b}, nil
}

package clinup

import (
	"context"
	"net/http"
)

func (c Client) Availabilities(ctx context.Context) ([]Disponibilite, error) {
	var out []Disponibilite
	_, err := c.doJSON(ctx, http.MethodGet, "/api/disponibilites", nil, &out)
	return out, err
}

func (c Client) UpdateAvailability(ctx context.Context, id ID, start, end string) error {
	_, err := c.doJSON(ctx, http.MethodPut, idPath("/api/disponibilites/%s", id), map[string]string{"start": start, "end": end}, nil)
	return err
}

func (c Client) DeleteAvailability(ctx context.Context, id ID) error {
	_, err := c.doJSON(ctx, http.MethodDelete, idPath("/api/disponibilites/%s", id), nil, nil)
	return err
}

package clinup

import (
	"context"
	"fmt"
	"net/http"
	"os"
	"path/filepath"
)

// ListReservations returns the host's reservations, pending calendar imports and applicant counts.
func (c Client) ListReservations(ctx context.Context) (ReservationLists, error) {
	var out ReservationLists
	_, err := c.doJSON(ctx, http.MethodGet, "/api/reservation/listes", nil, &out)
	return out, err
}

func (c Client) Reservation(ctx context.Context, id ID) (Reservation, error) {
	var r Reservation
	_, err := c.doJSON(ctx, http.MethodGet, idPath("/api/reservation/%s/details", id), nil, &r)
	return r, err
}

// ValidateReservation asks the server to confirm a reservation. The returned string is the
// server's success message.
func (c Client) ValidateReservation(ctx context.Context, id ID) (string, error) {
	return c.doAction(ctx, http.MethodPost, idPath("/api/reservation/%s/valider", id), struct{}{})
}

// CancelPending cancels a reservation that is still waiting for a provider.
func (c Client) CancelPending(ctx context.Context, id ID) (string, error) {
	return c.doAction(ctx, http.MethodPost, idPath("/api/reservation/%s/annuler-en-attente", id), struct{}{})
}

func (c Client) AddReservation(ctx context.Context, r NewReservation) error {
	if r.Date == "" || r.Heure == "" || r.NbrHeure <= 0 || !r.Prix.IsPositive() || r.LogementID == "" {
		return fmt.Errorf("date, heure, nbrHeure, prix and logement are required")
	}
	_, err := c.doJSON(ctx, http.MethodPost, "/api/reservation/ajouter", r, nil)
	return err
}

func (c Client) IcalReservation(ctx context.Context, id ID) (IcalReservation, error) {
	var r IcalReservation
	_, err := c.doJSON(ctx, http.MethodGet, idPath("/api/reservation/%s/getIcal", id), nil, &r)
	return r, err
}

func (c Client) EditIcal(ctx context.Context, id ID, edit IcalEdit) error {
	if edit.NbrHeure <= 0 || !edit.Prix.IsPositive() {
		return fmt.Errorf("nbrHeure and prix are required")
	}
	_, err := c.doJSON(ctx, http.MethodPost, idPath("/api/reservation/%s/editIcal", id), edit, nil)
	return err
}

// PublishIcal turns a calendar import into a regular reservation open to providers.
func (c Client) PublishIcal(ctx context.Context, id ID) (string, error) {
	return c.doAction(ctx, http.MethodPost, idPath("/api/reservation/%s/publier", id), struct{}{})
}

type Document struct {
	Name        string
	ContentType string
	Data        []byte
}

// Save writes the document into dir under its own name and returns the full path.
func (d Document) Save(dir string) (string, error) {
	if d.Name == "" || d.Name != filepath.Base(d.Name) {
		return "", fmt.Errorf("invalid document name %q", d.Name)
	}
	if err := os.MkdirAll(dir, 0o755); err != nil {
		return "", err
	}
	p := filepath.Join(dir, d.Name)
	if err := os.WriteFile(p, d.Data, 0o644); err != nil {
		return "", err
	}
	return p, nil
}

// Receipt downloads the PDF receipt of a paid reservation.
func (c Client) Receipt(ctx context.Context, id ID) (Document, error) {
	b, ct, err := c.doBlob(ctx, call{path: idPath("/generate-receipt/%s", id), public: true})
	if err != nil {
		return Document{}, err
	}
	if ct == "" {
		ct = "application/pdf"
	}
	return Document{Name: "receipt_" + string(id) + ".pdf", ContentType: ct, Data: b}, nil
}

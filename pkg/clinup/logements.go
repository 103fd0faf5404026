package clinup

import (
	"context"
	"fmt"
	"io"
	"net/http"
	"path/filepath"
	"strconv"
	"strings"
)

// Property is a host's logement as listed on the logements screen.
type Property struct {
	ID             ID     `json:"id"`
	Nom            string `json:"nom"`
	Surface        string `json:"surface,omitempty"`
	NbrChambre     int    `json:"nbrChambre,omitempty"`
	NbrBain        int    `json:"nbrBain,omitempty"`
	Adresse        string `json:"adresse,omitempty"`
	CompletAdresse string `json:"completAdresse,omitempty"`
	Airbnb         string `json:"airbnb,omitempty"`
	Booking        string `json:"booking,omitempty"`
	Acces          string `json:"acces,omitempty"`
	Description    string `json:"description,omitempty"`
	Img            string `json:"img,omitempty"`
}

type PropertyDetails struct {
	Logement Property `json:"logement"`
	Tasks    []Task   `json:"tasks"`
}

// NewProperty is the multipart form of /api/logements/new. Airbnb and Booking are iCal feed urls.
type NewProperty struct {
	Nom            string
	Surface        string
	NbrChambre     int
	NbrBain        int
	Adresse        string
	CompletAdresse string
	Airbnb         string
	Booking        string
	Acces          string
	Description    string

	ImageName string
	Image     io.Reader
}

type NewTask struct {
	Titre       string
	Detail      string
	Description string

	ImageName string
	Image     io.Reader
}

func (c Client) Properties(ctx context.Context) ([]Property, error) {
	var out []Property
	_, err := c.doJSON(ctx, http.MethodGet, "/api/logements", nil, &out)
	return out, err
}

// PropertyChoices is the short list used by the add-reservation form.
func (c Client) PropertyChoices(ctx context.Context) ([]Property, error) {
	var out []Property
	_, err := c.doJSON(ctx, http.MethodGet, "/api/logement/get", nil, &out)
	return out, err
}

func (c Client) PropertyDetails(ctx context.Context, id ID) (PropertyDetails, error) {
	var out PropertyDetails
	_, err := c.doJSON(ctx, http.MethodGet, idPath("/api/logements/%s/details", id), nil, &out)
	return out, err
}

func (c Client) AddProperty(ctx context.Context, p NewProperty) error {
	if strings.TrimSpace(p.Nom) == "" || strings.TrimSpace(p.Adresse) == "" {
		return fmt.Errorf("nom and adresse are required")
	}
	fields := map[string]string{
		"nom":            p.Nom,
		"surface":        p.Surface,
		"nbrChambre":     strconv.Itoa(p.NbrChambre),
		"nbrBain":        strconv.Itoa(p.NbrBain),
		"adresse":        p.Adresse,
		"completAdresse": p.CompletAdresse,
		"airbnb":         p.Airbnb,
		"booking":        p.Booking,
		"acces":          p.Acces,
		"description":    p.Description,
	}
	var files []Upload
	if p.Image != nil {
		files = append(files, Upload{Field: "img", Filename: filepath.Base(p.ImageName), ContentType: ImageContentType(p.ImageName), Reader: p.Image})
	}
	_, err := c.doMultipart(ctx, "/api/logements/new", fields, files, nil)
	return err
}

func (c Client) AddTask(ctx context.Context, logementID ID, t NewTask) error {
	if strings.TrimSpace(t.Titre) == "" {
		return fmt.Errorf("titre is required")
	}
	fields := map[string]string{"titre": t.Titre, "detail": t.Detail, "description": t.Description}
	var files []Upload
	if t.Image != nil {
		files = append(files, Upload{Field: "img", Filename: filepath.Base(t.ImageName), ContentType: ImageContentType(t.ImageName), Reader: t.Image})
	}
	_, err := c.doMultipart(ctx, idPath("/api/tache/%s/ajouter", logementID), fields, files, nil)
	return err
}

func (c Client) DeleteTask(ctx context.Context, taskID ID) error {
	_, err := c.doJSON(ctx, http.MethodDelete, idPath("/api/tache/%s/delete", taskID), nil, nil)
	return err
}

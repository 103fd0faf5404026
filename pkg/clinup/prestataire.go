package clinup

import (
	"context"
	"fmt"
	"io"
	"net/http"
	"path/filepath"
	"strings"
	"time"
)

const AvailabilityAvailable = "available"

// ProviderReservations lists the reservations visible to the signed-in provider.
func (c Client) ProviderReservations(ctx context.Context) ([]Reservation, error) {
	var out struct {
		Reservations []Reservation `json:"reservations"`
	}
	_, err := c.doJSON(ctx, http.MethodGet, "/api/prestataire/reservations", nil, &out)
	return out.Reservations, err
}

func (c Client) ProviderReservation(ctx context.Context, id ID) (Reservation, error) {
	var r Reservation
	_, err := c.doJSON(ctx, http.MethodGet, idPath("/api/prestataire/%s/reservation", id), nil, &r)
	return r, err
}

// Apply submits the provider's application. The server answers 201 Created.
func (c Client) Apply(ctx context.Context, id ID, comment string) error {
	path := idPath("/api/prestataire/%s/postuler", id)
	status, err := c.doJSON(ctx, http.MethodPost, path, map[string]string{"comment": comment}, nil)
	if err != nil {
		return err
	}
	if status != http.StatusCreated {
		return &UnexpectedStatusError{Path: path, Status: status, Expected: http.StatusCreated}
	}
	return nil
}

// ApplyInvitation answers an invitation-originated reservation.
func (c Client) ApplyInvitation(ctx context.Context, id ID, comment, availability string) error {
	if availability == "" {
		return fmt.Errorf("availability is required")
	}
	body := map[string]string{"comment": comment, "availability": availability}
	_, err := c.doJSON(ctx, http.MethodPost, idPath("/api/prestataire/%s/postuler/invit", id), body, nil)
	return err
}

// UploadVideo attaches the completion video. The response carries the stored file name.
func (c Client) UploadVideo(ctx context.Context, id ID, filename string, r io.Reader) (Video, error) {
	ext := strings.TrimPrefix(strings.ToLower(filepath.Ext(filename)), ".")
	if ext == "" {
		ext = "mp4"
	}
	up := Upload{
		Field:       "filePath",
		Filename:    fmt.Sprintf("video-%d.%s", time.Now().UnixMilli(), ext),
		ContentType: VideoContentType(filename),
		Reader:      r,
	}
	var v Video
	path := idPath("/api/prestataire/%s/video", id)
	status, err := c.doMultipart(ctx, path, nil, []Upload{up}, &v)
	if err != nil {
		return Video{}, err
	}
	if status != http.StatusOK {
		return Video{}, &UnexpectedStatusError{Path: path, Status: status, Expected: http.StatusOK}
	}
	return v, nil
}

// UploadTaskImage adds one evidence image to a task. The server answers 201 Created.
func (c Client) UploadTaskImage(ctx context.Context, taskID ID, filename string, r io.Reader) (ImgTask, error) {
	up := Upload{Field: "filePath", Filename: filepath.Base(filename), ContentType: ImageContentType(filename), Reader: r}
	var img ImgTask
	path := idPath("/api/prestataire/task/%s/image", taskID)
	status, err := c.doMultipart(ctx, path, nil, []Upload{up}, &img)
	if err != nil {
		return ImgTask{}, err
	}
	if status != http.StatusCreated {
		return ImgTask{}, &UnexpectedStatusError{Path: path, Status: status, Expected: http.StatusCreated}
	}
	return img, nil
}

func (c Client) DeleteTaskImage(ctx context.Context, imgID ID) error {
	_, err := c.doJSON(ctx, http.MethodDelete, idPath("/api/prestataire/image/%s/delete", imgID), nil, nil)
	return err
}

// ProviderProfile is what a host sees before choosing a candidate for a reservation.
func (c Client) ProviderProfile(ctx context.Context, providerID, reservationID ID) (ProviderProfile, error) {
	var p ProviderProfile
	_, err := c.doJSON(ctx, http.MethodGet, idPath("/api/prestaProfile/%s/%s/profile", providerID, reservationID), nil, &p)
	return p, err
}

func VideoContentType(filename string) string {
	if strings.EqualFold(filepath.Ext(filename), ".mov") {
		return "video/quicktime"
	}
	return "video/mp4"
}

func ImageContentType(filename string) string {
	switch strings.ToLower(filepath.Ext(filename)) {
	case ".png":
		return "image/png"
	case ".webp":
		return "image/webp"
	case ".heic":
		return "image/heic"
	default:
		return "image/jpeg"
	}
}

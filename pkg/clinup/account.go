package clinup

import (
	"context"
	"errors"
	"io"
	"net/http"
	"path/filepath"
)

var ErrPasswordMismatch = errors.New("new password and confirmation do not match")

func (c Client) Profile(ctx context.Context) (Profile, error) {
	var p Profile
	_, err := c.doJSON(ctx, http.MethodGet, "/api/profile", nil, &p)
	return p, err
}

func (c Client) UpdateProfile(ctx context.Context, p Profile) error {
	_, err := c.doJSON(ctx, http.MethodPut, "/api/profile", p, nil)
	return err
}

// ChangePassword checks the confirmation locally before calling the server.
func (c Client) ChangePassword(ctx context.Context, oldPassword, newPassword, confirm string) error {
	if newPassword != confirm {
		return ErrPasswordMismatch
	}
	body := map[string]string{"oldPassword": oldPassword, "newPassword": newPassword}
	_, err := c.doJSON(ctx, http.MethodPost, "/api/change-password", body, nil)
	return err
}

func (c Client) Experiences(ctx context.Context) ([]Experience, error) {
	var out []Experience
	_, err := c.doJSON(ctx, http.MethodGet, "/api/experiences", nil, &out)
	return out, err
}

func (c Client) AddExperience(ctx context.Context, e Experience) error {
	_, err := c.doJSON(ctx, http.MethodPost, "/api/experiences", e, nil)
	return err
}

// UploadProof uploads a provider's PDF proof document (justificatif).
func (c Client) UploadProof(ctx context.Context, filename string, r io.Reader) error {
	up := Upload{Field: "filePath", Filename: filepath.Base(filename), ContentType: "application/pdf", Reader: r}
	_, err := c.doMultipart(ctx, "/api/justificatif/upload", nil, []Upload{up}, nil)
	return err
}

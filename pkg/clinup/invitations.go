package clinup

import (
	"context"
	"fmt"
	"net/http"
	"strings"
)

func (c Client) Invitations(ctx context.Context) ([]Invitation, error) {
	var out []Invitation
	_, err := c.doJSON(ctx, http.MethodGet, "/api/invit/all", nil, &out)
	return out, err
}

func (c Client) Invite(ctx context.Context, inv NewInvitation) error {
	if strings.TrimSpace(inv.Nom) == "" || strings.TrimSpace(inv.Email) == "" {
		return fmt.Errorf("nom and email are required")
	}
	_, err := c.doJSON(ctx, http.MethodPost, "/api/invit/ajouter", inv, nil)
	return err
}

// RelaunchInvitation sends the invitation email again.
func (c Client) RelaunchInvitation(ctx context.Context, id ID) error {
	_, err := c.doJSON(ctx, http.MethodPost, idPath("/api/invit/%s/relance", id), struct{}{}, nil)
	return err
}

func (c Client) DeleteInvitation(ctx context.Context, id ID) error {
	_, err := c.doJSON(ctx, http.MethodDelete, idPath("/api/invit/%s/supprimer", id), nil, nil)
	return err
}

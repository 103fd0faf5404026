package ui

import (
	"errors"
	"slices"

	"clinup/pkg/clinup"
)

const UnknownRoleMessage = "Rôle non reconnu."

var ErrUnknownRole = errors.New("unknown role")

// Home picks the landing screen after login. Host wins when a user holds both roles.
func Home(roles []string) (Screen, error) {
	switch {
	case slices.Contains(roles, clinup.RoleHost):
		return ScreenReservationsHote, nil
	case slices.Contains(roles, clinup.RoleProvider):
		return ScreenReservationsPresta, nil
	default:
		return ScreenLogin, ErrUnknownRole
	}
}

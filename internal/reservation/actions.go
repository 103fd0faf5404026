package reservation

import (
	"slices"

	"clinup/internal/ui"
	"clinup/pkg/clinup"
)

type Role int

const (
	RoleNone Role = iota
	RoleHost
	RoleProvider
)

// RoleFrom maps the backend role strings to a Role. Host wins when both are present.
func RoleFrom(roles []string) Role {
	switch {
	case slices.Contains(roles, clinup.RoleHost):
		return RoleHost
	case slices.Contains(roles, clinup.RoleProvider):
		return RoleProvider
	default:
		return RoleNone
	}
}

type Action string

const (
	ActionApply           Action = "postuler"
	ActionApplyInvitation Action = "postuler-invit"
	ActionCancel          Action = "annuler"
	ActionChooseCandidate Action = "choisir"
	ActionUploadVideo     Action = "video"
	ActionConfirmTasks    Action = "images"
	ActionApprove         Action = "approuver"
	ActionReject          Action = "refuser"
	ActionReceipt         Action = "recu"
)

const IntentInvitation = "invit"

func IsInvitation(r Reservation) bool {
	return r.Intent == IntentInvitation
}

// Allowed lists what the role may do with the reservation right now.
func Allowed(role Role, r Reservation) []Action {
	st := StatusOf(r)
	switch role {
	case RoleHost:
		switch st {
		case StatusEnAttente:
			acts := []Action{ActionCancel}
			if len(r.Postulers) > 0 {
				acts = append(acts, ActionChooseCandidate)
			}
			return acts
		case StatusConfirmer:
			return []Action{ActionApprove, ActionReject}
		case StatusPayer:
			return []Action{ActionReceipt}
		}
	case RoleProvider:
		switch st {
		case StatusEnAttente:
			if r.HasApplied {
				return nil
			}
			if r.InvitExists {
				return []Action{ActionApplyInvitation}
			}
			return []Action{ActionApply}
		case StatusConfirmer:
			return []Action{ActionUploadVideo, ActionConfirmTasks}
		}
	}
	return nil
}

func Can(role Role, r Reservation, a Action) bool {
	return slices.Contains(Allowed(role, r), a)
}

// Outcome is what the client expects after an action succeeds. Status is the status the
// server should report on the next fetch. Screen is set when the action hands over to
// another screen instead of calling the backend directly.
type Outcome struct {
	Status Status
	Screen ui.Screen
	Params ui.Params
}

func (o Outcome) Navigates() bool { return o.Screen != "" }

// Expect returns the outcome of action on r. It does not check Allowed.
func Expect(a Action, r Reservation) Outcome {
	current := StatusOf(r)
	id := string(r.ID)
	switch a {
	case ActionApply, ActionApplyInvitation:
		return Outcome{Status: StatusEnAttente}
	case ActionCancel:
		return Outcome{Status: StatusAnnuler}
	case ActionChooseCandidate:
		return Outcome{Status: StatusConfirmer, Screen: ui.ScreenPayment, Params: ui.Params{"reservationId": id}}
	case ActionUploadVideo, ActionConfirmTasks:
		return Outcome{Status: StatusConfirmer}
	case ActionApprove:
		if IsInvitation(r) {
			return Outcome{Status: StatusPayer, Screen: ui.ScreenPaymentInvit, Params: ui.Params{"reservationId": id}}
		}
		return Outcome{Status: StatusPayer}
	case ActionReject:
		out := Outcome{Status: current, Screen: ui.ScreenProfile}
		if r.Prestataire != nil {
			out.Params = ui.Params{"id": string(r.Prestataire.ID)}
		}
		return out
	case ActionReceipt:
		return Outcome{Status: StatusPayer}
	}
	return Outcome{Status: current}
}

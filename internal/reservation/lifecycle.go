package reservation

import (
	"context"
	"errors"
	"fmt"
	"io"
	"log/slog"

	"clinup/internal/fetch"
	"clinup/internal/ui"
	"clinup/pkg/clinup"
)

const (
	MsgGeneric         = "Une erreur est survenue"
	MsgValidateFailed  = "Une erreur est survenue lors de la validation de la réservation"
	MsgCancelFailed    = "Une erreur est survenue lors de l'annulation"
	MsgApplied         = "Votre candidature a été envoyée avec succès !"
	MsgApplyFailed     = "Une erreur s'est produite lors de la postulation."
	MsgUnexpected      = "Une réponse inattendue a été reçue."
	MsgInvitApplied    = "Votre réponse à l'invitation a été envoyée avec succès !"
	MsgInvitFailed     = "Une erreur s'est produite lors de la réponse à l'invitation."
	MsgNoAvailability  = "Veuillez sélectionner votre disponibilité."
	MsgVideoUploaded   = "Vidéo ajoutée avec succès"
	MsgVideoFailed     = "Erreur lors de l'ajout de la vidéo"
	MsgImageAdded      = "Image ajoutée avec succès"
	MsgImageFailed     = "Erreur lors de l'ajout de l'image"
	MsgImageDeleted    = "Image supprimée avec succès!"
	MsgImageDelFailed  = "Erreur lors de la suppression de l'image"
	MsgReceiptFailed   = "Impossible de générer le PDF"
	MsgLoadFailed      = "Erreur lors du chargement des données."
	MsgNotACandidate   = "Cet agent n'a pas postulé à cette réservation."
	MsgNoProviderFound = "Aucun agent assigné à cette réservation."
	MsgNotAllowed      = "Cette action n'est pas disponible pour cette réservation."
)

var (
	ErrMissingAvailability = errors.New("availability not selected")
	ErrNotACandidate       = errors.New("provider did not apply to this reservation")
	ErrNoProvider          = errors.New("reservation has no provider")
	ErrNotAllowed          = errors.New("action not allowed in the current status")
)

// Client is the part of clinup.Client the controller drives.
type Client interface {
	Reservation(ctx context.Context, id clinup.ID) (clinup.Reservation, error)
	ProviderReservation(ctx context.Context, id clinup.ID) (clinup.Reservation, error)
	ValidateReservation(ctx context.Context, id clinup.ID) (string, error)
	CancelPending(ctx context.Context, id clinup.ID) (string, error)
	Apply(ctx context.Context, id clinup.ID, comment string) error
	ApplyInvitation(ctx context.Context, id clinup.ID, comment, availability string) error
	UploadVideo(ctx context.Context, id clinup.ID, filename string, r io.Reader) (clinup.Video, error)
	UploadTaskImage(ctx context.Context, taskID clinup.ID, filename string, r io.Reader) (clinup.ImgTask, error)
	DeleteTaskImage(ctx context.Context, imgID clinup.ID) error
	Receipt(ctx context.Context, id clinup.ID) (clinup.Document, error)
}

// Controller is the detail screen of one reservation, for one role. Every action is a single
// request; on success the details are fetched again so only server-confirmed state is shown.
// Actions missing from Allowed are refused with ErrNotAllowed without contacting the server.
type Controller struct {
	Client     Client
	Role       Role
	ID         clinup.ID
	Alerts     ui.Alerter
	Nav        ui.Navigator
	ReceiptDir string
	Logger     *slog.Logger

	details *fetch.Loader[Reservation]
}

func NewController(c Client, role Role, id clinup.ID, alerts ui.Alerter, nav ui.Navigator) *Controller {
	ctl := &Controller{Client: c, Role: role, ID: id, Alerts: alerts, Nav: nav}
	ctl.details = fetch.New(func(ctx context.Context) (Reservation, error) {
		if ctl.Role == RoleProvider {
			return ctl.Client.ProviderReservation(ctx, ctl.ID)
		}
		return ctl.Client.Reservation(ctx, ctl.ID)
	})
	return ctl
}

func (c *Controller) Mount(ctx context.Context) error {
	return c.alertLoad(c.details.Mount(ctx))
}

func (c *Controller) Focus(ctx context.Context) error {
	return c.alertLoad(c.details.Focus(ctx))
}

func (c *Controller) Current() Reservation { return c.details.Value() }

func (c *Controller) View() View { return Present(c.Role, c.Current()) }

func (c *Controller) Allowed() []Action { return Allowed(c.Role, c.Current()) }

// Validate is the host's direct approval.
func (c *Controller) Validate(ctx context.Context) error {
	if err := c.guard(ActionApprove); err != nil {
		return err
	}
	msg, err := c.Client.ValidateReservation(ctx, c.ID)
	if err != nil {
		return c.fail("validate", err, MsgValidateFailed)
	}
	c.Alerts.Alert(ui.KindSuccess, msg)
	return c.refresh(ctx)
}

func (c *Controller) Cancel(ctx context.Context) error {
	if err := c.guard(ActionCancel); err != nil {
		return err
	}
	msg, err := c.Client.CancelPending(ctx, c.ID)
	if err != nil {
		return c.fail("cancel", err, MsgCancelFailed)
	}
	c.Alerts.Alert(ui.KindSuccess, msg)
	return c.refresh(ctx)
}

// Approve routes on intent: invitation bookings go through the invitation payment screen,
// others are validated directly.
func (c *Controller) Approve(ctx context.Context) error {
	if err := c.guard(ActionApprove); err != nil {
		return err
	}
	r := c.Current()
	out := Expect(ActionApprove, r)
	if out.Navigates() {
		c.Nav.Navigate(out.Screen, out.Params)
		return nil
	}
	return c.Validate(ctx)
}

// Reject ("not satisfied") sends the host to the provider's profile. Status is unchanged.
func (c *Controller) Reject(ctx context.Context) error {
	if err := c.guard(ActionReject); err != nil {
		return err
	}
	r := c.Current()
	if r.Prestataire == nil {
		c.Alerts.Alert(ui.KindError, MsgNoProviderFound)
		return ErrNoProvider
	}
	out := Expect(ActionReject, r)
	c.Nav.Navigate(out.Screen, out.Params)
	return nil
}

// ChooseCandidate opens the payment screen for one of the applicants.
func (c *Controller) ChooseCandidate(ctx context.Context, providerID clinup.ID) error {
	if err := c.guard(ActionChooseCandidate); err != nil {
		return err
	}
	r := c.Current()
	found := false
	for _, p := range r.Postulers {
		if p.ID == providerID {
			found = true
			break
		}
	}
	if !found {
		c.Alerts.Alert(ui.KindError, MsgNotACandidate)
		return ErrNotACandidate
	}
	out := Expect(ActionChooseCandidate, r)
	params := ui.Params{"prestataireId": string(providerID)}
	for k, v := range out.Params {
		params[k] = v
	}
	c.Nav.Navigate(out.Screen, params)
	return nil
}

func (c *Controller) Apply(ctx context.Context, comment string) error {
	if err := c.guard(ActionApply); err != nil {
		return err
	}
	if err := c.Client.Apply(ctx, c.ID, comment); err != nil {
		var ue *clinup.UnexpectedStatusError
		if errors.As(err, &ue) {
			c.logger().Warn("apply: unexpected response", "reservation_id", string(c.ID), "status", ue.Status)
			c.Alerts.Alert(ui.KindError, MsgUnexpected)
			return err
		}
		c.logger().Warn("apply failed", "reservation_id", string(c.ID), "err", err)
		c.Alerts.Alert(ui.KindError, clinup.ServerMessage(err, MsgApplyFailed))
		return err
	}
	c.Alerts.Alert(ui.KindSuccess, MsgApplied)
	c.markApplied()
	return c.refresh(ctx)
}

func (c *Controller) ApplyInvitation(ctx context.Context, comment, availability string) error {
	if err := c.guard(ActionApplyInvitation); err != nil {
		return err
	}
	if availability == "" {
		c.Alerts.Alert(ui.KindError, MsgNoAvailability)
		return ErrMissingAvailability
	}
	if err := c.Client.ApplyInvitation(ctx, c.ID, comment, availability); err != nil {
		return c.fail("apply invitation", err, MsgInvitFailed)
	}
	c.Alerts.Alert(ui.KindSuccess, MsgInvitApplied)
	c.markApplied()
	return c.refresh(ctx)
}

func (c *Controller) UploadVideo(ctx context.Context, filename string, r io.Reader) error {
	if err := c.guard(ActionUploadVideo); err != nil {
		return err
	}
	if _, err := c.Client.UploadVideo(ctx, c.ID, filename, r); err != nil {
		return c.fail("upload video", err, MsgVideoFailed)
	}
	c.Alerts.Alert(ui.KindSuccess, MsgVideoUploaded)
	return c.refresh(ctx)
}

func (c *Controller) UploadTaskImage(ctx context.Context, taskID clinup.ID, filename string, r io.Reader) error {
	if err := c.guard(ActionConfirmTasks); err != nil {
		return err
	}
	if _, err := c.Client.UploadTaskImage(ctx, taskID, filename, r); err != nil {
		return c.fail("upload task image", err, MsgImageFailed)
	}
	c.Alerts.Alert(ui.KindSuccess, MsgImageAdded)
	return c.refresh(ctx)
}

// DeleteTaskImage removes the image locally only once the server confirmed the delete.
func (c *Controller) DeleteTaskImage(ctx context.Context, imgID clinup.ID) error {
	if err := c.guard(ActionConfirmTasks); err != nil {
		return err
	}
	if err := c.Client.DeleteTaskImage(ctx, imgID); err != nil {
		return c.fail("delete task image", err, MsgImageDelFailed)
	}
	c.Alerts.Alert(ui.KindSuccess, MsgImageDeleted)
	c.details.Update(func(r Reservation) Reservation {
		r.Tasks = RemoveTaskImage(r.Tasks, imgID)
		return r
	})
	return nil
}

// Receipt downloads the PDF and saves it into ReceiptDir. It returns the saved path.
func (c *Controller) Receipt(ctx context.Context) (string, error) {
	if err := c.guard(ActionReceipt); err != nil {
		return "", err
	}
	doc, err := c.Client.Receipt(ctx, c.ID)
	if err != nil {
		return "", c.fail("receipt", err, MsgReceiptFailed)
	}
	dir := c.ReceiptDir
	if dir == "" {
		dir = "."
	}
	path, err := doc.Save(dir)
	if err != nil {
		return "", c.fail("receipt", err, MsgReceiptFailed)
	}
	c.Alerts.Alert(ui.KindSuccess, fmt.Sprintf("PDF sauvegardé à: %s", path))
	return path, nil
}

// guard refuses an action the current state does not offer before any request goes out.
func (c *Controller) guard(a Action) error {
	if Can(c.Role, c.Current(), a) {
		return nil
	}
	c.logger().Info("reservation action not allowed", "action", string(a), "reservation_id", string(c.ID), "status", StatusOf(c.Current()).String())
	c.Alerts.Alert(ui.KindError, MsgNotAllowed)
	return fmt.Errorf("%w: %s", ErrNotAllowed, a)
}

func (c *Controller) markApplied() {
	c.details.Update(func(r Reservation) Reservation {
		r.HasApplied = true
		return r
	})
}

func (c *Controller) refresh(ctx context.Context) error {
	return c.alertLoad(c.details.Refresh(ctx))
}

func (c *Controller) alertLoad(err error) error {
	if err != nil {
		c.Alerts.Alert(ui.KindError, clinup.UserMessage(err, MsgLoadFailed))
	}
	return err
}

// fail reports a failed action. A DomainError without text gets the short generic message,
// matching what the server-side {success:false} branch shows.
func (c *Controller) fail(action string, err error, fallback string) error {
	c.logger().Warn("reservation action failed", "action", action, "reservation_id", string(c.ID), "err", err)
	if de := clinup.IsDomainError(err); de != nil && de.Message == "" {
		c.Alerts.Alert(ui.KindError, MsgGeneric)
		return err
	}
	c.Alerts.Alert(ui.KindError, clinup.UserMessage(err, fallback))
	return err
}

func (c *Controller) logger() *slog.Logger {
	if c.Logger == nil {
		return slog.Default()
	}
	return c.Logger
}

package clinup

import (
	"context"
	"fmt"
	"io"
	"net/http"
	"path/filepath"
)

type OutgoingMessage struct {
	ConversationID ID     `json:"conversation_id"`
	RecipientID    ID     `json:"recipient_id"`
	Content        string `json:"content,omitempty"`
}

// NewComment is a host's review of a provider after a reservation.
type NewComment struct {
	Evaluation     int    `json:"evaluation"`
	Recommandation string `json:"recommandation"`
	Comment        string `json:"comment"`
}

func (c Client) Conversations(ctx context.Context) ([]Conversation, error) {
	var out []Conversation
	_, err := c.doJSON(ctx, http.MethodGet, "/api/conversations", nil, &out)
	return out, err
}

func (c Client) Conversation(ctx context.Context, id ID) (ConversationDetail, error) {
	var out ConversationDetail
	_, err := c.doJSON(ctx, http.MethodGet, idPath("/api/conversations/%s/messages", id), nil, &out)
	return out, err
}

func (c Client) SendMessage(ctx context.Context, m OutgoingMessage) error {
	if m.Content == "" {
		return fmt.Errorf("empty message")
	}
	_, err := c.doJSON(ctx, http.MethodPost, "/api/conversations/messages/send", m, nil)
	return err
}

// SendImage posts a picture into a conversation as a multipart message.
func (c Client) SendImage(ctx context.Context, m OutgoingMessage, filename string, r io.Reader) error {
	fields := map[string]string{
		"conversation_id": string(m.ConversationID),
		"recipient_id":    string(m.RecipientID),
	}
	up := Upload{Field: "image", Filename: filepath.Base(filename), ContentType: ImageContentType(filename), Reader: r}
	_, err := c.doMultipart(ctx, "/api/conversations/messages/send", fields, []Upload{up}, nil)
	return err
}

func (c Client) Notifications(ctx context.Context) ([]Notification, error) {
	var out []Notification
	_, err := c.doJSON(ctx, http.MethodGet, "/api/notifs", nil, &out)
	return out, err
}

// Evaluations returns the comments left on the signed-in provider.
func (c Client) Evaluations(ctx context.Context) ([]Comment, error) {
	var out []Comment
	_, err := c.doJSON(ctx, http.MethodGet, "/api/evaluation", nil, &out)
	return out, err
}

func (c Client) RespondToEvaluation(ctx context.Context, commentID ID, response string) error {
	_, err := c.doJSON(ctx, http.MethodPost, idPath("/api/evaluation/%s/response", commentID), map[string]string{"response": response}, nil)
	return err
}

func (c Client) AddComment(ctx context.Context, providerID, reservationID ID, nc NewComment) error {
	if nc.Evaluation < 1 || nc.Evaluation > 5 {
		return fmt.Errorf("evaluation must be between 1 and 5")
	}
	path := idPath("/api/comment/%s/%s/new", providerID, reservationID)
	status, err := c.doJSON(ctx, http.MethodPost, path, nc, nil)
	if err != nil {
		return err
	}
	if status != http.StatusCreated {
		return &UnexpectedStatusError{Path: path, Status: status, Expected: http.StatusCreated}
	}
	return nil
}

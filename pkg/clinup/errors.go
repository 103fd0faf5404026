package clinup

import (
	"encoding/json"
	"errors"
	"fmt"
	"strings"
)

// ErrMissingToken is returned before any request is sent when the session holds no token.
var ErrMissingToken = errors.New("missing bearer token")

const MissingTokenMessage = "Token non trouvé"

// HTTPError is a non-2xx response.
type HTTPError struct {
	Method string
	Path   string
	Status int
	Body   []byte
}

func (e *HTTPError) Error() string {
	if len(e.Body) > 0 {
		return fmt.Sprintf("clinup api error: %s %s status=%d body=%s", e.Method, e.Path, e.Status, truncate(string(e.Body), 512))
	}
	return fmt.Sprintf("clinup api error: %s %s status=%d", e.Method, e.Path, e.Status)
}

// ServerMessage digs a human readable message out of the response body, if any.
// It understands {"message": ...}, {"error": "..."} and {"error": {"message": ...}}.
func (e *HTTPError) ServerMessage() string {
	return messageFromBody(e.Body)
}

// DomainError is a 2xx response whose payload says the action failed,
// e.g. {"success": false, "error": "..."}.
type DomainError struct {
	Message string
}

func (e *DomainError) Error() string {
	if e.Message == "" {
		return "clinup: action rejected by server"
	}
	return "clinup: " + e.Message
}

// UnexpectedStatusError is a 2xx response other than the one the endpoint promises
// (e.g. 200 where 201 Created is expected).
type UnexpectedStatusError struct {
	Path     string
	Status   int
	Expected int
}

func (e *UnexpectedStatusError) Error() string {
	return fmt.Sprintf("clinup: %s answered status=%d, expected %d", e.Path, e.Status, e.Expected)
}

func IsHTTPError(err error) *HTTPError {
	var he *HTTPError
	if errors.As(err, &he) {
		return he
	}
	return nil
}

func IsDomainError(err error) *DomainError {
	var de *DomainError
	if errors.As(err, &de) {
		return de
	}
	return nil
}

// UserMessage maps an error to the text shown in the alert for a failed action.
// Server-provided domain messages win; everything else falls back to the generic text.
func UserMessage(err error, fallback string) string {
	if err == nil {
		return ""
	}
	if errors.Is(err, ErrMissingToken) {
		return MissingTokenMessage
	}
	if de := IsDomainError(err); de != nil && strings.TrimSpace(de.Message) != "" {
		return de.Message
	}
	return fallback
}

// ServerMessage is like UserMessage but also trusts the body of non-2xx responses.
func ServerMessage(err error, fallback string) string {
	if he := IsHTTPError(err); he != nil {
		if m := he.ServerMessage(); m != "" {
			return m
		}
	}
	return UserMessage(err, fallback)
}

func messageFromBody(b []byte) string {
	if len(b) == 0 {
		return ""
	}
	var payload struct {
		Message string          `json:"message"`
		Error   json.RawMessage `json:"error"`
	}
	if err := json.Unmarshal(b, &payload); err != nil {
		return ""
	}
	if payload.Message != "" {
		return payload.Message
	}
	if len(payload.Error) == 0 {
		return ""
	}
	var s string
	if err := json.Unmarshal(payload.Error, &s); err == nil {
		return s
	}
	var env struct {
		Message string `json:"message"`
	}
	if err := json.Unmarshal(payload.Error, &env); err == nil {
		return env.Message
	}
	return ""
}

func truncate(s string, n int) string {
	if len(s) <= n {
		return s
	}
	return s[:n] + "..."
}

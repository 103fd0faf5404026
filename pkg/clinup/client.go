package clinup

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"io"
	"log/slog"
	"mime/multipart"
	"net/http"
	"net/textproto"
	"net/url"
	"strings"
	"time"
)

const defaultTimeout = 20 * time.Second

// Client talks to the booking backend. Each call is a single request: no retry,
// no deduplication, no cancellation beyond the caller's context.
type Client struct {
	HTTPClient *http.Client
	BaseURL    string
	Session    *Session
	Logger     *slog.Logger
}

func New(baseURL string, session *Session) Client {
	return Client{
		HTTPClient: &http.Client{Timeout: defaultTimeout},
		BaseURL:    strings.TrimRight(baseURL, "/"),
		Session:    session,
		Logger:     slog.Default(),
	}
}

// Upload is one file part of a multipart request.
type Upload struct {
	Field       string
	Filename    string
	ContentType string
	Reader      io.Reader
}

type call struct {
	method      string
	path        string
	query       url.Values
	body        io.Reader
	contentType string
	public      bool
}

func (c Client) logger() *slog.Logger {
	if c.Logger == nil {
		return slog.Default()
	}
	return c.Logger
}

func (c Client) send(ctx context.Context, cl call) (int, []byte, http.Header, error) {
	if c.HTTPClient == nil {
		c.HTTPClient = &http.Client{Timeout: defaultTimeout}
	}
	if c.BaseURL == "" {
		return 0, nil, nil, fmt.Errorf("missing api base url")
	}

	u := strings.TrimRight(c.BaseURL, "/") + cl.path
	if len(cl.query) > 0 {
		u += "?" + cl.query.Encode()
	}
	req, err := http.NewRequestWithContext(ctx, cl.method, u, cl.body)
	if err != nil {
		return 0, nil, nil, err
	}
	if cl.contentType != "" {
		req.Header.Set("Content-Type", cl.contentType)
	}
	req.Header.Set("Accept", "application/json")

	// The only place the bearer token is attached.
	if !cl.public {
		if c.Session == nil {
			return 0, nil, nil, ErrMissingToken
		}
		token, err := c.Session.Token()
		if err != nil {
			return 0, nil, nil, err
		}
		req.Header.Set("Authorization", "Bearer "+token)
	}

	start := time.Now()
	resp, err := c.HTTPClient.Do(req)
	if err != nil {
		c.logger().Warn("clinup request failed", "method", cl.method, "path", cl.path, "err", err)
		return 0, nil, nil, err
	}
	defer resp.Body.Close()

	b, readErr := io.ReadAll(resp.Body)
	c.logger().Debug("clinup request", "method", cl.method, "path", cl.path, "status", resp.StatusCode, "elapsed", time.Since(start))
	if readErr != nil {
		return resp.StatusCode, nil, resp.Header, readErr
	}

	if resp.StatusCode < 200 || resp.StatusCode >= 300 {
		c.logger().Warn("clinup api error", "method", cl.method, "path", cl.path, "status", resp.StatusCode)
		return resp.StatusCode, b, resp.Header, &HTTPError{Method: cl.method, Path: cl.path, Status: resp.StatusCode, Body: b}
	}
	return resp.StatusCode, b, resp.Header, nil
}

func (c Client) doJSON(ctx context.Context, method, path string, reqBody any, respBody any) (int, error) {
	return c.doJSONCall(ctx, call{method: method, path: path}, reqBody, respBody)
}

func (c Client) doJSONCall(ctx context.Context, cl call, reqBody any, respBody any) (int, error) {
	if reqBody != nil {
		var buf bytes.Buffer
		if err := json.NewEncoder(&buf).Encode(reqBody); err != nil {
			return 0, err
		}
		cl.body = &buf
		cl.contentType = "application/json"
	}

	status, b, _, err := c.send(ctx, cl)
	if err != nil {
		return status, err
	}
	if err := domainFailure(b); err != nil {
		return status, err
	}
	if respBody != nil && len(b) > 0 {
		if err := json.Unmarshal(b, respBody); err != nil {
			return status, fmt.Errorf("decode %s %s response failed: %w body=%s", cl.method, cl.path, err, truncate(string(b), 512))
		}
	}
	return status, nil
}

type actionResult struct {
	Success json.RawMessage `json:"success"`
	Error   string          `json:"error"`
	Message string          `json:"message"`
}

// doAction is for endpoints answering {success: "<message>"} or {success: false, error: "..."}.
// It returns the success message; an absent or empty success is a DomainError.
func (c Client) doAction(ctx context.Context, method, path string, reqBody any) (string, error) {
	var res actionResult
	if _, err := c.doJSON(ctx, method, path, reqBody, &res); err != nil {
		return "", err
	}
	raw := bytes.TrimSpace(res.Success)
	switch {
	case len(raw) == 0, bytes.Equal(raw, []byte("null")), bytes.Equal(raw, []byte(`""`)):
		return "", &DomainError{Message: firstNonEmpty(res.Error, res.Message)}
	case bytes.Equal(raw, []byte("true")):
		return res.Message, nil
	}
	var msg string
	if err := json.Unmarshal(raw, &msg); err != nil {
		return "", &DomainError{Message: firstNonEmpty(res.Error, res.Message)}
	}
	return msg, nil
}

func (c Client) doMultipart(ctx context.Context, path string, fields map[string]string, files []Upload, respBody any) (int, error) {
	var buf bytes.Buffer
	mw := multipart.NewWriter(&buf)
	for k, v := range fields {
		if err := mw.WriteField(k, v); err != nil {
			return 0, err
		}
	}
	for _, f := range files {
		h := make(textproto.MIMEHeader)
		h.Set("Content-Disposition", fmt.Sprintf(`form-data; name=%q; filename=%q`, f.Field, f.Filename))
		ct := f.ContentType
		if ct == "" {
			ct = "application/octet-stream"
		}
		h.Set("Content-Type", ct)
		part, err := mw.CreatePart(h)
		if err != nil {
			return 0, err
		}
		if _, err := io.Copy(part, f.Reader); err != nil {
			return 0, err
		}
	}
	if err := mw.Close(); err != nil {
		return 0, err
	}

	status, b, _, err := c.send(ctx, call{
		method:      http.MethodPost,
		path:        path,
		body:        &buf,
		contentType: mw.FormDataContentType(),
	})
	if err != nil {
		return status, err
	}
	if err := domainFailure(b); err != nil {
		return status, err
	}
	if respBody != nil && len(b) > 0 {
		if err := json.Unmarshal(b, respBody); err != nil {
			return status, fmt.Errorf("decode upload %s response failed: %w", path, err)
		}
	}
	return status, nil
}

// doBlob fetches a binary document (PDF receipt, CSV export).
func (c Client) doBlob(ctx context.Context, cl call) ([]byte, string, error) {
	if cl.method == "" {
		cl.method = http.MethodGet
	}
	_, b, h, err := c.send(ctx, cl)
	if err != nil {
		return nil, "", err
	}
	return b, h.Get("Content-Type"), nil
}

// domainFailure spots {"success": false, ...} inside an otherwise successful response.
func domainFailure(b []byte) error {
	trimmed := bytes.TrimSpace(b)
	if len(trimmed) == 0 || trimmed[0] != '{' {
		return nil
	}
	var res actionResult
	if err := json.Unmarshal(trimmed, &res); err != nil {
		return nil
	}
	if bytes.Equal(bytes.TrimSpace(res.Success), []byte("false")) {
		return &DomainError{Message: firstNonEmpty(res.Error, res.Message)}
	}
	return nil
}

func firstNonEmpty(vals ...string) string {
	for _, v := range vals {
		if strings.TrimSpace(v) != "" {
			return v
		}
	}
	return ""
}

func idPath(format string, ids ...ID) string {
	args := make([]any, len(ids))
	for i, id := range ids {
		args[i] = url.PathEscape(string(id))
	}
	return fmt.Sprintf(format, args...)
}

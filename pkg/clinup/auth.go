package clinup

import (
	"context"
	"fmt"
	"net/http"
	"strings"
)

type LoginResponse struct {
	Success bool     `json:"success"`
	Token   string   `json:"token"`
	Roles   []string `json:"roles"`
}

type Registration struct {
	Firstname string `json:"firstname"`
	Lastname  string `json:"lastname"`
	Code      string `json:"code,omitempty"`
	Email     string `json:"email"`
	Password  string `json:"password"`
	Role      string `json:"role"`
}

func (r Registration) Validate() error {
	if strings.TrimSpace(r.Firstname) == "" || strings.TrimSpace(r.Lastname) == "" ||
		strings.TrimSpace(r.Email) == "" || r.Password == "" || r.Role == "" {
		return fmt.Errorf("firstname, lastname, email, password and role are required")
	}
	return nil
}

type User struct {
	ID        ID       `json:"id"`
	Email     string   `json:"email"`
	Firstname string   `json:"firstname,omitempty"`
	Lastname  string   `json:"lastname,omitempty"`
	Roles     []string `json:"roles,omitempty"`
}

// Login exchanges credentials for a bearer token and stores it in the client's session.
func (c Client) Login(ctx context.Context, email, password string) (LoginResponse, error) {
	var resp LoginResponse
	_, err := c.doJSONCall(ctx, call{method: http.MethodPost, path: "/api/login", public: true},
		map[string]string{"email": email, "password": password}, &resp)
	if err != nil {
		return LoginResponse{}, err
	}
	if !resp.Success || resp.Token == "" {
		return resp, &DomainError{}
	}
	if c.Session != nil {
		if err := c.Session.SignIn(resp.Token, resp.Roles); err != nil {
			return resp, fmt.Errorf("store token: %w", err)
		}
	}
	return resp, nil
}

func (c Client) Register(ctx context.Context, r Registration) error {
	if err := r.Validate(); err != nil {
		return err
	}
	var resp struct {
		Error string `json:"error"`
	}
	if _, err := c.doJSONCall(ctx, call{method: http.MethodPost, path: "/api/register", public: true}, r, &resp); err != nil {
		return err
	}
	if resp.Error != "" {
		return &DomainError{Message: resp.Error}
	}
	return nil
}

func (c Client) CurrentUser(ctx context.Context) (User, error) {
	var u User
	_, err := c.doJSON(ctx, http.MethodGet, "/api/user", nil, &u)
	return u, err
}

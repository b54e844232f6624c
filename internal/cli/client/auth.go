package client

import (
	"context"
	"fmt"
	"net/http"

	"github.com/terra-dev/terra/internal/cli/gate"
)

// AuthStatus asks the server whether the session credentials are valid and
// at which tier
func (c *Client) AuthStatus(ctx context.Context) (gate.Status, error) {
	resp, err := c.send(ctx, "auth status", http.MethodGet, "/auth/status", nil, http.StatusOK)
	if err != nil {
		return gate.Unauthorized, err
	}

	var status gate.Status
	if err := decode(resp, &status); err != nil {
		return gate.Unauthorized, err
	}

	return status, nil
}

type loginRequest struct {
	User string `json:"user"`
	Otac string `json:"otac"`
}

// Login exchanges a one-time access code for a session token
func (c *Client) Login(ctx context.Context, user, otac string) (string, error) {
	resp, err := c.send(ctx, "login", http.MethodPost, "/auth/login", loginRequest{User: user, Otac: otac}, http.StatusOK)
	if err != nil {
		return "", err
	}
	defer discard(resp)

	for _, cookie := range resp.Cookies() {
		if cookie.Name == SessionCookieName && cookie.Value != "" {
			return cookie.Value, nil
		}
	}

	return "", fmt.Errorf("login response did not set the %s cookie", SessionCookieName)
}

// Logout revokes the current session on the server
func (c *Client) Logout(ctx context.Context) error {
	resp, err := c.send(ctx, "logout", http.MethodPost, "/auth/logout", nil, http.StatusOK)
	if err != nil {
		return err
	}
	discard(resp)
	return nil
}

type otacRequest struct {
	User string `json:"user"`
}

type otacResponse struct {
	Otac string `json:"otac"`
}

// RequestOTAC issues a one-time access code for user. Needs server tier.
func (c *Client) RequestOTAC(ctx context.Context, user string) (string, error) {
	resp, err := c.send(ctx, "request access code", http.MethodPost, "/auth/otac", otacRequest{User: user}, http.StatusOK)
	if err != nil {
		return "", err
	}

	var out otacResponse
	if err := decode(resp, &out); err != nil {
		return "", err
	}

	return out.Otac, nil
}

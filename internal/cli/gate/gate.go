// Package gate decides whether the current session may enter a restricted
// part of the client. Every decision is a single status request; any failure
// to retrieve the status is treated as not logged in.
package gate

import (
	"context"

	"github.com/rs/zerolog"

	"github.com/terra-dev/terra/internal/auth"
)

// ViewName identifies a view the client can navigate to
type ViewName string

// LoginView is where unauthorized sessions are sent
const LoginView ViewName = "LoginPage"

// Source retrieves the session status from the server
type Source interface {
	AuthStatus(ctx context.Context) (Status, error)
}

// SourceFunc adapts a function to Source
type SourceFunc func(ctx context.Context) (Status, error)

func (f SourceFunc) AuthStatus(ctx context.Context) (Status, error) {
	return f(ctx)
}

// Navigator moves the client to another view
type Navigator interface {
	Navigate(ctx context.Context, view ViewName) error
}

// Handler receives the outcome of a check
type Handler interface {
	OnAuthorized(status Status)
	OnUnauthorized(status Status)
}

// HandlerFuncs adapts a pair of functions to Handler. Nil fields do nothing.
type HandlerFuncs struct {
	Authorized   func(Status)
	Unauthorized func(Status)
}

func (h HandlerFuncs) OnAuthorized(status Status) {
	if h.Authorized != nil {
		h.Authorized(status)
	}
}

func (h HandlerFuncs) OnUnauthorized(status Status) {
	if h.Unauthorized != nil {
		h.Unauthorized(status)
	}
}

// Gate runs authorization checks against a status source
type Gate struct {
	source Source
	logger zerolog.Logger
}

// New creates a gate reading session status from source
func New(source Source, logger zerolog.Logger) *Gate {
	return &Gate{
		source: source,
		logger: logger,
	}
}

// Fetch performs one status request and reports its outcome
func (g *Gate) Fetch(ctx context.Context) Result {
	status, err := g.source.AuthStatus(ctx)
	if err != nil {
		return Result{Status: Unauthorized, Err: err}
	}
	return Result{Status: status}
}

// FetchAuthStatus returns the current session status. It never fails: any
// retrieval error is logged and reported as Unauthorized.
func (g *Gate) FetchAuthStatus(ctx context.Context) Status {
	result := g.Fetch(ctx)
	if !result.Ok() {
		g.logger.Warn().Err(result.Err).Msg("Failed to fetch auth status")
	}
	return result.Collapse()
}

// Check fetches the session status and calls onSuccess when it grants the
// required tier, onFailure otherwise. Exactly one of them runs; nil
// continuations do nothing.
func (g *Gate) Check(ctx context.Context, required auth.Tier, onSuccess, onFailure func(Status)) {
	g.CheckHandler(ctx, required, HandlerFuncs{Authorized: onSuccess, Unauthorized: onFailure})
}

// CheckHandler is Check with both continuations supplied by one Handler
func (g *Gate) CheckHandler(ctx context.Context, required auth.Tier, h Handler) {
	status := g.FetchAuthStatus(ctx)
	if status.Authorized(required) {
		h.OnAuthorized(status)
		return
	}
	h.OnUnauthorized(status)
}

// Guard sends the client to the login view when the session does not hold
// the required tier.
func (g *Gate) Guard(ctx context.Context, nav Navigator, required auth.Tier) {
	g.Check(ctx, required, nil, func(status Status) {
		g.logger.Info().
			Bool("auth", status.Auth).
			Str("tier", status.Tier.String()).
			Str("required", required.String()).
			Msg("Not logged in, redirecting")

		if err := nav.Navigate(ctx, LoginView); err != nil {
			g.logger.Error().Err(err).Msg("Failed to open login view")
		}
	})
}

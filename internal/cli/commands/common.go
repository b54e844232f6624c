package commands

import (
	"context"
	"errors"
	"fmt"
	"io"
	"os"

	"github.com/rs/zerolog/log"
	"golang.org/x/term"

	"github.com/terra-dev/terra/internal/cli/auth"
	"github.com/terra-dev/terra/internal/cli/client"
	"github.com/terra-dev/terra/internal/cli/config"
	"github.com/terra-dev/terra/internal/cli/gate"
	"github.com/terra-dev/terra/internal/cli/serverselect"
	"github.com/terra-dev/terra/internal/cli/views"
)

// ErrLoginRequired is returned when a command was redirected to the login view
var ErrLoginRequired = errors.New("not logged in with sufficient access. Run 'terra login' first")

// Globals holds state shared by every command
type Globals struct {
	// ServerAlias selects a server by alias or URL instead of the saved selection
	ServerAlias string
	Verbose     bool
	Tokens      auth.TokenStore
	// Interactive reports whether prompts may be shown
	Interactive func() bool
}

// NewGlobals returns globals backed by the OS keyring and the real terminal
func NewGlobals() *Globals {
	return &Globals{
		Tokens: auth.Default,
		Interactive: func() bool {
			return term.IsTerminal(int(os.Stdin.Fd()))
		},
	}
}

func (g *Globals) interactive() bool {
	return g.Interactive != nil && g.Interactive()
}

// session is a connection to the selected server
type session struct {
	globals *Globals
	server  *config.Server
	client  *client.Client
	gate    *gate.Gate
	out     io.Writer

	login          loginInput
	loginAttempted bool
	loggedIn       bool
}

// connect loads terra.json, resolves the server and restores the stored session token
func (g *Globals) connect(out io.Writer) (*session, error) {
	cfg, err := config.LoadFromCurrentDir()
	if err != nil {
		return nil, fmt.Errorf("failed to load config: %w\nRun 'terra init' to create a configuration file", err)
	}

	server, err := serverselect.ResolveServer(cfg, g.ServerAlias)
	if err != nil {
		return nil, err
	}

	if server.URL == "" {
		return nil, fmt.Errorf("server URL is empty. Please edit %s and add a valid URL", config.ConfigFileName)
	}

	var creds client.Credentials
	token, err := g.Tokens.LoadToken(server.URL)
	switch {
	case err == nil:
		creds.SessionToken = token
	case errors.Is(err, auth.ErrNotLoggedIn):
	default:
		log.Warn().Err(err).Msg("Failed to load session token")
	}

	apiClient := client.New(server.URL, server.Insecure, creds)
	apiClient.SetLogger(log.Logger)

	return &session{
		globals: g,
		server:  server,
		client:  apiClient,
		gate:    gate.New(apiClient, log.Logger),
		out:     out,
	}, nil
}

// router builds the view router for this session
func (s *session) router(tensionDir string) *views.Router {
	r := views.NewRouter()
	pages := &views.Pages{
		Gate:       s.gate,
		Data:       s.client,
		Out:        s.out,
		TensionDir: tensionDir,
	}
	pages.Register(r)
	r.Register(views.LoginPage, s.loginPage)
	return r
}

// show navigates to name. A redirect to the login view that ends in a
// successful login returns to name once; otherwise it is ErrLoginRequired.
func (s *session) show(ctx context.Context, r *views.Router, name views.Name) error {
	if err := r.Navigate(ctx, name); err != nil {
		return err
	}
	if name == views.LoginPage || r.Current() != views.LoginPage {
		return nil
	}

	if !s.loggedIn {
		return ErrLoginRequired
	}
	if err := r.Navigate(ctx, name); err != nil {
		return err
	}
	if r.Current() != name {
		return ErrLoginRequired
	}
	return nil
}

// bearerClient returns a client authenticating with the server test key
func (s *session) bearerClient(key string) (*client.Client, error) {
	if key == "" {
		key = os.Getenv("TERRA_TEST_KEY")
	}
	if key == "" {
		return nil, fmt.Errorf("a server key is required (use --key flag or TERRA_TEST_KEY env var)")
	}
	return s.client.WithCredentials(client.Credentials{BearerKey: key}), nil
}

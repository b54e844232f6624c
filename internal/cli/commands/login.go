package commands

import (
	"context"
	"fmt"
	"os"
	"strings"

	"github.com/manifoldco/promptui"
	"github.com/rs/zerolog/log"
	"github.com/spf13/cobra"
	"golang.org/x/term"

	"github.com/terra-dev/terra/internal/cli/client"
	"github.com/terra-dev/terra/internal/cli/views"
)

type loginInput struct {
	user string
	otac string
}

// NewLoginCmd creates the login command
func NewLoginCmd(g *Globals) *cobra.Command {
	var input loginInput

	cmd := &cobra.Command{
		Use:   "login",
		Short: "Log in with a one-time access code",
		Long: `Log in with a one-time access code.

Codes are five letters, valid for five minutes and usable once. Ask a server
operator for one, or issue it yourself with 'terra otac <user>'.`,
		Args: cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			s, err := g.connect(cmd.OutOrStdout())
			if err != nil {
				return err
			}
			s.login = input
			return s.show(cmd.Context(), s.router(""), views.LoginPage)
		},
	}

	cmd.Flags().StringVar(&input.user, "user", "", "User name (or set TERRA_USER)")
	cmd.Flags().StringVar(&input.otac, "otac", "", "One-time access code (or set TERRA_OTAC, will prompt if not provided)")

	return cmd
}

// loginPage renders the login view: collect credentials, exchange the code
// for a session and keep the token in the keyring. It runs at most once per
// session so a rejected redirect cannot loop.
func (s *session) loginPage(ctx context.Context, _ *views.Router) error {
	if s.loginAttempted {
		return ErrLoginRequired
	}
	s.loginAttempted = true

	user, otac, err := s.collectLogin()
	if err != nil {
		return err
	}

	fmt.Fprintf(s.out, "Logging in to %s (%s)...\n", s.server.Alias, s.server.URL)

	token, err := s.client.Login(ctx, user, otac)
	if err != nil {
		return fmt.Errorf("login failed: %w", err)
	}

	if err := s.globals.Tokens.SaveToken(s.server.URL, token); err != nil {
		return fmt.Errorf("failed to save session token: %w", err)
	}
	s.client.SetCredentials(client.Credentials{SessionToken: token})
	s.loggedIn = true

	status := s.gate.FetchAuthStatus(ctx)
	fmt.Fprintln(s.out, "✓ Login successful!")
	fmt.Fprintf(s.out, "  User: %s\n", user)
	fmt.Fprintf(s.out, "  Role: %s\n", status.Tier)

	return nil
}

func (s *session) collectLogin() (string, string, error) {
	user := strings.TrimSpace(s.login.user)
	if user == "" {
		user = os.Getenv("TERRA_USER")
	}
	otac := strings.TrimSpace(s.login.otac)
	if otac == "" {
		otac = os.Getenv("TERRA_OTAC")
	}

	interactive := s.globals.interactive()

	if user == "" {
		if !interactive {
			return "", "", fmt.Errorf("user is required (use --user flag or TERRA_USER env var)")
		}
		prompt := promptui.Prompt{Label: "User"}
		value, err := prompt.Run()
		if err != nil {
			return "", "", fmt.Errorf("login cancelled: %w", err)
		}
		user = strings.TrimSpace(value)
	}

	if otac == "" {
		if !interactive {
			return "", "", fmt.Errorf("access code is required in non-interactive mode (use --otac flag or TERRA_OTAC env var)")
		}
		fmt.Fprint(s.out, "Access code: ")
		code, err := term.ReadPassword(int(os.Stdin.Fd()))
		fmt.Fprintln(s.out)
		if err != nil {
			return "", "", fmt.Errorf("failed to read access code: %w", err)
		}
		otac = strings.TrimSpace(string(code))
	}

	return user, otac, nil
}

// NewLogoutCmd creates the logout command
func NewLogoutCmd(g *Globals) *cobra.Command {
	return &cobra.Command{
		Use:   "logout",
		Short: "End the session on the selected server",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			s, err := g.connect(cmd.OutOrStdout())
			if err != nil {
				return err
			}

			if err := s.client.Logout(cmd.Context()); err != nil {
				// The local token is dropped regardless; the server session expires on its own
				log.Warn().Err(err).Msg("Server logout failed")
			}

			if err := g.Tokens.DeleteToken(s.server.URL); err != nil {
				return err
			}

			fmt.Fprintf(s.out, "✓ Logged out of %s\n", s.server.Alias)
			return nil
		},
	}
}

// NewStatusCmd creates the status command
func NewStatusCmd(g *Globals) *cobra.Command {
	return &cobra.Command{
		Use:   "status",
		Short: "Show whether you are logged in and your access tier",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			s, err := g.connect(cmd.OutOrStdout())
			if err != nil {
				return err
			}

			status := s.gate.FetchAuthStatus(cmd.Context())

			fmt.Fprintf(s.out, "Server: %s (%s)\n", s.server.Alias, s.server.URL)
			if !status.Auth {
				fmt.Fprintln(s.out, "Not logged in.")
				return nil
			}
			fmt.Fprintf(s.out, "Logged in as %s (tier %d)\n", status.Tier, int(status.Tier))
			return nil
		},
	}
}

package commands

import (
	"fmt"
	"os/exec"
	"runtime"
	"strings"

	"github.com/spf13/cobra"

	"github.com/terra-dev/terra/internal/cli/views"
)

// NewOpenCmd creates the open command
func NewOpenCmd(g *Globals) *cobra.Command {
	return &cobra.Command{
		Use:   "open <path>",
		Short: "Open a page by path, e.g. /projects",
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			s, err := g.connect(cmd.OutOrStdout())
			if err != nil {
				return err
			}
			return s.show(cmd.Context(), s.router(""), views.Resolve(args[0]))
		},
	}
}

// NewWebCmd creates the web command
func NewWebCmd(g *Globals) *cobra.Command {
	return &cobra.Command{
		Use:   "web [path]",
		Short: "Open the web front end in browser",
		Args:  cobra.MaximumNArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			s, err := g.connect(cmd.OutOrStdout())
			if err != nil {
				return err
			}
			if s.server.Web == "" {
				return fmt.Errorf("no web front end configured for %s. Set \"web\" in terra.json", s.server.Alias)
			}

			path := "/"
			if len(args) > 0 {
				path = "/" + strings.TrimLeft(args[0], "/")
			}
			webURL := strings.TrimRight(s.server.Web, "/") + path

			fmt.Fprintf(s.out, "Opening %s...\n", webURL)
			if err := openBrowser(webURL); err != nil {
				return fmt.Errorf("failed to open browser: %w\nPlease visit: %s", err, webURL)
			}
			return nil
		},
	}
}

// openBrowser opens the URL in the default browser
var openBrowser = func(url string) error {
	var cmd *exec.Cmd

	switch runtime.GOOS {
	case "linux":
		cmd = exec.Command("xdg-open", url)
	case "darwin":
		cmd = exec.Command("open", url)
	case "windows":
		cmd = exec.Command("rundll32", "url.dll,FileProtocolHandler", url)
	default:
		return fmt.Errorf("unsupported platform: %s", runtime.GOOS)
	}

	return cmd.Start()
}

package commands

import (
	"fmt"
	"os"
	"path/filepath"

	"github.com/spf13/cobra"

	"github.com/terra-dev/terra/internal/cli/config"
)

type initOptions struct {
	alias    string
	web      string
	insecure bool
}

// NewInitCmd creates the init command
func NewInitCmd() *cobra.Command {
	var opts initOptions

	cmd := &cobra.Command{
		Use:   "init <server-url>",
		Short: "Add a Terra server to ./terra.json",
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			return runInit(cmd, args[0], opts)
		},
	}

	cmd.Flags().StringVar(&opts.alias, "alias", "", "Server alias (defaults to server-N)")
	cmd.Flags().StringVar(&opts.web, "web", "", "URL of the web front end for this server")
	cmd.Flags().BoolVar(&opts.insecure, "insecure", false, "Skip TLS verification (self-signed certificates)")

	return cmd
}

func runInit(cmd *cobra.Command, serverURL string, opts initOptions) error {
	out := cmd.OutOrStdout()

	currentDir, err := os.Getwd()
	if err != nil {
		return fmt.Errorf("failed to get current directory: %w", err)
	}

	configPath := filepath.Join(currentDir, config.ConfigFileName)

	cfg := &config.Config{Servers: []config.Server{}}
	isNewConfig := true

	if _, err := os.Stat(configPath); err == nil {
		cfg, err = config.Load(configPath)
		if err != nil {
			return fmt.Errorf("failed to load existing config: %w", err)
		}
		isNewConfig = false
		fmt.Fprintf(out, "Found existing %s\n", config.ConfigFileName)
	}

	if _, err := cfg.GetServerByURL(serverURL); err == nil {
		fmt.Fprintf(out, "Server %s already exists in %s\n", serverURL, config.ConfigFileName)
		return nil
	}

	alias := opts.alias
	if alias == "" {
		alias = fmt.Sprintf("server-%d", len(cfg.Servers)+1)
	}
	if _, err := cfg.GetServerByAlias(alias); err == nil {
		return fmt.Errorf("alias '%s' is already used in %s", alias, config.ConfigFileName)
	}

	cfg.Servers = append(cfg.Servers, config.Server{
		URL:      serverURL,
		Alias:    alias,
		Web:      opts.web,
		Insecure: opts.insecure,
	})

	if err := config.Save(configPath, cfg); err != nil {
		return err
	}

	if isNewConfig {
		fmt.Fprintf(out, "✓ Created ./%s with server %s (%s)\n", config.ConfigFileName, serverURL, alias)
	} else {
		fmt.Fprintf(out, "✓ Added server %s (%s) to ./%s\n", serverURL, alias, config.ConfigFileName)
	}

	fmt.Fprintln(out, "\nNext steps:")
	fmt.Fprintln(out, "  1. Get a one-time access code from a server operator")
	fmt.Fprintln(out, "  2. Run 'terra login' to authenticate")

	return nil
}

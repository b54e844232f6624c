package cli

import (
	"fmt"
	"os"

	"github.com/spf13/cobra"

	"github.com/terra-dev/terra/internal/cli/commands"
	"github.com/terra-dev/terra/internal/logger"
)

var version = "dev" // Will be set during build

// NewRootCmd builds the terra command tree around g
func NewRootCmd(g *commands.Globals) *cobra.Command {
	rootCmd := &cobra.Command{
		Use:   "terra",
		Short: "Terra - factions, projects and the tension leaderboard",
		Long: `Terra CLI - browse your faction's projects and the tension leaderboard.

Log in with a one-time access code, then open any page of the Terra client
from the terminal.`,
		SilenceUsage:  true,
		SilenceErrors: true,
		PersistentPreRun: func(cmd *cobra.Command, args []string) {
			level := "warn"
			if g.Verbose {
				level = "debug"
			}
			logger.InitTo(cmd.ErrOrStderr(), level, "console")
		},
	}

	rootCmd.PersistentFlags().StringVar(&g.ServerAlias, "server", "", "Server alias or URL (overrides the selected server)")
	rootCmd.PersistentFlags().BoolVarP(&g.Verbose, "verbose", "v", false, "Verbose logging")

	rootCmd.AddCommand(&cobra.Command{
		Use:   "version",
		Short: "Print the version number",
		Run: func(cmd *cobra.Command, args []string) {
			fmt.Fprintf(cmd.OutOrStdout(), "terra version %s\n", version)
		},
	})

	rootCmd.AddCommand(commands.NewInitCmd())
	rootCmd.AddCommand(commands.NewSelectServerCmd())
	rootCmd.AddCommand(commands.NewLoginCmd(g))
	rootCmd.AddCommand(commands.NewLogoutCmd(g))
	rootCmd.AddCommand(commands.NewStatusCmd(g))
	rootCmd.AddCommand(commands.NewProjectsCmd(g))
	rootCmd.AddCommand(commands.NewFactionCmd(g))
	rootCmd.AddCommand(commands.NewLeaderboardCmd(g))
	rootCmd.AddCommand(commands.NewTensionCmd(g))
	rootCmd.AddCommand(commands.NewOTACCmd(g))
	rootCmd.AddCommand(commands.NewOpenCmd(g))
	rootCmd.AddCommand(commands.NewWebCmd(g))

	return rootCmd
}

// Execute runs the root command
func Execute() error {
	if err := NewRootCmd(commands.NewGlobals()).Execute(); err != nil {
		fmt.Fprintf(os.Stderr, "Error: %v\n", err)
		return err
	}
	return nil
}

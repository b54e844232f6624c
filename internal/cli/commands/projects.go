package commands

import (
	"context"
	"errors"
	"fmt"

	"github.com/spf13/cobra"

	"github.com/terra-dev/terra/internal/auth"
	"github.com/terra-dev/terra/internal/cli/client"
	"github.com/terra-dev/terra/internal/cli/gate"
	"github.com/terra-dev/terra/internal/cli/views"
)

// ErrInsufficientTier is returned when the session is valid but its tier is too low
var ErrInsufficientTier = errors.New("insufficient access tier")

// denied explains a failed check
func denied(status gate.Status, need auth.Tier) error {
	if !status.Auth {
		return ErrLoginRequired
	}
	return fmt.Errorf("%w: requires %s, you are %s", ErrInsufficientTier, need, status.Tier)
}

// gated runs fn only when the session holds need
func (s *session) gated(ctx context.Context, need auth.Tier, fn func() error) error {
	var err error
	s.gate.Check(ctx, need,
		func(gate.Status) { err = fn() },
		func(status gate.Status) { err = denied(status, need) },
	)
	return err
}

// NewProjectsCmd creates the projects command and its subcommands
func NewProjectsCmd(g *Globals) *cobra.Command {
	list := func(cmd *cobra.Command, args []string) error {
		s, err := g.connect(cmd.OutOrStdout())
		if err != nil {
			return err
		}
		return s.show(cmd.Context(), s.router(""), views.ProjectList)
	}

	cmd := &cobra.Command{
		Use:   "projects",
		Short: "List and manage faction projects",
		Args:  cobra.NoArgs,
		RunE:  list,
	}

	cmd.AddCommand(&cobra.Command{
		Use:     "ls",
		Aliases: []string{"list"},
		Short:   "List all projects",
		Args:    cobra.NoArgs,
		RunE:    list,
	})
	cmd.AddCommand(newProjectsAddCmd(g))
	cmd.AddCommand(newProjectsDeleteCmd(g))

	return cmd
}

func newProjectsAddCmd(g *Globals) *cobra.Command {
	var project client.Project

	cmd := &cobra.Command{
		Use:   "add <name>",
		Short: "Add a project (admin)",
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			project.Name = args[0]
			if project.Weight == 0 {
				return fmt.Errorf("weight must not be zero")
			}

			s, err := g.connect(cmd.OutOrStdout())
			if err != nil {
				return err
			}

			return s.gated(cmd.Context(), auth.Admin, func() error {
				if err := s.client.AddProject(cmd.Context(), project); err != nil {
					return err
				}
				fmt.Fprintf(s.out, "✓ Project '%s' submitted\n", project.Name)
				return nil
			})
		},
	}

	cmd.Flags().StringVar(&project.Description, "description", "", "Project description")
	cmd.Flags().Int32Var(&project.Weight, "weight", 0, "Project weight, used for ranking")
	_ = cmd.MarkFlagRequired("description")
	_ = cmd.MarkFlagRequired("weight")

	return cmd
}

func newProjectsDeleteCmd(g *Globals) *cobra.Command {
	return &cobra.Command{
		Use:     "delete <name>",
		Aliases: []string{"rm"},
		Short:   "Delete a project (admin)",
		Args:    cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			name := args[0]

			s, err := g.connect(cmd.OutOrStdout())
			if err != nil {
				return err
			}

			return s.gated(cmd.Context(), auth.Admin, func() error {
				ok, err := s.client.DeleteProject(cmd.Context(), name)
				if !ok {
					return fmt.Errorf("failed to delete project '%s': %w", name, err)
				}
				fmt.Fprintf(s.out, "✓ Project '%s' deleted\n", name)
				return nil
			})
		},
	}
}

// NewFactionCmd creates the faction command
func NewFactionCmd(g *Globals) *cobra.Command {
	return &cobra.Command{
		Use:   "faction",
		Short: "Show your role and your faction's projects by weight",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			s, err := g.connect(cmd.OutOrStdout())
			if err != nil {
				return err
			}
			return s.show(cmd.Context(), s.router(""), views.FactionViewer)
		},
	}
}

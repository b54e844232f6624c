package commands

import (
	"fmt"
	"strconv"

	"github.com/spf13/cobra"
)

// NewTensionCmd creates the tension command. Writes need the server key.
func NewTensionCmd(g *Globals) *cobra.Command {
	var key string

	cmd := &cobra.Command{
		Use:   "tension",
		Short: "Write faction tension (server key)",
	}
	cmd.PersistentFlags().StringVar(&key, "key", "", "Server key (or set TERRA_TEST_KEY)")

	cmd.AddCommand(&cobra.Command{
		Use:   "set <faction-id> <tension>",
		Short: "Set a faction's tension",
		Args:  cobra.ExactArgs(2),
		RunE: func(cmd *cobra.Command, args []string) error {
			id, err := parseFactionID(args[0])
			if err != nil {
				return err
			}
			value, err := strconv.ParseInt(args[1], 10, 32)
			if err != nil {
				return fmt.Errorf("invalid tension '%s': %w", args[1], err)
			}

			s, err := g.connect(cmd.OutOrStdout())
			if err != nil {
				return err
			}
			c, err := s.bearerClient(key)
			if err != nil {
				return err
			}

			if err := c.SetTension(cmd.Context(), id, int32(value)); err != nil {
				return err
			}
			fmt.Fprintf(s.out, "✓ Tension of faction %d set to %d\n", id, value)
			return nil
		},
	})

	cmd.AddCommand(&cobra.Command{
		Use:   "delete <faction-id>",
		Short: "Remove a faction from the leaderboard",
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			id, err := parseFactionID(args[0])
			if err != nil {
				return err
			}

			s, err := g.connect(cmd.OutOrStdout())
			if err != nil {
				return err
			}
			c, err := s.bearerClient(key)
			if err != nil {
				return err
			}

			if err := c.DeleteTension(cmd.Context(), id); err != nil {
				return err
			}
			fmt.Fprintf(s.out, "✓ Faction %d removed\n", id)
			return nil
		},
	})

	return cmd
}

func parseFactionID(arg string) (int32, error) {
	id, err := strconv.ParseInt(arg, 10, 32)
	if err != nil || id <= 0 {
		return 0, fmt.Errorf("invalid faction id '%s': must be a positive number", arg)
	}
	return int32(id), nil
}

// NewOTACCmd creates the otac command
func NewOTACCmd(g *Globals) *cobra.Command {
	var key string

	cmd := &cobra.Command{
		Use:   "otac <user>",
		Short: "Issue a one-time access code for a user (server key)",
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			s, err := g.connect(cmd.OutOrStdout())
			if err != nil {
				return err
			}
			c, err := s.bearerClient(key)
			if err != nil {
				return err
			}

			code, err := c.RequestOTAC(cmd.Context(), args[0])
			if err != nil {
				return err
			}
			fmt.Fprintf(s.out, "Access code for %s: %s\n", args[0], code)
			return nil
		},
	}
	cmd.Flags().StringVar(&key, "key", "", "Server key (or set TERRA_TEST_KEY)")

	return cmd
}

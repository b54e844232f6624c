package commands

import (
	"context"
	"fmt"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/robfig/cron/v3"
	"github.com/rs/zerolog/log"
	"github.com/spf13/cobra"

	"github.com/terra-dev/terra/internal/cli/client"
	"github.com/terra-dev/terra/internal/cli/views"
)

// NewLeaderboardCmd creates the leaderboard command
func NewLeaderboardCmd(g *Globals) *cobra.Command {
	var ascending bool
	var watch string

	cmd := &cobra.Command{
		Use:   "leaderboard",
		Short: "Show factions ranked by tension",
		Long: `Show factions ranked by tension, highest first.

With --watch the leaderboard is redrawn on a cron schedule until interrupted:
  $ terra leaderboard --watch "@every 30s"
  $ terra leaderboard --watch "*/5 * * * *"`,
		Args: cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			dir := client.Descending
			if ascending {
				dir = client.Ascending
			}

			s, err := g.connect(cmd.OutOrStdout())
			if err != nil {
				return err
			}
			r := s.router(dir)

			if err := s.show(cmd.Context(), r, views.Leaderboard); err != nil {
				return err
			}
			if watch == "" {
				return nil
			}

			ctx, stop := signal.NotifyContext(cmd.Context(), os.Interrupt, syscall.SIGTERM)
			defer stop()
			return s.watch(ctx, r, watch)
		},
	}

	cmd.Flags().BoolVar(&ascending, "asc", false, "Lowest tension first")
	cmd.Flags().StringVar(&watch, "watch", "", "Redraw on this cron schedule")

	return cmd
}

// newWatchScheduler skips a firing while the previous redraw is still running
func newWatchScheduler() *cron.Cron {
	return cron.New(cron.WithChain(cron.SkipIfStillRunning(cron.DefaultLogger)))
}

// watch redraws the leaderboard on schedule until ctx ends or the session
// stops being authorized
func (s *session) watch(ctx context.Context, r *views.Router, schedule string) error {
	ctx, cancel := context.WithCancel(ctx)
	defer cancel()

	// No prompting from the scheduler goroutine
	s.loginAttempted = true

	scheduler := newWatchScheduler()
	_, err := scheduler.AddFunc(schedule, func() {
		fmt.Fprintf(s.out, "\n%s\n", time.Now().Format(time.RFC3339))
		if err := r.Navigate(ctx, views.Leaderboard); err != nil {
			log.Warn().Err(err).Msg("Failed to redraw leaderboard")
		}
		if r.Current() != views.Leaderboard {
			cancel()
		}
	})
	if err != nil {
		return fmt.Errorf("invalid watch schedule %q: %w", schedule, err)
	}

	scheduler.Start()
	<-ctx.Done()
	<-scheduler.Stop().Done()

	if r.Current() != views.Leaderboard {
		return ErrLoginRequired
	}
	return nil
}

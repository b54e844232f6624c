package workers

import (
	"context"
	"errors"
	"path/filepath"
	"testing"

	"github.com/hibiken/asynq"
	"github.com/rs/zerolog"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/terra-dev/terra/internal/config"
	"github.com/terra-dev/terra/internal/database"
	"github.com/terra-dev/terra/internal/projects"
	"github.com/terra-dev/terra/internal/tasks"
	"github.com/terra-dev/terra/internal/tension"
)

func newTestWrites(t *testing.T) (*Writes, *projects.Service, *tension.Service) {
	t.Helper()
	db, err := database.Open(config.DatabaseConfig{
		Driver: "sqlite",
		URL:    filepath.Join(t.TempDir(), "terra.sqlite"),
	}, zerolog.Nop())
	require.NoError(t, err)
	t.Cleanup(func() { _ = database.Close(db) })

	p := projects.NewService(db, zerolog.Nop())
	ts := tension.NewService(db, zerolog.Nop())
	return NewWrites(p, ts, zerolog.Nop()), p, ts
}

func TestWrites_ProjectLifecycle(t *testing.T) {
	w, p, _ := newTestWrites(t)
	ctx := context.Background()

	add, err := tasks.NewProjectAddTask(tasks.ProjectPayload{Name: "mill", Description: "Grain", Weight: 2})
	require.NoError(t, err)
	require.NoError(t, w.HandleProjectAdd(ctx, add))

	// duplicates are dropped, not retried
	require.NoError(t, w.HandleProjectAdd(ctx, add))

	list, err := p.List(ctx)
	require.NoError(t, err)
	require.Len(t, list, 1)

	del, err := tasks.NewProjectDeleteTask("mill")
	require.NoError(t, err)
	require.NoError(t, w.HandleProjectDelete(ctx, del))

	list, err = p.List(ctx)
	require.NoError(t, err)
	assert.Empty(t, list)
}

func TestWrites_TensionLifecycle(t *testing.T) {
	w, _, ts := newTestWrites(t)
	ctx := context.Background()

	set, err := tasks.NewTensionSetTask(7, 42)
	require.NoError(t, err)
	require.NoError(t, w.HandleTensionSet(ctx, set))

	board, err := ts.Leaderboard(ctx, tension.Descending)
	require.NoError(t, err)
	require.Len(t, board, 1)
	assert.Equal(t, int32(42), board[0].Tension)

	del, err := tasks.NewTensionDeleteTask(7)
	require.NoError(t, err)
	require.NoError(t, w.HandleTensionDelete(ctx, del))

	board, err = ts.Leaderboard(ctx, tension.Descending)
	require.NoError(t, err)
	assert.Empty(t, board)
}

func TestWrites_MalformedPayloadSkipsRetry(t *testing.T) {
	w, _, _ := newTestWrites(t)

	err := w.HandleTensionSet(context.Background(), asynq.NewTask(tasks.TypeTensionSet, []byte("{")))
	require.Error(t, err)
	assert.True(t, errors.Is(err, asynq.SkipRetry))
}

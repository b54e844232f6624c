package projects

import (
	"context"
	"path/filepath"
	"testing"

	"github.com/rs/zerolog"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/terra-dev/terra/internal/config"
	"github.com/terra-dev/terra/internal/database"
	"github.com/terra-dev/terra/internal/models"
)

func newTestService(t *testing.T) *Service {
	t.Helper()
	db, err := database.Open(config.DatabaseConfig{
		Driver: "sqlite",
		URL:    filepath.Join(t.TempDir(), "terra.sqlite"),
	}, zerolog.Nop())
	require.NoError(t, err)
	t.Cleanup(func() { _ = database.Close(db) })
	return NewService(db, zerolog.Nop())
}

func TestService_AddListDelete(t *testing.T) {
	s := newTestService(t)
	ctx := context.Background()

	require.NoError(t, s.Add(ctx, models.Project{Name: "walls", Description: "Build the walls", Weight: 3}))
	require.NoError(t, s.Add(ctx, models.Project{Name: "aqueduct", Description: "Water", Weight: 5}))

	projects, err := s.List(ctx)
	require.NoError(t, err)
	require.Len(t, projects, 2)
	assert.Equal(t, "aqueduct", projects[0].Name)
	assert.Equal(t, "walls", projects[1].Name)

	got, err := s.Get(ctx, "walls")
	require.NoError(t, err)
	assert.Equal(t, int32(3), got.Weight)

	require.NoError(t, s.Delete(ctx, "walls"))
	require.NoError(t, s.Delete(ctx, "walls"))

	_, err = s.Get(ctx, "walls")
	assert.ErrorIs(t, err, ErrNotFound)
}

func TestService_AddRejectsInvalidAndDuplicates(t *testing.T) {
	s := newTestService(t)
	ctx := context.Background()

	invalid := []models.Project{
		{Name: "", Description: "d", Weight: 1},
		{Name: "n", Description: " ", Weight: 1},
		{Name: "n", Description: "d", Weight: 0},
	}
	for _, p := range invalid {
		assert.ErrorIs(t, s.Add(ctx, p), ErrInvalidProject)
	}

	require.NoError(t, s.Add(ctx, models.Project{Name: "forge", Description: "Smithing", Weight: 1}))
	assert.ErrorIs(t, s.Add(ctx, models.Project{Name: "forge", Description: "Again", Weight: 2}), ErrProjectExists)
}

func TestService_ListEmpty(t *testing.T) {
	s := newTestService(t)

	projects, err := s.List(context.Background())
	require.NoError(t, err)
	assert.NotNil(t, projects)
	assert.Empty(t, projects)
}

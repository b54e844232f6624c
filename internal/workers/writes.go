package workers

import (
	"context"
	"errors"
	"fmt"

	"github.com/hibiken/asynq"
	"github.com/rs/zerolog"

	"github.com/terra-dev/terra/internal/models"
	"github.com/terra-dev/terra/internal/projects"
	"github.com/terra-dev/terra/internal/tasks"
	"github.com/terra-dev/terra/internal/tension"
)

// Writes applies queued project and tension writes
type Writes struct {
	projects *projects.Service
	tension  *tension.Service
	logger   zerolog.Logger
}

// NewWrites creates the write handlers
func NewWrites(p *projects.Service, t *tension.Service, logger zerolog.Logger) *Writes {
	return &Writes{projects: p, tension: t, logger: logger}
}

// Register attaches every handler to mux
func (w *Writes) Register(mux *asynq.ServeMux) {
	mux.HandleFunc(tasks.TypeProjectAdd, w.HandleProjectAdd)
	mux.HandleFunc(tasks.TypeProjectDelete, w.HandleProjectDelete)
	mux.HandleFunc(tasks.TypeTensionSet, w.HandleTensionSet)
	mux.HandleFunc(tasks.TypeTensionDelete, w.HandleTensionDelete)
}

// HandleProjectAdd inserts a project. Invalid or duplicate projects are dropped without retry.
func (w *Writes) HandleProjectAdd(ctx context.Context, t *asynq.Task) error {
	payload, err := tasks.ParseProjectPayload(t)
	if err != nil {
		return fmt.Errorf("%w: %v", asynq.SkipRetry, err)
	}

	err = w.projects.Add(ctx, models.Project{
		Name:        payload.Name,
		Description: payload.Description,
		Weight:      payload.Weight,
	})
	if errors.Is(err, projects.ErrInvalidProject) || errors.Is(err, projects.ErrProjectExists) {
		w.logger.Warn().Err(err).Str("name", payload.Name).Msg("Dropping project add")
		return nil
	}
	return err
}

// HandleProjectDelete removes a project
func (w *Writes) HandleProjectDelete(ctx context.Context, t *asynq.Task) error {
	payload, err := tasks.ParseProjectPayload(t)
	if err != nil {
		return fmt.Errorf("%w: %v", asynq.SkipRetry, err)
	}
	return w.projects.Delete(ctx, payload.Name)
}

// HandleTensionSet writes a faction's tension
func (w *Writes) HandleTensionSet(ctx context.Context, t *asynq.Task) error {
	payload, err := tasks.ParseTensionPayload(t)
	if err != nil {
		return fmt.Errorf("%w: %v", asynq.SkipRetry, err)
	}
	if payload.ID <= 0 {
		w.logger.Warn().Int32("id", payload.ID).Msg("Dropping tension write for invalid faction")
		return nil
	}
	return w.tension.Set(ctx, payload.ID, payload.Tension)
}

// HandleTensionDelete removes a faction's tension
func (w *Writes) HandleTensionDelete(ctx context.Context, t *asynq.Task) error {
	payload, err := tasks.ParseTensionPayload(t)
	if err != nil {
		return fmt.Errorf("%w: %v", asynq.SkipRetry, err)
	}
	return w.tension.Delete(ctx, payload.ID)
}

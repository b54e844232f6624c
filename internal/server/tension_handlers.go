package server

import (
	"net/http"

	"github.com/gin-gonic/gin"
	"github.com/hibiken/asynq"

	"github.com/terra-dev/terra/internal/tasks"
	"github.com/terra-dev/terra/internal/tension"
)

// SetTensionRequest writes a faction's tension
type SetTensionRequest struct {
	ID      int32 `json:"id" validate:"required,gt=0"`
	Tension int32 `json:"tension"`
}

// DeleteTensionRequest removes a faction's tension
type DeleteTensionRequest struct {
	ID int32 `json:"id" validate:"required,gt=0"`
}

// @Summary Tension leaderboard
// @Description Tension entries as [id, tension] pairs
// @Tags tension
// @Produce json
// @Param dir query string false "asc or dsc (default)"
// @Success 200 {array} []int32
// @Router /tension [get]
func (s *Server) leaderboard(c *gin.Context) {
	dir, err := tension.ParseDirection(c.Query("dir"))
	if err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": err.Error()})
		return
	}

	entries, err := s.tension.Leaderboard(c.Request.Context(), dir)
	if err != nil {
		s.logger.Error().Err(err).Msg("Failed to load leaderboard")
		c.JSON(http.StatusInternalServerError, gin.H{"error": "Internal server error"})
		return
	}

	pairs := make([][2]int32, len(entries))
	for i, entry := range entries {
		pairs[i] = [2]int32{entry.ID, entry.Tension}
	}

	c.JSON(http.StatusOK, pairs)
}

// @Summary Set tension
// @Tags tension
// @Accept json
// @Security BearerAuth
// @Param request body SetTensionRequest true "Tension"
// @Success 200
// @Router /tension [post]
func (s *Server) setTension(c *gin.Context) {
	var req SetTensionRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": err.Error()})
		return
	}
	if err := s.validator.Struct(req); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": err.Error()})
		return
	}

	task, err := tasks.NewTensionSetTask(req.ID, req.Tension)
	if err != nil {
		s.logger.Error().Err(err).Msg("Failed to build tension task")
		c.JSON(http.StatusInternalServerError, gin.H{"error": "Internal server error"})
		return
	}

	s.enqueue(c, task)
}

// @Summary Delete tension
// @Tags tension
// @Accept json
// @Security BearerAuth
// @Param request body DeleteTensionRequest true "Faction id"
// @Success 200
// @Router /tension [delete]
func (s *Server) deleteTension(c *gin.Context) {
	var req DeleteTensionRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": err.Error()})
		return
	}
	if err := s.validator.Struct(req); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": err.Error()})
		return
	}

	task, err := tasks.NewTensionDeleteTask(req.ID)
	if err != nil {
		s.logger.Error().Err(err).Msg("Failed to build tension task")
		c.JSON(http.StatusInternalServerError, gin.H{"error": "Internal server error"})
		return
	}

	s.enqueue(c, task)
}

// enqueue hands a write to the worker and answers 200 without waiting for it
func (s *Server) enqueue(c *gin.Context, task *asynq.Task) {
	info, err := s.queue.EnqueueContext(c.Request.Context(), task, asynq.Queue("default"))
	if err != nil {
		s.logger.Error().Err(err).Str("task", task.Type()).Msg("Failed to enqueue task")
		c.JSON(http.StatusInternalServerError, gin.H{"error": "Internal server error"})
		return
	}

	s.logger.Debug().Str("task", task.Type()).Str("task_id", info.ID).Msg("Task enqueued")
	c.Status(http.StatusOK)
}

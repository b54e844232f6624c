package server

import (
	"errors"
	"net/http"

	"github.com/gin-gonic/gin"

	"github.com/terra-dev/terra/internal/projects"
	"github.com/terra-dev/terra/internal/tasks"
)

// AddProjectRequest creates a project
type AddProjectRequest struct {
	Name        string `json:"name" validate:"required,max=128,projectname"`
	Description string `json:"description" validate:"required"`
	Weight      int32  `json:"weight" validate:"required"`
}

// DeleteProjectRequest removes a project by name
type DeleteProjectRequest struct {
	Name string `json:"name" validate:"required,max=128"`
}

// @Summary List projects
// @Tags projects
// @Produce json
// @Success 200 {array} models.Project
// @Failure 401 {object} map[string]interface{}
// @Failure 403 {object} map[string]interface{}
// @Router /projects [get]
func (s *Server) listProjects(c *gin.Context) {
	projects, err := s.projects.List(c.Request.Context())
	if err != nil {
		s.logger.Error().Err(err).Msg("Failed to list projects")
		c.JSON(http.StatusInternalServerError, gin.H{"error": "Internal server error"})
		return
	}

	c.JSON(http.StatusOK, projects)
}

// @Summary Add project
// @Description Queue a project insert (admin)
// @Tags projects
// @Accept json
// @Param request body AddProjectRequest true "Project"
// @Success 200
// @Failure 409 {object} map[string]interface{}
// @Router /projects [post]
func (s *Server) addProject(c *gin.Context) {
	var req AddProjectRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": err.Error()})
		return
	}
	if err := s.validator.Struct(req); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": err.Error()})
		return
	}

	if _, err := s.projects.Get(c.Request.Context(), req.Name); err == nil {
		c.JSON(http.StatusConflict, gin.H{"error": projects.ErrProjectExists.Error()})
		return
	} else if !errors.Is(err, projects.ErrNotFound) {
		s.logger.Error().Err(err).Str("name", req.Name).Msg("Failed to look up project")
		c.JSON(http.StatusInternalServerError, gin.H{"error": "Internal server error"})
		return
	}

	task, err := tasks.NewProjectAddTask(tasks.ProjectPayload{
		Name:        req.Name,
		Description: req.Description,
		Weight:      req.Weight,
	})
	if err != nil {
		s.logger.Error().Err(err).Msg("Failed to build project task")
		c.JSON(http.StatusInternalServerError, gin.H{"error": "Internal server error"})
		return
	}

	s.enqueue(c, task)
}

// @Summary Delete project
// @Description Queue a project removal (admin)
// @Tags projects
// @Accept json
// @Param request body DeleteProjectRequest true "Project name"
// @Success 200
// @Router /projects [delete]
func (s *Server) deleteProject(c *gin.Context) {
	var req DeleteProjectRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": err.Error()})
		return
	}
	if err := s.validator.Struct(req); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": err.Error()})
		return
	}

	task, err := tasks.NewProjectDeleteTask(req.Name)
	if err != nil {
		s.logger.Error().Err(err).Msg("Failed to build project task")
		c.JSON(http.StatusInternalServerError, gin.H{"error": "Internal server error"})
		return
	}

	s.enqueue(c, task)
}

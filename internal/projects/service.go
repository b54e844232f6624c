package projects

import (
	"context"
	"errors"
	"fmt"
	"strings"

	"github.com/rs/zerolog"
	"gorm.io/gorm"

	"github.com/terra-dev/terra/internal/models"
)

var (
	ErrInvalidProject = errors.New("invalid name, description, or weight")
	ErrProjectExists  = errors.New("project already exists")
	ErrNotFound       = errors.New("project not found")
)

// Service handles project persistence
type Service struct {
	db     *gorm.DB
	logger zerolog.Logger
}

// NewService creates a new projects service
func NewService(db *gorm.DB, logger zerolog.Logger) *Service {
	return &Service{
		db:     db,
		logger: logger.With().Str("service", "projects").Logger(),
	}
}

// List returns every project ordered by name
func (s *Service) List(ctx context.Context) ([]models.Project, error) {
	projects := make([]models.Project, 0)
	if err := s.db.WithContext(ctx).Order("name ASC").Find(&projects).Error; err != nil {
		return nil, fmt.Errorf("failed to list projects: %w", err)
	}
	return projects, nil
}

// Get returns a single project by name
func (s *Service) Get(ctx context.Context, name string) (*models.Project, error) {
	return get(s.db.WithContext(ctx), name)
}

func get(db *gorm.DB, name string) (*models.Project, error) {
	var project models.Project
	if err := models.FindByKey(db, "name", name, &project); err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, ErrNotFound
		}
		return nil, fmt.Errorf("failed to load project: %w", err)
	}
	return &project, nil
}

// Validate checks the fields required to create a project
func Validate(p models.Project) error {
	if strings.TrimSpace(p.Name) == "" || strings.TrimSpace(p.Description) == "" || p.Weight == 0 {
		return ErrInvalidProject
	}
	return nil
}

// Add creates a new project
func (s *Service) Add(ctx context.Context, p models.Project) error {
	if err := Validate(p); err != nil {
		return err
	}

	err := s.db.WithContext(ctx).Transaction(func(tx *gorm.DB) error {
		_, err := get(tx, p.Name)
		if err == nil {
			return ErrProjectExists
		}
		if !errors.Is(err, ErrNotFound) {
			return err
		}
		return tx.Create(&p).Error
	})
	if err != nil {
		if errors.Is(err, ErrProjectExists) {
			return err
		}
		return fmt.Errorf("failed to add project: %w", err)
	}

	s.logger.Info().Str("name", p.Name).Int32("weight", p.Weight).Msg("Project added")
	return nil
}

// Delete removes a project by name. Deleting a missing project is not an error.
func (s *Service) Delete(ctx context.Context, name string) error {
	result := s.db.WithContext(ctx).Where("name = ?", name).Delete(&models.Project{})
	if result.Error != nil {
		return fmt.Errorf("failed to delete project: %w", result.Error)
	}

	s.logger.Info().Str("name", name).Int64("rows", result.RowsAffected).Msg("Project deleted")
	return nil
}

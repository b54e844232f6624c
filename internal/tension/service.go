package tension

import (
	"context"
	"fmt"
	"strings"

	"github.com/rs/zerolog"
	"gorm.io/gorm"
	"gorm.io/gorm/clause"

	"github.com/terra-dev/terra/internal/models"
)

// Direction orders the leaderboard
type Direction string

const (
	Ascending  Direction = "asc"
	Descending Direction = "dsc"
)

// ParseDirection accepts "asc" or "dsc"; empty means descending
func ParseDirection(s string) (Direction, error) {
	switch Direction(strings.ToLower(strings.TrimSpace(s))) {
	case "", Descending, "desc":
		return Descending, nil
	case Ascending:
		return Ascending, nil
	default:
		return "", fmt.Errorf("invalid direction %q, must be asc or dsc", s)
	}
}

// Service handles faction tension scores
type Service struct {
	db     *gorm.DB
	logger zerolog.Logger
}

// NewService creates a new tension service
func NewService(db *gorm.DB, logger zerolog.Logger) *Service {
	return &Service{
		db:     db,
		logger: logger.With().Str("service", "tension").Logger(),
	}
}

// Leaderboard returns every tension entry sorted by score. Ties are broken by ID.
func (s *Service) Leaderboard(ctx context.Context, dir Direction) ([]models.Tension, error) {
	order := "tension DESC, id ASC"
	if dir == Ascending {
		order = "tension ASC, id ASC"
	}

	entries := make([]models.Tension, 0)
	if err := s.db.WithContext(ctx).Order(order).Find(&entries).Error; err != nil {
		return nil, fmt.Errorf("failed to load tension: %w", err)
	}
	return entries, nil
}

// Set creates or replaces the tension of a faction
func (s *Service) Set(ctx context.Context, id, value int32) error {
	if id <= 0 {
		return fmt.Errorf("invalid faction id %d", id)
	}

	entry := models.Tension{ID: id, Tension: value}
	err := s.db.WithContext(ctx).Clauses(clause.OnConflict{
		Columns:   []clause.Column{{Name: "id"}},
		DoUpdates: clause.AssignmentColumns([]string{"tension", "updated_at"}),
	}).Create(&entry).Error
	if err != nil {
		return fmt.Errorf("failed to set tension: %w", err)
	}

	s.logger.Info().Int32("id", id).Int32("tension", value).Msg("Tension set")
	return nil
}

// Delete removes a faction's tension entry
func (s *Service) Delete(ctx context.Context, id int32) error {
	if err := s.db.WithContext(ctx).Delete(&models.Tension{}, id).Error; err != nil {
		return fmt.Errorf("failed to delete tension: %w", err)
	}

	s.logger.Info().Int32("id", id).Msg("Tension deleted")
	return nil
}

package models

import (
	"time"

	"gorm.io/gorm"
)

// Project is a faction project. Names are unique and act as the key.
type Project struct {
	Name        string    `json:"name" gorm:"primaryKey;type:varchar(128)"`
	Description string    `json:"description" gorm:"type:text;not null"`
	Weight      int32     `json:"weight" gorm:"not null"`
	CreatedAt   time.Time `json:"-" gorm:"autoCreateTime"`
	UpdatedAt   time.Time `json:"-" gorm:"autoUpdateTime"`
}

// Tension is the current tension score of one faction
type Tension struct {
	ID        int32     `json:"id" gorm:"primaryKey;autoIncrement:false"`
	Tension   int32     `json:"tension" gorm:"not null"`
	UpdatedAt time.Time `json:"-" gorm:"autoUpdateTime"`
}

// AutoMigrate runs database migrations for all models
func AutoMigrate(db *gorm.DB) error {
	models := []interface{}{
		&Project{}, &Tension{},
	}

	return db.AutoMigrate(models...)
}

// FindByKey finds a record by its primary key column
func FindByKey[T any](db *gorm.DB, column string, key any, model *T) error {
	return db.Where(column+" = ?", key).First(model).Error
}

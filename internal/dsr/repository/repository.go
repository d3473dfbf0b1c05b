package repository

import (
	"errors"

	"gorm.io/gorm"
)

// ErrNotFound is returned when a record does not exist.
var ErrNotFound = errors.New("record not found")

// Repositories bundles every repository for wiring.
type Repositories struct {
	Job *JobRepository
}

// NewRepositories creates all repositories over one DB handle.
func NewRepositories(db *gorm.DB) *Repositories {
	return &Repositories{
		Job: NewJobRepository(db),
	}
}

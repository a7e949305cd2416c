// Package storage persists run records so the failures command can show the last run.
package storage

import (
	"errors"

	"gtp/internal/config"
	"gtp/internal/domain"
)

// ErrNoResults is returned by Load when no run has been stored yet
var ErrNoResults = errors.New("no stored test results")

// Storage persists and loads run records
type Storage interface {
	Save(record *domain.RunRecord) error
	Load() (*domain.RunRecord, error)
}

// JSONStorage stores the last run in a JSON file under the configured output path.
type JSONStorage struct {
	cfg *config.Config
}

// NewJSONStorage returns a Storage that reads/writes the config's output JSON path.
func NewJSONStorage(cfg *config.Config) *JSONStorage {
	return &JSONStorage{cfg: cfg}
}

// Multi saves to every store and loads from the first one that has a record
type Multi []Storage

// Save writes record to every store, returning the joined errors
func (m Multi) Save(record *domain.RunRecord) error {
	var errs []error
	for _, s := range m {
		if err := s.Save(record); err != nil {
			errs = append(errs, err)
		}
	}
	return errors.Join(errs...)
}

// Load returns the first stored record
func (m Multi) Load() (*domain.RunRecord, error) {
	var errs []error
	for _, s := range m {
		record, err := s.Load()
		if err == nil {
			return record, nil
		}
		errs = append(errs, err)
	}
	if len(errs) == 0 {
		return nil, ErrNoResults
	}
	return nil, errors.Join(errs...)
}

package repository

import (
	"context"
	"errors"

	"github.com/jwalitptl/patient-api/internal/model"
)

// ErrNotFound is returned by Get when no record has the given id.
var ErrNotFound = errors.New("record not found")

// PatientRepository is a key-value view of the record store, keyed by
// patient id. Implementations may be swapped (file-backed, in-memory)
// without touching handler or service logic.
type PatientRepository interface {
	// List returns the entire store as a mapping from id to record.
	List(ctx context.Context) (map[string]*model.Patient, error)

	// Get returns a single record or ErrNotFound.
	Get(ctx context.Context, id string) (*model.Patient, error)

	// Put inserts or replaces the record under its id.
	Put(ctx context.Context, patient *model.Patient) error

	// Delete removes a record, reporting whether it existed.
	Delete(ctx context.Context, id string) (bool, error)
}

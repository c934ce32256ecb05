package jsonfile

import (
	"context"
	"encoding/json"
	"fmt"
	"os"

	"github.com/jwalitptl/patient-api/internal/model"
	"github.com/jwalitptl/patient-api/internal/repository"
	"github.com/jwalitptl/patient-api/pkg/logger"
)

// Store persists the whole record store as a single pretty-printed
// JSON object on disk, rewriting the file on every mutation. There is
// no cross-request locking or atomic rename: concurrent writers race
// on load-mutate-save and the last write wins.
type Store struct {
	path string
	log  *logger.Logger
}

func NewStore(path string) *Store {
	return &Store{
		path: path,
		log:  logger.NewLogger(nil),
	}
}

// Path returns the backing file location.
func (s *Store) Path() string {
	return s.path
}

// load reads the backing file. A missing, unreadable or unparsable
// file yields an empty store rather than an error.
func (s *Store) load() map[string]*model.Patient {
	data, err := os.ReadFile(s.path)
	if err != nil {
		if !os.IsNotExist(err) {
			s.log.Warn(err, "failed to read store, treating as empty")
		}
		return map[string]*model.Patient{}
	}

	var store map[string]*model.Patient
	if err := json.Unmarshal(data, &store); err != nil || store == nil {
		s.log.Warn(err, "failed to parse store, treating as empty")
		return map[string]*model.Patient{}
	}
	return store
}

// save rewrites the backing file with the full store, pretty-printed.
func (s *Store) save(store map[string]*model.Patient) error {
	data, err := json.MarshalIndent(store, "", "    ")
	if err != nil {
		return fmt.Errorf("failed to marshal store: %w", err)
	}
	if err := os.WriteFile(s.path, data, 0o644); err != nil {
		return fmt.Errorf("failed to write %s: %w", s.path, err)
	}
	return nil
}

func (s *Store) List(_ context.Context) (map[string]*model.Patient, error) {
	return s.load(), nil
}

func (s *Store) Get(_ context.Context, id string) (*model.Patient, error) {
	store := s.load()
	patient, ok := store[id]
	if !ok {
		return nil, repository.ErrNotFound
	}
	return patient, nil
}

func (s *Store) Put(_ context.Context, patient *model.Patient) error {
	store := s.load()
	store[patient.ID] = patient
	return s.save(store)
}

func (s *Store) Delete(_ context.Context, id string) (bool, error) {
	store := s.load()
	if _, ok := store[id]; !ok {
		return false, nil
	}
	delete(store, id)
	if err := s.save(store); err != nil {
		return false, err
	}
	return true, nil
}

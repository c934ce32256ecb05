package patient

import (
	"context"
	"errors"
	"fmt"
	"sort"

	"github.com/jwalitptl/patient-api/internal/model"
	"github.com/jwalitptl/patient-api/internal/repository"
	apperrors "github.com/jwalitptl/patient-api/pkg/errors"
)

// Valid sort parameters for ListSorted.
var (
	ValidSortFields = []string{"height", "weight", "bmi"}
	ValidSortOrders = []string{"asc", "desc"}
)

type PatientService interface {
	CreatePatient(ctx context.Context, req *model.CreatePatientRequest) (*model.Patient, error)
	GetPatient(ctx context.Context, id string) (*model.Patient, error)
	ListPatients(ctx context.Context) (map[string]*model.Patient, error)
	ListSorted(ctx context.Context, sortBy, order string) ([]*model.Patient, error)
	UpdatePatient(ctx context.Context, id string, req *model.UpdatePatientRequest) (*model.Patient, error)
	DeletePatient(ctx context.Context, id string) error
}

type Service struct {
	repo repository.PatientRepository
}

func NewService(repo repository.PatientRepository) *Service {
	return &Service{repo: repo}
}

func (s *Service) CreatePatient(ctx context.Context, req *model.CreatePatientRequest) (*model.Patient, error) {
	patient, err := model.NewPatient(req)
	if err != nil {
		return nil, err
	}

	if _, err := s.repo.Get(ctx, patient.ID); err == nil {
		return nil, apperrors.NewConflict("patient already exists", nil)
	} else if !errors.Is(err, repository.ErrNotFound) {
		return nil, fmt.Errorf("failed to check for existing patient: %w", err)
	}

	if err := s.repo.Put(ctx, patient); err != nil {
		return nil, fmt.Errorf("failed to create patient: %w", err)
	}
	return patient, nil
}

func (s *Service) GetPatient(ctx context.Context, id string) (*model.Patient, error) {
	patient, err := s.repo.Get(ctx, id)
	if err != nil {
		if errors.Is(err, repository.ErrNotFound) {
			return nil, apperrors.NewNotFound("patient", err)
		}
		return nil, fmt.Errorf("failed to get patient: %w", err)
	}
	return patient, nil
}

func (s *Service) ListPatients(ctx context.Context) (map[string]*model.Patient, error) {
	store, err := s.repo.List(ctx)
	if err != nil {
		return nil, fmt.Errorf("failed to list patients: %w", err)
	}
	return store, nil
}

// ListSorted returns all records ordered by the numeric value of the
// requested field. Ordering is stable over the store's id order, so
// ties keep a deterministic sequence.
func (s *Service) ListSorted(ctx context.Context, sortBy, order string) ([]*model.Patient, error) {
	if !contains(ValidSortFields, sortBy) {
		return nil, apperrors.NewBadRequest(
			fmt.Sprintf("invalid sort field, select from %v", ValidSortFields), nil)
	}
	if !contains(ValidSortOrders, order) {
		return nil, apperrors.NewBadRequest(
			fmt.Sprintf("invalid order, select from %v", ValidSortOrders), nil)
	}

	store, err := s.repo.List(ctx)
	if err != nil {
		return nil, fmt.Errorf("failed to list patients: %w", err)
	}

	patients := make([]*model.Patient, 0, len(store))
	for _, id := range sortedIDs(store) {
		patients = append(patients, store[id])
	}

	desc := order == "desc"
	sort.SliceStable(patients, func(i, j int) bool {
		a, b := patients[i].SortField(sortBy), patients[j].SortField(sortBy)
		if desc {
			return a > b
		}
		return a < b
	})
	return patients, nil
}

func (s *Service) UpdatePatient(ctx context.Context, id string, req *model.UpdatePatientRequest) (*model.Patient, error) {
	existing, err := s.repo.Get(ctx, id)
	if err != nil {
		if errors.Is(err, repository.ErrNotFound) {
			return nil, apperrors.NewNotFound("patient", err)
		}
		return nil, fmt.Errorf("failed to get patient: %w", err)
	}

	merged := *existing
	req.Apply(&merged)
	merged.ID = id

	if err := merged.Validate(); err != nil {
		return nil, err
	}
	merged.BMI, merged.Verdict = model.DeriveMetrics(merged.Height, merged.Weight)

	if err := s.repo.Put(ctx, &merged); err != nil {
		return nil, fmt.Errorf("failed to update patient: %w", err)
	}
	return &merged, nil
}

func (s *Service) DeletePatient(ctx context.Context, id string) error {
	existed, err := s.repo.Delete(ctx, id)
	if err != nil {
		return fmt.Errorf("failed to delete patient: %w", err)
	}
	if !existed {
		return apperrors.NewNotFound("patient", nil)
	}
	return nil
}

func sortedIDs(store map[string]*model.Patient) []string {
	ids := make([]string, 0, len(store))
	for id := range store {
		ids = append(ids, id)
	}
	sort.Strings(ids)
	return ids
}

func contains(values []string, v string) bool {
	for _, value := range values {
		if value == v {
			return true
		}
	}
	return false
}

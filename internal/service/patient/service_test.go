package patient

import (
	"context"
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/jwalitptl/patient-api/internal/model"
	"github.com/jwalitptl/patient-api/internal/repository/jsonfile"
	apperrors "github.com/jwalitptl/patient-api/pkg/errors"
)

func newTestService(t *testing.T) *Service {
	t.Helper()
	store := jsonfile.NewStore(filepath.Join(t.TempDir(), "patients.json"))
	return NewService(store)
}

func createRequest(id string, height, weight float64) *model.CreatePatientRequest {
	return &model.CreatePatientRequest{
		ID:     id,
		Name:   "Meera",
		Gender: model.GenderFemale,
		City:   "Mumbai",
		Age:    28,
		Height: height,
		Weight: weight,
	}
}

func TestCreatePatient(t *testing.T) {
	svc := newTestService(t)
	ctx := context.Background()

	p, err := svc.CreatePatient(ctx, createRequest("P001", 1.65, 60))
	require.NoError(t, err)
	assert.Equal(t, 22.04, p.BMI)
	assert.Equal(t, model.VerdictNormal, p.Verdict)

	stored, err := svc.GetPatient(ctx, "P001")
	require.NoError(t, err)
	assert.Equal(t, p, stored)
}

func TestCreateDuplicateLeavesExistingUnchanged(t *testing.T) {
	svc := newTestService(t)
	ctx := context.Background()

	_, err := svc.CreatePatient(ctx, createRequest("P001", 1.65, 60))
	require.NoError(t, err)

	_, err = svc.CreatePatient(ctx, createRequest("P001", 1.80, 90))
	require.Error(t, err)
	appErr, ok := err.(*apperrors.AppError)
	require.True(t, ok)
	assert.Equal(t, apperrors.ErrConflict, appErr.Code)

	stored, err := svc.GetPatient(ctx, "P001")
	require.NoError(t, err)
	assert.Equal(t, 1.65, stored.Height)
	assert.Equal(t, 60.0, stored.Weight)
}

func TestUpdateUnknownIDDoesNotCreate(t *testing.T) {
	svc := newTestService(t)
	ctx := context.Background()

	name := "Nobody"
	_, err := svc.UpdatePatient(ctx, "ghost", &model.UpdatePatientRequest{Name: &name})
	require.Error(t, err)
	appErr, ok := err.(*apperrors.AppError)
	require.True(t, ok)
	assert.Equal(t, apperrors.ErrNotFound, appErr.Code)

	store, err := svc.ListPatients(ctx)
	require.NoError(t, err)
	assert.Empty(t, store)
}

func TestPartialUpdatePreservesFieldsAndRecomputes(t *testing.T) {
	svc := newTestService(t)
	ctx := context.Background()

	_, err := svc.CreatePatient(ctx, createRequest("P001", 1.65, 60))
	require.NoError(t, err)

	weight := 85.0
	updated, err := svc.UpdatePatient(ctx, "P001", &model.UpdatePatientRequest{Weight: &weight})
	require.NoError(t, err)

	// Unnamed fields untouched.
	assert.Equal(t, "Meera", updated.Name)
	assert.Equal(t, "Mumbai", updated.City)
	assert.Equal(t, 28, updated.Age)
	assert.Equal(t, 1.65, updated.Height)

	// Derived fields recomputed from the merged record.
	wantBMI, wantVerdict := model.DeriveMetrics(1.65, 85)
	assert.Equal(t, wantBMI, updated.BMI)
	assert.Equal(t, wantVerdict, updated.Verdict)
}

func TestUpdateRevalidatesMergedRecord(t *testing.T) {
	svc := newTestService(t)
	ctx := context.Background()

	_, err := svc.CreatePatient(ctx, createRequest("P001", 1.65, 60))
	require.NoError(t, err)

	age := 200
	_, err = svc.UpdatePatient(ctx, "P001", &model.UpdatePatientRequest{Age: &age})
	require.Error(t, err)
	appErr, ok := err.(*apperrors.AppError)
	require.True(t, ok)
	assert.Equal(t, apperrors.ErrValidation, appErr.Code)

	// Failed update leaves the record as it was.
	stored, err := svc.GetPatient(ctx, "P001")
	require.NoError(t, err)
	assert.Equal(t, 28, stored.Age)
}

func TestDeletePatient(t *testing.T) {
	svc := newTestService(t)
	ctx := context.Background()

	_, err := svc.CreatePatient(ctx, createRequest("P001", 1.65, 60))
	require.NoError(t, err)

	require.NoError(t, svc.DeletePatient(ctx, "P001"))

	_, err = svc.GetPatient(ctx, "P001")
	require.Error(t, err)
}

func TestDeleteUnknownIDReturnsNotFound(t *testing.T) {
	svc := newTestService(t)

	err := svc.DeletePatient(context.Background(), "ghost")
	require.Error(t, err)
	appErr, ok := err.(*apperrors.AppError)
	require.True(t, ok)
	assert.Equal(t, apperrors.ErrNotFound, appErr.Code)
}

func TestListSorted(t *testing.T) {
	svc := newTestService(t)
	ctx := context.Background()

	_, err := svc.CreatePatient(ctx, createRequest("P1", 1.60, 95)) // bmi 37.11
	require.NoError(t, err)
	_, err = svc.CreatePatient(ctx, createRequest("P2", 1.80, 55)) // bmi 16.98
	require.NoError(t, err)
	_, err = svc.CreatePatient(ctx, createRequest("P3", 1.75, 70)) // bmi 22.86
	require.NoError(t, err)

	asc, err := svc.ListSorted(ctx, "bmi", "asc")
	require.NoError(t, err)
	require.Len(t, asc, 3)
	assert.Equal(t, []string{"P2", "P3", "P1"}, ids(asc))

	desc, err := svc.ListSorted(ctx, "bmi", "desc")
	require.NoError(t, err)
	assert.Equal(t, []string{"P1", "P3", "P2"}, ids(desc))

	byHeight, err := svc.ListSorted(ctx, "height", "asc")
	require.NoError(t, err)
	assert.Equal(t, []string{"P1", "P3", "P2"}, ids(byHeight))
}

func TestListSortedTiesAreStable(t *testing.T) {
	svc := newTestService(t)
	ctx := context.Background()

	_, err := svc.CreatePatient(ctx, createRequest("P2", 1.70, 70))
	require.NoError(t, err)
	_, err = svc.CreatePatient(ctx, createRequest("P1", 1.70, 70))
	require.NoError(t, err)

	sorted, err := svc.ListSorted(ctx, "height", "asc")
	require.NoError(t, err)
	// Equal keys keep the store's id order.
	assert.Equal(t, []string{"P1", "P2"}, ids(sorted))
}

func TestListSortedInvalidField(t *testing.T) {
	svc := newTestService(t)

	_, err := svc.ListSorted(context.Background(), "name", "asc")
	require.Error(t, err)
	appErr, ok := err.(*apperrors.AppError)
	require.True(t, ok)
	assert.Equal(t, apperrors.ErrBadRequest, appErr.Code)
	assert.Contains(t, appErr.Message, "height")
	assert.Contains(t, appErr.Message, "weight")
	assert.Contains(t, appErr.Message, "bmi")
}

func TestListSortedInvalidOrder(t *testing.T) {
	svc := newTestService(t)

	_, err := svc.ListSorted(context.Background(), "bmi", "sideways")
	require.Error(t, err)
	appErr, ok := err.(*apperrors.AppError)
	require.True(t, ok)
	assert.Equal(t, apperrors.ErrBadRequest, appErr.Code)
}

func ids(patients []*model.Patient) []string {
	out := make([]string, len(patients))
	for i, p := range patients {
		out[i] = p.ID
	}
	return out
}

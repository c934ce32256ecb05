package model

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	apperrors "github.com/jwalitptl/patient-api/pkg/errors"
)

func TestDeriveMetrics(t *testing.T) {
	tests := []struct {
		name        string
		height      float64
		weight      float64
		wantBMI     float64
		wantVerdict string
	}{
		{"underweight", 1.80, 55, 16.98, VerdictUnderweight},
		{"normal", 1.75, 70, 22.86, VerdictNormal},
		{"overweight", 1.70, 80, 27.68, VerdictOverweight},
		{"obese", 1.60, 95, 37.11, VerdictObese},
		// Boundary values land in the higher bracket.
		{"exactly 18.5 is normal", 2.0, 74, 18.5, VerdictNormal},
		{"exactly 25 is overweight", 2.0, 100, 25, VerdictOverweight},
		{"exactly 30 is obese", 2.0, 120, 30, VerdictObese},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			bmi, verdict := DeriveMetrics(tt.height, tt.weight)
			assert.Equal(t, tt.wantBMI, bmi)
			assert.Equal(t, tt.wantVerdict, verdict)
		})
	}
}

func TestDeriveMetricsRounding(t *testing.T) {
	// 68 / 1.73^2 = 22.7204... -> 22.72
	bmi, _ := DeriveMetrics(1.73, 68)
	assert.Equal(t, 22.72, bmi)
}

func validCreateRequest() *CreatePatientRequest {
	return &CreatePatientRequest{
		ID:     "P001",
		Name:   "Ananya",
		Gender: GenderFemale,
		City:   "Pune",
		Age:    30,
		Height: 1.65,
		Weight: 60,
	}
}

func TestNewPatient(t *testing.T) {
	p, err := NewPatient(validCreateRequest())
	require.NoError(t, err)
	assert.Equal(t, "P001", p.ID)
	assert.Equal(t, 22.04, p.BMI)
	assert.Equal(t, VerdictNormal, p.Verdict)
}

func TestNewPatientValidation(t *testing.T) {
	tests := []struct {
		name      string
		mutate    func(*CreatePatientRequest)
		wantField string
	}{
		{"missing id", func(r *CreatePatientRequest) { r.ID = "" }, "id"},
		{"missing name", func(r *CreatePatientRequest) { r.Name = "" }, "name"},
		{"missing city", func(r *CreatePatientRequest) { r.City = "" }, "city"},
		{"invalid gender", func(r *CreatePatientRequest) { r.Gender = "unknown" }, "gender"},
		{"zero age", func(r *CreatePatientRequest) { r.Age = 0 }, "age"},
		{"negative age", func(r *CreatePatientRequest) { r.Age = -5 }, "age"},
		{"age at upper bound", func(r *CreatePatientRequest) { r.Age = 120 }, "age"},
		{"zero height", func(r *CreatePatientRequest) { r.Height = 0 }, "height"},
		{"zero weight", func(r *CreatePatientRequest) { r.Weight = 0 }, "weight"},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			req := validCreateRequest()
			tt.mutate(req)

			_, err := NewPatient(req)
			require.Error(t, err)

			appErr, ok := err.(*apperrors.AppError)
			require.True(t, ok)
			assert.Equal(t, apperrors.ErrValidation, appErr.Code)
			assert.Contains(t, appErr.Fields, tt.wantField)
		})
	}
}

func TestNewPatientListsAllOffendingFields(t *testing.T) {
	req := validCreateRequest()
	req.Age = 150
	req.Height = -1

	_, err := NewPatient(req)
	require.Error(t, err)

	appErr, ok := err.(*apperrors.AppError)
	require.True(t, ok)
	assert.Contains(t, appErr.Fields, "age")
	assert.Contains(t, appErr.Fields, "height")
}

func TestUpdateApplyMergesOnlySetFields(t *testing.T) {
	p, err := NewPatient(validCreateRequest())
	require.NoError(t, err)

	weight := 80.0
	update := &UpdatePatientRequest{Weight: &weight}
	update.Apply(p)

	assert.Equal(t, "Ananya", p.Name)
	assert.Equal(t, GenderFemale, p.Gender)
	assert.Equal(t, "Pune", p.City)
	assert.Equal(t, 30, p.Age)
	assert.Equal(t, 1.65, p.Height)
	assert.Equal(t, 80.0, p.Weight)
}

func TestSortField(t *testing.T) {
	p := &Patient{Height: 1.7, Weight: 65, BMI: 22.49}
	assert.Equal(t, 1.7, p.SortField("height"))
	assert.Equal(t, 65.0, p.SortField("weight"))
	assert.Equal(t, 22.49, p.SortField("bmi"))
	assert.Equal(t, 0.0, p.SortField("name"))
}

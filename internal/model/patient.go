package model

import (
	"math"
	"reflect"
	"strings"

	"github.com/go-playground/validator/v10"

	apperrors "github.com/jwalitptl/patient-api/pkg/errors"
)

type Gender string

const (
	GenderMale   Gender = "male"
	GenderFemale Gender = "female"
	GenderOther  Gender = "other"
)

// Verdict values, derived from BMI.
const (
	VerdictUnderweight = "underweight"
	VerdictNormal      = "normal"
	VerdictOverweight  = "overweight"
	VerdictObese       = "obese"
)

// Patient is the stored record. BMI and Verdict are derived from
// height and weight at write time and persisted alongside the inputs;
// they are never accepted from callers.
type Patient struct {
	ID      string  `json:"id" validate:"required"`
	Name    string  `json:"name" validate:"required"`
	Gender  Gender  `json:"gender" validate:"required,oneof=male female other"`
	City    string  `json:"city" validate:"required"`
	Age     int     `json:"age" validate:"required,gt=0,lt=120"`
	Height  float64 `json:"height" validate:"required,gt=0"`
	Weight  float64 `json:"weight" validate:"required,gt=0"`
	BMI     float64 `json:"bmi"`
	Verdict string  `json:"verdict"`
}

// CreatePatientRequest is the create body. It deliberately has no
// bmi/verdict fields so callers cannot override the computed values.
type CreatePatientRequest struct {
	ID     string  `json:"id"`
	Name   string  `json:"name"`
	Gender Gender  `json:"gender"`
	City   string  `json:"city"`
	Age    int     `json:"age"`
	Height float64 `json:"height"`
	Weight float64 `json:"weight"`
}

// UpdatePatientRequest is a partial update body; nil fields are left
// untouched on the stored record. The id is not mutable.
type UpdatePatientRequest struct {
	Name   *string  `json:"name"`
	Gender *Gender  `json:"gender"`
	City   *string  `json:"city"`
	Age    *int     `json:"age"`
	Height *float64 `json:"height"`
	Weight *float64 `json:"weight"`
}

var validate = newValidator()

func newValidator() *validator.Validate {
	v := validator.New()
	// Report json field names in validation errors.
	v.RegisterTagNameFunc(func(fld reflect.StructField) string {
		name := strings.SplitN(fld.Tag.Get("json"), ",", 2)[0]
		if name == "-" {
			return ""
		}
		return name
	})
	return v
}

// NewPatient validates the request and constructs a record with
// derived fields computed.
func NewPatient(req *CreatePatientRequest) (*Patient, error) {
	p := &Patient{
		ID:     req.ID,
		Name:   req.Name,
		Gender: req.Gender,
		City:   req.City,
		Age:    req.Age,
		Height: req.Height,
		Weight: req.Weight,
	}
	if err := p.Validate(); err != nil {
		return nil, err
	}
	p.BMI, p.Verdict = DeriveMetrics(p.Height, p.Weight)
	return p, nil
}

// Validate checks required fields, ranges and the gender enum,
// returning a validation error listing the offending fields.
func (p *Patient) Validate() error {
	if err := validate.Struct(p); err != nil {
		if verrs, ok := err.(validator.ValidationErrors); ok {
			fields := make([]string, 0, len(verrs))
			for _, fe := range verrs {
				fields = append(fields, fe.Field())
			}
			return apperrors.NewValidation(fields, err)
		}
		return apperrors.NewBadRequest("invalid patient record", err)
	}
	return nil
}

// Apply merges the non-nil fields onto the record. Derived fields are
// not recomputed here; callers revalidate and recompute afterwards.
func (u *UpdatePatientRequest) Apply(p *Patient) {
	if u.Name != nil {
		p.Name = *u.Name
	}
	if u.Gender != nil {
		p.Gender = *u.Gender
	}
	if u.City != nil {
		p.City = *u.City
	}
	if u.Age != nil {
		p.Age = *u.Age
	}
	if u.Height != nil {
		p.Height = *u.Height
	}
	if u.Weight != nil {
		p.Weight = *u.Weight
	}
}

// DeriveMetrics computes BMI (rounded to two decimals) and its
// categorical verdict from height in meters and weight in kg.
func DeriveMetrics(height, weight float64) (bmi float64, verdict string) {
	bmi = math.Round(weight/(height*height)*100) / 100
	switch {
	case bmi < 18.5:
		verdict = VerdictUnderweight
	case bmi < 25:
		verdict = VerdictNormal
	case bmi < 30:
		verdict = VerdictOverweight
	default:
		verdict = VerdictObese
	}
	return bmi, verdict
}

// SortField selects the numeric value used for ordering. Unknown
// fields sort as zero, matching how absent values are treated.
func (p *Patient) SortField(name string) float64 {
	switch name {
	case "height":
		return p.Height
	case "weight":
		return p.Weight
	case "bmi":
		return p.BMI
	default:
		return 0
	}
}

// Package profile holds the student profile: the enumerated required fields,
// the pure completion evaluator, and the service that keeps the cached
// completion percentage in lockstep with the field values.
package profile

import (
	"time"

	id "admitly/pkg/domain"
)

// Field names a profile attribute. The canonical schema below is the single
// source of truth shared by validation, persistence, and the evaluator.
type Field string

const (
	FieldDateOfBirth        Field = "date_of_birth"
	FieldNationality        Field = "nationality"
	FieldAddress            Field = "address"
	FieldEducationLevel     Field = "education_level"
	FieldCurrentInstitution Field = "current_institution"
	FieldMajor              Field = "major"
	FieldGPA                Field = "gpa"
	FieldEnglishLevel       Field = "english_level"
)

// RequiredFields is the canonical ordered schema. The order is load-bearing:
// the evaluator reports missing fields in exactly this order.
var RequiredFields = []Field{
	FieldDateOfBirth,
	FieldNationality,
	FieldAddress,
	FieldEducationLevel,
	FieldCurrentInstitution,
	FieldMajor,
	FieldGPA,
	FieldEnglishLevel,
}

// StudentProfile is one-per-user, created on first save. The cached
// CompletionPercentage is derived: it always equals Evaluate over the current
// field values and is recomputed on every write, never hand-set.
type StudentProfile struct {
	OwnerID            id.UserID
	DateOfBirth        string
	Nationality        string
	Address            string
	EducationLevel     string
	CurrentInstitution string
	Major              string
	GPA                string
	EnglishLevel       string

	WorkExperience    string
	PersonalStatement string

	CompletionPercentage int
	CreatedAt            time.Time
	UpdatedAt            time.Time
}

// requiredValue returns the current value of a required field.
func (p *StudentProfile) requiredValue(f Field) string {
	switch f {
	case FieldDateOfBirth:
		return p.DateOfBirth
	case FieldNationality:
		return p.Nationality
	case FieldAddress:
		return p.Address
	case FieldEducationLevel:
		return p.EducationLevel
	case FieldCurrentInstitution:
		return p.CurrentInstitution
	case FieldMajor:
		return p.Major
	case FieldGPA:
		return p.GPA
	case FieldEnglishLevel:
		return p.EnglishLevel
	default:
		return ""
	}
}

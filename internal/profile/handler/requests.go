package handler

import (
	"strings"

	"admitly/internal/profile"
	dErrors "admitly/pkg/domain-errors"
)

const maxFieldLength = 2000

// UpsertProfileRequest is the HTTP request body for POST /student/profile.
type UpsertProfileRequest struct {
	DateOfBirth        string `json:"date_of_birth"`
	Nationality        string `json:"nationality"`
	Address            string `json:"address"`
	EducationLevel     string `json:"education_level"`
	CurrentInstitution string `json:"current_institution"`
	Major              string `json:"major"`
	GPA                string `json:"gpa"`
	EnglishLevel       string `json:"english_level"`
	WorkExperience     string `json:"work_experience"`
	PersonalStatement  string `json:"personal_statement"`
}

// Validate normalizes the request. Partial profiles are legal; the whole
// point of the completion endpoint is telling the student what is missing.
func (r *UpsertProfileRequest) Validate() error {
	fields := []*string{
		&r.DateOfBirth, &r.Nationality, &r.Address, &r.EducationLevel,
		&r.CurrentInstitution, &r.Major, &r.GPA, &r.EnglishLevel,
		&r.WorkExperience, &r.PersonalStatement,
	}
	for _, f := range fields {
		*f = strings.TrimSpace(*f)
		if len(*f) > maxFieldLength {
			return dErrors.New(dErrors.CodeValidation, "profile field exceeds maximum length")
		}
	}
	return nil
}

// ToInput converts the request into the service input.
func (r *UpsertProfileRequest) ToInput() profile.UpsertInput {
	return profile.UpsertInput{
		DateOfBirth:        r.DateOfBirth,
		Nationality:        r.Nationality,
		Address:            r.Address,
		EducationLevel:     r.EducationLevel,
		CurrentInstitution: r.CurrentInstitution,
		Major:              r.Major,
		GPA:                r.GPA,
		EnglishLevel:       r.EnglishLevel,
		WorkExperience:     r.WorkExperience,
		PersonalStatement:  r.PersonalStatement,
	}
}

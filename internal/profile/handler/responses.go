package handler

import (
	"time"

	"admitly/internal/profile"
)

// ProfileResponse is the HTTP representation of a student profile.
type ProfileResponse struct {
	OwnerID              string    `json:"owner_id"`
	DateOfBirth          string    `json:"date_of_birth"`
	Nationality          string    `json:"nationality"`
	Address              string    `json:"address"`
	EducationLevel       string    `json:"education_level"`
	CurrentInstitution   string    `json:"current_institution"`
	Major                string    `json:"major"`
	GPA                  string    `json:"gpa"`
	EnglishLevel         string    `json:"english_level"`
	WorkExperience       string    `json:"work_experience"`
	PersonalStatement    string    `json:"personal_statement"`
	CompletionPercentage int       `json:"completion_percentage"`
	UpdatedAt            time.Time `json:"updated_at"`
}

// FromProfile maps the domain model onto the response.
func FromProfile(p *profile.StudentProfile) ProfileResponse {
	return ProfileResponse{
		OwnerID:              p.OwnerID.String(),
		DateOfBirth:          p.DateOfBirth,
		Nationality:          p.Nationality,
		Address:              p.Address,
		EducationLevel:       p.EducationLevel,
		CurrentInstitution:   p.CurrentInstitution,
		Major:                p.Major,
		GPA:                  p.GPA,
		EnglishLevel:         p.EnglishLevel,
		WorkExperience:       p.WorkExperience,
		PersonalStatement:    p.PersonalStatement,
		CompletionPercentage: p.CompletionPercentage,
		UpdatedAt:            p.UpdatedAt,
	}
}

// CompletionResponse is the HTTP representation of the submission-gate
// status.
type CompletionResponse struct {
	Percentage      int      `json:"percentage"`
	Missing         []string `json:"missing"`
	BlockingReasons []string `json:"blocking_reasons"`
}

// FromCompletion maps the completion status onto the response.
func FromCompletion(c profile.CompletionStatus) CompletionResponse {
	return CompletionResponse{
		Percentage:      c.Percentage,
		Missing:         profile.FieldNames(c.Missing),
		BlockingReasons: c.BlockingReasons,
	}
}

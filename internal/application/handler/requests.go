package handler

import (
	"strings"

	"admitly/internal/application"
	id "admitly/pkg/domain"
	dErrors "admitly/pkg/domain-errors"
)

const maxFreeTextLength = 10000

// CreateApplicationRequest is the HTTP request body for POST /applications.
type CreateApplicationRequest struct {
	CourseID string `json:"course_id"`

	parsedCourseID id.CourseID
}

func (r *CreateApplicationRequest) Validate() error {
	r.CourseID = strings.TrimSpace(r.CourseID)
	if r.CourseID == "" {
		return dErrors.New(dErrors.CodeValidation, "course_id is required")
	}
	courseID, err := id.ParseCourseID(r.CourseID)
	if err != nil {
		return dErrors.New(dErrors.CodeValidation, "course_id must be a valid UUID")
	}
	r.parsedCourseID = courseID
	return nil
}

func (r *CreateApplicationRequest) ParsedCourseID() id.CourseID { return r.parsedCourseID }

// UpdateDraftRequest is the HTTP request body for PATCH /applications/{id}.
// Absent fields are left untouched; present fields are replaced, including
// with the empty string.
type UpdateDraftRequest struct {
	PersonalStatement *string `json:"personal_statement"`
	DateOfBirth       *string `json:"date_of_birth"`
	Nationality       *string `json:"nationality"`
	AdditionalInfo    *string `json:"additional_info"`
}

func (r *UpdateDraftRequest) Validate() error {
	for _, f := range []*string{r.PersonalStatement, r.DateOfBirth, r.Nationality, r.AdditionalInfo} {
		if f != nil && len(*f) > maxFreeTextLength {
			return dErrors.New(dErrors.CodeValidation, "field exceeds maximum length")
		}
	}
	if r.PersonalStatement == nil && r.DateOfBirth == nil && r.Nationality == nil && r.AdditionalInfo == nil {
		return dErrors.New(dErrors.CodeValidation, "at least one field is required")
	}
	return nil
}

// ToPatch converts the request into the service patch.
func (r *UpdateDraftRequest) ToPatch() application.DraftPatch {
	return application.DraftPatch{
		PersonalStatement: r.PersonalStatement,
		DateOfBirth:       r.DateOfBirth,
		Nationality:       r.Nationality,
		AdditionalInfo:    r.AdditionalInfo,
	}
}

// ReviewRequest is the HTTP request body for PATCH /applications/{id}/status.
type ReviewRequest struct {
	Status     string `json:"status"`
	AdminNotes string `json:"admin_notes"`

	parsedStatus application.Status
}

func (r *ReviewRequest) Validate() error {
	r.Status = strings.TrimSpace(r.Status)
	if r.Status == "" {
		return dErrors.New(dErrors.CodeValidation, "status is required")
	}
	status, err := application.ParseStatus(r.Status)
	if err != nil {
		return err
	}
	r.parsedStatus = status

	if len(r.AdminNotes) > maxFreeTextLength {
		return dErrors.New(dErrors.CodeValidation, "admin_notes exceeds maximum length")
	}
	return nil
}

// ToInput converts the request into the service input.
func (r *ReviewRequest) ToInput() application.ReviewInput {
	return application.ReviewInput{
		Status:     r.parsedStatus,
		AdminNotes: r.AdminNotes,
	}
}

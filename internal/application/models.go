// Package application implements the course-application lifecycle: creation,
// draft editing, the gated submission, and staff review transitions.
package application

import (
	"time"

	id "admitly/pkg/domain"
	dErrors "admitly/pkg/domain-errors"
)

// Status is the application lifecycle state. Stored as a fixed enumeration,
// never free text.
type Status string

const (
	StatusDraft       Status = "DRAFT"
	StatusSubmitted   Status = "SUBMITTED"
	StatusUnderReview Status = "UNDER_REVIEW"
	StatusAccepted    Status = "ACCEPTED"
	StatusRejected    Status = "REJECTED"
	StatusWaitlisted  Status = "WAITLISTED"
)

// ParseStatus validates a status string from an untrusted source.
func ParseStatus(raw string) (Status, error) {
	switch Status(raw) {
	case StatusDraft, StatusSubmitted, StatusUnderReview, StatusAccepted, StatusRejected, StatusWaitlisted:
		return Status(raw), nil
	default:
		return "", dErrors.New(dErrors.CodeValidation, "unknown status: "+raw)
	}
}

// Terminal reports whether the status ends the lifecycle. WAITLISTED is not
// terminal: staff may revise it to another decision.
func (s Status) Terminal() bool {
	return s == StatusAccepted || s == StatusRejected
}

// Reviewable reports whether staff may act on an application in this status.
func (s Status) Reviewable() bool {
	return s == StatusSubmitted || s == StatusUnderReview || s == StatusWaitlisted
}

// validReviewTarget reports whether target is a status staff may move an
// application into. DRAFT is never a review target.
func validReviewTarget(target Status) bool {
	switch target {
	case StatusUnderReview, StatusAccepted, StatusRejected, StatusWaitlisted:
		return true
	default:
		return false
	}
}

// Application is a student's request to enroll in a course. Exactly one
// non-deleted application exists per (owner, course) pair; the stores enforce
// that with a uniqueness constraint rather than a read-then-write check.
type Application struct {
	ID       id.ApplicationID
	OwnerID  id.UserID
	CourseID id.CourseID
	Status   Status

	PersonalStatement string
	DateOfBirth       string
	Nationality       string
	AdditionalInfo    string

	SubmittedAt  *time.Time
	ReviewedAt   *time.Time
	ReviewedByID *id.UserID
	AdminNotes   string

	CreatedAt time.Time
	UpdatedAt time.Time
}

// hasMinimumContent checks the application-level submission gate: the draft
// itself must carry date of birth, nationality and a personal statement.
func (a *Application) hasMinimumContent() bool {
	return a.DateOfBirth != "" && a.Nationality != "" && a.PersonalStatement != ""
}

// DraftPatch updates free-form fields of a DRAFT application. Nil fields are
// left untouched. Status, submission and review attribution are deliberately
// not representable here.
type DraftPatch struct {
	PersonalStatement *string
	DateOfBirth       *string
	Nationality       *string
	AdditionalInfo    *string
}

func (p DraftPatch) apply(a *Application) {
	if p.PersonalStatement != nil {
		a.PersonalStatement = *p.PersonalStatement
	}
	if p.DateOfBirth != nil {
		a.DateOfBirth = *p.DateOfBirth
	}
	if p.Nationality != nil {
		a.Nationality = *p.Nationality
	}
	if p.AdditionalInfo != nil {
		a.AdditionalInfo = *p.AdditionalInfo
	}
}

// Package domain holds the identifier and identity types shared across all
// verticals. Distinct ID types keep a course ID from ever being passed where
// an application ID is expected.
package domain

import (
	"github.com/google/uuid"

	dErrors "admitly/pkg/domain-errors"
)

type (
	UserID        uuid.UUID
	ApplicationID uuid.UUID
	DocumentID    uuid.UUID
	CourseID      uuid.UUID
)

func NewUserID() UserID               { return UserID(uuid.New()) }
func NewApplicationID() ApplicationID { return ApplicationID(uuid.New()) }
func NewDocumentID() DocumentID       { return DocumentID(uuid.New()) }
func NewCourseID() CourseID           { return CourseID(uuid.New()) }

func (id UserID) String() string        { return uuid.UUID(id).String() }
func (id ApplicationID) String() string { return uuid.UUID(id).String() }
func (id DocumentID) String() string    { return uuid.UUID(id).String() }
func (id CourseID) String() string      { return uuid.UUID(id).String() }

func (id UserID) IsZero() bool        { return uuid.UUID(id) == uuid.Nil }
func (id ApplicationID) IsZero() bool { return uuid.UUID(id) == uuid.Nil }
func (id DocumentID) IsZero() bool    { return uuid.UUID(id) == uuid.Nil }
func (id CourseID) IsZero() bool      { return uuid.UUID(id) == uuid.Nil }

// The IDs travel as canonical UUID strings in JSON payloads (notification
// events, anything else that marshals them directly). Defined types do not
// inherit uuid.UUID's marshaling, so each implements encoding.TextMarshaler
// and TextUnmarshaler explicitly.

func (id UserID) MarshalText() ([]byte, error)        { return []byte(id.String()), nil }
func (id ApplicationID) MarshalText() ([]byte, error) { return []byte(id.String()), nil }
func (id DocumentID) MarshalText() ([]byte, error)    { return []byte(id.String()), nil }
func (id CourseID) MarshalText() ([]byte, error)      { return []byte(id.String()), nil }

func (id *UserID) UnmarshalText(text []byte) error {
	parsed, err := ParseUserID(string(text))
	if err != nil {
		return err
	}
	*id = parsed
	return nil
}

func (id *ApplicationID) UnmarshalText(text []byte) error {
	parsed, err := ParseApplicationID(string(text))
	if err != nil {
		return err
	}
	*id = parsed
	return nil
}

func (id *DocumentID) UnmarshalText(text []byte) error {
	parsed, err := ParseDocumentID(string(text))
	if err != nil {
		return err
	}
	*id = parsed
	return nil
}

func (id *CourseID) UnmarshalText(text []byte) error {
	parsed, err := ParseCourseID(string(text))
	if err != nil {
		return err
	}
	*id = parsed
	return nil
}

// Parse helpers validate IDs arriving from URLs and token claims.

func ParseUserID(raw string) (UserID, error) {
	u, err := uuid.Parse(raw)
	if err != nil {
		return UserID{}, dErrors.New(dErrors.CodeInvalidInput, "invalid user id")
	}
	return UserID(u), nil
}

func ParseApplicationID(raw string) (ApplicationID, error) {
	u, err := uuid.Parse(raw)
	if err != nil {
		return ApplicationID{}, dErrors.New(dErrors.CodeInvalidInput, "invalid application id")
	}
	return ApplicationID(u), nil
}

func ParseDocumentID(raw string) (DocumentID, error) {
	u, err := uuid.Parse(raw)
	if err != nil {
		return DocumentID{}, dErrors.New(dErrors.CodeInvalidInput, "invalid document id")
	}
	return DocumentID(u), nil
}

func ParseCourseID(raw string) (CourseID, error) {
	u, err := uuid.Parse(raw)
	if err != nil {
		return CourseID{}, dErrors.New(dErrors.CodeInvalidInput, "invalid course id")
	}
	return CourseID(u), nil
}

package handler

import (
	"time"

	"admitly/internal/application"
	"admitly/internal/document"
)

// ApplicationResponse is the HTTP representation of an application.
type ApplicationResponse struct {
	ID       string `json:"id"`
	OwnerID  string `json:"owner_id"`
	CourseID string `json:"course_id"`
	Status   string `json:"status"`

	PersonalStatement string `json:"personal_statement,omitempty"`
	DateOfBirth       string `json:"date_of_birth,omitempty"`
	Nationality       string `json:"nationality,omitempty"`
	AdditionalInfo    string `json:"additional_info,omitempty"`

	SubmittedAt  *time.Time `json:"submitted_at,omitempty"`
	ReviewedAt   *time.Time `json:"reviewed_at,omitempty"`
	ReviewedByID string     `json:"reviewed_by_id,omitempty"`
	AdminNotes   string     `json:"admin_notes,omitempty"`

	CreatedAt time.Time `json:"created_at"`
	UpdatedAt time.Time `json:"updated_at"`

	// Populated only on single-application reads.
	Documents []DocumentResponse `json:"documents,omitempty"`
}

// DocumentResponse is a document record together with its fresh download
// descriptor.
type DocumentResponse struct {
	ID         string    `json:"id"`
	FileName   string    `json:"file_name"`
	FileType   string    `json:"file_type"`
	FileSize   int64     `json:"file_size"`
	UploadedAt time.Time `json:"uploaded_at"`
	URL        string    `json:"url"`
	ExpiresAt  time.Time `json:"expires_at"`
}

// FromApplication maps the domain model onto the response.
func FromApplication(app *application.Application) ApplicationResponse {
	resp := ApplicationResponse{
		ID:                app.ID.String(),
		OwnerID:           app.OwnerID.String(),
		CourseID:          app.CourseID.String(),
		Status:            string(app.Status),
		PersonalStatement: app.PersonalStatement,
		DateOfBirth:       app.DateOfBirth,
		Nationality:       app.Nationality,
		AdditionalInfo:    app.AdditionalInfo,
		SubmittedAt:       app.SubmittedAt,
		ReviewedAt:        app.ReviewedAt,
		AdminNotes:        app.AdminNotes,
		CreatedAt:         app.CreatedAt,
		UpdatedAt:         app.UpdatedAt,
	}
	if app.ReviewedByID != nil {
		resp.ReviewedByID = app.ReviewedByID.String()
	}
	return resp
}

// FromApplicationList maps a list of applications, without documents.
func FromApplicationList(apps []*application.Application) []ApplicationResponse {
	out := make([]ApplicationResponse, 0, len(apps))
	for _, app := range apps {
		out = append(out, FromApplication(app))
	}
	return out
}

// FromDocuments maps document records with descriptors.
func FromDocuments(docs []document.WithDescriptor) []DocumentResponse {
	out := make([]DocumentResponse, 0, len(docs))
	for _, entry := range docs {
		out = append(out, DocumentResponse{
			ID:         entry.Document.ID.String(),
			FileName:   entry.Document.FileName,
			FileType:   entry.Document.FileType,
			FileSize:   entry.Document.FileSize,
			UploadedAt: entry.Document.UploadedAt,
			URL:        entry.Descriptor.URL,
			ExpiresAt:  entry.Descriptor.ExpiresAt,
		})
	}
	return out
}

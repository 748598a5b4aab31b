package application

import (
	"context"
	"database/sql"
	"errors"
	"fmt"
	"time"

	"github.com/google/uuid"
	"github.com/lib/pq"

	id "admitly/pkg/domain"
	"admitly/pkg/platform/sentinel"
)

// uniqueViolation is the Postgres error code raised by the
// (owner_id, course_id) unique index.
const uniqueViolation = "23505"

// PostgresStore persists applications. All transitions are single conditional
// UPDATE statements; RowsAffected distinguishes success from a lost race.
type PostgresStore struct {
	db *sql.DB
}

func NewPostgres(db *sql.DB) *PostgresStore {
	return &PostgresStore{db: db}
}

const applicationColumns = `
	id, owner_id, course_id, status,
	personal_statement, date_of_birth, nationality, additional_info,
	submitted_at, reviewed_at, reviewed_by, admin_notes,
	created_at, updated_at`

func (s *PostgresStore) Create(ctx context.Context, app *Application) error {
	const query = `
		INSERT INTO applications (
			id, owner_id, course_id, status,
			personal_statement, date_of_birth, nationality, additional_info,
			admin_notes, created_at, updated_at
		) VALUES ($1, $2, $3, $4, $5, $6, $7, $8, $9, $10, $11)`

	_, err := s.db.ExecContext(ctx, query,
		uuid.UUID(app.ID),
		uuid.UUID(app.OwnerID),
		uuid.UUID(app.CourseID),
		string(app.Status),
		app.PersonalStatement,
		app.DateOfBirth,
		app.Nationality,
		app.AdditionalInfo,
		app.AdminNotes,
		app.CreatedAt,
		app.UpdatedAt,
	)
	if err != nil {
		var pqErr *pq.Error
		if errors.As(err, &pqErr) && pqErr.Code == uniqueViolation {
			return sentinel.ErrConflict
		}
		return fmt.Errorf("create application: %w", err)
	}
	return nil
}

func (s *PostgresStore) FindByID(ctx context.Context, appID id.ApplicationID) (*Application, error) {
	query := `SELECT ` + applicationColumns + ` FROM applications WHERE id = $1`
	row := s.db.QueryRowContext(ctx, query, uuid.UUID(appID))
	app, err := scanApplication(row)
	if errors.Is(err, sql.ErrNoRows) {
		return nil, sentinel.ErrNotFound
	}
	if err != nil {
		return nil, fmt.Errorf("find application: %w", err)
	}
	return app, nil
}

func (s *PostgresStore) ListByOwner(ctx context.Context, ownerID id.UserID) ([]*Application, error) {
	query := `SELECT ` + applicationColumns + ` FROM applications WHERE owner_id = $1 ORDER BY created_at, id`
	rows, err := s.db.QueryContext(ctx, query, uuid.UUID(ownerID))
	if err != nil {
		return nil, fmt.Errorf("list applications by owner: %w", err)
	}
	defer rows.Close()
	return collectApplications(rows)
}

func (s *PostgresStore) List(ctx context.Context, limit, offset int) ([]*Application, error) {
	query := `SELECT ` + applicationColumns + ` FROM applications ORDER BY created_at, id LIMIT $1 OFFSET $2`
	rows, err := s.db.QueryContext(ctx, query, limit, offset)
	if err != nil {
		return nil, fmt.Errorf("list applications: %w", err)
	}
	defer rows.Close()
	return collectApplications(rows)
}

func (s *PostgresStore) UpdateDraft(ctx context.Context, app *Application) error {
	const query = `
		UPDATE applications SET
			personal_statement = $2,
			date_of_birth = $3,
			nationality = $4,
			additional_info = $5,
			updated_at = $6
		WHERE id = $1 AND status = 'DRAFT'`

	res, err := s.db.ExecContext(ctx, query,
		uuid.UUID(app.ID),
		app.PersonalStatement,
		app.DateOfBirth,
		app.Nationality,
		app.AdditionalInfo,
		app.UpdatedAt,
	)
	if err != nil {
		return fmt.Errorf("update draft: %w", err)
	}
	return staleUnlessOneRow(res)
}

func (s *PostgresStore) Submit(ctx context.Context, appID id.ApplicationID, submittedAt time.Time) error {
	// The content predicates make the gate part of the CAS itself: an edit
	// that blanks a required field between the service's read and this write
	// loses the race instead of landing an empty submission.
	const query = `
		UPDATE applications SET
			status = 'SUBMITTED',
			submitted_at = $2,
			updated_at = $2
		WHERE id = $1 AND status = 'DRAFT'
			AND date_of_birth <> '' AND nationality <> '' AND personal_statement <> ''`

	res, err := s.db.ExecContext(ctx, query, uuid.UUID(appID), submittedAt)
	if err != nil {
		return fmt.Errorf("submit application: %w", err)
	}
	return staleUnlessOneRow(res)
}

func (s *PostgresStore) Review(ctx context.Context, appID id.ApplicationID, expected, target Status, reviewedBy id.UserID, reviewedAt time.Time, adminNotes string) error {
	const query = `
		UPDATE applications SET
			status = $3,
			admin_notes = $4,
			reviewed_by = $5,
			reviewed_at = $6,
			updated_at = $6
		WHERE id = $1 AND status = $2`

	res, err := s.db.ExecContext(ctx, query,
		uuid.UUID(appID),
		string(expected),
		string(target),
		adminNotes,
		uuid.UUID(reviewedBy),
		reviewedAt,
	)
	if err != nil {
		return fmt.Errorf("review application: %w", err)
	}
	return staleUnlessOneRow(res)
}

func (s *PostgresStore) Delete(ctx context.Context, appID id.ApplicationID) error {
	// Document rows go with the application via ON DELETE CASCADE.
	res, err := s.db.ExecContext(ctx, `DELETE FROM applications WHERE id = $1`, uuid.UUID(appID))
	if err != nil {
		return fmt.Errorf("delete application: %w", err)
	}
	n, err := res.RowsAffected()
	if err != nil {
		return fmt.Errorf("delete application: %w", err)
	}
	if n == 0 {
		return sentinel.ErrNotFound
	}
	return nil
}

func staleUnlessOneRow(res sql.Result) error {
	n, err := res.RowsAffected()
	if err != nil {
		return fmt.Errorf("rows affected: %w", err)
	}
	if n == 0 {
		return sentinel.ErrStaleState
	}
	return nil
}

type rowScanner interface {
	Scan(dest ...any) error
}

func scanApplication(row rowScanner) (*Application, error) {
	var (
		app         Application
		appID       uuid.UUID
		ownerID     uuid.UUID
		courseID    uuid.UUID
		status      string
		submittedAt sql.NullTime
		reviewedAt  sql.NullTime
		reviewedBy  uuid.NullUUID
	)
	err := row.Scan(
		&appID,
		&ownerID,
		&courseID,
		&status,
		&app.PersonalStatement,
		&app.DateOfBirth,
		&app.Nationality,
		&app.AdditionalInfo,
		&submittedAt,
		&reviewedAt,
		&reviewedBy,
		&app.AdminNotes,
		&app.CreatedAt,
		&app.UpdatedAt,
	)
	if err != nil {
		return nil, err
	}
	app.ID = id.ApplicationID(appID)
	app.OwnerID = id.UserID(ownerID)
	app.CourseID = id.CourseID(courseID)
	app.Status = Status(status)
	if submittedAt.Valid {
		t := submittedAt.Time
		app.SubmittedAt = &t
	}
	if reviewedAt.Valid {
		t := reviewedAt.Time
		app.ReviewedAt = &t
	}
	if reviewedBy.Valid {
		reviewer := id.UserID(reviewedBy.UUID)
		app.ReviewedByID = &reviewer
	}
	return &app, nil
}

func collectApplications(rows *sql.Rows) ([]*Application, error) {
	var apps []*Application
	for rows.Next() {
		app, err := scanApplication(rows)
		if err != nil {
			return nil, fmt.Errorf("scan application: %w", err)
		}
		apps = append(apps, app)
	}
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("iterate applications: %w", err)
	}
	return apps, nil
}

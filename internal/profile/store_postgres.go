package profile

import (
	"context"
	"database/sql"
	"errors"
	"fmt"

	"github.com/google/uuid"

	id "admitly/pkg/domain"
	"admitly/pkg/platform/sentinel"
)

// PostgresStore persists profiles in the student_profiles table. The upsert
// writes field values and the cached percentage in a single statement, which
// is what keeps the derived value consistent under concurrent writes.
type PostgresStore struct {
	db *sql.DB
}

func NewPostgres(db *sql.DB) *PostgresStore {
	return &PostgresStore{db: db}
}

func (s *PostgresStore) Upsert(ctx context.Context, p *StudentProfile) error {
	const query = `
		INSERT INTO student_profiles (
			owner_id, date_of_birth, nationality, address, education_level,
			current_institution, major, gpa, english_level,
			work_experience, personal_statement,
			completion_percentage, created_at, updated_at
		) VALUES ($1, $2, $3, $4, $5, $6, $7, $8, $9, $10, $11, $12, $13, $14)
		ON CONFLICT (owner_id) DO UPDATE SET
			date_of_birth = EXCLUDED.date_of_birth,
			nationality = EXCLUDED.nationality,
			address = EXCLUDED.address,
			education_level = EXCLUDED.education_level,
			current_institution = EXCLUDED.current_institution,
			major = EXCLUDED.major,
			gpa = EXCLUDED.gpa,
			english_level = EXCLUDED.english_level,
			work_experience = EXCLUDED.work_experience,
			personal_statement = EXCLUDED.personal_statement,
			completion_percentage = EXCLUDED.completion_percentage,
			updated_at = EXCLUDED.updated_at`

	_, err := s.db.ExecContext(ctx, query,
		uuid.UUID(p.OwnerID),
		p.DateOfBirth,
		p.Nationality,
		p.Address,
		p.EducationLevel,
		p.CurrentInstitution,
		p.Major,
		p.GPA,
		p.EnglishLevel,
		p.WorkExperience,
		p.PersonalStatement,
		p.CompletionPercentage,
		p.CreatedAt,
		p.UpdatedAt,
	)
	if err != nil {
		return fmt.Errorf("upsert student profile: %w", err)
	}
	return nil
}

func (s *PostgresStore) FindByOwner(ctx context.Context, ownerID id.UserID) (*StudentProfile, error) {
	const query = `
		SELECT owner_id, date_of_birth, nationality, address, education_level,
		       current_institution, major, gpa, english_level,
		       work_experience, personal_statement,
		       completion_percentage, created_at, updated_at
		FROM student_profiles
		WHERE owner_id = $1`

	var (
		p     StudentProfile
		owner uuid.UUID
	)
	err := s.db.QueryRowContext(ctx, query, uuid.UUID(ownerID)).Scan(
		&owner,
		&p.DateOfBirth,
		&p.Nationality,
		&p.Address,
		&p.EducationLevel,
		&p.CurrentInstitution,
		&p.Major,
		&p.GPA,
		&p.EnglishLevel,
		&p.WorkExperience,
		&p.PersonalStatement,
		&p.CompletionPercentage,
		&p.CreatedAt,
		&p.UpdatedAt,
	)
	if errors.Is(err, sql.ErrNoRows) {
		return nil, sentinel.ErrNotFound
	}
	if err != nil {
		return nil, fmt.Errorf("find student profile: %w", err)
	}
	p.OwnerID = id.UserID(owner)
	return &p, nil
}

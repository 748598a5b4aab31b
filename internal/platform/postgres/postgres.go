// Package postgres opens the database connection and owns the schema.
package postgres

import (
	"context"
	"database/sql"
	"fmt"
	"time"

	_ "github.com/lib/pq"
)

// Open connects to Postgres and verifies the connection.
func Open(ctx context.Context, dsn string) (*sql.DB, error) {
	db, err := sql.Open("postgres", dsn)
	if err != nil {
		return nil, fmt.Errorf("open postgres: %w", err)
	}
	db.SetMaxOpenConns(25)
	db.SetMaxIdleConns(5)
	db.SetConnMaxLifetime(30 * time.Minute)

	pingCtx, cancel := context.WithTimeout(ctx, 5*time.Second)
	defer cancel()
	if err := db.PingContext(pingCtx); err != nil {
		db.Close()
		return nil, fmt.Errorf("ping postgres: %w", err)
	}
	return db, nil
}

// Schema is the full DDL. The unique index on (owner_id, course_id) is what
// closes the duplicate-application race; the documents foreign key cascades
// record deletion with the application.
const Schema = `
CREATE TABLE IF NOT EXISTS student_profiles (
	owner_id              UUID PRIMARY KEY,
	date_of_birth         TEXT NOT NULL DEFAULT '',
	nationality           TEXT NOT NULL DEFAULT '',
	address               TEXT NOT NULL DEFAULT '',
	education_level       TEXT NOT NULL DEFAULT '',
	current_institution   TEXT NOT NULL DEFAULT '',
	major                 TEXT NOT NULL DEFAULT '',
	gpa                   TEXT NOT NULL DEFAULT '',
	english_level         TEXT NOT NULL DEFAULT '',
	work_experience       TEXT NOT NULL DEFAULT '',
	personal_statement    TEXT NOT NULL DEFAULT '',
	completion_percentage INT  NOT NULL DEFAULT 0,
	created_at            TIMESTAMPTZ NOT NULL,
	updated_at            TIMESTAMPTZ NOT NULL
);

CREATE TABLE IF NOT EXISTS applications (
	id                 UUID PRIMARY KEY,
	owner_id           UUID NOT NULL,
	course_id          UUID NOT NULL,
	status             TEXT NOT NULL,
	personal_statement TEXT NOT NULL DEFAULT '',
	date_of_birth      TEXT NOT NULL DEFAULT '',
	nationality        TEXT NOT NULL DEFAULT '',
	additional_info    TEXT NOT NULL DEFAULT '',
	submitted_at       TIMESTAMPTZ,
	reviewed_at        TIMESTAMPTZ,
	reviewed_by        UUID,
	admin_notes        TEXT NOT NULL DEFAULT '',
	created_at         TIMESTAMPTZ NOT NULL,
	updated_at         TIMESTAMPTZ NOT NULL,
	CONSTRAINT applications_owner_course_key UNIQUE (owner_id, course_id)
);

CREATE TABLE IF NOT EXISTS documents (
	id             UUID PRIMARY KEY,
	application_id UUID NOT NULL REFERENCES applications (id) ON DELETE CASCADE,
	file_name      TEXT NOT NULL,
	file_type      TEXT NOT NULL,
	file_size      BIGINT NOT NULL,
	storage_key    TEXT NOT NULL,
	uploaded_at    TIMESTAMPTZ NOT NULL
);

CREATE INDEX IF NOT EXISTS documents_application_id_idx ON documents (application_id);
CREATE INDEX IF NOT EXISTS applications_owner_id_idx ON applications (owner_id);
`

// EnsureSchema applies the DDL. Idempotent; suitable for dev and tests.
func EnsureSchema(ctx context.Context, db *sql.DB) error {
	if _, err := db.ExecContext(ctx, Schema); err != nil {
		return fmt.Errorf("ensure schema: %w", err)
	}
	return nil
}

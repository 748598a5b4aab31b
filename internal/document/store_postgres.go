package document

import (
	"context"
	"database/sql"
	"errors"
	"fmt"

	"github.com/google/uuid"

	id "admitly/pkg/domain"
	"admitly/pkg/platform/sentinel"
)

// PostgresStore persists document records. The documents table carries an
// ON DELETE CASCADE foreign key to applications, so an application delete at
// the database level cannot leave orphaned records; blob cleanup still goes
// through the service.
type PostgresStore struct {
	db *sql.DB
}

func NewPostgres(db *sql.DB) *PostgresStore {
	return &PostgresStore{db: db}
}

const documentColumns = `
	id, application_id, file_name, file_type, file_size, storage_key, uploaded_at`

func (s *PostgresStore) Create(ctx context.Context, doc *Document) error {
	const query = `
		INSERT INTO documents (
			id, application_id, file_name, file_type, file_size, storage_key, uploaded_at
		) VALUES ($1, $2, $3, $4, $5, $6, $7)`

	_, err := s.db.ExecContext(ctx, query,
		uuid.UUID(doc.ID),
		uuid.UUID(doc.ApplicationID),
		doc.FileName,
		doc.FileType,
		doc.FileSize,
		doc.StorageKey,
		doc.UploadedAt,
	)
	if err != nil {
		return fmt.Errorf("insert document: %w", err)
	}
	return nil
}

func (s *PostgresStore) FindByID(ctx context.Context, docID id.DocumentID) (*Document, error) {
	query := `SELECT ` + documentColumns + ` FROM documents WHERE id = $1`

	doc, err := scanDocument(s.db.QueryRowContext(ctx, query, uuid.UUID(docID)))
	if errors.Is(err, sql.ErrNoRows) {
		return nil, sentinel.ErrNotFound
	}
	if err != nil {
		return nil, fmt.Errorf("find document: %w", err)
	}
	return doc, nil
}

func (s *PostgresStore) ListByApplication(ctx context.Context, appID id.ApplicationID) ([]*Document, error) {
	query := `SELECT ` + documentColumns + ` FROM documents
		WHERE application_id = $1 ORDER BY uploaded_at, id`

	rows, err := s.db.QueryContext(ctx, query, uuid.UUID(appID))
	if err != nil {
		return nil, fmt.Errorf("list documents: %w", err)
	}
	defer rows.Close()

	var docs []*Document
	for rows.Next() {
		doc, err := scanDocument(rows)
		if err != nil {
			return nil, fmt.Errorf("scan document: %w", err)
		}
		docs = append(docs, doc)
	}
	return docs, rows.Err()
}

func (s *PostgresStore) Delete(ctx context.Context, docID id.DocumentID) error {
	res, err := s.db.ExecContext(ctx, `DELETE FROM documents WHERE id = $1`, uuid.UUID(docID))
	if err != nil {
		return fmt.Errorf("delete document: %w", err)
	}
	affected, err := res.RowsAffected()
	if err != nil {
		return fmt.Errorf("delete document: %w", err)
	}
	if affected == 0 {
		return sentinel.ErrNotFound
	}
	return nil
}

func (s *PostgresStore) DeleteByApplication(ctx context.Context, appID id.ApplicationID) error {
	_, err := s.db.ExecContext(ctx,
		`DELETE FROM documents WHERE application_id = $1`, uuid.UUID(appID))
	if err != nil {
		return fmt.Errorf("delete documents: %w", err)
	}
	return nil
}

type scanner interface {
	Scan(dest ...any) error
}

func scanDocument(row scanner) (*Document, error) {
	var (
		doc   Document
		docID uuid.UUID
		appID uuid.UUID
	)
	err := row.Scan(
		&docID,
		&appID,
		&doc.FileName,
		&doc.FileType,
		&doc.FileSize,
		&doc.StorageKey,
		&doc.UploadedAt,
	)
	if err != nil {
		return nil, err
	}
	doc.ID = id.DocumentID(docID)
	doc.ApplicationID = id.ApplicationID(appID)
	return &doc, nil
}

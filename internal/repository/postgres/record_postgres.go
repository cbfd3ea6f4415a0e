package postgres

import (
	"context"
	"database/sql"

	"savesignal/internal/model"
	"savesignal/internal/repository"
)

// RecordPostgres is a PostgreSQL implementation of repository.RecordRepository.
// It uses database/sql with parameterized queries and contains no business logic.
type RecordPostgres struct {
	db *sql.DB
}

// NewRecordPostgres creates a new RecordPostgres repository.
func NewRecordPostgres(db *sql.DB) *RecordPostgres {
	return &RecordPostgres{db: db}
}

var _ repository.RecordRepository = (*RecordPostgres)(nil)

// Create inserts a new record row and returns the stored record.
func (r *RecordPostgres) Create(ctx context.Context, rec *model.Record) (*model.Record, error) {
	const q = `
		INSERT INTO records (id, name, created_at)
		VALUES ($1, $2, $3)
		RETURNING id, name, created_at
	`
	var out model.Record
	if err := r.db.QueryRowContext(ctx, q, rec.ID, rec.Name, rec.CreatedAt).
		Scan(&out.ID, &out.Name, &out.CreatedAt); err != nil {
		return nil, err
	}
	return &out, nil
}

// FindByID fetches a single record by its ID.
func (r *RecordPostgres) FindByID(ctx context.Context, id string) (*model.Record, error) {
	const q = `
		SELECT id, name, created_at
		FROM records
		WHERE id = $1
	`
	var rec model.Record
	if err := r.db.QueryRowContext(ctx, q, id).Scan(&rec.ID, &rec.Name, &rec.CreatedAt); err != nil {
		return nil, err
	}
	return &rec, nil
}

// List returns records using LIMIT/OFFSET pagination and a total count.
func (r *RecordPostgres) List(ctx context.Context, pq repository.PageQuery) (*repository.PageResult[model.Record], error) {
	const qCount = `SELECT COUNT(*) FROM records`
	var total int
	if err := r.db.QueryRowContext(ctx, qCount).Scan(&total); err != nil {
		return nil, err
	}

	const qList = `
		SELECT id, name, created_at
		FROM records
		ORDER BY created_at DESC, id DESC
		LIMIT $1 OFFSET $2
	`
	rows, err := r.db.QueryContext(ctx, qList, pq.Limit, pq.Offset)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	items, err := repository.ScanRecords(rows)
	if err != nil {
		return nil, err
	}
	return &repository.PageResult[model.Record]{Items: items, Total: total}, nil
}

// Delete removes a record by ID. It does not return an error if the row does not exist.
func (r *RecordPostgres) Delete(ctx context.Context, id string) error {
	const q = `DELETE FROM records WHERE id = $1`
	_, err := r.db.ExecContext(ctx, q, id)
	return err
}

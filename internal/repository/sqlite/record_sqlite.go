package sqlite

import (
	"context"
	"database/sql"

	"savesignal/internal/model"
	"savesignal/internal/repository"
)

// RecordSQLite stores records in SQLite (modernc.org/sqlite). With an
// in-memory DSN it backs the single-shot demo without an external database.
type RecordSQLite struct {
	db *sql.DB
}

func NewRecordSQLite(db *sql.DB) *RecordSQLite {
	return &RecordSQLite{db: db}
}

var _ repository.RecordRepository = (*RecordSQLite)(nil)

// Create inserts the row and reads it back. The read goes through FindByID
// because RETURNING columns carry no declared type, which the driver needs to
// decode created_at into a time.Time.
func (r *RecordSQLite) Create(ctx context.Context, rec *model.Record) (*model.Record, error) {
	const q = `INSERT INTO records (id, name, created_at) VALUES (?, ?, ?)`
	if _, err := r.db.ExecContext(ctx, q, rec.ID, rec.Name, rec.CreatedAt); err != nil {
		return nil, err
	}
	return r.FindByID(ctx, rec.ID)
}

func (r *RecordSQLite) FindByID(ctx context.Context, id string) (*model.Record, error) {
	const q = `SELECT id, name, created_at FROM records WHERE id = ?`
	var rec model.Record
	if err := r.db.QueryRowContext(ctx, q, id).Scan(&rec.ID, &rec.Name, &rec.CreatedAt); err != nil {
		return nil, err
	}
	return &rec, nil
}

func (r *RecordSQLite) List(ctx context.Context, pq repository.PageQuery) (*repository.PageResult[model.Record], error) {
	var total int
	if err := r.db.QueryRowContext(ctx, `SELECT COUNT(*) FROM records`).Scan(&total); err != nil {
		return nil, err
	}

	const qList = `
		SELECT id, name, created_at
		FROM records
		ORDER BY created_at DESC, id DESC
		LIMIT ? OFFSET ?
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

// Delete is a no-op for missing rows.
func (r *RecordSQLite) Delete(ctx context.Context, id string) error {
	_, err := r.db.ExecContext(ctx, `DELETE FROM records WHERE id = ?`, id)
	return err
}

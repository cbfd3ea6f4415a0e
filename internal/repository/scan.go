package repository

import (
	"database/sql"

	"savesignal/internal/model"
)

// ScanRecords reads (id, name, created_at) rows. Callers close rows.
func ScanRecords(rows *sql.Rows) ([]model.Record, error) {
	items := make([]model.Record, 0)
	for rows.Next() {
		var rec model.Record
		if err := rows.Scan(&rec.ID, &rec.Name, &rec.CreatedAt); err != nil {
			return nil, err
		}
		items = append(items, rec)
	}
	if err := rows.Err(); err != nil {
		return nil, err
	}
	return items, nil
}

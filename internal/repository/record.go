// Package repository contains data access layer abstractions.
// Implementations live in subpackages (postgres, sqlite) inside this directory.
package repository

import (
	"context"

	"savesignal/internal/model"
)

// RecordRepository defines data access for records using SQL queries only.
// No business logic here; lifecycle signals are sent by the service layer.
type RecordRepository interface {
	// Create inserts a new record row and returns the stored record.
	Create(ctx context.Context, rec *model.Record) (*model.Record, error)

	// FindByID returns a record by its ID, or sql.ErrNoRows.
	FindByID(ctx context.Context, id string) (*model.Record, error)

	// List returns a page of records and the total row count.
	List(ctx context.Context, pq PageQuery) (*PageResult[model.Record], error)

	// Delete removes a record by ID. It returns nil if the row was deleted or did not exist.
	Delete(ctx context.Context, id string) error
}

// PageQuery holds limit/offset pagination parameters.
type PageQuery struct {
	Limit  int
	Offset int
}

// PageResult is a generic pagination result wrapper.
type PageResult[T any] struct {
	Items []T
	Total int
}

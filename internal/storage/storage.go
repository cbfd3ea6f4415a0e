// Package storage keeps record snapshots in S3-compatible object storage.
package storage

import (
	"context"
	"errors"
	"time"
)

// ErrInvalidConfig is returned by NewMinIO for incomplete settings.
var ErrInvalidConfig = errors.New("invalid object storage config")

// PutOptions describe one upload.
type PutOptions struct {
	ContentType string
	Metadata    map[string]string
}

// ObjectInfo is what the server reported for a stored object.
type ObjectInfo struct {
	Key          string
	Size         int64
	ETag         string
	VersionID    string
	LastModified time.Time
}

// Store is the subset of object storage the snapshot receiver needs.
// Delete of a missing key is not an error.
type Store interface {
	Put(ctx context.Context, key string, body []byte, opt PutOptions) (ObjectInfo, error)
	Delete(ctx context.Context, key string) error
}

// Package storage persists uploaded files (profile pictures) either on the
// local disk or in an S3-compatible bucket.
package storage

import (
	"context"
	"fmt"
	"io"

	"github.com/dmitrijs2005/qaboard/internal/server/config"
)

// FileStore saves a named object. Implementations overwrite an existing
// object with the same name.
type FileStore interface {
	Save(ctx context.Context, name string, r io.Reader, size int64, contentType string) error
}

// New returns the FileStore selected by cfg.StorageBackend.
func New(ctx context.Context, cfg *config.Config) (FileStore, error) {
	switch cfg.StorageBackend {
	case config.StorageLocal, "":
		return NewLocalStore(cfg.UploadPath)
	case config.StorageS3:
		return NewS3Store(ctx, cfg)
	default:
		return nil, fmt.Errorf("unknown storage backend %q", cfg.StorageBackend)
	}
}

package storage

import (
	"context"
	"fmt"
	"io"
	"path/filepath"

	"github.com/dmitrijs2005/qaboard/internal/filex"
)

// LocalStore writes files into a directory on disk.
type LocalStore struct {
	dir string
}

func NewLocalStore(uploadPath string) (*LocalStore, error) {
	dir, err := filex.EnsureDir(uploadPath)
	if err != nil {
		return nil, err
	}
	return &LocalStore{dir: dir}, nil
}

func (s *LocalStore) Dir() string {
	return s.dir
}

func (s *LocalStore) Save(ctx context.Context, name string, r io.Reader, size int64, contentType string) error {
	if name == "" || filepath.Base(name) != name {
		return fmt.Errorf("invalid file name %q", name)
	}
	if err := ctx.Err(); err != nil {
		return err
	}
	if _, err := filex.WriteFileAtomic(s.dir, name, r); err != nil {
		return err
	}
	return nil
}

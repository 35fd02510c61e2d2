// Package storage saves uploaded attachments and returns their public references.
package storage

import (
	"context"
	"errors"
	"fmt"
	"io"
	"path/filepath"
	"strings"

	"github.com/edulink-ug/edulink/config"
	"github.com/edulink-ug/edulink/models"
)

// ErrTooLarge is returned when an upload exceeds the configured size.
var ErrTooLarge = errors.New("file too large")

// FileStore persists one uploaded file.
type FileStore interface {
	Save(ctx context.Context, filename, contentType string, size int64, r io.Reader) (models.Attachment, error)
}

// New builds the store selected by storage.driver.
func New(ctx context.Context, cfg config.StorageSection) (FileStore, error) {
	maxBytes := int64(cfg.MaxUploadMB) << 20
	switch cfg.Driver {
	case "", "local":
		return NewLocalStore(cfg.LocalDir, cfg.PublicPrefix, maxBytes), nil
	case "minio":
		s, err := NewMinioStore(cfg.Minio, maxBytes)
		if err != nil {
			return nil, err
		}
		if err := s.EnsureBucket(ctx); err != nil {
			return nil, err
		}
		return s, nil
	}
	return nil, fmt.Errorf("unsupported storage driver %q", cfg.Driver)
}

// cleanName keeps the base name of an uploaded file and drops path tricks.
func cleanName(name string) string {
	name = filepath.Base(strings.ReplaceAll(name, "\\", "/"))
	name = strings.Map(func(r rune) rune {
		switch {
		case r == ' ':
			return '_'
		case r < 32, strings.ContainsRune(`/\:*?"<>|`, r):
			return -1
		}
		return r
	}, name)
	if name == "." || name == ".." || name == "" {
		return "file"
	}
	return name
}

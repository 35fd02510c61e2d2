package storage

import (
	"context"
	"fmt"
	"io"
	"os"
	"path"
	"path/filepath"
	"strings"
	"time"

	"github.com/google/uuid"

	"github.com/edulink-ug/edulink/models"
)

// LocalStore writes files under a date-partitioned directory served as static files.
type LocalStore struct {
	dir      string
	prefix   string
	maxBytes int64
	now      func() time.Time
}

// NewLocalStore returns a LocalStore rooted at dir whose files are reachable under prefix.
func NewLocalStore(dir, prefix string, maxBytes int64) *LocalStore {
	if dir == "" {
		dir = filepath.Join("static", "uploads")
	}
	if prefix == "" {
		prefix = "/static/uploads"
	}
	return &LocalStore{dir: dir, prefix: strings.TrimRight(prefix, "/"), maxBytes: maxBytes, now: time.Now}
}

// Save copies r to disk, enforcing the size limit while streaming.
func (s *LocalStore) Save(ctx context.Context, filename, contentType string, size int64, r io.Reader) (models.Attachment, error) {
	if s.maxBytes > 0 && size > s.maxBytes {
		return models.Attachment{}, ErrTooLarge
	}
	if err := ctx.Err(); err != nil {
		return models.Attachment{}, err
	}
	now := s.now()
	datePath := path.Join(now.Format("2006"), now.Format("01"), now.Format("02"))
	baseDir := filepath.Join(s.dir, filepath.FromSlash(datePath))
	if err := os.MkdirAll(baseDir, 0o755); err != nil {
		return models.Attachment{}, fmt.Errorf("create upload directory: %w", err)
	}

	name := cleanName(filename)
	stored := uuid.NewString()[:8] + "_" + name
	dst := filepath.Join(baseDir, stored)
	out, err := os.Create(dst)
	if err != nil {
		return models.Attachment{}, fmt.Errorf("create file: %w", err)
	}
	src := r
	if s.maxBytes > 0 {
		src = &io.LimitedReader{R: r, N: s.maxBytes + 1}
	}
	written, err := io.Copy(out, src)
	closeErr := out.Close()
	if err == nil {
		err = closeErr
	}
	if err != nil {
		_ = os.Remove(dst)
		return models.Attachment{}, fmt.Errorf("write file: %w", err)
	}
	if s.maxBytes > 0 && written > s.maxBytes {
		_ = os.Remove(dst)
		return models.Attachment{}, ErrTooLarge
	}
	return models.Attachment{
		Filename:    name,
		URL:         s.prefix + "/" + path.Join(datePath, stored),
		ContentType: contentType,
		Size:        written,
	}, nil
}

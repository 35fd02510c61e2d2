package storage

import (
	"context"
	"fmt"
	"io"
	"net/url"
	"path"
	"path/filepath"
	"strings"
	"time"

	"github.com/minio/minio-go/v7"
	"github.com/minio/minio-go/v7/pkg/credentials"
	"github.com/segmentio/ksuid"

	"github.com/edulink-ug/edulink/config"
	"github.com/edulink-ug/edulink/models"
)

// MinioStore puts attachments in an S3 compatible bucket.
type MinioStore struct {
	client   *minio.Client
	cfg      config.MinioSection
	maxBytes int64
}

// NewMinioStore connects to the configured endpoint. An endpoint given as a URL
// decides TLS from its scheme.
func NewMinioStore(cfg config.MinioSection, maxBytes int64) (*MinioStore, error) {
	endpoint := cfg.Endpoint
	useSSL := cfg.UseSSL
	if strings.HasPrefix(endpoint, "http") {
		u, err := url.Parse(endpoint)
		if err != nil {
			return nil, fmt.Errorf("parse endpoint: %w", err)
		}
		endpoint = u.Host
		useSSL = u.Scheme == "https"
	}
	client, err := minio.New(endpoint, &minio.Options{
		Creds:  credentials.NewStaticV4(cfg.AccessKey, cfg.SecretKey, ""),
		Secure: useSSL,
		Region: cfg.Region,
	})
	if err != nil {
		return nil, fmt.Errorf("init minio: %w", err)
	}
	if cfg.PublicBaseURL == "" {
		scheme := "http"
		if useSSL {
			scheme = "https"
		}
		cfg.PublicBaseURL = scheme + "://" + endpoint
	}
	return &MinioStore{client: client, cfg: cfg, maxBytes: maxBytes}, nil
}

// EnsureBucket creates the attachment bucket when missing.
func (s *MinioStore) EnsureBucket(ctx context.Context) error {
	exists, err := s.client.BucketExists(ctx, s.cfg.Bucket)
	if err != nil {
		return fmt.Errorf("bucket exists %s: %w", s.cfg.Bucket, err)
	}
	if !exists {
		if err := s.client.MakeBucket(ctx, s.cfg.Bucket, minio.MakeBucketOptions{Region: s.cfg.Region}); err != nil {
			return fmt.Errorf("create bucket %s: %w", s.cfg.Bucket, err)
		}
	}
	return nil
}

// Save uploads r under a date prefix and a ksuid key.
func (s *MinioStore) Save(ctx context.Context, filename, contentType string, size int64, r io.Reader) (models.Attachment, error) {
	if s.maxBytes > 0 && size > s.maxBytes {
		return models.Attachment{}, ErrTooLarge
	}
	name := cleanName(filename)
	key := objectKey(time.Now().UTC(), name)
	if contentType == "" {
		contentType = "application/octet-stream"
	}
	info, err := s.client.PutObject(ctx, s.cfg.Bucket, key, r, size, minio.PutObjectOptions{ContentType: contentType})
	if err != nil {
		return models.Attachment{}, fmt.Errorf("put object: %w", err)
	}
	return models.Attachment{
		Filename:    name,
		URL:         s.publicURL(key),
		ContentType: contentType,
		Size:        info.Size,
	}, nil
}

func objectKey(now time.Time, name string) string {
	return path.Join(now.Format("2006/01/02"), ksuid.New().String()+strings.ToLower(filepath.Ext(name)))
}

func (s *MinioStore) publicURL(key string) string {
	return fmt.Sprintf("%s/%s/%s", strings.TrimSuffix(s.cfg.PublicBaseURL, "/"), s.cfg.Bucket, key)
}

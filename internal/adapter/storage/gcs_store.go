package storage

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"mime"
	"net/url"
	"path"
	"strings"

	gcs "cloud.google.com/go/storage"

	"github.com/user/leafmarket/internal/adapter/metrics"
	"github.com/user/leafmarket/internal/domain"
)

const gcsHost = "storage.googleapis.com"

// GCSStore implements domain.AssetStore on a Google Cloud Storage bucket.
// Objects are addressed as https://storage.googleapis.com/{bucket}/{key};
// the bucket's own access policy governs who can read them.
type GCSStore struct {
	bucket     *gcs.BucketHandle
	bucketName string
	logger     *slog.Logger
	metrics    *metrics.StoreMetrics
}

// NewGCSStore creates a bucket-backed asset store. Credentials come from
// the ambient service account, as with any GCS client.
func NewGCSStore(ctx context.Context, bucketName string, logger *slog.Logger, m *metrics.StoreMetrics) (*GCSStore, error) {
	if bucketName == "" {
		return nil, errors.New("asset bucket name is required")
	}

	client, err := gcs.NewClient(ctx)
	if err != nil {
		return nil, fmt.Errorf("failed to create storage client: %w", err)
	}

	return &GCSStore{
		bucket:     client.Bucket(bucketName),
		bucketName: bucketName,
		logger:     logger.With("component", "gcs_store"),
		metrics:    m,
	}, nil
}

// Upload writes the bytes to products/{uuid}_{sanitized-filename} in the
// bucket and returns the object's public URL.
func (s *GCSStore) Upload(ctx context.Context, filename string, data []byte) (string, error) {
	key := assetKey(filename)

	w := s.bucket.Object(key).NewWriter(ctx)
	if ct := mime.TypeByExtension(path.Ext(key)); ct != "" {
		w.ContentType = ct
	}

	if _, err := w.Write(data); err != nil {
		w.Close()
		return "", fmt.Errorf("failed to write asset %s: %w", key, err)
	}
	if err := w.Close(); err != nil {
		return "", fmt.Errorf("failed to finalize asset %s: %w", key, err)
	}

	if s.metrics != nil {
		s.metrics.AssetUploadBytes.Add(float64(len(data)))
	}
	s.logger.Info("stored asset", "bucket", s.bucketName, "key", key, "bytes", len(data))

	return objectURL(s.bucketName, key), nil
}

// DeleteByURL removes the object a previously returned URL points at.
// URLs outside this bucket are rejected.
func (s *GCSStore) DeleteByURL(ctx context.Context, rawURL string) error {
	key, err := bucketKeyFromURL(rawURL, s.bucketName)
	if err != nil {
		return err
	}

	if err := s.bucket.Object(key).Delete(ctx); err != nil {
		if errors.Is(err, gcs.ErrObjectNotExist) {
			return domain.ErrNotFound
		}
		return fmt.Errorf("failed to delete asset %s: %w", key, err)
	}

	s.logger.Info("deleted asset", "bucket", s.bucketName, "key", key)
	return nil
}

func objectURL(bucket, key string) string {
	return "https://" + gcsHost + "/" + bucket + "/" + key
}

// bucketKeyFromURL maps a public object URL back onto its storage key,
// rejecting URLs that point at another host, another bucket, or outside
// the key namespace.
func bucketKeyFromURL(rawURL, bucket string) (string, error) {
	u, err := url.Parse(rawURL)
	if err != nil {
		return "", fmt.Errorf("malformed asset url %q: %w", rawURL, err)
	}
	if u.Host != gcsHost {
		return "", fmt.Errorf("url %q does not reference this asset store", rawURL)
	}

	prefix := "/" + bucket + "/"
	if !strings.HasPrefix(u.Path, prefix) {
		return "", fmt.Errorf("url %q references a different bucket", rawURL)
	}

	key := path.Clean(strings.TrimPrefix(u.Path, prefix))
	if key == "." || key == "/" || strings.HasPrefix(key, "..") || path.IsAbs(key) {
		return "", fmt.Errorf("url %q resolves outside the asset store", rawURL)
	}
	return key, nil
}

var _ domain.AssetStore = (*GCSStore)(nil)

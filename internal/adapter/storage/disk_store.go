package storage

import (
	"context"
	"fmt"
	"log/slog"
	"net/url"
	"os"
	"path"
	"path/filepath"
	"strings"

	"github.com/google/uuid"

	"github.com/user/leafmarket/internal/adapter/metrics"
	"github.com/user/leafmarket/internal/domain"
)

const (
	productPrefix = "products"
	filePerm      = 0644
	dirPerm       = 0755
)

// DiskStore implements domain.AssetStore on the local filesystem. Objects
// live under dir and are served as {baseURL}/assets/{key}. Keys carry a
// random id, so two uploads of the same filename never collide.
type DiskStore struct {
	dir     string
	baseURL string
	logger  *slog.Logger
	metrics *metrics.StoreMetrics
}

// NewDiskStore creates a disk-backed asset store rooted at dir.
func NewDiskStore(dir, baseURL string, logger *slog.Logger, m *metrics.StoreMetrics) (*DiskStore, error) {
	if err := os.MkdirAll(filepath.Join(dir, productPrefix), dirPerm); err != nil {
		return nil, fmt.Errorf("failed to create asset directory %s: %w", dir, err)
	}

	return &DiskStore{
		dir:     dir,
		baseURL: strings.TrimRight(baseURL, "/"),
		logger:  logger.With("component", "disk_store"),
		metrics: m,
	}, nil
}

// Upload stores the bytes under products/{uuid}_{sanitized-filename} and
// returns the durable download URL.
func (s *DiskStore) Upload(ctx context.Context, filename string, data []byte) (string, error) {
	key := assetKey(filename)

	dst := filepath.Join(s.dir, filepath.FromSlash(key))
	if err := os.WriteFile(dst, data, filePerm); err != nil {
		return "", fmt.Errorf("failed to write asset %s: %w", key, err)
	}

	if s.metrics != nil {
		s.metrics.AssetUploadBytes.Add(float64(len(data)))
	}
	s.logger.Info("stored asset", "key", key, "bytes", len(data))

	return s.baseURL + "/assets/" + key, nil
}

// DeleteByURL removes the object a previously returned URL points at.
// URLs outside the store's namespace are rejected.
func (s *DiskStore) DeleteByURL(ctx context.Context, rawURL string) error {
	key, err := s.keyFromURL(rawURL)
	if err != nil {
		return err
	}

	target := filepath.Join(s.dir, filepath.FromSlash(key))
	if err := os.Remove(target); err != nil {
		if os.IsNotExist(err) {
			return domain.ErrNotFound
		}
		return fmt.Errorf("failed to delete asset %s: %w", key, err)
	}

	s.logger.Info("deleted asset", "key", key)
	return nil
}

// Dir returns the store's root directory, for mounting a file server.
func (s *DiskStore) Dir() string {
	return s.dir
}

func (s *DiskStore) keyFromURL(rawURL string) (string, error) {
	u, err := url.Parse(rawURL)
	if err != nil {
		return "", fmt.Errorf("malformed asset url %q: %w", rawURL, err)
	}

	const marker = "/assets/"
	idx := strings.Index(u.Path, marker)
	if idx < 0 {
		return "", fmt.Errorf("url %q does not reference this asset store", rawURL)
	}

	key := path.Clean(u.Path[idx+len(marker):])
	if key == "." || key == "/" || strings.HasPrefix(key, "..") || path.IsAbs(key) {
		return "", fmt.Errorf("url %q resolves outside the asset store", rawURL)
	}
	return key, nil
}

// assetKey builds a collision-resistant storage key for an upload. The
// random id keeps two uploads of the same filename apart.
func assetKey(filename string) string {
	return path.Join(productPrefix, uuid.NewString()+"_"+sanitizeFilename(filename))
}

// sanitizeFilename strips directory components and characters that have
// no business in a storage key.
func sanitizeFilename(name string) string {
	base := filepath.Base(filepath.Clean(name))
	if base == "." || base == string(filepath.Separator) {
		return "upload"
	}

	mapped := strings.Map(func(r rune) rune {
		switch {
		case r >= 'a' && r <= 'z', r >= 'A' && r <= 'Z', r >= '0' && r <= '9':
			return r
		case r == '.' || r == '-' || r == '_':
			return r
		default:
			return '_'
		}
	}, base)

	if mapped == "" {
		return "upload"
	}
	return mapped
}

var _ domain.AssetStore = (*DiskStore)(nil)

package storage

import (
	"context"
	"errors"
	"io"
	"log/slog"
	"os"
	"path/filepath"
	"strings"
	"testing"

	"github.com/user/leafmarket/internal/domain"
)

func newTestStore(t *testing.T) *DiskStore {
	t.Helper()
	logger := slog.New(slog.NewTextHandler(io.Discard, nil))
	store, err := NewDiskStore(t.TempDir(), "http://localhost:8080", logger, nil)
	if err != nil {
		t.Fatalf("could not create store: %v", err)
	}
	return store
}

func TestDiskStoreUpload(t *testing.T) {
	ctx := context.Background()
	store := newTestStore(t)

	t.Run("stores the bytes and returns a serving URL", func(t *testing.T) {
		url, err := store.Upload(ctx, "oil.jpg", []byte("jpeg bytes"))
		if err != nil {
			t.Fatalf("unexpected error: %v", err)
		}
		if !strings.HasPrefix(url, "http://localhost:8080/assets/products/") {
			t.Fatalf("unexpected URL %q", url)
		}
		if !strings.HasSuffix(url, "_oil.jpg") {
			t.Errorf("URL should end with the sanitized filename, got %q", url)
		}

		key := strings.TrimPrefix(url, "http://localhost:8080/assets/")
		data, err := os.ReadFile(filepath.Join(store.Dir(), filepath.FromSlash(key)))
		if err != nil {
			t.Fatalf("stored file unreadable: %v", err)
		}
		if string(data) != "jpeg bytes" {
			t.Errorf("stored bytes differ: %q", data)
		}
	})

	t.Run("same filename never collides", func(t *testing.T) {
		first, err := store.Upload(ctx, "oil.jpg", []byte("a"))
		if err != nil {
			t.Fatalf("unexpected error: %v", err)
		}
		second, err := store.Upload(ctx, "oil.jpg", []byte("b"))
		if err != nil {
			t.Fatalf("unexpected error: %v", err)
		}
		if first == second {
			t.Errorf("two uploads of the same filename produced the same URL %q", first)
		}
	})

	t.Run("strips directory components from the filename", func(t *testing.T) {
		url, err := store.Upload(ctx, "../../../etc/passwd", []byte("x"))
		if err != nil {
			t.Fatalf("unexpected error: %v", err)
		}
		if strings.Contains(url, "..") {
			t.Errorf("path components leaked into the URL %q", url)
		}
		if !strings.HasSuffix(url, "_passwd") {
			t.Errorf("expected only the base name to survive, got %q", url)
		}
	})

	t.Run("replaces unsafe characters", func(t *testing.T) {
		url, err := store.Upload(ctx, "my photo (1).png", []byte("x"))
		if err != nil {
			t.Fatalf("unexpected error: %v", err)
		}
		if !strings.HasSuffix(url, "_my_photo__1_.png") {
			t.Errorf("unexpected sanitized name in %q", url)
		}
	})
}

func TestDiskStoreDeleteByURL(t *testing.T) {
	ctx := context.Background()

	t.Run("removes the stored object", func(t *testing.T) {
		store := newTestStore(t)
		url, err := store.Upload(ctx, "oil.jpg", []byte("jpeg bytes"))
		if err != nil {
			t.Fatalf("upload failed: %v", err)
		}

		if err := store.DeleteByURL(ctx, url); err != nil {
			t.Fatalf("unexpected error: %v", err)
		}
		if err := store.DeleteByURL(ctx, url); !errors.Is(err, domain.ErrNotFound) {
			t.Errorf("second delete should report ErrNotFound, got %v", err)
		}
	})

	t.Run("rejects URLs outside the store", func(t *testing.T) {
		store := newTestStore(t)
		bad := []string{
			"http://localhost:8080/static/oil.jpg",
			"http://localhost:8080/assets/../secrets.txt",
			"http://localhost:8080/assets/",
		}
		for _, url := range bad {
			if err := store.DeleteByURL(ctx, url); err == nil {
				t.Errorf("expected %q to be rejected", url)
			}
		}
	})

	t.Run("missing object", func(t *testing.T) {
		store := newTestStore(t)
		err := store.DeleteByURL(ctx, "http://localhost:8080/assets/products/nope_oil.jpg")
		if !errors.Is(err, domain.ErrNotFound) {
			t.Errorf("expected ErrNotFound, got %v", err)
		}
	})
}

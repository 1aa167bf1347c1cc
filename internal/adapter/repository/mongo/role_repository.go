package mongo

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"sync"
	"time"

	"go.mongodb.org/mongo-driver/v2/bson"
	"go.mongodb.org/mongo-driver/v2/mongo"
	"go.mongodb.org/mongo-driver/v2/mongo/options"

	"github.com/user/leafmarket/internal/adapter/metrics"
	"github.com/user/leafmarket/internal/domain"
)

const rolesCollection = "roles"

type roleCacheEntry struct {
	record    *domain.RoleRecord
	missing   bool
	expiresAt time.Time
}

// RoleRepository implements domain.RoleRepository with MongoDB as the
// source of truth and an in-memory, time-based cache in front of it. The
// role gate hits this on every request, so lookups must stay cheap.
type RoleRepository struct {
	coll     *mongo.Collection
	logger   *slog.Logger
	cache    map[string]roleCacheEntry
	mu       sync.RWMutex
	cacheTTL time.Duration
	metrics  *metrics.StoreMetrics
}

// NewRoleRepository creates a MongoDB-backed role record repository.
func NewRoleRepository(db *mongo.Database, logger *slog.Logger, cacheTTL time.Duration, m *metrics.StoreMetrics) *RoleRepository {
	return &RoleRepository{
		coll:     db.Collection(rolesCollection),
		logger:   logger.With("component", "role_repository"),
		cache:    make(map[string]roleCacheEntry),
		cacheTTL: cacheTTL,
		metrics:  m,
	}
}

// Store writes a role record and invalidates the cached entry for its uid.
func (r *RoleRepository) Store(ctx context.Context, rec *domain.RoleRecord) error {
	update := bson.M{"$set": bson.M{
		"email":     rec.Email,
		"role":      rec.Role,
		"createdAt": rec.CreatedAt,
	}}
	if _, err := r.coll.UpdateOne(ctx, bson.M{"_id": rec.UID}, update, options.UpdateOne().SetUpsert(true)); err != nil {
		return fmt.Errorf("store role record: %w", err)
	}

	r.mu.Lock()
	delete(r.cache, rec.UID)
	r.mu.Unlock()
	return nil
}

// FindByUID returns the role record for a uid, consulting the cache
// first. A confirmed absence is cached too, so repeated lookups for an
// identity with no record stay off the database.
func (r *RoleRepository) FindByUID(ctx context.Context, uid string) (*domain.RoleRecord, error) {
	r.mu.RLock()
	entry, found := r.cache[uid]
	r.mu.RUnlock()

	if found && time.Now().Before(entry.expiresAt) {
		if r.metrics != nil {
			r.metrics.RoleCacheHits.Inc()
		}
		return entry.result()
	}

	if r.metrics != nil {
		r.metrics.RoleCacheMisses.Inc()
	}

	r.mu.Lock()
	defer r.mu.Unlock()

	// Double-check in case another goroutine populated the entry while
	// waiting for the lock.
	entry, found = r.cache[uid]
	if found && time.Now().Before(entry.expiresAt) {
		return entry.result()
	}

	var rec domain.RoleRecord
	err := r.coll.FindOne(ctx, bson.M{"_id": uid}).Decode(&rec)
	if err != nil {
		if errors.Is(err, mongo.ErrNoDocuments) {
			r.cache[uid] = roleCacheEntry{missing: true, expiresAt: time.Now().Add(r.cacheTTL)}
			return nil, domain.ErrNotFound
		}
		// Don't cache errors; the next request retries the database.
		r.logger.Error("role record lookup failed", "uid", uid, "error", err)
		return nil, fmt.Errorf("find role record: %w", err)
	}

	r.cache[uid] = roleCacheEntry{record: &rec, expiresAt: time.Now().Add(r.cacheTTL)}
	return &rec, nil
}

func (e roleCacheEntry) result() (*domain.RoleRecord, error) {
	if e.missing {
		return nil, domain.ErrNotFound
	}
	rec := *e.record
	return &rec, nil
}

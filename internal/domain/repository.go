package domain

import "context"

// ProductRepository defines the persistence contract for the product
// catalog. Implementations push status and category predicates into the
// remote query; callers must not assume client-side filtering semantics.
type ProductRepository interface {
	// Store inserts a new product and returns its assigned id.
	Store(ctx context.Context, p *Product) (string, error)

	// FindAll returns every product ordered by createdAt descending.
	FindAll(ctx context.Context) ([]Product, error)

	// FindActive returns products with status=active, newest first.
	FindActive(ctx context.Context) ([]Product, error)

	// FindActiveByCategory returns active products of one category,
	// newest first.
	FindActiveByCategory(ctx context.Context, category string) ([]Product, error)

	// Update merges the non-nil fields into an existing record. It does
	// not verify the id exists before issuing the write.
	Update(ctx context.Context, id string, fields ProductUpdate) error

	// Delete removes the record unconditionally.
	Delete(ctx context.Context, id string) error
}

// UserRepository defines the persistence contract for credentials.
type UserRepository interface {
	Store(ctx context.Context, u *User) error
	FindByEmail(ctx context.Context, email string) (*User, error)
	FindByUID(ctx context.Context, uid string) (*User, error)
}

// RoleRepository defines the persistence contract for role records.
// FindByUID returns ErrNotFound when no record exists for the uid;
// callers treat that as role=none, never as a fatal error.
type RoleRepository interface {
	Store(ctx context.Context, rec *RoleRecord) error
	FindByUID(ctx context.Context, uid string) (*RoleRecord, error)
}

// OrderRepository defines access to the order views.
type OrderRepository interface {
	FindAll(ctx context.Context) ([]Order, error)
	FindByCustomer(ctx context.Context, email string) ([]Order, error)
	FindByID(ctx context.Context, id string) (*Order, error)
	UpdateStatus(ctx context.Context, id string, status OrderStatus) error
}

// AssetStore defines the object storage contract for product images.
type AssetStore interface {
	// Upload stores the bytes under a collision-resistant key derived
	// from filename and returns a durable download URL.
	Upload(ctx context.Context, filename string, data []byte) (string, error)

	// DeleteByURL removes the object a previously returned URL points at.
	DeleteByURL(ctx context.Context, url string) error
}

// TokenStore tracks revoked session tokens until their natural expiry.
type TokenStore interface {
	Revoke(ctx context.Context, jti string, ttlSeconds int64) error
	IsRevoked(ctx context.Context, jti string) (bool, error)
}

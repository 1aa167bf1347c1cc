package usecase

import (
	"context"

	"github.com/user/leafmarket/internal/domain"
)

// AuthUseCase defines the contract for identity and session services.
type AuthUseCase interface {
	Signup(ctx context.Context, email, password string, role domain.Role) (*AuthResult, error)
	Login(ctx context.Context, email, password string) (*AuthResult, error)
	Logout(ctx context.Context, token string) error

	// ResolveSession validates a session token and resolves the
	// identity's current role. A missing or unreadable role record
	// resolves to RoleNone; only an invalid token is an error.
	ResolveSession(ctx context.Context, token string) (*domain.Session, error)
}

// AuthResult is returned by Signup and Login.
type AuthResult struct {
	Token   string         `json:"token"`
	Session domain.Session `json:"session"`
}

// CatalogUseCase defines the contract for the product catalog.
type CatalogUseCase interface {
	Add(ctx context.Context, input ProductInput, image *ImageUpload) (string, error)
	List(ctx context.Context) ([]domain.Product, error)
	ListActive(ctx context.Context) ([]domain.Product, error)
	ListByCategory(ctx context.Context, category string) ([]domain.Product, error)
	Update(ctx context.Context, id string, fields domain.ProductUpdate, image *ImageUpload) error
	Delete(ctx context.Context, id, imageURL string) error
	ToggleStatus(ctx context.Context, id string, current domain.ProductStatus) error
}

// ProductInput carries the caller-supplied fields of a new product.
// Timestamps are stamped by the catalog service, never by callers.
type ProductInput struct {
	Name        string               `json:"name"`
	Description string               `json:"description"`
	Price       float64              `json:"price"`
	Category    string               `json:"category"`
	Stock       int                  `json:"stock"`
	ImageURL    string               `json:"imageUrl"`
	Status      domain.ProductStatus `json:"status"`
}

// ImageUpload is an optional image accompanying a product mutation.
type ImageUpload struct {
	Filename string
	Data     []byte
}

// OrderUseCase defines the contract for the order views.
type OrderUseCase interface {
	List(ctx context.Context) ([]domain.Order, error)
	ListByCustomer(ctx context.Context, email string) ([]domain.Order, error)
	UpdateStatus(ctx context.Context, id string, status domain.OrderStatus) error
	Stats(ctx context.Context) (*OrderStats, error)
}

// CheckoutUseCase turns a client-local cart into an external checkout
// link. No order is persisted.
type CheckoutUseCase interface {
	Checkout(items []domain.CartItem) (*CheckoutResult, error)
}

// CheckoutResult holds the serialized order message and the deep link to
// the external checkout channel.
type CheckoutResult struct {
	Totals      domain.CartTotals `json:"totals"`
	Message     string            `json:"message"`
	CheckoutURL string            `json:"checkoutUrl"`
}

package domain

import (
	"strings"
	"time"
)

// ProductStatus controls whether a product is visible to customers.
type ProductStatus string

const (
	StatusActive   ProductStatus = "active"
	StatusInactive ProductStatus = "inactive"
)

// Categories is the fixed set of product categories offered by the store.
// "All" is a filter value only, never stored on a product.
var Categories = []string{
	"Flowers",
	"Edibles",
	"Concentrates",
	"Vapes",
	"Oils",
	"Topicals",
	"Accessories",
	"Seeds",
}

// ValidCategory reports whether c is one of the store's categories.
func ValidCategory(c string) bool {
	for _, known := range Categories {
		if c == known {
			return true
		}
	}
	return false
}

// Product represents a catalog entry. The ID is assigned by the store on
// creation and immutable afterwards. CreatedAt is set once; UpdatedAt is
// refreshed on every mutation.
type Product struct {
	ID          string        `json:"id" bson:"_id,omitempty"`
	Name        string        `json:"name" bson:"name"`
	Description string        `json:"description" bson:"description"`
	Price       float64       `json:"price" bson:"price"`
	Category    string        `json:"category" bson:"category"`
	Stock       int           `json:"stock" bson:"stock"`
	ImageURL    string        `json:"imageUrl" bson:"imageUrl"`
	Status      ProductStatus `json:"status" bson:"status"`
	CreatedAt   time.Time     `json:"createdAt" bson:"createdAt"`
	UpdatedAt   time.Time     `json:"updatedAt" bson:"updatedAt"`
}

// ProductUpdate carries the fields of a partial product update. Nil fields
// are left untouched by the store.
type ProductUpdate struct {
	Name        *string        `json:"name,omitempty"`
	Description *string        `json:"description,omitempty"`
	Price       *float64       `json:"price,omitempty"`
	Category    *string        `json:"category,omitempty"`
	Stock       *int           `json:"stock,omitempty"`
	ImageURL    *string        `json:"imageUrl,omitempty"`
	Status      *ProductStatus `json:"status,omitempty"`
}

// placeholderAssets are bundled default images exempt from asset deletion.
var placeholderAssets = []string{"next.svg", "vercel.svg"}

// IsPlaceholderAsset reports whether url refers to one of the bundled
// placeholder images that must never be deleted from object storage.
func IsPlaceholderAsset(url string) bool {
	for _, p := range placeholderAssets {
		if strings.Contains(url, p) {
			return true
		}
	}
	return false
}

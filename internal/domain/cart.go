package domain

// CartItem is a client-local cart line. Carts are never persisted; they
// arrive with the checkout request and are serialized into the external
// checkout message.
type CartItem struct {
	ID       string  `json:"id"`
	Name     string  `json:"name"`
	Price    float64 `json:"price"`
	Quantity int     `json:"quantity"`
	ImageURL string  `json:"imageUrl"`
}

// CartTotals holds the computed totals for a cart. Tax is a fixed 10% of
// the subtotal.
type CartTotals struct {
	Subtotal float64 `json:"subtotal"`
	Tax      float64 `json:"tax"`
	Total    float64 `json:"total"`
}

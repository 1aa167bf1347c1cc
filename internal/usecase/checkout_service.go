package usecase

import (
	"errors"
	"fmt"
	"net/url"
	"strings"

	"github.com/user/leafmarket/internal/domain"
)

// ErrEmptyCart is returned when checkout is requested with no lines.
var ErrEmptyCart = errors.New("cart is empty")

type checkoutService struct {
	phone string
}

// NewCheckoutService creates the external checkout link builder. phone is
// the destination number of the messaging channel.
func NewCheckoutService(phone string) CheckoutUseCase {
	return &checkoutService{phone: phone}
}

// Checkout serializes the cart into a human-readable order message and
// wraps it in a messaging deep link. Nothing is persisted; the external
// channel carries the order from here.
func (s *checkoutService) Checkout(items []domain.CartItem) (*CheckoutResult, error) {
	if len(items) == 0 {
		return nil, ErrEmptyCart
	}

	totals := ComputeCartTotals(items)

	var b strings.Builder
	b.WriteString("Hi! I'd like to place an order:\n\n")
	for i, item := range items {
		if i > 0 {
			b.WriteString("\n")
		}
		fmt.Fprintf(&b, "%s x%d - $%.2f", item.Name, item.Quantity, item.Price*float64(item.Quantity))
	}
	fmt.Fprintf(&b, "\n\nSubtotal: $%.2f\nTax: $%.2f\nTotal: $%.2f", totals.Subtotal, totals.Tax, totals.Total)

	message := b.String()
	checkoutURL := fmt.Sprintf("https://wa.me/%s?text=%s", s.phone, url.QueryEscape(message))

	return &CheckoutResult{
		Totals:      totals,
		Message:     message,
		CheckoutURL: checkoutURL,
	}, nil
}

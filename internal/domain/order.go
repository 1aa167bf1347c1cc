package domain

// OrderStatus is the fulfillment state of an order.
type OrderStatus string

const (
	OrderPending   OrderStatus = "pending"
	OrderConfirmed OrderStatus = "confirmed"
	OrderShipped   OrderStatus = "shipped"
	OrderDelivered OrderStatus = "delivered"
	OrderCancelled OrderStatus = "cancelled"
)

// orderTransitions enumerates the allowed status progressions. Anything
// not listed here is rejected; arbitrary overwrites are not permitted.
var orderTransitions = map[OrderStatus][]OrderStatus{
	OrderPending:   {OrderConfirmed, OrderCancelled},
	OrderConfirmed: {OrderShipped, OrderCancelled},
	OrderShipped:   {OrderDelivered},
}

// CanTransition reports whether an order may move from one status to
// another.
func CanTransition(from, to OrderStatus) bool {
	for _, next := range orderTransitions[from] {
		if next == to {
			return true
		}
	}
	return false
}

// OrderItem is a single line of an order.
type OrderItem struct {
	Name     string  `json:"name"`
	Quantity int     `json:"quantity"`
	Price    float64 `json:"price"`
}

// Order represents a placed order as shown in the admin and customer
// order views.
type Order struct {
	ID            string      `json:"id"`
	CustomerEmail string      `json:"customerEmail"`
	CustomerName  string      `json:"customerName"`
	Date          string      `json:"date"`
	Status        OrderStatus `json:"status"`
	Total         float64     `json:"total"`
	Items         []OrderItem `json:"items"`
}

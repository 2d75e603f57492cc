package domain

import (
	"time"

	"github.com/google/uuid"
)

// Customer links a user account to its orders. Created lazily on the
// first cart interaction; user_id is unique so concurrent first
// interactions converge on one row.
type Customer struct {
	ID        uuid.UUID `json:"id" db:"id"`
	UserID    uuid.UUID `json:"user_id" db:"user_id"`
	Name      string    `json:"name" db:"name"`
	Email     string    `json:"email" db:"email"`
	CreatedAt time.Time `json:"created_at" db:"created_at"`
}

// Order is a customer's cart until it is completed by a verified
// payment. At most one open order exists per customer.
type Order struct {
	ID          uuid.UUID `json:"id" db:"id"`
	CustomerID  uuid.UUID `json:"customer_id" db:"customer_id"`
	IsCompleted bool      `json:"is_completed" db:"is_completed"`
	Shipping    bool      `json:"shipping" db:"shipping"`
	CreatedAt   time.Time `json:"created_at" db:"created_at"`
}

// CartAction is a cart line mutation direction
type CartAction string

const (
	CartActionAdd    CartAction = "add"
	CartActionRemove CartAction = "remove"
)

// AdjustOutcome reports what a cart line adjustment actually did.
// Reserved and Released mean the paired stock/line writes were applied;
// OutOfStock and EmptyLine mean nothing was mutated.
type AdjustOutcome string

const (
	AdjustReserved   AdjustOutcome = "reserved"
	AdjustReleased   AdjustOutcome = "released"
	AdjustOutOfStock AdjustOutcome = "out_of_stock"
	AdjustEmptyLine  AdjustOutcome = "empty_line"
)

// CartLine is an order line joined with the product fields the cart
// needs to price itself.
type CartLine struct {
	ID           uuid.UUID `json:"id" db:"id"`
	OrderID      uuid.UUID `json:"order_id" db:"order_id"`
	ProductID    uuid.UUID `json:"product_id" db:"product_id"`
	Quantity     int       `json:"quantity" db:"quantity"`
	ProductTitle string    `json:"product_title" db:"product_title"`
	ProductPrice float64   `json:"product_price" db:"product_price"`
	AddedAt      time.Time `json:"added_at" db:"added_at"`
}

// TotalPrice returns the line's contribution to the cart total
func (l *CartLine) TotalPrice() float64 {
	return l.ProductPrice * float64(l.Quantity)
}

// CartTotals aggregates an order's lines
type CartTotals struct {
	TotalPrice    float64 `json:"total_price"`
	TotalQuantity int     `json:"total_quantity"`
}

// ShippingAddress is captured once at checkout
type ShippingAddress struct {
	ID         uuid.UUID `json:"id" db:"id"`
	CustomerID uuid.UUID `json:"customer_id" db:"customer_id"`
	OrderID    uuid.UUID `json:"order_id" db:"order_id"`
	Address    string    `json:"address" db:"address"`
	City       string    `json:"city" db:"city"`
	State      string    `json:"state" db:"state"`
	Zipcode    string    `json:"zipcode" db:"zipcode"`
	CreatedAt  time.Time `json:"created_at" db:"created_at"`
}

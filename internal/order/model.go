package order

import (
	"time"

	"github.com/gofrs/uuid"

	"github.com/mynature/storefront/internal/catalog"
)

type Status string

const (
	StatusPending   Status = "PENDING"
	StatusConfirmed Status = "CONFIRMED"
	StatusShipped   Status = "SHIPPED"
	StatusDelivered Status = "DELIVERED"
	StatusCancelled Status = "CANCELLED"
)

func (s Status) String() string {
	return string(s)
}

// Valid reports whether s is a known status. Transitions between known
// statuses are not restricted.
func (s Status) Valid() bool {
	switch s {
	case StatusPending, StatusConfirmed, StatusShipped, StatusDelivered, StatusCancelled:
		return true
	}
	return false
}

// OrderItem captures the unit price at order time. Price is a copy, never
// recomputed from the current product price.
type OrderItem struct {
	ID        uuid.UUID        `json:"id" db:"id"`
	OrderID   uuid.UUID        `json:"order_id" db:"order_id"`
	ProductID uuid.UUID        `json:"product_id" db:"product_id"`
	Quantity  int              `json:"quantity" db:"quantity"`
	Price     float64          `json:"price" db:"price"`
	CreatedAt time.Time        `json:"created_at" db:"created_at"`
	Product   *catalog.Product `json:"product,omitempty" db:"-"`
}

// Order's TotalAmount is derived; it is 0 between the header insert and the
// finalization update and must not be read mid-sequence.
type Order struct {
	ID              uuid.UUID   `json:"id" db:"id"`
	CustomerName    string      `json:"customer_name" db:"customer_name"`
	CustomerPhone   string      `json:"customer_phone" db:"customer_phone"`
	CustomerAddress string      `json:"customer_address" db:"customer_address"`
	City            string      `json:"city" db:"city"`
	Notes           string      `json:"notes,omitempty" db:"notes"`
	Status          Status      `json:"status" db:"status"`
	TotalAmount     float64     `json:"total_amount" db:"total_amount"`
	CreatedAt       time.Time   `json:"created_at" db:"created_at"`
	UpdatedAt       time.Time   `json:"updated_at" db:"updated_at"`
	Items           []OrderItem `json:"order_items" db:"-"`
}

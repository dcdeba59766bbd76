package catalog

import (
	"time"

	"github.com/gofrs/uuid"
)

type Category struct {
	ID            uuid.UUID `json:"id" db:"id"`
	Name          string    `json:"name" db:"name"`
	NameAr        string    `json:"name_ar" db:"name_ar"`
	Description   string    `json:"description,omitempty" db:"description"`
	DescriptionAr string    `json:"description_ar,omitempty" db:"description_ar"`
	ImageURL      string    `json:"image_url,omitempty" db:"image_url"`
	IsActive      bool      `json:"is_active" db:"is_active"`
	SortOrder     int       `json:"sort_order" db:"sort_order"`
	CreatedAt     time.Time `json:"created_at" db:"created_at"`
	UpdatedAt     time.Time `json:"updated_at" db:"updated_at"`
}

// Product carries both language variants of its name and description.
// Price is the authoritative unit cost; order submission always re-reads it.
type Product struct {
	ID            uuid.UUID `json:"id" db:"id"`
	Name          string    `json:"name" db:"name"`
	NameAr        string    `json:"name_ar" db:"name_ar"`
	Description   string    `json:"description,omitempty" db:"description"`
	DescriptionAr string    `json:"description_ar,omitempty" db:"description_ar"`
	Price         float64   `json:"price" db:"price"`
	CategoryID    uuid.UUID `json:"category_id" db:"category_id"`
	ImageURLs     []string  `json:"image_urls" db:"image_urls"`
	StockQuantity int       `json:"stock_quantity" db:"stock_quantity"`
	IsActive      bool      `json:"is_active" db:"is_active"`
	CreatedAt     time.Time `json:"created_at" db:"created_at"`
	UpdatedAt     time.Time `json:"updated_at" db:"updated_at"`
	Category      *Category `json:"category,omitempty" db:"-"`
}

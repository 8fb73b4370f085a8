package domain

import (
	"time"

	"github.com/google/uuid"
)

// Category groups products on the menu
type Category struct {
	ID                  uuid.UUID `json:"id" db:"id"`
	Name                string    `json:"name" db:"name"`
	Description         string    `json:"description" db:"description"`
	ImageURL            string    `json:"image_url" db:"image_url"`
	IsActive            bool      `json:"is_active" db:"is_active"`
	SortOrder           int       `json:"sort_order" db:"sort_order"`
	ActiveProductsCount int       `json:"active_products_count" db:"active_products_count"`
	CreatedAt           time.Time `json:"created_at" db:"created_at"`
	UpdatedAt           time.Time `json:"updated_at" db:"updated_at"`
}

// CategoryFilter narrows category listings
type CategoryFilter struct {
	Search   string
	Ordering string
}

package domain

import "github.com/shopspring/decimal"

// CategoryProductCount is the number of active products in an active category
type CategoryProductCount struct {
	Name         string `json:"name" db:"name"`
	ProductCount int    `json:"product_count" db:"product_count"`
}

// CatalogStatistics aggregates counts over the active catalog
type CatalogStatistics struct {
	TotalProducts          int                    `json:"total_products" db:"total_products"`
	TotalCategories        int                    `json:"total_categories" db:"total_categories"`
	FeaturedProducts       int                    `json:"featured_products" db:"featured_products"`
	AvailableProducts      int                    `json:"available_products" db:"available_products"`
	VegetarianProducts     int                    `json:"vegetarian_products" db:"vegetarian_products"`
	VeganProducts          int                    `json:"vegan_products" db:"vegan_products"`
	AveragePrice           decimal.Decimal        `json:"average_price" db:"average_price"`
	CategoriesWithProducts []CategoryProductCount `json:"categories_with_products" db:"-"`
}

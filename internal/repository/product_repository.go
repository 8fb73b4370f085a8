package repository

import (
	"context"
	"database/sql"
	"errors"
	"fmt"
	"strings"

	"food-catalog/internal/domain"

	"github.com/google/uuid"
	"github.com/jmoiron/sqlx"
	"github.com/shopspring/decimal"
)

var (
	ErrProductNotFound = errors.New("product not found")
	ErrSlugTaken       = errors.New("product slug already in use")
)

// ProductRepository defines the interface for product data access
type ProductRepository interface {
	Create(ctx context.Context, product *domain.Product) error
	Update(ctx context.Context, product *domain.Product) error
	SoftDelete(ctx context.Context, id uuid.UUID) error
	// FindByID and FindBySlug return the product whether or not it is active
	FindByID(ctx context.Context, id uuid.UUID) (*domain.Product, error)
	FindBySlug(ctx context.Context, slug string) (*domain.Product, error)
	// LockBySlug loads the product with a row lock held until the surrounding transaction ends
	LockBySlug(ctx context.Context, slug string) (*domain.Product, error)
	UpdateStock(ctx context.Context, id uuid.UUID, stock int, availability domain.Availability) error
	UpdateRating(ctx context.Context, id uuid.UUID, average decimal.Decimal, count int) error
	List(ctx context.Context, filter domain.ProductFilter, page domain.PageRequest) ([]*domain.Product, int, error)
	Featured(ctx context.Context, limit int) ([]*domain.Product, error)
	SlugExists(ctx context.Context, slug string, excludeID *uuid.UUID) (bool, error)
	NameExistsInCategory(ctx context.Context, categoryID uuid.UUID, name string, excludeID *uuid.UUID) (bool, error)
	BulkUpdate(ctx context.Context, ids []uuid.UUID, update domain.BulkProductUpdate) (int64, error)
	Statistics(ctx context.Context) (*domain.CatalogStatistics, error)
}

type productRepository struct {
	db *sqlx.DB
}

// NewProductRepository creates a new instance of ProductRepository
func NewProductRepository(db *sqlx.DB) ProductRepository {
	return &productRepository{db: db}
}

const productSelect = `SELECT p.*, c.name AS category_name FROM products p JOIN categories c ON c.id = p.category_id`

const defaultProductOrdering = "c.sort_order ASC, p.sort_order ASC, p.name ASC"

var productOrderings = map[string]string{
	"name":             "p.name",
	"price":            "p.price",
	"rating_average":   "p.rating_average",
	"created_at":       "p.created_at",
	"sort_order":       "p.sort_order",
	"preparation_time": "p.preparation_time",
}

// productWriteError maps constraint violations onto domain errors
func productWriteError(op string, err error) error {
	switch {
	case isUniqueViolation(err, "idx_products_slug"):
		return ErrSlugTaken
	case isUniqueViolation(err, "idx_products_category_name_lower"):
		return domain.ErrDuplicateName
	case isForeignKeyViolation(err):
		return ErrCategoryNotFound
	case isCheckViolation(err, "products_available_has_stock"):
		return domain.ErrStockAvailabilityViolation
	case isCheckViolation(err, "products_original_above_price"):
		return domain.ErrPriceOrderViolation
	}
	return fmt.Errorf("failed to %s product: %w", op, err)
}

func (r *productRepository) Create(ctx context.Context, product *domain.Product) error {
	query := `
		INSERT INTO products (
			id, name, slug, description, short_description, price, original_price, category_id,
			image_url, image_alt, availability, stock_quantity, ingredients, allergens, spice_level,
			calories, preparation_time, protein, carbs, fat, is_active, is_featured, is_vegetarian,
			is_vegan, is_gluten_free, meta_title, meta_description, sort_order, rating_average, review_count
		) VALUES (
			:id, :name, :slug, :description, :short_description, :price, :original_price, :category_id,
			:image_url, :image_alt, :availability, :stock_quantity, :ingredients, :allergens, :spice_level,
			:calories, :preparation_time, :protein, :carbs, :fat, :is_active, :is_featured, :is_vegetarian,
			:is_vegan, :is_gluten_free, :meta_title, :meta_description, :sort_order, :rating_average, :review_count
		)
		RETURNING created_at, updated_at
	`

	return r.namedReturning(ctx, "create", query, product, &product.CreatedAt, &product.UpdatedAt)
}

func (r *productRepository) Update(ctx context.Context, product *domain.Product) error {
	query := `
		UPDATE products SET
			name = :name, slug = :slug, description = :description, short_description = :short_description,
			price = :price, original_price = :original_price, category_id = :category_id,
			image_url = :image_url, image_alt = :image_alt, availability = :availability,
			stock_quantity = :stock_quantity, ingredients = :ingredients, allergens = :allergens,
			spice_level = :spice_level, calories = :calories, preparation_time = :preparation_time,
			protein = :protein, carbs = :carbs, fat = :fat, is_active = :is_active,
			is_featured = :is_featured, is_vegetarian = :is_vegetarian, is_vegan = :is_vegan,
			is_gluten_free = :is_gluten_free, meta_title = :meta_title, meta_description = :meta_description,
			sort_order = :sort_order
		WHERE id = :id
		RETURNING updated_at
	`

	return r.namedReturning(ctx, "update", query, product, &product.UpdatedAt)
}

func (r *productRepository) namedReturning(ctx context.Context, op, query string, product *domain.Product, dest ...interface{}) error {
	rows, err := sqlx.NamedQueryContext(ctx, conn(ctx, r.db), query, product)
	if err != nil {
		return productWriteError(op, err)
	}
	defer rows.Close()

	if !rows.Next() {
		if err := rows.Err(); err != nil {
			return productWriteError(op, err)
		}
		return ErrProductNotFound
	}
	if err := rows.Scan(dest...); err != nil {
		return fmt.Errorf("failed to scan %s result: %w", op, err)
	}
	return nil
}

// SoftDelete hides the product from every public read path
func (r *productRepository) SoftDelete(ctx context.Context, id uuid.UUID) error {
	result, err := conn(ctx, r.db).ExecContext(ctx, `UPDATE products SET is_active = FALSE WHERE id = $1`, id)
	if err != nil {
		return fmt.Errorf("failed to delete product: %w", err)
	}

	rowsAffected, err := result.RowsAffected()
	if err != nil {
		return fmt.Errorf("failed to get rows affected: %w", err)
	}
	if rowsAffected == 0 {
		return ErrProductNotFound
	}

	return nil
}

func (r *productRepository) FindByID(ctx context.Context, id uuid.UUID) (*domain.Product, error) {
	return r.findOne(ctx, productSelect+` WHERE p.id = $1`, id)
}

func (r *productRepository) FindBySlug(ctx context.Context, slug string) (*domain.Product, error) {
	return r.findOne(ctx, productSelect+` WHERE p.slug = $1`, slug)
}

func (r *productRepository) LockBySlug(ctx context.Context, slug string) (*domain.Product, error) {
	return r.findOne(ctx, productSelect+` WHERE p.slug = $1 FOR UPDATE OF p`, slug)
}

func (r *productRepository) findOne(ctx context.Context, query string, arg interface{}) (*domain.Product, error) {
	product := &domain.Product{}
	if err := sqlx.GetContext(ctx, conn(ctx, r.db), product, query, arg); err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return nil, ErrProductNotFound
		}
		return nil, fmt.Errorf("failed to find product: %w", err)
	}
	return product, nil
}

// UpdateStock writes stock and availability together
func (r *productRepository) UpdateStock(ctx context.Context, id uuid.UUID, stock int, availability domain.Availability) error {
	query := `UPDATE products SET stock_quantity = $2, availability = $3 WHERE id = $1`

	result, err := conn(ctx, r.db).ExecContext(ctx, query, id, stock, availability)
	if err != nil {
		return productWriteError("update stock of", err)
	}
	return expectOneRow(result, ErrProductNotFound)
}

func (r *productRepository) UpdateRating(ctx context.Context, id uuid.UUID, average decimal.Decimal, count int) error {
	query := `UPDATE products SET rating_average = $2, review_count = $3 WHERE id = $1`

	result, err := conn(ctx, r.db).ExecContext(ctx, query, id, average, count)
	if err != nil {
		return fmt.Errorf("failed to update product rating: %w", err)
	}
	return expectOneRow(result, ErrProductNotFound)
}

func productWhere(filter domain.ProductFilter) *whereBuilder {
	where := &whereBuilder{}
	where.add("p.is_active")

	if filter.CategoryID != nil {
		where.add("p.category_id = ?", *filter.CategoryID)
	}
	if filter.Featured {
		where.add("p.is_featured")
	}
	if filter.AvailableOnly {
		where.add("p.availability = 'available' AND p.stock_quantity > 0")
	}
	if filter.Vegetarian {
		where.add("p.is_vegetarian")
	}
	if filter.Vegan {
		where.add("p.is_vegan")
	}
	if filter.GlutenFree {
		where.add("p.is_gluten_free")
	}
	if filter.MinPrice != nil {
		where.add("p.price >= ?", *filter.MinPrice)
	}
	if filter.MaxPrice != nil {
		where.add("p.price <= ?", *filter.MaxPrice)
	}
	if search := strings.TrimSpace(filter.Search); search != "" {
		where.addShared(`(p.name ILIKE ? OR p.description ILIKE ? OR p.short_description ILIKE ?
			OR p.ingredients ILIKE ? OR c.name ILIKE ?)`, containsPattern(search))
	}

	return where
}

func (r *productRepository) List(ctx context.Context, filter domain.ProductFilter, page domain.PageRequest) ([]*domain.Product, int, error) {
	where := productWhere(filter)

	var total int
	countQuery := `SELECT COUNT(*) FROM products p JOIN categories c ON c.id = p.category_id` + where.sql()
	if err := sqlx.GetContext(ctx, conn(ctx, r.db), &total, countQuery, where.args...); err != nil {
		return nil, 0, fmt.Errorf("failed to count products: %w", err)
	}

	orderBy := buildOrderBy(filter.Ordering, productOrderings, defaultProductOrdering)
	query := productSelect + where.sql() +
		` ORDER BY ` + orderBy + `, p.id` +
		` LIMIT ` + where.next(page.PageSize) + ` OFFSET ` + where.next(page.Offset())

	products := []*domain.Product{}
	if err := sqlx.SelectContext(ctx, conn(ctx, r.db), &products, query, where.args...); err != nil {
		return nil, 0, fmt.Errorf("failed to list products: %w", err)
	}

	return products, total, nil
}

// Featured returns up to limit active, featured products that can be ordered now
func (r *productRepository) Featured(ctx context.Context, limit int) ([]*domain.Product, error) {
	where := productWhere(domain.ProductFilter{Featured: true, AvailableOnly: true})
	query := productSelect + where.sql() + ` ORDER BY ` + defaultProductOrdering + `, p.id LIMIT ` + where.next(limit)

	products := []*domain.Product{}
	if err := sqlx.SelectContext(ctx, conn(ctx, r.db), &products, query, where.args...); err != nil {
		return nil, fmt.Errorf("failed to list featured products: %w", err)
	}
	return products, nil
}

func (r *productRepository) SlugExists(ctx context.Context, slug string, excludeID *uuid.UUID) (bool, error) {
	query := `SELECT EXISTS (SELECT 1 FROM products WHERE slug = $1 AND ($2::uuid IS NULL OR id <> $2))`

	var exists bool
	if err := sqlx.GetContext(ctx, conn(ctx, r.db), &exists, query, slug, excludeID); err != nil {
		return false, fmt.Errorf("failed to check product slug: %w", err)
	}
	return exists, nil
}

func (r *productRepository) NameExistsInCategory(ctx context.Context, categoryID uuid.UUID, name string, excludeID *uuid.UUID) (bool, error) {
	query := `
		SELECT EXISTS (
			SELECT 1 FROM products
			WHERE category_id = $1 AND LOWER(name) = LOWER($2) AND ($3::uuid IS NULL OR id <> $3)
		)
	`

	var exists bool
	if err := sqlx.GetContext(ctx, conn(ctx, r.db), &exists, query, categoryID, name, excludeID); err != nil {
		return false, fmt.Errorf("failed to check product name: %w", err)
	}
	return exists, nil
}

// BulkUpdate applies the same field changes to every listed product in one statement.
// Setting availability to available skips products without stock.
func (r *productRepository) BulkUpdate(ctx context.Context, ids []uuid.UUID, update domain.BulkProductUpdate) (int64, error) {
	query, args, err := sqlx.In(`
		UPDATE products SET
			is_active = COALESCE(?, is_active),
			is_featured = COALESCE(?, is_featured),
			availability = CASE
				WHEN ?::varchar IS NULL THEN availability
				WHEN ? = 'available' AND stock_quantity = 0 THEN availability
				ELSE ?
			END,
			category_id = COALESCE(?::uuid, category_id),
			sort_order = COALESCE(?::integer, sort_order)
		WHERE id IN (?)
	`,
		update.IsActive,
		update.IsFeatured,
		update.Availability, update.Availability, update.Availability,
		update.CategoryID,
		update.SortOrder,
		ids,
	)
	if err != nil {
		return 0, fmt.Errorf("failed to build bulk update: %w", err)
	}

	db := conn(ctx, r.db)
	result, err := db.ExecContext(ctx, db.Rebind(query), args...)
	if err != nil {
		return 0, productWriteError("bulk update", err)
	}

	return result.RowsAffected()
}

func (r *productRepository) Statistics(ctx context.Context) (*domain.CatalogStatistics, error) {
	query := `
		SELECT
			COUNT(*) AS total_products,
			(SELECT COUNT(*) FROM categories WHERE is_active) AS total_categories,
			COUNT(*) FILTER (WHERE is_featured) AS featured_products,
			COUNT(*) FILTER (WHERE availability = 'available' AND stock_quantity > 0) AS available_products,
			COUNT(*) FILTER (WHERE is_vegetarian) AS vegetarian_products,
			COUNT(*) FILTER (WHERE is_vegan) AS vegan_products,
			COALESCE(ROUND(AVG(price), 2), 0) AS average_price
		FROM products
		WHERE is_active
	`

	stats := &domain.CatalogStatistics{}
	if err := sqlx.GetContext(ctx, conn(ctx, r.db), stats, query); err != nil {
		return nil, fmt.Errorf("failed to compute catalog statistics: %w", err)
	}

	perCategory := `
		SELECT c.name, COUNT(p.id) AS product_count
		FROM categories c
		JOIN products p ON p.category_id = c.id AND p.is_active
		WHERE c.is_active
		GROUP BY c.id, c.name, c.sort_order
		ORDER BY c.sort_order, c.name
	`
	stats.CategoriesWithProducts = []domain.CategoryProductCount{}
	if err := sqlx.SelectContext(ctx, conn(ctx, r.db), &stats.CategoriesWithProducts, perCategory); err != nil {
		return nil, fmt.Errorf("failed to count products per category: %w", err)
	}

	return stats, nil
}

func expectOneRow(result sql.Result, notFound error) error {
	rowsAffected, err := result.RowsAffected()
	if err != nil {
		return fmt.Errorf("failed to get rows affected: %w", err)
	}
	if rowsAffected == 0 {
		return notFound
	}
	return nil
}

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
)

var (
	ErrCategoryNotFound      = errors.New("category not found")
	ErrCategoryAlreadyExists = errors.New("category with this name already exists")
)

// CategoryRepository defines the interface for category data access
type CategoryRepository interface {
	Create(ctx context.Context, category *domain.Category) error
	Update(ctx context.Context, category *domain.Category) error
	SoftDelete(ctx context.Context, id uuid.UUID) error
	// FindByID returns the category whether or not it is active
	FindByID(ctx context.Context, id uuid.UUID) (*domain.Category, error)
	// List returns one page of active categories and the total number of matches
	List(ctx context.Context, filter domain.CategoryFilter, page domain.PageRequest) ([]*domain.Category, int, error)
	NameExists(ctx context.Context, name string, excludeID *uuid.UUID) (bool, error)
}

type categoryRepository struct {
	db *sqlx.DB
}

// NewCategoryRepository creates a new instance of CategoryRepository
func NewCategoryRepository(db *sqlx.DB) CategoryRepository {
	return &categoryRepository{db: db}
}

const categoryColumns = `
	c.id, c.name, c.description, c.image_url, c.is_active, c.sort_order, c.created_at, c.updated_at,
	(SELECT COUNT(*) FROM products p WHERE p.category_id = c.id AND p.is_active) AS active_products_count`

var categoryOrderings = map[string]string{
	"name":       "c.name",
	"sort_order": "c.sort_order",
	"created_at": "c.created_at",
}

func (r *categoryRepository) Create(ctx context.Context, category *domain.Category) error {
	query := `
		INSERT INTO categories (id, name, description, image_url, is_active, sort_order)
		VALUES ($1, $2, $3, $4, $5, $6)
		RETURNING created_at, updated_at
	`

	err := conn(ctx, r.db).QueryRowxContext(ctx, query,
		category.ID,
		category.Name,
		category.Description,
		category.ImageURL,
		category.IsActive,
		category.SortOrder,
	).Scan(&category.CreatedAt, &category.UpdatedAt)
	if err != nil {
		if isUniqueViolation(err, "idx_categories_name_lower") {
			return ErrCategoryAlreadyExists
		}
		return fmt.Errorf("failed to create category: %w", err)
	}

	return nil
}

func (r *categoryRepository) Update(ctx context.Context, category *domain.Category) error {
	query := `
		UPDATE categories
		SET name = $2, description = $3, image_url = $4, is_active = $5, sort_order = $6
		WHERE id = $1
		RETURNING updated_at
	`

	err := conn(ctx, r.db).QueryRowxContext(ctx, query,
		category.ID,
		category.Name,
		category.Description,
		category.ImageURL,
		category.IsActive,
		category.SortOrder,
	).Scan(&category.UpdatedAt)
	if err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return ErrCategoryNotFound
		}
		if isUniqueViolation(err, "idx_categories_name_lower") {
			return ErrCategoryAlreadyExists
		}
		return fmt.Errorf("failed to update category: %w", err)
	}

	return nil
}

// SoftDelete hides the category from every public read path
func (r *categoryRepository) SoftDelete(ctx context.Context, id uuid.UUID) error {
	result, err := conn(ctx, r.db).ExecContext(ctx, `UPDATE categories SET is_active = FALSE WHERE id = $1`, id)
	if err != nil {
		return fmt.Errorf("failed to delete category: %w", err)
	}

	rowsAffected, err := result.RowsAffected()
	if err != nil {
		return fmt.Errorf("failed to get rows affected: %w", err)
	}
	if rowsAffected == 0 {
		return ErrCategoryNotFound
	}

	return nil
}

func (r *categoryRepository) FindByID(ctx context.Context, id uuid.UUID) (*domain.Category, error) {
	query := `SELECT` + categoryColumns + ` FROM categories c WHERE c.id = $1`

	category := &domain.Category{}
	if err := sqlx.GetContext(ctx, conn(ctx, r.db), category, query, id); err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return nil, ErrCategoryNotFound
		}
		return nil, fmt.Errorf("failed to find category by ID: %w", err)
	}

	return category, nil
}

func (r *categoryRepository) List(ctx context.Context, filter domain.CategoryFilter, page domain.PageRequest) ([]*domain.Category, int, error) {
	var where whereBuilder
	where.add("c.is_active")
	if search := strings.TrimSpace(filter.Search); search != "" {
		where.addShared("(c.name ILIKE ? OR c.description ILIKE ?)", containsPattern(search))
	}

	var total int
	countQuery := `SELECT COUNT(*) FROM categories c` + where.sql()
	if err := sqlx.GetContext(ctx, conn(ctx, r.db), &total, countQuery, where.args...); err != nil {
		return nil, 0, fmt.Errorf("failed to count categories: %w", err)
	}

	orderBy := buildOrderBy(filter.Ordering, categoryOrderings, "c.sort_order ASC, c.name ASC")
	query := `SELECT` + categoryColumns + ` FROM categories c` + where.sql() +
		` ORDER BY ` + orderBy + `, c.id` +
		` LIMIT ` + where.next(page.PageSize) + ` OFFSET ` + where.next(page.Offset())

	categories := []*domain.Category{}
	if err := sqlx.SelectContext(ctx, conn(ctx, r.db), &categories, query, where.args...); err != nil {
		return nil, 0, fmt.Errorf("failed to list categories: %w", err)
	}

	return categories, total, nil
}

func (r *categoryRepository) NameExists(ctx context.Context, name string, excludeID *uuid.UUID) (bool, error) {
	query := `SELECT EXISTS (SELECT 1 FROM categories WHERE LOWER(name) = LOWER($1) AND ($2::uuid IS NULL OR id <> $2))`

	var exists bool
	if err := sqlx.GetContext(ctx, conn(ctx, r.db), &exists, query, name, excludeID); err != nil {
		return false, fmt.Errorf("failed to check category name: %w", err)
	}
	return exists, nil
}

// buildOrderBy translates a "field" or "-field" ordering into an ORDER BY list.
// Unknown fields fall back to def.
func buildOrderBy(ordering string, allowed map[string]string, def string) string {
	ordering = strings.TrimSpace(ordering)
	direction := "ASC"
	if strings.HasPrefix(ordering, "-") {
		direction = "DESC"
		ordering = ordering[1:]
	}

	column, ok := allowed[ordering]
	if !ok {
		return def
	}
	return column + " " + direction
}

package repository

import (
	"context"
	"database/sql"
	"errors"
	"fmt"

	"food-catalog/internal/domain"

	"github.com/google/uuid"
	"github.com/jmoiron/sqlx"
)

var ErrProductImageNotFound = errors.New("product image not found")

// ProductImageRepository defines the interface for product gallery data access
type ProductImageRepository interface {
	Create(ctx context.Context, image *domain.ProductImage) error
	ListByProduct(ctx context.Context, productID uuid.UUID) ([]*domain.ProductImage, error)
	// Delete removes the image only if it belongs to productID
	Delete(ctx context.Context, productID, imageID uuid.UUID) (*domain.ProductImage, error)
}

type productImageRepository struct {
	db *sqlx.DB
}

func NewProductImageRepository(db *sqlx.DB) ProductImageRepository {
	return &productImageRepository{db: db}
}

func (r *productImageRepository) Create(ctx context.Context, image *domain.ProductImage) error {
	query := `
		INSERT INTO product_images (id, product_id, image_url, alt_text, sort_order)
		VALUES ($1, $2, $3, $4, $5)
		RETURNING created_at
	`

	err := conn(ctx, r.db).QueryRowxContext(ctx, query,
		image.ID, image.ProductID, image.ImageURL, image.AltText, image.SortOrder,
	).Scan(&image.CreatedAt)
	if err != nil {
		if isForeignKeyViolation(err) {
			return ErrProductNotFound
		}
		return fmt.Errorf("failed to create product image: %w", err)
	}
	return nil
}

func (r *productImageRepository) ListByProduct(ctx context.Context, productID uuid.UUID) ([]*domain.ProductImage, error) {
	query := `
		SELECT id, product_id, image_url, alt_text, sort_order, created_at
		FROM product_images
		WHERE product_id = $1
		ORDER BY sort_order, created_at
	`

	images := []*domain.ProductImage{}
	if err := sqlx.SelectContext(ctx, conn(ctx, r.db), &images, query, productID); err != nil {
		return nil, fmt.Errorf("failed to list product images: %w", err)
	}
	return images, nil
}

func (r *productImageRepository) Delete(ctx context.Context, productID, imageID uuid.UUID) (*domain.ProductImage, error) {
	query := `
		DELETE FROM product_images
		WHERE id = $1 AND product_id = $2
		RETURNING id, product_id, image_url, alt_text, sort_order, created_at
	`

	image := &domain.ProductImage{}
	if err := sqlx.GetContext(ctx, conn(ctx, r.db), image, query, imageID, productID); err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return nil, ErrProductImageNotFound
		}
		return nil, fmt.Errorf("failed to delete product image: %w", err)
	}
	return image, nil
}

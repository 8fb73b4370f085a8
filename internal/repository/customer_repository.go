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

var ErrCustomerNotFound = errors.New("customer not found")

// CustomerRepository defines the interface for customer data access
type CustomerRepository interface {
	Create(ctx context.Context, customer *domain.Customer) error
	Update(ctx context.Context, customer *domain.Customer) error
	Delete(ctx context.Context, id uuid.UUID) error
	FindByID(ctx context.Context, id uuid.UUID) (*domain.Customer, error)
	// List returns customers newest first together with the total count
	List(ctx context.Context, page domain.PageRequest) ([]*domain.Customer, int, error)
}

type customerRepository struct {
	db *sqlx.DB
}

func NewCustomerRepository(db *sqlx.DB) CustomerRepository {
	return &customerRepository{db: db}
}

func (r *customerRepository) Create(ctx context.Context, customer *domain.Customer) error {
	query := `
		INSERT INTO customers (id, name, address, email, phone)
		VALUES (:id, :name, :address, :email, :phone)
		RETURNING created_at, updated_at
	`

	rows, err := sqlx.NamedQueryContext(ctx, conn(ctx, r.db), query, customer)
	if err != nil {
		return fmt.Errorf("failed to create customer: %w", err)
	}
	defer rows.Close()

	if !rows.Next() {
		if err := rows.Err(); err != nil {
			return fmt.Errorf("failed to create customer: %w", err)
		}
		return errors.New("failed to create customer: no row returned")
	}
	return rows.Scan(&customer.CreatedAt, &customer.UpdatedAt)
}

func (r *customerRepository) Update(ctx context.Context, customer *domain.Customer) error {
	query := `
		UPDATE customers SET name = $2, address = $3, email = $4, phone = $5
		WHERE id = $1
		RETURNING updated_at
	`

	err := conn(ctx, r.db).QueryRowxContext(ctx, query,
		customer.ID, customer.Name, customer.Address, customer.Email, customer.Phone,
	).Scan(&customer.UpdatedAt)
	if err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return ErrCustomerNotFound
		}
		return fmt.Errorf("failed to update customer: %w", err)
	}
	return nil
}

func (r *customerRepository) Delete(ctx context.Context, id uuid.UUID) error {
	result, err := conn(ctx, r.db).ExecContext(ctx, `DELETE FROM customers WHERE id = $1`, id)
	if err != nil {
		return fmt.Errorf("failed to delete customer: %w", err)
	}
	return expectOneRow(result, ErrCustomerNotFound)
}

func (r *customerRepository) FindByID(ctx context.Context, id uuid.UUID) (*domain.Customer, error) {
	customer := &domain.Customer{}
	query := `SELECT id, name, address, email, phone, created_at, updated_at FROM customers WHERE id = $1`
	if err := sqlx.GetContext(ctx, conn(ctx, r.db), customer, query, id); err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return nil, ErrCustomerNotFound
		}
		return nil, fmt.Errorf("failed to find customer: %w", err)
	}
	return customer, nil
}

func (r *customerRepository) List(ctx context.Context, page domain.PageRequest) ([]*domain.Customer, int, error) {
	var total int
	if err := sqlx.GetContext(ctx, conn(ctx, r.db), &total, `SELECT COUNT(*) FROM customers`); err != nil {
		return nil, 0, fmt.Errorf("failed to count customers: %w", err)
	}

	query := `
		SELECT id, name, address, email, phone, created_at, updated_at
		FROM customers
		ORDER BY created_at DESC, id
		LIMIT $1 OFFSET $2
	`
	customers := []*domain.Customer{}
	if err := sqlx.SelectContext(ctx, conn(ctx, r.db), &customers, query, page.PageSize, page.Offset()); err != nil {
		return nil, 0, fmt.Errorf("failed to list customers: %w", err)
	}
	return customers, total, nil
}

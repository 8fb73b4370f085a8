package repository

import (
	"context"
	"testing"
	"time"

	"food-catalog/internal/domain"

	"github.com/google/uuid"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestCustomerLifecycle(t *testing.T) {
	resetTables(t)
	repo := NewCustomerRepository(testDB)
	ctx := context.Background()

	customer := &domain.Customer{ID: uuid.New(), Name: "Ada", Email: "ada@example.com"}
	require.NoError(t, repo.Create(ctx, customer))
	assert.False(t, customer.CreatedAt.IsZero())

	customer.Phone = "+44 20 7946 0000"
	require.NoError(t, repo.Update(ctx, customer))

	got, err := repo.FindByID(ctx, customer.ID)
	require.NoError(t, err)
	assert.Equal(t, "+44 20 7946 0000", got.Phone)
	assert.Equal(t, "ada@example.com", got.Email)

	require.NoError(t, repo.Delete(ctx, customer.ID))
	_, err = repo.FindByID(ctx, customer.ID)
	assert.ErrorIs(t, err, ErrCustomerNotFound)
	assert.ErrorIs(t, repo.Delete(ctx, customer.ID), ErrCustomerNotFound)
}

func TestCustomerListIsNewestFirst(t *testing.T) {
	resetTables(t)
	repo := NewCustomerRepository(testDB)
	ctx := context.Background()

	for _, name := range []string{"first", "second", "third"} {
		require.NoError(t, repo.Create(ctx, &domain.Customer{ID: uuid.New(), Name: name}))
		time.Sleep(5 * time.Millisecond)
	}

	list, total, err := repo.List(ctx, domain.PageRequest{Page: 1, PageSize: 2})
	require.NoError(t, err)
	assert.Equal(t, 3, total)
	require.Len(t, list, 2)
	assert.Equal(t, "third", list[0].Name)
	assert.Equal(t, "second", list[1].Name)
}

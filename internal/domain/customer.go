package domain

import (
	"time"

	"github.com/google/uuid"
)

// Customer is a contact record for someone who orders food
type Customer struct {
	ID        uuid.UUID `json:"id" db:"id"`
	Name      string    `json:"name" db:"name"`
	Address   string    `json:"address" db:"address"`
	Email     string    `json:"email" db:"email"`
	Phone     string    `json:"phone" db:"phone"`
	CreatedAt time.Time `json:"created_at" db:"created_at"`
	UpdatedAt time.Time `json:"updated_at" db:"updated_at"`
}

// CustomerDashboard summarises the customer base
type CustomerDashboard struct {
	TotalCustomers  int         `json:"total_customers"`
	RecentCustomers []*Customer `json:"recent_customers"`
}

package service

import (
	"context"
	"strings"

	"food-catalog/internal/domain"
	"food-catalog/internal/repository"

	"github.com/google/uuid"
)

// RecentCustomersLimit is how many customers the dashboard lists
const RecentCustomersLimit = 5

// CustomerInput carries the writable customer fields. Nil means unchanged.
type CustomerInput struct {
	Name    *string
	Address *string
	Email   *string
	Phone   *string
}

func (in CustomerInput) apply(c *domain.Customer) {
	setIf(&c.Name, in.Name)
	setIf(&c.Address, in.Address)
	setIf(&c.Email, in.Email)
	setIf(&c.Phone, in.Phone)
}

type CustomerService interface {
	List(ctx context.Context, page domain.PageRequest) (*domain.Page[*domain.Customer], error)
	Get(ctx context.Context, id uuid.UUID) (*domain.Customer, error)
	Create(ctx context.Context, in CustomerInput) (*domain.Customer, error)
	Update(ctx context.Context, id uuid.UUID, in CustomerInput) (*domain.Customer, error)
	Delete(ctx context.Context, id uuid.UUID) error
	Dashboard(ctx context.Context) (*domain.CustomerDashboard, error)
}

type customerService struct {
	customers repository.CustomerRepository
}

func NewCustomerService(customers repository.CustomerRepository) CustomerService {
	return &customerService{customers: customers}
}

func (s *customerService) List(ctx context.Context, page domain.PageRequest) (*domain.Page[*domain.Customer], error) {
	items, total, err := s.customers.List(ctx, page)
	if err != nil {
		return nil, err
	}
	return newPage(items, total, page)
}

func (s *customerService) Get(ctx context.Context, id uuid.UUID) (*domain.Customer, error) {
	return s.customers.FindByID(ctx, id)
}

func (s *customerService) Create(ctx context.Context, in CustomerInput) (*domain.Customer, error) {
	customer := &domain.Customer{ID: uuid.New()}
	in.apply(customer)

	if err := validateCustomer(customer); err != nil {
		return nil, err
	}
	if err := s.customers.Create(ctx, customer); err != nil {
		return nil, err
	}
	return customer, nil
}

func (s *customerService) Update(ctx context.Context, id uuid.UUID, in CustomerInput) (*domain.Customer, error) {
	customer, err := s.customers.FindByID(ctx, id)
	if err != nil {
		return nil, err
	}
	in.apply(customer)

	if err := validateCustomer(customer); err != nil {
		return nil, err
	}
	if err := s.customers.Update(ctx, customer); err != nil {
		return nil, err
	}
	return customer, nil
}

func (s *customerService) Delete(ctx context.Context, id uuid.UUID) error {
	return s.customers.Delete(ctx, id)
}

func (s *customerService) Dashboard(ctx context.Context) (*domain.CustomerDashboard, error) {
	recent, total, err := s.customers.List(ctx, domain.PageRequest{Page: 1, PageSize: RecentCustomersLimit})
	if err != nil {
		return nil, err
	}
	return &domain.CustomerDashboard{TotalCustomers: total, RecentCustomers: recent}, nil
}

func validateCustomer(c *domain.Customer) error {
	verr := domain.NewValidationError()

	c.Name = strings.TrimSpace(c.Name)
	c.Email = strings.TrimSpace(c.Email)
	checkMaxLength(verr, "name", c.Name, 100)
	checkMaxLength(verr, "address", c.Address, 100)
	checkMaxLength(verr, "email", c.Email, 100)
	checkMaxLength(verr, "phone", c.Phone, 100)

	if c.Email != "" {
		if err := fieldValidator.Var(c.Email, "email"); err != nil {
			verr.Add("email", "Enter a valid email address.", errFieldLimit)
		}
	}

	return verr.ErrOrNil()
}

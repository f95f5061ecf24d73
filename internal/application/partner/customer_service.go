package partner

import (
	"context"

	appnumbering "github.com/buchmeister/backend/internal/application/numbering"
	"github.com/buchmeister/backend/internal/domain/numbering"
	"github.com/buchmeister/backend/internal/domain/partner"
	"github.com/buchmeister/backend/internal/domain/shared"
	"github.com/google/uuid"
)

// CustomerService manages customer master data
type CustomerService struct {
	customerRepo partner.CustomerRepository
	numbers      *appnumbering.Service
}

// NewCustomerService creates a new customer service
func NewCustomerService(customerRepo partner.CustomerRepository, numbers *appnumbering.Service) *CustomerService {
	return &CustomerService{
		customerRepo: customerRepo,
		numbers:      numbers,
	}
}

// CreateCustomerRequest is the request to create a customer
type CreateCustomerRequest struct {
	Name       string `json:"name" binding:"required"`
	Email      string `json:"email"`
	Phone      string `json:"phone"`
	Street     string `json:"street"`
	City       string `json:"city"`
	PostalCode string `json:"postal_code"`
	Country    string `json:"country"`
	VATID      string `json:"vat_id"`
	Notes      string `json:"notes"`
}

// CreateCustomer creates a customer with a freshly drawn customer number
func (s *CustomerService) CreateCustomer(ctx context.Context, req CreateCustomerRequest) (*partner.Customer, error) {
	if req.Email != "" {
		existing, err := s.customerRepo.FindByEmail(ctx, req.Email)
		if err != nil {
			return nil, err
		}
		if existing != nil {
			return nil, shared.NewDomainError("EMAIL_EXISTS", "A customer with this email already exists")
		}
	}

	number, err := s.numbers.NextNumber(ctx, numbering.DocumentTypeCustomer)
	if err != nil {
		return nil, err
	}

	customer, err := partner.NewCustomer(number, req.Name, req.Email)
	if err != nil {
		return nil, err
	}
	if err := customer.Update(req.Name, req.Email, req.Phone, req.Street, req.City, req.PostalCode, req.Country, req.VATID, req.Notes); err != nil {
		return nil, err
	}

	if err := s.customerRepo.Save(ctx, customer); err != nil {
		return nil, err
	}
	return customer, nil
}

// GetCustomer loads one customer by ID
func (s *CustomerService) GetCustomer(ctx context.Context, id uuid.UUID) (*partner.Customer, error) {
	customer, err := s.customerRepo.FindByID(ctx, id)
	if err != nil {
		return nil, err
	}
	if customer == nil {
		return nil, shared.ErrNotFound
	}
	return customer, nil
}

// ListCustomers returns a page of customers
func (s *CustomerService) ListCustomers(ctx context.Context, filter shared.Filter) (*shared.Paginated[partner.Customer], error) {
	customers, err := s.customerRepo.FindAll(ctx, filter)
	if err != nil {
		return nil, err
	}
	total, err := s.customerRepo.Count(ctx, filter)
	if err != nil {
		return nil, err
	}
	page := shared.NewPaginated(customers, total, filter.Page, filter.PageSize)
	return &page, nil
}

// UpdateCustomerRequest is the request to update a customer
type UpdateCustomerRequest struct {
	Name       string `json:"name" binding:"required"`
	Email      string `json:"email"`
	Phone      string `json:"phone"`
	Street     string `json:"street"`
	City       string `json:"city"`
	PostalCode string `json:"postal_code"`
	Country    string `json:"country"`
	VATID      string `json:"vat_id"`
	Notes      string `json:"notes"`
}

// UpdateCustomer replaces the editable master data of a customer
func (s *CustomerService) UpdateCustomer(ctx context.Context, id uuid.UUID, req UpdateCustomerRequest) (*partner.Customer, error) {
	customer, err := s.GetCustomer(ctx, id)
	if err != nil {
		return nil, err
	}

	if err := customer.Update(req.Name, req.Email, req.Phone, req.Street, req.City, req.PostalCode, req.Country, req.VATID, req.Notes); err != nil {
		return nil, err
	}
	if err := s.customerRepo.Save(ctx, customer); err != nil {
		return nil, err
	}
	return customer, nil
}

// ArchiveCustomer hides a customer from pickers without deleting it
func (s *CustomerService) ArchiveCustomer(ctx context.Context, id uuid.UUID) (*partner.Customer, error) {
	customer, err := s.GetCustomer(ctx, id)
	if err != nil {
		return nil, err
	}
	if err := customer.Archive(); err != nil {
		return nil, err
	}
	if err := s.customerRepo.Save(ctx, customer); err != nil {
		return nil, err
	}
	return customer, nil
}

// ActivateCustomer re-activates an archived customer
func (s *CustomerService) ActivateCustomer(ctx context.Context, id uuid.UUID) (*partner.Customer, error) {
	customer, err := s.GetCustomer(ctx, id)
	if err != nil {
		return nil, err
	}
	customer.Activate()
	if err := s.customerRepo.Save(ctx, customer); err != nil {
		return nil, err
	}
	return customer, nil
}

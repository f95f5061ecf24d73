package partner

import (
	"regexp"
	"strings"
	"time"

	"github.com/buchmeister/backend/internal/domain/shared"
)

// CustomerStatus represents the status of a customer
type CustomerStatus string

const (
	CustomerStatusActive   CustomerStatus = "active"
	CustomerStatusArchived CustomerStatus = "archived"
)

var emailPattern = regexp.MustCompile(`^[^\s@]+@[^\s@]+\.[^\s@]+$`)

// Customer is the aggregate root for customer master data. Invoices and
// quotes reference customers by ID and carry a denormalized name copy so
// issued documents stay readable even after the customer changes.
type Customer struct {
	shared.BaseAggregateRoot
	CustomerNumber string         `gorm:"type:varchar(50);not null;uniqueIndex"`
	Name           string         `gorm:"type:varchar(200);not null"`
	Email          string         `gorm:"type:varchar(200);index"`
	Phone          string         `gorm:"type:varchar(50)"`
	Street         string         `gorm:"type:varchar(200)"`
	City           string         `gorm:"type:varchar(100)"`
	PostalCode     string         `gorm:"type:varchar(20)"`
	Country        string         `gorm:"type:varchar(100);default:'Deutschland'"`
	VATID          string         `gorm:"type:varchar(50)"` // USt-IdNr.
	Notes          string         `gorm:"type:text"`
	Status         CustomerStatus `gorm:"type:varchar(20);not null;default:'active'"`
}

// TableName returns the table name for GORM
func (Customer) TableName() string {
	return "customers"
}

// NewCustomer creates a new customer. The customer number comes from the
// document sequence and is never chosen by the caller.
func NewCustomer(customerNumber, name, email string) (*Customer, error) {
	if customerNumber == "" {
		return nil, shared.NewDomainError("INVALID_CUSTOMER_NUMBER", "Customer number cannot be empty")
	}
	name = strings.TrimSpace(name)
	if name == "" {
		return nil, shared.NewDomainError("INVALID_CUSTOMER_NAME", "Customer name cannot be empty")
	}
	email = strings.TrimSpace(email)
	if email != "" && !emailPattern.MatchString(email) {
		return nil, shared.NewDomainError("INVALID_EMAIL", "Invalid email address")
	}

	customer := &Customer{
		BaseAggregateRoot: shared.NewBaseAggregateRoot(),
		CustomerNumber:    customerNumber,
		Name:              name,
		Email:             email,
		Country:           "Deutschland",
		Status:            CustomerStatusActive,
	}

	customer.AddDomainEvent(NewCustomerCreatedEvent(customer))

	return customer, nil
}

// Update replaces the editable master data fields
func (c *Customer) Update(name, email, phone, street, city, postalCode, country, vatID, notes string) error {
	name = strings.TrimSpace(name)
	if name == "" {
		return shared.NewDomainError("INVALID_CUSTOMER_NAME", "Customer name cannot be empty")
	}
	email = strings.TrimSpace(email)
	if email != "" && !emailPattern.MatchString(email) {
		return shared.NewDomainError("INVALID_EMAIL", "Invalid email address")
	}

	c.Name = name
	c.Email = email
	c.Phone = strings.TrimSpace(phone)
	c.Street = street
	c.City = city
	c.PostalCode = postalCode
	if country != "" {
		c.Country = country
	}
	c.VATID = strings.TrimSpace(vatID)
	c.Notes = notes
	c.UpdatedAt = time.Now()

	return nil
}

// Archive marks the customer as archived. Archived customers stay
// referenced by their documents but are hidden from pickers.
func (c *Customer) Archive() error {
	if c.Status == CustomerStatusArchived {
		return shared.NewDomainError("INVALID_STATE", "Customer is already archived")
	}
	c.Status = CustomerStatusArchived
	c.UpdatedAt = time.Now()
	return nil
}

// Activate re-activates an archived customer
func (c *Customer) Activate() {
	c.Status = CustomerStatusActive
	c.UpdatedAt = time.Now()
}

// IsActive returns true if the customer is active
func (c *Customer) IsActive() bool {
	return c.Status == CustomerStatusActive
}

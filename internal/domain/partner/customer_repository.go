package partner

import (
	"context"

	"github.com/buchmeister/backend/internal/domain/shared"
)

// CustomerRepository defines persistence operations for customers
type CustomerRepository interface {
	shared.Repository[Customer]
	FindByNumber(ctx context.Context, customerNumber string) (*Customer, error)
	FindByEmail(ctx context.Context, email string) (*Customer, error)
}

package partner

import (
	"context"
	"sync"
	"testing"

	appnumbering "github.com/buchmeister/backend/internal/application/numbering"
	"github.com/buchmeister/backend/internal/domain/numbering"
	"github.com/buchmeister/backend/internal/domain/partner"
	"github.com/buchmeister/backend/internal/domain/shared"
	"github.com/google/uuid"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

// fakeCustomerRepository is an in-memory CustomerRepository
type fakeCustomerRepository struct {
	customers map[uuid.UUID]*partner.Customer
}

func newFakeCustomerRepository() *fakeCustomerRepository {
	return &fakeCustomerRepository{customers: make(map[uuid.UUID]*partner.Customer)}
}

func (r *fakeCustomerRepository) FindByID(_ context.Context, id uuid.UUID) (*partner.Customer, error) {
	return r.customers[id], nil
}

func (r *fakeCustomerRepository) FindAll(_ context.Context, _ shared.Filter) ([]partner.Customer, error) {
	out := make([]partner.Customer, 0, len(r.customers))
	for _, c := range r.customers {
		out = append(out, *c)
	}
	return out, nil
}

func (r *fakeCustomerRepository) Save(_ context.Context, customer *partner.Customer) error {
	r.customers[customer.ID] = customer
	return nil
}

func (r *fakeCustomerRepository) Delete(_ context.Context, id uuid.UUID) error {
	delete(r.customers, id)
	return nil
}

func (r *fakeCustomerRepository) Count(_ context.Context, _ shared.Filter) (int64, error) {
	return int64(len(r.customers)), nil
}

func (r *fakeCustomerRepository) FindByNumber(_ context.Context, number string) (*partner.Customer, error) {
	for _, c := range r.customers {
		if c.CustomerNumber == number {
			return c, nil
		}
	}
	return nil, nil
}

func (r *fakeCustomerRepository) FindByEmail(_ context.Context, email string) (*partner.Customer, error) {
	for _, c := range r.customers {
		if c.Email == email {
			return c, nil
		}
	}
	return nil, nil
}

var _ partner.CustomerRepository = (*fakeCustomerRepository)(nil)

// memorySequenceRepository mirrors the database counter semantics
type memorySequenceRepository struct {
	mu       sync.Mutex
	counters map[numbering.SequenceKey]int
}

func (r *memorySequenceRepository) NextNumber(_ context.Context, key numbering.SequenceKey) (int, error) {
	r.mu.Lock()
	defer r.mu.Unlock()
	r.counters[key]++
	return r.counters[key], nil
}

func (r *memorySequenceRepository) Current(_ context.Context, key numbering.SequenceKey) (*numbering.DocumentSequence, error) {
	r.mu.Lock()
	defer r.mu.Unlock()
	last, ok := r.counters[key]
	if !ok {
		return nil, nil
	}
	return &numbering.DocumentSequence{DocumentType: key.DocumentType, Year: key.Year, Month: key.Month, LastNumber: last}, nil
}

func (r *memorySequenceRepository) Reset(_ context.Context, documentType string) error {
	r.mu.Lock()
	defer r.mu.Unlock()
	for key := range r.counters {
		if key.DocumentType == documentType {
			delete(r.counters, key)
		}
	}
	return nil
}

var _ numbering.SequenceRepository = (*memorySequenceRepository)(nil)

func setupCustomerTest() (*CustomerService, *fakeCustomerRepository) {
	repo := newFakeCustomerRepository()
	numbers := appnumbering.NewService(
		&memorySequenceRepository{counters: make(map[numbering.SequenceKey]int)},
		map[string]numbering.Definition{
			numbering.DocumentTypeCustomer: {Prefix: "KD", Mode: numbering.ModeContinuous, Padding: 3},
		},
	)
	return NewCustomerService(repo, numbers), repo
}

func TestCreateCustomer(t *testing.T) {
	ctx := context.Background()
	svc, repo := setupCustomerTest()

	customer, err := svc.CreateCustomer(ctx, CreateCustomerRequest{
		Name:       "Muster GmbH",
		Email:      "info@muster.example",
		City:       "Berlin",
		PostalCode: "10115",
	})
	require.NoError(t, err)

	assert.Equal(t, "KD-001", customer.CustomerNumber)
	assert.Equal(t, "Deutschland", customer.Country)
	assert.True(t, customer.IsActive())

	second, err := svc.CreateCustomer(ctx, CreateCustomerRequest{Name: "Beispiel AG"})
	require.NoError(t, err)
	assert.Equal(t, "KD-002", second.CustomerNumber)

	stored, err := repo.FindByNumber(ctx, "KD-001")
	require.NoError(t, err)
	require.NotNil(t, stored)
	assert.Equal(t, "Muster GmbH", stored.Name)
}

func TestCreateCustomerDuplicateEmail(t *testing.T) {
	ctx := context.Background()
	svc, _ := setupCustomerTest()

	_, err := svc.CreateCustomer(ctx, CreateCustomerRequest{Name: "A", Email: "a@b.example"})
	require.NoError(t, err)

	_, err = svc.CreateCustomer(ctx, CreateCustomerRequest{Name: "B", Email: "a@b.example"})
	require.Error(t, err)
	assert.Contains(t, err.Error(), "email already exists")
}

func TestCreateCustomerInvalidEmail(t *testing.T) {
	svc, _ := setupCustomerTest()

	_, err := svc.CreateCustomer(context.Background(), CreateCustomerRequest{Name: "A", Email: "not-an-email"})
	require.Error(t, err)
}

func TestUpdateCustomer(t *testing.T) {
	ctx := context.Background()
	svc, _ := setupCustomerTest()

	customer, err := svc.CreateCustomer(ctx, CreateCustomerRequest{Name: "Muster GmbH"})
	require.NoError(t, err)

	updated, err := svc.UpdateCustomer(ctx, customer.ID, UpdateCustomerRequest{
		Name:  "Muster & Sohn GmbH",
		VATID: "DE123456789",
	})
	require.NoError(t, err)
	assert.Equal(t, "Muster & Sohn GmbH", updated.Name)
	assert.Equal(t, "DE123456789", updated.VATID)
	// The customer number never changes
	assert.Equal(t, "KD-001", updated.CustomerNumber)
}

func TestArchiveAndActivateCustomer(t *testing.T) {
	ctx := context.Background()
	svc, _ := setupCustomerTest()

	customer, err := svc.CreateCustomer(ctx, CreateCustomerRequest{Name: "Muster GmbH"})
	require.NoError(t, err)

	archived, err := svc.ArchiveCustomer(ctx, customer.ID)
	require.NoError(t, err)
	assert.False(t, archived.IsActive())

	_, err = svc.ArchiveCustomer(ctx, customer.ID)
	require.Error(t, err)

	activated, err := svc.ActivateCustomer(ctx, customer.ID)
	require.NoError(t, err)
	assert.True(t, activated.IsActive())
}

func TestGetCustomerNotFound(t *testing.T) {
	svc, _ := setupCustomerTest()

	_, err := svc.GetCustomer(context.Background(), uuid.New())
	assert.ErrorIs(t, err, shared.ErrNotFound)
}

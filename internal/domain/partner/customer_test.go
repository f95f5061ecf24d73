package partner

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestNewCustomer(t *testing.T) {
	tests := []struct {
		name           string
		customerNumber string
		customerName   string
		email          string
		wantErr        bool
	}{
		{"valid", "KD-001", "Musterfirma GmbH", "info@musterfirma.de", false},
		{"valid without email", "KD-002", "Max Mustermann", "", false},
		{"empty number", "", "Musterfirma GmbH", "", true},
		{"empty name", "KD-003", "  ", "", true},
		{"invalid email", "KD-004", "Musterfirma GmbH", "not-an-email", true},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			c, err := NewCustomer(tt.customerNumber, tt.customerName, tt.email)
			if tt.wantErr {
				assert.Error(t, err)
				return
			}
			require.NoError(t, err)
			assert.Equal(t, tt.customerNumber, c.CustomerNumber)
			assert.Equal(t, CustomerStatusActive, c.Status)
			assert.Equal(t, "Deutschland", c.Country)
			assert.Len(t, c.GetDomainEvents(), 1)
		})
	}
}

func TestCustomerUpdate(t *testing.T) {
	c, err := NewCustomer("KD-001", "Musterfirma GmbH", "")
	require.NoError(t, err)

	require.NoError(t, c.Update("Musterfirma AG", "kontakt@musterfirma.de", "+49 30 1234567",
		"Hauptstraße 1", "Berlin", "10115", "", "DE123456789", "Stammkunde"))
	assert.Equal(t, "Musterfirma AG", c.Name)
	assert.Equal(t, "Deutschland", c.Country, "empty country keeps the default")
	assert.Equal(t, "DE123456789", c.VATID)

	assert.Error(t, c.Update("", "", "", "", "", "", "", "", ""))
	assert.Error(t, c.Update("Name", "bad email", "", "", "", "", "", "", ""))
}

func TestCustomerArchive(t *testing.T) {
	c, err := NewCustomer("KD-001", "Musterfirma GmbH", "")
	require.NoError(t, err)

	require.NoError(t, c.Archive())
	assert.False(t, c.IsActive())
	assert.Error(t, c.Archive())

	c.Activate()
	assert.True(t, c.IsActive())
}

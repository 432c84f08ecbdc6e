package domain

import (
	"errors"
	"time"

	"github.com/google/uuid"
)

// ErrCustomerNotFound indicates that the customer is not found.
var ErrCustomerNotFound = errors.New("customer not found")

// Customer holds account owner data.
type Customer struct {
	ID        uuid.UUID `json:"id"`
	Name      string    `json:"name"`
	Address   string    `json:"address"`
	CreatedAt time.Time `json:"created_at"`
}

// CreateCustomerParams is the input data to create a customer.
type CreateCustomerParams struct {
	ID      uuid.UUID
	Name    string
	Address string
}

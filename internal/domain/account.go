// Package domain provides definitions of all entities.
package domain

import (
	"errors"
	"time"

	"github.com/google/uuid"
	"github.com/shopspring/decimal"
)

var (
	// ErrAccountNotFound indicates that the account is not found.
	ErrAccountNotFound = errors.New("account not found")
	// ErrAccountNumberExists indicates that the generated account number is already taken.
	ErrAccountNumberExists = errors.New("account number already exists")
	// ErrConflict indicates that the account was modified after it had been loaded.
	ErrConflict = errors.New("account modified concurrently")
)

// Account holds customer funds.
//
// Version is bumped by the ledger on every committed balance change and is
// used to detect stale snapshots.
type Account struct {
	ID         uuid.UUID       `json:"id"`
	CustomerID uuid.UUID       `json:"customer_id"`
	Number     string          `json:"number"`
	Balance    decimal.Decimal `json:"balance"`
	Version    int64           `json:"-"`
	CreatedAt  time.Time       `json:"created_at"`
}

// ListAccountsParams is the input data to list accounts.
//
// A nil CustomerID lists accounts of all customers.
type ListAccountsParams struct {
	CustomerID uuid.UUID
	Limit      int32
	Offset     int32
}

// CreateAccountParams is the input data to create an account.
type CreateAccountParams struct {
	ID         uuid.UUID
	CustomerID uuid.UUID
	Number     string
}

// Package test provides shared test helpers.
package test

import (
	"context"
	"database/sql"
	"testing"
	"time"

	"github.com/go-petr/core-bank/internal/accountrepo"
	"github.com/go-petr/core-bank/internal/customerrepo"
	"github.com/go-petr/core-bank/internal/domain"
	"github.com/go-petr/core-bank/internal/ledgerrepo"
	"github.com/go-petr/core-bank/internal/txrecorder"
	"github.com/go-petr/core-bank/pkg/dbpkg"
	"github.com/go-petr/core-bank/pkg/randompkg"
	"github.com/google/uuid"
	"github.com/shopspring/decimal"
)

// SeedCustomer creates random Customer.
func SeedCustomer(t *testing.T, db dbpkg.SQLInterface) domain.Customer {
	t.Helper()

	arg := domain.CreateCustomerParams{
		ID:      uuid.Must(uuid.NewV7()),
		Name:    randompkg.Name(),
		Address: randompkg.String(20),
	}

	customer, err := customerrepo.NewRepoPGS(db).Create(context.Background(), arg)
	if err != nil {
		t.Fatalf("customerRepo.Create(context.Background(), %+v) returned error: %v", arg, err)
	}

	return customer
}

// SeedAccount creates Account with zero balance for the given customer.
func SeedAccount(t *testing.T, db dbpkg.SQLInterface, customerID uuid.UUID) domain.Account {
	t.Helper()

	arg := domain.CreateAccountParams{
		ID:         uuid.Must(uuid.NewV7()),
		CustomerID: customerID,
		Number:     randompkg.AccountNumber(),
	}

	account, err := accountrepo.NewRepoPGS(db).Create(context.Background(), arg)
	if err != nil {
		t.Fatalf("accountRepo.Create(context.Background(), %+v) returned error: %v", arg, err)
	}

	return account
}

// SeedAccountWithBalance creates Account for a new customer and deposits
// balance into it, so that its history explains the balance.
func SeedAccountWithBalance(t *testing.T, db *sql.DB, balance string) domain.Account {
	t.Helper()

	customer := SeedCustomer(t, db)
	account := SeedAccount(t, db, customer.ID)

	amount := decimal.RequireFromString(balance)
	if !amount.IsPositive() {
		return account
	}

	account.Balance = amount
	deposit := txrecorder.New().Deposit(account.ID, amount, time.Now())

	stored, err := ledgerrepo.NewRepoPGS(db).Commit(context.Background(), []domain.Account{account}, []domain.Transaction{deposit})
	if err != nil {
		t.Fatalf("ledger.Commit(%v, %v) returned error: %v", account.ID, balance, err)
	}

	return stored[0]
}

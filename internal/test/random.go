package test

import (
	"time"

	"github.com/go-petr/core-bank/internal/domain"
	"github.com/go-petr/core-bank/pkg/randompkg"
	"github.com/google/uuid"
)

// RandomCustomer returns random customer.
func RandomCustomer() domain.Customer {
	return domain.Customer{
		ID:        uuid.Must(uuid.NewV7()),
		Name:      randompkg.Name(),
		Address:   randompkg.String(20),
		CreatedAt: time.Now().Truncate(time.Second).UTC(),
	}
}

// RandomAccount returns random account with a random balance.
func RandomAccount() domain.Account {
	return domain.Account{
		ID:         uuid.Must(uuid.NewV7()),
		CustomerID: uuid.Must(uuid.NewV7()),
		Number:     randompkg.AccountNumber(),
		Balance:    randompkg.MoneyAmountBetween(100, 10_000),
		CreatedAt:  time.Now().Truncate(time.Second).UTC(),
	}
}

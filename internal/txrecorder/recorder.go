// Package txrecorder builds the ledger records justifying a balance change.
package txrecorder

import (
	"time"

	"github.com/go-petr/core-bank/internal/domain"
	"github.com/google/uuid"
	"github.com/shopspring/decimal"
)

// Recorder produces transactions with fresh identifiers.
type Recorder struct {
	newID func() uuid.UUID
}

// New returns Recorder generating time ordered UUIDv7 identifiers.
func New() *Recorder {
	return NewWithIDs(func() uuid.UUID {
		return uuid.Must(uuid.NewV7())
	})
}

// NewWithIDs returns Recorder using the given identifier generator.
func NewWithIDs(newID func() uuid.UUID) *Recorder {
	return &Recorder{newID: newID}
}

func (r *Recorder) record(accountID uuid.UUID, amount decimal.Decimal, kind domain.TransactionKind, at time.Time) domain.Transaction {
	return domain.Transaction{
		ID:        r.newID(),
		AccountID: accountID,
		Amount:    amount,
		Kind:      kind,
		CreatedAt: at.UTC(),
	}
}

// Deposit returns the record of a deposit into the account.
func (r *Recorder) Deposit(accountID uuid.UUID, amount decimal.Decimal, at time.Time) domain.Transaction {
	return r.record(accountID, amount, domain.Deposit, at)
}

// Withdraw returns the record of a withdrawal from the account.
func (r *Recorder) Withdraw(accountID uuid.UUID, amount decimal.Decimal, at time.Time) domain.Transaction {
	return r.record(accountID, amount, domain.Withdraw, at)
}

// Transfer returns the withdraw leg on the source and the deposit leg on the
// destination, in that order. Both legs share amount and timestamp.
func (r *Recorder) Transfer(sourceID, destinationID uuid.UUID, amount decimal.Decimal, at time.Time) []domain.Transaction {
	return []domain.Transaction{
		r.Withdraw(sourceID, amount, at),
		r.Deposit(destinationID, amount, at),
	}
}

package domain

import (
	"errors"
	"fmt"
	"time"

	"github.com/google/uuid"
	"github.com/shopspring/decimal"
)

var (
	// ErrInvalidInput indicates a malformed operation request.
	ErrInvalidInput = errors.New("invalid input")
	// ErrSameAccount indicates a transfer whose destination is the source account.
	ErrSameAccount = fmt.Errorf("%w: source and destination accounts are the same", ErrInvalidInput)
	// ErrAmountPrecision indicates an amount with more fractional digits than the ledger keeps.
	ErrAmountPrecision = fmt.Errorf("%w: amount has too many fractional digits", ErrInvalidInput)
	// ErrAmountOutOfRange indicates an amount with more integer digits than the ledger keeps.
	ErrAmountOutOfRange = fmt.Errorf("%w: amount is out of range", ErrInvalidInput)
	// ErrAmountNotPositive indicates zero or negative amount.
	ErrAmountNotPositive = errors.New("amount must be positive")
	// ErrInsufficientFunds indicates that the account balance does not cover the amount.
	ErrInsufficientFunds = errors.New("insufficient funds")
	// ErrDestinationNotFound indicates that the transfer destination account is not found.
	ErrDestinationNotFound = errors.New("destination account not found")
	// ErrBalanceLimitExceeded indicates that the resulting balance would not fit the ledger.
	ErrBalanceLimitExceeded = errors.New("balance limit exceeded")
	// ErrContention indicates that the operation kept conflicting with concurrent updates.
	ErrContention = errors.New("account is busy, try again later")
)

// TransactionKind tells in which direction the transaction moved the balance.
type TransactionKind string

// Supported transaction kinds.
const (
	Deposit  TransactionKind = "Deposit"
	Withdraw TransactionKind = "Withdraw"
)

// Transaction is an append-only ledger record explaining a balance change.
//
// A transfer is stored as a Withdraw on the source and a Deposit on the
// destination sharing Amount and CreatedAt.
type Transaction struct {
	ID        uuid.UUID       `json:"id"`
	AccountID uuid.UUID       `json:"account_id"`
	Amount    decimal.Decimal `json:"amount"`
	Kind      TransactionKind `json:"kind"`
	CreatedAt time.Time       `json:"created_at"`
}

// Signed returns the amount as it affects the account balance.
func (t Transaction) Signed() decimal.Decimal {
	if t.Kind == Withdraw {
		return t.Amount.Neg()
	}

	return t.Amount
}

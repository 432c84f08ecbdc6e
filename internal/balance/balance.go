// Package balance holds the rules deciding whether a balance change is admissible.
//
// All functions are pure: they work on the supplied snapshot values only.
package balance

import (
	"github.com/go-petr/core-bank/internal/domain"
	"github.com/shopspring/decimal"
)

// Scale is the number of fractional digits kept by the ledger.
const Scale = 8

// Precision is the number of significant digits kept by the ledger.
const Precision = 28

// maxCoefficientBits bounds the coefficient of an amount written with up to
// Precision-Scale integer and Precision fractional digits.
const maxCoefficientBits = 160

// MaxBalance is the largest balance the ledger can store, NUMERIC(28,8).
var MaxBalance = decimal.RequireFromString("99999999999999999999.99999999")

// Legs holds the resulting balances of both transfer accounts.
type Legs struct {
	Source      decimal.Decimal
	Destination decimal.Decimal
}

// CheckRange rejects amounts, regardless of sign, that are written with more
// digits than the ledger can store. It only inspects the exponent and the
// coefficient size, so it is safe to call on untrusted input before any
// arithmetic rescales the amount.
func CheckRange(amount decimal.Decimal) error {
	exp := amount.Exponent()

	if exp < -Precision {
		return domain.ErrAmountPrecision
	}

	if exp > Precision-Scale || amount.Coefficient().BitLen() > maxCoefficientBits {
		return domain.ErrAmountOutOfRange
	}

	if amount.NumDigits()+int(exp) > Precision-Scale {
		return domain.ErrAmountOutOfRange
	}

	return nil
}

// CheckAmount rejects amounts that are not strictly positive, that do not fit
// the ledger or that carry more precision than the ledger keeps.
func CheckAmount(amount decimal.Decimal) error {
	if !amount.IsPositive() {
		return domain.ErrAmountNotPositive
	}

	if err := CheckRange(amount); err != nil {
		return err
	}

	if !amount.Equal(amount.Truncate(Scale)) {
		return domain.ErrAmountPrecision
	}

	return nil
}

// Deposit returns the balance after crediting amount.
func Deposit(balance, amount decimal.Decimal) (decimal.Decimal, error) {
	if !amount.IsPositive() {
		return balance, domain.ErrAmountNotPositive
	}

	if err := CheckRange(amount); err != nil {
		return balance, err
	}

	return credit(balance, amount)
}

// Withdraw returns the balance after debiting amount.
func Withdraw(balance, amount decimal.Decimal) (decimal.Decimal, error) {
	if !amount.IsPositive() {
		return balance, domain.ErrAmountNotPositive
	}

	if err := CheckRange(amount); err != nil {
		return balance, err
	}

	next := balance.Sub(amount)
	if next.IsNegative() {
		return balance, domain.ErrInsufficientFunds
	}

	return next, nil
}

// Transfer returns the balances of both accounts after moving amount from
// source to destination.
func Transfer(source, destination decimal.Decimal, destinationExists bool, amount decimal.Decimal) (Legs, error) {
	legs := Legs{Source: source, Destination: destination}

	nextSource, err := Withdraw(source, amount)
	if err != nil {
		return legs, err
	}

	if !destinationExists {
		return legs, domain.ErrDestinationNotFound
	}

	nextDestination, err := credit(destination, amount)
	if err != nil {
		return legs, err
	}

	return Legs{Source: nextSource, Destination: nextDestination}, nil
}

func credit(balance, amount decimal.Decimal) (decimal.Decimal, error) {
	next := balance.Add(amount)
	if next.GreaterThan(MaxBalance) {
		return balance, domain.ErrBalanceLimitExceeded
	}

	return next, nil
}

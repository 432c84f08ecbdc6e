package operationdelivery

import (
	"github.com/go-petr/core-bank/internal/balance"
	"github.com/go-playground/validator/v10"
	"github.com/shopspring/decimal"
)

// ValidDecimal validates whether the field holds a decimal number small enough
// for the ledger to store. The sign is left to the service.
var ValidDecimal validator.Func = func(fl validator.FieldLevel) bool {
	if s, ok := fl.Field().Interface().(string); ok {
		d, err := decimal.NewFromString(s)
		if err != nil {
			return false
		}

		return balance.CheckRange(d) == nil
	}

	return false
}

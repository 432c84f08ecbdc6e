// Package web defines common components for a web application.
package web

import (
	"errors"

	"github.com/go-playground/validator/v10"
)

// Stable error codes shared by all handlers.
const (
	CodeInvalidInput         = "invalid_input"
	CodeInternal             = "internal"
	CodeAmountNotPositive    = "amount_not_positive"
	CodeAccountNotFound      = "account_not_found"
	CodeDestinationNotFound  = "destination_not_found"
	CodeCustomerNotFound     = "customer_not_found"
	CodeInsufficientFunds    = "insufficient_funds"
	CodeBalanceLimitExceeded = "balance_limit_exceeded"
	CodeContention           = "contention"
	CodeStoreUnavailable     = "store_unavailable"
)

// Response holds the common response type for all APIs.
type Response struct {
	Data  any    `json:"data,omitempty"`
	Error string `json:"error,omitempty"`
	Code  string `json:"code,omitempty"`
}

// Error wraps a given err and its stable code into json friendly struct.
func Error(err error, code string) Response {
	return Response{Error: err.Error(), Code: code}
}

// BindError turns a request binding failure into an invalid input response.
//
// Validation failures are reported field by field, anything else (malformed
// json, wrong types) is reported as is.
func BindError(err error) Response {
	var ve validator.ValidationErrors
	if errors.As(err, &ve) && len(ve) > 0 {
		field := ve[0]
		return Response{Error: field.Field() + GetErrorMsg(field), Code: CodeInvalidInput}
	}

	return Response{Error: err.Error(), Code: CodeInvalidInput}
}

// GetErrorMsg returns human readable suffix for the failed validation tag.
func GetErrorMsg(fe validator.FieldError) string {
	switch fe.Tag() {
	case "required":
		return " field is required"
	case "min":
		return " must be greater or equal to " + fe.Param()
	case "max":
		return " must be less or equal to " + fe.Param()
	case "uuid":
		return " must be a valid uuid"
	case "decimal":
		return " must be a decimal number"
	}

	return " is invalid"
}

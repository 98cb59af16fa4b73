package model

import (
	"errors"
	"fmt"
)

// ErrNotFound is returned when an id or SKU does not resolve to a row.
var ErrNotFound = errors.New("not found")

type ValidationError struct {
	Field  string
	Reason string
}

func (e *ValidationError) Error() string {
	return fmt.Sprintf("invalid %s: %s", e.Field, e.Reason)
}

type InsufficientStockError struct {
	SKU       string
	Requested int64
	Available int64
}

func (e *InsufficientStockError) Error() string {
	return fmt.Sprintf("insufficient stock for %s: requested %d, available %d", e.SKU, e.Requested, e.Available)
}

type InsufficientPaymentError struct {
	TotalPrice   int64
	CashReceived int64
}

func (e *InsufficientPaymentError) Error() string {
	return fmt.Sprintf("insufficient payment: total %d, received %d", e.TotalPrice, e.CashReceived)
}

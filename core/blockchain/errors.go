package blockchain

import (
	"errors"
	"fmt"
)

// Admission errors. The ledger wraps them with detail, match with errors.Is.
var (
	ErrMissingAddress    = errors.New("missing address")
	ErrNonPositiveAmount = errors.New("amount must be positive")
	ErrInsufficientFunds = errors.New("insufficient balance")
	ErrInvalidAddress    = errors.New("invalid address")
)

// IntegrityError names the first block that fails chain verification.
type IntegrityError struct {
	Index  int
	Reason string
}

func (e *IntegrityError) Error() string {
	return fmt.Sprintf("block %d: %s", e.Index, e.Reason)
}

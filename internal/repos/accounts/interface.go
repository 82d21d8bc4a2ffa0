package accounts

import (
	"context"
	"database/sql"
	"errors"
	"fmt"
)

var (
	ErrInsufficientFunds = errors.New("insufficient funds")
	ErrAccountNotFound   = errors.New("account not found")
	ErrInvalidAmount     = errors.New("amount must be positive")
)

// MissingAccountError names the account that was not found. It matches
// ErrAccountNotFound under errors.Is.
type MissingAccountError struct {
	UserID uint64
}

func (e *MissingAccountError) Error() string {
	return fmt.Sprintf("account %d not found", e.UserID)
}

func (e *MissingAccountError) Unwrap() error {
	return ErrAccountNotFound
}

// Accounts owns Account.balance. Mutations happen only inside the caller's
// transaction; GetBalance is a lock-free read for display.
type Accounts interface {
	GetBalance(ctx context.Context, userID uint64) (int64, error)
	LockAndGetBalance(tx *sql.Tx, userID uint64) (int64, error)
	LockMany(tx *sql.Tx, userIDs ...uint64) (map[uint64]int64, error)
	Debit(tx *sql.Tx, userID uint64, amount int64) (int64, error)
	Credit(tx *sql.Tx, userID uint64, amount int64) (int64, error)
}

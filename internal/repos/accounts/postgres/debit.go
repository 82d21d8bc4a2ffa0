package accounts

import (
	"database/sql"
	"errors"
	"fmt"

	"github.com/fastprodman/stardust/internal/repos/accounts"
)

// Debit subtracts amount only if the balance covers it and returns the new
// balance. A missing account also reports ErrInsufficientFunds; callers that
// need to tell the two apart lock the row first.
func (r *accountsRepo) Debit(tx *sql.Tx, userID uint64, amount int64) (int64, error) {
	if amount <= 0 {
		return 0, accounts.ErrInvalidAmount
	}

	var balance int64

	err := tx.QueryRow(`
		UPDATE accounts
		SET balance = balance - $2
		WHERE id = $1
		  AND balance >= $2
		RETURNING balance
	`, userID, amount).Scan(&balance)
	if err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return 0, accounts.ErrInsufficientFunds
		}

		return 0, fmt.Errorf("debit: %w", err)
	}

	return balance, nil
}

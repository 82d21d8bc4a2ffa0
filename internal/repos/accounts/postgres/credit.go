package accounts

import (
	"database/sql"
	"errors"
	"fmt"

	"github.com/fastprodman/stardust/internal/repos/accounts"
)

func (r *accountsRepo) Credit(tx *sql.Tx, userID uint64, amount int64) (int64, error) {
	if amount <= 0 {
		return 0, accounts.ErrInvalidAmount
	}

	var balance int64

	err := tx.QueryRow(`
		UPDATE accounts
		SET balance = balance + $2
		WHERE id = $1
		RETURNING balance
	`, userID, amount).Scan(&balance)
	if err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return 0, accounts.ErrAccountNotFound
		}

		return 0, fmt.Errorf("credit: %w", err)
	}

	return balance, nil
}

package accounts

import (
	"database/sql"
	"errors"
	"fmt"
	"slices"

	"github.com/fastprodman/stardust/internal/repos/accounts"
)

func (r *accountsRepo) LockAndGetBalance(tx *sql.Tx, userID uint64) (int64, error) {
	var balance int64

	err := tx.QueryRow(`
		SELECT balance
		FROM accounts
		WHERE id = $1
		FOR UPDATE
	`, userID).Scan(&balance)
	if err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return 0, accounts.ErrAccountNotFound
		}

		return 0, fmt.Errorf("lock/get balance: %w", err)
	}

	return balance, nil
}

// LockMany locks every listed account in ascending id order, so concurrent
// two-party settlements acquire row locks in the same order.
func (r *accountsRepo) LockMany(tx *sql.Tx, userIDs ...uint64) (map[uint64]int64, error) {
	ids := slices.Clone(userIDs)
	slices.Sort(ids)
	ids = slices.Compact(ids)

	balances := make(map[uint64]int64, len(ids))
	for _, id := range ids {
		balance, err := r.LockAndGetBalance(tx, id)
		if err != nil {
			if errors.Is(err, accounts.ErrAccountNotFound) {
				return nil, &accounts.MissingAccountError{UserID: id}
			}

			return nil, fmt.Errorf("lock account %d: %w", id, err)
		}

		balances[id] = balance
	}

	return balances, nil
}

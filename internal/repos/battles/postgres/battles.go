package battles

import (
	"context"
	"database/sql"
	"fmt"
	"time"

	"github.com/fastprodman/stardust/internal/repos/battles"
)

var _ battles.Battles = (*battlesRepo)(nil)

type battlesRepo struct{ db *sql.DB }

func New(db *sql.DB) *battlesRepo {
	return &battlesRepo{db: db}
}

func (r *battlesRepo) Insert(tx *sql.Tx, b battles.Battle) (time.Time, error) {
	var createdAt time.Time

	err := tx.QueryRow(`
		INSERT INTO battles (id, user_id, pet_id, bet_amount, fee_amount, win_chance, roll, result, reward_amount)
		VALUES ($1, $2, $3, $4, $5, $6, $7, $8, $9)
		RETURNING created_at
	`, b.ID, b.UserID, b.PetID, b.BetAmount, b.FeeAmount, b.WinChance, b.Roll, string(b.Result), b.RewardAmount).
		Scan(&createdAt)
	if err != nil {
		return time.Time{}, fmt.Errorf("insert battle: %w", err)
	}

	return createdAt, nil
}

func (r *battlesRepo) ListByUser(ctx context.Context, userID uint64, limit int) ([]battles.Battle, error) {
	rows, err := r.db.QueryContext(ctx, `
		SELECT id, user_id, pet_id, bet_amount, fee_amount, win_chance, roll, result, reward_amount, created_at
		FROM battles
		WHERE user_id = $1
		ORDER BY created_at DESC, id
		LIMIT $2
	`, userID, limit)
	if err != nil {
		return nil, fmt.Errorf("list battles: %w", err)
	}
	defer rows.Close()

	out := make([]battles.Battle, 0)
	for rows.Next() {
		var (
			b      battles.Battle
			result string
		)

		err = rows.Scan(&b.ID, &b.UserID, &b.PetID, &b.BetAmount, &b.FeeAmount,
			&b.WinChance, &b.Roll, &result, &b.RewardAmount, &b.CreatedAt)
		if err != nil {
			return nil, fmt.Errorf("scan battle: %w", err)
		}

		b.Result = battles.Result(result)
		out = append(out, b)
	}

	err = rows.Err()
	if err != nil {
		return nil, fmt.Errorf("iterate battles: %w", err)
	}

	return out, nil
}

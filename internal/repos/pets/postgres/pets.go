package pets

import (
	"context"
	"database/sql"
	"errors"
	"fmt"

	"github.com/fastprodman/stardust/internal/repos/pets"
)

var _ pets.Pets = (*petsRepo)(nil)

type petsRepo struct{ db *sql.DB }

func New(db *sql.DB) *petsRepo {
	return &petsRepo{db: db}
}

func (r *petsRepo) Get(ctx context.Context, userID uint64) (pets.Pet, error) {
	var p pets.Pet

	err := r.db.QueryRowContext(ctx, `
		SELECT id, user_id, stage, hunger
		FROM pets
		WHERE user_id = $1
	`, userID).Scan(&p.ID, &p.UserID, &p.Stage, &p.Hunger)
	if err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return pets.Pet{}, pets.ErrPetNotFound
		}

		return pets.Pet{}, fmt.Errorf("get pet: %w", err)
	}

	return p, nil
}

func (r *petsRepo) GetForUpdate(tx *sql.Tx, userID uint64) (pets.Pet, error) {
	var p pets.Pet

	err := tx.QueryRow(`
		SELECT id, user_id, stage, hunger
		FROM pets
		WHERE user_id = $1
		FOR UPDATE
	`, userID).Scan(&p.ID, &p.UserID, &p.Stage, &p.Hunger)
	if err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return pets.Pet{}, pets.ErrPetNotFound
		}

		return pets.Pet{}, fmt.Errorf("lock/get pet: %w", err)
	}

	return p, nil
}

func (r *petsRepo) Update(tx *sql.Tx, petID int64, upd pets.Update) (pets.Pet, error) {
	var p pets.Pet

	err := tx.QueryRow(`
		UPDATE pets
		SET stage      = COALESCE($2, stage),
		    hunger     = COALESCE($3, hunger),
		    updated_at = now()
		WHERE id = $1
		RETURNING id, user_id, stage, hunger
	`, petID, upd.Stage, upd.Hunger).Scan(&p.ID, &p.UserID, &p.Stage, &p.Hunger)
	if err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return pets.Pet{}, pets.ErrPetNotFound
		}

		return pets.Pet{}, fmt.Errorf("update pet: %w", err)
	}

	return p, nil
}

package pets

import (
	"context"
	"database/sql"
	"errors"
)

var ErrPetNotFound = errors.New("pet not found")

type Pet struct {
	ID     int64  `json:"id"`
	UserID uint64 `json:"userId"`
	Stage  int    `json:"stage"`
	Hunger int    `json:"hunger"`
}

// Update lists the fields to change; nil fields are left as they are.
type Update struct {
	Stage  *int
	Hunger *int
}

type Pets interface {
	Get(ctx context.Context, userID uint64) (Pet, error)
	GetForUpdate(tx *sql.Tx, userID uint64) (Pet, error)
	Update(tx *sql.Tx, petID int64, upd Update) (Pet, error)
}

package lobbies

import (
	"context"
	"database/sql"
	"errors"
	"time"

	"github.com/google/uuid"
)

var (
	ErrLobbyNotFound    = errors.New("lobby not found")
	ErrNotWaiting       = errors.New("lobby is not waiting")
	ErrDuplicateWaiting = errors.New("creator already has a waiting lobby")
)

type Status string

const (
	StatusWaiting   Status = "waiting"
	StatusCompleted Status = "completed"
	StatusCancelled Status = "cancelled"
)

type Lobby struct {
	ID          uuid.UUID  `json:"id"`
	CreatorID   uint64     `json:"creatorId"`
	JoinerID    *uint64    `json:"joinerId,omitempty"`
	BetAmount   int64      `json:"betAmount"`
	Status      Status     `json:"status"`
	WinnerID    *uint64    `json:"winnerId,omitempty"`
	PrizeAmount *int64     `json:"prizeAmount,omitempty"`
	CreatedAt   time.Time  `json:"createdAt"`
	SettledAt   *time.Time `json:"settledAt,omitempty"`
}

// Settlement is the outcome written by a successful join.
type Settlement struct {
	JoinerID uint64
	WinnerID uint64
	Prize    int64
}

// Lobbies stores PvP lobbies. Status transitions are compare-and-set on
// status = 'waiting' and report ErrNotWaiting when the row already moved on.
type Lobbies interface {
	Insert(tx *sql.Tx, id uuid.UUID, creatorID uint64, bet int64) (Lobby, error)
	HasWaiting(tx *sql.Tx, creatorID uint64) (bool, error)
	GetForUpdate(tx *sql.Tx, id uuid.UUID) (Lobby, error)
	Complete(tx *sql.Tx, id uuid.UUID, s Settlement) (Lobby, error)
	Cancel(tx *sql.Tx, id uuid.UUID) (Lobby, error)
	ListWaiting(ctx context.Context) ([]Lobby, error)
	ListByUser(ctx context.Context, userID uint64, limit int) ([]Lobby, error)
}

package lobbies

import (
	"context"
	"database/sql"
	"errors"
	"fmt"

	"github.com/fastprodman/stardust/internal/infra/pgutils"
	"github.com/fastprodman/stardust/internal/repos/lobbies"
	"github.com/google/uuid"
)

var _ lobbies.Lobbies = (*lobbiesRepo)(nil)

const lobbyColumns = `id, creator_id, joiner_id, bet_amount, status, winner_id, prize_amount, created_at, settled_at`

type lobbiesRepo struct{ db *sql.DB }

func New(db *sql.DB) *lobbiesRepo {
	return &lobbiesRepo{db: db}
}

type scanner interface {
	Scan(dest ...any) error
}

func scanLobby(s scanner) (lobbies.Lobby, error) {
	var (
		l      lobbies.Lobby
		joiner sql.NullInt64
		winner sql.NullInt64
		prize  sql.NullInt64
		settle sql.NullTime
		status string
	)

	err := s.Scan(&l.ID, &l.CreatorID, &joiner, &l.BetAmount, &status, &winner, &prize, &l.CreatedAt, &settle)
	if err != nil {
		return lobbies.Lobby{}, err
	}

	l.Status = lobbies.Status(status)
	if joiner.Valid {
		id := uint64(joiner.Int64)
		l.JoinerID = &id
	}
	if winner.Valid {
		id := uint64(winner.Int64)
		l.WinnerID = &id
	}
	if prize.Valid {
		l.PrizeAmount = &prize.Int64
	}
	if settle.Valid {
		l.SettledAt = &settle.Time
	}

	return l, nil
}

func (r *lobbiesRepo) Insert(tx *sql.Tx, id uuid.UUID, creatorID uint64, bet int64) (lobbies.Lobby, error) {
	l, err := scanLobby(tx.QueryRow(`
		INSERT INTO lobbies (id, creator_id, bet_amount, status)
		VALUES ($1, $2, $3, 'waiting')
		RETURNING `+lobbyColumns, id, creatorID, bet))
	if err != nil {
		if pgutils.IsUniqueViolation(err) {
			return lobbies.Lobby{}, lobbies.ErrDuplicateWaiting
		}

		return lobbies.Lobby{}, fmt.Errorf("insert lobby: %w", err)
	}

	return l, nil
}

func (r *lobbiesRepo) HasWaiting(tx *sql.Tx, creatorID uint64) (bool, error) {
	var exists bool

	err := tx.QueryRow(`
		SELECT EXISTS(SELECT 1 FROM lobbies WHERE creator_id = $1 AND status = 'waiting')
	`, creatorID).Scan(&exists)
	if err != nil {
		return false, fmt.Errorf("check waiting lobby: %w", err)
	}

	return exists, nil
}

func (r *lobbiesRepo) GetForUpdate(tx *sql.Tx, id uuid.UUID) (lobbies.Lobby, error) {
	l, err := scanLobby(tx.QueryRow(`
		SELECT `+lobbyColumns+`
		FROM lobbies
		WHERE id = $1
		FOR UPDATE
	`, id))
	if err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return lobbies.Lobby{}, lobbies.ErrLobbyNotFound
		}

		return lobbies.Lobby{}, fmt.Errorf("lock/get lobby: %w", err)
	}

	return l, nil
}

func (r *lobbiesRepo) Complete(tx *sql.Tx, id uuid.UUID, s lobbies.Settlement) (lobbies.Lobby, error) {
	l, err := scanLobby(tx.QueryRow(`
		UPDATE lobbies
		SET status       = 'completed',
		    joiner_id    = $2,
		    winner_id    = $3,
		    prize_amount = $4,
		    settled_at   = now()
		WHERE id = $1
		  AND status = 'waiting'
		RETURNING `+lobbyColumns, id, s.JoinerID, s.WinnerID, s.Prize))
	if err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return lobbies.Lobby{}, lobbies.ErrNotWaiting
		}

		return lobbies.Lobby{}, fmt.Errorf("complete lobby: %w", err)
	}

	return l, nil
}

func (r *lobbiesRepo) Cancel(tx *sql.Tx, id uuid.UUID) (lobbies.Lobby, error) {
	l, err := scanLobby(tx.QueryRow(`
		UPDATE lobbies
		SET status     = 'cancelled',
		    settled_at = now()
		WHERE id = $1
		  AND status = 'waiting'
		RETURNING `+lobbyColumns, id))
	if err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return lobbies.Lobby{}, lobbies.ErrNotWaiting
		}

		return lobbies.Lobby{}, fmt.Errorf("cancel lobby: %w", err)
	}

	return l, nil
}

func (r *lobbiesRepo) ListWaiting(ctx context.Context) ([]lobbies.Lobby, error) {
	return r.list(ctx, `
		SELECT `+lobbyColumns+`
		FROM lobbies
		WHERE status = 'waiting'
		ORDER BY created_at DESC, id
	`)
}

// ListByUser returns settled lobbies the user created or joined.
func (r *lobbiesRepo) ListByUser(ctx context.Context, userID uint64, limit int) ([]lobbies.Lobby, error) {
	return r.list(ctx, `
		SELECT `+lobbyColumns+`
		FROM lobbies
		WHERE (creator_id = $1 OR joiner_id = $1)
		  AND status <> 'waiting'
		ORDER BY created_at DESC, id
		LIMIT $2
	`, userID, limit)
}

func (r *lobbiesRepo) list(ctx context.Context, query string, args ...any) ([]lobbies.Lobby, error) {
	rows, err := r.db.QueryContext(ctx, query, args...)
	if err != nil {
		return nil, fmt.Errorf("list lobbies: %w", err)
	}
	defer rows.Close()

	out := make([]lobbies.Lobby, 0)
	for rows.Next() {
		l, err := scanLobby(rows)
		if err != nil {
			return nil, fmt.Errorf("scan lobby: %w", err)
		}

		out = append(out, l)
	}

	err = rows.Err()
	if err != nil {
		return nil, fmt.Errorf("iterate lobbies: %w", err)
	}

	return out, nil
}

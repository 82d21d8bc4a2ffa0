package history

import (
	"context"
	"fmt"

	"github.com/fastprodman/stardust/internal/repos/battles"
	"github.com/fastprodman/stardust/internal/repos/lobbies"
)

const (
	DefaultLimit = 20
	MaxLimit     = 100
)

// Recorder serves settled wagers back to their participants, newest first.
// Writes happen inside the settling transaction, never here.
type Recorder struct {
	battles battles.Battles
	lobbies lobbies.Lobbies
}

func New(b battles.Battles, l lobbies.Lobbies) *Recorder {
	return &Recorder{battles: b, lobbies: l}
}

func (r *Recorder) BattleHistory(ctx context.Context, userID uint64, limit int) ([]battles.Battle, error) {
	out, err := r.battles.ListByUser(ctx, userID, normalize(limit))
	if err != nil {
		return nil, fmt.Errorf("battle history: %w", err)
	}

	return out, nil
}

// LobbyHistory lists completed and cancelled lobbies the user took part in.
func (r *Recorder) LobbyHistory(ctx context.Context, userID uint64, limit int) ([]lobbies.Lobby, error) {
	out, err := r.lobbies.ListByUser(ctx, userID, normalize(limit))
	if err != nil {
		return nil, fmt.Errorf("lobby history: %w", err)
	}

	return out, nil
}

func normalize(limit int) int {
	if limit <= 0 {
		return DefaultLimit
	}

	return min(limit, MaxLimit)
}

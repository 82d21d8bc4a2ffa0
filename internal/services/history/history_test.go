package history

import (
	"context"
	"errors"
	"testing"
	"time"

	"github.com/fastprodman/stardust/internal/repos/battles"
	"github.com/fastprodman/stardust/internal/repos/lobbies"
	"github.com/google/uuid"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

type fakeBattles struct {
	battles.Battles
	gotLimit int
	rows     []battles.Battle
	err      error
}

func (f *fakeBattles) ListByUser(_ context.Context, _ uint64, limit int) ([]battles.Battle, error) {
	f.gotLimit = limit
	return f.rows, f.err
}

type fakeLobbies struct {
	lobbies.Lobbies
	gotUser  uint64
	gotLimit int
	rows     []lobbies.Lobby
}

func (f *fakeLobbies) ListByUser(_ context.Context, userID uint64, limit int) ([]lobbies.Lobby, error) {
	f.gotUser, f.gotLimit = userID, limit
	return f.rows, nil
}

func TestBattleHistory_Limit(t *testing.T) {
	t.Parallel()

	tests := []struct {
		name string
		in   int
		want int
	}{
		{name: "zero_defaults", in: 0, want: DefaultLimit},
		{name: "negative_defaults", in: -3, want: DefaultLimit},
		{name: "explicit", in: 5, want: 5},
		{name: "at_cap", in: MaxLimit, want: MaxLimit},
		{name: "capped", in: 1 << 30, want: MaxLimit},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			t.Parallel()

			fb := &fakeBattles{rows: []battles.Battle{{ID: uuid.New(), CreatedAt: time.Now()}}}
			r := New(fb, &fakeLobbies{})

			got, err := r.BattleHistory(t.Context(), 1, tt.in)
			require.NoError(t, err)
			assert.Len(t, got, 1)
			assert.Equal(t, tt.want, fb.gotLimit)
		})
	}
}

func TestBattleHistory_WrapsError(t *testing.T) {
	t.Parallel()

	boom := errors.New("boom")
	r := New(&fakeBattles{err: boom}, &fakeLobbies{})

	_, err := r.BattleHistory(t.Context(), 1, 10)
	require.ErrorIs(t, err, boom)
	assert.Contains(t, err.Error(), "battle history")
}

func TestLobbyHistory(t *testing.T) {
	t.Parallel()

	fl := &fakeLobbies{rows: []lobbies.Lobby{{ID: uuid.New(), Status: lobbies.StatusCancelled}}}
	r := New(&fakeBattles{}, fl)

	got, err := r.LobbyHistory(t.Context(), 7, 0)
	require.NoError(t, err)
	require.Len(t, got, 1)
	assert.Equal(t, lobbies.StatusCancelled, got[0].Status)
	assert.Equal(t, uint64(7), fl.gotUser)
	assert.Equal(t, DefaultLimit, fl.gotLimit)

	_, err = r.LobbyHistory(t.Context(), 7, 5000)
	require.NoError(t, err)
	assert.Equal(t, MaxLimit, fl.gotLimit)
}

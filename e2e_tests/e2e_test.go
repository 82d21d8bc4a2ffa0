//go:build e2e

// Package e2etests drives a running API seeded with cmd/migrator's dev data
// (APP_ENV=DEV). Assertions are relative so the suite can be re-run against
// the same database.
package e2etests

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"io"
	"net/http"
	"os"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

const (
	timeout   = 5 * time.Second
	waitReady = 20 * time.Second
)

var (
	baseURL    = envOr("E2E_BASE_URL", "http://localhost:8080")
	httpClient = &http.Client{Timeout: timeout}
)

func envOr(key, def string) string {
	if v := os.Getenv(key); v != "" {
		return v
	}

	return def
}

func TestE2E_Battle(t *testing.T) {
	waitUntilReady(t)

	t.Run("stage_too_low_is_ineligible", func(t *testing.T) {
		code, body := call(t, http.MethodPost, "/user/3/battle", map[string]any{"betAmount": 10})
		require.Equal(t, http.StatusUnprocessableEntity, code, body)
		assert.Equal(t, "pet_ineligible", body["kind"])
	})

	t.Run("hungry_pet_is_ineligible", func(t *testing.T) {
		code, body := call(t, http.MethodPost, "/user/4/battle", map[string]any{"betAmount": 10})
		require.Equal(t, http.StatusUnprocessableEntity, code, body)
	})

	t.Run("non_positive_bet_rejected", func(t *testing.T) {
		code, _ := call(t, http.MethodPost, "/user/1/battle", map[string]any{"betAmount": 0})
		require.Equal(t, http.StatusBadRequest, code)
	})

	t.Run("unknown_account", func(t *testing.T) {
		code, body := call(t, http.MethodPost, "/user/999999/battle", map[string]any{"betAmount": 1})
		require.Equal(t, http.StatusNotFound, code, body)
		assert.Equal(t, "account_not_found", body["kind"])
	})

	t.Run("fight_settles", func(t *testing.T) {
		before := balance(t, 1)

		code, body := call(t, http.MethodPost, "/user/1/battle", map[string]any{"betAmount": 10})
		if code == http.StatusUnprocessableEntity {
			t.Skip("seed pet exhausted by earlier runs")
		}
		require.Equal(t, http.StatusOK, code, body)

		after := balance(t, 1)
		switch body["result"] {
		case "win":
			assert.Equal(t, before+9, after)
		case "loss":
			assert.Equal(t, before-10, after)
		default:
			t.Fatalf("unexpected result: %v", body["result"])
		}
		assert.EqualValues(t, after, body["newBalance"])

		code, hist := call(t, http.MethodGet, "/user/1/battles?limit=1", nil)
		require.Equal(t, http.StatusOK, code)
		rows, _ := hist["battles"].([]any)
		require.Len(t, rows, 1)
		assert.Equal(t, body["battleId"], rows[0].(map[string]any)["id"])
	})
}

func TestE2E_Lobby(t *testing.T) {
	waitUntilReady(t)

	b1, b2 := balance(t, 1), balance(t, 2)

	code, lobby := call(t, http.MethodPost, "/user/1/lobbies", map[string]any{"betAmount": 10})
	require.Equal(t, http.StatusCreated, code, lobby)
	id, _ := lobby["id"].(string)
	require.NotEmpty(t, id)
	assert.Equal(t, b1-10, balance(t, 1))

	code, body := call(t, http.MethodPost, "/user/1/lobbies", map[string]any{"betAmount": 10})
	require.Equal(t, http.StatusConflict, code, body)
	assert.Equal(t, "duplicate_lobby", body["kind"])

	code, open := call(t, http.MethodGet, "/lobbies", nil)
	require.Equal(t, http.StatusOK, code)
	assert.Contains(t, fmt.Sprint(open["lobbies"]), id)

	code, body = call(t, http.MethodPost, "/user/1/lobbies/"+id+"/join", nil)
	require.Equal(t, http.StatusForbidden, code, body)

	code, res := call(t, http.MethodPost, "/user/2/lobbies/"+id+"/join", nil)
	require.Equal(t, http.StatusOK, code, res)
	assert.EqualValues(t, 19, res["prize"])

	// the house keeps 5% of the 20-coin pot
	assert.Equal(t, b1+b2-1, balance(t, 1)+balance(t, 2))

	code, body = call(t, http.MethodPost, "/user/3/lobbies/"+id+"/join", nil)
	require.Equal(t, http.StatusConflict, code, body)
	assert.Equal(t, "lobby_unavailable", body["kind"])

	code, body = call(t, http.MethodGet, "/user/2/lobbies?limit=5", nil)
	require.Equal(t, http.StatusOK, code)
	assert.Contains(t, fmt.Sprint(body["lobbies"]), id)
}

func TestE2E_LobbyCancel(t *testing.T) {
	waitUntilReady(t)

	before := balance(t, 2)

	code, lobby := call(t, http.MethodPost, "/user/2/lobbies", map[string]any{"betAmount": 5})
	require.Equal(t, http.StatusCreated, code, lobby)
	id, _ := lobby["id"].(string)

	code, body := call(t, http.MethodPost, "/user/1/lobbies/"+id+"/cancel", nil)
	require.Equal(t, http.StatusForbidden, code, body)

	code, body = call(t, http.MethodPost, "/user/2/lobbies/"+id+"/cancel", nil)
	require.Equal(t, http.StatusOK, code, body)
	assert.Equal(t, before, balance(t, 2))

	code, body = call(t, http.MethodPost, "/user/2/lobbies/"+id+"/cancel", nil)
	require.Equal(t, http.StatusConflict, code, body)
	assert.Equal(t, before, balance(t, 2))
}

// --- helpers ---

func call(t *testing.T, method, path string, payload any) (int, map[string]any) {
	t.Helper()

	var rdr io.Reader
	if payload != nil {
		data, err := json.Marshal(payload)
		require.NoError(t, err)
		rdr = bytes.NewReader(data)
	}

	req, err := http.NewRequest(method, baseURL+path, rdr)
	require.NoError(t, err)
	req.Header.Set("Content-Type", "application/json")

	resp, err := httpClient.Do(req)
	require.NoError(t, err)
	defer resp.Body.Close()

	var out map[string]any
	_ = json.NewDecoder(resp.Body).Decode(&out)

	return resp.StatusCode, out
}

func balance(t *testing.T, userID uint64) int64 {
	t.Helper()

	code, body := call(t, http.MethodGet, fmt.Sprintf("/user/%d/balance", userID), nil)
	require.Equal(t, http.StatusOK, code, body)

	v, ok := body["balance"].(float64)
	require.True(t, ok, "balance: %v", body)

	return int64(v)
}

// waitUntilReady polls /healthz until it answers 200 or times out.
func waitUntilReady(t *testing.T) {
	t.Helper()

	ctx, cancel := context.WithTimeout(context.Background(), waitReady)
	defer cancel()

	tick := time.NewTicker(200 * time.Millisecond)
	defer tick.Stop()

	for {
		select {
		case <-ctx.Done():
			t.Fatalf("service not ready at %s within %s", baseURL, waitReady)
		case <-tick.C:
			resp, err := httpClient.Get(baseURL + "/healthz")
			if err != nil {
				continue
			}
			_ = resp.Body.Close()

			if resp.StatusCode == http.StatusOK {
				return
			}
		}
	}
}

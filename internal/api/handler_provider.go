package api

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"log/slog"
	"net/http"
	"strconv"

	"github.com/fastprodman/stardust/internal/apperr"
	"github.com/fastprodman/stardust/internal/infra/pgutils"
	"github.com/fastprodman/stardust/internal/repos/accounts"
	"github.com/fastprodman/stardust/internal/repos/battles"
	"github.com/fastprodman/stardust/internal/repos/lobbies"
	"github.com/fastprodman/stardust/internal/services/battle"
	"github.com/fastprodman/stardust/internal/services/history"
	"github.com/fastprodman/stardust/internal/services/lobby"
	"github.com/go-chi/chi/v5"
	"github.com/google/uuid"
)

const maxHistoryLimit = history.MaxLimit

type Balances interface {
	GetBalance(ctx context.Context, userID uint64) (int64, error)
}

type Battles interface {
	Fight(ctx context.Context, userID uint64, bet int64) (battle.Result, error)
}

type Lobbies interface {
	Create(ctx context.Context, userID uint64, bet int64) (lobbies.Lobby, error)
	Join(ctx context.Context, userID uint64, lobbyID uuid.UUID) (lobby.JoinResult, error)
	Cancel(ctx context.Context, userID uint64, lobbyID uuid.UUID) (lobbies.Lobby, error)
	Open(ctx context.Context) ([]lobbies.Lobby, error)
}

type History interface {
	BattleHistory(ctx context.Context, userID uint64, limit int) ([]battles.Battle, error)
	LobbyHistory(ctx context.Context, userID uint64, limit int) ([]lobbies.Lobby, error)
}

type Services struct {
	Balances Balances
	Battles  Battles
	Lobbies  Lobbies
	History  History
}

// HandlerProvider exposes the wagering services over HTTP.
type HandlerProvider struct {
	svc Services
	log *slog.Logger
}

func NewHandler(svc Services, logger *slog.Logger) *HandlerProvider {
	if logger == nil {
		logger = slog.Default()
	}

	return &HandlerProvider{svc: svc, log: logger}
}

// --- Helpers ---

func writeJSON(w http.ResponseWriter, status int, v any) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)

	err := json.NewEncoder(w).Encode(v)
	if err != nil {
		slog.Error("failed to encode JSON response", "error", err)
	}
}

type errorBody struct {
	Error string `json:"error"`
	Kind  string `json:"kind,omitempty"`
}

func writeError(w http.ResponseWriter, status int, msg string) {
	writeJSON(w, status, errorBody{Error: msg})
}

var kindStatus = map[apperr.Kind]int{
	apperr.KindInvalidInput:      http.StatusBadRequest,
	apperr.KindAccountNotFound:   http.StatusNotFound,
	apperr.KindInsufficientFunds: http.StatusConflict,
	apperr.KindPetNotFound:       http.StatusNotFound,
	apperr.KindPetIneligible:     http.StatusUnprocessableEntity,
	apperr.KindLobbyNotFound:     http.StatusNotFound,
	apperr.KindLobbyUnavailable:  http.StatusConflict,
	apperr.KindSelfJoinForbidden: http.StatusForbidden,
	apperr.KindDuplicateLobby:    http.StatusConflict,
	apperr.KindNotLobbyOwner:     http.StatusForbidden,
}

// writeServiceError maps a service error to a response. Business errors keep
// their message; anything else is logged and hidden behind a 5xx.
func (h *HandlerProvider) writeServiceError(w http.ResponseWriter, r *http.Request, err error) {
	var ae *apperr.Error
	if errors.As(err, &ae) {
		status, ok := kindStatus[ae.Kind]
		if !ok {
			status = http.StatusBadRequest
		}

		writeJSON(w, status, errorBody{Error: ae.Error(), Kind: string(ae.Kind)})

		return
	}

	if errors.Is(err, accounts.ErrAccountNotFound) {
		writeJSON(w, http.StatusNotFound, errorBody{Error: "Account not found.", Kind: string(apperr.KindAccountNotFound)})
		return
	}

	if errors.Is(err, pgutils.ErrTxConflict) {
		h.log.WarnContext(r.Context(), "wager contention", "path", r.URL.Path, "error", err)
		writeError(w, http.StatusServiceUnavailable, "busy, try again")

		return
	}

	h.log.ErrorContext(r.Context(), "request failed", "path", r.URL.Path, "error", err)
	writeError(w, http.StatusInternalServerError, "internal error")
}

// parseUserIDFromPath reads `{userId}` from chi routes like:
//
//	GET  /user/{userId}/balance
//	POST /user/{userId}/battle
func parseUserIDFromPath(r *http.Request) (uint64, error) {
	idStr := chi.URLParam(r, "userId")
	if idStr == "" {
		return 0, fmt.Errorf("missing userId")
	}

	id, err := strconv.ParseUint(idStr, 10, 64)
	if err != nil {
		return 0, fmt.Errorf("invalid userId: %w", err)
	}
	if id == 0 {
		return 0, fmt.Errorf("invalid userId: must be positive")
	}

	return id, nil
}

func parseLobbyIDFromPath(r *http.Request) (uuid.UUID, error) {
	id, err := uuid.Parse(chi.URLParam(r, "lobbyId"))
	if err != nil {
		return uuid.Nil, fmt.Errorf("invalid lobbyId: %w", err)
	}

	return id, nil
}

// parseLimit reads ?limit=; absent means the service default, values above
// maxHistoryLimit are capped.
func parseLimit(r *http.Request) (int, error) {
	raw := r.URL.Query().Get("limit")
	if raw == "" {
		return 0, nil
	}

	n, err := strconv.Atoi(raw)
	if err != nil || n < 0 {
		return 0, fmt.Errorf("invalid limit")
	}

	return min(n, maxHistoryLimit), nil
}

type betRequest struct {
	BetAmount int64 `json:"betAmount"`
}

func decodeBet(w http.ResponseWriter, r *http.Request) (int64, error) {
	r.Body = http.MaxBytesReader(w, r.Body, 1<<16)
	defer r.Body.Close()

	var req betRequest

	dec := json.NewDecoder(r.Body)
	dec.DisallowUnknownFields()

	err := dec.Decode(&req)
	if err != nil {
		if errors.Is(err, io.EOF) {
			return 0, errors.New("empty body")
		}

		return 0, errors.New("invalid JSON: betAmount must be a whole number")
	}

	return req.BetAmount, nil
}

// --- Handlers ---

// GetBalanceHandler handles GET /user/{userId}/balance
func (h *HandlerProvider) GetBalanceHandler(w http.ResponseWriter, r *http.Request) {
	userID, err := parseUserIDFromPath(r)
	if err != nil {
		writeError(w, http.StatusBadRequest, "invalid userId in path")
		return
	}

	bal, err := h.svc.Balances.GetBalance(r.Context(), userID)
	if err != nil {
		h.writeServiceError(w, r, err)
		return
	}

	writeJSON(w, http.StatusOK, map[string]any{
		"userId":  userID,
		"balance": bal,
	})
}

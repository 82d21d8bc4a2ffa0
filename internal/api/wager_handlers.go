package api

import (
	"net/http"
)

// FightHandler handles POST /user/{userId}/battle
func (h *HandlerProvider) FightHandler(w http.ResponseWriter, r *http.Request) {
	userID, err := parseUserIDFromPath(r)
	if err != nil {
		writeError(w, http.StatusBadRequest, "invalid userId in path")
		return
	}

	bet, err := decodeBet(w, r)
	if err != nil {
		writeError(w, http.StatusBadRequest, err.Error())
		return
	}

	res, err := h.svc.Battles.Fight(r.Context(), userID, bet)
	if err != nil {
		h.writeServiceError(w, r, err)
		return
	}

	writeJSON(w, http.StatusOK, res)
}

// BattleHistoryHandler handles GET /user/{userId}/battles
func (h *HandlerProvider) BattleHistoryHandler(w http.ResponseWriter, r *http.Request) {
	userID, err := parseUserIDFromPath(r)
	if err != nil {
		writeError(w, http.StatusBadRequest, "invalid userId in path")
		return
	}

	limit, err := parseLimit(r)
	if err != nil {
		writeError(w, http.StatusBadRequest, err.Error())
		return
	}

	out, err := h.svc.History.BattleHistory(r.Context(), userID, limit)
	if err != nil {
		h.writeServiceError(w, r, err)
		return
	}

	writeJSON(w, http.StatusOK, map[string]any{"battles": out})
}

// LobbyHistoryHandler handles GET /user/{userId}/lobbies
func (h *HandlerProvider) LobbyHistoryHandler(w http.ResponseWriter, r *http.Request) {
	userID, err := parseUserIDFromPath(r)
	if err != nil {
		writeError(w, http.StatusBadRequest, "invalid userId in path")
		return
	}

	limit, err := parseLimit(r)
	if err != nil {
		writeError(w, http.StatusBadRequest, err.Error())
		return
	}

	out, err := h.svc.History.LobbyHistory(r.Context(), userID, limit)
	if err != nil {
		h.writeServiceError(w, r, err)
		return
	}

	writeJSON(w, http.StatusOK, map[string]any{"lobbies": out})
}

// CreateLobbyHandler handles POST /user/{userId}/lobbies
func (h *HandlerProvider) CreateLobbyHandler(w http.ResponseWriter, r *http.Request) {
	userID, err := parseUserIDFromPath(r)
	if err != nil {
		writeError(w, http.StatusBadRequest, "invalid userId in path")
		return
	}

	bet, err := decodeBet(w, r)
	if err != nil {
		writeError(w, http.StatusBadRequest, err.Error())
		return
	}

	l, err := h.svc.Lobbies.Create(r.Context(), userID, bet)
	if err != nil {
		h.writeServiceError(w, r, err)
		return
	}

	writeJSON(w, http.StatusCreated, l)
}

// JoinLobbyHandler handles POST /user/{userId}/lobbies/{lobbyId}/join
func (h *HandlerProvider) JoinLobbyHandler(w http.ResponseWriter, r *http.Request) {
	userID, err := parseUserIDFromPath(r)
	if err != nil {
		writeError(w, http.StatusBadRequest, "invalid userId in path")
		return
	}

	lobbyID, err := parseLobbyIDFromPath(r)
	if err != nil {
		writeError(w, http.StatusBadRequest, "invalid lobbyId in path")
		return
	}

	res, err := h.svc.Lobbies.Join(r.Context(), userID, lobbyID)
	if err != nil {
		h.writeServiceError(w, r, err)
		return
	}

	writeJSON(w, http.StatusOK, res)
}

// CancelLobbyHandler handles POST /user/{userId}/lobbies/{lobbyId}/cancel
func (h *HandlerProvider) CancelLobbyHandler(w http.ResponseWriter, r *http.Request) {
	userID, err := parseUserIDFromPath(r)
	if err != nil {
		writeError(w, http.StatusBadRequest, "invalid userId in path")
		return
	}

	lobbyID, err := parseLobbyIDFromPath(r)
	if err != nil {
		writeError(w, http.StatusBadRequest, "invalid lobbyId in path")
		return
	}

	l, err := h.svc.Lobbies.Cancel(r.Context(), userID, lobbyID)
	if err != nil {
		h.writeServiceError(w, r, err)
		return
	}

	writeJSON(w, http.StatusOK, map[string]any{
		"lobby":   l,
		"message": "Lobby cancelled. Your Stardust has been refunded.",
	})
}

// OpenLobbiesHandler handles GET /lobbies
func (h *HandlerProvider) OpenLobbiesHandler(w http.ResponseWriter, r *http.Request) {
	out, err := h.svc.Lobbies.Open(r.Context())
	if err != nil {
		h.writeServiceError(w, r, err)
		return
	}

	writeJSON(w, http.StatusOK, map[string]any{"lobbies": out})
}

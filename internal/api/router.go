package api

import (
	"log/slog"
	"net/http"
	"time"

	"github.com/go-chi/chi/v5"
	"github.com/go-chi/chi/v5/middleware"
	"github.com/prometheus/client_golang/prometheus/promhttp"
)

// NewRouter constructs a chi router with all API endpoints registered.
func NewRouter(svc Services, logger *slog.Logger) http.Handler {
	h := NewHandler(svc, logger)
	r := chi.NewRouter()

	r.Use(middleware.RequestID)
	r.Use(middleware.RealIP)
	r.Use(requestLogger(h.log))
	r.Use(middleware.Recoverer)

	r.Get("/healthz", func(w http.ResponseWriter, _ *http.Request) {
		writeJSON(w, http.StatusOK, map[string]string{"status": "ok"})
	})
	r.Handle("/metrics", promhttp.Handler())

	r.Get("/lobbies", h.OpenLobbiesHandler)

	r.Route("/user/{userId}", func(r chi.Router) {
		r.Use(middleware.Timeout(30 * time.Second))

		r.Get("/balance", h.GetBalanceHandler)
		r.Post("/battle", h.FightHandler)
		r.Get("/battles", h.BattleHistoryHandler)

		r.Get("/lobbies", h.LobbyHistoryHandler)
		r.Post("/lobbies", h.CreateLobbyHandler)
		r.Post("/lobbies/{lobbyId}/join", h.JoinLobbyHandler)
		r.Post("/lobbies/{lobbyId}/cancel", h.CancelLobbyHandler)
	})

	return r
}

func requestLogger(logger *slog.Logger) func(http.Handler) http.Handler {
	return func(next http.Handler) http.Handler {
		return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			ww := middleware.NewWrapResponseWriter(w, r.ProtoMajor)
			started := time.Now()

			next.ServeHTTP(ww, r)

			logger.InfoContext(r.Context(), "http request",
				"method", r.Method,
				"path", r.URL.Path,
				"status", ww.Status(),
				"bytes", ww.BytesWritten(),
				"duration_ms", time.Since(started).Milliseconds(),
				"request_id", middleware.GetReqID(r.Context()),
			)
		})
	}
}

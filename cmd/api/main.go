package main

import (
	"context"
	"errors"
	"fmt"
	"net/http"
	"os"
	"os/signal"
	"syscall"

	"github.com/fastprodman/stardust/internal/api"
	"github.com/fastprodman/stardust/internal/infra/logging"
	"github.com/fastprodman/stardust/internal/infra/pgutils"
	accountspg "github.com/fastprodman/stardust/internal/repos/accounts/postgres"
	battlespg "github.com/fastprodman/stardust/internal/repos/battles/postgres"
	lobbiespg "github.com/fastprodman/stardust/internal/repos/lobbies/postgres"
	petspg "github.com/fastprodman/stardust/internal/repos/pets/postgres"
	"github.com/fastprodman/stardust/internal/rng"
	"github.com/fastprodman/stardust/internal/services/battle"
	"github.com/fastprodman/stardust/internal/services/history"
	"github.com/fastprodman/stardust/internal/services/lobby"
	"github.com/fastprodman/stardust/pkg/envconf"
	"github.com/fastprodman/stardust/pkg/shutdownqueue"
)

func main() {
	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	defer stop()

	err := run(ctx)
	if err != nil {
		fmt.Fprintf(os.Stderr, "error running api: %v", err)
		//nolint:gocritic
		os.Exit(1)
	}
}

func run(ctx context.Context) (retErr error) {
	cfg := new(apiConfig)

	err := envconf.Load(cfg)
	if err != nil {
		return fmt.Errorf("init config: %w", err)
	}

	err = cfg.Rules.Validate()
	if err != nil {
		return fmt.Errorf("init config: %w", err)
	}

	logger := logging.SetupJSON("stardust-api", cfg.LogLevel)
	shutdown := shutdownqueue.New(logger)

	defer func() {
		shutdownCtx, cancel := context.WithTimeout(context.Background(), cfg.ShutdownTimeout)
		defer cancel()

		serr := shutdown.Shutdown(shutdownCtx)
		if serr != nil {
			retErr = errors.Join(retErr, serr)
		}
	}()

	// --- Infra ---
	db, err := pgutils.OpenDB(ctx, cfg.Postgres)
	if err != nil {
		return fmt.Errorf("open db: %w", err)
	}

	shutdown.Add("postgres", func(context.Context) error {
		return db.Close()
	})

	// --- Services ---
	accounts := accountspg.New(db)
	battleRepo := battlespg.New(db)
	lobbyRepo := lobbiespg.New(db)
	src := rng.NewCrypto()

	engine := battle.New(battle.Deps{
		DB:       db,
		Accounts: accounts,
		Pets:     petspg.New(db),
		Battles:  battleRepo,
		RNG:      src,
		Rules:    cfg.Rules,
		Retry:    cfg.Retry,
		Logger:   logger,
	})

	lobbyMgr := lobby.New(lobby.Deps{
		DB:       db,
		Accounts: accounts,
		Lobbies:  lobbyRepo,
		RNG:      src,
		Rules:    cfg.Rules,
		Retry:    cfg.Retry,
		Logger:   logger,
	})

	// --- HTTP server ---
	srv := api.NewServer(cfg.Port, api.Services{
		Balances: accounts,
		Battles:  engine,
		Lobbies:  lobbyMgr,
		History:  history.New(battleRepo, lobbyRepo),
	}, logger)

	shutdown.Add("http", func(c context.Context) error {
		err := srv.Shutdown(c)
		if err != nil {
			return fmt.Errorf("shutdown srv: %w", err)
		}

		return nil
	})

	errCh := make(chan error, 1)

	go func() {
		serr := srv.ListenAndServe()
		// http.ErrServerClosed is the normal path during Shutdown
		if serr != nil && !errors.Is(serr, http.ErrServerClosed) {
			errCh <- serr
			return
		}

		errCh <- nil
	}()

	logger.Info("API started", "port", cfg.Port)

	select {
	case <-ctx.Done():
		return nil
	case serr := <-errCh:
		if serr != nil {
			return fmt.Errorf("server error: %w", serr)
		}

		return nil
	}
}

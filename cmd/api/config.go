package main

import (
	"log/slog"
	"time"

	"github.com/fastprodman/stardust/internal/config"
	"github.com/fastprodman/stardust/internal/wager"
)

type apiConfig struct {
	Port            uint16        `env:"APP_PORT"             envDefault:"8080"`
	LogLevel        slog.Level    `env:"APP_LOG_LEVEL"        envDefault:"info"`
	ShutdownTimeout time.Duration `env:"APP_SHUTDOWN_TIMEOUT" envDefault:"10s"`
	Postgres        config.PostgresConfig
	Retry           config.RetryConfig
	Rules           wager.Rules
}

package envconf

import (
	"errors"
	"log/slog"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

type dbConf struct {
	DSN      string `env:"PG_DSN,required"`
	MaxConns int    `env:"PG_MAX_OPEN_CONNS" envDefault:"20"`
}

type appConf struct {
	Port     uint16        `env:"APP_PORT"             envDefault:"8080"`
	LogLevel slog.Level    `env:"APP_LOG_LEVEL"        envDefault:"info"`
	Timeout  time.Duration `env:"APP_SHUTDOWN_TIMEOUT" envDefault:"10s"`
	Fee      float64       `env:"WAGER_FEE_PERCENT"    envDefault:"0.05"`
	DB       dbConf
}

func TestLoadFrom_DefaultsAndNested(t *testing.T) {
	t.Parallel()

	var cfg appConf

	err := LoadFrom(&cfg, map[string]string{"PG_DSN": "postgres://x"})
	require.NoError(t, err)

	assert.Equal(t, uint16(8080), cfg.Port)
	assert.Equal(t, slog.LevelInfo, cfg.LogLevel)
	assert.Equal(t, 10*time.Second, cfg.Timeout)
	assert.InDelta(t, 0.05, cfg.Fee, 1e-12)
	assert.Equal(t, "postgres://x", cfg.DB.DSN)
	assert.Equal(t, 20, cfg.DB.MaxConns)
}

func TestLoadFrom_Overrides(t *testing.T) {
	t.Parallel()

	var cfg appConf

	err := LoadFrom(&cfg, map[string]string{
		"PG_DSN":            "postgres://y",
		"APP_PORT":          "9090",
		"APP_LOG_LEVEL":     "debug",
		"PG_MAX_OPEN_CONNS": "3",
	})
	require.NoError(t, err)

	assert.Equal(t, uint16(9090), cfg.Port)
	assert.Equal(t, slog.LevelDebug, cfg.LogLevel)
	assert.Equal(t, 3, cfg.DB.MaxConns)
}

func TestLoadFrom_MissingRequired(t *testing.T) {
	t.Parallel()

	var cfg appConf

	err := LoadFrom(&cfg, map[string]string{})
	require.Error(t, err)
	assert.True(t, errors.Is(err, ErrMissingRequired), "got %v", err)
	assert.Contains(t, err.Error(), "PG_DSN")
}

func TestLoadFrom_BadValue(t *testing.T) {
	t.Parallel()

	var cfg appConf

	err := LoadFrom(&cfg, map[string]string{"PG_DSN": "x", "APP_PORT": "seventy"})
	require.Error(t, err)
	assert.False(t, errors.Is(err, ErrMissingRequired))
}

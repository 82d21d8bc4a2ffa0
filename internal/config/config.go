package config

import "time"

type PostgresConfig struct {
	DSN             string        `env:"PG_DSN,required"`
	MaxOpenConns    int           `env:"PG_MAX_OPEN_CONNS"     envDefault:"20"`
	MaxIdleConns    int           `env:"PG_MAX_IDLE_CONNS"     envDefault:"5"`
	ConnMaxIdleTime time.Duration `env:"PG_CONN_MAX_IDLE_TIME" envDefault:"5m"`
	ConnMaxLifetime time.Duration `env:"PG_CONN_MAX_LIFETIME"  envDefault:"30m"`
}

// RetryConfig bounds how often a wager transaction is replayed after a
// serialization failure or deadlock.
type RetryConfig struct {
	MaxAttempts int           `env:"PG_TX_MAX_ATTEMPTS" envDefault:"5"`
	BaseDelay   time.Duration `env:"PG_TX_RETRY_DELAY"  envDefault:"25ms"`
	MaxDelay    time.Duration `env:"PG_TX_RETRY_MAX"    envDefault:"800ms"`
}

func DefaultRetry() RetryConfig {
	return RetryConfig{MaxAttempts: 5, BaseDelay: 25 * time.Millisecond, MaxDelay: 800 * time.Millisecond}
}

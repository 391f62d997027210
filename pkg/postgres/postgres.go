package postgres

import (
	"context"
	"fmt"
	"time"

	"github.com/jackc/pgx/v5/pgxpool"
)

// Options - параметры пула соединений
type Options struct {
	DSN               string
	MaxConns          int32
	HealthCheckPeriod time.Duration
}

// NewPostgresDB создает пул соединений PostgreSQL и проверяет его ping-запросом
func NewPostgresDB(ctx context.Context, opts Options) (*pgxpool.Pool, error) {
	cfgPool, err := pgxpool.ParseConfig(opts.DSN)
	if err != nil {
		return nil, fmt.Errorf("ошибка при разборе конфигурации postgres: %w", err)
	}
	if opts.MaxConns > 0 {
		cfgPool.MaxConns = opts.MaxConns
	}
	if opts.HealthCheckPeriod > 0 {
		cfgPool.HealthCheckPeriod = opts.HealthCheckPeriod
	}

	dbpool, err := pgxpool.NewWithConfig(ctx, cfgPool)
	if err != nil {
		return nil, fmt.Errorf("не удалось создать пул соединений: %w", err)
	}

	if err := dbpool.Ping(ctx); err != nil {
		dbpool.Close()
		return nil, fmt.Errorf("не удалось выполнить ping к postgres: %w", err)
	}

	return dbpool, nil
}

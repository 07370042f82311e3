package database

import (
	"context"
	"fmt"
	"time"

	"github.com/go-sql-driver/mysql"
	"github.com/jmoiron/sqlx"
	"github.com/rs/zerolog/log"
)

// NormalizeDSN forces the driver options the store relies on:
// parseTime for DATETIME columns, multiStatements for migrations and
// clientFoundRows so an UPDATE that changes nothing still reports a match.
func NormalizeDSN(dsn string) (string, error) {
	cfg, err := mysql.ParseDSN(dsn)
	if err != nil {
		return "", fmt.Errorf("parse dsn: %w", err)
	}
	cfg.ParseTime = true
	cfg.MultiStatements = true
	cfg.ClientFoundRows = true
	cfg.Loc = time.UTC
	return cfg.FormatDSN(), nil
}

// OpenDB creates and configures the read/write connection pool.
func OpenDB(ctx context.Context, dsn string) (*sqlx.DB, error) {
	dsn, err := NormalizeDSN(dsn)
	if err != nil {
		return nil, err
	}

	db, err := sqlx.Open("mysql", dsn)
	if err != nil {
		return nil, err
	}

	db.SetMaxOpenConns(25)
	db.SetMaxIdleConns(25)
	db.SetConnMaxLifetime(5 * time.Minute)

	pingCtx, cancel := context.WithTimeout(ctx, 10*time.Second)
	defer cancel()
	if err := db.PingContext(pingCtx); err != nil {
		db.Close()
		return nil, fmt.Errorf("ping database: %w", err)
	}

	log.Info().Msg("database connection pool established")
	return db, nil
}

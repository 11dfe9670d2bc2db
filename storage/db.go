package storage

import (
	"context"
	"database/sql"
	"fmt"
	"time"

	"labquote/config"

	_ "github.com/lib/pq"
)

// InitDB opens the Postgres pool through lib/pq and checks it answers.
func InitDB(ctx context.Context, cfg config.DB) (*sql.DB, error) {
	db, err := sql.Open("postgres", cfg.DSN())
	if err != nil {
		return nil, fmt.Errorf("open database: %w", err)
	}

	db.SetMaxOpenConns(cfg.MaxOpenConns)
	db.SetMaxIdleConns(cfg.MaxIdleConns)
	db.SetConnMaxLifetime(cfg.ConnMaxLifetime)
	db.SetConnMaxIdleTime(cfg.ConnMaxIdleTime)

	pingCtx, cancel := context.WithTimeout(ctx, 10*time.Second)
	defer cancel()
	if err := db.PingContext(pingCtx); err != nil {
		db.Close()
		return nil, fmt.Errorf("ping database %s@%s:%d: %w", cfg.Name, cfg.Host, cfg.Port, err)
	}
	return db, nil
}

package database

import (
	"context"
	"database/sql"
	"errors"
	"fmt"
	"os"
	"time"

	_ "github.com/jackc/pgx/v5/stdlib"
	"go.uber.org/zap"

	"github.com/seuros/jogo/internal/logging"
)

// DB is the process-wide Postgres pool, set by Connect.
var DB *sql.DB

const connectTimeout = 10 * time.Second

// Connect opens the Postgres pool. An empty databaseURL falls back to DATABASE_URL.
func Connect(databaseURL string) error {
	if databaseURL == "" {
		databaseURL = os.Getenv("DATABASE_URL")
	}
	if databaseURL == "" {
		return errors.New("DATABASE_URL environment variable not set")
	}

	db, err := sql.Open("pgx", databaseURL)
	if err != nil {
		return fmt.Errorf("failed to open database: %w", err)
	}

	db.SetMaxOpenConns(25)
	db.SetMaxIdleConns(5)
	db.SetConnMaxLifetime(30 * time.Minute)

	ctx, cancel := context.WithTimeout(context.Background(), connectTimeout)
	defer cancel()
	if err := db.PingContext(ctx); err != nil {
		_ = db.Close()
		return fmt.Errorf("failed to connect to database: %w", err)
	}

	DB = db
	logging.L().Info("database connected")
	return nil
}

// Close closes the pool opened by Connect.
func Close() error {
	if DB == nil {
		return nil
	}
	err := DB.Close()
	if err != nil {
		logging.L().Warn("failed to close database", zap.Error(err))
	}
	DB = nil
	return err
}

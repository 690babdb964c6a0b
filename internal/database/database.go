package database

import (
	"fmt"
	"time"

	"quizforge/internal/logger"

	_ "github.com/jackc/pgx/v4/stdlib" // Postgres driver
	"github.com/jmoiron/sqlx"
)

// NewSQLXPostgresDB opens a connection pool against Postgres and verifies
// it with a ping.
func NewSQLXPostgresDB(dsn string) (*sqlx.DB, error) {
	db, err := sqlx.Connect("pgx", dsn)
	if err != nil {
		return nil, fmt.Errorf("failed to connect to Postgres database: %w", err)
	}

	db.SetMaxOpenConns(25)
	db.SetMaxIdleConns(5)
	db.SetConnMaxLifetime(5 * time.Minute)

	logger.Get().Info("connected to Postgres database")
	return db, nil
}

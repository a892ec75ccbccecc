package database

import (
	"database/sql"
	"fmt"
	"time"

	_ "github.com/lib/pq"
	"go.uber.org/zap"

	"funnelboard/api/config"
	"funnelboard/api/logger"
)

type DBClient struct {
	DB *sql.DB
}

func NewPostgresDB(cfg config.PostgresConfig) (*DBClient, error) {
	if cfg.DatabaseURL == "" {
		return nil, fmt.Errorf("postgres database_url is not set")
	}

	db, err := sql.Open("postgres", cfg.DatabaseURL)
	if err != nil {
		return nil, fmt.Errorf("error opening database connection: %w", err)
	}

	// Read-only reporting workload: a handful of connections is plenty.
	db.SetMaxOpenConns(5)
	db.SetMaxIdleConns(2)
	db.SetConnMaxLifetime(5 * time.Minute)

	if err = db.Ping(); err != nil {
		db.Close()
		return nil, fmt.Errorf("error connecting to the database (ping failed): %w", err)
	}

	logger.Log.Info("Connected to PostgreSQL")
	return &DBClient{DB: db}, nil
}

func (c *DBClient) Close() {
	if c.DB != nil {
		if err := c.DB.Close(); err != nil {
			logger.Log.Warn("Error closing database connection", zap.Error(err))
		} else {
			logger.Log.Info("PostgreSQL database connection closed")
		}
	}
}

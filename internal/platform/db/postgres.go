package db

import (
	"context"
	"errors"
	"fmt"
	"time"

	"gorm.io/driver/postgres"
	"gorm.io/gorm"
)

const defaultPingTimeout = 5 * time.Second

// Postgres wraps the shared gorm handle used by the ballot repositories.
// Poll, ballot, power ledger and outbox writes run through this one
// connection so outbox rows commit atomically with state changes.
type Postgres struct {
	DB *gorm.DB
}

// Connect opens the ballot database and verifies connectivity with a
// bounded ping. A pingTimeout <= 0 falls back to the default.
func Connect(dsn string, pingTimeout time.Duration) (*Postgres, error) {
	if dsn == "" {
		return nil, errors.New("postgres dsn is required")
	}
	if pingTimeout <= 0 {
		pingTimeout = defaultPingTimeout
	}

	db, err := gorm.Open(postgres.Open(dsn), &gorm.Config{})
	if err != nil {
		return nil, fmt.Errorf("open gorm postgres: %w", err)
	}

	sqlDB, err := db.DB()
	if err != nil {
		return nil, fmt.Errorf("resolve postgres sql db handle: %w", err)
	}

	ctx, cancel := context.WithTimeout(context.Background(), pingTimeout)
	defer cancel()

	if err := sqlDB.PingContext(ctx); err != nil {
		_ = sqlDB.Close()
		return nil, fmt.Errorf("ping postgres: %w", err)
	}
	return &Postgres{DB: db}, nil
}

func (p *Postgres) Close() error {
	if p == nil || p.DB == nil {
		return nil
	}
	sqlDB, err := p.DB.DB()
	if err != nil {
		return err
	}
	return sqlDB.Close()
}

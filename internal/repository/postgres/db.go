// Package postgres implements the entity store and the match persister on
// PostgreSQL through gorm. Selected with database.driver = postgres.
package postgres

import (
	"context"
	"fmt"
	"time"

	"gorm.io/driver/postgres"
	"gorm.io/gorm"
	gormlogger "gorm.io/gorm/logger"
)

// DB wraps a gorm handle shared by the entity and match repositories.
type DB struct {
	gorm *gorm.DB
}

// Open connects to PostgreSQL and migrates the schema.
func Open(dsn string) (*DB, error) {
	if dsn == "" {
		return nil, fmt.Errorf("dsn is required")
	}
	g, err := gorm.Open(postgres.Open(dsn), &gorm.Config{
		Logger: gormlogger.Default.LogMode(gormlogger.Silent),
	})
	if err != nil {
		return nil, fmt.Errorf("open postgres: %w", err)
	}
	if err := g.AutoMigrate(&entityRow{}, &matchRow{}); err != nil {
		return nil, fmt.Errorf("migrate: %w", err)
	}
	return &DB{gorm: g}, nil
}

// Ping checks connectivity.
func (d *DB) Ping(ctx context.Context) error {
	sqlDB, err := d.gorm.DB()
	if err != nil {
		return fmt.Errorf("ping: %w", err)
	}
	if err := sqlDB.PingContext(ctx); err != nil {
		return fmt.Errorf("ping: %w", err)
	}
	return nil
}

// WaitForReady polls Ping until the database responds or timeout expires.
func (d *DB) WaitForReady(ctx context.Context, timeout time.Duration) error {
	ctx, cancel := context.WithTimeout(ctx, timeout)
	defer cancel()

	ticker := time.NewTicker(100 * time.Millisecond)
	defer ticker.Stop()

	for {
		select {
		case <-ctx.Done():
			return fmt.Errorf("timeout waiting for database: %w", ctx.Err())
		case <-ticker.C:
			if err := d.Ping(ctx); err == nil {
				return nil
			}
		}
	}
}

// Close releases the connection pool.
func (d *DB) Close() {
	if sqlDB, err := d.gorm.DB(); err == nil {
		_ = sqlDB.Close()
	}
}

// Package sqlite stores schedules and bookings in a SQLite file through the
// pure-Go modernc.org/sqlite driver.
package sqlite

import (
	"context"
	"embed"
	"fmt"
	"log/slog"

	"github.com/example/barbershop-booking/internal/persistence/sqlite/migration"
)

//go:embed migrations/*.sql
var migrationFiles embed.FS

// Storage bundles the repositories over one connection pool.
type Storage struct {
	*ScheduleRepository
	*BookingRepository

	pool *ConnectionPool
}

// Open connects to the database. Call Migrate before first use.
func Open(config migration.SQLiteConfig) (*Storage, error) {
	pool, err := NewConnectionPool(config)
	if err != nil {
		return nil, err
	}
	return &Storage{
		ScheduleRepository: NewScheduleRepository(pool),
		BookingRepository:  NewBookingRepository(pool),
		pool:               pool,
	}, nil
}

// Migrate applies the embedded schema migrations and seeds the weekly
// schedule.
func (s *Storage) Migrate(ctx context.Context, logger *slog.Logger) error {
	manager := migration.NewManager(
		migration.NewFileScanner(),
		migration.NewSQLiteExecutor(s.pool.DB()),
		migrationFiles,
		"migrations",
		logger,
	)
	if _, err := manager.Run(ctx); err != nil {
		return fmt.Errorf("run migrations: %w", err)
	}
	if err := s.EnsureDefaultSchedules(ctx); err != nil {
		return fmt.Errorf("seed schedules: %w", err)
	}
	return nil
}

// Ping checks the connection.
func (s *Storage) Ping(ctx context.Context) error {
	return s.pool.Ping(ctx)
}

// Close releases the pool.
func (s *Storage) Close() error {
	return s.pool.Close()
}

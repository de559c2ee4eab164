package migration

import (
	"context"
	"fmt"
	"io/fs"
	"log/slog"
)

// Manager applies the pending migrations found in a directory of an fs.FS.
type Manager struct {
	scanner  FileScanner
	executor Executor
	fsys     fs.FS
	dir      string
	logger   *slog.Logger
}

// NewManager wires a scanner and executor to a migration source.
func NewManager(scanner FileScanner, executor Executor, fsys fs.FS, dir string, logger *slog.Logger) *Manager {
	if logger == nil {
		logger = slog.Default()
	}
	return &Manager{
		scanner:  scanner,
		executor: executor,
		fsys:     fsys,
		dir:      dir,
		logger:   logger.With("component", "migration"),
	}
}

// Run applies every pending migration in version order and returns how many
// were applied. It stops at the first failure.
func (m *Manager) Run(ctx context.Context) (int, error) {
	if err := m.executor.InitializeVersionTable(ctx); err != nil {
		m.logger.ErrorContext(ctx, "initialize version table failed", "error", err)
		return 0, fmt.Errorf("initialize version table: %w", err)
	}

	status, err := m.Status(ctx)
	if err != nil {
		return 0, err
	}
	m.logger.InfoContext(ctx, "schema version",
		"current_version", status.CurrentVersion,
		"applied", len(status.Applied),
		"pending", len(status.Pending),
	)

	for i, migration := range status.Pending {
		elapsed, err := m.executor.ExecuteMigration(ctx, migration)
		if err != nil {
			m.logger.ErrorContext(ctx, "migration failed",
				"version", migration.Version,
				"path", migration.Path,
				"error", err,
			)
			return i, newMigrationError(migration.Version, migration.Path, "execute migration",
				fmt.Errorf("%w: %w", ErrMigrationFailed, err))
		}
		m.logger.InfoContext(ctx, "migration applied",
			"version", migration.Version,
			"description", migration.Description,
			"duration_ms", elapsed.Milliseconds(),
		)
	}
	return len(status.Pending), nil
}

// Status compares the files in the source with the tracking table.
func (m *Manager) Status(ctx context.Context) (Status, error) {
	available, err := m.scanner.ScanMigrations(m.fsys, m.dir)
	if err != nil {
		return Status{}, fmt.Errorf("scan migrations: %w", err)
	}
	applied, err := m.executor.GetAppliedVersions(ctx)
	if err != nil {
		return Status{}, fmt.Errorf("list applied migrations: %w", err)
	}

	byVersion := make(map[string]Migration, len(available))
	for _, migration := range available {
		byVersion[normalizeVersion(migration.Version)] = migration
	}

	status := Status{Applied: applied}
	appliedSet := make(map[string]bool, len(applied))
	for _, row := range applied {
		key := normalizeVersion(row.Version)
		appliedSet[key] = true
		file, ok := byVersion[key]
		if !ok {
			return Status{}, newMigrationError(row.Version, "", "match applied version",
				fmt.Errorf("%w: %s", ErrUnknownVersion, row.Version))
		}
		if row.Checksum != "" && row.Checksum != file.Checksum {
			m.logger.WarnContext(ctx, "applied migration changed on disk",
				"version", row.Version,
				"path", file.Path,
			)
		}
		if versionNumber(row.Version) >= versionNumber(status.CurrentVersion) {
			status.CurrentVersion = row.Version
		}
	}

	for _, migration := range available {
		if !appliedSet[normalizeVersion(migration.Version)] {
			status.Pending = append(status.Pending, migration)
		}
	}
	return status, nil
}

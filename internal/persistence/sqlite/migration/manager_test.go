package migration

import (
	"context"
	"errors"
	"io"
	"log/slog"
	"path/filepath"
	"testing"
	"testing/fstest"
)

func newTestManager(t *testing.T, fsys fstest.MapFS) (*Manager, *SQLiteExecutor) {
	t.Helper()

	db, err := Open(TempFileTestSQLiteConfig(filepath.Join(t.TempDir(), "migrate.db")))
	if err != nil {
		t.Fatalf("Open failed: %v", err)
	}
	t.Cleanup(func() { db.Close() })

	executor := NewSQLiteExecutor(db)
	logger := slog.New(slog.NewTextHandler(io.Discard, nil))
	return NewManager(NewFileScanner(), executor, fsys, "migrations", logger), executor
}

func TestManagerRun(t *testing.T) {
	t.Parallel()

	ctx := context.Background()
	fsys := fstest.MapFS{
		"migrations/001_people.sql": {Data: []byte("CREATE TABLE people (id INTEGER PRIMARY KEY, name TEXT NOT NULL);")},
		"migrations/002_index.sql":  {Data: []byte("CREATE UNIQUE INDEX idx_people_name ON people(name);")},
	}
	manager, executor := newTestManager(t, fsys)

	applied, err := manager.Run(ctx)
	if err != nil {
		t.Fatalf("Run failed: %v", err)
	}
	if applied != 2 {
		t.Fatalf("expected 2 applied migrations, got %d", applied)
	}

	applied, err = manager.Run(ctx)
	if err != nil {
		t.Fatalf("second Run failed: %v", err)
	}
	if applied != 0 {
		t.Fatalf("expected idempotent run, applied %d", applied)
	}

	rows, err := executor.GetAppliedVersions(ctx)
	if err != nil {
		t.Fatalf("GetAppliedVersions failed: %v", err)
	}
	if len(rows) != 2 || rows[1].Version != "002" || rows[1].Checksum == "" {
		t.Fatalf("unexpected tracking rows: %+v", rows)
	}

	status, err := manager.Status(ctx)
	if err != nil {
		t.Fatalf("Status failed: %v", err)
	}
	if status.CurrentVersion != "002" || len(status.Pending) != 0 {
		t.Fatalf("unexpected status: %+v", status)
	}
}

func TestManagerRunRollsBackFailedMigration(t *testing.T) {
	t.Parallel()

	ctx := context.Background()
	fsys := fstest.MapFS{
		"migrations/001_people.sql": {Data: []byte("CREATE TABLE people (id INTEGER PRIMARY KEY);")},
		"migrations/002_broken.sql": {Data: []byte("CREATE TABLE pets (id INTEGER PRIMARY KEY);\nINSERT INTO missing_table VALUES (1);")},
	}
	manager, executor := newTestManager(t, fsys)

	applied, err := manager.Run(ctx)
	if !errors.Is(err, ErrMigrationFailed) {
		t.Fatalf("expected ErrMigrationFailed, got %v", err)
	}
	if applied != 1 {
		t.Fatalf("expected the first migration to stick, applied %d", applied)
	}

	var count int
	if err := executor.db.QueryRowContext(ctx, "SELECT COUNT(*) FROM sqlite_master WHERE name = 'pets'").Scan(&count); err != nil {
		t.Fatalf("inspect schema: %v", err)
	}
	if count != 0 {
		t.Fatal("expected the failed migration to be rolled back")
	}

	status, err := manager.Status(ctx)
	if err != nil {
		t.Fatalf("Status failed: %v", err)
	}
	if len(status.Pending) != 1 || status.Pending[0].Version != "002" {
		t.Fatalf("expected 002 pending, got %+v", status.Pending)
	}
}

func TestManagerStatusRejectsUnknownAppliedVersion(t *testing.T) {
	t.Parallel()

	ctx := context.Background()
	manager, executor := newTestManager(t, fstest.MapFS{
		"migrations/001_people.sql": {Data: []byte("CREATE TABLE people (id INTEGER PRIMARY KEY);")},
	})
	if _, err := manager.Run(ctx); err != nil {
		t.Fatalf("Run failed: %v", err)
	}

	orphan := Migration{Version: "009", SQL: "CREATE TABLE ghosts (id INTEGER);"}
	if _, err := executor.ExecuteMigration(ctx, orphan); err != nil {
		t.Fatalf("ExecuteMigration failed: %v", err)
	}

	if _, err := manager.Status(ctx); !errors.Is(err, ErrUnknownVersion) {
		t.Fatalf("expected ErrUnknownVersion, got %v", err)
	}
}

// Package migration applies versioned SQL migrations to a SQLite database.
//
// Migration files are read from an fs.FS (normally an embed.FS compiled into
// the binary) and must be named {version}_{description}.sql, for example
// 001_initial_schema.sql. An optional "-- Description:" header comment
// overrides the description taken from the file name.
//
// Applied versions are tracked in the schema_migrations table. Each migration
// runs in its own transaction together with its tracking row, so a failed
// migration leaves no trace.
//
//	db, err := migration.Open(migration.DefaultSQLiteConfig("barbershop.db"))
//	manager := migration.NewManager(migration.NewFileScanner(), migration.NewSQLiteExecutor(db), files, "migrations", logger)
//	applied, err := manager.Run(ctx)
package migration

package storage

import (
	"context"
	"database/sql"
	"embed"
	"errors"
	"fmt"
	"log/slog"

	"github.com/golang-migrate/migrate/v4"
	"github.com/golang-migrate/migrate/v4/database/sqlite3"
	"github.com/golang-migrate/migrate/v4/source/iofs"
	_ "github.com/mattn/go-sqlite3" // Required by the library implementation.
)

// SQLite keeps every key in a single kv table.
type SQLite struct {
	db  *sql.DB
	log *slog.Logger
}

//go:embed migrations/*.sql
var migrationsFS embed.FS

func NewSQLite(ctx context.Context, dbPath string, log *slog.Logger) (*SQLite, error) {
	dbFile, err := sql.Open("sqlite3", dbPath)
	if err != nil {
		return nil, fmt.Errorf("open DB file: %w", err)
	}

	// ":memory:" gives every connection its own database.
	dbFile.SetMaxOpenConns(1)

	if err = migrateUp(ctx, dbFile, dbPath, log); err != nil {
		return nil, errors.Join(err, dbFile.Close())
	}

	return &SQLite{db: dbFile, log: log}, nil
}

func migrateUp(ctx context.Context, dbFile *sql.DB, dbPath string, log *slog.Logger) error {
	dbInstance, err := sqlite3.WithInstance(dbFile, &sqlite3.Config{})
	if err != nil {
		return fmt.Errorf("create DB instance: %w", err)
	}

	srcInstance, err := iofs.New(migrationsFS, "migrations")
	if err != nil {
		return fmt.Errorf("create source instance: %w", err)
	}

	m, err := migrate.NewWithInstance("iofs", srcInstance, "sqlite3", dbInstance)
	if err != nil {
		return fmt.Errorf("create migrate instance: %w", err)
	}

	migrateErr := m.Up()

	version, dirty, versionErr := m.Version()
	fields := []any{
		"dbPath", dbPath,
	}

	if versionErr == nil {
		fields = append(fields, "version", version, "dirty", dirty)
	} else if !errors.Is(versionErr, migrate.ErrNilVersion) {
		log.WarnContext(ctx, "Failed to fetch migration version",
			"error", versionErr,
			"dbPath", dbPath)
	}

	if migrateErr != nil {
		if !errors.Is(migrateErr, migrate.ErrNoChange) {
			return fmt.Errorf("apply migrations: %w", migrateErr)
		}

		log.InfoContext(ctx, "No migrations to apply", fields...)
	} else {
		log.InfoContext(ctx, "DB is migrated", fields...)
	}

	return nil
}

func (s *SQLite) Get(ctx context.Context, key string) ([]byte, bool, error) {
	query := "select value from kv where key = ?"

	var value []byte
	err := s.db.QueryRowContext(ctx, query, key).Scan(&value)
	if errors.Is(err, sql.ErrNoRows) {
		return nil, false, nil
	}
	if err != nil {
		return nil, false, &Error{Op: "get", Key: key, Err: err}
	}

	return value, true, nil
}

func (s *SQLite) Set(ctx context.Context, key string, value []byte) error {
	query := `insert into kv (key, value, updated_at)
	values (?, ?, current_timestamp)
	on conflict (key) do update
	set value = excluded.value, updated_at = excluded.updated_at`

	if _, err := s.db.ExecContext(ctx, query, key, value); err != nil {
		return &Error{Op: "set", Key: key, Err: err}
	}

	return nil
}

func (s *SQLite) Delete(ctx context.Context, key string) error {
	query := "delete from kv where key = ?"

	if _, err := s.db.ExecContext(ctx, query, key); err != nil {
		return &Error{Op: "delete", Key: key, Err: err}
	}

	return nil
}

func (s *SQLite) Keys(ctx context.Context, prefix string) ([]string, error) {
	// substr instead of like: keys may contain % and _.
	query := "select key from kv where substr(key, 1, length(?1)) = ?1"

	rows, err := s.db.QueryContext(ctx, query, prefix)
	if err != nil {
		return nil, &Error{Op: "keys", Key: prefix, Err: fmt.Errorf("failed to execute query: %w", err)}
	}
	defer func() {
		if err = rows.Close(); err != nil {
			s.log.ErrorContext(ctx, "Failed to close rows",
				"error", err,
				"prefix", prefix,
				"operation", "Keys")
		}
	}()

	var keys []string
	for rows.Next() {
		var key string
		if err = rows.Scan(&key); err != nil {
			return nil, &Error{Op: "keys", Key: prefix, Err: fmt.Errorf("failed to scan row: %w", err)}
		}

		keys = append(keys, key)
	}

	if err = rows.Err(); err != nil {
		return nil, &Error{Op: "keys", Key: prefix, Err: fmt.Errorf("failed to iterate rows: %w", err)}
	}

	return keys, nil
}

func (s *SQLite) Close() error {
	return s.db.Close()
}

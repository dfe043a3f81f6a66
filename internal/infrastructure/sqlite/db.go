// Package sqlite stores registries and applied seeds in a local SQLite file.
// Every statement goes through a Proxy that opens and closes its own
// connection.
package sqlite

import (
	"database/sql"
	"embed"
	"errors"
	"fmt"
	"io"
	"net/url"
	"os"
	"path/filepath"

	"github.com/golang-migrate/migrate/v4"
	sqlite3migrate "github.com/golang-migrate/migrate/v4/database/sqlite3"
	"github.com/golang-migrate/migrate/v4/source/iofs"
	_ "github.com/mattn/go-sqlite3" // registers the "sqlite3" driver

	"github.com/container-kit/containerkit/internal/log"
)

const driverName = "sqlite3"

//go:embed migrations/*.sql
var migrationFiles embed.FS

// DB is a migrated database file and the proxy and repositories over it.
type DB struct {
	path  string
	proxy *Proxy
}

// NewDB creates the parent directory (0700) if needed, backs up an existing
// file to <path>.bak, and applies pending migrations.
func NewDB(path string, opts ...ProxyOption) (*DB, error) {
	if err := os.MkdirAll(filepath.Dir(path), 0o700); err != nil {
		return nil, fmt.Errorf("creating database directory: %w", err)
	}

	if err := backup(path); err != nil {
		return nil, err
	}

	if err := runMigrations(path); err != nil {
		return nil, err
	}

	log.Debug(log.CatDB, "database ready", "path", path)
	return &DB{path: path, proxy: NewProxy(path, opts...)}, nil
}

// Path returns the database file path.
func (d *DB) Path() string { return d.path }

// Proxy returns the statement proxy.
func (d *DB) Proxy() *Proxy { return d.proxy }

// RegistryRepository returns the registry table repository.
func (d *DB) RegistryRepository() *RegistryRepository {
	return NewRegistryRepository(d.proxy)
}

// SeedRepository returns the seeds table repository.
func (d *DB) SeedRepository() *SeedRepository {
	return NewSeedRepository(d.proxy)
}

// DSN returns the mattn/go-sqlite3 connection string for path. The path is
// percent-encoded so that '?' and '#' stay part of the file name.
func DSN(path string) string {
	return "file:" + (&url.URL{Path: path}).EscapedPath() + "?_journal_mode=WAL&_busy_timeout=5000&_foreign_keys=on"
}

func open(path string) (*sql.DB, error) {
	conn, err := sql.Open(driverName, DSN(path))
	if err != nil {
		return nil, fmt.Errorf("opening database %s: %w", path, err)
	}
	return conn, nil
}

func runMigrations(path string) error {
	conn, err := open(path)
	if err != nil {
		return err
	}

	src, err := iofs.New(migrationFiles, "migrations")
	if err != nil {
		_ = conn.Close()
		return fmt.Errorf("loading migrations: %w", err)
	}

	driver, err := sqlite3migrate.WithInstance(conn, &sqlite3migrate.Config{})
	if err != nil {
		_ = conn.Close()
		return fmt.Errorf("creating migration driver: %w", err)
	}

	m, err := migrate.NewWithInstance("iofs", src, driverName, driver)
	if err != nil {
		_ = conn.Close()
		return fmt.Errorf("creating migrator: %w", err)
	}
	// Closing the migrator closes conn as well.
	defer func() { _, _ = m.Close() }()

	if err := m.Up(); err != nil && !errors.Is(err, migrate.ErrNoChange) {
		return fmt.Errorf("running migrations: %w", err)
	}

	version, dirty, err := m.Version()
	if err == nil {
		log.Debug(log.CatDB, "schema version", "version", version, "dirty", dirty)
	}
	return nil
}

// backup copies an existing database to <path>.bak. A missing file is not
// an error.
func backup(path string) error {
	src, err := os.Open(path)
	if errors.Is(err, os.ErrNotExist) {
		return nil
	}
	if err != nil {
		return fmt.Errorf("opening database for backup: %w", err)
	}
	defer src.Close()

	dst, err := os.OpenFile(path+".bak", os.O_CREATE|os.O_TRUNC|os.O_WRONLY, 0o600)
	if err != nil {
		return fmt.Errorf("creating database backup: %w", err)
	}
	if _, err := io.Copy(dst, src); err != nil {
		_ = dst.Close()
		return fmt.Errorf("writing database backup: %w", err)
	}
	return dst.Close()
}

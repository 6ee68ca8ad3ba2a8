// Package cache implements the build result cache from SPEC_FULL.md's
// domain stack: a compile result keyed by the hash of (source bytes,
// optimisation level, verbose flag, no-runtime flag), so a byte-identical
// re-run of `srcc` can skip scanning, parsing, checking, optimising, and
// emitting entirely.
//
// A database/sql handle is selected by a DSN's scheme, with four drivers
// blank-imported for their side-effecting driver registration. This
// package owns exactly one *sql.DB for the process lifetime of one `srcc`
// invocation.
package cache

import (
	"crypto/sha256"
	"database/sql"
	"encoding/hex"
	"fmt"
	"os"
	"path/filepath"
	"strings"

	_ "github.com/denisenkom/go-mssqldb"
	_ "github.com/go-sql-driver/mysql"
	_ "github.com/lib/pq"
	_ "github.com/mattn/go-sqlite3"
)

// Cache wraps the backing database/sql handle. The schema is the same
// single table regardless of backend: key, level, verbose, and the
// emitted C text.
type Cache struct {
	db     *sql.DB
	driver string
}

// Open selects a driver from dsn's scheme and opens (creating if needed)
// the compile_cache table. An empty dsn defaults to a local SQLite file at
// .srcc-cache/cache.db next to the working directory, requiring no
// configuration for the common single-machine case; a "postgres://",
// "mysql://", or "sqlserver://" dsn selects the matching shared-cache
// backend (SPEC_FULL.md "Build cache").
func Open(dsn string) (*Cache, error) {
	driver, dataSource, err := resolveDSN(dsn)
	if err != nil {
		return nil, err
	}

	db, err := sql.Open(driver, dataSource)
	if err != nil {
		return nil, fmt.Errorf("cache: open %s: %w", driver, err)
	}
	if err := db.Ping(); err != nil {
		db.Close()
		return nil, fmt.Errorf("cache: connect %s: %w", driver, err)
	}

	c := &Cache{db: db, driver: driver}
	if err := c.ensureSchema(driver); err != nil {
		db.Close()
		return nil, err
	}
	return c, nil
}

func resolveDSN(dsn string) (driver, dataSource string, err error) {
	switch {
	case dsn == "":
		dir := ".srcc-cache"
		if err := os.MkdirAll(dir, 0o755); err != nil {
			return "", "", fmt.Errorf("cache: create %s: %w", dir, err)
		}
		return "sqlite3", filepath.Join(dir, "cache.db"), nil

	case strings.HasPrefix(dsn, "postgres://") || strings.HasPrefix(dsn, "postgresql://"):
		return "postgres", dsn, nil

	case strings.HasPrefix(dsn, "mysql://"):
		return "mysql", strings.TrimPrefix(dsn, "mysql://"), nil

	case strings.HasPrefix(dsn, "sqlserver://"):
		return "sqlserver", dsn, nil

	case strings.HasPrefix(dsn, "sqlite://"):
		return "sqlite3", strings.TrimPrefix(dsn, "sqlite://"), nil

	default:
		return "", "", fmt.Errorf("cache: unrecognised -cache-dsn scheme %q", dsn)
	}
}

func (c *Cache) ensureSchema(driver string) error {
	ddl := `CREATE TABLE IF NOT EXISTS compile_cache (
		cache_key  VARCHAR(64) PRIMARY KEY,
		level      INTEGER NOT NULL,
		verbose    INTEGER NOT NULL,
		c_text     TEXT NOT NULL
	)`
	if driver == "postgres" {
		ddl = `CREATE TABLE IF NOT EXISTS compile_cache (
			cache_key  VARCHAR(64) PRIMARY KEY,
			level      INTEGER NOT NULL,
			verbose    BOOLEAN NOT NULL,
			c_text     TEXT NOT NULL
		)`
	}
	_, err := c.db.Exec(ddl)
	if err != nil {
		return fmt.Errorf("cache: create schema: %w", err)
	}
	return nil
}

func (c *Cache) Close() error { return c.db.Close() }

// ph renders the nth (1-based) positional placeholder for c's driver.
// lib/pq (postgres) requires "$1", "$2", ...; every other driver in this
// package's blank-import set (sqlite3, mysql, mssql) accepts the plain "?"
// style ensureSchema's DDL branch already assumes.
func (c *Cache) ph(n int) string {
	if c.driver == "postgres" {
		return fmt.Sprintf("$%d", n)
	}
	return "?"
}

// Key hashes the cache-relevant inputs to a compile run: the source bytes
// plus every flag (-O, -v, -R) that changes the emitted C for otherwise
// identical source. -R (no-runtime) only changes the #include line, but it
// changes it in the stored text itself, so it has to be part of the key
// like the others — a miss on -R is the only way to avoid serving a
// no-runtime build's C to a normal one or vice versa.
func Key(src []byte, level int, verbose, noRuntime bool) string {
	h := sha256.New()
	h.Write(src)
	fmt.Fprintf(h, ":%d:%v:%v", level, verbose, noRuntime)
	return hex.EncodeToString(h.Sum(nil))
}

// Get returns the cached C text for key, or ok=false on a miss.
func (c *Cache) Get(key string) (cText string, ok bool, err error) {
	row := c.db.QueryRow(fmt.Sprintf(`SELECT c_text FROM compile_cache WHERE cache_key = %s`, c.ph(1)), key)
	if err := row.Scan(&cText); err != nil {
		if err == sql.ErrNoRows {
			return "", false, nil
		}
		return "", false, fmt.Errorf("cache: lookup: %w", err)
	}
	return cText, true, nil
}

// Put stores cText under key, overwriting any previous entry (a rebuild at
// a different -O level reuses the same source but a different key, so
// this never needs to merge rows).
func (c *Cache) Put(key string, level int, verbose bool, cText string) error {
	_, err := c.db.Exec(fmt.Sprintf(`DELETE FROM compile_cache WHERE cache_key = %s`, c.ph(1)), key)
	if err != nil {
		return fmt.Errorf("cache: evict: %w", err)
	}
	_, err = c.db.Exec(fmt.Sprintf(`INSERT INTO compile_cache (cache_key, level, verbose, c_text) VALUES (%s, %s, %s, %s)`,
		c.ph(1), c.ph(2), c.ph(3), c.ph(4)),
		key, level, verbose, cText)
	if err != nil {
		return fmt.Errorf("cache: store: %w", err)
	}
	return nil
}

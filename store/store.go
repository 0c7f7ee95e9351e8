// Package store persists the blog domain through gorm, on PostgreSQL in
// production and SQLite for local runs and tests.
package store

import (
	"database/sql"
	"errors"
	"fmt"
	"log"
	"os"
	"path/filepath"
	"strings"
	"time"

	"github.com/jackc/pgx/v5/pgconn"
	"gorm.io/driver/postgres"
	gormsqlite "gorm.io/driver/sqlite"
	"gorm.io/gorm"
	"gorm.io/gorm/logger"
	"modernc.org/sqlite"
	sqlite3 "modernc.org/sqlite/lib"

	"github.com/eringen/blogapi/content"
)

const (
	DriverSQLite   = "sqlite"
	DriverPostgres = "postgres"
)

// Store implements every content gateway on top of a gorm connection.
type Store struct {
	db *gorm.DB
}

var (
	_ content.PostGateway       = (*Store)(nil)
	_ content.CategoryGateway   = (*Store)(nil)
	_ content.ImageGateway      = (*Store)(nil)
	_ content.QuoteGateway      = (*Store)(nil)
	_ content.NewsletterGateway = (*Store)(nil)
)

// Option configures Open.
type Option func(*gorm.Config)

// WithLogger replaces the default gorm logger.
func WithLogger(l logger.Interface) Option {
	return func(c *gorm.Config) { c.Logger = l }
}

// Open connects to the database identified by driver and dsn and migrates
// the schema. For sqlite, dsn is a file path.
func Open(driver, dsn string, opts ...Option) (*Store, error) {
	cfg := &gorm.Config{
		Logger: logger.New(log.New(os.Stderr, "", log.LstdFlags), logger.Config{
			SlowThreshold:             200 * time.Millisecond,
			LogLevel:                  logger.Warn,
			IgnoreRecordNotFoundError: true,
		}),
	}
	for _, opt := range opts {
		opt(cfg)
	}

	var dialector gorm.Dialector
	switch driver {
	case DriverPostgres:
		dialector = postgres.Open(dsn)
	case DriverSQLite, "":
		conn, err := openSQLite(dsn)
		if err != nil {
			return nil, err
		}
		dialector = gormsqlite.New(gormsqlite.Config{DriverName: "sqlite", Conn: conn})
	default:
		return nil, fmt.Errorf("store: unknown driver %q", driver)
	}

	db, err := gorm.Open(dialector, cfg)
	if err != nil {
		return nil, fmt.Errorf("store: open: %w", err)
	}
	s := &Store{db: db}
	if err := s.migrate(); err != nil {
		s.Close()
		return nil, err
	}
	return s, nil
}

// openSQLite opens path with the pure-Go modernc driver. WAL and a busy
// timeout let the small pool write without SQLITE_BUSY; foreign keys are
// off by default in SQLite and must be enabled per connection.
func openSQLite(path string) (*sql.DB, error) {
	if err := os.MkdirAll(filepath.Dir(path), 0o755); err != nil {
		return nil, err
	}
	dsn := path + "?_pragma=busy_timeout(5000)&_pragma=journal_mode(WAL)&_pragma=foreign_keys(1)&_pragma=synchronous(NORMAL)"
	db, err := sql.Open("sqlite", dsn)
	if err != nil {
		return nil, err
	}
	db.SetMaxOpenConns(4)
	db.SetMaxIdleConns(4)
	return db, nil
}

func (s *Store) migrate() error {
	if err := s.db.AutoMigrate(content.Models()...); err != nil {
		return fmt.Errorf("store: migrate: %w", err)
	}
	return nil
}

// Ping checks the connection.
func (s *Store) Ping() error {
	sqlDB, err := s.db.DB()
	if err != nil {
		return err
	}
	return sqlDB.Ping()
}

// Close closes the underlying database connection.
func (s *Store) Close() error {
	sqlDB, err := s.db.DB()
	if err != nil {
		return err
	}
	return sqlDB.Close()
}

// translateError maps driver errors onto the content sentinels.
func translateError(err error) error {
	if err == nil {
		return nil
	}
	if errors.Is(err, content.ErrNotFound) || errors.Is(err, content.ErrConflict) ||
		errors.Is(err, content.ErrUnknownCategory) {
		return err
	}
	if errors.Is(err, gorm.ErrRecordNotFound) {
		return fmt.Errorf("%w: %w", content.ErrNotFound, err)
	}
	if errors.Is(err, gorm.ErrDuplicatedKey) || errors.Is(err, gorm.ErrForeignKeyViolated) {
		return fmt.Errorf("%w: %w", content.ErrConflict, err)
	}
	var pgErr *pgconn.PgError
	if errors.As(err, &pgErr) {
		switch pgErr.Code {
		case "23505", "23503":
			return fmt.Errorf("%w: %w", content.ErrConflict, err)
		}
		return err
	}
	var liteErr *sqlite.Error
	if errors.As(err, &liteErr) {
		switch liteErr.Code() {
		case sqlite3.SQLITE_CONSTRAINT_UNIQUE,
			sqlite3.SQLITE_CONSTRAINT_PRIMARYKEY,
			sqlite3.SQLITE_CONSTRAINT_FOREIGNKEY,
			sqlite3.SQLITE_CONSTRAINT_TRIGGER:
			return fmt.Errorf("%w: %w", content.ErrConflict, err)
		}
	}
	return err
}

// containsPattern returns a LIKE pattern matching s anywhere, lowercased,
// for use with ESCAPE '\'.
func containsPattern(s string) string {
	return "%" + escapeLike(strings.ToLower(s)) + "%"
}

var likeReplacer = strings.NewReplacer(`\`, `\\`, `%`, `\%`, `_`, `\_`)

func escapeLike(s string) string {
	return likeReplacer.Replace(s)
}

const likeEscape = ` ESCAPE '\'`

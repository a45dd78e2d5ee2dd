package storage

import (
	"context"
	"database/sql"
	"errors"
	"fmt"
	"os"
	"path/filepath"
	"strings"
	"time"

	"modernc.org/sqlite"
	sqlite3 "modernc.org/sqlite/lib"
)

// TimeLayout is how timestamps are stored. Lexical order equals
// chronological order, so SQL range filters compare strings.
const TimeLayout = "2006-01-02 15:04:05"

// DateLayout is how calendar dates are stored.
const DateLayout = "2006-01-02"

var (
	ErrNotFound = errors.New("record not found")
	ErrConflict = errors.New("unique constraint violated")
)

type SQLiteRepository struct {
	db      *sql.DB
	queries *Queries
}

// DSN adds the connection pragmas every handle needs. Transactions take the
// write lock at BEGIN so read-then-write ledger updates wait on busy_timeout
// instead of failing on lock upgrade.
func DSN(dbPath string) string {
	return dbPath + "?_pragma=foreign_keys(1)&_pragma=busy_timeout(5000)&_pragma=journal_mode(WAL)&_txlock=immediate"
}

func NewSQLiteRepository(dbPath string) (*SQLiteRepository, error) {
	if err := os.MkdirAll(filepath.Dir(dbPath), 0755); err != nil {
		return nil, fmt.Errorf("create db directory: %w", err)
	}

	db, err := sql.Open("sqlite", DSN(dbPath))
	if err != nil {
		return nil, fmt.Errorf("open sqlite database: %w", err)
	}

	if err := db.Ping(); err != nil {
		db.Close()
		return nil, fmt.Errorf("ping database: %w", err)
	}

	if err := RunMigrations(dbPath); err != nil {
		db.Close()
		return nil, fmt.Errorf("run migrations: %w", err)
	}

	return &SQLiteRepository{
		db:      db,
		queries: New(db),
	}, nil
}

func (r *SQLiteRepository) Close() error {
	if r.db != nil {
		return r.db.Close()
	}
	return nil
}

// Ping verifies the database is reachable.
func (r *SQLiteRepository) Ping(ctx context.Context) error {
	return r.db.PingContext(ctx)
}

// InTx runs fn against a repository bound to a single database transaction.
// Any error returned by fn rolls the whole transaction back.
func (r *SQLiteRepository) InTx(ctx context.Context, fn func(tx *SQLiteRepository) error) error {
	tx, err := r.db.BeginTx(ctx, nil)
	if err != nil {
		return fmt.Errorf("begin transaction: %w", err)
	}

	txRepo := &SQLiteRepository{db: r.db, queries: r.queries.WithTx(tx)}
	if err := fn(txRepo); err != nil {
		if rbErr := tx.Rollback(); rbErr != nil {
			return fmt.Errorf("%w (rollback: %v)", err, rbErr)
		}
		return err
	}

	if err := tx.Commit(); err != nil {
		return fmt.Errorf("commit transaction: %w", err)
	}
	return nil
}

// mapError turns driver errors into the package sentinels.
func mapError(err error) error {
	if err == nil {
		return nil
	}
	if errors.Is(err, sql.ErrNoRows) {
		return ErrNotFound
	}
	if isUniqueViolation(err) {
		return fmt.Errorf("%w: %v", ErrConflict, err)
	}
	// the owning account is gone
	if isForeignKeyViolation(err) {
		return fmt.Errorf("%w: %v", ErrNotFound, err)
	}
	return err
}

func isUniqueViolation(err error) bool {
	return hasCode(err, sqlite3.SQLITE_CONSTRAINT_UNIQUE, "UNIQUE constraint failed")
}

func isForeignKeyViolation(err error) bool {
	return hasCode(err, sqlite3.SQLITE_CONSTRAINT_FOREIGNKEY, "FOREIGN KEY constraint failed")
}

func hasCode(err error, code int, text string) bool {
	var se *sqlite.Error
	if errors.As(err, &se) {
		return se.Code() == code
	}
	return strings.Contains(err.Error(), text)
}

// requireRow reports ErrNotFound when a write touched no rows.
func requireRow(n int64, err error) error {
	if err != nil {
		return mapError(err)
	}
	if n == 0 {
		return ErrNotFound
	}
	return nil
}

func formatTime(t time.Time) string {
	return t.UTC().Format(TimeLayout)
}

func parseTime(s string) time.Time {
	t, err := time.ParseInLocation(TimeLayout, s, time.UTC)
	if err != nil {
		// tolerate rows written with a date only
		t, _ = time.ParseInLocation(DateLayout, s, time.UTC)
	}
	return t
}

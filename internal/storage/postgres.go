package storage

import (
	"context"
	_ "embed"
	"errors"
	"fmt"
	"strings"

	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgconn"
	"github.com/jackc/pgx/v5/pgxpool"

	"github.com/user/chengjiao-crawler/internal/domain"
)

// ErrNotFound is returned when no record matches a lookup.
var ErrNotFound = errors.New("not found")

//go:embed schema.sql
var schema string

// DB is the subset of *pgxpool.Pool used by PostgresStore.
type DB interface {
	Exec(ctx context.Context, sql string, args ...any) (pgconn.CommandTag, error)
	QueryRow(ctx context.Context, sql string, args ...any) pgx.Row
	Ping(ctx context.Context) error
}

// PostgresStore handles interactions with the PostgreSQL database.
type PostgresStore struct {
	db DB

	insertSQL string
	selectSQL string
}

func NewPostgresStore(ctx context.Context, connStr string) (*PostgresStore, error) {
	db, err := pgxpool.New(ctx, connStr)
	if err != nil {
		return nil, fmt.Errorf("unable to connect to database: %w", err)
	}
	return NewPostgresStoreWithDB(db), nil
}

// NewPostgresStoreWithDB wraps an existing pool or connection.
func NewPostgresStoreWithDB(db DB) *PostgresStore {
	cols := (&domain.TransactionRecord{}).Columns()
	placeholders := make([]string, len(cols))
	for i := range cols {
		placeholders[i] = fmt.Sprintf("$%d", i+1)
	}
	colList := strings.Join(cols, ", ")

	return &PostgresStore{
		db: db,
		insertSQL: fmt.Sprintf(
			`INSERT INTO transactions (%s) VALUES (%s) ON CONFLICT (url) DO NOTHING`,
			colList, strings.Join(placeholders, ", ")),
		selectSQL: fmt.Sprintf(`SELECT %s FROM transactions WHERE url = $1`, colList),
	}
}

func (s *PostgresStore) Ping(ctx context.Context) error {
	return s.db.Ping(ctx)
}

// Close releases the underlying pool, if the store owns one.
func (s *PostgresStore) Close() {
	if c, ok := s.db.(interface{ Close() }); ok {
		c.Close()
	}
}

// Migrate creates the transactions table if it does not exist.
func (s *PostgresStore) Migrate(ctx context.Context) error {
	if _, err := s.db.Exec(ctx, schema); err != nil {
		return fmt.Errorf("apply schema: %w", err)
	}
	return nil
}

// Exists reports whether a record with the canonical URL is stored.
func (s *PostgresStore) Exists(ctx context.Context, url string) (bool, error) {
	var exists bool
	err := s.db.QueryRow(ctx,
		`SELECT EXISTS (SELECT 1 FROM transactions WHERE url = $1)`, url,
	).Scan(&exists)
	if err != nil {
		return false, fmt.Errorf("check %s: %w", url, err)
	}
	return exists, nil
}

// Insert stores rec. A record already stored under the same URL is left
// untouched and domain.ErrDuplicateRecord is returned.
func (s *PostgresStore) Insert(ctx context.Context, rec *domain.TransactionRecord) error {
	tag, err := s.db.Exec(ctx, s.insertSQL, rec.Values()...)
	if err != nil {
		return fmt.Errorf("insert %s: %w", rec.URL, err)
	}
	if tag.RowsAffected() == 0 {
		return domain.ErrDuplicateRecord
	}
	return nil
}

// FindByURL retrieves a stored record.
func (s *PostgresStore) FindByURL(ctx context.Context, url string) (*domain.TransactionRecord, error) {
	var rec domain.TransactionRecord
	err := s.db.QueryRow(ctx, s.selectSQL, url).Scan(rec.Pointers()...)
	if errors.Is(err, pgx.ErrNoRows) {
		return nil, ErrNotFound
	}
	if err != nil {
		return nil, fmt.Errorf("find %s: %w", url, err)
	}
	return &rec, nil
}

// Count returns the number of stored records.
func (s *PostgresStore) Count(ctx context.Context) (int64, error) {
	var n int64
	if err := s.db.QueryRow(ctx, `SELECT COUNT(*) FROM transactions`).Scan(&n); err != nil {
		return 0, fmt.Errorf("count records: %w", err)
	}
	return n, nil
}

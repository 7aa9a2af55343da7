package datastore

import (
	"context"
	"fmt"
	"time"

	"github.com/google/uuid"
	"github.com/jackc/pgx/v5/pgxpool"
	"github.com/lepinkainen/shelfsync/internal/catalog"
)

const postgresBooksSchema = `
CREATE TABLE IF NOT EXISTS %[1]s (
	id TEXT PRIMARY KEY,
	name TEXT NOT NULL,
	author TEXT NOT NULL,
	cover_url TEXT NOT NULL DEFAULT '',
	publish_year INTEGER NOT NULL DEFAULT 0,
	edition TEXT NOT NULL DEFAULT '',
	page_count INTEGER NOT NULL DEFAULT 0,
	description TEXT NOT NULL DEFAULT '',
	excerpts TEXT[] NOT NULL DEFAULT '{}',
	created_at TIMESTAMPTZ NOT NULL DEFAULT now()
)`

// PostgresStore keeps the catalog collection in a Postgres table
type PostgresStore struct {
	db         *pgxpool.Pool
	dsn        string
	collection string
	timeout    time.Duration
}

// NewPostgresStore creates a store; every call is bounded by timeout
func NewPostgresStore(dsn, collection string, timeout time.Duration) *PostgresStore {
	if timeout <= 0 {
		timeout = 10 * time.Second
	}
	return &PostgresStore{dsn: dsn, collection: collection, timeout: timeout}
}

func (s *PostgresStore) withTimeout(ctx context.Context) (context.Context, context.CancelFunc) {
	return context.WithTimeout(ctx, s.timeout)
}

// Connect opens the pool and creates the collection table if needed
func (s *PostgresStore) Connect(ctx context.Context) error {
	if err := validateCollection(s.collection); err != nil {
		return err
	}
	if s.dsn == "" {
		return fmt.Errorf("postgres DSN is not configured")
	}

	ctx, cancel := s.withTimeout(ctx)
	defer cancel()

	pool, err := pgxpool.New(ctx, s.dsn)
	if err != nil {
		return fmt.Errorf("failed to open postgres pool: %w", err)
	}
	if err := pool.Ping(ctx); err != nil {
		pool.Close()
		return fmt.Errorf("failed to connect to postgres: %w", err)
	}
	if _, err := pool.Exec(ctx, fmt.Sprintf(postgresBooksSchema, s.collection)); err != nil {
		pool.Close()
		return fmt.Errorf("failed to create table: %w", err)
	}

	s.db = pool
	return nil
}

// List returns every record in the collection
func (s *PostgresStore) List(ctx context.Context) ([]catalog.Book, error) {
	ctx, cancel := s.withTimeout(ctx)
	defer cancel()

	rows, err := s.db.Query(ctx, fmt.Sprintf(`SELECT id, name, author, cover_url, publish_year, edition, page_count, description, excerpts
		FROM %s ORDER BY created_at, id`, s.collection))
	if err != nil {
		return nil, fmt.Errorf("failed to list %s: %w", s.collection, err)
	}
	defer rows.Close()

	var books []catalog.Book
	for rows.Next() {
		var b catalog.Book
		if err := rows.Scan(&b.ID, &b.Name, &b.Author, &b.CoverURL, &b.PublishYear, &b.Edition, &b.PageCount, &b.Description, &b.Excerpts); err != nil {
			return nil, fmt.Errorf("failed to scan row: %w", err)
		}
		if b.Excerpts == nil {
			b.Excerpts = []string{}
		}
		books = append(books, b)
	}
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("failed to iterate rows: %w", err)
	}
	return books, nil
}

// Create inserts a record under a freshly generated ID
func (s *PostgresStore) Create(ctx context.Context, book catalog.Book) (string, error) {
	ctx, cancel := s.withTimeout(ctx)
	defer cancel()

	excerpts := book.Excerpts
	if excerpts == nil {
		excerpts = []string{}
	}

	var id string
	err := s.db.QueryRow(ctx, fmt.Sprintf(`INSERT INTO %s (id, name, author, cover_url, publish_year, edition, page_count, description, excerpts)
		VALUES ($1, $2, $3, $4, $5, $6, $7, $8, $9) RETURNING id`, s.collection),
		uuid.NewString(), book.Name, book.Author, book.CoverURL, book.PublishYear, book.Edition, book.PageCount, book.Description, excerpts,
	).Scan(&id)
	if err != nil {
		return "", fmt.Errorf("failed to insert record: %w", err)
	}
	return id, nil
}

// Delete removes a record. Deleting an ID that does not exist is not an error.
func (s *PostgresStore) Delete(ctx context.Context, id string) error {
	ctx, cancel := s.withTimeout(ctx)
	defer cancel()

	if _, err := s.db.Exec(ctx, fmt.Sprintf("DELETE FROM %s WHERE id = $1", s.collection), id); err != nil {
		return fmt.Errorf("failed to delete record: %w", err)
	}
	return nil
}

// Close closes the pool
func (s *PostgresStore) Close() error {
	if s.db != nil {
		s.db.Close()
	}
	return nil
}

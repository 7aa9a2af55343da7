package datastore

import (
	"context"
	"database/sql"
	"errors"
	"fmt"
	"log/slog"

	"github.com/google/uuid"
	"github.com/lepinkainen/shelfsync/internal/catalog"
	_ "modernc.org/sqlite"
)

const sqliteBooksSchema = `
CREATE TABLE IF NOT EXISTS %[1]s (
	id TEXT PRIMARY KEY NOT NULL,
	name TEXT NOT NULL,
	author TEXT NOT NULL,
	cover_url TEXT NOT NULL DEFAULT '',
	publish_year INTEGER NOT NULL DEFAULT 0,
	edition TEXT NOT NULL DEFAULT '',
	page_count INTEGER NOT NULL DEFAULT 0,
	description TEXT NOT NULL DEFAULT '',
	excerpts TEXT NOT NULL DEFAULT '[]',
	created_at DATETIME NOT NULL DEFAULT CURRENT_TIMESTAMP
);

CREATE INDEX IF NOT EXISTS idx_%[1]s_name_author ON %[1]s(name, author);
`

// SQLiteStore keeps the catalog collection in a local SQLite database
type SQLiteStore struct {
	db         *sql.DB
	dbPath     string
	collection string
}

// NewSQLiteStore creates a new SQLiteStore instance
func NewSQLiteStore(dbPath, collection string) *SQLiteStore {
	return &SQLiteStore{
		dbPath:     dbPath,
		collection: collection,
	}
}

// Connect opens the database and creates the collection table if needed
func (s *SQLiteStore) Connect(ctx context.Context) error {
	if err := validateCollection(s.collection); err != nil {
		return err
	}

	db, err := sql.Open("sqlite", s.dbPath)
	if err != nil {
		return fmt.Errorf("failed to open database: %w", err)
	}
	// SQLite serialises writers anyway; one connection also keeps
	// in-memory databases consistent across workers.
	db.SetMaxOpenConns(1)

	if err := db.PingContext(ctx); err != nil {
		closeErr := db.Close()
		return errors.Join(fmt.Errorf("failed to connect to database: %w", err), closeErr)
	}

	if _, err := db.ExecContext(ctx, fmt.Sprintf(sqliteBooksSchema, s.collection)); err != nil {
		closeErr := db.Close()
		return errors.Join(fmt.Errorf("failed to create table: %w", err), closeErr)
	}

	s.db = db
	return nil
}

// List returns every record in the collection
func (s *SQLiteStore) List(ctx context.Context) ([]catalog.Book, error) {
	query := fmt.Sprintf(`SELECT id, name, author, cover_url, publish_year, edition, page_count, description, excerpts
		FROM %s ORDER BY created_at, id`, s.collection)

	rows, err := s.db.QueryContext(ctx, query)
	if err != nil {
		return nil, fmt.Errorf("failed to list %s: %w", s.collection, err)
	}
	defer func() { _ = rows.Close() }()

	var books []catalog.Book
	for rows.Next() {
		var r bookRow
		if err := rows.Scan(&r.ID, &r.Name, &r.Author, &r.CoverURL, &r.PublishYear, &r.Edition, &r.PageCount, &r.Description, &r.Excerpts); err != nil {
			return nil, fmt.Errorf("failed to scan row: %w", err)
		}
		book, err := r.book()
		if err != nil {
			return nil, err
		}
		books = append(books, book)
	}
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("failed to iterate rows: %w", err)
	}

	return books, nil
}

// Create inserts a record under a freshly generated ID
func (s *SQLiteStore) Create(ctx context.Context, book catalog.Book) (string, error) {
	book.ID = uuid.NewString()
	r, err := rowFromBook(book)
	if err != nil {
		return "", err
	}

	query := fmt.Sprintf(`INSERT INTO %s (id, name, author, cover_url, publish_year, edition, page_count, description, excerpts)
		VALUES (?, ?, ?, ?, ?, ?, ?, ?, ?)`, s.collection)
	if _, err := s.db.ExecContext(ctx, query, r.ID, r.Name, r.Author, r.CoverURL, r.PublishYear, r.Edition, r.PageCount, r.Description, r.Excerpts); err != nil {
		return "", fmt.Errorf("failed to insert record: %w", err)
	}

	return r.ID, nil
}

// Delete removes a record. Deleting an ID that does not exist is not an error.
func (s *SQLiteStore) Delete(ctx context.Context, id string) error {
	query := fmt.Sprintf("DELETE FROM %s WHERE id = ?", s.collection)
	result, err := s.db.ExecContext(ctx, query, id)
	if err != nil {
		return fmt.Errorf("failed to delete record: %w", err)
	}

	if n, err := result.RowsAffected(); err == nil && n == 0 {
		slog.Debug("Record already gone", "collection", s.collection, "id", id)
	}
	return nil
}

// Close closes the database connection
func (s *SQLiteStore) Close() error {
	if s.db != nil {
		return s.db.Close()
	}
	return nil
}

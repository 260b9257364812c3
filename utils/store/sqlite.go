package store

import (
	"database/sql"
	"encoding/json"
	"errors"
	"fmt"
	"os"
	"path/filepath"
	"time"

	"github.com/jmoiron/sqlx"
	_ "github.com/mattn/go-sqlite3"
)

// SQLiteBackend stores each document as one JSON row of the documents table.
type SQLiteBackend struct {
	db   *sqlx.DB
	path string
}

type documentRow struct {
	Name      string `db:"name"`
	Body      string `db:"body"`
	UpdatedAt int64  `db:"updated_at"`
}

// NewSQLiteBackend opens the database at path and ensures the schema exists.
func NewSQLiteBackend(path string) (*SQLiteBackend, error) {
	if dir := filepath.Dir(path); dir != "" {
		if err := os.MkdirAll(dir, 0755); err != nil {
			return nil, fmt.Errorf("error creating directory %s: %w", dir, err)
		}
	}

	db, err := sqlx.Connect("sqlite3", path)
	if err != nil {
		return nil, fmt.Errorf("failed to connect to database: %w", err)
	}
	// SQLite allows a single writer at a time.
	db.SetMaxOpenConns(1)

	schema := `CREATE TABLE IF NOT EXISTS documents (
		name TEXT NOT NULL PRIMARY KEY,
		body TEXT NOT NULL,
		updated_at INTEGER NOT NULL
	);`
	if _, err := db.Exec(schema); err != nil {
		db.Close()
		return nil, fmt.Errorf("failed to create documents table: %w", err)
	}

	return &SQLiteBackend{db: db, path: path}, nil
}

func (b *SQLiteBackend) Load(doc Document, v interface{}) (bool, error) {
	var row documentRow
	err := b.db.Get(&row, "SELECT name, body, updated_at FROM documents WHERE name = ?", string(doc))
	if err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return false, nil
		}
		return false, fmt.Errorf("failed to get document %s: %w", doc, err)
	}

	if err := json.Unmarshal([]byte(row.Body), v); err != nil {
		return false, fmt.Errorf("failed to decode document %s: %w", doc, err)
	}
	return true, nil
}

func (b *SQLiteBackend) Save(doc Document, v interface{}) error {
	body, err := json.Marshal(v)
	if err != nil {
		return fmt.Errorf("failed to encode document %s: %w", doc, err)
	}

	query := `INSERT INTO documents (name, body, updated_at) VALUES (:name, :body, :updated_at)
			  ON CONFLICT(name) DO UPDATE SET body = excluded.body, updated_at = excluded.updated_at`
	row := documentRow{Name: string(doc), Body: string(body), UpdatedAt: time.Now().Unix()}
	if _, err := b.db.NamedExec(query, row); err != nil {
		return fmt.Errorf("failed to save document %s: %w", doc, err)
	}
	return nil
}

func (b *SQLiteBackend) Size() (int64, error) {
	info, err := os.Stat(b.path)
	if err != nil {
		return 0, err
	}
	return info.Size(), nil
}

func (b *SQLiteBackend) Close() error {
	return b.db.Close()
}

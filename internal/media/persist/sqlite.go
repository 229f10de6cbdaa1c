package persist

import (
	"context"
	"database/sql"
	"fmt"

	"github.com/socialhub/mediaup/internal/media/models"
)

// SQLiteStore persists placeholders in a single sqlite table. The
// caller owns the *sql.DB (and imports the driver).
type SQLiteStore struct {
	db *sql.DB
}

func NewSQLiteStore(db *sql.DB) *SQLiteStore {
	return &SQLiteStore{db: db}
}

// Init creates the schema if it does not exist yet.
func (s *SQLiteStore) Init(ctx context.Context) error {
	query := `CREATE TABLE IF NOT EXISTS placeholders (
		id TEXT PRIMARY KEY,
		name TEXT NOT NULL,
		size INTEGER NOT NULL,
		mime TEXT NOT NULL,
		kind TEXT NOT NULL,
		preview_url TEXT NOT NULL,
		position INTEGER NOT NULL
	)`
	if _, err := s.db.ExecContext(ctx, query); err != nil {
		return fmt.Errorf("failed to create placeholders table: %w", err)
	}
	return nil
}

// Replace swaps the persisted set for the given one in a single
// transaction, so a crash never leaves a mix of old and new rows.
func (s *SQLiteStore) Replace(ctx context.Context, placeholders []models.StorablePlaceholder) error {
	tx, err := s.db.BeginTx(ctx, nil)
	if err != nil {
		return fmt.Errorf("failed to begin tx: %w", err)
	}
	defer tx.Rollback()

	if _, err := tx.ExecContext(ctx, `DELETE FROM placeholders`); err != nil {
		return fmt.Errorf("failed to clear placeholders: %w", err)
	}

	query := `INSERT INTO placeholders (id, name, size, mime, kind, preview_url, position)
			values (?, ?, ?, ?, ?, ?, ?)`
	for _, p := range placeholders {
		_, err := tx.ExecContext(ctx, query, p.ID, p.Name, p.Size, p.MIME, string(p.Kind), p.PreviewURL, p.Position)
		if err != nil {
			return fmt.Errorf("failed to insert placeholder: %w", err)
		}
	}

	return tx.Commit()
}

// Load returns the persisted set ordered by position.
func (s *SQLiteStore) Load(ctx context.Context) ([]models.StorablePlaceholder, error) {
	query := `select id, name, size, mime, kind, preview_url, position from placeholders order by position`
	rows, err := s.db.QueryContext(ctx, query)
	if err != nil {
		return nil, fmt.Errorf("failed to select placeholders: %w", err)
	}
	defer rows.Close()

	var result []models.StorablePlaceholder
	for rows.Next() {
		var p models.StorablePlaceholder
		var kind string
		if err := rows.Scan(&p.ID, &p.Name, &p.Size, &p.MIME, &kind, &p.PreviewURL, &p.Position); err != nil {
			return nil, fmt.Errorf("failed to scan placeholder: %w", err)
		}
		p.Kind = models.Kind(kind)
		result = append(result, p)
	}
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("failed to read placeholders: %w", err)
	}

	return result, nil
}

// Clear drops every persisted placeholder.
func (s *SQLiteStore) Clear(ctx context.Context) error {
	if _, err := s.db.ExecContext(ctx, `DELETE FROM placeholders`); err != nil {
		return fmt.Errorf("failed to clear placeholders: %w", err)
	}
	return nil
}

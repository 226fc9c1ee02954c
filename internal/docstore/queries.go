// File path: internal/docstore/queries.go
package docstore

import (
	"context"
	"database/sql"
	"errors"
	"fmt"
	"strings"
	"time"
)

// Get retrieves a single document by id, returning ErrNotFound when absent.
func (s *Store) Get(ctx context.Context, id int64) (*Document, error) {
	if s == nil || s.db == nil {
		return nil, fmt.Errorf("docstore not initialised")
	}
	var doc Document
	err := s.db.GetContext(ctx, &doc, `SELECT * FROM documents WHERE id = ?`, id)
	if errors.Is(err, sql.ErrNoRows) {
		return nil, ErrNotFound
	}
	if err != nil {
		return nil, fmt.Errorf("select document %d: %w", id, err)
	}
	return &doc, nil
}

// List returns all documents ordered by id.
func (s *Store) List(ctx context.Context) ([]Document, error) {
	if s == nil || s.db == nil {
		return nil, fmt.Errorf("docstore not initialised")
	}
	docs := []Document{}
	if err := s.db.SelectContext(ctx, &docs, `SELECT * FROM documents ORDER BY id`); err != nil {
		return nil, fmt.Errorf("select documents: %w", err)
	}
	return docs, nil
}

// ListIDs returns every known document id in ascending order.
func (s *Store) ListIDs(ctx context.Context) ([]int64, error) {
	if s == nil || s.db == nil {
		return nil, fmt.Errorf("docstore not initialised")
	}
	ids := []int64{}
	if err := s.db.SelectContext(ctx, &ids, `SELECT id FROM documents ORDER BY id`); err != nil {
		return nil, fmt.Errorf("select document ids: %w", err)
	}
	return ids, nil
}

// Create inserts a new document and returns it with assigned id and
// timestamps.
func (s *Store) Create(ctx context.Context, title, content string) (*Document, error) {
	if s == nil || s.db == nil {
		return nil, fmt.Errorf("docstore not initialised")
	}
	title = strings.TrimSpace(title)
	if title == "" {
		return nil, fmt.Errorf("document title required")
	}
	if strings.TrimSpace(content) == "" {
		return nil, fmt.Errorf("document content required")
	}
	now := time.Now().UTC()
	res, err := s.db.ExecContext(ctx,
		`INSERT INTO documents (title, content, created_at, updated_at) VALUES (?, ?, ?, ?)`,
		title, content, now, now)
	if err != nil {
		return nil, fmt.Errorf("insert document: %w", err)
	}
	id, err := res.LastInsertId()
	if err != nil {
		return nil, fmt.Errorf("document id: %w", err)
	}
	return s.Get(ctx, id)
}

// Update replaces the title and content of an existing document.
func (s *Store) Update(ctx context.Context, id int64, title, content string) (*Document, error) {
	if s == nil || s.db == nil {
		return nil, fmt.Errorf("docstore not initialised")
	}
	res, err := s.db.ExecContext(ctx,
		`UPDATE documents SET title = ?, content = ?, updated_at = ? WHERE id = ?`,
		strings.TrimSpace(title), content, time.Now().UTC(), id)
	if err != nil {
		return nil, fmt.Errorf("update document %d: %w", id, err)
	}
	affected, err := res.RowsAffected()
	if err != nil {
		return nil, fmt.Errorf("update document %d: %w", id, err)
	}
	if affected == 0 {
		return nil, ErrNotFound
	}
	return s.Get(ctx, id)
}

// Delete removes a document, returning ErrNotFound when the id is unknown.
func (s *Store) Delete(ctx context.Context, id int64) error {
	if s == nil || s.db == nil {
		return fmt.Errorf("docstore not initialised")
	}
	res, err := s.db.ExecContext(ctx, `DELETE FROM documents WHERE id = ?`, id)
	if err != nil {
		return fmt.Errorf("delete document %d: %w", id, err)
	}
	affected, err := res.RowsAffected()
	if err != nil {
		return fmt.Errorf("delete document %d: %w", id, err)
	}
	if affected == 0 {
		return ErrNotFound
	}
	return nil
}

// Count returns the number of stored documents.
func (s *Store) Count(ctx context.Context) (int64, error) {
	if s == nil || s.db == nil {
		return 0, fmt.Errorf("docstore not initialised")
	}
	var count int64
	if err := s.db.GetContext(ctx, &count, `SELECT COUNT(*) FROM documents`); err != nil {
		return 0, fmt.Errorf("count documents: %w", err)
	}
	return count, nil
}

package postgres

import (
	"context"
	"database/sql"
	"errors"

	"calltimes/internal/domain"
)

type contentRepository struct {
	DB *sql.DB
}

// NewContentRepository creates the postgres-backed content item store. Only
// the record lives here; file bytes are in blob storage.
func NewContentRepository(db *sql.DB) domain.ContentRepository {
	return &contentRepository{DB: db}
}

func (r *contentRepository) Create(ctx context.Context, item *domain.ContentItem) error {
	query := `
		INSERT INTO content_items (project_id, owner_identity_id, kind, name, parent_id, storage_key, size_bytes, content_type, created_at)
		VALUES ($1, $2, $3, $4, NULLIF($5, ''), $6, $7, $8, $9)
		RETURNING id
	`
	return r.DB.QueryRowContext(ctx, query,
		item.ProjectID, item.OwnerIdentityID, item.Kind, item.Name, item.ParentID,
		item.StorageKey, item.SizeBytes, item.ContentType, item.CreatedAt,
	).Scan(&item.ID)
}

func (r *contentRepository) GetByID(ctx context.Context, id string) (*domain.ContentItem, error) {
	query := `
		SELECT id, project_id, owner_identity_id, kind, name, COALESCE(parent_id, ''), storage_key, size_bytes, content_type, created_at
		FROM content_items
		WHERE id = $1
	`
	item := &domain.ContentItem{}
	err := r.DB.QueryRowContext(ctx, query, id).Scan(
		&item.ID, &item.ProjectID, &item.OwnerIdentityID, &item.Kind, &item.Name,
		&item.ParentID, &item.StorageKey, &item.SizeBytes, &item.ContentType, &item.CreatedAt,
	)
	if errors.Is(err, sql.ErrNoRows) {
		return nil, domain.ErrNotFound
	}
	if err != nil {
		return nil, err
	}
	return item, nil
}

func (r *contentRepository) ListByProjectID(ctx context.Context, projectID string) ([]*domain.ContentItem, error) {
	query := `
		SELECT id, project_id, owner_identity_id, kind, name, COALESCE(parent_id, ''), storage_key, size_bytes, content_type, created_at
		FROM content_items
		WHERE project_id = $1
		ORDER BY kind, name
	`
	rows, err := r.DB.QueryContext(ctx, query, projectID)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	items := make([]*domain.ContentItem, 0)
	for rows.Next() {
		item := &domain.ContentItem{}
		if err := rows.Scan(
			&item.ID, &item.ProjectID, &item.OwnerIdentityID, &item.Kind, &item.Name,
			&item.ParentID, &item.StorageKey, &item.SizeBytes, &item.ContentType, &item.CreatedAt,
		); err != nil {
			return nil, err
		}
		items = append(items, item)
	}
	return items, rows.Err()
}

func (r *contentRepository) Rename(ctx context.Context, id, name string) error {
	query := `UPDATE content_items SET name = $1 WHERE id = $2`
	result, err := r.DB.ExecContext(ctx, query, name, id)
	if err != nil {
		return err
	}
	rows, _ := result.RowsAffected()
	if rows == 0 {
		return domain.ErrNotFound
	}
	return nil
}

func (r *contentRepository) Delete(ctx context.Context, id string) error {
	query := `DELETE FROM content_items WHERE id = $1`
	result, err := r.DB.ExecContext(ctx, query, id)
	if err != nil {
		return err
	}
	rows, _ := result.RowsAffected()
	if rows == 0 {
		return domain.ErrNotFound
	}
	return nil
}

package postgres

import (
	"context"
	"database/sql"
	"errors"

	"github.com/lib/pq"

	"calltimes/internal/domain"
)

type projectRepository struct {
	DB *sql.DB
}

// NewProjectRepository creates the postgres-backed project store.
func NewProjectRepository(db *sql.DB) domain.ProjectRepository {
	return &projectRepository{DB: db}
}

func (r *projectRepository) Create(ctx context.Context, p *domain.Project) error {
	query := `
		INSERT INTO projects (organization_id, name, description, created_at, updated_at)
		VALUES ($1, $2, $3, $4, $5)
		RETURNING id
	`
	return r.DB.QueryRowContext(ctx, query,
		p.OrganizationID, p.Name, p.Description, p.CreatedAt, p.UpdatedAt,
	).Scan(&p.ID)
}

func (r *projectRepository) GetByID(ctx context.Context, id string) (*domain.Project, error) {
	query := `
		SELECT id, organization_id, name, description, created_at, updated_at
		FROM projects
		WHERE id = $1
	`
	p := &domain.Project{}
	err := r.DB.QueryRowContext(ctx, query, id).Scan(
		&p.ID, &p.OrganizationID, &p.Name, &p.Description, &p.CreatedAt, &p.UpdatedAt,
	)
	if errors.Is(err, sql.ErrNoRows) {
		return nil, domain.ErrNotFound
	}
	if err != nil {
		return nil, err
	}
	return p, nil
}

func (r *projectRepository) ListByOrganizationID(ctx context.Context, organizationID string) ([]*domain.Project, error) {
	query := `
		SELECT id, organization_id, name, description, created_at, updated_at
		FROM projects
		WHERE organization_id = $1
		ORDER BY created_at DESC
	`
	rows, err := r.DB.QueryContext(ctx, query, organizationID)
	if err != nil {
		return nil, err
	}
	defer rows.Close()
	return collectProjects(rows)
}

func (r *projectRepository) ListByIDs(ctx context.Context, ids []string) ([]*domain.Project, error) {
	if len(ids) == 0 {
		return []*domain.Project{}, nil
	}
	query := `
		SELECT id, organization_id, name, description, created_at, updated_at
		FROM projects
		WHERE id = ANY($1)
		ORDER BY created_at DESC
	`
	rows, err := r.DB.QueryContext(ctx, query, pq.Array(ids))
	if err != nil {
		return nil, err
	}
	defer rows.Close()
	return collectProjects(rows)
}

func collectProjects(rows *sql.Rows) ([]*domain.Project, error) {
	projects := make([]*domain.Project, 0)
	for rows.Next() {
		p := &domain.Project{}
		if err := rows.Scan(&p.ID, &p.OrganizationID, &p.Name, &p.Description, &p.CreatedAt, &p.UpdatedAt); err != nil {
			return nil, err
		}
		projects = append(projects, p)
	}
	return projects, rows.Err()
}

package postgres

import (
	"context"
	"database/sql"
	"errors"

	"github.com/lib/pq"

	"calltimes/internal/domain"
)

type projectMemberRepository struct {
	DB *sql.DB
}

// NewProjectMemberRepository creates the store for the derived membership
// view. (project_id, identity_id) is unique.
func NewProjectMemberRepository(db *sql.DB) domain.ProjectMemberRepository {
	return &projectMemberRepository{DB: db}
}

func (r *projectMemberRepository) Create(ctx context.Context, m *domain.ProjectMember) error {
	query := `
		INSERT INTO project_members (project_id, identity_id, email, role, invitation_id, joined_at)
		VALUES ($1, $2, $3, $4, $5, $6)
	`
	_, err := r.DB.ExecContext(ctx, query,
		m.ProjectID, m.IdentityID, m.Email, m.Role, m.InvitationID, m.JoinedAt,
	)
	if err != nil {
		var pqErr *pq.Error
		if errors.As(err, &pqErr) && pqErr.Code == "23505" {
			return domain.ErrAlreadyMember
		}
		return err
	}
	return nil
}

func (r *projectMemberRepository) ListByIdentityID(ctx context.Context, identityID string) ([]*domain.ProjectMember, error) {
	query := `
		SELECT project_id, identity_id, email, role, invitation_id, joined_at
		FROM project_members
		WHERE identity_id = $1
		ORDER BY joined_at
	`
	return r.list(ctx, query, identityID)
}

func (r *projectMemberRepository) ListByProjectID(ctx context.Context, projectID string) ([]*domain.ProjectMember, error) {
	query := `
		SELECT project_id, identity_id, email, role, invitation_id, joined_at
		FROM project_members
		WHERE project_id = $1
		ORDER BY joined_at
	`
	return r.list(ctx, query, projectID)
}

func (r *projectMemberRepository) list(ctx context.Context, query, arg string) ([]*domain.ProjectMember, error) {
	rows, err := r.DB.QueryContext(ctx, query, arg)
	if err != nil {
		return nil, err
	}
	defer rows.Close()
	members := make([]*domain.ProjectMember, 0)
	for rows.Next() {
		m := &domain.ProjectMember{}
		if err := rows.Scan(&m.ProjectID, &m.IdentityID, &m.Email, &m.Role, &m.InvitationID, &m.JoinedAt); err != nil {
			return nil, err
		}
		members = append(members, m)
	}
	return members, rows.Err()
}

func (r *projectMemberRepository) GetByProjectAndEmail(ctx context.Context, projectID, email string) (*domain.ProjectMember, error) {
	query := `
		SELECT project_id, identity_id, email, role, invitation_id, joined_at
		FROM project_members
		WHERE project_id = $1 AND email = $2
	`
	m := &domain.ProjectMember{}
	err := r.DB.QueryRowContext(ctx, query, projectID, email).
		Scan(&m.ProjectID, &m.IdentityID, &m.Email, &m.Role, &m.InvitationID, &m.JoinedAt)
	if errors.Is(err, sql.ErrNoRows) {
		return nil, domain.ErrNotFound
	}
	if err != nil {
		return nil, err
	}
	return m, nil
}

func (r *projectMemberRepository) DeleteByInvitationID(ctx context.Context, invitationID string) error {
	query := `DELETE FROM project_members WHERE invitation_id = $1`
	_, err := r.DB.ExecContext(ctx, query, invitationID)
	return err
}

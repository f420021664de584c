package postgres

import (
	"context"
	"database/sql"
	"errors"

	"calltimes/internal/domain"
)

type organizationRepository struct {
	DB *sql.DB
}

// NewOrganizationRepository creates the postgres-backed organization store.
func NewOrganizationRepository(db *sql.DB) domain.OrganizationRepository {
	return &organizationRepository{DB: db}
}

func (r *organizationRepository) Create(ctx context.Context, org *domain.Organization) error {
	query := `
		INSERT INTO organizations (name, created_at)
		VALUES ($1, $2)
		RETURNING id
	`
	return r.DB.QueryRowContext(ctx, query, org.Name, org.CreatedAt).Scan(&org.ID)
}

func (r *organizationRepository) GetByID(ctx context.Context, id string) (*domain.Organization, error) {
	query := `SELECT id, name, created_at FROM organizations WHERE id = $1`
	org := &domain.Organization{}
	err := r.DB.QueryRowContext(ctx, query, id).Scan(&org.ID, &org.Name, &org.CreatedAt)
	if errors.Is(err, sql.ErrNoRows) {
		return nil, domain.ErrNotFound
	}
	if err != nil {
		return nil, err
	}
	return org, nil
}

func (r *organizationRepository) AddMember(ctx context.Context, m *domain.OrganizationMember) error {
	query := `
		INSERT INTO organization_members (identity_id, organization_id, role)
		VALUES ($1, $2, $3)
	`
	_, err := r.DB.ExecContext(ctx, query, m.IdentityID, m.OrganizationID, m.Role)
	return err
}

// GetMemberByIdentityID returns nil, nil when the identity has no
// organization; the resolver treats that as "check project memberships".
func (r *organizationRepository) GetMemberByIdentityID(ctx context.Context, identityID string) (*domain.OrganizationMember, error) {
	query := `
		SELECT identity_id, organization_id, role
		FROM organization_members
		WHERE identity_id = $1
	`
	m := &domain.OrganizationMember{}
	err := r.DB.QueryRowContext(ctx, query, identityID).Scan(&m.IdentityID, &m.OrganizationID, &m.Role)
	if errors.Is(err, sql.ErrNoRows) {
		return nil, nil
	}
	if err != nil {
		return nil, err
	}
	return m, nil
}

package postgres

import (
	"context"
	"database/sql"
	"errors"
	"time"

	"github.com/lib/pq"

	"calltimes/internal/domain"
)

type invitationRepository struct {
	DB *sql.DB
}

// NewInvitationRepository creates the postgres-backed invitation store. A
// partial unique index on (project_id, email) WHERE status = 'pending'
// enforces the single-pending-invitation invariant at the database level.
func NewInvitationRepository(db *sql.DB) domain.InvitationRepository {
	return &invitationRepository{DB: db}
}

func (r *invitationRepository) Create(ctx context.Context, inv *domain.Invitation) error {
	query := `
		INSERT INTO invitations (project_id, email, role, token, status, invited_by, invited_at, expires_at)
		VALUES ($1, $2, $3, $4, $5, $6, $7, $8)
		RETURNING id
	`
	err := r.DB.QueryRowContext(ctx, query,
		inv.ProjectID, inv.Email, inv.Role, inv.Token, inv.Status,
		inv.InvitedBy, inv.InvitedAt, inv.ExpiresAt,
	).Scan(&inv.ID)
	if err != nil {
		var pqErr *pq.Error
		if errors.As(err, &pqErr) && pqErr.Code == "23505" {
			return domain.ErrDuplicateInvitation
		}
		return err
	}
	return nil
}

const invitationColumns = `id, project_id, email, role, token, status, invited_by, invited_at, expires_at, accepted_at, accepted_by`

func scanInvitation(row *sql.Row) (*domain.Invitation, error) {
	inv := &domain.Invitation{}
	var acceptedAt sql.NullTime
	var acceptedBy sql.NullString
	err := row.Scan(
		&inv.ID, &inv.ProjectID, &inv.Email, &inv.Role, &inv.Token, &inv.Status,
		&inv.InvitedBy, &inv.InvitedAt, &inv.ExpiresAt, &acceptedAt, &acceptedBy,
	)
	if err != nil {
		return nil, err
	}
	if acceptedAt.Valid {
		inv.AcceptedAt = &acceptedAt.Time
	}
	inv.AcceptedBy = acceptedBy.String
	return inv, nil
}

func (r *invitationRepository) GetByToken(ctx context.Context, token string) (*domain.Invitation, error) {
	query := `SELECT ` + invitationColumns + ` FROM invitations WHERE token = $1`
	inv, err := scanInvitation(r.DB.QueryRowContext(ctx, query, token))
	if errors.Is(err, sql.ErrNoRows) {
		return nil, domain.ErrInvitationNotFound
	}
	return inv, err
}

func (r *invitationRepository) GetByID(ctx context.Context, id string) (*domain.Invitation, error) {
	query := `SELECT ` + invitationColumns + ` FROM invitations WHERE id = $1`
	inv, err := scanInvitation(r.DB.QueryRowContext(ctx, query, id))
	if errors.Is(err, sql.ErrNoRows) {
		return nil, domain.ErrInvitationNotFound
	}
	return inv, err
}

// Accept applies pending -> accepted as a single conditional update so two
// concurrent accepts for the same token resolve to exactly one winner. The
// loser sees zero rows affected and reads the post-transition state.
func (r *invitationRepository) Accept(ctx context.Context, token, acceptedBy string, acceptedAt time.Time) (bool, error) {
	query := `
		UPDATE invitations
		SET status = $1, accepted_at = $2, accepted_by = $3
		WHERE token = $4 AND status = $5
	`
	result, err := r.DB.ExecContext(ctx, query,
		domain.InvitationAccepted, acceptedAt, acceptedBy, token, domain.InvitationPending,
	)
	if err != nil {
		return false, err
	}
	rows, err := result.RowsAffected()
	if err != nil {
		return false, err
	}
	return rows == 1, nil
}

// Revoke marks the invitation revoked and reports the status it held
// before the update, so the caller knows whether a derived membership row
// needs removal. Revoking an already revoked invitation is a no-op.
func (r *invitationRepository) Revoke(ctx context.Context, id string) (domain.InvitationStatus, error) {
	var prev domain.InvitationStatus
	err := r.DB.QueryRowContext(ctx, `SELECT status FROM invitations WHERE id = $1`, id).Scan(&prev)
	if errors.Is(err, sql.ErrNoRows) {
		return "", domain.ErrInvitationNotFound
	}
	if err != nil {
		return "", err
	}
	if prev == domain.InvitationRevoked {
		return prev, nil
	}
	query := `UPDATE invitations SET status = $1 WHERE id = $2`
	if _, err := r.DB.ExecContext(ctx, query, domain.InvitationRevoked, id); err != nil {
		return "", err
	}
	return prev, nil
}

func (r *invitationRepository) ListByProjectID(ctx context.Context, projectID string, params domain.PaginationParams) ([]*domain.Invitation, int, error) {
	var total int
	countQuery := `SELECT COUNT(*) FROM invitations WHERE project_id = $1`
	if err := r.DB.QueryRowContext(ctx, countQuery, projectID).Scan(&total); err != nil {
		return nil, 0, err
	}

	query := `
		SELECT ` + invitationColumns + `
		FROM invitations
		WHERE project_id = $1
		ORDER BY invited_at DESC
		LIMIT $2 OFFSET $3
	`
	rows, err := r.DB.QueryContext(ctx, query, projectID, params.PageSize, params.Offset())
	if err != nil {
		return nil, 0, err
	}
	defer rows.Close()

	invs := make([]*domain.Invitation, 0)
	for rows.Next() {
		inv := &domain.Invitation{}
		var acceptedAt sql.NullTime
		var acceptedBy sql.NullString
		if err := rows.Scan(
			&inv.ID, &inv.ProjectID, &inv.Email, &inv.Role, &inv.Token, &inv.Status,
			&inv.InvitedBy, &inv.InvitedAt, &inv.ExpiresAt, &acceptedAt, &acceptedBy,
		); err != nil {
			return nil, 0, err
		}
		if acceptedAt.Valid {
			inv.AcceptedAt = &acceptedAt.Time
		}
		inv.AcceptedBy = acceptedBy.String
		invs = append(invs, inv)
	}
	return invs, total, rows.Err()
}

func (r *invitationRepository) HasPending(ctx context.Context, projectID, email string) (bool, error) {
	query := `SELECT EXISTS (SELECT 1 FROM invitations WHERE project_id = $1 AND email = $2 AND status = $3)`
	var exists bool
	err := r.DB.QueryRowContext(ctx, query, projectID, email, domain.InvitationPending).Scan(&exists)
	return exists, err
}

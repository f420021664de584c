package postgres

import (
	"context"
	"database/sql"
	"errors"

	"github.com/lib/pq"

	"calltimes/internal/domain"
)

type guestIdentityRepository struct {
	DB *sql.DB
}

// NewGuestIdentityRepository creates the mint ledger for guest identities.
// invitation_token is unique, which is what makes provisioning at-most-once
// under concurrent retries rather than an application-level check.
func NewGuestIdentityRepository(db *sql.DB) domain.GuestIdentityRepository {
	return &guestIdentityRepository{DB: db}
}

func (r *guestIdentityRepository) Reserve(ctx context.Context, token, identityID string) (string, error) {
	query := `INSERT INTO guest_identities (invitation_token, identity_id) VALUES ($1, $2)`
	_, err := r.DB.ExecContext(ctx, query, token, identityID)
	if err != nil {
		var pqErr *pq.Error
		if errors.As(err, &pqErr) && pqErr.Code == "23505" {
			// Lost the race; hand back the identity that won.
			return r.GetByToken(ctx, token)
		}
		return "", err
	}
	return identityID, nil
}

func (r *guestIdentityRepository) GetByToken(ctx context.Context, token string) (string, error) {
	query := `SELECT identity_id FROM guest_identities WHERE invitation_token = $1`
	var identityID string
	err := r.DB.QueryRowContext(ctx, query, token).Scan(&identityID)
	if errors.Is(err, sql.ErrNoRows) {
		return "", domain.ErrNotFound
	}
	if err != nil {
		return "", err
	}
	return identityID, nil
}

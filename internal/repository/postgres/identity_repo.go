package postgres

import (
	"context"
	"database/sql"
	"errors"

	"github.com/lib/pq"

	"calltimes/internal/domain"
)

type identityRepository struct {
	DB *sql.DB
}

// NewIdentityRepository creates the postgres-backed identity store.
func NewIdentityRepository(db *sql.DB) domain.IdentityRepository {
	return &identityRepository{DB: db}
}

func (r *identityRepository) Create(ctx context.Context, id *domain.Identity) error {
	query := `
		INSERT INTO identities (email, name, kind, password_hash, salt, created_at, updated_at)
		VALUES ($1, $2, $3, $4, $5, $6, $7)
		RETURNING id
	`
	err := r.DB.QueryRowContext(ctx, query,
		id.Email, id.Name, id.Kind, id.PasswordHash, id.Salt, id.CreatedAt, id.UpdatedAt,
	).Scan(&id.ID)
	if err != nil {
		var pqErr *pq.Error
		if errors.As(err, &pqErr) && pqErr.Code == "23505" {
			return domain.ErrDuplicateEmail
		}
		return err
	}
	return nil
}

func (r *identityRepository) GetByID(ctx context.Context, id string) (*domain.Identity, error) {
	query := `
		SELECT id, email, name, kind, password_hash, salt, created_at, updated_at
		FROM identities
		WHERE id = $1
	`
	return r.get(ctx, query, id)
}

func (r *identityRepository) GetByEmail(ctx context.Context, email string) (*domain.Identity, error) {
	query := `
		SELECT id, email, name, kind, password_hash, salt, created_at, updated_at
		FROM identities
		WHERE email = $1
	`
	return r.get(ctx, query, email)
}

func (r *identityRepository) get(ctx context.Context, query, arg string) (*domain.Identity, error) {
	id := &domain.Identity{}
	var hash, salt sql.NullString
	err := r.DB.QueryRowContext(ctx, query, arg).Scan(
		&id.ID, &id.Email, &id.Name, &id.Kind, &hash, &salt, &id.CreatedAt, &id.UpdatedAt,
	)
	if errors.Is(err, sql.ErrNoRows) {
		return nil, domain.ErrIdentityNotFound
	}
	if err != nil {
		return nil, err
	}
	id.PasswordHash = hash.String
	id.Salt = salt.String
	return id, nil
}

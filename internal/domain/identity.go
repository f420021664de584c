package domain

import (
	"context"
	"errors"
	"time"
)

// Sentinel errors for identity operations.
var (
	ErrIdentityNotFound = errors.New("identity not found")
	ErrDuplicateEmail   = errors.New("email already in use")
)

// IdentityKind distinguishes interactive organization accounts from
// non-interactive guest accounts minted for editor invitations.
type IdentityKind string

const (
	IdentityMember IdentityKind = "member"
	IdentityGuest  IdentityKind = "guest"
)

// Identity is an account that can own content and hold access. Guests have
// no password and cannot log in directly; they exist so authored content
// has a stable owner reference.
// swagger:model Identity
type Identity struct {
	ID           string       `json:"id"`
	Email        string       `json:"email"`
	Name         string       `json:"name"`
	Kind         IdentityKind `json:"kind"`
	PasswordHash string       `json:"-"`
	Salt         string       `json:"-"`
	CreatedAt    time.Time    `json:"created_at"`
	UpdatedAt    time.Time    `json:"updated_at"`
}

// NewIdentity returns a new Identity. ID is set by the repository on create.
func NewIdentity(email, name string, kind IdentityKind, createdAt, updatedAt time.Time) *Identity {
	return &Identity{
		Email:     email,
		Name:      name,
		Kind:      kind,
		CreatedAt: createdAt,
		UpdatedAt: updatedAt,
	}
}

// IdentityRepository defines the interface for identity storage.
type IdentityRepository interface {
	Create(ctx context.Context, id *Identity) error
	GetByID(ctx context.Context, id string) (*Identity, error)
	GetByEmail(ctx context.Context, email string) (*Identity, error)
}

// GuestIdentityRepository records the at-most-once mapping from an
// invitation token to the guest identity minted for it. The uniqueness of
// the token column carries the concurrency guarantee; a second mint attempt
// must observe the existing mapping.
type GuestIdentityRepository interface {
	// Reserve inserts the (token, identityID) mapping. It returns the
	// identity id already recorded for the token when one exists, in which
	// case the caller's freshly minted identity must be discarded.
	Reserve(ctx context.Context, token, identityID string) (existingID string, err error)
	GetByToken(ctx context.Context, token string) (identityID string, err error)
}

// GuestProvisioner mints a scoped, non-interactive identity for an
// editor-role invitation accepted by a caller without an account.
type GuestProvisioner interface {
	Provision(ctx context.Context, token, email, displayName string) (identityID string, err error)
}

// PasswordHasher handles salt generation, hashing, and verification.
type PasswordHasher interface {
	GenerateSalt() (string, error)
	Hash(salt, password string) (hash string, err error)
	Compare(hash, salt, password string) error
}

// TokenIssuer issues session tokens (e.g. JWT) for an identity.
type TokenIssuer interface {
	Issue(identityID, email string, expiry time.Duration) (string, error)
}

// TokenVerifier verifies a session token and returns the identity id.
type TokenVerifier interface {
	Verify(token string) (identityID string, err error)
}

// AuthService defines signup and login for organization members.
type AuthService interface {
	SignUp(ctx context.Context, email, password, name, orgName string) (*Identity, error)
	Login(ctx context.Context, email, password string) (token string, id *Identity, err error)
	GetByID(ctx context.Context, id string) (*Identity, error)
}

package domain

import (
	"context"
	"errors"
	"time"
)

// Sentinel errors for the invitation lifecycle. The delivery layer maps each
// one to a distinct user-facing outcome; callers must not collapse them.
var (
	ErrPermissionDenied    = errors.New("permission denied")
	ErrDuplicateInvitation = errors.New("invitation already pending for this email")
	ErrInvitationNotFound  = errors.New("invitation not found")
	ErrInvitationExpired   = errors.New("invitation expired")
	ErrInvitationRevoked   = errors.New("invitation revoked")
	ErrProvisioningFailed  = errors.New("guest identity provisioning failed")
)

// InvitationStatus is the stored state of an invitation. Expiry is not a
// stored status; it is computed at read time from ExpiresAt.
type InvitationStatus string

const (
	InvitationPending  InvitationStatus = "pending"
	InvitationAccepted InvitationStatus = "accepted"
	InvitationRevoked  InvitationStatus = "revoked"
)

// InvitationTTL is how long a pending invitation stays acceptable.
const InvitationTTL = 7 * 24 * time.Hour

// Invitation is a time-bounded, role-scoped grant of project access to an
// email address. The token is opaque and single-use for the accept
// transition. Accepted invitations are kept as an audit trail.
// swagger:model Invitation
type Invitation struct {
	ID         string           `json:"id"`
	ProjectID  string           `json:"project_id"`
	Email      string           `json:"email"`
	Role       Role             `json:"role"`
	Token      string           `json:"-"`
	Status     InvitationStatus `json:"status"`
	InvitedBy  string           `json:"invited_by"`
	InvitedAt  time.Time        `json:"invited_at"`
	ExpiresAt  time.Time        `json:"expires_at"`
	AcceptedAt *time.Time       `json:"accepted_at,omitempty"`
	AcceptedBy string           `json:"accepted_by,omitempty"`
}

// Expired reports whether a still-pending invitation is past its expiry at
// the given instant. Accepted and revoked invitations never expire.
func (i *Invitation) Expired(now time.Time) bool {
	return i.Status == InvitationPending && now.After(i.ExpiresAt)
}

// InvitationRepository defines storage operations for invitations. The
// lifecycle service is the only writer after creation.
type InvitationRepository interface {
	Create(ctx context.Context, inv *Invitation) error
	GetByToken(ctx context.Context, token string) (*Invitation, error)
	GetByID(ctx context.Context, id string) (*Invitation, error)
	// Accept performs the pending -> accepted transition as a single
	// conditional update. It returns false when the invitation was no
	// longer pending, without modifying the row.
	Accept(ctx context.Context, token, acceptedBy string, acceptedAt time.Time) (bool, error)
	// Revoke moves any non-terminal invitation to revoked. It returns the
	// status the row held before the update.
	Revoke(ctx context.Context, id string) (InvitationStatus, error)
	ListByProjectID(ctx context.Context, projectID string, params PaginationParams) ([]*Invitation, int, error)
	HasPending(ctx context.Context, projectID, email string) (bool, error)
}

// InvitationService orchestrates the invitation lifecycle: create ->
// dispatch -> validate -> accept/expire/revoke.
type InvitationService interface {
	Create(ctx context.Context, actorID, projectID, email string, role Role) (*Invitation, error)
	ValidateToken(ctx context.Context, token string) (*Invitation, error)
	Accept(ctx context.Context, token, callerIdentityID, displayName string) (*Invitation, *ProjectMember, error)
	Revoke(ctx context.Context, actorID, invitationID string) error
	ListByProject(ctx context.Context, actorID, projectID string, params PaginationParams) ([]*Invitation, int, error)
	Resend(ctx context.Context, actorID, invitationID string) error
}

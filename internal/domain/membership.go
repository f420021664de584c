package domain

import (
	"context"
	"errors"
	"time"
)

var ErrAlreadyMember = errors.New("already a project member")

// ProjectMember is the derived membership view over accepted invitations:
// one row per (project, identity). Invitation acceptance is the single
// source of truth; this table is materialized from it for query speed.
// swagger:model ProjectMember
type ProjectMember struct {
	ProjectID    string    `json:"project_id"`
	IdentityID   string    `json:"identity_id"`
	Email        string    `json:"email"`
	Role         Role      `json:"role"`
	InvitationID string    `json:"invitation_id"`
	JoinedAt     time.Time `json:"joined_at"`
}

// ProjectMemberRepository defines storage operations for the derived
// membership view.
type ProjectMemberRepository interface {
	Create(ctx context.Context, m *ProjectMember) error
	ListByIdentityID(ctx context.Context, identityID string) ([]*ProjectMember, error)
	ListByProjectID(ctx context.Context, projectID string) ([]*ProjectMember, error)
	GetByProjectAndEmail(ctx context.Context, projectID, email string) (*ProjectMember, error)
	// DeleteByInvitationID removes the membership derived from the given
	// invitation, if any. Used on revocation of an accepted invitation.
	DeleteByInvitationID(ctx context.Context, invitationID string) error
}

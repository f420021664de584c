package domain

import (
	"context"
	"time"
)

// Organization groups projects and their member identities.
// swagger:model Organization
type Organization struct {
	ID        string    `json:"id"`
	Name      string    `json:"name"`
	CreatedAt time.Time `json:"created_at"`
}

// OrgRole is an identity's role inside its organization.
type OrgRole string

const (
	OrgRoleOwner  OrgRole = "owner"
	OrgRoleMember OrgRole = "member"
)

// OrganizationMember ties an identity to exactly one organization.
// Organization members are implicitly project owners of every project
// under their organization.
type OrganizationMember struct {
	IdentityID     string  `json:"identity_id"`
	OrganizationID string  `json:"organization_id"`
	Role           OrgRole `json:"role"`
}

// OrganizationRepository defines storage operations for organizations and
// their memberships.
type OrganizationRepository interface {
	Create(ctx context.Context, org *Organization) error
	GetByID(ctx context.Context, id string) (*Organization, error)
	AddMember(ctx context.Context, m *OrganizationMember) error
	// GetMemberByIdentityID returns nil, nil when the identity belongs to
	// no organization.
	GetMemberByIdentityID(ctx context.Context, identityID string) (*OrganizationMember, error)
}

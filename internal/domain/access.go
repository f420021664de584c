package domain

import "context"

// Role is a project-scoped role granted by an invitation or implied by
// organization membership.
type Role string

const (
	RoleOwner  Role = "owner"
	RoleEditor Role = "editor"
	RoleViewer Role = "viewer"
)

// ValidRole reports whether r is one of the known project roles.
func ValidRole(r Role) bool {
	switch r {
	case RoleOwner, RoleEditor, RoleViewer:
		return true
	}
	return false
}

// Operation is something an identity can attempt on project content.
type Operation string

const (
	OpView         Operation = "view"
	OpDownload     Operation = "download"
	OpRename       Operation = "rename"
	OpUpload       Operation = "upload"
	OpCreateFolder Operation = "create_folder"
	OpDelete       Operation = "delete"
	OpInviteOthers Operation = "invite_others"
)

// AccessType classifies how an identity relates to the system's projects.
type AccessType string

const (
	AccessOrgMember    AccessType = "org_member"
	AccessProjectGuest AccessType = "project_guest"
	AccessNone         AccessType = "none"
)

// AccessGrant is the computed access picture for one identity. It is built
// on demand from organization and project memberships and never stored.
type AccessGrant struct {
	IdentityID     string
	Type           AccessType
	OrganizationID string
	ProjectIDs     map[string]struct{}
	RoleByProject  map[string]Role
}

// HasProject reports whether the grant covers the given project.
func (g *AccessGrant) HasProject(projectID string) bool {
	_, ok := g.ProjectIDs[projectID]
	return ok
}

// DenyReason explains why the permission gateway rejected an operation.
type DenyReason string

const (
	DenyNoAccess         DenyReason = "no_access"
	DenyRoleForbids      DenyReason = "role_forbids"
	DenyNotOwner         DenyReason = "not_owner"
	DenyMissingOwnership DenyReason = "missing_ownership"
)

// Decision is the outcome of an authorization check.
type Decision struct {
	Allowed bool
	Reason  DenyReason
	Role    Role
}

// Allow returns an allowing decision carrying the effective role.
func Allow(role Role) Decision { return Decision{Allowed: true, Role: role} }

// Deny returns a denying decision with the given reason.
func Deny(reason DenyReason) Decision { return Decision{Allowed: false, Reason: reason} }

// OwnershipTarget carries the ownership metadata of the object an
// ownership-qualified operation is aimed at. The gateway only ever reads
// the owner id; it does not own the record.
type OwnershipTarget struct {
	OwnerIdentityID string
}

// AccessResolver computes the AccessGrant for an identity. Organization
// membership wins over project memberships; an identity with neither has
// no access.
type AccessResolver interface {
	Resolve(ctx context.Context, identityID string) (*AccessGrant, error)
}

// Authorizer is the single enforcement point for every mutating operation
// on project content. Target may be nil for operations that are not
// ownership-qualified.
type Authorizer interface {
	Authorize(ctx context.Context, identityID, projectID string, op Operation, target *OwnershipTarget) (Decision, error)
}

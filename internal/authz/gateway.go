package authz

import (
	"context"
	"fmt"

	"calltimes/internal/domain"
)

type gateway struct {
	resolver domain.AccessResolver
}

// NewGateway creates the permission gateway. There is no other
// authorization path: every mutating code path calls Authorize before
// touching content.
func NewGateway(resolver domain.AccessResolver) domain.Authorizer {
	return &gateway{resolver: resolver}
}

// Authorize decides whether identityID may perform op on projectID.
// Matrix-level denial precedes the ownership check, so a viewer attempting
// a delete is denied by role, not by ownership.
func (g *gateway) Authorize(ctx context.Context, identityID, projectID string, op domain.Operation, target *domain.OwnershipTarget) (domain.Decision, error) {
	grant, err := g.resolver.Resolve(ctx, identityID)
	if err != nil {
		return domain.Decision{}, fmt.Errorf("resolve access: %w", err)
	}
	if grant.Type == domain.AccessNone || !grant.HasProject(projectID) {
		return domain.Deny(domain.DenyNoAccess), nil
	}
	role := grant.RoleByProject[projectID]
	switch Lookup(role, op) {
	case VerdictAllow:
		return domain.Allow(role), nil
	case VerdictAllowIfOwner:
		if target == nil {
			return domain.Deny(domain.DenyMissingOwnership), nil
		}
		if target.OwnerIdentityID == identityID {
			return domain.Allow(role), nil
		}
		return domain.Deny(domain.DenyNotOwner), nil
	default:
		return domain.Deny(domain.DenyRoleForbids), nil
	}
}

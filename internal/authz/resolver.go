package authz

import (
	"context"
	"fmt"

	"calltimes/internal/domain"
)

type accessResolver struct {
	orgRepo     domain.OrganizationRepository
	projectRepo domain.ProjectRepository
	memberRepo  domain.ProjectMemberRepository
}

// NewAccessResolver creates an AccessResolver over organization and project
// membership storage.
func NewAccessResolver(orgRepo domain.OrganizationRepository, projectRepo domain.ProjectRepository, memberRepo domain.ProjectMemberRepository) domain.AccessResolver {
	return &accessResolver{
		orgRepo:     orgRepo,
		projectRepo: projectRepo,
		memberRepo:  memberRepo,
	}
}

// Resolve computes the AccessGrant for an identity. Organization membership
// is checked first: org members hold an effective owner role on every
// project under their organization. Otherwise accepted project memberships
// apply, with the stored role per project authoritative. The grant is
// recomputed on every call and never cached across requests.
func (r *accessResolver) Resolve(ctx context.Context, identityID string) (*domain.AccessGrant, error) {
	grant := &domain.AccessGrant{
		IdentityID:    identityID,
		Type:          domain.AccessNone,
		ProjectIDs:    make(map[string]struct{}),
		RoleByProject: make(map[string]domain.Role),
	}

	orgMember, err := r.orgRepo.GetMemberByIdentityID(ctx, identityID)
	if err != nil {
		return nil, fmt.Errorf("get organization membership: %w", err)
	}
	if orgMember != nil {
		grant.Type = domain.AccessOrgMember
		grant.OrganizationID = orgMember.OrganizationID
		projects, err := r.projectRepo.ListByOrganizationID(ctx, orgMember.OrganizationID)
		if err != nil {
			return nil, fmt.Errorf("list organization projects: %w", err)
		}
		for _, p := range projects {
			grant.ProjectIDs[p.ID] = struct{}{}
			grant.RoleByProject[p.ID] = domain.RoleOwner
		}
		return grant, nil
	}

	memberships, err := r.memberRepo.ListByIdentityID(ctx, identityID)
	if err != nil {
		return nil, fmt.Errorf("list project memberships: %w", err)
	}
	if len(memberships) == 0 {
		return grant, nil
	}
	grant.Type = domain.AccessProjectGuest
	for _, m := range memberships {
		grant.ProjectIDs[m.ProjectID] = struct{}{}
		grant.RoleByProject[m.ProjectID] = m.Role
	}
	return grant, nil
}

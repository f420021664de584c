package services

import (
	"context"
	"fmt"
	"strings"
	"time"

	"calltimes/internal/domain"
)

type projectService struct {
	projectRepo    domain.ProjectRepository
	memberRepo     domain.ProjectMemberRepository
	resolver       domain.AccessResolver
	authorizer     domain.Authorizer
	contextTimeout time.Duration
}

// NewProjectService creates the project service.
func NewProjectService(projectRepo domain.ProjectRepository, memberRepo domain.ProjectMemberRepository, resolver domain.AccessResolver, authorizer domain.Authorizer, timeout time.Duration) domain.ProjectService {
	return &projectService{
		projectRepo:    projectRepo,
		memberRepo:     memberRepo,
		resolver:       resolver,
		authorizer:     authorizer,
		contextTimeout: timeout,
	}
}

// Create makes a new project under the actor's organization. Only
// organization members create projects; guests never do.
func (s *projectService) Create(ctx context.Context, actorID, name, description string) (*domain.Project, error) {
	ctx, cancel := context.WithTimeout(ctx, s.contextTimeout)
	defer cancel()

	name = strings.TrimSpace(name)
	if name == "" {
		return nil, domain.ErrInvalidInput
	}
	grant, err := s.resolver.Resolve(ctx, actorID)
	if err != nil {
		return nil, fmt.Errorf("resolve access: %w", err)
	}
	if grant.Type != domain.AccessOrgMember {
		return nil, domain.ErrPermissionDenied
	}

	now := time.Now()
	project := domain.NewProject(grant.OrganizationID, name, description, now, now)
	if err := s.projectRepo.Create(ctx, project); err != nil {
		return nil, fmt.Errorf("create project: %w", err)
	}
	return project, nil
}

// ListAccessible returns the projects the identity can see, derived from
// its AccessGrant: all org projects for members, invited projects for
// guests.
func (s *projectService) ListAccessible(ctx context.Context, identityID string) ([]*domain.Project, error) {
	ctx, cancel := context.WithTimeout(ctx, s.contextTimeout)
	defer cancel()

	grant, err := s.resolver.Resolve(ctx, identityID)
	if err != nil {
		return nil, fmt.Errorf("resolve access: %w", err)
	}
	ids := make([]string, 0, len(grant.ProjectIDs))
	for id := range grant.ProjectIDs {
		ids = append(ids, id)
	}
	projects, err := s.projectRepo.ListByIDs(ctx, ids)
	if err != nil {
		return nil, fmt.Errorf("list projects: %w", err)
	}
	return projects, nil
}

func (s *projectService) ListMembers(ctx context.Context, actorID, projectID string) ([]*domain.ProjectMember, error) {
	ctx, cancel := context.WithTimeout(ctx, s.contextTimeout)
	defer cancel()

	decision, err := s.authorizer.Authorize(ctx, actorID, projectID, domain.OpView, nil)
	if err != nil {
		return nil, fmt.Errorf("authorize list members: %w", err)
	}
	if !decision.Allowed {
		return nil, domain.ErrForbidden
	}
	members, err := s.memberRepo.ListByProjectID(ctx, projectID)
	if err != nil {
		return nil, fmt.Errorf("list members: %w", err)
	}
	return members, nil
}

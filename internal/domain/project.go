package domain

import (
	"context"
	"errors"
	"time"
)

// Sentinel errors shared across project and content operations.
var (
	ErrNotFound     = errors.New("not found")
	ErrForbidden    = errors.New("forbidden")
	ErrInvalidInput = errors.New("invalid input")
)

// Project is a production/shoot workspace holding files, folders, and
// documents. Access to it is governed by organization membership or
// accepted invitations, never by the project record itself.
// swagger:model Project
type Project struct {
	ID             string    `json:"id"`
	OrganizationID string    `json:"organization_id"`
	Name           string    `json:"name"`
	Description    string    `json:"description"`
	CreatedAt      time.Time `json:"created_at"`
	UpdatedAt      time.Time `json:"updated_at"`
}

// NewProject returns a new Project. ID is set by the repository on create.
func NewProject(organizationID, name, description string, createdAt, updatedAt time.Time) *Project {
	return &Project{
		OrganizationID: organizationID,
		Name:           name,
		Description:    description,
		CreatedAt:      createdAt,
		UpdatedAt:      updatedAt,
	}
}

// ProjectRepository defines the interface for project storage.
type ProjectRepository interface {
	Create(ctx context.Context, p *Project) error
	GetByID(ctx context.Context, id string) (*Project, error)
	ListByOrganizationID(ctx context.Context, organizationID string) ([]*Project, error)
	ListByIDs(ctx context.Context, ids []string) ([]*Project, error)
}

// ProjectService exposes project creation and the accessible-project
// listing derived from an identity's AccessGrant.
type ProjectService interface {
	Create(ctx context.Context, actorID, name, description string) (*Project, error)
	ListAccessible(ctx context.Context, identityID string) ([]*Project, error)
	ListMembers(ctx context.Context, actorID, projectID string) ([]*ProjectMember, error)
}

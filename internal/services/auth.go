package services

import (
	"context"
	"errors"
	"fmt"
	"strings"
	"time"

	"calltimes/internal/domain"
)

type authService struct {
	identityRepo domain.IdentityRepository
	orgRepo      domain.OrganizationRepository
	hasher       domain.PasswordHasher
	tokenIssuer  domain.TokenIssuer
	tokenExpiry  time.Duration
}

// NewAuthService creates signup/login for organization members.
func NewAuthService(identityRepo domain.IdentityRepository, orgRepo domain.OrganizationRepository, hasher domain.PasswordHasher, tokenIssuer domain.TokenIssuer, tokenExpiry time.Duration) domain.AuthService {
	return &authService{
		identityRepo: identityRepo,
		orgRepo:      orgRepo,
		hasher:       hasher,
		tokenIssuer:  tokenIssuer,
		tokenExpiry:  tokenExpiry,
	}
}

// SignUp creates an interactive identity plus its organization and owner
// membership. Each identity belongs to exactly one organization.
func (s *authService) SignUp(ctx context.Context, email, password, name, orgName string) (*domain.Identity, error) {
	email = strings.TrimSpace(strings.ToLower(email))
	if !emailRegexp.MatchString(email) {
		return nil, fmt.Errorf("invalid email format")
	}
	if len(password) < 8 {
		return nil, fmt.Errorf("password must be at least 8 characters")
	}
	orgName = strings.TrimSpace(orgName)
	if orgName == "" {
		orgName = name
	}

	salt, err := s.hasher.GenerateSalt()
	if err != nil {
		return nil, fmt.Errorf("generate salt: %w", err)
	}
	hash, err := s.hasher.Hash(salt, password)
	if err != nil {
		return nil, fmt.Errorf("hash password: %w", err)
	}

	now := time.Now()
	identity := domain.NewIdentity(email, strings.TrimSpace(name), domain.IdentityMember, now, now)
	identity.PasswordHash = hash
	identity.Salt = salt
	if err := s.identityRepo.Create(ctx, identity); err != nil {
		if errors.Is(err, domain.ErrDuplicateEmail) {
			return nil, domain.ErrDuplicateEmail
		}
		return nil, fmt.Errorf("create identity: %w", err)
	}

	org := &domain.Organization{Name: orgName, CreatedAt: now}
	if err := s.orgRepo.Create(ctx, org); err != nil {
		return nil, fmt.Errorf("create organization: %w", err)
	}
	member := &domain.OrganizationMember{
		IdentityID:     identity.ID,
		OrganizationID: org.ID,
		Role:           domain.OrgRoleOwner,
	}
	if err := s.orgRepo.AddMember(ctx, member); err != nil {
		return nil, fmt.Errorf("add organization member: %w", err)
	}
	return identity, nil
}

func (s *authService) Login(ctx context.Context, email, password string) (string, *domain.Identity, error) {
	email = strings.TrimSpace(strings.ToLower(email))
	identity, err := s.identityRepo.GetByEmail(ctx, email)
	if err != nil {
		if errors.Is(err, domain.ErrIdentityNotFound) {
			return "", nil, fmt.Errorf("invalid credentials")
		}
		return "", nil, fmt.Errorf("get identity: %w", err)
	}
	// Guests are non-interactive; they only ever authenticate through an
	// accepted invitation.
	if identity.Kind != domain.IdentityMember || identity.PasswordHash == "" {
		return "", nil, fmt.Errorf("invalid credentials")
	}
	if err := s.hasher.Compare(identity.PasswordHash, identity.Salt, password); err != nil {
		return "", nil, fmt.Errorf("invalid credentials")
	}
	token, err := s.tokenIssuer.Issue(identity.ID, identity.Email, s.tokenExpiry)
	if err != nil {
		return "", nil, fmt.Errorf("sign token: %w", err)
	}
	return token, identity, nil
}

func (s *authService) GetByID(ctx context.Context, id string) (*domain.Identity, error) {
	identity, err := s.identityRepo.GetByID(ctx, id)
	if err != nil {
		if errors.Is(err, domain.ErrIdentityNotFound) {
			return nil, domain.ErrIdentityNotFound
		}
		return nil, fmt.Errorf("get identity: %w", err)
	}
	return identity, nil
}

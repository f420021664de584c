package services

import (
	"context"
	"crypto/rand"
	"encoding/hex"
	"errors"
	"fmt"
	"log/slog"
	"regexp"
	"strings"
	"time"

	"calltimes/internal/domain"
)

var emailRegexp = regexp.MustCompile(`^[a-zA-Z0-9._%+-]+@[a-zA-Z0-9.-]+\.[a-zA-Z]{2,}$`)

// invitationTokenBytes gives 128 bits of entropy per token.
const invitationTokenBytes = 16

type invitationService struct {
	invitationRepo domain.InvitationRepository
	memberRepo     domain.ProjectMemberRepository
	identityRepo   domain.IdentityRepository
	projectRepo    domain.ProjectRepository
	provisioner    domain.GuestProvisioner
	authorizer     domain.Authorizer
	emailService   domain.EmailService
	appOrigin      string
	logger         *slog.Logger
	contextTimeout time.Duration
}

// NewInvitationService creates the invitation lifecycle manager. It is the
// only writer of invitation state after creation.
func NewInvitationService(
	invitationRepo domain.InvitationRepository,
	memberRepo domain.ProjectMemberRepository,
	identityRepo domain.IdentityRepository,
	projectRepo domain.ProjectRepository,
	provisioner domain.GuestProvisioner,
	authorizer domain.Authorizer,
	emailService domain.EmailService,
	appOrigin string,
	logger *slog.Logger,
	timeout time.Duration,
) domain.InvitationService {
	return &invitationService{
		invitationRepo: invitationRepo,
		memberRepo:     memberRepo,
		identityRepo:   identityRepo,
		projectRepo:    projectRepo,
		provisioner:    provisioner,
		authorizer:     authorizer,
		emailService:   emailService,
		appOrigin:      strings.TrimSuffix(appOrigin, "/"),
		logger:         logger,
		contextTimeout: timeout,
	}
}

func (s *invitationService) Create(ctx context.Context, actorID, projectID, email string, role domain.Role) (*domain.Invitation, error) {
	ctx, cancel := context.WithTimeout(ctx, s.contextTimeout)
	defer cancel()

	email = strings.TrimSpace(strings.ToLower(email))
	if !emailRegexp.MatchString(email) {
		return nil, domain.ErrInvalidInput
	}
	if !domain.ValidRole(role) {
		return nil, domain.ErrInvalidInput
	}

	decision, err := s.authorizer.Authorize(ctx, actorID, projectID, domain.OpInviteOthers, nil)
	if err != nil {
		return nil, fmt.Errorf("authorize invite: %w", err)
	}
	if !decision.Allowed {
		return nil, domain.ErrPermissionDenied
	}

	pending, err := s.invitationRepo.HasPending(ctx, projectID, email)
	if err != nil {
		return nil, fmt.Errorf("check pending invitation: %w", err)
	}
	if pending {
		return nil, domain.ErrDuplicateInvitation
	}
	if _, err := s.memberRepo.GetByProjectAndEmail(ctx, projectID, email); err == nil {
		return nil, domain.ErrDuplicateInvitation
	} else if !errors.Is(err, domain.ErrNotFound) {
		return nil, fmt.Errorf("check existing membership: %w", err)
	}

	token, err := generateInvitationToken()
	if err != nil {
		return nil, fmt.Errorf("generate token: %w", err)
	}

	now := time.Now()
	inv := &domain.Invitation{
		ProjectID: projectID,
		Email:     email,
		Role:      role,
		Token:     token,
		Status:    domain.InvitationPending,
		InvitedBy: actorID,
		InvitedAt: now,
		ExpiresAt: now.Add(domain.InvitationTTL),
	}
	// The unique pending index backstops the check above under concurrent
	// invites to the same email.
	if err := s.invitationRepo.Create(ctx, inv); err != nil {
		if errors.Is(err, domain.ErrDuplicateInvitation) {
			return nil, domain.ErrDuplicateInvitation
		}
		return nil, fmt.Errorf("create invitation: %w", err)
	}

	s.dispatchInvitationEmail(ctx, inv)
	return inv, nil
}

// dispatchInvitationEmail sends the invitation email in the background. The
// invitation row is the source of truth; a dispatch failure is logged and
// never rolls back creation.
func (s *invitationService) dispatchInvitationEmail(ctx context.Context, inv *domain.Invitation) {
	inviterName := "A project owner"
	if inviter, err := s.identityRepo.GetByID(ctx, inv.InvitedBy); err == nil && inviter.Name != "" {
		inviterName = inviter.Name
	}
	projectName := ""
	projectDescription := ""
	if project, err := s.projectRepo.GetByID(ctx, inv.ProjectID); err == nil {
		projectName = project.Name
		projectDescription = project.Description
	}
	data := &domain.InvitationEmailData{
		Email:              inv.Email,
		InviterName:        inviterName,
		ProjectName:        projectName,
		ProjectDescription: projectDescription,
		RoleLabel:          string(inv.Role),
		AcceptURL:          fmt.Sprintf("%s/invite/%s", s.appOrigin, inv.Token),
		ExpiresInDays:      int(domain.InvitationTTL.Hours() / 24),
	}

	go func() {
		sendCtx, cancel := context.WithTimeout(context.Background(), s.contextTimeout)
		defer cancel()
		if err := s.emailService.SendInvitation(sendCtx, data); err != nil {
			s.logger.Error("invitation email dispatch failed",
				"invitation_id", inv.ID,
				"email", inv.Email,
				"err", err,
			)
		}
	}()
}

func (s *invitationService) ValidateToken(ctx context.Context, token string) (*domain.Invitation, error) {
	ctx, cancel := context.WithTimeout(ctx, s.contextTimeout)
	defer cancel()

	inv, err := s.invitationRepo.GetByToken(ctx, token)
	if err != nil {
		if errors.Is(err, domain.ErrInvitationNotFound) {
			return nil, domain.ErrInvitationNotFound
		}
		return nil, fmt.Errorf("get invitation: %w", err)
	}
	switch {
	case inv.Status == domain.InvitationRevoked:
		return nil, domain.ErrInvitationRevoked
	case inv.Expired(time.Now()):
		return nil, domain.ErrInvitationExpired
	}
	// Accepted invitations validate successfully so a second visit to an
	// already-used link renders the post-acceptance screen, not an error.
	return inv, nil
}

func (s *invitationService) Accept(ctx context.Context, token, callerIdentityID, displayName string) (*domain.Invitation, *domain.ProjectMember, error) {
	ctx, cancel := context.WithTimeout(ctx, s.contextTimeout)
	defer cancel()

	inv, err := s.ValidateToken(ctx, token)
	if err != nil {
		return nil, nil, err
	}
	if inv.Status == domain.InvitationAccepted {
		return s.acceptedResult(ctx, inv)
	}

	identityID, err := s.resolveAcceptor(ctx, inv, callerIdentityID, displayName)
	if err != nil {
		return nil, nil, err
	}

	now := time.Now()
	won, err := s.invitationRepo.Accept(ctx, token, identityID, now)
	if err != nil {
		return nil, nil, fmt.Errorf("accept invitation: %w", err)
	}
	if !won {
		// A concurrent accept got there first; surface its result so a
		// double-clicked link never looks like a failure.
		current, err := s.invitationRepo.GetByToken(ctx, token)
		if err != nil {
			return nil, nil, fmt.Errorf("reread invitation: %w", err)
		}
		if current.Status == domain.InvitationRevoked {
			return nil, nil, domain.ErrInvitationRevoked
		}
		return s.acceptedResult(ctx, current)
	}

	member := &domain.ProjectMember{
		ProjectID:    inv.ProjectID,
		IdentityID:   identityID,
		Email:        inv.Email,
		Role:         inv.Role,
		InvitationID: inv.ID,
		JoinedAt:     now,
	}
	if err := s.memberRepo.Create(ctx, member); err != nil && !errors.Is(err, domain.ErrAlreadyMember) {
		return nil, nil, fmt.Errorf("create membership: %w", err)
	}

	inv.Status = domain.InvitationAccepted
	inv.AcceptedAt = &now
	inv.AcceptedBy = identityID
	return inv, member, nil
}

// resolveAcceptor determines the identity the acceptance attaches to. A
// caller with a session uses it; a known email attaches to that account;
// editor invitations without either provision a guest identity first, so a
// provisioning failure aborts the accept while the invitation stays pending.
func (s *invitationService) resolveAcceptor(ctx context.Context, inv *domain.Invitation, callerIdentityID, displayName string) (string, error) {
	if callerIdentityID != "" {
		return callerIdentityID, nil
	}
	existing, err := s.identityRepo.GetByEmail(ctx, inv.Email)
	if err == nil {
		return existing.ID, nil
	}
	if !errors.Is(err, domain.ErrIdentityNotFound) {
		return "", fmt.Errorf("lookup identity: %w", err)
	}
	if inv.Role != domain.RoleEditor {
		// Only editor invitations mint guest identities; other roles need
		// an account to attribute access to.
		return "", domain.ErrInvalidInput
	}
	identityID, err := s.provisioner.Provision(ctx, inv.Token, inv.Email, displayName)
	if err != nil {
		return "", fmt.Errorf("%w: %v", domain.ErrProvisioningFailed, err)
	}
	return identityID, nil
}

func (s *invitationService) acceptedResult(ctx context.Context, inv *domain.Invitation) (*domain.Invitation, *domain.ProjectMember, error) {
	member, err := s.memberRepo.GetByProjectAndEmail(ctx, inv.ProjectID, inv.Email)
	if err != nil {
		if errors.Is(err, domain.ErrNotFound) {
			// The winner committed the CAS but its membership insert has not
			// landed yet. The invitation carries everything the membership is
			// derived from, so report that.
			joinedAt := inv.InvitedAt
			if inv.AcceptedAt != nil {
				joinedAt = *inv.AcceptedAt
			}
			return inv, &domain.ProjectMember{
				ProjectID:    inv.ProjectID,
				IdentityID:   inv.AcceptedBy,
				Email:        inv.Email,
				Role:         inv.Role,
				InvitationID: inv.ID,
				JoinedAt:     joinedAt,
			}, nil
		}
		return nil, nil, fmt.Errorf("get membership: %w", err)
	}
	return inv, member, nil
}

func (s *invitationService) Revoke(ctx context.Context, actorID, invitationID string) error {
	ctx, cancel := context.WithTimeout(ctx, s.contextTimeout)
	defer cancel()

	inv, err := s.invitationRepo.GetByID(ctx, invitationID)
	if err != nil {
		if errors.Is(err, domain.ErrInvitationNotFound) {
			return domain.ErrInvitationNotFound
		}
		return fmt.Errorf("get invitation: %w", err)
	}

	decision, err := s.authorizer.Authorize(ctx, actorID, inv.ProjectID, domain.OpInviteOthers, nil)
	if err != nil {
		return fmt.Errorf("authorize revoke: %w", err)
	}
	if !decision.Allowed {
		return domain.ErrPermissionDenied
	}

	prev, err := s.invitationRepo.Revoke(ctx, invitationID)
	if err != nil {
		return fmt.Errorf("revoke invitation: %w", err)
	}
	if prev == domain.InvitationAccepted {
		// Cut off the derived membership; takes effect on the identity's
		// next authorization check.
		if err := s.memberRepo.DeleteByInvitationID(ctx, invitationID); err != nil {
			return fmt.Errorf("remove membership: %w", err)
		}
	}
	return nil
}

func (s *invitationService) ListByProject(ctx context.Context, actorID, projectID string, params domain.PaginationParams) ([]*domain.Invitation, int, error) {
	ctx, cancel := context.WithTimeout(ctx, s.contextTimeout)
	defer cancel()

	decision, err := s.authorizer.Authorize(ctx, actorID, projectID, domain.OpInviteOthers, nil)
	if err != nil {
		return nil, 0, fmt.Errorf("authorize list: %w", err)
	}
	if !decision.Allowed {
		return nil, 0, domain.ErrPermissionDenied
	}
	invs, total, err := s.invitationRepo.ListByProjectID(ctx, projectID, params)
	if err != nil {
		return nil, 0, fmt.Errorf("list invitations: %w", err)
	}
	return invs, total, nil
}

func (s *invitationService) Resend(ctx context.Context, actorID, invitationID string) error {
	ctx, cancel := context.WithTimeout(ctx, s.contextTimeout)
	defer cancel()

	inv, err := s.invitationRepo.GetByID(ctx, invitationID)
	if err != nil {
		if errors.Is(err, domain.ErrInvitationNotFound) {
			return domain.ErrInvitationNotFound
		}
		return fmt.Errorf("get invitation: %w", err)
	}

	decision, err := s.authorizer.Authorize(ctx, actorID, inv.ProjectID, domain.OpInviteOthers, nil)
	if err != nil {
		return fmt.Errorf("authorize resend: %w", err)
	}
	if !decision.Allowed {
		return domain.ErrPermissionDenied
	}
	switch {
	case inv.Status == domain.InvitationRevoked:
		return domain.ErrInvitationRevoked
	case inv.Status == domain.InvitationAccepted:
		return domain.ErrInvalidInput
	case inv.Expired(time.Now()):
		return domain.ErrInvitationExpired
	}

	s.dispatchInvitationEmail(ctx, inv)
	return nil
}

func generateInvitationToken() (string, error) {
	b := make([]byte, invitationTokenBytes)
	if _, err := rand.Read(b); err != nil {
		return "", err
	}
	return hex.EncodeToString(b), nil
}

package services

import (
	"context"
	"errors"
	"fmt"
	"strings"
	"time"

	"calltimes/internal/domain"
)

type guestProvisioner struct {
	identityRepo domain.IdentityRepository
	guestRepo    domain.GuestIdentityRepository
}

// NewGuestProvisioner creates the provisioner that mints non-interactive
// guest identities for accepted editor invitations.
func NewGuestProvisioner(identityRepo domain.IdentityRepository, guestRepo domain.GuestIdentityRepository) domain.GuestProvisioner {
	return &guestProvisioner{
		identityRepo: identityRepo,
		guestRepo:    guestRepo,
	}
}

// Provision returns the identity id minted for the invitation token,
// creating it on first call. The mint ledger's unique token column makes
// retries and concurrent calls converge on one identity: if this call's
// freshly created identity loses the reservation race, the winner's id is
// returned instead and the orphaned identity row is simply never referenced.
func (p *guestProvisioner) Provision(ctx context.Context, token, email, displayName string) (string, error) {
	if existingID, err := p.guestRepo.GetByToken(ctx, token); err == nil {
		return existingID, nil
	} else if !errors.Is(err, domain.ErrNotFound) {
		return "", fmt.Errorf("lookup minted identity: %w", err)
	}

	name := strings.TrimSpace(displayName)
	if name == "" {
		name = email
	}
	now := time.Now()
	identity := domain.NewIdentity(email, name, domain.IdentityGuest, now, now)
	if err := p.identityRepo.Create(ctx, identity); err != nil {
		if errors.Is(err, domain.ErrDuplicateEmail) {
			// An account appeared for this email between lookup and mint;
			// attach to it rather than minting a guest.
			existing, err := p.identityRepo.GetByEmail(ctx, email)
			if err != nil {
				return "", fmt.Errorf("get existing identity: %w", err)
			}
			return p.guestRepo.Reserve(ctx, token, existing.ID)
		}
		return "", fmt.Errorf("create guest identity: %w", err)
	}

	identityID, err := p.guestRepo.Reserve(ctx, token, identity.ID)
	if err != nil {
		return "", fmt.Errorf("reserve guest identity: %w", err)
	}
	return identityID, nil
}

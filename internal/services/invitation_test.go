package services

import (
	"context"
	"errors"
	"fmt"
	"io"
	"log/slog"
	"sync"
	"testing"
	"time"

	"calltimes/internal/domain"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

// testLogger discards output so tests don't assert on logs.
var testLogger = slog.New(slog.NewTextHandler(io.Discard, &slog.HandlerOptions{Level: slog.LevelError}))

// fakeInvitationRepo implements domain.InvitationRepository for tests.
type fakeInvitationRepo struct {
	mu      sync.Mutex
	byToken map[string]*domain.Invitation
	nextID  int
}

func newFakeInvitationRepo() *fakeInvitationRepo {
	return &fakeInvitationRepo{byToken: make(map[string]*domain.Invitation)}
}

func (f *fakeInvitationRepo) Create(ctx context.Context, inv *domain.Invitation) error {
	f.mu.Lock()
	defer f.mu.Unlock()
	for _, existing := range f.byToken {
		if existing.ProjectID == inv.ProjectID && existing.Email == inv.Email && existing.Status == domain.InvitationPending {
			return domain.ErrDuplicateInvitation
		}
	}
	f.nextID++
	inv.ID = fmt.Sprintf("inv-%d", f.nextID)
	cp := *inv
	f.byToken[inv.Token] = &cp
	return nil
}

func (f *fakeInvitationRepo) GetByToken(ctx context.Context, token string) (*domain.Invitation, error) {
	f.mu.Lock()
	defer f.mu.Unlock()
	if inv, ok := f.byToken[token]; ok {
		cp := *inv
		return &cp, nil
	}
	return nil, domain.ErrInvitationNotFound
}

func (f *fakeInvitationRepo) GetByID(ctx context.Context, id string) (*domain.Invitation, error) {
	f.mu.Lock()
	defer f.mu.Unlock()
	for _, inv := range f.byToken {
		if inv.ID == id {
			cp := *inv
			return &cp, nil
		}
	}
	return nil, domain.ErrInvitationNotFound
}

func (f *fakeInvitationRepo) Accept(ctx context.Context, token, acceptedBy string, acceptedAt time.Time) (bool, error) {
	f.mu.Lock()
	defer f.mu.Unlock()
	inv, ok := f.byToken[token]
	if !ok || inv.Status != domain.InvitationPending {
		return false, nil
	}
	inv.Status = domain.InvitationAccepted
	at := acceptedAt
	inv.AcceptedAt = &at
	inv.AcceptedBy = acceptedBy
	return true, nil
}

func (f *fakeInvitationRepo) Revoke(ctx context.Context, id string) (domain.InvitationStatus, error) {
	f.mu.Lock()
	defer f.mu.Unlock()
	for _, inv := range f.byToken {
		if inv.ID == id {
			prev := inv.Status
			inv.Status = domain.InvitationRevoked
			return prev, nil
		}
	}
	return "", domain.ErrInvitationNotFound
}

func (f *fakeInvitationRepo) ListByProjectID(ctx context.Context, projectID string, params domain.PaginationParams) ([]*domain.Invitation, int, error) {
	f.mu.Lock()
	defer f.mu.Unlock()
	var out []*domain.Invitation
	for _, inv := range f.byToken {
		if inv.ProjectID == projectID {
			cp := *inv
			out = append(out, &cp)
		}
	}
	return out, len(out), nil
}

func (f *fakeInvitationRepo) HasPending(ctx context.Context, projectID, email string) (bool, error) {
	f.mu.Lock()
	defer f.mu.Unlock()
	for _, inv := range f.byToken {
		if inv.ProjectID == projectID && inv.Email == email && inv.Status == domain.InvitationPending {
			return true, nil
		}
	}
	return false, nil
}

// fakeProjectMemberRepo implements domain.ProjectMemberRepository for tests.
type fakeProjectMemberRepo struct {
	mu      sync.Mutex
	members []*domain.ProjectMember
}

func (f *fakeProjectMemberRepo) Create(ctx context.Context, m *domain.ProjectMember) error {
	f.mu.Lock()
	defer f.mu.Unlock()
	for _, existing := range f.members {
		if existing.ProjectID == m.ProjectID && existing.IdentityID == m.IdentityID {
			return domain.ErrAlreadyMember
		}
	}
	cp := *m
	f.members = append(f.members, &cp)
	return nil
}

func (f *fakeProjectMemberRepo) ListByIdentityID(ctx context.Context, identityID string) ([]*domain.ProjectMember, error) {
	f.mu.Lock()
	defer f.mu.Unlock()
	var out []*domain.ProjectMember
	for _, m := range f.members {
		if m.IdentityID == identityID {
			out = append(out, m)
		}
	}
	return out, nil
}

func (f *fakeProjectMemberRepo) ListByProjectID(ctx context.Context, projectID string) ([]*domain.ProjectMember, error) {
	f.mu.Lock()
	defer f.mu.Unlock()
	var out []*domain.ProjectMember
	for _, m := range f.members {
		if m.ProjectID == projectID {
			out = append(out, m)
		}
	}
	return out, nil
}

func (f *fakeProjectMemberRepo) GetByProjectAndEmail(ctx context.Context, projectID, email string) (*domain.ProjectMember, error) {
	f.mu.Lock()
	defer f.mu.Unlock()
	for _, m := range f.members {
		if m.ProjectID == projectID && m.Email == email {
			cp := *m
			return &cp, nil
		}
	}
	return nil, domain.ErrNotFound
}

func (f *fakeProjectMemberRepo) DeleteByInvitationID(ctx context.Context, invitationID string) error {
	f.mu.Lock()
	defer f.mu.Unlock()
	kept := f.members[:0]
	for _, m := range f.members {
		if m.InvitationID != invitationID {
			kept = append(kept, m)
		}
	}
	f.members = kept
	return nil
}

// fakeIdentityRepo implements domain.IdentityRepository for tests.
type fakeIdentityRepo struct {
	mu      sync.Mutex
	byID    map[string]*domain.Identity
	byEmail map[string]*domain.Identity
	nextID  int
}

func newFakeIdentityRepo() *fakeIdentityRepo {
	return &fakeIdentityRepo{
		byID:    make(map[string]*domain.Identity),
		byEmail: make(map[string]*domain.Identity),
	}
}

func (f *fakeIdentityRepo) Create(ctx context.Context, id *domain.Identity) error {
	f.mu.Lock()
	defer f.mu.Unlock()
	if _, ok := f.byEmail[id.Email]; ok {
		return domain.ErrDuplicateEmail
	}
	f.nextID++
	id.ID = fmt.Sprintf("identity-%d", f.nextID)
	f.byID[id.ID] = id
	f.byEmail[id.Email] = id
	return nil
}

func (f *fakeIdentityRepo) GetByID(ctx context.Context, id string) (*domain.Identity, error) {
	f.mu.Lock()
	defer f.mu.Unlock()
	if identity, ok := f.byID[id]; ok {
		return identity, nil
	}
	return nil, domain.ErrIdentityNotFound
}

func (f *fakeIdentityRepo) GetByEmail(ctx context.Context, email string) (*domain.Identity, error) {
	f.mu.Lock()
	defer f.mu.Unlock()
	if identity, ok := f.byEmail[email]; ok {
		return identity, nil
	}
	return nil, domain.ErrIdentityNotFound
}

// fakeProjectRepo implements domain.ProjectRepository for tests.
type fakeProjectRepo struct {
	byID map[string]*domain.Project
}

func newFakeProjectRepo() *fakeProjectRepo {
	return &fakeProjectRepo{byID: make(map[string]*domain.Project)}
}

func (f *fakeProjectRepo) Create(ctx context.Context, p *domain.Project) error {
	p.ID = fmt.Sprintf("project-%d", len(f.byID)+1)
	f.byID[p.ID] = p
	return nil
}

func (f *fakeProjectRepo) GetByID(ctx context.Context, id string) (*domain.Project, error) {
	if p, ok := f.byID[id]; ok {
		return p, nil
	}
	return nil, domain.ErrNotFound
}

func (f *fakeProjectRepo) ListByOrganizationID(ctx context.Context, orgID string) ([]*domain.Project, error) {
	var out []*domain.Project
	for _, p := range f.byID {
		if p.OrganizationID == orgID {
			out = append(out, p)
		}
	}
	return out, nil
}

func (f *fakeProjectRepo) ListByIDs(ctx context.Context, ids []string) ([]*domain.Project, error) {
	var out []*domain.Project
	for _, id := range ids {
		if p, ok := f.byID[id]; ok {
			out = append(out, p)
		}
	}
	return out, nil
}

// fakeAuthorizer implements domain.Authorizer with a per-identity grant map.
type fakeAuthorizer struct {
	roleByIdentity map[string]domain.Role
	projectID      string
}

func (f *fakeAuthorizer) Authorize(ctx context.Context, identityID, projectID string, op domain.Operation, target *domain.OwnershipTarget) (domain.Decision, error) {
	role, ok := f.roleByIdentity[identityID]
	if !ok || projectID != f.projectID {
		return domain.Deny(domain.DenyNoAccess), nil
	}
	switch op {
	case domain.OpInviteOthers:
		if role == domain.RoleOwner {
			return domain.Allow(role), nil
		}
		return domain.Deny(domain.DenyRoleForbids), nil
	default:
		return domain.Allow(role), nil
	}
}

// fakeEmailService records sends and signals on a channel.
type fakeEmailService struct {
	mu    sync.Mutex
	sent  []*domain.InvitationEmailData
	err   error
	sends chan struct{}
}

func newFakeEmailService() *fakeEmailService {
	return &fakeEmailService{sends: make(chan struct{}, 16)}
}

func (f *fakeEmailService) SendInvitation(ctx context.Context, data *domain.InvitationEmailData) error {
	f.mu.Lock()
	f.sent = append(f.sent, data)
	f.mu.Unlock()
	f.sends <- struct{}{}
	return f.err
}

func (f *fakeEmailService) lastSent() *domain.InvitationEmailData {
	f.mu.Lock()
	defer f.mu.Unlock()
	if len(f.sent) == 0 {
		return nil
	}
	return f.sent[len(f.sent)-1]
}

// fakeProvisioner implements domain.GuestProvisioner.
type fakeProvisioner struct {
	mu      sync.Mutex
	byToken map[string]string
	nextID  int
	err     error
}

func newFakeProvisioner() *fakeProvisioner {
	return &fakeProvisioner{byToken: make(map[string]string)}
}

func (f *fakeProvisioner) Provision(ctx context.Context, token, email, displayName string) (string, error) {
	if f.err != nil {
		return "", f.err
	}
	f.mu.Lock()
	defer f.mu.Unlock()
	if id, ok := f.byToken[token]; ok {
		return id, nil
	}
	f.nextID++
	id := fmt.Sprintf("guest-%d", f.nextID)
	f.byToken[token] = id
	return id, nil
}

type invitationFixture struct {
	invRepo     *fakeInvitationRepo
	memberRepo  *fakeProjectMemberRepo
	identities  *fakeIdentityRepo
	projects    *fakeProjectRepo
	provisioner *fakeProvisioner
	email       *fakeEmailService
	svc         domain.InvitationService
}

func newInvitationFixture(t *testing.T) *invitationFixture {
	t.Helper()
	f := &invitationFixture{
		invRepo:     newFakeInvitationRepo(),
		memberRepo:  &fakeProjectMemberRepo{},
		identities:  newFakeIdentityRepo(),
		projects:    newFakeProjectRepo(),
		provisioner: newFakeProvisioner(),
		email:       newFakeEmailService(),
	}
	f.projects.byID["p1"] = &domain.Project{ID: "p1", OrganizationID: "org-1", Name: "Night Shoot"}
	authorizer := &fakeAuthorizer{
		projectID: "p1",
		roleByIdentity: map[string]domain.Role{
			"alice": domain.RoleOwner,
			"erin":  domain.RoleEditor,
		},
	}
	f.svc = NewInvitationService(
		f.invRepo, f.memberRepo, f.identities, f.projects,
		f.provisioner, authorizer, f.email,
		"https://app.calltimes.test", testLogger, 2*time.Second,
	)
	return f
}

func waitForSend(t *testing.T, email *fakeEmailService) {
	t.Helper()
	select {
	case <-email.sends:
	case <-time.After(2 * time.Second):
		t.Fatal("invitation email was never dispatched")
	}
}

func TestInvitationService_Create(t *testing.T) {
	ctx := context.Background()

	t.Run("owner invites and email is dispatched", func(t *testing.T) {
		f := newInvitationFixture(t)
		inv, err := f.svc.Create(ctx, "alice", "p1", "B@X.com", domain.RoleEditor)
		require.NoError(t, err)
		assert.Equal(t, "b@x.com", inv.Email, "email is normalized")
		assert.Equal(t, domain.InvitationPending, inv.Status)
		assert.Len(t, inv.Token, 32, "token carries 128 bits of entropy as hex")
		assert.WithinDuration(t, inv.InvitedAt.Add(domain.InvitationTTL), inv.ExpiresAt, time.Second)

		waitForSend(t, f.email)
		sent := f.email.lastSent()
		require.NotNil(t, sent)
		assert.Equal(t, "b@x.com", sent.Email)
		assert.Equal(t, "Night Shoot", sent.ProjectName)
		assert.Equal(t, "https://app.calltimes.test/invite/"+inv.Token, sent.AcceptURL)
	})

	t.Run("editor cannot invite", func(t *testing.T) {
		f := newInvitationFixture(t)
		_, err := f.svc.Create(ctx, "erin", "p1", "b@x.com", domain.RoleViewer)
		require.ErrorIs(t, err, domain.ErrPermissionDenied)
	})

	t.Run("outsider cannot invite", func(t *testing.T) {
		f := newInvitationFixture(t)
		_, err := f.svc.Create(ctx, "mallory", "p1", "b@x.com", domain.RoleViewer)
		require.ErrorIs(t, err, domain.ErrPermissionDenied)
	})

	t.Run("duplicate pending invitation rejected", func(t *testing.T) {
		f := newInvitationFixture(t)
		_, err := f.svc.Create(ctx, "alice", "p1", "b@x.com", domain.RoleEditor)
		require.NoError(t, err)
		_, err = f.svc.Create(ctx, "alice", "p1", "b@x.com", domain.RoleViewer)
		require.ErrorIs(t, err, domain.ErrDuplicateInvitation)
	})

	t.Run("existing member rejected", func(t *testing.T) {
		f := newInvitationFixture(t)
		require.NoError(t, f.memberRepo.Create(ctx, &domain.ProjectMember{
			ProjectID: "p1", IdentityID: "bob", Email: "b@x.com", Role: domain.RoleViewer, InvitationID: "old",
		}))
		_, err := f.svc.Create(ctx, "alice", "p1", "b@x.com", domain.RoleEditor)
		require.ErrorIs(t, err, domain.ErrDuplicateInvitation)
	})

	t.Run("dispatch failure does not roll back creation", func(t *testing.T) {
		f := newInvitationFixture(t)
		f.email.err = errors.New("ses unavailable")
		inv, err := f.svc.Create(ctx, "alice", "p1", "b@x.com", domain.RoleEditor)
		require.NoError(t, err)
		waitForSend(t, f.email)
		got, err := f.invRepo.GetByToken(ctx, inv.Token)
		require.NoError(t, err)
		assert.Equal(t, domain.InvitationPending, got.Status)
	})

	t.Run("invalid email and role", func(t *testing.T) {
		f := newInvitationFixture(t)
		_, err := f.svc.Create(ctx, "alice", "p1", "not-an-email", domain.RoleEditor)
		require.ErrorIs(t, err, domain.ErrInvalidInput)
		_, err = f.svc.Create(ctx, "alice", "p1", "b@x.com", domain.Role("superuser"))
		require.ErrorIs(t, err, domain.ErrInvalidInput)
	})
}

func TestInvitationService_ValidateToken(t *testing.T) {
	ctx := context.Background()

	t.Run("unknown token", func(t *testing.T) {
		f := newInvitationFixture(t)
		_, err := f.svc.ValidateToken(ctx, "nope")
		require.ErrorIs(t, err, domain.ErrInvitationNotFound)
	})

	t.Run("pending past expiry reads as expired", func(t *testing.T) {
		f := newInvitationFixture(t)
		f.invRepo.byToken["tok-old"] = &domain.Invitation{
			ID: "inv-old", ProjectID: "p1", Email: "b@x.com", Role: domain.RoleViewer,
			Token: "tok-old", Status: domain.InvitationPending,
			InvitedAt: time.Now().Add(-8 * 24 * time.Hour),
			ExpiresAt: time.Now().Add(-24 * time.Hour),
		}
		_, err := f.svc.ValidateToken(ctx, "tok-old")
		require.ErrorIs(t, err, domain.ErrInvitationExpired)
	})

	t.Run("revoked is distinct from not found", func(t *testing.T) {
		f := newInvitationFixture(t)
		f.invRepo.byToken["tok-r"] = &domain.Invitation{
			ID: "inv-r", ProjectID: "p1", Token: "tok-r",
			Status: domain.InvitationRevoked, ExpiresAt: time.Now().Add(time.Hour),
		}
		_, err := f.svc.ValidateToken(ctx, "tok-r")
		require.ErrorIs(t, err, domain.ErrInvitationRevoked)
	})

	t.Run("accepted validates cleanly for page reloads", func(t *testing.T) {
		f := newInvitationFixture(t)
		now := time.Now()
		f.invRepo.byToken["tok-a"] = &domain.Invitation{
			ID: "inv-a", ProjectID: "p1", Token: "tok-a",
			Status: domain.InvitationAccepted, ExpiresAt: now.Add(-time.Hour),
			AcceptedAt: &now, AcceptedBy: "guest-1",
		}
		inv, err := f.svc.ValidateToken(ctx, "tok-a")
		require.NoError(t, err)
		assert.Equal(t, domain.InvitationAccepted, inv.Status)
	})
}

func TestInvitationService_Accept(t *testing.T) {
	ctx := context.Background()

	t.Run("editor without account gets a provisioned guest identity", func(t *testing.T) {
		f := newInvitationFixture(t)
		inv, err := f.svc.Create(ctx, "alice", "p1", "b@x.com", domain.RoleEditor)
		require.NoError(t, err)

		accepted, member, err := f.svc.Accept(ctx, inv.Token, "", "B")
		require.NoError(t, err)
		assert.Equal(t, domain.InvitationAccepted, accepted.Status)
		assert.Equal(t, "guest-1", accepted.AcceptedBy)
		require.NotNil(t, member)
		assert.Equal(t, "guest-1", member.IdentityID)
		assert.Equal(t, domain.RoleEditor, member.Role)
	})

	t.Run("viewer attaches to existing account", func(t *testing.T) {
		f := newInvitationFixture(t)
		bob := domain.NewIdentity("b@x.com", "Bob", domain.IdentityMember, time.Now(), time.Now())
		require.NoError(t, f.identities.Create(ctx, bob))

		inv, err := f.svc.Create(ctx, "alice", "p1", "b@x.com", domain.RoleViewer)
		require.NoError(t, err)
		_, member, err := f.svc.Accept(ctx, inv.Token, "", "")
		require.NoError(t, err)
		assert.Equal(t, bob.ID, member.IdentityID)
		assert.Equal(t, domain.RoleViewer, member.Role)
	})

	t.Run("viewer without account cannot accept", func(t *testing.T) {
		f := newInvitationFixture(t)
		inv, err := f.svc.Create(ctx, "alice", "p1", "b@x.com", domain.RoleViewer)
		require.NoError(t, err)
		_, _, err = f.svc.Accept(ctx, inv.Token, "", "")
		require.ErrorIs(t, err, domain.ErrInvalidInput)
	})

	t.Run("second accept is idempotent", func(t *testing.T) {
		f := newInvitationFixture(t)
		inv, err := f.svc.Create(ctx, "alice", "p1", "b@x.com", domain.RoleEditor)
		require.NoError(t, err)

		_, first, err := f.svc.Accept(ctx, inv.Token, "", "B")
		require.NoError(t, err)
		accepted, second, err := f.svc.Accept(ctx, inv.Token, "", "B")
		require.NoError(t, err)
		assert.Equal(t, domain.InvitationAccepted, accepted.Status)
		require.NotNil(t, second)
		assert.Equal(t, first.IdentityID, second.IdentityID)

		members, err := f.memberRepo.ListByProjectID(ctx, "p1")
		require.NoError(t, err)
		assert.Len(t, members, 1, "idempotent accept creates exactly one membership")
	})

	t.Run("accept observing a committed win without its membership row", func(t *testing.T) {
		f := newInvitationFixture(t)
		inv, err := f.svc.Create(ctx, "alice", "p1", "b@x.com", domain.RoleEditor)
		require.NoError(t, err)

		// A concurrent winner can commit the status flip before its
		// membership insert lands; a reader in that window still gets the
		// winner's membership, derived from the invitation itself.
		now := time.Now()
		won, err := f.invRepo.Accept(ctx, inv.Token, "guest-9", now)
		require.NoError(t, err)
		require.True(t, won)

		accepted, member, err := f.svc.Accept(ctx, inv.Token, "", "B")
		require.NoError(t, err)
		assert.Equal(t, domain.InvitationAccepted, accepted.Status)
		require.NotNil(t, member, "loser reports the winner's membership, not a hole")
		assert.Equal(t, "guest-9", member.IdentityID)
		assert.Equal(t, "p1", member.ProjectID)
		assert.Equal(t, domain.RoleEditor, member.Role)
		assert.Equal(t, inv.ID, member.InvitationID)
	})

	t.Run("concurrent accepts resolve to one winner", func(t *testing.T) {
		f := newInvitationFixture(t)
		inv, err := f.svc.Create(ctx, "alice", "p1", "b@x.com", domain.RoleEditor)
		require.NoError(t, err)

		const callers = 8
		var wg sync.WaitGroup
		results := make([]string, callers)
		errs := make([]error, callers)
		for i := 0; i < callers; i++ {
			wg.Add(1)
			go func(i int) {
				defer wg.Done()
				accepted, _, err := f.svc.Accept(ctx, inv.Token, "", "B")
				errs[i] = err
				if err == nil {
					results[i] = accepted.AcceptedBy
				}
			}(i)
		}
		wg.Wait()

		for i := 0; i < callers; i++ {
			require.NoError(t, errs[i], "caller %d", i)
			assert.Equal(t, results[0], results[i], "all callers observe the same accepted_by")
		}
		members, err := f.memberRepo.ListByProjectID(ctx, "p1")
		require.NoError(t, err)
		assert.Len(t, members, 1, "exactly one membership row")
	})

	t.Run("provisioning failure aborts and leaves invitation pending", func(t *testing.T) {
		f := newInvitationFixture(t)
		inv, err := f.svc.Create(ctx, "alice", "p1", "b@x.com", domain.RoleEditor)
		require.NoError(t, err)

		f.provisioner.err = errors.New("identity service down")
		_, _, err = f.svc.Accept(ctx, inv.Token, "", "B")
		require.ErrorIs(t, err, domain.ErrProvisioningFailed)

		got, err := f.invRepo.GetByToken(ctx, inv.Token)
		require.NoError(t, err)
		assert.Equal(t, domain.InvitationPending, got.Status, "safe to retry from scratch")

		f.provisioner.err = nil
		_, member, err := f.svc.Accept(ctx, inv.Token, "", "B")
		require.NoError(t, err)
		require.NotNil(t, member)
	})
}

func TestInvitationService_Revoke(t *testing.T) {
	ctx := context.Background()

	t.Run("revoking an accepted invitation cuts off membership", func(t *testing.T) {
		f := newInvitationFixture(t)
		inv, err := f.svc.Create(ctx, "alice", "p1", "b@x.com", domain.RoleEditor)
		require.NoError(t, err)
		_, member, err := f.svc.Accept(ctx, inv.Token, "", "B")
		require.NoError(t, err)

		require.NoError(t, f.svc.Revoke(ctx, "alice", inv.ID))

		memberships, err := f.memberRepo.ListByIdentityID(ctx, member.IdentityID)
		require.NoError(t, err)
		assert.Empty(t, memberships, "next access resolution sees no membership")

		_, err = f.svc.ValidateToken(ctx, inv.Token)
		require.ErrorIs(t, err, domain.ErrInvitationRevoked)
	})

	t.Run("revoking a pending invitation", func(t *testing.T) {
		f := newInvitationFixture(t)
		inv, err := f.svc.Create(ctx, "alice", "p1", "b@x.com", domain.RoleEditor)
		require.NoError(t, err)
		require.NoError(t, f.svc.Revoke(ctx, "alice", inv.ID))
		_, err = f.svc.ValidateToken(ctx, inv.Token)
		require.ErrorIs(t, err, domain.ErrInvitationRevoked)
	})

	t.Run("only owners revoke", func(t *testing.T) {
		f := newInvitationFixture(t)
		inv, err := f.svc.Create(ctx, "alice", "p1", "b@x.com", domain.RoleEditor)
		require.NoError(t, err)
		err = f.svc.Revoke(ctx, "erin", inv.ID)
		require.ErrorIs(t, err, domain.ErrPermissionDenied)
	})
}

func TestInvitationService_Resend(t *testing.T) {
	ctx := context.Background()
	f := newInvitationFixture(t)
	inv, err := f.svc.Create(ctx, "alice", "p1", "b@x.com", domain.RoleEditor)
	require.NoError(t, err)
	waitForSend(t, f.email)

	require.NoError(t, f.svc.Resend(ctx, "alice", inv.ID))
	waitForSend(t, f.email)

	require.ErrorIs(t, f.svc.Resend(ctx, "erin", inv.ID), domain.ErrPermissionDenied)
}

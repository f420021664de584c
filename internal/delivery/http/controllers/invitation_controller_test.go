package controllers

import (
	"bytes"
	"context"
	"encoding/json"
	"errors"
	"io"
	"log/slog"
	"net/http"
	"net/http/httptest"
	"testing"
	"time"

	"calltimes/internal/adapters/auth"
	"calltimes/internal/delivery/http/helpers"
	"calltimes/internal/delivery/http/middleware"
	"calltimes/internal/domain"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

var testLogger = slog.New(slog.NewTextHandler(io.Discard, &slog.HandlerOptions{Level: slog.LevelError}))

// fakeInvitationService implements domain.InvitationService for handler tests.
type fakeInvitationService struct {
	createInv    *domain.Invitation
	createErr    error
	validateInv  *domain.Invitation
	validateErr  error
	acceptInv    *domain.Invitation
	acceptMember *domain.ProjectMember
	acceptErr    error
	acceptCaller string
	revokeErr    error
	listInvs     []*domain.Invitation
	listTotal    int
	listErr      error
	resendErr    error
}

func (f *fakeInvitationService) Create(ctx context.Context, actorID, projectID, email string, role domain.Role) (*domain.Invitation, error) {
	if f.createErr != nil {
		return nil, f.createErr
	}
	return f.createInv, nil
}

func (f *fakeInvitationService) ValidateToken(ctx context.Context, token string) (*domain.Invitation, error) {
	if f.validateErr != nil {
		return nil, f.validateErr
	}
	return f.validateInv, nil
}

func (f *fakeInvitationService) Accept(ctx context.Context, token, callerIdentityID, displayName string) (*domain.Invitation, *domain.ProjectMember, error) {
	f.acceptCaller = callerIdentityID
	if f.acceptErr != nil {
		return nil, nil, f.acceptErr
	}
	return f.acceptInv, f.acceptMember, nil
}

func (f *fakeInvitationService) Revoke(ctx context.Context, actorID, invitationID string) error {
	return f.revokeErr
}

func (f *fakeInvitationService) ListByProject(ctx context.Context, actorID, projectID string, params domain.PaginationParams) ([]*domain.Invitation, int, error) {
	if f.listErr != nil {
		return nil, 0, f.listErr
	}
	return f.listInvs, f.listTotal, nil
}

func (f *fakeInvitationService) Resend(ctx context.Context, actorID, invitationID string) error {
	return f.resendErr
}

// fakeTokenIssuer mints predictable tokens for handler tests.
type fakeTokenIssuer struct {
	err error
}

func (f *fakeTokenIssuer) Issue(identityID, email string, expiry time.Duration) (string, error) {
	if f.err != nil {
		return "", f.err
	}
	return "token-for-" + identityID, nil
}

func newTestInvitationController(svc domain.InvitationService) *InvitationController {
	return NewInvitationController(testLogger, svc, &fakeTokenIssuer{}, time.Hour)
}

func decodeEnvelope(t *testing.T, rec *httptest.ResponseRecorder) helpers.APIResponse {
	t.Helper()
	var resp helpers.APIResponse
	require.NoError(t, json.NewDecoder(rec.Body).Decode(&resp))
	return resp
}

func decodeAcceptResponse(t *testing.T, resp helpers.APIResponse) AcceptInvitationResponse {
	t.Helper()
	raw, err := json.Marshal(resp.Data)
	require.NoError(t, err)
	var accept AcceptInvitationResponse
	require.NoError(t, json.Unmarshal(raw, &accept))
	return accept
}

func sampleInvitation(status domain.InvitationStatus) *domain.Invitation {
	now := time.Now()
	return &domain.Invitation{
		ID:        "inv-1",
		ProjectID: "p1",
		Email:     "b@x.com",
		Role:      domain.RoleEditor,
		Token:     "tok-1",
		Status:    status,
		InvitedBy: "alice",
		InvitedAt: now,
		ExpiresAt: now.Add(domain.InvitationTTL),
	}
}

func TestInvitationController_Create(t *testing.T) {
	tests := []struct {
		name         string
		body         string
		serviceInv   *domain.Invitation
		serviceErr   error
		wantStatus   int
		wantBodyCode string
	}{
		{
			name:       "created",
			body:       `{"email":"b@x.com","role":"editor"}`,
			serviceInv: sampleInvitation(domain.InvitationPending),
			wantStatus: http.StatusCreated,
		},
		{
			name:         "duplicate pending",
			body:         `{"email":"b@x.com","role":"editor"}`,
			serviceErr:   domain.ErrDuplicateInvitation,
			wantStatus:   http.StatusConflict,
			wantBodyCode: helpers.ErrCodeConflict,
		},
		{
			name:         "not an owner",
			body:         `{"email":"b@x.com","role":"editor"}`,
			serviceErr:   domain.ErrPermissionDenied,
			wantStatus:   http.StatusForbidden,
			wantBodyCode: helpers.ErrCodeForbidden,
		},
		{
			name:         "bad role rejected before the service",
			body:         `{"email":"b@x.com","role":"superuser"}`,
			wantStatus:   http.StatusBadRequest,
			wantBodyCode: helpers.ErrCodeBadRequest,
		},
		{
			name:         "unknown fields rejected",
			body:         `{"email":"b@x.com","role":"editor","admin":true}`,
			wantStatus:   http.StatusBadRequest,
			wantBodyCode: helpers.ErrCodeBadRequest,
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			svc := &fakeInvitationService{createInv: tt.serviceInv, createErr: tt.serviceErr}
			ctrl := newTestInvitationController(svc)

			req := httptest.NewRequest(http.MethodPost, "/projects/p1/invitations", bytes.NewBufferString(tt.body))
			req.SetPathValue("projectID", "p1")
			req = req.WithContext(middleware.SetIdentityID(req.Context(), "alice"))
			rec := httptest.NewRecorder()

			ctrl.Create(rec, req)

			assert.Equal(t, tt.wantStatus, rec.Code)
			resp := decodeEnvelope(t, rec)
			if tt.wantBodyCode != "" {
				require.NotNil(t, resp.Error)
				assert.Equal(t, tt.wantBodyCode, resp.Error.Code)
			} else {
				assert.Nil(t, resp.Error)
			}
		})
	}

	t.Run("unauthenticated", func(t *testing.T) {
		ctrl := newTestInvitationController(&fakeInvitationService{})
		req := httptest.NewRequest(http.MethodPost, "/projects/p1/invitations", bytes.NewBufferString(`{"email":"b@x.com","role":"editor"}`))
		req.SetPathValue("projectID", "p1")
		rec := httptest.NewRecorder()
		ctrl.Create(rec, req)
		assert.Equal(t, http.StatusUnauthorized, rec.Code)
	})
}

func TestInvitationController_Validate(t *testing.T) {
	tests := []struct {
		name         string
		serviceInv   *domain.Invitation
		serviceErr   error
		wantStatus   int
		wantBodyCode string
	}{
		{
			name:       "pending token",
			serviceInv: sampleInvitation(domain.InvitationPending),
			wantStatus: http.StatusOK,
		},
		{
			name:         "unknown token",
			serviceErr:   domain.ErrInvitationNotFound,
			wantStatus:   http.StatusNotFound,
			wantBodyCode: helpers.ErrCodeNotFound,
		},
		{
			name:         "expired token",
			serviceErr:   domain.ErrInvitationExpired,
			wantStatus:   http.StatusGone,
			wantBodyCode: helpers.ErrCodeInvitationExpired,
		},
		{
			name:         "revoked token",
			serviceErr:   domain.ErrInvitationRevoked,
			wantStatus:   http.StatusGone,
			wantBodyCode: helpers.ErrCodeInvitationRevoked,
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			svc := &fakeInvitationService{validateInv: tt.serviceInv, validateErr: tt.serviceErr}
			ctrl := newTestInvitationController(svc)

			req := httptest.NewRequest(http.MethodGet, "/invite/tok-1", nil)
			req.SetPathValue("token", "tok-1")
			rec := httptest.NewRecorder()

			ctrl.Validate(rec, req)

			assert.Equal(t, tt.wantStatus, rec.Code)
			resp := decodeEnvelope(t, rec)
			if tt.wantBodyCode != "" {
				require.NotNil(t, resp.Error)
				assert.Equal(t, tt.wantBodyCode, resp.Error.Code)
			}
		})
	}
}

func TestInvitationController_Accept(t *testing.T) {
	t.Run("anonymous accept returns a session token for the minted guest", func(t *testing.T) {
		svc := &fakeInvitationService{
			acceptInv:    sampleInvitation(domain.InvitationAccepted),
			acceptMember: &domain.ProjectMember{ProjectID: "p1", IdentityID: "guest-1", Role: domain.RoleEditor},
		}
		codec := auth.NewJWTCodec("handler-test-secret")
		ctrl := NewInvitationController(testLogger, svc, codec, time.Hour)

		req := httptest.NewRequest(http.MethodPost, "/invite/tok-1/accept", bytes.NewBufferString(`{"display_name":"B"}`))
		req.SetPathValue("token", "tok-1")
		rec := httptest.NewRecorder()

		ctrl.Accept(rec, req)

		assert.Equal(t, http.StatusOK, rec.Code)
		assert.Empty(t, svc.acceptCaller, "anonymous caller passes no identity")
		resp := decodeEnvelope(t, rec)
		require.Nil(t, resp.Error)

		accept := decodeAcceptResponse(t, resp)
		require.NotEmpty(t, accept.Token, "anonymous acceptor needs a token to authenticate follow-up requests")
		assert.Equal(t, "Bearer", accept.TokenType)
		identityID, err := codec.Verify(accept.Token)
		require.NoError(t, err)
		assert.Equal(t, "guest-1", identityID)
	})

	t.Run("signed-in accept passes the caller identity and gets no token", func(t *testing.T) {
		svc := &fakeInvitationService{
			acceptInv:    sampleInvitation(domain.InvitationAccepted),
			acceptMember: &domain.ProjectMember{ProjectID: "p1", IdentityID: "bob", Role: domain.RoleEditor},
		}
		ctrl := newTestInvitationController(svc)

		req := httptest.NewRequest(http.MethodPost, "/invite/tok-1/accept", nil)
		req.SetPathValue("token", "tok-1")
		req = req.WithContext(middleware.SetIdentityID(req.Context(), "bob"))
		rec := httptest.NewRecorder()

		ctrl.Accept(rec, req)

		assert.Equal(t, http.StatusOK, rec.Code)
		assert.Equal(t, "bob", svc.acceptCaller)
		accept := decodeAcceptResponse(t, decodeEnvelope(t, rec))
		assert.Empty(t, accept.Token, "existing session keeps its own token")
	})

	t.Run("token issuance failure is an internal error", func(t *testing.T) {
		svc := &fakeInvitationService{
			acceptInv:    sampleInvitation(domain.InvitationAccepted),
			acceptMember: &domain.ProjectMember{ProjectID: "p1", IdentityID: "guest-1", Role: domain.RoleEditor},
		}
		ctrl := NewInvitationController(testLogger, svc, &fakeTokenIssuer{err: errors.New("hsm offline")}, time.Hour)

		req := httptest.NewRequest(http.MethodPost, "/invite/tok-1/accept", nil)
		req.SetPathValue("token", "tok-1")
		rec := httptest.NewRecorder()

		ctrl.Accept(rec, req)

		assert.Equal(t, http.StatusInternalServerError, rec.Code)
	})

	t.Run("revoked during accept", func(t *testing.T) {
		svc := &fakeInvitationService{acceptErr: domain.ErrInvitationRevoked}
		ctrl := newTestInvitationController(svc)

		req := httptest.NewRequest(http.MethodPost, "/invite/tok-1/accept", nil)
		req.SetPathValue("token", "tok-1")
		rec := httptest.NewRecorder()

		ctrl.Accept(rec, req)

		assert.Equal(t, http.StatusGone, rec.Code)
		resp := decodeEnvelope(t, rec)
		require.NotNil(t, resp.Error)
		assert.Equal(t, helpers.ErrCodeInvitationRevoked, resp.Error.Code)
	})

	t.Run("viewer invitation without an account", func(t *testing.T) {
		svc := &fakeInvitationService{acceptErr: domain.ErrInvalidInput}
		ctrl := newTestInvitationController(svc)

		req := httptest.NewRequest(http.MethodPost, "/invite/tok-1/accept", nil)
		req.SetPathValue("token", "tok-1")
		rec := httptest.NewRecorder()

		ctrl.Accept(rec, req)

		assert.Equal(t, http.StatusBadRequest, rec.Code)
	})
}

func TestInvitationController_Revoke(t *testing.T) {
	t.Run("revoked", func(t *testing.T) {
		ctrl := newTestInvitationController(&fakeInvitationService{})
		req := httptest.NewRequest(http.MethodDelete, "/invitations/inv-1", nil)
		req.SetPathValue("invitationID", "inv-1")
		req = req.WithContext(middleware.SetIdentityID(req.Context(), "alice"))
		rec := httptest.NewRecorder()

		ctrl.Revoke(rec, req)
		assert.Equal(t, http.StatusOK, rec.Code)
	})

	t.Run("not the owner", func(t *testing.T) {
		ctrl := newTestInvitationController(&fakeInvitationService{revokeErr: domain.ErrPermissionDenied})
		req := httptest.NewRequest(http.MethodDelete, "/invitations/inv-1", nil)
		req.SetPathValue("invitationID", "inv-1")
		req = req.WithContext(middleware.SetIdentityID(req.Context(), "erin"))
		rec := httptest.NewRecorder()

		ctrl.Revoke(rec, req)
		assert.Equal(t, http.StatusForbidden, rec.Code)
	})
}

func TestInvitationController_List(t *testing.T) {
	svc := &fakeInvitationService{
		listInvs:  []*domain.Invitation{sampleInvitation(domain.InvitationPending)},
		listTotal: 1,
	}
	ctrl := newTestInvitationController(svc)

	req := httptest.NewRequest(http.MethodGet, "/projects/p1/invitations?page=1&page_size=10", nil)
	req.SetPathValue("projectID", "p1")
	req = req.WithContext(middleware.SetIdentityID(req.Context(), "alice"))
	rec := httptest.NewRecorder()

	ctrl.List(rec, req)

	assert.Equal(t, http.StatusOK, rec.Code)
	resp := decodeEnvelope(t, rec)
	require.Nil(t, resp.Error)

	raw, err := json.Marshal(resp.Data)
	require.NoError(t, err)
	var list InvitationListResponse
	require.NoError(t, json.Unmarshal(raw, &list))
	assert.Len(t, list.Invitations, 1)
	assert.Equal(t, 1, list.Pagination.Total)
}

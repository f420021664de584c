package controllers

import (
	"errors"
	"log/slog"
	"net/http"
	"strings"
	"time"

	h "calltimes/internal/delivery/http/helpers"
	"calltimes/internal/delivery/http/middleware"
	"calltimes/internal/domain"
)

// CreateInvitationRequest is the request body for POST /projects/{projectID}/invitations
type CreateInvitationRequest struct {
	Email string `json:"email"`
	Role  string `json:"role"`
}

// Validate implements Validator.
func (c CreateInvitationRequest) Validate() []string {
	var errs []string
	email := strings.TrimSpace(strings.ToLower(c.Email))
	if email == "" {
		errs = append(errs, "email is required")
	} else if !emailRegexp.MatchString(email) {
		errs = append(errs, "invalid email format")
	}
	if !domain.ValidRole(domain.Role(strings.TrimSpace(strings.ToLower(c.Role)))) {
		errs = append(errs, "role must be \"owner\", \"editor\", or \"viewer\"")
	}
	return errs
}

// AcceptInvitationRequest is the request body for POST /invite/{token}/accept
type AcceptInvitationRequest struct {
	DisplayName string `json:"display_name"` // optional: used when a guest identity is minted
}

// AcceptInvitationResponse is the response body for POST /invite/{token}/accept.
// Token is set when the acceptance attached an identity the caller was not
// signed in as, so the client can authenticate follow-up requests.
type AcceptInvitationResponse struct {
	Invitation *domain.Invitation    `json:"invitation"`
	Member     *domain.ProjectMember `json:"member,omitempty"`
	Token      string                `json:"token,omitempty"`
	TokenType  string                `json:"token_type,omitempty"`
}

// InvitationListResponse is the response body for GET /projects/{projectID}/invitations
type InvitationListResponse struct {
	Invitations []*domain.Invitation `json:"invitations"`
	Pagination  h.PaginationMeta     `json:"pagination"`
}

type InvitationController struct {
	Logger      *slog.Logger
	Service     domain.InvitationService
	Tokens      domain.TokenIssuer
	TokenExpiry time.Duration
}

func NewInvitationController(logger *slog.Logger, svc domain.InvitationService, tokens domain.TokenIssuer, tokenExpiry time.Duration) *InvitationController {
	return &InvitationController{
		Logger:      logger,
		Service:     svc,
		Tokens:      tokens,
		TokenExpiry: tokenExpiry,
	}
}

// writeInvitationError maps invitation lifecycle errors to HTTP responses.
// Expired and revoked links are 410 with distinct codes so the client can
// render the right screen; an unknown token is a plain 404.
func (c *InvitationController) writeInvitationError(w http.ResponseWriter, r *http.Request, err error) {
	switch {
	case errors.Is(err, domain.ErrInvitationNotFound):
		h.WriteJSONError(w, http.StatusNotFound, h.ErrCodeNotFound, "invitation not found")
	case errors.Is(err, domain.ErrInvitationExpired):
		h.WriteJSONError(w, http.StatusGone, h.ErrCodeInvitationExpired, "invitation has expired")
	case errors.Is(err, domain.ErrInvitationRevoked):
		h.WriteJSONError(w, http.StatusGone, h.ErrCodeInvitationRevoked, "invitation has been revoked")
	case errors.Is(err, domain.ErrDuplicateInvitation):
		h.WriteJSONError(w, http.StatusConflict, h.ErrCodeConflict, "an invitation for this email is already pending")
	case errors.Is(err, domain.ErrPermissionDenied):
		h.WriteJSONError(w, http.StatusForbidden, h.ErrCodeForbidden, "permission denied")
	case errors.Is(err, domain.ErrInvalidInput):
		h.WriteJSONError(w, http.StatusBadRequest, h.ErrCodeBadRequest, "an account is required to accept this invitation")
	default:
		c.Logger.ErrorContext(r.Context(), "request failed", "path", r.URL.Path, "method", r.Method, "err", err)
		h.WriteJSONError(w, http.StatusInternalServerError, h.ErrCodeInternalError, err.Error())
	}
}

// Create godoc
// @Summary Invite a collaborator to a project
// @Description Create a pending invitation and email an accept link to the recipient. Only project owners can invite. At most one pending invitation may exist per (project, email).
// @Tags invitations
// @Accept json
// @Produce json
// @Security BearerAuth
// @Param projectID path string true "Project ID"
// @Param body body CreateInvitationRequest true "Invitation data"
// @Success 201 {object} helpers.APIResponse "data contains the created invitation"
// @Failure 400 {object} helpers.APIResponse "error.code: bad_request"
// @Failure 403 {object} helpers.APIResponse "error.code: forbidden"
// @Failure 409 {object} helpers.APIResponse "error.code: conflict"
// @Failure 500 {object} helpers.APIResponse "error.code: internal_error"
// @Router /projects/{projectID}/invitations [post]
func (c *InvitationController) Create(w http.ResponseWriter, r *http.Request) {
	identityID, ok := middleware.IdentityIDFromContext(r.Context())
	if !ok {
		h.WriteJSONError(w, http.StatusUnauthorized, h.ErrCodeUnauthorized, "unauthorized")
		return
	}
	projectID := r.PathValue("projectID")
	if projectID == "" {
		h.WriteJSONError(w, http.StatusBadRequest, h.ErrCodeBadRequest, "missing projectID")
		return
	}
	var req CreateInvitationRequest
	if !h.DecodeAndValidate(w, r, &req) {
		return
	}
	role := domain.Role(strings.TrimSpace(strings.ToLower(req.Role)))
	inv, err := c.Service.Create(r.Context(), identityID, projectID, req.Email, role)
	if err != nil {
		c.writeInvitationError(w, r, err)
		return
	}
	h.WriteJSONSuccess(w, http.StatusCreated, inv)
}

// List godoc
// @Summary List a project's invitations
// @Description List invitations for a project with pagination. Only project owners can list.
// @Tags invitations
// @Produce json
// @Security BearerAuth
// @Param projectID path string true "Project ID"
// @Param page query int false "Page number (default 1)"
// @Param page_size query int false "Page size (default 20, max 100)"
// @Success 200 {object} helpers.APIResponse "data contains invitations and pagination"
// @Failure 403 {object} helpers.APIResponse "error.code: forbidden"
// @Failure 500 {object} helpers.APIResponse "error.code: internal_error"
// @Router /projects/{projectID}/invitations [get]
func (c *InvitationController) List(w http.ResponseWriter, r *http.Request) {
	identityID, ok := middleware.IdentityIDFromContext(r.Context())
	if !ok {
		h.WriteJSONError(w, http.StatusUnauthorized, h.ErrCodeUnauthorized, "unauthorized")
		return
	}
	projectID := r.PathValue("projectID")
	if projectID == "" {
		h.WriteJSONError(w, http.StatusBadRequest, h.ErrCodeBadRequest, "missing projectID")
		return
	}
	params := h.ParsePagination(r)
	invs, total, err := c.Service.ListByProject(r.Context(), identityID, projectID, params)
	if err != nil {
		c.writeInvitationError(w, r, err)
		return
	}
	h.WriteJSONSuccess(w, http.StatusOK, InvitationListResponse{
		Invitations: invs,
		Pagination:  h.NewPaginationMeta(params.Page, params.PageSize, total),
	})
}

// Revoke godoc
// @Summary Revoke an invitation
// @Description Revoke a pending or accepted invitation. Revoking an accepted invitation removes the derived project membership, effective on the member's next request.
// @Tags invitations
// @Produce json
// @Security BearerAuth
// @Param invitationID path string true "Invitation ID"
// @Success 200 {object} helpers.APIResponse
// @Failure 403 {object} helpers.APIResponse "error.code: forbidden"
// @Failure 404 {object} helpers.APIResponse "error.code: not_found"
// @Failure 500 {object} helpers.APIResponse "error.code: internal_error"
// @Router /invitations/{invitationID} [delete]
func (c *InvitationController) Revoke(w http.ResponseWriter, r *http.Request) {
	identityID, ok := middleware.IdentityIDFromContext(r.Context())
	if !ok {
		h.WriteJSONError(w, http.StatusUnauthorized, h.ErrCodeUnauthorized, "unauthorized")
		return
	}
	invitationID := r.PathValue("invitationID")
	if invitationID == "" {
		h.WriteJSONError(w, http.StatusBadRequest, h.ErrCodeBadRequest, "missing invitationID")
		return
	}
	if err := c.Service.Revoke(r.Context(), identityID, invitationID); err != nil {
		c.writeInvitationError(w, r, err)
		return
	}
	h.WriteJSONSuccess(w, http.StatusOK, map[string]string{"status": "revoked"})
}

// Resend godoc
// @Summary Resend an invitation email
// @Description Re-dispatch the invitation email for a pending, unexpired invitation.
// @Tags invitations
// @Produce json
// @Security BearerAuth
// @Param invitationID path string true "Invitation ID"
// @Success 200 {object} helpers.APIResponse
// @Failure 403 {object} helpers.APIResponse "error.code: forbidden"
// @Failure 404 {object} helpers.APIResponse "error.code: not_found"
// @Failure 410 {object} helpers.APIResponse "error.code: invitation_expired or invitation_revoked"
// @Failure 500 {object} helpers.APIResponse "error.code: internal_error"
// @Router /invitations/{invitationID}/resend [post]
func (c *InvitationController) Resend(w http.ResponseWriter, r *http.Request) {
	identityID, ok := middleware.IdentityIDFromContext(r.Context())
	if !ok {
		h.WriteJSONError(w, http.StatusUnauthorized, h.ErrCodeUnauthorized, "unauthorized")
		return
	}
	invitationID := r.PathValue("invitationID")
	if invitationID == "" {
		h.WriteJSONError(w, http.StatusBadRequest, h.ErrCodeBadRequest, "missing invitationID")
		return
	}
	if err := c.Service.Resend(r.Context(), identityID, invitationID); err != nil {
		c.writeInvitationError(w, r, err)
		return
	}
	h.WriteJSONSuccess(w, http.StatusOK, map[string]string{"status": "sent"})
}

// Validate godoc
// @Summary Validate an invitation token
// @Description Look up the invitation behind an accept link. No authentication required; the token itself is the credential.
// @Tags invitations
// @Produce json
// @Param token path string true "Invitation token"
// @Success 200 {object} helpers.APIResponse "data contains the invitation"
// @Failure 404 {object} helpers.APIResponse "error.code: not_found"
// @Failure 410 {object} helpers.APIResponse "error.code: invitation_expired or invitation_revoked"
// @Failure 500 {object} helpers.APIResponse "error.code: internal_error"
// @Router /invite/{token} [get]
func (c *InvitationController) Validate(w http.ResponseWriter, r *http.Request) {
	token := r.PathValue("token")
	if token == "" {
		h.WriteJSONError(w, http.StatusBadRequest, h.ErrCodeBadRequest, "missing token")
		return
	}
	inv, err := c.Service.ValidateToken(r.Context(), token)
	if err != nil {
		c.writeInvitationError(w, r, err)
		return
	}
	h.WriteJSONSuccess(w, http.StatusOK, inv)
}

// Accept godoc
// @Summary Accept an invitation
// @Description Accept the invitation behind a token. A signed-in caller attaches it to their account; an anonymous caller with an editor invitation has a guest identity minted and receives a session token in the response. Accepting an already-accepted invitation is idempotent.
// @Tags invitations
// @Accept json
// @Produce json
// @Param token path string true "Invitation token"
// @Param body body AcceptInvitationRequest false "Accept options"
// @Success 200 {object} helpers.APIResponse "data contains the invitation, membership, and session token for anonymous acceptors"
// @Failure 400 {object} helpers.APIResponse "error.code: bad_request"
// @Failure 404 {object} helpers.APIResponse "error.code: not_found"
// @Failure 410 {object} helpers.APIResponse "error.code: invitation_expired or invitation_revoked"
// @Failure 500 {object} helpers.APIResponse "error.code: internal_error"
// @Router /invite/{token}/accept [post]
func (c *InvitationController) Accept(w http.ResponseWriter, r *http.Request) {
	token := r.PathValue("token")
	if token == "" {
		h.WriteJSONError(w, http.StatusBadRequest, h.ErrCodeBadRequest, "missing token")
		return
	}
	var req AcceptInvitationRequest
	if r.ContentLength > 0 {
		if !h.DecodeAndValidate(w, r, &req) {
			return
		}
	}
	callerID, _ := middleware.IdentityIDFromContext(r.Context())
	inv, member, err := c.Service.Accept(r.Context(), token, callerID, req.DisplayName)
	if err != nil {
		if errors.Is(err, domain.ErrProvisioningFailed) {
			c.Logger.ErrorContext(r.Context(), "guest provisioning failed", "path", r.URL.Path, "err", err)
			h.WriteJSONError(w, http.StatusInternalServerError, h.ErrCodeInternalError, "could not provision access, please retry")
			return
		}
		c.writeInvitationError(w, r, err)
		return
	}
	resp := AcceptInvitationResponse{Invitation: inv, Member: member}
	if callerID == "" && member != nil {
		// An anonymous acceptor cannot log in afterwards (guest identities
		// carry no password), so the accept response doubles as the session.
		token, err := c.Tokens.Issue(member.IdentityID, inv.Email, c.TokenExpiry)
		if err != nil {
			c.Logger.ErrorContext(r.Context(), "session token issuance failed", "path", r.URL.Path, "err", err)
			h.WriteJSONError(w, http.StatusInternalServerError, h.ErrCodeInternalError, "could not establish a session, please retry")
			return
		}
		resp.Token = token
		resp.TokenType = "Bearer"
	}
	h.WriteJSONSuccess(w, http.StatusOK, resp)
}

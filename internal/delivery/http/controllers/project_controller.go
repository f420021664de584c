package controllers

import (
	"errors"
	"log/slog"
	"net/http"
	"strings"

	h "calltimes/internal/delivery/http/helpers"
	"calltimes/internal/delivery/http/middleware"
	"calltimes/internal/domain"
)

// CreateProjectRequest is the request body for POST /projects
type CreateProjectRequest struct {
	Name        string `json:"name"`
	Description string `json:"description"`
}

// Validate implements Validator.
func (c CreateProjectRequest) Validate() []string {
	var errs []string
	if strings.TrimSpace(c.Name) == "" {
		errs = append(errs, "name is required")
	}
	return errs
}

type ProjectController struct {
	Logger  *slog.Logger
	Service domain.ProjectService
}

func NewProjectController(logger *slog.Logger, svc domain.ProjectService) *ProjectController {
	return &ProjectController{
		Logger:  logger,
		Service: svc,
	}
}

// Create godoc
// @Summary Create a project
// @Description Create a project under the caller's organization. Guests cannot create projects.
// @Tags projects
// @Accept json
// @Produce json
// @Security BearerAuth
// @Param body body CreateProjectRequest true "Project data"
// @Success 201 {object} helpers.APIResponse "data contains the created project"
// @Failure 400 {object} helpers.APIResponse "error.code: bad_request"
// @Failure 403 {object} helpers.APIResponse "error.code: forbidden"
// @Failure 500 {object} helpers.APIResponse "error.code: internal_error"
// @Router /projects [post]
func (c *ProjectController) Create(w http.ResponseWriter, r *http.Request) {
	identityID, ok := middleware.IdentityIDFromContext(r.Context())
	if !ok {
		h.WriteJSONError(w, http.StatusUnauthorized, h.ErrCodeUnauthorized, "unauthorized")
		return
	}
	var req CreateProjectRequest
	if !h.DecodeAndValidate(w, r, &req) {
		return
	}
	project, err := c.Service.Create(r.Context(), identityID, req.Name, req.Description)
	if err != nil {
		switch {
		case errors.Is(err, domain.ErrPermissionDenied):
			h.WriteJSONError(w, http.StatusForbidden, h.ErrCodeForbidden, "only organization members can create projects")
		case errors.Is(err, domain.ErrInvalidInput):
			h.WriteJSONError(w, http.StatusBadRequest, h.ErrCodeBadRequest, "invalid project data")
		default:
			c.Logger.ErrorContext(r.Context(), "request failed", "path", r.URL.Path, "method", r.Method, "err", err)
			h.WriteJSONError(w, http.StatusInternalServerError, h.ErrCodeInternalError, err.Error())
		}
		return
	}
	h.WriteJSONSuccess(w, http.StatusCreated, project)
}

// List godoc
// @Summary List accessible projects
// @Description List the projects the caller can see: every organization project for members, invited projects for guests.
// @Tags projects
// @Produce json
// @Security BearerAuth
// @Success 200 {object} helpers.APIResponse "data contains the projects"
// @Failure 401 {object} helpers.APIResponse "error.code: unauthorized"
// @Failure 500 {object} helpers.APIResponse "error.code: internal_error"
// @Router /projects [get]
func (c *ProjectController) List(w http.ResponseWriter, r *http.Request) {
	identityID, ok := middleware.IdentityIDFromContext(r.Context())
	if !ok {
		h.WriteJSONError(w, http.StatusUnauthorized, h.ErrCodeUnauthorized, "unauthorized")
		return
	}
	projects, err := c.Service.ListAccessible(r.Context(), identityID)
	if err != nil {
		c.Logger.ErrorContext(r.Context(), "request failed", "path", r.URL.Path, "method", r.Method, "err", err)
		h.WriteJSONError(w, http.StatusInternalServerError, h.ErrCodeInternalError, err.Error())
		return
	}
	h.WriteJSONSuccess(w, http.StatusOK, projects)
}

// ListMembers godoc
// @Summary List a project's members
// @Produce json
// @Tags projects
// @Security BearerAuth
// @Param projectID path string true "Project ID"
// @Success 200 {object} helpers.APIResponse "data contains the project members"
// @Failure 403 {object} helpers.APIResponse "error.code: forbidden"
// @Failure 500 {object} helpers.APIResponse "error.code: internal_error"
// @Router /projects/{projectID}/members [get]
func (c *ProjectController) ListMembers(w http.ResponseWriter, r *http.Request) {
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
	members, err := c.Service.ListMembers(r.Context(), identityID, projectID)
	if err != nil {
		if errors.Is(err, domain.ErrForbidden) {
			h.WriteJSONError(w, http.StatusForbidden, h.ErrCodeForbidden, "forbidden")
			return
		}
		c.Logger.ErrorContext(r.Context(), "request failed", "path", r.URL.Path, "method", r.Method, "err", err)
		h.WriteJSONError(w, http.StatusInternalServerError, h.ErrCodeInternalError, err.Error())
		return
	}
	h.WriteJSONSuccess(w, http.StatusOK, members)
}

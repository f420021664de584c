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

// maxUploadBytes caps multipart uploads at 512 MiB.
const maxUploadBytes = 512 << 20

// CreateFolderRequest is the request body for POST /projects/{projectID}/folders
type CreateFolderRequest struct {
	Name     string `json:"name"`
	ParentID string `json:"parent_id"`
}

// Validate implements Validator.
func (c CreateFolderRequest) Validate() []string {
	var errs []string
	if strings.TrimSpace(c.Name) == "" {
		errs = append(errs, "name is required")
	}
	return errs
}

// RenameContentRequest is the request body for PATCH /projects/{projectID}/content/{itemID}
type RenameContentRequest struct {
	Name string `json:"name"`
}

// Validate implements Validator.
func (c RenameContentRequest) Validate() []string {
	var errs []string
	if strings.TrimSpace(c.Name) == "" {
		errs = append(errs, "name is required")
	}
	return errs
}

// DownloadURLResponse is the response body for GET /projects/{projectID}/content/{itemID}/download
type DownloadURLResponse struct {
	URL string `json:"url"`
}

type ContentController struct {
	Logger  *slog.Logger
	Service domain.ContentService
}

func NewContentController(logger *slog.Logger, svc domain.ContentService) *ContentController {
	return &ContentController{
		Logger:  logger,
		Service: svc,
	}
}

func (c *ContentController) writeContentError(w http.ResponseWriter, r *http.Request, err error) {
	switch {
	case errors.Is(err, domain.ErrForbidden):
		h.WriteJSONError(w, http.StatusForbidden, h.ErrCodeForbidden, "no access to this project")
	case errors.Is(err, domain.ErrPermissionDenied):
		h.WriteJSONError(w, http.StatusForbidden, h.ErrCodeForbidden, "permission denied")
	case errors.Is(err, domain.ErrNotFound):
		h.WriteJSONError(w, http.StatusNotFound, h.ErrCodeNotFound, "content item not found")
	case errors.Is(err, domain.ErrInvalidInput):
		h.WriteJSONError(w, http.StatusBadRequest, h.ErrCodeBadRequest, "invalid request")
	default:
		c.Logger.ErrorContext(r.Context(), "request failed", "path", r.URL.Path, "method", r.Method, "err", err)
		h.WriteJSONError(w, http.StatusInternalServerError, h.ErrCodeInternalError, err.Error())
	}
}

// Upload godoc
// @Summary Upload a file to a project
// @Description Upload a file as multipart form data under the "file" field. The uploader becomes the item's owner.
// @Tags content
// @Accept multipart/form-data
// @Produce json
// @Security BearerAuth
// @Param projectID path string true "Project ID"
// @Param file formData file true "File to upload"
// @Param parent_id formData string false "Parent folder ID"
// @Success 201 {object} helpers.APIResponse "data contains the created content item"
// @Failure 400 {object} helpers.APIResponse "error.code: bad_request"
// @Failure 403 {object} helpers.APIResponse "error.code: forbidden"
// @Failure 500 {object} helpers.APIResponse "error.code: internal_error"
// @Router /projects/{projectID}/content [post]
func (c *ContentController) Upload(w http.ResponseWriter, r *http.Request) {
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

	r.Body = http.MaxBytesReader(w, r.Body, maxUploadBytes)
	file, header, err := r.FormFile("file")
	if err != nil {
		h.WriteJSONError(w, http.StatusBadRequest, h.ErrCodeBadRequest, "missing or invalid \"file\" field")
		return
	}
	defer file.Close()

	contentType := header.Header.Get("Content-Type")
	if contentType == "" {
		contentType = "application/octet-stream"
	}
	parentID := r.FormValue("parent_id")

	item, err := c.Service.Upload(r.Context(), identityID, projectID, header.Filename, parentID, contentType, header.Size, file)
	if err != nil {
		c.writeContentError(w, r, err)
		return
	}
	h.WriteJSONSuccess(w, http.StatusCreated, item)
}

// CreateFolder godoc
// @Summary Create a folder in a project
// @Tags content
// @Accept json
// @Produce json
// @Security BearerAuth
// @Param projectID path string true "Project ID"
// @Param body body CreateFolderRequest true "Folder data"
// @Success 201 {object} helpers.APIResponse "data contains the created folder"
// @Failure 400 {object} helpers.APIResponse "error.code: bad_request"
// @Failure 403 {object} helpers.APIResponse "error.code: forbidden"
// @Failure 500 {object} helpers.APIResponse "error.code: internal_error"
// @Router /projects/{projectID}/folders [post]
func (c *ContentController) CreateFolder(w http.ResponseWriter, r *http.Request) {
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
	var req CreateFolderRequest
	if !h.DecodeAndValidate(w, r, &req) {
		return
	}
	item, err := c.Service.CreateFolder(r.Context(), identityID, projectID, req.Name, req.ParentID)
	if err != nil {
		c.writeContentError(w, r, err)
		return
	}
	h.WriteJSONSuccess(w, http.StatusCreated, item)
}

// List godoc
// @Summary List a project's content
// @Tags content
// @Produce json
// @Security BearerAuth
// @Param projectID path string true "Project ID"
// @Success 200 {object} helpers.APIResponse "data contains the content items"
// @Failure 403 {object} helpers.APIResponse "error.code: forbidden"
// @Failure 500 {object} helpers.APIResponse "error.code: internal_error"
// @Router /projects/{projectID}/content [get]
func (c *ContentController) List(w http.ResponseWriter, r *http.Request) {
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
	items, err := c.Service.List(r.Context(), identityID, projectID)
	if err != nil {
		c.writeContentError(w, r, err)
		return
	}
	h.WriteJSONSuccess(w, http.StatusOK, items)
}

// Rename godoc
// @Summary Rename a content item
// @Description Rename a file or folder. Editors can rename only items they own; owners can rename anything in the project.
// @Tags content
// @Accept json
// @Produce json
// @Security BearerAuth
// @Param projectID path string true "Project ID"
// @Param itemID path string true "Content item ID"
// @Param body body RenameContentRequest true "New name"
// @Success 200 {object} helpers.APIResponse "data contains the renamed item"
// @Failure 400 {object} helpers.APIResponse "error.code: bad_request"
// @Failure 403 {object} helpers.APIResponse "error.code: forbidden"
// @Failure 404 {object} helpers.APIResponse "error.code: not_found"
// @Failure 500 {object} helpers.APIResponse "error.code: internal_error"
// @Router /projects/{projectID}/content/{itemID} [patch]
func (c *ContentController) Rename(w http.ResponseWriter, r *http.Request) {
	identityID, ok := middleware.IdentityIDFromContext(r.Context())
	if !ok {
		h.WriteJSONError(w, http.StatusUnauthorized, h.ErrCodeUnauthorized, "unauthorized")
		return
	}
	projectID := r.PathValue("projectID")
	itemID := r.PathValue("itemID")
	if projectID == "" || itemID == "" {
		h.WriteJSONError(w, http.StatusBadRequest, h.ErrCodeBadRequest, "missing projectID or itemID")
		return
	}
	var req RenameContentRequest
	if !h.DecodeAndValidate(w, r, &req) {
		return
	}
	item, err := c.Service.Rename(r.Context(), identityID, projectID, itemID, req.Name)
	if err != nil {
		c.writeContentError(w, r, err)
		return
	}
	h.WriteJSONSuccess(w, http.StatusOK, item)
}

// Delete godoc
// @Summary Delete a content item
// @Description Delete a file or folder. Editors can delete only items they own; owners can delete anything in the project.
// @Tags content
// @Produce json
// @Security BearerAuth
// @Param projectID path string true "Project ID"
// @Param itemID path string true "Content item ID"
// @Success 200 {object} helpers.APIResponse
// @Failure 403 {object} helpers.APIResponse "error.code: forbidden"
// @Failure 404 {object} helpers.APIResponse "error.code: not_found"
// @Failure 500 {object} helpers.APIResponse "error.code: internal_error"
// @Router /projects/{projectID}/content/{itemID} [delete]
func (c *ContentController) Delete(w http.ResponseWriter, r *http.Request) {
	identityID, ok := middleware.IdentityIDFromContext(r.Context())
	if !ok {
		h.WriteJSONError(w, http.StatusUnauthorized, h.ErrCodeUnauthorized, "unauthorized")
		return
	}
	projectID := r.PathValue("projectID")
	itemID := r.PathValue("itemID")
	if projectID == "" || itemID == "" {
		h.WriteJSONError(w, http.StatusBadRequest, h.ErrCodeBadRequest, "missing projectID or itemID")
		return
	}
	if err := c.Service.Delete(r.Context(), identityID, projectID, itemID); err != nil {
		c.writeContentError(w, r, err)
		return
	}
	h.WriteJSONSuccess(w, http.StatusOK, map[string]string{"status": "deleted"})
}

// DownloadURL godoc
// @Summary Get a download URL for a file
// @Tags content
// @Produce json
// @Security BearerAuth
// @Param projectID path string true "Project ID"
// @Param itemID path string true "Content item ID"
// @Success 200 {object} helpers.APIResponse "data contains the download URL"
// @Failure 403 {object} helpers.APIResponse "error.code: forbidden"
// @Failure 404 {object} helpers.APIResponse "error.code: not_found"
// @Failure 500 {object} helpers.APIResponse "error.code: internal_error"
// @Router /projects/{projectID}/content/{itemID}/download [get]
func (c *ContentController) DownloadURL(w http.ResponseWriter, r *http.Request) {
	identityID, ok := middleware.IdentityIDFromContext(r.Context())
	if !ok {
		h.WriteJSONError(w, http.StatusUnauthorized, h.ErrCodeUnauthorized, "unauthorized")
		return
	}
	projectID := r.PathValue("projectID")
	itemID := r.PathValue("itemID")
	if projectID == "" || itemID == "" {
		h.WriteJSONError(w, http.StatusBadRequest, h.ErrCodeBadRequest, "missing projectID or itemID")
		return
	}
	url, err := c.Service.DownloadURL(r.Context(), identityID, projectID, itemID)
	if err != nil {
		c.writeContentError(w, r, err)
		return
	}
	h.WriteJSONSuccess(w, http.StatusOK, DownloadURLResponse{URL: url})
}

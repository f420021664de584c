package services

import (
	"context"
	"errors"
	"fmt"
	"io"
	"log/slog"
	"strings"
	"time"

	"calltimes/internal/domain"
)

type contentService struct {
	contentRepo    domain.ContentRepository
	blobStore      domain.BlobStore
	authorizer     domain.Authorizer
	logger         *slog.Logger
	contextTimeout time.Duration
}

// NewContentService creates the project content service. Every mutating
// operation runs through the permission gateway before touching the
// content store or blob storage.
func NewContentService(contentRepo domain.ContentRepository, blobStore domain.BlobStore, authorizer domain.Authorizer, logger *slog.Logger, timeout time.Duration) domain.ContentService {
	return &contentService{
		contentRepo:    contentRepo,
		blobStore:      blobStore,
		authorizer:     authorizer,
		logger:         logger,
		contextTimeout: timeout,
	}
}

func (s *contentService) authorize(ctx context.Context, actorID, projectID string, op domain.Operation, target *domain.OwnershipTarget) error {
	decision, err := s.authorizer.Authorize(ctx, actorID, projectID, op, target)
	if err != nil {
		return fmt.Errorf("authorize %s: %w", op, err)
	}
	if !decision.Allowed {
		if decision.Reason == domain.DenyNoAccess {
			return domain.ErrForbidden
		}
		return domain.ErrPermissionDenied
	}
	return nil
}

func (s *contentService) Upload(ctx context.Context, actorID, projectID, name, parentID, contentType string, size int64, reader io.Reader) (*domain.ContentItem, error) {
	ctx, cancel := context.WithTimeout(ctx, s.contextTimeout)
	defer cancel()

	name = strings.TrimSpace(name)
	if name == "" {
		return nil, domain.ErrInvalidInput
	}
	if err := s.authorize(ctx, actorID, projectID, domain.OpUpload, nil); err != nil {
		return nil, err
	}

	now := time.Now()
	key := fmt.Sprintf("projects/%s/%d-%s", projectID, now.UnixNano(), name)
	result, err := s.blobStore.Upload(ctx, key, contentType, reader)
	if err != nil {
		return nil, fmt.Errorf("upload blob: %w", err)
	}

	item := &domain.ContentItem{
		ProjectID:       projectID,
		OwnerIdentityID: actorID,
		Kind:            domain.ContentFile,
		Name:            name,
		ParentID:        parentID,
		StorageKey:      result.Key,
		SizeBytes:       size,
		ContentType:     contentType,
		CreatedAt:       now,
	}
	if err := s.contentRepo.Create(ctx, item); err != nil {
		// Orphaned blob; remove it so storage doesn't accumulate strays.
		if delErr := s.blobStore.Delete(ctx, result.Key); delErr != nil {
			s.logger.Error("failed to clean up blob after create failure", "key", result.Key, "err", delErr)
		}
		return nil, fmt.Errorf("create content item: %w", err)
	}
	return item, nil
}

func (s *contentService) CreateFolder(ctx context.Context, actorID, projectID, name, parentID string) (*domain.ContentItem, error) {
	ctx, cancel := context.WithTimeout(ctx, s.contextTimeout)
	defer cancel()

	name = strings.TrimSpace(name)
	if name == "" {
		return nil, domain.ErrInvalidInput
	}
	if err := s.authorize(ctx, actorID, projectID, domain.OpCreateFolder, nil); err != nil {
		return nil, err
	}

	item := &domain.ContentItem{
		ProjectID:       projectID,
		OwnerIdentityID: actorID,
		Kind:            domain.ContentFolder,
		Name:            name,
		ParentID:        parentID,
		CreatedAt:       time.Now(),
	}
	if err := s.contentRepo.Create(ctx, item); err != nil {
		return nil, fmt.Errorf("create folder: %w", err)
	}
	return item, nil
}

func (s *contentService) Rename(ctx context.Context, actorID, projectID, itemID, name string) (*domain.ContentItem, error) {
	ctx, cancel := context.WithTimeout(ctx, s.contextTimeout)
	defer cancel()

	name = strings.TrimSpace(name)
	if name == "" {
		return nil, domain.ErrInvalidInput
	}
	item, err := s.getProjectItem(ctx, projectID, itemID)
	if err != nil {
		return nil, err
	}
	target := &domain.OwnershipTarget{OwnerIdentityID: item.OwnerIdentityID}
	if err := s.authorize(ctx, actorID, projectID, domain.OpRename, target); err != nil {
		return nil, err
	}
	if err := s.contentRepo.Rename(ctx, itemID, name); err != nil {
		return nil, fmt.Errorf("rename content item: %w", err)
	}
	item.Name = name
	return item, nil
}

func (s *contentService) Delete(ctx context.Context, actorID, projectID, itemID string) error {
	ctx, cancel := context.WithTimeout(ctx, s.contextTimeout)
	defer cancel()

	item, err := s.getProjectItem(ctx, projectID, itemID)
	if err != nil {
		return err
	}
	target := &domain.OwnershipTarget{OwnerIdentityID: item.OwnerIdentityID}
	if err := s.authorize(ctx, actorID, projectID, domain.OpDelete, target); err != nil {
		return err
	}
	if err := s.contentRepo.Delete(ctx, itemID); err != nil {
		return fmt.Errorf("delete content item: %w", err)
	}
	if item.Kind == domain.ContentFile && item.StorageKey != "" {
		if err := s.blobStore.Delete(ctx, item.StorageKey); err != nil {
			// The record is gone; a lingering blob is a cleanup problem,
			// not a failed delete.
			s.logger.Error("failed to delete blob", "key", item.StorageKey, "err", err)
		}
	}
	return nil
}

func (s *contentService) List(ctx context.Context, actorID, projectID string) ([]*domain.ContentItem, error) {
	ctx, cancel := context.WithTimeout(ctx, s.contextTimeout)
	defer cancel()

	if err := s.authorize(ctx, actorID, projectID, domain.OpView, nil); err != nil {
		return nil, err
	}
	items, err := s.contentRepo.ListByProjectID(ctx, projectID)
	if err != nil {
		return nil, fmt.Errorf("list content items: %w", err)
	}
	return items, nil
}

func (s *contentService) DownloadURL(ctx context.Context, actorID, projectID, itemID string) (string, error) {
	ctx, cancel := context.WithTimeout(ctx, s.contextTimeout)
	defer cancel()

	item, err := s.getProjectItem(ctx, projectID, itemID)
	if err != nil {
		return "", err
	}
	if item.Kind != domain.ContentFile {
		return "", domain.ErrInvalidInput
	}
	if err := s.authorize(ctx, actorID, projectID, domain.OpDownload, nil); err != nil {
		return "", err
	}
	return s.blobStore.PublicURL(item.StorageKey), nil
}

// getProjectItem loads the item and verifies it belongs to the project, so
// an item id from another project reads as missing rather than leaking.
func (s *contentService) getProjectItem(ctx context.Context, projectID, itemID string) (*domain.ContentItem, error) {
	item, err := s.contentRepo.GetByID(ctx, itemID)
	if err != nil {
		if errors.Is(err, domain.ErrNotFound) {
			return nil, domain.ErrNotFound
		}
		return nil, fmt.Errorf("get content item: %w", err)
	}
	if item.ProjectID != projectID {
		return nil, domain.ErrNotFound
	}
	return item, nil
}

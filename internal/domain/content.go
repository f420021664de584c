package domain

import (
	"context"
	"io"
	"time"
)

// ContentKind distinguishes files from folders.
type ContentKind string

const (
	ContentFile   ContentKind = "file"
	ContentFolder ContentKind = "folder"
)

// ContentItem is an ownership-tagged file or folder record. The permission
// gateway reads OwnerIdentityID and Kind; file bytes live in blob storage
// under StorageKey.
// swagger:model ContentItem
type ContentItem struct {
	ID              string      `json:"id"`
	ProjectID       string      `json:"project_id"`
	OwnerIdentityID string      `json:"owner_identity_id"`
	Kind            ContentKind `json:"kind"`
	Name            string      `json:"name"`
	ParentID        string      `json:"parent_id,omitempty"`
	StorageKey      string      `json:"-"`
	SizeBytes       int64       `json:"size_bytes,omitempty"`
	ContentType     string      `json:"content_type,omitempty"`
	CreatedAt       time.Time   `json:"created_at"`
}

// ContentRepository defines storage operations for content item records.
type ContentRepository interface {
	Create(ctx context.Context, item *ContentItem) error
	GetByID(ctx context.Context, id string) (*ContentItem, error)
	ListByProjectID(ctx context.Context, projectID string) ([]*ContentItem, error)
	Rename(ctx context.Context, id, name string) error
	Delete(ctx context.Context, id string) error
}

// BlobUploadResult describes a stored blob.
type BlobUploadResult struct {
	Key      string
	Location string
	ETag     string
}

// BlobStore uploads and deletes raw file bytes (infrastructure port).
type BlobStore interface {
	Upload(ctx context.Context, key, contentType string, reader io.Reader) (*BlobUploadResult, error)
	Delete(ctx context.Context, key string) error
	PublicURL(key string) string
}

// ContentService is the project content surface. Every mutating call runs
// through the permission gateway before touching storage.
type ContentService interface {
	Upload(ctx context.Context, actorID, projectID, name, parentID, contentType string, size int64, reader io.Reader) (*ContentItem, error)
	CreateFolder(ctx context.Context, actorID, projectID, name, parentID string) (*ContentItem, error)
	Rename(ctx context.Context, actorID, projectID, itemID, name string) (*ContentItem, error)
	Delete(ctx context.Context, actorID, projectID, itemID string) error
	List(ctx context.Context, actorID, projectID string) ([]*ContentItem, error)
	DownloadURL(ctx context.Context, actorID, projectID, itemID string) (string, error)
}

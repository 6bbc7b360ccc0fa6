package storefront

import (
	"context"
	"io"

	"github.com/google/uuid"
)

// Store defines the persistence contract for the three entity kinds. Every
// backend implements identical semantics: lists are ordered newest first,
// single-entity lookups return the package sentinel errors on a missing row,
// and EnsureSiteContent is insert-if-absent (an existing row is never
// overwritten).
type Store interface {
	// Product operations
	ListProducts(ctx context.Context) ([]*Product, error)
	GetProduct(ctx context.Context, id uuid.UUID) (*Product, error)
	CreateProduct(ctx context.Context, product *Product) error
	DeleteProduct(ctx context.Context, id uuid.UUID) error

	// Blog post operations
	ListPosts(ctx context.Context) ([]*BlogPost, error)
	GetPost(ctx context.Context, id uuid.UUID) (*BlogPost, error)
	CreatePost(ctx context.Context, post *BlogPost) error
	DeletePost(ctx context.Context, id uuid.UUID) error

	// Site content operations
	GetSiteContent(ctx context.Context, key string) (*SiteContent, error)
	SetSiteContent(ctx context.Context, key, value string) error
	EnsureSiteContent(ctx context.Context, key, defaultValue string) error
}

// BlobStore defines the interface for media storage backends. Keys are the
// sanitized filenames produced by the ingest pipeline; PublicURL maps a key
// to the reference stored alongside the entity (a relative filename for the
// filesystem backend, a fully-qualified URL for remote object storage).
type BlobStore interface {
	// Upload stores the bytes under objectKey, overwriting any existing
	// object with the same key.
	Upload(ctx context.Context, objectKey, mimeType string, reader io.Reader) error

	// Download retrieves the bytes stored under objectKey.
	Download(ctx context.Context, objectKey string) (io.ReadCloser, error)

	// Delete removes the object. Deleting a missing key is not an error.
	Delete(ctx context.Context, objectKey string) error

	// PublicURL returns the storable reference for objectKey.
	PublicURL(objectKey string) string

	// RefToKey maps a reference previously returned by PublicURL back to
	// its object key. ok is false when the reference was not produced by
	// this store.
	RefToKey(ref string) (objectKey string, ok bool)
}

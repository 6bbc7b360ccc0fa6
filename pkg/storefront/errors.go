package storefront

import (
	"errors"
	"fmt"
)

// Error types
var (
	// ErrProductNotFound indicates a product was not found
	ErrProductNotFound = errors.New("product not found")

	// ErrPostNotFound indicates a blog post was not found
	ErrPostNotFound = errors.New("blog post not found")

	// ErrSiteContentNotFound indicates no row exists for a site-content key
	ErrSiteContentNotFound = errors.New("site content not found")

	// ErrNameRequired indicates a create request had an empty name/title
	ErrNameRequired = errors.New("name is required")

	// ErrUnsupportedImageType indicates an upload with a missing or
	// disallowed file extension
	ErrUnsupportedImageType = errors.New("unsupported image type")

	// ErrUploadFailed indicates the blob store rejected the final bytes
	ErrUploadFailed = errors.New("upload failed")
)

// StoreError represents an error from a content-store backend. Backends wrap
// transport and engine failures in StoreError so callers can log one
// diagnostic line and treat the operation as failed without inspecting
// backend-specific error types.
type StoreError struct {
	Entity string // "product", "post", "site_content"
	Op     string
	Err    error
}

func (e *StoreError) Error() string {
	return fmt.Sprintf("store operation %s failed for %s: %v", e.Op, e.Entity, e.Err)
}

func (e *StoreError) Unwrap() error {
	return e.Err
}

// MediaError represents an error from the media ingest pipeline or a blob
// store backend.
type MediaError struct {
	Key string
	Op  string
	Err error
}

func (e *MediaError) Error() string {
	return fmt.Sprintf("media operation %s failed for %q: %v", e.Op, e.Key, e.Err)
}

func (e *MediaError) Unwrap() error {
	return e.Err
}

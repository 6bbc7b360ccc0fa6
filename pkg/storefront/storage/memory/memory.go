// Package memory provides an in-memory blob store for tests and development.
package memory

import (
	"bytes"
	"context"
	"errors"
	"io"
	"sync"
)

type object struct {
	data     []byte
	mimeType string
}

// Backend is an in-memory implementation of the storefront.BlobStore interface
type Backend struct {
	mu      sync.RWMutex
	objects map[string]object
}

// New creates a new in-memory storage backend
func New() *Backend {
	return &Backend{objects: make(map[string]object)}
}

func (b *Backend) Upload(ctx context.Context, objectKey, mimeType string, reader io.Reader) error {
	data, err := io.ReadAll(reader)
	if err != nil {
		return err
	}

	b.mu.Lock()
	defer b.mu.Unlock()
	b.objects[objectKey] = object{data: data, mimeType: mimeType}
	return nil
}

func (b *Backend) Download(ctx context.Context, objectKey string) (io.ReadCloser, error) {
	b.mu.RLock()
	defer b.mu.RUnlock()

	obj, exists := b.objects[objectKey]
	if !exists {
		return nil, errors.New("object not found")
	}
	return io.NopCloser(bytes.NewReader(obj.data)), nil
}

func (b *Backend) Delete(ctx context.Context, objectKey string) error {
	b.mu.Lock()
	defer b.mu.Unlock()
	delete(b.objects, objectKey)
	return nil
}

func (b *Backend) PublicURL(objectKey string) string {
	return objectKey
}

func (b *Backend) RefToKey(ref string) (string, bool) {
	return ref, ref != ""
}

// MimeType reports the stored content type for objectKey. Test helper.
func (b *Backend) MimeType(objectKey string) (string, bool) {
	b.mu.RLock()
	defer b.mu.RUnlock()
	obj, exists := b.objects[objectKey]
	return obj.mimeType, exists
}

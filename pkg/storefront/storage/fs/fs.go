// Package fs provides a filesystem blob store backed by a served uploads
// directory. References are bare filenames (optionally prefixed with a URL
// path), so they resolve against whatever route serves the directory.
package fs

import (
	"context"
	"errors"
	"fmt"
	"io"
	"os"
	"path/filepath"
	"strings"
)

// Config options for the filesystem backend
type Config struct {
	BaseDir   string // Base directory for storing files
	URLPrefix string // Optional URL prefix prepended to references, e.g. "/uploads"
}

// Backend is a filesystem implementation of the storefront.BlobStore interface
type Backend struct {
	baseDir   string
	urlPrefix string
}

// New creates a new filesystem storage backend, creating BaseDir if needed.
func New(config Config) (*Backend, error) {
	if config.BaseDir == "" {
		return nil, errors.New("base directory is required")
	}

	if err := os.MkdirAll(config.BaseDir, 0755); err != nil {
		return nil, fmt.Errorf("failed to create base directory: %w", err)
	}

	return &Backend{
		baseDir:   config.BaseDir,
		urlPrefix: strings.TrimSuffix(config.URLPrefix, "/"),
	}, nil
}

// BaseDir returns the directory files are stored under, so the web tier can
// serve it.
func (b *Backend) BaseDir() string {
	return b.baseDir
}

func (b *Backend) Upload(ctx context.Context, objectKey, mimeType string, reader io.Reader) error {
	filePath, err := b.safeJoin(objectKey)
	if err != nil {
		return err
	}

	file, err := os.Create(filePath)
	if err != nil {
		return fmt.Errorf("failed to create file: %w", err)
	}

	if _, err := io.Copy(file, reader); err != nil {
		file.Close()
		os.Remove(filePath)
		return fmt.Errorf("failed to write file: %w", err)
	}

	if err := file.Close(); err != nil {
		os.Remove(filePath)
		return fmt.Errorf("failed to close file: %w", err)
	}
	return nil
}

func (b *Backend) Download(ctx context.Context, objectKey string) (io.ReadCloser, error) {
	filePath, err := b.safeJoin(objectKey)
	if err != nil {
		return nil, err
	}

	file, err := os.Open(filePath)
	if os.IsNotExist(err) {
		return nil, errors.New("object not found")
	} else if err != nil {
		return nil, fmt.Errorf("failed to open file: %w", err)
	}
	return file, nil
}

func (b *Backend) Delete(ctx context.Context, objectKey string) error {
	filePath, err := b.safeJoin(objectKey)
	if err != nil {
		return err
	}

	if err := os.Remove(filePath); err != nil && !os.IsNotExist(err) {
		return fmt.Errorf("failed to delete file: %w", err)
	}
	return nil
}

func (b *Backend) PublicURL(objectKey string) string {
	if b.urlPrefix == "" {
		return objectKey
	}
	return b.urlPrefix + "/" + objectKey
}

func (b *Backend) RefToKey(ref string) (string, bool) {
	if b.urlPrefix != "" {
		if key, found := strings.CutPrefix(ref, b.urlPrefix+"/"); found {
			return key, true
		}
	}
	if ref == "" || strings.Contains(ref, "/") {
		return "", false
	}
	return ref, true
}

// safeJoin resolves objectKey under baseDir and rejects directory traversal.
func (b *Backend) safeJoin(objectKey string) (string, error) {
	absBase, err := filepath.Abs(b.baseDir)
	if err != nil {
		return "", fmt.Errorf("invalid base path: %w", err)
	}

	absPath, err := filepath.Abs(filepath.Join(b.baseDir, objectKey))
	if err != nil {
		return "", fmt.Errorf("invalid path: %w", err)
	}

	if !strings.HasPrefix(absPath, absBase+string(filepath.Separator)) {
		return "", errors.New("path traversal attempt")
	}
	return absPath, nil
}

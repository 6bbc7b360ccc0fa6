// Package supabase provides a blob store on Supabase Storage. Objects live
// under a fixed sub-path inside one bucket; references are the deterministic
// public URLs Supabase serves for public buckets.
package supabase

import (
	"context"
	"errors"
	"fmt"
	"io"
	"net/http"
	"strings"
	"time"
)

// objectPrefix is the fixed sub-path inside the bucket.
const objectPrefix = "profile_images"

const requestTimeout = 10 * time.Second

// Config options for the Supabase Storage backend
type Config struct {
	URL        string // project base URL, e.g. https://xyz.supabase.co
	APIKey     string
	Bucket     string
	HTTPClient *http.Client
}

// Backend is a Supabase Storage implementation of the storefront.BlobStore interface
type Backend struct {
	baseURL    string
	apiKey     string
	bucket     string
	httpClient *http.Client
}

// New creates a new Supabase Storage backend
func New(config Config) (*Backend, error) {
	if config.URL == "" {
		return nil, errors.New("URL is required")
	}
	if config.APIKey == "" {
		return nil, errors.New("APIKey is required")
	}
	if config.Bucket == "" {
		return nil, errors.New("bucket name is required")
	}

	httpClient := config.HTTPClient
	if httpClient == nil {
		httpClient = &http.Client{Timeout: requestTimeout}
	}

	return &Backend{
		baseURL:    strings.TrimSuffix(config.URL, "/"),
		apiKey:     config.APIKey,
		bucket:     config.Bucket,
		httpClient: httpClient,
	}, nil
}

func (b *Backend) objectPath(objectKey string) string {
	return objectPrefix + "/" + objectKey
}

// Upload stores the bytes with overwrite-if-exists semantics. Supabase
// answers 409 when the object exists and upsert is refused; with the
// x-upsert header that is still possible on some storage versions, so a 409
// is treated as a soft success.
func (b *Backend) Upload(ctx context.Context, objectKey, mimeType string, reader io.Reader) error {
	reqURL := fmt.Sprintf("%s/storage/v1/object/%s/%s", b.baseURL, b.bucket, b.objectPath(objectKey))

	req, err := http.NewRequestWithContext(ctx, http.MethodPost, reqURL, reader)
	if err != nil {
		return fmt.Errorf("create request: %w", err)
	}
	b.setHeaders(req)
	req.Header.Set("x-upsert", "true")
	if mimeType != "" {
		req.Header.Set("Content-Type", mimeType)
	}

	resp, err := b.httpClient.Do(req)
	if err != nil {
		return fmt.Errorf("http request: %w", err)
	}
	defer resp.Body.Close()
	io.Copy(io.Discard, resp.Body)

	if resp.StatusCode == http.StatusConflict {
		return nil
	}
	if resp.StatusCode < 200 || resp.StatusCode > 299 {
		return fmt.Errorf("upload %s: status %d", objectKey, resp.StatusCode)
	}
	return nil
}

func (b *Backend) Download(ctx context.Context, objectKey string) (io.ReadCloser, error) {
	reqURL := fmt.Sprintf("%s/storage/v1/object/%s/%s", b.baseURL, b.bucket, b.objectPath(objectKey))

	req, err := http.NewRequestWithContext(ctx, http.MethodGet, reqURL, nil)
	if err != nil {
		return nil, fmt.Errorf("create request: %w", err)
	}
	b.setHeaders(req)

	resp, err := b.httpClient.Do(req)
	if err != nil {
		return nil, fmt.Errorf("http request: %w", err)
	}
	if resp.StatusCode == http.StatusNotFound {
		resp.Body.Close()
		return nil, errors.New("object not found")
	}
	if resp.StatusCode < 200 || resp.StatusCode > 299 {
		resp.Body.Close()
		return nil, fmt.Errorf("download %s: status %d", objectKey, resp.StatusCode)
	}
	return resp.Body, nil
}

func (b *Backend) Delete(ctx context.Context, objectKey string) error {
	reqURL := fmt.Sprintf("%s/storage/v1/object/%s/%s", b.baseURL, b.bucket, b.objectPath(objectKey))

	req, err := http.NewRequestWithContext(ctx, http.MethodDelete, reqURL, nil)
	if err != nil {
		return fmt.Errorf("create request: %w", err)
	}
	b.setHeaders(req)

	resp, err := b.httpClient.Do(req)
	if err != nil {
		return fmt.Errorf("http request: %w", err)
	}
	defer resp.Body.Close()
	io.Copy(io.Discard, resp.Body)

	if resp.StatusCode == http.StatusNotFound {
		return nil
	}
	if resp.StatusCode < 200 || resp.StatusCode > 299 {
		return fmt.Errorf("delete %s: status %d", objectKey, resp.StatusCode)
	}
	return nil
}

// PublicURL returns the deterministic public URL: base storage URL + bucket
// + object path. The bucket must be public for the URL to resolve.
func (b *Backend) PublicURL(objectKey string) string {
	return fmt.Sprintf("%s/storage/v1/object/public/%s/%s", b.baseURL, b.bucket, b.objectPath(objectKey))
}

func (b *Backend) RefToKey(ref string) (string, bool) {
	base := fmt.Sprintf("%s/storage/v1/object/public/%s/%s/", b.baseURL, b.bucket, objectPrefix)
	key, found := strings.CutPrefix(ref, base)
	if !found || key == "" {
		return "", false
	}
	return key, true
}

func (b *Backend) setHeaders(req *http.Request) {
	req.Header.Set("apikey", b.apiKey)
	req.Header.Set("Authorization", "Bearer "+b.apiKey)
}

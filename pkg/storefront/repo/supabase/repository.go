// Package supabase implements storefront.Store against the Supabase
// PostgREST API. Every operation is one HTTP call with a fixed timeout;
// transport failures and non-2xx responses are logged and wrapped in
// *storefront.StoreError — nothing below this boundary panics or leaks
// backend-specific error types to callers.
package supabase

import (
	"bytes"
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"log/slog"
	"net/http"
	"net/url"
	"strings"
	"time"

	"github.com/google/uuid"
	"github.com/royal-radiance/storefront/pkg/storefront"
)

// requestTimeout bounds every call to the remote store.
const requestTimeout = 10 * time.Second

// Config holds client configuration.
type Config struct {
	URL        string // project base URL, e.g. https://xyz.supabase.co
	APIKey     string
	HTTPClient *http.Client
}

// Repository implements storefront.Store using the Supabase REST API
type Repository struct {
	baseURL    string
	apiKey     string
	httpClient *http.Client
}

// New creates a new Supabase repository.
func New(cfg Config) (*Repository, error) {
	if cfg.URL == "" {
		return nil, errors.New("URL is required")
	}
	if cfg.APIKey == "" {
		return nil, errors.New("APIKey is required")
	}

	httpClient := cfg.HTTPClient
	if httpClient == nil {
		httpClient = &http.Client{Timeout: requestTimeout}
	}

	return &Repository{
		baseURL:    strings.TrimSuffix(cfg.URL, "/"),
		apiKey:     cfg.APIKey,
		httpClient: httpClient,
	}, nil
}

// Wire row shapes. Column names are fixed by the deployed schema.

type productRow struct {
	ID        uuid.UUID `json:"id"`
	Name      string    `json:"name"`
	ShortDesc string    `json:"short_desc"`
	Price     float64   `json:"price"`
	Image     *string   `json:"image"`
	CreatedAt time.Time `json:"created_at"`
}

type postRow struct {
	ID        uuid.UUID `json:"id"`
	Title     string    `json:"title"`
	Excerpt   string    `json:"excerpt"`
	Content   string    `json:"content"`
	Image     *string   `json:"image"`
	CreatedAt time.Time `json:"created_at"`
}

type siteContentRow struct {
	Key       string    `json:"key"`
	Value     string    `json:"value"`
	CreatedAt time.Time `json:"created_at"`
	UpdatedAt time.Time `json:"updated_at"`
}

// Product operations

func (r *Repository) ListProducts(ctx context.Context) ([]*storefront.Product, error) {
	body, err := r.do(ctx, http.MethodGet, "products", url.Values{
		"select": {"*"},
		"order":  {"created_at.desc"},
	}, nil, nil)
	if err != nil {
		return nil, r.fail("product", "list", err)
	}

	var rows []productRow
	if err := json.Unmarshal(body, &rows); err != nil {
		return nil, r.fail("product", "list", fmt.Errorf("decode response: %w", err))
	}

	products := make([]*storefront.Product, 0, len(rows))
	for _, row := range rows {
		products = append(products, row.toProduct())
	}
	return products, nil
}

func (r *Repository) GetProduct(ctx context.Context, id uuid.UUID) (*storefront.Product, error) {
	body, err := r.do(ctx, http.MethodGet, "products", url.Values{
		"select": {"*"},
		"id":     {"eq." + id.String()},
	}, nil, nil)
	if err != nil {
		return nil, r.fail("product", "get", err)
	}

	var rows []productRow
	if err := json.Unmarshal(body, &rows); err != nil {
		return nil, r.fail("product", "get", fmt.Errorf("decode response: %w", err))
	}
	if len(rows) == 0 {
		return nil, storefront.ErrProductNotFound
	}
	return rows[0].toProduct(), nil
}

func (r *Repository) CreateProduct(ctx context.Context, product *storefront.Product) error {
	payload := productRow{
		ID:        product.ID,
		Name:      product.Name,
		ShortDesc: product.ShortDesc,
		Price:     product.Price,
		CreatedAt: product.CreatedAt,
	}
	if product.ImageRef != "" {
		payload.Image = &product.ImageRef
	}

	_, err := r.do(ctx, http.MethodPost, "products", nil, payload, map[string]string{
		"Prefer": "return=minimal",
	})
	if err != nil {
		return r.fail("product", "create", err)
	}
	return nil
}

func (r *Repository) DeleteProduct(ctx context.Context, id uuid.UUID) error {
	deleted, err := r.deleteByID(ctx, "products", id)
	if err != nil {
		return r.fail("product", "delete", err)
	}
	if !deleted {
		return storefront.ErrProductNotFound
	}
	return nil
}

// Blog post operations

func (r *Repository) ListPosts(ctx context.Context) ([]*storefront.BlogPost, error) {
	body, err := r.do(ctx, http.MethodGet, "blog_posts", url.Values{
		"select": {"*"},
		"order":  {"created_at.desc"},
	}, nil, nil)
	if err != nil {
		return nil, r.fail("post", "list", err)
	}

	var rows []postRow
	if err := json.Unmarshal(body, &rows); err != nil {
		return nil, r.fail("post", "list", fmt.Errorf("decode response: %w", err))
	}

	posts := make([]*storefront.BlogPost, 0, len(rows))
	for _, row := range rows {
		posts = append(posts, row.toPost())
	}
	return posts, nil
}

func (r *Repository) GetPost(ctx context.Context, id uuid.UUID) (*storefront.BlogPost, error) {
	body, err := r.do(ctx, http.MethodGet, "blog_posts", url.Values{
		"select": {"*"},
		"id":     {"eq." + id.String()},
	}, nil, nil)
	if err != nil {
		return nil, r.fail("post", "get", err)
	}

	var rows []postRow
	if err := json.Unmarshal(body, &rows); err != nil {
		return nil, r.fail("post", "get", fmt.Errorf("decode response: %w", err))
	}
	if len(rows) == 0 {
		return nil, storefront.ErrPostNotFound
	}
	return rows[0].toPost(), nil
}

func (r *Repository) CreatePost(ctx context.Context, post *storefront.BlogPost) error {
	payload := postRow{
		ID:        post.ID,
		Title:     post.Title,
		Excerpt:   post.Excerpt,
		Content:   post.Body,
		CreatedAt: post.CreatedAt,
	}
	if post.ImageRef != "" {
		payload.Image = &post.ImageRef
	}

	_, err := r.do(ctx, http.MethodPost, "blog_posts", nil, payload, map[string]string{
		"Prefer": "return=minimal",
	})
	if err != nil {
		return r.fail("post", "create", err)
	}
	return nil
}

func (r *Repository) DeletePost(ctx context.Context, id uuid.UUID) error {
	deleted, err := r.deleteByID(ctx, "blog_posts", id)
	if err != nil {
		return r.fail("post", "delete", err)
	}
	if !deleted {
		return storefront.ErrPostNotFound
	}
	return nil
}

// Site content operations

func (r *Repository) GetSiteContent(ctx context.Context, key string) (*storefront.SiteContent, error) {
	body, err := r.do(ctx, http.MethodGet, "site_content", url.Values{
		"select": {"*"},
		"key":    {"eq." + key},
	}, nil, nil)
	if err != nil {
		return nil, r.fail("site_content", "get", err)
	}

	var rows []siteContentRow
	if err := json.Unmarshal(body, &rows); err != nil {
		return nil, r.fail("site_content", "get", fmt.Errorf("decode response: %w", err))
	}
	if len(rows) == 0 {
		return nil, storefront.ErrSiteContentNotFound
	}

	row := rows[0]
	return &storefront.SiteContent{
		Key:       row.Key,
		Value:     row.Value,
		CreatedAt: row.CreatedAt,
		UpdatedAt: row.UpdatedAt,
	}, nil
}

func (r *Repository) SetSiteContent(ctx context.Context, key, value string) error {
	now := time.Now().UTC()
	payload := siteContentRow{Key: key, Value: value, CreatedAt: now, UpdatedAt: now}

	// Upsert on the key so a first write creates the row.
	_, err := r.do(ctx, http.MethodPost, "site_content", url.Values{
		"on_conflict": {"key"},
	}, payload, map[string]string{
		"Prefer": "resolution=merge-duplicates,return=minimal",
	})
	if err != nil {
		return r.fail("site_content", "set", err)
	}
	return nil
}

func (r *Repository) EnsureSiteContent(ctx context.Context, key, defaultValue string) error {
	now := time.Now().UTC()
	payload := siteContentRow{Key: key, Value: defaultValue, CreatedAt: now, UpdatedAt: now}

	// ignore-duplicates keeps an existing row (and any admin edit) intact,
	// so concurrent cold starts cannot clobber each other.
	_, err := r.do(ctx, http.MethodPost, "site_content", url.Values{
		"on_conflict": {"key"},
	}, payload, map[string]string{
		"Prefer": "resolution=ignore-duplicates,return=minimal",
	})
	if err != nil {
		return r.fail("site_content", "ensure", err)
	}
	return nil
}

// Internal helpers

func (row productRow) toProduct() *storefront.Product {
	product := &storefront.Product{
		ID:        row.ID,
		Name:      row.Name,
		ShortDesc: row.ShortDesc,
		Price:     row.Price,
		CreatedAt: row.CreatedAt,
	}
	if row.Image != nil {
		product.ImageRef = *row.Image
	}
	return product
}

func (row postRow) toPost() *storefront.BlogPost {
	post := &storefront.BlogPost{
		ID:        row.ID,
		Title:     row.Title,
		Excerpt:   row.Excerpt,
		Body:      row.Content,
		CreatedAt: row.CreatedAt,
	}
	if row.Image != nil {
		post.ImageRef = *row.Image
	}
	return post
}

// deleteByID issues a DELETE with an id-equality filter, asking for the
// deleted representation so a no-op delete is distinguishable.
func (r *Repository) deleteByID(ctx context.Context, table string, id uuid.UUID) (bool, error) {
	body, err := r.do(ctx, http.MethodDelete, table, url.Values{
		"id": {"eq." + id.String()},
	}, nil, map[string]string{
		"Prefer": "return=representation",
	})
	if err != nil {
		return false, err
	}

	var rows []json.RawMessage
	if err := json.Unmarshal(body, &rows); err != nil {
		return false, fmt.Errorf("decode response: %w", err)
	}
	return len(rows) > 0, nil
}

// do performs one PostgREST request. Success is judged by status family,
// not body inspection.
func (r *Repository) do(ctx context.Context, method, table string, params url.Values, payload any, headers map[string]string) ([]byte, error) {
	ctx, cancel := context.WithTimeout(ctx, requestTimeout)
	defer cancel()

	reqURL := fmt.Sprintf("%s/rest/v1/%s", r.baseURL, table)
	if len(params) > 0 {
		reqURL += "?" + params.Encode()
	}

	var reqBody io.Reader
	if payload != nil {
		data, err := json.Marshal(payload)
		if err != nil {
			return nil, fmt.Errorf("marshal payload: %w", err)
		}
		reqBody = bytes.NewReader(data)
	}

	req, err := http.NewRequestWithContext(ctx, method, reqURL, reqBody)
	if err != nil {
		return nil, fmt.Errorf("create request: %w", err)
	}

	req.Header.Set("apikey", r.apiKey)
	req.Header.Set("Authorization", "Bearer "+r.apiKey)
	req.Header.Set("Accept", "application/json")
	if payload != nil {
		req.Header.Set("Content-Type", "application/json")
	}
	for k, v := range headers {
		req.Header.Set(k, v)
	}

	resp, err := r.httpClient.Do(req)
	if err != nil {
		return nil, fmt.Errorf("http request: %w", err)
	}
	defer resp.Body.Close()

	body, err := io.ReadAll(resp.Body)
	if err != nil {
		return nil, fmt.Errorf("read response: %w", err)
	}

	if resp.StatusCode < 200 || resp.StatusCode > 299 {
		return nil, fmt.Errorf("%s %s: status %d", method, table, resp.StatusCode)
	}
	return body, nil
}

// fail logs one diagnostic line and wraps the error for the caller.
func (r *Repository) fail(entity, op string, err error) error {
	slog.Error("supabase request failed", "entity", entity, "op", op, "err", err)
	return &storefront.StoreError{Entity: entity, Op: op, Err: err}
}

package memory

import (
	"context"
	"sort"
	"sync"
	"time"

	"github.com/google/uuid"
	"github.com/royal-radiance/storefront/pkg/storefront"
)

// Repository implements storefront.Store using in-memory storage
type Repository struct {
	mu          sync.RWMutex
	products    map[uuid.UUID]*storefront.Product
	posts       map[uuid.UUID]*storefront.BlogPost
	siteContent map[string]*storefront.SiteContent
}

// New creates a new in-memory repository
func New() storefront.Store {
	return &Repository{
		products:    make(map[uuid.UUID]*storefront.Product),
		posts:       make(map[uuid.UUID]*storefront.BlogPost),
		siteContent: make(map[string]*storefront.SiteContent),
	}
}

// Product operations

func (r *Repository) ListProducts(ctx context.Context) ([]*storefront.Product, error) {
	r.mu.RLock()
	defer r.mu.RUnlock()

	result := make([]*storefront.Product, 0, len(r.products))
	for _, product := range r.products {
		productCopy := *product
		result = append(result, &productCopy)
	}

	// Sort by created_at descending
	sort.Slice(result, func(i, j int) bool {
		return result[i].CreatedAt.After(result[j].CreatedAt)
	})

	return result, nil
}

func (r *Repository) GetProduct(ctx context.Context, id uuid.UUID) (*storefront.Product, error) {
	r.mu.RLock()
	defer r.mu.RUnlock()

	product, exists := r.products[id]
	if !exists {
		return nil, storefront.ErrProductNotFound
	}

	productCopy := *product
	return &productCopy, nil
}

func (r *Repository) CreateProduct(ctx context.Context, product *storefront.Product) error {
	r.mu.Lock()
	defer r.mu.Unlock()

	// Create a copy to avoid external modifications
	productCopy := *product
	r.products[product.ID] = &productCopy

	return nil
}

func (r *Repository) DeleteProduct(ctx context.Context, id uuid.UUID) error {
	r.mu.Lock()
	defer r.mu.Unlock()

	if _, exists := r.products[id]; !exists {
		return storefront.ErrProductNotFound
	}
	delete(r.products, id)
	return nil
}

// Blog post operations

func (r *Repository) ListPosts(ctx context.Context) ([]*storefront.BlogPost, error) {
	r.mu.RLock()
	defer r.mu.RUnlock()

	result := make([]*storefront.BlogPost, 0, len(r.posts))
	for _, post := range r.posts {
		postCopy := *post
		result = append(result, &postCopy)
	}

	sort.Slice(result, func(i, j int) bool {
		return result[i].CreatedAt.After(result[j].CreatedAt)
	})

	return result, nil
}

func (r *Repository) GetPost(ctx context.Context, id uuid.UUID) (*storefront.BlogPost, error) {
	r.mu.RLock()
	defer r.mu.RUnlock()

	post, exists := r.posts[id]
	if !exists {
		return nil, storefront.ErrPostNotFound
	}

	postCopy := *post
	return &postCopy, nil
}

func (r *Repository) CreatePost(ctx context.Context, post *storefront.BlogPost) error {
	r.mu.Lock()
	defer r.mu.Unlock()

	postCopy := *post
	r.posts[post.ID] = &postCopy

	return nil
}

func (r *Repository) DeletePost(ctx context.Context, id uuid.UUID) error {
	r.mu.Lock()
	defer r.mu.Unlock()

	if _, exists := r.posts[id]; !exists {
		return storefront.ErrPostNotFound
	}
	delete(r.posts, id)
	return nil
}

// Site content operations

func (r *Repository) GetSiteContent(ctx context.Context, key string) (*storefront.SiteContent, error) {
	r.mu.RLock()
	defer r.mu.RUnlock()

	content, exists := r.siteContent[key]
	if !exists {
		return nil, storefront.ErrSiteContentNotFound
	}

	contentCopy := *content
	return &contentCopy, nil
}

func (r *Repository) SetSiteContent(ctx context.Context, key, value string) error {
	r.mu.Lock()
	defer r.mu.Unlock()

	now := time.Now().UTC()
	if content, exists := r.siteContent[key]; exists {
		content.Value = value
		content.UpdatedAt = now
		return nil
	}

	r.siteContent[key] = &storefront.SiteContent{
		Key:       key,
		Value:     value,
		CreatedAt: now,
		UpdatedAt: now,
	}
	return nil
}

func (r *Repository) EnsureSiteContent(ctx context.Context, key, defaultValue string) error {
	r.mu.Lock()
	defer r.mu.Unlock()

	if _, exists := r.siteContent[key]; exists {
		return nil
	}

	now := time.Now().UTC()
	r.siteContent[key] = &storefront.SiteContent{
		Key:       key,
		Value:     defaultValue,
		CreatedAt: now,
		UpdatedAt: now,
	}
	return nil
}

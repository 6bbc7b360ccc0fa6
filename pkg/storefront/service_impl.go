package storefront

import (
	"context"
	"fmt"
	"log/slog"
	"strings"
	"time"

	"github.com/google/uuid"
)

// service implements the Service interface
type service struct {
	store        Store
	blobs        BlobStore
	processImage bool
	now          func() time.Time
}

// Option represents a functional option for configuring the service
type Option func(*service)

// WithStore sets the content-store backend for the service
func WithStore(store Store) Option {
	return func(s *service) {
		s.store = store
	}
}

// WithBlobStore sets the media storage backend for the service
func WithBlobStore(blobs BlobStore) Option {
	return func(s *service) {
		s.blobs = blobs
	}
}

// WithImageProcessing toggles resize/re-encode of ingested images. Enabled
// by default; disabling it stores uploads byte-for-byte.
func WithImageProcessing(enabled bool) Option {
	return func(s *service) {
		s.processImage = enabled
	}
}

// WithClock overrides the time source. Used by tests.
func WithClock(now func() time.Time) Option {
	return func(s *service) {
		s.now = now
	}
}

// New creates a new service instance with the given options
func New(options ...Option) (Service, error) {
	s := &service{
		processImage: true,
		now:          time.Now,
	}

	for _, option := range options {
		option(s)
	}

	if s.store == nil {
		return nil, fmt.Errorf("store is required")
	}

	return s, nil
}

// Product operations

func (s *service) ListProducts(ctx context.Context) ([]*Product, error) {
	return s.store.ListProducts(ctx)
}

func (s *service) GetProduct(ctx context.Context, id uuid.UUID) (*Product, error) {
	return s.store.GetProduct(ctx, id)
}

func (s *service) CreateProduct(ctx context.Context, req CreateProductRequest) (*Product, error) {
	name := strings.TrimSpace(req.Name)
	if name == "" {
		return nil, ErrNameRequired
	}

	product := &Product{
		ID:        uuid.New(),
		Name:      truncate(name, MaxProductNameLen),
		ShortDesc: truncate(strings.TrimSpace(req.ShortDesc), MaxShortDescLen),
		Price:     parsePrice(req.Price),
		ImageRef:  req.ImageRef,
		CreatedAt: s.now().UTC(),
	}

	if err := s.store.CreateProduct(ctx, product); err != nil {
		return nil, err
	}
	return product, nil
}

func (s *service) DeleteProduct(ctx context.Context, id uuid.UUID) error {
	product, err := s.store.GetProduct(ctx, id)
	if err != nil {
		return err
	}

	if err := s.store.DeleteProduct(ctx, id); err != nil {
		return err
	}

	if product.ImageRef != "" {
		s.DeleteImage(ctx, product.ImageRef)
	}
	return nil
}

// Blog post operations

func (s *service) ListPosts(ctx context.Context) ([]*BlogPost, error) {
	return s.store.ListPosts(ctx)
}

func (s *service) GetPost(ctx context.Context, id uuid.UUID) (*BlogPost, error) {
	return s.store.GetPost(ctx, id)
}

func (s *service) CreatePost(ctx context.Context, req CreatePostRequest) (*BlogPost, error) {
	title := strings.TrimSpace(req.Title)
	if title == "" {
		return nil, ErrNameRequired
	}

	post := &BlogPost{
		ID:        uuid.New(),
		Title:     truncate(title, MaxPostTitleLen),
		Excerpt:   truncate(strings.TrimSpace(req.Excerpt), MaxPostExcerptLen),
		Body:      req.Body,
		ImageRef:  req.ImageRef,
		CreatedAt: s.now().UTC(),
	}

	if err := s.store.CreatePost(ctx, post); err != nil {
		return nil, err
	}
	return post, nil
}

func (s *service) DeletePost(ctx context.Context, id uuid.UUID) error {
	post, err := s.store.GetPost(ctx, id)
	if err != nil {
		return err
	}

	if err := s.store.DeletePost(ctx, id); err != nil {
		return err
	}

	if post.ImageRef != "" {
		s.DeleteImage(ctx, post.ImageRef)
	}
	return nil
}

// Site content operations

func (s *service) GetSiteContent(ctx context.Context, key string) (string, error) {
	content, err := s.store.GetSiteContent(ctx, key)
	if err != nil {
		return "", err
	}
	return content.Value, nil
}

func (s *service) SetSiteContent(ctx context.Context, key, value string) error {
	return s.store.SetSiteContent(ctx, truncate(key, MaxSiteContentKey), value)
}

func (s *service) SeedSiteContent(ctx context.Context) error {
	if err := s.store.EnsureSiteContent(ctx, SiteContentAbout, DefaultAboutText); err != nil {
		return err
	}
	return s.store.EnsureSiteContent(ctx, SiteContentSpecialOffer, DefaultSpecialOfferText)
}

func (s *service) Stats(ctx context.Context) (Stats, error) {
	products, err := s.store.ListProducts(ctx)
	if err != nil {
		return Stats{}, err
	}
	posts, err := s.store.ListPosts(ctx)
	if err != nil {
		return Stats{}, err
	}
	return Stats{Products: len(products), Posts: len(posts)}, nil
}

// DeleteImage removes the bytes behind a previously returned reference.
// Best-effort: the entity row's deletion is the action of record, so a
// failed blob removal is logged and swallowed.
func (s *service) DeleteImage(ctx context.Context, ref string) {
	if s.blobs == nil || ref == "" {
		return
	}

	key, ok := s.blobs.RefToKey(ref)
	if !ok {
		slog.Warn("image reference not recognized by active blob store", "ref", ref)
		return
	}

	if err := s.blobs.Delete(ctx, key); err != nil {
		slog.Warn("failed to delete image", "key", key, "err", err)
	}
}

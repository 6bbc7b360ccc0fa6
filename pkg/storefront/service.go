package storefront

import (
	"context"

	"github.com/google/uuid"
)

// Service is the facade the web tier calls. It owns input coercion, image
// ingest, and the best-effort media cleanup that accompanies entity deletes.
type Service interface {
	// Product operations
	ListProducts(ctx context.Context) ([]*Product, error)
	GetProduct(ctx context.Context, id uuid.UUID) (*Product, error)
	CreateProduct(ctx context.Context, req CreateProductRequest) (*Product, error)
	DeleteProduct(ctx context.Context, id uuid.UUID) error

	// Blog post operations
	ListPosts(ctx context.Context) ([]*BlogPost, error)
	GetPost(ctx context.Context, id uuid.UUID) (*BlogPost, error)
	CreatePost(ctx context.Context, req CreatePostRequest) (*BlogPost, error)
	DeletePost(ctx context.Context, id uuid.UUID) error

	// Site content operations
	GetSiteContent(ctx context.Context, key string) (string, error)
	SetSiteContent(ctx context.Context, key, value string) error

	// SeedSiteContent inserts the default "about" and "special_offer" rows
	// if absent. Called once at process start.
	SeedSiteContent(ctx context.Context) error

	// Stats returns entity counts for the admin dashboard.
	Stats(ctx context.Context) (Stats, error)

	// Media operations. IngestImage returns the reference to store on the
	// entity; note there is no atomicity between a successful ingest and
	// the subsequent Create* call, so a failure between the two can leave
	// an orphaned object behind.
	IngestImage(ctx context.Context, req IngestImageRequest) (string, error)
	DeleteImage(ctx context.Context, ref string)
}

// Stats holds entity counts for the admin dashboard.
type Stats struct {
	Products int `json:"products"`
	Posts    int `json:"posts"`
}

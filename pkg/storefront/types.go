package storefront

import (
	"time"

	"github.com/google/uuid"
)

// Field length limits enforced at the Service boundary.
const (
	MaxProductNameLen  = 140
	MaxShortDescLen    = 280
	MaxPostTitleLen    = 200
	MaxPostExcerptLen  = 400
	MaxSiteContentKey  = 80
)

// Site content keys seeded at process start.
const (
	SiteContentAbout        = "about"
	SiteContentSpecialOffer = "special_offer"
)

// Default texts for seeded site content.
const (
	DefaultAboutText        = "Royal Radiance — handcrafted candles to light your moments. Edit this in admin."
	DefaultSpecialOfferText = "Limited-time: Golden Autumn collection — 20% off!"
)

// Product is a catalog item. ID is assigned once at creation and immutable.
// ImageRef is an opaque reference produced by media ingest: a bare filename
// when the filesystem blob store is active, a fully-qualified public URL for
// remote object storage.
type Product struct {
	ID        uuid.UUID `json:"id"`
	Name      string    `json:"name"`
	ShortDesc string    `json:"short_desc,omitempty"`
	Price     float64   `json:"price"`
	ImageRef  string    `json:"image,omitempty"`
	CreatedAt time.Time `json:"created_at"`
}

// BlogPost is an article on the shop blog.
type BlogPost struct {
	ID        uuid.UUID `json:"id"`
	Title     string    `json:"title"`
	Excerpt   string    `json:"excerpt,omitempty"`
	Body      string    `json:"content,omitempty"`
	ImageRef  string    `json:"image,omitempty"`
	CreatedAt time.Time `json:"created_at"`
}

// SiteContent is a keyed free-text snippet (e.g. the about page body).
// Key is the stable identity; rows are seeded once and thereafter only
// updated, never deleted. UpdatedAt is bumped on every write.
type SiteContent struct {
	Key       string    `json:"key"`
	Value     string    `json:"value"`
	CreatedAt time.Time `json:"created_at"`
	UpdatedAt time.Time `json:"updated_at"`
}

// ImageKind selects the resize profile and filename namespace for an upload.
type ImageKind string

const (
	ImageKindCatalog ImageKind = "catalog"
	ImageKindArticle ImageKind = "article"
)

// resize profiles, matching the deployed site's image dimensions
const (
	catalogMaxWidth  = 1200
	catalogMaxHeight = 1200
	catalogQuality   = 85

	articleMaxWidth  = 1400
	articleMaxHeight = 900
	articleQuality   = 80
)

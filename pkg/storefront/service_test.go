package storefront_test

import (
	"context"
	"strings"
	"testing"
	"time"

	"github.com/google/uuid"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/royal-radiance/storefront/pkg/storefront"
	memoryrepo "github.com/royal-radiance/storefront/pkg/storefront/repo/memory"
	memorystorage "github.com/royal-radiance/storefront/pkg/storefront/storage/memory"
)

func newTestService(t *testing.T, opts ...storefront.Option) (storefront.Service, *memorystorage.Backend) {
	t.Helper()

	blobs := memorystorage.New()
	base := []storefront.Option{
		storefront.WithStore(memoryrepo.New()),
		storefront.WithBlobStore(blobs),
		storefront.WithImageProcessing(false),
	}
	svc, err := storefront.New(append(base, opts...)...)
	require.NoError(t, err)
	return svc, blobs
}

func TestNewRequiresStore(t *testing.T) {
	_, err := storefront.New()
	require.Error(t, err)
}

func TestCreateProduct(t *testing.T) {
	ctx := context.Background()

	tests := []struct {
		name      string
		req       storefront.CreateProductRequest
		wantErr   error
		wantName  string
		wantPrice float64
	}{
		{
			name:      "basic product",
			req:       storefront.CreateProductRequest{Name: "Vanilla Glow", Price: "12.50"},
			wantName:  "Vanilla Glow",
			wantPrice: 12.5,
		},
		{
			name:      "name and description are trimmed",
			req:       storefront.CreateProductRequest{Name: "  Amber Nights  ", ShortDesc: " warm ", Price: "8"},
			wantName:  "Amber Nights",
			wantPrice: 8,
		},
		{
			name:    "empty name rejected",
			req:     storefront.CreateProductRequest{Name: "   ", Price: "5"},
			wantErr: storefront.ErrNameRequired,
		},
		{
			name:      "unparsable price becomes zero",
			req:       storefront.CreateProductRequest{Name: "Mystery", Price: "not a number"},
			wantPrice: 0,
			wantName:  "Mystery",
		},
		{
			name:      "negative price becomes zero",
			req:       storefront.CreateProductRequest{Name: "Refund", Price: "-3.20"},
			wantPrice: 0,
			wantName:  "Refund",
		},
		{
			name:      "empty price becomes zero",
			req:       storefront.CreateProductRequest{Name: "Freebie"},
			wantPrice: 0,
			wantName:  "Freebie",
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			svc, _ := newTestService(t)

			product, err := svc.CreateProduct(ctx, tt.req)
			if tt.wantErr != nil {
				require.ErrorIs(t, err, tt.wantErr)
				return
			}
			require.NoError(t, err)
			assert.NotEqual(t, uuid.Nil, product.ID)
			assert.Equal(t, tt.wantName, product.Name)
			assert.Equal(t, tt.wantPrice, product.Price)
			assert.False(t, product.CreatedAt.IsZero())

			got, err := svc.GetProduct(ctx, product.ID)
			require.NoError(t, err)
			assert.Equal(t, product.ID, got.ID)
		})
	}
}

func TestCreateProductTruncatesLongFields(t *testing.T) {
	ctx := context.Background()
	svc, _ := newTestService(t)

	product, err := svc.CreateProduct(ctx, storefront.CreateProductRequest{
		Name:      strings.Repeat("a", 500),
		ShortDesc: strings.Repeat("b", 500),
	})
	require.NoError(t, err)
	assert.Len(t, product.Name, storefront.MaxProductNameLen)
	assert.Len(t, product.ShortDesc, storefront.MaxShortDescLen)
}

func TestListProductsNewestFirst(t *testing.T) {
	ctx := context.Background()

	clock := time.Date(2025, 9, 1, 12, 0, 0, 0, time.UTC)
	svc, _ := newTestService(t, storefront.WithClock(func() time.Time {
		clock = clock.Add(time.Minute)
		return clock
	}))

	for _, name := range []string{"First", "Second", "Third"} {
		_, err := svc.CreateProduct(ctx, storefront.CreateProductRequest{Name: name})
		require.NoError(t, err)
	}

	products, err := svc.ListProducts(ctx)
	require.NoError(t, err)
	require.Len(t, products, 3)
	assert.Equal(t, "Third", products[0].Name)
	assert.Equal(t, "Second", products[1].Name)
	assert.Equal(t, "First", products[2].Name)
}

func TestCreatePost(t *testing.T) {
	ctx := context.Background()
	svc, _ := newTestService(t)

	post, err := svc.CreatePost(ctx, storefront.CreatePostRequest{
		Title:   "Candle care 101",
		Excerpt: "Trim the wick.",
		Body:    "Always trim the wick to 5mm before lighting.",
	})
	require.NoError(t, err)
	assert.Equal(t, "Candle care 101", post.Title)

	got, err := svc.GetPost(ctx, post.ID)
	require.NoError(t, err)
	assert.Equal(t, post.Body, got.Body)

	_, err = svc.CreatePost(ctx, storefront.CreatePostRequest{Title: " "})
	require.ErrorIs(t, err, storefront.ErrNameRequired)
}

func TestDeleteProductRemovesImage(t *testing.T) {
	ctx := context.Background()
	svc, blobs := newTestService(t)

	ref, err := svc.IngestImage(ctx, storefront.IngestImageRequest{
		Filename: "glow.png",
		MimeType: "image/png",
		Kind:     storefront.ImageKindCatalog,
		Reader:   strings.NewReader("not really a png"),
	})
	require.NoError(t, err)

	product, err := svc.CreateProduct(ctx, storefront.CreateProductRequest{
		Name:     "Vanilla Glow",
		ImageRef: ref,
	})
	require.NoError(t, err)

	require.NoError(t, svc.DeleteProduct(ctx, product.ID))

	_, err = svc.GetProduct(ctx, product.ID)
	require.ErrorIs(t, err, storefront.ErrProductNotFound)

	key, ok := blobs.RefToKey(ref)
	require.True(t, ok)
	_, err = blobs.Download(ctx, key)
	require.Error(t, err)
}

func TestDeleteProductNotFound(t *testing.T) {
	svc, _ := newTestService(t)
	err := svc.DeleteProduct(context.Background(), uuid.New())
	require.ErrorIs(t, err, storefront.ErrProductNotFound)
}

func TestDeletePostRemovesImage(t *testing.T) {
	ctx := context.Background()
	svc, blobs := newTestService(t)

	ref, err := svc.IngestImage(ctx, storefront.IngestImageRequest{
		Filename: "wick.jpg",
		MimeType: "image/jpeg",
		Kind:     storefront.ImageKindArticle,
		Reader:   strings.NewReader("jpeg bytes"),
	})
	require.NoError(t, err)

	post, err := svc.CreatePost(ctx, storefront.CreatePostRequest{
		Title:    "Wick trimming",
		ImageRef: ref,
	})
	require.NoError(t, err)

	require.NoError(t, svc.DeletePost(ctx, post.ID))

	key, ok := blobs.RefToKey(ref)
	require.True(t, ok)
	_, err = blobs.Download(ctx, key)
	require.Error(t, err)
}

func TestSiteContentRoundTrip(t *testing.T) {
	ctx := context.Background()
	svc, _ := newTestService(t)

	_, err := svc.GetSiteContent(ctx, "about")
	require.ErrorIs(t, err, storefront.ErrSiteContentNotFound)

	require.NoError(t, svc.SetSiteContent(ctx, "about", "Hand-poured in small batches."))

	value, err := svc.GetSiteContent(ctx, "about")
	require.NoError(t, err)
	assert.Equal(t, "Hand-poured in small batches.", value)
}

func TestSeedSiteContent(t *testing.T) {
	ctx := context.Background()
	svc, _ := newTestService(t)

	require.NoError(t, svc.SeedSiteContent(ctx))

	about, err := svc.GetSiteContent(ctx, storefront.SiteContentAbout)
	require.NoError(t, err)
	assert.Equal(t, storefront.DefaultAboutText, about)

	offer, err := svc.GetSiteContent(ctx, storefront.SiteContentSpecialOffer)
	require.NoError(t, err)
	assert.Equal(t, storefront.DefaultSpecialOfferText, offer)

	// A second seed must not clobber admin edits.
	require.NoError(t, svc.SetSiteContent(ctx, storefront.SiteContentAbout, "edited"))
	require.NoError(t, svc.SeedSiteContent(ctx))

	about, err = svc.GetSiteContent(ctx, storefront.SiteContentAbout)
	require.NoError(t, err)
	assert.Equal(t, "edited", about)
}

func TestStats(t *testing.T) {
	ctx := context.Background()
	svc, _ := newTestService(t)

	stats, err := svc.Stats(ctx)
	require.NoError(t, err)
	assert.Equal(t, storefront.Stats{}, stats)

	_, err = svc.CreateProduct(ctx, storefront.CreateProductRequest{Name: "Vanilla Glow"})
	require.NoError(t, err)
	_, err = svc.CreateProduct(ctx, storefront.CreateProductRequest{Name: "Amber Nights"})
	require.NoError(t, err)
	_, err = svc.CreatePost(ctx, storefront.CreatePostRequest{Title: "Candle care"})
	require.NoError(t, err)

	stats, err = svc.Stats(ctx)
	require.NoError(t, err)
	assert.Equal(t, storefront.Stats{Products: 2, Posts: 1}, stats)
}

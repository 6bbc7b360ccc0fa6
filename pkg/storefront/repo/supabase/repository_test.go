package supabase

import (
	"context"
	"encoding/json"
	"fmt"
	"net/http"
	"net/http/httptest"
	"testing"
	"time"

	"github.com/google/uuid"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/royal-radiance/storefront/pkg/storefront"
)

func newTestRepo(t *testing.T, handler http.HandlerFunc) *Repository {
	t.Helper()

	server := httptest.NewServer(handler)
	t.Cleanup(server.Close)

	repo, err := New(Config{URL: server.URL, APIKey: "test-key"})
	require.NoError(t, err)
	return repo
}

func TestNewRequiresCredentials(t *testing.T) {
	_, err := New(Config{APIKey: "key"})
	require.Error(t, err)
	_, err = New(Config{URL: "https://example.supabase.co"})
	require.Error(t, err)
}

func TestListProducts(t *testing.T) {
	id := uuid.New()
	repo := newTestRepo(t, func(w http.ResponseWriter, r *http.Request) {
		assert.Equal(t, http.MethodGet, r.Method)
		assert.Equal(t, "/rest/v1/products", r.URL.Path)
		assert.Equal(t, "created_at.desc", r.URL.Query().Get("order"))
		assert.Equal(t, "test-key", r.Header.Get("apikey"))
		assert.Equal(t, "Bearer test-key", r.Header.Get("Authorization"))

		fmt.Fprintf(w, `[{"id":%q,"name":"Vanilla Glow","short_desc":"warm","price":12.5,"image":"prod_1_glow.png","created_at":"2025-09-01T12:00:00Z"}]`, id)
	})

	products, err := repo.ListProducts(context.Background())
	require.NoError(t, err)
	require.Len(t, products, 1)
	assert.Equal(t, id, products[0].ID)
	assert.Equal(t, "Vanilla Glow", products[0].Name)
	assert.Equal(t, 12.5, products[0].Price)
	assert.Equal(t, "prod_1_glow.png", products[0].ImageRef)
}

func TestGetProductNotFound(t *testing.T) {
	repo := newTestRepo(t, func(w http.ResponseWriter, r *http.Request) {
		fmt.Fprint(w, `[]`)
	})

	_, err := repo.GetProduct(context.Background(), uuid.New())
	require.ErrorIs(t, err, storefront.ErrProductNotFound)
}

func TestGetProductFiltersByID(t *testing.T) {
	id := uuid.New()
	repo := newTestRepo(t, func(w http.ResponseWriter, r *http.Request) {
		assert.Equal(t, "eq."+id.String(), r.URL.Query().Get("id"))
		fmt.Fprintf(w, `[{"id":%q,"name":"Amber Nights","short_desc":"","price":8,"image":null,"created_at":"2025-09-01T12:00:00Z"}]`, id)
	})

	product, err := repo.GetProduct(context.Background(), id)
	require.NoError(t, err)
	assert.Equal(t, "Amber Nights", product.Name)
	assert.Empty(t, product.ImageRef)
}

func TestCreateProduct(t *testing.T) {
	var got productRow
	repo := newTestRepo(t, func(w http.ResponseWriter, r *http.Request) {
		assert.Equal(t, http.MethodPost, r.Method)
		assert.Equal(t, "/rest/v1/products", r.URL.Path)
		assert.Equal(t, "return=minimal", r.Header.Get("Prefer"))
		require.NoError(t, json.NewDecoder(r.Body).Decode(&got))
		w.WriteHeader(http.StatusCreated)
	})

	product := &storefront.Product{
		ID:        uuid.New(),
		Name:      "Vanilla Glow",
		Price:     12.5,
		ImageRef:  "prod_1_glow.png",
		CreatedAt: time.Date(2025, 9, 1, 12, 0, 0, 0, time.UTC),
	}
	require.NoError(t, repo.CreateProduct(context.Background(), product))
	assert.Equal(t, product.ID, got.ID)
	require.NotNil(t, got.Image)
	assert.Equal(t, "prod_1_glow.png", *got.Image)
}

func TestDeleteProduct(t *testing.T) {
	t.Run("deleted", func(t *testing.T) {
		repo := newTestRepo(t, func(w http.ResponseWriter, r *http.Request) {
			assert.Equal(t, http.MethodDelete, r.Method)
			assert.Equal(t, "return=representation", r.Header.Get("Prefer"))
			fmt.Fprint(w, `[{"id":"x"}]`)
		})
		require.NoError(t, repo.DeleteProduct(context.Background(), uuid.New()))
	})

	t.Run("missing row maps to not found", func(t *testing.T) {
		repo := newTestRepo(t, func(w http.ResponseWriter, r *http.Request) {
			fmt.Fprint(w, `[]`)
		})
		err := repo.DeleteProduct(context.Background(), uuid.New())
		require.ErrorIs(t, err, storefront.ErrProductNotFound)
	})
}

func TestPostRoundTrip(t *testing.T) {
	id := uuid.New()
	repo := newTestRepo(t, func(w http.ResponseWriter, r *http.Request) {
		assert.Equal(t, "/rest/v1/blog_posts", r.URL.Path)
		fmt.Fprintf(w, `[{"id":%q,"title":"Candle care","excerpt":"Trim","content":"Body text","image":null,"created_at":"2025-09-01T12:00:00Z"}]`, id)
	})

	post, err := repo.GetPost(context.Background(), id)
	require.NoError(t, err)
	assert.Equal(t, "Candle care", post.Title)
	assert.Equal(t, "Body text", post.Body)
}

func TestSetSiteContentUpserts(t *testing.T) {
	repo := newTestRepo(t, func(w http.ResponseWriter, r *http.Request) {
		assert.Equal(t, http.MethodPost, r.Method)
		assert.Equal(t, "/rest/v1/site_content", r.URL.Path)
		assert.Equal(t, "key", r.URL.Query().Get("on_conflict"))
		assert.Contains(t, r.Header.Get("Prefer"), "resolution=merge-duplicates")

		var row siteContentRow
		require.NoError(t, json.NewDecoder(r.Body).Decode(&row))
		assert.Equal(t, "about", row.Key)
		assert.Equal(t, "new text", row.Value)
		w.WriteHeader(http.StatusCreated)
	})

	require.NoError(t, repo.SetSiteContent(context.Background(), "about", "new text"))
}

func TestEnsureSiteContentIgnoresDuplicates(t *testing.T) {
	repo := newTestRepo(t, func(w http.ResponseWriter, r *http.Request) {
		assert.Contains(t, r.Header.Get("Prefer"), "resolution=ignore-duplicates")
		w.WriteHeader(http.StatusCreated)
	})

	require.NoError(t, repo.EnsureSiteContent(context.Background(), "special_offer", "default"))
}

func TestServerErrorIsWrapped(t *testing.T) {
	repo := newTestRepo(t, func(w http.ResponseWriter, r *http.Request) {
		http.Error(w, "boom", http.StatusInternalServerError)
	})

	_, err := repo.ListProducts(context.Background())
	var storeErr *storefront.StoreError
	require.ErrorAs(t, err, &storeErr)
	assert.Equal(t, "product", storeErr.Entity)
	assert.Equal(t, "list", storeErr.Op)
}

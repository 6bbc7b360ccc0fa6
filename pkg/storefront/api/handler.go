// Package api exposes the storefront service over HTTP. Public routes serve
// the catalog, blog and site text; admin routes sit behind a bearer token
// issued by the login endpoint.
package api

import (
	"encoding/json"
	"errors"
	"log/slog"
	"net/http"

	"github.com/go-chi/chi/v5"
	"github.com/go-chi/render"
	"github.com/google/uuid"

	"github.com/royal-radiance/storefront/pkg/storefront"
)

// Handler handles HTTP requests for the storefront service
type Handler struct {
	service        storefront.Service
	auth           *Auth
	maxUploadBytes int64
}

// NewHandler creates a new storefront API handler
func NewHandler(service storefront.Service, auth *Auth, maxUploadBytes int64) *Handler {
	if maxUploadBytes <= 0 {
		maxUploadBytes = 4 << 20
	}
	return &Handler{
		service:        service,
		auth:           auth,
		maxUploadBytes: maxUploadBytes,
	}
}

// Routes returns the routes for the storefront API
func (h *Handler) Routes() chi.Router {
	r := chi.NewRouter()

	r.Get("/products", h.ListProducts)
	r.Get("/products/{id}", h.GetProduct)
	r.Get("/posts", h.ListPosts)
	r.Get("/posts/{id}", h.GetPost)
	r.Get("/site/{key}", h.GetSiteContent)

	r.Post("/admin/login", h.Login)

	r.Group(func(r chi.Router) {
		r.Use(h.auth.Verifier())
		r.Use(h.auth.RequireAdmin)

		r.Post("/admin/products", h.CreateProduct)
		r.Delete("/admin/products/{id}", h.DeleteProduct)
		r.Post("/admin/posts", h.CreatePost)
		r.Delete("/admin/posts/{id}", h.DeletePost)
		r.Put("/admin/site/{key}", h.SetSiteContent)
		r.Get("/admin/stats", h.Stats)
	})

	return r
}

// ListProducts returns all products, newest first. Backend failures degrade
// to an empty list so the public pages still render.
func (h *Handler) ListProducts(w http.ResponseWriter, r *http.Request) {
	products, err := h.service.ListProducts(r.Context())
	if err != nil {
		slog.Error("Failed to list products", "error", err)
		products = []*storefront.Product{}
	}
	if products == nil {
		products = []*storefront.Product{}
	}
	render.JSON(w, r, products)
}

// GetProduct returns a single product by ID
func (h *Handler) GetProduct(w http.ResponseWriter, r *http.Request) {
	id, err := uuid.Parse(chi.URLParam(r, "id"))
	if err != nil {
		renderError(w, r, http.StatusBadRequest, "invalid product ID")
		return
	}

	product, err := h.service.GetProduct(r.Context(), id)
	if err != nil {
		h.renderServiceError(w, r, err, "product")
		return
	}
	render.JSON(w, r, product)
}

// ListPosts returns all blog posts, newest first
func (h *Handler) ListPosts(w http.ResponseWriter, r *http.Request) {
	posts, err := h.service.ListPosts(r.Context())
	if err != nil {
		slog.Error("Failed to list posts", "error", err)
		posts = []*storefront.BlogPost{}
	}
	if posts == nil {
		posts = []*storefront.BlogPost{}
	}
	render.JSON(w, r, posts)
}

// GetPost returns a single blog post by ID
func (h *Handler) GetPost(w http.ResponseWriter, r *http.Request) {
	id, err := uuid.Parse(chi.URLParam(r, "id"))
	if err != nil {
		renderError(w, r, http.StatusBadRequest, "invalid post ID")
		return
	}

	post, err := h.service.GetPost(r.Context(), id)
	if err != nil {
		h.renderServiceError(w, r, err, "post")
		return
	}
	render.JSON(w, r, post)
}

// SiteContentResponse is the response body for a site text block
type SiteContentResponse struct {
	Key   string `json:"key"`
	Value string `json:"value"`
}

// GetSiteContent returns the text stored under a key. Missing keys come back
// as an empty value rather than an error.
func (h *Handler) GetSiteContent(w http.ResponseWriter, r *http.Request) {
	key := chi.URLParam(r, "key")
	value, err := h.service.GetSiteContent(r.Context(), key)
	if err != nil && !errors.Is(err, storefront.ErrSiteContentNotFound) {
		slog.Error("Failed to get site content", "key", key, "error", err)
	}
	render.JSON(w, r, SiteContentResponse{Key: key, Value: value})
}

// LoginRequest is the request body for admin login
type LoginRequest struct {
	Password string `json:"password"`
}

// LoginResponse is the response body for a successful admin login
type LoginResponse struct {
	Token string `json:"token"`
}

// Login checks the admin password and returns a bearer token
func (h *Handler) Login(w http.ResponseWriter, r *http.Request) {
	var req LoginRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		renderError(w, r, http.StatusBadRequest, "invalid request body")
		return
	}

	token, err := h.auth.Login(req.Password)
	if err != nil {
		slog.Info("Failed admin login attempt", "remote", r.RemoteAddr)
		renderError(w, r, http.StatusUnauthorized, "invalid credentials")
		return
	}
	render.JSON(w, r, LoginResponse{Token: token})
}

// CreateProduct creates a product from a multipart form. The optional "image"
// file field is ingested before the record is written.
func (h *Handler) CreateProduct(w http.ResponseWriter, r *http.Request) {
	if err := r.ParseMultipartForm(h.maxUploadBytes); err != nil {
		renderError(w, r, http.StatusBadRequest, "invalid multipart form")
		return
	}

	imageRef, ok := h.ingestFormImage(w, r, storefront.ImageKindCatalog)
	if !ok {
		return
	}

	product, err := h.service.CreateProduct(r.Context(), storefront.CreateProductRequest{
		Name:      r.FormValue("name"),
		ShortDesc: r.FormValue("short_desc"),
		Price:     r.FormValue("price"),
		ImageRef:  imageRef,
	})
	if err != nil {
		if errors.Is(err, storefront.ErrNameRequired) {
			renderError(w, r, http.StatusBadRequest, "name is required")
			return
		}
		slog.Error("Failed to create product", "error", err)
		renderError(w, r, http.StatusInternalServerError, "failed to create product")
		return
	}

	render.Status(r, http.StatusCreated)
	render.JSON(w, r, product)
}

// DeleteProduct deletes a product and its stored image
func (h *Handler) DeleteProduct(w http.ResponseWriter, r *http.Request) {
	id, err := uuid.Parse(chi.URLParam(r, "id"))
	if err != nil {
		renderError(w, r, http.StatusBadRequest, "invalid product ID")
		return
	}

	if err := h.service.DeleteProduct(r.Context(), id); err != nil {
		h.renderServiceError(w, r, err, "product")
		return
	}
	w.WriteHeader(http.StatusNoContent)
}

// CreatePost creates a blog post from a multipart form
func (h *Handler) CreatePost(w http.ResponseWriter, r *http.Request) {
	if err := r.ParseMultipartForm(h.maxUploadBytes); err != nil {
		renderError(w, r, http.StatusBadRequest, "invalid multipart form")
		return
	}

	imageRef, ok := h.ingestFormImage(w, r, storefront.ImageKindArticle)
	if !ok {
		return
	}

	post, err := h.service.CreatePost(r.Context(), storefront.CreatePostRequest{
		Title:    r.FormValue("title"),
		Excerpt:  r.FormValue("excerpt"),
		Body:     r.FormValue("content"),
		ImageRef: imageRef,
	})
	if err != nil {
		if errors.Is(err, storefront.ErrNameRequired) {
			renderError(w, r, http.StatusBadRequest, "title is required")
			return
		}
		slog.Error("Failed to create post", "error", err)
		renderError(w, r, http.StatusInternalServerError, "failed to create post")
		return
	}

	render.Status(r, http.StatusCreated)
	render.JSON(w, r, post)
}

// DeletePost deletes a blog post and its stored image
func (h *Handler) DeletePost(w http.ResponseWriter, r *http.Request) {
	id, err := uuid.Parse(chi.URLParam(r, "id"))
	if err != nil {
		renderError(w, r, http.StatusBadRequest, "invalid post ID")
		return
	}

	if err := h.service.DeletePost(r.Context(), id); err != nil {
		h.renderServiceError(w, r, err, "post")
		return
	}
	w.WriteHeader(http.StatusNoContent)
}

// SetSiteContentRequest is the request body for updating a site text block
type SetSiteContentRequest struct {
	Value string `json:"value"`
}

// SetSiteContent creates or replaces the text stored under a key
func (h *Handler) SetSiteContent(w http.ResponseWriter, r *http.Request) {
	key := chi.URLParam(r, "key")

	var req SetSiteContentRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		renderError(w, r, http.StatusBadRequest, "invalid request body")
		return
	}

	if err := h.service.SetSiteContent(r.Context(), key, req.Value); err != nil {
		slog.Error("Failed to set site content", "key", key, "error", err)
		renderError(w, r, http.StatusInternalServerError, "failed to save site content")
		return
	}
	render.JSON(w, r, SiteContentResponse{Key: key, Value: req.Value})
}

// Stats returns admin dashboard counters
func (h *Handler) Stats(w http.ResponseWriter, r *http.Request) {
	stats, err := h.service.Stats(r.Context())
	if err != nil {
		slog.Error("Failed to collect stats", "error", err)
		renderError(w, r, http.StatusInternalServerError, "failed to collect stats")
		return
	}
	render.JSON(w, r, stats)
}

// ingestFormImage pulls the optional "image" file out of an already parsed
// multipart form and runs it through the ingest pipeline. The second return
// is false when the handler has written an error response.
func (h *Handler) ingestFormImage(w http.ResponseWriter, r *http.Request, kind storefront.ImageKind) (string, bool) {
	file, header, err := r.FormFile("image")
	if err != nil {
		if errors.Is(err, http.ErrMissingFile) {
			return "", true
		}
		renderError(w, r, http.StatusBadRequest, "invalid image upload")
		return "", false
	}
	defer file.Close()

	if header.Size > h.maxUploadBytes {
		renderError(w, r, http.StatusRequestEntityTooLarge, "image exceeds upload limit")
		return "", false
	}

	ref, err := h.service.IngestImage(r.Context(), storefront.IngestImageRequest{
		Filename: header.Filename,
		MimeType: header.Header.Get("Content-Type"),
		Kind:     kind,
		Reader:   file,
	})
	if err != nil {
		if errors.Is(err, storefront.ErrUnsupportedImageType) {
			renderError(w, r, http.StatusBadRequest, "unsupported image type")
			return "", false
		}
		slog.Error("Failed to ingest image", "filename", header.Filename, "error", err)
		renderError(w, r, http.StatusInternalServerError, "failed to store image")
		return "", false
	}
	return ref, true
}

func (h *Handler) renderServiceError(w http.ResponseWriter, r *http.Request, err error, entity string) {
	switch {
	case errors.Is(err, storefront.ErrProductNotFound), errors.Is(err, storefront.ErrPostNotFound):
		renderError(w, r, http.StatusNotFound, entity+" not found")
	default:
		slog.Error("Request failed", "entity", entity, "error", err)
		renderError(w, r, http.StatusInternalServerError, "internal error")
	}
}

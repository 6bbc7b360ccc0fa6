// Package postgres implements storefront.Store on PostgreSQL via pgx.
package postgres

import (
	"context"
	"embed"
	"errors"
	"fmt"

	"github.com/golang-migrate/migrate/v4"
	_ "github.com/golang-migrate/migrate/v4/database/pgx/v5"
	"github.com/golang-migrate/migrate/v4/source/iofs"
	"github.com/google/uuid"
	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgconn"
	"github.com/jackc/pgx/v5/pgxpool"

	"github.com/royal-radiance/storefront/pkg/storefront"
)

//go:embed migrations/*.sql
var migrationsFS embed.FS

// DBTX is an interface that allows us to use either a database connection or a transaction
type DBTX interface {
	Exec(context.Context, string, ...interface{}) (pgconn.CommandTag, error)
	Query(context.Context, string, ...interface{}) (pgx.Rows, error)
	QueryRow(context.Context, string, ...interface{}) pgx.Row
}

// Repository implements storefront.Store using PostgreSQL
type Repository struct {
	db DBTX
}

// New creates a new PostgreSQL repository
func New(db DBTX) *Repository {
	return &Repository{db: db}
}

// NewWithPool creates a new PostgreSQL repository with connection pool
func NewWithPool(pool *pgxpool.Pool) *Repository {
	return &Repository{db: pool}
}

// Migrate applies pending schema migrations against databaseURL. The URL
// must use a pgx5:// or postgres:// scheme.
func Migrate(databaseURL string) error {
	src, err := iofs.New(migrationsFS, "migrations")
	if err != nil {
		return fmt.Errorf("load migration source: %w", err)
	}

	m, err := migrate.NewWithSourceInstance("iofs", src, databaseURL)
	if err != nil {
		return fmt.Errorf("create migrator: %w", err)
	}
	defer m.Close()

	if err := m.Up(); err != nil && !errors.Is(err, migrate.ErrNoChange) {
		return err
	}
	return nil
}

// uniqueViolation reports whether err is a Postgres duplicate-key failure.
func uniqueViolation(err error) bool {
	var pgErr *pgconn.PgError
	return errors.As(err, &pgErr) && pgErr.Code == "23505"
}

// Product operations

func (r *Repository) ListProducts(ctx context.Context) ([]*storefront.Product, error) {
	rows, err := r.db.Query(ctx, `
		SELECT id, name, short_desc, price, image, created_at
		FROM products ORDER BY created_at DESC`)
	if err != nil {
		return nil, &storefront.StoreError{Entity: "product", Op: "list", Err: err}
	}
	defer rows.Close()

	var products []*storefront.Product
	for rows.Next() {
		var product storefront.Product
		if err := rows.Scan(&product.ID, &product.Name, &product.ShortDesc,
			&product.Price, &product.ImageRef, &product.CreatedAt); err != nil {
			return nil, &storefront.StoreError{Entity: "product", Op: "list", Err: err}
		}
		products = append(products, &product)
	}
	if err := rows.Err(); err != nil {
		return nil, &storefront.StoreError{Entity: "product", Op: "list", Err: err}
	}
	return products, nil
}

func (r *Repository) GetProduct(ctx context.Context, id uuid.UUID) (*storefront.Product, error) {
	var product storefront.Product
	err := r.db.QueryRow(ctx, `
		SELECT id, name, short_desc, price, image, created_at
		FROM products WHERE id = $1`, id).
		Scan(&product.ID, &product.Name, &product.ShortDesc,
			&product.Price, &product.ImageRef, &product.CreatedAt)
	if errors.Is(err, pgx.ErrNoRows) {
		return nil, storefront.ErrProductNotFound
	}
	if err != nil {
		return nil, &storefront.StoreError{Entity: "product", Op: "get", Err: err}
	}
	return &product, nil
}

func (r *Repository) CreateProduct(ctx context.Context, product *storefront.Product) error {
	_, err := r.db.Exec(ctx, `
		INSERT INTO products (id, name, short_desc, price, image, created_at)
		VALUES ($1, $2, $3, $4, $5, $6)`,
		product.ID, product.Name, product.ShortDesc, product.Price,
		product.ImageRef, product.CreatedAt)
	if err != nil {
		return &storefront.StoreError{Entity: "product", Op: "create", Err: err}
	}
	return nil
}

func (r *Repository) DeleteProduct(ctx context.Context, id uuid.UUID) error {
	tag, err := r.db.Exec(ctx, `DELETE FROM products WHERE id = $1`, id)
	if err != nil {
		return &storefront.StoreError{Entity: "product", Op: "delete", Err: err}
	}
	if tag.RowsAffected() == 0 {
		return storefront.ErrProductNotFound
	}
	return nil
}

// Blog post operations

func (r *Repository) ListPosts(ctx context.Context) ([]*storefront.BlogPost, error) {
	rows, err := r.db.Query(ctx, `
		SELECT id, title, excerpt, content, image, created_at
		FROM blog_posts ORDER BY created_at DESC`)
	if err != nil {
		return nil, &storefront.StoreError{Entity: "post", Op: "list", Err: err}
	}
	defer rows.Close()

	var posts []*storefront.BlogPost
	for rows.Next() {
		var post storefront.BlogPost
		if err := rows.Scan(&post.ID, &post.Title, &post.Excerpt,
			&post.Body, &post.ImageRef, &post.CreatedAt); err != nil {
			return nil, &storefront.StoreError{Entity: "post", Op: "list", Err: err}
		}
		posts = append(posts, &post)
	}
	if err := rows.Err(); err != nil {
		return nil, &storefront.StoreError{Entity: "post", Op: "list", Err: err}
	}
	return posts, nil
}

func (r *Repository) GetPost(ctx context.Context, id uuid.UUID) (*storefront.BlogPost, error) {
	var post storefront.BlogPost
	err := r.db.QueryRow(ctx, `
		SELECT id, title, excerpt, content, image, created_at
		FROM blog_posts WHERE id = $1`, id).
		Scan(&post.ID, &post.Title, &post.Excerpt,
			&post.Body, &post.ImageRef, &post.CreatedAt)
	if errors.Is(err, pgx.ErrNoRows) {
		return nil, storefront.ErrPostNotFound
	}
	if err != nil {
		return nil, &storefront.StoreError{Entity: "post", Op: "get", Err: err}
	}
	return &post, nil
}

func (r *Repository) CreatePost(ctx context.Context, post *storefront.BlogPost) error {
	_, err := r.db.Exec(ctx, `
		INSERT INTO blog_posts (id, title, excerpt, content, image, created_at)
		VALUES ($1, $2, $3, $4, $5, $6)`,
		post.ID, post.Title, post.Excerpt, post.Body,
		post.ImageRef, post.CreatedAt)
	if err != nil {
		return &storefront.StoreError{Entity: "post", Op: "create", Err: err}
	}
	return nil
}

func (r *Repository) DeletePost(ctx context.Context, id uuid.UUID) error {
	tag, err := r.db.Exec(ctx, `DELETE FROM blog_posts WHERE id = $1`, id)
	if err != nil {
		return &storefront.StoreError{Entity: "post", Op: "delete", Err: err}
	}
	if tag.RowsAffected() == 0 {
		return storefront.ErrPostNotFound
	}
	return nil
}

// Site content operations

func (r *Repository) GetSiteContent(ctx context.Context, key string) (*storefront.SiteContent, error) {
	var content storefront.SiteContent
	err := r.db.QueryRow(ctx, `
		SELECT key, value, created_at, updated_at
		FROM site_content WHERE key = $1`, key).
		Scan(&content.Key, &content.Value, &content.CreatedAt, &content.UpdatedAt)
	if errors.Is(err, pgx.ErrNoRows) {
		return nil, storefront.ErrSiteContentNotFound
	}
	if err != nil {
		return nil, &storefront.StoreError{Entity: "site_content", Op: "get", Err: err}
	}
	return &content, nil
}

func (r *Repository) SetSiteContent(ctx context.Context, key, value string) error {
	_, err := r.db.Exec(ctx, `
		INSERT INTO site_content (key, value, created_at, updated_at)
		VALUES ($1, $2, NOW(), NOW())
		ON CONFLICT (key) DO UPDATE SET value = EXCLUDED.value, updated_at = NOW()`,
		key, value)
	if err != nil {
		return &storefront.StoreError{Entity: "site_content", Op: "set", Err: err}
	}
	return nil
}

func (r *Repository) EnsureSiteContent(ctx context.Context, key, defaultValue string) error {
	_, err := r.db.Exec(ctx, `
		INSERT INTO site_content (key, value, created_at, updated_at)
		VALUES ($1, $2, NOW(), NOW())
		ON CONFLICT (key) DO NOTHING`,
		key, defaultValue)
	if err != nil {
		// Another starter racing the same seed is fine.
		if uniqueViolation(err) {
			return nil
		}
		return &storefront.StoreError{Entity: "site_content", Op: "ensure", Err: err}
	}
	return nil
}

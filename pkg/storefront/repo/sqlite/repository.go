// Package sqlite implements storefront.Store on an embedded SQLite database.
// Schema migrations are embedded and applied when the database is opened.
package sqlite

import (
	"context"
	"database/sql"
	"embed"
	"errors"
	"fmt"
	"time"

	"github.com/golang-migrate/migrate/v4"
	migratesqlite "github.com/golang-migrate/migrate/v4/database/sqlite"
	"github.com/golang-migrate/migrate/v4/source/iofs"
	"github.com/google/uuid"
	_ "modernc.org/sqlite"

	"github.com/royal-radiance/storefront/pkg/storefront"
)

//go:embed migrations/*.sql
var migrationsFS embed.FS

// Repository implements storefront.Store using SQLite
type Repository struct {
	db *sql.DB
}

// Open opens (creating if necessary) the database at path, runs pending
// migrations and returns the repository. The caller owns Close.
func Open(path string) (*Repository, error) {
	dsn := fmt.Sprintf("file:%s?_pragma=journal_mode(WAL)&_pragma=busy_timeout(5000)", path)
	db, err := sql.Open("sqlite", dsn)
	if err != nil {
		return nil, fmt.Errorf("open database: %w", err)
	}

	if err := db.Ping(); err != nil {
		db.Close()
		return nil, fmt.Errorf("ping database: %w", err)
	}

	if err := runMigrations(db); err != nil {
		db.Close()
		return nil, fmt.Errorf("run migrations: %w", err)
	}

	return &Repository{db: db}, nil
}

// NewWithDB wraps an existing connection without running migrations. Used by
// tests that manage the schema themselves.
func NewWithDB(db *sql.DB) *Repository {
	return &Repository{db: db}
}

// Close closes the underlying database.
func (r *Repository) Close() error {
	return r.db.Close()
}

func runMigrations(db *sql.DB) error {
	src, err := iofs.New(migrationsFS, "migrations")
	if err != nil {
		return fmt.Errorf("load migration source: %w", err)
	}

	driver, err := migratesqlite.WithInstance(db, &migratesqlite.Config{})
	if err != nil {
		return fmt.Errorf("create migration driver: %w", err)
	}

	m, err := migrate.NewWithInstance("iofs", src, "sqlite", driver)
	if err != nil {
		return fmt.Errorf("create migrator: %w", err)
	}

	if err := m.Up(); err != nil && !errors.Is(err, migrate.ErrNoChange) {
		return err
	}
	return nil
}

// Timestamps are stored as RFC3339 text so they survive the round trip
// regardless of driver type mapping.
func encodeTime(t time.Time) string {
	return t.UTC().Format(time.RFC3339Nano)
}

func decodeTime(s string) time.Time {
	t, err := time.Parse(time.RFC3339Nano, s)
	if err != nil {
		return time.Time{}
	}
	return t
}

// Product operations

func (r *Repository) ListProducts(ctx context.Context) ([]*storefront.Product, error) {
	rows, err := r.db.QueryContext(ctx, `
		SELECT id, name, short_desc, price, image, created_at
		FROM products ORDER BY created_at DESC`)
	if err != nil {
		return nil, &storefront.StoreError{Entity: "product", Op: "list", Err: err}
	}
	defer rows.Close()

	var products []*storefront.Product
	for rows.Next() {
		product, err := scanProduct(rows)
		if err != nil {
			return nil, &storefront.StoreError{Entity: "product", Op: "list", Err: err}
		}
		products = append(products, product)
	}
	if err := rows.Err(); err != nil {
		return nil, &storefront.StoreError{Entity: "product", Op: "list", Err: err}
	}
	return products, nil
}

func (r *Repository) GetProduct(ctx context.Context, id uuid.UUID) (*storefront.Product, error) {
	row := r.db.QueryRowContext(ctx, `
		SELECT id, name, short_desc, price, image, created_at
		FROM products WHERE id = ?`, id.String())

	product, err := scanProduct(row)
	if errors.Is(err, sql.ErrNoRows) {
		return nil, storefront.ErrProductNotFound
	}
	if err != nil {
		return nil, &storefront.StoreError{Entity: "product", Op: "get", Err: err}
	}
	return product, nil
}

func (r *Repository) CreateProduct(ctx context.Context, product *storefront.Product) error {
	_, err := r.db.ExecContext(ctx, `
		INSERT INTO products (id, name, short_desc, price, image, created_at)
		VALUES (?, ?, ?, ?, ?, ?)`,
		product.ID.String(), product.Name, product.ShortDesc, product.Price,
		product.ImageRef, encodeTime(product.CreatedAt))
	if err != nil {
		return &storefront.StoreError{Entity: "product", Op: "create", Err: err}
	}
	return nil
}

func (r *Repository) DeleteProduct(ctx context.Context, id uuid.UUID) error {
	result, err := r.db.ExecContext(ctx, `DELETE FROM products WHERE id = ?`, id.String())
	if err != nil {
		return &storefront.StoreError{Entity: "product", Op: "delete", Err: err}
	}
	if n, _ := result.RowsAffected(); n == 0 {
		return storefront.ErrProductNotFound
	}
	return nil
}

// Blog post operations

func (r *Repository) ListPosts(ctx context.Context) ([]*storefront.BlogPost, error) {
	rows, err := r.db.QueryContext(ctx, `
		SELECT id, title, excerpt, content, image, created_at
		FROM blog_posts ORDER BY created_at DESC`)
	if err != nil {
		return nil, &storefront.StoreError{Entity: "post", Op: "list", Err: err}
	}
	defer rows.Close()

	var posts []*storefront.BlogPost
	for rows.Next() {
		post, err := scanPost(rows)
		if err != nil {
			return nil, &storefront.StoreError{Entity: "post", Op: "list", Err: err}
		}
		posts = append(posts, post)
	}
	if err := rows.Err(); err != nil {
		return nil, &storefront.StoreError{Entity: "post", Op: "list", Err: err}
	}
	return posts, nil
}

func (r *Repository) GetPost(ctx context.Context, id uuid.UUID) (*storefront.BlogPost, error) {
	row := r.db.QueryRowContext(ctx, `
		SELECT id, title, excerpt, content, image, created_at
		FROM blog_posts WHERE id = ?`, id.String())

	post, err := scanPost(row)
	if errors.Is(err, sql.ErrNoRows) {
		return nil, storefront.ErrPostNotFound
	}
	if err != nil {
		return nil, &storefront.StoreError{Entity: "post", Op: "get", Err: err}
	}
	return post, nil
}

func (r *Repository) CreatePost(ctx context.Context, post *storefront.BlogPost) error {
	_, err := r.db.ExecContext(ctx, `
		INSERT INTO blog_posts (id, title, excerpt, content, image, created_at)
		VALUES (?, ?, ?, ?, ?, ?)`,
		post.ID.String(), post.Title, post.Excerpt, post.Body,
		post.ImageRef, encodeTime(post.CreatedAt))
	if err != nil {
		return &storefront.StoreError{Entity: "post", Op: "create", Err: err}
	}
	return nil
}

func (r *Repository) DeletePost(ctx context.Context, id uuid.UUID) error {
	result, err := r.db.ExecContext(ctx, `DELETE FROM blog_posts WHERE id = ?`, id.String())
	if err != nil {
		return &storefront.StoreError{Entity: "post", Op: "delete", Err: err}
	}
	if n, _ := result.RowsAffected(); n == 0 {
		return storefront.ErrPostNotFound
	}
	return nil
}

// Site content operations

func (r *Repository) GetSiteContent(ctx context.Context, key string) (*storefront.SiteContent, error) {
	var content storefront.SiteContent
	var createdAt, updatedAt string
	err := r.db.QueryRowContext(ctx, `
		SELECT key, value, created_at, updated_at
		FROM site_content WHERE key = ?`, key).
		Scan(&content.Key, &content.Value, &createdAt, &updatedAt)
	if errors.Is(err, sql.ErrNoRows) {
		return nil, storefront.ErrSiteContentNotFound
	}
	if err != nil {
		return nil, &storefront.StoreError{Entity: "site_content", Op: "get", Err: err}
	}
	content.CreatedAt = decodeTime(createdAt)
	content.UpdatedAt = decodeTime(updatedAt)
	return &content, nil
}

func (r *Repository) SetSiteContent(ctx context.Context, key, value string) error {
	now := encodeTime(time.Now())
	_, err := r.db.ExecContext(ctx, `
		INSERT INTO site_content (key, value, created_at, updated_at)
		VALUES (?, ?, ?, ?)
		ON CONFLICT(key) DO UPDATE SET value = excluded.value, updated_at = excluded.updated_at`,
		key, value, now, now)
	if err != nil {
		return &storefront.StoreError{Entity: "site_content", Op: "set", Err: err}
	}
	return nil
}

func (r *Repository) EnsureSiteContent(ctx context.Context, key, defaultValue string) error {
	now := encodeTime(time.Now())
	_, err := r.db.ExecContext(ctx, `
		INSERT INTO site_content (key, value, created_at, updated_at)
		VALUES (?, ?, ?, ?)
		ON CONFLICT(key) DO NOTHING`,
		key, defaultValue, now, now)
	if err != nil {
		return &storefront.StoreError{Entity: "site_content", Op: "ensure", Err: err}
	}
	return nil
}

// Scanning helpers

type rowScanner interface {
	Scan(dest ...any) error
}

func scanProduct(row rowScanner) (*storefront.Product, error) {
	var product storefront.Product
	var id, createdAt string
	if err := row.Scan(&id, &product.Name, &product.ShortDesc, &product.Price,
		&product.ImageRef, &createdAt); err != nil {
		return nil, err
	}

	parsed, err := uuid.Parse(id)
	if err != nil {
		return nil, fmt.Errorf("parse product id %q: %w", id, err)
	}
	product.ID = parsed
	product.CreatedAt = decodeTime(createdAt)
	return &product, nil
}

func scanPost(row rowScanner) (*storefront.BlogPost, error) {
	var post storefront.BlogPost
	var id, createdAt string
	if err := row.Scan(&id, &post.Title, &post.Excerpt, &post.Body,
		&post.ImageRef, &createdAt); err != nil {
		return nil, err
	}

	parsed, err := uuid.Parse(id)
	if err != nil {
		return nil, fmt.Errorf("parse post id %q: %w", id, err)
	}
	post.ID = parsed
	post.CreatedAt = decodeTime(createdAt)
	return &post, nil
}

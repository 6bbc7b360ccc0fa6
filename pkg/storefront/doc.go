// Package storefront is the content core of the Royal Radiance candle shop.
//
// It provides a Store interface for the three persisted entity kinds
// (products, blog posts, keyed site content) with interchangeable backends
// (in-memory, SQLite, Postgres, Supabase PostgREST), and a media ingest
// pipeline that validates, resizes and persists uploaded images through a
// BlobStore interface (in-memory, filesystem, S3, Supabase Storage).
//
// The Service facade is the only API the web tier is expected to call. A
// backend is selected once at process start (see the config subpackage) and
// injected; call sites never branch on which backend is active.
package storefront

package storefront

import "io"

// CreateProductRequest contains parameters for creating a product. Price is
// the raw form value; it is coerced to a non-negative number by the service
// (invalid input becomes 0).
type CreateProductRequest struct {
	Name      string
	ShortDesc string
	Price     string
	ImageRef  string
}

// CreatePostRequest contains parameters for creating a blog post.
type CreatePostRequest struct {
	Title    string
	Excerpt  string
	Body     string
	ImageRef string
}

// IngestImageRequest contains parameters for ingesting an uploaded image.
type IngestImageRequest struct {
	// Filename is the original client-supplied filename. Its extension
	// decides whether the upload is accepted.
	Filename string

	// MimeType is the client-declared content type, forwarded to the blob
	// store.
	MimeType string

	// Kind selects the resize profile and filename namespace.
	Kind ImageKind

	// Reader supplies the raw upload bytes.
	Reader io.Reader
}

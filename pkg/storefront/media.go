package storefront

import (
	"bytes"
	"context"
	"fmt"
	"image"
	"image/gif"
	"image/jpeg"
	"image/png"
	"io"
	"log/slog"
	"path/filepath"
	"strings"
	"time"

	"github.com/nfnt/resize"
)

var allowedImageExts = map[string]bool{
	".png":  true,
	".jpg":  true,
	".jpeg": true,
	".gif":  true,
}

// IngestImage validates, optionally downsizes and persists an uploaded
// image, returning the reference to store on the entity. The returned
// reference is a bare filename for the filesystem blob store and a public
// URL for remote object storage.
//
// A decode or re-encode failure is not fatal: the original bytes are stored
// unmodified. Only a rejected extension or a failed persistence step returns
// an error, in which case no reference exists and the caller must not create
// a content record.
func (s *service) IngestImage(ctx context.Context, req IngestImageRequest) (string, error) {
	if s.blobs == nil {
		return "", &MediaError{Op: "ingest", Err: fmt.Errorf("no blob store configured")}
	}

	ext := strings.ToLower(filepath.Ext(req.Filename))
	if !allowedImageExts[ext] {
		return "", ErrUnsupportedImageType
	}

	raw, err := io.ReadAll(req.Reader)
	if err != nil {
		return "", &MediaError{Op: "read", Err: err}
	}

	key := objectKey(req.Kind, req.Filename, s.now())

	data, mimeType := raw, req.MimeType
	if s.processImage {
		if out, outMime, perr := reencode(raw, req.Kind); perr != nil {
			slog.Warn("image re-encode failed, storing original bytes", "key", key, "err", perr)
		} else {
			data, mimeType = out, outMime
		}
	}

	if err := s.blobs.Upload(ctx, key, mimeType, bytes.NewReader(data)); err != nil {
		return "", &MediaError{Key: key, Op: "upload", Err: fmt.Errorf("%w: %v", ErrUploadFailed, err)}
	}

	return s.blobs.PublicURL(key), nil
}

// objectKey builds the stored filename: a kind-derived namespace prefix (so
// catalog and article uploads cannot collide), a millisecond timestamp, and
// the sanitized original name.
func objectKey(kind ImageKind, filename string, now time.Time) string {
	prefix := "prod"
	if kind == ImageKindArticle {
		prefix = "blog"
	}
	return fmt.Sprintf("%s_%d_%s", prefix, now.UnixMilli(), sanitizeFilename(filename))
}

// sanitizeFilename strips path components and replaces anything outside
// [A-Za-z0-9._-] with an underscore.
func sanitizeFilename(filename string) string {
	base := filepath.Base(filepath.ToSlash(filename))

	var b strings.Builder
	b.Grow(len(base))
	for _, r := range base {
		switch {
		case r >= 'a' && r <= 'z', r >= 'A' && r <= 'Z', r >= '0' && r <= '9':
			b.WriteRune(r)
		case r == '.' || r == '_' || r == '-':
			b.WriteRune(r)
		default:
			b.WriteByte('_')
		}
	}
	return strings.TrimLeft(b.String(), ".")
}

// reencode decodes the image, downscales it to fit the bounding box for its
// kind (aspect ratio preserved, never upscaled) and re-encodes it. JPEG
// output uses the kind's quality setting; PNG and GIF re-encode losslessly.
func reencode(raw []byte, kind ImageKind) ([]byte, string, error) {
	maxWidth, maxHeight, quality := catalogMaxWidth, catalogMaxHeight, catalogQuality
	if kind == ImageKindArticle {
		maxWidth, maxHeight, quality = articleMaxWidth, articleMaxHeight, articleQuality
	}

	img, format, err := image.Decode(bytes.NewReader(raw))
	if err != nil {
		return nil, "", fmt.Errorf("decode image: %w", err)
	}

	resized := resize.Thumbnail(uint(maxWidth), uint(maxHeight), img, resize.Lanczos3)

	var buf bytes.Buffer
	switch format {
	case "png":
		if err := png.Encode(&buf, resized); err != nil {
			return nil, "", fmt.Errorf("encode png: %w", err)
		}
		return buf.Bytes(), "image/png", nil
	case "gif":
		if err := gif.Encode(&buf, resized, nil); err != nil {
			return nil, "", fmt.Errorf("encode gif: %w", err)
		}
		return buf.Bytes(), "image/gif", nil
	default:
		if err := jpeg.Encode(&buf, resized, &jpeg.Options{Quality: quality}); err != nil {
			return nil, "", fmt.Errorf("encode jpeg: %w", err)
		}
		return buf.Bytes(), "image/jpeg", nil
	}
}

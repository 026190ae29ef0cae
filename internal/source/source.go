// Package source opens citation graph documents from local files, HTTP(S) URLs
// and S3 objects, decompressing .zst and .gz documents on the fly.
package source

import (
	"context"
	"errors"
	"fmt"
	"io"
	"net/url"
	"os"
	"strings"

	"github.com/klauspost/compress/gzip"
	"github.com/klauspost/compress/zstd"
)

// Common errors returned when opening documents.
var (
	// ErrNotFound indicates the document does not exist at its location.
	ErrNotFound = errors.New("document not found")

	// ErrUnsupportedScheme indicates a location with a scheme no fetcher handles.
	ErrUnsupportedScheme = errors.New("unsupported location scheme")

	// ErrS3NotConfigured indicates an s3:// location without an S3 fetcher.
	ErrS3NotConfigured = errors.New("s3 location but no S3 client configured")
)

// Scheme classifies a document location.
type Scheme string

const (
	SchemeFile  Scheme = "file"
	SchemeHTTP  Scheme = "http"
	SchemeS3    Scheme = "s3"
	SchemeOther Scheme = "other"
)

// SchemeOf returns how location will be fetched. Locations without a scheme are local paths.
func SchemeOf(location string) Scheme {
	i := strings.Index(location, "://")
	if i < 0 {
		return SchemeFile
	}
	switch strings.ToLower(location[:i]) {
	case "file":
		return SchemeFile
	case "http", "https":
		return SchemeHTTP
	case "s3":
		return SchemeS3
	default:
		return SchemeOther
	}
}

// LocalPath returns the filesystem path for a local location.
func LocalPath(location string) (string, bool) {
	if SchemeOf(location) != SchemeFile {
		return "", false
	}
	if strings.HasPrefix(strings.ToLower(location), "file://") {
		u, err := url.Parse(location)
		if err != nil {
			return "", false
		}
		return u.Path, true
	}
	return location, true
}

// Router dispatches Open calls to a fetcher chosen by the location scheme.
type Router struct {
	http *HTTPFetcher
	s3   *S3Fetcher
}

// RouterOption configures a Router.
type RouterOption func(*Router)

// WithHTTPFetcher sets the fetcher for http and https locations.
func WithHTTPFetcher(f *HTTPFetcher) RouterOption {
	return func(r *Router) {
		r.http = f
	}
}

// WithS3Fetcher sets the fetcher for s3 locations.
func WithS3Fetcher(f *S3Fetcher) RouterOption {
	return func(r *Router) {
		r.s3 = f
	}
}

// NewRouter creates a Router. Without options, HTTP locations use a default HTTPFetcher
// and S3 locations fail with ErrS3NotConfigured.
func NewRouter(opts ...RouterOption) *Router {
	r := &Router{}
	for _, opt := range opts {
		opt(r)
	}
	if r.http == nil {
		r.http = NewHTTPFetcher()
	}
	return r
}

// Open returns the decompressed contents of the document at location.
func (r *Router) Open(ctx context.Context, location string) (io.ReadCloser, error) {
	raw, err := r.openRaw(ctx, location)
	if err != nil {
		return nil, err
	}
	return decompress(location, raw)
}

func (r *Router) openRaw(ctx context.Context, location string) (io.ReadCloser, error) {
	switch SchemeOf(location) {
	case SchemeFile:
		path, ok := LocalPath(location)
		if !ok {
			return nil, fmt.Errorf("invalid file location %q", location)
		}
		return openFile(path)
	case SchemeHTTP:
		return r.http.Open(ctx, location)
	case SchemeS3:
		if r.s3 == nil {
			return nil, ErrS3NotConfigured
		}
		return r.s3.Open(ctx, location)
	default:
		return nil, fmt.Errorf("%w: %s", ErrUnsupportedScheme, location)
	}
}

func openFile(path string) (io.ReadCloser, error) {
	f, err := os.Open(path)
	if errors.Is(err, os.ErrNotExist) {
		return nil, fmt.Errorf("%w: %s", ErrNotFound, path)
	}
	if err != nil {
		return nil, fmt.Errorf("opening %s: %w", path, err)
	}
	return f, nil
}

// decompress wraps raw in a decoder chosen by the location suffix.
func decompress(location string, raw io.ReadCloser) (io.ReadCloser, error) {
	name := strings.ToLower(location)
	if i := strings.IndexAny(name, "?#"); i >= 0 && SchemeOf(location) == SchemeHTTP {
		name = name[:i]
	}

	switch {
	case strings.HasSuffix(name, ".zst"):
		dec, err := zstd.NewReader(raw)
		if err != nil {
			raw.Close()
			return nil, fmt.Errorf("creating zstd decoder: %w", err)
		}
		return &decodingReader{Reader: dec, close: func() error {
			dec.Close()
			return raw.Close()
		}}, nil
	case strings.HasSuffix(name, ".gz"):
		gz, err := gzip.NewReader(raw)
		if err != nil {
			raw.Close()
			return nil, fmt.Errorf("creating gzip reader: %w", err)
		}
		return &decodingReader{Reader: gz, close: func() error {
			gz.Close()
			return raw.Close()
		}}, nil
	default:
		return raw, nil
	}
}

type decodingReader struct {
	io.Reader
	close func() error
}

func (d *decodingReader) Close() error {
	return d.close()
}

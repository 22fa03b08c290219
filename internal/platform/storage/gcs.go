package storage

import (
	"context"
	"fmt"
	"io"
	"strings"

	"cloud.google.com/go/storage"
)

const gcsPublicHost = "https://storage.googleapis.com"

// GCSSink writes generated images to a Cloud Storage bucket.
type GCSSink struct {
	bucket        string
	prefix        string
	publicBaseURL string
	cacheControl  string
	newWriter     func(ctx context.Context, bucket, key string) objectWriter
}

type objectWriter interface {
	io.WriteCloser
	setAttrs(contentType, cacheControl string)
}

type gcsWriter struct{ w *storage.Writer }

func (g gcsWriter) Write(p []byte) (int, error) { return g.w.Write(p) }
func (g gcsWriter) Close() error                { return g.w.Close() }
func (g gcsWriter) setAttrs(contentType, cacheControl string) {
	g.w.ContentType = contentType
	g.w.CacheControl = cacheControl
}

// GCSOption customises a GCSSink.
type GCSOption func(*GCSSink)

// WithGCSPrefix sets the object prefix. Defaults to "images".
func WithGCSPrefix(prefix string) GCSOption {
	return func(s *GCSSink) { s.prefix = prefix }
}

// WithGCSPublicBaseURL overrides the URL returned for stored objects, e.g. a CDN host.
func WithGCSPublicBaseURL(base string) GCSOption {
	return func(s *GCSSink) {
		if strings.TrimSpace(base) != "" {
			s.publicBaseURL = strings.TrimSpace(base)
		}
	}
}

// NewGCSSink binds a sink to bucket using client.
func NewGCSSink(client *storage.Client, bucket string, opts ...GCSOption) (*GCSSink, error) {
	bucket = strings.TrimSpace(bucket)
	if bucket == "" {
		return nil, errInvalidBucket
	}
	if client == nil {
		return nil, fmt.Errorf("storage: gcs client is required")
	}
	s := &GCSSink{
		bucket:        bucket,
		prefix:        defaultObjectPrefix,
		publicBaseURL: gcsPublicHost + "/" + bucket,
		cacheControl:  "public, max-age=86400",
		newWriter: func(ctx context.Context, bucket, key string) objectWriter {
			return gcsWriter{w: client.Bucket(bucket).Object(key).NewWriter(ctx)}
		},
	}
	for _, opt := range opts {
		if opt != nil {
			opt(s)
		}
	}
	return s, nil
}

// Put implements imagegen.Sink. Existing objects are overwritten.
func (s *GCSSink) Put(ctx context.Context, name, mimeType string, data []byte) (string, error) {
	key, err := objectKey(s.prefix, name)
	if err != nil {
		return "", err
	}
	w := s.newWriter(ctx, s.bucket, key)
	w.setAttrs(mimeType, s.cacheControl)
	if _, err := w.Write(data); err != nil {
		_ = w.Close()
		return "", fmt.Errorf("storage: write gs://%s/%s: %w", s.bucket, key, err)
	}
	if err := w.Close(); err != nil {
		return "", fmt.Errorf("storage: finalize gs://%s/%s: %w", s.bucket, key, err)
	}
	return publicURL(s.publicBaseURL, key), nil
}

package imagegen

import (
	"context"
	"fmt"
	"os"
	"path"
	"path/filepath"
	"strings"
)

// DefaultPublicPrefix is the URL prefix generated images are served from.
const DefaultPublicPrefix = "/images"

// FileSink writes images into a directory served under a public URL prefix.
type FileSink struct {
	Dir          string
	PublicPrefix string
}

// NewFileSink returns a sink writing to dir and reporting paths under DefaultPublicPrefix.
func NewFileSink(dir string) *FileSink {
	return &FileSink{Dir: dir, PublicPrefix: DefaultPublicPrefix}
}

// Put creates the directory if needed and overwrites any existing file of the same name.
func (f *FileSink) Put(ctx context.Context, name, _ string, data []byte) (string, error) {
	if err := ctx.Err(); err != nil {
		return "", err
	}
	if err := os.MkdirAll(f.Dir, 0o755); err != nil {
		return "", fmt.Errorf("create image directory: %w", err)
	}
	if err := os.WriteFile(filepath.Join(f.Dir, name), data, 0o644); err != nil {
		return "", fmt.Errorf("write image: %w", err)
	}
	prefix := f.PublicPrefix
	if prefix == "" {
		prefix = DefaultPublicPrefix
	}
	return path.Join("/", strings.Trim(prefix, "/"), name), nil
}

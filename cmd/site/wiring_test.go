package main

import (
	"context"
	"errors"
	"io/fs"
	"os"
	"path/filepath"
	"testing"
	"time"

	"github.com/stretchr/testify/require"
	"go.uber.org/zap"

	"github.com/RedOxDigital/red-ox-digital-sub001/internal/contact"
	"github.com/RedOxDigital/red-ox-digital-sub001/internal/imagegen"
	"github.com/RedOxDigital/red-ox-digital-sub001/internal/platform/config"
)

func TestCloserStackClosesInReverse(t *testing.T) {
	var order []string
	stack := newCloserStack(zap.NewNop())
	stack.push("first", func() error { order = append(order, "first"); return nil })
	stack.push("second", func() error { order = append(order, "second"); return errors.New("ignored") })
	stack.push("third", func() error { order = append(order, "third"); return nil })

	stack.closeAll()
	require.Equal(t, []string{"third", "second", "first"}, order)

	stack.closeAll()
	require.Len(t, order, 3)
}

func TestContentFSFallsBackToEmbedded(t *testing.T) {
	_, err := fs.Stat(contentFS(""), "blog/local-seo-checklist-moreton-bay.md")
	require.NoError(t, err)

	_, err = fs.Stat(contentFS(filepath.Join(t.TempDir(), "missing")), "legal/terms.md")
	require.NoError(t, err)

	dir := t.TempDir()
	require.NoError(t, os.MkdirAll(filepath.Join(dir, "blog"), 0o755))
	require.NoError(t, os.WriteFile(filepath.Join(dir, "blog", "draft.md"), []byte("# Draft"), 0o644))
	_, err = fs.Stat(contentFS(dir), "blog/draft.md")
	require.NoError(t, err)
}

type deadlineModel struct {
	deadline time.Time
	ok       bool
}

func (m *deadlineModel) GenerateImage(ctx context.Context, _ imagegen.ModelRequest) (imagegen.Image, error) {
	m.deadline, m.ok = ctx.Deadline()
	return imagegen.Image{Data: []byte("x"), MIMEType: "image/png"}, nil
}

func TestBoundedModelAppliesTimeout(t *testing.T) {
	inner := &deadlineModel{}
	start := time.Now()
	_, err := boundedModel{Model: inner, timeout: time.Minute}.GenerateImage(context.Background(), imagegen.ModelRequest{})
	require.NoError(t, err)
	require.True(t, inner.ok)
	require.WithinDuration(t, start.Add(time.Minute), inner.deadline, 5*time.Second)

	inner = &deadlineModel{}
	_, err = boundedModel{Model: inner}.GenerateImage(context.Background(), imagegen.ModelRequest{})
	require.NoError(t, err)
	require.False(t, inner.ok)
}

func TestBuildImageModelWithoutKey(t *testing.T) {
	model, err := buildImageModel(context.Background(), config.Config{})
	require.NoError(t, err)
	require.Nil(t, model)
}

func TestBuildSinksDefaults(t *testing.T) {
	closers := newCloserStack(zap.NewNop())
	defer closers.closeAll()

	cfg := config.Config{
		Site:    config.SiteConfig{ImagesDir: t.TempDir()},
		Contact: config.ContactConfig{Sink: config.ContactSinkLog},
	}
	sink, check, err := buildLeadSink(context.Background(), cfg, zap.NewNop(), closers)
	require.NoError(t, err)
	require.Nil(t, check)
	require.IsType(t, contact.LogSink{}, sink)

	imageSink, err := buildImageSink(context.Background(), cfg, closers)
	require.NoError(t, err)
	require.IsType(t, &imagegen.FileSink{}, imageSink)
}

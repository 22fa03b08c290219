package main

import (
	"context"
	"fmt"
	"io/fs"
	"os"
	"strings"
	"time"

	"cloud.google.com/go/pubsub"
	cloudstorage "cloud.google.com/go/storage"
	"go.uber.org/zap"

	"github.com/RedOxDigital/red-ox-digital-sub001/internal/cms"
	"github.com/RedOxDigital/red-ox-digital-sub001/internal/contact"
	"github.com/RedOxDigital/red-ox-digital-sub001/internal/imagegen"
	"github.com/RedOxDigital/red-ox-digital-sub001/internal/platform/config"
	pfirestore "github.com/RedOxDigital/red-ox-digital-sub001/internal/platform/firestore"
	"github.com/RedOxDigital/red-ox-digital-sub001/internal/platform/jobs"
	platformstorage "github.com/RedOxDigital/red-ox-digital-sub001/internal/platform/storage"
	"github.com/RedOxDigital/red-ox-digital-sub001/internal/repositories"
	firestoreRepo "github.com/RedOxDigital/red-ox-digital-sub001/internal/repositories/firestore"
)

type closer struct {
	name string
	fn   func() error
}

// closerStack releases clients in reverse construction order.
type closerStack struct {
	logger *zap.Logger
	items  []closer
}

func newCloserStack(logger *zap.Logger) *closerStack {
	return &closerStack{logger: logger}
}

func (c *closerStack) push(name string, fn func() error) {
	c.items = append(c.items, closer{name: name, fn: fn})
}

func (c *closerStack) closeAll() {
	for i := len(c.items) - 1; i >= 0; i-- {
		if err := c.items[i].fn(); err != nil {
			c.logger.Warn("close error", zap.String("resource", c.items[i].name), zap.Error(err))
		}
	}
	c.items = nil
}

// contentFS prefers an on-disk content directory so edits show without a rebuild.
func contentFS(dir string) fs.FS {
	dir = strings.TrimSpace(dir)
	if dir == "" {
		return cms.EmbeddedFS()
	}
	if info, err := os.Stat(dir); err != nil || !info.IsDir() {
		return cms.EmbeddedFS()
	}
	return os.DirFS(dir)
}

// buildLeadSink always logs leads and adds the configured durable sink. The returned check
// is non-nil when that sink has a readiness probe.
func buildLeadSink(ctx context.Context, cfg config.Config, logger *zap.Logger, closers *closerStack) (contact.LeadSink, *repositories.DependencyCheck, error) {
	logSink := contact.LogSink{Logger: logger.Named("leads")}
	switch cfg.Contact.Sink {
	case config.ContactSinkPubSub:
		client, err := pubsub.NewClient(ctx, cfg.GCP.ProjectID)
		if err != nil {
			return nil, nil, fmt.Errorf("pubsub client: %w", err)
		}
		topic := client.Topic(cfg.Contact.Topic)
		closers.push("pubsub", func() error {
			topic.Stop()
			return client.Close()
		})
		publisher, err := jobs.NewLeadPublisher(topic)
		if err != nil {
			return nil, nil, err
		}
		check := &repositories.DependencyCheck{
			Name:    "pubsub",
			Timeout: 3 * time.Second,
			Check: func(ctx context.Context) error {
				ok, err := topic.Exists(ctx)
				if err != nil {
					return err
				}
				if !ok {
					return fmt.Errorf("topic %s does not exist", cfg.Contact.Topic)
				}
				return nil
			},
		}
		return contact.MultiSink{logSink, publisher}, check, nil
	case config.ContactSinkFirestore:
		provider := pfirestore.NewProvider(cfg.GCP)
		closers.push("firestore", provider.Close)
		repo, err := firestoreRepo.NewLeadRepository(provider, cfg.Contact.Collection)
		if err != nil {
			return nil, nil, err
		}
		check := &repositories.DependencyCheck{Name: "firestore", Timeout: 3 * time.Second, Check: repo.Ping}
		return contact.MultiSink{logSink, repo}, check, nil
	default:
		return logSink, nil, nil
	}
}

func buildImageSink(ctx context.Context, cfg config.Config, closers *closerStack) (imagegen.Sink, error) {
	switch cfg.ImageGen.Sink {
	case config.ImageSinkGCS:
		client, err := cloudstorage.NewClient(ctx)
		if err != nil {
			return nil, fmt.Errorf("storage client: %w", err)
		}
		closers.push("storage", client.Close)
		return platformstorage.NewGCSSink(client, cfg.ImageGen.GCSBucket, platformstorage.WithGCSPublicBaseURL(cfg.ImageGen.PublicBaseURL))
	case config.ImageSinkS3:
		return platformstorage.NewS3Sink(ctx, cfg.ImageGen.S3Bucket, cfg.ImageGen.S3Region, cfg.ImageGen.PublicBaseURL)
	default:
		return imagegen.NewFileSink(cfg.Site.ImagesDir), nil
	}
}

// boundedModel caps each model call at the configured generation timeout.
type boundedModel struct {
	imagegen.Model
	timeout time.Duration
}

func (m boundedModel) GenerateImage(ctx context.Context, req imagegen.ModelRequest) (imagegen.Image, error) {
	if m.timeout <= 0 {
		return m.Model.GenerateImage(ctx, req)
	}
	ctx, cancel := context.WithTimeout(ctx, m.timeout)
	defer cancel()
	return m.Model.GenerateImage(ctx, req)
}

// buildImageModel returns nil without an API key so the site still serves pages.
func buildImageModel(ctx context.Context, cfg config.Config) (imagegen.Model, error) {
	if strings.TrimSpace(cfg.ImageGen.APIKey) == "" {
		return nil, nil
	}
	model, err := imagegen.NewGenAIModel(ctx, cfg.ImageGen.APIKey, cfg.ImageGen.Model)
	if err != nil {
		return nil, err
	}
	return boundedModel{Model: model, timeout: cfg.ImageGen.Timeout}, nil
}

package main

import (
	"context"
	"errors"
	"fmt"
	"net/http"
	"os"
	"os/signal"
	"path/filepath"
	"strings"
	"syscall"
	"time"

	"go.uber.org/zap"

	"github.com/RedOxDigital/red-ox-digital-sub001/internal/business"
	"github.com/RedOxDigital/red-ox-digital-sub001/internal/cms"
	"github.com/RedOxDigital/red-ox-digital-sub001/internal/contact"
	"github.com/RedOxDigital/red-ox-digital-sub001/internal/handlers"
	"github.com/RedOxDigital/red-ox-digital-sub001/internal/imagegen"
	"github.com/RedOxDigital/red-ox-digital-sub001/internal/locations"
	"github.com/RedOxDigital/red-ox-digital-sub001/internal/platform/auth"
	"github.com/RedOxDigital/red-ox-digital-sub001/internal/platform/config"
	"github.com/RedOxDigital/red-ox-digital-sub001/internal/platform/observability"
	"github.com/RedOxDigital/red-ox-digital-sub001/internal/platform/secrets"
	"github.com/RedOxDigital/red-ox-digital-sub001/internal/render"
	"github.com/RedOxDigital/red-ox-digital-sub001/internal/repositories"
)

func main() {
	ctx := context.Background()

	level, _ := config.Lookup("LOG_LEVEL")
	baseLogger, err := observability.NewLogger(level)
	if err != nil {
		fmt.Fprintf(os.Stderr, "failed to initialise logger: %v\n", err)
		os.Exit(1)
	}
	defer func() {
		_ = baseLogger.Sync()
	}()
	logger := baseLogger.Named("site")

	fetcher, err := newSecretFetcher(ctx, logger)
	if err != nil {
		logger.Fatal("failed to initialise secret fetcher", zap.Error(err))
	}
	defer func() {
		if err := fetcher.Close(); err != nil {
			logger.Warn("secret fetcher close error", zap.Error(err))
		}
	}()

	cfg, err := config.Load(ctx, config.WithSecretResolver(fetcher))
	if err != nil {
		var missing *config.MissingSecretsError
		if errors.As(err, &missing) {
			logger.Fatal("missing required secrets", zap.Strings("secrets", missing.RedactedNames()))
		}
		logger.Fatal("failed to load configuration", zap.Error(err))
	}

	if missingFromRegistry, missingFromAreas := locations.Drift(business.ServiceAreaNames()); len(missingFromRegistry)+len(missingFromAreas) > 0 {
		logger.Warn("service areas and location registry have drifted",
			zap.Strings("missing_from_registry", missingFromRegistry),
			zap.Strings("missing_from_service_areas", missingFromAreas),
		)
	}

	serviceLogger := observability.ServiceLogger(logger)
	closers := newCloserStack(logger)
	defer closers.closeAll()

	renderer, err := render.New(render.WithDir(cfg.Site.TemplatesDir), render.WithDevMode(cfg.Site.DevMode))
	if err != nil {
		logger.Fatal("failed to parse templates", zap.Error(err))
	}

	content := cms.NewStore(contentFS(cfg.Site.ContentDir), cms.WithCacheTTL(cfg.Site.ContentCacheTTL))
	watchCtx, stopWatching := context.WithCancel(ctx)
	defer stopWatching()
	if cfg.Site.DevMode && cfg.Site.ContentDir != "" {
		watcher, err := cms.NewWatcher(cfg.Site.ContentDir, content, logger.Named("cms"))
		if err != nil {
			logger.Warn("content watcher disabled", zap.Error(err))
		} else if err := watcher.Start(watchCtx); err != nil {
			logger.Warn("content watcher failed to start", zap.Error(err))
		} else {
			closers.push("content watcher", func() error { watcher.Stop(); return nil })
		}
	}

	leadSink, leadCheck, err := buildLeadSink(ctx, cfg, logger, closers)
	if err != nil {
		logger.Fatal("failed to initialise lead sink", zap.Error(err))
	}
	contactSvc, err := contact.NewService(contact.ServiceDeps{Sink: leadSink, Logger: serviceLogger})
	if err != nil {
		logger.Fatal("failed to initialise contact service", zap.Error(err))
	}

	imageSink, err := buildImageSink(ctx, cfg, closers)
	if err != nil {
		logger.Fatal("failed to initialise image sink", zap.Error(err))
	}
	model, err := buildImageModel(ctx, cfg)
	if err != nil {
		logger.Fatal("failed to initialise image model", zap.Error(err))
	}
	if model == nil {
		logger.Warn("GEMINI_API_KEY not set; image generation requests will fail")
	}
	imageSvc, err := imagegen.NewService(imagegen.ServiceDeps{Model: model, Sink: imageSink, Logger: serviceLogger})
	if err != nil {
		logger.Fatal("failed to initialise image service", zap.Error(err))
	}

	var imageOpts []handlers.ImageOption
	if cfg.Auth.RequireAuthor {
		verifier, err := auth.NewFirebaseVerifier(ctx, cfg.Auth.ProjectID, cfg.Auth.CredentialsFile)
		if err != nil {
			logger.Fatal("failed to initialise firebase verifier", zap.Error(err))
		}
		imageOpts = append(imageOpts, handlers.WithImageGuard(auth.NewAuthenticator(verifier).RequireRole(auth.RoleAuthor, auth.RoleAdmin)))
	}

	checks := []repositories.DependencyCheck{{
		Name:  "templates",
		Check: func(context.Context) error { return renderer.Check() },
	}}
	if leadCheck != nil {
		checks = append(checks, *leadCheck)
	}
	healthRepo, err := repositories.NewDependencyHealthRepository(checks)
	if err != nil {
		logger.Fatal("failed to initialise health checks", zap.Error(err))
	}

	secureCookies := strings.HasPrefix(cfg.Site.BaseURL, "https://")
	pages, err := handlers.NewPageHandlers(handlers.PageDeps{
		Renderer: renderer,
		Content:  content,
		Contact:  contactSvc,
		BaseURL:  cfg.Site.BaseURL,
		Analytics: render.Analytics{
			GA4MeasurementID: cfg.Analytics.GA4MeasurementID,
			GTMContainerID:   cfg.Analytics.GTMContainerID,
		},
		SecureCookies: secureCookies,
		Logger:        serviceLogger,
	})
	if err != nil {
		logger.Fatal("failed to initialise page handlers", zap.Error(err))
	}
	crawl := handlers.NewSitemapHandlers(cfg.Site.BaseURL, cms.BlogSlugs(), nil, serviceLogger)
	contactAPI := handlers.NewContactHandlers(contactSvc, handlers.WithContactRateLimit(cfg.Contact.RateLimitPerMinute, nil))
	consentAPI := handlers.NewConsentHandlers(secureCookies, nil)
	imageAPI := handlers.NewImageHandlers(imageSvc, imageOpts...)

	router := handlers.NewRouter(
		handlers.WithTimeout(cfg.Server.RequestTimeout),
		handlers.WithMiddlewares(
			observability.TraceMiddleware(cfg.GCP.ProjectID),
			observability.InjectLogger(logger.Named("http")),
			observability.RequestLogger,
			observability.Recoverer,
		),
		handlers.WithHealthHandlers(handlers.NewHealthHandlers(healthRepo)),
		handlers.WithStaticRoutes(handlers.StaticRoutes(filepath.Join(cfg.Site.PublicDir, "assets"), cfg.Site.ImagesDir)),
		handlers.WithPageRoutes(handlers.Chain(pages.Routes, crawl.Routes)),
		handlers.WithAPIRoutes(handlers.Chain(contactAPI.Routes, consentAPI.Routes, imageAPI.Routes)),
		handlers.WithNotFound(pages.NotFound),
	)

	server := &http.Server{
		Addr:              ":" + cfg.Server.Port,
		Handler:           router,
		ReadTimeout:       cfg.Server.ReadTimeout,
		ReadHeaderTimeout: 10 * time.Second,
		WriteTimeout:      cfg.Server.WriteTimeout,
		IdleTimeout:       cfg.Server.IdleTimeout,
	}

	shutdown := make(chan os.Signal, 1)
	signal.Notify(shutdown, syscall.SIGINT, syscall.SIGTERM)

	serverLogger := logger.Named("http").With(zap.String("addr", server.Addr))
	go func() {
		serverLogger.Info("red ox digital site listening",
			zap.String("base_url", cfg.Site.BaseURL),
			zap.Bool("dev_mode", cfg.Site.DevMode),
			zap.String("image_sink", cfg.ImageGen.Sink),
			zap.String("contact_sink", cfg.Contact.Sink),
		)
		if err := server.ListenAndServe(); err != nil && !errors.Is(err, http.ErrServerClosed) {
			serverLogger.Fatal("http server error", zap.Error(err))
		}
	}()

	<-shutdown
	logger.Info("shutdown signal received; draining requests")
	stopWatching()

	shutdownCtx, cancel := context.WithTimeout(context.Background(), 15*time.Second)
	defer cancel()
	if err := server.Shutdown(shutdownCtx); err != nil {
		logger.Error("graceful shutdown failed", zap.Error(err))
	}
}

func newSecretFetcher(ctx context.Context, logger *zap.Logger) (*secrets.Fetcher, error) {
	opts := []secrets.Option{secrets.WithLogger(logger.Named("secrets"))}
	for _, key := range []string{"SITE_GCP_PROJECT_ID", "GOOGLE_CLOUD_PROJECT"} {
		if project, err := config.Lookup(key); err == nil && strings.TrimSpace(project) != "" {
			opts = append(opts, secrets.WithProject(strings.TrimSpace(project)))
			break
		}
	}
	if path, err := config.Lookup("SITE_SECRETS_FALLBACK_FILE"); err == nil && strings.TrimSpace(path) != "" {
		opts = append(opts, secrets.WithFallbackFile(strings.TrimSpace(path)))
	}
	return secrets.NewFetcher(ctx, opts...)
}

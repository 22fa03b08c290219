package main

import (
	"context"
	"fmt"
	"io"
	"os"
	"time"

	"github.com/spf13/cobra"
	"go.uber.org/zap"

	"github.com/RedOxDigital/red-ox-digital-sub001/internal/imagegen"
	"github.com/RedOxDigital/red-ox-digital-sub001/internal/platform/config"
	"github.com/RedOxDigital/red-ox-digital-sub001/internal/platform/observability"
	"github.com/RedOxDigital/red-ox-digital-sub001/internal/repositories"
)

// app carries the collaborators commands build lazily so tests can swap them.
type app struct {
	verbose bool
	timeout time.Duration
	envFile string

	loadConfig func(ctx context.Context, envFile string) (config.Config, error)
	newModel   func(ctx context.Context, cfg config.Config) (imagegen.Model, error)
	newLeads   func(ctx context.Context, cfg config.Config) (repositories.LeadRepository, func() error, error)
	clock      func() time.Time
}

func newApp() *app {
	return &app{
		loadConfig: func(ctx context.Context, envFile string) (config.Config, error) {
			var opts []config.Option
			if envFile != "" {
				opts = append(opts, config.WithEnvFile(envFile))
			}
			return config.Load(ctx, opts...)
		},
		newModel: func(ctx context.Context, cfg config.Config) (imagegen.Model, error) {
			if cfg.ImageGen.APIKey == "" {
				return nil, fmt.Errorf("GEMINI_API_KEY is not set")
			}
			return imagegen.NewGenAIModel(ctx, cfg.ImageGen.APIKey, cfg.ImageGen.Model)
		},
		newLeads: newFirestoreLeads,
		clock:    time.Now,
	}
}

func (a *app) logger() *zap.Logger {
	level := "warn"
	if a.verbose {
		level = "debug"
	}
	logger, err := observability.NewLogger(level)
	if err != nil {
		return zap.NewNop()
	}
	return logger.Named("sitectl")
}

func (a *app) context(cmd *cobra.Command) (context.Context, context.CancelFunc) {
	ctx := cmd.Context()
	if ctx == nil {
		ctx = context.Background()
	}
	if a.timeout <= 0 {
		return context.WithCancel(ctx)
	}
	return context.WithTimeout(ctx, a.timeout)
}

func newRootCmd(a *app) *cobra.Command {
	root := &cobra.Command{
		Use:   "sitectl",
		Short: "Operate the Red Ox Digital site",
		Long: `Tools for the Red Ox Digital marketing site.

Available commands:
  images     - Generate branded images into the public images directory
  prompts    - Print the image prompt catalogue
  sitemap    - Print sitemap.xml
  robots     - Print robots.txt
  locations  - Inspect the location registry
  leads      - Inspect stored contact leads`,
		SilenceUsage: true,
	}
	root.PersistentFlags().BoolVarP(&a.verbose, "verbose", "v", false, "Enable verbose logging")
	root.PersistentFlags().DurationVar(&a.timeout, "timeout", 10*time.Minute, "Operation timeout")
	root.PersistentFlags().StringVar(&a.envFile, "env-file", "", "Load configuration from this .env file")

	root.AddCommand(newImagesCmd(a))
	root.AddCommand(newPromptsCmd(a))
	root.AddCommand(newSitemapCmd(a))
	root.AddCommand(newRobotsCmd(a))
	root.AddCommand(newLocationsCmd(a))
	root.AddCommand(newLeadsCmd(a))
	return root
}

func execute(args []string, stdout, stderr io.Writer, a *app) error {
	root := newRootCmd(a)
	root.SetArgs(args)
	root.SetOut(stdout)
	root.SetErr(stderr)
	return root.Execute()
}

func main() {
	if err := execute(os.Args[1:], os.Stdout, os.Stderr, newApp()); err != nil {
		os.Exit(1)
	}
}

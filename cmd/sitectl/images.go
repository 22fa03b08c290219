package main

import (
	"fmt"
	"sort"
	"sync"

	"github.com/spf13/cobra"
	"golang.org/x/sync/errgroup"

	"github.com/RedOxDigital/red-ox-digital-sub001/internal/imagegen"
	"github.com/RedOxDigital/red-ox-digital-sub001/internal/platform/observability"
)

type generateFlags struct {
	filename    string
	prompt      string
	category    string
	subcategory string
	aspectRatio string
	noBranding  bool
	outDir      string
}

func newImagesCmd(a *app) *cobra.Command {
	cmd := &cobra.Command{
		Use:   "images",
		Short: "Generate site images with the configured model",
	}
	cmd.AddCommand(newImagesGenerateCmd(a), newImagesGenerateAllCmd(a))
	return cmd
}

func (a *app) imageService(cmd *cobra.Command, outDir string) (*imagegen.Service, error) {
	ctx := cmd.Context()
	cfg, err := a.loadConfig(ctx, a.envFile)
	if err != nil {
		return nil, fmt.Errorf("load config: %w", err)
	}
	model, err := a.newModel(ctx, cfg)
	if err != nil {
		return nil, fmt.Errorf("image model: %w", err)
	}
	if outDir == "" {
		outDir = cfg.Site.ImagesDir
	}
	return imagegen.NewService(imagegen.ServiceDeps{
		Model:  model,
		Sink:   imagegen.NewFileSink(outDir),
		Clock:  a.clock,
		Logger: observability.ServiceLogger(a.logger()),
	})
}

func newImagesGenerateCmd(a *app) *cobra.Command {
	var f generateFlags
	cmd := &cobra.Command{
		Use:   "generate",
		Short: "Generate one image from a prompt or catalogue entry",
		Example: `  sitectl images generate --filename hero-homepage --category hero --subcategory homepage
  sitectl images generate --filename workshop --prompt "Tradie at a workbench" --aspect-ratio 4:3`,
		RunE: func(cmd *cobra.Command, _ []string) error {
			ctx, cancel := a.context(cmd)
			defer cancel()
			cmd.SetContext(ctx)

			svc, err := a.imageService(cmd, f.outDir)
			if err != nil {
				return err
			}
			branding := !f.noBranding
			res, err := svc.Generate(ctx, imagegen.Request{
				Prompt:          f.prompt,
				Category:        f.category,
				Subcategory:     f.subcategory,
				Filename:        f.filename,
				AspectRatio:     f.aspectRatio,
				EnhanceBranding: &branding,
			})
			if err != nil {
				return err
			}
			fmt.Fprintf(cmd.OutOrStdout(), "%s\t%s\t%d bytes\n", res.Path, res.MIMEType, res.Size)
			return nil
		},
	}
	cmd.Flags().StringVar(&f.filename, "filename", "", "Output file name (extension added from the image type when missing)")
	cmd.Flags().StringVar(&f.prompt, "prompt", "", "Prompt used verbatim")
	cmd.Flags().StringVar(&f.category, "category", "", "Catalogue category")
	cmd.Flags().StringVar(&f.subcategory, "subcategory", "", "Catalogue subcategory")
	cmd.Flags().StringVar(&f.aspectRatio, "aspect-ratio", imagegen.DefaultAspectRatio, "Aspect ratio")
	cmd.Flags().BoolVar(&f.noBranding, "no-branding", false, "Do not append the brand styling suffix")
	cmd.Flags().StringVar(&f.outDir, "out-dir", "", "Directory to write into (defaults to SITE_IMAGES_DIR)")
	_ = cmd.MarkFlagRequired("filename")
	return cmd
}

func newImagesGenerateAllCmd(a *app) *cobra.Command {
	var (
		outDir      string
		category    string
		concurrency int
		aspectRatio string
	)
	cmd := &cobra.Command{
		Use:   "generate-all",
		Short: "Generate every catalogue entry as <category>-<subcategory>",
		RunE: func(cmd *cobra.Command, _ []string) error {
			ctx, cancel := a.context(cmd)
			defer cancel()
			cmd.SetContext(ctx)

			svc, err := a.imageService(cmd, outDir)
			if err != nil {
				return err
			}
			catalogue := svc.Catalogue()
			categories := catalogue.Categories()
			if category != "" {
				if len(catalogue.Subcategories(category)) == 0 {
					return fmt.Errorf("unknown category %q", category)
				}
				categories = []string{category}
			}

			type job struct{ category, subcategory string }
			var jobs []job
			for _, c := range categories {
				for _, s := range catalogue.Subcategories(c) {
					jobs = append(jobs, job{c, s})
				}
			}

			var (
				mu      sync.Mutex
				lines   []string
				failed  int
				out     = cmd.OutOrStdout()
				errOut  = cmd.ErrOrStderr()
				g, gctx = errgroup.WithContext(ctx)
			)
			if concurrency < 1 {
				concurrency = 1
			}
			g.SetLimit(concurrency)
			for _, j := range jobs {
				g.Go(func() error {
					res, err := svc.Generate(gctx, imagegen.Request{
						Category:    j.category,
						Subcategory: j.subcategory,
						Filename:    j.category + "-" + j.subcategory,
						AspectRatio: aspectRatio,
					})
					mu.Lock()
					defer mu.Unlock()
					if err != nil {
						failed++
						fmt.Fprintf(errOut, "%s/%s: %v\n", j.category, j.subcategory, err)
						return nil
					}
					lines = append(lines, fmt.Sprintf("%s\t%s\t%d bytes", res.Path, res.MIMEType, res.Size))
					return nil
				})
			}
			if err := g.Wait(); err != nil {
				return err
			}
			sort.Strings(lines)
			for _, line := range lines {
				fmt.Fprintln(out, line)
			}
			if failed > 0 {
				return fmt.Errorf("%d of %d images failed", failed, len(jobs))
			}
			return nil
		},
	}
	cmd.Flags().StringVar(&outDir, "out-dir", "", "Directory to write into (defaults to SITE_IMAGES_DIR)")
	cmd.Flags().StringVar(&category, "category", "", "Only generate this category")
	cmd.Flags().IntVar(&concurrency, "concurrency", 2, "Parallel model calls")
	cmd.Flags().StringVar(&aspectRatio, "aspect-ratio", imagegen.DefaultAspectRatio, "Aspect ratio")
	return cmd
}

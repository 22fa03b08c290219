package main

import (
	"fmt"
	"io"
	"strings"

	"github.com/spf13/cobra"
	"gopkg.in/yaml.v3"

	"github.com/RedOxDigital/red-ox-digital-sub001/internal/business"
	"github.com/RedOxDigital/red-ox-digital-sub001/internal/cms"
	"github.com/RedOxDigital/red-ox-digital-sub001/internal/imagegen"
	"github.com/RedOxDigital/red-ox-digital-sub001/internal/locations"
	"github.com/RedOxDigital/red-ox-digital-sub001/internal/sitemap"
)

func newPromptsCmd(_ *app) *cobra.Command {
	var category string
	cmd := &cobra.Command{
		Use:   "prompts",
		Short: "Print the image prompt catalogue as YAML",
		RunE: func(cmd *cobra.Command, _ []string) error {
			all := imagegen.DefaultCatalogue().All()
			if category != "" {
				entries, ok := all[category]
				if !ok {
					return fmt.Errorf("unknown category %q", category)
				}
				all = map[string]map[string]string{category: entries}
			}
			enc := yaml.NewEncoder(cmd.OutOrStdout())
			enc.SetIndent(2)
			if err := enc.Encode(all); err != nil {
				return err
			}
			return enc.Close()
		},
	}
	cmd.Flags().StringVar(&category, "category", "", "Only print this category")
	return cmd
}

func newSitemapCmd(a *app) *cobra.Command {
	var baseURL string
	cmd := &cobra.Command{
		Use:   "sitemap",
		Short: "Print sitemap.xml for the site",
		RunE: func(cmd *cobra.Command, _ []string) error {
			entries := sitemap.New(baseURL, cms.BlogSlugs()).Build(a.clock())
			return sitemap.WriteXML(cmd.OutOrStdout(), entries)
		},
	}
	cmd.Flags().StringVar(&baseURL, "base-url", business.Info.URL, "Absolute site URL")
	return cmd
}

func newRobotsCmd(_ *app) *cobra.Command {
	var baseURL string
	cmd := &cobra.Command{
		Use:   "robots",
		Short: "Print robots.txt for the site",
		RunE: func(cmd *cobra.Command, _ []string) error {
			_, err := io.WriteString(cmd.OutOrStdout(), sitemap.Robots(baseURL))
			return err
		},
	}
	cmd.Flags().StringVar(&baseURL, "base-url", business.Info.URL, "Absolute site URL")
	return cmd
}

func newLocationsCmd(_ *app) *cobra.Command {
	cmd := &cobra.Command{
		Use:   "locations",
		Short: "Inspect the location registry",
	}

	list := &cobra.Command{
		Use:   "list",
		Short: "List registry locations by zone",
		RunE: func(cmd *cobra.Command, _ []string) error {
			out := cmd.OutOrStdout()
			for _, zone := range locations.Zones() {
				for _, loc := range locations.ByZone(zone) {
					fmt.Fprintf(out, "%s\t%s\t/locations/%s\n", zone, loc.Name, loc.Slug)
				}
			}
			return nil
		},
	}

	var strict bool
	drift := &cobra.Command{
		Use:   "drift",
		Short: "Compare the business service areas with the location registry",
		RunE: func(cmd *cobra.Command, _ []string) error {
			missingFromRegistry, missingFromAreas := locations.Drift(business.ServiceAreaNames())
			out := cmd.OutOrStdout()
			if len(missingFromRegistry) == 0 && len(missingFromAreas) == 0 {
				fmt.Fprintln(out, "service areas and location registry agree")
				return nil
			}
			if len(missingFromRegistry) > 0 {
				fmt.Fprintf(out, "service areas without a location page: %s\n", strings.Join(missingFromRegistry, ", "))
			}
			if len(missingFromAreas) > 0 {
				fmt.Fprintf(out, "location pages missing from service areas: %s\n", strings.Join(missingFromAreas, ", "))
			}
			if strict {
				return fmt.Errorf("service areas have drifted from the location registry")
			}
			return nil
		},
	}
	drift.Flags().BoolVar(&strict, "strict", false, "Exit non-zero when drift is found")

	cmd.AddCommand(list, drift)
	return cmd
}

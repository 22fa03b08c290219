package main

import (
	"context"
	"fmt"
	"text/tabwriter"
	"time"

	"github.com/spf13/cobra"

	"github.com/RedOxDigital/red-ox-digital-sub001/internal/platform/config"
	pfirestore "github.com/RedOxDigital/red-ox-digital-sub001/internal/platform/firestore"
	"github.com/RedOxDigital/red-ox-digital-sub001/internal/repositories"
	firestoreRepo "github.com/RedOxDigital/red-ox-digital-sub001/internal/repositories/firestore"
)

func newFirestoreLeads(_ context.Context, cfg config.Config) (repositories.LeadRepository, func() error, error) {
	if cfg.GCP.ProjectID == "" {
		return nil, nil, fmt.Errorf("SITE_GCP_PROJECT_ID or GOOGLE_CLOUD_PROJECT is required")
	}
	provider := pfirestore.NewProvider(cfg.GCP)
	repo, err := firestoreRepo.NewLeadRepository(provider, cfg.Contact.Collection)
	if err != nil {
		_ = provider.Close()
		return nil, nil, err
	}
	return repo, provider.Close, nil
}

func newLeadsCmd(a *app) *cobra.Command {
	cmd := &cobra.Command{
		Use:   "leads",
		Short: "Inspect contact leads stored in Firestore",
	}

	var limit int
	recent := &cobra.Command{
		Use:   "recent",
		Short: "List the most recent leads, newest first",
		RunE: func(cmd *cobra.Command, _ []string) error {
			ctx, cancel := a.context(cmd)
			defer cancel()

			cfg, err := a.loadConfig(ctx, a.envFile)
			if err != nil {
				return fmt.Errorf("load config: %w", err)
			}
			repo, closeFn, err := a.newLeads(ctx, cfg)
			if err != nil {
				return err
			}
			if closeFn != nil {
				defer func() { _ = closeFn() }()
			}
			leads, err := repo.Recent(ctx, limit)
			if err != nil {
				return err
			}

			tw := tabwriter.NewWriter(cmd.OutOrStdout(), 0, 4, 2, ' ', 0)
			fmt.Fprintln(tw, "SUBMITTED\tID\tNAME\tEMAIL\tPHONE\tSOURCE")
			for _, lead := range leads {
				fmt.Fprintf(tw, "%s\t%s\t%s\t%s\t%s\t%s\n",
					lead.SubmittedAt.UTC().Format(time.RFC3339), lead.ID, lead.Name, lead.Email, lead.Phone, lead.Source)
			}
			return tw.Flush()
		},
	}
	recent.Flags().IntVar(&limit, "limit", 20, "Number of leads to show (max 100)")

	cmd.AddCommand(recent)
	return cmd
}

//go:build integration

package firestore

import (
	"context"
	"os"
	"testing"
	"time"

	"github.com/oklog/ulid/v2"

	"github.com/RedOxDigital/red-ox-digital-sub001/internal/contact"
	pconfig "github.com/RedOxDigital/red-ox-digital-sub001/internal/platform/config"
	pfirestore "github.com/RedOxDigital/red-ox-digital-sub001/internal/platform/firestore"
)

func TestLeadRepositoryIntegration(t *testing.T) {
	host := os.Getenv("FIRESTORE_EMULATOR_HOST")
	if host == "" {
		t.Skip("FIRESTORE_EMULATOR_HOST not set")
	}

	provider := pfirestore.NewProvider(pconfig.GCPConfig{ProjectID: "redox-test", FirestoreEmulatorHost: host})
	t.Cleanup(func() { _ = provider.Close() })

	collection := "leads-" + ulid.Make().String()
	repo, err := NewLeadRepository(provider, collection)
	if err != nil {
		t.Fatalf("new lead repository: %v", err)
	}

	ctx, cancel := context.WithTimeout(context.Background(), 30*time.Second)
	defer cancel()

	if err := repo.Ping(ctx); err != nil {
		t.Fatalf("ping: %v", err)
	}

	base := time.Date(2026, 4, 1, 0, 0, 0, 0, time.UTC)
	for i, name := range []string{"First Lead", "Second Lead"} {
		lead := contact.Lead{
			ID:          ulid.Make().String(),
			Name:        name,
			Email:       "lead@example.com",
			Message:     "Please call me about SEO",
			SubmittedAt: base.Add(time.Duration(i) * time.Hour),
		}
		if err := repo.SaveLead(ctx, lead); err != nil {
			t.Fatalf("save %s: %v", name, err)
		}
		if err := repo.SaveLead(ctx, lead); err != nil {
			t.Fatalf("duplicate save should be idempotent: %v", err)
		}
	}

	leads, err := repo.Recent(ctx, 10)
	if err != nil {
		t.Fatalf("recent: %v", err)
	}
	if len(leads) != 2 || leads[0].Name != "Second Lead" {
		t.Fatalf("unexpected leads %+v", leads)
	}
}

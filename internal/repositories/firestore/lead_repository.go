package firestore

import (
	"context"
	"errors"
	"strings"

	"cloud.google.com/go/firestore"
	"google.golang.org/api/iterator"

	"github.com/RedOxDigital/red-ox-digital-sub001/internal/contact"
	pfirestore "github.com/RedOxDigital/red-ox-digital-sub001/internal/platform/firestore"
	"github.com/RedOxDigital/red-ox-digital-sub001/internal/repositories"
)

const (
	defaultLeadCollection = "leads"
	maxRecentLeads        = 100
)

// LeadRepository stores contact leads as documents keyed by lead id.
type LeadRepository struct {
	provider   *pfirestore.Provider
	collection string
}

var _ repositories.LeadRepository = (*LeadRepository)(nil)

// NewLeadRepository constructs a Firestore-backed lead repository.
func NewLeadRepository(provider *pfirestore.Provider, collection string) (*LeadRepository, error) {
	if provider == nil {
		return nil, errors.New("lead repository requires firestore provider")
	}
	collection = strings.TrimSpace(collection)
	if collection == "" {
		collection = defaultLeadCollection
	}
	return &LeadRepository{provider: provider, collection: collection}, nil
}

// SaveLead creates the lead document. A retried submission with the same id is treated
// as already stored.
func (r *LeadRepository) SaveLead(ctx context.Context, lead contact.Lead) error {
	if strings.TrimSpace(lead.ID) == "" {
		return errors.New("leads.save: lead id is required")
	}
	client, err := r.provider.Client(ctx)
	if err != nil {
		return err
	}
	_, err = client.Collection(r.collection).Doc(lead.ID).Create(ctx, lead)
	if err != nil {
		wrapped := pfirestore.WrapError("leads.save", err)
		var repoErr repositories.RepositoryError
		if errors.As(wrapped, &repoErr) && repoErr.IsConflict() {
			return nil
		}
		return wrapped
	}
	return nil
}

// Recent returns up to limit leads, newest first.
func (r *LeadRepository) Recent(ctx context.Context, limit int) ([]contact.Lead, error) {
	if limit <= 0 || limit > maxRecentLeads {
		limit = maxRecentLeads
	}
	client, err := r.provider.Client(ctx)
	if err != nil {
		return nil, err
	}
	iter := client.Collection(r.collection).OrderBy("submittedAt", firestore.Desc).Limit(limit).Documents(ctx)
	defer iter.Stop()

	var leads []contact.Lead
	for {
		snap, err := iter.Next()
		if errors.Is(err, iterator.Done) {
			break
		}
		if err != nil {
			return nil, pfirestore.WrapError("leads.recent", err)
		}
		var lead contact.Lead
		if err := snap.DataTo(&lead); err != nil {
			return nil, pfirestore.WrapError("leads.decode", err)
		}
		if lead.ID == "" {
			lead.ID = snap.Ref.ID
		}
		leads = append(leads, lead)
	}
	return leads, nil
}

// Ping reads one document to confirm the backend is reachable.
func (r *LeadRepository) Ping(ctx context.Context) error {
	client, err := r.provider.Client(ctx)
	if err != nil {
		return err
	}
	iter := client.Collection(r.collection).Limit(1).Documents(ctx)
	defer iter.Stop()
	if _, err := iter.Next(); err != nil && !errors.Is(err, iterator.Done) {
		return pfirestore.WrapError("leads.ping", err)
	}
	return nil
}

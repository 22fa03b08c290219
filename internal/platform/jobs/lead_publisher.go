package jobs

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"strings"
	"time"

	"cloud.google.com/go/pubsub"

	"github.com/RedOxDigital/red-ox-digital-sub001/internal/contact"
)

// LeadPublisher publishes accepted contact leads to a Pub/Sub topic so downstream
// workers (CRM sync, email notification) can pick them up.
type LeadPublisher struct {
	topic   *pubsub.Topic
	marshal func(any) ([]byte, error)
}

// NewLeadPublisher constructs a Pub/Sub backed lead sink.
func NewLeadPublisher(topic *pubsub.Topic) (*LeadPublisher, error) {
	if topic == nil {
		return nil, errors.New("pubsub lead publisher: topic is required")
	}
	return &LeadPublisher{topic: topic, marshal: json.Marshal}, nil
}

// SaveLead implements contact.LeadSink and blocks until the server acknowledges the message.
func (p *LeadPublisher) SaveLead(ctx context.Context, lead contact.Lead) error {
	if p == nil || p.topic == nil {
		return errors.New("pubsub lead publisher: not initialised")
	}
	data, err := p.marshal(lead)
	if err != nil {
		return fmt.Errorf("marshal lead: %w", err)
	}

	attrs := make(map[string]string)
	setAttr(attrs, "leadId", lead.ID)
	setAttr(attrs, "source", lead.Source)
	if !lead.SubmittedAt.IsZero() {
		attrs["submittedAt"] = lead.SubmittedAt.UTC().Format(time.RFC3339)
	}

	result := p.topic.Publish(ctx, &pubsub.Message{Data: data, Attributes: attrs})
	if _, err := result.Get(ctx); err != nil {
		return fmt.Errorf("publish lead: %w", err)
	}
	return nil
}

func setAttr(attrs map[string]string, key, value string) {
	if v := strings.TrimSpace(value); v != "" {
		attrs[key] = v
	}
}

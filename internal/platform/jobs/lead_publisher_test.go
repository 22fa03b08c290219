package jobs

import (
	"context"
	"encoding/json"
	"testing"
	"time"

	"cloud.google.com/go/pubsub"
	"cloud.google.com/go/pubsub/pstest"
	"google.golang.org/api/option"
	"google.golang.org/grpc"
	"google.golang.org/grpc/credentials/insecure"

	"github.com/RedOxDigital/red-ox-digital-sub001/internal/contact"
)

func TestLeadPublisherPublishesMessage(t *testing.T) {
	ctx := context.Background()
	srv := pstest.NewServer()
	defer srv.Close()

	client, err := pubsub.NewClient(ctx, "test-project",
		option.WithEndpoint(srv.Addr),
		option.WithoutAuthentication(),
		option.WithGRPCDialOption(grpc.WithTransportCredentials(insecure.NewCredentials())),
	)
	if err != nil {
		t.Fatalf("pubsub.NewClient: %v", err)
	}
	defer func() { _ = client.Close() }()

	topic, err := client.CreateTopic(ctx, "leads")
	if err != nil {
		t.Fatalf("CreateTopic: %v", err)
	}
	defer topic.Stop()

	publisher, err := NewLeadPublisher(topic)
	if err != nil {
		t.Fatalf("NewLeadPublisher: %v", err)
	}

	lead := contact.Lead{
		ID:          "01JLEAD",
		Name:        "Jo Citizen",
		Email:       "jo@example.com",
		Message:     "Need help with local SEO in Narangba",
		Source:      "contact-page",
		SubmittedAt: time.Date(2026, 3, 2, 1, 0, 0, 0, time.UTC),
	}
	if err := publisher.SaveLead(ctx, lead); err != nil {
		t.Fatalf("SaveLead: %v", err)
	}

	msgs := srv.Messages()
	if len(msgs) != 1 {
		t.Fatalf("expected 1 message, got %d", len(msgs))
	}
	got := msgs[0]
	if got.Attributes["leadId"] != "01JLEAD" || got.Attributes["source"] != "contact-page" {
		t.Fatalf("unexpected attributes %v", got.Attributes)
	}
	if got.Attributes["submittedAt"] != "2026-03-02T01:00:00Z" {
		t.Fatalf("unexpected submittedAt %q", got.Attributes["submittedAt"])
	}
	var decoded contact.Lead
	if err := json.Unmarshal(got.Data, &decoded); err != nil {
		t.Fatalf("decode: %v", err)
	}
	if decoded.Email != lead.Email || decoded.Message != lead.Message {
		t.Fatalf("unexpected payload %+v", decoded)
	}
}

func TestNewLeadPublisherRequiresTopic(t *testing.T) {
	if _, err := NewLeadPublisher(nil); err == nil {
		t.Fatalf("expected error for nil topic")
	}
}

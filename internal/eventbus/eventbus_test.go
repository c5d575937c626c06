package eventbus

import (
	"context"
	"encoding/json"
	"testing"
	"time"
)

func TestNoopPublisherDiscardsEvents(t *testing.T) {
	var p Publisher = NoopPublisher{}
	if err := p.PublishCandidateCreated(context.Background(), CandidateCreatedEvent{}); err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if err := p.PublishDomainStatusChange(context.Background(), DomainStatusChangeEvent{}); err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
}

func TestCandidateCreatedEventMarshalsExpectedFields(t *testing.T) {
	evt := CandidateCreatedEvent{
		CandidateID:        "cand-1",
		DomainID:           42,
		DomainName:         "example.org",
		DiscoverySessionID: "sess-1",
		SourceURL:          "https://example.org/grants",
		ConfidenceScore:    "0.82",
		DiscoveredAt:       time.Date(2026, 1, 2, 3, 4, 5, 0, time.UTC),
	}

	raw, err := marshal(evt)
	if err != nil {
		t.Fatalf("marshal: %v", err)
	}

	var decoded map[string]any
	if err := json.Unmarshal(raw, &decoded); err != nil {
		t.Fatalf("unmarshal: %v", err)
	}
	if decoded["candidate_id"] != "cand-1" {
		t.Fatalf("expected candidate_id field, got %v", decoded["candidate_id"])
	}
	if decoded["domain_name"] != "example.org" {
		t.Fatalf("expected domain_name field, got %v", decoded["domain_name"])
	}
}

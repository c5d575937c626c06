// Package eventbus publishes the two durable-ordered-log topics the
// discovery pipeline writes to: candidate-created and
// domain-status-changes (spec.md §6). The broker itself (ordering,
// durability, consumer groups) is an external collaborator — this package
// only narrows it down to Publish.
package eventbus

import (
	"context"
	"encoding/json"
	"time"
)

// CandidateCreatedEvent is published once per persisted Candidate.
type CandidateCreatedEvent struct {
	CandidateID        string    `json:"candidate_id"`
	DomainID           int64     `json:"domain_id"`
	DomainName         string    `json:"domain_name"`
	DiscoverySessionID string    `json:"discovery_session_id"`
	SourceURL          string    `json:"source_url"`
	ConfidenceScore    string    `json:"confidence_score"`
	DiscoveredAt       time.Time `json:"discovered_at"`
}

// DomainStatusChangeEvent is published whenever DomainRegistry performs an
// authoritative status transition (blacklist or mark-no-funds). A domain
// whose revisit-after time passes is processed again without an event.
type DomainStatusChangeEvent struct {
	DomainID   int64     `json:"domain_id"`
	DomainName string    `json:"domain_name"`
	OldStatus  string    `json:"old_status"`
	NewStatus  string    `json:"new_status"`
	Reason     string    `json:"reason"`
	Actor      string    `json:"actor"`
	ChangedAt  time.Time `json:"changed_at"`
}

// Publisher is the narrow interface the pipeline depends on. A nil
// Publisher is valid everywhere it's accepted — publishing becomes a
// no-op, matching spec.md's "event bus internals are an external
// collaborator" stance.
type Publisher interface {
	PublishCandidateCreated(ctx context.Context, evt CandidateCreatedEvent) error
	PublishDomainStatusChange(ctx context.Context, evt DomainStatusChangeEvent) error
}

// NoopPublisher discards every event. registry.Open and NewActivities use
// it when they are given no Publisher, as tests do.
type NoopPublisher struct{}

func (NoopPublisher) PublishCandidateCreated(context.Context, CandidateCreatedEvent) error {
	return nil
}

func (NoopPublisher) PublishDomainStatusChange(context.Context, DomainStatusChangeEvent) error {
	return nil
}

func marshal(v any) ([]byte, error) {
	return json.Marshal(v)
}

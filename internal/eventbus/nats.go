package eventbus

import (
	"context"
	"fmt"

	"github.com/nats-io/nats.go"
)

// NATSPublisher publishes both topics as NATS core pub/sub messages with
// JSON payloads. Core NATS (not JetStream) matches spec.md §6's "assumed a
// durable ordered log per topic" being the broker's concern, not this
// package's.
type NATSPublisher struct {
	conn          *nats.Conn
	candidateSubj string
	statusSubj    string
}

// NewNATSPublisher dials url and configures the two subjects.
func NewNATSPublisher(url, candidateSubj, statusSubj string) (*NATSPublisher, error) {
	if candidateSubj == "" {
		candidateSubj = "candidate-created"
	}
	if statusSubj == "" {
		statusSubj = "domain-status-changes"
	}
	conn, err := nats.Connect(url)
	if err != nil {
		return nil, fmt.Errorf("eventbus: connect to %s: %w", url, err)
	}
	return &NATSPublisher{conn: conn, candidateSubj: candidateSubj, statusSubj: statusSubj}, nil
}

// Close drains and closes the underlying connection.
func (p *NATSPublisher) Close() error {
	return p.conn.Drain()
}

func (p *NATSPublisher) PublishCandidateCreated(ctx context.Context, evt CandidateCreatedEvent) error {
	payload, err := marshal(evt)
	if err != nil {
		return fmt.Errorf("eventbus: marshal candidate-created: %w", err)
	}
	if err := p.conn.Publish(p.candidateSubj, payload); err != nil {
		return fmt.Errorf("eventbus: publish candidate-created: %w", err)
	}
	return nil
}

func (p *NATSPublisher) PublishDomainStatusChange(ctx context.Context, evt DomainStatusChangeEvent) error {
	payload, err := marshal(evt)
	if err != nil {
		return fmt.Errorf("eventbus: marshal domain-status-change: %w", err)
	}
	if err := p.conn.Publish(p.statusSubj, payload); err != nil {
		return fmt.Errorf("eventbus: publish domain-status-change: %w", err)
	}
	return nil
}

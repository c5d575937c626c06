package session

import (
	"context"
	"fmt"
	"time"

	"github.com/google/uuid"
	"github.com/shopspring/decimal"

	"github.com/antigravity-dev/fundscout/internal/eventbus"
	"github.com/antigravity-dev/fundscout/internal/model"
	"github.com/antigravity-dev/fundscout/internal/registry"
)

// Activities holds the dependencies DiscoverySessionWorkflow's activity
// methods need: the durable registry and the event publisher it
// mutates through. Everything else the pipeline does (domain extraction,
// the spam-TLD gate, in-session dedup, scoring, threshold) is pure and
// runs directly in workflow code instead.
type Activities struct {
	Registry *registry.Registry
	Events   eventbus.Publisher
}

// NewActivities wires an Activities with a safe default event publisher —
// events is optional and defaults to a no-op when nil, matching
// registry.Open's own default.
func NewActivities(reg *registry.Registry, events eventbus.Publisher) *Activities {
	if events == nil {
		events = eventbus.NoopPublisher{}
	}
	return &Activities{Registry: reg, Events: events}
}

// CheckBlacklistActivity gates a domain against the registry's
// blacklist/no-funds/cooldown/lock rules in one round trip.
func (a *Activities) CheckBlacklistActivity(ctx context.Context, req CheckBlacklistRequest) (*CheckBlacklistResult, error) {
	check, err := a.Registry.ShouldProcess(ctx, req.DomainName)
	if err != nil {
		return nil, err
	}
	return &CheckBlacklistResult{Check: check}, nil
}

// RecordSkipActivity appends a DomainProcessingLog row for a skip outcome
// reached before candidate persistence — every terminal pipeline outcome
// must leave an audit trail, not just CANDIDATE_CREATED and
// SKIPPED_LOW_CONFIDENCE. A blank DomainName (INVALID_URL) logs with no
// domain row; any other DomainName is registered first so the row stays
// anchored to a real domain.
func (a *Activities) RecordSkipActivity(ctx context.Context, req RecordSkipRequest) (*RecordSkipResult, error) {
	if req.DomainName == "" {
		if err := a.Registry.RecordSkip(ctx, req.SessionID, req.Outcome); err != nil {
			return nil, err
		}
		return &RecordSkipResult{}, nil
	}

	domain, err := a.Registry.RegisterOrGet(ctx, req.DomainName, req.SessionID)
	if err != nil {
		return nil, err
	}
	if err := a.Registry.RecordProcessing(ctx, domain.ID, req.SessionID, "", req.Outcome, decimal.Zero); err != nil {
		return nil, err
	}
	return &RecordSkipResult{}, nil
}

// PersistCandidateActivity registers the domain, attempts the exclusive
// processing lock, and — only if the lock was acquired — inserts the
// candidate and appends the processing-log row, then publishes a
// candidate-created event. Losing the lock race is not an error: another
// worker already owns this domain for this cycle, and
// DiscoverySessionWorkflow counts the result as skipped, not failed.
func (a *Activities) PersistCandidateActivity(ctx context.Context, req PersistCandidateRequest) (*PersistCandidateResult, error) {
	domain, err := a.Registry.RegisterOrGet(ctx, req.DomainName, req.SessionID)
	if err != nil {
		return nil, err
	}

	ttl := time.Duration(req.LockTTLSec) * time.Second
	acquired, err := a.Registry.AcquireProcessingLock(ctx, domain.ID, req.WorkerID, ttl)
	if err != nil {
		return nil, err
	}
	if !acquired {
		return &PersistCandidateResult{CandidateCreated: false, SkippedReason: "processing lock held"}, nil
	}
	defer func() { _ = a.Registry.ReleaseProcessingLock(ctx, domain.ID, req.WorkerID) }()

	candidateID := ""
	if req.Outcome == model.OutcomeCandidateCreated {
		candidateID = uuid.NewString()
		candidate := model.Candidate{
			CandidateID:        candidateID,
			DomainID:           domain.ID,
			DiscoverySessionID: req.SessionID,
			SourceURL:          req.SourceURL,
			OrganizationName:   req.OrganizationName,
			Description:        req.Description,
			ConfidenceScore:    req.ConfidenceScore,
			Status:             model.CandidatePendingCrawl,
			DiscoveredAt:       time.Now().UTC(),
			DiscoveredBy:       "SYSTEM",
			RawTitle:           req.RawTitle,
			RawDescription:     req.RawDescription,
			RawBackend:         req.RawBackend,
		}
		if err := a.Registry.CreateCandidate(ctx, candidate); err != nil {
			return nil, err
		}
	}

	if err := a.Registry.RecordProcessing(ctx, domain.ID, req.SessionID, candidateID, req.Outcome, req.ConfidenceScore); err != nil {
		return nil, err
	}

	if candidateID != "" {
		if err := a.Events.PublishCandidateCreated(ctx, eventbus.CandidateCreatedEvent{
			CandidateID:        candidateID,
			DomainID:           domain.ID,
			DomainName:         domain.DomainName,
			DiscoverySessionID: req.SessionID,
			SourceURL:          req.SourceURL,
			ConfidenceScore:    req.ConfidenceScore.StringFixed(2),
			DiscoveredAt:       time.Now().UTC(),
		}); err != nil {
			return nil, fmt.Errorf("session: publish candidate created: %w", err)
		}
	}

	return &PersistCandidateResult{CandidateCreated: candidateID != "", CandidateID: candidateID}, nil
}

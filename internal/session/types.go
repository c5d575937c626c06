package session

import (
	"github.com/shopspring/decimal"

	"github.com/antigravity-dev/fundscout/internal/judge"
	"github.com/antigravity-dev/fundscout/internal/model"
)

// ScoredResult pairs one search result with the QueryRequest that
// produced it — the judge's geography and org-type sub-scores need the
// original request, not just the bare result.
type ScoredResult struct {
	Result  model.SearchResult
	Request model.QueryRequest
}

// SessionRequest is DiscoverySessionWorkflow's input: one night's worth of
// fanned-out search results, plus the tunables the pipeline scores and
// gates against.
type SessionRequest struct {
	SessionID            string
	TargetDayOfWeek      string
	Results              []ScoredResult
	ConfidenceThreshold  decimal.Decimal
	SpamTLDs             []string
	Weights              judge.Weights
	WorkerID             string
	ProcessingLockTTLSec int64
	PipelineConcurrency  int // worker-pool width; 0 uses defaultPipelineConcurrency
}

// CheckBlacklistRequest/Result is the activity-boundary shape for
// DomainRegistry.ShouldProcess.
type CheckBlacklistRequest struct {
	DomainName string
}

type CheckBlacklistResult struct {
	Check model.CheckResult
}

// PersistCandidateRequest/Result is the activity-boundary shape for the
// registerOrGet + acquireProcessingLock + candidate insert + recordProcessing
// + eventbus.Publish sequence.
type PersistCandidateRequest struct {
	SessionID        string
	DomainName       string
	WorkerID         string
	LockTTLSec       int64
	SourceURL        string
	OrganizationName string
	Description      string
	ConfidenceScore  decimal.Decimal
	RawTitle         string
	RawDescription   string
	RawBackend       string
	Outcome          model.ProcessingOutcome
}

type PersistCandidateResult struct {
	CandidateCreated bool
	CandidateID      string
	SkippedReason    string
}

// RecordSkipRequest/Result is the activity-boundary shape for the
// pre-candidate skip outcomes (INVALID_URL, SPAM_TLD,
// DUPLICATE_IN_SESSION, BLACKLISTED, FAILED_TRANSIENT at the blacklist
// gate) that must still append a DomainProcessingLog row even though no
// candidate is ever created.
type RecordSkipRequest struct {
	SessionID  string
	DomainName string // empty for INVALID_URL, which has no host to register
	Outcome    model.ProcessingOutcome
}

type RecordSkipResult struct{}

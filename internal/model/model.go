// Package model holds the durable and transient data types shared across
// the discovery pipeline: query requests, search results, domains,
// candidates, and per-session statistics.
package model

import (
	"time"

	"github.com/shopspring/decimal"
)

// GeoScope identifies a point in the geographic hierarchy (country ∈
// region ∈ bloc) that a QueryRequest targets.
type GeoScope struct {
	Kind  string // "country", "region", "bloc"
	Code  string // e.g. "BG", "balkans", "eu"
	Label string // human-readable, used in prompt construction
}

// QueryRequest is a fully-specified discovery intent produced by the
// TaxonomyBatchPlanner. Immutable once created.
type QueryRequest struct {
	Category        string // required, one of taxonomy.Categories
	GeographicScope GeoScope
	SearchBackend   string // required, one of searchfanout's registered backend names
	NumberOfQueries int    // default 3

	FunderType      string   // optional
	Mechanism       string   // optional
	ProjectScale    string   // optional
	Beneficiaries   []string // optional, set semantics — caller must dedupe
	RecipientType   string   // optional
	UserLanguage    string   // optional
	SearchLanguages []string // optional, set semantics
}

// SearchResult is the normalized output of one search backend call. It
// lives only for the duration of one pipeline invocation.
type SearchResult struct {
	URL              string
	Title            string
	Description      string
	BackendID        string
	OriginatingQuery string
	ResultPosition   int
}

// DomainStatus is the lifecycle state of a Domain in the registry.
type DomainStatus string

const (
	DomainActive          DomainStatus = "ACTIVE"
	DomainBlacklisted     DomainStatus = "BLACKLISTED"
	DomainNoFundsThisYear DomainStatus = "NO_FUNDS_CURRENT_YEAR"
	DomainInactive        DomainStatus = "INACTIVE"
)

// Domain is the durable deduplication entity keyed by normalized host.
type Domain struct {
	ID                      int64
	DomainName              string
	Status                  DomainStatus
	FirstDiscoveredAt       time.Time
	LastSeenAt              time.Time
	DiscoveryCount          int
	LastProcessedAt         time.Time
	BestConfidenceScore     decimal.Decimal
	HighQualityCandidateCnt int
	LowQualityCandidateCnt  int
	BlacklistReason         string
	BlacklistedBy           string
	BlacklistedAt           time.Time
	NoFundsReason           string
	RevisitAfter            time.Time
	FailureCount            int
	NextRetryAt             time.Time
}

// ProcessingOutcome is the terminal state recorded for a single search
// result as it passes through the CandidatePipeline.
type ProcessingOutcome string

const (
	OutcomeCandidateCreated        ProcessingOutcome = "CANDIDATE_CREATED"
	OutcomeSkippedBlacklisted      ProcessingOutcome = "SKIPPED_BLACKLISTED"
	OutcomeSkippedRecent           ProcessingOutcome = "SKIPPED_RECENT"
	OutcomeSkippedDuplicateSession ProcessingOutcome = "SKIPPED_DUPLICATE_IN_SESSION"
	OutcomeSkippedSpamTLD          ProcessingOutcome = "SKIPPED_SPAM_TLD"
	OutcomeSkippedLowConfidence    ProcessingOutcome = "SKIPPED_LOW_CONFIDENCE"
	OutcomeSkippedInvalidURL       ProcessingOutcome = "SKIPPED_INVALID_URL"
	OutcomeFailedTransient         ProcessingOutcome = "FAILED_TRANSIENT"
)

// DomainProcessingLog is an append-only per-processing-event record.
type DomainProcessingLog struct {
	ID                 int64
	DomainID           int64
	ProcessedAt        time.Time
	DiscoverySessionID string
	CandidateID        string // empty if none
	Outcome            ProcessingOutcome
}

// CandidateStatus tracks a candidate's position in the downstream
// review/crawl lifecycle. Only PENDING_CRAWL is ever written by this
// pipeline; later stages are out of scope.
type CandidateStatus string

const (
	CandidatePendingCrawl CandidateStatus = "PENDING_CRAWL"
)

// Candidate is a durable record of a result that crossed the confidence
// threshold (or, for audit, was recorded below it).
type Candidate struct {
	CandidateID        string
	DomainID           int64
	DiscoverySessionID string
	SourceURL          string
	OrganizationName   string
	Description        string
	ConfidenceScore    decimal.Decimal
	Status             CandidateStatus
	DiscoveredAt       time.Time
	DiscoveredBy       string // always "SYSTEM"
	RawTitle           string
	RawDescription     string
	RawBackend         string
}

// ProcessingStatistics is the immutable end-of-session summary.
type ProcessingStatistics struct {
	TotalResults          int
	SpamTLDFiltered       int
	BlacklistedSkipped    int
	DuplicatesSkipped     int
	HighConfidenceCreated int
	LowConfidenceCreated  int
	InvalidURLsSkipped    int
	FailedTransient       int
}

// TotalCandidatesCreated is the derived count of results that reached the
// persist stage: high-confidence candidates plus low-confidence outcomes,
// which are logged but get no candidate row.
func (s ProcessingStatistics) TotalCandidatesCreated() int {
	return s.HighConfidenceCreated + s.LowConfidenceCreated
}

// TotalProcessed is the derived count of all terminal outcomes.
func (s ProcessingStatistics) TotalProcessed() int {
	return s.TotalCandidatesCreated() + s.SpamTLDFiltered + s.BlacklistedSkipped +
		s.DuplicatesSkipped + s.InvalidURLsSkipped + s.FailedTransient
}

// DiscoverySession is the per-nightly-run aggregate.
type DiscoverySession struct {
	SessionID       string
	StartedAt       time.Time
	CompletedAt     time.Time
	TargetDayOfWeek time.Weekday
	QueryCount      int
	Stats           ProcessingStatistics
}

// CheckResult is the outcome of DomainRegistry.ShouldProcess.
type CheckResult string

const (
	CheckOK              CheckResult = "OK"
	CheckSkipBlacklisted CheckResult = "SKIP_BLACKLISTED"
	CheckSkipNoFunds     CheckResult = "SKIP_NO_FUNDS"
	CheckSkipRecent      CheckResult = "SKIP_RECENT"
	CheckSkipProcessing  CheckResult = "SKIP_PROCESSING"
)

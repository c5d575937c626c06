package session

import (
	"fmt"
	"time"

	"go.temporal.io/sdk/temporal"
	"go.temporal.io/sdk/workflow"

	"github.com/antigravity-dev/fundscout/internal/judge"
	"github.com/antigravity-dev/fundscout/internal/model"
)

// defaultPipelineConcurrency bounds the worker pool when a SessionRequest
// doesn't specify one.
const defaultPipelineConcurrency = 8

// DiscoverySessionWorkflow runs the ordered CandidatePipeline stages over
// one night's fanned-out search results, via a fixed-size worker pool
// consuming from req.Results (spec.md §5: "the pipeline is parallel, with
// a fixed-size worker pool... every search result is independent until it
// touches the DomainRegistry"):
//
//  1. EXTRACT   — pull and validate the domain from the result URL
//  2. SPAM GATE — reject categorically non-credible TLDs before any I/O
//  3. DEDUP     — skip domains already seen earlier in this session
//  4. BLACKLIST — DomainRegistry.ShouldProcess (blacklist/no-funds/cooldown/lock)
//  5. SCORE     — MetadataJudge composite score
//  6. THRESHOLD — candidate vs. low-confidence outcome
//  7. PERSIST   — registerOrGet + acquireProcessingLock + insert + recordProcessing + publish
//
// Stages 1-3, 5, and 6 are pure and run inline; 4 and 7 are Temporal
// activities, as is the skip-logging path every non-persisting terminal
// outcome takes (RecordSkipActivity) so every terminal state still emits
// a DomainProcessingLog row, per spec.md's pipeline state machine. The one
// exception is a persist that loses the processing-lock race: it is counted
// as BlacklistedSkipped and logged, but writes no row.
//
// Per-result state (seen, stats) is mutated directly from each worker
// goroutine without a mutex: workflow.Go coroutines are cooperatively
// scheduled one at a time by the Temporal dispatcher, not run as real
// OS-level parallel goroutines, so this stays deterministic across replay.
func DiscoverySessionWorkflow(ctx workflow.Context, req SessionRequest) (model.ProcessingStatistics, error) {
	logger := workflow.GetLogger(ctx)
	var a *Activities

	checkOpts := workflow.ActivityOptions{
		StartToCloseTimeout: 5 * time.Second,
		RetryPolicy:         &temporal.RetryPolicy{MaximumAttempts: 3},
	}
	persistOpts := workflow.ActivityOptions{
		StartToCloseTimeout: 10 * time.Second,
		RetryPolicy:         &temporal.RetryPolicy{MaximumAttempts: 3},
	}

	workerID := req.WorkerID
	if workerID == "" {
		workerID = "discovery-scheduler"
	}
	lockTTL := req.ProcessingLockTTLSec
	if lockTTL == 0 {
		lockTTL = 3600
	}
	concurrency := req.PipelineConcurrency
	if concurrency <= 0 {
		concurrency = defaultPipelineConcurrency
	}
	if concurrency > len(req.Results) {
		concurrency = len(req.Results)
	}
	if concurrency < 1 {
		concurrency = 1
	}

	var stats model.ProcessingStatistics
	seen := make(map[string]struct{})
	cancelled := false

	recordSkip := func(gCtx workflow.Context, host string, outcome model.ProcessingOutcome) {
		skipCtx := workflow.WithActivityOptions(gCtx, checkOpts)
		var skipResult RecordSkipResult
		if err := workflow.ExecuteActivity(skipCtx, a.RecordSkipActivity, RecordSkipRequest{
			SessionID:  req.SessionID,
			DomainName: host,
			Outcome:    outcome,
		}).Get(gCtx, &skipResult); err != nil {
			logger.Warn("record skip failed", "host", host, "outcome", outcome, "error", err)
		}
	}

	processOne := func(gCtx workflow.Context, scored ScoredResult) {
		stats.TotalResults++
		result := scored.Result

		host := judge.HostOf(result.URL)
		if host == "" {
			stats.InvalidURLsSkipped++
			recordSkip(gCtx, "", model.OutcomeSkippedInvalidURL)
			return
		}

		if judge.IsSpamTLD(host, req.SpamTLDs) {
			stats.SpamTLDFiltered++
			recordSkip(gCtx, host, model.OutcomeSkippedSpamTLD)
			return
		}

		if _, dup := seen[host]; dup {
			stats.DuplicatesSkipped++
			recordSkip(gCtx, host, model.OutcomeSkippedDuplicateSession)
			return
		}
		seen[host] = struct{}{}

		checkCtx := workflow.WithActivityOptions(gCtx, checkOpts)
		var checkResult CheckBlacklistResult
		if err := workflow.ExecuteActivity(checkCtx, a.CheckBlacklistActivity, CheckBlacklistRequest{DomainName: host}).Get(gCtx, &checkResult); err != nil {
			stats.FailedTransient++
			logger.Warn("blacklist check failed", "host", host, "error", err)
			recordSkip(gCtx, host, model.OutcomeFailedTransient)
			return
		}
		if checkResult.Check != model.CheckOK {
			stats.BlacklistedSkipped++
			recordSkip(gCtx, host, model.OutcomeSkippedBlacklisted)
			return
		}

		sub := judge.Score(result, scored.Request, req.Weights)
		outcome := model.OutcomeSkippedLowConfidence
		if sub.Composite.GreaterThanOrEqual(req.ConfidenceThreshold) {
			outcome = model.OutcomeCandidateCreated
		}

		persistCtx := workflow.WithActivityOptions(gCtx, persistOpts)
		var persistResult PersistCandidateResult
		err := workflow.ExecuteActivity(persistCtx, a.PersistCandidateActivity, PersistCandidateRequest{
			SessionID:        req.SessionID,
			DomainName:       host,
			WorkerID:         workerID,
			LockTTLSec:       lockTTL,
			SourceURL:        result.URL,
			OrganizationName: result.Title,
			Description:      result.Description,
			ConfidenceScore:  sub.Composite,
			RawTitle:         result.Title,
			RawDescription:   result.Description,
			RawBackend:       result.BackendID,
			Outcome:          outcome,
		}).Get(gCtx, &persistResult)
		if err != nil {
			stats.FailedTransient++
			logger.Warn("persist candidate failed", "host", host, "error", err)
			recordSkip(gCtx, host, model.OutcomeFailedTransient)
			return
		}
		if !persistResult.CandidateCreated && persistResult.SkippedReason != "" {
			stats.BlacklistedSkipped++
			logger.Info("candidate persist skipped", "host", host, "reason", persistResult.SkippedReason)
			return
		}

		if outcome == model.OutcomeCandidateCreated {
			stats.HighConfidenceCreated++
		} else {
			stats.LowConfidenceCreated++
		}
	}

	work := workflow.NewBufferedChannel(ctx, len(req.Results))
	for _, scored := range req.Results {
		work.Send(ctx, scored)
	}
	work.Close()

	done := workflow.NewChannel(ctx)
	for i := 0; i < concurrency; i++ {
		workflow.Go(ctx, func(gCtx workflow.Context) {
			for {
				var scored ScoredResult
				more := work.Receive(gCtx, &scored)
				if !more {
					break
				}
				if gCtx.Err() != nil {
					cancelled = true
					break
				}
				processOne(gCtx, scored)
			}
			done.Send(gCtx, nil)
		})
	}
	for i := 0; i < concurrency; i++ {
		done.Receive(ctx, nil)
	}

	if cancelled {
		logger.Warn("session cancelled, returning partial statistics", "processed", stats.TotalResults)
		return stats, fmt.Errorf("session: cancelled: %w", ErrFatal)
	}

	return stats, nil
}

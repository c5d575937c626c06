package registry

import (
	"context"
	"database/sql"
	"fmt"
	"time"

	"github.com/shopspring/decimal"

	"github.com/antigravity-dev/fundscout/internal/eventbus"
	"github.com/antigravity-dev/fundscout/internal/model"
)

const domainCols = `id, domain_name, status, first_discovered_at, last_seen_at, discovery_count,
	last_processed_at, best_confidence_score, high_quality_candidate_cnt, low_quality_candidate_cnt,
	blacklist_reason, blacklisted_by, blacklisted_at, no_funds_reason, revisit_after,
	failure_count, next_retry_at`

func scanDomain(row interface {
	Scan(dest ...any) error
}) (model.Domain, error) {
	var d model.Domain
	var lastProcessedAt, blacklistedAt, revisitAfter, nextRetryAt sql.NullTime
	var score string
	var status string

	if err := row.Scan(
		&d.ID, &d.DomainName, &status, &d.FirstDiscoveredAt, &d.LastSeenAt, &d.DiscoveryCount,
		&lastProcessedAt, &score, &d.HighQualityCandidateCnt, &d.LowQualityCandidateCnt,
		&d.BlacklistReason, &d.BlacklistedBy, &blacklistedAt, &d.NoFundsReason, &revisitAfter,
		&d.FailureCount, &nextRetryAt,
	); err != nil {
		return model.Domain{}, err
	}

	d.Status = model.DomainStatus(status)
	d.LastProcessedAt = nullTimeOf(lastProcessedAt)
	d.BlacklistedAt = nullTimeOf(blacklistedAt)
	d.RevisitAfter = nullTimeOf(revisitAfter)
	d.NextRetryAt = nullTimeOf(nextRetryAt)

	parsed, err := decimal.NewFromString(score)
	if err != nil {
		parsed = decimal.Zero
	}
	d.BestConfidenceScore = parsed

	return d, nil
}

func (r *Registry) getByName(ctx context.Context, domainName string) (*model.Domain, error) {
	row := r.db.QueryRowContext(ctx, `SELECT `+domainCols+` FROM domains WHERE domain_name = ?`, domainName)
	d, err := scanDomain(row)
	if err == sql.ErrNoRows {
		return nil, nil
	}
	if err != nil {
		return nil, fmt.Errorf("registry: %w: get domain by name: %v", ErrTransient, err)
	}
	return &d, nil
}

// ShouldProcess implements spec.md §4.4's dedup/blacklist/cooldown gate.
func (r *Registry) ShouldProcess(ctx context.Context, domainName string) (model.CheckResult, error) {
	host := normalizeHost(domainName)

	if r.cache != nil {
		if cached, ok := r.cache.GetCheckResult(ctx, host); ok {
			return cached, nil
		}
	}

	var result model.CheckResult
	err := withRetry(r.retryCfg, func() error {
		d, err := r.getByName(ctx, host)
		if err != nil {
			return err
		}
		if d == nil {
			result = model.CheckOK
			return nil
		}

		now := r.now()
		switch {
		case d.Status == model.DomainBlacklisted:
			result = model.CheckSkipBlacklisted
		case d.Status == model.DomainNoFundsThisYear && now.Before(d.RevisitAfter):
			result = model.CheckSkipNoFunds
		case !d.LastProcessedAt.IsZero() && now.Sub(d.LastProcessedAt) < r.cooldown:
			result = model.CheckSkipRecent
		default:
			held, err := r.hasLiveLock(ctx, d.ID, now)
			if err != nil {
				return err
			}
			if held {
				result = model.CheckSkipProcessing
			} else {
				result = model.CheckOK
			}
		}
		return nil
	})
	if err != nil {
		return "", err
	}

	if r.cache != nil {
		r.cache.SetCheckResult(ctx, host, result)
	}
	return result, nil
}

// RegisterOrGet is idempotent: it inserts a new ACTIVE domain row on first
// sighting, or bumps last_seen_at/discovery_count on a repeat sighting.
func (r *Registry) RegisterOrGet(ctx context.Context, domainName, sessionID string) (*model.Domain, error) {
	host := normalizeHost(domainName)
	now := r.now()

	var out *model.Domain
	err := withRetry(r.retryCfg, func() error {
		tx, err := r.db.BeginTx(ctx, nil)
		if err != nil {
			return fmt.Errorf("%w: begin tx: %v", ErrTransient, err)
		}
		defer tx.Rollback()

		_, err = tx.ExecContext(ctx, `
			INSERT INTO domains (domain_name, status, first_discovered_at, last_seen_at, discovery_count)
			VALUES (?, 'ACTIVE', ?, ?, 1)
			ON CONFLICT(domain_name) DO UPDATE SET
				last_seen_at = excluded.last_seen_at,
				discovery_count = discovery_count + 1
		`, host, now, now)
		if err != nil {
			return fmt.Errorf("%w: register or get: %v", ErrTransient, err)
		}

		row := tx.QueryRowContext(ctx, `SELECT `+domainCols+` FROM domains WHERE domain_name = ?`, host)
		d, err := scanDomain(row)
		if err != nil {
			return fmt.Errorf("%w: register or get: select after upsert: %v", ErrTransient, err)
		}
		if err := tx.Commit(); err != nil {
			return fmt.Errorf("%w: register or get: commit: %v", ErrTransient, err)
		}
		out = &d
		return nil
	})
	if err != nil {
		return nil, err
	}
	if r.cache != nil {
		r.cache.Invalidate(ctx, host)
	}
	return out, nil
}

// RecordProcessing appends a DomainProcessingLog row and updates
// last-processed-at plus best-confidence-score and the high/low candidate
// counters, as appropriate for outcome.
func (r *Registry) RecordProcessing(ctx context.Context, domainID int64, sessionID string, candidateID string, outcome model.ProcessingOutcome, score decimal.Decimal) error {
	now := r.now()
	err := withRetry(r.retryCfg, func() error {
		tx, err := r.db.BeginTx(ctx, nil)
		if err != nil {
			return fmt.Errorf("%w: begin tx: %v", ErrTransient, err)
		}
		defer tx.Rollback()

		if _, err := tx.ExecContext(ctx,
			`INSERT INTO domain_processing_log (domain_id, processed_at, discovery_session_id, candidate_id, outcome) VALUES (?, ?, ?, ?, ?)`,
			domainID, now, sessionID, candidateID, string(outcome),
		); err != nil {
			return fmt.Errorf("%w: record processing: insert log: %v", ErrTransient, err)
		}

		switch outcome {
		case model.OutcomeCandidateCreated:
			if _, err := tx.ExecContext(ctx, `
				UPDATE domains SET
					last_processed_at = ?,
					high_quality_candidate_cnt = high_quality_candidate_cnt + 1,
					best_confidence_score = CASE WHEN CAST(best_confidence_score AS REAL) < ? THEN ? ELSE best_confidence_score END,
					failure_count = 0,
					next_retry_at = NULL
				WHERE id = ?`,
				now, score.InexactFloat64(), score.StringFixed(2), domainID,
			); err != nil {
				return fmt.Errorf("%w: record processing: update domain: %v", ErrTransient, err)
			}
		case model.OutcomeSkippedLowConfidence:
			if _, err := tx.ExecContext(ctx, `
				UPDATE domains SET
					last_processed_at = ?,
					low_quality_candidate_cnt = low_quality_candidate_cnt + 1,
					failure_count = 0,
					next_retry_at = NULL
				WHERE id = ?`,
				now, domainID,
			); err != nil {
				return fmt.Errorf("%w: record processing: update domain: %v", ErrTransient, err)
			}
		case model.OutcomeFailedTransient:
			nextRetry := now.Add(backoffDelay(1, time.Hour, 24*time.Hour))
			if _, err := tx.ExecContext(ctx, `
				UPDATE domains SET failure_count = failure_count + 1, next_retry_at = ? WHERE id = ?`,
				nextRetry, domainID,
			); err != nil {
				return fmt.Errorf("%w: record processing: update failure count: %v", ErrTransient, err)
			}
		default:
			if _, err := tx.ExecContext(ctx, `UPDATE domains SET last_processed_at = ? WHERE id = ?`, now, domainID); err != nil {
				return fmt.Errorf("%w: record processing: update last_processed_at: %v", ErrTransient, err)
			}
		}

		if err := tx.Commit(); err != nil {
			return fmt.Errorf("%w: record processing: commit: %v", ErrTransient, err)
		}
		return nil
	})
	if err == nil && r.cache != nil {
		var host string
		if r.db.QueryRowContext(ctx, `SELECT domain_name FROM domains WHERE id = ?`, domainID).Scan(&host) == nil {
			r.cache.Invalidate(ctx, host)
		}
	}
	return err
}

// RecordSkip appends a domain-less DomainProcessingLog row for outcomes
// reached before a host could be extracted at all (INVALID_URL). Every
// other skip outcome has a real host and goes through RegisterOrGet plus
// RecordProcessing instead, so the log row stays anchored to a domain.
func (r *Registry) RecordSkip(ctx context.Context, sessionID string, outcome model.ProcessingOutcome) error {
	now := r.now()
	return withRetry(r.retryCfg, func() error {
		_, err := r.db.ExecContext(ctx,
			`INSERT INTO domain_processing_log (domain_id, processed_at, discovery_session_id, candidate_id, outcome) VALUES (NULL, ?, ?, '', ?)`,
			now, sessionID, string(outcome),
		)
		if err != nil {
			return fmt.Errorf("%w: record skip: insert log: %v", ErrTransient, err)
		}
		return nil
	})
}

// Blacklist is an authoritative, terminal state transition.
func (r *Registry) Blacklist(ctx context.Context, domainName, reason, actor string) error {
	return r.transition(ctx, domainName, model.DomainBlacklisted, func(tx *sql.Tx, domainID int64, now time.Time) error {
		_, err := tx.ExecContext(ctx,
			`UPDATE domains SET status = 'BLACKLISTED', blacklist_reason = ?, blacklisted_by = ?, blacklisted_at = ? WHERE id = ?`,
			reason, actor, now, domainID,
		)
		return err
	}, reason, actor)
}

// MarkNoFunds records that a domain has no funds this cycle and will
// automatically re-enter the ACTIVE pool at revisitAfter.
func (r *Registry) MarkNoFunds(ctx context.Context, domainName, reason string, revisitAfter time.Time, actor string) error {
	return r.transition(ctx, domainName, model.DomainNoFundsThisYear, func(tx *sql.Tx, domainID int64, now time.Time) error {
		_, err := tx.ExecContext(ctx,
			`UPDATE domains SET status = 'NO_FUNDS_CURRENT_YEAR', no_funds_reason = ?, revisit_after = ? WHERE id = ?`,
			reason, revisitAfter, domainID,
		)
		return err
	}, reason, actor)
}

func (r *Registry) transition(ctx context.Context, domainName string, newStatus model.DomainStatus, apply func(tx *sql.Tx, domainID int64, now time.Time) error, reason, actor string) error {
	host := normalizeHost(domainName)
	now := r.now()

	var oldStatus model.DomainStatus
	var domainID int64

	err := withRetry(r.retryCfg, func() error {
		tx, err := r.db.BeginTx(ctx, nil)
		if err != nil {
			return fmt.Errorf("%w: begin tx: %v", ErrTransient, err)
		}
		defer tx.Rollback()

		row := tx.QueryRowContext(ctx, `SELECT `+domainCols+` FROM domains WHERE domain_name = ?`, host)
		d, scanErr := scanDomain(row)
		if scanErr == sql.ErrNoRows {
			if _, err := tx.ExecContext(ctx,
				`INSERT INTO domains (domain_name, status, first_discovered_at, last_seen_at, discovery_count) VALUES (?, 'ACTIVE', ?, ?, 0)`,
				host, now, now,
			); err != nil {
				return fmt.Errorf("%w: transition: seed domain: %v", ErrTransient, err)
			}
			row = tx.QueryRowContext(ctx, `SELECT `+domainCols+` FROM domains WHERE domain_name = ?`, host)
			d, scanErr = scanDomain(row)
		}
		if scanErr != nil {
			return fmt.Errorf("%w: transition: scan domain: %v", ErrTransient, scanErr)
		}

		oldStatus = d.Status
		domainID = d.ID

		if err := apply(tx, d.ID, now); err != nil {
			return fmt.Errorf("%w: transition: apply: %v", ErrTransient, err)
		}
		if err := tx.Commit(); err != nil {
			return fmt.Errorf("%w: transition: commit: %v", ErrTransient, err)
		}
		return nil
	})
	if err != nil {
		return err
	}

	if r.cache != nil {
		r.cache.Invalidate(ctx, host)
	}

	return r.events.PublishDomainStatusChange(ctx, eventbus.DomainStatusChangeEvent{
		DomainID:   domainID,
		DomainName: host,
		OldStatus:  string(oldStatus),
		NewStatus:  string(newStatus),
		Reason:     reason,
		Actor:      actor,
		ChangedAt:  now,
	})
}

// IsBlacklisted is a fast read with a safe default of false for unknown
// domains, per spec.md §4.4.
func (r *Registry) IsBlacklisted(ctx context.Context, domainName string) (bool, error) {
	host := normalizeHost(domainName)

	if r.cache != nil {
		if blacklisted, ok := r.cache.GetBlacklisted(ctx, host); ok {
			return blacklisted, nil
		}
	}

	var blacklisted bool
	err := withRetry(r.retryCfg, func() error {
		d, err := r.getByName(ctx, host)
		if err != nil {
			return err
		}
		blacklisted = d != nil && d.Status == model.DomainBlacklisted
		return nil
	})
	if err != nil {
		return false, err
	}

	if r.cache != nil {
		r.cache.SetBlacklisted(ctx, host, blacklisted)
	}
	return blacklisted, nil
}

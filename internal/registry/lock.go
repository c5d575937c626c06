package registry

import (
	"context"
	"database/sql"
	"fmt"
	"time"
)

// AcquireProcessingLock is a non-blocking row-level lock with an absolute
// lease expiration, modeled directly on the teacher's ClaimLease
// (UpsertClaimLease / GetExpiredClaimLeases): the INSERT ... ON CONFLICT
// only overwrites the row if the existing lease has already expired, so
// it never blocks and never silently steals a live lease.
func (r *Registry) AcquireProcessingLock(ctx context.Context, domainID int64, workerID string, ttl time.Duration) (bool, error) {
	if ttl <= 0 {
		ttl = time.Hour
	}
	now := r.now()
	expiresAt := now.Add(ttl)

	var acquired bool
	err := withRetry(r.retryCfg, func() error {
		res, err := r.db.ExecContext(ctx, `
			INSERT INTO processing_locks (domain_id, worker_id, acquired_at, expires_at)
			VALUES (?, ?, ?, ?)
			ON CONFLICT(domain_id) DO UPDATE SET
				worker_id = excluded.worker_id,
				acquired_at = excluded.acquired_at,
				expires_at = excluded.expires_at
			WHERE processing_locks.expires_at <= ?
		`, domainID, workerID, now, expiresAt, now)
		if err != nil {
			return fmt.Errorf("%w: acquire processing lock: %v", ErrTransient, err)
		}
		affected, err := res.RowsAffected()
		if err != nil {
			return fmt.Errorf("%w: acquire processing lock: rows affected: %v", ErrTransient, err)
		}
		acquired = affected > 0
		return nil
	})
	return acquired, err
}

// hasLiveLock reports whether domainID currently has a non-expired lease,
// used by ShouldProcess to surface SKIP_PROCESSING.
func (r *Registry) hasLiveLock(ctx context.Context, domainID int64, now time.Time) (bool, error) {
	var expiresAt time.Time
	err := r.db.QueryRowContext(ctx, `SELECT expires_at FROM processing_locks WHERE domain_id = ?`, domainID).Scan(&expiresAt)
	if err == sql.ErrNoRows {
		return false, nil
	}
	if err != nil {
		return false, fmt.Errorf("%w: check processing lock: %v", ErrTransient, err)
	}
	return now.Before(expiresAt), nil
}

// ReleaseProcessingLock clears a lease. Holders must call this on every
// path, including error paths (spec.md §5 "Locking discipline").
func (r *Registry) ReleaseProcessingLock(ctx context.Context, domainID int64, workerID string) error {
	return withRetry(r.retryCfg, func() error {
		_, err := r.db.ExecContext(ctx, `DELETE FROM processing_locks WHERE domain_id = ? AND worker_id = ?`, domainID, workerID)
		if err != nil {
			return fmt.Errorf("%w: release processing lock: %v", ErrTransient, err)
		}
		return nil
	})
}

// GetExpiredProcessingLocks returns leases whose expiry has already
// passed, mirroring the teacher's GetExpiredClaimLeases, for reconciling
// crashed workers' stale rows. Nothing in this repository calls it.
func (r *Registry) GetExpiredProcessingLocks(ctx context.Context) ([]int64, error) {
	now := r.now()
	rows, err := r.db.QueryContext(ctx, `SELECT domain_id FROM processing_locks WHERE expires_at <= ?`, now)
	if err != nil {
		return nil, fmt.Errorf("%w: get expired processing locks: %v", ErrTransient, err)
	}
	defer rows.Close()

	var ids []int64
	for rows.Next() {
		var id int64
		if err := rows.Scan(&id); err != nil {
			return nil, fmt.Errorf("%w: scan expired processing lock: %v", ErrTransient, err)
		}
		ids = append(ids, id)
	}
	return ids, rows.Err()
}

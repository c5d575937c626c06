package registry

import "errors"

// ErrTransient marks a store failure that the retry-with-backoff wrapper
// should retry rather than surface immediately (spec.md §4.4 "Failure
// semantics"). Exhausting retries still returns ErrTransient wrapped, so
// callers can distinguish it from a permanent constraint violation.
var ErrTransient = errors.New("registry: transient store error")

// ErrLockHeld names the case of another worker holding a live
// (non-expired) lease on the domain. AcquireProcessingLock does not return
// it: it reports a held lease as (false, nil).
var ErrLockHeld = errors.New("registry: processing lock held by another worker")

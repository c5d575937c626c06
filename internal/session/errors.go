package session

import "errors"

// ErrFatal aborts DiscoverySessionWorkflow early. The workflow still
// returns whatever ProcessingStatistics it accumulated before the abort —
// Temporal's per-activity boundaries make "finish the in-flight unit of
// work, then stop" the natural behavior.
var ErrFatal = errors.New("session: fatal pipeline error")

package session

import (
	"go.temporal.io/sdk/worker"
)

// RegisterWith registers DiscoverySessionWorkflow and its activities on a
// Temporal worker, mirroring the teacher's worker.go registration pattern.
func RegisterWith(w worker.Worker, acts *Activities) {
	w.RegisterWorkflow(DiscoverySessionWorkflow)
	w.RegisterActivity(acts.CheckBlacklistActivity)
	w.RegisterActivity(acts.PersistCandidateActivity)
	w.RegisterActivity(acts.RecordSkipActivity)
}

package registry

import (
	"context"
	"fmt"

	"github.com/antigravity-dev/fundscout/internal/model"
)

// CreateCandidate inserts a new funding_source_candidates row. candidate_id
// is caller-supplied (google/uuid, per internal/session) so the pipeline
// can reference it in the same RecordProcessing call without a round trip.
func (r *Registry) CreateCandidate(ctx context.Context, c model.Candidate) error {
	return withRetry(r.retryCfg, func() error {
		_, err := r.db.ExecContext(ctx, `
			INSERT INTO funding_source_candidates (
				candidate_id, domain_id, discovery_session_id, source_url,
				organization_name, description, confidence_score, status,
				discovered_at, discovered_by, raw_title, raw_description, raw_backend
			) VALUES (?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?)
		`,
			c.CandidateID, c.DomainID, c.DiscoverySessionID, c.SourceURL,
			c.OrganizationName, c.Description, c.ConfidenceScore.StringFixed(2), string(c.Status),
			c.DiscoveredAt, c.DiscoveredBy, c.RawTitle, c.RawDescription, c.RawBackend,
		)
		if err != nil {
			return fmt.Errorf("%w: create candidate: %v", ErrTransient, err)
		}
		return nil
	})
}

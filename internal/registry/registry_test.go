package registry

import (
	"context"
	"database/sql"
	"path/filepath"
	"sync"
	"testing"
	"time"

	"github.com/shopspring/decimal"

	"github.com/antigravity-dev/fundscout/internal/eventbus"
	"github.com/antigravity-dev/fundscout/internal/model"
)

type recordingPublisher struct {
	mu             sync.Mutex
	statusChanges  []eventbus.DomainStatusChangeEvent
	candidatesSeen []eventbus.CandidateCreatedEvent
}

func (p *recordingPublisher) PublishCandidateCreated(ctx context.Context, evt eventbus.CandidateCreatedEvent) error {
	p.mu.Lock()
	defer p.mu.Unlock()
	p.candidatesSeen = append(p.candidatesSeen, evt)
	return nil
}

func (p *recordingPublisher) PublishDomainStatusChange(ctx context.Context, evt eventbus.DomainStatusChangeEvent) error {
	p.mu.Lock()
	defer p.mu.Unlock()
	p.statusChanges = append(p.statusChanges, evt)
	return nil
}

func openTestRegistry(t *testing.T, opts Options) *Registry {
	t.Helper()
	dbPath := filepath.Join(t.TempDir(), "registry.db")
	reg, err := Open(dbPath, opts)
	if err != nil {
		t.Fatalf("open registry: %v", err)
	}
	t.Cleanup(func() { reg.Close() })
	return reg
}

func TestRegisterOrGetIsIdempotent(t *testing.T) {
	reg := openTestRegistry(t, Options{})
	ctx := context.Background()

	first, err := reg.RegisterOrGet(ctx, "WWW.Example.ORG", "sess-1")
	if err != nil {
		t.Fatalf("register: %v", err)
	}
	if first.DomainName != "example.org" {
		t.Fatalf("expected normalized host, got %q", first.DomainName)
	}
	if first.DiscoveryCount != 1 {
		t.Fatalf("expected discovery_count 1, got %d", first.DiscoveryCount)
	}

	second, err := reg.RegisterOrGet(ctx, "example.org", "sess-2")
	if err != nil {
		t.Fatalf("register again: %v", err)
	}
	if second.ID != first.ID {
		t.Fatalf("expected same domain id, got %d vs %d", second.ID, first.ID)
	}
	if second.DiscoveryCount != 2 {
		t.Fatalf("expected discovery_count 2, got %d", second.DiscoveryCount)
	}
}

func TestShouldProcessUnknownDomainIsOK(t *testing.T) {
	reg := openTestRegistry(t, Options{})
	result, err := reg.ShouldProcess(context.Background(), "new-domain.org")
	if err != nil {
		t.Fatalf("should process: %v", err)
	}
	if result != model.CheckOK {
		t.Fatalf("expected CheckOK, got %s", result)
	}
}

func TestBlacklistIsTerminalForShouldProcess(t *testing.T) {
	pub := &recordingPublisher{}
	reg := openTestRegistry(t, Options{Events: pub})
	ctx := context.Background()

	if _, err := reg.RegisterOrGet(ctx, "spammy.org", "sess-1"); err != nil {
		t.Fatalf("register: %v", err)
	}
	if err := reg.Blacklist(ctx, "spammy.org", "known spam", "operator-1"); err != nil {
		t.Fatalf("blacklist: %v", err)
	}

	result, err := reg.ShouldProcess(ctx, "spammy.org")
	if err != nil {
		t.Fatalf("should process: %v", err)
	}
	if result != model.CheckSkipBlacklisted {
		t.Fatalf("expected SKIP_BLACKLISTED, got %s", result)
	}

	blacklisted, err := reg.IsBlacklisted(ctx, "spammy.org")
	if err != nil {
		t.Fatalf("is blacklisted: %v", err)
	}
	if !blacklisted {
		t.Fatalf("expected domain to be blacklisted")
	}

	pub.mu.Lock()
	defer pub.mu.Unlock()
	if len(pub.statusChanges) != 1 {
		t.Fatalf("expected 1 status change event, got %d", len(pub.statusChanges))
	}
	if pub.statusChanges[0].NewStatus != string(model.DomainBlacklisted) {
		t.Fatalf("expected BLACKLISTED event, got %v", pub.statusChanges[0])
	}
}

func TestMarkNoFundsSkipsUntilRevisitAfter(t *testing.T) {
	reg := openTestRegistry(t, Options{})
	ctx := context.Background()
	fixedNow := time.Date(2026, 6, 1, 12, 0, 0, 0, time.UTC)
	reg.now = func() time.Time { return fixedNow }

	if _, err := reg.RegisterOrGet(ctx, "nofunds.org", "sess-1"); err != nil {
		t.Fatalf("register: %v", err)
	}
	revisit := fixedNow.Add(48 * time.Hour)
	if err := reg.MarkNoFunds(ctx, "nofunds.org", "grant cycle closed", revisit, "operator-1"); err != nil {
		t.Fatalf("mark no funds: %v", err)
	}

	result, err := reg.ShouldProcess(ctx, "nofunds.org")
	if err != nil {
		t.Fatalf("should process: %v", err)
	}
	if result != model.CheckSkipNoFunds {
		t.Fatalf("expected SKIP_NO_FUNDS before revisit_after, got %s", result)
	}

	reg.now = func() time.Time { return revisit.Add(time.Second) }
	result, err = reg.ShouldProcess(ctx, "nofunds.org")
	if err != nil {
		t.Fatalf("should process after revisit: %v", err)
	}
	if result != model.CheckOK {
		t.Fatalf("expected CheckOK after revisit_after, got %s", result)
	}
}

func TestRecentProcessingCooldown(t *testing.T) {
	reg := openTestRegistry(t, Options{Cooldown: time.Hour})
	ctx := context.Background()
	fixedNow := time.Date(2026, 6, 1, 12, 0, 0, 0, time.UTC)
	reg.now = func() time.Time { return fixedNow }

	d, err := reg.RegisterOrGet(ctx, "recent.org", "sess-1")
	if err != nil {
		t.Fatalf("register: %v", err)
	}
	if err := reg.RecordProcessing(ctx, d.ID, "sess-1", "", model.OutcomeSkippedLowConfidence, decimal.NewFromFloat(0.4)); err != nil {
		t.Fatalf("record processing: %v", err)
	}

	result, err := reg.ShouldProcess(ctx, "recent.org")
	if err != nil {
		t.Fatalf("should process: %v", err)
	}
	if result != model.CheckSkipRecent {
		t.Fatalf("expected SKIP_RECENT within cooldown, got %s", result)
	}

	reg.now = func() time.Time { return fixedNow.Add(2 * time.Hour) }
	result, err = reg.ShouldProcess(ctx, "recent.org")
	if err != nil {
		t.Fatalf("should process after cooldown: %v", err)
	}
	if result != model.CheckOK {
		t.Fatalf("expected CheckOK after cooldown, got %s", result)
	}
}

func TestAcquireProcessingLockIsExclusiveUntilExpiry(t *testing.T) {
	reg := openTestRegistry(t, Options{})
	ctx := context.Background()
	fixedNow := time.Date(2026, 6, 1, 12, 0, 0, 0, time.UTC)
	reg.now = func() time.Time { return fixedNow }

	d, err := reg.RegisterOrGet(ctx, "locked.org", "sess-1")
	if err != nil {
		t.Fatalf("register: %v", err)
	}

	ok, err := reg.AcquireProcessingLock(ctx, d.ID, "worker-a", time.Minute)
	if err != nil || !ok {
		t.Fatalf("expected worker-a to acquire lock, ok=%v err=%v", ok, err)
	}

	ok, err = reg.AcquireProcessingLock(ctx, d.ID, "worker-b", time.Minute)
	if err != nil {
		t.Fatalf("worker-b attempt: %v", err)
	}
	if ok {
		t.Fatalf("expected worker-b to be denied the live lock")
	}

	reg.now = func() time.Time { return fixedNow.Add(2 * time.Minute) }
	ok, err = reg.AcquireProcessingLock(ctx, d.ID, "worker-b", time.Minute)
	if err != nil || !ok {
		t.Fatalf("expected worker-b to acquire expired lock, ok=%v err=%v", ok, err)
	}
}

func TestReleaseProcessingLockAllowsImmediateReacquire(t *testing.T) {
	reg := openTestRegistry(t, Options{})
	ctx := context.Background()

	d, err := reg.RegisterOrGet(ctx, "released.org", "sess-1")
	if err != nil {
		t.Fatalf("register: %v", err)
	}
	if ok, err := reg.AcquireProcessingLock(ctx, d.ID, "worker-a", time.Hour); err != nil || !ok {
		t.Fatalf("acquire: ok=%v err=%v", ok, err)
	}
	if err := reg.ReleaseProcessingLock(ctx, d.ID, "worker-a"); err != nil {
		t.Fatalf("release: %v", err)
	}
	if ok, err := reg.AcquireProcessingLock(ctx, d.ID, "worker-b", time.Hour); err != nil || !ok {
		t.Fatalf("expected reacquire to succeed after release, ok=%v err=%v", ok, err)
	}
}

func TestCreateCandidateThenRecordProcessingRaisesBestScore(t *testing.T) {
	reg := openTestRegistry(t, Options{})
	ctx := context.Background()

	d, err := reg.RegisterOrGet(ctx, "funder.org", "sess-1")
	if err != nil {
		t.Fatalf("register: %v", err)
	}

	cand := model.Candidate{
		CandidateID:        "cand-1",
		DomainID:           d.ID,
		DiscoverySessionID: "sess-1",
		SourceURL:          "https://funder.org/grants",
		OrganizationName:   "Funder Org",
		ConfidenceScore:    decimal.NewFromFloat(0.81),
		Status:             model.CandidatePendingCrawl,
		DiscoveredAt:       reg.now(),
		DiscoveredBy:       "SYSTEM",
	}
	if err := reg.CreateCandidate(ctx, cand); err != nil {
		t.Fatalf("create candidate: %v", err)
	}
	if err := reg.RecordProcessing(ctx, d.ID, "sess-1", cand.CandidateID, model.OutcomeCandidateCreated, cand.ConfidenceScore); err != nil {
		t.Fatalf("record processing: %v", err)
	}

	updated, err := reg.getByName(ctx, "funder.org")
	if err != nil {
		t.Fatalf("get by name: %v", err)
	}
	if !updated.BestConfidenceScore.Equal(decimal.NewFromFloat(0.81)) {
		t.Fatalf("expected best_confidence_score 0.81, got %s", updated.BestConfidenceScore)
	}
	if updated.HighQualityCandidateCnt != 1 {
		t.Fatalf("expected high_quality_candidate_cnt 1, got %d", updated.HighQualityCandidateCnt)
	}
}

func TestRecordSkipInsertsLogRowWithoutADomain(t *testing.T) {
	reg := openTestRegistry(t, Options{})
	ctx := context.Background()

	if err := reg.RecordSkip(ctx, "sess-1", model.OutcomeSkippedInvalidURL); err != nil {
		t.Fatalf("record skip: %v", err)
	}

	var outcome string
	var domainID sql.NullInt64
	row := reg.db.QueryRowContext(ctx, `SELECT domain_id, outcome FROM domain_processing_log WHERE discovery_session_id = ?`, "sess-1")
	if err := row.Scan(&domainID, &outcome); err != nil {
		t.Fatalf("scan log row: %v", err)
	}
	if domainID.Valid {
		t.Fatalf("expected NULL domain_id for an invalid-URL skip, got %v", domainID.Int64)
	}
	if outcome != string(model.OutcomeSkippedInvalidURL) {
		t.Fatalf("expected outcome %s, got %s", model.OutcomeSkippedInvalidURL, outcome)
	}
}

func TestIsBlacklistedDefaultsToFalseForUnknownDomain(t *testing.T) {
	reg := openTestRegistry(t, Options{})
	blacklisted, err := reg.IsBlacklisted(context.Background(), "never-seen.org")
	if err != nil {
		t.Fatalf("is blacklisted: %v", err)
	}
	if blacklisted {
		t.Fatalf("expected false default for unknown domain")
	}
}

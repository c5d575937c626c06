package registry

const schema = `
CREATE TABLE IF NOT EXISTS domains (
	id INTEGER PRIMARY KEY AUTOINCREMENT,
	domain_name TEXT NOT NULL UNIQUE,
	status TEXT NOT NULL DEFAULT 'ACTIVE',
	first_discovered_at DATETIME NOT NULL DEFAULT (datetime('now')),
	last_seen_at DATETIME NOT NULL DEFAULT (datetime('now')),
	discovery_count INTEGER NOT NULL DEFAULT 1,
	last_processed_at DATETIME,
	best_confidence_score TEXT NOT NULL DEFAULT '0.00',
	high_quality_candidate_cnt INTEGER NOT NULL DEFAULT 0,
	low_quality_candidate_cnt INTEGER NOT NULL DEFAULT 0,
	blacklist_reason TEXT NOT NULL DEFAULT '',
	blacklisted_by TEXT NOT NULL DEFAULT '',
	blacklisted_at DATETIME,
	no_funds_reason TEXT NOT NULL DEFAULT '',
	revisit_after DATETIME,
	failure_count INTEGER NOT NULL DEFAULT 0,
	next_retry_at DATETIME
);

CREATE TABLE IF NOT EXISTS domain_processing_log (
	id INTEGER PRIMARY KEY AUTOINCREMENT,
	domain_id INTEGER REFERENCES domains(id),
	processed_at DATETIME NOT NULL DEFAULT (datetime('now')),
	discovery_session_id TEXT NOT NULL,
	candidate_id TEXT NOT NULL DEFAULT '',
	outcome TEXT NOT NULL
);

CREATE TABLE IF NOT EXISTS funding_source_candidates (
	candidate_id TEXT PRIMARY KEY,
	domain_id INTEGER NOT NULL REFERENCES domains(id),
	discovery_session_id TEXT NOT NULL,
	source_url TEXT NOT NULL,
	organization_name TEXT NOT NULL DEFAULT '',
	description TEXT NOT NULL DEFAULT '',
	confidence_score TEXT NOT NULL,
	status TEXT NOT NULL DEFAULT 'PENDING_CRAWL',
	discovered_at DATETIME NOT NULL DEFAULT (datetime('now')),
	discovered_by TEXT NOT NULL DEFAULT 'SYSTEM',
	raw_title TEXT NOT NULL DEFAULT '',
	raw_description TEXT NOT NULL DEFAULT '',
	raw_backend TEXT NOT NULL DEFAULT ''
);

CREATE TABLE IF NOT EXISTS processing_locks (
	domain_id INTEGER PRIMARY KEY REFERENCES domains(id),
	worker_id TEXT NOT NULL,
	acquired_at DATETIME NOT NULL DEFAULT (datetime('now')),
	expires_at DATETIME NOT NULL
);

CREATE INDEX IF NOT EXISTS idx_domains_status ON domains(status);
CREATE INDEX IF NOT EXISTS idx_domains_revisit_after ON domains(revisit_after);
CREATE INDEX IF NOT EXISTS idx_domains_next_retry_at ON domains(next_retry_at);
CREATE INDEX IF NOT EXISTS idx_processing_log_domain ON domain_processing_log(domain_id);
CREATE INDEX IF NOT EXISTS idx_processing_log_session ON domain_processing_log(discovery_session_id);
CREATE INDEX IF NOT EXISTS idx_candidates_domain ON funding_source_candidates(domain_id);
CREATE INDEX IF NOT EXISTS idx_processing_locks_expires ON processing_locks(expires_at);
`

package db

import (
	"context"
	"fmt"
)

var migrations = []struct {
	name  string
	query string
}{
	{"suggestions", `
	CREATE TABLE IF NOT EXISTS suggestions (
		idx INTEGER PRIMARY KEY AUTOINCREMENT,
		submitter_id TEXT NOT NULL,
		asset_id TEXT NOT NULL,
		animated INTEGER NOT NULL DEFAULT 0,
		name TEXT NOT NULL,
		note TEXT NOT NULL DEFAULT '',
		submitted_at INTEGER NOT NULL,
		upvotes INTEGER NOT NULL DEFAULT 0,
		downvotes INTEGER NOT NULL DEFAULT 0,
		status TEXT NOT NULL DEFAULT 'pending',
		revoked INTEGER NOT NULL DEFAULT 0,
		resolved_by TEXT,
		resolved_reason TEXT,
		resolved_at INTEGER,
		withdrawn_at INTEGER,
		review_message_id TEXT,
		public_message_id TEXT,
		source_message_id TEXT
	);`},
	{"suggestions_review_message", `CREATE INDEX IF NOT EXISTS idx_suggestions_review_message ON suggestions(review_message_id);`},
	{"suggestions_public_message", `CREATE INDEX IF NOT EXISTS idx_suggestions_public_message ON suggestions(public_message_id);`},
	{"suggestions_source_message", `CREATE INDEX IF NOT EXISTS idx_suggestions_source_message ON suggestions(source_message_id);`},
	{"suggestions_submitter", `CREATE INDEX IF NOT EXISTS idx_suggestions_submitter ON suggestions(submitter_id, status);`},
	{"votes", `
	CREATE TABLE IF NOT EXISTS votes (
		suggestion_idx INTEGER NOT NULL REFERENCES suggestions(idx),
		reviewer_id TEXT NOT NULL,
		pool TEXT NOT NULL,
		has_approved INTEGER NOT NULL DEFAULT 0,
		has_denied INTEGER NOT NULL DEFAULT 0,
		vote_time INTEGER NOT NULL,
		PRIMARY KEY (suggestion_idx, reviewer_id, pool)
	);`},
	{"votes_reviewer", `CREATE INDEX IF NOT EXISTS idx_votes_reviewer ON votes(reviewer_id);`},
}

func (s *Store) migrate(ctx context.Context) error {
	for _, m := range migrations {
		if _, err := s.db.ExecContext(ctx, m.query); err != nil {
			return fmt.Errorf("migrate %s: %w", m.name, err)
		}
	}
	return nil
}

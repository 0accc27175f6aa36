package db

import (
	"context"
	"database/sql"
	"errors"
	"time"

	"blobqueue/model"
)

// GetVoteInTx retrieves a reviewer's ledger entry. No entry is not an error.
func GetVoteInTx(ctx context.Context, tx *sql.Tx, idx int64, reviewerID string, pool model.Pool) (*model.VoteEntry, error) {
	row := tx.QueryRowContext(ctx, `
		SELECT suggestion_idx, reviewer_id, pool, has_approved, has_denied, vote_time
		FROM votes
		WHERE suggestion_idx = ? AND reviewer_id = ? AND pool = ?`, idx, reviewerID, string(pool))
	return scanVote(row)
}

// UpsertVoteInTx inserts a ledger entry or overwrites the existing one.
func UpsertVoteInTx(ctx context.Context, tx *sql.Tx, v *model.VoteEntry) error {
	_, err := tx.ExecContext(ctx, `
		INSERT INTO votes (suggestion_idx, reviewer_id, pool, has_approved, has_denied, vote_time)
		VALUES (?, ?, ?, ?, ?, ?)
		ON CONFLICT(suggestion_idx, reviewer_id, pool) DO UPDATE SET
		has_approved = excluded.has_approved,
		has_denied = excluded.has_denied,
		vote_time = excluded.vote_time`,
		v.SuggestionIdx, v.ReviewerID, string(v.Pool), v.HasApproved, v.HasDenied, v.VotedAt.Unix(),
	)
	return err
}

// VoteHistory returns the latest entries with a standing intent where either the
// reviewer id or the suggestion index equals id.
func (s *Store) VoteHistory(ctx context.Context, id string, limit int) ([]model.VoteEntry, error) {
	rows, err := s.db.QueryContext(ctx, `
		SELECT suggestion_idx, reviewer_id, pool, has_approved, has_denied, vote_time
		FROM votes
		WHERE (reviewer_id = ? OR CAST(suggestion_idx AS TEXT) = ?) AND (has_approved = 1 OR has_denied = 1)
		ORDER BY vote_time DESC, rowid DESC
		LIMIT ?`, id, id, limit)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	var entries []model.VoteEntry
	for rows.Next() {
		v, err := scanVote(rows)
		if err != nil {
			return nil, err
		}
		entries = append(entries, *v)
	}
	return entries, rows.Err()
}

func scanVote(scanner rowScanner) (*model.VoteEntry, error) {
	var (
		v       model.VoteEntry
		pool    string
		votedAt int64
	)
	err := scanner.Scan(&v.SuggestionIdx, &v.ReviewerID, &pool, &v.HasApproved, &v.HasDenied, &votedAt)
	if err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return nil, nil
		}
		return nil, err
	}
	v.Pool = model.Pool(pool)
	v.VotedAt = time.Unix(votedAt, 0)
	return &v, nil
}

package db

import (
	"context"
	"database/sql"
	"errors"
	"fmt"
	"time"

	"blobqueue/model"
)

// ErrStaleState is returned when a transition is saved against a row whose state changed underneath it.
var ErrStaleState = errors.New("suggestion state changed concurrently")

// MessageKind selects one of the message handle columns.
type MessageKind string

const (
	ReviewMessage MessageKind = "review_message_id"
	PublicMessage MessageKind = "public_message_id"
	SourceMessage MessageKind = "source_message_id"
)

const suggestionColumns = `
	idx, submitter_id, asset_id, animated, name, note, submitted_at,
	upvotes, downvotes, status, revoked,
	COALESCE(resolved_by, ''), COALESCE(resolved_reason, ''), resolved_at, withdrawn_at,
	COALESCE(review_message_id, ''), COALESCE(public_message_id, ''), COALESCE(source_message_id, '')`

// rowScanner is an interface that can be satisfied by *sql.Row or *sql.Rows.
type rowScanner interface {
	Scan(dest ...any) error
}

// scanSuggestion scans a row into a Submission struct.
func scanSuggestion(scanner rowScanner) (*model.Submission, error) {
	var (
		sub         model.Submission
		submittedAt int64
		status      string
		resolvedBy  string
		reason      string
		resolvedAt  sql.NullInt64
		withdrawnAt sql.NullInt64
	)
	err := scanner.Scan(
		&sub.Idx, &sub.SubmitterID, &sub.Asset.ID, &sub.Asset.Animated, &sub.Name, &sub.Note, &submittedAt,
		&sub.Upvotes, &sub.Downvotes, &status, &sub.Revoked,
		&resolvedBy, &reason, &resolvedAt, &withdrawnAt,
		&sub.ReviewMessageID, &sub.PublicMessageID, &sub.SourceMessageID,
	)
	if err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return nil, nil
		}
		return nil, err
	}

	sub.SubmittedAt = time.Unix(submittedAt, 0)
	sub.State = model.State(status)
	if resolvedAt.Valid {
		sub.Resolution = &model.Resolution{
			ActorID:    resolvedBy,
			Reason:     reason,
			ResolvedAt: time.Unix(resolvedAt.Int64, 0),
		}
	}
	if withdrawnAt.Valid {
		t := time.Unix(withdrawnAt.Int64, 0)
		sub.WithdrawnAt = &t
	}
	return &sub, nil
}

func scanSuggestions(rows *sql.Rows) ([]*model.Submission, error) {
	defer rows.Close()

	var subs []*model.Submission
	for rows.Next() {
		sub, err := scanSuggestion(rows)
		if err != nil {
			return nil, err
		}
		subs = append(subs, sub)
	}
	return subs, rows.Err()
}

// InsertSuggestion stores a new pending suggestion and returns its index.
func (s *Store) InsertSuggestion(ctx context.Context, sub *model.Submission) (int64, error) {
	res, err := s.db.ExecContext(ctx, `
		INSERT INTO suggestions (submitter_id, asset_id, animated, name, note, submitted_at, status, source_message_id)
		VALUES (?, ?, ?, ?, ?, ?, ?, NULLIF(?, ''))`,
		sub.SubmitterID, sub.Asset.ID, sub.Asset.Animated, sub.Name, sub.Note, sub.SubmittedAt.Unix(),
		string(model.StatePending), sub.SourceMessageID,
	)
	if err != nil {
		return 0, fmt.Errorf("insert suggestion: %w", err)
	}
	return res.LastInsertId()
}

// GetSuggestion retrieves a suggestion by index. It returns nil, nil when none exists.
func (s *Store) GetSuggestion(ctx context.Context, idx int64) (*model.Submission, error) {
	return getSuggestion(ctx, s.db, idx)
}

// GetSuggestionInTx is GetSuggestion within a transaction.
func GetSuggestionInTx(ctx context.Context, tx *sql.Tx, idx int64) (*model.Submission, error) {
	return getSuggestion(ctx, tx, idx)
}

func getSuggestion(ctx context.Context, q querier, idx int64) (*model.Submission, error) {
	row := q.QueryRowContext(ctx, `SELECT `+suggestionColumns+` FROM suggestions WHERE idx = ?`, idx)
	return scanSuggestion(row)
}

// GetSuggestionByMessage finds the suggestion owning a review, public or source message.
func (s *Store) GetSuggestionByMessage(ctx context.Context, messageID string) (*model.Submission, error) {
	row := s.db.QueryRowContext(ctx, `SELECT `+suggestionColumns+` FROM suggestions
		WHERE review_message_id = ? OR public_message_id = ? OR source_message_id = ?
		LIMIT 1`, messageID, messageID, messageID)
	return scanSuggestion(row)
}

// UpdateTallyInTx adjusts the counters, never letting either drop below zero.
func UpdateTallyInTx(ctx context.Context, tx *sql.Tx, idx int64, up, down int) error {
	_, err := tx.ExecContext(ctx, `
		UPDATE suggestions
		SET upvotes = MAX(upvotes + ?, 0), downvotes = MAX(downvotes + ?, 0)
		WHERE idx = ?`, up, down, idx)
	return err
}

// SaveStateInTx persists the lifecycle fields of sub. The write only lands if the row
// is still in state from, otherwise ErrStaleState is returned.
func SaveStateInTx(ctx context.Context, tx *sql.Tx, sub *model.Submission, from model.State) error {
	var (
		resolvedBy, reason any
		resolvedAt         any
		withdrawnAt        any
	)
	if sub.Resolution != nil {
		resolvedAt = sub.Resolution.ResolvedAt.Unix()
		if sub.Resolution.ActorID != "" {
			resolvedBy = sub.Resolution.ActorID
		}
		if sub.Resolution.Reason != "" {
			reason = sub.Resolution.Reason
		}
	}
	if sub.WithdrawnAt != nil {
		withdrawnAt = sub.WithdrawnAt.Unix()
	}

	res, err := tx.ExecContext(ctx, `
		UPDATE suggestions SET
			status = ?, revoked = ?, upvotes = ?, downvotes = ?,
			resolved_by = ?, resolved_reason = ?, resolved_at = ?, withdrawn_at = ?,
			public_message_id = NULLIF(?, '')
		WHERE idx = ? AND status = ?`,
		string(sub.State), sub.Revoked, sub.Upvotes, sub.Downvotes,
		resolvedBy, reason, resolvedAt, withdrawnAt,
		sub.PublicMessageID,
		sub.Idx, string(from),
	)
	if err != nil {
		return fmt.Errorf("save suggestion %d: %w", sub.Idx, err)
	}
	n, err := res.RowsAffected()
	if err != nil {
		return err
	}
	if n == 0 {
		return ErrStaleState
	}
	return nil
}

// SetMessageID records a message handle. An empty id clears it.
func (s *Store) SetMessageID(ctx context.Context, idx int64, kind MessageKind, messageID string) error {
	switch kind {
	case ReviewMessage, PublicMessage, SourceMessage:
	default:
		return fmt.Errorf("unknown message kind %q", kind)
	}
	query := fmt.Sprintf("UPDATE suggestions SET %s = NULLIF(?, '') WHERE idx = ?", kind)
	_, err := s.db.ExecContext(ctx, query, messageID, idx)
	return err
}

// UpdateNote replaces the note of a suggestion.
func (s *Store) UpdateNote(ctx context.Context, idx int64, note string) error {
	_, err := s.db.ExecContext(ctx, "UPDATE suggestions SET note = ? WHERE idx = ?", note, idx)
	return err
}

// ListSuggestions returns the newest suggestions first.
func (s *Store) ListSuggestions(ctx context.Context, limit int) ([]*model.Submission, error) {
	rows, err := s.db.QueryContext(ctx, `SELECT `+suggestionColumns+` FROM suggestions ORDER BY idx DESC LIMIT ?`, limit)
	if err != nil {
		return nil, err
	}
	return scanSuggestions(rows)
}

// PendingBySubmitter returns the pending suggestions a user still owns.
func (s *Store) PendingBySubmitter(ctx context.Context, userID string) ([]*model.Submission, error) {
	rows, err := s.db.QueryContext(ctx, `SELECT `+suggestionColumns+` FROM suggestions
		WHERE submitter_id = ? AND status = ? ORDER BY idx`, userID, string(model.StatePending))
	if err != nil {
		return nil, err
	}
	return scanSuggestions(rows)
}

// MissingMessages returns suggestions whose queue message is gone: pending ones without a
// review message and public, non-withdrawn ones without a public message.
func (s *Store) MissingMessages(ctx context.Context) ([]*model.Submission, error) {
	rows, err := s.db.QueryContext(ctx, `SELECT `+suggestionColumns+` FROM suggestions
		WHERE (status = ? AND review_message_id IS NULL)
		   OR (status = ? AND withdrawn_at IS NULL AND public_message_id IS NULL)
		ORDER BY idx`, string(model.StatePending), string(model.StatePublic))
	if err != nil {
		return nil, err
	}
	return scanSuggestions(rows)
}

package queue

import (
	"context"
	"database/sql"
	"errors"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"blobqueue/db"
	"blobqueue/model"
	"blobqueue/vote"
)

func ballotFor(sub *model.Submission, reviewer string) vote.Ballot {
	return vote.Ballot{
		Suggestion: sub.Idx,
		Reviewer:   reviewer,
		Pool:       model.PoolReview,
		Direction:  vote.Approve,
		Action:     vote.Cast,
		At:         time.Now(),
	}
}

func TestRunTxRetriesTransientFailures(t *testing.T) {
	h := newHarness(t)
	ctx := context.Background()
	sub := h.submit(t, "blobcat")

	attempts := 0
	err := h.svc.runTx(ctx, func(tx *sql.Tx) error {
		attempts++
		if _, err := vote.RecordInTx(ctx, tx, ballotFor(sub, "r1")); err != nil {
			return err
		}
		if attempts < 3 {
			return errors.New("database is locked")
		}
		return nil
	})
	require.NoError(t, err)
	assert.Equal(t, 3, attempts)

	// Rolled back attempts leave nothing behind.
	assert.Equal(t, model.Tally{Up: 1}, h.reload(t, sub.Idx).Tally())
	history, err := h.svc.VoteHistory(ctx, "r1")
	require.NoError(t, err)
	assert.Len(t, history, 1)
}

func TestRunTxGivesUp(t *testing.T) {
	h := newHarness(t)
	attempts := 0
	err := h.svc.runTx(context.Background(), func(*sql.Tx) error {
		attempts++
		return errors.New("disk I/O error")
	})
	require.Error(t, err)
	assert.Equal(t, maxTxRetries+1, attempts)
}

func TestRunTxIsAllOrNothing(t *testing.T) {
	h := newHarness(t)
	ctx := context.Background()
	sub := h.submit(t, "blobcat")

	attempts := 0
	err := h.svc.runTx(ctx, func(tx *sql.Tx) error {
		attempts++
		if _, err := vote.RecordInTx(ctx, tx, ballotFor(sub, "r1")); err != nil {
			return err
		}
		current, err := db.GetSuggestionInTx(ctx, tx, sub.Idx)
		if err != nil {
			return err
		}
		current.State = model.StatePublic
		// The row is pending, so a write guarded on public fails.
		return db.SaveStateInTx(ctx, tx, current, model.StatePublic)
	})
	require.ErrorIs(t, err, db.ErrStaleState)
	assert.Equal(t, 1, attempts)

	got := h.reload(t, sub.Idx)
	assert.Equal(t, model.StatePending, got.State)
	assert.Equal(t, model.Tally{}, got.Tally())
	history, err := h.svc.VoteHistory(ctx, "r1")
	require.NoError(t, err)
	assert.Empty(t, history)
}

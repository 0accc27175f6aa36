package db

import (
	"context"
	"database/sql"
	"path/filepath"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"blobqueue/model"
)

func newTestStore(t *testing.T) *Store {
	t.Helper()
	s, err := Open(filepath.Join(t.TempDir(), "queue.db"))
	require.NoError(t, err)
	t.Cleanup(func() { s.Close() })
	return s
}

func insert(t *testing.T, s *Store, name string) int64 {
	t.Helper()
	idx, err := s.InsertSuggestion(context.Background(), &model.Submission{
		SubmitterID:     "user-1",
		Asset:           model.AssetRef{ID: "emoji-" + name},
		Name:            name,
		SubmittedAt:     time.Now(),
		SourceMessageID: "src-" + name,
	})
	require.NoError(t, err)
	return idx
}

func TestInsertAndGetSuggestion(t *testing.T) {
	s := newTestStore(t)
	ctx := context.Background()

	first := insert(t, s, "blobcat")
	second := insert(t, s, "blobfox")
	assert.Greater(t, second, first)

	sub, err := s.GetSuggestion(ctx, first)
	require.NoError(t, err)
	require.NotNil(t, sub)
	assert.Equal(t, "blobcat", sub.Name)
	assert.Equal(t, model.StatePending, sub.State)
	assert.Equal(t, "src-blobcat", sub.SourceMessageID)
	assert.Empty(t, sub.ReviewMessageID)
	assert.Nil(t, sub.Resolution)
	assert.Nil(t, sub.WithdrawnAt)

	missing, err := s.GetSuggestion(ctx, 999)
	require.NoError(t, err)
	assert.Nil(t, missing)
}

func TestGetSuggestionByMessage(t *testing.T) {
	s := newTestStore(t)
	ctx := context.Background()
	idx := insert(t, s, "blobcat")

	require.NoError(t, s.SetMessageID(ctx, idx, ReviewMessage, "review-1"))

	sub, err := s.GetSuggestionByMessage(ctx, "review-1")
	require.NoError(t, err)
	require.NotNil(t, sub)
	assert.Equal(t, idx, sub.Idx)

	sub, err = s.GetSuggestionByMessage(ctx, "src-blobcat")
	require.NoError(t, err)
	require.NotNil(t, sub)

	require.NoError(t, s.SetMessageID(ctx, idx, ReviewMessage, ""))
	sub, err = s.GetSuggestionByMessage(ctx, "review-1")
	require.NoError(t, err)
	assert.Nil(t, sub)

	assert.Error(t, s.SetMessageID(ctx, idx, MessageKind("name"), "x"))
}

func TestUpdateTallyFloorsAtZero(t *testing.T) {
	s := newTestStore(t)
	ctx := context.Background()
	idx := insert(t, s, "blobcat")

	err := s.WithTx(ctx, func(tx *sql.Tx) error {
		if err := UpdateTallyInTx(ctx, tx, idx, 2, 0); err != nil {
			return err
		}
		return UpdateTallyInTx(ctx, tx, idx, -1, -1)
	})
	require.NoError(t, err)

	sub, err := s.GetSuggestion(ctx, idx)
	require.NoError(t, err)
	assert.Equal(t, 1, sub.Upvotes)
	assert.Equal(t, 0, sub.Downvotes)
}

func TestSaveStateInTx(t *testing.T) {
	s := newTestStore(t)
	ctx := context.Background()
	idx := insert(t, s, "blobcat")

	sub, err := s.GetSuggestion(ctx, idx)
	require.NoError(t, err)

	sub.State = model.StateDenied
	sub.Revoked = true
	sub.Resolution = &model.Resolution{ActorID: "user-1", Reason: "Manually revoked", ResolvedAt: time.Now()}
	require.NoError(t, s.WithTx(ctx, func(tx *sql.Tx) error {
		return SaveStateInTx(ctx, tx, sub, model.StatePending)
	}))

	got, err := s.GetSuggestion(ctx, idx)
	require.NoError(t, err)
	assert.Equal(t, model.StateDenied, got.State)
	assert.True(t, got.Revoked)
	require.NotNil(t, got.Resolution)
	assert.Equal(t, "user-1", got.Resolution.ActorID)
	assert.Equal(t, "Manually revoked", got.Resolution.Reason)

	// The row is no longer pending, so a second save from pending must not land.
	err = s.WithTx(ctx, func(tx *sql.Tx) error {
		return SaveStateInTx(ctx, tx, sub, model.StatePending)
	})
	assert.ErrorIs(t, err, ErrStaleState)
}

func TestVoteUpsertAndHistory(t *testing.T) {
	s := newTestStore(t)
	ctx := context.Background()
	a := insert(t, s, "blobcat")
	b := insert(t, s, "blobfox")
	now := time.Now()

	require.NoError(t, s.WithTx(ctx, func(tx *sql.Tx) error {
		entries := []*model.VoteEntry{
			{SuggestionIdx: a, ReviewerID: "r1", Pool: model.PoolReview, HasApproved: true, VotedAt: now.Add(-time.Minute)},
			{SuggestionIdx: b, ReviewerID: "r1", Pool: model.PoolReview, HasDenied: true, VotedAt: now},
			{SuggestionIdx: a, ReviewerID: "r2", Pool: model.PoolReview, VotedAt: now},
		}
		for _, e := range entries {
			if err := UpsertVoteInTx(ctx, tx, e); err != nil {
				return err
			}
		}
		return nil
	}))

	require.NoError(t, s.WithTx(ctx, func(tx *sql.Tx) error {
		v, err := GetVoteInTx(ctx, tx, a, "r1", model.PoolReview)
		require.NoError(t, err)
		require.NotNil(t, v)
		assert.True(t, v.HasApproved)

		v.HasApproved = false
		v.HasDenied = true
		if err := UpsertVoteInTx(ctx, tx, v); err != nil {
			return err
		}

		none, err := GetVoteInTx(ctx, tx, a, "r1", model.PoolPublic)
		require.NoError(t, err)
		assert.Nil(t, none)
		return nil
	}))

	byReviewer, err := s.VoteHistory(ctx, "r1", 20)
	require.NoError(t, err)
	require.Len(t, byReviewer, 2)
	assert.Equal(t, b, byReviewer[0].SuggestionIdx)
	assert.True(t, byReviewer[1].HasDenied)
	assert.False(t, byReviewer[1].HasApproved)

	// r2 holds no intent, so only r1's row shows up for suggestion a.
	bySuggestion, err := s.VoteHistory(ctx, "1", 20)
	require.NoError(t, err)
	require.Len(t, bySuggestion, 1)
	assert.Equal(t, "r1", bySuggestion[0].ReviewerID)
}

func TestPendingAndMissingMessages(t *testing.T) {
	s := newTestStore(t)
	ctx := context.Background()
	a := insert(t, s, "blobcat")
	b := insert(t, s, "blobfox")
	require.NoError(t, s.SetMessageID(ctx, b, ReviewMessage, "review-b"))

	pending, err := s.PendingBySubmitter(ctx, "user-1")
	require.NoError(t, err)
	assert.Len(t, pending, 2)

	missing, err := s.MissingMessages(ctx)
	require.NoError(t, err)
	require.Len(t, missing, 1)
	assert.Equal(t, a, missing[0].Idx)

	list, err := s.ListSuggestions(ctx, 1)
	require.NoError(t, err)
	require.Len(t, list, 1)
	assert.Equal(t, b, list[0].Idx)
}

package vote

import (
	"context"
	"database/sql"
	"path/filepath"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"blobqueue/db"
	"blobqueue/model"
)

func TestApply(t *testing.T) {
	tests := []struct {
		name      string
		prev      model.VoteEntry
		dir       Direction
		act       Action
		wantDelta Delta
		wantUp    bool
		wantDown  bool
	}{
		{"cast approve", model.VoteEntry{}, Approve, Cast, Delta{Up: 1}, true, false},
		{"cast approve twice", model.VoteEntry{HasApproved: true}, Approve, Cast, Delta{}, true, false},
		{"revoke approve", model.VoteEntry{HasApproved: true}, Approve, Revoke, Delta{Up: -1}, false, false},
		{"revoke without cast", model.VoteEntry{}, Approve, Revoke, Delta{}, false, false},
		{"cast deny keeps approve", model.VoteEntry{HasApproved: true}, Deny, Cast, Delta{Down: 1}, true, true},
		{"revoke deny", model.VoteEntry{HasDenied: true}, Deny, Revoke, Delta{Down: -1}, false, false},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			next, d := Apply(tt.prev, tt.dir, tt.act)
			assert.Equal(t, tt.wantDelta, d)
			assert.Equal(t, tt.wantUp, next.HasApproved)
			assert.Equal(t, tt.wantDown, next.HasDenied)
		})
	}
}

func TestEvaluate(t *testing.T) {
	th := Thresholds{RequiredVotes: 5, RequiredDifference: 3}

	tests := []struct {
		up, down int
		want     Decision
	}{
		{4, 0, NoAction},
		{4, 1, Promote},
		{1, 4, Reject},
		{3, 3, NoAction},
		{0, 0, NoAction},
		{10, 8, NoAction},
	}

	for _, tt := range tests {
		got := Evaluate(model.Tally{Up: tt.up, Down: tt.down}, th)
		assert.Equal(t, tt.want, got, "tally %d/%d", tt.up, tt.down)
	}
}

func TestRecordInTx(t *testing.T) {
	store, err := db.Open(filepath.Join(t.TempDir(), "queue.db"))
	require.NoError(t, err)
	t.Cleanup(func() { store.Close() })

	ctx := context.Background()
	idx, err := store.InsertSuggestion(ctx, &model.Submission{SubmitterID: "u", Name: "blob", SubmittedAt: time.Now()})
	require.NoError(t, err)

	record := func(dir Direction, act Action) Delta {
		var d Delta
		require.NoError(t, store.WithTx(ctx, func(tx *sql.Tx) error {
			var err error
			d, err = RecordInTx(ctx, tx, Ballot{
				Suggestion: idx, Reviewer: "r1", Pool: model.PoolReview,
				Direction: dir, Action: act, At: time.Now(),
			})
			return err
		}))
		return d
	}
	tally := func() model.Tally {
		sub, err := store.GetSuggestion(ctx, idx)
		require.NoError(t, err)
		return sub.Tally()
	}

	assert.Equal(t, Delta{}, record(Approve, Revoke))
	assert.Equal(t, model.Tally{}, tally())

	assert.Equal(t, Delta{Up: 1}, record(Approve, Cast))
	assert.Equal(t, Delta{}, record(Approve, Cast))
	assert.Equal(t, model.Tally{Up: 1}, tally())

	assert.Equal(t, Delta{Up: -1}, record(Approve, Revoke))
	assert.Equal(t, model.Tally{}, tally())
}

package queue

import (
	"context"
	"strings"
	"sync"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"blobqueue/model"
)

func TestCompareValidation(t *testing.T) {
	h := newHarness(t)
	ctx := context.Background()
	a := h.publicEntry(t, "blobcat")
	b := h.publicEntry(t, "blobfox")
	pending := h.submit(t, "blobowl")

	tests := []struct {
		name    string
		entries []int64
	}{
		{"too few", []int64{a.Idx}},
		{"too many", []int64{1, 2, 3, 4, 5, 6, 7}},
		{"duplicate", []int64{a.Idx, a.Idx, b.Idx}},
		{"not public", []int64{a.Idx, pending.Idx}},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			_, err := h.svc.Compare(ctx, "mod", tt.entries, answer(true))
			assert.ErrorIs(t, err, ErrValidation)
		})
	}

	_, err := h.svc.Compare(ctx, "mod", []int64{a.Idx, 999}, answer(true))
	assert.ErrorIs(t, err, ErrNotFound)

	assert.Empty(t, h.assets.staged)
	assert.Empty(t, h.messenger.comparisons)
	assert.Equal(t, model.StatePublic, h.reload(t, a.Idx).State)
}

func TestCompareRejected(t *testing.T) {
	h := newHarness(t)
	ctx := context.Background()
	var entries []int64
	for _, name := range []string{"blobcat", "blobfox", "blobowl"} {
		sub := h.publicEntry(t, name)
		h.votes(t, sub.PublicMessageID, 2, 1)
		entries = append(entries, sub.Idx)
	}

	c, err := h.svc.Compare(ctx, "mod", entries, answer(false))
	require.NoError(t, err)
	assert.Equal(t, model.ComparisonRejected, c.State)
	assert.Len(t, h.assets.staged, 3)
	assert.Len(t, h.assets.unstaged, 3)
	assert.Empty(t, h.messenger.comparisons)

	for _, idx := range entries {
		got := h.reload(t, idx)
		assert.Equal(t, model.StatePublic, got.State)
		assert.False(t, got.Withdrawn())
		assert.Equal(t, model.Tally{Up: 2, Down: 1}, got.Tally())
		assert.NotEmpty(t, got.PublicMessageID)
	}
}

func TestCompareExpired(t *testing.T) {
	h := newHarness(t)
	a := h.publicEntry(t, "blobcat")
	b := h.publicEntry(t, "blobfox")

	c, err := h.svc.Compare(context.Background(), "mod", []int64{a.Idx, b.Idx}, neverAnswer)
	require.NoError(t, err)
	assert.Equal(t, model.ComparisonExpired, c.State)
	assert.Len(t, h.assets.unstaged, 2)
	assert.False(t, h.reload(t, a.Idx).Withdrawn())
}

func TestCompareConfirmed(t *testing.T) {
	h := newHarness(t)
	ctx := context.Background()
	var (
		entries []int64
		public  []string
	)
	for _, name := range []string{"blobcat", "blobfox", "blobowl"} {
		sub := h.publicEntry(t, name)
		h.votes(t, sub.PublicMessageID, 3, 1)
		entries = append(entries, sub.Idx)
		public = append(public, sub.PublicMessageID)
	}
	changelogBefore := len(h.messenger.changelog)

	c, err := h.svc.Compare(ctx, "mod", entries, answer(true))
	require.NoError(t, err)
	assert.Equal(t, model.ComparisonConfirmed, c.State)
	assert.NotEmpty(t, c.ID)
	require.Len(t, h.messenger.comparisons, 1)
	assert.True(t, strings.HasPrefix(c.MessageID, "vs-"))
	assert.Len(t, c.Staged, 3)
	for i, a := range c.Staged {
		assert.Equal(t, entries[i], a.Idx)
	}
	assert.Len(t, h.assets.unstaged, 3)

	for i, idx := range entries {
		assert.Equal(t, model.Tally{Up: 3, Down: 1}, c.FinalTallies[idx])

		got := h.reload(t, idx)
		assert.Equal(t, model.StatePublic, got.State)
		assert.True(t, got.Withdrawn())
		assert.Empty(t, got.PublicMessageID)
		assert.Equal(t, model.Tally{}, got.Tally())
		assert.Contains(t, h.messenger.deleted, deletedMessage{PublicChannel, public[i]})
	}
	assert.Len(t, h.assets.discarded, 3)
	require.Len(t, h.messenger.changelog, changelogBefore+1)
	assert.Contains(t, h.messenger.changelog[changelogBefore], "had 3 upvotes, 1 downvotes")
	assert.Contains(t, h.events.types(), model.EventComparisonPublished)

	// Retired entries cannot be compared again.
	_, err = h.svc.Compare(ctx, "mod", entries[:2], answer(true))
	assert.ErrorIs(t, err, ErrValidation)
}

func TestCompareBusy(t *testing.T) {
	h := newHarness(t)
	h.svc.opts.CompareTimeout = 5 * time.Second
	a := h.publicEntry(t, "blobcat")
	b := h.publicEntry(t, "blobfox")

	waiting := make(chan struct{})
	release := make(chan bool)
	slow := confirmFunc(func(ctx context.Context, _ *model.Comparison) (bool, error) {
		close(waiting)
		return <-release, nil
	})

	done := make(chan error, 1)
	go func() {
		_, err := h.svc.Compare(context.Background(), "mod", []int64{a.Idx, b.Idx}, slow)
		done <- err
	}()

	<-waiting
	_, err := h.svc.Compare(context.Background(), "mod", []int64{a.Idx, b.Idx}, answer(true))
	assert.ErrorIs(t, err, ErrComparisonBusy)

	release <- false
	require.NoError(t, <-done)
}

func TestCompareStagingFailure(t *testing.T) {
	h := newHarness(t)
	a := h.publicEntry(t, "blobcat")
	b := h.publicEntry(t, "blobfox")
	h.assets.failIdx = b.Idx

	_, err := h.svc.Compare(context.Background(), "mod", []int64{a.Idx, b.Idx}, answer(true))
	require.Error(t, err)
	assert.Equal(t, len(h.assets.staged), len(h.assets.unstaged))
	assert.Empty(t, h.messenger.comparisons)
	assert.False(t, h.reload(t, a.Idx).Withdrawn())
}

func TestCompareDeadlineStartsAfterStaging(t *testing.T) {
	h := newHarness(t)
	a := h.publicEntry(t, "blobcat")
	b := h.publicEntry(t, "blobfox")

	var mu sync.Mutex
	now := time.Now()
	h.svc.opts.Now = func() time.Time {
		mu.Lock()
		defer mu.Unlock()
		return now
	}
	start := h.svc.opts.Now()
	// Each upload takes a minute.
	h.assets.onStage = func() {
		mu.Lock()
		defer mu.Unlock()
		now = now.Add(time.Minute)
	}

	c, err := h.svc.Compare(context.Background(), "mod", []int64{a.Idx, b.Idx}, answer(false))
	require.NoError(t, err)
	assert.Equal(t, model.ComparisonRejected, c.State)
	assert.True(t, c.Deadline.Equal(start.Add(2*time.Minute+h.svc.opts.CompareTimeout)), "deadline %v", c.Deadline)
}

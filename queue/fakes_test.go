package queue

import (
	"context"
	"errors"
	"fmt"
	"path/filepath"
	"sync"
	"testing"
	"time"

	"github.com/stretchr/testify/require"
	"go.uber.org/zap"

	"blobqueue/db"
	"blobqueue/model"
	"blobqueue/vote"
)

type deletedMessage struct {
	ch Channel
	id string
}

type fakeMessenger struct {
	mu          sync.Mutex
	seq         int
	failReview  bool
	reviews     []int64
	publics     []int64
	comparisons []*model.Comparison
	refreshed   []int64
	changelog   []string
	deleted     []deletedMessage

	// onReview runs before a review post, outside the fake's lock.
	onReview func()
}

func (m *fakeMessenger) next(prefix string) string {
	m.seq++
	return fmt.Sprintf("%s-%d", prefix, m.seq)
}

func (m *fakeMessenger) PostReview(_ context.Context, s *model.Submission) (string, error) {
	m.mu.Lock()
	hook := m.onReview
	m.mu.Unlock()
	if hook != nil {
		hook()
	}

	m.mu.Lock()
	defer m.mu.Unlock()
	if m.failReview {
		return "", errors.New("discord unavailable")
	}
	m.reviews = append(m.reviews, s.Idx)
	return m.next("review"), nil
}

func (m *fakeMessenger) PostPublic(_ context.Context, s *model.Submission) (string, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.publics = append(m.publics, s.Idx)
	return m.next("public"), nil
}

func (m *fakeMessenger) PostComparison(_ context.Context, c *model.Comparison) (string, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.comparisons = append(m.comparisons, c)
	return m.next("vs"), nil
}

func (m *fakeMessenger) Refresh(_ context.Context, s *model.Submission) error {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.refreshed = append(m.refreshed, s.Idx)
	return nil
}

func (m *fakeMessenger) Changelog(_ context.Context, text string) error {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.changelog = append(m.changelog, text)
	return nil
}

func (m *fakeMessenger) setOnReview(fn func()) {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.onReview = fn
}

func (m *fakeMessenger) deletedIn(ch Channel) []string {
	m.mu.Lock()
	defer m.mu.Unlock()
	var ids []string
	for _, d := range m.deleted {
		if d.ch == ch {
			ids = append(ids, d.id)
		}
	}
	return ids
}

func (m *fakeMessenger) Delete(_ context.Context, ch Channel, id string) error {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.deleted = append(m.deleted, deletedMessage{ch, id})
	return nil
}

type fakeAssets struct {
	mu        sync.Mutex
	staged    []model.StagedAsset
	unstaged  []model.StagedAsset
	discarded []model.AssetRef
	failIdx   int64
	onStage   func()
}

func (a *fakeAssets) Stage(_ context.Context, s *model.Submission, label string) (model.StagedAsset, error) {
	a.mu.Lock()
	defer a.mu.Unlock()
	if s.Idx == a.failIdx {
		return model.StagedAsset{}, errors.New("emoji slots full")
	}
	if a.onStage != nil {
		a.onStage()
	}
	st := model.StagedAsset{Label: label, Name: label, Ref: model.AssetRef{ID: "tmp-" + s.Asset.ID}}
	a.staged = append(a.staged, st)
	return st, nil
}

func (a *fakeAssets) Unstage(_ context.Context, st model.StagedAsset) error {
	a.mu.Lock()
	defer a.mu.Unlock()
	a.unstaged = append(a.unstaged, st)
	return nil
}

func (a *fakeAssets) Discard(_ context.Context, ref model.AssetRef) error {
	a.mu.Lock()
	defer a.mu.Unlock()
	a.discarded = append(a.discarded, ref)
	return nil
}

type fakeNotifier struct {
	mu   sync.Mutex
	sent map[string][]string
}

func (n *fakeNotifier) Notify(_ context.Context, userID, message string) error {
	n.mu.Lock()
	defer n.mu.Unlock()
	if n.sent == nil {
		n.sent = make(map[string][]string)
	}
	n.sent[userID] = append(n.sent[userID], message)
	return nil
}

func (n *fakeNotifier) count(userID string) int {
	n.mu.Lock()
	defer n.mu.Unlock()
	return len(n.sent[userID])
}

type fakeEvents struct {
	mu     sync.Mutex
	events []model.Event
}

func (e *fakeEvents) Publish(_ context.Context, ev model.Event) {
	e.mu.Lock()
	defer e.mu.Unlock()
	e.events = append(e.events, ev)
}

func (e *fakeEvents) types() []string {
	e.mu.Lock()
	defer e.mu.Unlock()
	out := make([]string, 0, len(e.events))
	for _, ev := range e.events {
		out = append(out, ev.Type)
	}
	return out
}

// confirmFunc adapts a function to the Confirmer interface.
type confirmFunc func(ctx context.Context, c *model.Comparison) (bool, error)

func (f confirmFunc) Confirm(ctx context.Context, c *model.Comparison) (bool, error) {
	return f(ctx, c)
}

func answer(ok bool) Confirmer {
	return confirmFunc(func(context.Context, *model.Comparison) (bool, error) { return ok, nil })
}

// neverAnswer waits for the deadline like an operator who walked away.
var neverAnswer = confirmFunc(func(ctx context.Context, _ *model.Comparison) (bool, error) {
	<-ctx.Done()
	return false, ctx.Err()
})

type harness struct {
	svc       *Service
	store     *db.Store
	messenger *fakeMessenger
	assets    *fakeAssets
	notifier  *fakeNotifier
	events    *fakeEvents
}

func newHarness(t *testing.T) *harness {
	t.Helper()
	store, err := db.Open(filepath.Join(t.TempDir(), "queue.db"))
	require.NoError(t, err)
	t.Cleanup(func() { store.Close() })

	h := &harness{
		store:     store,
		messenger: &fakeMessenger{},
		assets:    &fakeAssets{},
		notifier:  &fakeNotifier{},
		events:    &fakeEvents{},
	}
	h.svc = NewService(store, Deps{
		Messenger: h.messenger,
		Assets:    h.assets,
		Notifier:  h.notifier,
		Events:    h.events,
	}, Options{
		Thresholds:     vote.Thresholds{RequiredVotes: 5, RequiredDifference: 3},
		CompareTimeout: 50 * time.Millisecond,
		MaxNoteLength:  1000,
	}, zap.NewNop())
	return h
}

func (h *harness) submit(t *testing.T, name string) *model.Submission {
	t.Helper()
	sub, err := h.svc.Submit(context.Background(), &model.Submission{
		SubmitterID:     "submitter",
		Asset:           model.AssetRef{ID: "emoji-" + name},
		Name:            name,
		SourceMessageID: "src-" + name,
	})
	require.NoError(t, err)
	return sub
}

func (h *harness) reload(t *testing.T, idx int64) *model.Submission {
	t.Helper()
	sub, err := h.svc.Status(context.Background(), idx)
	require.NoError(t, err)
	return sub
}

// votes casts up approvals and down denials from distinct reviewers on messageID.
func (h *harness) votes(t *testing.T, messageID string, up, down int) *VoteOutcome {
	t.Helper()
	var last *VoteOutcome
	cast := func(reviewer string, dir vote.Direction) {
		out, err := h.svc.ProcessVote(context.Background(), messageID, reviewer, dir, vote.Cast)
		require.NoError(t, err)
		last = out
	}
	for i := 0; i < up; i++ {
		cast(fmt.Sprintf("up-%d", i), vote.Approve)
	}
	for i := 0; i < down; i++ {
		cast(fmt.Sprintf("down-%d", i), vote.Deny)
	}
	return last
}

// publicEntry submits a suggestion and force-approves it into the public queue.
func (h *harness) publicEntry(t *testing.T, name string) *model.Submission {
	t.Helper()
	sub := h.submit(t, name)
	promoted, err := h.svc.Approve(context.Background(), sub.Idx, "mod", "")
	require.NoError(t, err)
	return promoted
}

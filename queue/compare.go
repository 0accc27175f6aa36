package queue

import (
	"context"
	"database/sql"
	"errors"
	"fmt"
	"strings"
	"sync"

	"github.com/google/uuid"
	"go.uber.org/zap"
	"golang.org/x/sync/errgroup"

	"blobqueue/db"
	"blobqueue/metrics"
	"blobqueue/model"
	"blobqueue/suggestion"
)

// Compare runs the comparison workflow: validate the entries, stage temporary
// renderings, wait for the operator, then publish one combined message and
// retire every entry. A rejected or expired comparison changes nothing.
//
// Only one comparison may run at a time; a second caller gets ErrComparisonBusy.
func (s *Service) Compare(ctx context.Context, actorID string, entries []int64, confirm Confirmer) (*model.Comparison, error) {
	if !s.compareMu.TryLock() {
		return nil, ErrComparisonBusy
	}
	defer s.compareMu.Unlock()

	if err := validateEntries(entries); err != nil {
		return nil, err
	}
	subs, err := s.loadComparable(ctx, entries)
	if err != nil {
		return nil, err
	}

	c := &model.Comparison{
		ID:          uuid.NewString(),
		RequestedBy: actorID,
		Entries:     entries,
		State:       model.ComparisonStaged,
	}
	log := s.logger.With(zap.String("comparison", c.ID), zap.Int64s("entries", entries))

	c.Staged, err = s.stage(ctx, log, subs)
	if err != nil {
		return nil, fmt.Errorf("stage comparison: %w", err)
	}
	// The confirmation window starts once the renderings exist.
	c.Deadline = s.opts.Now().Add(s.opts.CompareTimeout)

	confirmCtx, cancel := context.WithDeadline(ctx, c.Deadline)
	ok, err := confirm.Confirm(confirmCtx, c)
	cancel()

	switch {
	case errors.Is(err, context.DeadlineExceeded):
		c.State = model.ComparisonExpired
	case err != nil:
		s.unstage(log, c.Staged)
		return nil, fmt.Errorf("confirm comparison: %w", err)
	case !ok:
		c.State = model.ComparisonRejected
	}
	if c.State != model.ComparisonStaged {
		log.Info("Comparison abandoned", zap.String("state", string(c.State)))
		s.unstage(log, c.Staged)
		metrics.Comparisons.WithLabelValues(string(c.State)).Inc()
		return c, nil
	}

	if err := s.publishComparison(ctx, log, c); err != nil {
		return nil, err
	}
	return c, nil
}

func validateEntries(entries []int64) error {
	if len(entries) < MinCompareEntries || len(entries) > MaxCompareEntries {
		return validationError("a comparison needs between %d and %d entries, got %d",
			MinCompareEntries, MaxCompareEntries, len(entries))
	}
	seen := make(map[int64]struct{}, len(entries))
	for _, idx := range entries {
		if _, dup := seen[idx]; dup {
			return validationError("#%d appears more than once", idx)
		}
		seen[idx] = struct{}{}
	}
	return nil
}

// loadComparable loads every entry and checks it is still in the public queue.
func (s *Service) loadComparable(ctx context.Context, entries []int64) ([]*model.Submission, error) {
	subs := make([]*model.Submission, 0, len(entries))
	for _, idx := range entries {
		sub, err := s.store.GetSuggestion(ctx, idx)
		if err != nil {
			return nil, err
		}
		if sub == nil {
			return nil, notFound(idx)
		}
		if sub.State != model.StatePublic || sub.Withdrawn() {
			return nil, validationError("#%d is not in the public queue", idx)
		}
		subs = append(subs, sub)
	}
	return subs, nil
}

// stage uploads the temporary renderings concurrently. If any upload fails the
// ones that succeeded are torn down again.
func (s *Service) stage(ctx context.Context, log *zap.Logger, subs []*model.Submission) ([]model.StagedAsset, error) {
	staged := make([]model.StagedAsset, len(subs))
	var (
		mu     sync.Mutex
		loaded []model.StagedAsset
	)

	g, gctx := errgroup.WithContext(ctx)
	for i, sub := range subs {
		g.Go(func() error {
			label := fmt.Sprintf("%s_%d", truncateName(sub.Name, 30), i+1)
			a, err := s.deps.Assets.Stage(gctx, sub, label)
			if err != nil {
				return fmt.Errorf("#%d: %w", sub.Idx, err)
			}
			a.Idx = sub.Idx
			staged[i] = a

			mu.Lock()
			loaded = append(loaded, a)
			mu.Unlock()
			return nil
		})
	}
	if err := g.Wait(); err != nil {
		s.unstage(log, loaded)
		return nil, err
	}
	return staged, nil
}

// unstage uses a fresh context so teardown still runs after the caller's context ends.
func (s *Service) unstage(log *zap.Logger, staged []model.StagedAsset) {
	for _, a := range staged {
		if err := s.deps.Assets.Unstage(context.Background(), a); err != nil {
			s.collaboratorFailed(log.With(zap.Int64("suggestion", a.Idx)), "assets", "Failed to remove staged emoji", err)
		}
	}
}

func (s *Service) publishComparison(ctx context.Context, log *zap.Logger, c *model.Comparison) error {
	s.votingMu.Lock()
	defer s.votingMu.Unlock()

	// Entries may have moved while the operator was deciding.
	subs, err := s.loadComparable(ctx, c.Entries)
	if err != nil {
		c.State = model.ComparisonRejected
		s.unstage(log, c.Staged)
		metrics.Comparisons.WithLabelValues(string(c.State)).Inc()
		return err
	}

	msgID, err := s.deps.Messenger.PostComparison(ctx, c)
	if err != nil {
		s.unstage(log, c.Staged)
		return fmt.Errorf("post comparison: %w", err)
	}
	c.MessageID = msgID
	s.unstage(log, c.Staged)

	var finals map[int64]model.Tally
	err = s.runTx(ctx, func(tx *sql.Tx) error {
		finals = make(map[int64]model.Tally, len(c.Entries))
		now := s.opts.Now()
		for _, idx := range c.Entries {
			sub, err := db.GetSuggestionInTx(ctx, tx, idx)
			if err != nil {
				return err
			}
			if sub == nil {
				return notFound(idx)
			}
			final, err := suggestion.Withdraw(sub, now)
			if err != nil {
				return err
			}
			if err := db.SaveStateInTx(ctx, tx, sub, model.StatePublic); err != nil {
				return err
			}
			finals[idx] = final
		}
		return nil
	})
	if err != nil {
		log.Error("Failed to retire comparison entries", zap.Error(err))
		if derr := s.deps.Messenger.Delete(ctx, PublicChannel, msgID); derr != nil {
			s.collaboratorFailed(log, "messenger", "Failed to delete orphaned comparison message", derr)
		}
		return fmt.Errorf("retire comparison entries: %w", err)
	}

	c.State = model.ComparisonConfirmed
	c.FinalTallies = finals
	metrics.Comparisons.WithLabelValues(string(c.State)).Inc()

	report := make([]string, 0, len(subs))
	for _, sub := range subs {
		if sub.PublicMessageID != "" {
			if err := s.deps.Messenger.Delete(ctx, PublicChannel, sub.PublicMessageID); err != nil {
				s.collaboratorFailed(log, "messenger", "Failed to delete public queue message", err)
			}
		}
		if err := s.deps.Assets.Discard(ctx, sub.Asset); err != nil {
			s.collaboratorFailed(log, "assets", "Failed to discard emoji", err)
		}
		t := finals[sub.Idx]
		report = append(report, fmt.Sprintf("#%d had %d upvotes, %d downvotes.", sub.Idx, t.Up, t.Down))
	}

	s.changelog(ctx, log, fmt.Sprintf("🆚 comparison posted by <@%s>:\n%s", c.RequestedBy, strings.Join(report, "\n")))
	log.Info("Comparison published", zap.String("message", msgID))
	s.publish(ctx, model.Event{Type: model.EventComparisonPublished, Entries: c.Entries, ActorID: c.RequestedBy})
	return nil
}

func truncateName(name string, n int) string {
	if len(name) <= n {
		return name
	}
	return name[:n]
}

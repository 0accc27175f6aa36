package queue

import (
	"context"
	"database/sql"
	"fmt"

	"go.uber.org/zap"

	"blobqueue/db"
	"blobqueue/metrics"
	"blobqueue/model"
	"blobqueue/suggestion"
	"blobqueue/vote"
)

// VoteOutcome describes what a processed reaction did.
type VoteOutcome struct {
	Suggestion *model.Submission
	Pool       model.Pool
	Delta      vote.Delta
	Decision   vote.Decision
	// Score is the tally the decision was made on. Promotion resets the
	// suggestion's own counters.
	Score model.Tally
}

// ProcessVote applies a reviewer's reaction on a review or public queue message.
// Ledger write, tally change and any resulting transition commit together; the
// transition's side effects run afterwards while the voting lock is still held.
func (s *Service) ProcessVote(ctx context.Context, messageID, reviewerID string, dir vote.Direction, act vote.Action) (*VoteOutcome, error) {
	s.votingMu.Lock()
	defer s.votingMu.Unlock()

	sub, err := s.store.GetSuggestionByMessage(ctx, messageID)
	if err != nil {
		return nil, err
	}
	var pool model.Pool
	switch {
	case sub == nil:
		return nil, fmt.Errorf("%w: no queue entry for message %s", ErrNotFound, messageID)
	case sub.ReviewMessageID == messageID:
		pool = model.PoolReview
	case sub.PublicMessageID == messageID:
		pool = model.PoolPublic
	default:
		return nil, fmt.Errorf("%w: message %s is not a queue message", ErrNotFound, messageID)
	}

	ballot := vote.Ballot{
		Suggestion: sub.Idx,
		Reviewer:   reviewerID,
		Pool:       pool,
		Direction:  dir,
		Action:     act,
		At:         s.opts.Now(),
	}
	log := s.logger.With(zap.Int64("suggestion", sub.Idx), zap.String("reviewer", reviewerID))

	var out *VoteOutcome
	err = s.runTx(ctx, func(tx *sql.Tx) error {
		out = &VoteOutcome{Pool: pool}

		d, err := vote.RecordInTx(ctx, tx, ballot)
		if err != nil {
			return err
		}
		out.Delta = d

		current, err := db.GetSuggestionInTx(ctx, tx, sub.Idx)
		if err != nil {
			return err
		}
		if current == nil {
			return notFound(sub.Idx)
		}
		out.Suggestion = current

		// Late votes still count toward the tally but never resolve anything.
		if pool != model.PoolReview || current.State != model.StatePending || d.IsZero() {
			return nil
		}

		out.Score = current.Tally()
		out.Decision = vote.Evaluate(out.Score, s.opts.Thresholds)
		res := model.Resolution{ResolvedAt: ballot.At}
		switch out.Decision {
		case vote.Promote:
			err = suggestion.Promote(current, res)
		case vote.Reject:
			err = suggestion.Deny(current, res, false)
		default:
			return nil
		}
		if err != nil {
			return err
		}
		return db.SaveStateInTx(ctx, tx, current, model.StatePending)
	})
	if err != nil {
		log.Error("Failed to process vote", zap.Stringer("ballot", ballot), zap.Error(err))
		return nil, err
	}

	if !out.Delta.IsZero() {
		metrics.Votes.WithLabelValues(string(pool), string(dir), string(act)).Inc()
		log.Debug("Vote applied", zap.Stringer("ballot", ballot),
			zap.Int("up", out.Suggestion.Upvotes), zap.Int("down", out.Suggestion.Downvotes))
		s.publish(ctx, model.Event{
			Type:       model.EventVoteApplied,
			Suggestion: sub.Idx,
			ActorID:    reviewerID,
			Up:         out.Suggestion.Upvotes,
			Down:       out.Suggestion.Downvotes,
		})
	}

	switch out.Decision {
	case vote.Promote:
		s.afterPromote(ctx, out.Suggestion, out.Score, "policy")
	case vote.Reject:
		s.afterDeny(ctx, out.Suggestion, "policy")
	}
	return out, nil
}

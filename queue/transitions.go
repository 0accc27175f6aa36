package queue

import (
	"context"
	"database/sql"

	"go.uber.org/zap"

	"blobqueue/db"
	"blobqueue/model"
	"blobqueue/suggestion"
)

const revokeReason = "Manually revoked"

// Approve force-promotes a pending suggestion to the public queue.
func (s *Service) Approve(ctx context.Context, idx int64, actorID, reason string) (*model.Submission, error) {
	s.votingMu.Lock()
	defer s.votingMu.Unlock()

	var score model.Tally
	sub, err := s.transition(ctx, idx, func(sub *model.Submission) error {
		score = sub.Tally()
		return suggestion.Promote(sub, s.resolution(actorID, reason))
	})
	if err != nil {
		return nil, err
	}
	s.afterPromote(ctx, sub, score, "forced")
	return sub, nil
}

// Deny force-denies a pending suggestion.
func (s *Service) Deny(ctx context.Context, idx int64, actorID, reason string) (*model.Submission, error) {
	s.votingMu.Lock()
	defer s.votingMu.Unlock()

	sub, err := s.transition(ctx, idx, func(sub *model.Submission) error {
		return suggestion.Deny(sub, s.resolution(actorID, reason), false)
	})
	if err != nil {
		return nil, err
	}
	s.afterDeny(ctx, sub, "forced")
	return sub, nil
}

// Revoke lets a submitter withdraw their own pending suggestion.
func (s *Service) Revoke(ctx context.Context, idx int64, userID string) (*model.Submission, error) {
	s.votingMu.Lock()
	defer s.votingMu.Unlock()

	sub, err := s.transition(ctx, idx, func(sub *model.Submission) error {
		if sub.SubmitterID != userID {
			return ErrForbidden
		}
		return suggestion.Deny(sub, s.resolution(userID, revokeReason), true)
	})
	if err != nil {
		return nil, err
	}
	s.afterDeny(ctx, sub, "revoked")
	return sub, nil
}

func (s *Service) resolution(actorID, reason string) model.Resolution {
	return model.Resolution{ActorID: actorID, Reason: reason, ResolvedAt: s.opts.Now()}
}

// transition loads idx, applies fn and saves the result in one transaction.
// Callers must hold votingMu.
func (s *Service) transition(ctx context.Context, idx int64, fn func(sub *model.Submission) error) (*model.Submission, error) {
	var sub *model.Submission
	err := s.runTx(ctx, func(tx *sql.Tx) error {
		var err error
		sub, err = db.GetSuggestionInTx(ctx, tx, idx)
		if err != nil {
			return err
		}
		if sub == nil {
			return notFound(idx)
		}
		from := sub.State
		if err := fn(sub); err != nil {
			return err
		}
		return db.SaveStateInTx(ctx, tx, sub, from)
	})
	if err != nil {
		s.logger.Info("Transition refused", zap.Int64("suggestion", idx), zap.Error(err))
		return nil, err
	}
	return sub, nil
}

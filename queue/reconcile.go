package queue

import (
	"context"

	"go.uber.org/zap"

	"blobqueue/db"
	"blobqueue/model"
)

// ReconcileReport summarises a Reconcile run.
type ReconcileReport struct {
	Review int
	Public int
	Failed int
}

func (r ReconcileReport) Total() int {
	return r.Review + r.Public
}

// Reconcile re-posts queue messages that went missing: pending suggestions with
// no review message and public ones with no public message. With dryRun it only counts them.
//
// Posting happens without the voting lock; each new handle is saved under the lock
// only if the suggestion still needs it, otherwise the fresh message is removed.
func (s *Service) Reconcile(ctx context.Context, dryRun bool) (ReconcileReport, error) {
	var report ReconcileReport
	missing, err := s.store.MissingMessages(ctx)
	if err != nil {
		return report, err
	}

	for _, sub := range missing {
		if err := ctx.Err(); err != nil {
			return report, err
		}

		post, kind, ch := s.deps.Messenger.PostReview, db.ReviewMessage, ReviewChannel
		if sub.State == model.StatePublic {
			post, kind, ch = s.deps.Messenger.PostPublic, db.PublicMessage, PublicChannel
			report.Public++
		} else {
			report.Review++
		}
		if dryRun {
			continue
		}

		log := s.logger.With(zap.Int64("suggestion", sub.Idx), zap.String("kind", string(kind)))
		msgID, err := post(ctx, sub)
		if err != nil {
			report.Failed++
			s.collaboratorFailed(log, "messenger", "Failed to re-post queue message", err)
			continue
		}

		saved, err := s.claimMessage(ctx, sub, kind, msgID)
		if err != nil {
			report.Failed++
			log.Error("Failed to save re-posted message id", zap.Error(err))
		}
		if !saved {
			if err := s.deps.Messenger.Delete(ctx, ch, msgID); err != nil {
				s.collaboratorFailed(log, "messenger", "Failed to remove stale re-posted message", err)
			}
			continue
		}
		log.Info("Queue message rebuilt", zap.String("message", msgID))
	}
	return report, nil
}

// claimMessage stores msgID as the kind handle of sub if the suggestion is still in
// the state it was listed in and the handle is still empty.
func (s *Service) claimMessage(ctx context.Context, sub *model.Submission, kind db.MessageKind, msgID string) (bool, error) {
	s.votingMu.Lock()
	defer s.votingMu.Unlock()

	current, err := s.store.GetSuggestion(ctx, sub.Idx)
	if err != nil || current == nil {
		return false, err
	}
	if current.State != sub.State || current.Withdrawn() {
		return false, nil
	}
	switch kind {
	case db.ReviewMessage:
		if current.ReviewMessageID != "" {
			return false, nil
		}
	case db.PublicMessage:
		if current.PublicMessageID != "" {
			return false, nil
		}
	}
	if err := s.store.SetMessageID(ctx, sub.Idx, kind, msgID); err != nil {
		return false, err
	}
	return true, nil
}

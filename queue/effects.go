package queue

import (
	"context"
	"fmt"

	"go.uber.org/zap"

	"blobqueue/db"
	"blobqueue/metrics"
	"blobqueue/model"
)

const (
	approvedNotice = "Your suggestion %s (#%d) was approved by the council and moved to the public queue. Thanks for submitting!"
	deniedNotice   = "Your suggestion %s (#%d) was denied.%s"
)

func (s *Service) afterPromote(ctx context.Context, sub *model.Submission, score model.Tally, trigger string) {
	log := s.logger.With(zap.Int64("suggestion", sub.Idx), zap.String("trigger", trigger))
	metrics.Transitions.WithLabelValues("promote", trigger).Inc()
	log.Info("Suggestion moved to public queue", zap.Int("up", score.Up), zap.Int("down", score.Down))

	if msgID, err := s.deps.Messenger.PostPublic(ctx, sub); err != nil {
		s.collaboratorFailed(log, "messenger", "Failed to post public queue message", err)
	} else if err := s.store.SetMessageID(ctx, sub.Idx, db.PublicMessage, msgID); err != nil {
		log.Error("Failed to save public message id", zap.Error(err))
	} else {
		sub.PublicMessageID = msgID
	}

	s.changelog(ctx, log, fmt.Sprintf("✅ moved to public queue: %s `#%d` (by <@%s>)%s",
		sub.Mention(), sub.Idx, sub.SubmitterID, forcedSuffix(sub)))
	s.clearReviewMessages(ctx, log, sub)
	s.notify(ctx, log, sub.SubmitterID, fmt.Sprintf(approvedNotice, sub.Mention(), sub.Idx))

	s.publish(ctx, model.Event{
		Type:       model.EventSuggestionPromoted,
		Suggestion: sub.Idx,
		ActorID:    actor(sub),
		Up:         score.Up,
		Down:       score.Down,
	})
}

func (s *Service) afterDeny(ctx context.Context, sub *model.Submission, trigger string) {
	log := s.logger.With(zap.Int64("suggestion", sub.Idx), zap.String("trigger", trigger))
	metrics.Transitions.WithLabelValues("deny", trigger).Inc()

	action, evType := "denied", model.EventSuggestionDenied
	if sub.Revoked {
		action, evType = "revoked", model.EventSuggestionRevoked
	}
	log.Info("Suggestion "+action, zap.Int("up", sub.Upvotes), zap.Int("down", sub.Downvotes))

	s.changelog(ctx, log, fmt.Sprintf("❌ %s: %s `#%d` (by <@%s>)%s",
		action, sub.Mention(), sub.Idx, sub.SubmitterID, forcedSuffix(sub)))
	if err := s.deps.Assets.Discard(ctx, sub.Asset); err != nil {
		s.collaboratorFailed(log, "assets", "Failed to discard emoji", err)
	}
	s.clearReviewMessages(ctx, log, sub)

	if !sub.Revoked {
		reason := ""
		if sub.Resolution.Forced() && sub.Resolution.Reason != "" {
			reason = fmt.Sprintf(" Reason: %s", sub.Resolution.Reason)
		}
		s.notify(ctx, log, sub.SubmitterID, fmt.Sprintf(deniedNotice, sub.Mention(), sub.Idx, reason))
	}

	s.publish(ctx, model.Event{
		Type:       evType,
		Suggestion: sub.Idx,
		ActorID:    actor(sub),
		Up:         sub.Upvotes,
		Down:       sub.Downvotes,
	})
}

// clearReviewMessages removes the review queue and suggestions channel messages
// of a resolved suggestion and forgets their handles.
func (s *Service) clearReviewMessages(ctx context.Context, log *zap.Logger, sub *model.Submission) {
	handles := []struct {
		ch   Channel
		kind db.MessageKind
		id   *string
	}{
		{ReviewChannel, db.ReviewMessage, &sub.ReviewMessageID},
		{SuggestionsChannel, db.SourceMessage, &sub.SourceMessageID},
	}
	for _, h := range handles {
		if *h.id == "" {
			continue
		}
		if err := s.deps.Messenger.Delete(ctx, h.ch, *h.id); err != nil {
			s.collaboratorFailed(log, "messenger", "Failed to delete message", err)
		}
		if err := s.store.SetMessageID(ctx, sub.Idx, h.kind, ""); err != nil {
			log.Error("Failed to clear message id", zap.String("kind", string(h.kind)), zap.Error(err))
			continue
		}
		*h.id = ""
	}
}

func (s *Service) changelog(ctx context.Context, log *zap.Logger, text string) {
	if err := s.deps.Messenger.Changelog(ctx, text); err != nil {
		s.collaboratorFailed(log, "messenger", "Failed to write changelog", err)
	}
}

func (s *Service) notify(ctx context.Context, log *zap.Logger, userID, text string) {
	if err := s.deps.Notifier.Notify(ctx, userID, text); err != nil {
		s.collaboratorFailed(log, "notifier", "Failed to notify submitter", err)
	}
}

func forcedSuffix(sub *model.Submission) string {
	if !sub.Resolution.Forced() || sub.Revoked {
		return ""
	}
	if sub.Resolution.Reason == "" {
		return fmt.Sprintf(", forced by <@%s>", sub.Resolution.ActorID)
	}
	return fmt.Sprintf(", forced by <@%s>: %q", sub.Resolution.ActorID, sub.Resolution.Reason)
}

func actor(sub *model.Submission) string {
	if sub.Resolution == nil {
		return ""
	}
	return sub.Resolution.ActorID
}

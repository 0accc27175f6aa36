// Package queue coordinates the suggestion lifecycle: intake, reviewer votes,
// forced decisions, comparisons and the side effects each of them triggers.
package queue

import (
	"context"
	"fmt"
	"sync"
	"time"

	"go.uber.org/zap"

	"blobqueue/db"
	"blobqueue/events"
	"blobqueue/metrics"
	"blobqueue/model"
	"blobqueue/utils"
	"blobqueue/vote"
)

const (
	DefaultListLimit = 10
	MaxListLimit     = 200
	VoteHistoryLimit = 20

	MinCompareEntries = 2
	MaxCompareEntries = 6
)

// Options tune the queue.
type Options struct {
	Thresholds     vote.Thresholds
	CompareTimeout time.Duration
	VerboseCompare bool
	MaxNoteLength  int
	// Now defaults to time.Now.
	Now func() time.Time
}

// Deps are the collaborators the service drives after state changes commit.
type Deps struct {
	Messenger Messenger
	Assets    Assets
	Notifier  Notifier
	Events    events.Publisher
}

// Service owns the voting and comparison locks. All vote processing and forced
// transitions hold votingMu for their whole duration, side effects included.
// compareMu is held across a whole comparison and is never waited on.
type Service struct {
	store  *db.Store
	deps   Deps
	opts   Options
	logger *zap.Logger

	votingMu  sync.Mutex
	compareMu sync.Mutex
}

func NewService(store *db.Store, deps Deps, opts Options, logger *zap.Logger) *Service {
	if opts.Now == nil {
		opts.Now = time.Now
	}
	if deps.Events == nil {
		deps.Events = events.Nop{}
	}
	return &Service{
		store:  store,
		deps:   deps,
		opts:   opts,
		logger: logger.Named("queue"),
	}
}

// Submit stores a new pending suggestion and posts it to the review queue.
// A failed post is left for Reconcile.
func (s *Service) Submit(ctx context.Context, sub *model.Submission) (*model.Submission, error) {
	sub.Note = utils.Truncate(sub.Note, s.opts.MaxNoteLength)
	if sub.SubmittedAt.IsZero() {
		sub.SubmittedAt = s.opts.Now()
	}

	idx, err := s.store.InsertSuggestion(ctx, sub)
	if err != nil {
		return nil, err
	}
	stored, err := s.store.GetSuggestion(ctx, idx)
	if err != nil {
		return nil, err
	}
	if stored == nil {
		return nil, notFound(idx)
	}

	log := s.logger.With(zap.Int64("suggestion", idx), zap.String("submitter", stored.SubmitterID))
	if msgID, err := s.deps.Messenger.PostReview(ctx, stored); err != nil {
		s.collaboratorFailed(log, "messenger", "Failed to post review message", err)
	} else if err := s.store.SetMessageID(ctx, idx, db.ReviewMessage, msgID); err != nil {
		log.Error("Failed to save review message id", zap.Error(err))
	} else {
		stored.ReviewMessageID = msgID
	}

	log.Info("Suggestion submitted", zap.String("name", stored.Name))
	s.publish(ctx, model.Event{Type: model.EventSuggestionCreated, Suggestion: idx, ActorID: stored.SubmitterID})
	return stored, nil
}

// UpdateNote replaces the note of the suggestion owning messageID, typically
// after its author edited the original message.
func (s *Service) UpdateNote(ctx context.Context, messageID, note string) (*model.Submission, error) {
	sub, err := s.store.GetSuggestionByMessage(ctx, messageID)
	if err != nil {
		return nil, err
	}
	if sub == nil || sub.SourceMessageID != messageID {
		return nil, fmt.Errorf("%w: no suggestion for message %s", ErrNotFound, messageID)
	}

	sub.Note = utils.Truncate(note, s.opts.MaxNoteLength)
	if err := s.store.UpdateNote(ctx, sub.Idx, sub.Note); err != nil {
		return nil, err
	}
	if err := s.deps.Messenger.Refresh(ctx, sub); err != nil {
		s.collaboratorFailed(s.logger.With(zap.Int64("suggestion", sub.Idx)), "messenger", "Failed to refresh queue message", err)
	}
	return sub, nil
}

// Status returns a single suggestion.
func (s *Service) Status(ctx context.Context, idx int64) (*model.Submission, error) {
	sub, err := s.store.GetSuggestion(ctx, idx)
	if err != nil {
		return nil, err
	}
	if sub == nil {
		return nil, notFound(idx)
	}
	return sub, nil
}

// List returns the newest suggestions. limit must be between 1 and MaxListLimit.
func (s *Service) List(ctx context.Context, limit int) ([]*model.Submission, error) {
	if limit < 1 || limit > MaxListLimit {
		return nil, validationError("limit must be between 1 and %d", MaxListLimit)
	}
	return s.store.ListSuggestions(ctx, limit)
}

// VoteHistory returns the latest standing votes where id is either a reviewer or a suggestion index.
func (s *Service) VoteHistory(ctx context.Context, id string) ([]model.VoteEntry, error) {
	if id == "" {
		return nil, validationError("a suggestion index or user id is required")
	}
	return s.store.VoteHistory(ctx, id, VoteHistoryLimit)
}

// PendingFor lists the suggestions userID may still revoke.
func (s *Service) PendingFor(ctx context.Context, userID string) ([]*model.Submission, error) {
	return s.store.PendingBySubmitter(ctx, userID)
}

func (s *Service) publish(ctx context.Context, ev model.Event) {
	if ev.At.IsZero() {
		ev.At = s.opts.Now()
	}
	s.deps.Events.Publish(ctx, ev)
}

func (s *Service) collaboratorFailed(log *zap.Logger, collaborator, msg string, err error) {
	metrics.CollaboratorFailures.WithLabelValues(collaborator).Inc()
	log.Warn(msg, zap.String("collaborator", collaborator), zap.Error(err))
}

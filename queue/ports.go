package queue

import (
	"context"

	"blobqueue/model"
)

// Channel names the places the messenger posts to.
type Channel int

const (
	SuggestionsChannel Channel = iota
	ReviewChannel
	PublicChannel
)

// Messenger posts and removes queue messages.
type Messenger interface {
	// PostReview posts s to the private review queue with vote reactions and returns the message id.
	PostReview(ctx context.Context, s *model.Submission) (string, error)
	// PostPublic posts s to the public queue with vote reactions and returns the message id.
	PostPublic(ctx context.Context, s *model.Submission) (string, error)
	// PostComparison posts the combined comparison message and returns its id.
	PostComparison(ctx context.Context, c *model.Comparison) (string, error)
	// Refresh re-renders whichever queue message s currently owns.
	Refresh(ctx context.Context, s *model.Submission) error
	Changelog(ctx context.Context, text string) error
	Delete(ctx context.Context, ch Channel, messageID string) error
}

// Assets manages the custom emoji behind submissions.
type Assets interface {
	// Stage uploads a temporary copy of s's emoji for a comparison.
	Stage(ctx context.Context, s *model.Submission, label string) (model.StagedAsset, error)
	Unstage(ctx context.Context, a model.StagedAsset) error
	// Discard frees the emoji slot a submission occupies.
	Discard(ctx context.Context, ref model.AssetRef) error
}

// Notifier delivers best-effort direct messages to submitters.
type Notifier interface {
	Notify(ctx context.Context, userID, message string) error
}

// Confirmer asks an operator to confirm a staged comparison. It returns false
// when the operator cancels and ctx.Err() when the deadline passes first.
type Confirmer interface {
	Confirm(ctx context.Context, c *model.Comparison) (bool, error)
}

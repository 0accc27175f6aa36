package model

import (
	"fmt"
	"time"
)

// State is where a submission sits in the queue.
type State string

const (
	StatePending State = "pending"
	StatePublic  State = "public"
	StateDenied  State = "denied"
)

// AssetRef points at the uploaded custom emoji backing a submission.
type AssetRef struct {
	ID       string
	Animated bool
}

// Mention renders the emoji the way Discord displays it in a message.
func (r AssetRef) Mention(name string) string {
	if r.Animated {
		return fmt.Sprintf("<a:%s:%s>", name, r.ID)
	}
	return fmt.Sprintf("<:%s:%s>", name, r.ID)
}

// Resolution records how a submission left the pending state.
// ActorID and Reason are empty when the vote policy resolved it.
type Resolution struct {
	ActorID    string
	Reason     string
	ResolvedAt time.Time
}

// Forced reports whether an operator resolved the submission by hand.
func (r *Resolution) Forced() bool {
	return r != nil && r.ActorID != ""
}

// Submission represents a row of the suggestions table.
type Submission struct {
	Idx         int64
	SubmitterID string
	Asset       AssetRef
	Name        string
	Note        string
	SubmittedAt time.Time

	Upvotes   int
	Downvotes int

	State       State
	Revoked     bool
	Resolution  *Resolution
	WithdrawnAt *time.Time

	ReviewMessageID string
	PublicMessageID string
	SourceMessageID string
}

// Tally returns the current counters.
func (s *Submission) Tally() Tally {
	return Tally{Up: s.Upvotes, Down: s.Downvotes}
}

func (s *Submission) Mention() string {
	return s.Asset.Mention(s.Name)
}

// Withdrawn reports whether a comparison has retired the submission.
func (s *Submission) Withdrawn() bool {
	return s.WithdrawnAt != nil
}

// StatusText is the human readable status shown by /status and /suggestions.
func (s *Submission) StatusText() string {
	switch {
	case s.State == StatePending:
		return "Pending"
	case s.State == StatePublic && s.Withdrawn():
		return "Retired by comparison"
	case s.State == StatePublic:
		return "In public queue"
	case s.Revoked:
		return "Revoked"
	default:
		return "Denied"
	}
}

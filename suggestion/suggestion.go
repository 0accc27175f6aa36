// Package suggestion implements the lifecycle transitions of a queued submission.
// Transitions only move forward; anything else returns ErrIllegalTransition.
package suggestion

import (
	"errors"
	"fmt"
	"time"

	"blobqueue/model"
)

var ErrIllegalTransition = errors.New("illegal transition")

func illegal(s *model.Submission, op string) error {
	return fmt.Errorf("%w: cannot %s #%d in state %s", ErrIllegalTransition, op, s.Idx, s.State)
}

// Promote moves a pending suggestion to the public queue and resets its tally
// so public votes start from zero.
func Promote(s *model.Submission, res model.Resolution) error {
	if s.State != model.StatePending {
		return illegal(s, "promote")
	}
	s.State = model.StatePublic
	s.Resolution = &res
	s.Upvotes, s.Downvotes = 0, 0
	return nil
}

// Deny moves a pending suggestion to denied. revoked marks a denial requested
// by the submitter.
func Deny(s *model.Submission, res model.Resolution, revoked bool) error {
	if s.State != model.StatePending {
		return illegal(s, "deny")
	}
	s.State = model.StateDenied
	s.Revoked = revoked
	s.Resolution = &res
	return nil
}

// Withdraw retires a public suggestion after a comparison. It returns the tally
// as it stood before the reset.
func Withdraw(s *model.Submission, now time.Time) (model.Tally, error) {
	if s.State != model.StatePublic || s.Withdrawn() {
		return model.Tally{}, illegal(s, "withdraw")
	}
	final := s.Tally()
	s.WithdrawnAt = &now
	s.PublicMessageID = ""
	s.Upvotes, s.Downvotes = 0, 0
	return final, nil
}

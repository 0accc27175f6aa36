package model

import "time"

// Pool separates votes cast on the review message from votes on the public queue message.
type Pool string

const (
	PoolReview Pool = "review"
	PoolPublic Pool = "public"
)

// VoteEntry is a reviewer's standing intent on one submission within one pool.
type VoteEntry struct {
	SuggestionIdx int64
	ReviewerID    string
	Pool          Pool
	HasApproved   bool
	HasDenied     bool
	VotedAt       time.Time
}

// Tally holds the up and down counters of a submission.
type Tally struct {
	Up   int
	Down int
}

func (t Tally) Total() int {
	return t.Up + t.Down
}

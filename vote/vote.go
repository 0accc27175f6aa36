package vote

import (
	"fmt"
	"time"

	"blobqueue/model"
)

// Direction is the side of a vote.
type Direction string

const (
	// Approve counts toward promotion.
	Approve Direction = "approve"
	// Deny counts toward denial.
	Deny Direction = "deny"
)

// Action says whether a reviewer is casting or taking back a vote.
type Action string

const (
	Cast   Action = "cast"
	Revoke Action = "revoke"
)

// Ballot is a single reaction event from a reviewer.
type Ballot struct {
	Suggestion int64
	Reviewer   string
	Pool       model.Pool
	Direction  Direction
	Action     Action
	At         time.Time
}

func (b Ballot) String() string {
	return fmt.Sprintf("%s %s on #%d by %s (%s)", b.Action, b.Direction, b.Suggestion, b.Reviewer, b.Pool)
}

// Delta is the change a ballot makes to the tally.
type Delta struct {
	Up   int
	Down int
}

func (d Delta) IsZero() bool {
	return d.Up == 0 && d.Down == 0
}

// Apply computes the ledger entry after a ballot and the tally change it implies.
// Casting an already marked direction and revoking an unmarked one change nothing.
func Apply(prev model.VoteEntry, dir Direction, act Action) (model.VoteEntry, Delta) {
	next := prev
	var d Delta

	marked := &next.HasApproved
	counter := &d.Up
	if dir == Deny {
		marked = &next.HasDenied
		counter = &d.Down
	}

	switch act {
	case Cast:
		if !*marked {
			*marked = true
			*counter = 1
		}
	case Revoke:
		if *marked {
			*marked = false
			*counter = -1
		}
	}
	return next, d
}

package vote

import "blobqueue/model"

// Decision is the outcome of evaluating a tally.
type Decision int

const (
	NoAction Decision = iota
	Promote
	Reject
)

func (d Decision) String() string {
	switch d {
	case Promote:
		return "promote"
	case Reject:
		return "deny"
	default:
		return "none"
	}
}

// Thresholds configure when a pending suggestion resolves.
type Thresholds struct {
	RequiredVotes      int
	RequiredDifference int
}

// Evaluate decides whether a tally has reached consensus. Nothing happens below
// RequiredVotes total votes; above it, a lead of RequiredDifference either way decides.
func Evaluate(t model.Tally, th Thresholds) Decision {
	if t.Total() < th.RequiredVotes {
		return NoAction
	}
	switch {
	case t.Up-t.Down >= th.RequiredDifference:
		return Promote
	case t.Down-t.Up >= th.RequiredDifference:
		return Reject
	default:
		return NoAction
	}
}

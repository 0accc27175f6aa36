package model

import (
	"fmt"
	"strings"
	"time"
)

// ComparisonState tracks a comparison from staging to its outcome.
type ComparisonState string

const (
	ComparisonStaged    ComparisonState = "staged"
	ComparisonConfirmed ComparisonState = "confirmed"
	ComparisonRejected  ComparisonState = "rejected"
	ComparisonExpired   ComparisonState = "expired"
)

const (
	compactJoiner = " \U0001F19A "
	verboseJoiner = "\n\u2003\U0001F19A\n"
)

// StagedAsset is a temporary rendering created for a comparison.
type StagedAsset struct {
	Idx   int64
	Label string
	Ref   AssetRef
	Name  string
}

// Mention renders the asset the way Discord displays a custom emoji.
func (a StagedAsset) Mention() string {
	return a.Ref.Mention(a.Name)
}

// Comparison is a pending "VS" post awaiting operator confirmation.
type Comparison struct {
	ID          string
	RequestedBy string
	Entries     []int64
	Staged      []StagedAsset
	State       ComparisonState
	Deadline    time.Time
	MessageID   string

	// FinalTallies is filled once the entries are retired.
	FinalTallies map[int64]Tally
}

// Render builds the body of the combined public message.
func (c *Comparison) Render(verbose bool) string {
	parts := make([]string, 0, len(c.Staged))
	for i, a := range c.Staged {
		if verbose {
			parts = append(parts, fmt.Sprintf("%d⃣ %s `#%d`", i+1, a.Mention(), a.Idx))
			continue
		}
		parts = append(parts, a.Mention())
	}
	joiner := compactJoiner
	if verbose {
		joiner = verboseJoiner
	}
	return strings.Join(parts, joiner)
}

// Keycaps returns the reactions voters use to pick an entry.
func (c *Comparison) Keycaps() []string {
	caps := make([]string, len(c.Staged))
	for i := range c.Staged {
		caps[i] = fmt.Sprintf("%d️⃣", i+1)
	}
	return caps
}

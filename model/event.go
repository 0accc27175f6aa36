package model

import "time"

const (
	EventSuggestionCreated   = "suggestion.created"
	EventSuggestionPromoted  = "suggestion.promoted"
	EventSuggestionDenied    = "suggestion.denied"
	EventSuggestionRevoked   = "suggestion.revoked"
	EventVoteApplied         = "vote.applied"
	EventComparisonPublished = "comparison.published"
)

// Event is a lifecycle notification published after a committed change.
type Event struct {
	Type       string    `json:"type"`
	Suggestion int64     `json:"suggestion,omitempty"`
	Entries    []int64   `json:"entries,omitempty"`
	ActorID    string    `json:"actor_id,omitempty"`
	Up         int       `json:"up"`
	Down       int       `json:"down"`
	At         time.Time `json:"at"`
}

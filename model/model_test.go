package model

import (
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
)

func TestComparisonRender(t *testing.T) {
	c := &Comparison{Staged: []StagedAsset{
		{Idx: 1, Name: "blobcat_1", Ref: AssetRef{ID: "11"}},
		{Idx: 2, Name: "blobfox_2", Ref: AssetRef{ID: "22", Animated: true}},
	}}
	assert.Equal(t, "<:blobcat_1:11> \U0001F19A <a:blobfox_2:22>", c.Render(false))

	verbose := c.Render(true)
	assert.Contains(t, verbose, "1⃣ <:blobcat_1:11> `#1`")
	assert.Contains(t, verbose, "\n\u2003\U0001F19A\n")
	assert.Equal(t, []string{"1️⃣", "2️⃣"}, c.Keycaps())
}

func TestStatusText(t *testing.T) {
	now := time.Now()
	tests := []struct {
		sub  Submission
		want string
	}{
		{Submission{State: StatePending}, "Pending"},
		{Submission{State: StatePublic}, "In public queue"},
		{Submission{State: StatePublic, WithdrawnAt: &now}, "Retired by comparison"},
		{Submission{State: StateDenied}, "Denied"},
		{Submission{State: StateDenied, Revoked: true}, "Revoked"},
	}
	for _, tt := range tests {
		assert.Equal(t, tt.want, tt.sub.StatusText())
	}
}

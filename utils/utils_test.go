package utils

import (
	"context"
	"errors"
	"net/http"
	"strings"
	"testing"

	"github.com/bwmarrin/discordgo"
	"github.com/sony/gobreaker"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.uber.org/zap"

	"blobqueue/model"
)

func TestCheckAuth(t *testing.T) {
	auth := model.Auth{Developers: []string{"dev"}, CouncilRoles: []string{"council"}}

	assert.True(t, CheckAuth(auth, "dev", nil))
	assert.True(t, CheckAuth(auth, "someone", []string{"member", "council"}))
	assert.False(t, CheckAuth(auth, "someone", []string{"member"}))
}

func TestRenderTable(t *testing.T) {
	out, err := RenderTable([]string{"#", "Name"}, [][]string{{"1", "blobcat"}, {"2", "blobfox"}})
	require.NoError(t, err)
	assert.Contains(t, out, "blobcat")
	assert.Contains(t, out, "blobfox")
	assert.Less(t, strings.Index(out, "Name"), strings.Index(out, "blobcat"))

	assert.True(t, strings.HasPrefix(CodeBlock(out), "```\n"))
}

func TestTruncate(t *testing.T) {
	assert.Equal(t, "héllo", Truncate("héllo", 10))
	assert.Equal(t, "hé", Truncate("héllo", 2))
	assert.Equal(t, "abc", Truncate("abc", 0))
}

type fakeDM struct {
	err  error
	sent []string
}

func (f *fakeDM) UserChannelCreate(recipientID string, _ ...discordgo.RequestOption) (*discordgo.Channel, error) {
	if f.err != nil {
		return nil, f.err
	}
	return &discordgo.Channel{ID: "dm-" + recipientID}, nil
}

func (f *fakeDM) ChannelMessageSend(channelID string, content string, _ ...discordgo.RequestOption) (*discordgo.Message, error) {
	f.sent = append(f.sent, channelID+":"+content)
	return &discordgo.Message{}, nil
}

func TestDMNotifierSends(t *testing.T) {
	dm := &fakeDM{}
	n := NewDMNotifier(dm, zap.NewNop())

	require.NoError(t, n.Notify(context.Background(), "u1", "approved"))
	assert.Equal(t, []string{"dm-u1:approved"}, dm.sent)
}

func TestDMNotifierOpensBreaker(t *testing.T) {
	dm := &fakeDM{err: errors.New("gateway down")}
	n := NewDMNotifier(dm, zap.NewNop())
	ctx := context.Background()

	for i := 0; i < 6; i++ {
		assert.EqualError(t, n.Notify(ctx, "u1", "hi"), "gateway down")
	}
	assert.ErrorIs(t, n.Notify(ctx, "u1", "hi"), gobreaker.ErrOpenState)
}

func TestDMNotifierIgnoresClosedDMs(t *testing.T) {
	dm := &fakeDM{err: &discordgo.RESTError{Response: &http.Response{StatusCode: http.StatusForbidden}}}
	n := NewDMNotifier(dm, zap.NewNop())
	ctx := context.Background()

	for i := 0; i < 10; i++ {
		err := n.Notify(ctx, "u1", "hi")
		require.Error(t, err)
		assert.NotErrorIs(t, err, gobreaker.ErrOpenState)
	}
}

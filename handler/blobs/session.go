package blobs

import (
	"strings"

	"github.com/bwmarrin/discordgo"
)

// Session is the part of *discordgo.Session the queue adapters use.
type Session interface {
	ChannelMessageSend(channelID string, content string, options ...discordgo.RequestOption) (*discordgo.Message, error)
	ChannelMessageSendComplex(channelID string, data *discordgo.MessageSend, options ...discordgo.RequestOption) (*discordgo.Message, error)
	ChannelMessageEditComplex(m *discordgo.MessageEdit, options ...discordgo.RequestOption) (*discordgo.Message, error)
	ChannelMessageDelete(channelID, messageID string, options ...discordgo.RequestOption) error
	MessageReactionAdd(channelID, messageID, emojiID string, options ...discordgo.RequestOption) error
	GuildEmojiCreate(guildID string, data *discordgo.EmojiParams, options ...discordgo.RequestOption) (*discordgo.Emoji, error)
	GuildEmojiDelete(guildID, emojiID string, options ...discordgo.RequestOption) error
}

// reactionName turns a configured emoji ("✅", "name:id" or "<:name:id>") into
// the form the reactions endpoint accepts.
func reactionName(configured string) string {
	s := strings.TrimSuffix(strings.TrimPrefix(configured, "<"), ">")
	if rest, ok := strings.CutPrefix(s, "a:"); ok {
		return rest
	}
	return strings.TrimPrefix(s, ":")
}

// matchEmoji reports whether e is the configured emoji. Custom emoji match by id.
func matchEmoji(configured string, e discordgo.Emoji) bool {
	name := reactionName(configured)
	if i := strings.LastIndex(name, ":"); i >= 0 {
		return e.ID != "" && e.ID == name[i+1:]
	}
	return e.ID == "" && e.Name == name
}

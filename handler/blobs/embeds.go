package blobs

import (
	"fmt"

	"github.com/bwmarrin/discordgo"

	"blobqueue/model"
)

const (
	colorPending = 0x3498DB
	colorPublic  = 0x2ECC71
	colorDenied  = 0xE74C3C
)

// EmojiURL is the CDN address of the emoji behind ref.
func EmojiURL(ref model.AssetRef) string {
	if ref.Animated {
		return discordgo.EndpointEmojiAnimated(ref.ID)
	}
	return discordgo.EndpointEmoji(ref.ID)
}

// SuggestionEmbed renders the status card shown in the queues and by /status.
func SuggestionEmbed(s *model.Submission) *discordgo.MessageEmbed {
	color := colorPending
	switch s.State {
	case model.StatePublic:
		color = colorPublic
	case model.StateDenied:
		color = colorDenied
	}

	embed := &discordgo.MessageEmbed{
		Title:       fmt.Sprintf("Suggestion #%d :%s:", s.Idx, s.Name),
		Description: s.StatusText(),
		Color:       color,
		Fields: []*discordgo.MessageEmbedField{
			{
				Name:   "Score",
				Value:  fmt.Sprintf("▲ %d / ▼ %d", s.Upvotes, s.Downvotes),
				Inline: true,
			},
			{
				Name:   "Submitted",
				Value:  fmt.Sprintf("By <@%s>\n<t:%d:f>", s.SubmitterID, s.SubmittedAt.Unix()),
				Inline: true,
			},
		},
	}
	if s.Asset.ID != "" {
		embed.Thumbnail = &discordgo.MessageEmbedThumbnail{URL: EmojiURL(s.Asset)}
	}
	if s.Note != "" {
		embed.Fields = append(embed.Fields, &discordgo.MessageEmbedField{Name: "Note", Value: s.Note})
	}

	if s.Resolution.Forced() {
		verdict := "approval"
		if s.State == model.StateDenied {
			verdict = "denial"
		}
		reason := s.Resolution.Reason
		if reason == "" {
			reason = "No reason provided."
		}
		embed.Fields = append(embed.Fields, &discordgo.MessageEmbedField{
			Name:  "Forced " + verdict,
			Value: fmt.Sprintf("<@%s>\n%s", s.Resolution.ActorID, reason),
		})
	}
	return embed
}

package bot

import (
	"blobqueue/handler"
	"blobqueue/handler/blobs"

	"github.com/bwmarrin/discordgo"
)

func registerEventHandlers(s *discordgo.Session, router *handler.Router, h *blobs.Handler) {
	s.AddHandler(router.OnInteractionCreate)
	s.AddHandler(h.MessageReactionAdd)
	s.AddHandler(h.MessageReactionRemove)
	s.AddHandler(h.MessageCreate)
	s.AddHandler(h.MessageUpdate)

	// 设置必要的intents
	s.Identify.Intents = discordgo.IntentsGuildMessages |
		discordgo.IntentsGuilds |
		discordgo.IntentsGuildMessageReactions |
		discordgo.IntentsDirectMessages |
		discordgo.IntentMessageContent
}

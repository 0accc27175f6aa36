package def

import (
	"github.com/bwmarrin/discordgo"
)

var RebuildCommand = &discordgo.ApplicationCommand{
	Name:        "rebuild",
	Description: "Re-post queue messages that went missing",
	NameLocalizations: &map[discordgo.Locale]string{
		discordgo.ChineseCN: "重建",
	},
	Options: []*discordgo.ApplicationCommandOption{
		{
			Type:        discordgo.ApplicationCommandOptionBoolean,
			Name:        "dry_run",
			Description: "Only count the messages that would be re-posted",
			NameLocalizations: map[discordgo.Locale]string{
				discordgo.ChineseCN: "预览模式",
			},
			Required: false,
		},
	},
}

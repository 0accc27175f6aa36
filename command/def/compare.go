package def

import "github.com/bwmarrin/discordgo"

var CompareCommand = &discordgo.ApplicationCommand{
	Name:        "compare",
	Description: "Post a VS vote between suggestions in the public queue",
	NameLocalizations: &map[discordgo.Locale]string{
		discordgo.ChineseCN: "对比",
	},
	Options: []*discordgo.ApplicationCommandOption{
		{
			Type:        discordgo.ApplicationCommandOptionString,
			Name:        "entries",
			Description: "Two to six suggestion numbers, e.g. 12 15 18",
			NameLocalizations: map[discordgo.Locale]string{
				discordgo.ChineseCN: "编号",
			},
			Required: true,
		},
	},
}

package def

import "github.com/bwmarrin/discordgo"

var StatusCommand = &discordgo.ApplicationCommand{
	Name:        "status",
	Description: "Show the status of a suggestion",
	NameLocalizations: &map[discordgo.Locale]string{
		discordgo.ChineseCN: "状态",
	},
	Options: []*discordgo.ApplicationCommandOption{
		{
			Type:        discordgo.ApplicationCommandOptionInteger,
			Name:        "suggestion",
			Description: "Suggestion number",
			NameLocalizations: map[discordgo.Locale]string{
				discordgo.ChineseCN: "建议编号",
			},
			Required: true,
			MinValue: &minSuggestion,
		},
	},
}

var SuggestionsCommand = &discordgo.ApplicationCommand{
	Name:        "suggestions",
	Description: "List recent suggestions",
	NameLocalizations: &map[discordgo.Locale]string{
		discordgo.ChineseCN: "建议列表",
	},
	Options: []*discordgo.ApplicationCommandOption{
		{
			Type:        discordgo.ApplicationCommandOptionInteger,
			Name:        "limit",
			Description: "How many suggestions to show (default 10, at most 200)",
			NameLocalizations: map[discordgo.Locale]string{
				discordgo.ChineseCN: "数量",
			},
			Required: false,
		},
	},
}

var VotesCommand = &discordgo.ApplicationCommand{
	Name:        "votes",
	Description: "Show the latest council votes by suggestion number or user",
	NameLocalizations: &map[discordgo.Locale]string{
		discordgo.ChineseCN: "投票记录",
	},
	Options: []*discordgo.ApplicationCommandOption{
		{
			Type:        discordgo.ApplicationCommandOptionString,
			Name:        "target",
			Description: "A suggestion number, a user id or a mention",
			NameLocalizations: map[discordgo.Locale]string{
				discordgo.ChineseCN: "对象",
			},
			Required: true,
		},
	},
}

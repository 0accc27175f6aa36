package def

import "github.com/bwmarrin/discordgo"

func decisionOptions(verb string) []*discordgo.ApplicationCommandOption {
	return []*discordgo.ApplicationCommandOption{
		{
			Type:        discordgo.ApplicationCommandOptionInteger,
			Name:        "suggestion",
			Description: "Number of the suggestion to " + verb,
			NameLocalizations: map[discordgo.Locale]string{
				discordgo.ChineseCN: "建议编号",
			},
			Required: true,
			MinValue: &minSuggestion,
		},
		{
			Type:        discordgo.ApplicationCommandOptionString,
			Name:        "reason",
			Description: "Why the vote is being overridden",
			NameLocalizations: map[discordgo.Locale]string{
				discordgo.ChineseCN: "理由",
			},
			Required:  false,
			MaxLength: 500,
		},
	}
}

var minSuggestion = 1.0

var ApproveCommand = &discordgo.ApplicationCommand{
	Name:        "approve",
	Description: "Move a suggestion from the council queue to the public queue",
	NameLocalizations: &map[discordgo.Locale]string{
		discordgo.ChineseCN: "通过",
	},
	Options: decisionOptions("approve"),
}

var DenyCommand = &discordgo.ApplicationCommand{
	Name:        "deny",
	Description: "Deny a suggestion that is waiting in the council queue",
	NameLocalizations: &map[discordgo.Locale]string{
		discordgo.ChineseCN: "拒绝",
	},
	Options: decisionOptions("deny"),
}

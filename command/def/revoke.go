package def

import "github.com/bwmarrin/discordgo"

var RevokeCommand = &discordgo.ApplicationCommand{
	Name:        "revoke",
	Description: "Withdraw one of your suggestions before the council decides",
	NameLocalizations: &map[discordgo.Locale]string{
		discordgo.ChineseCN: "撤回",
	},
}

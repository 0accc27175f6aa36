package command

import (
	"blobqueue/command/def"

	"github.com/bwmarrin/discordgo"
)

// AllCommands contains all of the commands
var AllCommands = []*discordgo.ApplicationCommand{
	def.ApproveCommand,
	def.DenyCommand,
	def.CompareCommand,
	def.StatusCommand,
	def.SuggestionsCommand,
	def.VotesCommand,
	def.RevokeCommand,
	def.RebuildCommand,
}

package handler

import (
	"strings"

	"github.com/bwmarrin/discordgo"
)

// HandlerFunc handles a single interaction.
type HandlerFunc func(s *discordgo.Session, i *discordgo.InteractionCreate)

// Router dispatches interactions to the handlers registered for them.
// Component custom IDs are matched on the part before the first ":".
type Router struct {
	commandHandlers   map[string]HandlerFunc
	componentHandlers map[string]HandlerFunc
}

func NewRouter() *Router {
	return &Router{
		commandHandlers:   make(map[string]HandlerFunc),
		componentHandlers: make(map[string]HandlerFunc),
	}
}

// AddCommandHandler registers a handler for a slash command.
func (r *Router) AddCommandHandler(name string, handler HandlerFunc) {
	r.commandHandlers[name] = handler
}

// AddComponentHandler registers a handler for a message component.
func (r *Router) AddComponentHandler(customID string, handler HandlerFunc) {
	r.componentHandlers[customID] = handler
}

// OnInteractionCreate is the main interaction router.
// It should be registered as the primary interaction handler on the session.
func (r *Router) OnInteractionCreate(s *discordgo.Session, i *discordgo.InteractionCreate) {
	switch i.Type {
	case discordgo.InteractionApplicationCommand:
		if handler, ok := r.commandHandlers[i.ApplicationCommandData().Name]; ok {
			handler(s, i)
		}
	case discordgo.InteractionMessageComponent:
		customID := i.MessageComponentData().CustomID
		handlerKey, _, _ := strings.Cut(customID, ":")

		if handler, ok := r.componentHandlers[handlerKey]; ok {
			handler(s, i)
		}
	}
}

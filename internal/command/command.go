// Package command defines the slash command contract, the shared registry
// and the middleware chain commands are wrapped in before dispatch.
package command

import (
	"github.com/bwmarrin/discordgo"

	"bassline/internal/storage"
)

type Command interface {
	Name() string
	Description() string
	Category() string
	Run(ctx interface{}) error
}

// SlashProvider exposes the Discord application command definition used
// during registration.
type SlashProvider interface {
	SlashDefinition() *discordgo.ApplicationCommand
}

// SlashContext is what the runtime hands a command on dispatch.
type SlashContext struct {
	Session *discordgo.Session
	Event   *discordgo.InteractionCreate
	Storage *storage.Storage
}

// Option returns the named string option from the interaction, or "".
func (c *SlashContext) Option(name string) string {
	for _, opt := range c.Event.ApplicationCommandData().Options {
		if opt.Name == name {
			return opt.StringValue()
		}
	}
	return ""
}

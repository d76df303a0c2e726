// Package core holds the non-music utility commands.
package core

import (
	"fmt"

	"github.com/bwmarrin/discordgo"

	"bassline/internal/bot"
	"bassline/internal/command"
	"bassline/internal/version"
)

type AboutCommand struct{}

func (c *AboutCommand) Name() string        { return "about" }
func (c *AboutCommand) Description() string { return "Show bot version and build info" }
func (c *AboutCommand) Category() string    { return "⚙️ Core" }

func (c *AboutCommand) SlashDefinition() *discordgo.ApplicationCommand {
	return &discordgo.ApplicationCommand{
		Name:        c.Name(),
		Description: c.Description(),
		Type:        discordgo.ChatApplicationCommand,
	}
}

func (c *AboutCommand) Run(ctx interface{}) error {
	context, ok := ctx.(*command.SlashContext)
	if !ok {
		return nil
	}

	text := fmt.Sprintf("**%s** %s (built %s)\nA music bot that queues and plays tracks in voice channels.",
		version.AppName, version.Version, version.BuildDate)
	return bot.RespondEmbedEphemeral(context.Session, context.Event.Interaction, text)
}

package music

import (
	"github.com/bwmarrin/discordgo"

	"bassline/internal/bot"
)

type StopCommand struct {
	Coord bot.Coordinator
}

func (c *StopCommand) Name() string        { return "stop" }
func (c *StopCommand) Description() string { return "Stop playback, clear the queue and leave" }
func (c *StopCommand) Category() string    { return category }

func (c *StopCommand) SlashDefinition() *discordgo.ApplicationCommand {
	return &discordgo.ApplicationCommand{
		Name:        c.Name(),
		Description: c.Description(),
		Type:        discordgo.ChatApplicationCommand,
	}
}

func (c *StopCommand) Run(ctx interface{}) error {
	context, ok := slashCtx(ctx)
	if !ok {
		return nil
	}

	event := context.Event
	if err := c.Coord.Stop(event.GuildID); err != nil {
		return bot.RespondEmbedEphemeral(context.Session, event.Interaction, userError(err))
	}
	return bot.RespondEmbed(context.Session, event.Interaction, "⏹️ Stopped and left the channel.")
}

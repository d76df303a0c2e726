package music

import (
	"github.com/bwmarrin/discordgo"

	"bassline/internal/bot"
)

type PauseCommand struct {
	Coord bot.Coordinator
}

func (c *PauseCommand) Name() string        { return "pause" }
func (c *PauseCommand) Description() string { return "Pause the current track" }
func (c *PauseCommand) Category() string    { return category }

func (c *PauseCommand) SlashDefinition() *discordgo.ApplicationCommand {
	return &discordgo.ApplicationCommand{
		Name:        c.Name(),
		Description: c.Description(),
		Type:        discordgo.ChatApplicationCommand,
	}
}

func (c *PauseCommand) Run(ctx interface{}) error {
	context, ok := slashCtx(ctx)
	if !ok {
		return nil
	}

	event := context.Event
	if err := c.Coord.Pause(event.GuildID); err != nil {
		return bot.RespondEmbedEphemeral(context.Session, event.Interaction, userError(err))
	}
	return bot.RespondEmbed(context.Session, event.Interaction, "⏸️ Paused.")
}

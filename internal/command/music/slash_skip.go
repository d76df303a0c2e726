package music

import (
	"github.com/bwmarrin/discordgo"

	"bassline/internal/bot"
)

type SkipCommand struct {
	Coord bot.Coordinator
}

func (c *SkipCommand) Name() string        { return "skip" }
func (c *SkipCommand) Description() string { return "Skip to the next track in the queue" }
func (c *SkipCommand) Category() string    { return category }

func (c *SkipCommand) SlashDefinition() *discordgo.ApplicationCommand {
	return &discordgo.ApplicationCommand{
		Name:        c.Name(),
		Description: c.Description(),
		Type:        discordgo.ChatApplicationCommand,
	}
}

func (c *SkipCommand) Run(ctx interface{}) error {
	context, ok := slashCtx(ctx)
	if !ok {
		return nil
	}

	event := context.Event
	if err := c.Coord.Skip(event.GuildID); err != nil {
		return bot.RespondEmbedEphemeral(context.Session, event.Interaction, userError(err))
	}
	return bot.RespondEmbed(context.Session, event.Interaction, "⏭️ Skipped.")
}

package music

import (
	"github.com/bwmarrin/discordgo"

	"bassline/internal/bot"
)

type ResumeCommand struct {
	Coord bot.Coordinator
}

func (c *ResumeCommand) Name() string        { return "resume" }
func (c *ResumeCommand) Description() string { return "Resume a paused track" }
func (c *ResumeCommand) Category() string    { return category }

func (c *ResumeCommand) SlashDefinition() *discordgo.ApplicationCommand {
	return &discordgo.ApplicationCommand{
		Name:        c.Name(),
		Description: c.Description(),
		Type:        discordgo.ChatApplicationCommand,
	}
}

func (c *ResumeCommand) Run(ctx interface{}) error {
	context, ok := slashCtx(ctx)
	if !ok {
		return nil
	}

	event := context.Event
	if err := c.Coord.Resume(event.GuildID); err != nil {
		return bot.RespondEmbedEphemeral(context.Session, event.Interaction, userError(err))
	}
	return bot.RespondEmbed(context.Session, event.Interaction, "▶️ Resumed.")
}

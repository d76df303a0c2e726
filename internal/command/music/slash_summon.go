package music

import (
	"github.com/bwmarrin/discordgo"

	"bassline/internal/bot"
)

type SummonCommand struct {
	Coord bot.Coordinator
}

func (c *SummonCommand) Name() string        { return "summon" }
func (c *SummonCommand) Description() string { return "Bring the bot into your voice channel" }
func (c *SummonCommand) Category() string    { return category }

func (c *SummonCommand) SlashDefinition() *discordgo.ApplicationCommand {
	return &discordgo.ApplicationCommand{
		Name:        c.Name(),
		Description: c.Description(),
		Type:        discordgo.ChatApplicationCommand,
	}
}

func (c *SummonCommand) Run(ctx interface{}) error {
	context, ok := slashCtx(ctx)
	if !ok {
		return nil
	}

	event := context.Event
	channelID := userVoiceChannel(c.Coord, event.GuildID, event.Member.User.ID)

	if err := c.Coord.Summon(event.GuildID, channelID); err != nil {
		return bot.RespondEmbedEphemeral(context.Session, event.Interaction, userError(err))
	}
	return bot.RespondEmbed(context.Session, event.Interaction, "👋 Joined your voice channel.")
}

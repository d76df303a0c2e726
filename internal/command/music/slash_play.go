package music

import (
	"fmt"

	"github.com/bwmarrin/discordgo"

	"bassline/internal/bot"
	"bassline/internal/session"
)

type PlayCommand struct {
	Coord bot.Coordinator
}

func (c *PlayCommand) Name() string        { return "play" }
func (c *PlayCommand) Description() string { return "Play a track or add it to the queue" }
func (c *PlayCommand) Category() string    { return category }

func (c *PlayCommand) SlashDefinition() *discordgo.ApplicationCommand {
	return &discordgo.ApplicationCommand{
		Name:        c.Name(),
		Description: c.Description(),
		Type:        discordgo.ChatApplicationCommand,
		Options: []*discordgo.ApplicationCommandOption{
			{
				Type:        discordgo.ApplicationCommandOptionString,
				Name:        "input",
				Description: "YouTube link or search text",
				Required:    true,
			},
		},
	}
}

func (c *PlayCommand) Run(ctx interface{}) error {
	context, ok := slashCtx(ctx)
	if !ok {
		return nil
	}

	event := context.Event
	input := context.Option("input")
	if input == "" {
		return bot.RespondEmbedEphemeral(context.Session, event.Interaction, "🎵 Tell me what to play.")
	}

	// Resolution can take a while; acknowledge now, report later.
	if err := bot.Defer(context.Session, event.Interaction); err != nil {
		return fmt.Errorf("failed to send deferred response: %w", err)
	}

	channelID := userVoiceChannel(c.Coord, event.GuildID, event.Member.User.ID)
	req := session.NewRequest(input, event.Member.User.ID)

	started, err := c.Coord.Play(event.GuildID, channelID, req)
	if err != nil {
		return bot.FollowupEmbedEphemeral(context.Session, event.Interaction, userError(err))
	}

	if started {
		return bot.FollowupEmbed(context.Session, event.Interaction, fmt.Sprintf("🎶 Starting playback of **%s**", input))
	}
	return bot.FollowupEmbed(context.Session, event.Interaction, fmt.Sprintf("➕ Added **%s** to the queue", input))
}

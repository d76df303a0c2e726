package music

import (
	"fmt"
	"strings"

	"github.com/bwmarrin/discordgo"

	"bassline/internal/bot"
)

type HistoryCommand struct{}

func (c *HistoryCommand) Name() string        { return "history" }
func (c *HistoryCommand) Description() string { return "Show recently played tracks" }
func (c *HistoryCommand) Category() string    { return category }

func (c *HistoryCommand) SlashDefinition() *discordgo.ApplicationCommand {
	return &discordgo.ApplicationCommand{
		Name:        c.Name(),
		Description: c.Description(),
		Type:        discordgo.ChatApplicationCommand,
	}
}

func (c *HistoryCommand) Run(ctx interface{}) error {
	context, ok := slashCtx(ctx)
	if !ok {
		return nil
	}

	event := context.Event
	tracks, err := context.Storage.FetchTrackHistory(event.GuildID)
	if err != nil {
		return bot.RespondEmbedEphemeral(context.Session, event.Interaction, "⚠️ Could not load history.")
	}
	if len(tracks) == 0 {
		return bot.RespondEmbedEphemeral(context.Session, event.Interaction, "📜 Nothing has been played here yet.")
	}

	var b strings.Builder
	b.WriteString("**Recently played:**\n")
	// Newest first.
	for i := len(tracks) - 1; i >= 0; i-- {
		t := tracks[i]
		fmt.Fprintf(&b, "- [%s](%s) (<@%s>)\n", t.Title, t.URL, t.RequestedBy)
	}

	return bot.RespondEmbed(context.Session, event.Interaction, b.String())
}

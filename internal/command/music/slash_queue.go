package music

import (
	"fmt"
	"strings"

	"github.com/bwmarrin/discordgo"

	"bassline/internal/bot"
	"bassline/internal/session"
)

type QueueCommand struct {
	Coord bot.Coordinator
}

func (c *QueueCommand) Name() string        { return "queue" }
func (c *QueueCommand) Description() string { return "Show the current track and the queue" }
func (c *QueueCommand) Category() string    { return category }

func (c *QueueCommand) SlashDefinition() *discordgo.ApplicationCommand {
	return &discordgo.ApplicationCommand{
		Name:        c.Name(),
		Description: c.Description(),
		Type:        discordgo.ChatApplicationCommand,
	}
}

func (c *QueueCommand) Run(ctx interface{}) error {
	context, ok := slashCtx(ctx)
	if !ok {
		return nil
	}

	event := context.Event
	snap, ok := c.Coord.Snapshot(event.GuildID)
	if !ok {
		return bot.RespondEmbedEphemeral(context.Session, event.Interaction, "🤫 Nothing is playing here.")
	}

	return bot.RespondEmbed(context.Session, event.Interaction, formatQueue(snap))
}

func formatQueue(snap session.Snapshot) string {
	var b strings.Builder

	switch {
	case snap.Active != nil && snap.State == session.StatePaused:
		fmt.Fprintf(&b, "⏸️ Paused: **%s**\n", snap.Active.Query)
	case snap.Active != nil:
		fmt.Fprintf(&b, "▶️ Now playing: **%s**\n", snap.Active.Query)
	default:
		b.WriteString("💤 Idle.\n")
	}

	if len(snap.Queue) == 0 {
		b.WriteString("The queue is empty.")
		return b.String()
	}

	b.WriteString("\n**Up next:**\n")
	for i, req := range snap.Queue {
		fmt.Fprintf(&b, "%d. %s (<@%s>)\n", i+1, req.Query, req.RequestedBy)
	}
	return b.String()
}

// Package music holds the playback slash commands. Each command talks to the
// bot through the Coordinator interface so the whole set is testable against
// a fake.
package music

import (
	"errors"

	"bassline/internal/bot"
	"bassline/internal/command"
	"bassline/internal/session"
)

const category = "🎵 Music"

// userVoiceChannel returns the channel ID of the invoking user's voice
// channel, or "" when they are not in one.
func userVoiceChannel(c bot.Coordinator, guildID, userID string) string {
	vs, err := c.FindUserVoiceState(guildID, userID)
	if err != nil || vs == nil {
		return ""
	}
	return vs.ChannelID
}

// userError converts coordinator errors into reply text. The fallback covers
// wrapped errors from deeper layers.
func userError(err error) string {
	switch {
	case errors.Is(err, session.ErrNoVoiceChannel):
		return "🔇 Join a voice channel first."
	case errors.Is(err, session.ErrConnectionFailed):
		return "🔌 Could not join the voice channel."
	case errors.Is(err, session.ErrResolutionFailed):
		return "🔍 Could not find anything to play for that."
	case errors.Is(err, session.ErrInvalidState):
		return "🤷 Nothing to do in the current state."
	default:
		return "⚠️ Something went wrong: " + err.Error()
	}
}

func slashCtx(ctx interface{}) (*command.SlashContext, bool) {
	c, ok := ctx.(*command.SlashContext)
	return c, ok
}

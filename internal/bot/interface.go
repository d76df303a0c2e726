package bot

import (
	"github.com/bwmarrin/discordgo"

	"bassline/internal/session"
)

// Coordinator is what commands need from the running bot: playback control
// plus a voice state lookup for the invoking user.
type Coordinator interface {
	Summon(guildID, channelID string) error
	Play(guildID, channelID string, req session.PlaybackRequest) (bool, error)
	Pause(guildID string) error
	Resume(guildID string) error
	Skip(guildID string) error
	Stop(guildID string) error
	Snapshot(guildID string) (session.Snapshot, bool)
	FindUserVoiceState(guildID, userID string) (*discordgo.VoiceState, error)
}

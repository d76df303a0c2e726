package discord

import (
	"context"
	"fmt"

	"github.com/bwmarrin/discordgo"

	"bassline/internal/music/stream"
	"bassline/internal/session"
)

// voiceProvider implements session.VoiceProvider on top of discordgo.
type voiceProvider struct {
	dg *discordgo.Session
}

func (p *voiceProvider) Join(guildID, channelID string) (session.VoiceHandle, error) {
	vc, err := p.dg.ChannelVoiceJoin(guildID, channelID, false, true)
	if err != nil {
		return nil, fmt.Errorf("voice join error: %w", err)
	}
	return &voiceHandle{vc: vc, channelID: channelID}, nil
}

type voiceHandle struct {
	vc        *discordgo.VoiceConnection
	channelID string
}

func (h *voiceHandle) ChannelID() string { return h.channelID }

// Stream opens the source's PCM stream and pushes it down the voice
// connection until it ends or ctx is cancelled.
func (h *voiceHandle) Stream(ctx context.Context, src session.AudioSource, paused func() bool) error {
	pcm, cleanup, err := src.OpenPCM()
	if err != nil {
		return err
	}
	defer func() {
		_ = pcm.Close()
		if cleanup != nil {
			cleanup()
		}
	}()

	return stream.ToDiscord(ctx, pcm, paused, h.vc)
}

func (h *voiceHandle) Leave() error {
	return h.vc.Disconnect()
}

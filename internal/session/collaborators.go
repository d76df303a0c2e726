package session

import (
	"context"
	"io"
	"time"
)

// AudioSource is a resolved, ready-to-stream track. Metadata is known before
// any bytes flow; OpenPCM starts the actual transcode.
type AudioSource interface {
	Title() string
	Duration() time.Duration

	// OpenPCM returns a 48kHz stereo s16le stream and a cleanup func that
	// releases any underlying processes or files.
	OpenPCM() (io.ReadCloser, func(), error)
}

// Resolver turns a raw query or URL into a playable audio source.
// Implementations are expected to be time-bounded via ctx.
type Resolver interface {
	Resolve(ctx context.Context, query string) (AudioSource, error)
}

// VoiceProvider joins guild voice channels.
type VoiceProvider interface {
	Join(guildID, channelID string) (VoiceHandle, error)
}

// VoiceHandle is an established voice connection, exclusively owned by one
// session. Stream blocks until the source is exhausted, the stream errors,
// or ctx is cancelled; paused is polled to gate frame delivery.
type VoiceHandle interface {
	ChannelID() string
	Stream(ctx context.Context, src AudioSource, paused func() bool) error
	Leave() error
}

// Notifier delivers short user-facing acknowledgments for events that are
// not direct command replies (track started, track failed, interrupted).
type Notifier interface {
	Notify(guildID, message string)
}

// TrackStartFunc is invoked whenever a request actually begins streaming.
type TrackStartFunc func(guildID string, req PlaybackRequest, src AudioSource)

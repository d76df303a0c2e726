package parsers

import (
	"context"
	"io"
	"time"

	"bassline/internal/music/sources"
)

// Track is a resolved track moving through the streaming pipeline. Parsers
// fill Title and Duration as they learn them.
type Track struct {
	URL      string
	Title    string
	Duration time.Duration
	Info     sources.TrackInfo
}

// Streamer opens a PCM stream (48kHz stereo s16le) for a track. The cleanup
// func kills any helper processes and must always be called.
type Streamer interface {
	Name() string
	Open(ctx context.Context, track *Track) (io.ReadCloser, func(), error)
}

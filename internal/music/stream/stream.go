package stream

import (
	"context"
	"fmt"
	"io"
	"strings"

	"github.com/rs/zerolog/log"

	"bassline/internal/music/parsers"
)

const (
	channels   = 2
	sampleRate = 48000
	frameSize  = 960 // 20ms at 48kHz
)

// AutoOpen walks the track's parser preference list and returns the first
// stream that opens. The returned name tells which parser won.
func AutoOpen(ctx context.Context, track *parsers.Track, registry map[string]parsers.Streamer) (io.ReadCloser, func(), string, error) {
	var errs []string

	for _, name := range track.Info.AvailableParsers {
		streamer, ok := registry[name]
		if !ok {
			errs = append(errs, fmt.Sprintf("%s: not registered", name))
			continue
		}

		r, cleanup, err := streamer.Open(ctx, track)
		if err == nil {
			return r, cleanup, name, nil
		}

		log.Warn().Str("parser", name).Str("url", track.URL).Err(err).Msg("parser failed, trying next")
		errs = append(errs, fmt.Sprintf("%s: %v", name, err))
	}

	return nil, nil, "", fmt.Errorf("all parsers failed for %s: %s", track.URL, strings.Join(errs, "; "))
}

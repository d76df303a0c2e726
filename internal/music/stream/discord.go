package stream

import (
	"context"
	"encoding/binary"
	"errors"
	"fmt"
	"io"
	"time"

	"github.com/bwmarrin/discordgo"
	"layeh.com/gopus"
)

// ToDiscord encodes PCM frames to Opus and pushes them down the voice
// connection until the stream ends, an error occurs, or ctx is cancelled.
// While paused reports true no frames are sent and the stream is kept open.
// A clean end of stream returns nil.
func ToDiscord(ctx context.Context, pcm io.Reader, paused func() bool, vc *discordgo.VoiceConnection) error {
	encoder, err := gopus.NewEncoder(sampleRate, channels, gopus.Audio)
	if err != nil {
		return fmt.Errorf("opus encoder error: %w", err)
	}

	_ = vc.Speaking(true)
	defer vc.Speaking(false)

	pcmBuf := make([]byte, frameSize*channels*2)
	intBuf := make([]int16, frameSize*channels)

	for {
		if ctx.Err() != nil {
			return ctx.Err()
		}

		if paused != nil && paused() {
			select {
			case <-ctx.Done():
				return ctx.Err()
			case <-time.After(100 * time.Millisecond):
			}
			continue
		}

		if _, err := io.ReadFull(pcm, pcmBuf); err != nil {
			if errors.Is(err, io.EOF) || errors.Is(err, io.ErrUnexpectedEOF) {
				return nil
			}
			return fmt.Errorf("pcm read error: %w", err)
		}

		for i := range intBuf {
			intBuf[i] = int16(binary.LittleEndian.Uint16(pcmBuf[i*2 : i*2+2]))
		}

		opus, err := encoder.Encode(intBuf, frameSize, len(pcmBuf))
		if err != nil {
			return fmt.Errorf("opus encode error: %w", err)
		}

		select {
		case <-ctx.Done():
			return ctx.Err()
		case vc.OpusSend <- opus:
		}
	}
}

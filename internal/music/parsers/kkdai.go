package parsers

import (
	"context"
	"errors"
	"fmt"
	"io"
	"net/http"
	"time"

	yt "github.com/kkdai/youtube/v2"

	"bassline/internal/music/sources/youtube"
)

// KKDAIStreamer extracts a direct audio URL natively and hands it to ffmpeg.
// No helper process besides the transcoder.
type KKDAIStreamer struct{}

func (s *KKDAIStreamer) Name() string { return "kkdai" }

func (s *KKDAIStreamer) Open(ctx context.Context, track *Track) (io.ReadCloser, func(), error) {
	videoID, err := youtube.ExtractVideoID(track.URL)
	if err != nil {
		return nil, nil, err
	}

	client := &yt.Client{
		HTTPClient: &http.Client{Timeout: 15 * time.Second},
	}

	video, err := client.GetVideoContext(ctx, videoID)
	if err != nil {
		return nil, nil, fmt.Errorf("youtube client error: %w", err)
	}

	track.Title = video.Title
	track.Duration = video.Duration

	formats := video.Formats.WithAudioChannels()
	if len(formats) == 0 {
		return nil, nil, errors.New("no audio formats found for video")
	}

	link, err := client.GetStreamURLContext(ctx, video, &formats[0])
	if err != nil {
		return nil, nil, fmt.Errorf("get stream URL error: %w", err)
	}

	return pcmFromLink(link)
}

// ProbeMetadata fills title and duration without opening a stream.
func (s *KKDAIStreamer) ProbeMetadata(ctx context.Context, track *Track) error {
	videoID, err := youtube.ExtractVideoID(track.URL)
	if err != nil {
		return err
	}

	client := &yt.Client{
		HTTPClient: &http.Client{Timeout: 15 * time.Second},
	}

	video, err := client.GetVideoContext(ctx, videoID)
	if err != nil {
		return fmt.Errorf("youtube client error: %w", err)
	}

	track.Title = video.Title
	track.Duration = video.Duration
	return nil
}

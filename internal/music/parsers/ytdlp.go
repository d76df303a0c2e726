package parsers

import (
	"context"
	"encoding/json"
	"fmt"
	"io"
	"os/exec"
	"time"

	"github.com/rs/zerolog/log"

	"bassline/internal/music/cache"
)

// YTDLPStreamer shells out to yt-dlp. Short tracks are pre-buffered into the
// file cache for smoother playback; long tracks are piped straight into
// ffmpeg.
type YTDLPStreamer struct {
	Cache          *cache.FileCache
	PrebufferLimit time.Duration
}

func (s *YTDLPStreamer) Name() string { return "ytdlp" }

func (s *YTDLPStreamer) Open(ctx context.Context, track *Track) (io.ReadCloser, func(), error) {
	if err := s.probe(ctx, track); err != nil {
		return nil, nil, err
	}

	if s.Cache != nil && track.Duration > 0 && track.Duration < s.PrebufferLimit {
		path, err := s.Cache.Fetch(ctx, track.URL)
		if err == nil {
			log.Debug().Str("url", track.URL).Str("file", path).Msg("playing pre-buffered file")
			return pcmFromFile(path)
		}
		log.Warn().Str("url", track.URL).Err(err).Msg("pre-buffer failed, falling back to direct stream")
	}

	ytdlp := exec.Command("yt-dlp", "-o", "-", "--no-playlist", "-f", "bestaudio", track.URL)
	pipe, err := ytdlp.StdoutPipe()
	if err != nil {
		return nil, nil, fmt.Errorf("yt-dlp stdout pipe error: %w", err)
	}
	if err := ytdlp.Start(); err != nil {
		return nil, nil, fmt.Errorf("yt-dlp start error: %w", err)
	}

	reader, ffmpegCleanup, err := pcmFromReader(pipe)
	if err != nil {
		_ = ytdlp.Process.Kill()
		return nil, nil, err
	}

	cleanup := func() {
		ffmpegCleanup()
		_ = ytdlp.Process.Kill()
		_ = ytdlp.Wait()
	}
	return reader, cleanup, nil
}

// probe runs yt-dlp in JSON mode to learn title and duration up front.
func (s *YTDLPStreamer) probe(ctx context.Context, track *Track) error {
	out, err := exec.CommandContext(ctx, "yt-dlp", "-j", "--no-playlist", "-f", "bestaudio", track.URL).Output()
	if err != nil {
		return fmt.Errorf("yt-dlp probe error: %w", err)
	}

	var info struct {
		Title    string  `json:"title"`
		Duration float64 `json:"duration"`
	}
	if err := json.Unmarshal(out, &info); err != nil {
		return fmt.Errorf("yt-dlp json error: %w", err)
	}

	if info.Title != "" {
		track.Title = info.Title
	}
	if info.Duration > 0 {
		track.Duration = time.Duration(info.Duration * float64(time.Second))
	}
	return nil
}

package parsers

import (
	"fmt"
	"io"
	"os/exec"
)

const (
	channels   = 2
	sampleRate = 48000
)

var pcmOutputArgs = []string{
	"-vn",
	"-f", "s16le",
	"-ar", fmt.Sprintf("%d", sampleRate),
	"-ac", fmt.Sprintf("%d", channels),
	"-loglevel", "warning",
	"pipe:1",
}

// pcmFromLink transcodes a remote URL, with HTTP reconnect enabled so short
// network drops do not end the track.
func pcmFromLink(link string) (io.ReadCloser, func(), error) {
	args := []string{
		"-reconnect", "1",
		"-reconnect_streamed", "1",
		"-reconnect_delay_max", "5",
		"-i", link,
	}
	return startFFmpeg(args, nil)
}

// pcmFromFile transcodes a local file.
func pcmFromFile(path string) (io.ReadCloser, func(), error) {
	return startFFmpeg([]string{"-i", path}, nil)
}

// pcmFromReader transcodes from stdin.
func pcmFromReader(r io.Reader) (io.ReadCloser, func(), error) {
	return startFFmpeg([]string{"-i", "pipe:0"}, r)
}

func startFFmpeg(inputArgs []string, stdin io.Reader) (io.ReadCloser, func(), error) {
	cmd := exec.Command("ffmpeg", append(inputArgs, pcmOutputArgs...)...)
	if stdin != nil {
		cmd.Stdin = stdin
	}

	reader, err := cmd.StdoutPipe()
	if err != nil {
		return nil, nil, fmt.Errorf("ffmpeg stdout pipe error: %w", err)
	}
	if err := cmd.Start(); err != nil {
		return nil, nil, fmt.Errorf("ffmpeg start error: %w", err)
	}

	cleanup := func() {
		_ = cmd.Process.Kill()
		_ = cmd.Wait()
	}
	return reader, cleanup, nil
}

package youtube

import (
	"errors"
	"fmt"
	"net/url"
	"regexp"
	"strings"
)

var youtubeRegex = regexp.MustCompile(`(?:https?://)?(?:www\.|music\.)?(youtube\.com|youtu\.be)/\S+`)

func isYouTubeURL(input string) bool {
	return youtubeRegex.MatchString(input)
}

func isYouTubeVideoURL(s string) bool {
	return strings.Contains(s, "youtube.com/watch?v=") ||
		strings.Contains(s, "music.youtube.com/watch?v=") ||
		strings.Contains(s, "youtu.be/")
}

// CleanVideoURL strips playlist, timestamp and tracking parameters, keeping
// only the video reference.
func CleanVideoURL(raw string) string {
	u, err := url.Parse(raw)
	if err != nil {
		return raw
	}

	switch host := u.Hostname(); host {
	case "youtu.be":
		vid := strings.Trim(u.Path, "/")
		if vid == "" {
			return raw
		}
		return fmt.Sprintf("https://youtu.be/%s", vid)

	case "www.youtube.com", "youtube.com", "music.youtube.com":
		if u.Path == "/watch" {
			if vid := u.Query().Get("v"); vid != "" {
				return fmt.Sprintf("https://%s/watch?v=%s", host, vid)
			}
		}
		return raw

	default:
		return raw
	}
}

// ExtractVideoID pulls the video ID out of a watch URL.
func ExtractVideoID(rawURL string) (string, error) {
	switch {
	case strings.Contains(rawURL, "youtu.be/"):
		parts := strings.Split(rawURL, "youtu.be/")
		if len(parts) != 2 {
			return "", errors.New("invalid YouTube URL format")
		}
		return strings.Split(parts[1], "?")[0], nil

	case strings.Contains(rawURL, "youtube.com/watch?v="):
		parts := strings.Split(rawURL, "v=")
		if len(parts) != 2 {
			return "", errors.New("invalid YouTube URL format")
		}
		return strings.Split(parts[1], "&")[0], nil

	default:
		return "", errors.New("unsupported URL format")
	}
}

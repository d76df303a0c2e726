package youtube

import (
	"context"
	"errors"
	"strings"

	"bassline/internal/music/sources"
)

const SourceName = "youtube"

var ErrNotFound = errors.New("no YouTube video found for query")

type Source struct {
	search *SearchClient
}

func New() *Source {
	return &Source{search: NewSearchClient()}
}

func (y *Source) SourceName() string { return SourceName }

func (y *Source) AvailableParsers() []string {
	return []string{"kkdai", "ytdlp"}
}

func (y *Source) Match(input string) bool {
	return isYouTubeURL(input)
}

// Resolve accepts a video URL or free text. URLs are stripped of tracking
// parameters; text goes through the search page and yields the first hit.
func (y *Source) Resolve(ctx context.Context, input string) (sources.TrackInfo, error) {
	input = strings.TrimSpace(input)

	if isYouTubeVideoURL(input) {
		return sources.TrackInfo{
			URL:              CleanVideoURL(input),
			SourceName:       SourceName,
			AvailableParsers: y.AvailableParsers(),
		}, nil
	}

	if sources.IsURL(input) {
		return sources.TrackInfo{}, errors.New("unsupported YouTube URL format")
	}

	videoURL, err := y.search.FirstVideoURL(ctx, input)
	if err != nil {
		return sources.TrackInfo{}, err
	}

	return sources.TrackInfo{
		URL:              videoURL,
		Title:            input,
		SourceName:       SourceName,
		AvailableParsers: y.AvailableParsers(),
	}, nil
}

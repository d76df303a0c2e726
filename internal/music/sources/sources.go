package sources

import (
	"context"
	"strings"
)

// TrackInfo is the outcome of resolving user input against a source: a
// canonical URL plus the parsers able to stream it, in preference order.
type TrackInfo struct {
	URL              string
	Title            string
	SourceName       string
	AvailableParsers []string
}

// IsURL reports whether the input is an absolute http(s) link rather than
// search text.
func IsURL(input string) bool {
	return strings.HasPrefix(input, "http://") || strings.HasPrefix(input, "https://")
}

// Source turns raw user input (URL or search text) into track info.
type Source interface {
	// Match checks if this source can handle the given input.
	Match(input string) bool

	// Resolve turns an input into a playable track reference.
	Resolve(ctx context.Context, input string) (TrackInfo, error)

	SourceName() string

	// AvailableParsers returns parser names in preference order.
	AvailableParsers() []string
}

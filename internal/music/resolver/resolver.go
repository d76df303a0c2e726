// Package resolver turns free-form queries into playable audio sources. It
// matches a query against the registered media sources, probes metadata, and
// wraps the result so the session layer can open a PCM stream without caring
// which parser does the work.
package resolver

import (
	"context"
	"errors"
	"fmt"
	"io"
	"time"

	"github.com/rs/zerolog/log"

	"bassline/internal/music/cache"
	"bassline/internal/music/parsers"
	"bassline/internal/music/sources"
	"bassline/internal/music/sources/youtube"
	"bassline/internal/music/stream"
	"bassline/internal/session"
	"bassline/pkg/retrylimit"
)

// Resolver implements session.Resolver on top of the source and parser
// registries. Resolution is rate limited and retried with backoff; lookups
// that can never succeed (no matching source, no search hit) fail fast.
type Resolver struct {
	sources  []sources.Source
	registry map[string]parsers.Streamer
	probe    *parsers.KKDAIStreamer
	limiter  *retrylimit.AdaptiveLimiter
	timeout  time.Duration
}

// Options tunes a Resolver.
type Options struct {
	Cache          *cache.FileCache
	PrebufferLimit time.Duration
	ResolveTimeout time.Duration
}

func New(opts Options) *Resolver {
	if opts.ResolveTimeout <= 0 {
		opts.ResolveTimeout = 30 * time.Second
	}

	kkdai := &parsers.KKDAIStreamer{}
	return &Resolver{
		sources: []sources.Source{youtube.New()},
		registry: map[string]parsers.Streamer{
			"kkdai": kkdai,
			"ytdlp": &parsers.YTDLPStreamer{Cache: opts.Cache, PrebufferLimit: opts.PrebufferLimit},
		},
		probe:   kkdai,
		limiter: retrylimit.NewAdaptiveLimiter(5, 1, 10, 1, 0.5),
		timeout: opts.ResolveTimeout,
	}
}

// Resolve finds a playable track for the query. Transient lookup failures are
// retried a few times; a dead end returns an error wrapping
// session.ErrResolutionFailed so the caller can advance the queue.
func (r *Resolver) Resolve(ctx context.Context, query string) (session.AudioSource, error) {
	ctx, cancel := context.WithTimeout(ctx, r.timeout)
	defer cancel()

	var info sources.TrackInfo
	resolve := func() error {
		src := r.sourceFor(query)
		if src == nil {
			return retrylimit.Fatal(fmt.Errorf("no source matches %q", query))
		}
		var err error
		info, err = src.Resolve(ctx, query)
		if errors.Is(err, youtube.ErrNotFound) {
			return retrylimit.Fatal(err)
		}
		return err
	}

	cfg := retrylimit.DefaultRetryConfig()
	cfg.OnRetry = func(attempt int, err error) {
		log.Debug().Int("attempt", attempt).Str("query", query).Err(err).Msg("resolve attempt failed")
	}

	if err := retrylimit.WithRetryConfig(ctx, resolve, r.limiter, cfg); err != nil {
		if ctx.Err() != nil && errors.Is(err, ctx.Err()) {
			return nil, err
		}
		return nil, fmt.Errorf("%w: %v", session.ErrResolutionFailed, err)
	}

	track := &parsers.Track{URL: info.URL, Title: info.Title, Info: info}

	// Metadata probe is best effort. A track without a known title still
	// plays; the query stands in for it.
	if err := r.probe.ProbeMetadata(ctx, track); err != nil {
		log.Debug().Str("url", track.URL).Err(err).Msg("metadata probe failed")
	}
	if track.Title == "" {
		track.Title = query
	}

	log.Info().Str("query", query).Str("url", track.URL).Str("title", track.Title).Msg("query resolved")
	return &audioSource{track: track, registry: r.registry}, nil
}

func (r *Resolver) sourceFor(query string) sources.Source {
	for _, s := range r.sources {
		if s.Match(query) {
			return s
		}
	}
	// Bare text falls through to the first source's search.
	if !sources.IsURL(query) && len(r.sources) > 0 {
		return r.sources[0]
	}
	return nil
}

// audioSource adapts a resolved track to session.AudioSource.
type audioSource struct {
	track    *parsers.Track
	registry map[string]parsers.Streamer
}

func (a *audioSource) Title() string           { return a.track.Title }
func (a *audioSource) Duration() time.Duration { return a.track.Duration }

// OpenPCM opens a 48kHz stereo s16le stream through the first parser that
// can serve the track. The caller owns both the reader and the cleanup.
func (a *audioSource) OpenPCM() (io.ReadCloser, func(), error) {
	rc, cleanup, name, err := stream.AutoOpen(context.Background(), a.track, a.registry)
	if err != nil {
		return nil, nil, err
	}
	log.Debug().Str("parser", name).Str("url", a.track.URL).Msg("stream opened")
	return rc, cleanup, nil
}

package session

import (
	"context"
	"fmt"
	"sync"

	"github.com/rs/zerolog/log"
)

// Session is the per-guild playback coordinator: one voice connection, one
// FIFO queue of requests, at most one active stream. All command-facing
// methods are safe for concurrent use; long-running work (resolution and
// streaming) happens on a single playback goroutine per session so commands
// on one guild are serialized without blocking other guilds.
type Session struct {
	guildID      string
	resolver     Resolver
	voice        VoiceProvider
	notifier     Notifier
	onTrackStart TrackStartFunc

	// connMu serializes Connect calls so two concurrent summons cannot
	// race the voice provider.
	connMu sync.Mutex

	mu      sync.Mutex
	state   State
	queue   []PlaybackRequest
	active  *PlaybackRequest
	handle  VoiceHandle
	paused  bool
	closed  bool
	running bool

	loopCancel context.CancelFunc
	skipCancel context.CancelFunc
	loopDone   chan struct{}
}

func newSession(guildID string, resolver Resolver, voice VoiceProvider, notifier Notifier, onTrackStart TrackStartFunc) *Session {
	return &Session{
		guildID:      guildID,
		resolver:     resolver,
		voice:        voice,
		notifier:     notifier,
		onTrackStart: onTrackStart,
		state:        StateConnecting,
	}
}

func (s *Session) GuildID() string { return s.guildID }

// Connect joins the given voice channel, moving if already connected
// elsewhere. On success the session holds the voice handle and is ready to
// play; a session that never connects must be discarded by the caller.
func (s *Session) Connect(channelID string) error {
	s.connMu.Lock()
	defer s.connMu.Unlock()

	s.mu.Lock()
	if s.closed {
		s.mu.Unlock()
		return ErrSessionClosed
	}
	cur := s.handle
	s.mu.Unlock()

	if cur != nil {
		if cur.ChannelID() == channelID {
			return nil
		}
		_ = cur.Leave()
	}

	h, err := s.voice.Join(s.guildID, channelID)
	if err != nil {
		s.mu.Lock()
		s.handle = nil
		s.cancelActiveStreamLocked()
		s.mu.Unlock()
		return fmt.Errorf("%w: %v", ErrConnectionFailed, err)
	}

	s.mu.Lock()
	if s.closed {
		s.mu.Unlock()
		_ = h.Leave()
		return ErrSessionClosed
	}
	s.handle = h
	// A stream bound to the old connection cannot survive the move; end it
	// so the playback loop picks up the new handle for the next track.
	s.cancelActiveStreamLocked()
	if s.state == StateConnecting {
		s.state = StateIdle
	}
	if len(s.queue) > 0 && !s.running {
		s.startLoopLocked()
	}
	s.mu.Unlock()

	log.Info().Str("guild", s.guildID).Str("channel", channelID).Msg("voice channel joined")
	return nil
}

// Play enqueues a request. If the session is idle the playback loop starts
// and the request is picked up immediately; otherwise it waits its turn.
// Returns true when this call kicked off playback.
func (s *Session) Play(req PlaybackRequest) (bool, error) {
	s.mu.Lock()
	defer s.mu.Unlock()

	if s.closed {
		return false, ErrSessionClosed
	}

	s.queue = append(s.queue, req)
	log.Debug().Str("guild", s.guildID).Str("query", req.Query).Int("queue", len(s.queue)).Msg("request enqueued")

	if !s.running && s.handle != nil {
		s.startLoopLocked()
		return true, nil
	}
	return false, nil
}

// Pause is valid only while playing.
func (s *Session) Pause() error {
	s.mu.Lock()
	defer s.mu.Unlock()
	if s.state != StatePlaying {
		return ErrInvalidState
	}
	s.state = StatePaused
	s.paused = true
	return nil
}

// Resume is valid only while paused. The active request is untouched: the
// stream picks up where it left off, no re-resolution happens.
func (s *Session) Resume() error {
	s.mu.Lock()
	defer s.mu.Unlock()
	if s.state != StatePaused {
		return ErrInvalidState
	}
	s.state = StatePlaying
	s.paused = false
	return nil
}

// Skip interrupts the active stream; the playback loop advances to the next
// queued request or goes idle.
func (s *Session) Skip() error {
	s.mu.Lock()
	defer s.mu.Unlock()
	if s.active == nil || s.skipCancel == nil {
		return ErrInvalidState
	}
	s.cancelActiveStreamLocked()
	return nil
}

// cancelActiveStreamLocked interrupts the in-flight stream, if any; the
// playback loop advances to the next queued request. Caller holds s.mu.
func (s *Session) cancelActiveStreamLocked() {
	if s.skipCancel == nil {
		return
	}
	if s.state == StatePaused {
		s.state = StatePlaying
	}
	s.paused = false
	s.skipCancel()
}

// Stop tears the session down from any state: clears the queue, cancels any
// in-flight resolution or stream, waits for the playback goroutine to wind
// down and releases the voice handle. Safe to call more than once.
func (s *Session) Stop() error {
	s.mu.Lock()
	if s.closed {
		s.mu.Unlock()
		return nil
	}
	s.closed = true
	s.queue = nil
	s.paused = false
	s.state = StateIdle
	cancel := s.loopCancel
	done := s.loopDone
	running := s.running
	handle := s.handle
	s.handle = nil
	s.mu.Unlock()

	if cancel != nil {
		cancel()
	}
	if running && done != nil {
		<-done
	}
	if handle != nil {
		_ = handle.Leave()
	}

	log.Info().Str("guild", s.guildID).Msg("session stopped")
	return nil
}

// Snapshot returns a consistent copy of the observable session state.
func (s *Session) Snapshot() Snapshot {
	s.mu.Lock()
	defer s.mu.Unlock()

	snap := Snapshot{
		State: s.state,
		Queue: append([]PlaybackRequest(nil), s.queue...),
	}
	if s.active != nil {
		a := *s.active
		snap.Active = &a
	}
	if s.handle != nil {
		snap.ChannelID = s.handle.ChannelID()
	}
	return snap
}

// Snapshot is a point-in-time view of a session.
type Snapshot struct {
	State     State
	Queue     []PlaybackRequest
	Active    *PlaybackRequest
	ChannelID string
}

func (s *Session) isPaused() bool {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.paused
}

// startLoopLocked spins up the playback goroutine. Caller holds s.mu.
func (s *Session) startLoopLocked() {
	ctx, cancel := context.WithCancel(context.Background())
	s.loopCancel = cancel
	s.loopDone = make(chan struct{})
	s.running = true
	s.state = StateResolving
	go s.run(ctx, s.loopDone)
}

// run drains the queue: resolve, stream, advance. A resolution failure
// reports and moves straight to the next request without passing through
// Idle. The loop exits when the queue is empty or ctx is cancelled.
func (s *Session) run(ctx context.Context, done chan struct{}) {
	defer func() {
		s.mu.Lock()
		s.active = nil
		// A Play can slip in between the empty-queue check and this
		// cleanup; it saw running == true and did not start a loop, so
		// keep draining instead of stranding the request.
		if !s.closed && ctx.Err() == nil && s.handle != nil && len(s.queue) > 0 {
			s.startLoopLocked()
			s.mu.Unlock()
			close(done)
			return
		}
		s.running = false
		if !s.closed && ctx.Err() == nil {
			s.state = StateIdle
		}
		s.mu.Unlock()
		close(done)
	}()

	for {
		if ctx.Err() != nil {
			return
		}

		s.mu.Lock()
		if len(s.queue) == 0 {
			s.mu.Unlock()
			return
		}
		req := s.queue[0]
		s.queue = s.queue[1:]
		s.active = &req
		s.state = StateResolving
		s.mu.Unlock()

		src, err := s.resolver.Resolve(ctx, req.Query)
		if err != nil {
			if ctx.Err() != nil {
				return
			}
			log.Warn().Str("guild", s.guildID).Str("query", req.Query).Err(err).Msg("resolution failed, advancing")
			s.notifyf("❌ Could not play %q: %v", req.Query, err)
			s.mu.Lock()
			s.active = nil
			s.mu.Unlock()
			continue
		}

		s.mu.Lock()
		handle := s.handle
		if handle == nil {
			s.active = nil
			s.mu.Unlock()
			log.Warn().Str("guild", s.guildID).Msg("voice handle lost before playback")
			return
		}
		streamCtx, skipCancel := context.WithCancel(ctx)
		s.skipCancel = skipCancel
		s.state = StatePlaying
		s.paused = false
		s.mu.Unlock()

		if s.onTrackStart != nil {
			s.onTrackStart(s.guildID, req, src)
		}
		s.notifyf("▶️ Now playing: %s", src.Title())
		log.Info().Str("guild", s.guildID).Str("title", src.Title()).Dur("duration", src.Duration()).Msg("streaming track")

		streamErr := handle.Stream(streamCtx, src, s.isPaused)
		skipped := streamCtx.Err() != nil && ctx.Err() == nil
		skipCancel()

		s.mu.Lock()
		s.active = nil
		s.skipCancel = nil
		s.mu.Unlock()

		if ctx.Err() != nil {
			return
		}
		switch {
		case skipped:
			log.Debug().Str("guild", s.guildID).Str("title", src.Title()).Msg("track skipped")
		case streamErr != nil:
			// Treated like natural completion: report and advance.
			log.Warn().Str("guild", s.guildID).Str("title", src.Title()).Err(streamErr).Msg("stream interrupted")
			s.notifyf("⚠️ Playback of %s was interrupted", src.Title())
		default:
			log.Debug().Str("guild", s.guildID).Str("title", src.Title()).Msg("track finished")
		}
	}
}

func (s *Session) notifyf(format string, args ...any) {
	if s.notifier == nil {
		return
	}
	s.notifier.Notify(s.guildID, fmt.Sprintf(format, args...))
}

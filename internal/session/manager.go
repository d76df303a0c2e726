package session

import (
	"errors"
	"sync"

	"github.com/rs/zerolog/log"
)

// Manager owns one Session per guild and maps user commands onto session
// state transitions. Guilds are fully independent: a slow resolution in one
// guild never blocks commands in another.
type Manager struct {
	resolver     Resolver
	voice        VoiceProvider
	notifier     Notifier
	onTrackStart TrackStartFunc

	mu       sync.RWMutex
	sessions map[string]*Session
}

// Option configures a Manager.
type Option func(*Manager)

// WithNotifier wires user-facing event notifications.
func WithNotifier(n Notifier) Option {
	return func(m *Manager) { m.notifier = n }
}

// WithTrackStartHook registers a callback fired when a track starts.
func WithTrackStartHook(fn TrackStartFunc) Option {
	return func(m *Manager) { m.onTrackStart = fn }
}

func NewManager(resolver Resolver, voice VoiceProvider, opts ...Option) *Manager {
	m := &Manager{
		resolver: resolver,
		voice:    voice,
		sessions: make(map[string]*Session),
	}
	for _, opt := range opts {
		opt(m)
	}
	return m
}

// Get returns the live session for a guild, if any.
func (m *Manager) Get(guildID string) (*Session, bool) {
	m.mu.RLock()
	defer m.mu.RUnlock()
	s, ok := m.sessions[guildID]
	return s, ok
}

// Count reports the number of live sessions.
func (m *Manager) Count() int {
	m.mu.RLock()
	defer m.mu.RUnlock()
	return len(m.sessions)
}

// Summon creates the guild session if needed and joins the caller's voice
// channel. The caller must be in a voice channel. A brand-new session that
// fails to connect is discarded.
func (m *Manager) Summon(guildID, userChannelID string) error {
	if userChannelID == "" {
		return ErrNoVoiceChannel
	}
	_, err := m.ensure(guildID, userChannelID)
	return err
}

// Play enqueues a request, auto-summoning a session when none exists and the
// caller is in a voice channel. Returns true when playback started with this
// request (as opposed to it joining the queue).
func (m *Manager) Play(guildID, userChannelID string, req PlaybackRequest) (bool, error) {
	s, ok := m.Get(guildID)
	if !ok {
		if userChannelID == "" {
			return false, ErrNoVoiceChannel
		}
		var err error
		s, err = m.ensure(guildID, userChannelID)
		if err != nil {
			return false, err
		}
	}

	started, err := s.Play(req)
	if errors.Is(err, ErrSessionClosed) && userChannelID != "" {
		// Session was torn down between lookup and enqueue; start fresh.
		m.removeIf(guildID, s)
		s, err = m.ensure(guildID, userChannelID)
		if err != nil {
			return false, err
		}
		started, err = s.Play(req)
	}
	return started, err
}

// Pause pauses the active stream.
func (m *Manager) Pause(guildID string) error {
	s, ok := m.Get(guildID)
	if !ok {
		return ErrInvalidState
	}
	return s.Pause()
}

// Resume resumes a paused stream.
func (m *Manager) Resume(guildID string) error {
	s, ok := m.Get(guildID)
	if !ok {
		return ErrInvalidState
	}
	return s.Resume()
}

// Skip interrupts the active track and advances the queue.
func (m *Manager) Skip(guildID string) error {
	s, ok := m.Get(guildID)
	if !ok {
		return ErrInvalidState
	}
	return s.Skip()
}

// Stop destroys the guild session: queue cleared, stream cancelled, voice
// handle released.
func (m *Manager) Stop(guildID string) error {
	m.mu.Lock()
	s, ok := m.sessions[guildID]
	if ok {
		delete(m.sessions, guildID)
	}
	m.mu.Unlock()

	if !ok {
		return ErrInvalidState
	}
	return s.Stop()
}

// StopAll tears down every session, used on shutdown.
func (m *Manager) StopAll() {
	m.mu.Lock()
	sessions := m.sessions
	m.sessions = make(map[string]*Session)
	m.mu.Unlock()

	for _, s := range sessions {
		_ = s.Stop()
	}
}

// Snapshot returns the observable state of a guild session.
func (m *Manager) Snapshot(guildID string) (Snapshot, bool) {
	s, ok := m.Get(guildID)
	if !ok {
		return Snapshot{}, false
	}
	return s.Snapshot(), true
}

func (m *Manager) ensure(guildID, channelID string) (*Session, error) {
	m.mu.Lock()
	s, existed := m.sessions[guildID]
	if !existed {
		s = newSession(guildID, m.resolver, m.voice, m.notifier, m.onTrackStart)
		m.sessions[guildID] = s
		log.Debug().Str("guild", guildID).Msg("session created")
	}
	m.mu.Unlock()

	if err := s.Connect(channelID); err != nil {
		if !existed {
			m.removeIf(guildID, s)
		}
		return nil, err
	}
	return s, nil
}

// removeIf deletes the mapping only when it still points at the given
// session, so a concurrently re-created session is left alone.
func (m *Manager) removeIf(guildID string, s *Session) {
	m.mu.Lock()
	if cur, ok := m.sessions[guildID]; ok && cur == s {
		delete(m.sessions, guildID)
	}
	m.mu.Unlock()
}

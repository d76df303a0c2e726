package session

import (
	"errors"
	"testing"
	"time"
)

const (
	testGuild   = "guild-1"
	testChannel = "voice-1"
)

func newTestManager(t *testing.T) (*Manager, *fakeResolver, *fakeProvider, *fakeNotifier) {
	t.Helper()
	resolver := newFakeResolver()
	provider := &fakeProvider{}
	notifier := &fakeNotifier{}
	m := NewManager(resolver, provider, WithNotifier(notifier))
	t.Cleanup(m.StopAll)
	return m, resolver, provider, notifier
}

func TestPlayStartsPlayback(t *testing.T) {
	m, _, provider, _ := newTestManager(t)

	started, err := m.Play(testGuild, testChannel, NewRequest("song a", "user-1"))
	if err != nil {
		t.Fatalf("Play: %v", err)
	}
	if !started {
		t.Fatal("expected first Play to start playback")
	}

	call := provider.handle(0).nextStream(t)
	if call.src.Title() != "song a" {
		t.Fatalf("streaming %q, want %q", call.src.Title(), "song a")
	}

	snap, ok := m.Snapshot(testGuild)
	if !ok {
		t.Fatal("expected a session snapshot")
	}
	if snap.State != StatePlaying {
		t.Fatalf("state = %v, want %v", snap.State, StatePlaying)
	}
	if snap.Active == nil || snap.Active.Query != "song a" {
		t.Fatalf("active = %+v, want song a", snap.Active)
	}
}

func TestQueueIsFIFO(t *testing.T) {
	m, _, provider, _ := newTestManager(t)

	queries := []string{"first", "second", "third"}
	for _, q := range queries {
		if _, err := m.Play(testGuild, testChannel, NewRequest(q, "user-1")); err != nil {
			t.Fatalf("Play(%s): %v", q, err)
		}
	}

	h := provider.handle(0)
	var played []string
	for range queries {
		call := h.nextStream(t)
		played = append(played, call.src.Title())
		call.finish <- nil
	}

	for i, q := range queries {
		if played[i] != q {
			t.Fatalf("played %v, want %v", played, queries)
		}
	}

	waitFor(t, func() bool {
		snap, ok := m.Snapshot(testGuild)
		return ok && snap.State == StateIdle && snap.Active == nil
	}, "session did not go idle after the queue drained")
}

func TestPlayRacingLoopExitIsNotStranded(t *testing.T) {
	m, resolver, provider, _ := newTestManager(t)

	if err := m.Summon(testGuild, testChannel); err != nil {
		t.Fatalf("Summon: %v", err)
	}
	h := provider.handle(0)

	// Finish every stream as soon as it starts so the loop is constantly
	// winding down while new requests race in.
	stop := make(chan struct{})
	defer close(stop)
	go func() {
		for {
			select {
			case call := <-h.streams:
				call.finish <- nil
			case <-stop:
				return
			}
		}
	}()

	const requests = 200
	for i := 0; i < requests; i++ {
		if _, err := m.Play(testGuild, testChannel, NewRequest("track", "user-1")); err != nil {
			t.Fatalf("Play #%d: %v", i, err)
		}
	}

	waitFor(t, func() bool {
		snap, ok := m.Snapshot(testGuild)
		return ok && resolver.callCount() == requests && snap.State == StateIdle && len(snap.Queue) == 0
	}, "requests stranded in the queue after loop wind-down")
}

func TestAtMostOneActiveStream(t *testing.T) {
	m, _, provider, _ := newTestManager(t)

	_, _ = m.Play(testGuild, testChannel, NewRequest("long track", "user-1"))
	h := provider.handle(0)
	first := h.nextStream(t)

	started, err := m.Play(testGuild, testChannel, NewRequest("queued track", "user-2"))
	if err != nil {
		t.Fatalf("Play: %v", err)
	}
	if started {
		t.Fatal("second Play must queue, not start")
	}

	// The queued track must not stream while the first is active.
	h.expectNoStream(t, 150*time.Millisecond)

	snap, _ := m.Snapshot(testGuild)
	if len(snap.Queue) != 1 || snap.Queue[0].Query != "queued track" {
		t.Fatalf("queue = %+v, want [queued track]", snap.Queue)
	}

	first.finish <- nil
	next := h.nextStream(t)
	if next.src.Title() != "queued track" {
		t.Fatalf("streaming %q after completion, want queued track", next.src.Title())
	}
}

func TestPauseResumeKeepsActiveRequest(t *testing.T) {
	m, resolver, provider, _ := newTestManager(t)

	_, _ = m.Play(testGuild, testChannel, NewRequest("song a", "user-1"))
	call := provider.handle(0).nextStream(t)

	if err := m.Pause(testGuild); err != nil {
		t.Fatalf("Pause: %v", err)
	}
	if !call.paused() {
		t.Fatal("stream should report paused")
	}
	snap, _ := m.Snapshot(testGuild)
	if snap.State != StatePaused {
		t.Fatalf("state = %v, want %v", snap.State, StatePaused)
	}
	if snap.Active == nil || snap.Active.Query != "song a" {
		t.Fatal("pause must keep the active request")
	}

	if err := m.Resume(testGuild); err != nil {
		t.Fatalf("Resume: %v", err)
	}
	if call.paused() {
		t.Fatal("stream should no longer be paused")
	}
	snap, _ = m.Snapshot(testGuild)
	if snap.State != StatePlaying {
		t.Fatalf("state = %v, want %v", snap.State, StatePlaying)
	}
	if snap.Active == nil || snap.Active.Query != "song a" {
		t.Fatal("resume must keep the active request")
	}

	// Same stream throughout, nothing was re-resolved.
	if got := resolver.callCount(); got != 1 {
		t.Fatalf("resolver called %d times, want 1", got)
	}
}

func TestPauseResumeInvalidStates(t *testing.T) {
	m, _, provider, _ := newTestManager(t)

	if err := m.Summon(testGuild, testChannel); err != nil {
		t.Fatalf("Summon: %v", err)
	}

	// Idle: neither pause nor resume applies.
	if err := m.Pause(testGuild); !errors.Is(err, ErrInvalidState) {
		t.Fatalf("Pause while idle = %v, want ErrInvalidState", err)
	}
	if err := m.Resume(testGuild); !errors.Is(err, ErrInvalidState) {
		t.Fatalf("Resume while idle = %v, want ErrInvalidState", err)
	}

	_, _ = m.Play(testGuild, testChannel, NewRequest("song a", "user-1"))
	provider.handle(0).nextStream(t)

	// Playing: resume is a no-op error, double pause rejected.
	if err := m.Resume(testGuild); !errors.Is(err, ErrInvalidState) {
		t.Fatalf("Resume while playing = %v, want ErrInvalidState", err)
	}
	if err := m.Pause(testGuild); err != nil {
		t.Fatalf("Pause: %v", err)
	}
	if err := m.Pause(testGuild); !errors.Is(err, ErrInvalidState) {
		t.Fatalf("second Pause = %v, want ErrInvalidState", err)
	}
}

func TestStopFromPlayingClearsEverything(t *testing.T) {
	m, _, provider, _ := newTestManager(t)

	_, _ = m.Play(testGuild, testChannel, NewRequest("song a", "user-1"))
	_, _ = m.Play(testGuild, testChannel, NewRequest("song b", "user-1"))
	h := provider.handle(0)
	call := h.nextStream(t)

	if err := m.Stop(testGuild); err != nil {
		t.Fatalf("Stop: %v", err)
	}

	// Stop must have cancelled the in-flight stream.
	select {
	case <-call.ctx.Done():
	default:
		t.Fatal("stream context not cancelled by Stop")
	}
	if !h.hasLeft() {
		t.Fatal("voice handle not released")
	}
	if _, ok := m.Get(testGuild); ok {
		t.Fatal("session still registered after Stop")
	}

	// A second Stop has no session to act on.
	if err := m.Stop(testGuild); !errors.Is(err, ErrInvalidState) {
		t.Fatalf("second Stop = %v, want ErrInvalidState", err)
	}
}

func TestStopCancelsInFlightResolution(t *testing.T) {
	m, resolver, provider, _ := newTestManager(t)

	gate := make(chan struct{})
	resolver.block["slow song"] = gate
	defer close(gate)

	_, _ = m.Play(testGuild, testChannel, NewRequest("slow song", "user-1"))
	waitFor(t, func() bool { return resolver.callCount() == 1 }, "resolution never started")

	done := make(chan error, 1)
	go func() { done <- m.Stop(testGuild) }()

	select {
	case err := <-done:
		if err != nil {
			t.Fatalf("Stop: %v", err)
		}
	case <-time.After(2 * time.Second):
		t.Fatal("Stop blocked on an in-flight resolution")
	}
	if !provider.handle(0).hasLeft() {
		t.Fatal("voice handle not released")
	}
}

func TestStopFromPausedState(t *testing.T) {
	m, _, provider, _ := newTestManager(t)

	_, _ = m.Play(testGuild, testChannel, NewRequest("song a", "user-1"))
	provider.handle(0).nextStream(t)
	if err := m.Pause(testGuild); err != nil {
		t.Fatalf("Pause: %v", err)
	}

	if err := m.Stop(testGuild); err != nil {
		t.Fatalf("Stop: %v", err)
	}
	if !provider.handle(0).hasLeft() {
		t.Fatal("voice handle not released")
	}
}

func TestSkipAdvancesQueue(t *testing.T) {
	m, _, provider, _ := newTestManager(t)

	_, _ = m.Play(testGuild, testChannel, NewRequest("song a", "user-1"))
	_, _ = m.Play(testGuild, testChannel, NewRequest("song b", "user-1"))
	h := provider.handle(0)
	first := h.nextStream(t)

	if err := m.Skip(testGuild); err != nil {
		t.Fatalf("Skip: %v", err)
	}
	select {
	case <-first.ctx.Done():
	case <-time.After(2 * time.Second):
		t.Fatal("skip did not cancel the active stream")
	}

	next := h.nextStream(t)
	if next.src.Title() != "song b" {
		t.Fatalf("streaming %q after skip, want song b", next.src.Title())
	}
}

func TestSkipLastTrackGoesIdle(t *testing.T) {
	m, _, provider, _ := newTestManager(t)

	_, _ = m.Play(testGuild, testChannel, NewRequest("song a", "user-1"))
	provider.handle(0).nextStream(t)

	if err := m.Skip(testGuild); err != nil {
		t.Fatalf("Skip: %v", err)
	}

	waitFor(t, func() bool {
		snap, ok := m.Snapshot(testGuild)
		return ok && snap.State == StateIdle && snap.Active == nil
	}, "session did not go idle after skipping the last track")

	// Session survives a skip; the connection stays up.
	if _, ok := m.Get(testGuild); !ok {
		t.Fatal("session destroyed by skip")
	}
}

func TestSkipWithNothingActive(t *testing.T) {
	m, _, _, _ := newTestManager(t)

	if err := m.Summon(testGuild, testChannel); err != nil {
		t.Fatalf("Summon: %v", err)
	}
	if err := m.Skip(testGuild); !errors.Is(err, ErrInvalidState) {
		t.Fatalf("Skip while idle = %v, want ErrInvalidState", err)
	}
}

func TestResolutionFailureAdvancesWithoutIdle(t *testing.T) {
	m, resolver, provider, notifier := newTestManager(t)

	brokenGate := make(chan struct{})
	resolver.fail["broken"] = errBoom
	resolver.block["broken"] = brokenGate
	gate := make(chan struct{})
	resolver.block["working"] = gate

	_, _ = m.Play(testGuild, testChannel, NewRequest("broken", "user-1"))
	_, _ = m.Play(testGuild, testChannel, NewRequest("working", "user-1"))
	close(brokenGate)

	// Once the failed request was reported, the loop is already resolving the
	// next one; it must not have dipped into Idle.
	waitFor(t, func() bool { return resolver.callCount() == 2 }, "next resolution never started")
	snap, _ := m.Snapshot(testGuild)
	if snap.State != StateResolving {
		t.Fatalf("state between requests = %v, want %v", snap.State, StateResolving)
	}
	if notifier.containing("broken") != 1 {
		t.Fatal("expected a failure notification for the broken request")
	}

	close(gate)
	call := provider.handle(0).nextStream(t)
	if call.src.Title() != "working" {
		t.Fatalf("streaming %q, want working", call.src.Title())
	}
}

func TestAllResolutionsFailGoesIdle(t *testing.T) {
	m, resolver, _, notifier := newTestManager(t)

	resolver.fail["bad one"] = errBoom
	resolver.fail["bad two"] = errBoom

	_, _ = m.Play(testGuild, testChannel, NewRequest("bad one", "user-1"))
	_, _ = m.Play(testGuild, testChannel, NewRequest("bad two", "user-1"))

	waitFor(t, func() bool {
		snap, ok := m.Snapshot(testGuild)
		return ok && snap.State == StateIdle && len(snap.Queue) == 0
	}, "session did not settle idle after failures")

	if got := notifier.containing("Could not play"); got != 2 {
		t.Fatalf("failure notifications = %d, want 2", got)
	}
}

func TestStreamInterruptionAdvances(t *testing.T) {
	m, _, provider, notifier := newTestManager(t)

	_, _ = m.Play(testGuild, testChannel, NewRequest("song a", "user-1"))
	_, _ = m.Play(testGuild, testChannel, NewRequest("song b", "user-1"))
	h := provider.handle(0)

	first := h.nextStream(t)
	first.finish <- errBoom

	next := h.nextStream(t)
	if next.src.Title() != "song b" {
		t.Fatalf("streaming %q after interruption, want song b", next.src.Title())
	}
	if notifier.containing("interrupted") != 1 {
		t.Fatal("expected an interruption notification")
	}
}

func TestPlayAfterIdleRestartsLoop(t *testing.T) {
	m, _, provider, _ := newTestManager(t)

	_, _ = m.Play(testGuild, testChannel, NewRequest("song a", "user-1"))
	h := provider.handle(0)
	h.nextStream(t).finish <- nil

	waitFor(t, func() bool {
		snap, ok := m.Snapshot(testGuild)
		return ok && snap.State == StateIdle
	}, "session did not go idle")

	started, err := m.Play(testGuild, "", NewRequest("song b", "user-1"))
	if err != nil {
		t.Fatalf("Play: %v", err)
	}
	if !started {
		t.Fatal("Play on an idle session should start playback")
	}
	if call := h.nextStream(t); call.src.Title() != "song b" {
		t.Fatalf("streaming %q, want song b", call.src.Title())
	}
}

package session

import (
	"context"
	"errors"
	"io"
	"strings"
	"sync"
	"testing"
	"time"
)

// fakeSource is a ready-to-play track with canned metadata.
type fakeSource struct {
	title string
	dur   time.Duration
}

func (f *fakeSource) Title() string           { return f.title }
func (f *fakeSource) Duration() time.Duration { return f.dur }
func (f *fakeSource) OpenPCM() (io.ReadCloser, func(), error) {
	return io.NopCloser(strings.NewReader("")), func() {}, nil
}

// fakeResolver resolves queries instantly unless told to fail or block. Every
// call is recorded.
type fakeResolver struct {
	mu    sync.Mutex
	fail  map[string]error
	block map[string]chan struct{} // resolution waits until the channel closes
	calls []string
}

func newFakeResolver() *fakeResolver {
	return &fakeResolver{
		fail:  make(map[string]error),
		block: make(map[string]chan struct{}),
	}
}

func (r *fakeResolver) Resolve(ctx context.Context, query string) (AudioSource, error) {
	r.mu.Lock()
	r.calls = append(r.calls, query)
	gate := r.block[query]
	failErr := r.fail[query]
	r.mu.Unlock()

	if gate != nil {
		select {
		case <-ctx.Done():
			return nil, ctx.Err()
		case <-gate:
		}
	}
	if failErr != nil {
		return nil, failErr
	}
	return &fakeSource{title: query, dur: 3 * time.Minute}, nil
}

func (r *fakeResolver) callCount() int {
	r.mu.Lock()
	defer r.mu.Unlock()
	return len(r.calls)
}

// streamCall is one in-flight fakeHandle.Stream invocation. The test decides
// when and how it ends via finish.
type streamCall struct {
	src    AudioSource
	ctx    context.Context
	paused func() bool
	finish chan error
}

// fakeHandle hands each Stream call to the test through a channel and blocks
// until the test completes it or the stream context is cancelled.
type fakeHandle struct {
	channelID string
	streams   chan *streamCall

	mu   sync.Mutex
	left bool
}

func newFakeHandle(channelID string) *fakeHandle {
	return &fakeHandle{channelID: channelID, streams: make(chan *streamCall, 8)}
}

func (h *fakeHandle) ChannelID() string { return h.channelID }

func (h *fakeHandle) Stream(ctx context.Context, src AudioSource, paused func() bool) error {
	call := &streamCall{src: src, ctx: ctx, paused: paused, finish: make(chan error, 1)}
	h.streams <- call
	select {
	case <-ctx.Done():
		return ctx.Err()
	case err := <-call.finish:
		return err
	}
}

func (h *fakeHandle) Leave() error {
	h.mu.Lock()
	defer h.mu.Unlock()
	h.left = true
	return nil
}

func (h *fakeHandle) hasLeft() bool {
	h.mu.Lock()
	defer h.mu.Unlock()
	return h.left
}

// nextStream waits for the playback loop to start streaming a track.
func (h *fakeHandle) nextStream(t *testing.T) *streamCall {
	t.Helper()
	select {
	case call := <-h.streams:
		return call
	case <-time.After(2 * time.Second):
		t.Fatal("timed out waiting for a stream to start")
		return nil
	}
}

// expectNoStream asserts that no new stream starts within the window.
func (h *fakeHandle) expectNoStream(t *testing.T, window time.Duration) {
	t.Helper()
	select {
	case call := <-h.streams:
		t.Fatalf("unexpected stream started: %s", call.src.Title())
	case <-time.After(window):
	}
}

// fakeProvider creates one fakeHandle per join and can be told to fail.
type fakeProvider struct {
	mu      sync.Mutex
	joinErr error
	handles []*fakeHandle
	joins   []string
}

func (p *fakeProvider) Join(guildID, channelID string) (VoiceHandle, error) {
	p.mu.Lock()
	defer p.mu.Unlock()
	p.joins = append(p.joins, channelID)
	if p.joinErr != nil {
		return nil, p.joinErr
	}
	h := newFakeHandle(channelID)
	p.handles = append(p.handles, h)
	return h, nil
}

func (p *fakeProvider) handle(i int) *fakeHandle {
	p.mu.Lock()
	defer p.mu.Unlock()
	return p.handles[i]
}

func (p *fakeProvider) joinCount() int {
	p.mu.Lock()
	defer p.mu.Unlock()
	return len(p.joins)
}

// fakeNotifier collects notification messages.
type fakeNotifier struct {
	mu   sync.Mutex
	msgs []string
}

func (n *fakeNotifier) Notify(guildID, message string) {
	n.mu.Lock()
	defer n.mu.Unlock()
	n.msgs = append(n.msgs, message)
}

func (n *fakeNotifier) containing(substr string) int {
	n.mu.Lock()
	defer n.mu.Unlock()
	count := 0
	for _, m := range n.msgs {
		if strings.Contains(m, substr) {
			count++
		}
	}
	return count
}

// waitFor polls until cond holds or the deadline passes.
func waitFor(t *testing.T, cond func() bool, msg string) {
	t.Helper()
	deadline := time.Now().Add(2 * time.Second)
	for time.Now().Before(deadline) {
		if cond() {
			return
		}
		time.Sleep(5 * time.Millisecond)
	}
	t.Fatal(msg)
}

var errBoom = errors.New("boom")

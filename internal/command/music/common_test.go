package music

import (
	"strings"
	"testing"

	"bassline/internal/session"
)

func TestUserErrorMapping(t *testing.T) {
	cases := []struct {
		err  error
		want string
	}{
		{session.ErrNoVoiceChannel, "voice channel"},
		{session.ErrConnectionFailed, "Could not join"},
		{session.ErrResolutionFailed, "Could not find"},
		{session.ErrInvalidState, "current state"},
	}
	for _, tc := range cases {
		got := userError(tc.err)
		if !strings.Contains(got, tc.want) {
			t.Errorf("userError(%v) = %q, want substring %q", tc.err, got, tc.want)
		}
	}
}

func TestFormatQueue(t *testing.T) {
	snap := session.Snapshot{
		State:  session.StatePlaying,
		Active: &session.PlaybackRequest{Query: "current track", RequestedBy: "user-1"},
		Queue: []session.PlaybackRequest{
			{Query: "next track", RequestedBy: "user-2"},
			{Query: "later track", RequestedBy: "user-3"},
		},
	}

	out := formatQueue(snap)
	if !strings.Contains(out, "current track") {
		t.Fatalf("missing active track in %q", out)
	}
	if !strings.Contains(out, "1. next track") || !strings.Contains(out, "2. later track") {
		t.Fatalf("queue order wrong in %q", out)
	}
}

func TestFormatQueuePaused(t *testing.T) {
	snap := session.Snapshot{
		State:  session.StatePaused,
		Active: &session.PlaybackRequest{Query: "current track"},
	}

	out := formatQueue(snap)
	if !strings.Contains(out, "Paused") {
		t.Fatalf("missing paused marker in %q", out)
	}
	if !strings.Contains(out, "queue is empty") {
		t.Fatalf("missing empty queue notice in %q", out)
	}
}

func TestFormatQueueIdle(t *testing.T) {
	out := formatQueue(session.Snapshot{State: session.StateIdle})
	if !strings.Contains(out, "Idle") {
		t.Fatalf("missing idle marker in %q", out)
	}
}

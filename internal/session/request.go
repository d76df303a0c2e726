package session

import "time"

// PlaybackRequest is a user-submitted query waiting for resolution and play.
// Immutable once enqueued.
type PlaybackRequest struct {
	Query       string
	RequestedBy string
	CreatedAt   time.Time
}

// NewRequest stamps a request with the current time.
func NewRequest(query, requestedBy string) PlaybackRequest {
	return PlaybackRequest{
		Query:       query,
		RequestedBy: requestedBy,
		CreatedAt:   time.Now(),
	}
}

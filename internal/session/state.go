package session

// State is the lifecycle position of a guild playback session.
type State int

const (
	StateIdle State = iota
	StateConnecting
	StateResolving
	StatePlaying
	StatePaused
)

func (s State) String() string {
	switch s {
	case StateIdle:
		return "Idle"
	case StateConnecting:
		return "Connecting"
	case StateResolving:
		return "Resolving"
	case StatePlaying:
		return "Playing"
	case StatePaused:
		return "Paused"
	default:
		return "Unknown"
	}
}

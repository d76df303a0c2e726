package session

import "errors"

var (
	// ErrNoVoiceChannel: the requesting user is not in a voice channel.
	ErrNoVoiceChannel = errors.New("you need to be in a voice channel")

	// ErrConnectionFailed: the voice provider could not join the channel.
	ErrConnectionFailed = errors.New("could not join the voice channel")

	// ErrResolutionFailed: the query did not produce a playable source.
	ErrResolutionFailed = errors.New("could not resolve a playable track")

	// ErrInvalidState: the command is not allowed in the current state.
	ErrInvalidState = errors.New("not allowed in the current playback state")

	// ErrSessionClosed: the session was stopped and is being torn down.
	ErrSessionClosed = errors.New("playback session closed")
)

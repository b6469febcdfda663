// Package rtc describes the real-time audio capability a voice room needs
// and provides a websocket relay implementation of it.
package rtc

import (
	"context"
	"errors"
)

// ErrNotJoined is returned by operations that need a joined channel
var ErrNotJoined = errors.New("not joined to a channel")

// EventKind names a remote participant event
type EventKind string

const (
	EventUserPublished   EventKind = "user-published"
	EventUserUnpublished EventKind = "user-unpublished"
	EventUserLeft        EventKind = "user-left"
)

// Event is a remote participant change
type Event struct {
	Kind  EventKind
	UID   uint32
	Media string
}

// JoinParams carries the server-issued channel credentials
type JoinParams struct {
	AppID   string
	Channel string
	Token   string
	UID     uint32
}

// Engine is the real-time media capability
type Engine interface {
	Join(ctx context.Context, params JoinParams) error
	CreateMicrophoneTrack(ctx context.Context) (LocalTrack, error)
	Publish(ctx context.Context, track LocalTrack) error
	Subscribe(ctx context.Context, uid uint32) (RemoteTrack, error)
	// Events is valid after a successful Join and is closed when the channel is left.
	Events() <-chan Event
	Leave(ctx context.Context) error
}

// LocalTrack is the published microphone
type LocalTrack interface {
	SetMuted(muted bool) error
	Muted() bool
	// VolumeLevel is the latest raw input level in [0,1].
	VolumeLevel() float64
	Close() error
}

// RemoteTrack is a subscribed remote audio stream
type RemoteTrack interface {
	UID() uint32
	Play() error
	Stop() error
	Playing() bool
}

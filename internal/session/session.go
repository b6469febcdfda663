package session

import (
	"fmt"
	"time"
)

// Mode selects the tutoring protocol a session speaks
type Mode string

const (
	ModeText  Mode = "text"
	ModeVoice Mode = "voice"
)

// ParseMode validates a user-supplied mode name
func ParseMode(s string) (Mode, error) {
	switch Mode(s) {
	case ModeText, ModeVoice:
		return Mode(s), nil
	default:
		return "", fmt.Errorf("unknown session mode: %q (want text|voice)", s)
	}
}

// Status is the lifecycle state of a tutoring session
type Status string

const (
	StatusIdle       Status = "idle"
	StatusConnecting Status = "connecting"
	StatusActive     Status = "active"
	StatusEnded      Status = "ended"
	StatusError      Status = "error"
)

// transitions lists every allowed edge of the session state machine.
var transitions = map[Status][]Status{
	StatusIdle:       {StatusConnecting},
	StatusConnecting: {StatusActive, StatusError, StatusEnded},
	StatusActive:     {StatusEnded, StatusError},
	StatusEnded:      {StatusConnecting},
	StatusError:      {StatusConnecting, StatusEnded},
}

// CanTransition reports whether a session may move from one status to another
func CanTransition(from, to Status) bool {
	for _, next := range transitions[from] {
		if next == to {
			return true
		}
	}
	return false
}

// AcceptsSends reports whether messages may be sent in this status
func (s Status) AcceptsSends() bool {
	return s == StatusActive
}

// Session represents a server-tracked tutoring conversation
type Session struct {
	ID        string    `json:"id"`
	Mode      Mode      `json:"mode"`
	StartedAt time.Time `json:"started_at"`

	// Set for voice sessions only.
	ChannelName string `json:"channel_name,omitempty"`
}

// VoiceChannel represents the live audio connection tied to a session
type VoiceChannel struct {
	ChannelName string `json:"channel_name"`
	UID         uint32 `json:"uid"`
	Muted       bool   `json:"muted"`
	SpeakerOn   bool   `json:"speaker_on"`
	Joined      bool   `json:"joined"`
}

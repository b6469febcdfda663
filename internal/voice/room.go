// Package voice manages the lifecycle of a real-time voice channel.
package voice

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"slices"
	"sync"
	"time"

	"Kashar/internal/rtc"
	"Kashar/internal/session"
)

const meterInterval = 100 * time.Millisecond

var (
	ErrNotConnected     = errors.New("voice channel not connected")
	ErrAlreadyConnected = errors.New("voice channel already connected")
)

// Room is one joined voice channel: the local microphone, the remote
// speakers and a smoothed input level meter.
type Room struct {
	engine   rtc.Engine
	logger   *slog.Logger
	interval time.Duration

	mu        sync.Mutex
	joined    bool
	channel   string
	uid       uint32
	local     rtc.LocalTrack
	remotes   map[uint32]rtc.RemoteTrack
	muted     bool
	speakerOn bool
	level     float64
	stop      chan struct{}
	wg        sync.WaitGroup
}

// NewRoom creates a room on top of engine
func NewRoom(engine rtc.Engine, logger *slog.Logger) *Room {
	if logger == nil {
		logger = slog.Default()
	}
	return &Room{
		engine:    engine,
		logger:    logger,
		interval:  meterInterval,
		speakerOn: true,
	}
}

// Connect joins the channel, publishes the microphone and starts listening
// for remote speakers. On failure everything acquired is released.
func (r *Room) Connect(ctx context.Context, params rtc.JoinParams) error {
	r.mu.Lock()
	defer r.mu.Unlock()

	if r.joined {
		return ErrAlreadyConnected
	}

	if err := r.engine.Join(ctx, params); err != nil {
		return fmt.Errorf("failed to join voice channel: %w", err)
	}

	track, err := r.engine.CreateMicrophoneTrack(ctx)
	if err != nil {
		r.leaveQuietly(ctx)
		return fmt.Errorf("failed to create microphone track: %w", err)
	}

	if err := r.engine.Publish(ctx, track); err != nil {
		if closeErr := track.Close(); closeErr != nil {
			r.logger.Warn("failed to close microphone track", "error", closeErr)
		}
		r.leaveQuietly(ctx)
		return fmt.Errorf("failed to publish microphone: %w", err)
	}

	r.joined = true
	r.channel = params.Channel
	r.uid = params.UID
	r.local = track
	r.remotes = make(map[uint32]rtc.RemoteTrack)
	r.muted = false
	r.speakerOn = true
	r.level = 0
	r.stop = make(chan struct{})

	r.wg.Add(2)
	go r.meter(track, r.stop)
	go r.watch(r.engine.Events(), r.stop)

	r.logger.Info("voice channel connected", "channel", params.Channel, "uid", params.UID)
	return nil
}

func (r *Room) leaveQuietly(ctx context.Context) {
	if err := r.engine.Leave(ctx); err != nil {
		r.logger.Warn("failed to leave voice channel", "error", err)
	}
}

// Disconnect releases the microphone, stops every remote track and leaves
// the channel. All steps run even when earlier ones fail.
func (r *Room) Disconnect(ctx context.Context) error {
	r.mu.Lock()
	if !r.joined {
		r.mu.Unlock()
		return nil
	}
	r.joined = false
	stop, local, remotes := r.stop, r.local, r.remotes
	r.local = nil
	r.remotes = nil
	r.level = 0
	r.muted = false
	channel := r.channel
	r.channel = ""
	r.mu.Unlock()

	close(stop)
	r.wg.Wait()

	var errs []error
	if err := local.Close(); err != nil {
		errs = append(errs, fmt.Errorf("failed to close microphone track: %w", err))
	}
	for uid, track := range remotes {
		if err := track.Stop(); err != nil {
			errs = append(errs, fmt.Errorf("failed to stop remote track %d: %w", uid, err))
		}
	}
	if err := r.engine.Leave(ctx); err != nil {
		errs = append(errs, fmt.Errorf("failed to leave voice channel: %w", err))
	}

	r.logger.Info("voice channel disconnected", "channel", channel)
	return errors.Join(errs...)
}

// ToggleMute flips the microphone mute state and returns the new state
func (r *Room) ToggleMute() (bool, error) {
	r.mu.Lock()
	defer r.mu.Unlock()

	if !r.joined {
		return false, ErrNotConnected
	}
	muted := !r.muted
	if err := r.local.SetMuted(muted); err != nil {
		return r.muted, fmt.Errorf("failed to toggle mute: %w", err)
	}
	r.muted = muted
	return muted, nil
}

// ToggleSpeaker starts or stops playback of every remote track and returns the new state
func (r *Room) ToggleSpeaker() (bool, error) {
	r.mu.Lock()
	defer r.mu.Unlock()

	if !r.joined {
		return false, ErrNotConnected
	}
	on := !r.speakerOn
	var errs []error
	for uid, track := range r.remotes {
		var err error
		if on {
			err = track.Play()
		} else {
			err = track.Stop()
		}
		if err != nil {
			errs = append(errs, fmt.Errorf("remote track %d: %w", uid, err))
		}
	}
	r.speakerOn = on
	return on, errors.Join(errs...)
}

// Level returns the smoothed microphone level in [0,1]
func (r *Room) Level() float64 {
	r.mu.Lock()
	defer r.mu.Unlock()
	return r.level
}

// RemoteUsers returns the uids of subscribed remote speakers
func (r *Room) RemoteUsers() []uint32 {
	r.mu.Lock()
	defer r.mu.Unlock()

	uids := make([]uint32, 0, len(r.remotes))
	for uid := range r.remotes {
		uids = append(uids, uid)
	}
	slices.Sort(uids)
	return uids
}

// Connected reports whether the channel is joined
func (r *Room) Connected() bool {
	r.mu.Lock()
	defer r.mu.Unlock()
	return r.joined
}

// State returns a snapshot of the channel
func (r *Room) State() session.VoiceChannel {
	r.mu.Lock()
	defer r.mu.Unlock()
	return session.VoiceChannel{
		ChannelName: r.channel,
		UID:         r.uid,
		Muted:       r.muted,
		SpeakerOn:   r.speakerOn,
		Joined:      r.joined,
	}
}

// smooth is the meter's exponential moving average
func smooth(prev, sample float64) float64 {
	return prev*0.7 + sample*0.3
}

func (r *Room) meter(track rtc.LocalTrack, stop <-chan struct{}) {
	defer r.wg.Done()

	ticker := time.NewTicker(r.interval)
	defer ticker.Stop()

	for {
		select {
		case <-stop:
			return
		case <-ticker.C:
			sample := track.VolumeLevel()
			r.mu.Lock()
			r.level = smooth(r.level, sample)
			r.mu.Unlock()
		}
	}
}

func (r *Room) watch(events <-chan rtc.Event, stop <-chan struct{}) {
	defer r.wg.Done()

	for {
		select {
		case <-stop:
			return
		case ev, ok := <-events:
			if !ok {
				return
			}
			switch ev.Kind {
			case rtc.EventUserPublished:
				if ev.Media != "" && ev.Media != "audio" {
					continue
				}
				r.subscribe(ev.UID)
			case rtc.EventUserUnpublished, rtc.EventUserLeft:
				r.drop(ev.UID)
			}
		}
	}
}

func (r *Room) subscribe(uid uint32) {
	track, err := r.engine.Subscribe(context.Background(), uid)
	if err != nil {
		r.logger.Warn("failed to subscribe to remote user", "uid", uid, "error", err)
		return
	}

	r.mu.Lock()
	defer r.mu.Unlock()

	if !r.joined {
		track.Stop()
		return
	}
	// a repeated publish replaces the earlier track
	if prev, ok := r.remotes[uid]; ok && prev != track {
		if err := prev.Stop(); err != nil {
			r.logger.Warn("failed to stop replaced remote audio", "uid", uid, "error", err)
		}
	}
	if r.speakerOn {
		if err := track.Play(); err != nil {
			r.logger.Warn("failed to play remote audio", "uid", uid, "error", err)
		}
	}
	r.remotes[uid] = track
	r.logger.Info("remote user joined voice channel", "uid", uid)
}

func (r *Room) drop(uid uint32) {
	r.mu.Lock()
	defer r.mu.Unlock()

	track, ok := r.remotes[uid]
	if !ok {
		return
	}
	delete(r.remotes, uid)
	if err := track.Stop(); err != nil {
		r.logger.Warn("failed to stop remote audio", "uid", uid, "error", err)
	}
	r.logger.Info("remote user left voice channel", "uid", uid)
}

package rtc

import (
	"context"
	"encoding/binary"
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"log/slog"
	"math"
	"sync"
	"sync/atomic"
	"time"

	"Kashar/internal/audio"

	"github.com/gorilla/websocket"
)

const frameInterval = 20 * time.Millisecond

// control frame types exchanged with the relay
const (
	frameJoin      = "join"
	frameJoined    = "joined"
	framePublish   = "publish"
	frameSubscribe = "subscribe"
	frameLeave     = "leave"
	frameError     = "error"
)

type controlFrame struct {
	Type    string `json:"type"`
	AppID   string `json:"app_id,omitempty"`
	Channel string `json:"channel,omitempty"`
	Token   string `json:"token,omitempty"`
	UID     uint32 `json:"uid,omitempty"`
	Media   string `json:"media,omitempty"`
	Message string `json:"message,omitempty"`
}

// RelayEngine implements Engine against a websocket media relay.
// Control messages are JSON text frames; audio travels as binary frames
// prefixed with the sender uid (big endian uint32).
type RelayEngine struct {
	url    string
	dialer *websocket.Dialer
	mic    audio.Microphone
	sink   audio.Sink
	logger *slog.Logger

	mu      sync.Mutex
	writeMu sync.Mutex
	conn    *websocket.Conn
	uid     uint32
	events  chan Event
	stop    chan struct{}
	done    chan struct{}
	remotes map[uint32]*relayRemoteTrack
	joined  bool
}

// NewRelayEngine creates an engine for the relay at url
func NewRelayEngine(url string, mic audio.Microphone, sink audio.Sink, logger *slog.Logger) (*RelayEngine, error) {
	if logger == nil {
		return nil, fmt.Errorf("logger cannot be nil")
	}
	if url == "" {
		return nil, fmt.Errorf("relay url is required")
	}
	return &RelayEngine{
		url:    url,
		dialer: websocket.DefaultDialer,
		mic:    mic,
		sink:   sink,
		logger: logger,
	}, nil
}

// Join connects to the relay and enters the channel
func (e *RelayEngine) Join(ctx context.Context, params JoinParams) error {
	e.mu.Lock()
	defer e.mu.Unlock()

	if e.joined {
		return fmt.Errorf("already joined channel")
	}

	conn, _, err := e.dialer.DialContext(ctx, e.url, nil)
	if err != nil {
		return fmt.Errorf("failed to connect to relay: %w", err)
	}

	join := controlFrame{
		Type:    frameJoin,
		AppID:   params.AppID,
		Channel: params.Channel,
		Token:   params.Token,
		UID:     params.UID,
	}
	if err := conn.WriteJSON(join); err != nil {
		conn.Close()
		return fmt.Errorf("failed to write join: %w", err)
	}

	if deadline, ok := ctx.Deadline(); ok {
		conn.SetReadDeadline(deadline)
	}
	var ack controlFrame
	if err := conn.ReadJSON(&ack); err != nil {
		conn.Close()
		return fmt.Errorf("failed to read join response: %w", err)
	}
	conn.SetReadDeadline(time.Time{})
	if ack.Type != frameJoined {
		conn.Close()
		if ack.Message != "" {
			return fmt.Errorf("relay rejected join: %s", ack.Message)
		}
		return fmt.Errorf("relay rejected join: unexpected %q frame", ack.Type)
	}

	e.conn = conn
	e.uid = params.UID
	e.events = make(chan Event, 16)
	e.stop = make(chan struct{})
	e.done = make(chan struct{})
	e.remotes = make(map[uint32]*relayRemoteTrack)
	e.joined = true

	go e.readLoop(conn, e.events, e.stop, e.done)

	e.logger.Info("joined relay channel", "channel", params.Channel, "uid", params.UID)
	return nil
}

// Events returns the event stream of the current channel
func (e *RelayEngine) Events() <-chan Event {
	e.mu.Lock()
	defer e.mu.Unlock()
	return e.events
}

// CreateMicrophoneTrack opens the capture source
func (e *RelayEngine) CreateMicrophoneTrack(_ context.Context) (LocalTrack, error) {
	if e.mic == nil {
		return nil, fmt.Errorf("%w: no microphone", audio.ErrMicrophoneDenied)
	}
	src, err := e.mic()
	if err != nil {
		return nil, err
	}
	return &relayLocalTrack{src: src, closed: make(chan struct{})}, nil
}

// Publish announces the track and starts streaming its frames
func (e *RelayEngine) Publish(_ context.Context, track LocalTrack) error {
	local, ok := track.(*relayLocalTrack)
	if !ok {
		return fmt.Errorf("track was not created by this engine")
	}

	e.mu.Lock()
	if !e.joined {
		e.mu.Unlock()
		return ErrNotJoined
	}
	conn, uid, stop := e.conn, e.uid, e.stop
	e.mu.Unlock()

	if err := e.writeControl(controlFrame{Type: framePublish, UID: uid, Media: "audio"}); err != nil {
		return fmt.Errorf("failed to publish track: %w", err)
	}
	go e.pump(local, conn, uid, stop)
	return nil
}

// Subscribe requests a remote user's audio
func (e *RelayEngine) Subscribe(_ context.Context, uid uint32) (RemoteTrack, error) {
	e.mu.Lock()
	if !e.joined {
		e.mu.Unlock()
		return nil, ErrNotJoined
	}
	track, ok := e.remotes[uid]
	if !ok {
		track = &relayRemoteTrack{uid: uid}
		e.remotes[uid] = track
	}
	e.mu.Unlock()

	if err := e.writeControl(controlFrame{Type: frameSubscribe, UID: uid, Media: "audio"}); err != nil {
		return nil, fmt.Errorf("failed to subscribe: %w", err)
	}
	return track, nil
}

// Leave exits the channel and closes the connection
func (e *RelayEngine) Leave(_ context.Context) error {
	e.mu.Lock()
	if !e.joined {
		e.mu.Unlock()
		return nil
	}
	e.joined = false
	conn, stop, done := e.conn, e.stop, e.done
	e.remotes = nil
	e.mu.Unlock()

	close(stop)

	var leaveErr error
	if err := e.writeControl(controlFrame{Type: frameLeave}); err != nil {
		leaveErr = fmt.Errorf("failed to write leave: %w", err)
	}
	e.writeMu.Lock()
	conn.WriteMessage(websocket.CloseMessage, websocket.FormatCloseMessage(websocket.CloseNormalClosure, ""))
	e.writeMu.Unlock()
	conn.Close()
	<-done

	e.logger.Info("left relay channel")
	return leaveErr
}

func (e *RelayEngine) writeControl(frame controlFrame) error {
	e.mu.Lock()
	conn := e.conn
	e.mu.Unlock()
	if conn == nil {
		return ErrNotJoined
	}

	e.writeMu.Lock()
	defer e.writeMu.Unlock()
	return conn.WriteJSON(frame)
}

func (e *RelayEngine) readLoop(conn *websocket.Conn, events chan<- Event, stop <-chan struct{}, done chan<- struct{}) {
	defer close(done)
	defer close(events)

	for {
		kind, data, err := conn.ReadMessage()
		if err != nil {
			select {
			case <-stop:
			default:
				e.logger.Warn("relay connection lost", "error", err)
			}
			return
		}

		switch kind {
		case websocket.BinaryMessage:
			e.deliver(data)
		case websocket.TextMessage:
			ev, ok := e.parseEvent(data)
			if !ok {
				continue
			}
			select {
			case events <- ev:
			case <-stop:
				return
			}
		}
	}
}

func (e *RelayEngine) parseEvent(data []byte) (Event, bool) {
	var frame controlFrame
	if err := json.Unmarshal(data, &frame); err != nil {
		e.logger.Warn("invalid relay frame", "error", err)
		return Event{}, false
	}
	switch EventKind(frame.Type) {
	case EventUserPublished, EventUserUnpublished, EventUserLeft:
		return Event{Kind: EventKind(frame.Type), UID: frame.UID, Media: frame.Media}, true
	}
	if frame.Type == frameError {
		e.logger.Warn("relay error", "message", frame.Message)
	}
	return Event{}, false
}

func (e *RelayEngine) deliver(data []byte) {
	if len(data) < 4 || e.sink == nil {
		return
	}
	uid := binary.BigEndian.Uint32(data[:4])

	e.mu.Lock()
	track := e.remotes[uid]
	e.mu.Unlock()
	if track == nil || !track.Playing() {
		return
	}
	if err := e.sink.WriteFrame(uid, data[4:]); err != nil {
		e.logger.Warn("failed to write remote audio", "uid", uid, "error", err)
	}
}

func (e *RelayEngine) pump(track *relayLocalTrack, conn *websocket.Conn, uid uint32, stop <-chan struct{}) {
	ticker := time.NewTicker(frameInterval)
	defer ticker.Stop()

	for {
		select {
		case <-stop:
			return
		case <-track.closed:
			return
		case <-ticker.C:
		}

		frame, err := track.src.ReadFrame()
		if errors.Is(err, io.EOF) {
			track.setLevel(0)
			e.logger.Debug("microphone source drained")
			return
		}
		if err != nil {
			e.logger.Warn("microphone read failed", "error", err)
			return
		}
		if track.Muted() {
			track.setLevel(0)
			continue
		}
		track.setLevel(pcmLevel(frame))

		msg := make([]byte, 4+len(frame))
		binary.BigEndian.PutUint32(msg, uid)
		copy(msg[4:], frame)

		e.writeMu.Lock()
		err = conn.WriteMessage(websocket.BinaryMessage, msg)
		e.writeMu.Unlock()
		if err != nil {
			select {
			case <-stop:
			default:
				e.logger.Warn("failed to send audio frame", "error", err)
			}
			return
		}
	}
}

// pcmLevel returns the RMS of little-endian 16-bit samples scaled to [0,1]
func pcmLevel(frame []byte) float64 {
	n := len(frame) / 2
	if n == 0 {
		return 0
	}
	var sum float64
	for i := 0; i < n; i++ {
		s := float64(int16(binary.LittleEndian.Uint16(frame[2*i:])))
		sum += s * s
	}
	return math.Min(1, math.Sqrt(sum/float64(n))/math.MaxInt16)
}

type relayLocalTrack struct {
	src       audio.Source
	muted     atomic.Bool
	level     atomic.Uint64
	closeOnce sync.Once
	closed    chan struct{}
}

func (t *relayLocalTrack) SetMuted(muted bool) error {
	t.muted.Store(muted)
	return nil
}

func (t *relayLocalTrack) Muted() bool {
	return t.muted.Load()
}

func (t *relayLocalTrack) VolumeLevel() float64 {
	return math.Float64frombits(t.level.Load())
}

func (t *relayLocalTrack) setLevel(v float64) {
	t.level.Store(math.Float64bits(v))
}

func (t *relayLocalTrack) Close() error {
	var err error
	t.closeOnce.Do(func() {
		close(t.closed)
		err = t.src.Close()
	})
	return err
}

type relayRemoteTrack struct {
	uid     uint32
	playing atomic.Bool
}

func (t *relayRemoteTrack) UID() uint32 {
	return t.uid
}

func (t *relayRemoteTrack) Play() error {
	t.playing.Store(true)
	return nil
}

func (t *relayRemoteTrack) Stop() error {
	t.playing.Store(false)
	return nil
}

func (t *relayRemoteTrack) Playing() bool {
	return t.playing.Load()
}

// Package tutor drives a tutoring session against the backend: session
// lifecycle, the transcript, text and voice messages and the live voice channel.
package tutor

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"strings"
	"sync"
	"time"

	"Kashar/internal/api"
	"Kashar/internal/audio"
	"Kashar/internal/auth"
	"Kashar/internal/backend"
	"Kashar/internal/rtc"
	"Kashar/internal/session"
	"Kashar/internal/voice"
)

var (
	ErrEmptyMessage    = errors.New("message is empty")
	ErrNoActiveSession = errors.New("no active session")
	ErrSessionInFlight = errors.New("a session is already active or starting")
	ErrNotVoiceSession = errors.New("not a voice session")
	ErrVoiceDisabled   = errors.New("voice features disabled for this session")
	ErrNoVoiceEngine   = errors.New("no voice engine configured")
	ErrNoChannelTokens = errors.New("server issued no voice channel credentials")
	ErrStaleResponse   = errors.New("response arrived after the session ended")
)

const (
	errorReplyContent    = "Sorry, I encountered an error. Please try again."
	textWelcome          = "Hello! I'm your AI tutor. I'm here to help you with your studies. What would you like to learn about today?"
	voiceWelcome         = "Hello! I'm Kashar, your AI tutor. You can speak to me directly or type your questions. How can I help you learn today?"
	realtimeVoiceWelcome = "Hello! I'm Kashar, your AI tutor. I can hear you through Agora real-time voice streaming. Start speaking and I'll respond with my voice!"
)

// budget for the server-side steps of EndSession
const teardownTimeout = 10 * time.Second

// VoiceVariant selects which backend flow voice sessions use
type VoiceVariant string

const (
	// VariantTutor records clips and uploads them to /tutor/voice.
	VariantTutor VoiceVariant = "tutor"
	// VariantRealtime streams through a live channel issued by /agora/voice.
	VariantRealtime VoiceVariant = "realtime"
)

// ParseVoiceVariant validates a variant name
func ParseVoiceVariant(s string) (VoiceVariant, error) {
	switch VoiceVariant(s) {
	case VariantTutor, VariantRealtime:
		return VoiceVariant(s), nil
	default:
		return "", fmt.Errorf("unknown voice variant: %q (want tutor|realtime)", s)
	}
}

// Archiver keeps ended sessions
type Archiver interface {
	Save(ctx context.Context, sess session.Session, messages []session.Message) error
}

// Options configures a Client
type Options struct {
	API      *api.Client
	Tokens   auth.TokenSource
	UserID   string
	Variant  VoiceVariant
	Engine   rtc.Engine   // optional, enables the live voice channel
	Player   audio.Player // optional, plays synthesized replies
	Archive  Archiver     // optional
	Notifier Notifier
	Logger   *slog.Logger
}

// Client is one user's tutoring session
type Client struct {
	api      *api.Client
	tokens   auth.TokenSource
	userID   string
	variant  VoiceVariant
	room     *voice.Room
	player   audio.Player
	archive  Archiver
	notifier Notifier
	logger   *slog.Logger

	mu            sync.Mutex
	status        session.Status
	sess          *session.Session
	channel       *backend.RealtimeTokens
	transcript    session.Transcript
	voiceDisabled bool
}

// NewClient creates an idle tutoring client
func NewClient(opts Options) (*Client, error) {
	if opts.API == nil {
		return nil, fmt.Errorf("api client is required")
	}
	if opts.Tokens == nil {
		return nil, fmt.Errorf("token source is required")
	}
	if opts.Variant == "" {
		opts.Variant = VariantTutor
	}
	if _, err := ParseVoiceVariant(string(opts.Variant)); err != nil {
		return nil, err
	}
	if opts.Logger == nil {
		opts.Logger = slog.Default()
	}
	if opts.Notifier == nil {
		opts.Notifier = LogNotifier{Logger: opts.Logger}
	}

	c := &Client{
		api:      opts.API,
		tokens:   opts.Tokens,
		userID:   opts.UserID,
		variant:  opts.Variant,
		player:   opts.Player,
		archive:  opts.Archive,
		notifier: opts.Notifier,
		logger:   opts.Logger,
		status:   session.StatusIdle,
	}
	if opts.Engine != nil {
		c.room = voice.NewRoom(opts.Engine, opts.Logger)
	}
	return c, nil
}

// Status returns the lifecycle state
func (c *Client) Status() session.Status {
	c.mu.Lock()
	defer c.mu.Unlock()
	return c.status
}

// Session returns a copy of the current session
func (c *Client) Session() (session.Session, bool) {
	c.mu.Lock()
	defer c.mu.Unlock()
	if c.sess == nil {
		return session.Session{}, false
	}
	return *c.sess, true
}

// Transcript returns a snapshot of the messages in order
func (c *Client) Transcript() []session.Message {
	return c.transcript.Messages()
}

// MessageCount returns the transcript length without copying it
func (c *Client) MessageCount() int {
	return c.transcript.Len()
}

// VoiceChannel returns the live channel state
func (c *Client) VoiceChannel() session.VoiceChannel {
	if c.room == nil {
		return session.VoiceChannel{}
	}
	return c.room.State()
}

// InputLevel returns the smoothed microphone level of the live channel
func (c *Client) InputLevel() float64 {
	if c.room == nil {
		return 0
	}
	return c.room.Level()
}

// RemoteSpeakers returns the uids heard on the live channel
func (c *Client) RemoteSpeakers() []uint32 {
	if c.room == nil {
		return nil
	}
	return c.room.RemoteUsers()
}

func (c *Client) credentials() (api.Credentials, error) {
	token, err := c.tokens.Token()
	if err != nil {
		return api.Credentials{}, err
	}
	return api.Credentials{Token: token}, nil
}

func (c *Client) fail(err error, fallback string) error {
	c.notifier.Notify(SeverityError, Describe(err, fallback))
	return err
}

func (c *Client) setStatus(to session.Status) {
	if !session.CanTransition(c.status, to) {
		c.logger.Warn("unexpected session transition", "from", c.status, "to", to)
	}
	c.status = to
}

func (c *Client) welcome(mode session.Mode) string {
	switch {
	case mode == session.ModeText:
		return textWelcome
	case c.variant == VariantRealtime:
		return realtimeVoiceWelcome
	default:
		return voiceWelcome
	}
}

// StartSession asks the backend for a new session and seeds the transcript
// with a welcome message. Failures move the client to error; nothing is retried.
func (c *Client) StartSession(ctx context.Context, mode session.Mode) error {
	if _, err := session.ParseMode(string(mode)); err != nil {
		return err
	}

	c.mu.Lock()
	if c.status == session.StatusConnecting || c.status == session.StatusActive {
		c.mu.Unlock()
		return ErrSessionInFlight
	}
	creds, err := c.credentials()
	if err != nil {
		c.mu.Unlock()
		return c.fail(err, "Failed to start tutor session")
	}
	c.setStatus(session.StatusConnecting)
	c.mu.Unlock()

	sess := &session.Session{Mode: mode}
	var channel *backend.RealtimeTokens
	switch {
	case mode == session.ModeText:
		sess.ID, err = c.api.StartTutorSession(ctx, creds, string(mode))
	case c.variant == VariantRealtime:
		var resp *backend.VoiceSessionResponse
		if resp, err = c.api.StartRealtimeSession(ctx, creds); err == nil {
			sess.ID, sess.ChannelName, channel = resp.SessionID, resp.ChannelName, resp.Tokens
		}
	default:
		var resp *backend.VoiceSessionResponse
		if resp, err = c.api.StartVoiceSession(ctx, creds); err == nil {
			sess.ID, sess.ChannelName, channel = resp.SessionID, resp.ChannelName, resp.Tokens
		}
	}

	c.mu.Lock()
	if c.status != session.StatusConnecting {
		c.mu.Unlock()
		// ended while the request was in flight; close what the server opened
		if err == nil {
			endCtx, cancel := context.WithTimeout(context.WithoutCancel(ctx), teardownTimeout)
			defer cancel()
			if endErr := c.endRemote(endCtx, *sess); endErr != nil {
				c.logger.Warn("failed to end abandoned session", "session_id", sess.ID, "error", endErr)
			}
		}
		return ErrStaleResponse
	}
	defer c.mu.Unlock()

	if err != nil {
		c.setStatus(session.StatusError)
		c.logger.Error("failed to start session", "mode", mode, "error", err)
		return c.fail(err, "Failed to start tutor session")
	}

	sess.StartedAt = time.Now()
	c.sess = sess
	c.channel = channel
	c.voiceDisabled = false
	c.transcript.Reset()
	c.transcript.Append(session.NewAssistantMessage(c.welcome(mode), nil))
	c.setStatus(session.StatusActive)

	c.logger.Info("session started", "session_id", sess.ID, "mode", mode, "variant", c.variant)
	return nil
}

// activeSession returns the session when sends are accepted
func (c *Client) activeSession() (session.Session, error) {
	if !c.status.AcceptsSends() || c.sess == nil {
		return session.Session{}, ErrNoActiveSession
	}
	return *c.sess, nil
}

// current reports whether id is still the live session
func (c *Client) current(id string) bool {
	return c.sess != nil && c.sess.ID == id && c.status.AcceptsSends()
}

// SendText appends the message optimistically and then the tutor's reply,
// or an error-flagged reply when the request fails. Sends may overlap;
// replies are appended in arrival order.
func (c *Client) SendText(ctx context.Context, text string) (session.Message, error) {
	text = strings.TrimSpace(text)
	if text == "" {
		return session.Message{}, ErrEmptyMessage
	}

	c.mu.Lock()
	sess, err := c.activeSession()
	if err != nil {
		c.mu.Unlock()
		return session.Message{}, err
	}
	creds, err := c.credentials()
	if err != nil {
		c.mu.Unlock()
		return session.Message{}, c.fail(err, "Failed to send message")
	}
	user := session.NewUserMessage(text)
	c.transcript.Append(user)
	c.mu.Unlock()

	var reply session.Message
	var audioReply string
	if sess.Mode == session.ModeText {
		var resp *backend.TutorReply
		if resp, err = c.api.SendTutorMessage(ctx, creds, sess.ID, text); err == nil {
			reply = session.NewAssistantMessage(resp.Response, resp.Sources)
		}
	} else {
		var resp *backend.VoiceReply
		if resp, err = c.api.ProcessVoiceText(ctx, creds, sess.ID, text); err == nil {
			if resp.Error != "" {
				err = &api.DomainError{Message: resp.Error}
			} else {
				reply = session.NewAssistantMessage(resp.Response, nil)
				if resp.HasAudio {
					audioReply = resp.AudioResponse
				}
			}
		}
	}

	c.mu.Lock()
	if !c.current(sess.ID) {
		c.mu.Unlock()
		c.logger.Debug("dropping late reply", "session_id", sess.ID)
		return session.Message{}, ErrStaleResponse
	}
	if err != nil {
		c.transcript.Resolve(user.ID, session.DeliveryFailed)
		c.transcript.Append(session.NewErrorMessage(errorContent(err)))
		c.mu.Unlock()
		c.logger.Error("failed to send message", "session_id", sess.ID, "error", err)
		return session.Message{}, c.fail(err, "Failed to send message")
	}
	c.transcript.Resolve(user.ID, session.DeliverySent)
	c.transcript.Append(reply)
	c.mu.Unlock()

	c.play(ctx, audioReply)
	return reply, nil
}

// SendVoice uploads a recorded clip and appends the transcription and the
// tutor's reply, then plays the synthesized answer when there is one.
func (c *Client) SendVoice(ctx context.Context, clip audio.Clip) (session.Message, error) {
	if len(clip.Data) == 0 {
		return session.Message{}, ErrEmptyMessage
	}

	c.mu.Lock()
	sess, err := c.activeSession()
	if err == nil && sess.Mode != session.ModeVoice {
		err = ErrNotVoiceSession
	}
	if err == nil && c.voiceDisabled {
		err = ErrVoiceDisabled
	}
	if err != nil {
		c.mu.Unlock()
		return session.Message{}, err
	}
	creds, err := c.credentials()
	if err != nil {
		c.mu.Unlock()
		return session.Message{}, c.fail(err, "Failed to process voice message")
	}
	c.mu.Unlock()

	resp, err := c.api.ProcessVoiceAudio(ctx, creds, sess.ID, clip.UploadName(), clip.Format(), clip.Data)

	c.mu.Lock()
	if !c.current(sess.ID) {
		c.mu.Unlock()
		c.logger.Debug("dropping late voice reply", "session_id", sess.ID)
		return session.Message{}, ErrStaleResponse
	}
	if err == nil && resp.Error != "" {
		err = &api.DomainError{Message: resp.Error}
	}
	if resp != nil && resp.UserMessage != "" {
		user := session.NewUserMessage(resp.UserMessage)
		user.Delivery = session.DeliverySent
		c.transcript.Append(user)
	}
	if err != nil {
		c.transcript.Append(session.NewErrorMessage(errorContent(err)))
		c.mu.Unlock()
		c.logger.Error("failed to process voice message", "session_id", sess.ID, "error", err)
		return session.Message{}, c.fail(err, "Failed to process voice message")
	}
	reply := session.NewAssistantMessage(resp.Response, nil)
	c.transcript.Append(reply)
	c.mu.Unlock()

	if resp.HasAudio {
		c.play(ctx, resp.AudioResponse)
	}
	return reply, nil
}

func errorContent(err error) string {
	var domainErr *api.DomainError
	if errors.As(err, &domainErr) && domainErr.Message != "" {
		return domainErr.Message
	}
	return errorReplyContent
}

func (c *Client) play(ctx context.Context, encoded string) {
	if encoded == "" || c.player == nil {
		return
	}
	data, err := audio.DecodeReply(encoded)
	if err != nil {
		c.logger.Warn("failed to decode reply audio", "error", err)
		return
	}
	if err := c.player.Play(ctx, data, "mp3"); err != nil {
		c.logger.Warn("failed to play reply audio", "error", err)
		c.notifier.Notify(SeverityWarning, "Could not play the tutor's voice reply")
	}
}

// EndSession tears the session down. Local state is cleared first and
// unconditionally; the voice channel is released and the backend is told
// afterwards, and a failure there is reported but changes nothing locally.
func (c *Client) EndSession(ctx context.Context) error {
	c.mu.Lock()
	sess := c.sess
	messages := c.transcript.Messages()
	if sess == nil && c.status != session.StatusConnecting && c.status != session.StatusError {
		c.mu.Unlock()
		return nil
	}
	c.sess = nil
	c.channel = nil
	c.voiceDisabled = false
	c.transcript.Reset()
	c.setStatus(session.StatusEnded)
	c.mu.Unlock()

	// teardown outlives a cancelled caller so the server hears about it
	ctx, cancel := context.WithTimeout(context.WithoutCancel(ctx), teardownTimeout)
	defer cancel()

	var errs []error
	if c.room != nil {
		if err := c.room.Disconnect(ctx); err != nil {
			c.logger.Warn("failed to release voice channel", "error", err)
			errs = append(errs, err)
		}
	}
	if sess == nil {
		return errors.Join(errs...)
	}

	if c.archive != nil {
		if err := c.archive.Save(ctx, *sess, messages); err != nil {
			c.logger.Warn("failed to archive session", "session_id", sess.ID, "error", err)
		}
	}

	if err := c.endRemote(ctx, *sess); err != nil {
		c.logger.Warn("failed to end session on server", "session_id", sess.ID, "error", err)
		c.notifier.Notify(SeverityWarning, Describe(err, "Failed to end session on the server"))
		errs = append(errs, err)
	}

	c.logger.Info("session ended", "session_id", sess.ID, "messages", len(messages))
	return errors.Join(errs...)
}

func (c *Client) endRemote(ctx context.Context, sess session.Session) error {
	creds, err := c.credentials()
	if err != nil {
		return err
	}
	switch {
	case sess.Mode == session.ModeText:
		return c.api.EndTutorSession(ctx, creds, sess.ID)
	case c.variant == VariantRealtime:
		if err := c.api.NotifyUserLeft(ctx, creds, sess.ID, c.userID); err != nil {
			c.logger.Warn("failed to report leaving channel", "session_id", sess.ID, "error", err)
		}
		return c.api.EndRealtimeSession(ctx, creds, sess.ID)
	default:
		return c.api.EndVoiceSession(ctx, creds, sess.ID)
	}
}

// ConnectVoiceChannel joins the live channel with the credentials issued at
// session start. A denied microphone disables voice for the session.
func (c *Client) ConnectVoiceChannel(ctx context.Context) error {
	if c.room == nil {
		return ErrNoVoiceEngine
	}

	c.mu.Lock()
	sess, err := c.activeSession()
	if err == nil && sess.Mode != session.ModeVoice {
		err = ErrNotVoiceSession
	}
	if err == nil && c.voiceDisabled {
		err = ErrVoiceDisabled
	}
	if err == nil && !c.channel.Valid() {
		err = ErrNoChannelTokens
	}
	if err != nil {
		c.mu.Unlock()
		return err
	}
	tokens := *c.channel
	c.mu.Unlock()

	channel := tokens.ChannelName
	if channel == "" {
		channel = sess.ChannelName
	}
	params := rtc.JoinParams{
		AppID:   tokens.AppID,
		Channel: channel,
		Token:   tokens.RTCToken,
		UID:     voice.DeriveUID(tokens.UserUID, c.userID),
	}

	if err := c.room.Connect(ctx, params); err != nil {
		if errors.Is(err, audio.ErrMicrophoneDenied) {
			c.mu.Lock()
			if c.current(sess.ID) {
				c.voiceDisabled = true
			}
			c.mu.Unlock()
			err = fmt.Errorf("%w: %w", ErrVoiceDisabled, err)
		}
		c.logger.Error("failed to connect voice channel", "session_id", sess.ID, "error", err)
		return c.fail(err, "Failed to connect to the voice channel")
	}

	c.mu.Lock()
	live := c.current(sess.ID)
	c.mu.Unlock()
	if !live {
		if err := c.room.Disconnect(ctx); err != nil {
			c.logger.Warn("failed to release voice channel", "session_id", sess.ID, "error", err)
		}
		return ErrStaleResponse
	}

	if c.variant == VariantRealtime {
		if creds, err := c.credentials(); err == nil {
			if err := c.api.NotifyUserJoined(ctx, creds, sess.ID, c.userID); err != nil {
				c.logger.Warn("failed to report joining channel", "session_id", sess.ID, "error", err)
			}
		}
	}
	c.notifier.Notify(SeverityInfo, "Connected to voice channel")
	return nil
}

// DisconnectVoiceChannel leaves the live channel and releases the microphone
func (c *Client) DisconnectVoiceChannel(ctx context.Context) error {
	if c.room == nil {
		return ErrNoVoiceEngine
	}
	if !c.room.Connected() {
		return nil
	}
	err := c.room.Disconnect(ctx)
	if err != nil {
		c.logger.Warn("voice channel released with errors", "error", err)
	}

	c.mu.Lock()
	sess, inactive := c.activeSession()
	c.mu.Unlock()
	if inactive == nil && c.variant == VariantRealtime {
		if creds, credErr := c.credentials(); credErr == nil {
			if notifyErr := c.api.NotifyUserLeft(ctx, creds, sess.ID, c.userID); notifyErr != nil {
				c.logger.Warn("failed to report leaving channel", "session_id", sess.ID, "error", notifyErr)
			}
		}
	}
	return err
}

// ToggleMute flips the microphone mute and returns the new state
func (c *Client) ToggleMute() (bool, error) {
	if c.room == nil {
		return false, ErrNoVoiceEngine
	}
	return c.room.ToggleMute()
}

// ToggleSpeaker flips remote playback and returns the new state
func (c *Client) ToggleSpeaker() (bool, error) {
	if c.room == nil {
		return false, ErrNoVoiceEngine
	}
	return c.room.ToggleSpeaker()
}

// History fetches the server-side record of a session
func (c *Client) History(ctx context.Context, sessionID string) ([]backend.HistoryEntry, error) {
	creds, err := c.credentials()
	if err != nil {
		return nil, err
	}
	return c.api.SessionHistory(ctx, creds, sessionID)
}

// ActiveVoiceSessions lists the user's live voice sessions on the server
func (c *Client) ActiveVoiceSessions(ctx context.Context) ([]backend.ActiveVoiceSession, error) {
	creds, err := c.credentials()
	if err != nil {
		return nil, err
	}
	return c.api.ActiveVoiceSessions(ctx, creds)
}

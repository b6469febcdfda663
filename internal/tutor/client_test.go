package tutor

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"net/http"
	"net/http/httptest"
	"sync"
	"sync/atomic"
	"testing"
	"time"

	"Kashar/internal/api"
	"Kashar/internal/audio"
	"Kashar/internal/auth"
	"Kashar/internal/rtc"
	"Kashar/internal/session"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

type recorder struct {
	mu       sync.Mutex
	messages []string
}

func (r *recorder) Notify(_ Severity, message string) {
	r.mu.Lock()
	defer r.mu.Unlock()
	r.messages = append(r.messages, message)
}

func (r *recorder) last() string {
	r.mu.Lock()
	defer r.mu.Unlock()
	if len(r.messages) == 0 {
		return ""
	}
	return r.messages[len(r.messages)-1]
}

type fakePlayer struct {
	mu     sync.Mutex
	played [][]byte
}

func (p *fakePlayer) Play(_ context.Context, data []byte, _ string) error {
	p.mu.Lock()
	defer p.mu.Unlock()
	p.played = append(p.played, data)
	return nil
}

type fakeArchive struct {
	sess     session.Session
	messages []session.Message
}

func (a *fakeArchive) Save(_ context.Context, sess session.Session, messages []session.Message) error {
	a.sess, a.messages = sess, messages
	return nil
}

// fakeBackend counts requests per path and routes them to handler
type fakeBackend struct {
	mu    sync.Mutex
	calls map[string]int
}

func (b *fakeBackend) count(path string) int {
	b.mu.Lock()
	defer b.mu.Unlock()
	return b.calls[path]
}

func newTutor(t *testing.T, handler http.HandlerFunc, configure ...func(*Options)) (*Client, *fakeBackend, *recorder) {
	t.Helper()
	be := &fakeBackend{calls: make(map[string]int)}
	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		be.mu.Lock()
		be.calls[r.URL.Path]++
		be.mu.Unlock()
		handler(w, r)
	}))
	t.Cleanup(server.Close)

	client, err := api.NewClient(api.Options{BaseURL: server.URL + "/api", RequestTimeout: 2 * time.Second})
	require.NoError(t, err)

	notes := &recorder{}
	opts := Options{
		API:      client,
		Tokens:   auth.StaticToken("tok-1"),
		UserID:   "user-1",
		Notifier: notes,
	}
	for _, fn := range configure {
		fn(&opts)
	}
	tc, err := NewClient(opts)
	require.NoError(t, err)
	return tc, be, notes
}

func textBackend(reply func(w http.ResponseWriter, message string)) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		switch r.URL.Path {
		case "/api/tutor/start-session":
			fmt.Fprint(w, `{"session_id":"s-1"}`)
		case "/api/tutor/message":
			var req struct {
				Message   string `json:"message"`
				SessionID string `json:"session_id"`
			}
			json.NewDecoder(r.Body).Decode(&req)
			reply(w, req.Message)
		case "/api/tutor/end-session/s-1":
			fmt.Fprint(w, `{"message":"Session ended successfully"}`)
		default:
			http.NotFound(w, r)
		}
	}
}

func contents(msgs []session.Message) []string {
	out := make([]string, len(msgs))
	for i, m := range msgs {
		out[i] = string(m.Role) + ":" + m.Content
	}
	return out
}

func TestDerivativeScenario(t *testing.T) {
	tc, _, _ := newTutor(t, textBackend(func(w http.ResponseWriter, message string) {
		fmt.Fprint(w, `{"response":{"response":"A derivative measures rate of change.","session_id":"s-1","sources":["calculus.pdf"]}}`)
	}))
	ctx := context.Background()

	require.NoError(t, tc.StartSession(ctx, session.ModeText))
	assert.Equal(t, session.StatusActive, tc.Status())

	reply, err := tc.SendText(ctx, "What is a derivative?")
	require.NoError(t, err)
	assert.Equal(t, []string{"calculus.pdf"}, reply.Sources)

	msgs := tc.Transcript()
	assert.Equal(t, []string{
		"assistant:" + textWelcome,
		"user:What is a derivative?",
		"assistant:A derivative measures rate of change.",
	}, contents(msgs))
	assert.Equal(t, session.DeliverySent, msgs[1].Delivery)
}

func TestTranscriptGrowsByTwoPerSend(t *testing.T) {
	tc, _, notes := newTutor(t, textBackend(func(w http.ResponseWriter, message string) {
		if message == "fail" {
			w.WriteHeader(http.StatusInternalServerError)
			fmt.Fprint(w, `{"detail":"Failed to process message"}`)
			return
		}
		fmt.Fprintf(w, `{"response":{"response":"re: %s"}}`, message)
	}))
	ctx := context.Background()
	require.NoError(t, tc.StartSession(ctx, session.ModeText))

	_, err := tc.SendText(ctx, "one")
	require.NoError(t, err)
	assert.Len(t, tc.Transcript(), 3)

	_, err = tc.SendText(ctx, "fail")
	var apiErr *api.APIError
	require.ErrorAs(t, err, &apiErr)
	assert.Len(t, tc.Transcript(), 5)
	assert.Equal(t, "Failed to process message", notes.last())

	_, err = tc.SendText(ctx, "two")
	require.NoError(t, err)

	msgs := tc.Transcript()
	require.Len(t, msgs, 7)
	assert.Equal(t, 7, tc.MessageCount())
	assert.Equal(t, session.DeliveryFailed, msgs[3].Delivery)
	assert.True(t, msgs[4].IsError)
	assert.Equal(t, errorReplyContent, msgs[4].Content)
	assert.Equal(t, "assistant:re: two", contents(msgs)[6])
	assert.Equal(t, session.StatusActive, tc.Status())
}

func TestStartThenEndLeavesEmptyTranscript(t *testing.T) {
	tc, be, _ := newTutor(t, textBackend(nil))
	ctx := context.Background()

	require.NoError(t, tc.StartSession(ctx, session.ModeText))
	require.NoError(t, tc.EndSession(ctx))

	assert.Empty(t, tc.Transcript())
	assert.Equal(t, session.StatusEnded, tc.Status())
	_, ok := tc.Session()
	assert.False(t, ok)
	assert.Equal(t, 1, be.count("/api/tutor/end-session/s-1"))
}

func TestBlankInputRejectedWithoutRequest(t *testing.T) {
	tc, be, _ := newTutor(t, textBackend(nil))
	ctx := context.Background()
	require.NoError(t, tc.StartSession(ctx, session.ModeText))

	for _, input := range []string{"", "   ", "\n\t"} {
		_, err := tc.SendText(ctx, input)
		require.ErrorIs(t, err, ErrEmptyMessage)
	}
	assert.Len(t, tc.Transcript(), 1)
	assert.Zero(t, be.count("/api/tutor/message"))
}

func TestSendRequiresActiveSession(t *testing.T) {
	tc, be, _ := newTutor(t, textBackend(nil))

	_, err := tc.SendText(context.Background(), "hello")
	require.ErrorIs(t, err, ErrNoActiveSession)
	assert.Zero(t, be.count("/api/tutor/message"))
	assert.Empty(t, tc.Transcript())
}

func TestEndSessionClearsLocalStateOnServerError(t *testing.T) {
	tc, _, notes := newTutor(t, func(w http.ResponseWriter, r *http.Request) {
		if r.URL.Path == "/api/tutor/start-session" {
			fmt.Fprint(w, `{"session_id":"s-1"}`)
			return
		}
		w.WriteHeader(http.StatusInternalServerError)
	})
	ctx := context.Background()
	require.NoError(t, tc.StartSession(ctx, session.ModeText))

	err := tc.EndSession(ctx)
	require.Error(t, err)
	assert.Empty(t, tc.Transcript())
	assert.Equal(t, session.StatusEnded, tc.Status())
	_, ok := tc.Session()
	assert.False(t, ok)
	assert.Equal(t, "Server error: 500", notes.last())
}

func TestMissingTokenFailsBeforeNetwork(t *testing.T) {
	tc, be, notes := newTutor(t, textBackend(nil), func(o *Options) {
		o.Tokens = auth.StaticToken("")
	})

	err := tc.StartSession(context.Background(), session.ModeText)
	require.ErrorIs(t, err, api.ErrUnauthenticated)
	assert.Equal(t, session.StatusIdle, tc.Status())
	assert.Zero(t, be.count("/api/tutor/start-session"))
	assert.Equal(t, "Please log in first to use the tutor", notes.last())
}

func TestStartFailureMovesToErrorWithoutRetry(t *testing.T) {
	var fail atomic.Bool
	fail.Store(true)
	tc, be, notes := newTutor(t, func(w http.ResponseWriter, r *http.Request) {
		if fail.Load() {
			w.WriteHeader(http.StatusServiceUnavailable)
			fmt.Fprint(w, `{"detail":"Tutor service unavailable"}`)
			return
		}
		fmt.Fprint(w, `{"session_id":"s-2"}`)
	})
	ctx := context.Background()

	require.Error(t, tc.StartSession(ctx, session.ModeText))
	assert.Equal(t, session.StatusError, tc.Status())
	assert.Equal(t, "Tutor service unavailable", notes.last())
	assert.Equal(t, 1, be.count("/api/tutor/start-session"))

	_, err := tc.SendText(ctx, "hello")
	require.ErrorIs(t, err, ErrNoActiveSession)

	fail.Store(false)
	require.NoError(t, tc.StartSession(ctx, session.ModeText))
	assert.Equal(t, session.StatusActive, tc.Status())
	require.ErrorIs(t, tc.StartSession(ctx, session.ModeText), ErrSessionInFlight)
}

func TestLateReplyAfterEndIsDropped(t *testing.T) {
	received := make(chan struct{})
	release := make(chan struct{})
	tc, _, _ := newTutor(t, textBackend(func(w http.ResponseWriter, message string) {
		close(received)
		<-release
		fmt.Fprint(w, `{"response":{"response":"too late"}}`)
	}))
	ctx := context.Background()
	require.NoError(t, tc.StartSession(ctx, session.ModeText))

	errc := make(chan error, 1)
	go func() {
		_, err := tc.SendText(ctx, "slow question")
		errc <- err
	}()

	<-received
	require.NoError(t, tc.EndSession(ctx))
	close(release)

	require.ErrorIs(t, <-errc, ErrStaleResponse)
	assert.Empty(t, tc.Transcript())
	assert.Equal(t, session.StatusEnded, tc.Status())
}

func TestEndSessionReachesServerAfterCancel(t *testing.T) {
	tc, be, _ := newTutor(t, textBackend(nil))
	ctx, cancel := context.WithCancel(context.Background())
	require.NoError(t, tc.StartSession(ctx, session.ModeText))

	cancel()
	require.NoError(t, tc.EndSession(ctx))

	assert.Equal(t, 1, be.count("/api/tutor/end-session/s-1"))
	assert.Equal(t, session.StatusEnded, tc.Status())
}

func TestStartAbandonedByEndIsClosedOnServer(t *testing.T) {
	received := make(chan struct{})
	release := make(chan struct{})
	tc, be, _ := newTutor(t, func(w http.ResponseWriter, r *http.Request) {
		switch r.URL.Path {
		case "/api/tutor/start-session":
			close(received)
			<-release
			fmt.Fprint(w, `{"session_id":"s-1"}`)
		default:
			fmt.Fprint(w, `{}`)
		}
	})
	ctx := context.Background()

	errc := make(chan error, 1)
	go func() { errc <- tc.StartSession(ctx, session.ModeText) }()

	<-received
	require.NoError(t, tc.EndSession(ctx))
	close(release)

	require.ErrorIs(t, <-errc, ErrStaleResponse)
	assert.Equal(t, 1, be.count("/api/tutor/end-session/s-1"))
	assert.Equal(t, session.StatusEnded, tc.Status())
	assert.Empty(t, tc.Transcript())
}

func TestConcurrentSendsAppendInArrivalOrder(t *testing.T) {
	firstReceived := make(chan struct{})
	releaseFirst := make(chan struct{})
	tc, _, _ := newTutor(t, textBackend(func(w http.ResponseWriter, message string) {
		if message == "first" {
			close(firstReceived)
			<-releaseFirst
		}
		fmt.Fprintf(w, `{"response":{"response":"answer to %s"}}`, message)
	}))
	ctx := context.Background()
	require.NoError(t, tc.StartSession(ctx, session.ModeText))

	done := make(chan error, 1)
	go func() {
		_, err := tc.SendText(ctx, "first")
		done <- err
	}()
	<-firstReceived

	_, err := tc.SendText(ctx, "second")
	require.NoError(t, err)
	close(releaseFirst)
	require.NoError(t, <-done)

	assert.Equal(t, []string{
		"assistant:" + textWelcome,
		"user:first",
		"user:second",
		"assistant:answer to second",
		"assistant:answer to first",
	}, contents(tc.Transcript()))
}

func TestEndSessionArchivesTranscript(t *testing.T) {
	archive := &fakeArchive{}
	tc, _, _ := newTutor(t, textBackend(func(w http.ResponseWriter, message string) {
		fmt.Fprint(w, `{"response":{"response":"ok"}}`)
	}), func(o *Options) { o.Archive = archive })
	ctx := context.Background()

	require.NoError(t, tc.StartSession(ctx, session.ModeText))
	_, err := tc.SendText(ctx, "hi")
	require.NoError(t, err)
	require.NoError(t, tc.EndSession(ctx))

	assert.Equal(t, "s-1", archive.sess.ID)
	assert.Len(t, archive.messages, 3)
}

func voiceBackend(t *testing.T, prefix string) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		switch r.URL.Path {
		case prefix + "/start-session":
			fmt.Fprint(w, `{"session_id":"v-1","channel_name":"tutor_session_v-1","agora_tokens":{"app_id":"app","rtc_token":"rtc","user_uid":4242},"status":"active"}`)
		case "/api/tutor/voice/process-audio":
			file, header, err := r.FormFile("audio_file")
			if !assert.NoError(t, err) {
				return
			}
			data, _ := io.ReadAll(file)
			assert.Equal(t, "question.wav", header.Filename)
			assert.Equal(t, "audio/wav", header.Header.Get("Content-Type"))
			assert.Equal(t, "v-1", r.FormValue("session_id"))
			if string(data) == "mumble" {
				fmt.Fprint(w, `{"session_id":"v-1","error":"Could not transcribe audio"}`)
				return
			}
			fmt.Fprint(w, `{"session_id":"v-1","user_message":"What is a derivative?","response":"A derivative measures rate of change.","audio_response":"aGVsbG8=","has_audio":true}`)
		case "/api/tutor/voice/process-text":
			fmt.Fprint(w, `{"session_id":"v-1","user_message":"typed","response":"typed answer"}`)
		default:
			fmt.Fprint(w, `{"message":"ok"}`)
		}
	}
}

func TestSendVoiceAppendsTranscriptionAndPlaysReply(t *testing.T) {
	player := &fakePlayer{}
	tc, _, _ := newTutor(t, voiceBackend(t, "/api/tutor/voice"), func(o *Options) { o.Player = player })
	ctx := context.Background()

	require.NoError(t, tc.StartSession(ctx, session.ModeVoice))
	reply, err := tc.SendVoice(ctx, audio.Clip{Data: []byte("RIFF"), Filename: "question.wav"})
	require.NoError(t, err)
	assert.Equal(t, "A derivative measures rate of change.", reply.Content)

	assert.Equal(t, []string{
		"assistant:" + voiceWelcome,
		"user:What is a derivative?",
		"assistant:A derivative measures rate of change.",
	}, contents(tc.Transcript()))
	require.Len(t, player.played, 1)
	assert.Equal(t, "hello", string(player.played[0]))
}

func TestSendVoiceDomainError(t *testing.T) {
	tc, _, notes := newTutor(t, voiceBackend(t, "/api/tutor/voice"))
	ctx := context.Background()
	require.NoError(t, tc.StartSession(ctx, session.ModeVoice))

	_, err := tc.SendVoice(ctx, audio.Clip{Data: []byte("mumble"), Filename: "question.wav"})
	var domainErr *api.DomainError
	require.ErrorAs(t, err, &domainErr)

	msgs := tc.Transcript()
	require.Len(t, msgs, 2)
	assert.True(t, msgs[1].IsError)
	assert.Equal(t, "Could not transcribe audio", msgs[1].Content)
	assert.Equal(t, "Could not transcribe audio", notes.last())
}

func TestSendVoiceRequiresVoiceSession(t *testing.T) {
	tc, _, _ := newTutor(t, textBackend(nil))
	ctx := context.Background()
	require.NoError(t, tc.StartSession(ctx, session.ModeText))

	_, err := tc.SendVoice(ctx, audio.Clip{Data: []byte("RIFF")})
	require.ErrorIs(t, err, ErrNotVoiceSession)
}

func TestTextInVoiceSessionUsesProcessText(t *testing.T) {
	tc, be, _ := newTutor(t, voiceBackend(t, "/api/tutor/voice"))
	ctx := context.Background()
	require.NoError(t, tc.StartSession(ctx, session.ModeVoice))

	_, err := tc.SendText(ctx, "typed")
	require.NoError(t, err)
	assert.Equal(t, 1, be.count("/api/tutor/voice/process-text"))
	assert.Equal(t, "assistant:typed answer", contents(tc.Transcript())[2])

	require.NoError(t, tc.EndSession(ctx))
	assert.Equal(t, 1, be.count("/api/tutor/voice/end-session/v-1"))
}

type fakeTrack struct {
	muted  atomic.Bool
	closed atomic.Bool
}

func (t *fakeTrack) SetMuted(m bool) error { t.muted.Store(m); return nil }
func (t *fakeTrack) Muted() bool { return t.muted.Load() }
func (t *fakeTrack) VolumeLevel() float64 { return 0.5 }
func (t *fakeTrack) Close() error { t.closed.Store(true); return nil }

type fakeEngine struct {
	micErr error

	// when set, Join closes joinEntered and waits for joinGate
	joinEntered chan struct{}
	joinGate    chan struct{}

	mu     sync.Mutex
	params rtc.JoinParams
	joined bool
	events chan rtc.Event
	track  *fakeTrack
}

func (e *fakeEngine) Join(_ context.Context, p rtc.JoinParams) error {
	if e.joinGate != nil {
		close(e.joinEntered)
		<-e.joinGate
	}
	e.mu.Lock()
	defer e.mu.Unlock()
	e.params, e.joined = p, true
	e.events = make(chan rtc.Event)
	return nil
}

func (e *fakeEngine) CreateMicrophoneTrack(_ context.Context) (rtc.LocalTrack, error) {
	if e.micErr != nil {
		return nil, e.micErr
	}
	e.track = &fakeTrack{}
	return e.track, nil
}

func (e *fakeEngine) Publish(_ context.Context, _ rtc.LocalTrack) error { return nil }

func (e *fakeEngine) Subscribe(_ context.Context, _ uint32) (rtc.RemoteTrack, error) {
	return nil, errors.New("no remote users in this test")
}

func (e *fakeEngine) Events() <-chan rtc.Event {
	e.mu.Lock()
	defer e.mu.Unlock()
	return e.events
}

func (e *fakeEngine) Leave(_ context.Context) error {
	e.mu.Lock()
	defer e.mu.Unlock()
	if e.joined {
		e.joined = false
		close(e.events)
	}
	return nil
}

func (e *fakeEngine) isJoined() bool {
	e.mu.Lock()
	defer e.mu.Unlock()
	return e.joined
}

func TestConnectOutlivedBySessionReleasesChannel(t *testing.T) {
	engine := &fakeEngine{joinEntered: make(chan struct{}), joinGate: make(chan struct{})}
	tc, _, _ := newTutor(t, voiceBackend(t, "/api/agora/voice"), func(o *Options) {
		o.Variant = VariantRealtime
		o.Engine = engine
	})
	ctx := context.Background()
	require.NoError(t, tc.StartSession(ctx, session.ModeVoice))

	connectErr := make(chan error, 1)
	go func() { connectErr <- tc.ConnectVoiceChannel(ctx) }()
	<-engine.joinEntered

	endErr := make(chan error, 1)
	go func() { endErr <- tc.EndSession(ctx) }()
	require.Eventually(t, func() bool { return tc.Status() == session.StatusEnded }, time.Second, 5*time.Millisecond)
	close(engine.joinGate)

	require.ErrorIs(t, <-connectErr, ErrStaleResponse)
	require.NoError(t, <-endErr)
	assert.False(t, engine.isJoined())
	assert.True(t, engine.track.closed.Load())
	assert.False(t, tc.VoiceChannel().Joined)
}

func TestRealtimeVoiceChannelLifecycle(t *testing.T) {
	engine := &fakeEngine{}
	tc, be, _ := newTutor(t, voiceBackend(t, "/api/agora/voice"), func(o *Options) {
		o.Variant = VariantRealtime
		o.Engine = engine
	})
	ctx := context.Background()

	require.NoError(t, tc.StartSession(ctx, session.ModeVoice))
	assert.Equal(t, "assistant:"+realtimeVoiceWelcome, contents(tc.Transcript())[0])

	require.NoError(t, tc.ConnectVoiceChannel(ctx))
	assert.Equal(t, rtc.JoinParams{AppID: "app", Channel: "tutor_session_v-1", Token: "rtc", UID: 4242}, engine.params)
	assert.Equal(t, 1, be.count("/api/agora/voice/user-joined"))
	assert.True(t, tc.VoiceChannel().Joined)

	muted, err := tc.ToggleMute()
	require.NoError(t, err)
	assert.True(t, muted)
	assert.True(t, engine.track.Muted())

	require.NoError(t, tc.DisconnectVoiceChannel(ctx))
	assert.True(t, engine.track.closed.Load())
	assert.False(t, engine.isJoined())
	assert.Empty(t, tc.RemoteSpeakers())
	assert.Equal(t, 1, be.count("/api/agora/voice/user-left"))

	require.NoError(t, tc.ConnectVoiceChannel(ctx))
	require.NoError(t, tc.EndSession(ctx))
	assert.False(t, engine.isJoined())
	assert.Equal(t, 1, be.count("/api/agora/voice/end-session/v-1"))
	assert.Equal(t, 2, be.count("/api/agora/voice/user-left"))
}

func TestMicrophoneDenialDisablesVoiceForSession(t *testing.T) {
	engine := &fakeEngine{micErr: audio.ErrMicrophoneDenied}
	tc, _, notes := newTutor(t, voiceBackend(t, "/api/tutor/voice"), func(o *Options) { o.Engine = engine })
	ctx := context.Background()
	require.NoError(t, tc.StartSession(ctx, session.ModeVoice))

	err := tc.ConnectVoiceChannel(ctx)
	require.ErrorIs(t, err, ErrVoiceDisabled)
	require.ErrorIs(t, err, audio.ErrMicrophoneDenied)
	assert.Equal(t, "Failed to start recording. Please check microphone permissions.", notes.last())
	assert.False(t, engine.isJoined())

	_, err = tc.SendVoice(ctx, audio.Clip{Data: []byte("RIFF")})
	require.ErrorIs(t, err, ErrVoiceDisabled)
	require.ErrorIs(t, tc.ConnectVoiceChannel(ctx), ErrVoiceDisabled)

	require.NoError(t, tc.EndSession(ctx))
	require.NoError(t, tc.StartSession(ctx, session.ModeVoice))
	engine.micErr = nil
	require.NoError(t, tc.ConnectVoiceChannel(ctx))
	require.NoError(t, tc.DisconnectVoiceChannel(ctx))
}

func TestDescribe(t *testing.T) {
	tests := []struct {
		name string
		err  error
		want string
	}{
		{"auth", fmt.Errorf("wrapped: %w", api.ErrUnauthenticated), "Please log in first to use the tutor"},
		{"forbidden", &api.APIError{StatusCode: 403}, "Please log in first to use the tutor"},
		{"network", fmt.Errorf("%w: dial", api.ErrNetwork), "Network error - please check your connection"},
		{"timeout", fmt.Errorf("%w: slow", api.ErrTimeout), "Request timed out - please try again"},
		{"server detail", &api.APIError{StatusCode: 500, Detail: "Quiz generation failed"}, "Quiz generation failed"},
		{"server bare", &api.APIError{StatusCode: 502}, "Server error: 502"},
		{"domain", &api.DomainError{Message: "Could not transcribe audio"}, "Could not transcribe audio"},
		{"mic", audio.ErrMicrophoneDenied, "Failed to start recording. Please check microphone permissions."},
		{"other", errors.New("boom"), "Failed to send message"},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			assert.Equal(t, tt.want, Describe(tt.err, "Failed to send message"))
		})
	}
}

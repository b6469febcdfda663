package api

import (
	"bytes"
	"context"
	"fmt"
	"mime/multipart"
	"net/textproto"
	"net/http"
	"net/url"

	"Kashar/internal/backend"
)

// StartVoiceSession calls POST /tutor/voice/start-session
func (c *Client) StartVoiceSession(ctx context.Context, creds Credentials) (*backend.VoiceSessionResponse, error) {
	return c.startVoice(ctx, creds, "tutor.voice.start_session", "/tutor/voice/start-session")
}

// StartRealtimeSession calls POST /agora/voice/start-session
func (c *Client) StartRealtimeSession(ctx context.Context, creds Credentials) (*backend.VoiceSessionResponse, error) {
	return c.startVoice(ctx, creds, "realtime.start_session", "/agora/voice/start-session")
}

func (c *Client) startVoice(ctx context.Context, creds Credentials, name, path string) (*backend.VoiceSessionResponse, error) {
	var resp backend.VoiceSessionResponse
	if err := c.postJSON(ctx, call{name: name, path: path, creds: &creds}, struct{}{}, &resp); err != nil {
		return nil, err
	}
	if resp.SessionID == "" {
		return nil, fmt.Errorf("%s: response carried no session id", name)
	}
	return &resp, nil
}

// audio/* content types for the clip formats the server accepts
var audioContentTypes = map[string]string{
	"wav": "audio/wav",
	"mp3": "audio/mpeg",
	"m4a": "audio/mp4",
}

// ProcessVoiceAudio uploads a recorded clip to POST /tutor/voice/process-audio.
// format is wav, mp3 or m4a and sets the part's content type.
func (c *Client) ProcessVoiceAudio(ctx context.Context, creds Credentials, sessionID, filename, format string, audio []byte) (*backend.VoiceReply, error) {
	var buf bytes.Buffer
	w := multipart.NewWriter(&buf)
	if err := w.WriteField("session_id", sessionID); err != nil {
		return nil, fmt.Errorf("failed to write session_id field: %w", err)
	}
	contentType, ok := audioContentTypes[format]
	if !ok {
		contentType = "application/octet-stream"
	}
	header := make(textproto.MIMEHeader)
	header.Set("Content-Disposition", fmt.Sprintf(`form-data; name="audio_file"; filename=%q`, filename))
	header.Set("Content-Type", contentType)
	part, err := w.CreatePart(header)
	if err != nil {
		return nil, fmt.Errorf("failed to create audio_file part: %w", err)
	}
	if _, err := part.Write(audio); err != nil {
		return nil, fmt.Errorf("failed to write audio data: %w", err)
	}
	if err := w.Close(); err != nil {
		return nil, fmt.Errorf("failed to close multipart body: %w", err)
	}

	var resp backend.VoiceReply
	err = c.do(ctx, call{
		name:        "tutor.voice.process_audio",
		method:      http.MethodPost,
		path:        "/tutor/voice/process-audio",
		creds:       &creds,
		body:        &buf,
		contentType: w.FormDataContentType(),
		upload:      true,
	}, &resp)
	if err != nil {
		return nil, err
	}
	return &resp, nil
}

// ProcessVoiceText calls POST /tutor/voice/process-text
func (c *Client) ProcessVoiceText(ctx context.Context, creds Credentials, sessionID, message string) (*backend.VoiceReply, error) {
	var resp backend.VoiceReply
	err := c.postJSON(ctx, call{name: "tutor.voice.process_text", path: "/tutor/voice/process-text", creds: &creds},
		backend.VoiceTextRequest{SessionID: sessionID, Message: message}, &resp)
	if err != nil {
		return nil, err
	}
	return &resp, nil
}

// EndVoiceSession calls POST /tutor/voice/end-session/{id}
func (c *Client) EndVoiceSession(ctx context.Context, creds Credentials, sessionID string) error {
	return c.end(ctx, call{
		name:  "tutor.voice.end_session",
		path:  "/tutor/voice/end-session/" + url.PathEscape(sessionID),
		creds: &creds,
	}, struct{}{})
}

// EndRealtimeSession calls POST /agora/voice/end-session/{id}
func (c *Client) EndRealtimeSession(ctx context.Context, creds Credentials, sessionID string) error {
	return c.end(ctx, call{
		name:  "realtime.end_session",
		path:  "/agora/voice/end-session/" + url.PathEscape(sessionID),
		creds: &creds,
	}, struct{}{})
}

// NotifyUserJoined calls POST /agora/voice/user-joined
func (c *Client) NotifyUserJoined(ctx context.Context, creds Credentials, sessionID, userID string) error {
	return c.postJSON(ctx, call{name: "realtime.user_joined", path: "/agora/voice/user-joined", creds: &creds},
		backend.ChannelPresence{SessionID: sessionID, UserID: userID}, nil)
}

// NotifyUserLeft calls POST /agora/voice/user-left
func (c *Client) NotifyUserLeft(ctx context.Context, creds Credentials, sessionID, userID string) error {
	return c.postJSON(ctx, call{name: "realtime.user_left", path: "/agora/voice/user-left", creds: &creds},
		backend.ChannelPresence{SessionID: sessionID, UserID: userID}, nil)
}

// ActiveVoiceSessions calls GET /tutor/voice/active-sessions
func (c *Client) ActiveVoiceSessions(ctx context.Context, creds Credentials) ([]backend.ActiveVoiceSession, error) {
	var resp backend.ActiveVoiceSessionsResponse
	err := c.do(ctx, call{
		name:   "tutor.voice.active_sessions",
		method: http.MethodGet,
		path:   "/tutor/voice/active-sessions",
		creds:  &creds,
	}, &resp)
	if err != nil {
		return nil, err
	}
	return resp.Sessions, nil
}

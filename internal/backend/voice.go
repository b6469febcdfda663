package backend

// RealtimeTokens are the channel credentials issued by the server
type RealtimeTokens struct {
	AppID       string `json:"app_id"`
	RTCToken    string `json:"rtc_token"`
	RTMToken    string `json:"rtm_token,omitempty"`
	ChannelName string `json:"channel_name,omitempty"`
	UserID      string `json:"user_id,omitempty"`
	UserUID     *int64 `json:"user_uid,omitempty"` // uid the rtc token was minted for
	ExpiresAt   int64  `json:"expires_at,omitempty"`
}

// Valid reports whether the tokens carry enough to join a channel
func (t *RealtimeTokens) Valid() bool {
	return t != nil && t.AppID != "" && t.RTCToken != ""
}

// VoiceSessionResponse represents the response from the voice start-session endpoints
type VoiceSessionResponse struct {
	SessionID   string          `json:"session_id"`
	ChannelName string          `json:"channel_name"`
	Tokens      *RealtimeTokens `json:"agora_tokens"`
	Status      string          `json:"status,omitempty"`
	Message     string          `json:"message,omitempty"`
}

// VoiceTextRequest represents the request body for /tutor/voice/process-text
type VoiceTextRequest struct {
	SessionID string `json:"session_id"`
	Message   string `json:"message"`
}

// VoiceReply represents the response from process-audio and process-text.
// Error is set instead of Response when the pipeline could not answer.
type VoiceReply struct {
	SessionID     string `json:"session_id"`
	UserMessage   string `json:"user_message,omitempty"`
	Response      string `json:"response,omitempty"`
	ContextUsed   bool   `json:"context_used,omitempty"`
	AudioResponse string `json:"audio_response,omitempty"` // base64 mp3
	HasAudio      bool   `json:"has_audio,omitempty"`
	Error         string `json:"error,omitempty"`
	Timestamp     string `json:"timestamp,omitempty"`
}

// ChannelPresence is the request body for /agora/voice/user-joined and user-left
type ChannelPresence struct {
	SessionID string `json:"session_id"`
	UserID    string `json:"user_id"`
}

// ActiveVoiceSession describes one live voice session of the user
type ActiveVoiceSession struct {
	SessionID    string `json:"session_id"`
	ChannelName  string `json:"channel_name"`
	CreatedAt    string `json:"created_at"`
	MessageCount int    `json:"message_count"`
}

// ActiveVoiceSessionsResponse represents the response from /tutor/voice/active-sessions
type ActiveVoiceSessionsResponse struct {
	Sessions []ActiveVoiceSession `json:"sessions"`
}

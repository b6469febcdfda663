package backend

// StartSessionResponse represents the response from /tutor/start-session
type StartSessionResponse struct {
	SessionID string `json:"session_id"`
}

// TutorMessageRequest represents the request body for /tutor/message
type TutorMessageRequest struct {
	Message   string `json:"message"`
	SessionID string `json:"session_id,omitempty"`
}

// TutorReply is the tutor's answer to a text message
type TutorReply struct {
	Response  string   `json:"response"`
	SessionID string   `json:"session_id"`
	Sources   []string `json:"sources,omitempty"`
}

// TutorMessageResponse represents the response from /tutor/message
type TutorMessageResponse struct {
	Response TutorReply `json:"response"`
}

// HistoryEntry is one stored exchange of a session
type HistoryEntry struct {
	ID          string `json:"id,omitempty"`
	UserMessage string `json:"user_message"`
	AIResponse  string `json:"ai_response"`
	MessageType string `json:"message_type,omitempty"`
	CreatedAt   string `json:"created_at,omitempty"`
}

// HistoryResponse represents the response from /tutor/session/{id}/history
type HistoryResponse struct {
	History []HistoryEntry `json:"history"`
}

// StatusResponse is the generic {"message": ...} acknowledgement
type StatusResponse struct {
	Message string `json:"message,omitempty"`
	Status  string `json:"status,omitempty"`
}

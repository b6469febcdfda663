package api

import (
	"context"
	"fmt"
	"net/http"
	"net/url"

	"Kashar/internal/backend"
)

// StartTutorSession calls POST /tutor/start-session
func (c *Client) StartTutorSession(ctx context.Context, creds Credentials, sessionType string) (string, error) {
	q := url.Values{"session_type": {sessionType}}
	var resp backend.StartSessionResponse
	err := c.postJSON(ctx, call{
		name:  "tutor.start_session",
		path:  "/tutor/start-session?" + q.Encode(),
		creds: &creds,
	}, nil, &resp)
	if err != nil {
		return "", err
	}
	if resp.SessionID == "" {
		return "", fmt.Errorf("tutor.start_session: response carried no session id")
	}
	return resp.SessionID, nil
}

// SendTutorMessage calls POST /tutor/message
func (c *Client) SendTutorMessage(ctx context.Context, creds Credentials, sessionID, message string) (*backend.TutorReply, error) {
	var resp backend.TutorMessageResponse
	err := c.postJSON(ctx, call{name: "tutor.message", path: "/tutor/message", creds: &creds},
		backend.TutorMessageRequest{Message: message, SessionID: sessionID}, &resp)
	if err != nil {
		return nil, err
	}
	return &resp.Response, nil
}

// EndTutorSession calls POST /tutor/end-session/{id}
func (c *Client) EndTutorSession(ctx context.Context, creds Credentials, sessionID string) error {
	return c.end(ctx, call{
		name:  "tutor.end_session",
		path:  "/tutor/end-session/" + url.PathEscape(sessionID),
		creds: &creds,
	}, nil)
}

// end posts a teardown call and logs the server's acknowledgement
func (c *Client) end(ctx context.Context, cl call, in any) error {
	var ack backend.StatusResponse
	if err := c.postJSON(ctx, cl, in, &ack); err != nil {
		return err
	}
	c.logger.Debug("server acknowledged end", "call", cl.name, "message", ack.Message, "status", ack.Status)
	return nil
}

// SessionHistory calls GET /tutor/session/{id}/history
func (c *Client) SessionHistory(ctx context.Context, creds Credentials, sessionID string) ([]backend.HistoryEntry, error) {
	var resp backend.HistoryResponse
	err := c.do(ctx, call{
		name:   "tutor.history",
		method: http.MethodGet,
		path:   "/tutor/session/" + url.PathEscape(sessionID) + "/history",
		creds:  &creds,
	}, &resp)
	if err != nil {
		return nil, err
	}
	return resp.History, nil
}

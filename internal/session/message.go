package session

import (
	"sync"
	"time"

	"github.com/google/uuid"
)

// Role identifies who authored a transcript entry
type Role string

const (
	RoleUser      Role = "user"
	RoleAssistant Role = "assistant"
)

// Delivery tags an optimistically appended message with its server outcome
type Delivery string

const (
	DeliveryPending Delivery = "pending"
	DeliverySent    Delivery = "sent"
	DeliveryFailed  Delivery = "failed"
)

// Message represents one turn in the transcript
type Message struct {
	ID        string    `json:"id"`
	Role      Role      `json:"role"`
	Content   string    `json:"content"`
	Timestamp time.Time `json:"timestamp"`
	Sources   []string  `json:"sources,omitempty"`
	IsError   bool      `json:"is_error,omitempty"`
	Delivery  Delivery  `json:"delivery"`
}

// NewUserMessage creates a pending user message awaiting the server's answer
func NewUserMessage(content string) Message {
	return Message{
		ID:        uuid.NewString(),
		Role:      RoleUser,
		Content:   content,
		Timestamp: time.Now(),
		Delivery:  DeliveryPending,
	}
}

// NewAssistantMessage creates a confirmed assistant reply
func NewAssistantMessage(content string, sources []string) Message {
	return Message{
		ID:        uuid.NewString(),
		Role:      RoleAssistant,
		Content:   content,
		Timestamp: time.Now(),
		Sources:   sources,
		Delivery:  DeliverySent,
	}
}

// NewErrorMessage creates an assistant message flagged as an error
func NewErrorMessage(content string) Message {
	msg := NewAssistantMessage(content, nil)
	msg.IsError = true
	return msg
}

// Transcript is an append-only, insertion-ordered list of messages.
// Only the Delivery tag of a pending message may change after append.
type Transcript struct {
	mu       sync.RWMutex
	messages []Message
}

// Append adds messages to the end of the transcript
func (t *Transcript) Append(msgs ...Message) {
	t.mu.Lock()
	defer t.mu.Unlock()
	for _, msg := range msgs {
		if msg.Sources != nil {
			msg.Sources = append([]string(nil), msg.Sources...)
		}
		t.messages = append(t.messages, msg)
	}
}

// Resolve settles the delivery tag of a pending message.
// It returns false when the message is unknown or already settled.
func (t *Transcript) Resolve(id string, d Delivery) bool {
	t.mu.Lock()
	defer t.mu.Unlock()
	for i := range t.messages {
		if t.messages[i].ID != id {
			continue
		}
		if t.messages[i].Delivery != DeliveryPending {
			return false
		}
		t.messages[i].Delivery = d
		return true
	}
	return false
}

// Messages returns a copy of the transcript
func (t *Transcript) Messages() []Message {
	t.mu.RLock()
	defer t.mu.RUnlock()
	out := make([]Message, len(t.messages))
	for i, msg := range t.messages {
		if msg.Sources != nil {
			msg.Sources = append([]string(nil), msg.Sources...)
		}
		out[i] = msg
	}
	return out
}

// Len returns the number of messages
func (t *Transcript) Len() int {
	t.mu.RLock()
	defer t.mu.RUnlock()
	return len(t.messages)
}

// Reset drops every message
func (t *Transcript) Reset() {
	t.mu.Lock()
	defer t.mu.Unlock()
	t.messages = nil
}

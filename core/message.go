package core

import (
	"time"

	"github.com/google/uuid"
)

// MessageType categorizes the intent of a Message.
type MessageType string

const (
	// MessageTypeRequest asks the receiver to perform work and reply.
	MessageTypeRequest MessageType = "request"
	// MessageTypeResponse answers a previously sent request.
	MessageTypeResponse MessageType = "response"
	// MessageTypeNotification is informational; no response is expected.
	MessageTypeNotification MessageType = "notification"
	// MessageTypeStatus carries a state update about the sender.
	MessageTypeStatus MessageType = "status"
	// MessageTypeError reports a failure related to an earlier message.
	MessageTypeError MessageType = "error"
)

// Message is the unit of communication between agents. After construction it
// should be treated as immutable; ownership passes to the receiver on
// delivery. It captures:
//
//   - Correlation (ID, CorrelationID)
//   - Addressing (SenderID, ReceiverID; empty ReceiverID means broadcast)
//   - Payload (Content plus a string-keyed Context map)
//   - Timing (CreatedAt, per-call Timeout override)
//
// A response's CorrelationID equals the originating request's ID; the bus
// uses this to match replies against outstanding futures and to discard late
// results after a timeout.
type Message struct {
	ID            string         `json:"id"`
	Type          MessageType    `json:"type"`
	SenderID      string         `json:"sender_id"`
	ReceiverID    string         `json:"receiver_id,omitempty"`
	Content       string         `json:"content"`
	Context       map[string]any `json:"context,omitempty"`
	CorrelationID string         `json:"correlation_id,omitempty"`
	CreatedAt     time.Time      `json:"created_at"`
	Timeout       time.Duration  `json:"timeout,omitempty"`
}

// NewMessage creates a message with a generated id and UTC timestamp.
func NewMessage(msgType MessageType, senderID, receiverID, content string) Message {
	return Message{
		ID:         NewID(),
		Type:       msgType,
		SenderID:   senderID,
		ReceiverID: receiverID,
		Content:    content,
		CreatedAt:  time.Now().UTC(),
	}
}

// NewRequest is shorthand for a request message.
func NewRequest(senderID, receiverID, content string) Message {
	return NewMessage(MessageTypeRequest, senderID, receiverID, content)
}

// NewNotification is shorthand for a broadcastable notification. ReceiverID
// is left empty; the bus fans it out to every registered agent except the
// sender.
func NewNotification(senderID, content string) Message {
	return NewMessage(MessageTypeNotification, senderID, "", content)
}

// WithContext returns a copy of the message carrying ctx as its context map.
func (m Message) WithContext(ctx map[string]any) Message {
	m.Context = ctx
	return m
}

// WithTimeout returns a copy of the message with a per-call timeout override.
func (m Message) WithTimeout(d time.Duration) Message {
	m.Timeout = d
	return m
}

// NewResponse builds the correlated reply to this message, swapping sender
// and receiver and echoing the request id as CorrelationID.
func (m Message) NewResponse(content string, context map[string]any) Message {
	return Message{
		ID:            NewID(),
		Type:          MessageTypeResponse,
		SenderID:      m.ReceiverID,
		ReceiverID:    m.SenderID,
		Content:       content,
		Context:       context,
		CorrelationID: m.ID,
		CreatedAt:     time.Now().UTC(),
	}
}

// NewErrorResponse builds a correlated error reply.
func (m Message) NewErrorResponse(content string, context map[string]any) Message {
	resp := m.NewResponse(content, context)
	resp.Type = MessageTypeError
	return resp
}

// Response is the result an agent produces for a processed query. Err is
// non-nil when the agent reports a business failure; the bus passes it
// through verbatim as an ApplicationError and never retries it.
type Response struct {
	Content  string         `json:"content"`
	Metadata map[string]any `json:"metadata,omitempty"`
	Err      error          `json:"-"`
}

// NewID generates a unique identifier for messages, workflows and subtasks.
func NewID() string { return uuid.NewString() }

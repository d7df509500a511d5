package websocket

import (
	"encoding/json"
	"time"
)

type MessageType string

const (
	// TypeInvalidate carries a domain.ChangeEvent. Receivers refetch the
	// pages of the named collection.
	TypeInvalidate MessageType = "invalidate"
	TypeAck        MessageType = "ack"
	TypePing       MessageType = "ping"
	TypePong       MessageType = "pong"
	TypeError      MessageType = "error"
)

type Message struct {
	Type      MessageType     `json:"type"`
	Timestamp time.Time       `json:"timestamp"`
	Payload   json.RawMessage `json:"payload,omitempty"`
}

type AckPayload struct {
	MessageID string `json:"message_id"`
	Success   bool   `json:"success"`
	Error     string `json:"error,omitempty"`
}

type ErrorPayload struct {
	Message string `json:"message"`
}

func NewMessage(msgType MessageType, payload interface{}) (*Message, error) {
	var payloadBytes json.RawMessage
	if payload != nil {
		bytes, err := json.Marshal(payload)
		if err != nil {
			return nil, err
		}
		payloadBytes = bytes
	}

	return &Message{
		Type:      msgType,
		Timestamp: time.Now(),
		Payload:   payloadBytes,
	}, nil
}

func (m *Message) UnmarshalPayload(v interface{}) error {
	if m.Payload == nil {
		return nil
	}
	return json.Unmarshal(m.Payload, v)
}

// SplitFrame returns the messages of one text frame. The write pump batches
// queued messages into a single frame separated by newlines.
func SplitFrame(frame []byte) ([]*Message, error) {
	var msgs []*Message
	for _, line := range splitLines(frame) {
		var msg Message
		if err := json.Unmarshal(line, &msg); err != nil {
			return msgs, err
		}
		msgs = append(msgs, &msg)
	}
	return msgs, nil
}

func splitLines(frame []byte) [][]byte {
	var lines [][]byte
	start := 0
	for i, b := range frame {
		if b == '\n' {
			if i > start {
				lines = append(lines, frame[start:i])
			}
			start = i + 1
		}
	}
	if start < len(frame) {
		lines = append(lines, frame[start:])
	}
	return lines
}

package ws

import "encoding/json"

// MessageType constants for the notification channel.
const (
	// Client -> Server
	TypePing = "ping"

	// Server -> Client
	TypeProfileUpdated     = "profile_updated"
	TypeRegistryUpdated    = "registry_updated"
	TypeQuizUpdated        = "quiz_updated"
	TypeLeaderboardUpdated = "leaderboard_updated"
	TypeSignedOut          = "signed_out"
	TypePong               = "pong"
	TypeError              = "error"
)

// Message wraps all WebSocket payloads with type and optional request ID.
type Message struct {
	Type      string          `json:"type"`
	Payload   json.RawMessage `json:"payload,omitempty"`
	RequestID string          `json:"request_id,omitempty"`
}

type ErrorPayload struct {
	Code    string `json:"code"`
	Message string `json:"message"`
}

// NewMessage encodes payload into a typed message.
func NewMessage(msgType string, payload interface{}) (Message, error) {
	if payload == nil {
		return Message{Type: msgType}, nil
	}
	raw, err := json.Marshal(payload)
	if err != nil {
		return Message{}, err
	}
	return Message{Type: msgType, Payload: raw}, nil
}

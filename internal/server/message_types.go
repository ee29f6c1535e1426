package server

// MessageType represents a WebSocket message type with type safety
type MessageType string

// WebSocket message type constants
const (
	// Client to server messages
	MessageTypeInit    MessageType = "init"
	MessageTypeTurn    MessageType = "turn"
	MessageTypeGiveUp  MessageType = "give_up"
	MessageTypeRestart MessageType = "restart"
	MessageTypeState   MessageType = "state"

	// Server to client messages
	MessageTypeGameStarted    MessageType = "game_started"
	MessageTypeEvents         MessageType = "events"
	MessageTypeGameState      MessageType = "game_state"
	MessageTypeError          MessageType = "error"
	MessageTypeSessionExpired MessageType = "session_expired"
)

// String returns the string representation of the message type
func (mt MessageType) String() string {
	return string(mt)
}

// Error codes carried in ErrorData.Code.
const (
	ErrorCodeInvalidConfiguration = "invalid_configuration"
	ErrorCodeInvalidMove          = "invalid_move"
	ErrorCodeGameFinished         = "game_finished"
	ErrorCodeNoGame               = "no_game"
	ErrorCodeInvalidMessage       = "invalid_message"
	ErrorCodeUnknownMessageType   = "unknown_message_type"
	ErrorCodeInternal             = "internal_error"
)

package server

import (
	"encoding/json"
	"time"

	"github.com/lox/pebbles/internal/game"
)

// Message represents the base WebSocket message structure
type Message struct {
	Type      MessageType     `json:"type"`
	Data      json.RawMessage `json:"data,omitempty"`
	Timestamp time.Time       `json:"timestamp"`
	RequestID string          `json:"requestId,omitempty"`
}

// NewMessage creates a new message with the current timestamp
func NewMessage(messageType MessageType, data any) (*Message, error) {
	msg := &Message{
		Type:      messageType,
		Timestamp: time.Now(),
	}
	if data == nil {
		return msg, nil
	}

	dataBytes, err := json.Marshal(data)
	if err != nil {
		return nil, err
	}
	msg.Data = dataBytes
	return msg, nil
}

// Client → Server Messages

// GameParams starts or restarts a game. Nil fields fall back to the server's
// defaults. A nil RandomSequence selects a live source; a present but empty
// one is rejected.
type GameParams struct {
	Difficulty        string   `json:"difficulty,omitempty"`
	PebblesCount      *uint32  `json:"pebblesCount,omitempty"`
	MaxPebblesPerTurn *uint32  `json:"maxPebblesPerTurn,omitempty"`
	RandomSequence    []uint32 `json:"randomSequence"`
}

type TurnData struct {
	Count uint32 `json:"count"`
}

// Server → Client Messages

type ErrorData struct {
	Code    string `json:"code"`
	Message string `json:"message"`
}

type EventData struct {
	Type      string `json:"type"`
	Player    string `json:"player"`
	Count     uint32 `json:"count"`
	Forfeited bool   `json:"forfeited,omitempty"`
}

type StateData struct {
	PebblesCount      uint32 `json:"pebblesCount"`
	MaxPebblesPerTurn uint32 `json:"maxPebblesPerTurn"`
	PebblesRemaining  uint32 `json:"pebblesRemaining"`
	Difficulty        string `json:"difficulty"`
	FirstPlayer       string `json:"firstPlayer"`
	Winner            string `json:"winner,omitempty"`
	Forfeited         bool   `json:"forfeited,omitempty"`
}

// Finished reports whether the snapshot has a winner.
func (s StateData) Finished() bool {
	return s.Winner != ""
}

// EventsData is the reply to init, restart, turn and give_up.
type EventsData struct {
	SessionID string      `json:"sessionId,omitempty"`
	Events    []EventData `json:"events"`
	State     StateData   `json:"state"`
}

type SessionExpiredData struct {
	SessionID   string `json:"sessionId"`
	IdleSeconds int    `json:"idleSeconds"`
}

// Helper functions to convert between game types and message types

func EventDataFromGame(e game.Event) EventData {
	return EventData{
		Type:      e.Type.String(),
		Player:    e.Player.String(),
		Count:     e.Count,
		Forfeited: e.Forfeited,
	}
}

func EventsFromGame(events []game.Event) []EventData {
	out := make([]EventData, len(events))
	for i, e := range events {
		out[i] = EventDataFromGame(e)
	}
	return out
}

func StateDataFromGame(s game.GameState) StateData {
	data := StateData{
		PebblesCount:      s.PebblesCount,
		MaxPebblesPerTurn: s.MaxPebblesPerTurn,
		PebblesRemaining:  s.PebblesRemaining,
		Difficulty:        s.Difficulty.String(),
		FirstPlayer:       s.FirstPlayer.String(),
		Forfeited:         s.Forfeited,
	}
	if s.Winner != nil {
		data.Winner = s.Winner.String()
	}
	return data
}

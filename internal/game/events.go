package game

import "fmt"

// EventType represents a game event type with type safety
type EventType string

const (
	// EventTypeCounterTurn is emitted after a move that leaves pebbles.
	EventTypeCounterTurn EventType = "counter_turn"
	// EventTypeWon is emitted when a side wins.
	EventTypeWon EventType = "won"
)

// String returns the string representation of the event type
func (et EventType) String() string {
	return string(et)
}

// Event is the externally observable outcome of one resolved turn.
type Event struct {
	Type   EventType
	Player Player
	// Count is the number of pebbles taken. Zero for a win by forfeit.
	Count uint32
	// Forfeited marks a win conceded by the opponent.
	Forfeited bool
}

// CounterTurn builds the event for a move that did not end the game.
func CounterTurn(p Player, count uint32) Event {
	return Event{Type: EventTypeCounterTurn, Player: p, Count: count}
}

// Won builds the event for a game won by p.
func Won(p Player, count uint32) Event {
	return Event{Type: EventTypeWon, Player: p, Count: count}
}

// WonByForfeit builds the event for a game p won because the other side gave up.
func WonByForfeit(p Player) Event {
	return Event{Type: EventTypeWon, Player: p, Forfeited: true}
}

func (e Event) String() string {
	switch e.Type {
	case EventTypeCounterTurn:
		return fmt.Sprintf("%s took %d", e.Player, e.Count)
	case EventTypeWon:
		if e.Forfeited {
			return fmt.Sprintf("%s won by forfeit", e.Player)
		}
		return fmt.Sprintf("%s took %d and won", e.Player, e.Count)
	default:
		return string(e.Type)
	}
}

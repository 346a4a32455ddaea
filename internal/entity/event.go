package entity

type EventType string

const (
	EventJoined       EventType = "joined"
	EventGameStart    EventType = "game_start"
	EventStateUpdate  EventType = "state_update"
	EventOpponentLeft EventType = "opponent_left"
	EventError        EventType = "error"
)

// Event is an outbound message. View is set for every type except EventError,
// which carries Message instead.
type Event struct {
	Type    EventType
	View    *View
	Message string
}

func NewViewEvent(eventType EventType, view View) Event {
	return Event{Type: eventType, View: &view}
}

func NewErrorEvent(err error) Event {
	return Event{Type: EventError, Message: err.Error()}
}

// Conn is a seat's connection handle.
type Conn interface {
	Send(event Event) error
}

// Delivery pairs an event with the seat it is addressed to.
type Delivery struct {
	PlayerID string
	Conn     Conn
	Event    Event
}

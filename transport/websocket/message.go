package websocket

import (
	"encoding/json"
	"fmt"

	"github.com/rocketscienceinc/tictactoe-sessions/internal/apperror"
	"github.com/rocketscienceinc/tictactoe-sessions/internal/entity"
)

const (
	commandMakeMove       = "make_move"
	commandRequestNewGame = "request_new_game"
)

// Command is a parsed inbound message. The set is closed: MakeMove and
// RequestNewGame.
type Command interface {
	command()
}

type MakeMove struct {
	Index int
}

type RequestNewGame struct{}

func (MakeMove) command()       {}
func (RequestNewGame) command() {}

type inboundMessage struct {
	Type    string          `json:"type"`
	Payload json.RawMessage `json:"payload,omitempty"`
}

type makeMovePayload struct {
	Index *int `json:"index"`
}

type outboundMessage struct {
	Type      entity.EventType `json:"type"`
	SessionID string           `json:"sessionId,omitempty"`
	PlayerID  string           `json:"playerId,omitempty"`
	Payload   any              `json:"payload"`
}

type errorPayload struct {
	Message string `json:"message"`
}

// ParseCommand - decodes one text frame into a Command.
func ParseCommand(data []byte) (Command, error) {
	var message inboundMessage
	if err := json.Unmarshal(data, &message); err != nil {
		return nil, fmt.Errorf("%w: %v", apperror.ErrMalformedMessage, err)
	}

	switch message.Type {
	case commandMakeMove:
		var payload makeMovePayload
		if len(message.Payload) == 0 {
			return nil, fmt.Errorf("%w: payload is required", apperror.ErrMalformedMessage)
		}

		if err := json.Unmarshal(message.Payload, &payload); err != nil {
			return nil, fmt.Errorf("%w: %v", apperror.ErrMalformedMessage, err)
		}

		if payload.Index == nil {
			return nil, fmt.Errorf("%w: index is required", apperror.ErrMalformedMessage)
		}

		return MakeMove{Index: *payload.Index}, nil
	case commandRequestNewGame:
		return RequestNewGame{}, nil
	case "":
		return nil, fmt.Errorf("%w: type is required", apperror.ErrMalformedMessage)
	default:
		return nil, fmt.Errorf("%w: %s", apperror.ErrUnknownCommand, message.Type)
	}
}

func encodeEvent(sessionID, playerID string, event entity.Event) ([]byte, error) {
	message := outboundMessage{
		Type:      event.Type,
		SessionID: sessionID,
		PlayerID:  playerID,
	}

	if event.Type == entity.EventError {
		message.Payload = errorPayload{Message: event.Message}
	} else {
		message.Payload = event.View
	}

	data, err := json.Marshal(message)
	if err != nil {
		return nil, fmt.Errorf("failed to marshal event: %w", err)
	}

	return data, nil
}

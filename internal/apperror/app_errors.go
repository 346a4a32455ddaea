package apperror

import "errors"

var (
	ErrSessionNotFound  = errors.New("session not found")
	ErrSessionFull      = errors.New("session is full")
	ErrIDSpaceExhausted = errors.New("could not mint a unique session id")
	ErrNotSeated        = errors.New("player is not seated in this session")
	ErrMatchNotActive   = errors.New("game is not active")
	ErrMatchInProgress  = errors.New("game is still in progress")
	ErrNotYourTurn      = errors.New("it's not your turn")
	ErrCellOccupied     = errors.New("cell is already occupied")
	ErrIndexOutOfRange  = errors.New("cell index is out of range")
	ErrUnknownCommand   = errors.New("unknown message type")
	ErrMalformedMessage = errors.New("invalid message format")
	ErrDeliveryFailure  = errors.New("failed to deliver message")
)

package websocket

import (
	"fmt"
	"sync"
	"time"

	"github.com/gorilla/websocket"

	"github.com/rocketscienceinc/tictactoe-sessions/internal/apperror"
	"github.com/rocketscienceinc/tictactoe-sessions/internal/entity"
)

// client is one socket. Send only queues; writePump owns every write to conn.
type client struct {
	conn *websocket.Conn

	sessionID string
	playerID  string

	send      chan []byte
	done      chan struct{}
	closeOnce sync.Once
}

func newClient(conn *websocket.Conn, sendBuffer int) *client {
	return &client{
		conn: conn,
		send: make(chan []byte, sendBuffer),
		done: make(chan struct{}),
	}
}

// Send - queues event for the writer. It never blocks; a full queue is a failed delivery.
func (that *client) Send(event entity.Event) error {
	data, err := encodeEvent(that.sessionID, that.playerID, event)
	if err != nil {
		return err
	}

	select {
	case <-that.done:
		return fmt.Errorf("%w: connection closed", apperror.ErrDeliveryFailure)
	default:
	}

	select {
	case that.send <- data:
		return nil
	default:
		return fmt.Errorf("%w: send buffer full", apperror.ErrDeliveryFailure)
	}
}

// Close - asks the writer to flush what is queued and close the socket.
func (that *client) Close() {
	that.closeOnce.Do(func() {
		close(that.done)
	})
}

func (that *client) writePump(writeTimeout, pingPeriod time.Duration) {
	ticker := time.NewTicker(pingPeriod)
	defer func() {
		ticker.Stop()
		_ = that.conn.Close()
	}()

	for {
		select {
		case data := <-that.send:
			if err := that.write(websocket.TextMessage, data, writeTimeout); err != nil {
				return
			}
		case <-ticker.C:
			if err := that.write(websocket.PingMessage, nil, writeTimeout); err != nil {
				return
			}
		case <-that.done:
			that.flush(writeTimeout)
			_ = that.write(websocket.CloseMessage,
				websocket.FormatCloseMessage(websocket.CloseNormalClosure, ""), writeTimeout)

			return
		}
	}
}

func (that *client) flush(writeTimeout time.Duration) {
	for {
		select {
		case data := <-that.send:
			if err := that.write(websocket.TextMessage, data, writeTimeout); err != nil {
				return
			}
		default:
			return
		}
	}
}

func (that *client) write(messageType int, data []byte, writeTimeout time.Duration) error {
	if err := that.conn.SetWriteDeadline(time.Now().Add(writeTimeout)); err != nil {
		return err
	}

	return that.conn.WriteMessage(messageType, data)
}

package broadcast

import (
	"errors"
	"io"
	"log/slog"
	"testing"

	"github.com/stretchr/testify/assert"

	"github.com/rocketscienceinc/tictactoe-sessions/internal/entity"
)

var errGone = errors.New("gone")

type conn struct {
	err  error
	sent []entity.Event
}

func (that *conn) Send(event entity.Event) error {
	if that.err != nil {
		return that.err
	}

	that.sent = append(that.sent, event)

	return nil
}

type counter struct {
	failures int
}

func (that *counter) DeliveryFailed() {
	that.failures++
}

func TestBroadcaster_Deliver(t *testing.T) {
	// Given: one healthy seat, one broken seat and one without a connection
	healthy, broken := &conn{}, &conn{err: errGone}
	failures := &counter{}
	broadcaster := New(slog.New(slog.NewJSONHandler(io.Discard, nil)), failures)

	event := entity.NewViewEvent(entity.EventStateUpdate, entity.View{})

	// When: an event goes to all of them
	failed := broadcaster.Deliver([]entity.Delivery{
		{PlayerID: "broken", Conn: broken, Event: event},
		{PlayerID: "healthy", Conn: healthy, Event: event},
		{PlayerID: "detached", Event: event},
	})

	// Then: the broken seat does not stop the healthy one
	assert.Equal(t, 1, failed)
	assert.Equal(t, 1, failures.failures)
	assert.Equal(t, []entity.Event{event}, healthy.sent)
}

func TestBroadcaster_Deliver_Nothing(t *testing.T) {
	broadcaster := New(slog.New(slog.NewJSONHandler(io.Discard, nil)), &counter{})

	assert.Zero(t, broadcaster.Deliver(nil))
}

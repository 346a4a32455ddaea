package websocket

import (
	"encoding/json"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/rocketscienceinc/tictactoe-sessions/internal/apperror"
	"github.com/rocketscienceinc/tictactoe-sessions/internal/entity"
)

func TestParseCommand(t *testing.T) {
	tests := []struct {
		name    string
		data    string
		want    Command
		wantErr error
	}{
		{name: "make_move", data: `{"type":"make_move","payload":{"index":4}}`, want: MakeMove{Index: 4}},
		{name: "make_move on cell zero", data: `{"type":"make_move","payload":{"index":0}}`, want: MakeMove{Index: 0}},
		{name: "out of range index is left to the session", data: `{"type":"make_move","payload":{"index":9}}`, want: MakeMove{Index: 9}},
		{name: "request_new_game", data: `{"type":"request_new_game"}`, want: RequestNewGame{}},
		{name: "not json", data: `hello`, wantErr: apperror.ErrMalformedMessage},
		{name: "missing type", data: `{"payload":{}}`, wantErr: apperror.ErrMalformedMessage},
		{name: "make_move without payload", data: `{"type":"make_move"}`, wantErr: apperror.ErrMalformedMessage},
		{name: "make_move without index", data: `{"type":"make_move","payload":{}}`, wantErr: apperror.ErrMalformedMessage},
		{name: "make_move with a string index", data: `{"type":"make_move","payload":{"index":"4"}}`, wantErr: apperror.ErrMalformedMessage},
		{name: "unknown type", data: `{"type":"dance"}`, wantErr: apperror.ErrUnknownCommand},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			cmd, err := ParseCommand([]byte(tt.data))

			if tt.wantErr != nil {
				require.ErrorIs(t, err, tt.wantErr)
				assert.Nil(t, cmd)
				return
			}

			require.NoError(t, err)
			assert.Equal(t, tt.want, cmd)
		})
	}
}

func TestEncodeEvent(t *testing.T) {
	t.Run("View events carry the view as payload", func(t *testing.T) {
		view := entity.View{CurrentPlayer: entity.PlayerX, GameActive: true, MySymbol: entity.PlayerO}

		data, err := encodeEvent("ABC234", "p2", entity.NewViewEvent(entity.EventGameStart, view))
		require.NoError(t, err)

		var decoded struct {
			Type      string      `json:"type"`
			SessionID string      `json:"sessionId"`
			PlayerID  string      `json:"playerId"`
			Payload   entity.View `json:"payload"`
		}
		require.NoError(t, json.Unmarshal(data, &decoded))
		assert.Equal(t, "game_start", decoded.Type)
		assert.Equal(t, "ABC234", decoded.SessionID)
		assert.Equal(t, "p2", decoded.PlayerID)
		assert.Equal(t, view, decoded.Payload)
	})

	t.Run("Error events carry a message", func(t *testing.T) {
		data, err := encodeEvent("", "", entity.NewErrorEvent(apperror.ErrNotYourTurn))
		require.NoError(t, err)

		assert.JSONEq(t, `{"type":"error","payload":{"message":"it's not your turn"}}`, string(data))
	})
}

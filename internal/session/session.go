package session

import (
	"fmt"
	"sync"
	"time"

	"github.com/rocketscienceinc/tictactoe-sessions/internal/apperror"
	"github.com/rocketscienceinc/tictactoe-sessions/internal/entity"
	"github.com/rocketscienceinc/tictactoe-sessions/internal/tictactoe"
)

const maxSeats = 2

type seat struct {
	player entity.Player
	conn   entity.Conn
}

// state is owned by the session loop goroutine and never touched elsewhere.
type state struct {
	board   entity.Board
	turn    entity.Symbol
	outcome entity.Outcome
	seats   []*seat
	retired bool

	// touched is the time of the last seat change or move.
	touched time.Time
}

// Dispatcher hands events to seat connections. It runs inside the session
// loop, so it must only enqueue and never block on the network.
type Dispatcher interface {
	Deliver(deliveries []entity.Delivery) int
}

type nopDispatcher struct{}

func (nopDispatcher) Deliver([]entity.Delivery) int { return 0 }

// Session is the authoritative state of one match. Every operation is handed
// to the session's own loop goroutine and applied one at a time, so two moves
// or a move racing a leave never interleave. The events an operation produces
// are dispatched in the same loop step, so every seat sees them in the order
// the operations were applied. Results still carry them for inspection.
type Session struct {
	id         string
	dispatcher Dispatcher

	inbox     chan func(*state)
	done      chan struct{}
	closeOnce sync.Once
}

type JoinResult struct {
	Player entity.Player
	View   entity.View

	// Rejoined is set when the participant already held a seat.
	Rejoined bool
	// Started is set when this join filled the second seat.
	Started bool
	// Replaced is the seat's previous connection handle on a rejoin.
	Replaced entity.Conn

	Deliveries []entity.Delivery
}

type MoveResult struct {
	Player  entity.Player
	Cell    int
	Board   entity.Board
	Outcome entity.Outcome

	Deliveries []entity.Delivery
}

type LeaveResult struct {
	Player    entity.Player
	Remaining int

	// Stale is set when the closing connection no longer owns the seat.
	Stale bool
	// Abandoned is set when the departure ended a match in progress.
	Abandoned bool
	// Retired is set when the last seat left; the session accepts no more operations.
	Retired bool

	Deliveries []entity.Delivery
}

type ResetResult struct {
	Deliveries []entity.Delivery
}

func newSession(id string, dispatcher Dispatcher) *Session {
	if dispatcher == nil {
		dispatcher = nopDispatcher{}
	}

	session := &Session{
		id:         id,
		dispatcher: dispatcher,
		inbox:      make(chan func(*state)),
		done:       make(chan struct{}),
	}

	go session.loop()

	return session
}

func (that *Session) ID() string {
	return that.id
}

// Close - stops the session loop. Operations issued afterwards fail with ErrSessionNotFound.
func (that *Session) Close() {
	that.closeOnce.Do(func() {
		close(that.done)
	})
}

func (that *Session) loop() {
	st := &state{
		turn:    entity.PlayerX,
		outcome: entity.InProgress(),
		touched: time.Now(),
	}

	for {
		select {
		case fn := <-that.inbox:
			fn(st)
		case <-that.done:
			return
		}
	}
}

// exec - runs fn on the session loop, dispatches the deliveries it produced
// in the same step, and waits for it to finish.
func (that *Session) exec(fn func(st *state) ([]entity.Delivery, error)) error {
	result := make(chan error, 1)

	op := func(st *state) {
		if st.retired {
			result <- fmt.Errorf("%w: %s", apperror.ErrSessionNotFound, that.id)
			return
		}

		deliveries, err := fn(st)
		if err == nil && len(deliveries) > 0 {
			that.dispatcher.Deliver(deliveries)
		}

		result <- err
	}

	select {
	case that.inbox <- op:
	case <-that.done:
		return fmt.Errorf("%w: %s", apperror.ErrSessionNotFound, that.id)
	}

	return <-result
}

// Join - seats a participant, or rebinds the connection of one already seated.
func (that *Session) Join(playerID string, conn entity.Conn) (JoinResult, error) {
	return that.join(playerID, conn, true)
}

// Reserve - seats a participant without a connection. A participant already
// seated keeps the connection it has.
func (that *Session) Reserve(playerID string) (JoinResult, error) {
	return that.join(playerID, nil, false)
}

func (that *Session) join(playerID string, conn entity.Conn, rebind bool) (JoinResult, error) {
	var res JoinResult

	err := that.exec(func(st *state) ([]entity.Delivery, error) {
		st.touched = time.Now()

		if existing := st.seatOf(playerID); existing != nil {
			res.Player = existing.player
			res.Rejoined = true
			res.View = st.view(existing.player.Mark)

			if !rebind {
				return nil, nil
			}

			if existing.conn != conn {
				res.Replaced = existing.conn
			}
			existing.conn = conn

			res.Deliveries = st.deliver(existing, entity.EventJoined)

			return res.Deliveries, nil
		}

		if len(st.seats) >= maxSeats {
			return nil, fmt.Errorf("%w: %s", apperror.ErrSessionFull, that.id)
		}

		newSeat := &seat{
			player: entity.Player{ID: playerID, Mark: st.freeMark()},
			conn:   conn,
		}
		st.seats = append(st.seats, newSeat)

		res.Player = newSeat.player

		if len(st.seats) == maxSeats {
			// a new opponent after a finished or abandoned match starts a fresh one
			if !st.outcome.IsInProgress() {
				st.reset()
			}

			res.Started = true
			res.View = st.view(newSeat.player.Mark)
			res.Deliveries = st.broadcast(entity.EventGameStart)

			return res.Deliveries, nil
		}

		res.View = st.view(newSeat.player.Mark)
		res.Deliveries = st.deliver(newSeat, entity.EventJoined)

		return res.Deliveries, nil
	})

	return res, err
}

// ApplyMove - validates and applies a move for the participant.
func (that *Session) ApplyMove(playerID string, cell int) (MoveResult, error) {
	var res MoveResult

	err := that.exec(func(st *state) ([]entity.Delivery, error) {
		mover := st.seatOf(playerID)
		if mover == nil {
			return nil, apperror.ErrNotSeated
		}

		if !st.active() {
			return nil, apperror.ErrMatchNotActive
		}

		if mover.player.Mark != st.turn {
			return nil, apperror.ErrNotYourTurn
		}

		if !st.board.InRange(cell) {
			return nil, fmt.Errorf("%w: cell %d", apperror.ErrIndexOutOfRange, cell)
		}

		if st.board[cell] != entity.EmptyCell {
			return nil, fmt.Errorf("%w: cell %d", apperror.ErrCellOccupied, cell)
		}

		st.board[cell] = mover.player.Mark
		st.touched = time.Now()

		if outcome := tictactoe.Evaluate(st.board); outcome.IsInProgress() {
			st.turn = tictactoe.Opponent(st.turn)
		} else {
			st.outcome = outcome
		}

		res = MoveResult{
			Player:     mover.player,
			Cell:       cell,
			Board:      st.board,
			Outcome:    st.outcome,
			Deliveries: st.broadcast(entity.EventStateUpdate),
		}

		return res.Deliveries, nil
	})

	return res, err
}

// Leave - frees the participant's seat if conn still owns it.
func (that *Session) Leave(playerID string, conn entity.Conn) (LeaveResult, error) {
	var res LeaveResult

	err := that.exec(func(st *state) ([]entity.Delivery, error) {
		idx := st.seatIndex(playerID)
		if idx < 0 {
			return nil, apperror.ErrNotSeated
		}

		leaving := st.seats[idx]
		res.Player = leaving.player

		if leaving.conn != conn {
			res.Stale = true
			res.Remaining = len(st.seats)
			return nil, nil
		}

		wasActive := st.active()
		st.seats = append(st.seats[:idx], st.seats[idx+1:]...)
		st.touched = time.Now()

		if wasActive {
			st.outcome = entity.Abandoned()
			res.Abandoned = true
		}

		res.Remaining = len(st.seats)
		res.Deliveries = st.broadcast(entity.EventOpponentLeft)

		if len(st.seats) == 0 {
			st.retired = true
			res.Retired = true
		}

		return res.Deliveries, nil
	})

	if res.Retired {
		that.Close()
	}

	return res, err
}

// Reset - deals a fresh board once the current match is over.
func (that *Session) Reset(playerID string) (ResetResult, error) {
	var res ResetResult

	err := that.exec(func(st *state) ([]entity.Delivery, error) {
		if st.seatOf(playerID) == nil {
			return nil, apperror.ErrNotSeated
		}

		if st.active() {
			return nil, apperror.ErrMatchInProgress
		}

		st.reset()
		st.touched = time.Now()
		res.Deliveries = st.broadcast(entity.EventGameStart)

		return res.Deliveries, nil
	})

	return res, err
}

// View - returns the session as seen by the participant.
func (that *Session) View(playerID string) (entity.View, error) {
	var view entity.View

	err := that.exec(func(st *state) ([]entity.Delivery, error) {
		viewer := st.seatOf(playerID)
		if viewer == nil {
			return nil, apperror.ErrNotSeated
		}

		view = st.view(viewer.player.Mark)

		return nil, nil
	})

	return view, err
}

// Expire - retires the session when no seat holds a connection and nothing
// happened since cutoff. Reports whether it did.
func (that *Session) Expire(cutoff time.Time) (bool, error) {
	expired := false

	err := that.exec(func(st *state) ([]entity.Delivery, error) {
		if st.touched.After(cutoff) {
			return nil, nil
		}

		for _, s := range st.seats {
			if s.conn != nil {
				return nil, nil
			}
		}

		st.retired = true
		expired = true

		return nil, nil
	})

	if expired {
		that.Close()
	}

	return expired, err
}

func (that *Session) Summary() (entity.SessionSummary, error) {
	var summary entity.SessionSummary

	err := that.exec(func(st *state) ([]entity.Delivery, error) {
		summary = entity.SessionSummary{
			ID:            that.id,
			PlayerCount:   len(st.seats),
			GameActive:    st.active(),
			CurrentPlayer: st.turn,
		}

		return nil, nil
	})

	return summary, err
}

func (st *state) active() bool {
	return len(st.seats) == maxSeats && st.outcome.IsInProgress()
}

func (st *state) reset() {
	st.board = entity.Board{}
	st.turn = entity.PlayerX
	st.outcome = entity.InProgress()
}

func (st *state) freeMark() entity.Symbol {
	for _, mark := range []entity.Symbol{entity.PlayerX, entity.PlayerO} {
		taken := false
		for _, s := range st.seats {
			if s.player.Mark == mark {
				taken = true
				break
			}
		}

		if !taken {
			return mark
		}
	}

	return entity.EmptyCell
}

func (st *state) seatIndex(playerID string) int {
	for i, s := range st.seats {
		if s.player.ID == playerID {
			return i
		}
	}

	return -1
}

func (st *state) seatOf(playerID string) *seat {
	if idx := st.seatIndex(playerID); idx >= 0 {
		return st.seats[idx]
	}

	return nil
}

func (st *state) view(mark entity.Symbol) entity.View {
	view := entity.View{
		Board:         st.board,
		CurrentPlayer: st.turn,
		GameActive:    st.active(),
		Outcome:       st.outcome.Status,
		Winner:        st.outcome.Winner,
		IsDraw:        st.outcome.Status == entity.StatusDrawn,
		MySymbol:      mark,
	}

	for _, s := range st.seats {
		if s.player.Mark != mark {
			view.OpponentSymbol = s.player.Mark
		}
	}

	view.YourTurn = view.GameActive && st.turn == mark

	return view
}

// deliver - addresses one seat. Seats without a connection get nothing.
func (st *state) deliver(to *seat, eventType entity.EventType) []entity.Delivery {
	if to.conn == nil {
		return nil
	}

	return []entity.Delivery{{
		PlayerID: to.player.ID,
		Conn:     to.conn,
		Event:    entity.NewViewEvent(eventType, st.view(to.player.Mark)),
	}}
}

func (st *state) broadcast(eventType entity.EventType) []entity.Delivery {
	var deliveries []entity.Delivery
	for _, s := range st.seats {
		deliveries = append(deliveries, st.deliver(s, eventType)...)
	}

	return deliveries
}

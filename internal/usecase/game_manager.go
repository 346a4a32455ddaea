package usecase

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"time"

	"github.com/google/uuid"

	"github.com/rocketscienceinc/tictactoe-sessions/internal/apperror"
	"github.com/rocketscienceinc/tictactoe-sessions/internal/entity"
	"github.com/rocketscienceinc/tictactoe-sessions/internal/session"
)

type registry interface {
	Create() (*session.Session, error)
	Get(id string) (*session.Session, error)
	Remove(id string)
	List() []entity.SessionSummary
	Reap(cutoff time.Time) []string
}

type historyRepo interface {
	Append(ctx context.Context, result entity.MatchResult) error
	List(ctx context.Context, sessionID string) ([]entity.MatchResult, error)
}

type gameMetrics interface {
	SessionCreated()
	SessionRemoved()
	PlayerConnected()
	PlayerDisconnected()
	MoveAccepted()
	MoveRejected(reason string)
	MatchFinished(outcome entity.OutcomeStatus)
}

// GameManager routes participant intents to their session. Sessions push
// their own events through the dispatcher their registry hands them.
// History is optional; a nil repo disables it.
type GameManager struct {
	logger *slog.Logger

	registry registry
	history  historyRepo
	metrics  gameMetrics

	now func() time.Time
}

func NewGameManager(
	logger *slog.Logger,
	registry registry,
	history historyRepo,
	metrics gameMetrics,
) *GameManager {
	return &GameManager{
		logger: logger.With("component", "game_manager"),

		registry: registry,
		history:  history,
		metrics:  metrics,

		now: time.Now,
	}
}

// NewSession - creates an empty session.
func (that *GameManager) NewSession(_ context.Context) (string, error) {
	created, err := that.registry.Create()
	if err != nil {
		return "", fmt.Errorf("failed to create session: %w", err)
	}

	that.metrics.SessionCreated()
	that.logger.Info("session created", "sessionID", created.ID())

	return created.ID(), nil
}

// CreateSession - creates a session and seats its creator as X without a connection.
func (that *GameManager) CreateSession(ctx context.Context, playerID string) (string, entity.Player, error) {
	sessionID, err := that.NewSession(ctx)
	if err != nil {
		return "", entity.Player{}, err
	}

	res, err := that.JoinSession(ctx, sessionID, playerID)
	if err != nil {
		return "", entity.Player{}, err
	}

	return sessionID, res.Player, nil
}

// JoinSession - reserves a seat for playerID without a connection. The player
// attaches later over the socket with the same id.
func (that *GameManager) JoinSession(_ context.Context, sessionID, playerID string) (session.JoinResult, error) {
	current, err := that.registry.Get(sessionID)
	if err != nil {
		return session.JoinResult{}, err
	}

	res, err := current.Reserve(orNewPlayerID(playerID))
	if err != nil {
		return session.JoinResult{}, fmt.Errorf("failed to join session: %w", err)
	}

	that.logger.Info("seat reserved",
		"sessionID", sessionID,
		"playerID", res.Player.ID,
		"mark", res.Player.Mark,
		"rejoined", res.Rejoined,
	)

	return res, nil
}

// Connect - binds conn to the player's seat, taking a free seat if needed.
func (that *GameManager) Connect(_ context.Context, sessionID, playerID string, conn entity.Conn) (session.JoinResult, error) {
	current, err := that.registry.Get(sessionID)
	if err != nil {
		return session.JoinResult{}, err
	}

	res, err := current.Join(orNewPlayerID(playerID), conn)
	if err != nil {
		return session.JoinResult{}, fmt.Errorf("failed to join session: %w", err)
	}

	that.metrics.PlayerConnected()
	that.logger.Info("player connected",
		"sessionID", sessionID,
		"playerID", res.Player.ID,
		"mark", res.Player.Mark,
		"rejoined", res.Rejoined,
		"started", res.Started,
	)

	return res, nil
}

// MakeMove - applies a move and records the match once it is decided.
func (that *GameManager) MakeMove(ctx context.Context, sessionID, playerID string, cell int) error {
	current, err := that.registry.Get(sessionID)
	if err != nil {
		return err
	}

	res, err := current.ApplyMove(playerID, cell)
	if err != nil {
		that.metrics.MoveRejected(rejectionReason(err))
		return fmt.Errorf("move rejected: %w", err)
	}

	that.metrics.MoveAccepted()

	if res.Outcome.IsFinished() {
		that.metrics.MatchFinished(res.Outcome.Status)
		that.logger.Info("match finished",
			"sessionID", sessionID,
			"outcome", res.Outcome.Status,
			"winner", res.Outcome.Winner,
		)

		that.record(ctx, entity.MatchResult{
			SessionID:  sessionID,
			Outcome:    res.Outcome.Status,
			Winner:     res.Outcome.Winner,
			Board:      res.Board,
			Moves:      res.Board.Filled(),
			FinishedAt: that.now().UTC(),
		})
	}

	return nil
}

// RequestNewGame - deals a fresh board after a finished match.
func (that *GameManager) RequestNewGame(_ context.Context, sessionID, playerID string) error {
	current, err := that.registry.Get(sessionID)
	if err != nil {
		return err
	}

	if _, err = current.Reset(playerID); err != nil {
		return fmt.Errorf("new game rejected: %w", err)
	}

	that.logger.Info("new game started", "sessionID", sessionID, "playerID", playerID)

	return nil
}

// Disconnect - frees the seat conn holds. Call it once for every connection
// Connect accepted. Closes from a connection that was already replaced change
// nothing. The session is removed with its last seat.
func (that *GameManager) Disconnect(_ context.Context, sessionID, playerID string, conn entity.Conn) {
	log := that.logger.With("method", "Disconnect", "sessionID", sessionID, "playerID", playerID)

	that.metrics.PlayerDisconnected()

	current, err := that.registry.Get(sessionID)
	if err != nil {
		log.Debug("session already gone", "error", err)
		return
	}

	res, err := current.Leave(playerID, conn)
	if err != nil {
		log.Debug("nothing to leave", "error", err)
		return
	}

	if res.Stale {
		log.Debug("ignoring close of a replaced connection")
		return
	}

	log.Info("player left", "remaining", res.Remaining, "abandoned", res.Abandoned)

	if res.Abandoned {
		that.metrics.MatchFinished(entity.StatusAbandoned)
	}

	if res.Retired {
		that.registry.Remove(sessionID)
		that.metrics.SessionRemoved()
		log.Info("session removed")
	}
}

// ReapIdle - removes sessions that had no connection attached and no activity
// for maxIdle, such as ones created over REST that no socket ever joined.
func (that *GameManager) ReapIdle(maxIdle time.Duration) int {
	reaped := that.registry.Reap(that.now().Add(-maxIdle))

	for _, sessionID := range reaped {
		that.metrics.SessionRemoved()
		that.logger.Info("idle session removed", "sessionID", sessionID)
	}

	return len(reaped)
}

func (that *GameManager) ListSessions() []entity.SessionSummary {
	return that.registry.List()
}

// SessionHistory - returns the recorded matches of a session, newest first.
func (that *GameManager) SessionHistory(ctx context.Context, sessionID string) ([]entity.MatchResult, error) {
	if that.history == nil {
		return []entity.MatchResult{}, nil
	}

	results, err := that.history.List(ctx, sessionID)
	if err != nil {
		return nil, fmt.Errorf("failed to read history: %w", err)
	}

	return results, nil
}

func (that *GameManager) record(ctx context.Context, result entity.MatchResult) {
	if that.history == nil {
		return
	}

	if err := that.history.Append(ctx, result); err != nil {
		that.logger.Error("failed to record match", "sessionID", result.SessionID, "error", err)
	}
}

func orNewPlayerID(playerID string) string {
	if playerID == "" {
		return uuid.NewString()
	}

	return playerID
}

func rejectionReason(err error) string {
	switch {
	case errors.Is(err, apperror.ErrNotSeated):
		return "not_seated"
	case errors.Is(err, apperror.ErrMatchNotActive):
		return "not_active"
	case errors.Is(err, apperror.ErrNotYourTurn):
		return "not_your_turn"
	case errors.Is(err, apperror.ErrIndexOutOfRange):
		return "out_of_range"
	case errors.Is(err, apperror.ErrCellOccupied):
		return "occupied"
	default:
		return "rejected"
	}
}

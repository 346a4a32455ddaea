package rest

import (
	"context"
	"encoding/json"
	"errors"
	"io"
	"log/slog"
	"net/http"

	"github.com/go-chi/chi/v5"

	"github.com/rocketscienceinc/tictactoe-sessions/internal/apperror"
	"github.com/rocketscienceinc/tictactoe-sessions/internal/entity"
	"github.com/rocketscienceinc/tictactoe-sessions/internal/session"
)

type gameManager interface {
	CreateSession(ctx context.Context, playerID string) (string, entity.Player, error)
	JoinSession(ctx context.Context, sessionID, playerID string) (session.JoinResult, error)
	ListSessions() []entity.SessionSummary
	SessionHistory(ctx context.Context, sessionID string) ([]entity.MatchResult, error)
}

type playerRequest struct {
	PlayerID string `json:"playerId"`
}

type seatResponse struct {
	SessionID    string        `json:"sessionId"`
	PlayerID     string        `json:"playerId"`
	PlayerSymbol entity.Symbol `json:"playerSymbol"`
	GameState    *entity.View  `json:"gameState,omitempty"`
}

type sessionsResponse struct {
	Sessions []entity.SessionSummary `json:"sessions"`
}

type historyResponse struct {
	SessionID string               `json:"sessionId"`
	Matches   []entity.MatchResult `json:"matches"`
}

type errorResponse struct {
	Error string `json:"error"`
}

type sessionHandlers struct {
	logger  *slog.Logger
	manager gameManager
}

func (that *sessionHandlers) Create(w http.ResponseWriter, r *http.Request) {
	req, err := decodePlayerRequest(r)
	if err != nil {
		that.writeError(w, http.StatusBadRequest, err)
		return
	}

	sessionID, player, err := that.manager.CreateSession(r.Context(), req.PlayerID)
	if err != nil {
		that.logger.Error("failed to create session", "error", err)
		that.writeError(w, statusOf(err), err)
		return
	}

	that.writeJSON(w, http.StatusCreated, seatResponse{
		SessionID:    sessionID,
		PlayerID:     player.ID,
		PlayerSymbol: player.Mark,
	})
}

func (that *sessionHandlers) Join(w http.ResponseWriter, r *http.Request) {
	req, err := decodePlayerRequest(r)
	if err != nil {
		that.writeError(w, http.StatusBadRequest, err)
		return
	}

	sessionID := chi.URLParam(r, "sessionId")

	res, err := that.manager.JoinSession(r.Context(), sessionID, req.PlayerID)
	if err != nil {
		that.logger.Info("join rejected", "sessionID", sessionID, "error", err)
		that.writeError(w, statusOf(err), err)
		return
	}

	that.writeJSON(w, http.StatusOK, seatResponse{
		SessionID:    sessionID,
		PlayerID:     res.Player.ID,
		PlayerSymbol: res.Player.Mark,
		GameState:    &res.View,
	})
}

func (that *sessionHandlers) List(w http.ResponseWriter, _ *http.Request) {
	that.writeJSON(w, http.StatusOK, sessionsResponse{Sessions: that.manager.ListSessions()})
}

func (that *sessionHandlers) History(w http.ResponseWriter, r *http.Request) {
	sessionID := chi.URLParam(r, "sessionId")

	matches, err := that.manager.SessionHistory(r.Context(), sessionID)
	if err != nil {
		that.logger.Error("failed to read history", "sessionID", sessionID, "error", err)
		that.writeError(w, http.StatusInternalServerError, err)
		return
	}

	that.writeJSON(w, http.StatusOK, historyResponse{SessionID: sessionID, Matches: matches})
}

// decodePlayerRequest - an empty body means no player id.
func decodePlayerRequest(r *http.Request) (playerRequest, error) {
	var req playerRequest

	if err := json.NewDecoder(r.Body).Decode(&req); err != nil && !errors.Is(err, io.EOF) {
		return playerRequest{}, apperror.ErrMalformedMessage
	}

	return req, nil
}

func statusOf(err error) int {
	switch {
	case errors.Is(err, apperror.ErrSessionNotFound):
		return http.StatusNotFound
	case errors.Is(err, apperror.ErrSessionFull):
		return http.StatusConflict
	default:
		return http.StatusInternalServerError
	}
}

func (that *sessionHandlers) writeError(w http.ResponseWriter, status int, err error) {
	that.writeJSON(w, status, errorResponse{Error: err.Error()})
}

func (that *sessionHandlers) writeJSON(w http.ResponseWriter, status int, body any) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)

	if err := json.NewEncoder(w).Encode(body); err != nil {
		that.logger.Error("failed to write response", "error", err)
	}
}

package websocket

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"net/http"
	"slices"
	"time"

	"github.com/google/uuid"
	"github.com/gorilla/websocket"

	"github.com/rocketscienceinc/tictactoe-sessions/internal/config"
	"github.com/rocketscienceinc/tictactoe-sessions/internal/entity"
	"github.com/rocketscienceinc/tictactoe-sessions/internal/session"
)

const shutdownTimeout = 5 * time.Second

const (
	defaultWriteTimeout = 10 * time.Second
	defaultPongTimeout  = 60 * time.Second
	defaultSendBuffer   = 16
	defaultReadLimit    = 4096
)

type gameManager interface {
	NewSession(ctx context.Context) (string, error)
	Connect(ctx context.Context, sessionID, playerID string, conn entity.Conn) (session.JoinResult, error)
	MakeMove(ctx context.Context, sessionID, playerID string, cell int) error
	RequestNewGame(ctx context.Context, sessionID, playerID string) error
	Disconnect(ctx context.Context, sessionID, playerID string, conn entity.Conn)
}

type Server struct {
	logger  *slog.Logger
	manager gameManager

	conf     config.WebSocket
	upgrader websocket.Upgrader
}

func New(logger *slog.Logger, manager gameManager, conf config.WebSocket) *Server {
	if conf.WriteTimeout <= 0 {
		conf.WriteTimeout = defaultWriteTimeout
	}

	if conf.PongTimeout <= 0 {
		conf.PongTimeout = defaultPongTimeout
	}

	if conf.SendBuffer <= 0 {
		conf.SendBuffer = defaultSendBuffer
	}

	if conf.ReadLimit <= 0 {
		conf.ReadLimit = defaultReadLimit
	}

	server := &Server{
		logger:  logger.With("component", "websocket"),
		manager: manager,
		conf:    conf,
	}

	server.upgrader = websocket.Upgrader{
		ReadBufferSize:  1024,
		WriteBufferSize: 1024,
		CheckOrigin:     server.checkOrigin,
	}

	return server
}

// Handler - returns the mux serving /ws. Connections use ctx for their lifetime.
func (that *Server) Handler(ctx context.Context) http.Handler {
	mux := http.NewServeMux()
	mux.HandleFunc("/ws", func(w http.ResponseWriter, r *http.Request) {
		that.serveWS(ctx, w, r)
	})

	return mux
}

// Start - starts WebSocket server.
func (that *Server) Start(ctx context.Context, port string) error {
	srv := &http.Server{
		Addr:              ":" + port,
		Handler:           that.Handler(ctx),
		ReadHeaderTimeout: 10 * time.Second,
	}

	go func() {
		<-ctx.Done()

		shutdownCtx, cancel := context.WithTimeout(context.Background(), shutdownTimeout)
		defer cancel()

		_ = srv.Shutdown(shutdownCtx)
	}()

	if err := srv.ListenAndServe(); err != nil && !errors.Is(err, http.ErrServerClosed) {
		return fmt.Errorf("failed to start server: %w", err)
	}

	return nil
}

func (that *Server) checkOrigin(r *http.Request) bool {
	if len(that.conf.AllowedOrigins) == 0 {
		return true
	}

	return slices.Contains(that.conf.AllowedOrigins, r.Header.Get("Origin"))
}

// serveWS - upgrades the request and runs the connection until it closes.
// A missing sessionId creates a session, a missing playerId gets a new id.
func (that *Server) serveWS(ctx context.Context, w http.ResponseWriter, r *http.Request) {
	log := that.logger.With("method", "serveWS")

	conn, err := that.upgrader.Upgrade(w, r, nil)
	if err != nil {
		log.Warn("failed to upgrade connection", "error", err)
		return
	}

	c := newClient(conn, that.conf.SendBuffer)
	go c.writePump(that.conf.WriteTimeout, that.pingPeriod())

	query := r.URL.Query()
	c.sessionID = query.Get("sessionId")
	c.playerID = query.Get("playerId")

	if c.playerID == "" {
		c.playerID = uuid.NewString()
	}

	if c.sessionID == "" {
		if c.sessionID, err = that.manager.NewSession(ctx); err != nil {
			that.reject(c, err)
			return
		}
	}

	log = log.With("sessionID", c.sessionID, "playerID", c.playerID)

	res, err := that.manager.Connect(ctx, c.sessionID, c.playerID, c)
	if err != nil {
		log.Info("connection rejected", "error", err)
		that.reject(c, err)
		return
	}

	if replaced, ok := res.Replaced.(*client); ok {
		log.Info("closing replaced connection")
		replaced.Close()
	}

	defer func() {
		that.manager.Disconnect(ctx, c.sessionID, c.playerID, c)
		c.Close()
	}()

	that.readLoop(ctx, c)
}

func (that *Server) reject(c *client, err error) {
	if sendErr := c.Send(entity.NewErrorEvent(err)); sendErr != nil {
		that.logger.Warn("failed to send error event", "error", sendErr)
	}

	c.Close()
}

func (that *Server) readLoop(ctx context.Context, c *client) {
	log := that.logger.With("method", "readLoop", "sessionID", c.sessionID, "playerID", c.playerID)

	c.conn.SetReadLimit(that.conf.ReadLimit)
	_ = c.conn.SetReadDeadline(time.Now().Add(that.conf.PongTimeout))
	c.conn.SetPongHandler(func(string) error {
		return c.conn.SetReadDeadline(time.Now().Add(that.conf.PongTimeout))
	})

	for {
		messageType, data, err := c.conn.ReadMessage()
		if err != nil {
			if websocket.IsUnexpectedCloseError(err, websocket.CloseGoingAway, websocket.CloseNormalClosure) {
				log.Warn("connection closed unexpectedly", "error", err)
			}

			return
		}

		if messageType != websocket.TextMessage {
			continue
		}

		that.handleMessage(ctx, c, data)
	}
}

// handleMessage - runs one inbound command. Rejections go back to the sender only.
func (that *Server) handleMessage(ctx context.Context, c *client, data []byte) {
	log := that.logger.With("method", "handleMessage", "sessionID", c.sessionID, "playerID", c.playerID)

	cmd, err := ParseCommand(data)
	if err == nil {
		switch cmd := cmd.(type) {
		case MakeMove:
			err = that.manager.MakeMove(ctx, c.sessionID, c.playerID, cmd.Index)
		case RequestNewGame:
			err = that.manager.RequestNewGame(ctx, c.sessionID, c.playerID)
		}
	}

	if err != nil {
		log.Debug("command rejected", "error", err)

		if sendErr := c.Send(entity.NewErrorEvent(err)); sendErr != nil {
			log.Warn("failed to send error event", "error", sendErr)
		}
	}
}

func (that *Server) pingPeriod() time.Duration {
	return that.conf.PongTimeout * 9 / 10
}

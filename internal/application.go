package application

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/collectors"
	"github.com/prometheus/client_golang/prometheus/promhttp"
	"golang.org/x/sync/errgroup"

	"github.com/rocketscienceinc/tictactoe-sessions/internal/broadcast"
	"github.com/rocketscienceinc/tictactoe-sessions/internal/config"
	"github.com/rocketscienceinc/tictactoe-sessions/internal/metrics"
	"github.com/rocketscienceinc/tictactoe-sessions/internal/repository"
	"github.com/rocketscienceinc/tictactoe-sessions/internal/repository/storage"
	"github.com/rocketscienceinc/tictactoe-sessions/internal/session"
	"github.com/rocketscienceinc/tictactoe-sessions/internal/usecase"
	"github.com/rocketscienceinc/tictactoe-sessions/transport/rest"
	"github.com/rocketscienceinc/tictactoe-sessions/transport/websocket"
)

var ErrAddrNotFound = errors.New("redis address string is empty")

// RunApp - runs the application until SIGINT or SIGTERM, or until a server fails.
func RunApp(logger *slog.Logger, conf *config.Config) error {
	log := logger.With("component", "app")

	ctx, cancel := context.WithCancel(context.Background())
	defer cancel()

	sigs := make(chan os.Signal, 1)
	signal.Notify(sigs, syscall.SIGINT, syscall.SIGTERM)
	defer signal.Stop(sigs)

	go func() {
		select {
		case sig := <-sigs:
			log.Info("Received signal, shutting down", "signal", sig)
			cancel()
		case <-ctx.Done():
		}
	}()

	promRegistry := prometheus.NewRegistry()
	promRegistry.MustRegister(
		collectors.NewGoCollector(),
		collectors.NewProcessCollector(collectors.ProcessCollectorOpts{}),
	)
	appMetrics := metrics.New(promRegistry)

	var history repository.HistoryRepository
	if conf.Redis.Enabled {
		redisAddrString := conf.Redis.GetRedisAddr()
		if conf.Redis.Host == "" {
			return ErrAddrNotFound
		}

		redisClient, err := storage.NewRedisClient(ctx, redisAddrString)
		if err != nil {
			return fmt.Errorf("could not connect to redis storage: %w", err)
		}

		defer func() {
			if err = redisClient.Close(); err != nil {
				log.Error("could not close redis storage", "error", err)
			}
		}()

		history = repository.NewHistoryRepository(redisClient, conf.Redis.HistoryLimit, conf.Redis.HistoryTTL)
		log.Info("Match history enabled", "addr", redisAddrString)
	}

	registry := session.NewRegistry(session.WithDispatcher(broadcast.New(logger, appMetrics)))
	defer registry.Close()

	gameManager := usecase.NewGameManager(logger, registry, history, appMetrics)

	// the group context fails fast: one server erroring shuts the other down
	group, groupCtx := errgroup.WithContext(ctx)

	// run HTTP server
	group.Go(func() error {
		log.Info("Starting HTTP server", "port", conf.HTTPPort)
		router := rest.NewRouter(logger, gameManager, promhttp.HandlerFor(promRegistry, promhttp.HandlerOpts{}))
		if err := rest.Start(groupCtx, conf.HTTPPort, router); err != nil {
			log.Error("HTTP server error", "error", err)
			return fmt.Errorf("HTTP server error: %w", err)
		}
		return nil
	})

	// run Websocket server
	group.Go(func() error {
		log.Info("Starting WebSocket server", "port", conf.SocketPort)
		wsServer := websocket.New(logger, gameManager, conf.WebSocket)
		if err := wsServer.Start(groupCtx, conf.SocketPort); err != nil {
			log.Error("WebSocket server error", "error", err)
			return fmt.Errorf("WebSocket server error: %w", err)
		}
		return nil
	})

	group.Go(func() error {
		reapIdleSessions(groupCtx, gameManager, conf.Session)
		return nil
	})

	err := group.Wait()
	log.Info("Servers stopped, shutting down")

	return err
}

// reapIdleSessions - periodically removes sessions nobody is connected to.
func reapIdleSessions(ctx context.Context, gameManager *usecase.GameManager, conf config.Session) {
	if conf.ReapInterval <= 0 || conf.IdleTimeout <= 0 {
		return
	}

	ticker := time.NewTicker(conf.ReapInterval)
	defer ticker.Stop()

	for {
		select {
		case <-ticker.C:
			gameManager.ReapIdle(conf.IdleTimeout)
		case <-ctx.Done():
			return
		}
	}
}

package rest

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"net/http"
	"time"

	"github.com/go-chi/chi/v5"
	"github.com/go-chi/chi/v5/middleware"
)

const shutdownTimeout = 5 * time.Second

// NewRouter - builds the HTTP API. metrics serves /metrics when not nil.
func NewRouter(logger *slog.Logger, manager gameManager, metrics http.Handler) http.Handler {
	log := logger.With("component", "rest")

	ping := &pingHandler{}
	sessions := &sessionHandlers{logger: log, manager: manager}

	r := chi.NewRouter()
	r.Use(middleware.RequestID)
	r.Use(middleware.Recoverer)
	r.Use(requestLogger(log))

	r.Get("/ping", ping.Ping)

	if metrics != nil {
		r.Handle("/metrics", metrics)
	}

	r.Route("/api/sessions", func(r chi.Router) {
		r.Get("/", sessions.List)
		r.Post("/", sessions.Create)
		r.Post("/{sessionId}/join", sessions.Join)
		r.Get("/{sessionId}/history", sessions.History)
	})

	return r
}

// Start - serves handler on port until ctx is done.
func Start(ctx context.Context, port string, handler http.Handler) error {
	srv := &http.Server{
		Addr:         ":" + port,
		Handler:      handler,
		ReadTimeout:  10 * time.Second,
		WriteTimeout: 10 * time.Second,
		IdleTimeout:  30 * time.Second,
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

func requestLogger(logger *slog.Logger) func(http.Handler) http.Handler {
	return func(next http.Handler) http.Handler {
		return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			ww := middleware.NewWrapResponseWriter(w, r.ProtoMajor)
			start := time.Now()

			next.ServeHTTP(ww, r)

			logger.Debug("request served",
				"method", r.Method,
				"path", r.URL.Path,
				"status", ww.Status(),
				"duration", time.Since(start),
				"requestID", middleware.GetReqID(r.Context()),
			)
		})
	}
}

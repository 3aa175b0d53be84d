package rest

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"net/http"
	"time"

	"github.com/gorilla/handlers"
	"github.com/gorilla/mux"
)

type statsProvider interface {
	Stats() (rooms, players int)
}

type Server struct {
	logger *slog.Logger
	stats  statsProvider

	allowedOrigins []string
}

func New(logger *slog.Logger, stats statsProvider, allowedOrigins []string) *Server {
	return &Server{
		logger:         logger,
		stats:          stats,
		allowedOrigins: allowedOrigins,
	}
}

// Handler builds the routed handler with CORS applied.
func (that *Server) Handler() http.Handler {
	router := mux.NewRouter()
	router.HandleFunc("/ping", that.pingHandler).Methods(http.MethodGet)
	router.HandleFunc("/stats", that.statsHandler).Methods(http.MethodGet)

	cors := handlers.CORS(
		handlers.AllowedOrigins(that.allowedOrigins),
		handlers.AllowedMethods([]string{http.MethodGet, http.MethodPost}),
	)

	return cors(router)
}

// Start - starts the HTTP server and shuts it down when ctx is canceled.
func (that *Server) Start(ctx context.Context, port string) error {
	srv := &http.Server{
		Addr:         ":" + port,
		Handler:      that.Handler(),
		ReadTimeout:  10 * time.Second,
		WriteTimeout: 10 * time.Second,
		IdleTimeout:  30 * time.Second,
	}

	go func() {
		<-ctx.Done()

		shutdownCtx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
		defer cancel()

		_ = srv.Shutdown(shutdownCtx)
	}()

	if err := srv.ListenAndServe(); err != nil && !errors.Is(err, http.ErrServerClosed) {
		return fmt.Errorf("failed to start server: %w", err)
	}

	return nil
}

package rest

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"net/http"
	"time"

	"github.com/gin-gonic/gin"
)

const shutdownTimeout = 5 * time.Second

// NewRouter wires every route onto a gin engine.
func NewRouter(logger *slog.Logger, center gameCenter, hub spectatorHub) *gin.Engine {
	router := gin.New()
	router.Use(gin.Recovery(), requestLogger(logger))

	h := newHandlers(logger, center, hub)

	router.GET("/ping", h.Ping)

	games := router.Group("/games")
	games.POST("", h.CreateGame)
	games.GET("", h.ListGames)
	games.GET("/:id", h.GetGame)
	games.DELETE("/:id", h.RemoveGame)
	games.POST("/:id/moves", h.MakeMove)
	games.POST("/:id/submit", h.SubmitTurn)
	games.POST("/:id/backup", h.Backup)
	games.POST("/:id/resign", h.Resign)
	games.GET("/:id/watch", h.Watch)

	replays := router.Group("/replays")
	replays.GET("", h.ListReplays)
	replays.GET("/:id", h.GetReplay)

	return router
}

// Start serves handler on port until ctx is canceled.
func Start(ctx context.Context, port string, handler http.Handler) error {
	srv := &http.Server{
		Addr:         ":" + port,
		Handler:      handler,
		ReadTimeout:  10 * time.Second,
		WriteTimeout: 10 * time.Second,
		IdleTimeout:  30 * time.Second,
	}

	errCh := make(chan error, 1)
	go func() {
		errCh <- srv.ListenAndServe()
	}()

	select {
	case err := <-errCh:
		if err != nil && !errors.Is(err, http.ErrServerClosed) {
			return fmt.Errorf("failed to start server: %w", err)
		}
		return nil
	case <-ctx.Done():
		shutdownCtx, cancel := context.WithTimeout(context.Background(), shutdownTimeout)
		defer cancel()

		if err := srv.Shutdown(shutdownCtx); err != nil {
			return fmt.Errorf("failed to shut down server: %w", err)
		}
		return nil
	}
}

func requestLogger(logger *slog.Logger) gin.HandlerFunc {
	log := logger.With("component", "rest")

	return func(c *gin.Context) {
		start := time.Now()
		c.Next()

		log.Debug("request handled",
			"method", c.Request.Method,
			"path", c.FullPath(),
			"status", c.Writer.Status(),
			"duration", time.Since(start),
		)
	}
}

package application

import (
	"context"
	"fmt"
	"log/slog"
	"os"
	"os/signal"
	"syscall"

	"github.com/rocketscienceinc/checkers-backend/internal/checkers"
	"github.com/rocketscienceinc/checkers-backend/internal/config"
	"github.com/rocketscienceinc/checkers-backend/internal/repository"
	natstransport "github.com/rocketscienceinc/checkers-backend/internal/transport/nats"
	redistransport "github.com/rocketscienceinc/checkers-backend/internal/transport/redis"
	"github.com/rocketscienceinc/checkers-backend/internal/usecase"
	"github.com/rocketscienceinc/checkers-backend/transport/rest"
	"github.com/rocketscienceinc/checkers-backend/transport/websocket"
)

const natsClientName = "checkers-backend"

// RunApp - runs the application.
func RunApp(logger *slog.Logger, conf *config.Config) error {
	log := logger.With("component", "app")

	ctx, cancel := context.WithCancel(context.Background())
	defer cancel()

	sigs := make(chan os.Signal, 1)
	signal.Notify(sigs, syscall.SIGINT, syscall.SIGTERM)
	go func() {
		sig := <-sigs
		log.Info("Received signal, shutting down", "signal", sig)
		cancel()
	}()

	hub := websocket.NewHub(logger)
	go hub.Run(ctx)

	publishers := []usecase.Publisher{hub}

	if conf.Events.UsesRedis() {
		redisClient, err := redistransport.Connect(ctx, conf.Redis.GetRedisAddr())
		if err != nil {
			return fmt.Errorf("could not connect to redis: %w", err)
		}

		defer func() {
			if err = redisClient.Close(); err != nil {
				log.Error("could not close redis client", "error", err)
			}
		}()

		publishers = append(publishers, redistransport.NewPublisher(redisClient, conf.Events.Channel))
		log.Info("Publishing events to Redis", "addr", conf.Redis.GetRedisAddr(), "channel", conf.Events.Channel)
	}

	if conf.Events.UsesNATS() {
		natsConn, err := natstransport.Connect(conf.NATS.URL, natsClientName)
		if err != nil {
			return fmt.Errorf("could not connect to nats: %w", err)
		}

		defer natsConn.Close()

		publishers = append(publishers, natstransport.NewPublisher(natsConn, conf.Events.Channel))
		log.Info("Publishing events to NATS", "url", conf.NATS.URL, "subject", conf.Events.Channel)
	}

	rules := checkers.Rules{ForceCapture: !conf.Rules.OptionalCapture}
	center := usecase.NewGameCenter(logger, rules, repository.NewGameRepository(), repository.NewReplayRepository(), publishers...)

	router := rest.NewRouter(logger, center, hub)

	log.Info("Starting HTTP server", "port", conf.HTTPPort, "force_capture", rules.ForceCapture)
	if err := rest.Start(ctx, conf.HTTPPort, router); err != nil {
		return fmt.Errorf("HTTP server error: %w", err)
	}

	log.Info("Application context canceled, shutting down")

	return nil
}

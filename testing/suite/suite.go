package suite

import (
	"context"
	"log/slog"
	"os"
	"testing"
	"time"

	"github.com/nats-io/nats.go"
	"github.com/ory/dockertest/v3"
	"github.com/ory/dockertest/v3/docker"
	"github.com/redis/go-redis/v9"
)

const (
	expireDuration  = 120
	maxWaitDuration = 120 * time.Second
)

const (
	redisPort  = "6379/tcp"
	redisImage = "redis"
	redisTag   = "alpine"

	natsPort  = "4222/tcp"
	natsImage = "nats"
	natsTag   = "2.10-alpine"
)

type Suite struct {
	*testing.T
	Logger *slog.Logger

	Redis *redis.Client
	NATS  *nats.Conn
}

// New starts a Redis container for the test. The test is skipped when docker is not reachable.
func New(t *testing.T) (context.Context, *Suite) {
	t.Helper()

	ctx, st, pool := newSuite(t)

	resource := run(t, pool, redisImage, redisTag)
	redisHost := resource.GetHostPort(redisPort)

	if err := pool.Retry(func() error {
		st.Redis = redis.NewClient(&redis.Options{
			Addr: redisHost,
		})
		return st.Redis.Ping(ctx).Err()
	}); err != nil {
		t.Fatalf("could not connect to redis: %v", err)
	}

	if err := st.Redis.FlushDB(ctx).Err(); err != nil {
		t.Fatalf("could not flush database: %v", err)
	}

	t.Cleanup(func() {
		_ = st.Redis.Close()
	})

	return ctx, st
}

// NewNATS starts a NATS container for the test. The test is skipped when docker is not reachable.
func NewNATS(t *testing.T) (context.Context, *Suite) {
	t.Helper()

	ctx, st, pool := newSuite(t)

	resource := run(t, pool, natsImage, natsTag)
	natsURL := "nats://" + resource.GetHostPort(natsPort)

	if err := pool.Retry(func() error {
		var err error
		st.NATS, err = nats.Connect(natsURL)
		return err
	}); err != nil {
		t.Fatalf("could not connect to nats: %v", err)
	}

	t.Cleanup(func() {
		st.NATS.Close()
	})

	return ctx, st
}

func newSuite(t *testing.T) (context.Context, *Suite, *dockertest.Pool) {
	t.Helper()

	ctx, cancel := context.WithTimeout(context.Background(), maxWaitDuration)
	t.Cleanup(func() {
		cancel()
	})

	logger := slog.New(slog.NewJSONHandler(os.Stdout, &slog.HandlerOptions{Level: slog.LevelInfo}))

	pool, err := dockertest.NewPool("")
	if err != nil {
		t.Skipf("could not connect to docker: %v", err)
	}

	if err = pool.Client.Ping(); err != nil {
		t.Skipf("docker is not reachable: %v", err)
	}

	// exponential backoff-retry, because the application in the container might not be ready to accept connections yet
	pool.MaxWait = maxWaitDuration

	return ctx, &Suite{T: t, Logger: logger}, pool
}

// run pulls an image, creates a container based on it and runs it until the test ends.
func run(t *testing.T, pool *dockertest.Pool, image, tag string) *dockertest.Resource {
	t.Helper()

	resource, err := pool.RunWithOptions(&dockertest.RunOptions{
		Repository: image,
		Tag:        tag,
		Env:        []string{},
	}, func(config *docker.HostConfig) {
		// set AutoRemove to true so that stopped container goes away by itself
		config.AutoRemove = true
		config.RestartPolicy = docker.RestartPolicy{Name: "no"}
	})
	if err != nil {
		t.Fatalf("could not start resource: %v", err)
	}

	// never returns error
	_ = resource.Expire(expireDuration) // Tell docker to hard kill the container in 120 seconds

	t.Cleanup(func() {
		if err := pool.Purge(resource); err != nil {
			t.Errorf("could not purge resource: %v", err)
		}
	})

	return resource
}

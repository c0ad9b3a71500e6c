package config

import (
	"fmt"

	"github.com/ilyakaznacheev/cleanenv"
)

const (
	BrokerNone  = "none"
	BrokerRedis = "redis"
	BrokerNATS  = "nats"
	BrokerBoth  = "both"
)

type Config struct {
	LogLevel string `yaml:"log-level" env:"LOG_LEVEL" env-default:"info"`
	HTTPPort string `yaml:"http-port" env:"HTTP_PORT" env-default:"9090"`
	Rules    Rules  `yaml:"rules"`
	Events   Events `yaml:"events"`
	Redis    Redis  `yaml:"redis"`
	NATS     NATS   `yaml:"nats"`
}

// Rules are phrased so the zero value is standard play: cleanenv only applies defaults to zero fields.
type Rules struct {
	OptionalCapture bool `yaml:"optional-capture" env:"RULES_OPTIONAL_CAPTURE"`
}

type Events struct {
	Broker  string `yaml:"broker" env:"EVENTS_BROKER" env-default:"none"`
	Channel string `yaml:"channel" env:"EVENTS_CHANNEL" env-default:"checkers.events"`
}

type Redis struct {
	Host string `yaml:"host" env:"REDIS_HOST" env-default:"localhost"`
	Port string `yaml:"port" env:"REDIS_PORT" env-default:"6379"`
}

type NATS struct {
	URL string `yaml:"url" env:"NATS_URL" env-default:"nats://localhost:4222"`
}

// MustLoad - load all configurations in config.yml file.
func MustLoad(path string) *Config {
	config, err := Load(path)
	if err != nil {
		panic(err)
	}

	return config
}

func Load(path string) (*Config, error) {
	config := &Config{}

	if err := cleanenv.ReadConfig(path, config); err != nil {
		return nil, fmt.Errorf("unable to load config file: %w", err)
	}

	if err := config.Events.validate(); err != nil {
		return nil, err
	}

	return config, nil
}

func (that *Redis) GetRedisAddr() string {
	return fmt.Sprintf("%s:%s", that.Host, that.Port)
}

// UsesRedis reports whether events go to Redis.
func (that *Events) UsesRedis() bool {
	return that.Broker == BrokerRedis || that.Broker == BrokerBoth
}

func (that *Events) UsesNATS() bool {
	return that.Broker == BrokerNATS || that.Broker == BrokerBoth
}

func (that *Events) validate() error {
	switch that.Broker {
	case BrokerNone, BrokerRedis, BrokerNATS, BrokerBoth:
		return nil
	default:
		return fmt.Errorf("unknown events broker %q", that.Broker)
	}
}

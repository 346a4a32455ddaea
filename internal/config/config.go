package config

import (
	"fmt"
	"net"
	"time"

	"github.com/ilyakaznacheev/cleanenv"
)

type Config struct {
	LogLevel   string    `yaml:"log-level" env:"LOG_LEVEL" env-default:"info"`
	HTTPPort   string    `yaml:"http-port" env:"HTTP_PORT" env-default:"9090"`
	SocketPort string    `yaml:"socket-port" env:"SOCKET_PORT" env-default:"9091"`
	Redis      Redis     `yaml:"redis"`
	WebSocket  WebSocket `yaml:"websocket"`
	Session    Session   `yaml:"session"`
}

// Redis configures the optional match history store.
type Redis struct {
	Enabled      bool          `yaml:"enabled" env:"REDIS_ENABLED" env-default:"false"`
	Host         string        `yaml:"host" env:"REDIS_HOST" env-default:"localhost"`
	Port         string        `yaml:"port" env:"REDIS_PORT" env-default:"6379"`
	HistoryLimit int64         `yaml:"history-limit" env:"REDIS_HISTORY_LIMIT" env-default:"20"`
	HistoryTTL   time.Duration `yaml:"history-ttl" env:"REDIS_HISTORY_TTL" env-default:"24h"`
}

type WebSocket struct {
	WriteTimeout   time.Duration `yaml:"write-timeout" env:"WS_WRITE_TIMEOUT" env-default:"10s"`
	PongTimeout    time.Duration `yaml:"pong-timeout" env:"WS_PONG_TIMEOUT" env-default:"60s"`
	SendBuffer     int           `yaml:"send-buffer" env:"WS_SEND_BUFFER" env-default:"16"`
	ReadLimit      int64         `yaml:"read-limit" env:"WS_READ_LIMIT" env-default:"4096"`
	AllowedOrigins []string      `yaml:"allowed-origins" env:"WS_ALLOWED_ORIGINS"`
}

// Session controls how sessions nobody is connected to get reclaimed.
type Session struct {
	IdleTimeout  time.Duration `yaml:"idle-timeout" env:"SESSION_IDLE_TIMEOUT" env-default:"10m"`
	ReapInterval time.Duration `yaml:"reap-interval" env:"SESSION_REAP_INTERVAL" env-default:"1m"`
}

// MustLoad - load all configurations in config.yml file.
func MustLoad(path string) *Config {
	config, err := Load(path)
	if err != nil {
		panic(err)
	}

	return config
}

// Load - reads path, then applies environment overrides and defaults.
func Load(path string) (*Config, error) {
	config := &Config{}

	if err := cleanenv.ReadConfig(path, config); err != nil {
		return nil, fmt.Errorf("unable to load config file: %w", err)
	}

	return config, nil
}

func (that *Redis) GetRedisAddr() string {
	return net.JoinHostPort(that.Host, that.Port)
}

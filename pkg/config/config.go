// Package config loads the server configuration.
//
// Configuration comes from a TOML file with sensible local-development
// defaults; secrets (the Mongo URI and the Redis password) can also be
// supplied through environment variables so they stay out of config
// files:
//
//	DENTFLOW_MONGO_URI
//	DENTFLOW_REDIS_PASSWORD
//
// A missing config file is not an error; the defaults stand.
package config

import (
	"os"
	"time"

	"github.com/BurntSushi/toml"

	"github.com/dentflow/dentflow/pkg/errors"
)

// Config is the full server configuration.
type Config struct {
	Server ServerConfig `toml:"server"`
	Mongo  MongoConfig  `toml:"mongo"`
	Redis  RedisConfig  `toml:"redis"`
	NATS   NATSConfig   `toml:"nats"`
	Flow   FlowConfig   `toml:"flow"`
}

// ServerConfig configures the HTTP listener.
type ServerConfig struct {
	Listen     string   `toml:"listen"`
	SessionTTL duration `toml:"session_ttl"`
}

// MongoConfig configures the question/user/appointment database.
type MongoConfig struct {
	URI      string `toml:"uri"`
	Database string `toml:"database"`
}

// RedisConfig configures the session backend. An empty Addr selects
// the in-memory session store.
type RedisConfig struct {
	Addr     string `toml:"addr"`
	Password string `toml:"password"`
	DB       int    `toml:"db"`
}

// NATSConfig configures the realtime refresh channel. An empty URL
// disables publishing.
type NATSConfig struct {
	URL string `toml:"url"`
}

// FlowConfig configures the questionnaire canvas.
type FlowConfig struct {
	// RootQuestionID pins the flow's entry question. When empty the
	// graph falls back to the first question without incoming routes.
	RootQuestionID string `toml:"root_question_id"`
}

// duration wraps time.Duration for TOML string decoding ("24h").
type duration time.Duration

func (d *duration) UnmarshalText(text []byte) error {
	parsed, err := time.ParseDuration(string(text))
	if err != nil {
		return err
	}
	*d = duration(parsed)
	return nil
}

// Std returns the wrapped time.Duration.
func (d duration) Std() time.Duration { return time.Duration(d) }

// Default returns the local-development configuration.
func Default() Config {
	return Config{
		Server: ServerConfig{
			Listen:     ":8080",
			SessionTTL: duration(24 * time.Hour),
		},
		Mongo: MongoConfig{
			URI:      "mongodb://localhost:27017",
			Database: "dentflow",
		},
	}
}

// Load reads the TOML file at path on top of the defaults and applies
// environment overrides. An empty path or a missing file yields the
// defaults.
func Load(path string) (Config, error) {
	cfg := Default()

	if path != "" {
		data, err := os.ReadFile(path)
		switch {
		case os.IsNotExist(err):
			// Defaults stand.
		case err != nil:
			return Config{}, errors.Wrap(errors.ErrCodeInvalidInput, err, "reading config %s", path)
		default:
			if err := toml.Unmarshal(data, &cfg); err != nil {
				return Config{}, errors.Wrap(errors.ErrCodeInvalidFormat, err, "parsing config %s", path)
			}
		}
	}

	if uri := os.Getenv("DENTFLOW_MONGO_URI"); uri != "" {
		cfg.Mongo.URI = uri
	}
	if pw := os.Getenv("DENTFLOW_REDIS_PASSWORD"); pw != "" {
		cfg.Redis.Password = pw
	}
	return cfg, nil
}

// Package config loads client settings from the environment.
package config

import (
	"fmt"
	"time"

	"github.com/kelseyhightower/envconfig"
)

type Config struct {
	Token      string        `envconfig:"SIMPLEGEO_TOKEN"`
	Secret     string        `envconfig:"SIMPLEGEO_SECRET"`
	Realm      string        `envconfig:"SIMPLEGEO_REALM" default:"http://api.simplegeo.com"`
	Debug      bool          `envconfig:"SIMPLEGEO_DEBUG" default:"false"`
	Timeout    time.Duration `envconfig:"SIMPLEGEO_TIMEOUT" default:"0s"`
	UserAgent  string        `envconfig:"SIMPLEGEO_USER_AGENT" default:"simplegeo-go/0.1"`
	LogLevel   string        `envconfig:"LOG_LEVEL" default:"info"`
	LogConsole bool          `envconfig:"LOG_CONSOLE" default:"false"`
}

// HasCredentials reports whether both halves of the credential pair are set.
func (c Config) HasCredentials() bool {
	return c.Token != "" && c.Secret != ""
}

func FromEnv() (Config, error) {
	var cfg Config
	if err := envconfig.Process("", &cfg); err != nil {
		return Config{}, fmt.Errorf("load config: %w", err)
	}
	return cfg, nil
}

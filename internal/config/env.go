// Package config defines environment configuration structs and loaders.
package config

import (
	"strings"
	"time"

	"github.com/caarlos0/env/v11"
)

type AppConfig struct {
	SyntheticAPIEnvConfig
	UIEnvConfig
	LogEnvConfig
	MockAPIEnvConfig
}

func LoadConfig() (*AppConfig, error) {
	cfg := &AppConfig{}
	if err := env.Parse(cfg); err != nil {
		return nil, err
	}
	return cfg, nil
}

// SyntheticAPIEnvConfig configures synthetic data API access.
type SyntheticAPIEnvConfig struct {
	SyntheticAPIUrl string        `env:"SYNTHETIC_API_URL" envDefault:"http://localhost:5003"`
	ClientTimeout   time.Duration `env:"CLIENT_TIMEOUT" envDefault:"180s"`
	Volume          int           `env:"GENERATE_VOLUME" envDefault:"10"`
	DefaultModel    string        `env:"DEFAULT_MODEL" envDefault:"claude-2.1"`
}

// UIEnvConfig configures the chat front end.
type UIEnvConfig struct {
	Models              []string      `env:"MODELS" envSeparator:"," envDefault:"claude-2.1,claude-3-haiku,gpt-4o-mini"`
	DefaultOutputFormat string        `env:"DEFAULT_OUTPUT_FORMAT" envDefault:"csv"`
	NoticeTTL           time.Duration `env:"NOTICE_TTL" envDefault:"3s"`
}

// LogEnvConfig controls log level and destination. It is passed to
// logger.Init through logger.WithEnvironment and logger.WithFile.
type LogEnvConfig struct {
	Environment string `env:"ENVIRONMENT" envDefault:"dev"`
	LogFile     string `env:"LOG_FILE"`
}

// MockAPIEnvConfig configures the local stand-in backend.
type MockAPIEnvConfig struct {
	MockAPIHost   string `env:"MOCK_API_HOST" envDefault:"127.0.0.1"`
	MockAPIPort   int    `env:"MOCK_API_PORT" envDefault:"5003"`
	BodySizeLimit int    `env:"SERVER_BODY_LIMIT" envDefault:"10485760"`
	PublicBaseURL string `env:"MOCK_API_PUBLIC_URL"`
}

// ModelChoices returns the configured models with the default model first and
// duplicates or blanks removed.
func (c *AppConfig) ModelChoices() []string {
	seen := make(map[string]struct{}, len(c.Models)+1)
	out := make([]string, 0, len(c.Models)+1)
	for _, m := range append([]string{c.DefaultModel}, c.Models...) {
		m = strings.TrimSpace(m)
		if m == "" {
			continue
		}
		if _, ok := seen[m]; ok {
			continue
		}
		seen[m] = struct{}{}
		out = append(out, m)
	}
	return out
}

package config

import (
	"errors"
	"fmt"
	"log"
	"os"
	"strings"

	"github.com/joho/godotenv"
	"github.com/knadh/koanf/parsers/yaml"
	"github.com/knadh/koanf/providers/env"
	"github.com/knadh/koanf/providers/file"
	"github.com/knadh/koanf/v2"
)

const (
	DriverPostgres = "postgres"
	DriverSQLite   = "sqlite"

	ProviderOpenAI    = "openai"
	ProviderAnthropic = "anthropic"

	// ConfigFileEnv names an optional YAML file layered under the environment.
	ConfigFileEnv = "JULENISSE_CONFIG"
)

var ErrInvalidConfig = errors.New("invalid config")

type Config struct {
	Port            string `koanf:"port"`
	DatabaseDriver  string `koanf:"db_driver"`
	DatabaseURL     string `koanf:"db_uri"`
	LLMProvider     string `koanf:"llm_provider"`
	OpenAIAPIKey    string `koanf:"openai_api_key"`
	AnthropicAPIKey string `koanf:"anthropic_api_key"`
	ResponderModel  string `koanf:"responder_model"`
	JudgeModel      string `koanf:"judge_model"`
	MaxToolRounds   int    `koanf:"max_tool_rounds"`
	LeaderboardSize int    `koanf:"leaderboard_size"`
}

func Default() *Config {
	return &Config{
		Port:            "8080",
		DatabaseDriver:  DriverPostgres,
		LLMProvider:     ProviderOpenAI,
		MaxToolRounds:   10,
		LeaderboardSize: 5,
	}
}

// Load builds a Config from defaults, the optional YAML file, a .env file and
// the process environment, in increasing order of precedence.
func Load() (*Config, error) {
	if err := godotenv.Load(); err != nil && !os.IsNotExist(err) {
		log.Printf("[ERROR] Failed to read .env file: %v", err)
	}

	k := koanf.New(".")

	if path := os.Getenv(ConfigFileEnv); path != "" {
		if err := k.Load(file.Provider(path), yaml.Parser()); err != nil {
			return nil, fmt.Errorf("failed to load config file %s: %w", path, err)
		}
	}

	// DB_URI -> db_uri, OPENAI_API_KEY -> openai_api_key, ...
	envProvider := env.Provider("", ".", func(s string) string {
		return strings.ToLower(s)
	})
	if err := k.Load(envProvider, nil); err != nil {
		return nil, fmt.Errorf("failed to load environment: %w", err)
	}

	cfg := Default()
	if err := k.UnmarshalWithConf("", cfg, koanf.UnmarshalConf{Tag: "koanf"}); err != nil {
		return nil, fmt.Errorf("failed to decode config: %w", err)
	}

	cfg.DatabaseDriver = strings.ToLower(strings.TrimSpace(cfg.DatabaseDriver))
	cfg.LLMProvider = strings.ToLower(strings.TrimSpace(cfg.LLMProvider))
	if cfg.DatabaseDriver == "" {
		cfg.DatabaseDriver = DriverPostgres
	}
	if cfg.LLMProvider == "" {
		cfg.LLMProvider = ProviderOpenAI
	}
	if cfg.ResponderModel == "" {
		cfg.ResponderModel = defaultModel(cfg.LLMProvider)
	}
	if cfg.JudgeModel == "" {
		cfg.JudgeModel = cfg.ResponderModel
	}

	return cfg, nil
}

func defaultModel(provider string) string {
	if provider == ProviderAnthropic {
		return "claude-sonnet-4-20250514"
	}
	return "gpt-4o"
}

func (c *Config) Validate() error {
	if c.DatabaseURL == "" {
		return fmt.Errorf("%w: DB_URI environment variable is required", ErrInvalidConfig)
	}

	switch c.DatabaseDriver {
	case DriverPostgres, DriverSQLite:
	default:
		return fmt.Errorf("%w: unknown database driver %q", ErrInvalidConfig, c.DatabaseDriver)
	}

	switch c.LLMProvider {
	case ProviderOpenAI:
		if c.OpenAIAPIKey == "" {
			return fmt.Errorf("%w: OPENAI_API_KEY environment variable is required", ErrInvalidConfig)
		}
	case ProviderAnthropic:
		if c.AnthropicAPIKey == "" {
			return fmt.Errorf("%w: ANTHROPIC_API_KEY environment variable is required", ErrInvalidConfig)
		}
	default:
		return fmt.Errorf("%w: unknown llm provider %q", ErrInvalidConfig, c.LLMProvider)
	}

	if c.MaxToolRounds <= 0 {
		return fmt.Errorf("%w: max_tool_rounds must be positive", ErrInvalidConfig)
	}
	if c.LeaderboardSize <= 0 {
		return fmt.Errorf("%w: leaderboard_size must be positive", ErrInvalidConfig)
	}

	return nil
}

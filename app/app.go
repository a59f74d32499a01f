package app

import (
	"context"
	"fmt"
	"log"

	"julenisse/config"
	"julenisse/db"
	"julenisse/metrics"
	"julenisse/services"
	"julenisse/services/agent"
	"julenisse/services/judge"

	"github.com/tmc/langchaingo/llms"
	lcanthropic "github.com/tmc/langchaingo/llms/anthropic"
	"github.com/tmc/langchaingo/llms/openai"
)

// App holds the services shared by the web server, the chat CLI and the
// deed importer.
type App struct {
	Config      *config.Config
	Database    *db.Database
	Metrics     *metrics.Metrics
	Reputations *services.ReputationService
	Threads     *services.ThreadService
	Agent       *agent.Service
}

func New(ctx context.Context, cfg *config.Config) (*App, error) {
	database, err := db.Open(cfg.DatabaseDriver, cfg.DatabaseURL)
	if err != nil {
		return nil, fmt.Errorf("failed to initialize database: %w", err)
	}

	if err := database.EnsureSchema(ctx); err != nil {
		database.Close()
		return nil, fmt.Errorf("failed to initialize schema: %w", err)
	}

	judgeModel, err := NewLanguageModel(cfg, cfg.JudgeModel)
	if err != nil {
		database.Close()
		return nil, err
	}

	responder, err := NewResponder(cfg)
	if err != nil {
		database.Close()
		return nil, err
	}

	m := metrics.New()
	reputations := services.NewReputationService(db.NewReputationRepository(database), judge.NewService(judgeModel), m)
	threads := services.NewThreadService(db.NewThreadRepository(database))

	log.Printf("[INFO] Using %s responder %s with %s storage", responder.Provider(), cfg.ResponderModel, database.Driver())

	return &App{
		Config:      cfg,
		Database:    database,
		Metrics:     m,
		Reputations: reputations,
		Threads:     threads,
		Agent:       agent.NewService(responder, threads, reputations, cfg.MaxToolRounds, m),
	}, nil
}

func (a *App) Close() error {
	return a.Database.Close()
}

// NewLanguageModel returns a langchaingo model for the configured provider.
func NewLanguageModel(cfg *config.Config, model string) (llms.Model, error) {
	switch cfg.LLMProvider {
	case config.ProviderOpenAI:
		llm, err := openai.New(
			openai.WithModel(model),
			openai.WithToken(cfg.OpenAIAPIKey),
		)
		if err != nil {
			return nil, fmt.Errorf("failed to create OpenAI client: %w", err)
		}
		return llm, nil
	case config.ProviderAnthropic:
		llm, err := lcanthropic.New(
			lcanthropic.WithModel(model),
			lcanthropic.WithToken(cfg.AnthropicAPIKey),
		)
		if err != nil {
			return nil, fmt.Errorf("failed to create Anthropic client: %w", err)
		}
		return llm, nil
	default:
		return nil, fmt.Errorf("%w: unknown llm provider %q", config.ErrInvalidConfig, cfg.LLMProvider)
	}
}

// NewResponder picks the streaming Anthropic responder when Anthropic is
// configured and the langchaingo responder otherwise.
func NewResponder(cfg *config.Config) (agent.Responder, error) {
	if cfg.LLMProvider == config.ProviderAnthropic {
		return agent.NewAnthropicResponder(cfg.AnthropicAPIKey, cfg.ResponderModel), nil
	}

	llm, err := NewLanguageModel(cfg, cfg.ResponderModel)
	if err != nil {
		return nil, err
	}
	return agent.NewLangchainResponder(llm, cfg.LLMProvider), nil
}

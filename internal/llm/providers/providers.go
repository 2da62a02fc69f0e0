package providers

import (
	"fmt"
	"log/slog"

	"github.com/joseph-ayodele/lease-extractor/constants"
	"github.com/joseph-ayodele/lease-extractor/internal/common"
	"github.com/joseph-ayodele/lease-extractor/internal/llm"
	"github.com/joseph-ayodele/lease-extractor/internal/llm/gemini"
	"github.com/joseph-ayodele/lease-extractor/internal/llm/openai"
)

// NewCompleter builds the completion client selected by cfg.Provider.
func NewCompleter(cfg common.LLMConfig, logger *slog.Logger) (llm.Completer, error) {
	switch cfg.Provider {
	case constants.ProviderOpenAI, "":
		return openai.NewClient(openai.Config{
			APIKey:      cfg.OpenAIKey,
			BaseURL:     cfg.OpenAIBaseURL,
			Model:       cfg.OpenAIModel,
			Temperature: cfg.Temperature,
			MaxTokens:   cfg.MaxTokens,
			Timeout:     cfg.Timeout,
		}, logger), nil
	case constants.ProviderGemini:
		return gemini.NewClient(gemini.Config{
			APIKey:      cfg.GeminiKey,
			BaseURL:     cfg.GeminiBaseURL,
			Model:       cfg.GeminiModel,
			Temperature: cfg.Temperature,
			MaxTokens:   cfg.MaxTokens,
			Timeout:     cfg.Timeout,
		}, logger), nil
	default:
		return nil, common.NewAppError("CONFIG_ERROR",
			fmt.Sprintf("unsupported llm provider %q", cfg.Provider), common.ErrInvalidInput)
	}
}

package ai

import (
	"context"
	"fmt"

	"quizforge/internal/config"
	"quizforge/internal/domain"
	"quizforge/internal/logger"

	"github.com/tmc/langchaingo/llms"
	"github.com/tmc/langchaingo/llms/googleai"
	"github.com/tmc/langchaingo/llms/openai"
	"go.uber.org/zap"
)

const groqBaseURL = "https://api.groq.com/openai/v1"

// Collaborators bundles the three AI contracts a quiz service needs. All
// implementations returned by NewCollaborators are safe for concurrent use.
type Collaborators struct {
	Generator domain.QuestionGenerator
	Grader    domain.AnswerGrader
	Hinter    domain.HintGenerator
}

// NewCollaborators builds the AI collaborator set for the configured
// provider. "googleai" talks to Gemini models, "groq" talks to Groq's
// OpenAI-compatible endpoint, and "stub" produces deterministic local
// output for development and tests.
func NewCollaborators(ctx context.Context, cfg config.AIConfig) (*Collaborators, error) {
	switch cfg.Provider {
	case "stub", "":
		logger.Get().Info("using stub AI collaborators")
		stub := NewStubCollaborator()
		return &Collaborators{Generator: stub, Grader: stub, Hinter: stub}, nil

	case "googleai":
		if cfg.APIKey == "" {
			return nil, fmt.Errorf("googleai provider requires an API key")
		}
		model := cfg.Model
		if model == "" {
			model = "gemini-1.5-flash"
		}
		llm, err := googleai.New(ctx,
			googleai.WithAPIKey(cfg.APIKey),
			googleai.WithDefaultModel(model),
		)
		if err != nil {
			return nil, fmt.Errorf("failed to create googleai client: %w", err)
		}
		return newLLMCollaborators(llm, cfg), nil

	case "groq":
		if cfg.APIKey == "" {
			return nil, fmt.Errorf("groq provider requires an API key")
		}
		model := cfg.Model
		if model == "" {
			model = "llama-3.1-8b-instant"
		}
		llm, err := openai.New(
			openai.WithToken(cfg.APIKey),
			openai.WithModel(model),
			openai.WithBaseURL(groqBaseURL),
		)
		if err != nil {
			return nil, fmt.Errorf("failed to create groq client: %w", err)
		}
		return newLLMCollaborators(llm, cfg), nil

	default:
		return nil, fmt.Errorf("unknown AI provider: %q", cfg.Provider)
	}
}

func newLLMCollaborators(model llms.Model, cfg config.AIConfig) *Collaborators {
	logger.Get().Info("using LLM AI collaborators",
		zap.String("provider", cfg.Provider),
		zap.String("model", cfg.Model))
	c := NewLLMCollaborator(model, cfg.RequestTimeout)
	return &Collaborators{Generator: c, Grader: c, Hinter: c}
}

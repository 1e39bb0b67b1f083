package ai

import (
	"context"
	"errors"
	"fmt"
	"strings"

	"github.com/cloudwego/eino-ext/components/model/claude"
	"github.com/cloudwego/eino-ext/components/model/gemini"
	"github.com/cloudwego/eino-ext/components/model/openai"
	"github.com/cloudwego/eino/components/model"
	"github.com/cloudwego/eino/schema"
	"google.golang.org/genai"

	"mediaconv/internal/apperr"
	"mediaconv/internal/config"
	"mediaconv/internal/logger"
)

const summaryPrompt = "Please provide a concise summary of the following text:"

// Summarizer condenses free text with a chat model.
type Summarizer interface {
	Summarize(ctx context.Context, text string) (string, error)
}

type chatSummarizer struct {
	chatModel model.BaseChatModel
	provider  string
	model     string
	maxTokens int
	retry     RetryPolicy
}

// NewSummarizer builds the chat model for the configured summary provider.
func NewSummarizer(ctx context.Context, cfg *config.Config) (Summarizer, error) {
	if cfg == nil {
		return nil, errors.New("config required")
	}
	provider := cfg.AI.SummaryProvider
	provCfg, ok := cfg.Provider(provider)
	if !ok {
		return nil, fmt.Errorf("invalid provider: %s", provider)
	}
	modelName := cfg.SummaryModel()
	maxTokens := cfg.AI.SummaryMaxTokens

	var (
		chatModel model.BaseChatModel
		err       error
	)
	switch provider {
	case config.ProviderOpenAI:
		chatModel, err = openai.NewChatModel(ctx, &openai.ChatModelConfig{
			BaseURL:   provCfg.BaseURL,
			Model:     modelName,
			APIKey:    provCfg.APIKey,
			MaxTokens: &maxTokens,
		})
	case config.ProviderGemini:
		var client *genai.Client
		client, err = genai.NewClient(ctx, &genai.ClientConfig{
			APIKey:  provCfg.APIKey,
			Backend: genai.BackendGeminiAPI,
		})
		if err != nil {
			return nil, fmt.Errorf("create gemini client: %w", err)
		}
		chatModel, err = gemini.NewChatModel(ctx, &gemini.Config{
			Client: client,
			Model:  modelName,
		})
	case config.ProviderClaude:
		var baseURLPtr *string
		if provCfg.BaseURL != "" {
			baseURLPtr = &provCfg.BaseURL
		}
		chatModel, err = claude.NewChatModel(ctx, &claude.Config{
			APIKey:    provCfg.APIKey,
			Model:     modelName,
			BaseURL:   baseURLPtr,
			MaxTokens: maxTokens,
		})
	default:
		return nil, fmt.Errorf("invalid provider: %s", provider)
	}
	if err != nil {
		return nil, fmt.Errorf("init %s chat model: %w", provider, err)
	}

	return newChatSummarizer(chatModel, provider, modelName, maxTokens, RetryPolicy{
		Timeout:     cfg.AITimeout(),
		MaxAttempts: cfg.AI.MaxAttempts,
	}), nil
}

func newChatSummarizer(chatModel model.BaseChatModel, provider, modelName string, maxTokens int, retry RetryPolicy) *chatSummarizer {
	if maxTokens <= 0 {
		maxTokens = 150
	}
	if retry.Retryable == nil {
		retry.Retryable = isTransient
	}
	return &chatSummarizer{
		chatModel: chatModel,
		provider:  provider,
		model:     modelName,
		maxTokens: maxTokens,
		retry:     retry,
	}
}

// Summarize returns the first completion for the summary prompt applied to text.
func (s *chatSummarizer) Summarize(ctx context.Context, text string) (string, error) {
	if strings.TrimSpace(text) == "" {
		return "", apperr.New(apperr.KindMissingInput, "No text provided")
	}
	log := logger.FromContext(ctx)

	messages := []*schema.Message{
		schema.SystemMessage(summaryPrompt),
		schema.UserMessage(text),
	}
	var summary string
	err := s.retry.Do(ctx, func(ctx context.Context) error {
		resp, err := s.chatModel.Generate(ctx, messages, model.WithMaxTokens(s.maxTokens))
		if err != nil {
			log.Warn("summary attempt failed", "provider", s.provider, "model", s.model, "error", err)
			return err
		}
		if resp == nil {
			return errors.New("empty completion")
		}
		summary = resp.Content
		return nil
	})
	if err != nil {
		return "", apperr.Wrap(apperr.KindExternalService, "summarization failed", err)
	}
	return summary, nil
}

// CacheKeyPrefix identifies the provider and model so cached summaries are
// never shared across them.
func (s *chatSummarizer) CacheKeyPrefix() string {
	return s.provider + "|" + s.model
}

package ai

import (
	"context"
	"errors"
	"net/http"

	openai "github.com/sashabaranov/go-openai"

	"mediaconv/internal/apperr"
	"mediaconv/internal/config"
	"mediaconv/internal/logger"
	"mediaconv/internal/media"
)

// Transcriber turns a speech recording into text.
type Transcriber interface {
	Transcribe(ctx context.Context, audioPath string) (string, error)
}

type whisperTranscriber struct {
	client *openai.Client
	model  string
	retry  RetryPolicy
}

// NewTranscriber builds the OpenAI speech-to-text client from config.
func NewTranscriber(cfg *config.Config) (Transcriber, error) {
	if cfg == nil {
		return nil, errors.New("config required")
	}
	if cfg.Providers.OpenAI.APIKey == "" {
		return nil, errors.New("openai api key required for transcription")
	}
	return newWhisperTranscriber(cfg.Providers.OpenAI, cfg.AI.TranscriptionModel, RetryPolicy{
		Timeout:     cfg.AITimeout(),
		MaxAttempts: cfg.AI.MaxAttempts,
	}), nil
}

func newWhisperTranscriber(p config.ProviderConfig, model string, retry RetryPolicy) *whisperTranscriber {
	clientCfg := openai.DefaultConfig(p.APIKey)
	if p.BaseURL != "" {
		clientCfg.BaseURL = p.BaseURL
	}
	if model == "" {
		model = openai.Whisper1
	}
	retry.Retryable = isRetryableOpenAI
	return &whisperTranscriber{
		client: openai.NewClientWithConfig(clientCfg),
		model:  model,
		retry:  retry,
	}
}

// Transcribe uploads the whole file and returns the recognized text verbatim.
func (t *whisperTranscriber) Transcribe(ctx context.Context, audioPath string) (string, error) {
	if err := media.CheckFile(audioPath, media.CategoryAudio); err != nil {
		return "", err
	}
	log := logger.FromContext(ctx)

	var text string
	attempt := 0
	err := t.retry.Do(ctx, func(ctx context.Context) error {
		attempt++
		resp, err := t.client.CreateTranscription(ctx, openai.AudioRequest{
			Model:    t.model,
			FilePath: audioPath,
		})
		if err != nil {
			log.Warn("transcription attempt failed", "attempt", attempt, "error", err)
			return err
		}
		text = resp.Text
		return nil
	})
	if err != nil {
		return "", apperr.Wrap(apperr.KindExternalService, "transcription failed", err)
	}
	log.Debug("transcription done", "chars", len(text), "attempts", attempt)
	return text, nil
}

func isRetryableOpenAI(err error) bool {
	var apiErr *openai.APIError
	if errors.As(err, &apiErr) {
		return retryableStatus(apiErr.HTTPStatusCode)
	}
	var reqErr *openai.RequestError
	if errors.As(err, &reqErr) {
		return retryableStatus(reqErr.HTTPStatusCode)
	}
	return isTransient(err)
}

func retryableStatus(code int) bool {
	return code == http.StatusTooManyRequests || code >= http.StatusInternalServerError
}

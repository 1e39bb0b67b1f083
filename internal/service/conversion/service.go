package conversion

import (
	"context"
	"errors"
	"fmt"
	"os"
	"path/filepath"
	"strings"

	"mediaconv/internal/apperr"
	"mediaconv/internal/logger"
	"mediaconv/internal/models"
	"mediaconv/internal/service/ai"
)

// ConvertedAudioName is the file name of the WAV produced by video_to_audio.
const ConvertedAudioName = "converted_audio.wav"

const extractedAudioName = "extracted_audio.wav"

// AudioExtractor pulls the audio track out of a video container.
type AudioExtractor interface {
	ExtractAudio(ctx context.Context, videoPath, outputPath string) (string, error)
}

// Service runs the conversion pipelines on files already saved to a workspace.
type Service struct {
	extractor   AudioExtractor
	transcriber ai.Transcriber
	summarizer  ai.Summarizer
}

func NewService(extractor AudioExtractor, transcriber ai.Transcriber, summarizer ai.Summarizer) (*Service, error) {
	if extractor == nil || transcriber == nil || summarizer == nil {
		return nil, errors.New("extractor, transcriber and summarizer are required")
	}
	return &Service{
		extractor:   extractor,
		transcriber: transcriber,
		summarizer:  summarizer,
	}, nil
}

// Run converts req.FilePath according to req.Mode. Derived files are written
// to req.WorkDir, which the caller owns and removes.
func (s *Service) Run(ctx context.Context, req models.ConversionRequest) (*models.ConversionResult, error) {
	if req.WorkDir == "" {
		return nil, errors.New("work dir required")
	}
	log := logger.FromContext(ctx).With("mode", req.Mode)

	var (
		result models.ConversionResult
		err    error
	)
	switch req.Mode {
	case models.ModeVideoToAudio:
		out := filepath.Join(req.WorkDir, ConvertedAudioName)
		result.AudioPath, err = s.extractor.ExtractAudio(ctx, req.FilePath, out)
		if err != nil {
			return nil, err
		}
		// summarize does not apply to a binary download
		return &result, nil
	case models.ModeAudioToText:
		result.Text, err = s.transcriber.Transcribe(ctx, req.FilePath)
	case models.ModeVideoToText:
		result.Text, err = s.videoToText(ctx, req)
	default:
		return nil, apperr.New(apperr.KindInvalidRequest, fmt.Sprintf("Invalid conversion type: %s", req.Mode))
	}
	if err != nil {
		return nil, err
	}
	log.Info("transcript ready", "chars", len(result.Text))

	// an empty transcript has nothing to summarize
	if req.Summarize && strings.TrimSpace(result.Text) != "" {
		result.Summary, err = s.summarizer.Summarize(ctx, result.Text)
		if err != nil {
			return nil, err
		}
	}
	return &result, nil
}

func (s *Service) videoToText(ctx context.Context, req models.ConversionRequest) (string, error) {
	audioPath, err := s.extractor.ExtractAudio(ctx, req.FilePath, filepath.Join(req.WorkDir, extractedAudioName))
	if err != nil {
		return "", err
	}
	defer func() {
		if err := os.Remove(audioPath); err != nil && !errors.Is(err, os.ErrNotExist) {
			logger.FromContext(ctx).Warn("remove extracted audio failed", "path", audioPath, "error", err)
		}
	}()
	return s.transcriber.Transcribe(ctx, audioPath)
}

// Summarize runs the summarizer on text directly.
func (s *Service) Summarize(ctx context.Context, text string) (string, error) {
	return s.summarizer.Summarize(ctx, text)
}

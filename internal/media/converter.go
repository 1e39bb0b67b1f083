package media

import (
	"context"
	"errors"
	"fmt"
	"os"
	"strconv"
	"strings"

	"mediaconv/internal/apperr"
	"mediaconv/internal/config"
	"mediaconv/internal/logger"
)

var errNoAudio = errors.New("no audio stream")

// Converter extracts audio tracks from video files with ffmpeg.
type Converter struct {
	exec       Executor
	ffmpeg     string
	ffprobe    string
	sampleRate int
	channels   int
}

// NewConverter builds a Converter from ffmpeg settings.
func NewConverter(cfg config.FFmpegConfig, exec Executor) *Converter {
	if exec == nil {
		exec = NewExecutor()
	}
	c := &Converter{
		exec:       exec,
		ffmpeg:     cfg.BinaryPath,
		ffprobe:    cfg.ProbePath,
		sampleRate: cfg.SampleRate,
		channels:   cfg.Channels,
	}
	if c.ffmpeg == "" {
		c.ffmpeg = "ffmpeg"
	}
	if c.ffprobe == "" {
		c.ffprobe = "ffprobe"
	}
	if c.sampleRate <= 0 {
		c.sampleRate = 16000
	}
	if c.channels <= 0 {
		c.channels = 1
	}
	return c
}

// HasAudio reports whether the container at path carries at least one audio stream.
func (c *Converter) HasAudio(ctx context.Context, path string) (bool, error) {
	args := []string{
		"-v", "error",
		"-select_streams", "a",
		"-show_entries", "stream=index",
		"-of", "csv=p=0",
		path,
	}
	out, err := c.exec.Execute(ctx, c.ffprobe, args...)
	if err != nil {
		return false, fmt.Errorf("probe streams: %w", err)
	}
	return strings.TrimSpace(out) != "", nil
}

// ExtractAudio writes the audio track of videoPath to outputPath as 16-bit PCM WAV.
// outputPath must be unique to the caller; it is removed again if extraction fails.
func (c *Converter) ExtractAudio(ctx context.Context, videoPath, outputPath string) (string, error) {
	if err := CheckFile(videoPath, CategoryVideo); err != nil {
		return "", err
	}
	log := logger.FromContext(ctx)

	hasAudio, err := c.HasAudio(ctx, videoPath)
	if err != nil {
		return "", fmt.Errorf("extract audio: %w", err)
	}
	if !hasAudio {
		return "", apperr.Wrap(apperr.KindNoAudioTrack, "No audio track found in the video file", errNoAudio)
	}

	log.Info("extracting audio", "video", videoPath, "output", outputPath)

	// -vn drops video, pcm_s16le keeps the output uncompressed.
	args := []string{
		"-i", videoPath,
		"-vn",
		"-ar", strconv.Itoa(c.sampleRate),
		"-ac", strconv.Itoa(c.channels),
		"-c:a", "pcm_s16le",
		"-y",
		outputPath,
	}
	if _, err := c.exec.Execute(ctx, c.ffmpeg, args...); err != nil {
		if rmErr := os.Remove(outputPath); rmErr != nil && !errors.Is(rmErr, os.ErrNotExist) {
			log.Warn("remove partial audio failed", "path", outputPath, "error", rmErr)
		}
		return "", fmt.Errorf("ffmpeg extract audio: %w", err)
	}

	log.Debug("audio extracted", "output", outputPath)
	return outputPath, nil
}

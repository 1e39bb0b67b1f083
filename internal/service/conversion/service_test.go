package conversion

import (
	"context"
	"errors"
	"os"
	"path/filepath"
	"testing"

	"mediaconv/internal/apperr"
	"mediaconv/internal/models"
)

type fakeExtractor struct {
	calls int
	err   error
}

func (f *fakeExtractor) ExtractAudio(_ context.Context, _ string, out string) (string, error) {
	f.calls++
	if f.err != nil {
		return "", f.err
	}
	if err := os.WriteFile(out, []byte("RIFF"), 0o600); err != nil {
		return "", err
	}
	return out, nil
}

type fakeTranscriber struct {
	text      string
	err       error
	gotPath   string
	sawOnDisk bool
}

func (f *fakeTranscriber) Transcribe(_ context.Context, path string) (string, error) {
	f.gotPath = path
	_, statErr := os.Stat(path)
	f.sawOnDisk = statErr == nil
	return f.text, f.err
}

type fakeSummarizer struct {
	calls int
	err   error
}

func (f *fakeSummarizer) Summarize(_ context.Context, text string) (string, error) {
	f.calls++
	if f.err != nil {
		return "", f.err
	}
	return "summary of " + text, nil
}

func newTestService(t *testing.T, ex *fakeExtractor, tr *fakeTranscriber, su *fakeSummarizer) *Service {
	t.Helper()
	svc, err := NewService(ex, tr, su)
	if err != nil {
		t.Fatalf("NewService() error = %v", err)
	}
	return svc
}

func TestRunVideoToAudio(t *testing.T) {
	dir := t.TempDir()
	ex, tr, su := &fakeExtractor{}, &fakeTranscriber{}, &fakeSummarizer{}
	svc := newTestService(t, ex, tr, su)

	res, err := svc.Run(context.Background(), models.ConversionRequest{
		FilePath: filepath.Join(dir, "clip.mp4"), WorkDir: dir, Mode: models.ModeVideoToAudio, Summarize: true,
	})
	if err != nil {
		t.Fatalf("Run() error = %v", err)
	}
	if res.AudioPath != filepath.Join(dir, ConvertedAudioName) {
		t.Fatalf("audio path = %q", res.AudioPath)
	}
	if su.calls != 0 || tr.gotPath != "" {
		t.Fatal("video_to_audio must not transcribe or summarize")
	}
}

func TestRunAudioToText(t *testing.T) {
	dir := t.TempDir()
	upload := filepath.Join(dir, "talk.wav")
	ex, tr, su := &fakeExtractor{}, &fakeTranscriber{text: "hello world"}, &fakeSummarizer{}
	svc := newTestService(t, ex, tr, su)

	res, err := svc.Run(context.Background(), models.ConversionRequest{
		FilePath: upload, WorkDir: dir, Mode: models.ModeAudioToText, Summarize: true,
	})
	if err != nil {
		t.Fatalf("Run() error = %v", err)
	}
	if res.Text != "hello world" || res.Summary != "summary of hello world" {
		t.Fatalf("unexpected result %#v", res)
	}
	if tr.gotPath != upload || ex.calls != 0 {
		t.Fatalf("audio_to_text should transcribe the upload directly, got %q", tr.gotPath)
	}
}

func TestRunVideoToTextRemovesExtractedAudio(t *testing.T) {
	dir := t.TempDir()
	ex, tr, su := &fakeExtractor{}, &fakeTranscriber{text: "spoken words"}, &fakeSummarizer{}
	svc := newTestService(t, ex, tr, su)

	res, err := svc.Run(context.Background(), models.ConversionRequest{
		FilePath: filepath.Join(dir, "clip.mp4"), WorkDir: dir, Mode: models.ModeVideoToText,
	})
	if err != nil {
		t.Fatalf("Run() error = %v", err)
	}
	if res.Text != "spoken words" || res.Summary != "" || su.calls != 0 {
		t.Fatalf("unexpected result %#v (summaries %d)", res, su.calls)
	}
	if !tr.sawOnDisk {
		t.Fatal("extracted audio should exist while transcribing")
	}
	if _, err := os.Stat(tr.gotPath); !errors.Is(err, os.ErrNotExist) {
		t.Fatalf("extracted audio left behind: %v", err)
	}
}

func TestRunVideoToTextRemovesAudioOnTranscriptionFailure(t *testing.T) {
	dir := t.TempDir()
	failure := apperr.Wrap(apperr.KindExternalService, "transcription failed", errors.New("boom"))
	tr := &fakeTranscriber{err: failure}
	svc := newTestService(t, &fakeExtractor{}, tr, &fakeSummarizer{})

	_, err := svc.Run(context.Background(), models.ConversionRequest{
		FilePath: filepath.Join(dir, "clip.mp4"), WorkDir: dir, Mode: models.ModeVideoToText,
	})
	if !apperr.Is(err, apperr.KindExternalService) {
		t.Fatalf("expected external service error, got %v", err)
	}
	if _, err := os.Stat(tr.gotPath); !errors.Is(err, os.ErrNotExist) {
		t.Fatalf("extracted audio left behind: %v", err)
	}
}

func TestRunPropagatesExtractorErrors(t *testing.T) {
	dir := t.TempDir()
	noAudio := apperr.New(apperr.KindNoAudioTrack, "No audio track found in the video file")
	tr := &fakeTranscriber{}
	svc := newTestService(t, &fakeExtractor{err: noAudio}, tr, &fakeSummarizer{})

	for _, mode := range []models.Mode{models.ModeVideoToAudio, models.ModeVideoToText} {
		_, err := svc.Run(context.Background(), models.ConversionRequest{
			FilePath: filepath.Join(dir, "silent.mp4"), WorkDir: dir, Mode: mode,
		})
		if !apperr.Is(err, apperr.KindNoAudioTrack) {
			t.Fatalf("%s: expected no audio track, got %v", mode, err)
		}
	}
	if tr.gotPath != "" {
		t.Fatal("transcriber must not run without audio")
	}
}

func TestRunSummaryFailure(t *testing.T) {
	dir := t.TempDir()
	su := &fakeSummarizer{err: apperr.New(apperr.KindExternalService, "summarization failed")}
	svc := newTestService(t, &fakeExtractor{}, &fakeTranscriber{text: "text"}, su)

	_, err := svc.Run(context.Background(), models.ConversionRequest{
		FilePath: filepath.Join(dir, "talk.wav"), WorkDir: dir, Mode: models.ModeAudioToText, Summarize: true,
	})
	if !apperr.Is(err, apperr.KindExternalService) {
		t.Fatalf("expected external service error, got %v", err)
	}
}

func TestRunSkipsSummaryForEmptyTranscript(t *testing.T) {
	dir := t.TempDir()
	su := &fakeSummarizer{}
	svc := newTestService(t, &fakeExtractor{}, &fakeTranscriber{text: ""}, su)

	res, err := svc.Run(context.Background(), models.ConversionRequest{
		FilePath: filepath.Join(dir, "silence.wav"), WorkDir: dir, Mode: models.ModeAudioToText, Summarize: true,
	})
	if err != nil {
		t.Fatalf("Run() error = %v", err)
	}
	if res.Text != "" || su.calls != 0 {
		t.Fatalf("unexpected result %#v, summaries %d", res, su.calls)
	}
}

func TestRunUnknownMode(t *testing.T) {
	dir := t.TempDir()
	svc := newTestService(t, &fakeExtractor{}, &fakeTranscriber{}, &fakeSummarizer{})

	_, err := svc.Run(context.Background(), models.ConversionRequest{WorkDir: dir, Mode: "text_to_video"})
	if !apperr.Is(err, apperr.KindInvalidRequest) {
		t.Fatalf("expected invalid request, got %v", err)
	}
}

func TestNewServiceRequiresCollaborators(t *testing.T) {
	if _, err := NewService(nil, &fakeTranscriber{}, &fakeSummarizer{}); err == nil {
		t.Fatal("expected error for missing extractor")
	}
}

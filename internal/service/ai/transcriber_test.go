package ai

import (
	"context"
	"net/http"
	"net/http/httptest"
	"os"
	"path/filepath"
	"sync/atomic"
	"testing"

	"mediaconv/internal/apperr"
	"mediaconv/internal/config"
)

var wavFixture = append([]byte("RIFF\x24\x08\x00\x00WAVEfmt \x10\x00\x00\x00\x01\x00\x01\x00"), make([]byte, 32)...)

func writeAudio(t *testing.T, name string, data []byte) string {
	t.Helper()
	path := filepath.Join(t.TempDir(), name)
	if err := os.WriteFile(path, data, 0o644); err != nil {
		t.Fatalf("write audio: %v", err)
	}
	return path
}

type transcriptionServer struct {
	calls  atomic.Int32
	status []int
	model  atomic.Value
}

func (s *transcriptionServer) handler(t *testing.T) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		n := int(s.calls.Add(1))
		if r.URL.Path != "/v1/audio/transcriptions" {
			t.Errorf("unexpected path %s", r.URL.Path)
		}
		if err := r.ParseMultipartForm(1 << 20); err != nil {
			t.Errorf("parse multipart: %v", err)
		}
		s.model.Store(r.FormValue("model"))
		w.Header().Set("Content-Type", "application/json")
		if n <= len(s.status) {
			w.WriteHeader(s.status[n-1])
			_, _ = w.Write([]byte(`{"error":{"message":"upstream said no","type":"server_error"}}`))
			return
		}
		_, _ = w.Write([]byte(`{"text":"hello from the recording"}`))
	}
}

func newTestTranscriber(t *testing.T, srv *transcriptionServer) *whisperTranscriber {
	t.Helper()
	ts := httptest.NewServer(srv.handler(t))
	t.Cleanup(ts.Close)
	return newWhisperTranscriber(config.ProviderConfig{APIKey: "test", BaseURL: ts.URL + "/v1"}, "", fastPolicy(3))
}

func TestTranscribe(t *testing.T) {
	srv := &transcriptionServer{}
	tr := newTestTranscriber(t, srv)

	text, err := tr.Transcribe(context.Background(), writeAudio(t, "talk.wav", wavFixture))
	if err != nil {
		t.Fatalf("Transcribe() error = %v", err)
	}
	if text != "hello from the recording" {
		t.Fatalf("text = %q", text)
	}
	if got := srv.model.Load(); got != "whisper-1" {
		t.Fatalf("model = %v, want whisper-1", got)
	}
}

func TestTranscribeRetriesServerErrors(t *testing.T) {
	srv := &transcriptionServer{status: []int{http.StatusServiceUnavailable, http.StatusTooManyRequests}}
	tr := newTestTranscriber(t, srv)

	if _, err := tr.Transcribe(context.Background(), writeAudio(t, "talk.wav", wavFixture)); err != nil {
		t.Fatalf("Transcribe() error = %v", err)
	}
	if got := srv.calls.Load(); got != 3 {
		t.Fatalf("calls = %d, want 3", got)
	}
}

func TestTranscribeClientErrorNotRetried(t *testing.T) {
	srv := &transcriptionServer{status: []int{http.StatusBadRequest}}
	tr := newTestTranscriber(t, srv)

	_, err := tr.Transcribe(context.Background(), writeAudio(t, "talk.wav", wavFixture))
	if !apperr.Is(err, apperr.KindExternalService) {
		t.Fatalf("expected external service error, got %v", err)
	}
	if got := srv.calls.Load(); got != 1 {
		t.Fatalf("calls = %d, want 1", got)
	}
}

func TestTranscribeGivesUpAfterMaxAttempts(t *testing.T) {
	srv := &transcriptionServer{status: []int{500, 500, 500, 500}}
	tr := newTestTranscriber(t, srv)

	_, err := tr.Transcribe(context.Background(), writeAudio(t, "talk.wav", wavFixture))
	if !apperr.Is(err, apperr.KindExternalService) {
		t.Fatalf("expected external service error, got %v", err)
	}
	if got := srv.calls.Load(); got != 3 {
		t.Fatalf("calls = %d, want 3", got)
	}
}

func TestTranscribeRejectsNonAudio(t *testing.T) {
	srv := &transcriptionServer{}
	tr := newTestTranscriber(t, srv)

	_, err := tr.Transcribe(context.Background(), writeAudio(t, "notes.wav", []byte("plain text")))
	if !apperr.Is(err, apperr.KindInvalidFileType) {
		t.Fatalf("expected invalid file type, got %v", err)
	}
	if srv.calls.Load() != 0 {
		t.Fatal("service should not be called for invalid audio")
	}
}

func TestNewTranscriberRequiresKey(t *testing.T) {
	if _, err := NewTranscriber(&config.Config{}); err == nil {
		t.Fatal("expected error without api key")
	}
}

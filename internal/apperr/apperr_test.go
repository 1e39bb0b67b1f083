package apperr

import (
	"errors"
	"fmt"
	"net/http"
	"testing"
)

func TestKindStatusAndCode(t *testing.T) {
	tests := []struct {
		kind   Kind
		code   string
		status int
	}{
		{KindMissingInput, "missing_input", http.StatusBadRequest},
		{KindInvalidRequest, "invalid_request", http.StatusBadRequest},
		{KindInvalidFileType, "invalid_file_type", http.StatusUnsupportedMediaType},
		{KindNoAudioTrack, "no_audio_track", http.StatusUnprocessableEntity},
		{KindPayloadTooLarge, "payload_too_large", http.StatusRequestEntityTooLarge},
		{KindBusy, "busy", http.StatusTooManyRequests},
		{KindExternalService, "external_service_failure", http.StatusBadGateway},
		{KindInternal, "internal", http.StatusInternalServerError},
	}
	for _, tt := range tests {
		t.Run(tt.code, func(t *testing.T) {
			if got := tt.kind.Code(); got != tt.code {
				t.Errorf("Code() = %q, want %q", got, tt.code)
			}
			if got := tt.kind.Status(); got != tt.status {
				t.Errorf("Status() = %d, want %d", got, tt.status)
			}
		})
	}
}

func TestWrapKeepsCause(t *testing.T) {
	cause := errors.New("connection reset")
	err := fmt.Errorf("run pipeline: %w", Wrap(KindExternalService, "transcription failed", cause))

	if !errors.Is(err, cause) {
		t.Fatalf("expected cause to be reachable")
	}
	if got := KindOf(err); got != KindExternalService {
		t.Fatalf("KindOf() = %v, want external", got)
	}
	var appErr *Error
	if !errors.As(err, &appErr) {
		t.Fatalf("expected *Error in chain")
	}
	if appErr.Error() != "transcription failed: connection reset" {
		t.Fatalf("unexpected message %q", appErr.Error())
	}
}

func TestKindOfUnclassified(t *testing.T) {
	if got := KindOf(errors.New("boom")); got != KindInternal {
		t.Fatalf("KindOf() = %v, want internal", got)
	}
	if Is(nil, KindInternal) {
		t.Fatalf("nil error should not match any kind")
	}
	if New(KindNoAudioTrack, "No audio track found in the video file").Error() != "No audio track found in the video file" {
		t.Fatalf("message without cause should be returned verbatim")
	}
}

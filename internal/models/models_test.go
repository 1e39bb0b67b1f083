package models

import "testing"

func TestParseMode(t *testing.T) {
	tests := []struct {
		in      string
		want    Mode
		wantErr bool
	}{
		{"video_to_audio", ModeVideoToAudio, false},
		{"audio_to_text", ModeAudioToText, false},
		{"video_to_text", ModeVideoToText, false},
		{"", "", true},
		{"VIDEO_TO_AUDIO", "", true},
		{"text_to_video", "", true},
	}
	for _, tt := range tests {
		t.Run(tt.in, func(t *testing.T) {
			got, err := ParseMode(tt.in)
			if (err != nil) != tt.wantErr {
				t.Fatalf("ParseMode(%q) error = %v, wantErr %v", tt.in, err, tt.wantErr)
			}
			if got != tt.want {
				t.Fatalf("ParseMode(%q) = %q, want %q", tt.in, got, tt.want)
			}
		})
	}
}

func TestProducesText(t *testing.T) {
	if ModeVideoToAudio.ProducesText() {
		t.Fatal("video_to_audio returns a file, not text")
	}
	if !ModeAudioToText.ProducesText() || !ModeVideoToText.ProducesText() {
		t.Fatal("text modes should produce text")
	}
}

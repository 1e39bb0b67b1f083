package models

import "fmt"

// Mode selects the conversion pipeline for an upload.
type Mode string

const (
	ModeVideoToAudio Mode = "video_to_audio"
	ModeAudioToText  Mode = "audio_to_text"
	ModeVideoToText  Mode = "video_to_text"
)

// ParseMode validates a client supplied conversion_type.
func ParseMode(s string) (Mode, error) {
	switch m := Mode(s); m {
	case ModeVideoToAudio, ModeAudioToText, ModeVideoToText:
		return m, nil
	default:
		return "", fmt.Errorf("unknown conversion type %q", s)
	}
}

// ProducesText reports whether the mode ends in a transcript.
func (m Mode) ProducesText() bool {
	return m == ModeAudioToText || m == ModeVideoToText
}

// ConversionRequest is one validated upload waiting to be converted.
type ConversionRequest struct {
	RequestID string
	FilePath  string
	FileName  string
	WorkDir   string
	Mode      Mode
	Summarize bool
}

// ConversionResult holds whatever a pipeline produced.
type ConversionResult struct {
	Text      string `json:"text"`
	Summary   string `json:"summary,omitempty"`
	AudioPath string `json:"-"`
}

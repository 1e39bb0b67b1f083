package media

import (
	"fmt"
	"path/filepath"
	"strings"

	"github.com/gabriel-vasile/mimetype"

	"mediaconv/internal/apperr"
)

// Category is the media family an upload is expected to belong to.
type Category string

const (
	CategoryVideo Category = "video"
	CategoryAudio Category = "audio"
)

var allowedExtensions = map[Category][]string{
	CategoryVideo: {"mp4", "avi", "mov", "mkv"},
	CategoryAudio: {"wav", "mp3", "ogg", "m4a"},
}

// AllowedFile checks the extension of name against the category allow-list.
func AllowedFile(name string, category Category) bool {
	ext := strings.TrimPrefix(strings.ToLower(filepath.Ext(name)), ".")
	if ext == "" {
		return false
	}
	for _, allowed := range allowedExtensions[category] {
		if ext == allowed {
			return true
		}
	}
	return false
}

// DetectType sniffs the content type of the file at path from its magic bytes.
func DetectType(path string) (string, error) {
	mtype, err := mimetype.DetectFile(path)
	if err != nil {
		return "", err
	}
	return mtype.String(), nil
}

// Validate reports whether the file at path has an allowed extension and a
// detected content type matching category. Audio also accepts video
// containers since audio-only mp4/m4a files are often sniffed as video.
func Validate(path string, category Category) bool {
	if !AllowedFile(path, category) {
		return false
	}
	detected, err := DetectType(path)
	if err != nil {
		return false
	}
	switch category {
	case CategoryVideo:
		return strings.Contains(detected, "video")
	case CategoryAudio:
		return strings.Contains(detected, "audio") || strings.HasPrefix(detected, "video")
	}
	return false
}

// CheckFile is Validate returning a classified error for callers that abort on mismatch.
func CheckFile(path string, category Category) error {
	if Validate(path, category) {
		return nil
	}
	return apperr.New(apperr.KindInvalidFileType, fmt.Sprintf(
		"Invalid %s file. Please upload a valid %s file (%s)",
		category, category, strings.Join(allowedExtensions[category], ", "),
	))
}

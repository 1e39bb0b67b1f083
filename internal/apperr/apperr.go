package apperr

import (
	"errors"
	"net/http"
)

// Kind classifies failures surfaced to API callers.
type Kind int

const (
	KindInternal Kind = iota
	KindMissingInput
	KindInvalidRequest
	KindInvalidFileType
	KindNoAudioTrack
	KindPayloadTooLarge
	KindBusy
	KindExternalService
)

// Code returns the machine readable error code sent in responses.
func (k Kind) Code() string {
	switch k {
	case KindMissingInput:
		return "missing_input"
	case KindInvalidRequest:
		return "invalid_request"
	case KindInvalidFileType:
		return "invalid_file_type"
	case KindNoAudioTrack:
		return "no_audio_track"
	case KindPayloadTooLarge:
		return "payload_too_large"
	case KindBusy:
		return "busy"
	case KindExternalService:
		return "external_service_failure"
	default:
		return "internal"
	}
}

// Status maps the kind to an HTTP status code.
func (k Kind) Status() int {
	switch k {
	case KindMissingInput, KindInvalidRequest:
		return http.StatusBadRequest
	case KindInvalidFileType:
		return http.StatusUnsupportedMediaType
	case KindNoAudioTrack:
		return http.StatusUnprocessableEntity
	case KindPayloadTooLarge:
		return http.StatusRequestEntityTooLarge
	case KindBusy:
		return http.StatusTooManyRequests
	case KindExternalService:
		return http.StatusBadGateway
	default:
		return http.StatusInternalServerError
	}
}

// Error is a classified failure carrying a caller-facing message.
type Error struct {
	Kind    Kind
	Message string
	Err     error
}

func (e *Error) Error() string {
	if e.Err == nil {
		return e.Message
	}
	if e.Message == "" {
		return e.Err.Error()
	}
	return e.Message + ": " + e.Err.Error()
}

func (e *Error) Unwrap() error {
	return e.Err
}

// New returns an error of the given kind.
func New(kind Kind, msg string) *Error {
	return &Error{Kind: kind, Message: msg}
}

// Wrap classifies err under kind, keeping it reachable via errors.Is/As.
func Wrap(kind Kind, msg string, err error) *Error {
	return &Error{Kind: kind, Message: msg, Err: err}
}

// KindOf reports the kind of the first *Error in err's chain.
// Unclassified errors are internal.
func KindOf(err error) Kind {
	var e *Error
	if errors.As(err, &e) {
		return e.Kind
	}
	return KindInternal
}

// Is reports whether err is classified as kind.
func Is(err error, kind Kind) bool {
	return err != nil && KindOf(err) == kind
}

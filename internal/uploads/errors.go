package uploads

import (
	"errors"
	"fmt"
)

// Messages shown to the user when the upstream gives nothing better.
const (
	DefaultErrorMessage     = "An unknown error occurred"
	DefaultTransportMessage = "Upload failed. Check your connection and try again."
)

var (
	ErrNoFileSelected   = errors.New("no file selected")
	ErrUploadInProgress = errors.New("upload already in progress")

	// ErrTransport and ErrHTTPStatus classify an UploadError.
	ErrTransport  = errors.New("analysis service unreachable")
	ErrHTTPStatus = errors.New("analysis service returned an error status")
)

// UploadError is a terminal failure of one upload attempt.
type UploadError struct {
	Kind       error
	StatusCode int
	// Message is safe to show in the error banner.
	Message string
	Err     error
}

func (e *UploadError) Error() string {
	if e.StatusCode != 0 {
		return fmt.Sprintf("upload: status %d: %s", e.StatusCode, e.Message)
	}
	if e.Err != nil {
		return fmt.Sprintf("upload: %s: %v", e.Message, e.Err)
	}
	return "upload: " + e.Message
}

func (e *UploadError) Unwrap() []error {
	out := []error{e.Kind}
	if e.Err != nil {
		out = append(out, e.Err)
	}
	return out
}

// UserMessage returns the banner text for any error returned by the controller.
func UserMessage(err error) string {
	var upErr *UploadError
	switch {
	case err == nil:
		return ""
	case errors.As(err, &upErr):
		return upErr.Message
	case errors.Is(err, ErrNoFileSelected):
		return "Select a file to upload first."
	case errors.Is(err, ErrUploadInProgress):
		return "An upload is already running."
	default:
		return DefaultErrorMessage
	}
}

package syntheticapi

import (
	"errors"
	"fmt"
	"net/http"
	"regexp"
	"strings"
)

const (
	invalidRequestText = "Invalid request format"
	unexpectedText     = "An unexpected error occurred"
)

var (
	// ErrInvalidFileType rejects an upload before any request is made.
	ErrInvalidFileType = errors.New("only .csv files are supported")

	// ErrUnexpected stands in for failures that carry no usable text, such as a
	// recovered panic.
	ErrUnexpected = errors.New("unexpected failure")

	valueErrorPrefix = regexp.MustCompile(`(?i)^Value error, `)
)

// TransportError is returned for every failed request, whether the backend
// answered with a non-2xx status or the request never completed.
type TransportError struct {
	// StatusCode is zero when no response was received.
	StatusCode    int
	Message       string
	ServerMessage string
	Detail        []ValidationDetail
	Timeout       bool
	Err           error
}

func (e *TransportError) Error() string {
	return e.Message
}

func (e *TransportError) Unwrap() error {
	return e.Err
}

func statusError(status int) string {
	return fmt.Sprintf("request failed with status code %d", status)
}

// DisplayMessage converts a submit failure into the text shown in the transcript.
func DisplayMessage(err error) string {
	if err == nil || errors.Is(err, ErrUnexpected) {
		return unexpectedText
	}

	var te *TransportError
	if errors.As(err, &te) {
		if te.StatusCode == http.StatusUnprocessableEntity {
			var raw string
			if len(te.Detail) > 0 {
				raw = te.Detail[0].Msg
			}
			msg := strings.TrimSpace(valueErrorPrefix.ReplaceAllString(raw, ""))
			if msg == "" {
				return invalidRequestText
			}
			return msg
		}
		if te.ServerMessage != "" {
			return te.ServerMessage
		}
		if te.Message != "" {
			return te.Message
		}
		return unexpectedText
	}

	if msg := err.Error(); msg != "" {
		return msg
	}
	return unexpectedText
}

package syntheticapi

import (
	"errors"
	"fmt"
	"testing"
)

func TestDisplayMessage(t *testing.T) {
	tests := []struct {
		name string
		err  error
		want string
	}{
		{
			name: "422 strips value error prefix",
			err: &TransportError{StatusCode: 422, Message: "request failed with status code 422",
				Detail: []ValidationDetail{{Msg: "Value error, volume must be positive"}}},
			want: "volume must be positive",
		},
		{
			name: "422 prefix is case insensitive",
			err: &TransportError{StatusCode: 422,
				Detail: []ValidationDetail{{Msg: "value ERROR, prompt too long "}, {Msg: "second"}}},
			want: "prompt too long",
		},
		{
			name: "422 without detail",
			err:  &TransportError{StatusCode: 422, ServerMessage: "ignored"},
			want: "Invalid request format",
		},
		{
			name: "other status prefers server message",
			err:  &TransportError{StatusCode: 400, Message: "request failed with status code 400", ServerMessage: "bad prompt"},
			want: "bad prompt",
		},
		{
			name: "other status falls back to transport text",
			err:  &TransportError{StatusCode: 502, Message: "request failed with status code 502"},
			want: "request failed with status code 502",
		},
		{
			name: "wrapped transport error",
			err:  fmt.Errorf("submit: %w", &TransportError{Message: "timeout of 100ms exceeded", Timeout: true}),
			want: "timeout of 100ms exceeded",
		},
		{
			name: "unexpected",
			err:  ErrUnexpected,
			want: "An unexpected error occurred",
		},
		{
			name: "plain error",
			err:  errors.New("dial tcp: connection refused"),
			want: "dial tcp: connection refused",
		},
		{
			name: "empty error text",
			err:  errors.New(""),
			want: "An unexpected error occurred",
		},
	}

	for _, tc := range tests {
		t.Run(tc.name, func(t *testing.T) {
			if got := DisplayMessage(tc.err); got != tc.want {
				t.Fatalf("expected %q, got %q", tc.want, got)
			}
		})
	}
}

// Package session holds the chat transcript and the loading/error flags, and
// runs submissions against the synthetic data API.
package session

import (
	"context"
	"fmt"
	"strings"
	"sync"
	"time"

	"github.com/rs/zerolog/log"

	"github.com/tensorplex-labs/synthchat/internal/syntheticapi"
)

// Store owns one chat session. The zero value is not usable; construct it with
// NewStore. All methods are safe for concurrent use.
//
// Submissions may overlap. IsLoading stays true while any of them is pending,
// and results are appended in the order they settle.
type Store struct {
	api       syntheticapi.SyntheticAPIInterface
	now       func() time.Time
	listeners []func(State)

	mu       sync.Mutex
	messages []Message
	inFlight int
	err      string
}

type Option func(*Store)

// WithClock overrides time.Now for message timestamps and ids.
func WithClock(now func() time.Time) Option {
	return func(s *Store) { s.now = now }
}

// WithListener registers fn to receive a snapshot after every change.
func WithListener(fn func(State)) Option {
	return func(s *Store) { s.listeners = append(s.listeners, fn) }
}

func NewStore(api syntheticapi.SyntheticAPIInterface, opts ...Option) *Store {
	s := &Store{
		api: api,
		now: time.Now,
	}
	for _, opt := range opts {
		opt(s)
	}
	return s
}

// Snapshot returns a copy of the current state.
func (s *Store) Snapshot() State {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.snapshotLocked()
}

func (s *Store) snapshotLocked() State {
	msgs := make([]Message, len(s.messages))
	copy(msgs, s.messages)
	return State{
		Messages:  msgs,
		IsLoading: s.inFlight > 0,
		Error:     s.err,
		InFlight:  s.inFlight,
	}
}

// SendPrompt records prompt as a user turn, submits it and appends the outcome.
// Failures end up in the transcript, never in a returned error.
func (s *Store) SendPrompt(ctx context.Context, prompt string, format syntheticapi.OutputFormat, modelID string) {
	s.begin(prompt)

	log.Info().
		Str("format", string(format)).
		Str("model", modelID).
		Int("prompt_len", len(prompt)).
		Msg("submitting prompt")

	body, err := s.call(func() (syntheticapi.RawBody, error) {
		return s.api.SubmitPrompt(ctx, prompt, format, modelID)
	})
	s.settle(body, err)
}

// SendFileWithPrompt uploads file alongside prompt. A file without a .csv
// extension is rejected with syntheticapi.ErrInvalidFileType before anything
// is recorded or sent; every other failure lands in the transcript.
func (s *Store) SendFileWithPrompt(ctx context.Context, prompt string, file syntheticapi.Upload, format syntheticapi.OutputFormat, modelID string) error {
	if err := syntheticapi.ValidateUpload(file.Name); err != nil {
		log.Warn().Err(err).Str("file", file.Name).Msg("upload rejected")
		return err
	}

	s.begin(uploadContent(prompt, file.Name))

	// the upload endpoint takes no format; the backend infers it from the file
	log.Info().
		Str("file", file.Name).
		Str("format", string(format)).
		Str("model", modelID).
		Msg("submitting file")

	body, err := s.call(func() (syntheticapi.RawBody, error) {
		return s.api.SubmitFile(ctx, file, modelID)
	})
	s.settle(body, err)
	return nil
}

// ClearMessages empties the transcript and the error. Pending submissions keep
// running and still append their outcome.
func (s *Store) ClearMessages() {
	s.mu.Lock()
	s.messages = nil
	s.err = ""
	st := s.snapshotLocked()
	s.mu.Unlock()

	s.notify(st)
}

func uploadContent(prompt, name string) string {
	prompt = strings.TrimSpace(prompt)
	if prompt == "" {
		return fmt.Sprintf("[file: %s]", name)
	}
	return fmt.Sprintf("%s\n[file: %s]", prompt, name)
}

func (s *Store) begin(content string) {
	s.mu.Lock()
	s.messages = append(s.messages, newMessage(KindUser, content, s.now()))
	s.inFlight++
	s.err = ""
	st := s.snapshotLocked()
	s.mu.Unlock()

	s.notify(st)
}

func (s *Store) call(fn func() (syntheticapi.RawBody, error)) (body syntheticapi.RawBody, err error) {
	defer func() {
		if r := recover(); r != nil {
			log.Error().Interface("panic", r).Msg("synthetic api call panicked")
			body, err = nil, syntheticapi.ErrUnexpected
		}
	}()
	return fn()
}

func (s *Store) settle(body syntheticapi.RawBody, err error) {
	var msg Message
	if err != nil {
		text := syntheticapi.DisplayMessage(err)
		log.Warn().Err(err).Str("display", text).Msg("submission failed")
		msg = newMessage(KindSystem, text, s.now())
	} else {
		res := syntheticapi.Normalize(body)
		log.Debug().Str("shape", res.Shape.String()).Msg("submission succeeded")
		msg = newMessage(KindResult, res.Content, s.now())
		msg.DownloadURL = res.DownloadURL
	}

	s.mu.Lock()
	s.messages = append(s.messages, msg)
	if msg.Kind == KindSystem {
		s.err = msg.Content
	}
	if s.inFlight > 0 {
		s.inFlight--
	}
	st := s.snapshotLocked()
	s.mu.Unlock()

	s.notify(st)
}

func (s *Store) notify(st State) {
	for _, fn := range s.listeners {
		fn(st)
	}
}

package session

import (
	"fmt"
	"time"

	"github.com/google/uuid"
)

// Kind classifies a transcript entry.
type Kind string

const (
	// KindUser is a submitted prompt.
	KindUser Kind = "user"
	// KindResult is a successful generation outcome.
	KindResult Kind = "result"
	// KindSystem is an error or diagnostic outcome.
	KindSystem Kind = "system"
)

func (k Kind) idPrefix() string {
	if k == KindSystem {
		return "error"
	}
	return string(k)
}

// Message is one transcript entry. Entries are never modified after append.
type Message struct {
	ID          string    `json:"id"`
	Content     string    `json:"content"`
	Kind        Kind      `json:"kind"`
	CreatedAt   time.Time `json:"created_at"`
	DownloadURL string    `json:"download_url,omitempty"`
}

// HasDownload reports whether the backend supplied an artifact location.
func (m Message) HasDownload() bool {
	return m.DownloadURL != ""
}

func newMessage(kind Kind, content string, at time.Time) Message {
	return Message{
		ID:        fmt.Sprintf("%s-%d-%s", kind.idPrefix(), at.UnixMilli(), uuid.NewString()[:8]),
		Content:   content,
		Kind:      kind,
		CreatedAt: at,
	}
}

// State is a point-in-time copy of the store.
type State struct {
	Messages  []Message
	IsLoading bool
	// Error is empty when the last settled submission succeeded or the
	// transcript was cleared.
	Error    string
	InFlight int
}

// LastDownloadURL returns the most recent download URL in the transcript.
func (s State) LastDownloadURL() string {
	for i := len(s.Messages) - 1; i >= 0; i-- {
		if s.Messages[i].HasDownload() {
			return s.Messages[i].DownloadURL
		}
	}
	return ""
}

package session

import (
	"context"
	"errors"
	"strings"
	"sync"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/tensorplex-labs/synthchat/internal/syntheticapi"
)

type fakeAPI struct {
	mu          sync.Mutex
	promptCalls int
	fileCalls   int
	lastFile    syntheticapi.Upload
	lastModel   string
	lastFormat  syntheticapi.OutputFormat

	prompt func(prompt string) (syntheticapi.RawBody, error)
	file   func(file syntheticapi.Upload) (syntheticapi.RawBody, error)
}

func (f *fakeAPI) SubmitPrompt(_ context.Context, prompt string, format syntheticapi.OutputFormat, modelID string) (syntheticapi.RawBody, error) {
	f.mu.Lock()
	f.promptCalls++
	f.lastFormat = format
	f.lastModel = modelID
	f.mu.Unlock()
	return f.prompt(prompt)
}

func (f *fakeAPI) SubmitFile(_ context.Context, file syntheticapi.Upload, modelID string) (syntheticapi.RawBody, error) {
	f.mu.Lock()
	f.fileCalls++
	f.lastFile = file
	f.lastModel = modelID
	f.mu.Unlock()
	return f.file(file)
}

func respond(body string) func(string) (syntheticapi.RawBody, error) {
	return func(string) (syntheticapi.RawBody, error) { return syntheticapi.RawBody(body), nil }
}

func fail(err error) func(string) (syntheticapi.RawBody, error) {
	return func(string) (syntheticapi.RawBody, error) { return nil, err }
}

func TestSendPrompt_EndToEnd(t *testing.T) {
	api := &fakeAPI{prompt: respond(`{"data":{"message":"Generated 10 rows","url":"https://files.example.com/file.csv"}}`)}
	store := NewStore(api)

	store.SendPrompt(context.Background(), "generate 10 rows of US addresses", syntheticapi.FormatCSV, "claude-2.1")

	st := store.Snapshot()
	require.Len(t, st.Messages, 2)
	assert.Equal(t, KindUser, st.Messages[0].Kind)
	assert.Equal(t, "generate 10 rows of US addresses", st.Messages[0].Content)
	assert.Equal(t, KindResult, st.Messages[1].Kind)
	assert.Equal(t, "Generated 10 rows", st.Messages[1].Content)
	assert.Equal(t, "https://files.example.com/file.csv", st.Messages[1].DownloadURL)
	assert.False(t, st.IsLoading)
	assert.Empty(t, st.Error)
	assert.Equal(t, "https://files.example.com/file.csv", st.LastDownloadURL())

	assert.Equal(t, syntheticapi.FormatCSV, api.lastFormat)
	assert.Equal(t, "claude-2.1", api.lastModel)
}

func TestSendPrompt_Failure(t *testing.T) {
	api := &fakeAPI{prompt: fail(&syntheticapi.TransportError{
		StatusCode: 422,
		Detail:     []syntheticapi.ValidationDetail{{Msg: "Value error, volume must be positive"}},
	})}
	store := NewStore(api)

	store.SendPrompt(context.Background(), "p", syntheticapi.FormatJSON, "m")

	st := store.Snapshot()
	require.Len(t, st.Messages, 2)
	assert.Equal(t, KindUser, st.Messages[0].Kind)
	assert.Equal(t, KindSystem, st.Messages[1].Kind)
	assert.Equal(t, "volume must be positive", st.Messages[1].Content)
	assert.Equal(t, st.Messages[1].Content, st.Error)
	assert.False(t, st.IsLoading)
}

func TestSendPrompt_NextSubmitClearsError(t *testing.T) {
	calls := 0
	api := &fakeAPI{prompt: func(string) (syntheticapi.RawBody, error) {
		calls++
		if calls == 1 {
			return nil, errors.New("connection reset by peer")
		}
		return syntheticapi.RawBody(`"fine"`), nil
	}}
	store := NewStore(api)

	store.SendPrompt(context.Background(), "one", syntheticapi.FormatCSV, "m")
	assert.Equal(t, "connection reset by peer", store.Snapshot().Error)

	store.SendPrompt(context.Background(), "two", syntheticapi.FormatCSV, "m")
	st := store.Snapshot()
	assert.Empty(t, st.Error)
	require.Len(t, st.Messages, 4)
	assert.Equal(t, "fine", st.Messages[3].Content)
}

func TestSendPrompt_RecoversPanic(t *testing.T) {
	api := &fakeAPI{prompt: func(string) (syntheticapi.RawBody, error) { panic("boom") }}
	store := NewStore(api)

	store.SendPrompt(context.Background(), "p", syntheticapi.FormatCSV, "m")

	st := store.Snapshot()
	require.Len(t, st.Messages, 2)
	assert.Equal(t, "An unexpected error occurred", st.Messages[1].Content)
	assert.Equal(t, "An unexpected error occurred", st.Error)
	assert.False(t, st.IsLoading)
}

func TestSendPrompt_OpaqueBody(t *testing.T) {
	api := &fakeAPI{prompt: respond(`{"rows":3}`)}
	store := NewStore(api)

	store.SendPrompt(context.Background(), "p", syntheticapi.FormatCSV, "m")

	st := store.Snapshot()
	require.Len(t, st.Messages, 2)
	assert.Equal(t, "{\n  \"rows\": 3\n}", st.Messages[1].Content)
	assert.False(t, st.Messages[1].HasDownload())
}

func TestSendFileWithPrompt_RejectsNonCSV(t *testing.T) {
	api := &fakeAPI{}
	var notified int
	store := NewStore(api, WithListener(func(State) { notified++ }))

	err := store.SendFileWithPrompt(context.Background(), "p", syntheticapi.Upload{
		Name:    "report.xlsx",
		Content: strings.NewReader("x"),
	}, syntheticapi.FormatCSV, "m")

	require.ErrorIs(t, err, syntheticapi.ErrInvalidFileType)
	assert.Zero(t, api.fileCalls)
	assert.Empty(t, store.Snapshot().Messages)
	assert.Zero(t, notified)
}

func TestSendFileWithPrompt_Success(t *testing.T) {
	api := &fakeAPI{file: func(f syntheticapi.Upload) (syntheticapi.RawBody, error) {
		return syntheticapi.RawBody(`{"data":{"message":"Received ` + f.Name + `"}}`), nil
	}}
	store := NewStore(api)

	err := store.SendFileWithPrompt(context.Background(), "augment this", syntheticapi.Upload{
		Name:    "people.csv",
		Content: strings.NewReader("a,b\n"),
	}, syntheticapi.FormatCSV, "gpt-4o-mini")
	require.NoError(t, err)

	st := store.Snapshot()
	require.Len(t, st.Messages, 2)
	assert.Equal(t, "augment this\n[file: people.csv]", st.Messages[0].Content)
	assert.Equal(t, "Received people.csv", st.Messages[1].Content)
	assert.Equal(t, KindResult, st.Messages[1].Kind)
	assert.Equal(t, 1, api.fileCalls)
	assert.Equal(t, "gpt-4o-mini", api.lastModel)
}

func TestSendFileWithPrompt_EmptyPromptAndFailure(t *testing.T) {
	api := &fakeAPI{file: func(syntheticapi.Upload) (syntheticapi.RawBody, error) {
		return nil, &syntheticapi.TransportError{StatusCode: 413, Message: "request failed with status code 413"}
	}}
	store := NewStore(api)

	err := store.SendFileWithPrompt(context.Background(), "  ", syntheticapi.Upload{
		Name:    "big.csv",
		Content: strings.NewReader(""),
	}, syntheticapi.FormatCSV, "m")
	require.NoError(t, err)

	st := store.Snapshot()
	require.Len(t, st.Messages, 2)
	assert.Equal(t, "[file: big.csv]", st.Messages[0].Content)
	assert.Equal(t, KindSystem, st.Messages[1].Kind)
	assert.Equal(t, "request failed with status code 413", st.Error)
}

func TestClearMessages(t *testing.T) {
	api := &fakeAPI{prompt: fail(errors.New("down"))}
	store := NewStore(api)

	store.SendPrompt(context.Background(), "p", syntheticapi.FormatCSV, "m")
	require.NotEmpty(t, store.Snapshot().Error)

	store.ClearMessages()
	st := store.Snapshot()
	assert.Empty(t, st.Messages)
	assert.Empty(t, st.Error)

	store.ClearMessages()
	assert.Empty(t, store.Snapshot().Messages)
}

func TestClearMessages_KeepsLoading(t *testing.T) {
	release := make(chan struct{})
	started := make(chan struct{})
	api := &fakeAPI{prompt: func(string) (syntheticapi.RawBody, error) {
		close(started)
		<-release
		return syntheticapi.RawBody(`"done"`), nil
	}}
	store := NewStore(api)

	done := make(chan struct{})
	go func() {
		store.SendPrompt(context.Background(), "p", syntheticapi.FormatCSV, "m")
		close(done)
	}()
	<-started

	store.ClearMessages()
	st := store.Snapshot()
	assert.Empty(t, st.Messages)
	assert.True(t, st.IsLoading)

	close(release)
	<-done
	st = store.Snapshot()
	assert.False(t, st.IsLoading)
	require.Len(t, st.Messages, 1)
	assert.Equal(t, KindResult, st.Messages[0].Kind)
}

func TestOverlappingSubmissions_LoadingUntilAllSettle(t *testing.T) {
	gates := map[string]chan struct{}{
		"slow": make(chan struct{}),
		"fast": make(chan struct{}),
	}
	var started sync.WaitGroup
	started.Add(2)
	api := &fakeAPI{prompt: func(p string) (syntheticapi.RawBody, error) {
		started.Done()
		<-gates[p]
		return syntheticapi.RawBody(`"` + p + ` done"`), nil
	}}
	store := NewStore(api)

	var wg sync.WaitGroup
	for _, p := range []string{"slow", "fast"} {
		wg.Add(1)
		go func(p string) {
			defer wg.Done()
			store.SendPrompt(context.Background(), p, syntheticapi.FormatCSV, "m")
		}(p)
	}
	started.Wait()
	assert.Equal(t, 2, store.Snapshot().InFlight)

	close(gates["fast"])
	require.Eventually(t, func() bool { return len(store.Snapshot().Messages) == 3 }, time.Second, 5*time.Millisecond)
	st := store.Snapshot()
	assert.True(t, st.IsLoading, "slow submission is still pending")
	assert.Equal(t, "fast done", st.Messages[2].Content)

	close(gates["slow"])
	wg.Wait()
	st = store.Snapshot()
	assert.False(t, st.IsLoading)
	assert.Zero(t, st.InFlight)
	require.Len(t, st.Messages, 4)
	assert.Equal(t, "slow done", st.Messages[3].Content)
}

func TestMessageIDs(t *testing.T) {
	fixed := time.UnixMilli(1700000000000)
	api := &fakeAPI{prompt: fail(errors.New("x"))}
	store := NewStore(api, WithClock(func() time.Time { return fixed }))

	store.SendPrompt(context.Background(), "p", syntheticapi.FormatCSV, "m")
	store.SendPrompt(context.Background(), "p", syntheticapi.FormatCSV, "m")

	st := store.Snapshot()
	require.Len(t, st.Messages, 4)
	assert.True(t, strings.HasPrefix(st.Messages[0].ID, "user-1700000000000-"))
	assert.True(t, strings.HasPrefix(st.Messages[1].ID, "error-1700000000000-"))
	assert.Equal(t, fixed, st.Messages[0].CreatedAt)

	seen := map[string]bool{}
	for _, m := range st.Messages {
		assert.False(t, seen[m.ID], "duplicate id %s", m.ID)
		seen[m.ID] = true
	}
}

func TestListenerSeesEveryChange(t *testing.T) {
	var states []State
	api := &fakeAPI{prompt: respond(`"ok"`)}
	store := NewStore(api, WithListener(func(s State) { states = append(states, s) }))

	store.SendPrompt(context.Background(), "p", syntheticapi.FormatCSV, "m")
	store.ClearMessages()

	require.Len(t, states, 3)
	assert.True(t, states[0].IsLoading)
	assert.Len(t, states[0].Messages, 1)
	assert.False(t, states[1].IsLoading)
	assert.Len(t, states[1].Messages, 2)
	assert.Empty(t, states[2].Messages)
}

func TestSnapshotIsACopy(t *testing.T) {
	api := &fakeAPI{prompt: respond(`"ok"`)}
	store := NewStore(api)
	store.SendPrompt(context.Background(), "p", syntheticapi.FormatCSV, "m")

	st := store.Snapshot()
	st.Messages[0].Content = "mutated"
	assert.Equal(t, "p", store.Snapshot().Messages[0].Content)
}

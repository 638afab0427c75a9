// Package tui is the terminal chat front end. It only reads session state and
// calls the store's operations in response to key presses.
package tui

import (
	"context"
	"errors"
	"strings"

	"github.com/atotto/clipboard"
	"github.com/charmbracelet/bubbles/spinner"
	"github.com/charmbracelet/bubbles/textinput"
	"github.com/charmbracelet/bubbles/viewport"
	tea "github.com/charmbracelet/bubbletea"
	"github.com/rs/zerolog/log"

	"github.com/tensorplex-labs/synthchat/internal/notice"
	"github.com/tensorplex-labs/synthchat/internal/session"
	"github.com/tensorplex-labs/synthchat/internal/syntheticapi"
)

type mode int

const (
	modePrompt mode = iota
	modeAttach
)

const (
	promptPlaceholder = "What do you want to explore?"
	attachPlaceholder = "Path to a .csv file (esc to cancel)"

	invalidFileNotice = "Only .csv files can be uploaded"
)

// copyFn is swapped out in tests so they never touch the system clipboard.
var copyFn = clipboard.WriteAll

type Config struct {
	Models []string
	Format syntheticapi.OutputFormat
}

type Model struct {
	ctx    context.Context
	store  *session.Store
	notice *notice.Notice
	events Events

	input    textinput.Model
	viewport viewport.Model
	spinner  spinner.Model

	format   syntheticapi.OutputFormat
	models   []string
	modelIdx int

	mode          mode
	pendingPrompt string
	started       bool

	width  int
	height int
	ready  bool
}

func NewModel(ctx context.Context, store *session.Store, n *notice.Notice, events Events, cfg Config) *Model {
	ti := textinput.New()
	ti.Placeholder = promptPlaceholder
	ti.CharLimit = 2000
	ti.Focus()

	sp := spinner.New(spinner.WithSpinner(spinner.Dot))

	models := cfg.Models
	if len(models) == 0 {
		models = []string{syntheticapi.DefaultModel}
	}
	format := cfg.Format
	if format == "" {
		format = syntheticapi.FormatCSV
	}

	return &Model{
		ctx:      ctx,
		store:    store,
		notice:   n,
		events:   events,
		input:    ti,
		viewport: viewport.New(80, 20),
		spinner:  sp,
		format:   format,
		models:   models,
		width:    80,
		height:   30,
	}
}

func (m *Model) Init() tea.Cmd {
	return tea.Batch(textinput.Blink, m.spinner.Tick, m.events.wait())
}

func (m *Model) model() string {
	return m.models[m.modelIdx]
}

func (m *Model) Update(msg tea.Msg) (tea.Model, tea.Cmd) {
	switch msg := msg.(type) {
	case tea.WindowSizeMsg:
		m.resize(msg.Width, msg.Height)
		return m, nil

	case stateChangedMsg, noticeChangedMsg:
		m.refresh()
		return m, m.events.wait()

	case spinner.TickMsg:
		var cmd tea.Cmd
		m.spinner, cmd = m.spinner.Update(msg)
		return m, cmd

	case tea.KeyMsg:
		return m.updateKeys(msg)
	}

	var cmd tea.Cmd
	m.input, cmd = m.input.Update(msg)
	return m, cmd
}

func (m *Model) updateKeys(msg tea.KeyMsg) (tea.Model, tea.Cmd) {
	switch msg.String() {
	case "ctrl+c":
		return m, tea.Quit

	case "esc":
		if m.mode == modeAttach {
			m.leaveAttach()
			return m, nil
		}
		return m, tea.Quit

	case "enter":
		if m.mode == modeAttach {
			return m, m.submitFile()
		}
		return m, m.submitPrompt()

	case "tab":
		m.format = m.format.Next()
		return m, nil

	case "ctrl+o":
		m.modelIdx = (m.modelIdx + 1) % len(m.models)
		return m, nil

	case "ctrl+f":
		if m.mode == modePrompt {
			m.pendingPrompt = m.input.Value()
			m.input.SetValue("")
			m.input.Placeholder = attachPlaceholder
			m.mode = modeAttach
		}
		return m, nil

	case "ctrl+l":
		m.store.ClearMessages()
		m.refresh()
		return m, nil

	case "ctrl+y":
		m.copyDownloadURL()
		return m, nil

	case "pgup", "pgdown":
		var cmd tea.Cmd
		m.viewport, cmd = m.viewport.Update(msg)
		return m, cmd
	}

	var cmd tea.Cmd
	m.input, cmd = m.input.Update(msg)
	return m, cmd
}

func (m *Model) submitPrompt() tea.Cmd {
	prompt := m.input.Value()
	if strings.TrimSpace(prompt) == "" {
		return nil
	}
	m.input.SetValue("")
	m.started = true

	ctx, format, model := m.ctx, m.format, m.model()
	return func() tea.Msg {
		m.store.SendPrompt(ctx, prompt, format, model)
		return nil
	}
}

func (m *Model) submitFile() tea.Cmd {
	path := strings.TrimSpace(m.input.Value())
	if path == "" {
		return nil
	}

	upload, f, err := syntheticapi.OpenUpload(path)
	if err != nil {
		if errors.Is(err, syntheticapi.ErrInvalidFileType) {
			m.notice.Show(invalidFileNotice)
		} else {
			m.notice.Show(err.Error())
		}
		m.input.SetValue("")
		return nil
	}

	prompt := m.pendingPrompt
	m.leaveAttach()
	m.started = true

	ctx, format, model := m.ctx, m.format, m.model()
	return func() tea.Msg {
		defer f.Close()
		if err := m.store.SendFileWithPrompt(ctx, prompt, upload, format, model); err != nil {
			m.notice.Show(invalidFileNotice)
		}
		return nil
	}
}

func (m *Model) leaveAttach() {
	m.mode = modePrompt
	m.input.Placeholder = promptPlaceholder
	m.input.SetValue(m.pendingPrompt)
	m.input.CursorEnd()
	m.pendingPrompt = ""
}

func (m *Model) copyDownloadURL() {
	url := m.store.Snapshot().LastDownloadURL()
	if url == "" {
		m.notice.Show("No download link yet")
		return
	}
	if err := copyFn(url); err != nil {
		log.Warn().Err(err).Msg("clipboard write failed")
		m.notice.Show("Could not copy link: " + err.Error())
		return
	}
	m.notice.Show("Copied download link")
}

func (m *Model) resize(width, height int) {
	m.width = width
	m.height = height

	headerHeight := 3
	footerHeight := 6
	vh := height - headerHeight - footerHeight
	if vh < 3 {
		vh = 3
	}

	if !m.ready {
		m.viewport = viewport.New(width, vh)
		m.ready = true
	} else {
		m.viewport.Width = width
		m.viewport.Height = vh
	}
	m.input.Width = width - 8
	m.refresh()
}

func (m *Model) refresh() {
	st := m.store.Snapshot()
	if len(st.Messages) > 0 {
		m.started = true
	}
	m.viewport.SetContent(renderTranscript(st.Messages, m.width-2))
	m.viewport.GotoBottom()
}

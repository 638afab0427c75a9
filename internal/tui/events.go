package tui

import (
	tea "github.com/charmbracelet/bubbletea"

	"github.com/tensorplex-labs/synthchat/internal/session"
)

type stateChangedMsg struct{}

type noticeChangedMsg struct{}

// Events carries store and notice changes from their goroutines into the
// bubbletea update loop.
type Events chan tea.Msg

func NewEvents() Events {
	return make(Events, 256)
}

// StoreListener is passed to session.WithListener.
func (e Events) StoreListener(session.State) {
	e.push(stateChangedMsg{})
}

// NoticeListener is passed to notice.New.
func (e Events) NoticeListener(string) {
	e.push(noticeChangedMsg{})
}

// push never blocks: the view re-reads state on render, so a dropped wake-up
// only matters if nothing else follows it, and the spinner keeps ticking.
func (e Events) push(msg tea.Msg) {
	select {
	case e <- msg:
	default:
	}
}

func (e Events) wait() tea.Cmd {
	return func() tea.Msg {
		return <-e
	}
}

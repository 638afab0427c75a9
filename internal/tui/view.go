package tui

import (
	"fmt"
	"strings"

	"github.com/charmbracelet/lipgloss"

	"github.com/tensorplex-labs/synthchat/internal/session"
	"github.com/tensorplex-labs/synthchat/internal/syntheticapi"
)

func (m *Model) View() string {
	st := m.store.Snapshot()

	var b strings.Builder
	b.WriteString(titleStyle.Render("Synthetic Data Engine"))
	b.WriteString("  ")
	b.WriteString(renderFormats(m.format))
	b.WriteString("\n")
	b.WriteString(helpStyle.Render("model: " + m.model()))
	b.WriteString("\n\n")

	if m.started {
		b.WriteString(m.viewport.View())
		b.WriteString("\n")
	}

	prefix := ""
	if m.mode == modeAttach {
		prefix = labelStyle.Render("attach ")
		if m.pendingPrompt != "" {
			prefix += helpStyle.Render(fmt.Sprintf("(with %q) ", truncate(m.pendingPrompt, 30)))
		}
	}
	line := prefix + m.input.View()
	if st.IsLoading {
		line += " " + m.spinner.View()
	}
	b.WriteString(inputStyle.Render(line))
	b.WriteString("\n")

	if text := m.notice.Current(); text != "" {
		b.WriteString(noticeStyle.Render(text))
	}
	b.WriteString("\n")
	b.WriteString(helpStyle.Render("enter send • tab format • ctrl+o model • ctrl+f attach csv • ctrl+y copy link • ctrl+l clear • esc quit"))

	return b.String()
}

func renderFormats(current syntheticapi.OutputFormat) string {
	parts := make([]string, 0, len(syntheticapi.OutputFormats))
	for _, f := range syntheticapi.OutputFormats {
		if f == current {
			parts = append(parts, selectedStyle.Render(f.Label()))
		} else {
			parts = append(parts, optionStyle.Render(f.Label()))
		}
	}
	return lipgloss.JoinHorizontal(lipgloss.Top, parts...)
}

func renderTranscript(msgs []session.Message, width int) string {
	if width < 20 {
		width = 20
	}

	blocks := make([]string, 0, len(msgs))
	for _, msg := range msgs {
		blocks = append(blocks, renderMessage(msg, width))
	}
	return strings.Join(blocks, "\n\n")
}

func renderMessage(msg session.Message, width int) string {
	var style lipgloss.Style
	var label string
	switch msg.Kind {
	case session.KindUser:
		style, label = userStyle, "you"
	case session.KindResult:
		style, label = resultStyle, "result"
	default:
		style, label = systemStyle, "error"
	}

	body := labelStyle.Render(label+" · "+msg.CreatedAt.Format("15:04:05")) + "\n" + msg.Content
	if msg.HasDownload() {
		body += "\n" + linkStyle.Render("↓ "+msg.DownloadURL)
	}
	return style.Width(width).Render(body)
}

func truncate(s string, n int) string {
	r := []rune(s)
	if len(r) <= n {
		return s
	}
	return string(r[:n-1]) + "…"
}

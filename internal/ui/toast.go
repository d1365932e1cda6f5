package ui

import (
	"time"

	tea "github.com/charmbracelet/bubbletea"
	"github.com/charmbracelet/lipgloss"
)

type toastKind int

const (
	toastSuccess toastKind = iota
	toastError
)

// toast is a transient status-line notification. It is fire-and-forget: the
// rest of the model never waits on it or reacts to its expiry beyond
// clearing the line.
type toast struct {
	text string
	kind toastKind
	seq  int
}

type toastExpiredMsg struct{ seq int }

var (
	styleToastSuccess = lipgloss.NewStyle().Foreground(lipgloss.Color("28")).Bold(true)
	styleToastError   = lipgloss.NewStyle().Foreground(lipgloss.Color("160")).Bold(true)
)

// notify replaces the current toast and schedules its dismissal. The
// sequence number keeps an old timer from clearing a newer toast.
func (m Model) notify(text string, kind toastKind) (Model, tea.Cmd) {
	m.toastSeq++
	m.toast = &toast{text: text, kind: kind, seq: m.toastSeq}
	seq := m.toastSeq
	return m, tea.Tick(m.cfg.ToastDuration(), func(time.Time) tea.Msg {
		return toastExpiredMsg{seq: seq}
	})
}

func (t *toast) render() string {
	if t == nil {
		return ""
	}
	if t.kind == toastError {
		return styleToastError.Render(t.text)
	}
	return styleToastSuccess.Render(t.text)
}

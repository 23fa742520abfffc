package components

import (
	tea "github.com/charmbracelet/bubbletea"

	"github.com/artpar/postbox/internal/core"
	"github.com/artpar/postbox/internal/tree"
)

// SendRequestMsg asks the main view to send a stored request.
type SendRequestMsg struct {
	CollectionID string
	Path         tree.Path
	Request      *core.RequestDefinition
}

// RequestID returns the id of the request node being sent.
func (m SendRequestMsg) RequestID() string {
	return m.Path.Last()
}

// ResponseMsg carries the outcome of a sent request.
type ResponseMsg struct {
	RequestID string
	Response  *core.Response
	Err       error
}

// NotifyMsg shows a transient notification in the status line.
type NotifyMsg struct {
	Text string
	Err  bool
}

// CopyMsg asks the main view to copy content to the clipboard.
type CopyMsg struct {
	Content string
	Label   string
}

func warn(text string) tea.Cmd {
	return func() tea.Msg { return NotifyMsg{Text: text, Err: true} }
}

func notifyErr(action string, err error) tea.Cmd {
	return func() tea.Msg { return NotifyMsg{Text: action + ": " + err.Error(), Err: true} }
}

func copyCmd(label, content string) tea.Cmd {
	return func() tea.Msg { return CopyMsg{Content: content, Label: label} }
}

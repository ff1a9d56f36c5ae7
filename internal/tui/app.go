package tui

import (
	"fmt"
	"time"

	"github.com/charmbracelet/bubbles/help"
	"github.com/charmbracelet/bubbles/key"
	tea "github.com/charmbracelet/bubbletea"
	"github.com/charmbracelet/lipgloss"

	"github.com/1broseidon/maxmode/internal/ipc"
)

const refreshInterval = 2 * time.Second

type statusMsg struct {
	status *ipc.StatusData
	err    error
}

type tickMsg time.Time

// model is the root bubbletea model for the control panel.
type model struct {
	client Client
	help   help.Model

	status    *ipc.StatusData
	connected bool
	lastError string

	width  int
	height int
}

func newModel(client Client) model {
	return model{
		client: client,
		help:   help.New(),
	}
}

func (m model) fetchStatus() tea.Cmd {
	return func() tea.Msg {
		status, err := m.client.GetStatus()
		return statusMsg{status: status, err: err}
	}
}

// switchMode runs a mode command and then reports the fresh status.
func (m model) switchMode(send func() (*ipc.ModeData, error)) tea.Cmd {
	return func() tea.Msg {
		if _, err := send(); err != nil {
			return statusMsg{err: err}
		}
		status, err := m.client.GetStatus()
		return statusMsg{status: status, err: err}
	}
}

func tick() tea.Cmd {
	return tea.Tick(refreshInterval, func(t time.Time) tea.Msg {
		return tickMsg(t)
	})
}

// Init implements tea.Model.
func (m model) Init() tea.Cmd {
	return tea.Batch(m.fetchStatus(), tick())
}

// Update implements tea.Model.
func (m model) Update(msg tea.Msg) (tea.Model, tea.Cmd) {
	switch msg := msg.(type) {
	case tea.KeyMsg:
		switch {
		case key.Matches(msg, keys.Quit):
			return m, tea.Quit
		case key.Matches(msg, keys.Toggle):
			return m, m.switchMode(m.client.Toggle)
		case key.Matches(msg, keys.Enable):
			return m, m.switchMode(m.client.Enable)
		case key.Matches(msg, keys.Disable):
			return m, m.switchMode(m.client.Disable)
		case key.Matches(msg, keys.Refresh):
			return m, m.fetchStatus()
		}

	case statusMsg:
		if msg.err != nil {
			m.connected = false
			m.lastError = msg.err.Error()
			return m, nil
		}
		m.connected = true
		m.status = msg.status
		m.lastError = ""

	case tickMsg:
		return m, tea.Batch(m.fetchStatus(), tick())

	case tea.WindowSizeMsg:
		m.width = msg.Width
		m.height = msg.Height
		m.help.Width = msg.Width
	}
	return m, nil
}

// View implements tea.Model.
func (m model) View() string {
	width := m.width
	if width == 0 {
		width = 60
	}

	statusBar := renderStatusBar(m.connected, width)
	body := m.renderBody(width)
	helpBar := helpBarStyle.Width(width).Render(m.help.View(keys))

	return lipgloss.JoinVertical(lipgloss.Left,
		statusBar,
		body,
		helpBar,
	)
}

func (m model) renderBody(width int) string {
	if !m.connected {
		msg := "maxmode daemon not reachable"
		if m.lastError != "" {
			msg += "\n" + errorStyle.Render(m.lastError)
		}
		return bodyStyle.Width(width).Render(msg)
	}
	if m.status == nil {
		return bodyStyle.Width(width).Render("loading...")
	}

	s := m.status
	mode := modeOffStyle.Render("OFF")
	if s.Active {
		mode = modeOnStyle.Render("ON")
	}
	rows := []string{
		labelStyle.Render("maximize mode") + mode,
		labelStyle.Render("managed windows") + fmt.Sprintf("%d", s.ManagedWindows),
		labelStyle.Render("desktops") + fmt.Sprintf("%v", s.Desktops),
	}
	if s.Active {
		rows = append(rows, labelStyle.Render("active for")+(time.Duration(time.Now().Unix()-s.ActiveSinceUnix)*time.Second).String())
	}
	rows = append(rows, labelStyle.Render("daemon uptime")+(time.Duration(s.UptimeSeconds)*time.Second).String())
	return bodyStyle.Width(width).Render(lipgloss.JoinVertical(lipgloss.Left, rows...))
}

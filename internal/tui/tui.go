package tui

import (
	"fmt"
	"os"

	tea "github.com/charmbracelet/bubbletea"
	"golang.org/x/term"

	"github.com/1broseidon/maxmode/internal/ipc"
)

// Client is the daemon connection the panel drives.
type Client interface {
	Enable() (*ipc.ModeData, error)
	Disable() (*ipc.ModeData, error)
	Toggle() (*ipc.ModeData, error)
	GetStatus() (*ipc.StatusData, error)
}

// Run opens the interactive control panel and blocks until the user quits.
func Run(client Client) error {
	if !term.IsTerminal(int(os.Stdin.Fd())) || !term.IsTerminal(int(os.Stdout.Fd())) {
		return fmt.Errorf("tui requires an interactive terminal (stdin/stdout must be TTYs)")
	}

	p := tea.NewProgram(newModel(client), tea.WithAltScreen())
	_, err := p.Run()
	return err
}

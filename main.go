package main

import (
	"fmt"
	"io"
	"os"

	tea "github.com/charmbracelet/bubbletea"
	"github.com/charmbracelet/log"
)

// debugLog writes to the file named by QSIM_DEBUG; the alt-screen TUI owns
// the terminal, so stderr is not an option while running.
var debugLog = log.New(io.Discard)

func main() {
	if path := os.Getenv("QSIM_DEBUG"); path != "" {
		f, err := os.OpenFile(path, os.O_CREATE|os.O_WRONLY|os.O_APPEND, 0o644)
		if err != nil {
			fmt.Fprintln(os.Stderr, "cannot open debug log:", err)
			os.Exit(1)
		}
		defer f.Close()
		debugLog = log.New(f)
		debugLog.SetLevel(log.DebugLevel)
		debugLog.SetReportTimestamp(true)
	}

	p := tea.NewProgram(initialModel(), tea.WithAltScreen())
	if _, err := p.Run(); err != nil {
		fmt.Fprintln(os.Stderr, "error:", err)
		os.Exit(1)
	}
}

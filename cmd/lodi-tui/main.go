package main

import (
	"fmt"
	"os"

	tea "github.com/charmbracelet/bubbletea"
	"github.com/joho/godotenv"

	"github.com/lodi-go/lodi/internal/tui"
)

func main() {
	_ = godotenv.Load()

	if len(os.Args) < 2 {
		fmt.Println("Usage: lodi-tui <profile-file> [data-dir]")
		os.Exit(1)
	}
	profilePath := os.Args[1]

	dataDir := os.Getenv("LODI_DATA")
	if len(os.Args) > 2 {
		dataDir = os.Args[2]
	}
	if dataDir == "" {
		dataDir = "data"
	}

	if _, err := os.Stat(profilePath); os.IsNotExist(err) {
		fmt.Printf("Error: profile file not found: %s\n", profilePath)
		os.Exit(1)
	}

	p := tea.NewProgram(
		tui.NewModel(profilePath, dataDir),
		tea.WithAltScreen(),
	)
	if _, err := p.Run(); err != nil {
		fmt.Printf("Error running TUI: %v\n", err)
		os.Exit(1)
	}
}

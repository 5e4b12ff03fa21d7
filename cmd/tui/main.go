package main

import (
	"flag"
	"fmt"
	"os"
	"strings"

	"FrontDb/helpers"

	tea "github.com/charmbracelet/bubbletea"
)

func main() {
	addr := flag.String("addr", "http://localhost:8080", "FrontDB server address")
	flag.Parse()

	if !strings.HasPrefix(*addr, "http://") && !strings.HasPrefix(*addr, "https://") {
		*addr = "http://" + *addr
	}

	if err := helpers.WaitForServer(*addr, 50); err != nil {
		fmt.Println("Error reaching server:", err)
		os.Exit(1)
	}

	p := tea.NewProgram(newModel(*addr), tea.WithAltScreen())
	if _, err := p.Run(); err != nil {
		fmt.Println("Error running TUI:", err)
		os.Exit(1)
	}
}

package main

import (
	"bytes"
	"encoding/json"
	"fmt"
	"io"
	"net/http"
	"strings"

	tea "github.com/charmbracelet/bubbletea"
)

type execRequest struct {
	Commands string `json:"commands"`
}

type execResponse struct {
	Success bool   `json:"success"`
	Output  string `json:"output"`
	Quit    bool   `json:"quit"`
}

// execMsg carries the answer to one batch back to Update.
type execMsg struct {
	commands string
	output   string
	quit     bool
	err      error
}

func execCommandsCmd(addr, commands string) tea.Cmd {
	return func() tea.Msg {
		out, quit, err := executeCommands(addr, commands)
		return execMsg{commands: commands, output: out, quit: quit, err: err}
	}
}

// executeCommands posts one batch to the server. A failed batch still
// returns the output produced before the failure.
func executeCommands(addr, commands string) (string, bool, error) {
	reqBody, err := json.Marshal(execRequest{Commands: commands})
	if err != nil {
		return "", false, fmt.Errorf("failed to encode request: %w", err)
	}

	url := strings.TrimRight(addr, "/") + "/exec"
	resp, err := http.Post(url, "application/json", bytes.NewReader(reqBody))
	if err != nil {
		return "", false, fmt.Errorf("request failed: %w", err)
	}
	defer resp.Body.Close()

	body, err := io.ReadAll(resp.Body)
	if err != nil {
		return "", false, fmt.Errorf("failed to read response: %w", err)
	}

	var er execResponse
	if err := json.Unmarshal(body, &er); err != nil {
		// rejected requests come back as plain text
		msg := strings.TrimSpace(string(body))
		if msg == "" {
			msg = resp.Status
		}
		return "", false, fmt.Errorf("server error (%d): %s", resp.StatusCode, msg)
	}

	if resp.StatusCode != http.StatusOK || !er.Success {
		return er.Output, er.Quit, fmt.Errorf("server error (%d): session failed", resp.StatusCode)
	}
	return er.Output, er.Quit, nil
}

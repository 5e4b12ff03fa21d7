package main

import (
	"strings"

	"github.com/charmbracelet/bubbles/help"
	"github.com/charmbracelet/bubbles/key"
	"github.com/charmbracelet/bubbles/textarea"
	"github.com/charmbracelet/bubbles/viewport"
	tea "github.com/charmbracelet/bubbletea"
	"github.com/charmbracelet/lipgloss"
)

type keyMap struct {
	Run     key.Binding
	Newline key.Binding
	Clear   key.Binding
	Quit    key.Binding
}

func newKeyMap() keyMap {
	return keyMap{
		Run: key.NewBinding(
			key.WithKeys("enter"),
			key.WithHelp("enter", "run"),
		),
		Newline: key.NewBinding(
			key.WithKeys("alt+enter"),
			key.WithHelp("alt+enter", "new line"),
		),
		Clear: key.NewBinding(
			key.WithKeys("ctrl+l"),
			key.WithHelp("ctrl+l", "clear transcript"),
		),
		Quit: key.NewBinding(
			key.WithKeys("ctrl+c", "esc"),
			key.WithHelp("ctrl+c", "quit"),
		),
	}
}

func (k keyMap) ShortHelp() []key.Binding {
	return []key.Binding{k.Run, k.Newline, k.Clear, k.Quit}
}

func (k keyMap) FullHelp() [][]key.Binding {
	return [][]key.Binding{k.ShortHelp()}
}

var (
	titleStyle   = lipgloss.NewStyle().Bold(true).Foreground(lipgloss.Color("205"))
	subtle       = lipgloss.NewStyle().Foreground(lipgloss.Color("240"))
	commandStyle = lipgloss.NewStyle().Foreground(lipgloss.Color("44"))
	errorStyle   = lipgloss.NewStyle().Foreground(lipgloss.Color("203"))
	boxStyle     = lipgloss.NewStyle().Border(lipgloss.NormalBorder()).BorderForeground(lipgloss.Color("240")).Padding(0, 1)
)

// chrome is every line outside the two boxes: title, status, help and
// the box borders.
const chrome = 7

// layout splits the terminal height between the command box and the
// transcript, giving the transcript three quarters.
func layout(height int) (input, transcript int) {
	free := height - chrome
	if free < 2 {
		return 1, 1
	}

	input = free / 4
	if input < 1 {
		input = 1
	}
	if input > 8 {
		input = 8
	}
	return input, free - input
}

type model struct {
	addr       string
	input      textarea.Model
	transcript viewport.Model
	lines      []string
	help       help.Model
	keys       keyMap
	status     string
	busy       bool
}

func newModel(addr string) model {
	ta := textarea.New()
	ta.Placeholder = `commands, e.g. "help" or "select * from t;"`
	ta.Prompt = "> "
	ta.CharLimit = 0
	ta.ShowLineNumbers = false
	ta.KeyMap.InsertNewline.SetKeys("alt+enter")
	ta.Focus()

	vp := viewport.New(80, 20)
	vp.SetContent(subtle.Render("Output of each batch is appended here."))

	return model{
		addr:       addr,
		input:      ta,
		transcript: vp,
		help:       help.New(),
		keys:       newKeyMap(),
		status:     "Connected to " + addr,
	}
}

func (m model) Init() tea.Cmd {
	return textarea.Blink
}

// record appends one batch and its answer to the transcript and scrolls to
// the end of it.
func (m *model) record(msg execMsg) {
	for _, line := range strings.Split(strings.TrimRight(msg.commands, "\n"), "\n") {
		m.lines = append(m.lines, commandStyle.Render("> "+line))
	}
	if out := strings.TrimRight(msg.output, "\n"); out != "" {
		m.lines = append(m.lines, out)
	}
	if msg.err != nil {
		m.lines = append(m.lines, errorStyle.Render(msg.err.Error()))
	}

	m.transcript.SetContent(strings.Join(m.lines, "\n"))
	m.transcript.GotoBottom()
}

func (m model) Update(msg tea.Msg) (tea.Model, tea.Cmd) {
	switch msg := msg.(type) {
	case tea.WindowSizeMsg:
		inputHeight, transcriptHeight := layout(msg.Height)
		m.input.SetWidth(msg.Width - 4)
		m.input.SetHeight(inputHeight)
		m.transcript.Width = msg.Width - 4
		m.transcript.Height = transcriptHeight
		m.help.Width = msg.Width

	case tea.KeyMsg:
		switch {
		case key.Matches(msg, m.keys.Quit):
			return m, tea.Quit
		case key.Matches(msg, m.keys.Clear):
			m.lines = nil
			m.transcript.SetContent("")
			return m, nil
		case key.Matches(msg, m.keys.Run):
			commands := strings.TrimSpace(m.input.Value())
			if commands == ":q" || commands == ":quit" {
				return m, tea.Quit
			}
			if commands == "" || m.busy {
				return m, nil
			}
			m.busy = true
			m.status = "Running..."
			return m, execCommandsCmd(m.addr, commands+"\n")
		}

	case execMsg:
		m.busy = false
		m.record(msg)
		switch {
		case msg.err != nil:
			m.status = "Batch failed"
		case msg.quit:
			m.status = "Session asked to quit"
		default:
			m.status = "Batch done"
		}
		if msg.err == nil {
			m.input.Reset()
		}
		return m, nil
	}

	var inputCmd, transcriptCmd tea.Cmd
	m.input, inputCmd = m.input.Update(msg)
	m.transcript, transcriptCmd = m.transcript.Update(msg)
	return m, tea.Batch(inputCmd, transcriptCmd)
}

func (m model) View() string {
	status := subtle.Render(m.status)
	if m.busy {
		status = commandStyle.Render(m.status)
	}

	return lipgloss.JoinVertical(lipgloss.Left,
		titleStyle.Render("FrontDB")+" "+subtle.Render(m.addr),
		boxStyle.Render(m.transcript.View()),
		boxStyle.Render(m.input.View()),
		status,
		m.help.View(m.keys),
	)
}

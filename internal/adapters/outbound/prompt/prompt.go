// Package prompt asks the user what to do with each file of a fix plan.
package prompt

import (
	"fmt"
	"io"
	"strings"

	tea "github.com/charmbracelet/bubbletea"
	"github.com/charmbracelet/lipgloss"
	"github.com/imp-refactor/imp-refactor/internal/domain"
)

var (
	promptStyle   = lipgloss.NewStyle().Bold(true)
	cursorStyle   = lipgloss.NewStyle().Foreground(lipgloss.Color("#D97706")).Bold(true)
	itemStyle     = lipgloss.NewStyle().Foreground(lipgloss.Color("#6B7280"))
	selectedStyle = lipgloss.NewStyle().Foreground(lipgloss.Color("#E8E6E3"))
)

var choices = []struct {
	label  string
	action domain.FileAction
}{
	{"Apply", domain.ActionApply},
	{"Skip", domain.ActionSkip},
	{"Abort (quit)", domain.ActionAbort},
}

// Model is a single-choice Apply/Skip/Abort selector.
type Model struct {
	title  string
	cursor int
	chosen bool
}

// NewModel returns a selector titled with the number of pending changes.
func NewModel(changes int) *Model {
	return &Model{title: fmt.Sprintf("Apply %d change(s)?", changes)}
}

func (m *Model) Init() tea.Cmd { return nil }

func (m *Model) Update(msg tea.Msg) (tea.Model, tea.Cmd) {
	key, ok := msg.(tea.KeyMsg)
	if !ok {
		return m, nil
	}
	switch key.String() {
	case "up", "k", "shift+tab":
		m.cursor = (m.cursor + len(choices) - 1) % len(choices)
	case "down", "j", "tab":
		m.cursor = (m.cursor + 1) % len(choices)
	case "a", "y":
		return m.pick(0)
	case "s", "n":
		return m.pick(1)
	case "q", "esc", "ctrl+c":
		return m.pick(2)
	case "enter", " ":
		return m.pick(m.cursor)
	}
	return m, nil
}

func (m *Model) pick(i int) (tea.Model, tea.Cmd) {
	m.cursor = i
	m.chosen = true
	return m, tea.Quit
}

func (m *Model) View() string {
	if m.chosen {
		return promptStyle.Render(m.title) + " " + choices[m.cursor].label + "\n"
	}
	var b strings.Builder
	b.WriteString(promptStyle.Render(m.title) + "\n")
	for i, c := range choices {
		if i == m.cursor {
			b.WriteString(cursorStyle.Render("> ") + selectedStyle.Render(c.label) + "\n")
		} else {
			b.WriteString("  " + itemStyle.Render(c.label) + "\n")
		}
	}
	return b.String()
}

// Choice returns the selected action. A model that quit without a
// selection counts as abort.
func (m *Model) Choice() domain.FileAction {
	if !m.chosen {
		return domain.ActionAbort
	}
	return choices[m.cursor].action
}

// Prompter runs the selector on a terminal.
type Prompter struct {
	in  io.Reader
	out io.Writer
}

// New returns a Prompter reading keys from in and drawing on out.
func New(in io.Reader, out io.Writer) *Prompter {
	return &Prompter{in: in, out: out}
}

// Decide asks about one file. It satisfies application.DecideFunc.
func (p *Prompter) Decide(fp domain.FilePlan) (domain.FileAction, error) {
	model := NewModel(len(fp.Changes))
	program := tea.NewProgram(model, tea.WithInput(p.in), tea.WithOutput(p.out))
	final, err := program.Run()
	if err != nil {
		return domain.ActionAbort, fmt.Errorf("running prompt: %w", err)
	}
	return final.(*Model).Choice(), nil
}

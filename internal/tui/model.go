package tui

import (
	"fmt"
	"strconv"
	"strings"
	"time"

	tea "github.com/charmbracelet/bubbletea"
	"github.com/charmbracelet/lipgloss"
	"github.com/zoobzio/transit"
)

var (
	headerStyle = lipgloss.NewStyle().Foreground(lipgloss.Color("86")).Bold(true).MarginBottom(1)
	activeStyle = lipgloss.NewStyle().Foreground(lipgloss.Color("205")).Bold(true)
	dimStyle    = lipgloss.NewStyle().Foreground(lipgloss.Color("242"))
	errStyle    = lipgloss.NewStyle().Foreground(lipgloss.Color("196"))
	helpStyle   = lipgloss.NewStyle().Foreground(lipgloss.Color("240")).MarginTop(1)
)

const swatchWidth = 32

type tickMsg time.Time

func tick() tea.Cmd {
	return tea.Tick(time.Second/60, func(t time.Time) tea.Msg { return tickMsg(t) })
}

// Model renders a string binding: its selector keys, the current key and
// the display value, painted as a swatch when it is a colour.
type Model struct {
	host    *Host
	binding *transit.Binding[string, string]
	keys    []string
	err     error
}

// NewModel creates a model for binding. Keys are listed in order and bound
// to the digits 1-9.
func NewModel(host *Host, binding *transit.Binding[string, string], keys []string) Model {
	return Model{
		host:    host,
		binding: binding,
		keys:    keys,
	}
}

func (m Model) Init() tea.Cmd {
	return tea.Batch(m.host.next(), tick())
}

func (m Model) Update(msg tea.Msg) (tea.Model, tea.Cmd) {
	switch msg := msg.(type) {
	case dispatchMsg:
		msg()
		return m, m.host.next()
	case tickMsg:
		return m, tick()
	case tea.KeyMsg:
		return m.handleKey(msg)
	}
	return m, nil
}

func (m Model) handleKey(msg tea.KeyMsg) (Model, tea.Cmd) {
	switch msg.String() {
	case "q", "ctrl+c", "esc":
		return m, tea.Quit
	}

	n, err := strconv.Atoi(msg.String())
	if err != nil || n < 1 || n > len(m.keys) {
		return m, nil
	}
	_, m.err = m.binding.Select(m.keys[n-1])
	return m, nil
}

func (m Model) View() string {
	var b strings.Builder
	b.WriteString(headerStyle.Render("transit"))
	b.WriteString("\n")

	current := m.binding.Key()
	for i, key := range m.keys {
		line := fmt.Sprintf("[%d] %s", i+1, key)
		if key == current {
			b.WriteString(activeStyle.Render(line))
		} else {
			b.WriteString(dimStyle.Render(line))
		}
		b.WriteString("\n")
	}
	b.WriteString("\n")

	display := m.binding.Display()
	value := display.Value()
	if c, ok := transit.ParseColor(value); ok {
		swatch := lipgloss.NewStyle().Background(lipgloss.Color(c.Hex()))
		b.WriteString(swatch.Render(strings.Repeat(" ", swatchWidth)))
		b.WriteString("\n")
	}
	from, to := display.Range()
	fmt.Fprintf(&b, "%s  %s → %s  %s\n", value, from, to, progressBar(display.Progress()))
	b.WriteString(dimStyle.Render(m.binding.Controller().State().String()))
	b.WriteString("\n")

	if m.err != nil {
		b.WriteString(errStyle.Render(m.err.Error()))
		b.WriteString("\n")
	}
	b.WriteString(helpStyle.Render("1-9 select • q quit"))
	return b.String()
}

func progressBar(p float64) string {
	const width = 20
	filled := int(p*width + 0.5)
	filled = max(0, min(width, filled))
	return "[" + strings.Repeat("█", filled) + strings.Repeat("·", width-filled) + "]"
}

// Run starts the program and blocks until the user quits. The host is
// closed on return.
func Run(host *Host, binding *transit.Binding[string, string], keys []string) error {
	defer host.Close()
	p := tea.NewProgram(NewModel(host, binding, keys), tea.WithAltScreen())
	_, err := p.Run()
	return err
}

// Package tui renders a live terminal view of a running coupling case:
// drag-coefficient history plus coupling stats, refreshed as the
// simulation advances.
package tui

import (
	"fmt"
	"time"

	tea "github.com/charmbracelet/bubbletea"
	"github.com/charmbracelet/lipgloss"
	"github.com/guptarohit/asciigraph"

	"github.com/Ali-7800/SophT-Simulator/internal/cases"
)

const (
	graphWidth      = 70
	graphHeight     = 12
	historyCapacity = 600
	stepsPerFrame   = 20
)

var (
	headerStyle = lipgloss.NewStyle().Foreground(lipgloss.Color("86")).Bold(true)
	labelStyle  = lipgloss.NewStyle().Foreground(lipgloss.Color("245")).Width(14)
	valueStyle  = lipgloss.NewStyle().Foreground(lipgloss.Color("252"))
	graphStyle  = lipgloss.NewStyle().Foreground(lipgloss.Color("49")).Padding(1, 0)
	errorStyle  = lipgloss.NewStyle().Foreground(lipgloss.Color("203")).Bold(true)
	helpStyle   = lipgloss.NewStyle().Foreground(lipgloss.Color("240")).MarginTop(1)
)

type TickMsg time.Time

// Model drives a coupling case from the bubbletea event loop. The live
// monitor always runs double precision.
type Model struct {
	c        *cases.Case[float64]
	dragHist []float64
	paused   bool
	err      error
}

func NewModel(c *cases.Case[float64]) Model {
	return Model{
		c:        c,
		dragHist: make([]float64, 0, historyCapacity),
	}
}

func tick() tea.Cmd {
	return tea.Tick(time.Second/30, func(t time.Time) tea.Msg {
		return TickMsg(t)
	})
}

func (m Model) Init() tea.Cmd { return tick() }

func (m Model) Update(msg tea.Msg) (tea.Model, tea.Cmd) {
	switch msg := msg.(type) {
	case tea.KeyMsg:
		switch msg.String() {
		case "q", "ctrl+c":
			return m, tea.Quit
		case " ":
			m.paused = !m.paused
		}
	case TickMsg:
		if m.err != nil {
			return m, nil
		}
		if m.paused {
			return m, tick()
		}
		for i := 0; i < stepsPerFrame && !m.c.Done(); i++ {
			if err := m.c.Step(); err != nil {
				m.err = err
				return m, nil
			}
		}
		m.dragHist = append(m.dragHist, m.c.Drag())
		if len(m.dragHist) > historyCapacity {
			m.dragHist = m.dragHist[1:]
		}
		if m.c.Done() {
			return m, nil
		}
		return m, tick()
	}
	return m, nil
}

func (m Model) View() string {
	var graph string
	if len(m.dragHist) > 1 {
		graph = asciigraph.Plot(m.dragHist,
			asciigraph.Height(graphHeight),
			asciigraph.Width(graphWidth),
			asciigraph.Caption("drag coefficient"),
		)
	} else {
		graph = "collecting samples..."
	}

	stats := lipgloss.JoinVertical(lipgloss.Left,
		row("case", m.c.Name),
		row("time", fmt.Sprintf("%.3f (%.1f timescales)", m.c.Time(), m.c.Time()/m.c.Timescale)),
		row("dt", fmt.Sprintf("%.2e", m.c.Dt())),
		row("markers", fmt.Sprintf("%d", m.c.NumMarkers())),
		row("drag coeff", fmt.Sprintf("%.4f", m.c.Drag())),
	)

	status := ""
	switch {
	case m.err != nil:
		status = errorStyle.Render("error: " + m.err.Error())
	case m.c.Done():
		status = headerStyle.Render("finished")
	case m.paused:
		status = headerStyle.Render("paused")
	}

	return lipgloss.JoinVertical(lipgloss.Left,
		headerStyle.Render("sopht live"),
		graphStyle.Render(graph),
		stats,
		status,
		helpStyle.Render("space pause - q quit"),
	)
}

func row(label, value string) string {
	return labelStyle.Render(label) + valueStyle.Render(value)
}

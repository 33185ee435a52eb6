package tui

import (
	"fmt"
	"strings"

	"github.com/charmbracelet/bubbles/spinner"
	tea "github.com/charmbracelet/bubbletea"

	"github.com/planrun/planrun/internal/events"
)

// ProgressPaneModel shows round-level plan progress and the state of any
// in-flight authentication.
type ProgressPaneModel struct {
	spinner    spinner.Model
	round      int
	total      int
	completed  int
	failed     int
	remaining  int
	authActive bool
	authResult string
	finished   bool
	success    bool
	deadlocked bool
	width      int
	height     int
	focused    bool
}

// NewProgressPaneModel creates a new progress pane model.
func NewProgressPaneModel() ProgressPaneModel {
	s := spinner.New(spinner.WithSpinner(spinner.Dot), spinner.WithStyle(StyleStatusRunning))
	return ProgressPaneModel{spinner: s}
}

// Tick starts the spinner animation.
func (m ProgressPaneModel) Tick() tea.Cmd {
	return m.spinner.Tick
}

// Update handles messages for the progress pane.
func (m ProgressPaneModel) Update(msg tea.Msg) (ProgressPaneModel, tea.Cmd) {
	switch msg := msg.(type) {
	case spinner.TickMsg:
		var cmd tea.Cmd
		m.spinner, cmd = m.spinner.Update(msg)
		return m, cmd

	case events.PlanProgressEvent:
		m.round = msg.Round
		m.total = msg.Total
		m.completed = msg.Completed
		m.failed = msg.Failed
		m.remaining = msg.Remaining

	case events.AuthStartedEvent:
		m.authActive = true
		m.authResult = ""

	case events.AuthFinishedEvent:
		m.authActive = false
		if msg.Success {
			m.authResult = "ok"
		} else {
			m.authResult = "failed"
		}

	case events.PlanFinishedEvent:
		m.finished = true
		m.success = msg.Success
		m.deadlocked = msg.Deadlocked
	}

	return m, nil
}

// View renders the progress pane.
func (m ProgressPaneModel) View() string {
	var b strings.Builder

	title := StyleTitle.Render("Plan Progress")
	b.WriteString(title)
	if !m.finished {
		b.WriteString(" ")
		b.WriteString(m.spinner.View())
	}
	b.WriteString("\n\n")

	b.WriteString(fmt.Sprintf("Round:     %d\n", m.round))
	b.WriteString(fmt.Sprintf("Total:     %d\n", m.total))
	b.WriteString(fmt.Sprintf("Completed: %s\n", StyleStatusDone.Render(fmt.Sprintf("%d", m.completed))))
	b.WriteString(fmt.Sprintf("Failed:    %s\n", StyleStatusFailed.Render(fmt.Sprintf("%d", m.failed))))
	b.WriteString(fmt.Sprintf("Remaining: %s\n", StyleStatusPending.Render(fmt.Sprintf("%d", m.remaining))))

	if m.authActive {
		b.WriteString("\n")
		b.WriteString(StyleStatusAuth.Render("authenticating..."))
		b.WriteString("\n")
	} else if m.authResult != "" {
		b.WriteString(fmt.Sprintf("\nlast auth: %s\n", m.authResult))
	}

	b.WriteString("\n")
	if m.total > 0 {
		barWidth := min(max(m.width-6, 10), 40)
		doneWidth := (m.completed * barWidth) / m.total
		failWidth := (m.failed * barWidth) / m.total
		restWidth := barWidth - doneWidth - failWidth

		bar := StyleStatusDone.Render(strings.Repeat("=", max(0, doneWidth)))
		bar += StyleStatusFailed.Render(strings.Repeat("!", max(0, failWidth)))
		bar += StyleStatusPending.Render(strings.Repeat(".", max(0, restWidth)))
		b.WriteString(fmt.Sprintf("[%s]  %d/%d\n", bar, m.completed+m.failed, m.total))
	}

	if m.finished {
		b.WriteString("\n")
		switch {
		case m.deadlocked:
			b.WriteString(StyleStatusFailed.Render("DEADLOCKED"))
		case m.success:
			b.WriteString(StyleStatusDone.Render("SUCCESS"))
		default:
			b.WriteString(StyleStatusFailed.Render("FINISHED WITH ERRORS"))
		}
		b.WriteString("\n")
	}

	style := StyleUnfocusedBorder
	if m.focused {
		style = StyleFocusedBorder
	}
	return style.
		Width(max(m.width-2, 0)).
		Height(max(m.height-2, 0)).
		Render(b.String())
}

// SetSize updates the pane dimensions.
func (m *ProgressPaneModel) SetSize(w, h int) {
	m.width = w
	m.height = h
}

// SetFocused updates the focus state.
func (m *ProgressPaneModel) SetFocused(focused bool) {
	m.focused = focused
}

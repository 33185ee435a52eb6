package tui

import (
	"fmt"
	"strings"
	"time"

	tea "github.com/charmbracelet/bubbletea"

	"github.com/planrun/planrun/internal/events"
)

// TaskState tracks one task's display row.
type TaskState struct {
	TaskID       string
	Service      string
	Action       string
	Status       string // "running", "completed", "failed"
	Error        string
	RequiresAuth bool
	StartTime    time.Time
	Duration     time.Duration
}

// TaskPaneModel lists every task the run has launched, with the selected
// task's error text shown below the list.
type TaskPaneModel struct {
	tasks       map[string]*TaskState
	taskOrder   []string // insertion order for display
	selectedIdx int
	width       int
	height      int
	focused     bool
}

// NewTaskPaneModel creates an empty task pane.
func NewTaskPaneModel() TaskPaneModel {
	return TaskPaneModel{tasks: make(map[string]*TaskState)}
}

// Update handles messages for the task pane.
func (m TaskPaneModel) Update(msg tea.Msg) (TaskPaneModel, tea.Cmd) {
	switch msg := msg.(type) {
	case tea.KeyMsg:
		if !m.focused {
			break
		}
		switch msg.String() {
		case KeyJ, KeyDown:
			if m.selectedIdx < len(m.taskOrder)-1 {
				m.selectedIdx++
			}
		case KeyK, KeyUp:
			if m.selectedIdx > 0 {
				m.selectedIdx--
			}
		}

	case events.TaskStartedEvent:
		if _, exists := m.tasks[msg.ID]; !exists {
			m.tasks[msg.ID] = &TaskState{
				TaskID:    msg.ID,
				Service:   msg.Service,
				Action:    msg.Action,
				Status:    "running",
				StartTime: msg.Timestamp,
			}
			m.taskOrder = append(m.taskOrder, msg.ID)
		}

	case events.TaskSettledEvent:
		if task, exists := m.tasks[msg.ID]; exists {
			if msg.Success {
				task.Status = "completed"
			} else {
				task.Status = "failed"
			}
			task.Error = msg.Error
			task.RequiresAuth = msg.RequiresAuth
			task.Duration = msg.Duration
		}
	}

	return m, nil
}

// View renders the task list.
func (m TaskPaneModel) View() string {
	var b strings.Builder

	title := StyleTitle.Render("Tasks")
	b.WriteString(title)
	b.WriteString("\n\n")

	for i, id := range m.taskOrder {
		task := m.tasks[id]

		marker := "  "
		if i == m.selectedIdx {
			marker = "> "
		}

		var status string
		switch {
		case task.Status == "running":
			status = StyleStatusRunning.Render("RUN ")
		case task.Status == "failed" && task.RequiresAuth:
			status = StyleStatusAuth.Render("AUTH")
		case task.Status == "failed":
			status = StyleStatusFailed.Render("FAIL")
		default:
			status = StyleStatusDone.Render("DONE")
		}

		line := fmt.Sprintf("%s%s %-16s %s.%s", marker, status, task.TaskID, task.Service, task.Action)
		if task.Duration > 0 {
			line += fmt.Sprintf("  (%v)", task.Duration.Round(time.Millisecond))
		}
		b.WriteString(line)
		b.WriteString("\n")
	}

	// Selected task error detail, wrapped to the pane.
	if sel := m.selected(); sel != nil && sel.Error != "" {
		b.WriteString("\n")
		b.WriteString(StyleStatusFailed.Render("error: "))
		b.WriteString(sel.Error)
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

func (m *TaskPaneModel) selected() *TaskState {
	if m.selectedIdx < 0 || m.selectedIdx >= len(m.taskOrder) {
		return nil
	}
	return m.tasks[m.taskOrder[m.selectedIdx]]
}

// SetSize updates the pane dimensions.
func (m *TaskPaneModel) SetSize(w, h int) {
	m.width = w
	m.height = h
}

// SetFocused updates the focus state.
func (m *TaskPaneModel) SetFocused(focused bool) {
	m.focused = focused
}

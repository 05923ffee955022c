package tui

import (
	"errors"
	"fmt"
	"strings"

	"github.com/charmbracelet/bubbles/spinner"
	tea "github.com/charmbracelet/bubbletea"
	"github.com/charmbracelet/lipgloss"
	"github.com/vito/progrock"
)

const (
	statusRunning   = "running"
	statusCompleted = "completed"
	statusCached    = "cached"
	statusFailed    = "failed"

	// logTail is how many output lines an expanded vertex shows.
	logTail = 5
)

// VertexState represents one package install in the TUI.
type VertexState struct {
	ID       string
	Name     string
	Status   string
	Expanded bool
}

type styles struct {
	running   lipgloss.Style
	completed lipgloss.Style
	cached    lipgloss.Style
	failed    lipgloss.Style
	log       lipgloss.Style
	summary   lipgloss.Style
}

// Model is the Bubble Tea model for the TUI, managing vertices and tape updates.
type Model struct {
	tape     TapeSource
	vertices []VertexState
	logs     map[string][]string
	partial  map[string]string
	width    int
	height   int
	spinner  spinner.Model
	styles   styles
}

// NewModel creates a new TUI model with the given tape source.
func NewModel(tape TapeSource) *Model {
	s := spinner.New()
	s.Spinner = spinner.Dot
	s.Style = lipgloss.NewStyle().Foreground(colorIris)

	return &Model{
		tape:    tape,
		logs:    make(map[string][]string),
		partial: make(map[string]string),
		spinner: s,
		styles: styles{
			running:   lipgloss.NewStyle().Foreground(colorIris).Bold(true),
			completed: lipgloss.NewStyle().Foreground(colorGreen),
			cached:    lipgloss.NewStyle().Foreground(colorSlate).Faint(true),
			failed:    lipgloss.NewStyle().Foreground(colorRed),
			log:       lipgloss.NewStyle().Foreground(colorSlate).PaddingLeft(4),
			summary:   lipgloss.NewStyle().Foreground(colorSlate).MarginTop(1),
		},
	}
}

// Init initializes the model and starts reading from the tape.
func (m *Model) Init() tea.Cmd {
	return tea.Batch(
		WaitForTape(m.tape),
		m.spinner.Tick,
	)
}

// Update handles incoming messages and updates the model state.
func (m *Model) Update(msg tea.Msg) (tea.Model, tea.Cmd) {
	switch msg := msg.(type) {
	case tea.KeyMsg:
		return m.handleKeyMsg(msg)
	case tea.WindowSizeMsg:
		return m.handleWindowSizeMsg(msg)
	case spinner.TickMsg:
		return m.handleSpinnerTick(msg)
	case MsgTapeUpdate:
		return m.handleTapeUpdate(msg)
	case MsgVertexStarted:
		return m.handleVertexStarted(msg)
	case MsgVertexCompleted:
		return m.handleVertexCompleted(msg)
	case MsgTapeEnded:
		return m, tea.Quit
	}
	return m, nil
}

func (m *Model) handleKeyMsg(msg tea.KeyMsg) (tea.Model, tea.Cmd) {
	if msg.Type == tea.KeyCtrlC {
		return m, tea.Quit
	}
	return m, nil
}

func (m *Model) handleWindowSizeMsg(msg tea.WindowSizeMsg) (tea.Model, tea.Cmd) {
	m.width = msg.Width
	m.height = msg.Height
	return m, nil
}

func (m *Model) handleSpinnerTick(msg spinner.TickMsg) (tea.Model, tea.Cmd) {
	var cmd tea.Cmd
	m.spinner, cmd = m.spinner.Update(msg)
	return m, cmd
}

func (m *Model) handleTapeUpdate(msg MsgTapeUpdate) (tea.Model, tea.Cmd) {
	for _, v := range msg.Update.Vertexes {
		m.applyVertex(v)
	}
	for _, l := range msg.Update.Logs {
		m.appendLog(l.Vertex, l.Data)
	}
	return m, WaitForTape(m.tape)
}

// applyVertex adds v or moves it to its completed state.
func (m *Model) applyVertex(v *progrock.Vertex) {
	idx := m.indexOf(v.Id)
	if idx < 0 {
		m.vertices = append(m.vertices, VertexState{ID: v.Id, Name: displayName(v.Name), Status: statusRunning})
		m.handleVertexStarted(MsgVertexStarted{ID: v.Id, Name: v.Name})
	}
	if v.Completed == nil {
		return
	}

	var err error
	if v.Error != nil {
		err = errors.New(v.GetError())
	}
	m.handleVertexCompleted(MsgVertexCompleted{ID: v.Id, Cached: v.Cached, Err: err})
}

// handleVertexStarted expands the started vertex and collapses the others unless they failed.
func (m *Model) handleVertexStarted(msg MsgVertexStarted) (tea.Model, tea.Cmd) {
	for i := range m.vertices {
		if m.vertices[i].Status == statusFailed {
			continue
		}
		m.vertices[i].Expanded = m.vertices[i].ID == msg.ID
	}
	return m, nil
}

// handleVertexCompleted records the outcome. Failed vertices stay expanded so their output remains visible.
func (m *Model) handleVertexCompleted(msg MsgVertexCompleted) (tea.Model, tea.Cmd) {
	idx := m.indexOf(msg.ID)
	if idx < 0 {
		return m, nil
	}

	v := &m.vertices[idx]
	switch {
	case msg.Err != nil:
		v.Status = statusFailed
		v.Expanded = true
	case msg.Cached:
		v.Status = statusCached
		v.Expanded = false
	default:
		v.Status = statusCompleted
		v.Expanded = false
	}
	return m, nil
}

func (m *Model) appendLog(id string, data []byte) {
	text := m.partial[id] + string(data)
	lines := strings.Split(text, "\n")
	m.partial[id] = lines[len(lines)-1]

	buf := append(m.logs[id], lines[:len(lines)-1]...)
	if len(buf) > logTail {
		buf = buf[len(buf)-logTail:]
	}
	m.logs[id] = buf
}

func (m *Model) indexOf(id string) int {
	for i := range m.vertices {
		if m.vertices[i].ID == id {
			return i
		}
	}
	return -1
}

// displayName strips the action prefix recorded by the installer.
func displayName(name string) string {
	return strings.TrimPrefix(name, "install ")
}

// View renders the current state of the model as a string.
func (m *Model) View() string {
	var s strings.Builder

	start := 0
	if len(m.vertices) > m.height && m.height > 0 {
		start = len(m.vertices) - m.height
	}

	for i := start; i < len(m.vertices); i++ {
		v := m.vertices[i]

		var icon, suffix string
		var style lipgloss.Style
		switch v.Status {
		case statusRunning:
			icon = m.spinner.View()
			style = m.styles.running
		case statusCompleted:
			icon = iconCheck
			style = m.styles.completed
		case statusCached:
			icon = iconCheck
			style = m.styles.cached
			suffix = " (already installed)"
		case statusFailed:
			icon = iconCross
			style = m.styles.failed
		default:
			icon = iconDot
			style = m.styles.cached
		}

		fmt.Fprintf(&s, "%s %s%s\n", style.Render(icon), v.Name, suffix)

		if v.Expanded {
			for _, line := range m.tail(v.ID) {
				s.WriteString(m.styles.log.Render(line))
				s.WriteString("\n")
			}
		}
	}

	if summary := m.summary(); summary != "" {
		s.WriteString(m.styles.summary.Render(summary))
		s.WriteString("\n")
	}

	return s.String()
}

func (m *Model) tail(id string) []string {
	lines := m.logs[id]
	if len(lines) > logTail {
		lines = lines[len(lines)-logTail:]
	}
	return lines
}

func (m *Model) summary() string {
	var done, cached, failed int
	for _, v := range m.vertices {
		switch v.Status {
		case statusCompleted:
			done++
		case statusCached:
			cached++
		case statusFailed:
			failed++
		}
	}
	if done+cached+failed == 0 {
		return ""
	}
	return fmt.Sprintf("%d installed, %d already installed, %d failed", done, cached, failed)
}

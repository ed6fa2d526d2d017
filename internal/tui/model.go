package tui

import (
	"context"
	"fmt"
	"strings"
	"time"

	"github.com/charmbracelet/bubbles/list"
	tea "github.com/charmbracelet/bubbletea"
	"github.com/charmbracelet/lipgloss"
	"go.uber.org/zap"

	"devdeck/internal/app"
	"devdeck/internal/daemon"
	"devdeck/internal/registry"
)

const (
	queryTimeout    = 5 * time.Second
	refreshInterval = 3 * time.Second
)

// Controller defines the subset of app.App behaviour the TUI needs.
type Controller interface {
	Status() (app.DaemonStatus, error)
	StartDaemon(logger *zap.Logger) (*app.DaemonHandle, error)
	Processes(ctx context.Context, timeout time.Duration) ([]registry.Proc, error)
	Kill(ctx context.Context, timeout time.Duration, pid int, force bool) (daemon.KillResult, error)
}

// Model represents the Bubble Tea state.
type Model struct {
	controller Controller

	list      list.Model
	processes []registry.Proc

	daemonStatus app.DaemonStatus
	statusMsg    string

	err     error
	loading bool

	width  int
	height int

	lastUpdated time.Time
}

// New constructs a TUI model with default styles.
func New(ctrl Controller) *Model {
	delegate := list.NewDefaultDelegate()
	lst := list.New([]list.Item{}, delegate, 0, 0)
	lst.Title = "Project processes"
	lst.SetShowHelp(false)
	lst.SetFilteringEnabled(false)
	lst.DisableQuitKeybindings()

	return &Model{
		controller: ctrl,
		list:       lst,
		statusMsg:  "Checking daemon status…",
		loading:    true,
	}
}

// Run spins up the Bubble Tea program with sensible defaults.
func Run(ctrl Controller) error {
	m := New(ctrl)
	prog := tea.NewProgram(m, tea.WithAltScreen())
	_, err := prog.Run()
	return err
}

// Init implements tea.Model.
func (m *Model) Init() tea.Cmd {
	return tea.Batch(checkDaemonStatusCmd(m.controller), loadProcessesCmd(m.controller), tickCmd())
}

// Update implements tea.Model.
func (m *Model) Update(msg tea.Msg) (tea.Model, tea.Cmd) {
	switch msg := msg.(type) {
	case tea.WindowSizeMsg:
		m.width = msg.Width
		m.height = msg.Height
		if m.height > 4 {
			m.list.SetSize(msg.Width, msg.Height-4)
		}

	case daemonStatusMsg:
		m.daemonStatus = msg.status
		if msg.status.Running {
			if msg.status.PID > 0 {
				m.statusMsg = fmt.Sprintf("Daemon running (pid %d). Press r to refresh, q to quit.", msg.status.PID)
			} else {
				m.statusMsg = "Daemon running. Press r to refresh, q to quit."
			}
		} else {
			m.statusMsg = "Daemon is not running. Press s to start it."
			m.processes = nil
			m.list.SetItems(nil)
		}

	case processesLoadedMsg:
		m.loading = false
		m.err = nil
		m.processes = msg.processes
		items := make([]list.Item, 0, len(msg.processes))
		for _, proc := range msg.processes {
			items = append(items, processItem{Proc: proc})
		}
		m.list.SetItems(items)
		m.lastUpdated = time.Now()

	case daemonStartedMsg:
		m.statusMsg = "Daemon started."
		return m, tea.Batch(checkDaemonStatusCmd(m.controller), loadProcessesCmd(m.controller))

	case killedMsg:
		if msg.result.Success {
			m.statusMsg = fmt.Sprintf("Killed pid %d.", msg.result.PID)
		} else {
			m.statusMsg = fmt.Sprintf("Failed to kill pid %d: %s", msg.result.PID, msg.result.Error)
		}
		m.loading = true
		return m, loadProcessesCmd(m.controller)

	case tickMsg:
		if m.daemonStatus.Running {
			return m, tea.Batch(loadProcessesCmd(m.controller), tickCmd())
		}
		return m, tea.Batch(checkDaemonStatusCmd(m.controller), tickCmd())

	case errMsg:
		m.loading = false
		m.err = msg.err

	case tea.KeyMsg:
		switch msg.String() {
		case "ctrl+c", "q":
			return m, tea.Quit
		case "r":
			m.loading = true
			return m, loadProcessesCmd(m.controller)
		case "s":
			if !m.daemonStatus.Running {
				m.statusMsg = "Starting daemon…"
				return m, startDaemonCmd(m.controller)
			}
		case "k":
			if current := m.currentProcess(); current != nil {
				m.statusMsg = fmt.Sprintf("Stopping pid %d…", current.PID)
				return m, killProcessCmd(m.controller, current.PID, false)
			}
		case "K":
			if current := m.currentProcess(); current != nil {
				m.statusMsg = fmt.Sprintf("Force killing pid %d…", current.PID)
				return m, killProcessCmd(m.controller, current.PID, true)
			}
		}
	}

	var cmd tea.Cmd
	m.list, cmd = m.list.Update(msg)
	return m, cmd
}

// View implements tea.Model.
func (m *Model) View() string {
	var b strings.Builder

	statusStyle := lipgloss.NewStyle().Bold(true)
	if !m.daemonStatus.Running {
		statusStyle = statusStyle.Foreground(lipgloss.Color("203"))
	} else {
		statusStyle = statusStyle.Foreground(lipgloss.Color("42"))
	}
	b.WriteString(statusStyle.Render(m.statusMsg))
	b.WriteByte('\n')

	if m.loading {
		b.WriteString("Loading processes…\n")
	} else if m.err != nil {
		errStyle := lipgloss.NewStyle().Foreground(lipgloss.Color("203"))
		b.WriteString(errStyle.Render(fmt.Sprintf("Error: %v", m.err)))
		b.WriteByte('\n')
	}

	if len(m.list.Items()) == 0 && !m.loading && m.err == nil && m.daemonStatus.Running {
		b.WriteString("No processes found.\n")
	} else {
		b.WriteString(m.list.View())
		b.WriteByte('\n')
	}

	if current := m.currentProcess(); current != nil {
		detail := fmt.Sprintf(
			"pid=%d type=%s port=%s\nproject=%s\npath=%s\ncmd=%s\nsince=%s",
			current.PID,
			current.Type,
			portOrDash(current.Port),
			valueOrDash(current.ProjectName),
			current.ProjectPath,
			current.Command,
			current.LaunchTime.Local().Format(time.Kitchen),
		)
		detailStyle := lipgloss.NewStyle().Border(lipgloss.RoundedBorder()).Padding(0, 1).MarginBottom(1)
		b.WriteString(detailStyle.Render(detail))
		b.WriteByte('\n')
	}

	help := "Commands: q quit • r reload • s start daemon • k kill • K force kill"
	if !m.lastUpdated.IsZero() {
		help += fmt.Sprintf(" • last update %s", m.lastUpdated.Format(time.Kitchen))
	}
	helpStyle := lipgloss.NewStyle().Foreground(lipgloss.Color("244"))
	b.WriteString(helpStyle.Render(help))

	return b.String()
}

// processItem adapts registry.Proc to the bubbles list item interface.
type processItem struct {
	Proc registry.Proc
}

func (p processItem) Title() string {
	name := p.Proc.ProjectName
	if name == "" {
		name = "-"
	}
	return fmt.Sprintf("[%s] pid=%d %s port=%s", p.Proc.Type, p.Proc.PID, name, portOrDash(p.Proc.Port))
}

func (p processItem) Description() string {
	return fmt.Sprintf("cmd=%s", p.Proc.Command)
}

func (p processItem) FilterValue() string {
	return fmt.Sprintf("%d %s %s %s", p.Proc.PID, p.Proc.ProjectName, p.Proc.Command, p.Proc.Type)
}

func (m *Model) currentProcess() *registry.Proc {
	if len(m.processes) == 0 {
		return nil
	}
	idx := m.list.Index()
	if idx < 0 || idx >= len(m.processes) {
		return nil
	}
	return &m.processes[idx]
}

func valueOrDash(s string) string {
	if strings.TrimSpace(s) == "" {
		return "-"
	}
	return s
}

func portOrDash(port int) string {
	if port == 0 {
		return "-"
	}
	return fmt.Sprintf("%d", port)
}

type daemonStatusMsg struct {
	status app.DaemonStatus
}

type processesLoadedMsg struct {
	processes []registry.Proc
}

type daemonStartedMsg struct{}

type killedMsg struct {
	result daemon.KillResult
}

type tickMsg time.Time

type errMsg struct {
	err error
}

func checkDaemonStatusCmd(ctrl Controller) tea.Cmd {
	return func() tea.Msg {
		status, err := ctrl.Status()
		if err != nil {
			return errMsg{err: err}
		}
		return daemonStatusMsg{status: status}
	}
}

func loadProcessesCmd(ctrl Controller) tea.Cmd {
	return func() tea.Msg {
		procs, err := ctrl.Processes(context.Background(), queryTimeout)
		if err != nil {
			return errMsg{err: err}
		}
		return processesLoadedMsg{processes: procs}
	}
}

func startDaemonCmd(ctrl Controller) tea.Cmd {
	return func() tea.Msg {
		if _, err := ctrl.StartDaemon(nil); err != nil {
			return errMsg{err: err}
		}
		return daemonStartedMsg{}
	}
}

func killProcessCmd(ctrl Controller, pid int, force bool) tea.Cmd {
	return func() tea.Msg {
		res, err := ctrl.Kill(context.Background(), queryTimeout, pid, force)
		if err != nil {
			return errMsg{err: err}
		}
		return killedMsg{result: res}
	}
}

func tickCmd() tea.Cmd {
	return tea.Tick(refreshInterval, func(t time.Time) tea.Msg {
		return tickMsg(t)
	})
}

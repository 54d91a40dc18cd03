// Package tui is a terminal dashboard over the run store. It reads runs,
// scenario results and logs, and queues control commands for the daemon.
package tui

import (
	"fmt"
	"time"

	"estate_e2e/models"

	tea "github.com/charmbracelet/bubbletea"
	"github.com/charmbracelet/lipgloss"
)

type tab int

const (
	tabOverview tab = iota
	tabResults
	tabLogs
	tabCount
)

const (
	refreshEvery = 5 * time.Second
	notifyFor    = 2 * time.Second
)

type tickMsg time.Time

type commandSentMsg struct {
	cmd models.CommandType
	id  int64
	err error
}

type Model struct {
	src           Source
	activeTab     tab
	width, height int
	notification  string
	notifyUntil   time.Time

	overview Overview
	results  Results
	logs     Logs
}

func New(src Source) Model {
	return Model{
		src:       src,
		activeTab: tabOverview,
		overview:  NewOverview(src),
		results:   NewResults(src),
		logs:      NewLogs(src),
	}
}

func (m Model) Init() tea.Cmd {
	return tea.Batch(
		m.overview.Init(),
		m.results.Init(),
		m.logs.Init(),
		tickCmd(),
	)
}

func tickCmd() tea.Cmd {
	return tea.Tick(refreshEvery, func(t time.Time) tea.Msg {
		return tickMsg(t)
	})
}

// queue sends a control command through the store.
func (m Model) queue(cmd models.CommandType) tea.Cmd {
	return func() tea.Msg {
		id, err := m.src.QueueCommand(cmd, nil)
		return commandSentMsg{cmd: cmd, id: id, err: err}
	}
}

func (m Model) notify(text string) Model {
	m.notification = text
	m.notifyUntil = time.Now().Add(notifyFor)
	return m
}

func (m Model) Update(msg tea.Msg) (tea.Model, tea.Cmd) {
	var cmds []tea.Cmd

	switch msg := msg.(type) {
	case tea.KeyMsg:
		switch msg.String() {
		case "q", "ctrl+c":
			return m, tea.Quit
		case "o":
			m.activeTab = tabOverview
		case "s":
			m.activeTab = tabResults
		case "l":
			m.activeTab = tabLogs
		case "tab":
			m.activeTab = (m.activeTab + 1) % tabCount
		case "r":
			m = m.notify("Refreshed")
			return m, m.refreshActive()
		case "R":
			return m, m.queue(models.CmdRunNow)
		case "P":
			return m, m.queue(models.CmdPause)
		case "U":
			return m, m.queue(models.CmdResume)
		}

	case tea.WindowSizeMsg:
		m.width = msg.Width
		m.height = msg.Height
		m.overview = m.overview.SetSize(msg.Width, msg.Height-4)
		m.results = m.results.SetSize(msg.Width, msg.Height-4)
		m.logs = m.logs.SetSize(msg.Width, msg.Height-4)
		return m, nil

	case tickMsg:
		cmds = append(cmds, m.refreshActive(), tickCmd())

	case commandSentMsg:
		if msg.err != nil {
			m = m.notify(fmt.Sprintf("%s failed: %v", msg.cmd, msg.err))
		} else {
			m = m.notify(fmt.Sprintf("Queued %s (#%d)", msg.cmd, msg.id))
		}
		return m, nil
	}

	// Keys go to the active tab only; data messages go everywhere so each
	// view picks up its own.
	var cmd tea.Cmd
	if _, ok := msg.(tea.KeyMsg); ok {
		switch m.activeTab {
		case tabOverview:
			m.overview, cmd = m.overview.Update(msg)
		case tabResults:
			m.results, cmd = m.results.Update(msg)
		case tabLogs:
			m.logs, cmd = m.logs.Update(msg)
		}
		cmds = append(cmds, cmd)
	} else {
		m.overview, cmd = m.overview.Update(msg)
		cmds = append(cmds, cmd)
		m.results, cmd = m.results.Update(msg)
		cmds = append(cmds, cmd)
		m.logs, cmd = m.logs.Update(msg)
		cmds = append(cmds, cmd)
	}

	return m, tea.Batch(cmds...)
}

func (m Model) refreshActive() tea.Cmd {
	switch m.activeTab {
	case tabOverview:
		return m.overview.Refresh()
	case tabResults:
		return m.results.Refresh()
	case tabLogs:
		return m.logs.Refresh()
	}
	return nil
}

func (m Model) View() string {
	return lipgloss.JoinVertical(lipgloss.Left, m.renderTabs(), m.renderContent(), m.renderStatusBar())
}

func (m Model) renderTabs() string {
	names := []string{"Overview", "Scenarios", "Logs"}
	rendered := make([]string, 0, len(names))
	for i, name := range names {
		if tab(i) == m.activeTab {
			rendered = append(rendered, tabActive.Render(name))
		} else {
			rendered = append(rendered, tabInactive.Render(name))
		}
	}
	return lipgloss.JoinHorizontal(lipgloss.Top, rendered...) + "\n"
}

func (m Model) renderContent() string {
	switch m.activeTab {
	case tabOverview:
		return m.overview.View()
	case tabResults:
		return m.results.View()
	case tabLogs:
		return m.logs.View()
	}
	return ""
}

func (m Model) renderStatusBar() string {
	left := "o Overview  s Scenarios  l Logs  r Refresh  R Run now  P Pause  U Resume  q Quit"
	right := ""
	if time.Now().Before(m.notifyUntil) {
		right = notification.Render(m.notification)
	}

	gap := m.width - lipgloss.Width(left) - lipgloss.Width(right) - 2
	if gap < 0 {
		gap = 0
	}
	return statusBar.Render(left) + lipgloss.NewStyle().Width(gap).Render("") + right
}

// Run starts the dashboard full screen and blocks until the user quits.
func Run(src Source) error {
	_, err := tea.NewProgram(New(src), tea.WithAltScreen()).Run()
	return err
}

package tui

import (
	"fmt"
	"strings"

	"estate_e2e/models"

	tea "github.com/charmbracelet/bubbletea"
	"github.com/charmbracelet/lipgloss"
)

const logLimit = 300

var logLevels = []models.LogLevel{"", models.LogLevelInfo, models.LogLevelWarn, models.LogLevelError}

type logsMsg struct {
	logs []models.RunLog
	err  error
}

type Logs struct {
	src           Source
	width, height int
	logs          []models.RunLog
	levelIndex    int
	scrollOffset  int
	err           error
}

func NewLogs(src Source) Logs {
	return Logs{src: src}
}

func (l Logs) Init() tea.Cmd {
	return l.Refresh()
}

func (l Logs) Refresh() tea.Cmd {
	level := logLevels[l.levelIndex]
	return func() tea.Msg {
		logs, err := l.src.RecentLogs(logLimit, level)
		return logsMsg{logs: logs, err: err}
	}
}

func (l Logs) SetSize(w, h int) Logs {
	l.width = w
	l.height = h
	return l
}

func (l Logs) Level() models.LogLevel {
	return logLevels[l.levelIndex]
}

func (l Logs) Update(msg tea.Msg) (Logs, tea.Cmd) {
	switch msg := msg.(type) {
	case logsMsg:
		l.err = msg.err
		if msg.err == nil {
			l.logs = msg.logs
			if l.scrollOffset > l.maxScroll() {
				l.scrollOffset = l.maxScroll()
			}
		}

	case tea.KeyMsg:
		switch msg.String() {
		case "left":
			if l.levelIndex > 0 {
				l.levelIndex--
				l.scrollOffset = 0
				return l, l.Refresh()
			}
		case "right":
			if l.levelIndex < len(logLevels)-1 {
				l.levelIndex++
				l.scrollOffset = 0
				return l, l.Refresh()
			}
		case "up", "k":
			if l.scrollOffset > 0 {
				l.scrollOffset--
			}
		case "down", "j":
			if l.scrollOffset < l.maxScroll() {
				l.scrollOffset++
			}
		case "g":
			l.scrollOffset = 0
		case "G":
			l.scrollOffset = l.maxScroll()
		}
	}
	return l, nil
}

func (l Logs) visibleLines() int {
	if n := l.height - 6; n > 0 {
		return n
	}
	return 10
}

func (l Logs) maxScroll() int {
	if m := len(l.logs) - l.visibleLines(); m > 0 {
		return m
	}
	return 0
}

func (l Logs) View() string {
	parts := []string{title.Render("Logs"), l.renderFilter()}
	if l.err != nil {
		parts = append(parts, failStyle.Render("error: "+l.err.Error()))
	}
	parts = append(parts, "", l.renderLogs())
	return lipgloss.JoinVertical(lipgloss.Left, parts...)
}

func (l Logs) renderFilter() string {
	var parts []string
	for i, level := range logLevels {
		name := strings.ToUpper(string(level))
		if level == "" {
			name = "ALL"
		}
		if i == l.levelIndex {
			parts = append(parts, tabActive.Render("["+name+"]"))
		} else {
			parts = append(parts, tabInactive.Render(name))
		}
	}
	return "Filter: " + strings.Join(parts, " ") + "  (←/→ to change)"
}

func (l Logs) renderLogs() string {
	if len(l.logs) == 0 {
		return muted.Render("No logs")
	}

	start := l.scrollOffset
	end := start + l.visibleLines()
	if end > len(l.logs) {
		end = len(l.logs)
	}

	lines := make([]string, 0, end-start)
	for _, entry := range l.logs[start:end] {
		lines = append(lines, l.formatLog(entry))
	}
	header := muted.Render(fmt.Sprintf("  [%d-%d of %d]", start+1, end, len(l.logs)))
	return header + "\n" + strings.Join(lines, "\n")
}

func (l Logs) formatLog(entry models.RunLog) string {
	level := fmt.Sprintf("%-5s", strings.ToUpper(string(entry.Level)))
	var style lipgloss.Style
	switch entry.Level {
	case models.LogLevelInfo:
		style = passStyle
	case models.LogLevelWarn:
		style = skipStyle
	case models.LogLevelError:
		style = failStyle
	default:
		style = muted
	}

	run := "    "
	if entry.RunID != nil {
		run = fmt.Sprintf("#%-3d", *entry.RunID)
	}

	msg := entry.Message
	if limit := l.width - 50; limit > 0 {
		msg = truncate(msg, limit)
	}

	return fmt.Sprintf("%s %s %s %s %s",
		muted.Render(entry.Timestamp.Local().Format("15:04:05")),
		style.Render(level),
		muted.Render(run),
		muted.Render(fmt.Sprintf("%-24s", truncate(entry.Scope, 24))),
		msg,
	)
}

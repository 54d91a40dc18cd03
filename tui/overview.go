package tui

import (
	"fmt"
	"sort"
	"time"

	"estate_e2e/models"

	tea "github.com/charmbracelet/bubbletea"
	"github.com/charmbracelet/lipgloss"
)

const (
	overviewRuns = 15
	flakyWindow  = 10
)

type overviewMsg struct {
	runs  []models.SuiteRun
	flaky map[string]int
	err   error
}

// Overview shows the latest run at a glance plus recent history.
type Overview struct {
	src           Source
	width, height int
	runs          []models.SuiteRun
	flaky         map[string]int
	err           error
	now           func() time.Time
}

func NewOverview(src Source) Overview {
	return Overview{src: src, now: time.Now}
}

func (o Overview) Init() tea.Cmd {
	return o.Refresh()
}

func (o Overview) Refresh() tea.Cmd {
	return func() tea.Msg {
		runs, err := o.src.RecentRuns(overviewRuns)
		if err != nil {
			return overviewMsg{err: err}
		}
		flaky, err := o.src.FlakyScenarios(flakyWindow)
		return overviewMsg{runs: runs, flaky: flaky, err: err}
	}
}

func (o Overview) SetSize(w, h int) Overview {
	o.width = w
	o.height = h
	return o
}

func (o Overview) Update(msg tea.Msg) (Overview, tea.Cmd) {
	if msg, ok := msg.(overviewMsg); ok {
		o.err = msg.err
		if msg.err == nil {
			o.runs = msg.runs
			o.flaky = msg.flaky
		}
	}
	return o, nil
}

// lastFinished is the newest run that is no longer running.
func (o Overview) lastFinished() *models.SuiteRun {
	for i := range o.runs {
		if o.runs[i].Status != models.RunStatusRunning {
			return &o.runs[i]
		}
	}
	return nil
}

func (o Overview) View() string {
	parts := []string{title.Render("Overview")}
	if o.err != nil {
		parts = append(parts, failStyle.Render("error: "+o.err.Error()))
	}
	parts = append(parts,
		o.renderStatCards(),
		"",
		title.Render("Recent Runs"),
		o.renderRunsTable(),
		"",
		title.Render(fmt.Sprintf("Flaky (last %d runs)", flakyWindow)),
		o.renderFlaky(),
	)
	return lipgloss.JoinVertical(lipgloss.Left, parts...)
}

func (o Overview) renderStatCards() string {
	lastStatus, passRate, lastAt := "—", "—", "never"
	if len(o.runs) > 0 {
		lastAt = relativeTime(o.runs[0].StartedAt, o.now())
	}
	if run := o.lastFinished(); run != nil {
		lastStatus = string(run.Status)
		if executed := run.Passed + run.Failed; executed > 0 {
			passRate = fmt.Sprintf("%.0f%%", float64(run.Passed)*100/float64(executed))
		}
	}

	cards := []string{
		statCard("Last run", statusStyle(lastStatus).Render(lastStatus)),
		statCard("Pass rate", statValue.Render(passRate)),
		statCard("Started", statValue.Render(lastAt)),
		statCard("Flaky", statValue.Render(fmt.Sprintf("%d", len(o.flaky)))),
	}
	return lipgloss.JoinHorizontal(lipgloss.Top, cards...)
}

func statCard(label, value string) string {
	content := lipgloss.JoinVertical(lipgloss.Center, value, statLabel.Render(label))
	return cardBorder.Width(16).Render(content)
}

func (o Overview) renderRunsTable() string {
	if len(o.runs) == 0 {
		return muted.Render("No runs yet")
	}

	header := fmt.Sprintf("%5s %-16s %-10s %-24s %5s %5s %5s", "ID", "Started", "Status", "Filter", "Pass", "Fail", "Skip")
	rows := tableHeader.Render(header) + "\n"
	for _, r := range o.runs {
		rows += fmt.Sprintf("%5d %-16s %s %-24s %5d %5d %5d\n",
			r.ID,
			r.StartedAt.Local().Format("01-02 15:04:05"),
			statusStyle(string(r.Status)).Render(fmt.Sprintf("%-10s", r.Status)),
			truncate(r.Filter, 24),
			r.Passed, r.Failed, r.Skipped,
		)
	}
	return rows
}

func (o Overview) renderFlaky() string {
	if len(o.flaky) == 0 {
		return muted.Render("Nothing flaky")
	}
	names := make([]string, 0, len(o.flaky))
	for name := range o.flaky {
		names = append(names, name)
	}
	sort.Slice(names, func(i, j int) bool {
		if o.flaky[names[i]] != o.flaky[names[j]] {
			return o.flaky[names[i]] > o.flaky[names[j]]
		}
		return names[i] < names[j]
	})

	var rows string
	for _, name := range names {
		rows += fmt.Sprintf("%-40s %s\n", truncate(name, 40), failStyle.Render(fmt.Sprintf("%d failed", o.flaky[name])))
	}
	return rows
}

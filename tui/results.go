package tui

import (
	"fmt"
	"strings"

	"estate_e2e/models"

	tea "github.com/charmbracelet/bubbletea"
	"github.com/charmbracelet/lipgloss"
)

const resultsRuns = 50

type runsMsg struct {
	runs []models.SuiteRun
	err  error
}

type scenarioResultsMsg struct {
	runID   int64
	results []models.ScenarioResult
	err     error
}

// Results browses one run at a time: [ and ] step between runs, up and down
// pick a scenario whose messages show below.
type Results struct {
	src           Source
	width, height int
	runs          []models.SuiteRun
	runIndex      int
	results       []models.ScenarioResult
	selectedRow   int
	err           error
}

func NewResults(src Source) Results {
	return Results{src: src}
}

func (r Results) Init() tea.Cmd {
	return r.Refresh()
}

func (r Results) Refresh() tea.Cmd {
	return func() tea.Msg {
		runs, err := r.src.RecentRuns(resultsRuns)
		return runsMsg{runs: runs, err: err}
	}
}

func (r Results) SetSize(w, h int) Results {
	r.width = w
	r.height = h
	return r
}

func (r Results) loadResults(runID int64) tea.Cmd {
	return func() tea.Msg {
		res, err := r.src.ResultsForRun(runID)
		return scenarioResultsMsg{runID: runID, results: res, err: err}
	}
}

func (r Results) run() *models.SuiteRun {
	if r.runIndex < 0 || r.runIndex >= len(r.runs) {
		return nil
	}
	return &r.runs[r.runIndex]
}

// Selected returns the highlighted scenario result, if any.
func (r Results) Selected() *models.ScenarioResult {
	if r.selectedRow < 0 || r.selectedRow >= len(r.results) {
		return nil
	}
	return &r.results[r.selectedRow]
}

func (r Results) Update(msg tea.Msg) (Results, tea.Cmd) {
	switch msg := msg.(type) {
	case runsMsg:
		r.err = msg.err
		if msg.err != nil {
			return r, nil
		}
		r.runs = msg.runs
		if r.runIndex >= len(r.runs) {
			r.runIndex = 0
		}
		if run := r.run(); run != nil {
			return r, r.loadResults(run.ID)
		}
		r.results = nil

	case scenarioResultsMsg:
		// A slow load for a run we already moved away from is dropped.
		if run := r.run(); run == nil || run.ID != msg.runID {
			return r, nil
		}
		r.err = msg.err
		r.results = msg.results
		if r.selectedRow >= len(r.results) {
			r.selectedRow = 0
		}

	case tea.KeyMsg:
		switch msg.String() {
		case "up", "k":
			if r.selectedRow > 0 {
				r.selectedRow--
			}
		case "down", "j":
			if r.selectedRow < len(r.results)-1 {
				r.selectedRow++
			}
		case "home", "g":
			r.selectedRow = 0
		case "end", "G":
			if len(r.results) > 0 {
				r.selectedRow = len(r.results) - 1
			}
		case "]":
			if r.runIndex < len(r.runs)-1 {
				r.runIndex++
				r.selectedRow = 0
				return r, r.loadResults(r.runs[r.runIndex].ID)
			}
		case "[":
			if r.runIndex > 0 {
				r.runIndex--
				r.selectedRow = 0
				return r, r.loadResults(r.runs[r.runIndex].ID)
			}
		}
	}
	return r, nil
}

func (r Results) View() string {
	run := r.run()
	if run == nil {
		return lipgloss.JoinVertical(lipgloss.Left, title.Render("Results"), muted.Render("No runs yet"))
	}

	header := title.Render(fmt.Sprintf("Run %d", run.ID)) +
		statLabel.Render(fmt.Sprintf("  %d/%d  %s  %s", r.runIndex+1, len(r.runs), run.Filter, run.StartedAt.Local().Format("2006-01-02 15:04"))) +
		"  " + muted.Render("[[ ]] Prev/Next run")

	parts := []string{header}
	if r.err != nil {
		parts = append(parts, failStyle.Render("error: "+r.err.Error()))
	}
	parts = append(parts, r.renderTable(), "", r.renderDetails())
	return lipgloss.JoinVertical(lipgloss.Left, parts...)
}

func (r Results) visibleRows() int {
	rows := 20
	if r.height > 0 {
		rows = r.height * 55 / 100
		if rows < 8 {
			rows = 8
		}
	}
	return rows
}

func (r Results) renderTable() string {
	if len(r.results) == 0 {
		return muted.Render("No scenario results")
	}

	header := fmt.Sprintf("%-10s %-40s %-8s %8s %5s", "Group", "Scenario", "Status", "Time", "Reqs")
	rows := tableHeader.Render(header) + "\n"

	visible := r.visibleRows()
	offset := 0
	if r.selectedRow >= visible {
		offset = r.selectedRow - visible + 1
	}
	end := offset + visible
	if end > len(r.results) {
		end = len(r.results)
	}

	for i := offset; i < end; i++ {
		res := r.results[i]
		status := string(res.Status)
		row := fmt.Sprintf("%-10s %-40s %-8s %8s %5d",
			truncate(res.Group, 10),
			truncate(res.Scenario, 40),
			status,
			shortDuration(res.Duration),
			res.RequestCount,
		)
		if i == r.selectedRow {
			rows += tableSelected.Render(row) + "\n"
		} else {
			rows += strings.Replace(row, status, statusStyle(status).Render(status), 1) + "\n"
		}
	}
	if len(r.results) > visible {
		rows += muted.Render(fmt.Sprintf("  [%d-%d of %d]", offset+1, end, len(r.results)))
	}
	return rows
}

func (r Results) renderDetails() string {
	res := r.Selected()
	if res == nil {
		return ""
	}

	width := r.width - 4
	if width < 20 {
		width = 76
	}

	lines := []string{title.Render(res.Scenario)}
	if len(res.Messages) == 0 {
		lines = append(lines, muted.Render("No messages"))
	}
	for _, m := range res.Messages {
		lines = append(lines, wrapText(m, width-4)...)
	}
	if res.ScreenshotKey != "" {
		lines = append(lines, "", statLabel.Render("Screenshot: ")+truncate(res.ScreenshotKey, width-16))
	}
	return panelBorder.Width(width).Render(strings.Join(lines, "\n"))
}

package cli

import (
	"errors"
	"flag"
	"fmt"
	"strings"

	"github.com/charmbracelet/bubbles/table"
	tea "github.com/charmbracelet/bubbletea"
	"github.com/charmbracelet/lipgloss"

	"mergeout/internal/merge"
)

var (
	inspectPanelStyle = lipgloss.NewStyle().Border(lipgloss.RoundedBorder()).Padding(0, 1)
	inspectSelStyle   = lipgloss.NewStyle().Foreground(lipgloss.Color("230")).Background(lipgloss.Color("62")).Bold(true)
)

type inspectModel struct {
	target workDirFlags
	report merge.StatusReport
	table  table.Model
	width  int
	height int
	status string
	err    error
}

type inspectLoadedMsg struct {
	report merge.StatusReport
	err    error
}

func runInspect(args []string) error {
	fs := flag.NewFlagSet("inspect", flag.ContinueOnError)
	var target workDirFlags
	target.register(fs)
	fs.SetOutput(flag.CommandLine.Output())
	if err := fs.Parse(args); err != nil {
		return err
	}
	if strings.TrimSpace(target.workDir) == "" {
		fs.Usage()
		return merge.ErrWorkDirRequired
	}
	if !stdinIsTTY() || !stdoutIsTTY() {
		return errors.New("inspect requires an interactive terminal (TTY); use status instead")
	}

	p := tea.NewProgram(newInspectModel(target), tea.WithAltScreen())
	final, err := p.Run()
	if err != nil {
		return err
	}
	if fm, ok := final.(inspectModel); ok {
		return fm.err
	}
	return nil
}

func newInspectModel(target workDirFlags) inspectModel {
	t := table.New(
		table.WithColumns(inspectColumns()),
		table.WithFocused(true),
		table.WithHeight(12),
	)
	styles := table.DefaultStyles()
	styles.Header = styles.Header.
		BorderStyle(lipgloss.NormalBorder()).
		BorderBottom(true).
		Bold(true)
	styles.Selected = inspectSelStyle
	t.SetStyles(styles)
	return inspectModel{target: target, table: t}
}

func inspectColumns() []table.Column {
	return []table.Column{
		{Title: "Dataset", Width: 28},
		{Title: "State", Width: 12},
		{Title: "Logs", Width: 6},
		{Title: "Good", Width: 6},
		{Title: "Bad", Width: 6},
		{Title: "Ignored", Width: 8},
		{Title: "Files", Width: 6},
		{Title: "Merged", Width: 10},
	}
}

func inspectRows(report merge.StatusReport) []table.Row {
	rows := make([]table.Row, 0, len(report.Datasets))
	for _, d := range report.Datasets {
		merged := "-"
		if d.Merged {
			merged = formatBytesIEC(d.MergedSize)
		}
		rows = append(rows, table.Row{
			d.Name,
			d.State,
			fmt.Sprint(d.Logs),
			fmt.Sprint(d.Good),
			fmt.Sprint(d.Bad),
			fmt.Sprint(d.Ignored),
			fmt.Sprint(d.OutputFiles),
			merged,
		})
	}
	return rows
}

func loadStatusCmd(target workDirFlags) tea.Cmd {
	return func() tea.Msg {
		report, err := loadStatus(target)
		return inspectLoadedMsg{report: report, err: err}
	}
}

func (m inspectModel) Init() tea.Cmd {
	return loadStatusCmd(m.target)
}

func (m inspectModel) Update(msg tea.Msg) (tea.Model, tea.Cmd) {
	switch msg := msg.(type) {
	case tea.WindowSizeMsg:
		m.width = msg.Width
		m.height = msg.Height
		if h := msg.Height - 10; h > 3 {
			m.table.SetHeight(h)
		}
		return m, nil
	case inspectLoadedMsg:
		if msg.err != nil {
			m.err = msg.err
			return m, tea.Quit
		}
		m.report = msg.report
		m.table.SetRows(inspectRows(msg.report))
		m.status = fmt.Sprintf("%d datasets, %d merged, %d need attention",
			msg.report.Totals.Datasets, msg.report.Totals.Merged, msg.report.Totals.Attention)
		return m, nil
	case tea.KeyMsg:
		switch msg.String() {
		case "q", "esc", "ctrl+c":
			return m, tea.Quit
		case "r":
			m.status = "reloading..."
			return m, loadStatusCmd(m.target)
		}
	}

	var cmd tea.Cmd
	m.table, cmd = m.table.Update(msg)
	return m, cmd
}

func (m inspectModel) selected() (merge.DatasetStatus, bool) {
	i := m.table.Cursor()
	if i < 0 || i >= len(m.report.Datasets) {
		return merge.DatasetStatus{}, false
	}
	return m.report.Datasets[i], true
}

func (m inspectModel) View() string {
	header := summaryTitleStyle.Render("mergeout inspect") + " " + summaryMutedStyle.Render(m.report.WorkDir)
	hints := summaryMutedStyle.Render("up/down: move  r: reload  q: quit")

	details := "no dataset selected"
	if d, ok := m.selected(); ok {
		lines := []string{d.Name + " [" + d.State + "]"}
		if len(d.BadJobs) > 0 {
			lines = append(lines, "bad jobs: "+joinInts(d.BadJobs))
		}
		if d.Resubmit {
			lines = append(lines, "resubmission file written")
		}
		if d.OutputInfo {
			lines = append(lines, "output info ready for condor merge")
		}
		if d.Merged {
			lines = append(lines, "merged: "+d.MergedPath)
		}
		if d.Error != "" {
			lines = append(lines, summaryErrorStyle.Render(d.Error))
		}
		details = strings.Join(lines, "\n")
	}

	return lipgloss.JoinVertical(lipgloss.Left,
		header,
		inspectPanelStyle.Render(m.table.View()),
		inspectPanelStyle.Render(details),
		m.status,
		hints,
	)
}

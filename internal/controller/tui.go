package controller

import (
	"context"
	"fmt"
	"io"
	"log/slog"
	"sort"
	"strings"
	"sync"

	"github.com/charmbracelet/bubbles/spinner"
	tea "github.com/charmbracelet/bubbletea"
	"github.com/charmbracelet/lipgloss"

	m "profbisect.dev/pkg/profbisect/internal/model"
)

var (
	headerStyle = lipgloss.NewStyle().
			Foreground(lipgloss.Color("0")).
			Background(lipgloss.Color("51")).
			Bold(true).
			Padding(0, 1)

	labelStyle = lipgloss.NewStyle().
			Foreground(lipgloss.Color("45"))

	valueStyle = lipgloss.NewStyle().
			Foreground(lipgloss.Color("231")).
			Bold(true)

	dimStyle = lipgloss.NewStyle().
			Foreground(lipgloss.Color("245"))

	goodStyle = lipgloss.NewStyle().
			Foreground(lipgloss.Color("46")).
			Bold(true)

	badStyle = lipgloss.NewStyle().
			Foreground(lipgloss.Color("196")).
			Bold(true)

	skipStyle = lipgloss.NewStyle().
			Foreground(lipgloss.Color("226")).
			Bold(true)
)

// TUI implements UI with a Bubble Tea progress view.
type TUI struct {
	output  io.Writer
	mu      sync.Mutex
	program *tea.Program
	done    chan struct{}
	mode    StartMode
}

// NewTUI creates a new TUI writing to output.
func NewTUI(output io.Writer) *TUI {
	return &TUI{output: output}
}

// Start launches the live view in bisect mode. View mode renders statically.
func (t *TUI) Start(ctx context.Context, options ...StartOption) error {
	if err := ctx.Err(); err != nil {
		return err
	}

	cfg := newStartConfig(options)

	t.mu.Lock()
	defer t.mu.Unlock()

	t.mode = cfg.mode
	if t.mode != ModeBisect || t.program != nil {
		return nil
	}

	// Keyboard input stays with the terminal so Ctrl-C reaches the process
	// signal handler and cancels the run context.
	t.program = tea.NewProgram(newProgressModel(),
		tea.WithOutput(t.output),
		tea.WithInput(nil),
		tea.WithoutSignalHandler(),
	)
	t.done = make(chan struct{})

	go func(program *tea.Program, done chan struct{}) {
		defer close(done)

		if _, err := program.Run(); err != nil {
			slog.Error("Progress view failed", "error", err)
		}
	}(t.program, t.done)

	return nil
}

// Close stops the live view if it is still running.
func (t *TUI) Close(_ context.Context) {
	t.mu.Lock()
	program, done := t.program, t.done
	t.program = nil
	t.mu.Unlock()

	if program == nil {
		return
	}

	program.Quit()
	<-done
}

// Wait blocks until the live view has rendered its final frame.
func (t *TUI) Wait(ctx context.Context) {
	t.mu.Lock()
	done := t.done
	t.mu.Unlock()

	if done == nil {
		return
	}

	select {
	case <-done:
	case <-ctx.Done():
	}
}

// DisplayRunInfo shows the run header.
func (t *TUI) DisplayRunInfo(_ context.Context, info RunInfo) {
	t.send(runInfoMsg(info))
}

// DisplayOracleRun updates the live counters.
func (t *TUI) DisplayOracleRun(_ context.Context, run m.OracleRun) {
	t.send(oracleRunMsg(run))
}

// DisplayCheck renders the check outcome and ends the live view.
func (t *TUI) DisplayCheck(ctx context.Context, report m.CheckReport) error {
	if err := ctx.Err(); err != nil {
		return err
	}

	if !t.send(checkMsg(report)) {
		_, err := fmt.Fprint(t.output, renderCheck(report))
		return err
	}

	return nil
}

// DisplayReport renders the report. In bisect mode it ends the live view.
func (t *TUI) DisplayReport(ctx context.Context, report m.Report) error {
	if err := ctx.Err(); err != nil {
		return err
	}

	if !t.send(reportMsg(report)) {
		_, err := fmt.Fprint(t.output, renderReport(report))
		return err
	}

	return nil
}

// send forwards msg to the running program and reports whether there was one.
func (t *TUI) send(msg tea.Msg) bool {
	t.mu.Lock()
	program := t.program
	t.mu.Unlock()

	if program == nil {
		return false
	}

	program.Send(msg)

	return true
}

type (
	runInfoMsg   RunInfo
	oracleRunMsg m.OracleRun
	reportMsg    m.Report
	checkMsg     m.CheckReport
)

// progressModel is the Bubble Tea model of a running bisection.
type progressModel struct {
	spinner  spinner.Model
	info     *RunInfo
	verdicts map[m.Verdict]int
	last     *m.OracleRun
	final    string
}

func newProgressModel() progressModel {
	return progressModel{
		spinner:  spinner.New(spinner.WithSpinner(spinner.Dot), spinner.WithStyle(labelStyle)),
		verdicts: make(map[m.Verdict]int),
	}
}

func (pm progressModel) Init() tea.Cmd {
	return pm.spinner.Tick
}

func (pm progressModel) Update(msg tea.Msg) (tea.Model, tea.Cmd) {
	switch msg := msg.(type) {
	case runInfoMsg:
		info := RunInfo(msg)
		pm.info = &info

		return pm, nil

	case oracleRunMsg:
		run := m.OracleRun(msg)
		pm.last = &run

		if run.Counted {
			pm.verdicts[run.Verdict]++
		}

		return pm, nil

	case reportMsg:
		pm.final = renderReport(m.Report(msg))
		return pm, tea.Quit

	case checkMsg:
		pm.final = renderCheck(m.CheckReport(msg))
		return pm, tea.Quit

	case spinner.TickMsg:
		var cmd tea.Cmd

		pm.spinner, cmd = pm.spinner.Update(msg)

		return pm, cmd
	}

	return pm, nil
}

func (pm progressModel) View() string {
	if pm.final != "" {
		return pm.final
	}

	var b strings.Builder

	b.WriteString(headerStyle.Render("profbisect"))
	b.WriteString("\n\n")

	if pm.info != nil {
		fmt.Fprintf(&b, "  %s %s\n", labelStyle.Render("run"), valueStyle.Render(pm.info.RunID))
		fmt.Fprintf(&b, "  %s %s\n", labelStyle.Render("decider"), valueStyle.Render(pm.info.Decider))
		fmt.Fprintf(&b, "  %s %s\n", labelStyle.Render("seed"), valueStyle.Render(fmt.Sprintf("%d", pm.info.Seed)))
		fmt.Fprintf(&b, "  %s %s\n\n", labelStyle.Render("components"), valueStyle.Render(fmt.Sprintf("%d", pm.info.Common)))
	}

	calls := 0
	for _, count := range pm.verdicts {
		calls += count
	}

	fmt.Fprintf(&b, "  %s running decider, %d call(s) so far  %s\n",
		pm.spinner.View(), calls, renderVerdictCounts(pm.verdicts))

	if pm.last != nil {
		b.WriteString(dimStyle.Render(fmt.Sprintf("  last: %d components -> %s in %s",
			pm.last.Components, pm.last.Verdict, pm.last.Duration)))
		b.WriteString("\n")
	}

	return b.String()
}

func renderVerdictCounts(verdicts map[m.Verdict]int) string {
	keys := make([]m.Verdict, 0, len(verdicts))
	for verdict := range verdicts {
		keys = append(keys, verdict)
	}

	sort.Slice(keys, func(i, j int) bool { return keys[i] < keys[j] })

	parts := make([]string, 0, len(keys))
	for _, verdict := range keys {
		parts = append(parts, verdictStyle(verdict).Render(fmt.Sprintf("%s %d", verdict, verdicts[verdict])))
	}

	return strings.Join(parts, " ")
}

func verdictStyle(verdict m.Verdict) lipgloss.Style {
	switch verdict {
	case m.Good:
		return goodStyle
	case m.Bad:
		return badStyle
	case m.Skip:
		return skipStyle
	}

	return dimStyle
}

func renderReport(report m.Report) string {
	var b strings.Builder

	b.WriteString(headerStyle.Render("profbisect report"))
	b.WriteString("\n\n")
	b.WriteString(renderSummaryTable(report))
	b.WriteString("\n")

	if report.BisectResults.Empty() {
		b.WriteString(goodStyle.Render("  No culprits found"))
		b.WriteString("\n")

		return b.String()
	}

	b.WriteString(renderCulpritTable(report.BisectResults))

	return b.String()
}

func renderCheck(report m.CheckReport) string {
	var b strings.Builder

	b.WriteString(headerStyle.Render("profbisect check"))
	b.WriteString("\n\n")
	b.WriteString(renderCheckTable(report))

	if report.Labeled() {
		b.WriteString(goodStyle.Render("  inputs are labeled correctly"))
	} else {
		b.WriteString(badStyle.Render("  inputs are mislabeled"))
	}

	b.WriteString("\n")

	return b.String()
}

// Package report renders live run progress and the final summary.
package report

import (
	"fmt"
	"io"
	"strings"
	"time"

	"github.com/charmbracelet/lipgloss"

	"github.com/atomikpanda/provision/internal/color"
	"github.com/atomikpanda/provision/internal/step"
)

// maxMessageLines caps how much failure detail is echoed per step; the full
// text stays in the result and the history log.
const maxMessageLines = 5

// Summary holds the step counts of one run.
type Summary struct {
	Total          int // steps in the run, processed or not
	OK             int
	Skipped        int
	Failed         int
	FailedOptional int
	FailedRequired int
}

// Processed returns how many steps produced a result.
func (s Summary) Processed() int {
	return s.OK + s.Skipped + s.Failed
}

// Summarize counts results. total is the number of steps in the run, which
// exceeds len(results) when the run aborted early.
func Summarize(results []step.Result, total int) Summary {
	s := Summary{Total: total}
	for _, r := range results {
		switch r.Status {
		case step.StatusOK:
			s.OK++
		case step.StatusSkipped:
			s.Skipped++
		case step.StatusFailed:
			s.Failed++
			if r.Optional {
				s.FailedOptional++
			}
		}
	}
	s.FailedRequired = s.Failed - s.FailedOptional
	return s
}

// Printer writes progress lines to Out.
type Printer struct {
	Out     io.Writer
	Verbose bool
}

// New returns a Printer writing to out.
func New(out io.Writer, verbose bool) *Printer {
	return &Printer{Out: out, Verbose: verbose}
}

var boxStyle = lipgloss.NewStyle().
	Border(lipgloss.NormalBorder()).
	Padding(0, 1)

// Header prints the run banner.
func (p *Printer) Header(title string, steps int) {
	fmt.Fprintln(p.Out, boxStyle.Render(color.Bold(title)+"\n"+fmt.Sprintf("%d step(s)", steps)))
}

// StepStart announces a step before it runs.
func (p *Printer) StepStart(index, total int, name string) {
	fmt.Fprintf(p.Out, "\n%s %s …\n", color.Cyan(position(index, total)), color.Bold(name))
}

// Command echoes a shell command about to run.
func (p *Printer) Command(command string) {
	fmt.Fprintf(p.Out, "    $ %s\n", command)
}

// DryRun notes work that was described but not performed.
func (p *Printer) DryRun(what string) {
	fmt.Fprintf(p.Out, "    %s\n", color.Dim("[dry-run] "+what))
}

// Detail prints an indented line only in verbose mode.
func (p *Printer) Detail(format string, a ...any) {
	if !p.Verbose {
		return
	}
	fmt.Fprintf(p.Out, "    %s\n", color.Dim(fmt.Sprintf(format, a...)))
}

// Result prints the outcome line for r, with up to maxMessageLines of
// failure detail.
func (p *Printer) Result(r step.Result) {
	pos := position(r.Index, r.Total)
	switch r.Status {
	case step.StatusOK:
		fmt.Fprintf(p.Out, "  %s %s: %s\n", pos, r.Name, color.BoldGreen("OK"))
	case step.StatusSkipped:
		fmt.Fprintf(p.Out, "  %s %s: %s\n", pos, r.Name, color.Yellow("SKIPPED ("+r.Message+")"))
	case step.StatusFailed:
		label := "FAILED"
		if r.Optional {
			label += " (optional)"
		}
		fmt.Fprintf(p.Out, "  %s %s: %s\n", pos, r.Name, color.BoldRed(label))
		for _, line := range messageLines(r.Message) {
			fmt.Fprintf(p.Out, "      %s\n", line)
		}
	}
	if p.Verbose && r.Duration > 0 {
		fmt.Fprintf(p.Out, "      %s\n", color.Dim("took "+r.Duration.Round(time.Millisecond).String()))
	}
}

// Aborted prints the notice shown when a required step fails.
func (p *Printer) Aborted() {
	fmt.Fprintf(p.Out, "\n%s\n", color.BoldRed(">>> Aborting due to failed required step."))
}

// Done prints the completion notice.
func (p *Printer) Done(notes ...string) {
	fmt.Fprintf(p.Out, "\n%s\n", color.BoldGreen(">>> Done."))
	for _, n := range notes {
		fmt.Fprintf(p.Out, ">>> %s\n", n)
	}
}

// Summary prints the final counts. The failed-required line appears only
// when at least one required step failed.
func (p *Printer) Summary(s Summary) {
	lines := []string{
		color.Bold("Summary"),
		fmt.Sprintf("Steps performed (OK):  %d/%d", s.OK, s.Total),
		fmt.Sprintf("Skipped:               %d", s.Skipped),
		fmt.Sprintf("Failed (optional):     %d", s.FailedOptional),
	}
	if s.FailedRequired > 0 {
		lines = append(lines, color.BoldRed(fmt.Sprintf("Failed (required):     %d", s.FailedRequired)))
	}
	fmt.Fprintln(p.Out)
	fmt.Fprintln(p.Out, boxStyle.Render(strings.Join(lines, "\n")))
}

func position(index, total int) string {
	return fmt.Sprintf("[%d/%d]", index, total)
}

func messageLines(msg string) []string {
	msg = strings.TrimSpace(msg)
	if msg == "" {
		return nil
	}
	lines := strings.Split(msg, "\n")
	if len(lines) > maxMessageLines {
		lines = append(lines[:maxMessageLines], fmt.Sprintf("… (%d more lines)", len(lines)-maxMessageLines))
	}
	return lines
}

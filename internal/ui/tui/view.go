package tui

import (
	"fmt"
	"strings"
	"time"

	"github.com/charmbracelet/lipgloss"

	"github.com/imamik/tcstack/internal/provisioning"
)

// styleFunc is a single-string styling function.
type styleFunc func(string) string

// sf wraps a lipgloss.Style into a styleFunc.
func sf(s lipgloss.Style) styleFunc {
	return func(str string) string { return s.Render(str) }
}

func renderView(m Model) string {
	var b strings.Builder

	renderHeader(&b, m)
	renderProgressBar(&b, m)
	renderStages(&b, m)

	if failed := failedRows(m); len(failed) > 0 {
		renderErrors(&b, failed)
	}

	renderFooter(&b, m)

	return b.String()
}

func renderHeader(b *strings.Builder, m Model) {
	title := fmt.Sprintf("tcstack %s: %s", m.Mode, m.StackName)
	b.WriteString(titleStyle.Render(title))

	status := " "
	switch {
	case m.Err != nil:
		status += failedStyle.Render("Failed")
	case m.Done:
		status += readyStyle.Render("Complete")
	case m.Count(provisioning.StatusRunning) > 0:
		status += activeStyle.Render(currentSpinner(m.SpinnerFrame)+" ") +
			warningStyle.Render(fmt.Sprintf("%d running", m.Count(provisioning.StatusRunning)))
	default:
		status += dimStyle.Render("Waiting...")
	}
	b.WriteString(status)
	b.WriteString("\n")
	b.WriteString(subtitleStyle.Render(fmt.Sprintf("  %d nodes", len(m.Nodes))))
	b.WriteString("\n")
}

func renderProgressBar(b *strings.Builder, m Model) {
	progress := calculateProgress(m)
	barWidth := 40
	if m.Width > 0 && m.Width < 80 {
		barWidth = m.Width - 30
		if barWidth < 10 {
			barWidth = 10
		}
	}
	filled := int(float64(barWidth) * progress)
	if filled > barWidth {
		filled = barWidth
	}

	bar := progressBarFull.Render(strings.Repeat("█", filled)) +
		progressBarEmpty.Render(strings.Repeat("░", barWidth-filled))

	fmt.Fprintf(b, "  %s %d%%\n", bar, int(progress*100))
}

func renderStages(b *strings.Builder, m Model) {
	stage := -1
	for _, row := range m.Nodes {
		if row.Stage != stage {
			stage = row.Stage
			b.WriteString(sectionStyle.Render(fmt.Sprintf("  Stage %d", stage+1)))
			b.WriteString("\n")
		}
		icon, style := nodeIcon(row.Status, m.SpinnerFrame)
		dur := ""
		if row.Duration > 0 {
			dur = formatDuration(row.Duration)
		}
		fmt.Fprintf(b, "    %s %-36s %s\n", style(icon), style(row.ID), dimStyle.Render(dur))
	}
}

func renderErrors(b *strings.Builder, rows []NodeRow) {
	b.WriteString(sectionStyle.Render("  Errors"))
	b.WriteString("\n")

	for _, row := range rows {
		fmt.Fprintf(b, "    %s [%s] %s\n",
			failedStyle.Render(crossMark), row.ID, dimStyle.Render(row.Err.Error()))
	}
}

func renderFooter(b *strings.Builder, m Model) {
	elapsed := formatDuration(time.Since(m.StartTime))
	parts := []string{
		fmt.Sprintf("elapsed: %s", elapsed),
		fmt.Sprintf("done: %d/%d", m.Count(provisioning.StatusCompleted), len(m.Nodes)),
	}
	if skipped := m.Count(provisioning.StatusSkipped); skipped > 0 {
		parts = append(parts, fmt.Sprintf("skipped: %d", skipped))
	}
	b.WriteString(footerStyle.Render(fmt.Sprintf("  %s  |  q: quit", strings.Join(parts, "  |  "))))
	b.WriteString("\n")
}

// Helper functions

func failedRows(m Model) []NodeRow {
	var rows []NodeRow
	for _, row := range m.Nodes {
		if row.Status == provisioning.StatusFailed && row.Err != nil {
			rows = append(rows, row)
		}
	}
	return rows
}

func nodeIcon(status provisioning.Status, frame int) (string, styleFunc) {
	switch status {
	case provisioning.StatusCompleted:
		return checkMark, sf(readyStyle)
	case provisioning.StatusFailed:
		return crossMark, sf(failedStyle)
	case provisioning.StatusSkipped:
		return skipMark, sf(warningStyle)
	case provisioning.StatusRunning:
		return currentSpinner(frame), sf(activeStyle)
	default:
		return pending, sf(dimStyle)
	}
}

func currentSpinner(frame int) string {
	if len(spinnerFrames) == 0 {
		return spinner
	}
	if frame < 0 {
		frame = -frame
	}
	return spinnerFrames[frame%len(spinnerFrames)]
}

// calculateProgress counts finished nodes, whatever their outcome.
func calculateProgress(m Model) float64 {
	if m.Done {
		return 1.0
	}
	if len(m.Nodes) == 0 {
		return 0
	}
	finished := m.Count(provisioning.StatusCompleted) +
		m.Count(provisioning.StatusFailed) +
		m.Count(provisioning.StatusSkipped)
	return float64(finished) / float64(len(m.Nodes))
}

func formatDuration(d time.Duration) string {
	d = d.Round(time.Second)
	if d < time.Minute {
		return fmt.Sprintf("%ds", int(d.Seconds()))
	}
	if d < time.Hour {
		return fmt.Sprintf("%dm%ds", int(d.Minutes()), int(d.Seconds())%60)
	}
	return fmt.Sprintf("%dh%dm", int(d.Hours()), int(d.Minutes())%60)
}

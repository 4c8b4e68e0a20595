package tui

import (
	"fmt"
	"strings"
	"time"

	"github.com/charmbracelet/lipgloss"

	"github.com/neonlink/neonlink-scriptd/internal/supervisor"
)

// View implements tea.Model.
func (m Model) View() string {
	if m.quitting {
		return ""
	}

	var b strings.Builder

	title := fmt.Sprintf("neonlink-scriptd — %d running — up %s",
		m.active, formatDuration(time.Since(m.startTime)))
	b.WriteString(titleStyle.Render(title))
	b.WriteString("\n")

	b.WriteString(tableStyle.Render(m.renderTable()))
	b.WriteString("\n")
	b.WriteString(footerStyle.Render("q: quit"))
	return b.String()
}

func (m Model) renderTable() string {
	header := fmt.Sprintf("%-20s %-8s %-7s %-9s %-6s %s",
		"SCRIPT", "STATUS", "PID", "UPTIME", "EXIT", "LAST OUTPUT")

	rows := []string{headerStyle.Render(header)}
	if len(m.records) == 0 {
		rows = append(rows, mutedStyle.Render("no runs yet"))
	}
	for _, rec := range m.records {
		rows = append(rows, m.renderRow(rec))
	}
	return lipgloss.JoinVertical(lipgloss.Left, rows...)
}

func (m Model) renderRow(rec supervisor.RunRecord) string {
	exit := "-"
	uptime := formatDuration(rec.Uptime())
	if rec.ExitCode != nil {
		exit = fmt.Sprintf("%d", *rec.ExitCode)
	}

	line := fmt.Sprintf("%-20s %s %-7d %-9s %-6s %s",
		truncate(rec.Name, 20),
		statusCell(rec.Status),
		rec.PID,
		uptime,
		exit,
		truncate(lastLine(rec), max(10, m.width-60)),
	)
	return rowStyle.Render(line)
}

func statusCell(s supervisor.Status) string {
	padded := fmt.Sprintf("%-8s", s.String())
	switch s {
	case supervisor.StatusRunning:
		return runningStyle.Render(padded)
	case supervisor.StatusErrored:
		return erroredStyle.Render(padded)
	case supervisor.StatusStopped:
		return stoppedStyle.Render(padded)
	default:
		return warnStyle.Render(padded)
	}
}

// lastLine picks the most recent output line, preferring stderr since errors
// are what an operator scans for.
func lastLine(rec supervisor.RunRecord) string {
	if n := len(rec.Stderr); n > 0 {
		return rec.Stderr[n-1]
	}
	if n := len(rec.Stdout); n > 0 {
		return rec.Stdout[n-1]
	}
	return ""
}

func truncate(s string, width int) string {
	if width < 1 || len(s) <= width {
		return s
	}
	if width <= 1 {
		return "…"
	}
	return s[:width-1] + "…"
}

func formatDuration(d time.Duration) string {
	if d <= 0 {
		return "0s"
	}
	d = d.Round(time.Second)
	if d < time.Minute {
		return d.String()
	}
	if d < time.Hour {
		return fmt.Sprintf("%dm%02ds", int(d.Minutes()), int(d.Seconds())%60)
	}
	return fmt.Sprintf("%dh%02dm", int(d.Hours()), int(d.Minutes())%60)
}

package tui

import (
	"fmt"
	"strings"
	"time"

	"github.com/charmbracelet/lipgloss"
)

var (
	headerStyle = lipgloss.NewStyle().
		Background(lipgloss.Color("236")).
		Foreground(lipgloss.Color("255")).
		Padding(0, 1)

	sectionStyle = lipgloss.NewStyle().
		Border(lipgloss.RoundedBorder()).
		BorderForeground(lipgloss.Color("240")).
		Padding(0, 1)

	runningStyle = lipgloss.NewStyle().
		Foreground(lipgloss.Color("42"))

	stoppedStyle = lipgloss.NewStyle().
		Foreground(lipgloss.Color("244"))

	warningStyle = lipgloss.NewStyle().
		Foreground(lipgloss.Color("214"))

	failedStyle = lipgloss.NewStyle().
		Foreground(lipgloss.Color("196"))

	barFillStyle = lipgloss.NewStyle().
		Foreground(lipgloss.Color("39"))

	dimmedStyle = lipgloss.NewStyle().
		Foreground(lipgloss.Color("240"))

	statusBarStyle = lipgloss.NewStyle().
		Background(lipgloss.Color("236")).
		Foreground(lipgloss.Color("255"))
)

// View renders the TUI
func (m Model) View() string {
	if m.width == 0 {
		return "Loading..."
	}

	var b strings.Builder

	header := fmt.Sprintf(" nudge │ %s │ reminders: %d ", m.snapshot.Status, m.snapshot.Count)
	b.WriteString(headerStyle.Width(m.width).Render(header))
	b.WriteString("\n")

	b.WriteString(sectionStyle.Width(m.width - 2).Render(m.renderSession()))
	b.WriteString("\n")

	b.WriteString(sectionStyle.Width(m.width - 2).Render(m.renderHistory()))
	b.WriteString("\n")

	help := " s start │ x stop │ r refresh │ q quit "
	if m.errMsg != "" {
		help = " " + warningStyle.Render(m.errMsg) + " │" + help
	}
	b.WriteString(statusBarStyle.Width(m.width).Render(help))

	return b.String()
}

func (m Model) renderSession() string {
	var b strings.Builder
	b.WriteString("Session\n")

	if !m.snapshot.Running {
		b.WriteString(stoppedStyle.Render("  no session running"))
		b.WriteString("\n")
		b.WriteString(dimmedStyle.Render(fmt.Sprintf("  next start: %s every %s/%s/%s over %s",
			m.session.URL,
			formatSec(m.session.FirstSec),
			formatSec(m.session.SecondSec),
			formatSec(m.session.SubseqSec),
			formatSec(m.session.TotalSec))))
		return b.String()
	}

	b.WriteString(runningStyle.Render(fmt.Sprintf("  %s", m.snapshot.Status)))
	b.WriteString("\n")
	b.WriteString(fmt.Sprintf("  elapsed %s of %s │ next reminder in %s\n",
		formatSec(m.snapshot.ElapsedSec),
		formatSec(m.snapshot.TotalSec),
		formatSec(m.snapshot.NextInSec)))
	b.WriteString("  " + m.renderBar())
	return b.String()
}

func (m Model) renderBar() string {
	width := m.width - 12
	if width < 10 {
		width = 10
	}
	filled := 0
	if m.snapshot.PendingWaitSec > 0 {
		filled = width * m.snapshot.Progress / 100
	}
	if filled > width {
		filled = width
	}
	bar := barFillStyle.Render(strings.Repeat("█", filled)) +
		dimmedStyle.Render(strings.Repeat("░", width-filled))
	return fmt.Sprintf("%s %3d%%", bar, m.snapshot.Progress)
}

func (m Model) renderHistory() string {
	var b strings.Builder
	b.WriteString("Recent reminders\n")

	if len(m.records) == 0 {
		b.WriteString(dimmedStyle.Render("  none yet"))
		return b.String()
	}

	for i := len(m.records) - 1; i >= 0; i-- {
		r := m.records[i]
		line := fmt.Sprintf("  #%-3d %s  %s", r.Count, r.Timestamp, r.Status)
		if r.Note != "" {
			line += "  " + r.Note
		}
		if r.Status == "failed" {
			b.WriteString(failedStyle.Render(line))
		} else {
			b.WriteString(line)
		}
		b.WriteString("\n")
	}
	return strings.TrimRight(b.String(), "\n")
}

func formatSec(sec int) string {
	d := time.Duration(sec) * time.Second
	if d >= time.Hour {
		return fmt.Sprintf("%dh%02dm", int(d.Hours()), int(d.Minutes())%60)
	}
	if d >= time.Minute {
		return fmt.Sprintf("%dm%02ds", int(d.Minutes()), int(d.Seconds())%60)
	}
	return fmt.Sprintf("%ds", sec)
}

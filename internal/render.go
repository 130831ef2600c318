package internal

import (
	"fmt"
	"strings"
	"time"

	"github.com/charmbracelet/glamour"
	"github.com/charmbracelet/lipgloss"
	"github.com/dustin/go-humanize"
)

var (
	badgeBase = lipgloss.NewStyle().Bold(true).Padding(0, 1)

	riskStyles = map[RiskLevel]lipgloss.Style{
		RiskHigh:    badgeBase.Foreground(lipgloss.Color("231")).Background(lipgloss.Color("160")),
		RiskMedium:  badgeBase.Foreground(lipgloss.Color("232")).Background(lipgloss.Color("214")),
		RiskLow:     badgeBase.Foreground(lipgloss.Color("232")).Background(lipgloss.Color("114")),
		RiskUnknown: badgeBase.Foreground(lipgloss.Color("231")).Background(lipgloss.Color("244")),
	}

	statusStyles = map[DocumentStatus]lipgloss.Style{
		StatusSafe:   badgeBase.Foreground(lipgloss.Color("232")).Background(lipgloss.Color("114")),
		StatusDanger: badgeBase.Foreground(lipgloss.Color("231")).Background(lipgloss.Color("160")),
		StatusReview: badgeBase.Foreground(lipgloss.Color("232")).Background(lipgloss.Color("214")),
	}

	headingStyle = lipgloss.NewStyle().Bold(true).Foreground(lipgloss.Color("62"))
	mutedStyle   = lipgloss.NewStyle().Foreground(lipgloss.Color("244"))
)

// Label returns the archive badge text
func (s DocumentStatus) Label() string {
	switch s {
	case StatusSafe:
		return "안전"
	case StatusDanger:
		return "위험"
	default:
		return "검토 필요"
	}
}

// RiskBadge renders a colored risk badge, or plain brackets when color is off
func RiskBadge(level RiskLevel, color bool) string {
	if !color {
		return "[" + level.Label() + "]"
	}
	return riskStyles[ParseRiskLevel(string(level))].Render(level.Label())
}

// StatusBadge renders a colored archive status badge
func StatusBadge(status DocumentStatus, color bool) string {
	if !color {
		return "[" + status.Label() + "]"
	}
	style, ok := statusStyles[status]
	if !ok {
		style = statusStyles[StatusReview]
	}
	return style.Render(status.Label())
}

// Heading renders a section title
func Heading(s string, color bool) string {
	if !color {
		return s
	}
	return headingStyle.Render(s)
}

// Muted renders secondary text
func Muted(s string, color bool) string {
	if !color {
		return s
	}
	return mutedStyle.Render(s)
}

// FormatDate renders a backend timestamp as YYYY.MM.DD, or "-" when unparsable
func FormatDate(raw string) string {
	t := parseTime(raw)
	if t.IsZero() {
		return "-"
	}
	return t.Format("2006.01.02")
}

// RelativeTime renders a backend timestamp relative to now ("3 minutes ago")
func RelativeTime(raw string) string {
	t := parseTime(raw)
	if t.IsZero() {
		return "-"
	}
	return humanize.Time(t)
}

// RelativeTo renders t relative to now; the zero time renders as "never"
func RelativeTo(t time.Time) string {
	if t.IsZero() {
		return "never"
	}
	return humanize.Time(t)
}

// MarkdownRenderer renders assistant replies for the terminal
type MarkdownRenderer struct {
	renderer *glamour.TermRenderer
}

// NewMarkdownRenderer creates a renderer wrapping at width. When color is off,
// or glamour cannot be initialised, Render returns the input unchanged.
func NewMarkdownRenderer(width int, color bool) *MarkdownRenderer {
	if !color {
		return &MarkdownRenderer{}
	}
	if width <= 0 {
		width = 80
	}
	r, err := glamour.NewTermRenderer(
		glamour.WithAutoStyle(),
		glamour.WithWordWrap(width),
	)
	if err != nil {
		LogDebug("Markdown renderer unavailable: %v", err)
		return &MarkdownRenderer{}
	}
	return &MarkdownRenderer{renderer: r}
}

// Render formats markdown text
func (m *MarkdownRenderer) Render(md string) string {
	if m == nil || m.renderer == nil {
		return md
	}
	out, err := m.renderer.Render(md)
	if err != nil {
		return md
	}
	return strings.TrimRight(out, "\n")
}

// RenderReport formats a normalized report for the terminal
func RenderReport(report *AnalysisReport, color bool) string {
	var b strings.Builder

	b.WriteString(Heading(report.Filename, color))
	b.WriteString("\n")

	counts := report.RiskCounts()
	fmt.Fprintf(&b, "%s %d  %s %d  %s %d",
		RiskBadge(RiskHigh, color), counts[RiskHigh],
		RiskBadge(RiskMedium, color), counts[RiskMedium],
		RiskBadge(RiskLow, color), counts[RiskLow])
	if n := counts[RiskUnknown]; n > 0 {
		fmt.Fprintf(&b, "  %s %d", RiskBadge(RiskUnknown, color), n)
	}
	b.WriteString("\n")

	if len(report.Items) == 0 {
		b.WriteString("\n")
		b.WriteString(Muted("분석된 조항이 없습니다.", color))
		b.WriteString("\n")
		return b.String()
	}

	for _, item := range report.Items {
		b.WriteString("\n")
		fmt.Fprintf(&b, "%s %s %s\n", RiskBadge(item.RiskLevel, color), item.ClauseNumber, item.Title)
		if item.Summary != "" {
			fmt.Fprintf(&b, "  %s\n", item.Summary)
		}
		if item.Suggestion != "" {
			fmt.Fprintf(&b, "  %s %s\n", Muted("수정 제안:", color), item.Suggestion)
		}
	}
	return b.String()
}

package export

import (
	"fmt"
	"io"
	"strings"

	"github.com/iksnae/readgye-cli/internal"
)

var riskOrder = []internal.RiskLevel{internal.RiskHigh, internal.RiskMedium, internal.RiskLow, internal.RiskUnknown}

// MarkdownExporter renders a report as a Markdown document: a risk table, then one section per clause
type MarkdownExporter struct{}

func (e *MarkdownExporter) Export(report *internal.AnalysisReport, w io.Writer) error {
	var b strings.Builder

	fmt.Fprintf(&b, "# %s\n\n", escapeMarkdown(report.Filename))
	fmt.Fprintf(&b, "**Document:** %s  \n**Clauses:** %d\n\n", report.DocumentID, len(report.Items))

	counts := report.RiskCounts()
	b.WriteString("| 위험도 | 조항 수 |\n|---|---|\n")
	for _, level := range riskOrder {
		fmt.Fprintf(&b, "| %s | %d |\n", level.Label(), counts[level])
	}

	for _, item := range report.Items {
		b.WriteString("\n---\n\n")
		writeClause(&b, item)
	}

	if _, err := io.WriteString(w, b.String()); err != nil {
		return fmt.Errorf("failed to write markdown for %s: %w", report.DocumentID, err)
	}
	return nil
}

func writeClause(b *strings.Builder, item internal.AnalysisItem) {
	fmt.Fprintf(b, "## %s %s\n\n", escapeMarkdown(item.ClauseNumber), escapeMarkdown(item.Title))
	fmt.Fprintf(b, "**위험도:** %s\n", item.RiskLevel.Label())
	if item.Summary != "" {
		fmt.Fprintf(b, "\n%s\n", escapeMarkdown(item.Summary))
	}
	if item.Suggestion != "" {
		fmt.Fprintf(b, "\n> **수정 제안:** %s\n", escapeMarkdown(item.Suggestion))
	}
}

// escapeMarkdown escapes ** and __ outside fenced code blocks
func escapeMarkdown(text string) string {
	lines := strings.Split(text, "\n")
	fenced := false
	for i, line := range lines {
		if strings.HasPrefix(line, "```") {
			fenced = !fenced
			continue
		}
		if !fenced {
			lines[i] = strings.NewReplacer("**", `\*\*`, "__", `\_\_`).Replace(line)
		}
	}
	return strings.Join(lines, "\n")
}

func (e *MarkdownExporter) Extension() string { return "md" }

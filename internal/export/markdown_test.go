package export

import (
	"bytes"
	"strings"
	"testing"

	"github.com/iksnae/readgye-cli/internal"
)

func TestMarkdownExporter_Export(t *testing.T) {
	tests := []struct {
		name    string
		report  *internal.AnalysisReport
		want    []string
		notWant []string
	}{
		{
			name:   "full report",
			report: internal.CreateTestReport("doc-4"),
			want: []string{
				"# 프리랜서 용역 계약서.pdf",
				"**Document:** doc-4",
				"**Clauses:** 3",
				"| 높음 | 1 |",
				"| 미분류 | 0 |",
				"## 제3조 지적재산권 귀속",
				"**위험도:** 높음",
				"> **수정 제안:** 저작권은 양도하되",
			},
		},
		{
			name: "clause without suggestion",
			report: internal.CreateTestReportWithItems("doc-5", []internal.AnalysisItem{
				{ClauseNumber: "조항 1", Title: "제목 없음", RiskLevel: internal.RiskUnknown, Summary: "내용"},
			}),
			want:    []string{"## 조항 1 제목 없음", "**위험도:** 미분류", "| 미분류 | 1 |"},
			notWant: []string{"수정 제안"},
		},
		{
			name: "emphasis in text is escaped",
			report: internal.CreateTestReportWithItems("doc-6", []internal.AnalysisItem{
				{ClauseNumber: "제1조", Title: "**중요**", RiskLevel: internal.RiskLow},
			}),
			want: []string{"\\*\\*중요\\*\\*"},
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			var buf bytes.Buffer
			if err := (&MarkdownExporter{}).Export(tt.report, &buf); err != nil {
				t.Fatalf("Export() error = %v", err)
			}
			out := buf.String()
			for _, want := range tt.want {
				if !strings.Contains(out, want) {
					t.Errorf("Export() missing %q in:\n%s", want, out)
				}
			}
			for _, nw := range tt.notWant {
				if strings.Contains(out, nw) {
					t.Errorf("Export() unexpectedly contains %q", nw)
				}
			}
		})
	}
}

func TestEscapeMarkdown(t *testing.T) {
	tests := []struct {
		in   string
		want string
	}{
		{"plain", "plain"},
		{"**bold** and __under__", "\\*\\*bold\\*\\* and \\_\\_under\\_\\_"},
		{"```\n**kept**\n```", "```\n**kept**\n```"},
	}
	for _, tt := range tests {
		if got := escapeMarkdown(tt.in); got != tt.want {
			t.Errorf("escapeMarkdown(%q) = %q, want %q", tt.in, got, tt.want)
		}
	}
}

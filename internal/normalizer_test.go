package internal

import (
	"testing"

	"github.com/google/go-cmp/cmp"
	"github.com/iksnae/readgye-cli/testutil"
)

func TestParseRiskLevel(t *testing.T) {
	tests := []struct {
		input string
		want  RiskLevel
	}{
		{"HIGH", RiskHigh},
		{"MEDIUM", RiskMedium},
		{"LOW", RiskLow},
		{"UNKNOWN", RiskUnknown},
		{"high", RiskUnknown},
		{"", RiskUnknown},
		{"CRITICAL", RiskUnknown},
	}

	for _, tt := range tests {
		if got := ParseRiskLevel(tt.input); got != tt.want {
			t.Errorf("ParseRiskLevel(%q) = %v, want %v", tt.input, got, tt.want)
		}
	}
}

func TestRewritePythonLiterals(t *testing.T) {
	tests := []struct {
		input string
		want  string
	}{
		{`{'a': True}`, `{"a": true}`},
		{`{'a': False, 'b': None}`, `{"a": false, "b": null}`},
		{`{'name': 'Trueman'}`, `{"name": "Trueman"}`},
		{`{"already": "json"}`, `{"already": "json"}`},
	}

	for _, tt := range tests {
		if got := RewritePythonLiterals(tt.input); got != tt.want {
			t.Errorf("RewritePythonLiterals(%q) = %q, want %q", tt.input, got, tt.want)
		}
	}
}

func TestParseLegacyPayload(t *testing.T) {
	tests := []struct {
		name    string
		input   string
		wantNil bool
		wantErr bool
	}{
		{name: "plain prose", input: "이 조항은 일반적입니다.", wantNil: true},
		{name: "empty", input: "   ", wantNil: true},
		{name: "strict json", input: `{"clauses": []}`},
		{name: "leading whitespace", input: "\n  {\"clauses\": []}"},
		{name: "python dict", input: `{'clauses': [], 'ok': True}`},
		{name: "broken", input: `{'clauses': [`, wantNil: true, wantErr: true},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			got, err := ParseLegacyPayload(tt.input)
			if (err != nil) != tt.wantErr {
				t.Fatalf("ParseLegacyPayload() error = %v, wantErr %v", err, tt.wantErr)
			}
			if (got == nil) != tt.wantNil {
				t.Errorf("ParseLegacyPayload() = %v, wantNil %v", got, tt.wantNil)
			}
		})
	}
}

func TestNormalizeAnalysis(t *testing.T) {
	normalizer := NewNormalizer()

	tests := []struct {
		name  string
		items []AnalysisItem
		want  []AnalysisItem
	}{
		{
			name: "python literal summary",
			items: []AnalysisItem{{
				ClauseNumber: "전체",
				Summary:      `{'clauses': [{'clause_number': '1', 'title': 'A', 'risk_level': 'HIGH'}]}`,
				RiskLevel:    "UNKNOWN",
			}},
			want: []AnalysisItem{{ClauseNumber: "1", Title: "A", RiskLevel: RiskHigh}},
		},
		{
			name: "plain prose passes through with coerced risk",
			items: []AnalysisItem{{
				ClauseNumber: "제3조",
				Title:        "지적재산권 귀속",
				RiskLevel:    "severe",
				Summary:      "모든 작업물의 저작권은 발주처에 귀속된다.",
				Suggestion:   "포트폴리오 사용권을 명시하세요.",
			}},
			want: []AnalysisItem{{
				ClauseNumber: "제3조",
				Title:        "지적재산권 귀속",
				RiskLevel:    RiskUnknown,
				Summary:      "모든 작업물의 저작권은 발주처에 귀속된다.",
				Suggestion:   "포트폴리오 사용권을 명시하세요.",
			}},
		},
		{
			name: "legacy payload in suggestion",
			items: []AnalysisItem{{
				Summary:    "요약",
				Suggestion: `{"clauses": [{"article_number": "제5조", "analysis": "위약금 과다", "risk_level": "MEDIUM", "suggestion": "감액"}]}`,
			}},
			want: []AnalysisItem{{ClauseNumber: "제5조", Title: "제목 없음", RiskLevel: RiskMedium, Summary: "위약금 과다", Suggestion: "감액"}},
		},
		{
			name: "fallback clause numbers and titles",
			items: []AnalysisItem{{
				Summary: `{"clauses": [{"original_text": "원문"}, {"clause_number": 7, "title": "B", "risk_level": "LOW"}]}`,
			}},
			want: []AnalysisItem{
				{ClauseNumber: "조항 1", Title: "제목 없음", RiskLevel: RiskUnknown, Summary: "원문"},
				{ClauseNumber: "조항 2", Title: "B", RiskLevel: RiskLow},
			},
		},
		{
			name: "empty clauses falls through to the item",
			items: []AnalysisItem{{
				ClauseNumber: "1",
				Title:        "원본",
				RiskLevel:    "HIGH",
				Summary:      `{'clauses': []}`,
			}},
			want: []AnalysisItem{{ClauseNumber: "1", Title: "원본", RiskLevel: RiskHigh, Summary: `{'clauses': []}`}},
		},
		{
			name: "malformed legacy text is kept verbatim",
			items: []AnalysisItem{{
				ClauseNumber: "2",
				Summary:      `{'clauses': [{'title': 'unterminated`,
				RiskLevel:    "LOW",
			}},
			want: []AnalysisItem{{ClauseNumber: "2", Summary: `{'clauses': [{'title': 'unterminated`, RiskLevel: RiskLow}},
		},
		{
			name: "summary wins over suggestion",
			items: []AnalysisItem{{
				Summary:    `{"clauses": [{"title": "from summary"}]}`,
				Suggestion: `{"clauses": [{"title": "from suggestion"}]}`,
			}},
			want: []AnalysisItem{{ClauseNumber: "조항 1", Title: "from summary", RiskLevel: RiskUnknown}},
		},
		{
			name:  "empty input",
			items: nil,
			want:  []AnalysisItem{},
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			got := normalizer.NormalizeAnalysis(tt.items)
			if diff := cmp.Diff(tt.want, got); diff != "" {
				t.Errorf("NormalizeAnalysis() mismatch (-want +got):\n%s", diff)
			}
		})
	}
}

func TestNormalizeAnalysis_MultipleItemsKeepOrder(t *testing.T) {
	normalizer := NewNormalizer()

	items := []AnalysisItem{
		{ClauseNumber: "1", Title: "first", RiskLevel: "LOW"},
		{Summary: `{'clauses': [{'title': 'x'}, {'title': 'y'}]}`},
		{ClauseNumber: "3", Title: "last", RiskLevel: "HIGH"},
	}

	got := normalizer.NormalizeAnalysis(items)
	titles := make([]string, 0, len(got))
	for _, item := range got {
		titles = append(titles, item.Title)
	}
	want := []string{"first", "x", "y", "last"}
	if diff := cmp.Diff(want, titles); diff != "" {
		t.Errorf("titles mismatch (-want +got):\n%s", diff)
	}
}

func TestNormalizeResult(t *testing.T) {
	normalizer := NewNormalizer()

	report := normalizer.NormalizeResult("doc1", nil)
	if report.DocumentID != "doc1" || len(report.Items) != 0 {
		t.Errorf("NormalizeResult(nil) = %+v, want empty report for doc1", report)
	}

	report = normalizer.NormalizeResult("doc2", &AnalysisResult{
		Filename: "lease.pdf",
		Analysis: []AnalysisItem{{Title: "a", RiskLevel: "HIGH"}, {Title: "b", RiskLevel: "bogus"}},
	})
	if report.Filename != "lease.pdf" {
		t.Errorf("Filename = %q, want lease.pdf", report.Filename)
	}
	counts := report.RiskCounts()
	if counts[RiskHigh] != 1 || counts[RiskUnknown] != 1 {
		t.Errorf("RiskCounts() = %v, want one HIGH and one UNKNOWN", counts)
	}
}

func TestNormalizeAnalysis_ArchivedPythonDict(t *testing.T) {
	got := NewNormalizer().NormalizeAnalysis([]AnalysisItem{{
		ClauseNumber: "전체",
		RiskLevel:    "UNKNOWN",
		Summary:      "  " + testutil.LegacyPythonSummary,
	}})

	want := []AnalysisItem{
		{ClauseNumber: "제1조", Title: "계약 기간", RiskLevel: RiskLow, Summary: "1년 자동 갱신"},
		{ClauseNumber: "제7조", Title: "손해배상", RiskLevel: RiskHigh, Summary: "배상 한도 없음", Suggestion: "한도를 계약금액으로 제한"},
	}
	if diff := cmp.Diff(want, got); diff != "" {
		t.Errorf("NormalizeAnalysis() mismatch (-want +got):\n%s", diff)
	}
}

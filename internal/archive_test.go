package internal

import (
	"testing"

	"github.com/google/go-cmp/cmp"
)

func TestFilterDocuments(t *testing.T) {
	docs := []Document{
		{ID: "1", Filename: "근로계약서.pdf", Status: "done"},
		{ID: "2", Filename: "임대차계약서.pdf", Status: "done", RiskCount: 3},
		{ID: "3", Filename: "Freelance-Agreement.pdf", Status: "processing"},
	}

	tests := []struct {
		name    string
		filter  ArchiveFilter
		query   string
		wantIDs []string
	}{
		{"all", FilterAll, "", []string{"1", "2", "3"}},
		{"done keeps safe only", FilterDone, "", []string{"1"}},
		{"review keeps danger and review", FilterReview, "", []string{"2", "3"}},
		{"query is case-insensitive", FilterAll, "freelance", []string{"3"}},
		{"query plus filter", FilterReview, "임대차", []string{"2"}},
		{"no match", FilterAll, "보험", []string{}},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			got := []string{}
			for _, doc := range FilterDocuments(docs, tt.filter, tt.query) {
				got = append(got, doc.ID)
			}
			if diff := cmp.Diff(tt.wantIDs, got); diff != "" {
				t.Errorf("FilterDocuments() mismatch (-want +got):\n%s", diff)
			}
		})
	}
}

func TestParseArchiveFilter(t *testing.T) {
	tests := []struct {
		in      string
		want    ArchiveFilter
		wantErr bool
	}{
		{"", FilterAll, false},
		{"ALL", FilterAll, false},
		{"done", FilterDone, false},
		{" review ", FilterReview, false},
		{"danger", "", true},
	}
	for _, tt := range tests {
		got, err := ParseArchiveFilter(tt.in)
		if (err != nil) != tt.wantErr || got != tt.want {
			t.Errorf("ParseArchiveFilter(%q) = %q, %v; want %q, wantErr %v", tt.in, got, err, tt.want, tt.wantErr)
		}
	}
}

func TestRecentDocuments(t *testing.T) {
	docs := []Document{{ID: "4"}, {ID: "3"}, {ID: "2"}, {ID: "1"}}

	got := RecentDocuments(docs, 3)
	if len(got) != 3 || got[0].ID != "4" || got[2].ID != "2" {
		t.Errorf("RecentDocuments() = %+v, want the first three", got)
	}
	got[0].ID = "changed"
	if docs[0].ID != "4" {
		t.Error("RecentDocuments() must not alias the input")
	}
	if n := len(RecentDocuments(docs[:1], 3)); n != 1 {
		t.Errorf("RecentDocuments() on a short list returned %d items", n)
	}
}

func TestActivityLabel(t *testing.T) {
	tests := []struct {
		doc  Document
		want string
	}{
		{Document{Status: "processing"}, "분석 중..."},
		{Document{Status: "done", RiskCount: 2}, "2건 위험 발견"},
		{Document{Status: "done"}, "안전"},
	}
	for _, tt := range tests {
		if got := tt.doc.ActivityLabel(); got != tt.want {
			t.Errorf("ActivityLabel(%+v) = %q, want %q", tt.doc, got, tt.want)
		}
	}
}

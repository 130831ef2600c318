package internal

import (
	"fmt"
	"strings"
)

// ArchiveFilter selects documents by badge
type ArchiveFilter string

const (
	FilterAll    ArchiveFilter = "all"
	FilterDone   ArchiveFilter = "done"
	FilterReview ArchiveFilter = "review"
)

// ParseArchiveFilter validates a --filter value
func ParseArchiveFilter(s string) (ArchiveFilter, error) {
	switch f := ArchiveFilter(strings.ToLower(strings.TrimSpace(s))); f {
	case "", FilterAll:
		return FilterAll, nil
	case FilterDone, FilterReview:
		return f, nil
	default:
		return "", fmt.Errorf("unknown filter %q (use all, done or review)", s)
	}
}

// FilterDocuments applies a case-insensitive filename search and a badge
// filter. "done" keeps safe documents; "review" keeps danger and review.
func FilterDocuments(docs []Document, filter ArchiveFilter, query string) []Document {
	query = strings.ToLower(strings.TrimSpace(query))

	out := make([]Document, 0, len(docs))
	for _, doc := range docs {
		if query != "" && !strings.Contains(strings.ToLower(doc.Filename), query) {
			continue
		}
		status := doc.ArchiveStatus()
		switch filter {
		case FilterDone:
			if status != StatusSafe {
				continue
			}
		case FilterReview:
			if status != StatusReview && status != StatusDanger {
				continue
			}
		}
		out = append(out, doc)
	}
	return out
}

// RecentDocuments returns the first n documents; the backend lists newest first
func RecentDocuments(docs []Document, n int) []Document {
	if len(docs) > n {
		docs = docs[:n]
	}
	return append([]Document(nil), docs...)
}

// ActivityLabel is the home screen summary for a document
func (d Document) ActivityLabel() string {
	switch d.ArchiveStatus() {
	case StatusReview:
		return "분석 중..."
	case StatusDanger:
		return fmt.Sprintf("%d건 위험 발견", d.RiskCount)
	default:
		return "안전"
	}
}

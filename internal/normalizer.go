package internal

import (
	"encoding/json"
	"fmt"
	"regexp"
	"strings"
)

// LiteralSubstitution rewrites one token of a Python-literal encoding into its JSON spelling
type LiteralSubstitution struct {
	Pattern     *regexp.Regexp
	Replacement string
}

// LegacyLiteralSubstitutions is applied in order when a legacy payload is not valid JSON.
// Older archive records were stored as str(dict) on the server.
var LegacyLiteralSubstitutions = []LiteralSubstitution{
	{Pattern: regexp.MustCompile(`\bTrue\b`), Replacement: "true"},
	{Pattern: regexp.MustCompile(`\bFalse\b`), Replacement: "false"},
	{Pattern: regexp.MustCompile(`\bNone\b`), Replacement: "null"},
	{Pattern: regexp.MustCompile(`'`), Replacement: `"`},
}

// decodeStrategy tries to expand item into clauses; ok is false when it does not apply
type decodeStrategy func(item AnalysisItem) (clauses []AnalysisItem, ok bool)

// Normalizer converts analysis items of any backend vintage into the current shape
type Normalizer struct {
	strategies []decodeStrategy
}

// NewNormalizer creates a Normalizer that looks for legacy payloads in summary, then suggestion
func NewNormalizer() *Normalizer {
	return &Normalizer{
		strategies: []decodeStrategy{
			legacyFieldStrategy(func(item AnalysisItem) string { return item.Summary }),
			legacyFieldStrategy(func(item AnalysisItem) string { return item.Suggestion }),
		},
	}
}

// NormalizeAnalysis expands legacy payloads and coerces every risk level into the enum.
// It never fails: undecodable text is kept verbatim as a single item.
func (n *Normalizer) NormalizeAnalysis(items []AnalysisItem) []AnalysisItem {
	normalized := make([]AnalysisItem, 0, len(items))

	for _, item := range items {
		if expanded, ok := n.expand(item); ok {
			normalized = append(normalized, expanded...)
			continue
		}
		item.RiskLevel = ParseRiskLevel(string(item.RiskLevel))
		normalized = append(normalized, item)
	}

	return normalized
}

// NormalizeResult builds a report from a detail response
func (n *Normalizer) NormalizeResult(documentID string, result *AnalysisResult) *AnalysisReport {
	if result == nil {
		return &AnalysisReport{DocumentID: documentID, Items: []AnalysisItem{}}
	}
	return &AnalysisReport{
		DocumentID: documentID,
		Filename:   result.Filename,
		Items:      n.NormalizeAnalysis(result.Analysis),
	}
}

// expand returns the first non-empty strategy result
func (n *Normalizer) expand(item AnalysisItem) ([]AnalysisItem, bool) {
	for _, strategy := range n.strategies {
		if clauses, ok := strategy(item); ok && len(clauses) > 0 {
			return clauses, true
		}
	}
	return nil, false
}

func legacyFieldStrategy(field func(AnalysisItem) string) decodeStrategy {
	return func(item AnalysisItem) ([]AnalysisItem, bool) {
		payload, err := ParseLegacyPayload(field(item))
		if err != nil || payload == nil {
			return nil, false
		}
		return mapLegacyClauses(payload), true
	}
}

// ParseLegacyPayload decodes text that looks like an embedded object. It returns
// (nil, nil) when text does not start with '{'.
func ParseLegacyPayload(rawText string) (map[string]interface{}, error) {
	text := strings.TrimSpace(rawText)
	if text == "" || !strings.HasPrefix(text, "{") {
		return nil, nil
	}

	var payload map[string]interface{}
	if err := json.Unmarshal([]byte(text), &payload); err == nil {
		return payload, nil
	}

	rewritten := RewritePythonLiterals(text)
	if err := json.Unmarshal([]byte(rewritten), &payload); err != nil {
		return nil, &ParseError{Source: "legacy", Key: "payload", Err: err}
	}
	return payload, nil
}

// RewritePythonLiterals applies LegacyLiteralSubstitutions to text
func RewritePythonLiterals(text string) string {
	for _, sub := range LegacyLiteralSubstitutions {
		text = sub.Pattern.ReplaceAllString(text, sub.Replacement)
	}
	return text
}

func mapLegacyClauses(payload map[string]interface{}) []AnalysisItem {
	rawClauses, ok := payload["clauses"].([]interface{})
	if !ok {
		return nil
	}

	items := make([]AnalysisItem, 0, len(rawClauses))
	for i, raw := range rawClauses {
		clause, _ := raw.(map[string]interface{})

		number := firstText(clause["clause_number"], clause["article_number"])
		if number == "" {
			number = fmt.Sprintf("조항 %d", i+1)
		}
		title := firstText(clause["title"])
		if title == "" {
			title = "제목 없음"
		}
		riskLevel, _ := clause["risk_level"].(string)

		items = append(items, AnalysisItem{
			ClauseNumber: number,
			Title:        title,
			RiskLevel:    ParseRiskLevel(riskLevel),
			Summary:      firstText(clause["summary"], clause["analysis"], clause["original_text"]),
			Suggestion:   firstText(clause["suggestion"]),
		})
	}
	return items
}

// firstText picks the first present value and returns it only if it is a string.
// A leading non-string value (say a numeric clause number) yields "".
func firstText(values ...interface{}) string {
	for _, v := range values {
		if !present(v) {
			continue
		}
		s, _ := v.(string)
		return s
	}
	return ""
}

func present(v interface{}) bool {
	switch t := v.(type) {
	case nil:
		return false
	case string:
		return t != ""
	case bool:
		return t
	case float64:
		return t != 0
	default:
		return true
	}
}

package export

import (
	"bytes"
	"testing"

	"github.com/iksnae/readgye-cli/internal"
	"gopkg.in/yaml.v3"
)

func TestYAMLExporter_Export(t *testing.T) {
	report := internal.CreateTestReport("doc-3")

	var buf bytes.Buffer
	if err := (&YAMLExporter{}).Export(report, &buf); err != nil {
		t.Fatalf("Export() error = %v", err)
	}

	var decoded internal.AnalysisReport
	if err := yaml.Unmarshal(buf.Bytes(), &decoded); err != nil {
		t.Fatalf("Export() produced invalid YAML: %v", err)
	}
	if decoded.Filename != report.Filename {
		t.Errorf("Filename = %q, want %q", decoded.Filename, report.Filename)
	}
	if len(decoded.Items) != 3 || decoded.Items[1] != report.Items[1] {
		t.Errorf("Items = %+v, want %+v", decoded.Items, report.Items)
	}
	if !bytes.Contains(buf.Bytes(), []byte("risk_counts:\n  high: 1\n")) {
		t.Errorf("YAML should lead with the risk tally, got:\n%s", buf.String())
	}
	if !bytes.Contains(buf.Bytes(), []byte("clause_number: 제3조")) {
		t.Errorf("YAML should use snake_case keys, got:\n%s", buf.String())
	}
}

package export

import (
	"bytes"
	"strings"
	"testing"

	"github.com/iksnae/readgye-cli/internal"
)

func TestNewExporter(t *testing.T) {
	tests := []struct {
		format  string
		wantExt string
		wantErr bool
	}{
		{"jsonl", "jsonl", false},
		{"md", "md", false},
		{"markdown", "md", false},
		{"yaml", "yaml", false},
		{"yml", "yaml", false},
		{"json", "json", false},
		{" JSON ", "json", false},
		{"pdf", "", true},
		{"", "", true},
	}

	for _, tt := range tests {
		t.Run("format "+tt.format, func(t *testing.T) {
			exporter, err := NewExporter(tt.format)
			if (err != nil) != tt.wantErr {
				t.Fatalf("NewExporter(%q) error = %v, wantErr %v", tt.format, err, tt.wantErr)
			}
			if tt.wantErr {
				if exporter != nil {
					t.Errorf("NewExporter(%q) returned %T, want nil", tt.format, exporter)
				}
				return
			}
			if got := exporter.Extension(); got != tt.wantExt {
				t.Errorf("Extension() = %q, want %q", got, tt.wantExt)
			}
		})
	}
}

func TestExporters_EmptyReport(t *testing.T) {
	report := internal.CreateTestReportWithItems("empty", nil)

	for _, format := range []string{"json", "jsonl", "yaml", "md"} {
		t.Run(format, func(t *testing.T) {
			exporter, err := NewExporter(format)
			if err != nil {
				t.Fatalf("NewExporter() error = %v", err)
			}
			var buf bytes.Buffer
			if err := exporter.Export(report, &buf); err != nil {
				t.Errorf("Export() error = %v", err)
			}
			if format == "jsonl" && buf.Len() != 0 {
				t.Errorf("JSONL export of an empty report wrote %q", buf.String())
			}
		})
	}
}

func TestFormats(t *testing.T) {
	got := strings.Join(Formats(), ",")
	if got != "md,json,jsonl,yaml" {
		t.Errorf("Formats() = %q", got)
	}
	for _, name := range Formats() {
		if _, err := NewExporter(name); err != nil {
			t.Errorf("NewExporter(%q) error = %v", name, err)
		}
	}
}

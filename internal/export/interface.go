package export

import (
	"fmt"
	"io"
	"slices"
	"strings"

	"github.com/iksnae/readgye-cli/internal"
)

// Exporter writes one normalized report
type Exporter interface {
	Export(report *internal.AnalysisReport, w io.Writer) error
	Extension() string
}

type format struct {
	names []string // canonical name first
	new   func() Exporter
}

var formats = []format{
	{names: []string{"md", "markdown"}, new: func() Exporter { return &MarkdownExporter{} }},
	{names: []string{"json"}, new: func() Exporter { return &JSONExporter{} }},
	{names: []string{"jsonl"}, new: func() Exporter { return &JSONLExporter{} }},
	{names: []string{"yaml", "yml"}, new: func() Exporter { return &YAMLExporter{} }},
}

// Formats lists the canonical format names
func Formats() []string {
	names := make([]string, len(formats))
	for i, f := range formats {
		names[i] = f.names[0]
	}
	return names
}

// NewExporter resolves a format name or alias, ignoring case
func NewExporter(name string) (Exporter, error) {
	key := strings.ToLower(strings.TrimSpace(name))
	for _, f := range formats {
		if slices.Contains(f.names, key) {
			return f.new(), nil
		}
	}
	return nil, fmt.Errorf("unsupported format %q (use %s)", name, strings.Join(Formats(), ", "))
}

package export

import (
	"fmt"
	"io"

	"github.com/iksnae/readgye-cli/internal"
	"gopkg.in/yaml.v3"
)

// YAMLExporter writes the same document as JSONExporter in YAML
type YAMLExporter struct{}

func (e *YAMLExporter) Export(report *internal.AnalysisReport, w io.Writer) error {
	enc := yaml.NewEncoder(w)
	enc.SetIndent(2)
	if err := enc.Encode(newReportDocument(report)); err != nil {
		_ = enc.Close()
		return fmt.Errorf("failed to encode report %s: %w", report.DocumentID, err)
	}
	return enc.Close()
}

func (e *YAMLExporter) Extension() string { return "yaml" }

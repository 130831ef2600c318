package export

import (
	"encoding/json"
	"fmt"
	"io"

	"github.com/iksnae/readgye-cli/internal"
)

// JSONLExporter writes one JSON object per clause, each tagged with its document
type JSONLExporter struct{}

type clauseLine struct {
	DocumentID string `json:"document_id"`
	Filename   string `json:"filename"`
	Index      int    `json:"index"`
	internal.AnalysisItem
}

func (e *JSONLExporter) Export(report *internal.AnalysisReport, w io.Writer) error {
	enc := json.NewEncoder(w)
	enc.SetEscapeHTML(false)
	for i, item := range report.Items {
		line := clauseLine{DocumentID: report.DocumentID, Filename: report.Filename, Index: i + 1, AnalysisItem: item}
		if err := enc.Encode(line); err != nil {
			return fmt.Errorf("failed to encode clause %d of %s: %w", i+1, report.DocumentID, err)
		}
	}
	return nil
}

func (e *JSONLExporter) Extension() string { return "jsonl" }

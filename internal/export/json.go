package export

import (
	"encoding/json"
	"io"

	"github.com/iksnae/readgye-cli/internal"
)

// reportDocument is the json and yaml shape: the report with a risk tally up front
type reportDocument struct {
	DocumentID string                  `json:"document_id" yaml:"document_id"`
	Filename   string                  `json:"filename" yaml:"filename"`
	RiskCounts riskTally               `json:"risk_counts" yaml:"risk_counts"`
	Items      []internal.AnalysisItem `json:"items" yaml:"items"`
}

type riskTally struct {
	High    int `json:"high" yaml:"high"`
	Medium  int `json:"medium" yaml:"medium"`
	Low     int `json:"low" yaml:"low"`
	Unknown int `json:"unknown" yaml:"unknown"`
}

func newReportDocument(report *internal.AnalysisReport) reportDocument {
	counts := report.RiskCounts()
	items := report.Items
	if items == nil {
		items = []internal.AnalysisItem{}
	}
	return reportDocument{
		DocumentID: report.DocumentID,
		Filename:   report.Filename,
		RiskCounts: riskTally{
			High:    counts[internal.RiskHigh],
			Medium:  counts[internal.RiskMedium],
			Low:     counts[internal.RiskLow],
			Unknown: counts[internal.RiskUnknown],
		},
		Items: items,
	}
}

// JSONExporter writes an indented JSON document with Korean text unescaped
type JSONExporter struct{}

func (e *JSONExporter) Export(report *internal.AnalysisReport, w io.Writer) error {
	enc := json.NewEncoder(w)
	enc.SetIndent("", "  ")
	enc.SetEscapeHTML(false)
	return enc.Encode(newReportDocument(report))
}

func (e *JSONExporter) Extension() string { return "json" }

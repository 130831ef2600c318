package cmd

import (
	"fmt"
	"os"
	"path/filepath"
	"strings"

	"github.com/iksnae/readgye-cli/internal"
	"github.com/iksnae/readgye-cli/internal/export"
	"github.com/spf13/cobra"
)

var (
	format        string
	outputDir     string
	exportOffline bool
	exportStdout  bool
)

// exportCmd represents the export command
var exportCmd = &cobra.Command{
	Use:   "export <document-id>...",
	Short: "Export analysis reports to file",
	Long: `Export analysis reports as Markdown, JSON, JSON Lines (one clause per line) or YAML.

Each report is written to <out>/report_<id>.<ext>. Use 'readgye archive list' to see
available document IDs.`,
	Args: cobra.MinimumNArgs(1),
	RunE: withApp(func(cmd *cobra.Command, args []string, a *app) error {
		exporter, err := export.NewExporter(format)
		if err != nil {
			return err
		}

		reports := make([]*internal.AnalysisReport, 0, len(args))
		for _, id := range args {
			report, _, err := loadReport(cmd, a, id, exportOffline)
			if err != nil {
				return fmt.Errorf("%s: %w", id, err)
			}
			reports = append(reports, report)
		}

		if exportStdout {
			for _, report := range reports {
				if err := exporter.Export(report, cmd.OutOrStdout()); err != nil {
					return &internal.ExportError{Format: format, Path: "-", Err: err}
				}
			}
			return nil
		}

		// Ensure output directory exists
		if err := os.MkdirAll(outputDir, 0755); err != nil {
			return fmt.Errorf("failed to create output directory: %w", err)
		}

		written := 0
		err = internal.ShowProgress(cmd.Context(), fmt.Sprintf("Exporting %d report(s) to %s", len(reports), outputDir), func() error {
			for _, report := range reports {
				path := filepath.Join(outputDir, fmt.Sprintf("report_%s.%s", report.DocumentID, exporter.Extension()))
				if err := writeReport(exporter, report, path); err != nil {
					internal.LogError("Failed to export report %s: %v", report.DocumentID, err)
					continue
				}
				written++
			}
			return nil
		})
		if err != nil {
			return err
		}
		if written == 0 {
			return fmt.Errorf("no reports exported")
		}

		fmt.Fprintf(cmd.OutOrStdout(), "Export complete: %d report(s) exported to %s\n", written, outputDir)
		return nil
	}),
}

func writeReport(exporter export.Exporter, report *internal.AnalysisReport, path string) error {
	file, err := os.Create(path)
	if err != nil {
		return &internal.ExportError{Format: format, Path: path, Err: err}
	}
	if err := exporter.Export(report, file); err != nil {
		_ = file.Close()
		return &internal.ExportError{Format: format, Path: path, Err: err}
	}
	if err := file.Close(); err != nil {
		return &internal.ExportError{Format: format, Path: path, Err: err}
	}
	return nil
}

func init() {
	archiveCmd.AddCommand(exportCmd)
	exportCmd.Flags().StringVarP(&format, "format", "f", "md", "Export format ("+strings.Join(export.Formats(), ", ")+")")
	exportCmd.Flags().StringVarP(&outputDir, "out", "o", "./exports", "Output directory")
	exportCmd.Flags().BoolVar(&exportOffline, "offline", false, "Export cached reports without contacting the service")
	exportCmd.Flags().BoolVar(&exportStdout, "stdout", false, "Write to stdout instead of files")
}

package cmd

import (
	"bytes"
	"errors"
	"fmt"
	"io"
	"os"
	"path/filepath"
	"strings"

	"github.com/dustin/go-humanize"
	"github.com/iksnae/readgye-cli/internal"
	"github.com/spf13/cobra"
)

// maxUploadSize bounds what is sent to the analysis service
const maxUploadSize = 20 << 20

var pdfMagic = []byte("%PDF-")

var uploadCmd = &cobra.Command{
	Use:   "upload <file.pdf>",
	Short: "Upload a contract for analysis",
	Long: `Upload a PDF contract. Analysis runs on the service; you are notified when
it finishes (see 'readgye notifications watch') and the report appears under
'readgye archive show <id>'.`,
	Args: cobra.ExactArgs(1),
	RunE: withApp(func(cmd *cobra.Command, args []string, a *app) error {
		client, err := a.client()
		if err != nil {
			return err
		}

		path := args[0]
		var doc *internal.Document
		var size int64

		steps := []internal.ProgressStep{
			{
				Message: "Checking " + filepath.Base(path),
				Fn: func() error {
					var err error
					size, err = checkPDF(path)
					return err
				},
			},
			{
				Message: "Uploading for analysis",
				Fn: func() error {
					f, err := os.Open(path)
					if err != nil {
						return err
					}
					defer f.Close()

					doc, err = client.UploadDocument(cmd.Context(), path, f)
					if err != nil {
						return errors.New(internal.UserMessage(err, "업로드에 실패했습니다."))
					}
					return nil
				},
			},
		}
		if err := internal.ShowProgressWithSteps(cmd.Context(), steps); err != nil {
			return err
		}

		out := cmd.OutOrStdout()
		fmt.Fprintf(out, "%s (%s) 업로드 완료\n", valueOr(doc.Filename, filepath.Base(path)), humanize.Bytes(uint64(size)))
		if doc.ID != "" {
			fmt.Fprintf(out, "  ID:     %s\n", doc.ID)
		}
		fmt.Fprintf(out, "  Status: %s\n", internal.StatusBadge(doc.ArchiveStatus(), useColor(out)))
		return nil
	}),
}

// checkPDF verifies path is a readable PDF within the size limit and returns its size
func checkPDF(path string) (int64, error) {
	if !strings.EqualFold(filepath.Ext(path), ".pdf") {
		return 0, fmt.Errorf("%s: PDF 파일만 업로드할 수 있습니다", filepath.Base(path))
	}

	info, err := os.Stat(path)
	if err != nil {
		return 0, err
	}
	if info.IsDir() {
		return 0, fmt.Errorf("%s is a directory", path)
	}
	if info.Size() == 0 {
		return 0, fmt.Errorf("%s is empty", path)
	}
	if info.Size() > maxUploadSize {
		return 0, fmt.Errorf("%s is %s; the limit is %s", filepath.Base(path),
			humanize.Bytes(uint64(info.Size())), humanize.Bytes(maxUploadSize))
	}

	f, err := os.Open(path)
	if err != nil {
		return 0, err
	}
	defer f.Close()

	head := make([]byte, len(pdfMagic))
	if _, err := io.ReadFull(f, head); err != nil || !bytes.Equal(head, pdfMagic) {
		return 0, fmt.Errorf("%s does not look like a PDF", filepath.Base(path))
	}
	return info.Size(), nil
}

func init() {
	rootCmd.AddCommand(uploadCmd)
}

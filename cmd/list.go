package cmd

import (
	"errors"
	"fmt"
	"io"
	"text/tabwriter"

	"github.com/charmbracelet/lipgloss"
	"github.com/iksnae/readgye-cli/internal"
	"github.com/spf13/cobra"
)

var (
	listOffline bool
	listFilter  string
	listQuery   string
)

var (
	// Styles
	headerStyle = lipgloss.NewStyle().
			Bold(true).
			Foreground(lipgloss.Color("62")).
			Padding(0, 1)

	titleStyle = lipgloss.NewStyle().
			Bold(true).
			Foreground(lipgloss.Color("212"))

	idStyle = lipgloss.NewStyle().
		Foreground(lipgloss.Color("240")).
		Italic(true)

	countStyle = lipgloss.NewStyle().
			Foreground(lipgloss.Color("42")).
			Bold(true)

	dateStyle = lipgloss.NewStyle().
			Foreground(lipgloss.Color("243"))
)

var archiveCmd = &cobra.Command{
	Use:   "archive",
	Short: "Browse, read, export and delete analysed contracts",
}

var listCmd = &cobra.Command{
	Use:     "list",
	Aliases: []string{"ls"},
	Short:   "List analysed contracts",
	Long: `List the contracts in your archive, newest first.

The listing is cached locally; --offline reads the cache without contacting the
service, and the cache is also used when the service cannot be reached.`,
	Example: `  readgye archive list
  readgye archive list --filter review
  readgye archive list --query 임대차`,
	RunE: withApp(func(cmd *cobra.Command, args []string, a *app) error {
		filter, err := internal.ParseArchiveFilter(listFilter)
		if err != nil {
			return err
		}

		docs, source, err := loadDocuments(cmd, a, listOffline)
		if err != nil {
			return err
		}

		visible := internal.FilterDocuments(docs, filter, listQuery)
		displayDocuments(cmd.OutOrStdout(), visible, len(docs), source)
		return nil
	}),
}

// loadDocuments fetches the archive, falling back to the cache when offline
// is set or the service is unreachable. source describes where docs came from.
func loadDocuments(cmd *cobra.Command, a *app, offline bool) (docs []internal.Document, source string, err error) {
	account := a.account()
	if account == "" {
		return nil, "", internal.ErrNotAuthenticated
	}

	if !offline {
		client, err := a.client()
		if err == nil {
			docs, err = client.Documents(cmd.Context())
		}
		if err == nil {
			if err := a.cache.SaveDocuments(account, docs); err != nil {
				internal.LogWarn("Failed to save archive cache: %v", err)
			}
			return docs, "", nil
		}

		var apiErr *internal.APIError
		switch {
		case errors.As(err, &apiErr):
			return nil, "", errors.New(internal.UserMessage(err, "보관함을 불러오지 못했습니다."))
		case !a.cache.IsCacheValid(account):
			if errors.Is(err, internal.ErrNotAuthenticated) {
				return nil, "", err
			}
			return nil, "", errors.New(internal.UserMessage(err, "보관함을 불러오지 못했습니다."))
		}
		internal.LogWarn("Service unavailable, showing cached archive: %v", err)
	}

	docs, updated, err := a.cache.LoadDocuments(account)
	if err != nil {
		if errors.Is(err, internal.ErrCacheMiss) {
			return nil, "", errors.New("저장된 보관함이 없습니다. 온라인 상태에서 'readgye archive list'를 먼저 실행하세요")
		}
		return nil, "", err
	}
	return docs, "cached " + internal.RelativeTo(updated), nil
}

func displayDocuments(out io.Writer, docs []internal.Document, total int, source string) {
	color := useColor(out)

	if len(docs) == 0 {
		if total == 0 {
			fmt.Fprintln(out, "보관함이 비어 있습니다. 'readgye upload <file.pdf>'로 계약서를 분석해 보세요.")
		} else {
			fmt.Fprintln(out, "조건에 맞는 계약서가 없습니다.")
		}
		return
	}

	heading := fmt.Sprintf("📄 Archive (%d)", len(docs))
	if source != "" {
		heading += " • " + source
	}
	fmt.Fprintln(out, paint(color, headerStyle, heading))
	fmt.Fprintln(out)

	w := tabwriter.NewWriter(out, 0, 0, 2, ' ', 0)
	fmt.Fprintln(w, "ID\tFILE\tSTATUS\tRISKS\tUPLOADED")
	for _, doc := range docs {
		fmt.Fprintf(w, "%s\t%s\t%s\t%s\t%s\n",
			paint(color, idStyle, doc.ID),
			paint(color, titleStyle, doc.Filename),
			internal.StatusBadge(doc.ArchiveStatus(), color),
			paint(color, countStyle, fmt.Sprintf("%d", doc.RiskCount)),
			paint(color, dateStyle, internal.FormatDate(doc.CreatedAt)),
		)
	}
	_ = w.Flush()

	fmt.Fprintln(out)
	fmt.Fprintln(out, paint(color, dateStyle, "Tip: readgye archive show <id> to read a report"))
}

func init() {
	rootCmd.AddCommand(archiveCmd)
	archiveCmd.AddCommand(listCmd)
	listCmd.Flags().BoolVar(&listOffline, "offline", false, "Read the cached archive without contacting the service")
	listCmd.Flags().StringVarP(&listFilter, "filter", "f", "all", "Filter: all, done, review")
	listCmd.Flags().StringVarP(&listQuery, "query", "q", "", "Only files whose name contains this text")
}

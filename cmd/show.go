package cmd

import (
	"errors"
	"fmt"

	"github.com/charmbracelet/lipgloss"
	"github.com/iksnae/readgye-cli/internal"
	"github.com/spf13/cobra"
)

var (
	showOffline bool
	deleteYes   bool
)

var reportMetaStyle = lipgloss.NewStyle().
	Foreground(lipgloss.Color("243"))

// showCmd represents the show command
var showCmd = &cobra.Command{
	Use:   "show <document-id>",
	Short: "Show the analysis report for a contract",
	Long: `Display the clause-by-clause analysis of an uploaded contract.

Reports from older analyses are normalized before display. Every report shown is
cached, so --offline can read it later without the service.`,
	Args: cobra.ExactArgs(1),
	RunE: withApp(func(cmd *cobra.Command, args []string, a *app) error {
		report, cached, err := loadReport(cmd, a, args[0], showOffline)
		if err != nil {
			return err
		}

		out := cmd.OutOrStdout()
		fmt.Fprint(out, internal.RenderReport(report, useColor(out)))
		if cached {
			fmt.Fprintln(out)
			fmt.Fprintln(out, paint(useColor(out), reportMetaStyle, "(cached report)"))
		}
		return nil
	}),
}

var deleteCmd = &cobra.Command{
	Use:     "delete <document-id>",
	Aliases: []string{"rm"},
	Short:   "Delete a contract and its analysis",
	Args:    cobra.ExactArgs(1),
	RunE: withApp(func(cmd *cobra.Command, args []string, a *app) error {
		client, err := a.client()
		if err != nil {
			return err
		}
		if !deleteYes {
			return errors.New("삭제하려면 --yes 를 함께 지정하세요")
		}

		id := args[0]
		if err := client.DeleteDocument(cmd.Context(), id); err != nil {
			return errors.New(internal.UserMessage(err, "계약서를 삭제하지 못했습니다."))
		}
		if err := a.cache.RemoveDocument(a.account(), id); err != nil {
			internal.LogWarn("Failed to update archive cache: %v", err)
		}
		fmt.Fprintf(cmd.OutOrStdout(), "%s 을(를) 삭제했습니다.\n", id)
		return nil
	}),
}

// loadReport fetches and normalizes a report, falling back to the cache when
// offline is set or the service is unreachable
func loadReport(cmd *cobra.Command, a *app, documentID string, offline bool) (report *internal.AnalysisReport, cached bool, err error) {
	account := a.account()
	if account == "" {
		return nil, false, internal.ErrNotAuthenticated
	}

	if !offline {
		client, err := a.client()
		var result *internal.AnalysisResult
		if err == nil {
			result, err = client.AnalysisResult(cmd.Context(), documentID)
		}
		if err == nil {
			report := internal.NewNormalizer().NormalizeResult(documentID, result)
			if err := a.cache.SaveReport(account, report); err != nil {
				internal.LogWarn("Failed to cache report: %v", err)
			}
			return report, false, nil
		}

		var apiErr *internal.APIError
		if errors.As(err, &apiErr) {
			return nil, false, errors.New(internal.UserMessage(err, "분석 결과를 불러오지 못했습니다."))
		}
		report, cacheErr := a.cache.LoadReport(account, documentID)
		if cacheErr != nil {
			if errors.Is(err, internal.ErrNotAuthenticated) {
				return nil, false, err
			}
			return nil, false, errors.New(internal.UserMessage(err, "분석 결과를 불러오지 못했습니다."))
		}
		internal.LogWarn("Service unavailable, showing cached report: %v", err)
		return report, true, nil
	}

	report, err = a.cache.LoadReport(account, documentID)
	if err != nil {
		if errors.Is(err, internal.ErrCacheMiss) {
			return nil, false, fmt.Errorf("no cached report for %s (use 'readgye archive show %s' while online)", documentID, documentID)
		}
		return nil, false, err
	}
	return report, true, nil
}

func init() {
	archiveCmd.AddCommand(showCmd, deleteCmd)
	showCmd.Flags().BoolVar(&showOffline, "offline", false, "Read the cached report without contacting the service")
	deleteCmd.Flags().BoolVarP(&deleteYes, "yes", "y", false, "Confirm deletion")
}

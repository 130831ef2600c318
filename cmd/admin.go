package cmd

import (
	"errors"
	"fmt"
	"io"
	"text/tabwriter"

	"github.com/iksnae/readgye-cli/internal"
	"github.com/spf13/cobra"
)

var inquiryStatus string

var adminCmd = &cobra.Command{
	Use:   "admin",
	Short: "Operator tools (administrator accounts only)",
}

var adminInquiriesCmd = &cobra.Command{
	Use:   "inquiries",
	Short: "List contact inquiries",
	Example: `  readgye admin inquiries
  readgye admin inquiries --status pending`,
	RunE: withApp(func(cmd *cobra.Command, args []string, a *app) error {
		client, err := adminClient(a)
		if err != nil {
			return err
		}

		var status internal.InquiryStatus
		if inquiryStatus != "" && inquiryStatus != "all" {
			if status, err = internal.ParseInquiryStatus(inquiryStatus); err != nil {
				return err
			}
		}

		items, err := client.AdminInquiries(cmd.Context(), status)
		if err != nil {
			return errors.New(internal.UserMessage(err, "문의 목록을 불러오지 못했습니다."))
		}
		displayInquiries(cmd.OutOrStdout(), items)
		return nil
	}),
}

var adminSetStatusCmd = &cobra.Command{
	Use:   "set-status <inquiry-id> <pending|replied|closed>",
	Short: "Change the handling state of an inquiry",
	Args:  cobra.ExactArgs(2),
	RunE: withApp(func(cmd *cobra.Command, args []string, a *app) error {
		client, err := adminClient(a)
		if err != nil {
			return err
		}
		status, err := internal.ParseInquiryStatus(args[1])
		if err != nil {
			return err
		}

		if err := client.UpdateInquiryStatus(cmd.Context(), args[0], status); err != nil {
			return errors.New(internal.UserMessage(err, "문의 상태를 변경하지 못했습니다."))
		}
		fmt.Fprintf(cmd.OutOrStdout(), "%s: %s(으)로 변경했습니다.\n", args[0], status.Label())
		return nil
	}),
}

// adminClient returns the bound client when the signed-in user is an administrator
func adminClient(a *app) (*internal.Client, error) {
	user := a.auth.Session().User
	if user == nil {
		return nil, internal.ErrNotAuthenticated
	}
	if !user.IsAdmin {
		return nil, errors.New("관리자 계정만 사용할 수 있습니다")
	}
	return a.client()
}

func displayInquiries(out io.Writer, items []internal.Inquiry) {
	if len(items) == 0 {
		fmt.Fprintln(out, "문의가 없습니다.")
		return
	}

	color := useColor(out)
	fmt.Fprintln(out, paint(color, headerStyle, fmt.Sprintf("📮 Inquiries (%d)", len(items))))
	fmt.Fprintln(out)

	w := tabwriter.NewWriter(out, 0, 0, 2, ' ', 0)
	fmt.Fprintln(w, "ID\tSTATUS\tCATEGORY\tTITLE\tFROM\tRECEIVED")
	for _, q := range items {
		category := contactCategories[q.Category]
		if category == "" {
			category = valueOr(q.CategoryLabel, q.Category)
		}
		fmt.Fprintf(w, "%s\t[%s]\t%s\t%s\t%s\t%s\n",
			paint(color, idStyle, q.ID),
			q.Status.Label(),
			category,
			paint(color, titleStyle, q.Title),
			fmt.Sprintf("%s (%s)", q.UserName, q.UserEmail),
			paint(color, dateStyle, internal.FormatDate(q.CreatedAt)),
		)
	}
	_ = w.Flush()
}

func init() {
	rootCmd.AddCommand(adminCmd)
	adminCmd.AddCommand(adminInquiriesCmd)
	adminInquiriesCmd.AddCommand(adminSetStatusCmd)
	adminInquiriesCmd.Flags().StringVarP(&inquiryStatus, "status", "s", "", "Filter: all, pending, replied, closed")
}

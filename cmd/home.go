package cmd

import (
	"errors"
	"fmt"
	"io"

	"github.com/iksnae/readgye-cli/internal"
	"github.com/spf13/cobra"
	"golang.org/x/sync/errgroup"
)

// recentCount is how many documents the home screen summarizes
const recentCount = 3

const homeTip = "독소 조항은 종종 \"면책(Indemnification)\" 섹션에 숨어 있습니다. 항상 두 번 검토하세요!"

var homeCmd = &cobra.Command{
	Use:   "home",
	Short: "Show recent activity and unread notifications",
	RunE: withApp(func(cmd *cobra.Command, args []string, a *app) error {
		client, err := a.client()
		if err != nil {
			return err
		}

		var docs []internal.Document
		var unread []internal.Notification

		g, ctx := errgroup.WithContext(cmd.Context())
		g.Go(func() error {
			var err error
			docs, err = client.Documents(ctx)
			return err
		})
		g.Go(func() error {
			var err error
			unread, err = client.UnreadNotifications(ctx)
			if err != nil {
				// the badge is optional; the archive is not
				internal.LogDebug("Unread notifications unavailable: %v", err)
				unread = nil
			}
			return nil
		})
		if err := g.Wait(); err != nil {
			return errors.New(internal.UserMessage(err, "최근 활동을 불러오지 못했습니다."))
		}

		if err := a.cache.SaveDocuments(a.account(), docs); err != nil {
			internal.LogWarn("Failed to save archive cache: %v", err)
		}

		displayHome(cmd.OutOrStdout(), a.auth.Session().User, internal.RecentDocuments(docs, recentCount), len(unread))
		return nil
	}),
}

func displayHome(out io.Writer, user *internal.UserInfo, recent []internal.Document, unread int) {
	color := useColor(out)

	fmt.Fprintf(out, "안녕하세요, %s님!\n", paint(color, titleStyle, valueOr(displayName(user), "사용자")))
	if unread > 0 {
		fmt.Fprintf(out, "🔔 읽지 않은 알림 %s건\n", paint(color, countStyle, fmt.Sprintf("%d", unread)))
	}
	fmt.Fprintln(out)

	fmt.Fprintln(out, internal.Heading("최근 활동", color))
	if len(recent) == 0 {
		fmt.Fprintln(out, internal.Muted("최근 분석 활동이 없습니다.", color))
	}
	for _, doc := range recent {
		fmt.Fprintf(out, "  %s  %s  %s  %s\n",
			internal.StatusBadge(doc.ArchiveStatus(), color),
			doc.Filename,
			doc.ActivityLabel(),
			paint(color, dateStyle, internal.FormatDate(doc.CreatedAt)),
		)
	}

	fmt.Fprintln(out)
	fmt.Fprintln(out, internal.Muted("계약 꿀팁: "+homeTip, color))
}

func init() {
	rootCmd.AddCommand(homeCmd)
}

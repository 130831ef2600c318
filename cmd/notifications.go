package cmd

import (
	"errors"
	"fmt"
	"sort"
	"strconv"
	"strings"
	"text/tabwriter"

	"github.com/iksnae/readgye-cli/internal"
	"github.com/spf13/cobra"
	"gopkg.in/yaml.v3"
)

var (
	notificationsUnread bool
	watchOnce           bool
	settingsSet         []string
)

var notificationsCmd = &cobra.Command{
	Use:     "notifications",
	Aliases: []string{"notif"},
	Short:   "List and manage notifications",
	RunE:    notificationsListCmd.RunE,
}

var notificationsListCmd = &cobra.Command{
	Use:   "list",
	Short: "List notifications, newest first",
	RunE: withApp(func(cmd *cobra.Command, args []string, a *app) error {
		client, err := a.client()
		if err != nil {
			return err
		}

		var items []internal.Notification
		if notificationsUnread {
			items, err = client.UnreadNotifications(cmd.Context())
		} else {
			items, err = client.Notifications(cmd.Context())
		}
		if err != nil {
			return errors.New(internal.UserMessage(err, "알림을 불러오지 못했습니다."))
		}

		out := cmd.OutOrStdout()
		if len(items) == 0 {
			fmt.Fprintln(out, "알림이 없습니다.")
			return nil
		}

		color := useColor(out)
		w := tabwriter.NewWriter(out, 0, 0, 2, ' ', 0)
		fmt.Fprintln(w, "ID\tTITLE\tMESSAGE\tWHEN")
		for _, n := range items {
			title := n.Title
			if !n.IsRead {
				title = "● " + title
			}
			fmt.Fprintf(w, "%s\t%s\t%s\t%s\n",
				internal.Muted(n.ID, color), title, n.Message, internal.RelativeTime(n.CreatedAt))
		}
		return w.Flush()
	}),
}

var notificationsReadCmd = &cobra.Command{
	Use:   "read <notification-id>",
	Short: "Mark one notification as read",
	Args:  cobra.ExactArgs(1),
	RunE: withApp(func(cmd *cobra.Command, args []string, a *app) error {
		client, err := a.client()
		if err != nil {
			return err
		}
		if err := client.MarkNotificationRead(cmd.Context(), args[0]); err != nil {
			return errors.New(internal.UserMessage(err, "알림을 읽음 처리하지 못했습니다."))
		}
		fmt.Fprintln(cmd.OutOrStdout(), "읽음으로 표시했습니다.")
		return nil
	}),
}

var notificationsReadAllCmd = &cobra.Command{
	Use:   "read-all",
	Short: "Mark every notification as read",
	RunE: withApp(func(cmd *cobra.Command, args []string, a *app) error {
		client, err := a.client()
		if err != nil {
			return err
		}
		if err := client.MarkAllNotificationsRead(cmd.Context()); err != nil {
			return errors.New(internal.UserMessage(err, "알림을 읽음 처리하지 못했습니다."))
		}
		fmt.Fprintln(cmd.OutOrStdout(), "모든 알림을 읽음으로 표시했습니다.")
		return nil
	}),
}

var notificationsWatchCmd = &cobra.Command{
	Use:   "watch",
	Short: "Poll for finished analyses and alert on arrival",
	Long: `Poll the service for unread notifications every poll_interval (8s by
default) and print an alert when analyses finish. Alerted notifications are
marked read. Runs until interrupted; --once polls a single time.`,
	RunE: withApp(func(cmd *cobra.Command, args []string, a *app) error {
		if _, err := a.client(); err != nil {
			return err
		}
		alerter := internal.NewTerminalAlerter(cmd.OutOrStdout())

		if watchOnce {
			poller := internal.NewPoller(a.auth.Client(), alerter, a.cfg.PollInterval)
			poller.Tick(cmd.Context())
			return nil
		}

		binding := internal.NewPollerBinding(a.auth, alerter, a.cfg.PollInterval)
		binding.Start(cmd.Context())
		defer binding.Close()

		internal.LogInfo("Watching for notifications every %s (Ctrl+C to stop)", a.cfg.PollInterval)
		<-cmd.Context().Done()
		return nil
	}),
}

var notificationsSettingsCmd = &cobra.Command{
	Use:   "settings",
	Short: "Show or change notification settings",
	Long: `Show notification settings, or change them with --set key=bool.

Keys: push_enabled, analysis_complete, risk_alert, marketing_push,
email_enabled, email_report.`,
	Example: `  readgye notifications settings
  readgye notifications settings --set marketing_push=false --set email_report=true`,
	RunE: withApp(func(cmd *cobra.Command, args []string, a *app) error {
		client, err := a.client()
		if err != nil {
			return err
		}

		settings, err := client.NotificationSettings(cmd.Context())
		if err != nil {
			return errors.New(internal.UserMessage(err, "알림 설정을 불러오지 못했습니다."))
		}

		if len(settingsSet) > 0 {
			if err := applySettings(settings, settingsSet); err != nil {
				return err
			}
			settings, err = client.UpdateNotificationSettings(cmd.Context(), settings)
			if err != nil {
				return errors.New(internal.UserMessage(err, "알림 설정을 저장하지 못했습니다."))
			}
		}

		return printSettings(cmd, settings)
	}),
}

// applySettings parses key=bool assignments onto settings
func applySettings(settings *internal.NotificationSettings, assignments []string) error {
	for _, assignment := range assignments {
		key, raw, ok := strings.Cut(assignment, "=")
		if !ok {
			return fmt.Errorf("invalid setting %q: want key=true|false", assignment)
		}
		value, err := strconv.ParseBool(strings.TrimSpace(raw))
		if err != nil {
			return fmt.Errorf("invalid value for %s: %w", key, err)
		}
		if !settings.Set(strings.TrimSpace(key), value) {
			return fmt.Errorf("unknown setting %q", key)
		}
	}
	return nil
}

func printSettings(cmd *cobra.Command, settings *internal.NotificationSettings) error {
	// round-trip through yaml to list the fields by their wire names
	raw, err := yaml.Marshal(settings)
	if err != nil {
		return err
	}
	values := map[string]bool{}
	if err := yaml.Unmarshal(raw, &values); err != nil {
		return err
	}

	keys := make([]string, 0, len(values))
	for k := range values {
		keys = append(keys, k)
	}
	sort.Strings(keys)

	w := tabwriter.NewWriter(cmd.OutOrStdout(), 0, 0, 2, ' ', 0)
	for _, k := range keys {
		state := "off"
		if values[k] {
			state = "on"
		}
		fmt.Fprintf(w, "%s\t%s\n", k, state)
	}
	return w.Flush()
}

func init() {
	rootCmd.AddCommand(notificationsCmd)
	notificationsCmd.AddCommand(notificationsListCmd, notificationsReadCmd, notificationsReadAllCmd,
		notificationsWatchCmd, notificationsSettingsCmd)

	// bare 'notifications' runs list, so it takes the same flag
	for _, c := range []*cobra.Command{notificationsCmd, notificationsListCmd} {
		c.Flags().BoolVarP(&notificationsUnread, "unread", "u", false, "Only unread notifications")
	}
	notificationsWatchCmd.Flags().BoolVar(&watchOnce, "once", false, "Poll a single time and exit")
	notificationsSettingsCmd.Flags().StringArrayVar(&settingsSet, "set", nil, "Change a setting (key=true|false), repeatable")
}

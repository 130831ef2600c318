package cmd

import (
	"bufio"
	"errors"
	"fmt"
	"io"
	"strings"
	"text/tabwriter"

	"github.com/charmbracelet/lipgloss"
	"github.com/iksnae/readgye-cli/internal"
	"github.com/spf13/cobra"
)

const chatDisclaimer = "읽계 AI의 분석 결과는 법적 효력이 없으며, 참고용으로만 활용해 주세요.\n정확한 판단은 변호사와의 상담을 권장합니다."

const assistantLabel = "읽계 AI"

var (
	chatNew       bool
	chatSessionID string
	chatWidth     int
)

var (
	disclaimerStyle = lipgloss.NewStyle().
			Border(lipgloss.RoundedBorder()).
			BorderForeground(lipgloss.Color("27")).
			Foreground(lipgloss.Color("27")).
			Padding(0, 1)

	userMessageStyle = lipgloss.NewStyle().
				Foreground(lipgloss.Color("39")).
				Bold(true)

	assistantMessageStyle = lipgloss.NewStyle().
				Foreground(lipgloss.Color("212")).
				Bold(true)

	timestampStyle = lipgloss.NewStyle().
			Foreground(lipgloss.Color("243")).
			Italic(true)
)

var chatCmd = &cobra.Command{
	Use:   "chat",
	Short: "Talk to the contract counseling assistant",
	Long: `Open an interactive counseling session. The most recent conversation is
restored unless --new is given.

Commands inside the session:
  /new            start a new conversation
  /sessions       list previous conversations
  /open <id>      switch to a previous conversation
  /quit           leave`,
	RunE: withApp(func(cmd *cobra.Command, args []string, a *app) error {
		client, err := a.client()
		if err != nil {
			return err
		}

		manager := internal.NewChatManager(client)
		binding := internal.NewPollerBinding(a.auth, internal.NewTerminalAlerter(cmd.ErrOrStderr()), a.cfg.PollInterval)
		binding.Start(cmd.Context())
		defer binding.Close()

		return runChat(cmd, manager)
	}),
}

var chatSendCmd = &cobra.Command{
	Use:   "send <message>",
	Short: "Send one message and print the reply",
	Args:  cobra.MinimumNArgs(1),
	RunE: withApp(func(cmd *cobra.Command, args []string, a *app) error {
		client, err := a.client()
		if err != nil {
			return err
		}
		manager := internal.NewChatManager(client)
		if chatSessionID != "" {
			if err := manager.SelectSession(cmd.Context(), chatSessionID); err != nil {
				return errors.New(internal.UserMessage(err, "대화를 불러오지 못했습니다."))
			}
		}

		out := cmd.OutOrStdout()
		reply, err := manager.SendMessage(cmd.Context(), strings.Join(args, " "))
		if err != nil {
			return errors.New(manager.LastError())
		}
		if reply == nil {
			return errors.New("보낼 메시지가 없습니다")
		}
		fmt.Fprintln(out, newReplyRenderer(out).Render(reply.Content))
		fmt.Fprintln(out, internal.Muted("session: "+manager.SessionID(), useColor(out)))
		return nil
	}),
}

var chatSessionsCmd = &cobra.Command{
	Use:   "sessions",
	Short: "List previous conversations",
	RunE: withApp(func(cmd *cobra.Command, args []string, a *app) error {
		client, err := a.client()
		if err != nil {
			return err
		}
		sessions, err := client.ChatSessions(cmd.Context())
		if err != nil {
			return errors.New(internal.UserMessage(err, "대화 목록을 불러오지 못했습니다."))
		}
		printSessions(cmd.OutOrStdout(), sessions)
		return nil
	}),
}

var chatHistoryCmd = &cobra.Command{
	Use:   "history <session-id>",
	Short: "Print a previous conversation",
	Args:  cobra.ExactArgs(1),
	RunE: withApp(func(cmd *cobra.Command, args []string, a *app) error {
		client, err := a.client()
		if err != nil {
			return err
		}
		messages, err := client.ChatHistory(cmd.Context(), args[0])
		if err != nil {
			return errors.New(internal.UserMessage(err, "대화를 불러오지 못했습니다."))
		}
		out := cmd.OutOrStdout()
		renderer := newReplyRenderer(out)
		for _, msg := range messages {
			displayMessage(out, renderer, msg)
		}
		return nil
	}),
}

// runChat is the read-eval-print loop behind 'readgye chat'
func runChat(cmd *cobra.Command, manager *internal.ChatManager) error {
	ctx := cmd.Context()
	out := cmd.OutOrStdout()
	color := useColor(out)
	renderer := newReplyRenderer(out)

	if color {
		fmt.Fprintln(out, disclaimerStyle.Render(chatDisclaimer))
	} else {
		fmt.Fprintln(out, chatDisclaimer)
	}
	fmt.Fprintln(out)

	if chatNew {
		manager.StartNewChat()
	}
	if restored, err := manager.OnFocus(ctx); err != nil {
		internal.LogWarn("Failed to restore previous conversation: %v", err)
	} else if restored {
		for _, msg := range manager.Messages() {
			displayMessage(out, renderer, msg)
		}
	}

	lines := make(chan string)
	stop := make(chan struct{})
	defer close(stop)
	go func() {
		defer close(lines)
		scanner := bufio.NewScanner(cmd.InOrStdin())
		for scanner.Scan() {
			select {
			case lines <- scanner.Text():
			case <-stop:
				return
			}
		}
	}()

	for {
		fmt.Fprint(out, "> ")
		var line string
		select {
		case <-ctx.Done():
			fmt.Fprintln(out)
			return nil
		case l, ok := <-lines:
			if !ok {
				fmt.Fprintln(out)
				return nil
			}
			line = strings.TrimSpace(l)
		}

		if strings.HasPrefix(line, "/") {
			quit, err := chatCommand(cmd, manager, line)
			if err != nil {
				fmt.Fprintln(out, internal.UserMessage(err, err.Error()))
			}
			if quit {
				return nil
			}
			continue
		}

		reply, err := manager.SendMessage(ctx, line)
		switch {
		case err != nil:
			displayAssistant(out, renderer, internal.ChatApology)
			internal.LogDebug("Chat send failed: %s", manager.LastError())
		case reply != nil:
			displayAssistant(out, renderer, reply.Content)
		}
	}
}

// chatCommand handles a slash command; it reports whether to leave the loop
func chatCommand(cmd *cobra.Command, manager *internal.ChatManager, line string) (bool, error) {
	out := cmd.OutOrStdout()
	name, arg, _ := strings.Cut(line, " ")
	arg = strings.TrimSpace(arg)

	switch name {
	case "/quit", "/exit":
		return true, nil
	case "/new":
		manager.StartNewChat()
		fmt.Fprintln(out, "새 대화를 시작합니다.")
	case "/sessions":
		sessions, err := manager.ListSessions(cmd.Context())
		if err != nil {
			return false, err
		}
		printSessions(out, sessions)
	case "/open":
		if arg == "" {
			return false, errors.New("usage: /open <session-id>")
		}
		if err := manager.SelectSession(cmd.Context(), arg); err != nil {
			return false, err
		}
		renderer := newReplyRenderer(out)
		for _, msg := range manager.Messages() {
			displayMessage(out, renderer, msg)
		}
	default:
		return false, fmt.Errorf("unknown command %s (try /new, /sessions, /open, /quit)", name)
	}
	return false, nil
}

func newReplyRenderer(out io.Writer) *internal.MarkdownRenderer {
	return internal.NewMarkdownRenderer(chatWidth, useColor(out))
}

func displayMessage(out io.Writer, renderer *internal.MarkdownRenderer, msg internal.Message) {
	color := useColor(out)
	when := ""
	if t := msg.GetCreatedAt(); !t.IsZero() {
		when = " " + paint(color, timestampStyle, t.Local().Format("15:04"))
	}

	if msg.Role == internal.RoleUser {
		fmt.Fprintf(out, "%s%s\n%s\n\n", paint(color, userMessageStyle, "나"), when, wrapText(msg.Content, 80))
		return
	}
	fmt.Fprintf(out, "%s%s\n%s\n\n", paint(color, assistantMessageStyle, assistantLabel), when, renderer.Render(msg.Content))
}

func displayAssistant(out io.Writer, renderer *internal.MarkdownRenderer, content string) {
	displayMessage(out, renderer, internal.Message{Role: internal.RoleAssistant, Content: content})
}

func printSessions(out io.Writer, sessions []internal.ChatSession) {
	if len(sessions) == 0 {
		fmt.Fprintln(out, "이전 대화가 없습니다.")
		return
	}
	w := tabwriter.NewWriter(out, 0, 0, 2, ' ', 0)
	fmt.Fprintln(w, "ID\tTITLE\tCREATED")
	for _, s := range sessions {
		fmt.Fprintf(w, "%s\t%s\t%s\n", s.ID, valueOr(s.Title, "(제목 없음)"), internal.FormatDate(s.CreatedAt))
	}
	_ = w.Flush()
}

// paint renders s with style only when color is on
func paint(color bool, style lipgloss.Style, s string) string {
	if !color {
		return s
	}
	return style.Render(s)
}

// wrapText folds lines longer than width at word boundaries, counting runes
func wrapText(text string, width int) string {
	lines := strings.Split(text, "\n")
	var wrapped []string

	for _, line := range lines {
		if len([]rune(line)) <= width {
			wrapped = append(wrapped, line)
			continue
		}

		currentLine := ""
		for _, word := range strings.Fields(line) {
			switch {
			case currentLine == "":
				currentLine = word
			case len([]rune(currentLine))+len([]rune(word))+1 > width:
				wrapped = append(wrapped, currentLine)
				currentLine = word
			default:
				currentLine += " " + word
			}
		}
		if currentLine != "" {
			wrapped = append(wrapped, currentLine)
		}
	}

	return strings.Join(wrapped, "\n")
}

func init() {
	rootCmd.AddCommand(chatCmd)
	chatCmd.AddCommand(chatSendCmd, chatSessionsCmd, chatHistoryCmd)

	chatCmd.Flags().BoolVar(&chatNew, "new", false, "Start a new conversation instead of restoring the last one")
	chatCmd.PersistentFlags().IntVar(&chatWidth, "width", 80, "Wrap assistant replies at this width")
	chatSendCmd.Flags().StringVarP(&chatSessionID, "session", "s", "", "Continue this session")
}

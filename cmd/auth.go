package cmd

import (
	"bufio"
	"errors"
	"fmt"
	"io"
	"strings"
	"time"

	"github.com/dustin/go-humanize"
	"github.com/iksnae/readgye-cli/internal"
	"github.com/spf13/cobra"
)

var (
	loginEmail    string
	loginPassword string
	signupName    string

	currentPassword string
	newPassword     string
)

var loginCmd = &cobra.Command{
	Use:   "login",
	Short: "Sign in with email and password",
	Long: `Sign in to the analysis service. The token is kept in the local state
database so later commands run as this account until 'readgye logout'.

The password is read from stdin when --password is omitted.`,
	RunE: withApp(func(cmd *cobra.Command, args []string, a *app) error {
		in := bufio.NewReader(cmd.InOrStdin())
		email, err := promptIfEmpty(cmd.OutOrStdout(), in, loginEmail, "이메일: ")
		if err != nil {
			return err
		}
		password, err := promptIfEmpty(cmd.OutOrStdout(), in, loginPassword, "비밀번호: ")
		if err != nil {
			return err
		}

		if err := a.auth.SignInWithEmail(cmd.Context(), email, password); err != nil {
			return err
		}
		fmt.Fprintf(cmd.OutOrStdout(), "%s(으)로 로그인했습니다.\n", displayName(a.auth.Session().User))
		return nil
	}),
}

var signupCmd = &cobra.Command{
	Use:   "signup",
	Short: "Create an account and sign in",
	RunE: withApp(func(cmd *cobra.Command, args []string, a *app) error {
		in := bufio.NewReader(cmd.InOrStdin())
		email, err := promptIfEmpty(cmd.OutOrStdout(), in, loginEmail, "이메일: ")
		if err != nil {
			return err
		}
		password, err := promptIfEmpty(cmd.OutOrStdout(), in, loginPassword, "비밀번호: ")
		if err != nil {
			return err
		}
		name, err := promptIfEmpty(cmd.OutOrStdout(), in, signupName, "이름: ")
		if err != nil {
			return err
		}

		if err := a.auth.SignUpWithEmail(cmd.Context(), email, password, name); err != nil {
			return err
		}
		fmt.Fprintf(cmd.OutOrStdout(), "회원가입을 완료했습니다. %s(으)로 로그인했습니다.\n", displayName(a.auth.Session().User))
		return nil
	}),
}

var guestCmd = &cobra.Command{
	Use:   "guest",
	Short: "Continue with the shared guest account",
	Long: `Sign in as the shared guest account configured by guest.email and
guest.password (READGYE_GUEST_EMAIL / READGYE_GUEST_PASSWORD).

If the service cannot be reached the guest session is still stored locally and
the next command retries the backend sign-in.`,
	RunE: withApp(func(cmd *cobra.Command, args []string, a *app) error {
		if err := a.auth.SignInAsGuest(cmd.Context()); err != nil {
			if errors.Is(err, internal.ErrGuestNotConfigured) {
				return fmt.Errorf("%w: set READGYE_GUEST_EMAIL and READGYE_GUEST_PASSWORD", err)
			}
			return err
		}

		out := cmd.OutOrStdout()
		if a.auth.Session().HasToken() {
			fmt.Fprintln(out, "게스트로 로그인했습니다.")
		} else {
			fmt.Fprintln(out, "게스트로 로그인했습니다. 서버에 연결할 수 없어 일부 기능이 제한됩니다.")
		}
		return nil
	}),
}

var logoutCmd = &cobra.Command{
	Use:   "logout",
	Short: "Forget the stored session",
	RunE: withApp(func(cmd *cobra.Command, args []string, a *app) error {
		if err := a.auth.SignOut(cmd.Context()); err != nil {
			return err
		}
		if err := a.cache.ClearCache(); err != nil {
			internal.LogWarn("Failed to clear archive cache: %v", err)
		}
		fmt.Fprintln(cmd.OutOrStdout(), "로그아웃했습니다.")
		return nil
	}),
}

var whoamiCmd = &cobra.Command{
	Use:   "whoami",
	Short: "Show the signed-in account",
	RunE: withApp(func(cmd *cobra.Command, args []string, a *app) error {
		out := cmd.OutOrStdout()
		color := useColor(out)
		session := a.auth.Session()

		if !session.LoggedIn() {
			fmt.Fprintln(out, "로그인하지 않았습니다.")
			return nil
		}

		user := session.User
		fmt.Fprintln(out, internal.Heading(displayName(user), color))
		fmt.Fprintf(out, "  Email:   %s\n", valueOr(user.Email, "-"))
		if session.IsGuest(a.cfg.Guest.Email) {
			fmt.Fprintln(out, "  Account: guest")
		}

		if !session.HasToken() {
			fmt.Fprintf(out, "  Token:   %s\n", internal.Muted("none (offline)", color))
			return nil
		}
		if exp, ok := internal.TokenExpiry(session.Token); ok {
			state := "expires"
			if exp.Before(time.Now()) {
				state = "expired"
			}
			fmt.Fprintf(out, "  Token:   %s %s\n", state, humanize.Time(exp))
		} else {
			fmt.Fprintln(out, "  Token:   present")
		}

		if profile := a.auth.FetchProfile(cmd.Context()); profile != nil {
			fmt.Fprintf(out, "  Server:  %s (id %s)\n", valueOr(profile.Name, profile.Email), profile.ID)
			if profile.IsAdmin {
				fmt.Fprintln(out, "  Role:    admin")
			}
		} else {
			fmt.Fprintf(out, "  Server:  %s\n", internal.Muted("unavailable", color))
		}
		return nil
	}),
}

var passwordCmd = &cobra.Command{
	Use:   "password",
	Short: "Manage the account password",
}

var passwordChangeCmd = &cobra.Command{
	Use:   "change",
	Short: "Change the account password",
	RunE: withApp(func(cmd *cobra.Command, args []string, a *app) error {
		client, err := a.client()
		if err != nil {
			return err
		}
		if a.auth.Session().IsGuest(a.cfg.Guest.Email) {
			return errors.New("게스트 계정의 비밀번호는 변경할 수 없습니다")
		}

		in := bufio.NewReader(cmd.InOrStdin())
		current, err := promptIfEmpty(cmd.OutOrStdout(), in, currentPassword, "현재 비밀번호: ")
		if err != nil {
			return err
		}
		next, err := promptIfEmpty(cmd.OutOrStdout(), in, newPassword, "새 비밀번호: ")
		if err != nil {
			return err
		}

		if err := client.ChangePassword(cmd.Context(), current, next); err != nil {
			return errors.New(internal.UserMessage(err, "비밀번호 변경에 실패했습니다."))
		}
		fmt.Fprintln(cmd.OutOrStdout(), "비밀번호를 변경했습니다.")
		return nil
	}),
}

// promptIfEmpty returns value, or asks for it on in when empty
func promptIfEmpty(out io.Writer, in *bufio.Reader, value, prompt string) (string, error) {
	if value != "" {
		return value, nil
	}
	fmt.Fprint(out, prompt)
	line, err := in.ReadString('\n')
	line = strings.TrimSpace(line)
	if line == "" {
		if err != nil && !errors.Is(err, io.EOF) {
			return "", err
		}
		return "", fmt.Errorf("%s을(를) 입력하세요", strings.TrimSuffix(prompt, ": "))
	}
	return line, nil
}

func displayName(user *internal.UserInfo) string {
	if user == nil {
		return ""
	}
	if user.Name != "" {
		return user.Name
	}
	return user.Email
}

func valueOr(s, fallback string) string {
	if s == "" {
		return fallback
	}
	return s
}

func init() {
	rootCmd.AddCommand(loginCmd, signupCmd, guestCmd, logoutCmd, whoamiCmd, passwordCmd)

	for _, c := range []*cobra.Command{loginCmd, signupCmd} {
		c.Flags().StringVarP(&loginEmail, "email", "e", "", "Account email")
		c.Flags().StringVarP(&loginPassword, "password", "p", "", "Account password (read from stdin when omitted)")
	}
	signupCmd.Flags().StringVar(&signupName, "name", "", "Display name")

	passwordCmd.AddCommand(passwordChangeCmd)
	passwordChangeCmd.Flags().StringVar(&currentPassword, "current", "", "Current password")
	passwordChangeCmd.Flags().StringVar(&newPassword, "new", "", "New password")
}

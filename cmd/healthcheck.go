package cmd

import (
	"fmt"
	"io"
	"time"

	"github.com/charmbracelet/lipgloss"
	"github.com/dustin/go-humanize"
	"github.com/iksnae/readgye-cli/internal"
	"github.com/spf13/cobra"
)

var (
	healthcheckDetails bool
)

var (
	successStyle = lipgloss.NewStyle().
			Foreground(lipgloss.Color("42")).
			Bold(true)

	warningStyle = lipgloss.NewStyle().
			Foreground(lipgloss.Color("214")).
			Bold(true)

	errorStyle = lipgloss.NewStyle().
			Foreground(lipgloss.Color("196")).
			Bold(true)

	infoStyle = lipgloss.NewStyle().
			Foreground(lipgloss.Color("39"))

	sectionStyle = lipgloss.NewStyle().
			Foreground(lipgloss.Color("62")).
			Bold(true).
			Underline(true)
)

// healthcheckCmd represents the healthcheck command
var healthcheckCmd = &cobra.Command{
	Use:   "healthcheck",
	Short: "Check configuration, local state and service reachability",
	Long: `Check the health of readgye by verifying:
  • Configuration resolution (config.yaml, .env, READGYE_* variables, flags)
  • Local state database access
  • Analysis service reachability
  • Stored session state

This command is useful for debugging connection and sign-in issues.`,
	RunE: func(cmd *cobra.Command, args []string) error {
		out := cmd.OutOrStdout()
		p := printer{w: out, color: useColor(out)}

		p.line(sectionStyle, "🔍 readgye Health Check")
		fmt.Fprintln(out)

		// Step 1: Resolve configuration
		p.line(infoStyle, "Step 1: Resolving configuration...")
		cfg, err := internal.LoadConfig(v)
		if err != nil {
			p.line(errorStyle, "❌ Failed to load configuration")
			fmt.Fprintf(out, "   %v\n", err)
			return fmt.Errorf("health check failed: %w", err)
		}
		p.line(successStyle, "✅ Configuration loaded")
		fmt.Fprintf(out, "   API: %s\n", cfg.APIBaseURL)
		if healthcheckDetails {
			fmt.Fprintf(out, "   Config dir: %s\n", cfg.Paths.BaseDir)
			fmt.Fprintf(out, "   Config file: %s\n", valueOr(cfg.ConfigFileUsed, "(none, using defaults)"))
			fmt.Fprintf(out, "   Cache dir: %s\n", cfg.Paths.CacheDir)
			fmt.Fprintf(out, "   Poll interval: %s\n", cfg.PollInterval)
			fmt.Fprintf(out, "   Request timeout: %s\n", cfg.RequestTimeout)
			fmt.Fprintf(out, "   Guest account: %t\n", cfg.Guest.Configured())
		}
		fmt.Fprintln(out)

		// Step 2: Open the local store
		p.line(infoStyle, "Step 2: Opening local state database...")
		if err := cfg.Paths.Ensure(); err != nil {
			p.line(errorStyle, "❌ Cannot create config directory")
			fmt.Fprintf(out, "   %v\n", err)
			return fmt.Errorf("health check failed: %w", err)
		}
		existed := cfg.Paths.DBExists()
		db, err := internal.OpenDatabase(cfg.Paths.DBPath())
		if err != nil {
			p.line(errorStyle, "❌ Failed to open local state database")
			fmt.Fprintf(out, "   %v\n", err)
			return fmt.Errorf("health check failed: %w", err)
		}
		defer db.Close()

		pairs, err := internal.ListValues(db)
		if err != nil {
			p.line(errorStyle, "❌ Local state database is unreadable")
			fmt.Fprintf(out, "   %v\n", err)
			return fmt.Errorf("health check failed: %w", err)
		}
		if existed {
			p.line(successStyle, fmt.Sprintf("✅ Local state database readable (%d key(s))", len(pairs)))
		} else {
			p.line(successStyle, "✅ Local state database created")
		}
		if healthcheckDetails {
			fmt.Fprintf(out, "   Database: %s\n", cfg.Paths.DBPath())
			for _, pair := range pairs {
				fmt.Fprintf(out, "   %s (updated %s)\n", pair.Key, internal.RelativeTo(pair.GetUpdatedAt()))
			}
		}
		fmt.Fprintln(out)

		// Step 3: Reach the service
		p.line(infoStyle, "Step 3: Contacting analysis service...")
		client := internal.NewClient(cfg.APIBaseURL, cfg.RequestTimeout)
		start := time.Now()
		status, pingErr := client.Ping(cmd.Context())
		if pingErr != nil {
			p.line(errorStyle, "❌ Service unreachable")
			fmt.Fprintf(out, "   %v\n", pingErr)
		} else {
			p.line(successStyle, fmt.Sprintf("✅ Service reachable (HTTP %d in %s)", status, time.Since(start).Round(time.Millisecond)))
		}
		fmt.Fprintln(out)

		// Step 4: Session state
		p.line(infoStyle, "Step 4: Checking stored session...")
		store := internal.NewSessionStore(db, cfg.Paths.DBPath())
		auth := internal.NewAuthenticator(client, store, cfg.Guest)
		session := auth.Bootstrap(cmd.Context())
		signedIn := session.HasToken()
		switch {
		case !session.LoggedIn():
			p.line(warningStyle, "⚠️  Not signed in")
			fmt.Fprintln(out, "   Run 'readgye login' or 'readgye guest'")
		case !session.HasToken():
			p.line(warningStyle, fmt.Sprintf("⚠️  Signed in as %s without a token (offline)", displayName(session.User)))
		default:
			p.line(successStyle, fmt.Sprintf("✅ Signed in as %s", displayName(session.User)))
			if exp, ok := internal.TokenExpiry(session.Token); ok {
				fmt.Fprintf(out, "   Token expires %s\n", humanize.Time(exp))
				if exp.Before(time.Now()) {
					signedIn = false
				}
			}
			if pingErr == nil {
				if profile := auth.FetchProfile(cmd.Context()); profile != nil {
					fmt.Fprintf(out, "   Server account: %s\n", profile.Email)
				} else {
					p.line(warningStyle, "⚠️  Token rejected by service")
					signedIn = false
				}
			}
		}
		fmt.Fprintln(out)

		// Summary
		p.line(sectionStyle, "📊 Summary")
		fmt.Fprintln(out)

		switch {
		case pingErr != nil:
			p.line(errorStyle, "❌ Health check failed")
			fmt.Fprintln(out, "   • Local state: Available")
			fmt.Fprintf(out, "   • Service: Unreachable at %s\n", cfg.APIBaseURL)
			return fmt.Errorf("health check failed: service unreachable: %w", pingErr)
		case signedIn:
			p.line(successStyle, "✅ Health check passed!")
			p.line(successStyle, "   • Service: Reachable")
			p.line(successStyle, "   • Session: Active")
			return nil
		default:
			p.line(warningStyle, "⚠️  Service reachable but no usable session")
			fmt.Fprintln(out, "   • Service is working")
			fmt.Fprintln(out, "   • Sign in to use the archive, chat and notifications")
			return nil
		}
	},
}

// printer writes styled lines, dropping the style when color is off
type printer struct {
	w     io.Writer
	color bool
}

func (p printer) line(style lipgloss.Style, s string) {
	fmt.Fprintln(p.w, paint(p.color, style, s))
}

func init() {
	rootCmd.AddCommand(healthcheckCmd)
	healthcheckCmd.Flags().BoolVarP(&healthcheckDetails, "details", "d", false, "Show detailed diagnostic information")
}

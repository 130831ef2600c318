package cmd

import (
	"bytes"
	"io"
	"net/http"
	"strings"
	"testing"

	"github.com/iksnae/readgye-cli/internal"
	"github.com/iksnae/readgye-cli/testutil"
	"github.com/spf13/cobra"
	"github.com/spf13/pflag"
	"github.com/stretchr/testify/require"
)

const (
	testGuestEmail    = "guest@readgye.test"
	testGuestPassword = "guest-pass"
)

// cliEnv runs the command tree against a fake backend and a temp config dir
type cliEnv struct {
	t       *testing.T
	dir     string
	backend *testutil.FakeBackend
	stderr  bytes.Buffer
}

func newCLIEnv(t *testing.T) *cliEnv {
	t.Helper()
	t.Setenv("NO_COLOR", "1")
	t.Setenv("READGYE_GUEST_EMAIL", testGuestEmail)
	t.Setenv("READGYE_GUEST_PASSWORD", testGuestPassword)
	return &cliEnv{
		t:       t,
		dir:     testutil.CreateTempDir(t),
		backend: testutil.NewFakeBackend(t),
	}
}

func (e *cliEnv) run(args ...string) (string, error) {
	return e.runWithInput("", args...)
}

func (e *cliEnv) runWithInput(input string, args ...string) (string, error) {
	e.t.Helper()
	resetFlags(rootCmd)
	e.stderr.Reset()

	var out bytes.Buffer
	rootCmd.SetOut(&out)
	rootCmd.SetErr(&e.stderr)
	rootCmd.SetIn(strings.NewReader(input))
	rootCmd.SetArgs(append(args, "--api-url", e.backend.URL, "--config-dir", e.dir))

	err := rootCmd.Execute()
	return out.String(), err
}

// signIn stores a session as if 'readgye login' had succeeded
func (e *cliEnv) signIn(user *internal.UserInfo, token string) {
	e.t.Helper()
	paths := internal.ConfigPathsAt(e.dir)
	require.NoError(e.t, paths.Ensure())
	db, err := internal.OpenDatabase(paths.DBPath())
	require.NoError(e.t, err)
	defer db.Close()

	store := internal.NewSessionStore(db, paths.DBPath())
	require.NoError(e.t, store.SaveUser(user))
	if token != "" {
		require.NoError(e.t, store.SaveToken(token))
	}
}

func (e *cliEnv) signInDefault() {
	e.signIn(&internal.UserInfo{ID: "7", Name: "김철수", Email: "kim@example.com"}, "user-token")
}

// handle registers a bearer-protected route for the default user
func (e *cliEnv) handle(pattern string, h http.HandlerFunc) {
	e.backend.Handle(pattern, testutil.RequireBearer("user-token", h))
}

// resetFlags returns every flag in the tree to its default between runs
func resetFlags(c *cobra.Command) {
	reset := func(f *pflag.Flag) {
		if sv, ok := f.Value.(pflag.SliceValue); ok {
			_ = sv.Replace(nil)
		} else {
			_ = f.Value.Set(f.DefValue)
		}
		f.Changed = false
	}
	c.Flags().VisitAll(reset)
	c.PersistentFlags().VisitAll(reset)
	for _, child := range c.Commands() {
		resetFlags(child)
	}
	internal.SetVerbose(false)
}

// readBody is for use inside handlers, where require must not be called
func readBody(r *http.Request) []byte {
	data, _ := io.ReadAll(r.Body)
	return data
}

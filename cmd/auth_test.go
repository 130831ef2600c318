package cmd

import (
	"encoding/json"
	"net/http"
	"testing"
	"time"

	"github.com/golang-jwt/jwt/v5"
	"github.com/iksnae/readgye-cli/internal"
	"github.com/iksnae/readgye-cli/testutil"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func handleLogin(e *cliEnv) {
	e.backend.Handle("POST /api/auth/login", func(w http.ResponseWriter, r *http.Request) {
		_ = r.ParseForm()
		if r.PostForm.Get("username") != "kim@example.com" || r.PostForm.Get("password") != "secret" {
			testutil.WriteDetail(w, http.StatusUnauthorized, "Incorrect email or password")
			return
		}
		testutil.WriteJSON(w, http.StatusOK, map[string]string{"access_token": "user-token", "token_type": "bearer"})
	})
	e.handle("GET /api/auth/me", func(w http.ResponseWriter, r *http.Request) {
		testutil.WriteJSON(w, http.StatusOK, internal.Profile{ID: "7", Email: "kim@example.com", Name: "김철수"})
	})
}

func TestLoginCommand(t *testing.T) {
	env := newCLIEnv(t)
	handleLogin(env)

	out, err := env.run("login", "--email", "kim@example.com", "--password", "secret")
	require.NoError(t, err)
	assert.Contains(t, out, "김철수(으)로 로그인했습니다.")

	out, err = env.run("whoami")
	require.NoError(t, err)
	assert.Contains(t, out, "kim@example.com")
	assert.Contains(t, out, "Token:   present")
	assert.Contains(t, out, "Server:  김철수 (id 7)")
}

func TestLoginCommand_PromptsForPassword(t *testing.T) {
	env := newCLIEnv(t)
	handleLogin(env)

	out, err := env.runWithInput("secret\n", "login", "--email", "kim@example.com")
	require.NoError(t, err)
	assert.Contains(t, out, "비밀번호: ")
	assert.Contains(t, out, "로그인했습니다.")
}

func TestLoginCommand_BadCredentials(t *testing.T) {
	env := newCLIEnv(t)
	handleLogin(env)

	_, err := env.run("login", "--email", "kim@example.com", "--password", "wrong")
	require.Error(t, err)
	assert.Equal(t, "Incorrect email or password", internal.UserMessage(err, ""))

	out, err := env.run("whoami")
	require.NoError(t, err)
	assert.Contains(t, out, "로그인하지 않았습니다.")
}

func TestLoginCommand_MissingPassword(t *testing.T) {
	env := newCLIEnv(t)

	_, err := env.run("login", "--email", "kim@example.com")
	require.Error(t, err)
	assert.Contains(t, err.Error(), "비밀번호을(를) 입력하세요")
}

func TestGuestCommand(t *testing.T) {
	env := newCLIEnv(t)
	env.backend.Handle("POST /api/auth/signup", func(w http.ResponseWriter, r *http.Request) {
		testutil.WriteDetail(w, http.StatusBadRequest, "Email already registered")
	})
	env.backend.Handle("POST /api/auth/login", func(w http.ResponseWriter, r *http.Request) {
		testutil.WriteJSON(w, http.StatusOK, map[string]string{"access_token": "guest-token"})
	})

	out, err := env.run("guest")
	require.NoError(t, err)
	assert.Contains(t, out, "게스트로 로그인했습니다.")
	assert.NotContains(t, out, "제한됩니다")
	assert.Equal(t, 1, env.backend.Calls("POST /api/auth/signup"))
	assert.Equal(t, 1, env.backend.Calls("POST /api/auth/login"))

	out, err = env.run("whoami")
	require.NoError(t, err)
	assert.Contains(t, out, "Account: guest")
}

func TestGuestCommand_Offline(t *testing.T) {
	env := newCLIEnv(t)
	env.backend.Handle("POST /api/auth/login", func(w http.ResponseWriter, r *http.Request) {
		testutil.WriteDetail(w, http.StatusServiceUnavailable, "down")
	})

	out, err := env.run("guest")
	require.NoError(t, err, "backend failures are not fatal for guests")
	assert.Contains(t, out, "일부 기능이 제한됩니다")

	out, err = env.run("whoami")
	require.NoError(t, err)
	assert.Contains(t, out, "none (offline)")
}

func TestGuestCommand_NotConfigured(t *testing.T) {
	env := newCLIEnv(t)
	t.Setenv("READGYE_GUEST_EMAIL", "")

	_, err := env.run("guest")
	require.ErrorIs(t, err, internal.ErrGuestNotConfigured)
}

func TestLogoutCommand(t *testing.T) {
	env := newCLIEnv(t)
	env.signInDefault()

	out, err := env.run("logout")
	require.NoError(t, err)
	assert.Contains(t, out, "로그아웃했습니다.")

	out, err = env.run("whoami")
	require.NoError(t, err)
	assert.Contains(t, out, "로그인하지 않았습니다.")
}

func TestWhoamiCommand_TokenExpiry(t *testing.T) {
	env := newCLIEnv(t)
	claims := jwt.RegisteredClaims{ExpiresAt: jwt.NewNumericDate(time.Now().Add(-2 * time.Hour))}
	token, err := jwt.NewWithClaims(jwt.SigningMethodHS256, claims).SignedString([]byte("test"))
	require.NoError(t, err)
	env.signIn(&internal.UserInfo{ID: "7", Email: "kim@example.com"}, token)

	out, err := env.run("whoami")
	require.NoError(t, err)
	assert.Contains(t, out, "Token:   expired 2 hours ago")
	assert.Contains(t, out, "Server:  unavailable")
}

func TestPasswordChangeCommand(t *testing.T) {
	env := newCLIEnv(t)

	_, err := env.run("password", "change", "--current", "a", "--new", "b")
	require.ErrorIs(t, err, internal.ErrNotAuthenticated)

	env.signInDefault()
	var got map[string]string
	env.handle("POST /api/auth/change-password", func(w http.ResponseWriter, r *http.Request) {
		_ = json.Unmarshal(readBody(r), &got)
		if got["current_password"] != "old" {
			testutil.WriteDetail(w, http.StatusBadRequest, "현재 비밀번호가 올바르지 않습니다.")
			return
		}
		testutil.WriteJSON(w, http.StatusOK, map[string]string{"message": "ok"})
	})

	out, err := env.run("password", "change", "--current", "old", "--new", "new-secret")
	require.NoError(t, err)
	assert.Contains(t, out, "비밀번호를 변경했습니다.")
	assert.Equal(t, "new-secret", got["new_password"])

	_, err = env.run("password", "change", "--current", "nope", "--new", "x")
	require.EqualError(t, err, "현재 비밀번호가 올바르지 않습니다.")
}

func TestPasswordChangeCommand_GuestRefused(t *testing.T) {
	env := newCLIEnv(t)
	env.signIn(&internal.UserInfo{ID: "guest", Name: "게스트", Email: testGuestEmail}, "guest-token")

	_, err := env.run("password", "change", "--current", "a", "--new", "b")
	require.Error(t, err)
	assert.Contains(t, err.Error(), "게스트 계정")
}

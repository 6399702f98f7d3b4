package server

import (
	"bytes"
	"encoding/json"
	"fmt"
	"io"
	"net/http"
	"net/http/httptest"
	"testing"

	"github.com/rs/zerolog"
	"github.com/stretchr/testify/require"

	"github.com/hongminglow/homeride-be/internal/auth"
	"github.com/hongminglow/homeride-be/internal/config"
	"github.com/hongminglow/homeride-be/internal/storage/memory"
)

func testConfig() config.Config {
	return config.Config{
		Port:              "0",
		Env:               "development",
		JWTSecret:         "server-test-signing-key-0123456789abcdef",
		JWTIssuer:         "homeride",
		JWTAudience:       "homeride-app",
		PasswordPepper:    "server-test-pepper",
		CORSOrigins:       []string{"*"},
		AuthRatePerMinute: 60,
		AuthRateBurst:     20,
	}
}

type client struct {
	t  *testing.T
	ts *httptest.Server
}

func (c client) call(method, path, token string, body any) (int, http.Header, map[string]any) {
	c.t.Helper()
	var r io.Reader
	if body != nil {
		raw, err := json.Marshal(body)
		require.NoError(c.t, err)
		r = bytes.NewReader(raw)
	}
	req, err := http.NewRequest(method, c.ts.URL+path, r)
	require.NoError(c.t, err)
	req.Header.Set("Content-Type", "application/json")
	if token != "" {
		req.Header.Set("Authorization", "Bearer "+token)
	}
	resp, err := c.ts.Client().Do(req)
	require.NoError(c.t, err)
	defer resp.Body.Close()

	var env map[string]any
	require.NoError(c.t, json.NewDecoder(resp.Body).Decode(&env))
	return resp.StatusCode, resp.Header, env
}

func TestNew_RequiresSecrets(t *testing.T) {
	cfg := testConfig()
	cfg.PasswordPepper = ""
	_, err := New(cfg, memory.New(), zerolog.Nop())
	require.ErrorIs(t, err, auth.ErrMissingSecret)

	cfg = testConfig()
	cfg.JWTSecret = ""
	_, err = New(cfg, memory.New(), zerolog.Nop())
	require.ErrorIs(t, err, auth.ErrMissingSecret)
}

// TestAccountScenario walks registration, login failures, password change and
// token reuse through the full middleware stack.
func TestAccountScenario(t *testing.T) {
	srv, err := New(testConfig(), memory.New(), zerolog.Nop())
	require.NoError(t, err)
	ts := httptest.NewServer(srv.Handler())
	defer ts.Close()
	c := client{t: t, ts: ts}

	status, _, env := c.call(http.MethodPost, "/auth/register", "", map[string]string{
		"first_name": "Kari", "last_name": "Nordmann", "email": "a@x.no", "phone": "11111111", "password": "CorrectHorse1",
	})
	require.Equal(t, http.StatusCreated, status)
	data := env["data"].(map[string]any)
	token := data["token"].(string)
	require.NotEmpty(t, token)
	require.NotContains(t, data["account"], "password_hash")

	status, _, env = c.call(http.MethodPost, "/auth/register", "", map[string]string{
		"first_name": "Kari", "last_name": "Nordmann", "email": "a@x.no", "phone": "22222222", "password": "CorrectHorse1",
	})
	require.Equal(t, http.StatusConflict, status)
	require.Equal(t, "account already exists", env["message"])

	wrongStatus, _, wrongEnv := c.call(http.MethodPost, "/auth/login", "", map[string]string{"email": "a@x.no", "password": "WrongHorse1"})
	unknownStatus, _, unknownEnv := c.call(http.MethodPost, "/auth/login", "", map[string]string{"email": "nobody@x.no", "password": "WrongHorse1"})
	require.Equal(t, http.StatusUnauthorized, wrongStatus)
	require.Equal(t, wrongStatus, unknownStatus)
	require.Equal(t, wrongEnv, unknownEnv)

	status, _, _ = c.call(http.MethodPost, "/accounts/me/password", token, map[string]string{
		"current_password": "WrongHorse1", "new_password": "BatteryStaple2",
	})
	require.Equal(t, http.StatusUnauthorized, status)
	status, _, _ = c.call(http.MethodPost, "/auth/login", "", map[string]string{"email": "a@x.no", "password": "CorrectHorse1"})
	require.Equal(t, http.StatusOK, status, "old password still works after rejected change")

	status, _, _ = c.call(http.MethodPost, "/accounts/me/password", token, map[string]string{
		"current_password": "CorrectHorse1", "new_password": "BatteryStaple2",
	})
	require.Equal(t, http.StatusOK, status)

	// no revocation list: the pre-change token keeps working until it expires
	status, _, env = c.call(http.MethodGet, "/accounts/me", token, nil)
	require.Equal(t, http.StatusOK, status)
	require.Equal(t, "a@x.no", env["data"].(map[string]any)["email"])
}

func TestUnauthenticatedRequestsAreUniform(t *testing.T) {
	srv, err := New(testConfig(), memory.New(), zerolog.Nop())
	require.NoError(t, err)
	ts := httptest.NewServer(srv.Handler())
	defer ts.Close()
	c := client{t: t, ts: ts}

	missingStatus, missingHdr, missing := c.call(http.MethodGet, "/accounts/me", "", nil)
	garbageStatus, _, garbage := c.call(http.MethodGet, "/accounts/me", "garbage", nil)

	require.Equal(t, http.StatusUnauthorized, missingStatus)
	require.Equal(t, missingStatus, garbageStatus)
	require.Equal(t, missing, garbage)
	require.Contains(t, missingHdr.Get("WWW-Authenticate"), "Bearer")
}

func TestCredentialEndpointsAreRateLimited(t *testing.T) {
	cfg := testConfig()
	cfg.AuthRatePerMinute = 1
	cfg.AuthRateBurst = 2
	srv, err := New(cfg, memory.New(), zerolog.Nop())
	require.NoError(t, err)
	ts := httptest.NewServer(srv.Handler())
	defer ts.Close()
	c := client{t: t, ts: ts}

	login := map[string]string{"email": "a@x.no", "password": "WrongHorse1"}
	for range 2 {
		status, _, _ := c.call(http.MethodPost, "/auth/login", "", login)
		require.Equal(t, http.StatusUnauthorized, status)
	}
	status, hdr, _ := c.call(http.MethodPost, "/auth/login", "", login)
	require.Equal(t, http.StatusTooManyRequests, status)
	require.NotEmpty(t, hdr.Get("Retry-After"))

	status, _, _ = c.call(http.MethodGet, "/health", "", nil)
	require.Equal(t, http.StatusOK, status)
}

func loginFrom(t *testing.T, h http.Handler, remoteAddr, forwardedFor string) int {
	t.Helper()
	req := httptest.NewRequest(http.MethodPost, "/auth/login", bytes.NewBufferString(`{"email":"a@x.no","password":"WrongHorse1"}`))
	req.Header.Set("Content-Type", "application/json")
	req.RemoteAddr = remoteAddr
	req.Header.Set("X-Forwarded-For", forwardedFor)
	req.Header.Set("X-Real-IP", forwardedFor)
	req.Header.Set("True-Client-IP", forwardedFor)
	rec := httptest.NewRecorder()
	h.ServeHTTP(rec, req)
	return rec.Code
}

func TestRateLimit_IgnoresForwardedHeadersByDefault(t *testing.T) {
	cfg := testConfig()
	cfg.AuthRatePerMinute = 1
	cfg.AuthRateBurst = 2
	srv, err := New(cfg, memory.New(), zerolog.Nop())
	require.NoError(t, err)

	counts := map[int]int{}
	for i := range 20 {
		counts[loginFrom(t, srv.Handler(), "203.0.113.7:5555", fmt.Sprintf("198.51.100.%d", i+1))]++
	}
	require.Equal(t, 2, counts[http.StatusUnauthorized])
	require.Equal(t, 18, counts[http.StatusTooManyRequests])
}

func TestRateLimit_TrustedProxyKeysOnForwardedClient(t *testing.T) {
	cfg := testConfig()
	cfg.AuthRatePerMinute = 1
	cfg.AuthRateBurst = 2
	cfg.TrustProxy = true
	srv, err := New(cfg, memory.New(), zerolog.Nop())
	require.NoError(t, err)

	for i := range 5 {
		status := loginFrom(t, srv.Handler(), "10.0.0.1:443", fmt.Sprintf("198.51.100.%d", i+1))
		require.Equal(t, http.StatusUnauthorized, status)
	}
	for range 2 {
		require.Equal(t, http.StatusUnauthorized, loginFrom(t, srv.Handler(), "10.0.0.1:443", "192.0.2.50"))
	}
	require.Equal(t, http.StatusTooManyRequests, loginFrom(t, srv.Handler(), "10.0.0.1:443", "192.0.2.50"))
}

package handlers

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"net/http"
	"net/http/httptest"
	"os"
	"strings"
	"testing"
	"time"

	"github.com/joho/godotenv"
	"github.com/stretchr/testify/require"

	"github.com/hongminglow/homeride-be/internal/storage/postgres"
)

// TestAuthIntegration exercises register, login and /accounts/me against the
// database in DATABASE_URL. Migrations must already be applied.
func TestAuthIntegration(t *testing.T) {
	if os.Getenv("RUN_AUTH_INTEGRATION") != "true" {
		t.Skip("set RUN_AUTH_INTEGRATION=true to run this integration test")
	}

	loadDotEnv()
	dbURL := mustGetEnv(t, "DATABASE_URL")

	ctx := context.Background()
	store, err := postgres.NewStore(ctx, dbURL)
	require.NoError(t, err, "init store")
	defer store.Close()

	ts := httptest.NewServer(newTestRouter(t, store, mustGetEnv(t, "JWT_SECRET"), mustGetEnv(t, "PASSWORD_PEPPER")))
	defer ts.Close()

	stamp := time.Now().UnixNano()
	email := fmt.Sprintf("apitest_%d@example.com", stamp)
	phone := fmt.Sprintf("+1555%07d", stamp%10_000_000)
	password := fmt.Sprintf("Pass%dWord", stamp)

	registered := requestSession(t, ts.URL+"/auth/register", map[string]string{
		"first_name": "Api",
		"last_name":  "Test",
		"email":      email,
		"phone":      phone,
		"password":   password,
	}, http.StatusCreated)
	require.Equal(t, email, registered.Account.Email)
	require.Equal(t, phone, registered.Account.Phone)

	loggedIn := requestSession(t, ts.URL+"/auth/login", map[string]string{
		"email":    strings.ToUpper(email),
		"password": password,
	}, http.StatusOK)
	require.Equal(t, registered.Account.ID, loggedIn.Account.ID)
	require.NotEmpty(t, strings.TrimSpace(loggedIn.Token))

	req, err := http.NewRequest(http.MethodGet, ts.URL+"/accounts/me", nil)
	require.NoError(t, err)
	req.Header.Set("Authorization", "Bearer "+loggedIn.Token)
	resp, err := http.DefaultClient.Do(req)
	require.NoError(t, err)
	defer resp.Body.Close()
	require.Equal(t, http.StatusOK, resp.StatusCode)

	t.Logf("registered %s (id=%s) and logged in", email, registered.Account.ID)
}

type sessionBody struct {
	Token   string `json:"token"`
	Account struct {
		ID    string `json:"id"`
		Email string `json:"email"`
		Phone string `json:"phone"`
	} `json:"account"`
}

func requestSession(t *testing.T, url string, payload map[string]string, wantStatus int) sessionBody {
	t.Helper()
	body, err := json.Marshal(payload)
	require.NoError(t, err)

	resp, err := http.Post(url, "application/json", bytes.NewReader(body))
	require.NoError(t, err)
	defer resp.Body.Close()
	require.Equal(t, wantStatus, resp.StatusCode)

	var out struct {
		Data sessionBody `json:"data"`
	}
	require.NoError(t, json.NewDecoder(resp.Body).Decode(&out))
	return out.Data
}

func mustGetEnv(t *testing.T, key string) string {
	t.Helper()
	val := strings.TrimSpace(os.Getenv(key))
	if val == "" {
		t.Fatalf("%s is required", key)
	}
	return val
}

func loadDotEnv() {
	paths := []string{
		".env",
		"../.env",
		"../../.env",
		"../../../.env",
		"../../../../.env",
	}
	for _, path := range paths {
		_ = godotenv.Overload(path)
	}
}

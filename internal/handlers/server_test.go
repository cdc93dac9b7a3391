package handlers

import (
	"encoding/json"
	"io"
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"
	"time"

	"github.com/stretchr/testify/require"
	"golang.org/x/crypto/bcrypt"

	"github.com/nkiryanov/portfolio/internal/logger"
	"github.com/nkiryanov/portfolio/internal/repository/sqlite"
	"github.com/nkiryanov/portfolio/internal/service/auth"
	"github.com/nkiryanov/portfolio/internal/service/auth/tokenmanager"
	"github.com/nkiryanov/portfolio/internal/service/project"
	"github.com/nkiryanov/portfolio/internal/testutil"
)

const testSecret = "test-secret-key"

// Server with production services over in-memory storage
type testServer struct {
	URL     string
	Storage *sqlite.Storage
	Tokens  *tokenmanager.TokenManager
}

func newTestServer(t *testing.T, opts RouterOptions) testServer {
	t.Helper()

	storage := testutil.NewSQLiteStorage(t)

	tokenManager, err := tokenmanager.New(tokenmanager.Config{SecretKey: testSecret, TTL: time.Hour})
	require.NoError(t, err, "token manager should be created without errors")

	authService, err := auth.NewService(auth.Config{Hasher: auth.BcryptHasher{Cost: bcrypt.MinCost}}, tokenManager, storage.User())
	require.NoError(t, err, "auth service starting error", err)

	router := NewRouter(authService, project.NewService(storage), logger.NewNoOpLogger(), opts)
	srv := httptest.NewServer(router)
	t.Cleanup(srv.Close)

	return testServer{URL: srv.URL, Storage: storage, Tokens: tokenManager}
}

type response struct {
	Status int
	Header http.Header
	Body   string
}

// Decode body into map, fail test if it is not a JSON object
func (r response) JSON(t *testing.T) map[string]any {
	t.Helper()

	var data map[string]any
	require.NoError(t, json.Unmarshal([]byte(r.Body), &data), "body is not JSON: %s", r.Body)
	return data
}

func jsonObject(t *testing.T, raw string) map[string]any {
	t.Helper()

	var data map[string]any
	require.NoError(t, json.Unmarshal([]byte(raw), &data))
	return data
}

func doRequest(t *testing.T, method string, url string, body string, headers ...string) response {
	t.Helper()

	var reader io.Reader
	if body != "" {
		reader = strings.NewReader(body)
	}

	req, err := http.NewRequestWithContext(t.Context(), method, url, reader)
	require.NoError(t, err)
	req.Header.Set("Content-Type", "application/json")
	for i := 0; i+1 < len(headers); i += 2 {
		req.Header.Set(headers[i], headers[i+1])
	}

	resp, err := http.DefaultClient.Do(req)
	require.NoError(t, err, "should make request to test server")
	defer func() { _ = resp.Body.Close() }()

	data, err := io.ReadAll(resp.Body)
	require.NoError(t, err, "should read response body")

	return response{Status: resp.StatusCode, Header: resp.Header, Body: string(data)}
}

func bearer(token string) []string {
	return []string{"Authorization", "Bearer " + token}
}

// Register user over HTTP and return its token
func registerUser(t *testing.T, srv testServer, username string, password string) string {
	t.Helper()

	resp := doRequest(t, http.MethodPost, srv.URL+"/api/auth/register",
		`{"username": "`+username+`", "password": "`+password+`"}`)
	require.Equal(t, http.StatusCreated, resp.Status, resp.Body)

	token, ok := resp.JSON(t)["token"].(string)
	require.True(t, ok, "token expected in response: %s", resp.Body)
	return token
}

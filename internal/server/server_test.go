package server

import (
	"bytes"
	"encoding/json"
	"io"
	"net/http"
	"net/http/httptest"
	"net/url"
	"strings"
	"testing"

	"inkwell/internal/config"
	"inkwell/internal/models"
	"inkwell/internal/testutil"

	"github.com/alicebob/miniredis/v2"
	"github.com/gofiber/fiber/v2"
	"github.com/redis/go-redis/v9"
	"github.com/stretchr/testify/require"
	"gorm.io/gorm"
)

const testCookieName = "INKWELL_SESSION"

type testEnv struct {
	t   *testing.T
	db  *gorm.DB
	srv *Server
	app *fiber.App
	mr  *miniredis.Miniredis
}

func testConfig() *config.Config {
	return &config.Config{
		Port:              "0",
		Env:               "test",
		DBDriver:          "sqlite",
		DBSchemaMode:      "auto",
		SessionSecret:     "test-secret-key-12345678901234567890123456789012",
		SessionTTLHours:   1,
		SessionCookieName: testCookieName,
		BcryptCost:        4,
	}
}

// newTestEnv builds the full middleware and route stack over an in-memory
// SQLite database and a miniredis revocation store.
func newTestEnv(t *testing.T) *testEnv {
	t.Helper()

	db := testutil.NewTestDB(t)
	mr := miniredis.RunT(t)
	rdb := redis.NewClient(&redis.Options{Addr: mr.Addr()})
	t.Cleanup(func() { _ = rdb.Close() })

	srv, err := NewServerWithDeps(testConfig(), db, rdb)
	require.NoError(t, err)

	app := NewApp()
	srv.SetupMiddleware(app)
	srv.SetupRoutes(app)

	return &testEnv{t: t, db: db, srv: srv, app: app, mr: mr}
}

// token issues a session token for user without going through the login form.
func (e *testEnv) token(user *models.User) string {
	e.t.Helper()
	token, _, err := e.srv.sessions.Issue(user)
	require.NoError(e.t, err)
	return token
}

type reqOpt func(*http.Request)

func withCookie(token string) reqOpt {
	return func(r *http.Request) {
		r.AddCookie(&http.Cookie{Name: testCookieName, Value: token})
	}
}

func withBearer(token string) reqOpt {
	return func(r *http.Request) {
		r.Header.Set("Authorization", "Bearer "+token)
	}
}

func (e *testEnv) do(method, path string, body io.Reader, contentType string, opts ...reqOpt) *http.Response {
	e.t.Helper()
	req := httptest.NewRequest(method, path, body)
	if contentType != "" {
		req.Header.Set("Content-Type", contentType)
	}
	for _, opt := range opts {
		opt(req)
	}
	resp, err := e.app.Test(req, -1)
	require.NoError(e.t, err)
	e.t.Cleanup(func() { _ = resp.Body.Close() })
	return resp
}

func (e *testEnv) get(path string, opts ...reqOpt) *http.Response {
	return e.do(http.MethodGet, path, nil, "", opts...)
}

func (e *testEnv) postForm(path string, form url.Values, opts ...reqOpt) *http.Response {
	return e.do(http.MethodPost, path, strings.NewReader(form.Encode()), fiber.MIMEApplicationForm, opts...)
}

func (e *testEnv) sendJSON(method, path string, body interface{}, opts ...reqOpt) *http.Response {
	e.t.Helper()
	raw, err := json.Marshal(body)
	require.NoError(e.t, err)
	return e.do(method, path, bytes.NewReader(raw), fiber.MIMEApplicationJSON, opts...)
}

func decode[T any](t *testing.T, resp *http.Response) T {
	t.Helper()
	var out T
	require.NoError(t, json.NewDecoder(resp.Body).Decode(&out))
	return out
}

func sessionCookie(resp *http.Response) *http.Cookie {
	for _, c := range resp.Cookies() {
		if c.Name == testCookieName {
			return c
		}
	}
	return nil
}

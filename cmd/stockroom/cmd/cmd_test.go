package cmd

import (
	"bytes"
	"context"
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"os"
	"path/filepath"
	"strings"
	"sync"
	"testing"

	"github.com/go-chi/chi/v5"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/jmcleod/stockroom/internal/config"
	"github.com/jmcleod/stockroom/routes"
)

// ---------------------------------------------------------------------------
// Test helpers
// ---------------------------------------------------------------------------

// inventoryAPI is a minimal stand-in for the inventory REST API.
type inventoryAPI struct {
	mu        sync.Mutex
	issue     string
	valid     map[string]bool
	refreshes int
}

func newInventoryAPI(t *testing.T, issue string) (*inventoryAPI, *httptest.Server) {
	t.Helper()
	api := &inventoryAPI{issue: issue, valid: map[string]bool{"fresh-access": true, "valid-access": true}}

	r := chi.NewRouter()
	r.Post("/api/token/", func(w http.ResponseWriter, r *http.Request) {
		var body map[string]string
		json.NewDecoder(r.Body).Decode(&body)
		if body["username"] != "admin" || body["password"] != "secret" {
			w.WriteHeader(http.StatusUnauthorized)
			return
		}
		json.NewEncoder(w).Encode(map[string]string{"access": api.issue, "refresh": "refresh-one"})
	})
	r.Post("/api/token/refresh/", func(w http.ResponseWriter, r *http.Request) {
		api.mu.Lock()
		api.refreshes++
		api.mu.Unlock()
		var body map[string]string
		json.NewDecoder(r.Body).Decode(&body)
		if body["refresh"] != "refresh-one" {
			w.WriteHeader(http.StatusUnauthorized)
			return
		}
		json.NewEncoder(w).Encode(map[string]string{"access": "fresh-access"})
	})
	r.Group(func(r chi.Router) {
		r.Use(func(next http.Handler) http.Handler {
			return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
				token := strings.TrimPrefix(r.Header.Get("Authorization"), "Bearer ")
				if !api.valid[token] {
					w.WriteHeader(http.StatusUnauthorized)
					return
				}
				next.ServeHTTP(w, r)
			})
		})
		r.Get("/api/products/", func(w http.ResponseWriter, r *http.Request) {
			json.NewEncoder(w).Encode([]map[string]any{{"id": 1, "name": "Tee", "q": r.URL.Query().Get("size")}})
		})
		r.Post("/api/colors/", func(w http.ResponseWriter, r *http.Request) {
			var rec map[string]any
			json.NewDecoder(r.Body).Decode(&rec)
			rec["id"] = 7
			w.WriteHeader(http.StatusCreated)
			json.NewEncoder(w).Encode(rec)
		})
		r.Delete("/api/colors/{id}/", func(w http.ResponseWriter, r *http.Request) {
			w.WriteHeader(http.StatusNoContent)
		})
	})

	srv := httptest.NewServer(r)
	t.Cleanup(srv.Close)
	return api, srv
}

func (a *inventoryAPI) refreshCount() int {
	a.mu.Lock()
	defer a.mu.Unlock()
	return a.refreshes
}

type env struct {
	srv     *httptest.Server
	dataDir string
}

func newEnv(t *testing.T, srv *httptest.Server) *env {
	return &env{srv: srv, dataDir: t.TempDir()}
}

// run executes the root command with the environment's API and data
// directory flags prepended.
func (e *env) run(t *testing.T, stdin string, args ...string) (string, string, error) {
	t.Helper()
	password, apiData, apiQuery, apiAll = "", "", nil, false

	var stdout, stderr bytes.Buffer
	rootCmd.SetOut(&stdout)
	rootCmd.SetErr(&stderr)
	rootCmd.SetIn(strings.NewReader(stdin))
	rootCmd.SetArgs(append([]string{
		"--config", filepath.Join(e.dataDir, "absent.toml"),
		"--data-dir", e.dataDir,
		"--api-url", e.srv.URL + "/api/",
		"--refresh-url", e.srv.URL + "/api/token/refresh/",
		"--log-level", "error",
	}, args...))
	err := rootCmd.ExecuteContext(context.Background())
	return stdout.String(), stderr.String(), err
}

// ---------------------------------------------------------------------------
// Tests
// ---------------------------------------------------------------------------

func TestLoginListLogout(t *testing.T) {
	_, srv := newInventoryAPI(t, "valid-access")
	e := newEnv(t, srv)

	out, _, err := e.run(t, "", "login", "--username", "admin", "--password", "secret")
	require.NoError(t, err)
	assert.Contains(t, out, "Signed in as admin")

	out, _, err = e.run(t, "", "api", "list", "products", "--all", "--query", "size=M")
	require.NoError(t, err)
	var records []map[string]any
	require.NoError(t, json.Unmarshal([]byte(out), &records))
	require.Len(t, records, 1)
	assert.Equal(t, "Tee", records[0]["name"])
	assert.Equal(t, "M", records[0]["q"])

	_, stderr, err := e.run(t, "", "logout")
	require.NoError(t, err)
	assert.Contains(t, stderr, "stockroom login")

	_, stderr, err = e.run(t, "", "api", "list", "products")
	require.Error(t, err)
	assert.Contains(t, err.Error(), "401")
	assert.Contains(t, stderr, "Signed out")
}

func TestLogin_BadCredentials(t *testing.T) {
	_, srv := newInventoryAPI(t, "valid-access")
	e := newEnv(t, srv)

	_, _, err := e.run(t, "", "login", "--username", "admin", "--password", "wrong")
	require.Error(t, err)
	assert.Contains(t, err.Error(), "invalid username or password")
}

func TestLogin_PasswordFromStdin(t *testing.T) {
	_, srv := newInventoryAPI(t, "valid-access")
	e := newEnv(t, srv)

	out, _, err := e.run(t, "secret\n", "login", "--username", "admin")
	require.NoError(t, err)
	assert.Contains(t, out, "Signed in as admin")
}

func TestLogin_RequiresUsername(t *testing.T) {
	_, srv := newInventoryAPI(t, "valid-access")
	e := newEnv(t, srv)

	_, _, err := e.run(t, "", "login", "--username", "", "--password", "secret")
	require.Error(t, err)
}

func TestAPI_RefreshesExpiredToken(t *testing.T) {
	api, srv := newInventoryAPI(t, "expired-access")
	e := newEnv(t, srv)

	_, _, err := e.run(t, "", "login", "--username", "admin", "--password", "secret")
	require.NoError(t, err)

	out, _, err := e.run(t, "", "api", "list", "products")
	require.NoError(t, err)
	assert.Contains(t, out, "Tee")
	assert.Equal(t, 1, api.refreshCount())

	// The refreshed token was persisted, so no second exchange is needed.
	_, _, err = e.run(t, "", "api", "list", "products")
	require.NoError(t, err)
	assert.Equal(t, 1, api.refreshCount())
}

func TestAPI_CreateAndDelete(t *testing.T) {
	_, srv := newInventoryAPI(t, "valid-access")
	e := newEnv(t, srv)
	_, _, err := e.run(t, "", "login", "--username", "admin", "--password", "secret")
	require.NoError(t, err)

	out, _, err := e.run(t, "", "api", "create", "colors", "--data", `{"name":"Navy"}`)
	require.NoError(t, err)
	var rec map[string]any
	require.NoError(t, json.Unmarshal([]byte(out), &rec))
	assert.Equal(t, "Navy", rec["name"])
	assert.EqualValues(t, 7, rec["id"])

	out, _, err = e.run(t, `{"name":"Teal"}`, "api", "create", "colors", "--data", "-")
	require.NoError(t, err)
	assert.Contains(t, out, "Teal")

	out, _, err = e.run(t, "", "api", "delete", "colors", "7")
	require.NoError(t, err)
	assert.Empty(t, out)
}

func TestAPI_InputErrors(t *testing.T) {
	_, srv := newInventoryAPI(t, "valid-access")
	e := newEnv(t, srv)

	_, _, err := e.run(t, "", "api", "list", "widgets")
	assert.ErrorContains(t, err, "unknown collection")

	_, _, err = e.run(t, "", "api", "create", "colors")
	assert.ErrorContains(t, err, "--data is required")

	_, _, err = e.run(t, "", "api", "create", "colors", "--data", "[1,2]")
	assert.ErrorContains(t, err, "JSON object")

	_, _, err = e.run(t, "", "api", "list", "products", "--query", "novalue")
	assert.ErrorContains(t, err, "key=value")
}

func TestSealedSession(t *testing.T) {
	_, srv := newInventoryAPI(t, "valid-access")
	e := newEnv(t, srv)
	t.Setenv(config.EnvSessionSecret, "correct horse battery staple")

	_, _, err := e.run(t, "", "login", "--username", "admin", "--password", "secret")
	require.NoError(t, err)

	raw, err := os.ReadFile(filepath.Join(e.dataDir, "session.db"))
	require.NoError(t, err)
	assert.False(t, bytes.Contains(raw, []byte("valid-access")))
	assert.False(t, bytes.Contains(raw, []byte("refresh-one")))

	out, _, err := e.run(t, "", "api", "list", "products")
	require.NoError(t, err)
	assert.Contains(t, out, "Tee")
}

func TestRoutesCommands(t *testing.T) {
	_, srv := newInventoryAPI(t, "valid-access")
	e := newEnv(t, srv)

	out, _, err := e.run(t, "", "routes", "list")
	require.NoError(t, err)
	assert.Contains(t, out, "PATH")
	assert.Contains(t, out, "/stockbysuppliers")
	assert.Contains(t, out, "stock-by-supplier")

	out, _, err = e.run(t, "", "routes", "resolve", "/PackingSlip/?id=3")
	require.NoError(t, err)
	assert.Equal(t, "packing-slip\n", out)

	_, _, err = e.run(t, "", "routes", "resolve", "/nowhere")
	assert.ErrorContains(t, err, "no page registered")
}

func TestNewRouter(t *testing.T) {
	cfg = config.Default()
	r, err := newRouter(routes.Default(), true)
	require.NoError(t, err)

	get := func(path string) *httptest.ResponseRecorder {
		rec := httptest.NewRecorder()
		r.ServeHTTP(rec, httptest.NewRequest(http.MethodGet, path, nil))
		return rec
	}

	rec := get("/health")
	assert.Equal(t, http.StatusOK, rec.Code)
	assert.Equal(t, "OK", rec.Body.String())
	assert.Equal(t, "nosniff", rec.Header().Get("X-Content-Type-Options"))

	rec = get("/docs")
	assert.Equal(t, http.StatusOK, rec.Code)

	rec = get("/openapi.yaml")
	assert.Equal(t, http.StatusOK, rec.Code)

	rec = get("/reports")
	assert.Equal(t, http.StatusOK, rec.Code)
	assert.Contains(t, rec.Body.String(), `content="reports"`)

	rec = get("/nope")
	assert.Equal(t, http.StatusNotFound, rec.Code)
}

func TestNewRouter_WithoutDocs(t *testing.T) {
	cfg = config.Default()
	r, err := newRouter(routes.Default(), false)
	require.NoError(t, err)

	rec := httptest.NewRecorder()
	r.ServeHTTP(rec, httptest.NewRequest(http.MethodGet, "/docs", nil))
	assert.Equal(t, http.StatusNotFound, rec.Code)
}

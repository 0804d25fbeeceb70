package api_test

import (
	"io"
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.uber.org/zap"

	"github.com/agentregistry-dev/agentconsole/internal/console/api"
	v0 "github.com/agentregistry-dev/agentconsole/internal/console/api/handlers/v0"
	"github.com/agentregistry-dev/agentconsole/internal/console/config"
	"github.com/agentregistry-dev/agentconsole/internal/console/logging"
	servicetesting "github.com/agentregistry-dev/agentconsole/internal/console/service/testing"
	"github.com/agentregistry-dev/agentconsole/internal/console/session"
	"github.com/agentregistry-dev/agentconsole/internal/mcp/consoleserver"
)

func testConfig() *config.Config {
	return &config.Config{
		ServerAddress:      ":0",
		CORSAllowedOrigins: []string{"http://localhost:3000"},
		Logging:            *logging.DefaultEventLoggingConfig(),
	}
}

func newTestServer(t *testing.T, opts api.ServerOptions) (*api.Server, *servicetesting.FakeConsole) {
	t.Helper()
	fake := servicetesting.NewFakeConsole()
	if opts.Logger == nil {
		opts.Logger = zap.NewNop()
	}
	return api.NewServer(testConfig(), fake, &v0.VersionBody{Version: "1.0.0"}, opts), fake
}

func serve(h http.Handler, req *http.Request) *httptest.ResponseRecorder {
	w := httptest.NewRecorder()
	h.ServeHTTP(w, req)
	return w
}

func TestServer_RequestIDAndCORS(t *testing.T) {
	srv, _ := newTestServer(t, api.ServerOptions{})

	req := httptest.NewRequest(http.MethodGet, "/v0/ping", nil)
	req.Header.Set("Origin", "http://localhost:3000")
	w := serve(srv.Handler(), req)

	require.Equal(t, http.StatusOK, w.Code)
	assert.NotEmpty(t, w.Header().Get(logging.RequestIDHeader))
	assert.Equal(t, "http://localhost:3000", w.Header().Get("Access-Control-Allow-Origin"))

	req = httptest.NewRequest(http.MethodGet, "/v0/ping", nil)
	req.Header.Set("Origin", "http://evil.example")
	w = serve(srv.Handler(), req)
	assert.Empty(t, w.Header().Get("Access-Control-Allow-Origin"))
}

func TestServer_DevUserWithoutVerifier(t *testing.T) {
	srv, _ := newTestServer(t, api.ServerOptions{})
	var sawUser bool

	req := httptest.NewRequest(http.MethodGet, "/v0/ping", nil)
	w := serve(srv.Handler(), req)
	require.Equal(t, http.StatusOK, w.Code)

	srv.Mux().HandleFunc("GET /whoami", func(w http.ResponseWriter, r *http.Request) {
		_, sawUser = session.FromContext(r.Context())
		w.WriteHeader(http.StatusNoContent)
	})
	w = serve(srv.Handler(), httptest.NewRequest(http.MethodGet, "/whoami", nil))
	assert.Equal(t, http.StatusNoContent, w.Code)
	assert.True(t, sawUser)
}

func TestServer_InvalidTokenRejected(t *testing.T) {
	verifier := session.NewVerifier("secret", "")
	srv, _ := newTestServer(t, api.ServerOptions{Verifier: verifier})

	req := httptest.NewRequest(http.MethodGet, "/v0/ping", nil)
	req.Header.Set("Authorization", "Bearer not-a-jwt")
	w := serve(srv.Handler(), req)
	assert.Equal(t, http.StatusUnauthorized, w.Code)

	token, err := verifier.Issue(session.User{UserID: "u-1", UserName: "Ada", SessionID: "s-1"}, time.Hour)
	require.NoError(t, err)
	req = httptest.NewRequest(http.MethodGet, "/v0/ping", nil)
	req.Header.Set("Authorization", "Bearer "+token)
	w = serve(srv.Handler(), req)
	assert.Equal(t, http.StatusOK, w.Code)
}

func TestServer_MetricsAndRoot(t *testing.T) {
	metrics := http.HandlerFunc(func(w http.ResponseWriter, _ *http.Request) {
		_, _ = io.WriteString(w, "console_up 1\n")
	})
	srv, _ := newTestServer(t, api.ServerOptions{MetricsHandler: metrics})

	w := serve(srv.Handler(), httptest.NewRequest(http.MethodGet, "/metrics", nil))
	require.Equal(t, http.StatusOK, w.Code)
	assert.Contains(t, w.Body.String(), "console_up 1")

	w = serve(srv.Handler(), httptest.NewRequest(http.MethodGet, "/", nil))
	assert.Equal(t, http.StatusTemporaryRedirect, w.Code)
	assert.Equal(t, "/docs", w.Header().Get("Location"))

	w = serve(srv.Handler(), httptest.NewRequest(http.MethodGet, "/nope", nil))
	assert.Equal(t, http.StatusNotFound, w.Code)
}

func TestServer_UIHandler(t *testing.T) {
	ui := http.HandlerFunc(func(w http.ResponseWriter, _ *http.Request) {
		_, _ = io.WriteString(w, "<html>console</html>")
	})
	srv, _ := newTestServer(t, api.ServerOptions{UIHandler: ui})

	w := serve(srv.Handler(), httptest.NewRequest(http.MethodGet, "/projects/p-1", nil))
	assert.Equal(t, http.StatusOK, w.Code)
	assert.Contains(t, w.Body.String(), "console")

	w = serve(srv.Handler(), httptest.NewRequest(http.MethodGet, "/v0/ping", nil))
	assert.Equal(t, http.StatusOK, w.Code)
	assert.True(t, strings.Contains(w.Body.String(), "pong"))
}

func TestServer_MCPMounted(t *testing.T) {
	fake := servicetesting.NewFakeConsole()
	srv := api.NewServer(testConfig(), fake, &v0.VersionBody{Version: "1.0.0"}, api.ServerOptions{
		MCPServer: consoleserver.NewServer(fake),
		Logger:    zap.NewNop(),
	})

	body := `{"jsonrpc":"2.0","id":1,"method":"initialize","params":{"protocolVersion":"2025-06-18","capabilities":{},"clientInfo":{"name":"test","version":"0.0.1"}}}`
	req := httptest.NewRequest(http.MethodPost, api.MCPPath, strings.NewReader(body))
	req.Header.Set("Content-Type", "application/json")
	req.Header.Set("Accept", "application/json, text/event-stream")
	w := serve(srv.Handler(), req)
	assert.NotEqual(t, http.StatusNotFound, w.Code)

	bare, _ := newTestServer(t, api.ServerOptions{})
	req = httptest.NewRequest(http.MethodPost, api.MCPPath, strings.NewReader(body))
	w = serve(bare.Handler(), req)
	assert.Equal(t, http.StatusNotFound, w.Code)
}

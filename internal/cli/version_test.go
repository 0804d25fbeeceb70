package cli

import (
	"bytes"
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/agentregistry-dev/agentconsole/internal/client"
	"github.com/agentregistry-dev/agentconsole/internal/version"
)

func TestUpdateRecommendation(t *testing.T) {
	tests := []struct {
		name   string
		cli    string
		server string
		want   string
	}{
		{name: "equal", cli: "1.2.0", server: "v1.2.0", want: ""},
		{name: "cli newer", cli: "1.3.0", server: "1.2.0", want: "CLI version is newer than server version. Consider updating the server."},
		{name: "server newer", cli: "1.2.0", server: "1.10.0", want: "Server version is newer than CLI version. Consider updating the CLI."},
		{name: "dev build", cli: "dev", server: "1.2.0", want: ""},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			assert.Equal(t, tt.want, updateRecommendation(tt.cli, tt.server))
		})
	}
}

func TestVersionCmd_JSONIncludesServer(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		w.Header().Set("Content-Type", "application/json")
		_ = json.NewEncoder(w).Encode(map[string]string{"version": "9.9.9", "gitCommit": "def5678", "buildTime": "now"})
	}))
	defer srv.Close()

	SetAPIClient(client.NewClient(srv.URL, ""))
	t.Cleanup(func() { SetAPIClient(nil) })
	jsonOutput = true
	t.Cleanup(func() { jsonOutput = false })

	var buf bytes.Buffer
	VersionCmd.SetOut(&buf)
	t.Cleanup(func() { VersionCmd.SetOut(nil) })
	require.NoError(t, VersionCmd.RunE(VersionCmd, nil))

	var out VersionOutput
	require.NoError(t, json.Unmarshal(buf.Bytes(), &out))
	assert.Equal(t, version.Version, out.CLIVersion)
	assert.Equal(t, "9.9.9", out.ServerVersion)
	assert.Equal(t, "def5678", out.ServerGitCommit)
}

func TestVersionCmd_NoClient(t *testing.T) {
	SetAPIClient(nil)

	var buf bytes.Buffer
	VersionCmd.SetOut(&buf)
	t.Cleanup(func() { VersionCmd.SetOut(nil) })
	require.NoError(t, VersionCmd.RunE(VersionCmd, nil))

	assert.Contains(t, buf.String(), "consolectl version")
	assert.Contains(t, buf.String(), "Error getting server version")
}

package cli

import (
	"bytes"
	"encoding/json"
	"errors"
	"net/http"
	"net/http/httptest"
	"strings"
	"sync"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"gopkg.in/yaml.v3"
)

type fakeServer struct {
	mu     sync.Mutex
	calls  []string
	routes map[string]func(w http.ResponseWriter)
}

func newFakeServer(t *testing.T) (*fakeServer, *httptest.Server) {
	t.Helper()
	fs := &fakeServer{routes: map[string]func(w http.ResponseWriter){}}
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		key := r.Method + " " + r.URL.Path
		fs.mu.Lock()
		fs.calls = append(fs.calls, key)
		h, ok := fs.routes[key]
		fs.mu.Unlock()
		if !ok {
			w.WriteHeader(http.StatusNotFound)
			return
		}
		w.Header().Set("Content-Type", "application/json")
		h(w)
	}))
	t.Cleanup(srv.Close)
	return fs, srv
}

func (fs *fakeServer) reply(key string, status int, body string) {
	fs.routes[key] = func(w http.ResponseWriter) {
		w.WriteHeader(status)
		w.Write([]byte(body))
	}
}

func execute(t *testing.T, srv *httptest.Server, args ...string) (string, error) {
	t.Helper()
	var out bytes.Buffer
	cmd := NewRootCmd(&out)
	cmd.SetErr(&bytes.Buffer{})
	cmd.SetArgs(append([]string{"--server", srv.URL}, args...))
	err := cmd.Execute()
	return out.String(), err
}

func TestCommandStructure(t *testing.T) {
	root := NewRootCmd(&bytes.Buffer{})
	for _, name := range []string{"verify", "backup", "migrate", "to-cloud", "session", "health", "run"} {
		cmd, _, err := root.Find([]string{name})
		require.NoError(t, err, name)
		assert.NotEmpty(t, cmd.Short, name)
	}
}

func TestVerify_PrintsJSON(t *testing.T) {
	fs, srv := newFakeServer(t)
	fs.reply("GET /api/migration/verify", http.StatusOK,
		`{"success":true,"sessionId":"s1","stats":{"transactions":5,"documents":3,"filesWithAttachments":3}}`)

	out, err := execute(t, srv, "verify")
	require.NoError(t, err)

	var got map[string]any
	require.NoError(t, json.Unmarshal([]byte(out), &got))
	assert.Equal(t, true, got["success"])
	assert.Equal(t, float64(3), got["stats"].(map[string]any)["filesWithAttachments"])
}

func TestHealth_PrintsYAML(t *testing.T) {
	fs, srv := newFakeServer(t)
	fs.reply("GET /api/storage/health", http.StatusOK, `{"client":true,"storage":false,"local":{"totalFiles":2}}`)

	out, err := execute(t, srv, "health", "-o", "yaml")
	require.NoError(t, err)

	var got map[string]any
	require.NoError(t, yaml.Unmarshal([]byte(out), &got))
	assert.Equal(t, true, got["client"])
	assert.Equal(t, false, got["storage"])
	assert.Contains(t, out, "totalFiles: 2")
}

func TestUnsupportedFormat(t *testing.T) {
	fs, srv := newFakeServer(t)
	fs.reply("GET /api/migration/session", http.StatusOK, `{"id":"s1"}`)

	_, err := execute(t, srv, "session", "-o", "xml")
	require.Error(t, err)
	assert.Contains(t, err.Error(), `unsupported output format "xml"`)
}

func TestAPIErrorIsDecoded(t *testing.T) {
	fs, srv := newFakeServer(t)
	fs.reply("POST /api/migration/to-cloud", http.StatusConflict,
		`{"request_id":"r1","error":{"code":"PHASE_NOT_ALLOWED","message":"verify has not run"}}`)

	_, err := execute(t, srv, "migrate")
	require.Error(t, err)

	var apiErr *APIError
	require.True(t, errors.As(err, &apiErr))
	assert.Equal(t, http.StatusConflict, apiErr.Status)
	assert.Equal(t, "PHASE_NOT_ALLOWED", apiErr.Code)
	assert.Equal(t, "r1", apiErr.RequestID)
	assert.Equal(t, "PHASE_NOT_ALLOWED (409): verify has not run", apiErr.Error())
}

func TestBackup_UnsuccessfulExitsWithError(t *testing.T) {
	fs, srv := newFakeServer(t)
	fs.reply("POST /api/migration/backup", http.StatusOK, `{"success":false,"sessionId":"s1","error":"cloud storage not ready"}`)

	out, err := execute(t, srv, "backup")
	require.Error(t, err)
	assert.Contains(t, err.Error(), "cloud storage not ready")
	assert.Contains(t, out, `"success": false`)
}

func TestMigrate_FailOnPartial(t *testing.T) {
	fs, srv := newFakeServer(t)
	fs.reply("POST /api/migration/to-cloud", http.StatusOK,
		`{"totalFiles":4,"migratedFiles":3,"failedFiles":1,"preservedTransactions":4,"errors":["receipts/c.pdf: timeout"],"status":"partial"}`)

	_, err := execute(t, srv, "migrate")
	require.NoError(t, err)

	_, err = execute(t, srv, "migrate", "--fail-on-partial")
	assert.ErrorIs(t, err, ErrPartial)
	assert.Contains(t, err.Error(), "1 of 4")
}

func TestRun_StopsWhenBackupFails(t *testing.T) {
	fs, srv := newFakeServer(t)
	fs.reply("GET /api/migration/verify", http.StatusOK, `{"success":true,"sessionId":"s1","stats":{}}`)
	fs.reply("POST /api/migration/backup", http.StatusOK, `{"success":false,"sessionId":"s1","error":"cloud storage not ready"}`)
	fs.reply("POST /api/migration/to-cloud", http.StatusOK, `{"status":"completed"}`)

	_, err := execute(t, srv, "run")
	require.Error(t, err)
	assert.True(t, strings.HasPrefix(err.Error(), "backup: "))
	assert.Equal(t, []string{"GET /api/migration/verify", "POST /api/migration/backup"}, fs.calls)
}

func TestRun_AllPhases(t *testing.T) {
	fs, srv := newFakeServer(t)
	fs.reply("GET /api/migration/verify", http.StatusOK, `{"success":true,"sessionId":"s1","stats":{}}`)
	fs.reply("POST /api/migration/backup", http.StatusOK, `{"success":true,"sessionId":"s1","snapshot":"db_backup_1.json"}`)
	fs.reply("POST /api/migration/to-cloud", http.StatusOK, `{"totalFiles":0,"migratedFiles":0,"failedFiles":0,"errors":[],"status":"completed"}`)

	out, err := execute(t, srv, "run", "--fail-on-partial")
	require.NoError(t, err)
	assert.Contains(t, out, "db_backup_1.json")
	assert.Len(t, fs.calls, 3)
}

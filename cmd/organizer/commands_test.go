package main

import (
	"bytes"
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"os"
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/tgienger/organizer/internal/config"
	"github.com/tgienger/organizer/internal/syncstore"
)

func TestOrdering(t *testing.T) {
	assert.Equal(t, syncstore.LastResolvedWins, ordering(config.OrderingResolved))
	assert.Equal(t, syncstore.IssueOrder, ordering(config.OrderingIssue))
	assert.Equal(t, syncstore.IssueOrder, ordering(""))
}

func TestUILoggerWritesToStateDir(t *testing.T) {
	dir := t.TempDir()
	t.Setenv("XDG_STATE_HOME", dir)

	log, err := uiLogger(config.LoggerConfig{Level: "info", Format: "json", Output: "stdout"})
	require.NoError(t, err)
	log.Infow("hello")
	_ = log.Close()

	data, err := os.ReadFile(filepath.Join(dir, "organizer", "organizer.log"))
	require.NoError(t, err)
	assert.Contains(t, string(data), "hello")
}

func TestVersionCommand(t *testing.T) {
	cmd := newVersionCommand()
	var out bytes.Buffer
	cmd.SetOut(&out)
	cmd.SetArgs(nil)
	require.NoError(t, cmd.Execute())
	assert.Contains(t, out.String(), "organizer dev")
}

func TestRootCommandLeavesErrorsToMain(t *testing.T) {
	root := newRootCommand()
	var out, errOut bytes.Buffer
	root.SetOut(&out)
	root.SetErr(&errOut)
	root.SetArgs([]string{"archive", "not-a-number", "--config", filepath.Join(t.TempDir(), "missing.yaml")})

	require.Error(t, root.Execute())
	assert.Empty(t, errOut.String())
	assert.Empty(t, out.String())
}

func TestLoadStoresReturnsLogger(t *testing.T) {
	cfgPath := filepath.Join(t.TempDir(), "config.yaml")
	require.NoError(t, os.WriteFile(cfgPath, []byte("logger:\n  level: error\n"), 0o644))

	s, log, err := loadStores(cfgPath)
	require.NoError(t, err)
	require.NotNil(t, log)
	assert.NotNil(t, s.tasks)
	_ = log.Close()
}

func TestListTasksCommand(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		w.Header().Set("Content-Type", "application/json")
		_ = json.NewEncoder(w).Encode([]map[string]any{
			{"id": 7, "title": "Купить продукты", "status": "todo", "priority": "medium",
				"subtasks": []map[string]any{{"id": 1, "title": "Молоко", "completed": true}}},
		})
	}))
	defer srv.Close()

	t.Setenv("ORGANIZER_API_TASKS_URL", srv.URL+"/tasks")
	t.Setenv("ORGANIZER_LOGGER_LEVEL", "error")
	cfgPath := filepath.Join(t.TempDir(), "config.yaml")
	require.NoError(t, os.WriteFile(cfgPath, []byte("sync:\n  timeout: 5s\n"), 0o644))

	configPath := cfgPath
	cmd := newListCommand(&configPath)
	var out bytes.Buffer
	cmd.SetOut(&out)
	cmd.SetArgs([]string{"tasks"})
	require.NoError(t, cmd.Execute())

	assert.Contains(t, out.String(), "Купить продукты")
	assert.Contains(t, out.String(), "1/1")
}

package cmd

import (
	"bytes"
	"context"
	"net/http/httptest"
	"path/filepath"
	"testing"

	"github.com/gin-gonic/gin"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/AMANN-N/smart-practice/internal/devserver"
)

func newDevServer(t *testing.T) string {
	t.Helper()
	gin.SetMode(gin.TestMode)
	kbs, err := devserver.LoadSeed(nil)
	require.NoError(t, err)
	ts := httptest.NewServer(devserver.New(devserver.NewTutor(kbs, 0), nil).Handler())
	t.Cleanup(ts.Close)
	return ts.URL
}

// execute runs the root command with args and returns its stdout.
func execute(t *testing.T, args ...string) (string, error) {
	t.Helper()
	t.Setenv("XDG_CONFIG_HOME", t.TempDir())
	t.Setenv("SMARTPRACTICE_LOG_FILE", "")

	var out bytes.Buffer
	rootCmd.SetOut(&out)
	rootCmd.SetErr(&out)
	rootCmd.SetArgs(args)
	err := Execute(context.Background())
	return out.String(), err
}

func TestTopicsAndJournal(t *testing.T) {
	url := newDevServer(t)
	db := filepath.Join(t.TempDir(), "journal.db")

	out, err := execute(t, "topics", "--base-url", url, "--db", db)
	require.NoError(t, err)
	assert.Contains(t, out, "python_basics")

	out, err = execute(t, "journal", "stats", "--db", db)
	require.NoError(t, err)
	assert.Contains(t, out, "list-topics")

	out, err = execute(t, "journal", "list", "--db", db)
	require.NoError(t, err)
	assert.Contains(t, out, "/api/topics")
}

func TestIngestCommand(t *testing.T) {
	url := newDevServer(t)
	db := filepath.Join(t.TempDir(), "journal.db")

	out, err := execute(t, "ingest", "graphs", "--base-url", url, "--db", db)
	require.NoError(t, err)
	assert.Contains(t, out, "Ingested graphs.")

	out, err = execute(t, "topics", "--base-url", url, "--db", db)
	require.NoError(t, err)
	assert.Contains(t, out, "graphs")
}

func TestInvalidBaseURL(t *testing.T) {
	_, err := execute(t, "topics", "--base-url", "not a url", "--db", filepath.Join(t.TempDir(), "j.db"))
	assert.ErrorContains(t, err, "invalid config")
}

func TestVersion(t *testing.T) {
	out, err := execute(t, "version")
	require.NoError(t, err)
	assert.Contains(t, out, "smartpractice")
}

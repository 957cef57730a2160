package main

import (
	"fmt"
	"os"
	"path/filepath"
	"strings"
	"testing"

	"github.com/rs/zerolog"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/NamanBalaji/fetchr/internal/logger"
)

func writeConfig(t *testing.T, dir string) string {
	t.Helper()
	path := filepath.Join(dir, "fetchr.yaml")
	content := fmt.Sprintf(`remote_max_retries: 0
temp_dir: %s
ledger_path: %s
s3:
  enabled: false
`, filepath.Join(dir, "tmp"), filepath.Join(dir, "state", "tempfiles.db"))
	require.NoError(t, os.MkdirAll(filepath.Join(dir, "tmp"), 0o755))
	require.NoError(t, os.WriteFile(path, []byte(content), 0o600))
	return path
}

func TestRunSavesLocalFile(t *testing.T) {
	dir := t.TempDir()
	cfgPath := writeConfig(t, dir)

	src := filepath.Join(dir, "input.json")
	require.NoError(t, os.WriteFile(src, []byte(`{"ok":true}`), 0o644))
	outDir := filepath.Join(dir, "out")
	require.NoError(t, os.MkdirAll(outDir, 0o755))
	metricsPath := filepath.Join(dir, "fetchr.prom")

	code := run(cfgPath, -1, outDir, 2, metricsPath, []string{"file://" + src})
	assert.Equal(t, 0, code)

	data, err := os.ReadFile(filepath.Join(outDir, "input.json"))
	require.NoError(t, err)
	assert.Equal(t, `{"ok":true}`, string(data))

	metrics, err := os.ReadFile(metricsPath)
	require.NoError(t, err)
	assert.Contains(t, string(metrics), "fetchr_dispatch_total")
}

func TestRunReportsFailures(t *testing.T) {
	dir := t.TempDir()
	cfgPath := writeConfig(t, dir)

	code := run(cfgPath, -1, t.TempDir(), 1, "", []string{"file://" + filepath.Join(dir, "missing.txt")})
	assert.Equal(t, 1, code)
}

func TestRunBadConfig(t *testing.T) {
	path := filepath.Join(t.TempDir(), "broken.yaml")
	require.NoError(t, os.WriteFile(path, []byte(": not yaml"), 0o600))

	assert.Equal(t, 1, run(path, -1, "", 1, "", []string{"file:///x"}))
}

func TestRunFlushesDebugLog(t *testing.T) {
	dir := t.TempDir()
	cfgPath := writeConfig(t, dir)
	logPath := filepath.Join(dir, "logs", "fetchr.log")

	require.NoError(t, logger.InitLogging(true, logPath))
	t.Cleanup(func() {
		logger.Close()
		logger.DebugEnabled = false
		logger.SetLogger(zerolog.Nop())
	})

	src := filepath.Join(dir, "a.txt")
	require.NoError(t, os.WriteFile(src, []byte("a"), 0o644))

	code := run(cfgPath, 0, t.TempDir(), 1, "", []string{"file://" + src})
	logger.Close()
	require.Equal(t, 0, code)

	data, err := os.ReadFile(logPath)
	require.NoError(t, err)
	assert.True(t, strings.Contains(string(data), "User-Agent"), "log file: %s", data)
}

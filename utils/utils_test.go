package utils

import (
	"os"
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestReadConfig(t *testing.T) {
	configPath := filepath.Join(t.TempDir(), "peddy.config")
	content := `# batch QC config
Project: project-XYZ
InputDir: /data/VCFs
OutputDir: /data/out
Prefix: run42
threads: 8

ignored line
unknown: value
`
	require.NoError(t, os.WriteFile(configPath, []byte(content), 0644))

	cfg, err := ReadConfig(configPath)
	require.NoError(t, err)
	assert.Equal(t, "project-XYZ", cfg.Project)
	assert.Equal(t, "/data/VCFs", cfg.InputDir)
	assert.Equal(t, "/data/out", cfg.OutputDir)
	assert.Equal(t, "run42", cfg.Prefix)
	assert.Equal(t, 8, cfg.Threads)
}

func TestReadConfigDefaults(t *testing.T) {
	configPath := filepath.Join(t.TempDir(), "peddy.config")
	require.NoError(t, os.WriteFile(configPath, []byte("Project: p\n"), 0644))

	cfg, err := ReadConfig(configPath)
	require.NoError(t, err)
	assert.Equal(t, "ped", cfg.Prefix)
	assert.Equal(t, 4, cfg.Threads)
}

func TestReadConfigBadThreads(t *testing.T) {
	configPath := filepath.Join(t.TempDir(), "peddy.config")
	require.NoError(t, os.WriteFile(configPath, []byte("threads: many\n"), 0644))

	_, err := ReadConfig(configPath)
	require.Error(t, err)
}

func TestReadConfigMissingFile(t *testing.T) {
	_, err := ReadConfig(filepath.Join(t.TempDir(), "nope.config"))
	require.Error(t, err)
}

func TestParseLogFile(t *testing.T) {
	logContent := `{"time":"2025-06-18T21:11:02.572267197+02:00","level":"INFO","msg":"PEDDY CHECK","STAGE":"INITIALISE","SAMPLE":"ALL","STATUS":"STARTED","CMD":"project-XYZ"}
{"time":"2025-06-18T21:11:03.397122518+02:00","level":"INFO","msg":"PEDDY CHECK","STAGE":"Fetch","SAMPLE":"ALL","STATUS":"STARTED"}
{"time":"2025-06-18T21:12:04.124962114+02:00","level":"INFO","msg":"PEDDY CHECK","STAGE":"Fetch","SAMPLE":"ALL","STATUS":"COMPLETED"}
{"time":"2025-06-18T21:12:05.019476930+02:00","level":"INFO","msg":"PEDDY CHECK","STAGE":"Reheader","SAMPLE":"sample1","STATUS":"STARTED"}
{"time":"2025-06-18T21:12:06.687393372+02:00","level":"INFO","msg":"PEDDY CHECK","STAGE":"Reheader","SAMPLE":"sample1","STATUS":"COMPLETED"}
{"time":"2025-06-18T21:12:07.308876904+02:00","level":"INFO","msg":"PEDDY CHECK","STAGE":"Reheader","SAMPLE":"sample2","STATUS":"STARTED"}

not json at all
`
	logPath := filepath.Join(t.TempDir(), "peddy_check.log")
	require.NoError(t, os.WriteFile(logPath, []byte(logContent), 0644))

	entries := ParseLogFile(logPath)
	require.Len(t, entries, 6)
	assert.Equal(t, "INITIALISE", entries[0].Stage)
	assert.Equal(t, "project-XYZ", entries[0].Cmd)

	assert.True(t, StageHasCompleted(entries, "Fetch", "ALL"))
	assert.True(t, StageHasCompleted(entries, "Reheader", "sample1"))
	assert.False(t, StageHasCompleted(entries, "Reheader", "sample2"))
	assert.False(t, StageHasCompleted(entries, "Merge", "ALL"))
}

func TestParseLogFileMissing(t *testing.T) {
	assert.Nil(t, ParseLogFile(filepath.Join(t.TempDir(), "nope.log")))
}

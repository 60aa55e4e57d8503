package config

import (
	"errors"
	"os"
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

var allVars = []string{
	"DATA_PATH", "JSON_FILE_PATH", "MONGO_URL", "MONGO_DATABASE_NAME",
	"MONGO_COLLECTION_NAME", "RESULT_FILE_PATH", "STATS_FILE_PATH",
	"LOG_LEVEL", "LOG_FORMAT",
}

// clearEnv unsets vars for the duration of the test and restores them after.
func clearEnv(t *testing.T) {
	t.Helper()
	for _, k := range allVars {
		t.Setenv(k, "")
		require.NoError(t, os.Unsetenv(k))
	}
}

func mapLookup(m map[string]string) func(string) (string, bool) {
	return func(k string) (string, bool) {
		v, ok := m[k]
		return v, ok
	}
}

func fullEnv() map[string]string {
	return map[string]string{
		"DATA_PATH":             "/data",
		"JSON_FILE_PATH":        "/out/records.json",
		"MONGO_URL":             "mongodb://localhost:27017",
		"MONGO_DATABASE_NAME":   "stats",
		"MONGO_COLLECTION_NAME": "sizes",
		"RESULT_FILE_PATH":      "/out/result.csv",
	}
}

func TestFromLookup_AllFields(t *testing.T) {
	env := fullEnv()
	env["LOG_LEVEL"] = "DEBUG"
	env["LOG_FORMAT"] = " json "

	cfg := FromLookup(mapLookup(env))

	assert.Equal(t, "/data", cfg.Source.DataDir)
	assert.Equal(t, "/out/records.json", cfg.Artifact.JSONFile)
	assert.Equal(t, "mongodb://localhost:27017", cfg.Store.URL)
	assert.Equal(t, "stats", cfg.Store.Database)
	assert.Equal(t, "sizes", cfg.Store.Collection)
	assert.Equal(t, "/out/result.csv", cfg.Report.ResultFile)
	assert.Equal(t, filepath.Join("/data", "stats.txt"), cfg.Collect.OutFile)
	assert.Equal(t, "debug", cfg.Log.Level)
	assert.Equal(t, "json", cfg.Log.Format)

	require.NoError(t, cfg.Require(SectionSource, SectionArtifact, SectionStore, SectionReport, SectionCollect))
}

func TestFromLookup_ExplicitStatsFile(t *testing.T) {
	env := fullEnv()
	env["STATS_FILE_PATH"] = "/tmp/s.txt"

	cfg := FromLookup(mapLookup(env))
	assert.Equal(t, "/tmp/s.txt", cfg.Collect.OutFile)
}

func TestRequire_ReportsEveryMissingVar(t *testing.T) {
	cfg := FromLookup(mapLookup(map[string]string{"DATA_PATH": "/data"}))

	err := cfg.Require(SectionSource, SectionArtifact, SectionStore, SectionReport)
	require.Error(t, err)

	var missing *MissingError
	require.True(t, errors.As(err, &missing))
	assert.ElementsMatch(t, []string{
		"JSON_FILE_PATH", "MONGO_URL", "MONGO_DATABASE_NAME",
		"MONGO_COLLECTION_NAME", "RESULT_FILE_PATH",
	}, missing.Vars)
	assert.Contains(t, err.Error(), "missing required environment variables")
}

func TestRequire_OnlyRequestedSections(t *testing.T) {
	cfg := FromLookup(mapLookup(map[string]string{
		"DATA_PATH":      "/data",
		"JSON_FILE_PATH": "/out/records.json",
	}))

	assert.NoError(t, cfg.Require(SectionSource, SectionArtifact))
	assert.Error(t, cfg.Require(SectionStore))
}

func TestRequire_StoreURLScheme(t *testing.T) {
	tests := []struct {
		url   string
		valid bool
	}{
		{"mongodb://localhost:27017", true},
		{"mongodb+srv://user:pw@cluster0.example.net/?retryWrites=true", true},
		{"postgres://user:pw@localhost:5432/app", true},
		{"postgresql://localhost/app", true},
		{"mysql://localhost/app", false},
		{"localhost:27017", false},
	}
	for _, tt := range tests {
		t.Run(tt.url, func(t *testing.T) {
			env := fullEnv()
			env["MONGO_URL"] = tt.url
			err := FromLookup(mapLookup(env)).Require(SectionStore)
			if tt.valid {
				assert.NoError(t, err)
				return
			}
			require.Error(t, err)
			var cfgErr *Error
			require.True(t, errors.As(err, &cfgErr))
			assert.Contains(t, err.Error(), "MONGO_URL must be")
		})
	}
}

func TestRequire_StoreURLOnly(t *testing.T) {
	cfg := FromLookup(mapLookup(map[string]string{
		"MONGO_URL": "mongodb://localhost:27017",
		"DATA_PATH": "/data",
	}))
	assert.NoError(t, cfg.Require(SectionStoreURL, SectionCollect))
	assert.Error(t, cfg.Require(SectionStore))

	err := FromLookup(mapLookup(nil)).Require(SectionStoreURL)
	var missing *MissingError
	require.True(t, errors.As(err, &missing))
	assert.Equal(t, []string{"MONGO_URL"}, missing.Vars)
}

func TestRequire_LogFormat(t *testing.T) {
	cfg := FromLookup(mapLookup(map[string]string{"LOG_FORMAT": "xml"}))
	err := cfg.Require()
	require.Error(t, err)
	assert.Contains(t, err.Error(), "LOG_FORMAT must be one of")
}

func TestRequire_UnknownSection(t *testing.T) {
	err := FromLookup(mapLookup(fullEnv())).Require(Section(99))
	require.Error(t, err)
	assert.Contains(t, err.Error(), "unknown config section")
}

func TestLoad_FromEnvFile(t *testing.T) {
	clearEnv(t)
	envFile := filepath.Join(t.TempDir(), "test.env")
	content := "DATA_PATH=/from/file\nJSON_FILE_PATH=/from/file.json\n"
	require.NoError(t, os.WriteFile(envFile, []byte(content), 0644))

	cfg, err := Load(envFile)
	require.NoError(t, err)
	assert.Equal(t, "/from/file", cfg.Source.DataDir)
	assert.Equal(t, "/from/file.json", cfg.Artifact.JSONFile)
}

func TestLoad_ProcessEnvWins(t *testing.T) {
	clearEnv(t)
	t.Setenv("DATA_PATH", "/from/process")
	envFile := filepath.Join(t.TempDir(), "test.env")
	require.NoError(t, os.WriteFile(envFile, []byte("DATA_PATH=/from/file\n"), 0644))

	cfg, err := Load(envFile)
	require.NoError(t, err)
	assert.Equal(t, "/from/process", cfg.Source.DataDir)
}

func TestLoad_ExplicitFileMissing(t *testing.T) {
	cfg, err := Load(filepath.Join(t.TempDir(), "nope.env"))
	require.Error(t, err)
	assert.Nil(t, cfg)

	var cfgErr *Error
	require.True(t, errors.As(err, &cfgErr))
	assert.Contains(t, err.Error(), "env file not found")
}

func TestLoad_DefaultFileOptional(t *testing.T) {
	clearEnv(t)
	t.Chdir(t.TempDir())
	t.Setenv("DATA_PATH", "/only/process")

	cfg, err := Load("")
	require.NoError(t, err)
	assert.Equal(t, "/only/process", cfg.Source.DataDir)
}

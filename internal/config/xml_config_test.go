package config

import (
	"os"
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func clearEnv(t *testing.T) {
	for _, k := range []string{"PORT", "ARRIVALS_FILE", "POE_FILE", "DASHBOARD_ENGINE", "LOG_LEVEL", "LOG_FORMAT"} {
		t.Setenv(k, "")
	}
}

func TestLoadConfig_CreatesDefault(t *testing.T) {
	clearEnv(t)
	dir := t.TempDir()
	path := filepath.Join(dir, "ForeignArrivals.config")

	cfg, err := LoadConfig(path)
	require.NoError(t, err)

	_, err = os.Stat(path)
	require.NoError(t, err, "default config is written on first run")

	assert.Equal(t, 8090, cfg.Server.Port)
	assert.Equal(t, "memory", cfg.Processing.Engine)
	assert.Equal(t, filepath.Join(dir, "data", "foreign_arrivals.csv"), cfg.Data.ArrivalsFile)
	assert.Equal(t, filepath.Join(dir, "data", "poe.csv"), cfg.Data.PoeFile)

	// The written file loads back to the same values
	again, err := LoadConfig(path)
	require.NoError(t, err)
	assert.Equal(t, cfg.Server, again.Server)
	assert.Equal(t, cfg.Data, again.Data)
	assert.Equal(t, cfg.Processing, again.Processing)
	assert.Equal(t, cfg.Advanced, again.Advanced)
}

func TestLoadConfig_XML(t *testing.T) {
	clearEnv(t)
	dir := t.TempDir()
	path := filepath.Join(dir, "ForeignArrivals.config")
	content := `<?xml version="1.0" encoding="UTF-8"?>
<ForeignArrivals>
  <Server>
    <Port>9000</Port>
    <BindAddress>127.0.0.1</BindAddress>
    <AllowOrigins>http://a.example, http://b.example</AllowOrigins>
  </Server>
  <Data>
    <ArrivalsFile>/srv/arrivals.xlsx</ArrivalsFile>
    <PoeFile>meta/poe.csv</PoeFile>
    <DateLayouts>
      <Layout>02/01/2006</Layout>
      <Layout>Jan 2006</Layout>
    </DateLayouts>
  </Data>
  <Processing>
    <Engine>duckdb</Engine>
  </Processing>
  <Advanced>
    <LogLevel>debug</LogLevel>
    <DuckDBDirectory>duck</DuckDBDirectory>
  </Advanced>
</ForeignArrivals>`
	require.NoError(t, os.WriteFile(path, []byte(content), 0644))

	cfg, err := LoadConfig(path)
	require.NoError(t, err)

	assert.Equal(t, 9000, cfg.Server.Port)
	assert.Equal(t, "127.0.0.1:9000", cfg.GetServerAddr())
	assert.Equal(t, []string{"http://a.example", "http://b.example"}, cfg.GetAllowOrigins())
	assert.Equal(t, "/srv/arrivals.xlsx", cfg.Data.ArrivalsFile, "absolute paths are kept")
	assert.Equal(t, filepath.Join(dir, "meta", "poe.csv"), cfg.Data.PoeFile)
	assert.Equal(t, []string{"02/01/2006", "Jan 2006"}, cfg.Data.DateLayouts)
	assert.Equal(t, "duckdb", cfg.Processing.Engine)
	assert.Equal(t, "debug", cfg.Advanced.LogLevel)
	assert.Equal(t, filepath.Join(dir, "duck"), cfg.Advanced.DuckDBDirectory)

	// Unset elements keep their defaults
	assert.Equal(t, 30, cfg.Server.ReadTimeout)
	assert.Equal(t, 4, cfg.Advanced.DuckDBThreads)
}

func TestLoadConfig_YAML(t *testing.T) {
	clearEnv(t)
	dir := t.TempDir()
	path := filepath.Join(dir, "config.yaml")
	content := `
server:
  port: 8181
data:
  arrivals_file: arrivals.csv
  poe_file: poe.csv
processing:
  engine: memory
  warm_on_startup: false
advanced:
  log_format: json
`
	require.NoError(t, os.WriteFile(path, []byte(content), 0644))

	cfg, err := LoadConfig(path)
	require.NoError(t, err)

	assert.Equal(t, 8181, cfg.Server.Port)
	assert.Equal(t, filepath.Join(dir, "arrivals.csv"), cfg.Data.ArrivalsFile)
	assert.False(t, cfg.Processing.WarmOnStartup)
	assert.Equal(t, "json", cfg.Advanced.LogFormat)
	assert.Equal(t, "info", cfg.Advanced.LogLevel)
}

func TestLoadConfig_EnvironmentOverrides(t *testing.T) {
	clearEnv(t)
	t.Setenv("PORT", "7070")
	t.Setenv("ARRIVALS_FILE", "/data/a.csv")
	t.Setenv("POE_FILE", "/data/p.csv")
	t.Setenv("DASHBOARD_ENGINE", "DuckDB")
	t.Setenv("LOG_LEVEL", "warn")
	t.Setenv("LOG_FORMAT", "json")

	cfg, err := LoadConfig(filepath.Join(t.TempDir(), "ForeignArrivals.config"))
	require.NoError(t, err)

	assert.Equal(t, 7070, cfg.Server.Port)
	assert.Equal(t, "/data/a.csv", cfg.Data.ArrivalsFile)
	assert.Equal(t, "/data/p.csv", cfg.Data.PoeFile)
	assert.Equal(t, "duckdb", cfg.Processing.Engine)
	assert.Equal(t, "warn", cfg.Advanced.LogLevel)
	assert.Equal(t, "json", cfg.Advanced.LogFormat)
}

func TestLoadConfig_Invalid(t *testing.T) {
	clearEnv(t)
	dir := t.TempDir()

	bad := filepath.Join(dir, "bad.config")
	require.NoError(t, os.WriteFile(bad, []byte("<ForeignArrivals><Server>"), 0644))
	_, err := LoadConfig(bad)
	assert.ErrorContains(t, err, "failed to parse config file")

	engine := filepath.Join(dir, "engine.yaml")
	require.NoError(t, os.WriteFile(engine, []byte("processing:\n  engine: spark\n"), 0644))
	_, err = LoadConfig(engine)
	assert.ErrorContains(t, err, "unknown engine")
}

func TestValidate(t *testing.T) {
	tests := []struct {
		name    string
		mutate  func(c *AppConfig)
		wantErr string
	}{
		{"defaults", func(c *AppConfig) {}, ""},
		{"port zero", func(c *AppConfig) { c.Server.Port = 0 }, "invalid port"},
		{"port too high", func(c *AppConfig) { c.Server.Port = 70000 }, "invalid port"},
		{"engine", func(c *AppConfig) { c.Processing.Engine = "sqlite" }, "unknown engine"},
		{"no arrivals", func(c *AppConfig) { c.Data.ArrivalsFile = "" }, "arrivals file is required"},
		{"no poe", func(c *AppConfig) { c.Data.PoeFile = "" }, "poe file is required"},
		{"body limit", func(c *AppConfig) { c.Server.BodyLimit = "lots" }, "invalid body limit"},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			cfg := DefaultConfig()
			tt.mutate(cfg)
			err := cfg.Validate()
			if tt.wantErr == "" {
				assert.NoError(t, err)
				return
			}
			assert.ErrorContains(t, err, tt.wantErr)
		})
	}
}

func TestGetBodyLimitBytes(t *testing.T) {
	cfg := DefaultConfig()
	n, err := cfg.GetBodyLimitBytes()
	require.NoError(t, err)
	assert.Equal(t, int64(1024*1024), n)

	cfg.Server.BodyLimit = "64K"
	n, err = cfg.GetBodyLimitBytes()
	require.NoError(t, err)
	assert.Equal(t, int64(64*1024), n)
}

func TestGetAllowOrigins_Default(t *testing.T) {
	cfg := DefaultConfig()
	cfg.Server.AllowOrigins = " , "
	assert.Equal(t, []string{"*"}, cfg.GetAllowOrigins())
}

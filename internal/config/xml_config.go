// Package config provides XML (or YAML) configuration for the dashboard server.
package config

import (
	"encoding/xml"
	"errors"
	"fmt"
	"os"
	"path/filepath"
	"strconv"
	"strings"

	"github.com/labstack/gommon/bytes"
	"gopkg.in/yaml.v3"
)

// AppConfig represents the root configuration structure
type AppConfig struct {
	XMLName xml.Name `xml:"ForeignArrivals" yaml:"-"`

	Server     ServerConfig     `xml:"Server" yaml:"server"`
	Data       DataConfig       `xml:"Data" yaml:"data"`
	Processing ProcessingConfig `xml:"Processing" yaml:"processing"`
	Advanced   AdvancedConfig   `xml:"Advanced" yaml:"advanced"`
}

// ServerConfig contains HTTP server settings
type ServerConfig struct {
	Port            int    `xml:"Port" yaml:"port"`
	BindAddress     string `xml:"BindAddress" yaml:"bind_address"`
	EnableCORS      bool   `xml:"EnableCORS" yaml:"enable_cors"`
	AllowOrigins    string `xml:"AllowOrigins" yaml:"allow_origins"`
	ReadTimeout     int    `xml:"ReadTimeoutSeconds" yaml:"read_timeout_seconds"`
	WriteTimeout    int    `xml:"WriteTimeoutSeconds" yaml:"write_timeout_seconds"`
	IdleTimeout     int    `xml:"IdleTimeoutSeconds" yaml:"idle_timeout_seconds"`
	ShutdownTimeout int    `xml:"ShutdownTimeoutSeconds" yaml:"shutdown_timeout_seconds"`
	BodyLimit       string `xml:"BodyLimit" yaml:"body_limit"`
}

// DataConfig names the two source tables
type DataConfig struct {
	ArrivalsFile string `xml:"ArrivalsFile" yaml:"arrivals_file"`
	PoeFile      string `xml:"PoeFile" yaml:"poe_file"`
	// Extra date layouts (Go reference time), tried after the built-in ones
	DateLayouts []string `xml:"DateLayouts>Layout" yaml:"date_layouts"`
}

// ProcessingConfig contains aggregation settings
type ProcessingConfig struct {
	Engine            string `xml:"Engine" yaml:"engine"` // "memory" or "duckdb"
	EnableCompression bool   `xml:"EnableCompression" yaml:"enable_compression"`
	CompressionLevel  int    `xml:"CompressionLevel" yaml:"compression_level"`
	WarmOnStartup     bool   `xml:"WarmOnStartup" yaml:"warm_on_startup"`
}

// AdvancedConfig contains advanced/tuning options
type AdvancedConfig struct {
	LogLevel             string `xml:"LogLevel" yaml:"log_level"`
	LogFormat            string `xml:"LogFormat" yaml:"log_format"`
	EnableRequestLogging bool   `xml:"EnableRequestLogging" yaml:"enable_request_logging"`
	DuckDBThreads        int    `xml:"DuckDBThreads" yaml:"duckdb_threads"`
	DuckDBMemoryLimit    string `xml:"DuckDBMemoryLimit" yaml:"duckdb_memory_limit"`
	// Empty keeps the DuckDB database in memory
	DuckDBDirectory string `xml:"DuckDBDirectory" yaml:"duckdb_directory"`
}

// DefaultConfig returns the default configuration
func DefaultConfig() *AppConfig {
	return &AppConfig{
		Server: ServerConfig{
			Port:            8090,
			BindAddress:     "0.0.0.0",
			EnableCORS:      true,
			AllowOrigins:    "*",
			ReadTimeout:     30,
			WriteTimeout:    30,
			IdleTimeout:     120,
			ShutdownTimeout: 10,
			BodyLimit:       "1M",
		},
		Data: DataConfig{
			ArrivalsFile: "./data/foreign_arrivals.csv",
			PoeFile:      "./data/poe.csv",
		},
		Processing: ProcessingConfig{
			Engine:            "memory",
			EnableCompression: true,
			CompressionLevel:  5,
			WarmOnStartup:     true,
		},
		Advanced: AdvancedConfig{
			LogLevel:             "info",
			LogFormat:            "text",
			EnableRequestLogging: true,
			DuckDBThreads:        4,
			DuckDBMemoryLimit:    "1GB",
		},
	}
}

// LoadConfig loads configuration from an XML or YAML file. A missing file is
// created with defaults.
func LoadConfig(configPath string) (*AppConfig, error) {
	config := DefaultConfig()

	if _, err := os.Stat(configPath); os.IsNotExist(err) {
		if err := config.Save(configPath); err != nil {
			return nil, fmt.Errorf("failed to create default config: %w", err)
		}
	} else {
		data, err := os.ReadFile(configPath)
		if err != nil {
			return nil, fmt.Errorf("failed to read config file: %w", err)
		}
		if isYAML(configPath) {
			err = yaml.Unmarshal(data, config)
		} else {
			err = xml.Unmarshal(data, config)
		}
		if err != nil {
			return nil, fmt.Errorf("failed to parse config file: %w", err)
		}
	}

	config.applyEnvironmentOverrides()
	config.resolvePaths(filepath.Dir(configPath))

	if err := config.Validate(); err != nil {
		return nil, err
	}
	return config, nil
}

// Save saves the configuration, as YAML when the path ends in .yaml/.yml
func (c *AppConfig) Save(configPath string) error {
	var content []byte
	if isYAML(configPath) {
		out, err := yaml.Marshal(c)
		if err != nil {
			return fmt.Errorf("failed to marshal config: %w", err)
		}
		content = append([]byte("# Foreign Arrivals Dashboard configuration\n"), out...)
	} else {
		out, err := xml.MarshalIndent(c, "", "  ")
		if err != nil {
			return fmt.Errorf("failed to marshal config: %w", err)
		}
		header := []byte(xml.Header + "\n<!-- Foreign Arrivals Dashboard Configuration -->\n<!-- This file is auto-generated on first run -->\n\n")
		content = append(header, out...)
	}

	if err := os.WriteFile(configPath, content, 0644); err != nil {
		return fmt.Errorf("failed to write config file: %w", err)
	}
	return nil
}

// Validate checks values that would otherwise fail later
func (c *AppConfig) Validate() error {
	if c.Server.Port <= 0 || c.Server.Port > 65535 {
		return fmt.Errorf("invalid port: %d", c.Server.Port)
	}
	switch c.Processing.Engine {
	case "memory", "duckdb":
	default:
		return fmt.Errorf("unknown engine %q (want memory or duckdb)", c.Processing.Engine)
	}
	if _, err := c.GetBodyLimitBytes(); err != nil {
		return err
	}
	if c.Data.ArrivalsFile == "" {
		return errors.New("arrivals file is required")
	}
	if c.Data.PoeFile == "" {
		return errors.New("poe file is required")
	}
	return nil
}

// applyEnvironmentOverrides allows environment variables to override config values
func (c *AppConfig) applyEnvironmentOverrides() {
	if port := os.Getenv("PORT"); port != "" {
		if p, err := strconv.Atoi(port); err == nil {
			c.Server.Port = p
		}
	}
	if v := os.Getenv("ARRIVALS_FILE"); v != "" {
		c.Data.ArrivalsFile = v
	}
	if v := os.Getenv("POE_FILE"); v != "" {
		c.Data.PoeFile = v
	}
	if v := os.Getenv("DASHBOARD_ENGINE"); v != "" {
		c.Processing.Engine = strings.ToLower(v)
	}
	if v := os.Getenv("LOG_LEVEL"); v != "" {
		c.Advanced.LogLevel = v
	}
	if v := os.Getenv("LOG_FORMAT"); v != "" {
		c.Advanced.LogFormat = v
	}
}

// resolvePaths converts relative paths to absolute based on config file location
func (c *AppConfig) resolvePaths(configDir string) {
	resolve := func(p string) string {
		if p == "" || filepath.IsAbs(p) {
			return p
		}
		return filepath.Join(configDir, p)
	}
	c.Data.ArrivalsFile = resolve(c.Data.ArrivalsFile)
	c.Data.PoeFile = resolve(c.Data.PoeFile)
	c.Advanced.DuckDBDirectory = resolve(c.Advanced.DuckDBDirectory)
}

// GetServerAddr returns the server bind address
func (c *AppConfig) GetServerAddr() string {
	return fmt.Sprintf("%s:%d", c.Server.BindAddress, c.Server.Port)
}

// GetBodyLimitBytes parses BodyLimit ("1M", "64K", ...) the way echo's
// BodyLimit middleware does.
func (c *AppConfig) GetBodyLimitBytes() (int64, error) {
	n, err := bytes.Parse(c.Server.BodyLimit)
	if err != nil || n <= 0 {
		return 0, fmt.Errorf("invalid body limit %q", c.Server.BodyLimit)
	}
	return n, nil
}

// GetAllowOrigins returns the trimmed CORS origins, "*" when none are set
func (c *AppConfig) GetAllowOrigins() []string {
	var origins []string
	for _, o := range strings.Split(c.Server.AllowOrigins, ",") {
		if o = strings.TrimSpace(o); o != "" {
			origins = append(origins, o)
		}
	}
	if len(origins) == 0 {
		return []string{"*"}
	}
	return origins
}

func isYAML(path string) bool {
	ext := strings.ToLower(filepath.Ext(path))
	return ext == ".yaml" || ext == ".yml"
}

package config

import (
	"fmt"
	"os"
	"regexp"
	"strings"

	"github.com/BurntSushi/toml"
	"github.com/lydakis/prism-mcp/internal/paths"
)

// Environment variables read by ApplyEnv.
const (
	EnvWorkingDirectory = "WORKING_DIRECTORY"
	EnvPrismaticURL     = "PRISMATIC_URL"
	EnvPrismPath        = "PRISM_PATH"
	EnvToolsets         = "PRISM_TOOLSETS"
	EnvLogLevel         = "PRISM_MCP_LOG_LEVEL"
	EnvLogFile          = "PRISM_MCP_LOG_FILE"
)

var envVarRe = regexp.MustCompile(`\$\{([A-Za-z_][A-Za-z0-9_]*)\}`)

// LoadFrom reads and parses a config file at the given path. A missing
// file yields an empty Config.
func LoadFrom(path string) (*Config, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		if os.IsNotExist(err) {
			return &Config{}, nil
		}
		return nil, fmt.Errorf("reading config: %w", err)
	}

	var cfg Config
	if err := toml.Unmarshal(data, &cfg); err != nil {
		return nil, &Error{Key: path, Err: fmt.Errorf("parsing: %w", err)}
	}
	expandConfigEnvVars(&cfg)
	return &cfg, nil
}

// ApplyEnv overlays environment variables on cfg. Set variables win over
// file values; unset or empty ones leave cfg untouched.
func ApplyEnv(cfg *Config, getenv func(string) string) {
	if cfg == nil {
		return
	}
	if getenv == nil {
		getenv = os.Getenv
	}

	if v := strings.TrimSpace(getenv(EnvWorkingDirectory)); v != "" {
		cfg.WorkingDirectory = v
	}
	if v := strings.TrimSpace(getenv(EnvPrismaticURL)); v != "" {
		cfg.PrismaticURL = v
	}
	if v := strings.TrimSpace(getenv(EnvPrismPath)); v != "" {
		cfg.PrismPath = v
	}
	if v := strings.TrimSpace(getenv(EnvToolsets)); v != "" {
		cfg.Toolsets = SplitList(v)
	}
	if v := strings.TrimSpace(getenv(EnvLogLevel)); v != "" {
		cfg.Log.Level = v
	}
	if v := strings.TrimSpace(getenv(EnvLogFile)); v != "" {
		cfg.Log.File = v
	}
}

// SplitList splits a comma separated list, dropping blanks.
func SplitList(raw string) []string {
	var out []string
	for _, part := range strings.Split(raw, ",") {
		if part = strings.TrimSpace(part); part != "" {
			out = append(out, part)
		}
	}
	return out
}

// ExampleConfigPath returns the default config file path (for help messages).
func ExampleConfigPath() string {
	return paths.ConfigFile()
}

func expandConfigEnvVars(cfg *Config) {
	cfg.WorkingDirectory = expandEnvVars(cfg.WorkingDirectory)
	cfg.PrismaticURL = expandEnvVars(cfg.PrismaticURL)
	cfg.PrismPath = expandEnvVars(cfg.PrismPath)
	cfg.BuildCommand = expandEnvVars(cfg.BuildCommand)
	cfg.Log.File = expandEnvVars(cfg.Log.File)
	for i := range cfg.Toolsets {
		cfg.Toolsets[i] = expandEnvVars(cfg.Toolsets[i])
	}
}

// expandEnvVars replaces ${VAR_NAME} with the value of the environment variable.
func expandEnvVars(s string) string {
	return envVarRe.ReplaceAllStringFunc(s, func(match string) string {
		name := envVarRe.FindStringSubmatch(match)[1]
		if val, ok := os.LookupEnv(name); ok {
			return val
		}
		return match // leave unresolved vars as-is
	})
}

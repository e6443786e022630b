package paths

import (
	"os"
	"path/filepath"
)

const appName = "prism-mcp"

func homeDir() string {
	if h := os.Getenv("HOME"); h != "" {
		return h
	}
	h, _ := os.UserHomeDir()
	return h
}

func xdgDir(envVar, fallbackSuffix string) string {
	if v := os.Getenv(envVar); v != "" {
		return filepath.Join(v, appName)
	}
	return filepath.Join(homeDir(), fallbackSuffix, appName)
}

// ConfigDir returns the prism-mcp config directory ($XDG_CONFIG_HOME/prism-mcp).
func ConfigDir() string {
	return xdgDir("XDG_CONFIG_HOME", ".config")
}

// StateDir returns the prism-mcp state directory ($XDG_STATE_HOME/prism-mcp).
func StateDir() string {
	return xdgDir("XDG_STATE_HOME", filepath.Join(".local", "state"))
}

// ConfigFile returns the path to config.toml.
// PRISM_MCP_CONFIG overrides the XDG location.
func ConfigFile() string {
	if v := os.Getenv("PRISM_MCP_CONFIG"); v != "" {
		return v
	}
	return filepath.Join(ConfigDir(), "config.toml")
}

// LogFile returns the default log file path used when file logging is
// enabled without an explicit path.
func LogFile() string {
	return filepath.Join(StateDir(), "server.log")
}

// EnsureDir creates a directory and parents if needed.
func EnsureDir(dir string) error {
	return os.MkdirAll(dir, 0700)
}

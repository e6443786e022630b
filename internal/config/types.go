package config

// DefaultPrismaticURL is the target service used when none is configured.
const DefaultPrismaticURL = "https://app.prismatic.io/"

// DefaultFallbackPackage is the npm package run through npx when prism is
// not installed locally.
const DefaultFallbackPackage = "@prismatic-io/prism"

// Config is the top-level prism-mcp configuration.
type Config struct {
	WorkingDirectory string `toml:"working_directory"`
	PrismaticURL     string `toml:"prismatic_url"`

	// Executable resolution
	PrismPath       string `toml:"prism_path"`
	FallbackPackage string `toml:"fallback_package"`
	ForceFallback   bool   `toml:"force_fallback"`

	// Toolsets restricts which tool groups are registered. Empty means all.
	Toolsets []string `toml:"toolsets"`

	// BuildCommand runs in the component directory before publishing.
	// Empty means "npm run build".
	BuildCommand string `toml:"build_command"`

	Log LogConfig `toml:"log"`
}

// LogConfig controls where and how verbosely the server logs.
type LogConfig struct {
	Level string `toml:"level"`
	File  string `toml:"file"`
}

// URL returns the configured Prismatic URL or the default.
func (c *Config) URL() string {
	if c == nil || c.PrismaticURL == "" {
		return DefaultPrismaticURL
	}
	return c.PrismaticURL
}

// Package returns the configured fallback package or the default.
func (c *Config) Package() string {
	if c == nil || c.FallbackPackage == "" {
		return DefaultFallbackPackage
	}
	return c.FallbackPackage
}

package main

import (
	"context"
	"fmt"
	"io"
	"os"
	"os/signal"
	"strings"
	"syscall"

	"github.com/lydakis/prism-mcp/internal/config"
	"github.com/lydakis/prism-mcp/internal/mcpserver"
	"github.com/lydakis/prism-mcp/internal/paths"
	"github.com/lydakis/prism-mcp/internal/prism"
	"github.com/lydakis/prism-mcp/internal/tools"
	"github.com/spf13/cobra"
)

var version = "dev"

type rootOptions struct {
	workingDirectory string
	prismaticURL     string
	toolsets         string
	configPath       string
	logLevel         string
	logFile          string
}

func main() {
	if err := newRootCmd().Execute(); err != nil {
		fmt.Fprintf(os.Stderr, "prism-mcp: %v\n", err)
		os.Exit(1)
	}
}

func newRootCmd() *cobra.Command {
	opts := &rootOptions{}

	cmd := &cobra.Command{
		Use:   "prism-mcp",
		Short: "MCP server for the Prismatic CLI",
		Long: "prism-mcp serves the Model Context Protocol over stdio and exposes\n" +
			"Prismatic CLI operations (auth, integrations, components) as tools.",
		Version:       version,
		Args:          cobra.NoArgs,
		SilenceUsage:  true,
		SilenceErrors: true,
		RunE: func(cmd *cobra.Command, _ []string) error {
			ctx, stop := signal.NotifyContext(cmd.Context(), os.Interrupt, syscall.SIGTERM)
			defer stop()
			return run(ctx, opts, os.Stdin, os.Stdout)
		},
	}

	f := cmd.Flags()
	f.StringVarP(&opts.workingDirectory, "working-directory", "w", "", "directory prism commands run in (env "+config.EnvWorkingDirectory+")")
	f.StringVar(&opts.prismaticURL, "prismatic-url", "", "Prismatic URL (env "+config.EnvPrismaticURL+", default "+config.DefaultPrismaticURL+")")
	f.StringVar(&opts.toolsets, "toolsets", "", "comma separated toolsets to enable: auth, integrations, components, all (env "+config.EnvToolsets+")")
	f.StringVarP(&opts.configPath, "config", "c", "", "path to config.toml (default "+config.ExampleConfigPath()+")")
	f.StringVar(&opts.logLevel, "log-level", "", "log level: debug, info, warn, error (env "+config.EnvLogLevel+")")
	f.StringVar(&opts.logFile, "log-file", "", `log file path, or "auto" for the state directory (env `+config.EnvLogFile+", default stderr)")

	return cmd
}

func run(ctx context.Context, opts *rootOptions, in io.Reader, out io.Writer) error {
	cfg, err := loadConfig(opts, os.Getenv)
	if err != nil {
		return err
	}

	groups, err := tools.ParseToolsets(cfg.Toolsets)
	if err != nil {
		return err
	}

	logger, closeLog, err := newLogger(cfg.Log)
	if err != nil {
		return err
	}
	defer closeLog()

	holder := prism.NewHolder(prism.Options{
		WorkingDirectory: cfg.WorkingDirectory,
		URL:              cfg.URL(),
		Locate:           prism.LocatorFor(cfg, &logger),
		Logger:           &logger,
	})
	if _, err := holder.Get("", ""); err != nil {
		return fmt.Errorf("failed to start Prism MCP server: %w", err)
	}
	defer holder.Dispose()

	reg := tools.NewRegistry(&logger)
	deps := tools.Deps{
		Sessions: tools.HolderSource(holder),
		Build:    tools.BuildStep(cfg.BuildCommand),
		Logger:   &logger,
	}
	if err := tools.Register(reg, deps, groups); err != nil {
		return err
	}

	logger.Info().
		Str("version", version).
		Str("working_directory", cfg.WorkingDirectory).
		Str("prismatic_url", cfg.URL()).
		Strs("toolsets", groupNames(groups)).
		Msg("starting")

	return mcpserver.New(reg, version, &logger).ServeStdio(ctx, in, out)
}

// loadConfig layers the config file, the environment and flags, in that
// order of precedence from lowest to highest.
func loadConfig(opts *rootOptions, getenv func(string) string) (*config.Config, error) {
	path := strings.TrimSpace(opts.configPath)
	if path == "" {
		path = paths.ConfigFile()
	}

	cfg, err := config.LoadFrom(path)
	if err != nil {
		return nil, err
	}
	config.ApplyEnv(cfg, getenv)

	if v := strings.TrimSpace(opts.workingDirectory); v != "" {
		cfg.WorkingDirectory = v
	}
	if v := strings.TrimSpace(opts.prismaticURL); v != "" {
		cfg.PrismaticURL = v
	}
	if v := strings.TrimSpace(opts.toolsets); v != "" {
		cfg.Toolsets = config.SplitList(v)
	}
	if v := strings.TrimSpace(opts.logLevel); v != "" {
		cfg.Log.Level = v
	}
	if v := strings.TrimSpace(opts.logFile); v != "" {
		cfg.Log.File = v
	}

	if err := config.Validate(cfg); err != nil {
		return nil, err
	}
	return cfg, nil
}

func groupNames(groups []tools.Group) []string {
	out := make([]string, 0, len(groups))
	for _, g := range groups {
		out = append(out, string(g))
	}
	return out
}

// Package locate finds a usable invocation for an external program.
package locate

import (
	"context"
	"os"
	"path/filepath"
	"runtime"
	"strings"

	"github.com/lydakis/prism-mcp/internal/procexec"
	"github.com/rs/zerolog"
)

// PrismPathEnv names the explicit prism executable override.
const PrismPathEnv = "PRISM_PATH"

// Runner is the zero-install package runner used by the fallback strategy.
const Runner = "npx"

const versionFlag = "--version"

var (
	runFn    = procexec.Run
	getenvFn = os.Getenv
	accessFn = isExecutable
	goos     = runtime.GOOS
)

// Executable is a resolved program invocation. Args is non-empty when the
// program runs through a package runner, in which case Path is the runner
// and Args prefix every subcommand.
type Executable struct {
	Path string
	Args []string
}

// IsZero reports whether e is unresolved.
func (e Executable) IsZero() bool {
	return strings.TrimSpace(e.Path) == ""
}

// Command returns the program name and the full argument vector for args.
func (e Executable) Command(args ...string) (string, []string) {
	full := make([]string, 0, len(e.Args)+len(args))
	full = append(full, e.Args...)
	full = append(full, args...)
	return e.Path, full
}

// String renders the invocation as one command-line string.
func (e Executable) String() string {
	if e.IsZero() {
		return ""
	}
	return procexec.CommandLine(e.Path, e.Args...)
}

// Options tunes the strategy chain.
type Options struct {
	// FallbackPackage is the package identifier handed to the runner.
	FallbackPackage string
	// ForceFallback skips straight to the runner when FallbackPackage is set.
	ForceFallback bool
	// OverridePath is an explicit path from configuration. It takes the
	// place of the environment override when set.
	OverridePath string
	// OverrideEnv names the environment variable holding an explicit path.
	// Defaults to PRISM_PATH for "prism".
	OverrideEnv string
	Logger      *zerolog.Logger
}

type strategy struct {
	name string
	try  func(ctx context.Context) (Executable, bool)
}

// Locate resolves name through the environment override, the system
// lookup command and the package-runner fallback, in that order. It never
// fails; ok is false when every strategy came up empty.
func Locate(ctx context.Context, name string, opts Options) (Executable, bool) {
	logger := zerolog.Nop()
	if opts.Logger != nil {
		logger = *opts.Logger
	}
	logger = logger.With().Str("executable", name).Logger()

	strategies := []strategy{
		{name: "env", try: func(ctx context.Context) (Executable, bool) {
			return fromOverride(ctx, opts.OverridePath, overrideEnvFor(name, opts.OverrideEnv), logger)
		}},
		{name: "lookup", try: func(ctx context.Context) (Executable, bool) {
			return fromSystemLookup(ctx, name, logger)
		}},
	}

	pkg := strings.TrimSpace(opts.FallbackPackage)
	if pkg != "" {
		fallback := strategy{name: "runner", try: func(ctx context.Context) (Executable, bool) {
			return fromRunner(ctx, pkg, logger)
		}}
		if opts.ForceFallback {
			strategies = []strategy{fallback}
		} else {
			strategies = append(strategies, fallback)
		}
	}

	for _, s := range strategies {
		exe, ok := s.try(ctx)
		if ok && !exe.IsZero() {
			logger.Info().Str("strategy", s.name).Str("invocation", exe.String()).Msg("found executable")
			return exe, true
		}
	}

	logger.Warn().Msg("executable not found by any strategy")
	return Executable{}, false
}

func overrideEnvFor(name, configured string) string {
	if configured != "" {
		return configured
	}
	if name == "prism" {
		return PrismPathEnv
	}
	return ""
}

func fromOverride(ctx context.Context, explicit, envVar string, logger zerolog.Logger) (Executable, bool) {
	path := strings.TrimSpace(explicit)
	source := "config"
	if path == "" && envVar != "" {
		path = strings.TrimSpace(getenvFn(envVar))
		source = envVar
	}
	if path == "" {
		return Executable{}, false
	}

	if filepath.IsAbs(path) && !accessFn(path) {
		logger.Warn().Str("source", source).Str("path", path).Msg("override path is not executable")
		return Executable{}, false
	}

	if _, err := runFn(ctx, procexec.Command{Name: path, Args: []string{versionFlag}}); err != nil {
		logger.Warn().Err(err).Str("source", source).Str("path", path).Msg("override path verification failed")
		return Executable{}, false
	}
	return Executable{Path: path}, true
}

func fromSystemLookup(ctx context.Context, name string, logger zerolog.Logger) (Executable, bool) {
	finder := lookupCommand(goos)
	out, err := runFn(ctx, procexec.Command{Name: finder, Args: []string{name}})
	if err != nil {
		if procexec.IsSpawnFailure(err) {
			logger.Warn().Err(err).Str("finder", finder).Msg("lookup command unavailable, trying next strategy")
		} else {
			logger.Debug().Err(err).Str("finder", finder).Msg("lookup command failed")
		}
		return Executable{}, false
	}

	first, _, _ := strings.Cut(out.Stdout, "\n")
	first = strings.TrimSpace(first)
	if first == "" {
		return Executable{}, false
	}
	return Executable{Path: first}, true
}

func fromRunner(ctx context.Context, pkg string, logger zerolog.Logger) (Executable, bool) {
	logger.Info().Str("package", pkg).Msg("attempting package runner fallback")

	exe := Executable{Path: Runner, Args: []string{"--yes", pkg}}
	name, args := exe.Command(versionFlag)
	if _, err := runFn(ctx, procexec.Command{Name: name, Args: args}); err != nil {
		logger.Warn().Err(err).Str("package", pkg).Msg("package runner fallback failed")
		return Executable{}, false
	}
	return exe, true
}

func lookupCommand(goos string) string {
	if goos == "windows" {
		return "where"
	}
	return "which"
}

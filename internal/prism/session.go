// Package prism runs Prismatic CLI subcommands on behalf of tool handlers.
package prism

import (
	"context"
	"errors"
	"fmt"
	"strings"
	"sync"

	"github.com/lydakis/prism-mcp/internal/config"
	"github.com/lydakis/prism-mcp/internal/locate"
	"github.com/lydakis/prism-mcp/internal/procexec"
	"github.com/rs/zerolog"
)

// ExecutableName is the program the session resolves.
const ExecutableName = "prism"

// URLEnv is injected into every child environment.
const URLEnv = "PRISMATIC_URL"

var (
	// ErrCLINotFound means no locator strategy produced an executable.
	ErrCLINotFound = errors.New("Prismatic CLI not found. Please ensure @prismatic-io/prism is installed or set PRISM_PATH")
	// ErrCLINotInstalled means the resolved executable failed its version check.
	ErrCLINotInstalled = errors.New("Prismatic CLI is not properly installed. Please ensure @prismatic-io/prism is installed in your project dependencies")
)

// LocateFunc resolves the prism executable.
type LocateFunc func(ctx context.Context) (locate.Executable, bool)

// RunFunc runs one process.
type RunFunc func(ctx context.Context, cmd procexec.Command) (procexec.Output, error)

// Options configures a Session or the defaults of a Holder.
type Options struct {
	WorkingDirectory string
	URL              string
	Locate           LocateFunc
	Run              RunFunc
	Logger           *zerolog.Logger
}

// LocatorFor returns a LocateFunc backed by locate.Locate using cfg's
// override path and fallback package.
func LocatorFor(cfg *config.Config, logger *zerolog.Logger) LocateFunc {
	return func(ctx context.Context) (locate.Executable, bool) {
		return locate.Locate(ctx, ExecutableName, locate.Options{
			OverridePath:    cfg.PrismPath,
			FallbackPackage: cfg.Package(),
			ForceFallback:   cfg.ForceFallback,
			Logger:          logger,
		})
	}
}

// ExecOption adjusts a single ExecuteCommand call.
type ExecOption func(*ExecOptions)

// ExecOptions is the resolved form of a set of ExecOption values.
type ExecOptions struct {
	Dir string
}

// WithDir runs the command in dir instead of the session working directory.
func WithDir(dir string) ExecOption {
	return func(o *ExecOptions) {
		o.Dir = dir
	}
}

// ApplyExecOptions folds opts into an ExecOptions value.
func ApplyExecOptions(opts ...ExecOption) ExecOptions {
	var out ExecOptions
	for _, opt := range opts {
		if opt != nil {
			opt(&out)
		}
	}
	return out
}

// Session owns one working directory, one target URL and the lazily
// resolved prism executable.
type Session struct {
	mu       sync.Mutex
	workDir  string
	url      string
	exe      locate.Executable
	locateFn LocateFunc
	runFn    RunFunc
	logger   zerolog.Logger
}

// NewSession builds a session. A working directory is required.
func NewSession(opts Options) (*Session, error) {
	workDir := strings.TrimSpace(opts.WorkingDirectory)
	if workDir == "" {
		return nil, config.Errorf(config.EnvWorkingDirectory, "must be provided or set as environment variable")
	}

	url := strings.TrimSpace(opts.URL)
	if url == "" {
		url = config.DefaultPrismaticURL
	}

	s := &Session{
		workDir:  workDir,
		url:      url,
		locateFn: opts.Locate,
		runFn:    opts.Run,
		logger:   zerolog.Nop(),
	}
	if opts.Logger != nil {
		s.logger = *opts.Logger
	}
	if s.runFn == nil {
		s.runFn = procexec.Run
	}
	if s.locateFn == nil {
		logger := s.logger
		s.locateFn = func(ctx context.Context) (locate.Executable, bool) {
			return locate.Locate(ctx, ExecutableName, locate.Options{
				FallbackPackage: config.DefaultFallbackPackage,
				Logger:          &logger,
			})
		}
	}
	return s, nil
}

// WorkingDirectory returns the directory commands run in by default.
func (s *Session) WorkingDirectory() string {
	return s.workDir
}

// URL returns the Prismatic URL injected into child processes.
func (s *Session) URL() string {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.url
}

// SetURL replaces the Prismatic URL. Empty values are ignored.
func (s *Session) SetURL(url string) {
	url = strings.TrimSpace(url)
	if url == "" {
		return
	}
	s.mu.Lock()
	s.url = url
	s.mu.Unlock()
}

// Executable returns the cached executable, if one has been resolved.
func (s *Session) Executable() (locate.Executable, bool) {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.exe, !s.exe.IsZero()
}

// ExecuteCommand runs `prism <args...>` and returns its raw output.
//
// The executable is resolved on first use and cached. Every call then
// re-checks it with --version, because a package-runner invocation can
// stop working between calls.
func (s *Session) ExecuteCommand(ctx context.Context, args []string, opts ...ExecOption) (procexec.Output, error) {
	exe, err := s.resolve(ctx)
	if err != nil {
		return procexec.Output{}, err
	}

	o := ApplyExecOptions(opts...)
	dir := s.workDir
	if strings.TrimSpace(o.Dir) != "" {
		dir = o.Dir
	}
	env := map[string]string{URLEnv: s.URL()}

	name, versionArgs := exe.Command("--version")
	if _, err := s.runFn(ctx, procexec.Command{Name: name, Args: versionArgs, Dir: dir, Env: env}); err != nil {
		s.logger.Warn().Err(err).Str("invocation", exe.String()).Str("dir", dir).Msg("prism availability check failed")
		return procexec.Output{}, fmt.Errorf("%w: %v", ErrCLINotInstalled, err)
	}

	name, fullArgs := exe.Command(args...)
	s.logger.Debug().Str("subcommand", firstArg(args)).Int("args", len(args)).Str("dir", dir).Msg("running prism")

	out, err := s.runFn(ctx, procexec.Command{Name: name, Args: fullArgs, Dir: dir, Env: env})
	if err != nil {
		return out, fmt.Errorf("failed to execute Prismatic CLI command: %w", err)
	}
	return out, nil
}

// Me runs `prism me`.
func (s *Session) Me(ctx context.Context) (string, error) {
	return Me(ctx, s)
}

// Logout runs `prism logout`.
func (s *Session) Logout(ctx context.Context) (string, error) {
	return Logout(ctx, s)
}

// Version runs `prism --version`.
func (s *Session) Version(ctx context.Context) (string, error) {
	return Version(ctx, s)
}

// IsLoggedIn reports the login heuristic for this session.
func (s *Session) IsLoggedIn(ctx context.Context) LoginStatus {
	return IsLoggedIn(ctx, s)
}

func (s *Session) resolve(ctx context.Context) (locate.Executable, error) {
	s.mu.Lock()
	defer s.mu.Unlock()

	if !s.exe.IsZero() {
		return s.exe, nil
	}

	exe, ok := s.locateFn(ctx)
	if !ok || exe.IsZero() {
		return locate.Executable{}, ErrCLINotFound
	}
	s.exe = exe
	return exe, nil
}

func (s *Session) reset() {
	s.mu.Lock()
	s.exe = locate.Executable{}
	s.mu.Unlock()
}

func firstArg(args []string) string {
	if len(args) == 0 {
		return ""
	}
	return args[0]
}

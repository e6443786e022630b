package tools

import (
	"context"
	"os"
	"path/filepath"
	"strings"

	"github.com/lydakis/prism-mcp/internal/prism"
	"github.com/lydakis/prism-mcp/internal/procexec"
	"github.com/rs/zerolog"
)

var (
	statFn     = os.Stat
	readFileFn = os.ReadFile
)

// SessionSource hands out the live CLI session. A non-empty url replaces
// the session's target URL first.
type SessionSource interface {
	Session(url string) (prism.Commander, error)
}

// HolderSource adapts a prism.Holder to SessionSource.
func HolderSource(h *prism.Holder) SessionSource {
	return holderSource{holder: h}
}

type holderSource struct {
	holder *prism.Holder
}

func (s holderSource) Session(url string) (prism.Commander, error) {
	session, err := s.holder.Get("", url)
	if err != nil {
		return nil, err
	}
	return session, nil
}

// BuildFunc runs the component build step in dir.
type BuildFunc func(ctx context.Context, dir string) (procexec.Output, error)

// DefaultBuildArgs is the build step used when none is configured.
var DefaultBuildArgs = []string{"npm", "run", "build"}

// BuildStep returns the build step for a configured command line. An empty
// line runs `npm run build` directly; anything else goes through the shell.
func BuildStep(line string) BuildFunc {
	line = strings.TrimSpace(line)
	if line == "" {
		return func(ctx context.Context, dir string) (procexec.Output, error) {
			return procexec.Run(ctx, procexec.Command{
				Name: DefaultBuildArgs[0],
				Args: DefaultBuildArgs[1:],
				Dir:  dir,
			})
		}
	}
	return func(ctx context.Context, dir string) (procexec.Output, error) {
		return procexec.RunShell(ctx, line, procexec.Options{Dir: dir})
	}
}

// Deps is what the tool handlers need from the rest of the server.
type Deps struct {
	Sessions SessionSource
	Build    BuildFunc
	Logger   *zerolog.Logger
}

func (d Deps) logger() *zerolog.Logger {
	if d.Logger == nil {
		nop := zerolog.Nop()
		return &nop
	}
	return d.Logger
}

func (d Deps) session() (prism.Commander, error) {
	return d.Sessions.Session("")
}

type workDirer interface {
	WorkingDirectory() string
}

// resolvePath joins a relative path onto the session working directory.
func resolvePath(c prism.Commander, path string) string {
	path = strings.TrimSpace(path)
	if path == "" || filepath.IsAbs(path) {
		return path
	}
	if wd, ok := c.(workDirer); ok && wd.WorkingDirectory() != "" {
		return filepath.Join(wd.WorkingDirectory(), path)
	}
	return path
}

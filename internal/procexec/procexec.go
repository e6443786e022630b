// Package procexec runs external programs and captures their output.
//
// Every call blocks until the child exits. Output is buffered, never
// streamed, and the only bound on a run is the caller's context.
package procexec

import (
	"bytes"
	"context"
	"errors"
	"fmt"
	"io/fs"
	"os"
	"os/exec"
	"runtime"
	"sort"
	"strings"
)

var execCommandFn = exec.CommandContext

// Command is one process invocation.
type Command struct {
	Name string
	Args []string
	Dir  string
	// Env is overlaid on the current process environment.
	Env map[string]string
}

// Options carries the directory and environment overlay for RunShell.
type Options struct {
	Dir string
	Env map[string]string
}

// Output holds captured stdout and stderr, untrimmed.
type Output struct {
	Stdout string
	Stderr string
}

// Error describes a process that could not be started or exited unsuccessfully.
type Error struct {
	Command  string
	ExitCode int
	Signal   string
	Stderr   string
	Err      error
}

func (e *Error) Error() string {
	if e == nil {
		return ""
	}

	var b strings.Builder
	switch {
	case e.Signal != "":
		fmt.Fprintf(&b, "command %s terminated by signal %s", e.Command, e.Signal)
	case e.ExitCode >= 0:
		fmt.Fprintf(&b, "command %s exited with code %d", e.Command, e.ExitCode)
	default:
		fmt.Fprintf(&b, "command %s could not be started", e.Command)
		if e.Err != nil {
			fmt.Fprintf(&b, ": %v", e.Err)
		}
	}

	if stderr := strings.TrimSpace(e.Stderr); stderr != "" {
		b.WriteString(": ")
		b.WriteString(stderr)
	}
	return b.String()
}

func (e *Error) Unwrap() error {
	if e == nil {
		return nil
	}
	return e.Err
}

// Run executes cmd and waits for it to finish.
func Run(ctx context.Context, cmd Command) (Output, error) {
	if strings.TrimSpace(cmd.Name) == "" {
		return Output{}, &Error{Command: `""`, ExitCode: -1, Err: exec.ErrNotFound}
	}

	c := execCommandFn(ctx, cmd.Name, cmd.Args...)
	c.Dir = cmd.Dir
	if len(cmd.Env) > 0 {
		c.Env = mergeEnv(os.Environ(), cmd.Env)
	}

	var stdout, stderr bytes.Buffer
	c.Stdout = &stdout
	c.Stderr = &stderr

	runErr := c.Run()
	out := Output{Stdout: stdout.String(), Stderr: stderr.String()}
	if runErr != nil {
		return out, newError(CommandLine(cmd.Name, cmd.Args...), out.Stderr, runErr)
	}
	return out, nil
}

// RunShell executes line through the platform shell. Callers that already
// hold an argument vector should use Run instead.
func RunShell(ctx context.Context, line string, opts Options) (Output, error) {
	name, flag := shellFor(runtime.GOOS)
	out, err := Run(ctx, Command{
		Name: name,
		Args: []string{flag, line},
		Dir:  opts.Dir,
		Env:  opts.Env,
	})
	var pe *Error
	if errors.As(err, &pe) {
		pe.Command = line
	}
	return out, err
}

// IsSpawnFailure reports whether err means the program (or shell) could not
// be started at all, as opposed to running and failing.
func IsSpawnFailure(err error) bool {
	if err == nil {
		return false
	}
	var pe *Error
	if errors.As(err, &pe) && pe.ExitCode >= 0 {
		return false
	}
	return errors.Is(err, exec.ErrNotFound) ||
		errors.Is(err, exec.ErrDot) ||
		errors.Is(err, fs.ErrNotExist) ||
		errors.Is(err, fs.ErrPermission)
}

// CommandLine renders name and args as a single display string.
func CommandLine(name string, args ...string) string {
	parts := make([]string, 0, len(args)+1)
	parts = append(parts, quoteIfNeeded(name))
	for _, arg := range args {
		parts = append(parts, quoteIfNeeded(arg))
	}
	return strings.Join(parts, " ")
}

func newError(command, stderr string, runErr error) *Error {
	pe := &Error{
		Command:  command,
		ExitCode: -1,
		Stderr:   stderr,
		Err:      runErr,
	}

	var exitErr *exec.ExitError
	if errors.As(runErr, &exitErr) {
		pe.ExitCode = exitErr.ExitCode()
		if sig := signalName(exitErr); sig != "" {
			pe.Signal = sig
		}
	}
	return pe
}

func shellFor(goos string) (string, string) {
	if goos == "windows" {
		return "cmd", "/C"
	}
	return "sh", "-c"
}

func mergeEnv(base []string, overlay map[string]string) []string {
	keys := make([]string, 0, len(overlay))
	for k := range overlay {
		keys = append(keys, k)
	}
	sort.Strings(keys)

	env := make([]string, 0, len(base)+len(overlay))
	for _, kv := range base {
		key, _, _ := strings.Cut(kv, "=")
		if _, shadowed := overlay[key]; shadowed {
			continue
		}
		env = append(env, kv)
	}
	for _, k := range keys {
		env = append(env, k+"="+overlay[k])
	}
	return env
}

func quoteIfNeeded(s string) string {
	if s == "" {
		return `""`
	}
	if strings.ContainsAny(s, " \t\"'\\$`") {
		return fmt.Sprintf("%q", s)
	}
	return s
}

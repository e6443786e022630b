package prism

import (
	"context"
	"errors"
	"strings"
	"testing"

	"github.com/lydakis/prism-mcp/internal/config"
	"github.com/lydakis/prism-mcp/internal/locate"
	"github.com/lydakis/prism-mcp/internal/procexec"
)

type recordedRun struct {
	line string
	dir  string
	url  string
}

type fakeProcs struct {
	runs    []recordedRun
	respond func(cmd procexec.Command) (procexec.Output, error)
}

func (f *fakeProcs) run(_ context.Context, cmd procexec.Command) (procexec.Output, error) {
	f.runs = append(f.runs, recordedRun{
		line: procexec.CommandLine(cmd.Name, cmd.Args...),
		dir:  cmd.Dir,
		url:  cmd.Env[URLEnv],
	})
	if f.respond == nil {
		return procexec.Output{}, nil
	}
	return f.respond(cmd)
}

func countingLocator(exe locate.Executable, ok bool, calls *int) LocateFunc {
	return func(context.Context) (locate.Executable, bool) {
		*calls++
		return exe, ok
	}
}

func newTestSession(t *testing.T, procs *fakeProcs, locateFn LocateFunc) *Session {
	t.Helper()
	s, err := NewSession(Options{
		WorkingDirectory: "/work",
		URL:              "https://example.prismatic.io/",
		Locate:           locateFn,
		Run:              procs.run,
	})
	if err != nil {
		t.Fatalf("NewSession() error = %v", err)
	}
	return s
}

func TestNewSessionRequiresWorkingDirectory(t *testing.T) {
	_, err := NewSession(Options{URL: "https://example.prismatic.io/"})
	if err == nil {
		t.Fatal("NewSession() error = nil, want non-nil")
	}
	if !config.IsConfigError(err) {
		t.Fatalf("NewSession() error = %v, want configuration error", err)
	}
	if !strings.Contains(err.Error(), "WORKING_DIRECTORY") {
		t.Fatalf("NewSession() error = %q, want WORKING_DIRECTORY hint", err.Error())
	}
}

func TestNewSessionDefaultsURL(t *testing.T) {
	s, err := NewSession(Options{WorkingDirectory: "/work"})
	if err != nil {
		t.Fatalf("NewSession() error = %v", err)
	}
	if s.URL() != config.DefaultPrismaticURL {
		t.Fatalf("URL() = %q, want default", s.URL())
	}
}

func TestExecuteCommandResolvesOnceAndChecksEveryCall(t *testing.T) {
	procs := &fakeProcs{respond: func(cmd procexec.Command) (procexec.Output, error) {
		return procexec.Output{Stdout: "ok\n", Stderr: "note\n"}, nil
	}}
	locates := 0
	s := newTestSession(t, procs, countingLocator(locate.Executable{Path: "/usr/bin/prism"}, true, &locates))

	for i := 0; i < 2; i++ {
		out, err := s.ExecuteCommand(context.Background(), []string{"components:list", "--output", "json"})
		if err != nil {
			t.Fatalf("ExecuteCommand() error = %v", err)
		}
		if out.Stdout != "ok\n" || out.Stderr != "note\n" {
			t.Fatalf("ExecuteCommand() = %#v, want untrimmed output", out)
		}
	}

	if locates != 1 {
		t.Fatalf("locator calls = %d, want 1", locates)
	}

	want := []string{
		"/usr/bin/prism --version",
		"/usr/bin/prism components:list --output json",
		"/usr/bin/prism --version",
		"/usr/bin/prism components:list --output json",
	}
	if len(procs.runs) != len(want) {
		t.Fatalf("runs = %#v, want %d", procs.runs, len(want))
	}
	for i, run := range procs.runs {
		if run.line != want[i] {
			t.Fatalf("run[%d] = %q, want %q", i, run.line, want[i])
		}
		if run.dir != "/work" {
			t.Fatalf("run[%d] dir = %q, want /work", i, run.dir)
		}
		if run.url != "https://example.prismatic.io/" {
			t.Fatalf("run[%d] PRISMATIC_URL = %q", i, run.url)
		}
	}
}

func TestExecuteCommandRunnerInvocationPrefixesSubcommand(t *testing.T) {
	procs := &fakeProcs{}
	locates := 0
	runner := locate.Executable{Path: "npx", Args: []string{"--yes", "@prismatic-io/prism"}}
	s := newTestSession(t, procs, countingLocator(runner, true, &locates))

	if _, err := s.ExecuteCommand(context.Background(), []string{"me"}); err != nil {
		t.Fatalf("ExecuteCommand() error = %v", err)
	}
	if procs.runs[1].line != "npx --yes @prismatic-io/prism me" {
		t.Fatalf("command = %q", procs.runs[1].line)
	}
}

func TestExecuteCommandDirOverride(t *testing.T) {
	procs := &fakeProcs{}
	locates := 0
	s := newTestSession(t, procs, countingLocator(locate.Executable{Path: "prism"}, true, &locates))

	if _, err := s.ExecuteCommand(context.Background(), []string{"components:publish"}, WithDir("/work/my-component")); err != nil {
		t.Fatalf("ExecuteCommand() error = %v", err)
	}
	for _, run := range procs.runs {
		if run.dir != "/work/my-component" {
			t.Fatalf("dir = %q, want override", run.dir)
		}
	}
}

func TestExecuteCommandNotFoundIsNotCached(t *testing.T) {
	procs := &fakeProcs{}
	locates := 0
	s := newTestSession(t, procs, countingLocator(locate.Executable{}, false, &locates))

	for i := 0; i < 2; i++ {
		_, err := s.ExecuteCommand(context.Background(), []string{"me"})
		if !errors.Is(err, ErrCLINotFound) {
			t.Fatalf("ExecuteCommand() error = %v, want ErrCLINotFound", err)
		}
	}
	if locates != 2 {
		t.Fatalf("locator calls = %d, want a retry per call", locates)
	}
	if len(procs.runs) != 0 {
		t.Fatalf("runs = %#v, want none", procs.runs)
	}
}

func TestExecuteCommandFailedVersionCheckIsNotInstalled(t *testing.T) {
	procs := &fakeProcs{respond: func(cmd procexec.Command) (procexec.Output, error) {
		return procexec.Output{}, &procexec.Error{Command: cmd.Name, ExitCode: 127, Stderr: "npm ERR! 404"}
	}}
	locates := 0
	s := newTestSession(t, procs, countingLocator(locate.Executable{Path: "prism"}, true, &locates))

	_, err := s.ExecuteCommand(context.Background(), []string{"me"})
	if !errors.Is(err, ErrCLINotInstalled) {
		t.Fatalf("ExecuteCommand() error = %v, want ErrCLINotInstalled", err)
	}
	if !strings.Contains(err.Error(), "npm ERR! 404") {
		t.Fatalf("ExecuteCommand() error = %q, want version check stderr", err.Error())
	}
	if len(procs.runs) != 1 {
		t.Fatalf("runs = %d, want only the version check", len(procs.runs))
	}
}

func TestExecuteCommandWrapsExecutionFailure(t *testing.T) {
	procs := &fakeProcs{respond: func(cmd procexec.Command) (procexec.Output, error) {
		if cmd.Args[len(cmd.Args)-1] == "--version" {
			return procexec.Output{}, nil
		}
		return procexec.Output{Stderr: "bad flag"}, &procexec.Error{Command: cmd.Name, ExitCode: 2, Stderr: "bad flag"}
	}}
	locates := 0
	s := newTestSession(t, procs, countingLocator(locate.Executable{Path: "prism"}, true, &locates))

	_, err := s.ExecuteCommand(context.Background(), []string{"integrations:list"})
	if err == nil {
		t.Fatal("ExecuteCommand() error = nil, want non-nil")
	}
	if !strings.HasPrefix(err.Error(), "failed to execute Prismatic CLI command: ") {
		t.Fatalf("error = %q, want CLI command prefix", err.Error())
	}
	if !strings.Contains(err.Error(), "bad flag") {
		t.Fatalf("error = %q, want stderr included", err.Error())
	}
	var pe *procexec.Error
	if !errors.As(err, &pe) || pe.ExitCode != 2 {
		t.Fatalf("errors.As(*procexec.Error) failed for %v", err)
	}
}

func TestSetURLIsUsedByLaterCommands(t *testing.T) {
	procs := &fakeProcs{}
	locates := 0
	s := newTestSession(t, procs, countingLocator(locate.Executable{Path: "prism"}, true, &locates))

	s.SetURL("https://app.eu-west-1.prismatic.io/")
	s.SetURL("   ")
	if _, err := s.ExecuteCommand(context.Background(), []string{"me"}); err != nil {
		t.Fatalf("ExecuteCommand() error = %v", err)
	}
	if procs.runs[1].url != "https://app.eu-west-1.prismatic.io/" {
		t.Fatalf("PRISMATIC_URL = %q", procs.runs[1].url)
	}
}

func TestDerivedCommandsTrimOutput(t *testing.T) {
	procs := &fakeProcs{respond: func(cmd procexec.Command) (procexec.Output, error) {
		switch cmd.Args[len(cmd.Args)-1] {
		case "me":
			return procexec.Output{Stdout: "Name: Dev\nEmail: dev@example.com\n"}, nil
		case "logout":
			return procexec.Output{Stdout: "\n"}, nil
		default:
			return procexec.Output{Stdout: "@prismatic-io/prism/7.1.0 linux-x64 node-v20\n"}, nil
		}
	}}
	locates := 0
	s := newTestSession(t, procs, countingLocator(locate.Executable{Path: "prism"}, true, &locates))
	ctx := context.Background()

	if out, err := s.Me(ctx); err != nil || out != "Name: Dev\nEmail: dev@example.com" {
		t.Fatalf("Me() = (%q, %v)", out, err)
	}
	if out, err := s.Logout(ctx); err != nil || out != "" {
		t.Fatalf("Logout() = (%q, %v)", out, err)
	}
	if out, err := s.Version(ctx); err != nil || out != "@prismatic-io/prism/7.1.0 linux-x64 node-v20" {
		t.Fatalf("Version() = (%q, %v)", out, err)
	}
}

func TestIsLoggedInHeuristic(t *testing.T) {
	tests := []struct {
		name     string
		stdout   string
		err      error
		wantIn   bool
		wantText string
	}{
		{name: "profile", stdout: "Name: Dev\n", wantIn: true, wantText: "Name: Dev"},
		{name: "anonymous output", stdout: "Error: You are not logged in.\n", wantIn: false, wantText: "Error: You are not logged in."},
		{name: "failure", err: errors.New("spawn failed"), wantIn: false, wantText: "failed to execute Prismatic CLI command"},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			procs := &fakeProcs{respond: func(cmd procexec.Command) (procexec.Output, error) {
				if cmd.Args[len(cmd.Args)-1] == "--version" {
					return procexec.Output{}, nil
				}
				return procexec.Output{Stdout: tt.stdout}, tt.err
			}}
			locates := 0
			s := newTestSession(t, procs, countingLocator(locate.Executable{Path: "prism"}, true, &locates))

			status := s.IsLoggedIn(context.Background())
			if status.LoggedIn != tt.wantIn {
				t.Fatalf("LoggedIn = %v, want %v", status.LoggedIn, tt.wantIn)
			}
			if !strings.Contains(status.Output, tt.wantText) {
				t.Fatalf("Output = %q, want to contain %q", status.Output, tt.wantText)
			}
		})
	}
}

func TestApplyExecOptionsIgnoresNil(t *testing.T) {
	got := ApplyExecOptions(nil, WithDir("/a"), nil)
	if got.Dir != "/a" {
		t.Fatalf("Dir = %q, want /a", got.Dir)
	}
}

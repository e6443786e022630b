package tools

import (
	"context"
	"strings"
	"testing"

	"github.com/lydakis/prism-mcp/internal/prism"
	"github.com/lydakis/prism-mcp/internal/procexec"
	"github.com/lydakis/prism-mcp/internal/response"
)

type commandCall struct {
	args []string
	dir  string
}

func (c commandCall) line() string {
	return strings.Join(c.args, " ")
}

type fakeCommander struct {
	workDir string
	calls   []commandCall
	respond func(args []string) (procexec.Output, error)
	events  *[]string
}

func (f *fakeCommander) ExecuteCommand(_ context.Context, args []string, opts ...prism.ExecOption) (procexec.Output, error) {
	o := prism.ApplyExecOptions(opts...)
	f.calls = append(f.calls, commandCall{args: append([]string(nil), args...), dir: o.Dir})
	if f.events != nil {
		*f.events = append(*f.events, "prism "+args[0])
	}
	if f.respond == nil {
		return procexec.Output{}, nil
	}
	return f.respond(args)
}

func (f *fakeCommander) WorkingDirectory() string {
	return f.workDir
}

type fakeSessions struct {
	commander *fakeCommander
	urls      []string
	err       error
}

func (s *fakeSessions) Session(url string) (prism.Commander, error) {
	s.urls = append(s.urls, url)
	if s.err != nil {
		return nil, s.err
	}
	return s.commander, nil
}

func newTestRegistry(t *testing.T, d Deps) *Registry {
	t.Helper()
	r := NewRegistry(nil)
	if err := Register(r, d, Groups); err != nil {
		t.Fatalf("Register() error = %v", err)
	}
	return r
}

func stubStdout(stdout string) func([]string) (procexec.Output, error) {
	return func([]string) (procexec.Output, error) {
		return procexec.Output{Stdout: stdout}, nil
	}
}

func call(t *testing.T, r *Registry, name string, args map[string]any) (string, bool) {
	t.Helper()
	result := r.Dispatch(context.Background(), name, args)
	if result == nil {
		t.Fatalf("Dispatch(%q) = nil, want envelope", name)
	}
	return response.Text(result), result.IsError
}

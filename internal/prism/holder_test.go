package prism

import (
	"context"
	"testing"

	"github.com/lydakis/prism-mcp/internal/config"
	"github.com/lydakis/prism-mcp/internal/locate"
)

func TestHolderGetReusesSessionAndUpdatesURL(t *testing.T) {
	h := NewHolder(Options{URL: "https://default.example.com/"})

	first, err := h.Get("/dir-a", "")
	if err != nil {
		t.Fatalf("Get() error = %v", err)
	}
	if first.URL() != "https://default.example.com/" {
		t.Fatalf("URL() = %q, want holder default", first.URL())
	}

	second, err := h.Get("", "https://b.example.com/")
	if err != nil {
		t.Fatalf("Get() error = %v", err)
	}
	if first != second {
		t.Fatal("Get() returned a new session, want the live one")
	}
	if second.WorkingDirectory() != "/dir-a" {
		t.Fatalf("WorkingDirectory() = %q, want /dir-a", second.WorkingDirectory())
	}
	if second.URL() != "https://b.example.com/" {
		t.Fatalf("URL() = %q, want updated URL", second.URL())
	}

	third, err := h.Get("/dir-c", "")
	if err != nil {
		t.Fatalf("Get() error = %v", err)
	}
	if third.WorkingDirectory() != "/dir-a" {
		t.Fatalf("WorkingDirectory() = %q, want first directory kept", third.WorkingDirectory())
	}
	if third.URL() != "https://b.example.com/" {
		t.Fatalf("URL() = %q, want URL kept when empty", third.URL())
	}
}

func TestHolderGetFallsBackToDefaultWorkingDirectory(t *testing.T) {
	h := NewHolder(Options{WorkingDirectory: "/from-env"})

	s, err := h.Get("", "")
	if err != nil {
		t.Fatalf("Get() error = %v", err)
	}
	if s.WorkingDirectory() != "/from-env" {
		t.Fatalf("WorkingDirectory() = %q, want /from-env", s.WorkingDirectory())
	}
	if s.URL() != config.DefaultPrismaticURL {
		t.Fatalf("URL() = %q, want default", s.URL())
	}
}

func TestHolderGetWithoutWorkingDirectoryFails(t *testing.T) {
	h := NewHolder(Options{})

	if _, err := h.Get("", ""); !config.IsConfigError(err) {
		t.Fatalf("Get() error = %v, want configuration error", err)
	}

	// A failed construction leaves nothing behind.
	s, err := h.Get("/later", "")
	if err != nil {
		t.Fatalf("Get() error = %v", err)
	}
	if s.WorkingDirectory() != "/later" {
		t.Fatalf("WorkingDirectory() = %q, want /later", s.WorkingDirectory())
	}
}

func TestHolderDisposeBuildsFreshSession(t *testing.T) {
	procs := &fakeProcs{}
	locates := 0
	h := NewHolder(Options{
		WorkingDirectory: "/work",
		Locate:           countingLocator(locate.Executable{Path: "prism"}, true, &locates),
		Run:              procs.run,
	})

	first, err := h.Get("", "")
	if err != nil {
		t.Fatalf("Get() error = %v", err)
	}
	if _, err := first.ExecuteCommand(context.Background(), []string{"me"}); err != nil {
		t.Fatalf("ExecuteCommand() error = %v", err)
	}
	if _, ok := first.Executable(); !ok {
		t.Fatal("Executable() ok = false after a successful command")
	}

	h.Dispose()
	if _, ok := first.Executable(); ok {
		t.Fatal("Executable() ok = true after Dispose, want cleared cache")
	}

	second, err := h.Get("", "")
	if err != nil {
		t.Fatalf("Get() error = %v", err)
	}
	if first == second {
		t.Fatal("Get() after Dispose returned the disposed session")
	}
	if _, err := second.ExecuteCommand(context.Background(), []string{"me"}); err != nil {
		t.Fatalf("ExecuteCommand() error = %v", err)
	}
	if locates != 2 {
		t.Fatalf("locator calls = %d, want 2", locates)
	}
}

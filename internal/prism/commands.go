package prism

import (
	"context"
	"strings"

	"github.com/lydakis/prism-mcp/internal/procexec"
)

// notLoggedInPhrase is what `prism me` prints for an anonymous user.
const notLoggedInPhrase = "You are not logged"

// Commander runs prism subcommands. *Session is the production Commander.
type Commander interface {
	ExecuteCommand(ctx context.Context, args []string, opts ...ExecOption) (procexec.Output, error)
}

// LoginStatus is the result of the IsLoggedIn heuristic.
type LoginStatus struct {
	Output   string `json:"output"`
	LoggedIn bool   `json:"loggedIn"`
}

// Me returns the trimmed output of `prism me`.
func Me(ctx context.Context, c Commander) (string, error) {
	return trimmedStdout(ctx, c, "me")
}

// Logout returns the trimmed output of `prism logout`.
func Logout(ctx context.Context, c Commander) (string, error) {
	return trimmedStdout(ctx, c, "logout")
}

// Version returns the trimmed output of `prism --version`.
func Version(ctx context.Context, c Commander) (string, error) {
	return trimmedStdout(ctx, c, "--version")
}

// IsLoggedIn runs `prism me` and looks for the anonymous-user phrase in
// its output or error. This is a text match, not an authentication check:
// any failure mentioning the phrase counts as logged out, and any failure
// at all reports LoggedIn false.
func IsLoggedIn(ctx context.Context, c Commander) LoginStatus {
	out, err := Me(ctx, c)
	if err != nil {
		return LoginStatus{Output: err.Error(), LoggedIn: false}
	}
	return LoginStatus{Output: out, LoggedIn: !strings.Contains(out, notLoggedInPhrase)}
}

func trimmedStdout(ctx context.Context, c Commander, args ...string) (string, error) {
	out, err := c.ExecuteCommand(ctx, args)
	if err != nil {
		return "", err
	}
	return strings.TrimSpace(out.Stdout), nil
}

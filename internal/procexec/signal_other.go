//go:build !unix

package procexec

import "os/exec"

func signalName(*exec.ExitError) string {
	return ""
}

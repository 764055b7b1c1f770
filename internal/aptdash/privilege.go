package aptdash

import (
	"fmt"
	"os"
	"os/exec"

	"golang.org/x/sys/unix"
)

// needsRootPrivileges checks if the requested operation requires root.
// Only the installer itself does; inspection commands run unprivileged.
func needsRootPrivileges(cmd string) bool {
	rootCommands := map[string]bool{
		"install": true,
		"i":       true,
	}
	return rootCommands[cmd]
}

// selfElevate replaces the current process with the same invocation under
// sudo. apt-get and dpkg need root for the whole run, so elevating once up
// front beats prompting per package.
func selfElevate() error {
	sudoPath, err := exec.LookPath("sudo")
	if err != nil {
		return fmt.Errorf("sudo not found: %w", err)
	}
	argv := append([]string{"sudo"}, os.Args...)
	if err := unix.Exec(sudoPath, argv, os.Environ()); err != nil {
		return fmt.Errorf("failed to re-exec under sudo: %w", err)
	}
	return nil // unreachable; Exec does not return on success
}

// Package plugins discovers and runs external tfind subcommands.
//
// A plugin is a standalone executable named tfind-<command>, resolved
// the way git and kubectl resolve theirs: the tfind binary's own
// directory first, then ~/.tfind/plugins, then PATH.
package plugins

import (
	"errors"
	"fmt"
	"os"
	"os/exec"
	"path/filepath"
)

// ErrPluginNotFound is returned when no plugin binary can be located.
var ErrPluginNotFound = errors.New("plugin not found")

// searchDirs returns the directories consulted before falling back to
// PATH. Either entry may be absent when the corresponding lookup fails.
func searchDirs() []string {
	var dirs []string
	if self, err := os.Executable(); err == nil {
		dirs = append(dirs, filepath.Dir(self))
	}
	if home, err := os.UserHomeDir(); err == nil {
		dirs = append(dirs, filepath.Join(home, ".tfind", "plugins"))
	}
	return dirs
}

// FindPlugin resolves command to the path of a tfind-<command>
// executable, or ErrPluginNotFound.
func FindPlugin(command string) (string, error) {
	name := "tfind-" + command
	for _, dir := range searchDirs() {
		candidate := filepath.Join(dir, name)
		if isExecutable(candidate) {
			return candidate, nil
		}
	}
	if path, err := exec.LookPath(name); err == nil {
		return path, nil
	}
	return "", ErrPluginNotFound
}

// Execute runs the plugin at pluginPath with the process's standard
// streams attached and returns its exit code. Failures to start at all
// are reported on stderr as exit code 1.
func Execute(pluginPath string, args []string) int {
	cmd := exec.Command(pluginPath, args...)
	cmd.Stdin = os.Stdin
	cmd.Stdout = os.Stdout
	cmd.Stderr = os.Stderr

	if err := cmd.Run(); err != nil {
		var exitErr *exec.ExitError
		if errors.As(err, &exitErr) {
			return exitErr.ExitCode()
		}
		fmt.Fprintf(os.Stderr, "Error executing plugin: %v\n", err)
		return 1
	}
	return 0
}

// isExecutable reports whether path is a regular file with any execute
// bit set.
func isExecutable(path string) bool {
	info, err := os.Stat(path)
	if err != nil || !info.Mode().IsRegular() {
		return false
	}
	return info.Mode()&0o111 != 0
}

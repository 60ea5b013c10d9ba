package config

import (
	"path/filepath"
	"strings"

	"github.com/rzshell/rz/core/env"
)

// StartupScripts returns the ordered config.rz candidates: the system file,
// one per XDG_DATA_DIRS entry, then the user's. Callers skip paths that do
// not exist.
func StartupScripts(e env.Env) []string {
	paths := []string{filepath.Join("/etc/rz", ScriptName)}

	for _, dir := range strings.Split(e.Getenv("XDG_DATA_DIRS"), ":") {
		if dir == "" {
			continue
		}
		paths = append(paths, filepath.Join(dir, "rz", ScriptName))
	}

	if dir := UserConfigDir(e); dir != "" {
		paths = append(paths, filepath.Join(dir, ScriptName))
	}
	return paths
}
